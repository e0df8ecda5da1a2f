package contract

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller executes eth_call against the chain.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader performs typed view calls against one deployed market contract.
type Reader struct {
	caller  Caller
	address common.Address
	abi     abi.ABI

	mu       sync.Mutex
	decimals *uint8
}

// NewReader builds a Reader for the contract at address.
func NewReader(caller Caller, address common.Address) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	parsed, err := MarketABI()
	if err != nil {
		return nil, fmt.Errorf("parse market abi: %w", err)
	}
	return &Reader{caller: caller, address: address, abi: parsed}, nil
}

// Address returns the contract address.
func (r *Reader) Address() common.Address {
	return r.address
}

// MarketCount returns the number of markets created so far.
func (r *Reader) MarketCount(ctx context.Context) (uint64, error) {
	values, err := r.call(ctx, "marketCount")
	if err != nil {
		return 0, err
	}
	f := newFields("marketCount", values, 1)
	count := f.uint64(0, "count")
	return count, f.err
}

// MarketInfo returns the snapshot of one market.
func (r *Reader) MarketInfo(ctx context.Context, marketID uint64) (MarketInfo, error) {
	values, err := r.call(ctx, "getMarketInfo", new(big.Int).SetUint64(marketID))
	if err != nil {
		return MarketInfo{}, err
	}
	f := newFields("getMarketInfo", values, 11)
	info := MarketInfo{
		MarketID:        marketID,
		Question:        f.string(0, "question"),
		Description:     f.string(1, "description"),
		EndTime:         f.uint64(2, "endTime"),
		Category:        f.uint8(3, "category"),
		OptionCount:     f.uint64(4, "optionCount"),
		Resolved:        f.bool(5, "resolved"),
		Disputed:        f.bool(6, "disputed"),
		MarketType:      f.uint8(7, "marketType"),
		Invalidated:     f.bool(8, "invalidated"),
		WinningOptionID: f.uint64(9, "winningOptionId"),
		Creator:         f.address(10, "creator"),
	}
	if f.err != nil {
		return MarketInfo{}, f.err
	}
	return info, nil
}

// MarketOption returns one option of a market.
func (r *Reader) MarketOption(ctx context.Context, marketID, optionID uint64) (MarketOption, error) {
	values, err := r.call(ctx, "getMarketOption", new(big.Int).SetUint64(marketID), new(big.Int).SetUint64(optionID))
	if err != nil {
		return MarketOption{}, err
	}
	f := newFields("getMarketOption", values, 6)
	option := MarketOption{
		Name:         f.string(0, "name"),
		Description:  f.string(1, "description"),
		TotalShares:  f.bigInt(2, "totalShares"),
		TotalVolume:  f.bigInt(3, "totalVolume"),
		CurrentPrice: f.bigInt(4, "currentPrice"),
		IsActive:     f.bool(5, "isActive"),
	}
	if f.err != nil {
		return MarketOption{}, f.err
	}
	return option, nil
}

// MarketFinancials returns liquidity and fee state of a market.
func (r *Reader) MarketFinancials(ctx context.Context, marketID uint64) (MarketFinancials, error) {
	values, err := r.call(ctx, "getMarketFinancials", new(big.Int).SetUint64(marketID))
	if err != nil {
		return MarketFinancials{}, err
	}
	f := newFields("getMarketFinancials", values, 7)
	fin := MarketFinancials{
		Creator:               f.address(0, "creator"),
		AdminInitialLiquidity: f.bigInt(1, "adminInitialLiquidity"),
		UserLiquidity:         f.bigInt(2, "userLiquidity"),
		TotalVolume:           f.bigInt(3, "totalVolume"),
		PlatformFeesCollected: f.bigInt(4, "platformFeesCollected"),
		AdminLiquidityClaimed: f.bool(5, "adminLiquidityClaimed"),
		FeesUnlocked:          f.bool(6, "feesUnlocked"),
	}
	if f.err != nil {
		return MarketFinancials{}, f.err
	}
	return fin, nil
}

// FreeMarketInfo returns the prize pool state of a free-entry market.
func (r *Reader) FreeMarketInfo(ctx context.Context, marketID uint64) (FreeMarketInfo, error) {
	values, err := r.call(ctx, "getFreeMarketInfo", new(big.Int).SetUint64(marketID))
	if err != nil {
		return FreeMarketInfo{}, err
	}
	f := newFields("getFreeMarketInfo", values, 7)
	free := FreeMarketInfo{
		MaxFreeParticipants:     f.bigInt(0, "maxFreeParticipants"),
		TokensPerParticipant:    f.bigInt(1, "tokensPerParticipant"),
		CurrentFreeParticipants: f.bigInt(2, "currentFreeParticipants"),
		TotalPrizePool:          f.bigInt(3, "totalPrizePool"),
		RemainingPrizePool:      f.bigInt(4, "remainingPrizePool"),
		IsActive:                f.bool(5, "isActive"),
		PrizePoolWithdrawn:      f.bool(6, "prizePoolWithdrawn"),
	}
	if f.err != nil {
		return FreeMarketInfo{}, f.err
	}
	return free, nil
}

// LPInfo returns the liquidity position of provider on a market.
func (r *Reader) LPInfo(ctx context.Context, marketID uint64, provider common.Address) (LPInfo, error) {
	values, err := r.call(ctx, "getLPInfo", new(big.Int).SetUint64(marketID), provider)
	if err != nil {
		return LPInfo{}, err
	}
	f := newFields("getLPInfo", values, 3)
	lp := LPInfo{
		Contribution:     f.bigInt(0, "contribution"),
		RewardsClaimed:   f.bool(1, "rewardsClaimed"),
		EstimatedRewards: f.bigInt(2, "estimatedRewards"),
	}
	if f.err != nil {
		return LPInfo{}, f.err
	}
	return lp, nil
}

// EligibleWinners asks the contract which candidates are owed a payout.
func (r *Reader) EligibleWinners(ctx context.Context, marketID uint64, candidates []common.Address) (EligibleWinners, error) {
	values, err := r.call(ctx, "getEligibleWinners", new(big.Int).SetUint64(marketID), candidates)
	if err != nil {
		return EligibleWinners{}, err
	}
	f := newFields("getEligibleWinners", values, 2)
	winners := EligibleWinners{
		Recipients: f.addresses(0, "recipients"),
		Amounts:    f.bigInts(1, "amounts"),
	}
	if f.err != nil {
		return EligibleWinners{}, f.err
	}
	if len(winners.Recipients) != len(winners.Amounts) {
		return EligibleWinners{}, decodeErr("getEligibleWinners", "", fmt.Errorf("%d recipients but %d amounts", len(winners.Recipients), len(winners.Amounts)))
	}
	return winners, nil
}

// BettingToken returns the ERC20 token markets are denominated in.
func (r *Reader) BettingToken(ctx context.Context) (common.Address, error) {
	values, err := r.call(ctx, "bettingToken")
	if err != nil {
		return common.Address{}, err
	}
	f := newFields("bettingToken", values, 1)
	token := f.address(0, "token")
	return token, f.err
}

// TokenDecimals returns the betting token's decimals. A successful lookup is cached.
func (r *Reader) TokenDecimals(ctx context.Context) (uint8, error) {
	r.mu.Lock()
	if r.decimals != nil {
		d := *r.decimals
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	token, err := r.BettingToken(ctx)
	if err != nil {
		return 0, err
	}

	erc20, err := erc20DecimalsABI()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 abi: %w", err)
	}
	data, err := erc20.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}
	resp, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}
	values, err := erc20.Unpack("decimals", resp)
	if err != nil {
		return 0, decodeErr("decimals", "", err)
	}
	f := newFields("decimals", values, 1)
	decimals := f.uint8(0, "decimals")
	if f.err != nil {
		return 0, f.err
	}

	r.mu.Lock()
	r.decimals = &decimals
	r.mu.Unlock()
	return decimals, nil
}

func (r *Reader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := r.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &r.address, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, classifyCallError(method, err)
	}
	values, err := r.abi.Unpack(method, resp)
	if err != nil {
		return nil, decodeErr(method, "", err)
	}
	return values, nil
}

// fields decodes positional return values and keeps the first error.
type fields struct {
	method string
	values []interface{}
	err    error
}

func newFields(method string, values []interface{}, want int) *fields {
	f := &fields{method: method, values: values}
	if len(values) != want {
		f.err = decodeErr(method, "", fmt.Errorf("expected %d values, got %d", want, len(values)))
	}
	return f
}

func (f *fields) fail(field string, err error) {
	if f.err == nil {
		f.err = decodeErr(f.method, field, err)
	}
}

func (f *fields) bigInt(i int, name string) *big.Int {
	if f.err != nil {
		return nil
	}
	v, err := asBigInt(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) uint64(i int, name string) uint64 {
	if f.err != nil {
		return 0
	}
	v, err := asUint64(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) uint8(i int, name string) uint8 {
	if f.err != nil {
		return 0
	}
	v, err := asUint8(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) bool(i int, name string) bool {
	if f.err != nil {
		return false
	}
	v, err := asBool(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) string(i int, name string) string {
	if f.err != nil {
		return ""
	}
	v, err := asString(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) address(i int, name string) common.Address {
	if f.err != nil {
		return common.Address{}
	}
	v, err := asAddress(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) addresses(i int, name string) []common.Address {
	if f.err != nil {
		return nil
	}
	v, err := asAddressSlice(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}

func (f *fields) bigInts(i int, name string) []*big.Int {
	if f.err != nil {
		return nil
	}
	v, err := asBigIntSlice(f.values[i])
	if err != nil {
		f.fail(name, err)
	}
	return v
}
