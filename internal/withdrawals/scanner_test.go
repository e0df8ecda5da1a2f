package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketScope/internal/contract"
	"marketScope/internal/model"
)

var (
	alice = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type fakeReader struct {
	count      uint64
	infos      map[uint64]contract.MarketInfo
	financials map[uint64]contract.MarketFinancials
	free       map[uint64]contract.FreeMarketInfo
	lp         map[uint64]contract.LPInfo
	infoErr    map[uint64]error

	mu        sync.Mutex
	freeCalls int
}

func (f *fakeReader) MarketCount(context.Context) (uint64, error) { return f.count, nil }

func (f *fakeReader) MarketInfo(_ context.Context, id uint64) (contract.MarketInfo, error) {
	if err := f.infoErr[id]; err != nil {
		return contract.MarketInfo{}, err
	}
	info := f.infos[id]
	info.MarketID = id
	return info, nil
}

func (f *fakeReader) MarketFinancials(_ context.Context, id uint64) (contract.MarketFinancials, error) {
	fin, ok := f.financials[id]
	if !ok {
		return contract.MarketFinancials{AdminInitialLiquidity: big.NewInt(0)}, nil
	}
	return fin, nil
}

func (f *fakeReader) FreeMarketInfo(_ context.Context, id uint64) (contract.FreeMarketInfo, error) {
	f.mu.Lock()
	f.freeCalls++
	f.mu.Unlock()
	return f.free[id], nil
}

func (f *fakeReader) LPInfo(_ context.Context, id uint64, _ common.Address) (contract.LPInfo, error) {
	info, ok := f.lp[id]
	if !ok {
		return contract.LPInfo{Contribution: big.NewInt(0), EstimatedRewards: big.NewInt(0)}, nil
	}
	return info, nil
}

func freePool(withdrawn bool) contract.FreeMarketInfo {
	return contract.FreeMarketInfo{
		MaxFreeParticipants:     big.NewInt(100),
		TokensPerParticipant:    big.NewInt(5),
		CurrentFreeParticipants: big.NewInt(40),
		PrizePoolWithdrawn:      withdrawn,
	}
}

func TestScanEmptyContract(t *testing.T) {
	report, err := NewScanner(&fakeReader{}, 0, nil).Scan(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalCount)
	assert.Empty(t, report.AdminLiquidity)
	assert.Equal(t, "0", report.Total.String())
}

func TestUnusedPrizePool(t *testing.T) {
	assert.Equal(t, "300", UnusedPrizePool(freePool(false)).String())
	assert.Equal(t, "0", UnusedPrizePool(contract.FreeMarketInfo{}).String())
}

func TestScanPrizePoolRequiresResolvedFreeMarket(t *testing.T) {
	reader := &fakeReader{
		count: 4,
		infos: map[uint64]contract.MarketInfo{
			0: {Creator: alice, Resolved: true, MarketType: contract.MarketTypeFree},
			1: {Creator: alice, Resolved: false, MarketType: contract.MarketTypeFree},
			2: {Creator: alice, Resolved: true, MarketType: contract.MarketTypePaid},
			3: {Creator: alice, Resolved: true, MarketType: contract.MarketTypeFree},
		},
		free: map[uint64]contract.FreeMarketInfo{
			0: freePool(false),
			1: freePool(false),
			2: freePool(false),
			3: freePool(true),
		},
	}

	report, err := NewScanner(reader, 2, nil).Scan(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, report.PrizePool, 1)
	assert.Equal(t, uint64(0), report.PrizePool[0].MarketID)
	assert.Equal(t, "300", report.PrizePool[0].Amount.String())
	assert.Equal(t, "300", report.TotalPrizePool.String())
	assert.Equal(t, 2, reader.freeCalls)
}

func TestScanCategoriesAndSkips(t *testing.T) {
	reader := &fakeReader{
		count: 12,
		infos: map[uint64]contract.MarketInfo{},
		financials: map[uint64]contract.MarketFinancials{
			1:  {AdminInitialLiquidity: big.NewInt(1000)},
			2:  {AdminInitialLiquidity: big.NewInt(2000), AdminLiquidityClaimed: true},
			11: {AdminInitialLiquidity: big.NewInt(50)},
		},
		lp: map[uint64]contract.LPInfo{
			1:  {Contribution: big.NewInt(10), EstimatedRewards: big.NewInt(7)},
			5:  {Contribution: big.NewInt(10), EstimatedRewards: big.NewInt(9), RewardsClaimed: true},
			6:  {Contribution: big.NewInt(0), EstimatedRewards: big.NewInt(9)},
			10: {Contribution: big.NewInt(3), EstimatedRewards: big.NewInt(4)},
		},
		infoErr: map[uint64]error{
			3: fmt.Errorf("wrapped: %w", contract.ErrMarketNotFound),
			4: errors.New("connection reset"),
		},
	}
	for id := uint64(0); id < 12; id++ {
		creator := bob
		if id == 1 || id == 2 || id == 11 {
			creator = alice
		}
		reader.infos[id] = contract.MarketInfo{Creator: creator, Question: fmt.Sprintf("Q%d", id)}
	}

	report, err := NewScanner(reader, 5, nil).Scan(context.Background(), alice)
	require.NoError(t, err)

	require.Len(t, report.AdminLiquidity, 2)
	assert.Equal(t, uint64(1), report.AdminLiquidity[0].MarketID)
	assert.Equal(t, uint64(11), report.AdminLiquidity[1].MarketID)
	assert.Equal(t, "1050", report.TotalAdminLiquidity.String())

	require.Len(t, report.LPRewards, 2)
	assert.Equal(t, uint64(1), report.LPRewards[0].MarketID)
	assert.Equal(t, uint64(10), report.LPRewards[1].MarketID)
	assert.Equal(t, model.WithdrawalLPRewards, report.LPRewards[1].Type)
	assert.Equal(t, "11", report.TotalLPRewards.String())

	assert.Equal(t, "1061", report.Total.String())
	assert.Equal(t, 4, report.TotalCount)
}

func TestScanStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &fakeReader{
		count:   3,
		infoErr: map[uint64]error{0: context.Canceled, 1: context.Canceled, 2: context.Canceled},
	}
	_, err := NewScanner(reader, 2, nil).Scan(ctx, alice)
	assert.ErrorIs(t, err, context.Canceled)
}
