package mapping

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"marketScope/internal/model"
)

// TradeFromRecord parses a TradeExecuted row into a typed trade.
func TradeFromRecord(record model.EventRecord) (model.Trade, error) {
	if record.EventType != model.EventTradeExecuted {
		return model.Trade{}, fmt.Errorf("%w: expected %s, got %s", ErrSchemaMismatch, model.EventTradeExecuted, record.EventType)
	}
	p := params{record: record}
	trade := model.Trade{
		MarketID:    p.uint64("marketId"),
		OptionID:    p.uint64("optionId"),
		Buyer:       p.address("buyer"),
		Seller:      p.address("seller"),
		Price:       p.bigInt("price"),
		Quantity:    p.bigInt("quantity"),
		TradeID:     p.bigInt("tradeId"),
		BlockNumber: record.BlockNumber,
		LogIndex:    record.LogIndex,
		Timestamp:   record.BlockTimestamp,
		TxHash:      record.TransactionHash,
	}
	if p.err != nil {
		return model.Trade{}, p.err
	}
	return trade, nil
}

// FreeClaimFromRecord parses a FreeTokensClaimed row into a typed claim.
func FreeClaimFromRecord(record model.EventRecord) (model.FreeClaim, error) {
	if record.EventType != model.EventFreeTokensClaimed {
		return model.FreeClaim{}, fmt.Errorf("%w: expected %s, got %s", ErrSchemaMismatch, model.EventFreeTokensClaimed, record.EventType)
	}
	p := params{record: record}
	claim := model.FreeClaim{
		MarketID:    p.uint64("marketId"),
		User:        p.address("user"),
		Tokens:      p.bigInt("tokens"),
		BlockNumber: record.BlockNumber,
		Timestamp:   record.BlockTimestamp,
		TxHash:      record.TransactionHash,
	}
	if p.err != nil {
		return model.FreeClaim{}, p.err
	}
	return claim, nil
}

// params reads normalised values and keeps the first failure.
type params struct {
	record model.EventRecord
	err    error
}

func (p *params) str(name string) string {
	if p.err != nil {
		return ""
	}
	raw, ok := p.record.Params[name]
	if !ok {
		p.err = fmt.Errorf("%w: %s missing %s", ErrSchemaMismatch, p.record.EventType, name)
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		// Rows decoded from JSON without UseNumber.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		p.err = fmt.Errorf("%w: %s.%s has type %T", ErrSchemaMismatch, p.record.EventType, name, raw)
		return ""
	}
}

func (p *params) bigInt(name string) *big.Int {
	s := p.str(name)
	if p.err != nil {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		p.err = fmt.Errorf("%w: %s.%s is not an integer", ErrSchemaMismatch, p.record.EventType, name)
		return nil
	}
	return v
}

func (p *params) uint64(name string) uint64 {
	v := p.bigInt(name)
	if p.err != nil {
		return 0
	}
	if v.Sign() < 0 || !v.IsUint64() {
		p.err = fmt.Errorf("%w: %s.%s overflows uint64", ErrSchemaMismatch, p.record.EventType, name)
		return 0
	}
	return v.Uint64()
}

func (p *params) address(name string) common.Address {
	s := p.str(name)
	if p.err != nil {
		return common.Address{}
	}
	if !common.IsHexAddress(s) {
		p.err = fmt.Errorf("%w: %s.%s is not an address", ErrSchemaMismatch, p.record.EventType, name)
		return common.Address{}
	}
	return common.HexToAddress(s)
}
