package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Trade is a typed view of a TradeExecuted row.
type Trade struct {
	MarketID    uint64
	OptionID    uint64
	Buyer       common.Address
	Seller      common.Address
	Price       *big.Int
	Quantity    *big.Int
	TradeID     *big.Int
	BlockNumber uint64
	LogIndex    uint64
	Timestamp   uint64
	TxHash      string
}

// IsOptionA reports whether the trade bought the first market option.
func (t Trade) IsOptionA() bool {
	return t.OptionID == 0
}

// FreeClaim is a typed view of a FreeTokensClaimed row.
type FreeClaim struct {
	MarketID    uint64
	User        common.Address
	Tokens      *big.Int
	BlockNumber uint64
	Timestamp   uint64
	TxHash      string
}
