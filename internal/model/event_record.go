package model

// Event type names as emitted by the market contract.
const (
	EventMarketCreated            = "MarketCreated"
	EventTradeExecuted            = "TradeExecuted"
	EventFreeTokensClaimed        = "FreeTokensClaimed"
	EventLiquidityAdded           = "LiquidityAdded"
	EventMarketResolved           = "MarketResolved"
	EventMarketDisputed           = "MarketDisputed"
	EventMarketInvalidated        = "MarketInvalidated"
	EventClaimed                  = "Claimed"
	EventAdminLiquidityWithdrawn  = "AdminLiquidityWithdrawn"
	EventUnusedPrizePoolWithdrawn = "UnusedPrizePoolWithdrawn"
	EventLPRewardsClaimed         = "LPRewardsClaimed"
	EventBatchWinningsDistributed = "BatchWinningsDistributed"
)

// EventRecord is one append-only row derived from one contract log.
//
// Params holds every declared event parameter by its ABI name. Addresses are
// checksummed hex, integers are base-10 strings, and arrays keep their order.
type EventRecord struct {
	ID              string                 `json:"id"`
	EventType       string                 `json:"event_type"`
	MarketID        *uint64                `json:"market_id,omitempty"`
	ChainID         uint64                 `json:"chain_id"`
	Contract        string                 `json:"contract"`
	Params          map[string]interface{} `json:"params"`
	BlockNumber     uint64                 `json:"block_number"`
	BlockHash       string                 `json:"block_hash"`
	BlockTimestamp  uint64                 `json:"block_timestamp"`
	TransactionHash string                 `json:"transaction_hash"`
	LogIndex        uint64                 `json:"log_index"`
}
