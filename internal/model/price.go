package model

// CurrentPrice is the live quote of a binary market.
type CurrentPrice struct {
	CurrentPriceA float64    `json:"currentPriceA"`
	CurrentPriceB float64    `json:"currentPriceB"`
	TotalShares   string     `json:"totalShares"`
	LastTrade     *LastTrade `json:"lastTrade"`
	Timestamp     int64      `json:"timestamp"`
}

// LastTrade summarises the most recent trade of a market.
type LastTrade struct {
	OptionID  uint64 `json:"optionId"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Timestamp uint64 `json:"timestamp"`
	TxHash    string `json:"txHash"`
}
