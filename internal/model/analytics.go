package model

// MarketAnalytics is the price and volume history of one market.
type MarketAnalytics struct {
	MarketID        uint64        `json:"marketId"`
	TimeRange       string        `json:"timeRange"`
	PriceHistory    []PricePoint  `json:"priceHistory"`
	VolumeHistory   []VolumePoint `json:"volumeHistory"`
	TotalVolume     float64       `json:"totalVolume"`
	TotalTrades     int           `json:"totalTrades"`
	PriceChange24h  float64       `json:"priceChange24h"`
	VolumeChange24h float64       `json:"volumeChange24h"`
	LastUpdated     int64         `json:"lastUpdated"`
}

// PricePoint is the cumulative implied probability at the end of a day.
type PricePoint struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	OptionA   float64 `json:"optionA"`
	OptionB   float64 `json:"optionB"`
	Volume    float64 `json:"volume"`
	Trades    int     `json:"trades"`
}

// VolumePoint is the traded volume of a single day.
type VolumePoint struct {
	Date    string  `json:"date"`
	Volume  float64 `json:"volume"`
	VolumeA float64 `json:"volumeA"`
	VolumeB float64 `json:"volumeB"`
	Trades  int     `json:"trades"`
}
