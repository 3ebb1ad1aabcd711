package domain

// StockIndex is one polled market index.
type StockIndex struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	MarketOpen    bool    `json:"isMarketOpen"`
}

// StockSnapshot aggregates the domestic index with whichever foreign indices
// answered this poll; failed indices are simply absent.
type StockSnapshot struct {
	Taiwan     *StockIndex  `json:"taiwan"`
	US         []StockIndex `json:"us"`
	LastUpdate string       `json:"lastUpdate"`
}
