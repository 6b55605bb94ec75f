package model

// PortfolioStats is the derived summary over a set of stock records.
// It is recomputed on demand and never persisted.
type PortfolioStats struct {
	TotalStocks        int            `json:"total_stocks"`
	AvgYield           float64        `json:"avg_yield"`
	AvgPrice           float64        `json:"avg_price"`
	TotalDividend      float64        `json:"total_dividend"`
	TopYielder         *StockRecord   `json:"top_yielder"`
	SectorDistribution map[string]int `json:"sector_distribution"`
}
