// Package analytics aggregates a normalized stock list into portfolio
// summary statistics. All functions are pure and never fail on
// degenerate-but-well-typed input.
package analytics

import (
	"gonum.org/v1/gonum/stat"

	"DividendDash/internal/model"
)

// Compute derives portfolio statistics over the valid (price > 0) subset of
// records. Averages are unweighted arithmetic means; the system has no
// notion of position size. An empty valid subset yields zero stats, a nil
// top yielder and an empty histogram.
func Compute(records []model.StockRecord) model.PortfolioStats {
	stats := model.PortfolioStats{
		SectorDistribution: make(map[string]int),
	}

	var yields, prices []float64
	var top *model.StockRecord
	for i := range records {
		r := &records[i]
		if !r.Valid() {
			continue
		}
		yields = append(yields, r.DividendYield)
		prices = append(prices, r.Price)
		stats.TotalDividend += r.AnnualDividend

		sector := r.Sector
		if sector == "" {
			sector = "Unknown"
		}
		stats.SectorDistribution[sector]++

		// Strict > keeps the first-encountered record on exact ties.
		if top == nil || r.DividendYield > top.DividendYield {
			top = r
		}
	}

	stats.TotalStocks = len(yields)
	if stats.TotalStocks > 0 {
		stats.AvgYield = stat.Mean(yields, nil)
		stats.AvgPrice = stat.Mean(prices, nil)
		copied := *top
		stats.TopYielder = &copied
	}
	return stats
}
