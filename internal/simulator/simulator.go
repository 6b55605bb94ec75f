// Package simulator projects long-horizon dollar-cost averaging with
// dividend reinvestment, month by month, under a compound growth trajectory
// with optional crash shocks. The engine is pure and scenario-agnostic;
// callers pick the growth-rate pairs.
package simulator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"DividendDash/internal/model"
)

// ErrInvalidParameters marks a parameter set rejected before any simulation
// state is created. Match with errors.Is.
var ErrInvalidParameters = errors.New("simulator: invalid parameters")

// Simulate runs one projection over params.Years*12 months and returns
// year-by-year snapshots plus final totals. Validation is eager; a zero-year
// horizon is accepted and produces an empty series.
func Simulate(params model.DCAParameters) (*model.SimulationResult, error) {
	if err := validate(&params); err != nil {
		return nil, err
	}

	shares := params.InitialInvestment / params.StartPrice
	invested := params.InitialInvestment
	var cashBuffer, received, reinvested, yearDividends, annualRate float64

	months := params.Years * 12
	result := &model.SimulationResult{
		Years: make([]model.YearSnapshot, 0, params.Years),
	}

	for m := 1; m <= months; m++ {
		price := priceAt(&params, m)

		if params.MonthlyContribution > 0 {
			shares += params.MonthlyContribution / price
			invested += params.MonthlyContribution
		}

		yearIndex := (m + 11) / 12
		perShareAnnual := params.StartYield * price *
			math.Pow(1+params.DividendGrowth, float64(yearIndex-1))
		monthly := shares * perShareAnnual / 12
		cashBuffer += monthly
		received += monthly
		yearDividends += monthly

		// The buffer is always converted in full, never partially.
		if cashBuffer > 0 && cashBuffer >= params.ReinvestThreshold {
			shares += cashBuffer / price
			reinvested += cashBuffer
			cashBuffer = 0
		}

		annualRate = shares * perShareAnnual

		if m%12 == 0 {
			value := shares * price
			snap := model.YearSnapshot{
				Year:                 m / 12,
				Shares:               shares,
				Price:                price,
				PortfolioValue:       value,
				Invested:             invested,
				DividendsThisYear:    yearDividends,
				AnnualDividendIncome: annualRate,
				CashBuffer:           cashBuffer,
			}
			if value > 0 {
				snap.Yield = annualRate / value
			}
			result.Years = append(result.Years, snap)
			yearDividends = 0
		}
	}

	finalPrice := params.StartPrice
	if months > 0 {
		finalPrice = priceAt(&params, months)
	}
	result.Totals = model.FinalTotals{
		Invested:              invested,
		Shares:                shares,
		FinalPrice:            finalPrice,
		PortfolioValue:        shares * finalPrice,
		DividendsReceived:     received,
		DividendsReinvested:   reinvested,
		AnnualDividendIncome:  annualRate,
		MonthlyDividendIncome: annualRate / 12,
		CashBuffer:            cashBuffer,
	}
	return result, nil
}

// undisturbedPrice is the price at month m on the pure CAGR trajectory.
func undisturbedPrice(p *model.DCAParameters, m int) float64 {
	return p.StartPrice * math.Pow(1+p.PriceGrowth, float64(m-1)/12)
}

// priceAt applies the crash overlay to the undisturbed price: the full drop
// on the first active month, then a linear recovery toward the undisturbed
// curve over the recovery window. Year-end snapshots reuse this same
// function, so the snapshot curve and the monthly curve never diverge.
func priceAt(p *model.DCAParameters, m int) float64 {
	price := undisturbedPrice(p, m)
	for i := range p.Crashes {
		c := &p.Crashes[i]
		start := (c.Year-1)*12 + 1
		if m < start || m >= start+c.RecoveryMonths {
			continue
		}
		elapsed := m - start
		factor := (1 - c.Drop) + c.Drop*float64(elapsed)/float64(c.RecoveryMonths)
		return price * factor
	}
	return price
}

func validate(p *model.DCAParameters) error {
	if p.StartPrice <= 0 {
		return fmt.Errorf("%w: start price must be positive, got %g", ErrInvalidParameters, p.StartPrice)
	}
	if p.Years < 0 {
		return fmt.Errorf("%w: years must not be negative, got %d", ErrInvalidParameters, p.Years)
	}
	if p.InitialInvestment < 0 {
		return fmt.Errorf("%w: initial investment must not be negative", ErrInvalidParameters)
	}
	if p.MonthlyContribution < 0 {
		return fmt.Errorf("%w: monthly contribution must not be negative", ErrInvalidParameters)
	}
	if p.StartYield < 0 {
		return fmt.Errorf("%w: start yield must not be negative", ErrInvalidParameters)
	}
	if p.ReinvestThreshold < 0 {
		return fmt.Errorf("%w: reinvest threshold must not be negative", ErrInvalidParameters)
	}

	for i := range p.Crashes {
		c := &p.Crashes[i]
		if c.Year < 1 {
			return fmt.Errorf("%w: crash year must be >= 1, got %d", ErrInvalidParameters, c.Year)
		}
		if c.Drop < 0 || c.Drop >= 1 {
			// A full wipeout would zero the price and poison every later
			// division; reject it up front instead.
			return fmt.Errorf("%w: crash drop must be in [0, 1), got %g", ErrInvalidParameters, c.Drop)
		}
		if c.RecoveryMonths <= 0 {
			return fmt.Errorf("%w: crash recovery months must be positive, got %d", ErrInvalidParameters, c.RecoveryMonths)
		}
	}

	// Overlapping crash windows have no defined stacking semantics.
	windows := make([][2]int, len(p.Crashes))
	for i, c := range p.Crashes {
		start := (c.Year-1)*12 + 1
		windows[i] = [2]int{start, start + c.RecoveryMonths}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i][0] < windows[j][0] })
	for i := 1; i < len(windows); i++ {
		if windows[i][0] < windows[i-1][1] {
			return fmt.Errorf("%w: crash windows overlap", ErrInvalidParameters)
		}
	}
	return nil
}
