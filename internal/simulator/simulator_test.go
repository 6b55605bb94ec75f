package simulator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DividendDash/internal/model"
)

func TestSimulate_FlatBaseline(t *testing.T) {
	// No growth, no dividends, no contributions: nothing moves.
	result, err := Simulate(model.DCAParameters{
		InitialInvestment: 1000,
		Years:             1,
		StartPrice:        100,
	})
	require.NoError(t, err)

	require.Len(t, result.Years, 1)
	snap := result.Years[0]
	assert.InDelta(t, 10.0, snap.Shares, 1e-12)
	assert.InDelta(t, 100.0, snap.Price, 1e-12)
	assert.InDelta(t, 1000.0, snap.PortfolioValue, 1e-12)
	assert.Zero(t, snap.DividendsThisYear)

	assert.InDelta(t, 10.0, result.Totals.Shares, 1e-12)
	assert.InDelta(t, 1000.0, result.Totals.PortfolioValue, 1e-12)
	assert.Zero(t, result.Totals.DividendsReceived)
}

func TestSimulate_ZeroThresholdReinvestsEverything(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment:   10000,
		MonthlyContribution: 500,
		Years:               10,
		StartPrice:          100,
		StartYield:          0.04,
		PriceGrowth:         0.08,
		DividendGrowth:      0.05,
		ReinvestThreshold:   0,
	})
	require.NoError(t, err)

	assert.InDelta(t, result.Totals.DividendsReceived, result.Totals.DividendsReinvested, 1e-9,
		"with no threshold every dividend is reinvested the month it lands")
	assert.Zero(t, result.Totals.CashBuffer)
	for _, snap := range result.Years {
		assert.Zero(t, snap.CashBuffer)
	}
}

func TestSimulate_ThresholdBuffersCash(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment: 10000,
		Years:             3,
		StartPrice:        100,
		StartYield:        0.03,
		ReinvestThreshold: 1e9, // never reached
	})
	require.NoError(t, err)

	assert.Zero(t, result.Totals.DividendsReinvested)
	assert.InDelta(t, result.Totals.DividendsReceived, result.Totals.CashBuffer, 1e-9)
	assert.InDelta(t, 100.0, result.Totals.Shares, 1e-12, "shares never change without contributions or reinvestment")
}

func TestSimulate_SharesNeverDecrease(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment:   5000,
		MonthlyContribution: 200,
		Years:               8,
		StartPrice:          50,
		StartYield:          0.05,
		PriceGrowth:         0.06,
		DividendGrowth:      0.04,
		ReinvestThreshold:   100,
		Crashes:             []model.CrashEvent{{Year: 3, Drop: 0.4, RecoveryMonths: 18}},
	})
	require.NoError(t, err)

	prev := 0.0
	for _, snap := range result.Years {
		assert.GreaterOrEqual(t, snap.Shares, prev)
		prev = snap.Shares
	}
}

func TestSimulate_InvestedAccounting(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment:   1000,
		MonthlyContribution: 100,
		Years:               2,
		StartPrice:          10,
		PriceGrowth:         0.05,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1000+24*100, result.Totals.Invested, 1e-9)
	assert.InDelta(t, 1000+12*100, result.Years[0].Invested, 1e-9)
}

func TestPriceAt_CrashOverlay(t *testing.T) {
	p := &model.DCAParameters{
		StartPrice:  100,
		PriceGrowth: 0.07,
		Crashes:     []model.CrashEvent{{Year: 5, Drop: 0.3, RecoveryMonths: 12}},
	}

	// First active month: the full drop applies.
	m := (5-1)*12 + 1 // 49
	assert.InDelta(t, undisturbedPrice(p, m)*0.7, priceAt(p, m), 1e-9)

	// Late in the recovery window the price sits strictly between the
	// crashed and the undisturbed curve, approaching the latter.
	last := m + 11
	crashed := undisturbedPrice(p, last) * 0.7
	undisturbed := undisturbedPrice(p, last)
	got := priceAt(p, last)
	assert.Greater(t, got, crashed)
	assert.Less(t, got, undisturbed)
	assert.InDelta(t, undisturbed*(0.7+0.3*11.0/12.0), got, 1e-9)

	// Outside the window the overlay is gone.
	assert.InDelta(t, undisturbedPrice(p, m+12), priceAt(p, m+12), 1e-9)
	assert.InDelta(t, undisturbedPrice(p, m-1), priceAt(p, m-1), 1e-9)
}

func TestSimulate_SnapshotPriceHonorsCrash(t *testing.T) {
	// Year 1 ends inside the crash window; the snapshot must use the
	// overlay-aware price, same as the monthly loop.
	p := model.DCAParameters{
		InitialInvestment: 1000,
		Years:             1,
		StartPrice:        100,
		Crashes:           []model.CrashEvent{{Year: 1, Drop: 0.5, RecoveryMonths: 24}},
	}
	result, err := Simulate(p)
	require.NoError(t, err)
	assert.InDelta(t, priceAt(&p, 12), result.Years[0].Price, 1e-12)
	assert.Less(t, result.Years[0].Price, 100.0)
}

func TestSimulate_ZeroYearHorizon(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment: 1000,
		StartPrice:        100,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Years)
	assert.InDelta(t, 1000.0, result.Totals.Invested, 1e-12)
	assert.InDelta(t, 1000.0, result.Totals.PortfolioValue, 1e-12)
}

func TestSimulate_DividendGrowthSteps(t *testing.T) {
	// Flat price, yield only: yearly dividend income grows with the
	// dividend growth rate.
	result, err := Simulate(model.DCAParameters{
		InitialInvestment: 12000,
		Years:             2,
		StartPrice:        100,
		StartYield:        0.05,
		DividendGrowth:    0.10,
		ReinvestThreshold: 1e12,
	})
	require.NoError(t, err)
	require.Len(t, result.Years, 2)
	y1 := result.Years[0].DividendsThisYear
	y2 := result.Years[1].DividendsThisYear
	assert.InDelta(t, 1.10, y2/y1, 1e-9)
}

func TestSimulate_RejectedConfigurations(t *testing.T) {
	base := model.DCAParameters{InitialInvestment: 1000, Years: 5, StartPrice: 100}

	tests := []struct {
		name   string
		mutate func(*model.DCAParameters)
	}{
		{"zero start price", func(p *model.DCAParameters) { p.StartPrice = 0 }},
		{"negative start price", func(p *model.DCAParameters) { p.StartPrice = -10 }},
		{"negative years", func(p *model.DCAParameters) { p.Years = -1 }},
		{"negative contribution", func(p *model.DCAParameters) { p.MonthlyContribution = -5 }},
		{"negative threshold", func(p *model.DCAParameters) { p.ReinvestThreshold = -1 }},
		{"negative yield", func(p *model.DCAParameters) { p.StartYield = -0.01 }},
		{"full wipeout crash", func(p *model.DCAParameters) {
			p.Crashes = []model.CrashEvent{{Year: 2, Drop: 1.0, RecoveryMonths: 12}}
		}},
		{"negative crash drop", func(p *model.DCAParameters) {
			p.Crashes = []model.CrashEvent{{Year: 2, Drop: -0.1, RecoveryMonths: 12}}
		}},
		{"zero recovery", func(p *model.DCAParameters) {
			p.Crashes = []model.CrashEvent{{Year: 2, Drop: 0.3, RecoveryMonths: 0}}
		}},
		{"crash year zero", func(p *model.DCAParameters) {
			p.Crashes = []model.CrashEvent{{Year: 0, Drop: 0.3, RecoveryMonths: 12}}
		}},
		{"overlapping crash windows", func(p *model.DCAParameters) {
			p.Crashes = []model.CrashEvent{
				{Year: 2, Drop: 0.3, RecoveryMonths: 24},
				{Year: 3, Drop: 0.2, RecoveryMonths: 12},
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := Simulate(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}
}

func TestSimulate_NegativeCAGRIsAccepted(t *testing.T) {
	result, err := Simulate(model.DCAParameters{
		InitialInvestment: 1000,
		Years:             3,
		StartPrice:        100,
		PriceGrowth:       -0.05,
	})
	require.NoError(t, err)
	assert.Less(t, result.Totals.FinalPrice, 100.0)
	assert.False(t, math.IsNaN(result.Totals.PortfolioValue))
}
