package model

// CrashEvent is a configured market shock: the price drops by Drop at the
// start of Year and recovers linearly toward the undisturbed growth curve
// over RecoveryMonths.
type CrashEvent struct {
	Year           int     `json:"year"`
	Drop           float64 `json:"drop"`
	RecoveryMonths int     `json:"recovery_months"`
}

// DCAParameters is the immutable input of one simulation run.
// Growth rates are annual; yields and drops are fractions.
type DCAParameters struct {
	InitialInvestment   float64      `json:"initial_investment"`
	MonthlyContribution float64      `json:"monthly_contribution"`
	Years               int          `json:"years"`
	StartPrice          float64      `json:"start_price"`
	StartYield          float64      `json:"start_yield"`
	PriceGrowth         float64      `json:"price_growth"`
	DividendGrowth      float64      `json:"dividend_growth"`
	ReinvestThreshold   float64      `json:"reinvest_threshold"`
	Crashes             []CrashEvent `json:"crashes,omitempty"`
}

// YearSnapshot captures the simulation state at the close of a year.
type YearSnapshot struct {
	Year                 int     `json:"year"`
	Shares               float64 `json:"shares"`
	Price                float64 `json:"price"`
	PortfolioValue       float64 `json:"portfolio_value"`
	Invested             float64 `json:"invested"`
	DividendsThisYear    float64 `json:"dividends_this_year"`
	AnnualDividendIncome float64 `json:"annual_dividend_income"`
	Yield                float64 `json:"yield"`
	CashBuffer           float64 `json:"cash_buffer"`
}

// FinalTotals summarizes the run at horizon end.
type FinalTotals struct {
	Invested              float64 `json:"invested"`
	Shares                float64 `json:"shares"`
	FinalPrice            float64 `json:"final_price"`
	PortfolioValue        float64 `json:"portfolio_value"`
	DividendsReceived     float64 `json:"dividends_received"`
	DividendsReinvested   float64 `json:"dividends_reinvested"`
	AnnualDividendIncome  float64 `json:"annual_dividend_income"`
	MonthlyDividendIncome float64 `json:"monthly_dividend_income"`
	CashBuffer            float64 `json:"cash_buffer"`
}

// SimulationResult is the full output of one simulation run.
type SimulationResult struct {
	Years  []YearSnapshot `json:"years"`
	Totals FinalTotals    `json:"totals"`
}
