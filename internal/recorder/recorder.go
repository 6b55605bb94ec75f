package recorder

import (
	"time"

	"DividendDash/internal/model"
)

// FetchRun summarizes one batch-fetch run for the history log.
type FetchRun struct {
	ID        string
	Source    string
	Requested int
	Returned  int
	FromCache bool
	AvgYield  float64
	AvgPrice  float64
	Elapsed   time.Duration
}

// SimulationRun records the parameters and outcome of one simulation.
type SimulationRun struct {
	ID       string
	Scenario string
	Params   model.DCAParameters
	Totals   model.FinalTotals
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordFetch(run *FetchRun) error
	RecordSimulation(run *SimulationRun) error
	Close() error
}
