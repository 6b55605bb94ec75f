package recorder

// NoopRecorder is used when no database path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFetch(_ *FetchRun) error           { return nil }
func (n *NoopRecorder) RecordSimulation(_ *SimulationRun) error { return nil }
func (n *NoopRecorder) Close() error                            { return nil }
