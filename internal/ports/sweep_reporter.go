package ports

import "time"

type SweepReport struct {
	Pass      int
	At        time.Time
	Duration  time.Duration
	Evicted   int
	Stale     int
	Failed    int
	Remaining int
}

// SweepReporter receives the outcome of every background sweep pass. Failures
// never reach the callers that touch page maps, only this reporter.
type SweepReporter interface {
	SweepCompleted(report SweepReport)
	SweepFailed(err error)
}
