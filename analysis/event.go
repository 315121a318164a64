package analysis

import (
	"github.com/flarexio/core/events"
)

const AnalysisCompleted = "analysis_completed"

var _ events.DomainEvent = (*AnalysisCompletedEvent)(nil)

// AnalysisCompletedEvent is published once an analysis is stored. It
// serializes as the analysis itself.
type AnalysisCompletedEvent struct {
	*Analysis
}

func NewAnalysisCompletedEvent(a *Analysis) *AnalysisCompletedEvent {
	return &AnalysisCompletedEvent{a}
}

func (e *AnalysisCompletedEvent) EventName() string {
	return AnalysisCompleted
}

// Topic is analyses.<id>.completed.
func (e *AnalysisCompletedEvent) Topic() string {
	return "analyses." + e.ID.String() + ".completed"
}
