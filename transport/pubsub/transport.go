package pubsub

import (
	"context"
	"encoding/json"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/core/events"
	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
)

// EventPublisher announces finished analyses as domain events through the
// event bus installed with events.ReplaceGlobals.
type EventPublisher struct{}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// PUB analyses.<id>.completed
func (p *EventPublisher) AnalysisCompleted(a *analysis.Analysis) error {
	store := events.NewEventStore()
	store.AddEvent(analysis.NewAnalysisCompletedEvent(a))
	return store.Notify()
}

func AnalyzeHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req devguide.AnalyzeRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

func FixHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req devguide.FixRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error("417", err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

// AddEndpoints registers the analyze and fix endpoints on a micro service
// under the given group, e.g. devguide.analyze.
func AddEndpoints(srv micro.Service, group string, endpoints devguide.EndpointSet) error {
	root := srv.AddGroup(group)

	// SUB devguide.analyze
	if err := root.AddEndpoint("analyze", AnalyzeHandler(endpoints.Analyze)); err != nil {
		return err
	}

	// SUB devguide.fix
	return root.AddEndpoint("fix", FixHandler(endpoints.Fix))
}
