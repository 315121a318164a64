package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/sd"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
)

const DefaultRequestTimeout = 5000 * time.Millisecond

var ErrRemote = errors.New("remote error")

// AnalyzeFactory builds client endpoints for the analyze operation of a
// remote instance; instance is the service group, e.g. "devguide". Each
// endpoint owns a connection that is drained by the returned closer.
func AnalyzeFactory(url string) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		nc, err := nats.Connect(url)
		if err != nil {
			return nil, nil, err
		}

		return AnalyzeEndpoint(nc, instance+".analyze"), drainer{nc}, nil
	}
}

type drainer struct {
	nc *nats.Conn
}

func (d drainer) Close() error {
	return d.nc.Drain()
}

func AnalyzeEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(devguide.AnalyzeRequest)
		if !ok {
			return nil, devguide.ErrInvalidRequest
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
		defer cancel()

		msg, err := nc.RequestWithContext(ctx, topic, data)
		if err != nil {
			return nil, err
		}

		if code := msg.Header.Get(micro.ErrorCodeHeader); code != "" {
			return nil, fmt.Errorf("%w: %s %s", ErrRemote, code, msg.Header.Get(micro.ErrorHeader))
		}

		var a *analysis.Analysis
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			return nil, err
		}

		return a, nil
	}
}
