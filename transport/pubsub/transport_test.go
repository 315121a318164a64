package pubsub

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/suite"

	"github.com/flarexio/core/events"
	"github.com/flarexio/core/pubsub"
	"github.com/flarexio/devguide"
	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
	"github.com/flarexio/devguide/fixer"
	"github.com/flarexio/devguide/persistence/inmem"
)

type fakeRequest struct {
	micro.Request
	data []byte

	code string
	desc string
	resp []byte
}

func (r *fakeRequest) Data() []byte { return r.data }

func (r *fakeRequest) Error(code, description string, data []byte, opts ...micro.RespondOpt) error {
	r.code = code
	r.desc = description
	return nil
}

func (r *fakeRequest) RespondJSON(v any, opts ...micro.RespondOpt) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.resp = bs
	return nil
}

type recordingPubSub struct {
	topic string
	data  []byte
	err   error
}

func (ps *recordingPubSub) Publish(topic string, data []byte) error {
	if ps.err != nil {
		return ps.err
	}

	ps.topic = topic
	ps.data = data
	return nil
}

func (ps *recordingPubSub) Subscribe(topic string, callback pubsub.MessageHandler) error {
	return nil
}

func (ps *recordingPubSub) Close() error {
	return nil
}

type transportTestSuite struct {
	suite.Suite
	endpoints devguide.EndpointSet
}

func (suite *transportTestSuite) SetupTest() {
	analyses, err := inmem.NewAnalysisRepository()
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	svc := devguide.NewService(analyses, fixer.New(nil), nil, conf.Cache{TTL: time.Minute}, nil)
	suite.endpoints = devguide.NewEndpointSet(svc)
}

func (suite *transportTestSuite) TestAnalyzeHandler() {
	r := &fakeRequest{data: []byte(`{"code":"let x = 1;","language":"javascript"}`)}

	AnalyzeHandler(suite.endpoints.Analyze)(r)

	suite.Empty(r.code)

	var a analysis.Analysis
	suite.Require().NoError(json.Unmarshal(r.resp, &a))
	suite.Equal(analysis.JavaScript, a.Language)
	suite.Equal(100, a.CodeQualityScore)
}

func (suite *transportTestSuite) TestAnalyzeHandlerBadRequest() {
	r := &fakeRequest{data: []byte(`{`)}

	AnalyzeHandler(suite.endpoints.Analyze)(r)

	suite.Equal("400", r.code)
	suite.Nil(r.resp)
}

func (suite *transportTestSuite) TestFixHandler() {
	r := &fakeRequest{data: []byte(`{"code":"var a = 1","language":"javascript"}`)}

	FixHandler(suite.endpoints.Fix)(r)

	suite.Empty(r.code)

	var result fixer.Result
	suite.Require().NoError(json.Unmarshal(r.resp, &result))
	suite.Equal("let a = 1;", result.FixedCode)
	suite.Equal(fixer.SourceHeuristic, result.Source)
}

func (suite *transportTestSuite) TestEventPublisher() {
	ps := new(recordingPubSub)
	events.ReplaceGlobals(ps)
	defer events.ReplaceGlobals(nil)

	a := analysis.Analyze("let x = 1;", analysis.JavaScript)

	err := NewEventPublisher().AnalysisCompleted(a)
	suite.Require().NoError(err)

	suite.Equal("analyses."+a.ID.String()+".completed", ps.topic)

	var published analysis.Analysis
	suite.Require().NoError(json.Unmarshal(ps.data, &published))
	suite.Equal(a.ID, published.ID)
	suite.Equal(a.Language, published.Language)
	suite.Equal(a.CodeQualityScore, published.CodeQualityScore)
}

func (suite *transportTestSuite) TestEventPublisherError() {
	ps := &recordingPubSub{err: errors.New("bus down")}
	events.ReplaceGlobals(ps)
	defer events.ReplaceGlobals(nil)

	a := analysis.Analyze("let x = 1;", analysis.JavaScript)

	err := NewEventPublisher().AnalysisCompleted(a)
	suite.EqualError(err, "bus down")
}

func (suite *transportTestSuite) TestAnalyzeFactoryUnreachable() {
	factory := AnalyzeFactory("nats://127.0.0.1:1")

	_, closer, err := factory("devguide")
	suite.Error(err)
	suite.Nil(closer)
}

func TestTransportTestSuite(t *testing.T) {
	suite.Run(t, new(transportTestSuite))
}
