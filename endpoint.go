package devguide

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/devguide/analysis"
)

var ErrInvalidRequest = errors.New("invalid request")

type EndpointSet struct {
	Analyze    endpoint.Endpoint
	Fix        endpoint.Endpoint
	Report     endpoint.Endpoint
	HTMLReport endpoint.Endpoint
	Analysis   endpoint.Endpoint
	Analyses   endpoint.Endpoint
	Status     endpoint.Endpoint
}

func NewEndpointSet(svc Service) EndpointSet {
	return EndpointSet{
		Analyze:    AnalyzeEndpoint(svc),
		Fix:        FixEndpoint(svc),
		Report:     ReportEndpoint(svc),
		HTMLReport: HTMLReportEndpoint(svc),
		Analysis:   AnalysisEndpoint(svc),
		Analyses:   AnalysesEndpoint(svc),
		Status:     StatusEndpoint(svc),
	}
}

type AnalyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func AnalyzeEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(AnalyzeRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		a, err := svc.Analyze(req.Code, req.Language)
		if err != nil {
			return nil, err
		}

		return a, nil
	}
}

type FixRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func FixEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(FixRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		result, err := svc.Fix(ctx, req.Code, req.Language)
		if err != nil {
			return nil, err
		}

		return result, nil
	}
}

type ReportRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func ReportEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ReportRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		r, err := svc.Report(req.Code, req.Language)
		if err != nil {
			return nil, err
		}

		return r, nil
	}
}

func HTMLReportEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(ReportRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		r, err := svc.HTMLReport(req.Code, req.Language)
		if err != nil {
			return nil, err
		}

		return r, nil
	}
}

func AnalysisEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(analysis.AnalysisID)
		if !ok {
			return nil, ErrInvalidRequest
		}

		a, err := svc.Analysis(id)
		if err != nil {
			return nil, err
		}

		return a, nil
	}
}

func AnalysesEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		limit, ok := request.(int)
		if !ok {
			return nil, ErrInvalidRequest
		}

		analyses, err := svc.Analyses(limit)
		if err != nil {
			return nil, err
		}

		return analyses, nil
	}
}

func StatusEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		return svc.Status(), nil
	}
}
