package devguide

import (
	"context"
	"strings"
	"unicode"

	"github.com/patrickmn/go-cache"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/conf"
	"github.com/flarexio/devguide/fixer"
	"github.com/flarexio/devguide/llm"
	"github.com/flarexio/devguide/report"
)

const DefaultListLimit = 20

type Service interface {
	Analyze(code string, language string) (*analysis.Analysis, error)
	Fix(ctx context.Context, code string, language string) (*fixer.Result, error)
	Report(code string, language string) (*report.Report, error)
	HTMLReport(code string, language string) (*report.Report, error)
	Analysis(id analysis.AnalysisID) (*analysis.Analysis, error)
	Analyses(limit int) ([]*analysis.Analysis, error)
	Status() Status
}

// Status reports the configuration of every LLM provider, keyed by name.
type Status map[string]llm.Status

type EventPublisher interface {
	AnalysisCompleted(a *analysis.Analysis) error
}

type ServiceMiddleware func(Service) Service

func NewService(analyses analysis.Repository, f *fixer.Fixer, providers []llm.Provider, cfg conf.Cache, events EventPublisher) Service {
	return &service{
		analyses:  analyses,
		fixer:     f,
		providers: providers,
		cache:     cache.New(cfg.TTL, 2*cfg.TTL),
		events:    events,
	}
}

type service struct {
	analyses  analysis.Repository
	fixer     *fixer.Fixer
	providers []llm.Provider
	cache     *cache.Cache
	events    EventPublisher
}

func requestedLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return analysis.Auto
	}
	return language
}

func (svc *service) analyze(code string, language string) (*analysis.Analysis, error) {
	code = strings.TrimRightFunc(code, unicode.IsSpace)
	language = analysis.DetectLanguage(code, requestedLanguage(language))

	key := analysis.Fingerprint(language, code)
	if cached, ok := svc.cache.Get(key); ok {
		return cached.(*analysis.Analysis), nil
	}

	a := analysis.Analyze(code, language)
	if err := svc.analyses.Store(a); err != nil {
		return nil, err
	}

	// cached only once announced, so a failed publish is retried
	if svc.events != nil {
		if err := svc.events.AnalysisCompleted(a); err != nil {
			return nil, err
		}
	}

	svc.cache.SetDefault(key, a)

	return a, nil
}

func (svc *service) Analyze(code string, language string) (*analysis.Analysis, error) {
	return svc.analyze(code, language)
}

func (svc *service) Fix(ctx context.Context, code string, language string) (*fixer.Result, error) {
	language = analysis.DetectLanguage(code, requestedLanguage(language))
	return svc.fixer.Fix(ctx, code, language), nil
}

func (svc *service) Report(code string, language string) (*report.Report, error) {
	a, err := svc.analyze(code, language)
	if err != nil {
		return nil, err
	}

	return report.Text(a), nil
}

func (svc *service) HTMLReport(code string, language string) (*report.Report, error) {
	a, err := svc.analyze(code, language)
	if err != nil {
		return nil, err
	}

	return report.HTML(a)
}

func (svc *service) Analysis(id analysis.AnalysisID) (*analysis.Analysis, error) {
	return svc.analyses.Find(id)
}

func (svc *service) Analyses(limit int) ([]*analysis.Analysis, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	return svc.analyses.List(limit)
}

func (svc *service) Status() Status {
	status := make(Status, len(svc.providers))
	for _, p := range svc.providers {
		status[p.Name()] = llm.StatusOf(p)
	}

	return status
}
