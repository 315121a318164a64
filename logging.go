package devguide

import (
	"context"

	"go.uber.org/zap"

	"github.com/flarexio/devguide/analysis"
	"github.com/flarexio/devguide/fixer"
	"github.com/flarexio/devguide/report"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			log.With(
				zap.String("service", "devguide"),
				zap.String("middleware", "logging"),
			),
			next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Analyze(code string, language string) (*analysis.Analysis, error) {
	log := mw.log.With(
		zap.String("action", "analyze"),
		zap.String("language", language),
		zap.Int("length", analysis.Length(code)),
	)

	a, err := mw.next.Analyze(code, language)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("code analyzed",
		zap.String("analysis_id", a.ID.String()),
		zap.String("detected", a.Language),
		zap.Int("score", a.CodeQualityScore),
		zap.Int("issues", len(a.Issues)),
	)
	return a, nil
}

func (mw *loggingMiddleware) Fix(ctx context.Context, code string, language string) (*fixer.Result, error) {
	log := mw.log.With(
		zap.String("action", "fix"),
		zap.String("language", language),
	)

	result, err := mw.next.Fix(ctx, code, language)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	for _, attempt := range result.Attempts {
		if attempt.Error != "" {
			log.Warn("fix attempt failed",
				zap.String("source", attempt.Source),
				zap.String("error", attempt.Error),
			)
		}
	}

	log.Info("code fixed",
		zap.String("source", result.Source),
		zap.Strings("changes", result.Changes),
	)
	return result, nil
}

func (mw *loggingMiddleware) Report(code string, language string) (*report.Report, error) {
	log := mw.log.With(
		zap.String("action", "report"),
		zap.String("language", language),
	)

	r, err := mw.next.Report(code, language)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("report generated", zap.String("filename", r.Filename))
	return r, nil
}

func (mw *loggingMiddleware) HTMLReport(code string, language string) (*report.Report, error) {
	log := mw.log.With(
		zap.String("action", "html_report"),
		zap.String("language", language),
	)

	r, err := mw.next.HTMLReport(code, language)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("report generated", zap.String("filename", r.Filename))
	return r, nil
}

func (mw *loggingMiddleware) Analysis(id analysis.AnalysisID) (*analysis.Analysis, error) {
	log := mw.log.With(
		zap.String("action", "analysis"),
		zap.String("analysis_id", id.String()),
	)

	a, err := mw.next.Analysis(id)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	return a, nil
}

func (mw *loggingMiddleware) Analyses(limit int) ([]*analysis.Analysis, error) {
	log := mw.log.With(
		zap.String("action", "analyses"),
		zap.Int("limit", limit),
	)

	analyses, err := mw.next.Analyses(limit)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	return analyses, nil
}

func (mw *loggingMiddleware) Status() Status {
	return mw.next.Status()
}
