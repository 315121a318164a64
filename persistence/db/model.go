package db

import (
	"time"

	"github.com/flarexio/devguide/analysis"
)

type Analysis struct {
	ID                   string `gorm:"primaryKey"`
	Language             string `gorm:"index"`
	Fingerprint          string `gorm:"index"`
	CodeQualityScore     int
	CyclomaticComplexity int
	ReadabilityScore     int
	StyleAdherence       int
	Issues               []analysis.Issue `gorm:"serializer:json"`
	Code                 string
	AnalyzedAt           time.Time
	DataModel
}

func (Analysis) TableName() string {
	return "analyses"
}

func NewAnalysis(a *analysis.Analysis) *Analysis {
	return &Analysis{
		ID:                   a.ID.String(),
		Language:             a.Language,
		Fingerprint:          analysis.Fingerprint(a.Language, a.Code),
		CodeQualityScore:     a.CodeQualityScore,
		CyclomaticComplexity: a.Metrics.CyclomaticComplexity,
		ReadabilityScore:     a.Metrics.ReadabilityScore,
		StyleAdherence:       a.Metrics.StyleAdherence,
		Issues:               a.Issues,
		Code:                 a.Code,
		AnalyzedAt:           a.AnalyzedAt,
	}
}

func (a *Analysis) reconstitute() (*analysis.Analysis, error) {
	id, err := analysis.ParseID(a.ID)
	if err != nil {
		return nil, err
	}

	issues := a.Issues
	if issues == nil {
		issues = make([]analysis.Issue, 0)
	}

	return &analysis.Analysis{
		ID:               id,
		CodeQualityScore: a.CodeQualityScore,
		Issues:           issues,
		Metrics: analysis.Metrics{
			CyclomaticComplexity: a.CyclomaticComplexity,
			ReadabilityScore:     a.ReadabilityScore,
			StyleAdherence:       a.StyleAdherence,
		},
		Language:   a.Language,
		AnalyzedAt: a.AnalyzedAt.UTC(),
		Code:       a.Code,
	}, nil
}
