package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrInvalidSeverity  = errors.New("invalid severity")
	ErrInvalidIssueType = errors.New("invalid issue type")
)

const MaxIssues = 100

type Severity int

const (
	Minor Severity = iota
	Major
	Critical
)

func ParseSeverity(severity string) (Severity, error) {
	switch strings.ToLower(severity) {
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	case "critical":
		return Critical, nil
	default:
		return -1, ErrInvalidSeverity
	}
}

func (s Severity) String() string {
	switch s {
	case Minor:
		return "Minor"
	case Major:
		return "Major"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	severity, err := ParseSeverity(raw)
	if err != nil {
		return err
	}

	*s = severity
	return nil
}

type IssueType int

const (
	Suggestion IssueType = iota
	Warning
	Error
)

func ParseIssueType(t string) (IssueType, error) {
	switch strings.ToLower(t) {
	case "suggestion":
		return Suggestion, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	default:
		return -1, ErrInvalidIssueType
	}
}

func (t IssueType) String() string {
	switch t {
	case Suggestion:
		return "Suggestion"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

func (t IssueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *IssueType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	issueType, err := ParseIssueType(raw)
	if err != nil {
		return err
	}

	*t = issueType
	return nil
}

type Issue struct {
	Line       int       `json:"line"`
	Type       IssueType `json:"type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
}

type Metrics struct {
	CyclomaticComplexity int `json:"cyclomaticComplexity"`
	ReadabilityScore     int `json:"readabilityScore"`
	StyleAdherence       int `json:"styleAdherence"`
}

type AnalysisID ulid.ULID

func MakeID() AnalysisID {
	return AnalysisID(ulid.Make())
}

func ParseID(id string) (AnalysisID, error) {
	analysisID, err := ulid.Parse(id)
	if err != nil {
		return AnalysisID{}, err
	}
	return AnalysisID(analysisID), nil
}

func (id AnalysisID) Bytes() []byte {
	return id[:]
}

func (id AnalysisID) String() string {
	return ulid.ULID(id).String()
}

func (id AnalysisID) Time() time.Time {
	ms := ulid.ULID(id).Time()
	return ulid.Time(ms)
}

func (id AnalysisID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *AnalysisID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	analysisID, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = analysisID
	return nil
}

type Analysis struct {
	ID               AnalysisID `json:"id"`
	CodeQualityScore int        `json:"codeQualityScore"`
	Issues           []Issue    `json:"issues"`
	Metrics          Metrics    `json:"metrics"`
	Language         string     `json:"language"`
	AnalyzedAt       time.Time  `json:"analyzedAt"`
	Code             string     `json:"code"`
}

// Analyze runs every rule and metric over code. The language is used as
// given; call DetectLanguage first to resolve "auto".
func Analyze(code string, language string) *Analysis {
	issues := FindIssues(code, language)
	metrics := Metrics{
		CyclomaticComplexity: CyclomaticComplexity(code),
		ReadabilityScore:     ReadabilityScore(code),
		StyleAdherence:       StyleAdherence(code, language),
	}

	id := MakeID()

	return &Analysis{
		ID:               id,
		CodeQualityScore: Score(issues, metrics),
		Issues:           issues,
		Metrics:          metrics,
		Language:         language,
		AnalyzedAt:       id.Time().UTC(),
		Code:             code,
	}
}

func (a *Analysis) Errors() []Issue {
	return a.filter(func(i Issue) bool { return i.Type == Error })
}

// Others returns the warnings and suggestions.
func (a *Analysis) Others() []Issue {
	return a.filter(func(i Issue) bool { return i.Type != Error })
}

func (a *Analysis) Count(t IssueType) int {
	n := 0
	for _, i := range a.Issues {
		if i.Type == t {
			n++
		}
	}
	return n
}

func (a *Analysis) filter(fn func(Issue) bool) []Issue {
	issues := make([]Issue, 0)
	for _, i := range a.Issues {
		if fn(i) {
			issues = append(issues, i)
		}
	}
	return issues
}

// Score is 100 when there are no errors. Errors drop it to at most 50
// minus 15 points each, never below 5.
func Score(issues []Issue, metrics Metrics) int {
	errs := 0
	for _, i := range issues {
		if i.Type == Error {
			errs++
		}
	}

	if errs == 0 {
		return 100
	}

	penalty := min(90, errs*15)
	base := min(50, int(0.3*float64(metrics.ReadabilityScore)+0.2*float64(metrics.StyleAdherence)))
	return max(5, base-penalty)
}
