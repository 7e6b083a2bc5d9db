package domain

import (
	"errors"
	"time"
)

var (
	ErrAnalysisNotFound = errors.New("analysis result not found")
	ErrInvalidPeriod    = errors.New("invalid analysis period")
)

type AnalysisType string

const (
	AnalysisWeekly  AnalysisType = "weekly"
	AnalysisMonthly AnalysisType = "monthly"
)

// LookbackDays is the fixed span used only for the data-sufficiency
// gate, distinct from the analysis date range itself.
const LookbackDays = 30

// DateRange holds inclusive ISO calendar-date bounds.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Period describes one analysis cadence: how far back the window
// reaches, how many lookback entries a user needs to qualify, and how
// long the generated text may be.
type Period struct {
	Type       AnalysisType
	WindowDays int
	MinEntries int
	MaxTokens  int32
}

var (
	WeeklyPeriod  = Period{Type: AnalysisWeekly, WindowDays: 6, MinEntries: 3, MaxTokens: 300}
	MonthlyPeriod = Period{Type: AnalysisMonthly, WindowDays: 30, MinEntries: 10, MaxTokens: 600}
)

func PeriodFor(t AnalysisType) (Period, error) {
	switch t {
	case AnalysisWeekly:
		return WeeklyPeriod, nil
	case AnalysisMonthly:
		return MonthlyPeriod, nil
	default:
		return Period{}, ErrInvalidPeriod
	}
}

// Range computes the analysis window ending today: the end bound is
// today's calendar date, the start bound WindowDays earlier.
func (p Period) Range(today time.Time) DateRange {
	today = today.UTC()
	return DateRange{
		Start: today.AddDate(0, 0, -p.WindowDays).Format(DateLayout),
		End:   today.Format(DateLayout),
	}
}

// AnalysisResult is created only by the batch job and is immutable
// thereafter. Re-running a period appends a new result.
type AnalysisResult struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Content      string       `json:"content"`
	DateRange    DateRange    `json:"date_range"`
	CreatedAt    time.Time    `json:"created_at"`
}

func NewAnalysisResult(userID string, t AnalysisType, content string, rng DateRange) *AnalysisResult {
	return &AnalysisResult{
		UserID:       userID,
		AnalysisType: t,
		Content:      content,
		DateRange:    rng,
		CreatedAt:    time.Now().UTC(),
	}
}

type OutcomeStatus string

const (
	OutcomeAnalyzed OutcomeStatus = "analyzed"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeFailed   OutcomeStatus = "failed"
)

// UserOutcome records how one user fared in a batch run.
type UserOutcome struct {
	UserID string        `json:"user_id"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// BatchReport is the structured result of one batch run, replacing
// log-only error suppression with a per-user ledger.
type BatchReport struct {
	AnalysisType AnalysisType  `json:"analysis_type"`
	DateRange    DateRange     `json:"date_range"`
	StartedAt    time.Time     `json:"started_at"`
	Analyzed     int           `json:"analyzed"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Outcomes     []UserOutcome `json:"outcomes"`
}

func (r *BatchReport) Record(o UserOutcome) {
	switch o.Status {
	case OutcomeAnalyzed:
		r.Analyzed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}
