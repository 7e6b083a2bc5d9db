package domain_test

import (
	"testing"
	"time"

	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPeriodFor(t *testing.T) {
	t.Run("Weekly", func(t *testing.T) {
		p, err := domain.PeriodFor(domain.AnalysisWeekly)
		assert.Nil(t, err)
		assert.Equal(t, 6, p.WindowDays)
		assert.Equal(t, 3, p.MinEntries)
		assert.Equal(t, int32(300), p.MaxTokens)
	})

	t.Run("Monthly", func(t *testing.T) {
		p, err := domain.PeriodFor(domain.AnalysisMonthly)
		assert.Nil(t, err)
		assert.Equal(t, 30, p.WindowDays)
		assert.Equal(t, 10, p.MinEntries)
		assert.Equal(t, int32(600), p.MaxTokens)
	})

	t.Run("Error: Unknown type", func(t *testing.T) {
		_, err := domain.PeriodFor(domain.AnalysisType("yearly"))
		assert.Equal(t, domain.ErrInvalidPeriod, err)
	})
}

func TestPeriod_Range(t *testing.T) {
	today := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	t.Run("Weekly window spans seven calendar days inclusive", func(t *testing.T) {
		rng := domain.WeeklyPeriod.Range(today)

		assert.Equal(t, "2025-01-25", rng.Start)
		assert.Equal(t, "2025-01-31", rng.End)
	})

	t.Run("Monthly window reaches back thirty days", func(t *testing.T) {
		rng := domain.MonthlyPeriod.Range(today)

		assert.Equal(t, "2025-01-01", rng.Start)
		assert.Equal(t, "2025-01-31", rng.End)
	})

	t.Run("Window crosses a month boundary", func(t *testing.T) {
		rng := domain.WeeklyPeriod.Range(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))

		assert.Equal(t, "2025-02-24", rng.Start)
		assert.Equal(t, "2025-03-02", rng.End)
	})
}

func TestBatchReport_Record(t *testing.T) {
	report := &domain.BatchReport{}

	report.Record(domain.UserOutcome{UserID: "a", Status: domain.OutcomeAnalyzed})
	report.Record(domain.UserOutcome{UserID: "b", Status: domain.OutcomeSkipped, Reason: "insufficient data"})
	report.Record(domain.UserOutcome{UserID: "c", Status: domain.OutcomeFailed, Reason: "boom"})
	report.Record(domain.UserOutcome{UserID: "d", Status: domain.OutcomeAnalyzed})

	assert.Equal(t, 2, report.Analyzed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Outcomes, 4)
	assert.Equal(t, "b", report.Outcomes[1].UserID)
}
