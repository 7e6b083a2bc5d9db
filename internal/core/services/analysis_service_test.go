package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/innerflow/flow-engine/internal/adapters/repository"
	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter records every request and can be told to fail when the
// prompt contains a marker, so one user's failure can be simulated in a
// multi-user batch.
type stubCompleter struct {
	reply    string
	failWhen string
	requests []services.CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req services.CompletionRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.failWhen != "" && strings.Contains(req.Prompt, s.failWhen) {
		return "", errors.New("model unavailable")
	}
	return s.reply, nil
}

type listErrUserRepo struct {
	domain.UserRepository
}

func (r listErrUserRepo) ListIDs(ctx context.Context) ([]string, error) {
	return nil, errors.New("db down")
}

// The batch clock is pinned so window math is assertable.
var batchToday = time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return batchToday
}

type analysisFixture struct {
	users   *repository.InMemoryUserRepository
	logs    *repository.InMemoryDailyLogRepository
	results *repository.InMemoryAnalysisRepository
	llm     *stubCompleter
	svc     *services.AnalysisService
}

func newAnalysisFixture() *analysisFixture {
	f := &analysisFixture{
		users:   repository.NewInMemoryUserRepository(),
		logs:    repository.NewInMemoryDailyLogRepository(),
		results: repository.NewInMemoryAnalysisRepository(),
		llm:     &stubCompleter{reply: "We noticed a steady pattern this period."},
	}
	f.svc = services.NewAnalysisService(f.users, f.logs, f.results, f.llm, fixedClock)
	return f
}

func (f *analysisFixture) seedUser(t *testing.T, id string) {
	t.Helper()
	user, err := domain.NewUser(id, id+"@example.com")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), user, domain.NewUserProfile(id, "Test", user.Email)))
}

func (f *analysisFixture) seedLog(t *testing.T, userID, date, notes string) {
	t.Helper()
	day, err := domain.ParseDate(date)
	require.NoError(t, err)
	l, err := domain.NewDailyLog(userID, day)
	require.NoError(t, err)
	l.Notes = notes
	require.NoError(t, f.logs.Upsert(context.Background(), l))
}

func TestAnalysisService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Error: Unknown analysis type", func(t *testing.T) {
		f := newAnalysisFixture()

		_, err := f.svc.Run(ctx, domain.AnalysisType("yearly"), nil)
		assert.Equal(t, domain.ErrInvalidPeriod, err)
	})

	t.Run("Abort: Listing users fails", func(t *testing.T) {
		f := newAnalysisFixture()
		svc := services.NewAnalysisService(listErrUserRepo{f.users}, f.logs, f.results, f.llm, fixedClock)

		report, err := svc.Run(ctx, domain.AnalysisWeekly, nil)
		assert.Nil(t, report)
		assert.ErrorContains(t, err, "failed to list users")
	})

	t.Run("Skip: Below the lookback threshold", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		f.seedLog(t, "u1", "2025-01-30", "")
		f.seedLog(t, "u1", "2025-01-31", "")

		report, err := f.svc.Run(ctx, domain.AnalysisWeekly, nil)
		require.NoError(t, err)

		assert.Equal(t, 0, report.Analyzed)
		assert.Equal(t, 1, report.Skipped)
		require.Len(t, report.Outcomes, 1)
		assert.Equal(t, domain.OutcomeSkipped, report.Outcomes[0].Status)
		assert.Contains(t, report.Outcomes[0].Reason, "insufficient data: 2 of 3 required entries")

		assert.Empty(t, f.llm.requests, "The model MUST NOT be called for skipped users")

		results, err := f.results.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Analyzed: Exactly at the threshold", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		f.seedLog(t, "u1", "2025-01-29", "slept well")
		f.seedLog(t, "u1", "2025-01-30", "long walk")
		f.seedLog(t, "u1", "2025-01-31", "tired")

		report, err := f.svc.Run(ctx, domain.AnalysisWeekly, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, report.Analyzed)
		assert.Equal(t, 0, report.Skipped)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, domain.DateRange{Start: "2025-01-25", End: "2025-01-31"}, report.DateRange)

		require.Len(t, f.llm.requests, 1)
		req := f.llm.requests[0]
		assert.Equal(t, int32(300), req.MaxTokens)
		assert.InDelta(t, 0.7, float64(req.Temperature), 0.001)
		assert.Contains(t, req.System, "wellness analyst")
		assert.Contains(t, req.Prompt, "2025-01-30")
		assert.Contains(t, req.Prompt, "long walk")

		results, err := f.results.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, domain.AnalysisWeekly, results[0].AnalysisType)
		assert.Equal(t, "We noticed a steady pattern this period.", results[0].Content)
		assert.Equal(t, domain.DateRange{Start: "2025-01-25", End: "2025-01-31"}, results[0].DateRange)
		assert.NotEmpty(t, results[0].ID)
	})

	t.Run("Skip: Enough lookback entries but none inside the window", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		// Within the 30-day sufficiency lookback, outside the 7-day window.
		f.seedLog(t, "u1", "2025-01-10", "")
		f.seedLog(t, "u1", "2025-01-12", "")
		f.seedLog(t, "u1", "2025-01-14", "")

		report, err := f.svc.Run(ctx, domain.AnalysisWeekly, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, report.Skipped)
		require.Len(t, report.Outcomes, 1)
		assert.Equal(t, "no entries in the analysis window", report.Outcomes[0].Reason)
		assert.Empty(t, f.llm.requests)
	})

	t.Run("Continue: One failing user does not stop the batch", func(t *testing.T) {
		f := newAnalysisFixture()
		f.llm.failWhen = "marker-alpha"

		f.seedUser(t, "ua")
		f.seedUser(t, "ub")
		for _, date := range []string{"2025-01-29", "2025-01-30", "2025-01-31"} {
			f.seedLog(t, "ua", date, "marker-alpha")
			f.seedLog(t, "ub", date, "all fine")
		}

		report, err := f.svc.Run(ctx, domain.AnalysisWeekly, []string{"ua", "ub"})
		require.NoError(t, err, "A per-user failure MUST NOT fail the run")

		assert.Equal(t, 1, report.Analyzed)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Outcomes, 2)
		assert.Equal(t, domain.OutcomeFailed, report.Outcomes[0].Status)
		assert.Contains(t, report.Outcomes[0].Reason, "completion request")
		assert.Equal(t, domain.OutcomeAnalyzed, report.Outcomes[1].Status)

		aResults, _ := f.results.ListByUser(ctx, "ua", 10)
		bResults, _ := f.results.ListByUser(ctx, "ub", 10)
		assert.Empty(t, aResults)
		assert.Len(t, bResults, 1)
	})

	t.Run("Append: Re-running a period adds a second result", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		for _, date := range []string{"2025-01-29", "2025-01-30", "2025-01-31"} {
			f.seedLog(t, "u1", date, "")
		}

		_, err := f.svc.Run(ctx, domain.AnalysisWeekly, nil)
		require.NoError(t, err)
		_, err = f.svc.Run(ctx, domain.AnalysisWeekly, nil)
		require.NoError(t, err)

		results, err := f.results.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Subset: Explicit user IDs bypass the full listing", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "ua")
		f.seedUser(t, "ub")
		for _, date := range []string{"2025-01-29", "2025-01-30", "2025-01-31"} {
			f.seedLog(t, "ua", date, "")
			f.seedLog(t, "ub", date, "")
		}

		report, err := f.svc.Run(ctx, domain.AnalysisWeekly, []string{"ub"})
		require.NoError(t, err)

		require.Len(t, report.Outcomes, 1)
		assert.Equal(t, "ub", report.Outcomes[0].UserID)

		aResults, _ := f.results.ListByUser(ctx, "ua", 10)
		assert.Empty(t, aResults)
	})

	t.Run("Monthly: Wider window and higher threshold", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		for d := 10; d < 19; d++ { // nine entries, one short of the monthly threshold
			f.seedLog(t, "u1", time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC).Format(domain.DateLayout), "")
		}

		report, err := f.svc.Run(ctx, domain.AnalysisMonthly, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)

		f.seedLog(t, "u1", "2025-01-19", "")

		report, err = f.svc.Run(ctx, domain.AnalysisMonthly, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Analyzed)
		assert.Equal(t, domain.DateRange{Start: "2025-01-01", End: "2025-01-31"}, report.DateRange)

		require.NotEmpty(t, f.llm.requests)
		assert.Equal(t, int32(600), f.llm.requests[len(f.llm.requests)-1].MaxTokens)
	})
}

func TestAnalysisService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("ListByUser clamps the limit", func(t *testing.T) {
		f := newAnalysisFixture()
		f.seedUser(t, "u1")
		for _, date := range []string{"2025-01-29", "2025-01-30", "2025-01-31"} {
			f.seedLog(t, "u1", date, "")
		}
		for i := 0; i < 3; i++ {
			_, err := f.svc.Run(ctx, domain.AnalysisWeekly, nil)
			require.NoError(t, err)
		}

		results, err := f.svc.ListByUser(ctx, "u1", -5)
		require.NoError(t, err)
		assert.Len(t, results, 3)

		results, err = f.svc.ListByUser(ctx, "u1", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("Latest returns the newest result of one type", func(t *testing.T) {
		f := newAnalysisFixture()

		first := domain.NewAnalysisResult("u1", domain.AnalysisWeekly, "older", domain.DateRange{Start: "2025-01-18", End: "2025-01-24"})
		first.CreatedAt = batchToday.Add(-24 * time.Hour)
		require.NoError(t, f.results.Create(ctx, first))

		second := domain.NewAnalysisResult("u1", domain.AnalysisWeekly, "newer", domain.DateRange{Start: "2025-01-25", End: "2025-01-31"})
		second.CreatedAt = batchToday
		require.NoError(t, f.results.Create(ctx, second))

		got, err := f.svc.Latest(ctx, "u1", domain.AnalysisWeekly)
		require.NoError(t, err)
		assert.Equal(t, "newer", got.Content)

		_, err = f.svc.Latest(ctx, "u1", domain.AnalysisMonthly)
		assert.Equal(t, domain.ErrAnalysisNotFound, err)
	})

	t.Run("Latest rejects unknown types", func(t *testing.T) {
		f := newAnalysisFixture()

		_, err := f.svc.Latest(ctx, "u1", domain.AnalysisType("quarterly"))
		assert.Equal(t, domain.ErrInvalidPeriod, err)
	})
}
