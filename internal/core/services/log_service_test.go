package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/innerflow/flow-engine/internal/adapters/repository"
	"github.com/innerflow/flow-engine/internal/core/domain"
	"github.com/innerflow/flow-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogService_Save(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("Success: Save then read back the same entry", func(t *testing.T) {
		repo := repository.NewInMemoryDailyLogRepository()
		svc := services.NewLogService(repo)

		saved, err := svc.Save(ctx, services.SaveLogInput{
			UserID: "u1",
			Date:   day,
			Mood:   "happy",
			Ratings: domain.LogRatings{
				MorningMood: 6, GeneralMood: 8, MorningEnergy: 5,
				GeneralEnergy: 7, StressLevel: 2, DigestiveFlow: 6, PainLevel: 1,
			},
			Activities: []string{"yoga", "reading"},
			Notes:      "good day",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID, "Upsert MUST assign an ID")

		got, err := svc.GetByDate(ctx, "u1", "2025-01-31")
		require.NoError(t, err)

		assert.Equal(t, saved.ID, got.ID)
		assert.Equal(t, "happy", got.Mood)
		assert.Equal(t, 8, got.GeneralMood)
		assert.Equal(t, []string{"yoga", "reading"}, got.Activities)
		assert.Equal(t, "good day", got.Notes)
	})

	t.Run("Success: Out-of-range ratings are clamped on save", func(t *testing.T) {
		repo := repository.NewInMemoryDailyLogRepository()
		svc := services.NewLogService(repo)

		saved, err := svc.Save(ctx, services.SaveLogInput{
			UserID:  "u1",
			Date:    day,
			Ratings: domain.LogRatings{GeneralMood: 15, MorningMood: -3, StressLevel: 9, PainLevel: -1, MorningEnergy: 5, GeneralEnergy: 5, DigestiveFlow: 5},
		})
		require.NoError(t, err)

		assert.Equal(t, 10, saved.GeneralMood)
		assert.Equal(t, 1, saved.MorningMood)
		assert.Equal(t, 5, saved.StressLevel)
		assert.Equal(t, 0, saved.PainLevel)
	})

	t.Run("Upsert: Second save for the same date overwrites, never duplicates", func(t *testing.T) {
		repo := repository.NewInMemoryDailyLogRepository()
		svc := services.NewLogService(repo)

		first, err := svc.Save(ctx, services.SaveLogInput{UserID: "u1", Date: day, Mood: "meh", Ratings: midRatings()})
		require.NoError(t, err)

		second, err := svc.Save(ctx, services.SaveLogInput{UserID: "u1", Date: day, Mood: "happy", Ratings: midRatings()})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "The date key MUST map to one row")

		logs, err := svc.ListRecent(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "happy", logs[0].Mood)
	})

	t.Run("Error: Blank user", func(t *testing.T) {
		svc := services.NewLogService(repository.NewInMemoryDailyLogRepository())

		_, err := svc.Save(ctx, services.SaveLogInput{UserID: "", Date: day})
		assert.Equal(t, domain.ErrLogInvalidUserID, err)
	})
}

func TestLogService_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryDailyLogRepository()
	svc := services.NewLogService(repo)

	for d := 1; d <= 5; d++ {
		_, err := svc.Save(ctx, services.SaveLogInput{
			UserID:  "u1",
			Date:    time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC),
			Ratings: midRatings(),
		})
		require.NoError(t, err)
	}

	t.Run("Newest first", func(t *testing.T) {
		logs, err := svc.ListRecent(ctx, "u1", 3)
		require.NoError(t, err)
		require.Len(t, logs, 3)
		assert.Equal(t, "2025-01-05", logs[0].Date)
		assert.Equal(t, "2025-01-03", logs[2].Date)
	})

	t.Run("Nonpositive limit falls back to the default window", func(t *testing.T) {
		logs, err := svc.ListRecent(ctx, "u1", 0)
		require.NoError(t, err)
		assert.Len(t, logs, 5)
	})

	t.Run("Oversized limit is capped", func(t *testing.T) {
		logs, err := svc.ListRecent(ctx, "u1", 5000)
		require.NoError(t, err)
		assert.Len(t, logs, 5)
	})
}

func TestLogService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewInMemoryDailyLogRepository()
	svc := services.NewLogService(repo)

	_, err := svc.Save(ctx, services.SaveLogInput{
		UserID:  "u1",
		Date:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Ratings: midRatings(),
	})
	require.NoError(t, err)

	t.Run("Success: Deleted entry is gone", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, "u1", "2025-01-31"))

		_, err := svc.GetByDate(ctx, "u1", "2025-01-31")
		assert.Equal(t, domain.ErrLogNotFound, err)
	})

	t.Run("Error: Unknown date", func(t *testing.T) {
		err := svc.Delete(ctx, "u1", "2024-12-25")
		assert.Equal(t, domain.ErrLogNotFound, err)
	})

	t.Run("Error: Malformed date rejected before hitting the store", func(t *testing.T) {
		err := svc.Delete(ctx, "u1", "not-a-date")
		assert.Equal(t, domain.ErrLogInvalidDate, err)
	})
}

func midRatings() domain.LogRatings {
	return domain.LogRatings{
		MorningMood: 5, GeneralMood: 5, MorningEnergy: 5,
		GeneralEnergy: 5, StressLevel: 3, DigestiveFlow: 5, PainLevel: 0,
	}
}
