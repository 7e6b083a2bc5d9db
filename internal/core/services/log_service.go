package services

import (
	"context"
	"time"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

// DefaultLogWindow bounds the client's in-memory cache of recent logs.
const DefaultLogWindow = 30

type LogService struct {
	repo domain.DailyLogRepository
}

func NewLogService(repo domain.DailyLogRepository) *LogService {
	return &LogService{
		repo: repo,
	}
}

type SaveLogInput struct {
	UserID string
	Date   time.Time

	Mood    string
	Ratings domain.LogRatings

	TimeToBed  time.Time
	TimeWokeUp time.Time

	Activities []string

	FoodBreakfast  string
	FoodSnack1     string
	FoodLunch      string
	FoodSnack2     string
	FoodDinner     string
	FoodDrinks     string
	Medicines      string
	DigestiveNotes string
	PainNotes      string
	Notes          string
}

// Save upserts the log for one calendar date. Ratings are clamped at
// construction; a second save for the same date overwrites the first
// (last-write-wins), keeping at most one entry per user per day.
func (s *LogService) Save(ctx context.Context, input SaveLogInput) (*domain.DailyLog, error) {
	log, err := domain.NewDailyLog(input.UserID, input.Date)
	if err != nil {
		return nil, err
	}

	log.SetRatings(input.Ratings)

	log.Mood = input.Mood
	log.TimeToBed = input.TimeToBed.UTC()
	log.TimeWokeUp = input.TimeWokeUp.UTC()
	log.Activities = input.Activities
	log.FoodBreakfast = input.FoodBreakfast
	log.FoodSnack1 = input.FoodSnack1
	log.FoodLunch = input.FoodLunch
	log.FoodSnack2 = input.FoodSnack2
	log.FoodDinner = input.FoodDinner
	log.FoodDrinks = input.FoodDrinks
	log.Medicines = input.Medicines
	log.DigestiveNotes = input.DigestiveNotes
	log.PainNotes = input.PainNotes
	log.Notes = input.Notes

	if err := s.repo.Upsert(ctx, log); err != nil {
		return nil, err
	}

	return log, nil
}

func (s *LogService) GetByDate(ctx context.Context, userID, date string) (*domain.DailyLog, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.repo.GetByDate(ctx, userID, date)
}

func (s *LogService) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.DailyLog, error) {
	if limit <= 0 || limit > DefaultLogWindow {
		limit = DefaultLogWindow
	}
	return s.repo.ListRecent(ctx, userID, limit)
}

func (s *LogService) Delete(ctx context.Context, userID, date string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, date)
}
