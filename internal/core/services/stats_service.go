package services

import (
	"context"
	"sort"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

// TopActivityCount caps the activity frequency list the client shows.
const TopActivityCount = 5

type StatsService struct {
	logRepo domain.DailyLogRepository
}

func NewStatsService(logRepo domain.DailyLogRepository) *StatsService {
	return &StatsService{
		logRepo: logRepo,
	}
}

// Summary recomputes every aggregate from the recent-log window on
// each call. There is no incremental state to invalidate.
func (s *StatsService) Summary(ctx context.Context, userID string, limit int) (*domain.LogSummary, error) {
	if limit <= 0 || limit > DefaultLogWindow {
		limit = DefaultLogWindow
	}

	logs, err := s.logRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return BuildSummary(logs), nil
}

// BuildSummary computes the aggregates over an in-memory slice. An
// empty slice yields a zero summary rather than an error.
func BuildSummary(logs []*domain.DailyLog) *domain.LogSummary {
	summary := &domain.LogSummary{
		Entries:       len(logs),
		MoodCounts:    []domain.MoodCount{},
		TopActivities: []domain.ActivityCount{},
	}

	if len(logs) == 0 {
		return summary
	}

	// ListRecent returns newest first.
	summary.StartDate = logs[len(logs)-1].Date
	summary.EndDate = logs[0].Date

	summary.AverageMood = averageRating(logs, func(l *domain.DailyLog) int { return l.GeneralMood })
	summary.AverageEnergy = averageRating(logs, func(l *domain.DailyLog) int { return l.GeneralEnergy })
	summary.AverageStress = averageRating(logs, func(l *domain.DailyLog) int { return l.StressLevel })
	summary.MinMood, summary.MaxMood = minMaxRating(logs, func(l *domain.DailyLog) int { return l.GeneralMood })

	var sleepTotal float64
	for _, l := range logs {
		sleepTotal += l.SleepHours()
	}
	summary.AverageSleep = sleepTotal / float64(len(logs))

	summary.MoodCounts = moodCounts(logs)
	summary.TopActivities = topActivities(logs, TopActivityCount)

	return summary
}

func averageRating(logs []*domain.DailyLog, pick func(*domain.DailyLog) int) float64 {
	if len(logs) == 0 {
		return 0
	}

	total := 0
	for _, l := range logs {
		total += pick(l)
	}
	return float64(total) / float64(len(logs))
}

func minMaxRating(logs []*domain.DailyLog, pick func(*domain.DailyLog) int) (int, int) {
	if len(logs) == 0 {
		return 0, 0
	}

	lo, hi := pick(logs[0]), pick(logs[0])
	for _, l := range logs[1:] {
		v := pick(l)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func moodCounts(logs []*domain.DailyLog) []domain.MoodCount {
	byMood := make(map[string]int)
	for _, l := range logs {
		if l.Mood == "" {
			continue
		}
		byMood[l.Mood]++
	}

	counts := make([]domain.MoodCount, 0, len(byMood))
	for mood, count := range byMood {
		counts = append(counts, domain.MoodCount{Mood: mood, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Mood < counts[j].Mood
	})

	return counts
}

func topActivities(logs []*domain.DailyLog, n int) []domain.ActivityCount {
	byActivity := make(map[string]int)
	for _, l := range logs {
		for _, a := range l.Activities {
			if a == "" {
				continue
			}
			byActivity[a]++
		}
	}

	counts := make([]domain.ActivityCount, 0, len(byActivity))
	for activity, count := range byActivity {
		counts = append(counts, domain.ActivityCount{Activity: activity, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Activity < counts[j].Activity
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
