package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

// CompletionRequest is one call to the text-generation backend.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// Completer is the minimal surface the orchestrator needs from an LLM
// backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

const completionTemperature = 0.7

type AnalysisService struct {
	users   domain.UserRepository
	logs    domain.DailyLogRepository
	results domain.AnalysisRepository
	llm     Completer
	now     func() time.Time
}

// NewAnalysisService wires the batch orchestrator. A nil clock means
// time.Now; tests inject a fixed one.
func NewAnalysisService(users domain.UserRepository, logs domain.DailyLogRepository, results domain.AnalysisRepository, llm Completer, clock func() time.Time) *AnalysisService {
	if clock == nil {
		clock = time.Now
	}
	return &AnalysisService{
		users:   users,
		logs:    logs,
		results: results,
		llm:     llm,
		now:     clock,
	}
}

// Run processes every user (or the given subset) sequentially: gate,
// fetch, completion, persist. A user's failure is recorded and the
// loop continues; only a failure to list users aborts the whole run.
func (s *AnalysisService) Run(ctx context.Context, analysisType domain.AnalysisType, userIDs []string) (*domain.BatchReport, error) {
	period, err := domain.PeriodFor(analysisType)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	rng := period.Range(today)
	lookback := today.AddDate(0, 0, -domain.LookbackDays).Format(domain.DateLayout)

	ids := userIDs
	if len(ids) == 0 {
		ids, err = s.users.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("analysis service: failed to list users: %w", err)
		}
	}

	log.Printf("Starting %s analysis for %d users (%s to %s)", period.Type, len(ids), rng.Start, rng.End)

	report := &domain.BatchReport{
		AnalysisType: period.Type,
		DateRange:    rng,
		StartedAt:    today,
		Outcomes:     []domain.UserOutcome{},
	}

	for _, uid := range ids {
		outcome := s.analyzeUser(ctx, uid, period, rng, lookback)
		if outcome.Status == domain.OutcomeFailed {
			log.Printf("[ERROR] %s analysis failed for user %s: %s", period.Type, uid, outcome.Reason)
		}
		report.Record(outcome)
	}

	log.Printf("%s analysis done: %d analyzed, %d skipped, %d failed",
		period.Type, report.Analyzed, report.Skipped, report.Failed)

	return report, nil
}

func (s *AnalysisService) analyzeUser(ctx context.Context, userID string, period domain.Period, rng domain.DateRange, lookback string) domain.UserOutcome {
	count, err := s.logs.CountSince(ctx, userID, lookback)
	if err != nil {
		return failed(userID, fmt.Errorf("sufficiency check: %w", err))
	}
	if count < period.MinEntries {
		return skipped(userID, fmt.Sprintf("insufficient data: %d of %d required entries in the last %d days",
			count, period.MinEntries, domain.LookbackDays))
	}

	logs, err := s.logs.ListRange(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return failed(userID, fmt.Errorf("fetching logs: %w", err))
	}
	if len(logs) == 0 {
		return skipped(userID, "no entries in the analysis window")
	}

	prompt, err := BuildAnalysisPrompt(period.Type, logs)
	if err != nil {
		return failed(userID, fmt.Errorf("building prompt: %w", err))
	}

	content, err := s.llm.Complete(ctx, CompletionRequest{
		System:      analystSystemInstruction,
		Prompt:      prompt,
		Temperature: completionTemperature,
		MaxTokens:   period.MaxTokens,
	})
	if err != nil {
		return failed(userID, fmt.Errorf("completion request: %w", err))
	}

	result := domain.NewAnalysisResult(userID, period.Type, content, rng)
	if err := s.results.Create(ctx, result); err != nil {
		return failed(userID, fmt.Errorf("saving result: %w", err))
	}

	return domain.UserOutcome{UserID: userID, Status: domain.OutcomeAnalyzed}
}

func skipped(userID, reason string) domain.UserOutcome {
	return domain.UserOutcome{UserID: userID, Status: domain.OutcomeSkipped, Reason: reason}
}

func failed(userID string, err error) domain.UserOutcome {
	return domain.UserOutcome{UserID: userID, Status: domain.OutcomeFailed, Reason: err.Error()}
}

// ListByUser exposes past results for the client's analysis views.
func (s *AnalysisService) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AnalysisResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.results.ListByUser(ctx, userID, limit)
}

func (s *AnalysisService) Latest(ctx context.Context, userID string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error) {
	if _, err := domain.PeriodFor(analysisType); err != nil {
		return nil, err
	}
	return s.results.Latest(ctx, userID, analysisType)
}
