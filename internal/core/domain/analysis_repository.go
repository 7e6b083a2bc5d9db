package domain

import "context"

type AnalysisRepository interface {
	// Create appends a new immutable analysis result.
	Create(ctx context.Context, result *AnalysisResult) error

	// ListByUser returns the most recent results, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*AnalysisResult, error)

	// Latest returns the newest result of one type for a user.
	Latest(ctx context.Context, userID string, analysisType AnalysisType) (*AnalysisResult, error)
}
