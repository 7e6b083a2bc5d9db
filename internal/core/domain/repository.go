package domain

import "context"

type UserRepository interface {
	// Create persists a new user together with its initial profile.
	Create(ctx context.Context, user *User, profile *UserProfile) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by its lowercase email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListIDs returns every user id, for batch processing.
	ListIDs(ctx context.Context) ([]string, error)

	// GetProfile retrieves the profile attached to a user.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// UpdateProfile writes the full merged profile state.
	UpdateProfile(ctx context.Context, profile *UserProfile) error
}
