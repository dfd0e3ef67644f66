package usecase

import (
	"context"

	"madredder/internal/domain/entity"
)

// RegisterInput represents the input for creating a new account.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // "user" or "canteen"
}

// UpdateContactInput represents the input for editing contact fields.
// Nil fields are left unchanged.
type UpdateContactInput struct {
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ProfileUsecase covers the account lifecycle: signup, profile edits,
// location association and deletion.
type ProfileUsecase interface {
	// Register provisions an identity and creates the profile document with
	// an empty reservation registry.
	Register(ctx context.Context, input *RegisterInput) (*entity.Profile, error)

	// GetProfile returns the caller's own profile.
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)

	// UpdateContact edits the caller's contact fields.
	UpdateContact(ctx context.Context, userID string, input *UpdateContactInput) (*entity.Profile, error)

	// AttachLocation binds a 4-digit canteen code to the caller's profile
	// after existence-checking it against the locations collection.
	AttachLocation(ctx context.Context, userID, code string) error

	// DeleteAccount releases every reservation the profile holds (restoring
	// ledger capacity per offer), deletes the profile document, then deletes
	// the identity. The release step is never skipped.
	DeleteAccount(ctx context.Context, userID string) error
}
