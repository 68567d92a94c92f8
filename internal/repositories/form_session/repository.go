// Package formsession stores in-progress character sheet conversations
package formsession

//go:generate mockgen -destination=mock/mock_repository.go -package=formsessionmock github.com/KirkDiggler/sheetform/internal/repositories/form_session Repository

import (
	"context"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// Repository persists form sessions. A player has at most one session;
// creating a new one replaces the previous.
type Repository interface {
	// Create stores a new session and replaces the player's previous one
	// Returns errors.InvalidArgument for missing IDs or an expired session
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a session by ID
	// Returns errors.NotFound if the session doesn't exist or has expired
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetByPlayerID retrieves the player's current session
	// Returns errors.NotFound if the player has no session
	GetByPlayerID(ctx context.Context, input GetByPlayerIDInput) (*GetByPlayerIDOutput, error)

	// Update overwrites an existing session
	// Returns errors.NotFound if the session doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a session and its player mapping
	// Returns errors.NotFound if the session doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating a session
type CreateInput struct {
	Session *dnd5e.FormSession
}

// CreateOutput defines the output for creating a session
type CreateOutput struct {
	Session *dnd5e.FormSession
	// ReplacedID is the ID of the player's previous session, if any
	ReplacedID string
}

// GetInput defines the input for getting a session
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a session
type GetOutput struct {
	Session *dnd5e.FormSession
}

// GetByPlayerIDInput defines the input for getting a player's session
type GetByPlayerIDInput struct {
	PlayerID string
}

// GetByPlayerIDOutput defines the output for getting a player's session
type GetByPlayerIDOutput struct {
	Session *dnd5e.FormSession
}

// UpdateInput defines the input for updating a session
type UpdateInput struct {
	Session *dnd5e.FormSession
}

// UpdateOutput defines the output for updating a session
type UpdateOutput struct {
	Session *dnd5e.FormSession
}

// DeleteInput defines the input for deleting a session
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a session
type DeleteOutput struct{}
