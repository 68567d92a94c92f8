// Package builders provides fluent builders for test fixtures
package builders

import (
	"time"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// FormSessionBuilder builds FormSession values for tests
type FormSessionBuilder struct {
	session *dnd5e.FormSession
}

// NewFormSessionBuilder starts from an empty incomplete session
func NewFormSessionBuilder() *FormSessionBuilder {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &FormSessionBuilder{
		session: &dnd5e.FormSession{
			ID:        "form-test-123",
			PlayerID:  "player-test-123",
			State:     dnd5e.FormStateIncomplete,
			Fields:    dnd5e.RawFields{},
			CreatedAt: now.Unix(),
			UpdatedAt: now.Unix(),
			ExpiresAt: now.Add(24 * time.Hour).Unix(),
		},
	}
}

// WithID sets the session ID
func (b *FormSessionBuilder) WithID(id string) *FormSessionBuilder {
	b.session.ID = id
	return b
}

// WithPlayerID sets the player ID
func (b *FormSessionBuilder) WithPlayerID(playerID string) *FormSessionBuilder {
	b.session.PlayerID = playerID
	return b
}

// WithState sets the form state
func (b *FormSessionBuilder) WithState(state dnd5e.FormState) *FormSessionBuilder {
	b.session.State = state
	return b
}

// WithFields replaces the collected fields
func (b *FormSessionBuilder) WithFields(fields dnd5e.RawFields) *FormSessionBuilder {
	b.session.Fields = fields.Clone()
	return b
}

// WithTurn appends a history turn
func (b *FormSessionBuilder) WithTurn(role, text string) *FormSessionBuilder {
	b.session.AddTurn(role, text)
	return b
}

// WithExpiresAt sets the expiry
func (b *FormSessionBuilder) WithExpiresAt(t time.Time) *FormSessionBuilder {
	b.session.ExpiresAt = t.Unix()
	return b
}

// Build returns the session
func (b *FormSessionBuilder) Build() *dnd5e.FormSession {
	return b.session
}
