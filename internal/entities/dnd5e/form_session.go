package dnd5e

import (
	"fmt"
	"strings"
	"time"
)

// FormState is the lifecycle state of a character sheet form session
type FormState string

// Form states
const (
	FormStateIncomplete  FormState = "INCOMPLETE"
	FormStateWaitConfirm FormState = "WAIT_CONFIRM"
	FormStateClosed      FormState = "CLOSED"
)

// Chat roles recorded in a session history
const (
	RoleHuman = "Human"
	RoleAI    = "AI"
)

// Turn is one message of the form conversation
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// FormSession tracks one player's character sheet conversation
type FormSession struct {
	ID       string    `json:"id"`
	PlayerID string    `json:"player_id"`
	State    FormState `json:"state"`

	// Fields holds the valid values collected so far
	Fields  RawFields `json:"fields"`
	Missing []string  `json:"missing,omitempty"`
	Errors  []string  `json:"errors,omitempty"`
	History []Turn    `json:"history,omitempty"`

	// SavedAs is the artifact file name once the sheet is submitted
	SavedAs string `json:"saved_as,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// GetID returns the session ID
func (s *FormSession) GetID() string {
	return s.ID
}

// GetType returns the entity type for rpg-toolkit
func (s *FormSession) GetType() string {
	return "form_session"
}

// IsExpired checks if the session has expired at the given time
func (s *FormSession) IsExpired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// IsClosed reports whether the session accepts no more messages
func (s *FormSession) IsClosed() bool {
	return s.State == FormStateClosed
}

// AddTurn appends a message to the history
func (s *FormSession) AddTurn(role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text})
}

// RecentHistory returns at most the last n turns
func (s *FormSession) RecentHistory(n int) []Turn {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// StringifyHistory renders turns as a "- Role: text" transcript
func StringifyHistory(turns []Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString(fmt.Sprintf("\n - %s: %s", t.Role, t.Text))
	}
	return sb.String()
}
