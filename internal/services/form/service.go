// Package form defines the conversational character sheet form
package form

//go:generate mockgen -destination=mock/mock_service.go -package=formmock github.com/KirkDiggler/sheetform/internal/services/form Service

import (
	"context"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

// Service drives a multi-turn character sheet conversation
type Service interface {
	// StartSession opens a form for a player, replacing any previous one
	StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error)

	// HandleMessage processes one user message.
	// Returns errors.FailedPrecondition if the session is closed
	HandleMessage(ctx context.Context, input *HandleMessageInput) (*HandleMessageOutput, error)

	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)

	// CancelSession closes the form without saving
	CancelSession(ctx context.Context, input *CancelSessionInput) (*CancelSessionOutput, error)

	// RollAbilityScores fills the missing ability scores with dice rolls
	// Returns errors.FailedPrecondition if no ability score is missing
	RollAbilityScores(ctx context.Context, input *RollAbilityScoresInput) (*RollAbilityScoresOutput, error)
}

// ReplyKind tells the caller where the form stands after a turn
type ReplyKind string

// Reply kinds
const (
	// ReplyIncomplete re-prompts for missing or invalid fields
	ReplyIncomplete ReplyKind = "INCOMPLETE"
	// ReplyWaitConfirm shows the complete sheet and asks for confirmation
	ReplyWaitConfirm ReplyKind = "WAIT_CONFIRM"
	// ReplySubmitted confirms the sheet was saved
	ReplySubmitted ReplyKind = "SUBMITTED"
	// ReplyClosed acknowledges the user left the form
	ReplyClosed ReplyKind = "CLOSED"
)

// Reply is the form's answer to one turn
type Reply struct {
	Kind ReplyKind
	Text string
	// Sheet is the pretty-printed sheet JSON when one is available
	Sheet   string
	Missing []string
	Errors  []string
}

// StartSessionInput defines the request for starting a form
type StartSessionInput struct {
	PlayerID string
}

// StartSessionOutput defines the response for starting a form
type StartSessionOutput struct {
	Session *dnd5e.FormSession
	Reply   *Reply
}

// HandleMessageInput defines the request for processing a message
type HandleMessageInput struct {
	SessionID string
	Text      string
	// Sender receives the rendered sheet and streamed tokens for this turn;
	// the service default is used when nil
	Sender transport.Sender
}

// HandleMessageOutput defines the response for processing a message
type HandleMessageOutput struct {
	Session *dnd5e.FormSession
	Reply   *Reply
}

// GetSessionInput defines the request for getting a form
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput defines the response for getting a form
type GetSessionOutput struct {
	Session *dnd5e.FormSession
}

// CancelSessionInput defines the request for cancelling a form
type CancelSessionInput struct {
	SessionID string
}

// CancelSessionOutput defines the response for cancelling a form
type CancelSessionOutput struct {
	Session *dnd5e.FormSession
	Reply   *Reply
}

// RollAbilityScoresInput defines the request for rolling ability scores
type RollAbilityScoresInput struct {
	SessionID string
	// Method is a dice method name; empty uses 4d6 drop lowest
	Method string
	Sender transport.Sender
}

// RollAbilityScoresOutput defines the response for rolling ability scores
type RollAbilityScoresOutput struct {
	Session *dnd5e.FormSession
	Reply   *Reply
	// Assigned maps each filled ability to its rolled score
	Assigned map[string]int
}
