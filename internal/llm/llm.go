// Package llm defines the language-model collaborators of the character
// sheet form: one extracts sheet fields from chat, the other writes replies.
package llm

//go:generate mockgen -destination=mock/mock_llm.go -package=llmmock github.com/KirkDiggler/sheetform/internal/llm Extractor,Generator

import (
	"context"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// Extractor reads character sheet fields out of a conversation
type Extractor interface {
	// ExtractFields returns the fields the conversation supports. Fields the
	// user has not mentioned are omitted or nil.
	ExtractFields(ctx context.Context, input ExtractInput) (dnd5e.RawFields, error)
}

// ExtractInput carries the conversation and the fields collected so far
type ExtractInput struct {
	History []dnd5e.Turn
	Current dnd5e.RawFields
}

// Generator produces a reply to a prompt
type Generator interface {
	// Generate returns the full reply. When OnToken is set every chunk is
	// passed to it as soon as it arrives.
	Generate(ctx context.Context, input GenerateInput) (string, error)
}

// GenerateInput is a prompt plus an optional streaming callback
type GenerateInput struct {
	Prompt  string
	OnToken func(token string) error
}
