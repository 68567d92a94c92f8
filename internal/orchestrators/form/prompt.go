package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/hooks"
)

const taskInstructions = `Your task is to assist in the creation of a character sheet for DnD, use the information below to assist 
the human providing useful hints, asking for the missing fields and providing information about eventual errors.`

// buildPrompt assembles the reply prompt: persona prefix, task, the
// rendered sheet, what is missing or invalid, reference notes and the
// recent conversation
func (o *Orchestrator) buildPrompt(ctx context.Context, session *dnd5e.FormSession, rendered string) string {
	prefix := o.hooks.Resolve(ctx, hooks.HookAgentPromptPrefix, hooks.DefaultPromptPrefix)

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString("\n\n")
	sb.WriteString(taskInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(rendered)

	if len(session.Missing) > 0 {
		sb.WriteString("\nMissing fields:")
		sb.WriteString(bulleted(session.Missing))
	}
	if len(session.Errors) > 0 {
		sb.WriteString("\nInvalid fields:")
		sb.WriteString(bulleted(session.Errors))
	}
	if notes := o.referenceNotes(ctx, session.Fields); len(notes) > 0 {
		sb.WriteString("\nReference notes:")
		sb.WriteString(bulleted(notes))
	}

	sb.WriteString("\n\n## Conversation until now:")
	sb.WriteString(dnd5e.StringifyHistory(session.RecentHistory(o.historyLength)))
	sb.WriteString("\nAI:")

	return sb.String()
}

func bulleted(items []string) string {
	return "\n - " + strings.Join(items, "\n - ")
}

// referenceNotes looks up the chosen race and class. Lookup failures only
// cost the hint.
func (o *Orchestrator) referenceNotes(ctx context.Context, fields dnd5e.RawFields) []string {
	if o.externalClient == nil {
		return nil
	}

	var notes []string
	if race, ok := fields[dnd5e.FieldRace].(string); ok {
		hint, err := o.externalClient.RaceHint(ctx, race)
		if err != nil {
			slog.WarnContext(ctx, "race hint unavailable", "race", race, "error", err)
		} else {
			notes = append(notes, hint)
		}
	}
	if class, ok := fields[dnd5e.FieldClass].(string); ok {
		hint, err := o.externalClient.ClassHint(ctx, class)
		if err != nil {
			slog.WarnContext(ctx, "class hint unavailable", "class", class, "error", err)
		} else {
			notes = append(notes, hint)
		}
	}
	return notes
}

func rollSummary(method string, assigned map[string]int) string {
	parts := make([]string, 0, len(assigned))
	for _, ability := range dnd5e.Abilities {
		if score, ok := assigned[ability]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", ability, score))
		}
	}
	return fmt.Sprintf("Rolled ability scores (%s): %s", method, strings.Join(parts, ", "))
}
