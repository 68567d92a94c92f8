package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/KirkDiggler/sheetform/internal/charactersheet"
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
)

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

// ExtractionSchema is the structured output schema for field extraction.
// Every property is nullable so the model can leave unknown fields empty.
func ExtractionSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(dnd5e.RequiredFields))
	for _, field := range dnd5e.RequiredFields {
		prop := &genai.Schema{
			Description: charactersheet.FieldDescriptions[field],
			Nullable:    boolPtr(true),
		}

		switch field {
		case dnd5e.FieldName:
			prop.Type = genai.TypeString
		case dnd5e.FieldRace:
			prop.Type = genai.TypeString
			prop.Format = "enum"
			prop.Enum = dnd5e.Races
		case dnd5e.FieldClass:
			prop.Type = genai.TypeString
			prop.Format = "enum"
			prop.Enum = dnd5e.Classes
		case dnd5e.FieldLevel:
			prop.Type = genai.TypeInteger
			prop.Minimum = floatPtr(dnd5e.LevelMin)
			prop.Maximum = floatPtr(dnd5e.LevelMax)
		case dnd5e.FieldHealthPoints, dnd5e.FieldArmorClass:
			prop.Type = genai.TypeInteger
			prop.Minimum = floatPtr(1)
		default:
			prop.Type = genai.TypeInteger
			prop.Minimum = floatPtr(dnd5e.AbilityMin)
			prop.Maximum = floatPtr(dnd5e.AbilityMax)
		}

		props[field] = prop
	}

	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: append([]string(nil), dnd5e.RequiredFields...),
	}
}

// ExtractionPrompt asks the model to update the current JSON from the
// conversation
func ExtractionPrompt(input ExtractInput) (string, error) {
	current, err := charactersheet.PartialJSON(input.Current)
	if err != nil {
		return "", err
	}

	var structure strings.Builder
	for _, field := range dnd5e.RequiredFields {
		structure.WriteString(fmt.Sprintf("    %q: // %s\n", field, charactersheet.FieldDescriptions[field]))
	}

	return fmt.Sprintf(`Your task is to fill up a JSON out of a conversation.
The JSON must have this format:
{
%s}

This is the current JSON:
%s

This is the conversation:
%s

Only use values the Human actually gave. Use null for anything not mentioned.
Updated JSON:`, structure.String(), current, dnd5e.StringifyHistory(input.History)), nil
}

// ParseExtraction decodes the model output into raw fields. Code fences
// around the JSON are tolerated and numbers stay json.Number so the
// validator decides what is an integer.
func ParseExtraction(text string) (dnd5e.RawFields, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	if body == "" {
		return dnd5e.RawFields{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()

	var out dnd5e.RawFields
	if err := dec.Decode(&out); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "model returned malformed JSON")
	}
	if out == nil {
		out = dnd5e.RawFields{}
	}
	return out, nil
}
