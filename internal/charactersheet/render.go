package charactersheet

import (
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
)

const jsonIndent = "    "

// ToOrderedJSON pretty-prints a sheet: stored fields in sheet order, then
// the derived fields. The same text is shown to the user and persisted.
func ToOrderedJSON(sheet *dnd5e.CharacterSheet) (string, error) {
	if sheet == nil {
		return "", errors.InvalidArgument("sheet is required")
	}

	data, err := json.MarshalIndent(sheet, "", jsonIndent)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal character sheet")
	}
	return string(data), nil
}

// PartialJSON pretty-prints the fields collected so far, for sheets that do
// not validate yet. Keys are sorted by the encoder.
func PartialJSON(raw dnd5e.RawFields) (string, error) {
	if raw == nil {
		raw = dnd5e.RawFields{}
	}

	data, err := json.MarshalIndent(raw, "", jsonIndent)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal character sheet fields")
	}
	return string(data), nil
}

// Render wraps sheet JSON in the block shown in chat
func Render(sheetJSON string) string {
	return fmt.Sprintf("Character Sheet:\n\n```json\n%s\n```\n", sheetJSON)
}
