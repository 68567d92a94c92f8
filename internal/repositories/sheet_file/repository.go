// Package sheetfile persists confirmed character sheets as JSON files
package sheetfile

//go:generate mockgen -destination=mock/mock_repository.go -package=sheetfilemock github.com/KirkDiggler/sheetform/internal/repositories/sheet_file Repository

import (
	"context"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// Repository stores one file per character name
type Repository interface {
	// Save writes the sheet as <name>.json
	// Returns errors.InvalidArgument for a nil sheet or empty name
	// Returns errors.AlreadyExists when uniqueness is required and the file exists
	// Returns errors.Internal when the file cannot be written
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get reads a saved sheet back by character name
	// Returns errors.NotFound if no file exists for the name
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
}

// SaveInput defines the input for saving a sheet
type SaveInput struct {
	Sheet *dnd5e.CharacterSheet
}

// SaveOutput defines the output for saving a sheet
type SaveOutput struct {
	// FileName is the base name of the written file
	FileName string
	Path     string
	// Overwritten is true when a previous file with the same name was replaced
	Overwritten bool
}

// GetInput defines the input for reading a sheet
type GetInput struct {
	Name string
}

// GetOutput defines the output for reading a sheet
type GetOutput struct {
	Sheet *dnd5e.CharacterSheet
	Path  string
}
