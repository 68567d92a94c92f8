package sheetfile

import (
	"context"
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KirkDiggler/sheetform/internal/charactersheet"
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
)

const (
	fileExt  = ".json"
	filePerm = 0o644
	dirPerm  = 0o755
)

// Config configures the file store
type Config struct {
	// Dir is the static directory sheets are written into
	Dir string
	// RequireUnique rejects a save when a sheet with the same file name
	// already exists instead of overwriting it
	RequireUnique bool
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Dir", c.Dir, vb)
	return vb.Build()
}

type fileRepository struct {
	dir           string
	requireUnique bool
}

// NewFile creates a file-backed repository, creating Dir if needed
func NewFile(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to create sheet directory")
	}

	return &fileRepository{
		dir:           cfg.Dir,
		requireUnique: cfg.RequireUnique,
	}, nil
}

// FileName derives the file name for a character: spaces become
// underscores and path separators are neutralised so the file stays in
// the store directory.
func FileName(name string) string {
	base := strings.ReplaceAll(name, " ", "_")
	base = strings.NewReplacer("/", "_", "\\", "_", string(filepath.Separator), "_").Replace(base)
	if base == "." || base == ".." {
		base = strings.Repeat("_", len(base))
	}
	return base + fileExt
}

func (r *fileRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Sheet == nil {
		return nil, errors.InvalidArgument("sheet is required")
	}
	if strings.TrimSpace(input.Sheet.Name) == "" {
		return nil, errors.InvalidArgument("sheet name is required")
	}

	body, err := charactersheet.ToOrderedJSON(input.Sheet)
	if err != nil {
		return nil, err
	}

	name := FileName(input.Sheet.Name)
	path := filepath.Join(r.dir, name)

	_, statErr := os.Stat(path)
	exists := statErr == nil

	if r.requireUnique {
		if exists {
			return nil, errors.AlreadyExistsf("a character sheet named %s already exists", name)
		}
		if err := writeExclusive(path, []byte(body)); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return nil, errors.AlreadyExistsf("a character sheet named %s already exists", name)
			}
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to write character sheet")
		}
	} else if err := writeAtomic(r.dir, path, []byte(body)); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to write character sheet")
	}

	slog.InfoContext(ctx, "character sheet saved",
		"file", name,
		"overwritten", exists && !r.requireUnique)

	return &SaveOutput{
		FileName:    name,
		Path:        path,
		Overwritten: exists && !r.requireUnique,
	}, nil
}

func (r *fileRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.InvalidArgument("name is required")
	}

	path := filepath.Join(r.dir, FileName(input.Name))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFoundf("no character sheet saved for %s", input.Name)
		}
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to read character sheet")
	}

	var sheet dnd5e.CharacterSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to decode character sheet")
	}

	return &GetOutput{Sheet: &sheet, Path: path}, nil
}

// writeAtomic writes through a temp file and renames it over path so a
// reader never sees a half-written sheet.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".sheet-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
