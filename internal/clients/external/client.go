// Package external wraps the D&D 5e SRD API used for race and class hints
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/KirkDiggler/sheetform/internal/clients/external Client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/KirkDiggler/sheetform/internal/errors"
)

// Client returns short reference notes for the prompt
type Client interface {
	// RaceHint describes a race in one line, e.g. "Elf: Medium, speed 30 ft"
	// Returns errors.NotFound if the API does not know the race
	RaceHint(ctx context.Context, race string) (string, error)

	// ClassHint describes a class in one line including its hit die
	// Returns errors.NotFound if the API does not know the class
	ClassHint(ctx context.Context, class string) (string, error)
}

// SourceAPI is the part of the dnd5e-api client the hints need
type SourceAPI interface {
	GetRace(key string) (*entities.Race, error)
	GetClass(key string) (*entities.Class, error)
}

// Config contains configuration options for the external client
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 10 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours)
	CacheTTL time.Duration
}

// Validate sets defaults for unset fields
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	vb := errors.NewValidationBuilder()
	if cfg.HTTPTimeout < 0 {
		vb.Field("HTTPTimeout", "must not be negative")
	}
	if cfg.CacheTTL < 0 {
		vb.Field("CacheTTL", "must not be negative")
	}
	return vb.Build()
}

type client struct {
	api SourceAPI
}

// New creates a cached client for the SRD API
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return NewWithAPI(dnd5e.NewCachedClient(baseClient, cfg.CacheTTL)), nil
}

// NewWithAPI builds a client on an existing API implementation
func NewWithAPI(api SourceAPI) Client {
	return &client{api: api}
}

// apiKey converts a display name to the SRD index, "Half-Orc" -> "half-orc"
func apiKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

func (c *client) RaceHint(ctx context.Context, race string) (string, error) {
	if race == "" {
		return "", errors.InvalidArgument("race is required")
	}

	key := apiKey(race)
	r, err := c.api.GetRace(key)
	if err != nil {
		slog.DebugContext(ctx, "race lookup failed", "race", race, "error", err)
		return "", errors.WrapWithCode(err, errors.CodeUnavailable, fmt.Sprintf("failed to get race %s", key))
	}
	if r == nil {
		return "", errors.NotFoundf("race %s not found", key)
	}

	hint := fmt.Sprintf("%s: %s, speed %d ft", r.Name, r.Size, r.Speed)
	if r.SizeDescription != "" {
		hint += ". " + firstSentence(r.SizeDescription)
	}
	return hint, nil
}

func (c *client) ClassHint(ctx context.Context, class string) (string, error) {
	if class == "" {
		return "", errors.InvalidArgument("class is required")
	}

	key := apiKey(class)
	cl, err := c.api.GetClass(key)
	if err != nil {
		slog.DebugContext(ctx, "class lookup failed", "class", class, "error", err)
		return "", errors.WrapWithCode(err, errors.CodeUnavailable, fmt.Sprintf("failed to get class %s", key))
	}
	if cl == nil {
		return "", errors.NotFoundf("class %s not found", key)
	}

	saves := make([]string, 0, len(cl.SavingThrows))
	for _, st := range cl.SavingThrows {
		saves = append(saves, st.Name)
	}

	hint := fmt.Sprintf("%s: hit die d%d, level 1 health points %d + constitution modifier",
		cl.Name, cl.HitDie, cl.HitDie)
	if len(saves) > 0 {
		hint += ", saving throws " + strings.Join(saves, ", ")
	}
	return hint, nil
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
