package llm

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
)

// Backends
const (
	BackendGeminiAPI = "gemini"
	BackendVertexAI  = "vertex"
)

// DefaultModel is used when Config.Model is empty
const DefaultModel = "gemini-2.5-flash"

// Config selects the Gemini backend and model
type Config struct {
	Backend string
	// APIKey is required for the Gemini API backend
	APIKey string
	// Project and Location are required for Vertex AI
	Project  string
	Location string
	Model    string
	// Temperature applies to reply generation; extraction always runs at 0
	Temperature float32
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Backend {
	case BackendGeminiAPI, "":
		errors.ValidateRequired("APIKey", c.APIKey, vb)
	case BackendVertexAI:
		errors.ValidateRequired("Project", c.Project, vb)
		errors.ValidateRequired("Location", c.Location, vb)
	default:
		errors.ValidateEnum("Backend", c.Backend, []string{BackendGeminiAPI, BackendVertexAI}, vb)
	}

	return vb.Build()
}

// Gemini implements Extractor and Generator on the Gemini models
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a client for the configured backend
func NewGemini(ctx context.Context, cfg *Config) (*Gemini, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend == BackendVertexAI {
		clientCfg = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to create gemini client")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Gemini{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// ExtractFields implements Extractor with a JSON response schema
func (g *Gemini) ExtractFields(ctx context.Context, input ExtractInput) (dnd5e.RawFields, error) {
	prompt, err := ExtractionPrompt(input)
	if err != nil {
		return nil, err
	}

	var temp float32
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ExtractionSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "field extraction failed")
	}

	fields, err := ParseExtraction(extractText(resp))
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "extracted fields",
		"model", g.model,
		"count", len(fields))

	return fields, nil
}

// Generate implements Generator, streaming chunks to OnToken
func (g *Gemini) Generate(ctx context.Context, input GenerateInput) (string, error) {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}

	var sb strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(input.Prompt), cfg) {
		if err != nil {
			return "", errors.WrapWithCode(err, errors.CodeUnavailable, "reply generation failed")
		}

		chunk := extractText(resp)
		if chunk == "" {
			continue
		}
		sb.WriteString(chunk)

		if input.OnToken != nil {
			if err := input.OnToken(chunk); err != nil {
				return "", errors.Wrap(err, "failed to stream token")
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// extractText concatenates the text parts of the first candidate
func extractText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

var (
	_ Extractor = (*Gemini)(nil)
	_ Generator = (*Gemini)(nil)
)
