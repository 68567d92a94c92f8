package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/alicebob/miniredis/v2"

	"github.com/KirkDiggler/sheetform/internal/clients/external"
	"github.com/KirkDiggler/sheetform/internal/config"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/hooks"
	"github.com/KirkDiggler/sheetform/internal/llm"
	formorch "github.com/KirkDiggler/sheetform/internal/orchestrators/form"
	"github.com/KirkDiggler/sheetform/internal/pkg/clock"
	"github.com/KirkDiggler/sheetform/internal/pkg/idgen"
	"github.com/KirkDiggler/sheetform/internal/redis"
	formsession "github.com/KirkDiggler/sheetform/internal/repositories/form_session"
	sheetfile "github.com/KirkDiggler/sheetform/internal/repositories/sheet_file"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

// app is the wired form orchestrator plus whatever must be closed with it
type app struct {
	form    *formorch.Orchestrator
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setupLogger(cfg *config.Config, out io.Writer, json bool) {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if json {
		handler = slog.NewJSONHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newApp wires every dependency of the form orchestrator from cfg
func newApp(ctx context.Context, cfg *config.Config, sender transport.Sender) (*app, error) {
	a := &app{}

	redisClient, err := newRedisClient(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	sessionRepo, err := formsession.NewRedis(&formsession.Config{
		Client: redisClient,
		Clock:  clock.New(),
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create session repository")
	}

	sheetRepo, err := sheetfile.NewFile(&sheetfile.Config{
		Dir:           cfg.SheetDir,
		RequireUnique: cfg.RequireUnique,
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create sheet store")
	}

	gemini, err := llm.NewGemini(ctx, cfg.LLM())
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create language model client")
	}

	registry := hooks.NewRegistry()
	if cfg.HooksFile != "" {
		names, err := registry.LoadOverrides(cfg.HooksFile)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "failed to load hook overrides")
		}
		slog.Info("loaded hook overrides", "file", cfg.HooksFile, "hooks", names)
	}

	var hints external.Client
	if cfg.HintsEnabled {
		hints, err = external.New(cfg.External())
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "failed to create SRD client")
		}
	}

	orchestrator, err := formorch.New(&formorch.Config{
		SessionRepo:    sessionRepo,
		SheetRepo:      sheetRepo,
		Extractor:      gemini,
		Generator:      gemini,
		Hooks:          registry,
		ExternalClient: hints,
		IDGenerator:    idgen.NewUUID("form"),
		Clock:          clock.New(),
		Sender:         sender,
		HistoryLength:  cfg.HistoryLength,
		SessionTTL:     cfg.SessionTTL,
	})
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to create form orchestrator")
	}

	a.form = orchestrator
	return a, nil
}

// newRedisClient connects to the configured endpoint, or starts an
// in-process miniredis when none is configured
func newRedisClient(ctx context.Context, cfg *config.Config, a *app) (redis.Client, error) {
	endpoint := cfg.RedisEndpoint
	if endpoint == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, errors.Wrap(err, "failed to start embedded redis")
		}
		a.closers = append(a.closers, mr.Close)
		endpoint = mr.Addr()
		slog.Warn("no redis endpoint configured, sessions are kept in memory", "addr", endpoint)
	}

	client, err := redis.NewClient(endpoint, cfg.Redis())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create redis client")
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	if err := redis.Ping(ctx, client); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "redis is not reachable")
	}
	return client, nil
}
