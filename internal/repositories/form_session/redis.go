package formsession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/sheetform/internal/redis"
)

const (
	sessionKeyPrefix    = "form_session:"
	playerMappingPrefix = "form_session:player:"

	// DefaultTTL applies to sessions created without an expiry
	DefaultTTL = 24 * time.Hour

	errSessionNil     = "session cannot be nil"
	errSessionIDEmpty = "session ID cannot be empty"
	errPlayerIDEmpty  = "player ID cannot be empty"
	errSessionExpired = "session has already expired"
)

// Config configures the redis repository
type Config struct {
	Client redisclient.Client
	// Clock defaults to the system clock
	Clock clock.Clock
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}

	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedis creates a redis-backed session repository
func NewRedis(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func playerKey(playerID string) string {
	return playerMappingPrefix + playerID
}

// ttlFor returns how long a session stays stored. Sessions without an
// expiry get DefaultTTL and have ExpiresAt filled in.
func (r *redisRepository) ttlFor(session *dnd5e.FormSession) (time.Duration, error) {
	now := r.clock.Now()
	if session.ExpiresAt == 0 {
		session.ExpiresAt = now.Add(DefaultTTL).Unix()
		return DefaultTTL, nil
	}

	ttl := time.Unix(session.ExpiresAt, 0).Sub(now)
	if ttl <= 0 {
		return 0, errors.InvalidArgument(errSessionExpired)
	}
	return ttl, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.Session.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	ttl, err := r.ttlFor(input.Session)
	if err != nil {
		return nil, err
	}

	pKey := playerKey(input.Session.PlayerID)
	existingID, err := r.client.Get(ctx, pKey).Result()
	if err != nil && err != redisclient.Nil {
		return nil, errors.Wrap(err, "failed to check existing session")
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	pipe := r.client.TxPipeline()
	if existingID != "" && existingID != input.Session.ID {
		pipe.Del(ctx, sessionKey(existingID))
	}
	pipe.Set(ctx, sessionKey(input.Session.ID), data, ttl)
	pipe.Set(ctx, pKey, input.Session.ID, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	return &CreateOutput{Session: input.Session, ReplacedID: existingID}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	result, err := r.client.Get(ctx, sessionKey(input.ID)).Result()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFoundf("session %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get session")
	}

	var session dnd5e.FormSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	if session.IsExpired(r.clock.Now()) {
		return nil, errors.NotFoundf("session %s has expired", input.ID)
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) GetByPlayerID(ctx context.Context, input GetByPlayerIDInput) (*GetByPlayerIDOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	pKey := playerKey(input.PlayerID)
	sessionID, err := r.client.Get(ctx, pKey).Result()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFoundf("no session found for player %s", input.PlayerID)
		}
		return nil, errors.Wrap(err, "failed to get player session mapping")
	}

	out, err := r.Get(ctx, GetInput{ID: sessionID})
	if err != nil {
		// Dangling mapping
		if errors.IsNotFound(err) {
			r.client.Del(ctx, pKey)
		}
		return nil, err
	}

	return &GetByPlayerIDOutput{Session: out.Session}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := sessionKey(input.Session.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("session %s not found", input.Session.ID)
	}

	ttl, err := r.ttlFor(input.Session)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)

	// Keep the player mapping alive as long as the session it points at
	if input.Session.PlayerID != "" {
		pKey := playerKey(input.Session.PlayerID)
		current, err := r.client.Get(ctx, pKey).Result()
		if err != nil && err != redisclient.Nil {
			return nil, errors.Wrap(err, "failed to get player session mapping")
		}
		if current == input.Session.ID {
			pipe.Expire(ctx, pKey, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to update session")
	}

	return &UpdateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	out, err := r.Get(ctx, GetInput(input))
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(input.ID))

	// Only drop the mapping if it still points at this session
	pKey := playerKey(out.Session.PlayerID)
	current, err := r.client.Get(ctx, pKey).Result()
	if err != nil && err != redisclient.Nil {
		return nil, errors.Wrap(err, "failed to get player session mapping")
	}
	if current == input.ID {
		pipe.Del(ctx, pKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to delete session")
	}

	return &DeleteOutput{}, nil
}
