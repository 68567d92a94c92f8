package formsession_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/pkg/clock"
	"github.com/KirkDiggler/sheetform/internal/redis"
	formsession "github.com/KirkDiggler/sheetform/internal/repositories/form_session"
	"github.com/KirkDiggler/sheetform/internal/testutils"
	"github.com/KirkDiggler/sheetform/internal/testutils/builders"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	client redis.Client
	mr     *miniredis.Miniredis
	clock  *clock.Fixed
	repo   formsession.Repository
	ctx    context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.client, s.mr = testutils.CreateTestRedisClient(s.T())
	s.clock = clock.NewFixed(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	repo, err := formsession.NewRedis(&formsession.Config{
		Client: s.client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)

	s.repo = repo
	s.ctx = context.Background()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestNewRedisRequiresClient() {
	_, err := formsession.NewRedis(&formsession.Config{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = formsession.NewRedis(nil)
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	session := builders.NewFormSessionBuilder().
		WithID("sess_1").
		WithPlayerID("player_1").
		WithFields(dnd5e.RawFields{"name": "Aria", "level": 3}).
		WithTurn(dnd5e.RoleHuman, "Make me an elf").
		Build()

	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	s.True(s.mr.Exists("form_session:sess_1"))
	playerValue, err := s.mr.Get("form_session:player:player_1")
	s.Require().NoError(err)
	s.Equal("sess_1", playerValue)
	s.Greater(s.mr.TTL("form_session:sess_1"), time.Duration(0))

	out, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "sess_1"})
	s.Require().NoError(err)
	s.Equal("player_1", out.Session.PlayerID)
	s.Equal(dnd5e.FormStateIncomplete, out.Session.State)
	s.Equal("Aria", out.Session.Fields["name"])
	// JSON numbers decode as float64
	s.Equal(float64(3), out.Session.Fields["level"])
	s.Require().Len(out.Session.History, 1)
	s.Equal("Make me an elf", out.Session.History[0].Text)
}

func (s *RedisRepositoryTestSuite) TestCreateFillsDefaultExpiry() {
	session := &dnd5e.FormSession{ID: "sess_1", PlayerID: "player_1"}

	out, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(formsession.DefaultTTL).Unix(), out.Session.ExpiresAt)
	s.Equal(formsession.DefaultTTL, s.mr.TTL("form_session:sess_1"))
}

func (s *RedisRepositoryTestSuite) TestCreateValidation() {
	testCases := []struct {
		name    string
		session *dnd5e.FormSession
	}{
		{"nil session", nil},
		{"missing id", &dnd5e.FormSession{PlayerID: "p"}},
		{"missing player", &dnd5e.FormSession{ID: "s"}},
		{"expired", builders.NewFormSessionBuilder().WithExpiresAt(s.clock.Now().Add(-time.Minute)).Build()},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: tc.session})
			s.Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *RedisRepositoryTestSuite) TestCreateReplacesPlayerSession() {
	first := builders.NewFormSessionBuilder().WithID("sess_1").WithPlayerID("player_1").Build()
	second := builders.NewFormSessionBuilder().WithID("sess_2").WithPlayerID("player_1").Build()

	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: first})
	s.Require().NoError(err)

	out, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: second})
	s.Require().NoError(err)
	s.Equal("sess_1", out.ReplacedID)

	_, err = s.repo.Get(s.ctx, formsession.GetInput{ID: "sess_1"})
	s.True(errors.IsNotFound(err))

	byPlayer, err := s.repo.GetByPlayerID(s.ctx, formsession.GetByPlayerIDInput{PlayerID: "player_1"})
	s.Require().NoError(err)
	s.Equal("sess_2", byPlayer.Session.ID)
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "nope"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, formsession.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.GetByPlayerID(s.ctx, formsession.GetByPlayerIDInput{PlayerID: "ghost"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetExpired() {
	session := builders.NewFormSessionBuilder().
		WithID("sess_1").
		WithExpiresAt(s.clock.Now().Add(time.Hour)).
		Build()
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)

	_, err = s.repo.Get(s.ctx, formsession.GetInput{ID: "sess_1"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetByPlayerIDCleansDanglingMapping() {
	session := builders.NewFormSessionBuilder().WithID("sess_1").WithPlayerID("player_1").Build()
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	s.mr.Del("form_session:sess_1")

	_, err = s.repo.GetByPlayerID(s.ctx, formsession.GetByPlayerIDInput{PlayerID: "player_1"})
	s.True(errors.IsNotFound(err))
	s.False(s.mr.Exists("form_session:player:player_1"))
}

func (s *RedisRepositoryTestSuite) TestUpdate() {
	session := builders.NewFormSessionBuilder().WithID("sess_1").Build()
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	session.State = dnd5e.FormStateWaitConfirm
	session.Fields = dnd5e.RawFields{"race": "Dwarf"}
	_, err = s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "sess_1"})
	s.Require().NoError(err)
	s.Equal(dnd5e.FormStateWaitConfirm, out.Session.State)
	s.Equal("Dwarf", out.Session.Fields["race"])
}

func (s *RedisRepositoryTestSuite) TestUpdateSlidesPlayerMapping() {
	session := builders.NewFormSessionBuilder().
		WithID("sess_1").
		WithPlayerID("player_1").
		WithExpiresAt(s.clock.Now().Add(time.Hour)).
		Build()
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	session.ExpiresAt = s.clock.Now().Add(3 * time.Hour).Unix()
	_, err = s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.Require().NoError(err)

	s.Equal(3*time.Hour, s.mr.TTL("form_session:sess_1"))
	s.Equal(3*time.Hour, s.mr.TTL("form_session:player:player_1"))
}

func (s *RedisRepositoryTestSuite) TestUpdateMissing() {
	session := builders.NewFormSessionBuilder().WithID("ghost").Build()
	_, err := s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Update(s.ctx, formsession.UpdateInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	session := builders.NewFormSessionBuilder().WithID("sess_1").WithPlayerID("player_1").Build()
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{Session: session})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, formsession.DeleteInput{ID: "sess_1"})
	s.Require().NoError(err)

	s.False(s.mr.Exists("form_session:sess_1"))
	s.False(s.mr.Exists("form_session:player:player_1"))

	_, err = s.repo.Delete(s.ctx, formsession.DeleteInput{ID: "sess_1"})
	s.True(errors.IsNotFound(err))
}
