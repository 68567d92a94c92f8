// Package form implements the conversational character sheet form
package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/sheetform/internal/charactersheet"
	"github.com/KirkDiggler/sheetform/internal/clients/external"
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/hooks"
	"github.com/KirkDiggler/sheetform/internal/llm"
	"github.com/KirkDiggler/sheetform/internal/orchestrators/dice"
	"github.com/KirkDiggler/sheetform/internal/pkg/clock"
	"github.com/KirkDiggler/sheetform/internal/pkg/idgen"
	formsession "github.com/KirkDiggler/sheetform/internal/repositories/form_session"
	sheetfile "github.com/KirkDiggler/sheetform/internal/repositories/sheet_file"
	"github.com/KirkDiggler/sheetform/internal/services/form"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

// DefaultHistoryLength is how many recent turns go into each prompt
const DefaultHistoryLength = 10

// Replies with fixed text
const (
	ConfirmQuestion = "\n --> Confirm? Yes or no?"
	SavedMessage    = "Character sheet saved"
	ClosedMessage   = "Character sheet form closed. Start again whenever you like."
)

// Config holds the dependencies for the form orchestrator
type Config struct {
	SessionRepo formsession.Repository
	SheetRepo   sheetfile.Repository
	Extractor   llm.Extractor
	Generator   llm.Generator

	// Optional
	Hooks          *hooks.Registry
	DiceService    dice.Service
	ExternalClient external.Client
	IDGenerator    idgen.Generator
	Clock          clock.Clock
	Sender         transport.Sender
	HistoryLength  int
	SessionTTL     time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.SheetRepo == nil {
		vb.RequiredField("SheetRepo")
	}
	if c.Extractor == nil {
		vb.RequiredField("Extractor")
	}
	if c.Generator == nil {
		vb.RequiredField("Generator")
	}
	if c.HistoryLength < 0 {
		vb.Field("HistoryLength", "must not be negative")
	}
	if c.SessionTTL < 0 {
		vb.Field("SessionTTL", "must not be negative")
	}

	return vb.Build()
}

// Orchestrator implements the form.Service interface
type Orchestrator struct {
	sessionRepo    formsession.Repository
	sheetRepo      sheetfile.Repository
	extractor      llm.Extractor
	generator      llm.Generator
	hooks          *hooks.Registry
	diceService    dice.Service
	externalClient external.Client
	idGenerator    idgen.Generator
	clock          clock.Clock
	sender         transport.Sender
	historyLength  int
	sessionTTL     time.Duration
}

// New creates a new form orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &Orchestrator{
		sessionRepo:    cfg.SessionRepo,
		sheetRepo:      cfg.SheetRepo,
		extractor:      cfg.Extractor,
		generator:      cfg.Generator,
		hooks:          cfg.Hooks,
		diceService:    cfg.DiceService,
		externalClient: cfg.ExternalClient,
		idGenerator:    cfg.IDGenerator,
		clock:          cfg.Clock,
		sender:         cfg.Sender,
		historyLength:  cfg.HistoryLength,
		sessionTTL:     cfg.SessionTTL,
	}

	if o.hooks == nil {
		o.hooks = hooks.NewRegistry()
	}
	if o.diceService == nil {
		svc, err := dice.NewOrchestrator(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create dice service")
		}
		o.diceService = svc
	}
	if o.idGenerator == nil {
		o.idGenerator = idgen.NewUUID("form")
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.sender == nil {
		o.sender = transport.Discard{}
	}
	if o.historyLength == 0 {
		o.historyLength = DefaultHistoryLength
	}
	if o.sessionTTL == 0 {
		o.sessionTTL = formsession.DefaultTTL
	}

	return o, nil
}

// Ensure Orchestrator implements the Service interface
var _ form.Service = (*Orchestrator)(nil)

// StartSession opens a new form for the player
func (o *Orchestrator) StartSession(ctx context.Context, input *form.StartSessionInput) (*form.StartSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("playerID", input.PlayerID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	now := o.clock.Now()
	session := &dnd5e.FormSession{
		ID:        o.idGenerator.Generate(),
		PlayerID:  input.PlayerID,
		State:     dnd5e.FormStateIncomplete,
		Fields:    dnd5e.RawFields{},
		Missing:   charactersheet.MissingFields(nil),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
		ExpiresAt: now.Add(o.sessionTTL).Unix(),
	}

	intro := introText(session.Missing)
	session.AddTurn(dnd5e.RoleAI, intro)

	out, err := o.sessionRepo.Create(ctx, formsession.CreateInput{Session: session})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	if out.ReplacedID != "" {
		slog.InfoContext(ctx, "replaced previous form session",
			"player_id", input.PlayerID,
			"session_id", session.ID,
			"replaced_id", out.ReplacedID)
	}

	return &form.StartSessionOutput{
		Session: session,
		Reply: &form.Reply{
			Kind:    form.ReplyIncomplete,
			Text:    intro,
			Missing: session.Missing,
		},
	}, nil
}

// HandleMessage advances the form by one user message
func (o *Orchestrator) HandleMessage(ctx context.Context, input *form.HandleMessageInput) (*form.HandleMessageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("sessionID", input.SessionID, vb)
	errors.ValidateRequired("text", strings.TrimSpace(input.Text), vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	session, err := o.openSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	session.AddTurn(dnd5e.RoleHuman, text)

	var reply *form.Reply
	switch {
	case IsExit(text):
		reply = o.close(session)
	case session.State == dnd5e.FormStateWaitConfirm && IsConfirm(text):
		reply, err = o.submit(ctx, session)
	default:
		// Anything but a confirmation reopens a finished sheet for edits
		session.State = dnd5e.FormStateIncomplete
		reply, err = o.update(ctx, session, o.senderFor(input.Sender))
	}
	if err != nil {
		return nil, err
	}

	if err := o.save(ctx, session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "form turn handled",
		"session_id", session.ID,
		"reply", reply.Kind,
		"missing", len(session.Missing),
		"errors", len(session.Errors))

	return &form.HandleMessageOutput{
		Session: session,
		Reply:   reply,
	}, nil
}

// GetSession retrieves a form session
func (o *Orchestrator) GetSession(ctx context.Context, input *form.GetSessionInput) (*form.GetSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	out, err := o.sessionRepo.Get(ctx, formsession.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}

	return &form.GetSessionOutput{Session: out.Session}, nil
}

// CancelSession closes the form without saving the sheet
func (o *Orchestrator) CancelSession(ctx context.Context, input *form.CancelSessionInput) (*form.CancelSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.openSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	reply := o.close(session)
	if err := o.save(ctx, session); err != nil {
		return nil, err
	}

	return &form.CancelSessionOutput{
		Session: session,
		Reply:   reply,
	}, nil
}

// RollAbilityScores rolls dice for every ability score not set yet and
// continues the form with the new values
func (o *Orchestrator) RollAbilityScores(ctx context.Context, input *form.RollAbilityScoresInput) (*form.RollAbilityScoresOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	session, err := o.openSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, ability := range dnd5e.Abilities {
		if !session.Fields.Has(ability) {
			missing = append(missing, ability)
		}
	}
	if len(missing) == 0 {
		return nil, errors.FailedPrecondition("all ability scores are already set")
	}

	rolled, err := o.diceService.RollAbilityScores(ctx, &dice.RollAbilityScoresInput{
		Entity: session,
		Method: input.Method,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll ability scores")
	}

	scores := rolled.Scores()
	if len(scores) < len(missing) {
		return nil, errors.Internalf("rolled %d scores for %d abilities", len(scores), len(missing))
	}

	update := dnd5e.RawFields{}
	assigned := make(map[string]int, len(missing))
	for i, ability := range missing {
		update[ability] = scores[i]
		assigned[ability] = scores[i]
	}

	session.Fields = session.Fields.Merge(update)
	session.AddTurn(dnd5e.RoleAI, rollSummary(rolled.Method, assigned))

	reply, err := o.evaluate(ctx, session, o.senderFor(input.Sender))
	if err != nil {
		return nil, err
	}
	if err := o.save(ctx, session); err != nil {
		return nil, err
	}

	return &form.RollAbilityScoresOutput{
		Session:  session,
		Reply:    reply,
		Assigned: assigned,
	}, nil
}

// openSession loads a session that still accepts messages
func (o *Orchestrator) openSession(ctx context.Context, id string) (*dnd5e.FormSession, error) {
	out, err := o.sessionRepo.Get(ctx, formsession.GetInput{ID: id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}

	session := out.Session
	if session.IsClosed() {
		return nil, errors.FailedPreconditionf("session %s is closed", id)
	}
	if session.Fields == nil {
		session.Fields = dnd5e.RawFields{}
	}
	return session, nil
}

// update merges what the extractor reads from the conversation into the
// collected fields and evaluates the result
func (o *Orchestrator) update(ctx context.Context, session *dnd5e.FormSession, sender transport.Sender) (*form.Reply, error) {
	extracted, err := o.extractor.ExtractFields(ctx, llm.ExtractInput{
		History: session.RecentHistory(o.historyLength),
		Current: session.Fields,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract fields")
	}

	session.Fields = session.Fields.Merge(charactersheet.Sanitize(extracted))
	return o.evaluate(ctx, session, sender)
}

// evaluate validates the collected fields. Invalid values are dropped so
// the user is asked for them again.
func (o *Orchestrator) evaluate(ctx context.Context, session *dnd5e.FormSession, sender transport.Sender) (*form.Reply, error) {
	sheet, failure := charactersheet.ValidateAndConstruct(session.Fields)
	if failure == nil {
		return o.askConfirmation(session, sheet)
	}

	session.State = dnd5e.FormStateIncomplete
	session.Fields = session.Fields.Without(failure.InvalidFields()...)
	session.Missing = failure.Missing
	session.Errors = failure.Messages()

	return o.askForMissing(ctx, session, sender)
}

func (o *Orchestrator) askConfirmation(session *dnd5e.FormSession, sheet *dnd5e.CharacterSheet) (*form.Reply, error) {
	sheetJSON, err := charactersheet.ToOrderedJSON(sheet)
	if err != nil {
		return nil, err
	}

	session.State = dnd5e.FormStateWaitConfirm
	session.Fields = sheet.Fields()
	session.Missing = nil
	session.Errors = nil

	text := charactersheet.Render(sheetJSON) + ConfirmQuestion
	session.AddTurn(dnd5e.RoleAI, text)

	return &form.Reply{
		Kind:  form.ReplyWaitConfirm,
		Text:  text,
		Sheet: sheetJSON,
	}, nil
}

// askForMissing shows the partial sheet, then streams a generated reply
// asking for what is still missing or invalid
func (o *Orchestrator) askForMissing(ctx context.Context, session *dnd5e.FormSession, sender transport.Sender) (*form.Reply, error) {
	sheetJSON, err := charactersheet.PartialJSON(session.Fields)
	if err != nil {
		return nil, err
	}
	rendered := charactersheet.Render(sheetJSON)

	if err := sender.Send(ctx, transport.Message{Kind: transport.KindChat, Text: rendered}); err != nil {
		return nil, errors.Wrap(err, "failed to send character sheet")
	}

	answer, err := o.generator.Generate(ctx, llm.GenerateInput{
		Prompt: o.buildPrompt(ctx, session, rendered),
		OnToken: func(token string) error {
			return sender.Send(ctx, transport.Message{Kind: transport.KindChatToken, Text: token})
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate reply")
	}

	session.AddTurn(dnd5e.RoleAI, answer)

	return &form.Reply{
		Kind:    form.ReplyIncomplete,
		Text:    answer,
		Sheet:   sheetJSON,
		Missing: session.Missing,
		Errors:  session.Errors,
	}, nil
}

// submit persists a confirmed sheet and closes the form
func (o *Orchestrator) submit(ctx context.Context, session *dnd5e.FormSession) (*form.Reply, error) {
	sheet, failure := charactersheet.ValidateAndConstruct(session.Fields)
	if failure != nil {
		return nil, errors.Wrap(failure.ToError(), "confirmed sheet is not valid")
	}

	out, err := o.sheetRepo.Save(ctx, sheetfile.SaveInput{Sheet: sheet})
	if err != nil {
		return nil, errors.Wrap(err, "failed to save character sheet")
	}

	slog.InfoContext(ctx, "character sheet submitted",
		"session_id", session.ID,
		"player_id", session.PlayerID,
		"file", out.FileName,
		"overwritten", out.Overwritten)

	session.State = dnd5e.FormStateClosed
	session.SavedAs = out.FileName
	session.AddTurn(dnd5e.RoleAI, SavedMessage)

	sheetJSON, err := charactersheet.ToOrderedJSON(sheet)
	if err != nil {
		return nil, err
	}

	return &form.Reply{
		Kind:  form.ReplySubmitted,
		Text:  SavedMessage,
		Sheet: sheetJSON,
	}, nil
}

func (o *Orchestrator) close(session *dnd5e.FormSession) *form.Reply {
	session.State = dnd5e.FormStateClosed
	session.AddTurn(dnd5e.RoleAI, ClosedMessage)

	return &form.Reply{
		Kind: form.ReplyClosed,
		Text: ClosedMessage,
	}
}

// save stamps the session and slides its expiry
func (o *Orchestrator) save(ctx context.Context, session *dnd5e.FormSession) error {
	now := o.clock.Now()
	session.UpdatedAt = now.Unix()
	session.ExpiresAt = now.Add(o.sessionTTL).Unix()

	if _, err := o.sessionRepo.Update(ctx, formsession.UpdateInput{Session: session}); err != nil {
		return errors.Wrap(err, "failed to update session")
	}
	return nil
}

func (o *Orchestrator) senderFor(s transport.Sender) transport.Sender {
	if s != nil {
		return s
	}
	return o.sender
}

func introText(missing []string) string {
	return fmt.Sprintf("Let's create a new Dungeons & Dragons character! Tell me about them. "+
		"I need: %s. Say \"stop\" at any time to leave the form.", strings.Join(missing, ", "))
}
