package form_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	externalmock "github.com/KirkDiggler/sheetform/internal/clients/external/mock"
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/hooks"
	"github.com/KirkDiggler/sheetform/internal/llm"
	llmmock "github.com/KirkDiggler/sheetform/internal/llm/mock"
	"github.com/KirkDiggler/sheetform/internal/orchestrators/dice"
	dicemock "github.com/KirkDiggler/sheetform/internal/orchestrators/dice/mock"
	formorch "github.com/KirkDiggler/sheetform/internal/orchestrators/form"
	"github.com/KirkDiggler/sheetform/internal/pkg/clock"
	"github.com/KirkDiggler/sheetform/internal/pkg/idgen"
	formsession "github.com/KirkDiggler/sheetform/internal/repositories/form_session"
	formsessionmock "github.com/KirkDiggler/sheetform/internal/repositories/form_session/mock"
	sheetfile "github.com/KirkDiggler/sheetform/internal/repositories/sheet_file"
	sheetfilemock "github.com/KirkDiggler/sheetform/internal/repositories/sheet_file/mock"
	"github.com/KirkDiggler/sheetform/internal/services/form"
	"github.com/KirkDiggler/sheetform/internal/testutils"
	"github.com/KirkDiggler/sheetform/internal/testutils/builders"
	"github.com/KirkDiggler/sheetform/internal/testutils/mocks"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockSessionRepo *formsessionmock.MockRepository
	mockSheetRepo   *sheetfilemock.MockRepository
	mockExtractor   *llmmock.MockExtractor
	mockGenerator   *llmmock.MockGenerator
	mockDice        *dicemock.MockService
	mockExternal    *externalmock.MockClient
	registry        *hooks.Registry
	clock           *clock.Fixed
	recorder        *transport.Recorder
	orchestrator    *formorch.Orchestrator
	ctx             context.Context
	now             time.Time
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSessionRepo = formsessionmock.NewMockRepository(s.ctrl)
	s.mockSheetRepo = sheetfilemock.NewMockRepository(s.ctrl)
	s.mockExtractor = llmmock.NewMockExtractor(s.ctrl)
	s.mockGenerator = llmmock.NewMockGenerator(s.ctrl)
	s.mockDice = dicemock.NewMockService(s.ctrl)
	s.mockExternal = externalmock.NewMockClient(s.ctrl)
	s.registry = hooks.NewRegistry()
	s.now = time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	s.clock = clock.NewFixed(s.now)
	s.recorder = transport.NewRecorder()
	s.ctx = context.Background()

	orchestrator, err := formorch.New(&formorch.Config{
		SessionRepo:    s.mockSessionRepo,
		SheetRepo:      s.mockSheetRepo,
		Extractor:      s.mockExtractor,
		Generator:      s.mockGenerator,
		Hooks:          s.registry,
		DiceService:    s.mockDice,
		ExternalClient: s.mockExternal,
		IDGenerator:    idgen.NewSequential("form"),
		Clock:          s.clock,
		Sender:         s.recorder,
	})
	s.Require().NoError(err)
	s.orchestrator = orchestrator
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) TestNew_MissingDependencies() {
	_, err := formorch.New(&formorch.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "SessionRepo")
	s.Contains(err.Error(), "Generator")

	_, err = formorch.New(nil)
	s.Error(err)
}

func (s *OrchestratorTestSuite) TestStartSession_Success() {
	s.mockSessionRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input formsession.CreateInput) (*formsession.CreateOutput, error) {
			return &formsession.CreateOutput{Session: input.Session, ReplacedID: "form_old"}, nil
		})

	output, err := s.orchestrator.StartSession(s.ctx, &form.StartSessionInput{PlayerID: "player-1"})
	s.Require().NoError(err)

	session := output.Session
	s.Equal("form_1", session.ID)
	s.Equal("player-1", session.PlayerID)
	s.Equal(dnd5e.FormStateIncomplete, session.State)
	s.Equal(dnd5e.RequiredFields, session.Missing)
	s.Equal(s.now.Add(formsession.DefaultTTL).Unix(), session.ExpiresAt)
	s.Require().Len(session.History, 1)
	s.Equal(dnd5e.RoleAI, session.History[0].Role)

	s.Equal(form.ReplyIncomplete, output.Reply.Kind)
	s.Contains(output.Reply.Text, "name, race, class")
}

func (s *OrchestratorTestSuite) TestStartSession_EmptyPlayerID() {
	output, err := s.orchestrator.StartSession(s.ctx, &form.StartSessionInput{})
	s.Error(err)
	s.Nil(output)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestStartSession_RepositoryError() {
	s.mockSessionRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, errors.Internal("redis down"))

	_, err := s.orchestrator.StartSession(s.ctx, &form.StartSessionInput{PlayerID: "player-1"})
	s.Require().Error(err)
	s.True(errors.IsInternal(err))
	s.Contains(err.Error(), "failed to create session")
}

func (s *OrchestratorTestSuite) TestHandleMessage_IncompleteAsksForMissing() {
	session := builders.NewFormSessionBuilder().Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)

	s.mockExtractor.EXPECT().
		ExtractFields(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.ExtractInput) (dnd5e.RawFields, error) {
			s.Require().Len(input.History, 1)
			s.Equal("I'm Aria, an orc, level 3", input.History[0].Text)
			return dnd5e.RawFields{"name": "Aria", "race": "Orc", "level": 3, "hp": "unknown"}, nil
		})

	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.GenerateInput) (string, error) {
			s.True(strings.HasPrefix(input.Prompt, hooks.DefaultPromptPrefix))
			s.Contains(input.Prompt, "Your task is to assist in the creation of a character sheet for DnD")
			s.Contains(input.Prompt, "\nMissing fields:\n - class\n - strength")
			s.Contains(input.Prompt, "\nInvalid fields:\n - race: Orc is an invalid Race")
			s.Contains(input.Prompt, "\n - Human: I'm Aria, an orc, level 3")
			s.True(strings.HasSuffix(input.Prompt, "\nAI:"))
			s.NotContains(input.Prompt, "Reference notes")

			s.Require().NoError(input.OnToken("Orcs are not "))
			s.Require().NoError(input.OnToken("available."))
			return "Orcs are not available.", nil
		})
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      " I'm Aria, an orc, level 3 ",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplyIncomplete, output.Reply.Kind)
	s.Equal("Orcs are not available.", output.Reply.Text)
	s.Contains(output.Reply.Missing, "class")
	s.NotContains(output.Reply.Missing, "race")
	s.Require().Len(output.Reply.Errors, 1)

	// The invalid race is dropped, the valid values are kept
	s.Equal(dnd5e.RawFields{"name": "Aria", "level": 3}, output.Session.Fields)
	s.Equal(dnd5e.FormStateIncomplete, output.Session.State)
	s.Len(output.Session.History, 2)
	s.Equal(s.now.Unix(), output.Session.UpdatedAt)

	s.Require().Len(s.recorder.Messages(), 1)
	s.True(strings.HasPrefix(s.recorder.Messages()[0], "Character Sheet:\n\n```json\n"))
	s.Equal("Orcs are not available.", s.recorder.Streamed())
}

func (s *OrchestratorTestSuite) TestHandleMessage_UsesPerCallSender() {
	session := builders.NewFormSessionBuilder().Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().ExtractFields(gomock.Any(), gomock.Any()).Return(dnd5e.RawFields{}, nil)
	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.GenerateInput) (string, error) {
			return "What is your name?", input.OnToken("What is your name?")
		})
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	perCall := transport.NewRecorder()
	_, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "hello",
		Sender:    perCall,
	})
	s.Require().NoError(err)

	s.Equal("What is your name?", perCall.Streamed())
	s.Empty(s.recorder.Messages())
}

func (s *OrchestratorTestSuite) TestHandleMessage_CompleteAsksConfirmation() {
	session := builders.NewFormSessionBuilder().WithFields(testutils.IdentityOnly()).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().
		ExtractFields(gomock.Any(), gomock.Any()).
		Return(testutils.ValidRawFields(), nil)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "level 5, the rest as we said",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplyWaitConfirm, output.Reply.Kind)
	s.True(strings.HasPrefix(output.Reply.Text, "Character Sheet:\n\n```json\n{\n    \"name\": \"Aria Moonwhisper\""))
	s.True(strings.HasSuffix(output.Reply.Text, "\n```\n"+formorch.ConfirmQuestion))
	s.Contains(output.Reply.Sheet, `"proficiency_bonus": 2`)
	s.Contains(output.Reply.Sheet, `"initiative": 4`)
	s.Equal(dnd5e.FormStateWaitConfirm, output.Session.State)
	s.Empty(output.Session.Missing)
	s.Empty(output.Session.Errors)
	s.Empty(s.recorder.Messages())
}

func (s *OrchestratorTestSuite) TestHandleMessage_ConfirmSubmits() {
	session := builders.NewFormSessionBuilder().
		WithState(dnd5e.FormStateWaitConfirm).
		WithFields(testutils.ValidRawFields()).
		Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)

	s.mockSheetRepo.EXPECT().
		Save(gomock.Any(), sheetfile.SaveInput{Sheet: testutils.ValidCharacterSheet()}).
		Return(&sheetfile.SaveOutput{FileName: "Aria_Moonwhisper.json", Path: "/tmp/Aria_Moonwhisper.json"}, nil)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "Yes!",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplySubmitted, output.Reply.Kind)
	s.Equal(formorch.SavedMessage, output.Reply.Text)
	s.Equal(dnd5e.FormStateClosed, output.Session.State)
	s.Equal("Aria_Moonwhisper.json", output.Session.SavedAs)
}

func (s *OrchestratorTestSuite) TestHandleMessage_SaveFailureKeepsSession() {
	session := builders.NewFormSessionBuilder().
		WithState(dnd5e.FormStateWaitConfirm).
		WithFields(testutils.ValidRawFields()).
		Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockSheetRepo.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		Return(nil, errors.Internal("disk full"))

	_, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{SessionID: session.ID, Text: "yes"})
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to save character sheet")
	s.Equal(dnd5e.FormStateWaitConfirm, session.State)
}

func (s *OrchestratorTestSuite) TestHandleMessage_EditWhileWaitingForConfirmation() {
	session := builders.NewFormSessionBuilder().
		WithState(dnd5e.FormStateWaitConfirm).
		WithFields(testutils.ValidRawFields()).
		Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().
		ExtractFields(gomock.Any(), gomock.Any()).
		Return(dnd5e.RawFields{"level": 6}, nil)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "make her level 6",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplyWaitConfirm, output.Reply.Kind)
	s.Equal(6, output.Session.Fields[dnd5e.FieldLevel])
}

func (s *OrchestratorTestSuite) TestHandleMessage_InvalidEditReopensForm() {
	session := builders.NewFormSessionBuilder().
		WithState(dnd5e.FormStateWaitConfirm).
		WithFields(testutils.ValidRawFields()).
		Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().
		ExtractFields(gomock.Any(), gomock.Any()).
		Return(dnd5e.RawFields{"level": 40}, nil)
	mocks.ExpectHints(s.mockExternal, dnd5e.RaceElf, dnd5e.ClassWizard)
	s.mockGenerator.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("Level must be 1 to 20.", nil)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "level 40",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplyIncomplete, output.Reply.Kind)
	s.Equal(dnd5e.FormStateIncomplete, output.Session.State)
	s.False(output.Session.Fields.Has(dnd5e.FieldLevel))
	s.Equal([]string{"level: Level must be between 1 and 20"}, output.Reply.Errors)
}

func (s *OrchestratorTestSuite) TestHandleMessage_ReferenceNotes() {
	session := builders.NewFormSessionBuilder().WithFields(testutils.IdentityOnly()).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().ExtractFields(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.mockExternal.EXPECT().RaceHint(gomock.Any(), "Elf").Return("Elf: Medium, speed 30 ft.", nil)
	s.mockExternal.EXPECT().ClassHint(gomock.Any(), "Wizard").Return("", errors.Unavailable("api down"))
	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.GenerateInput) (string, error) {
			s.Contains(input.Prompt, "\nReference notes:\n - Elf: Medium, speed 30 ft.")
			s.NotContains(input.Prompt, "Wizard: ")
			return "What level?", nil
		})
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	_, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{SessionID: session.ID, Text: "what next?"})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestHandleMessage_PromptPrefixOverride() {
	s.registry.Register(hooks.HookAgentPromptPrefix, hooks.OverridePriority, hooks.Static("You are a grumpy dwarf."))

	session := builders.NewFormSessionBuilder().Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().ExtractFields(gomock.Any(), gomock.Any()).Return(dnd5e.RawFields{}, nil)
	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.GenerateInput) (string, error) {
			s.True(strings.HasPrefix(input.Prompt, "You are a grumpy dwarf.\n\n"))
			return "Out with it.", nil
		})
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	_, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{SessionID: session.ID, Text: "hi"})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestHandleMessage_Exit() {
	session := builders.NewFormSessionBuilder().WithFields(testutils.IdentityOnly()).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{
		SessionID: session.ID,
		Text:      "Never mind.",
	})
	s.Require().NoError(err)

	s.Equal(form.ReplyClosed, output.Reply.Kind)
	s.Equal(dnd5e.FormStateClosed, output.Session.State)
	s.Empty(output.Session.SavedAs)
}

func (s *OrchestratorTestSuite) TestHandleMessage_ClosedSession() {
	session := builders.NewFormSessionBuilder().WithState(dnd5e.FormStateClosed).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)

	output, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{SessionID: session.ID, Text: "hello"})
	s.Error(err)
	s.Nil(output)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestHandleMessage_ExtractorError() {
	session := builders.NewFormSessionBuilder().Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	s.mockExtractor.EXPECT().
		ExtractFields(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("model overloaded"))

	_, err := s.orchestrator.HandleMessage(s.ctx, &form.HandleMessageInput{SessionID: session.ID, Text: "hello"})
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
	s.Contains(err.Error(), "failed to extract fields")
}

func (s *OrchestratorTestSuite) TestHandleMessage_InvalidInput() {
	testCases := []struct {
		name  string
		input *form.HandleMessageInput
	}{
		{"nil input", nil},
		{"missing session", &form.HandleMessageInput{Text: "hi"}},
		{"blank text", &form.HandleMessageInput{SessionID: "form-1", Text: "   "}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			output, err := s.orchestrator.HandleMessage(s.ctx, tc.input)
			s.Error(err)
			s.Nil(output)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestGetSession_NotFound() {
	s.mockSessionRepo.EXPECT().
		Get(gomock.Any(), formsession.GetInput{ID: "form-missing"}).
		Return(nil, errors.NotFound("session not found"))

	output, err := s.orchestrator.GetSession(s.ctx, &form.GetSessionInput{SessionID: "form-missing"})
	s.Error(err)
	s.Nil(output)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestCancelSession() {
	session := builders.NewFormSessionBuilder().Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.CancelSession(s.ctx, &form.CancelSessionInput{SessionID: session.ID})
	s.Require().NoError(err)
	s.Equal(form.ReplyClosed, output.Reply.Kind)
	s.True(output.Session.IsClosed())
}

func (s *OrchestratorTestSuite) TestRollAbilityScores_FillsMissingAbilities() {
	fields := testutils.IdentityOnly()
	fields[dnd5e.FieldStrength] = 8
	session := builders.NewFormSessionBuilder().WithFields(fields).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)

	s.mockDice.EXPECT().
		RollAbilityScores(gomock.Any(), &dice.RollAbilityScoresInput{Entity: session, Method: dice.MethodClassic}).
		Return(&dice.RollAbilityScoresOutput{
			Method: dice.MethodClassic,
			Rolls: []dice.AbilityRoll{
				{Total: 15}, {Total: 14}, {Total: 13}, {Total: 12}, {Total: 10}, {Total: 9},
			},
		}, nil)
	mocks.ExpectHints(s.mockExternal, dnd5e.RaceElf, dnd5e.ClassWizard)
	s.mockGenerator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input llm.GenerateInput) (string, error) {
			s.Contains(input.Prompt, "Rolled ability scores (3d6): dexterity 15, constitution 14")
			return "Nice rolls! What level?", nil
		})
	mocks.ExpectSessionUpdate(s.mockSessionRepo)

	output, err := s.orchestrator.RollAbilityScores(s.ctx, &form.RollAbilityScoresInput{
		SessionID: session.ID,
		Method:    dice.MethodClassic,
	})
	s.Require().NoError(err)

	s.Equal(map[string]int{
		dnd5e.FieldDexterity:    15,
		dnd5e.FieldConstitution: 14,
		dnd5e.FieldIntelligence: 13,
		dnd5e.FieldWisdom:       12,
		dnd5e.FieldCharisma:     10,
	}, output.Assigned)
	s.Equal(8, output.Session.Fields[dnd5e.FieldStrength])
	s.Equal(15, output.Session.Fields[dnd5e.FieldDexterity])
	s.Equal(form.ReplyIncomplete, output.Reply.Kind)
	s.Equal([]string{dnd5e.FieldLevel, dnd5e.FieldHealthPoints, dnd5e.FieldArmorClass}, output.Reply.Missing)
}

func (s *OrchestratorTestSuite) TestRollAbilityScores_AllAbilitiesSet() {
	session := builders.NewFormSessionBuilder().WithFields(testutils.ValidRawFields()).Build()
	mocks.ExpectSessionGet(s.mockSessionRepo, session)

	output, err := s.orchestrator.RollAbilityScores(s.ctx, &form.RollAbilityScoresInput{SessionID: session.ID})
	s.Error(err)
	s.Nil(output)
	s.True(errors.IsFailedPrecondition(err))
}
