package v1alpha1_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/handlers/form/v1alpha1"
	"github.com/KirkDiggler/sheetform/internal/services/form"
	formmock "github.com/KirkDiggler/sheetform/internal/services/form/mock"
	"github.com/KirkDiggler/sheetform/internal/testutils/builders"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	mockFormService *formmock.MockService
	handler         *v1alpha1.Handler
	ctx             context.Context
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockFormService = formmock.NewMockService(s.ctrl)
	s.ctx = context.Background()

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		FormService: s.mockFormService,
	})
	s.Require().NoError(err)
	s.handler = handler
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) request(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *HandlerTestSuite) TestNewHandler_RequiresService() {
	_, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestStartSession() {
	session := builders.NewFormSessionBuilder().WithPlayerID("player-1").Build()
	s.mockFormService.EXPECT().
		StartSession(s.ctx, &form.StartSessionInput{PlayerID: "player-1"}).
		Return(&form.StartSessionOutput{
			Session: session,
			Reply:   &form.Reply{Kind: form.ReplyIncomplete, Text: "Tell me about them", Missing: dnd5e.RequiredFields},
		}, nil)

	resp, err := s.handler.StartSession(s.ctx, s.request(map[string]any{"player_id": "player-1"}))
	s.Require().NoError(err)

	sess := resp.GetFields()[v1alpha1.KeySession].GetStructValue()
	s.Equal(session.ID, sess.GetFields()["id"].GetStringValue())
	s.Equal("INCOMPLETE", sess.GetFields()["state"].GetStringValue())

	reply := resp.GetFields()[v1alpha1.KeyReply].GetStructValue()
	s.Equal("INCOMPLETE", reply.GetFields()["kind"].GetStringValue())
	s.Len(reply.GetFields()["missing"].GetListValue().GetValues(), len(dnd5e.RequiredFields))
}

func (s *HandlerTestSuite) TestStartSession_MissingPlayerID() {
	_, err := s.handler.StartSession(s.ctx, s.request(map[string]any{"player_id": "  "}))
	s.Require().Error(err)
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlerTestSuite) TestSendMessage_ReturnsStreamedMessages() {
	session := builders.NewFormSessionBuilder().Build()
	s.mockFormService.EXPECT().
		HandleMessage(s.ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, input *form.HandleMessageInput) (*form.HandleMessageOutput, error) {
			s.Equal(session.ID, input.SessionID)
			s.Equal("I'm a wizard", input.Text)
			s.Require().NotNil(input.Sender)
			s.Require().NoError(input.Sender.Send(ctx, transport.Message{Kind: transport.KindChat, Text: "Character Sheet:"}))
			s.Require().NoError(input.Sender.Send(ctx, transport.Message{Kind: transport.KindChatToken, Text: "What race?"}))
			return &form.HandleMessageOutput{
				Session: session,
				Reply:   &form.Reply{Kind: form.ReplyIncomplete, Text: "What race?"},
			}, nil
		})

	resp, err := s.handler.SendMessage(s.ctx, s.request(map[string]any{
		"session_id": session.ID,
		"text":       "I'm a wizard",
	}))
	s.Require().NoError(err)

	messages := resp.GetFields()[v1alpha1.KeyMessages].GetListValue().GetValues()
	s.Require().Len(messages, 1)
	s.Equal("Character Sheet:", messages[0].GetStringValue())
	s.Equal("What race?", resp.GetFields()[v1alpha1.KeyReply].GetStructValue().GetFields()["text"].GetStringValue())
}

func (s *HandlerTestSuite) TestSendMessage_Validation() {
	_, err := s.handler.SendMessage(s.ctx, s.request(map[string]any{"text": "hi"}))
	s.Equal(codes.InvalidArgument, status.Code(err))

	_, err = s.handler.SendMessage(s.ctx, s.request(map[string]any{"session_id": "form-1"}))
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func (s *HandlerTestSuite) TestSendMessage_ErrorMapping() {
	testCases := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"not found", errors.NotFound("session not found"), codes.NotFound},
		{"closed", errors.FailedPrecondition("session is closed"), codes.FailedPrecondition},
		{"llm down", errors.Unavailable("model overloaded"), codes.Unavailable},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.mockFormService.EXPECT().HandleMessage(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			_, err := s.handler.SendMessage(s.ctx, s.request(map[string]any{"session_id": "form-1", "text": "hi"}))
			s.Equal(tc.code, status.Code(err))
		})
	}
}

func (s *HandlerTestSuite) TestSendMessage_ViolationsBecomeBadRequest() {
	vb := errors.NewValidationBuilder()
	vb.Field("race", "Orc is an invalid Race")
	s.mockFormService.EXPECT().HandleMessage(gomock.Any(), gomock.Any()).Return(nil, vb.Build())

	_, err := s.handler.SendMessage(s.ctx, s.request(map[string]any{"session_id": "form-1", "text": "hi"}))
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(codes.InvalidArgument, st.Code())

	s.Require().Len(st.Details(), 1)
	badRequest, ok := st.Details()[0].(*errdetails.BadRequest)
	s.Require().True(ok)
	s.Equal("race", badRequest.GetFieldViolations()[0].GetField())
}

func (s *HandlerTestSuite) TestRollAbilityScores() {
	session := builders.NewFormSessionBuilder().Build()
	s.mockFormService.EXPECT().
		RollAbilityScores(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *form.RollAbilityScoresInput) (*form.RollAbilityScoresOutput, error) {
			s.Equal("3d6", input.Method)
			return &form.RollAbilityScoresOutput{
				Session:  session,
				Reply:    &form.Reply{Kind: form.ReplyIncomplete, Text: "Nice"},
				Assigned: map[string]int{dnd5e.FieldStrength: 15},
			}, nil
		})

	resp, err := s.handler.RollAbilityScores(s.ctx, s.request(map[string]any{
		"session_id": session.ID,
		"method":     "3d6",
	}))
	s.Require().NoError(err)

	assigned := resp.GetFields()[v1alpha1.KeyAssigned].GetStructValue()
	s.Equal(float64(15), assigned.GetFields()[dnd5e.FieldStrength].GetNumberValue())
}

func (s *HandlerTestSuite) TestGetAndCancelSession() {
	session := builders.NewFormSessionBuilder().WithState(dnd5e.FormStateClosed).Build()
	s.mockFormService.EXPECT().
		GetSession(s.ctx, &form.GetSessionInput{SessionID: session.ID}).
		Return(&form.GetSessionOutput{Session: session}, nil)
	s.mockFormService.EXPECT().
		CancelSession(s.ctx, &form.CancelSessionInput{SessionID: session.ID}).
		Return(&form.CancelSessionOutput{Session: session, Reply: &form.Reply{Kind: form.ReplyClosed}}, nil)

	resp, err := s.handler.GetSession(s.ctx, s.request(map[string]any{"session_id": session.ID}))
	s.Require().NoError(err)
	s.Nil(resp.GetFields()[v1alpha1.KeyReply])

	resp, err = s.handler.CancelSession(s.ctx, s.request(map[string]any{"session_id": session.ID}))
	s.Require().NoError(err)
	s.Equal("CLOSED", resp.GetFields()[v1alpha1.KeyReply].GetStructValue().GetFields()["kind"].GetStringValue())
}

func (s *HandlerTestSuite) TestServiceDescRoundTrip() {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	v1alpha1.RegisterFormServiceServer(srv, s.handler)
	go func() { _ = srv.Serve(lis) }()
	s.T().Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	session := builders.NewFormSessionBuilder().Build()
	s.mockFormService.EXPECT().
		GetSession(gomock.Any(), &form.GetSessionInput{SessionID: session.ID}).
		Return(&form.GetSessionOutput{Session: session}, nil)
	s.mockFormService.EXPECT().
		GetSession(gomock.Any(), &form.GetSessionInput{SessionID: "form-missing"}).
		Return(nil, errors.NotFound("session not found"))

	client := v1alpha1.NewFormServiceClient(conn)

	resp, err := client.Call(s.ctx, v1alpha1.MethodGetSession, s.request(map[string]any{"session_id": session.ID}))
	s.Require().NoError(err)
	s.Equal(session.ID, resp.GetFields()[v1alpha1.KeySession].GetStructValue().GetFields()["id"].GetStringValue())

	_, err = client.Call(s.ctx, v1alpha1.MethodGetSession, s.request(map[string]any{"session_id": "form-missing"}))
	s.Equal(codes.NotFound, status.Code(err))
}
