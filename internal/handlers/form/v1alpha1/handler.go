// Package v1alpha1 handles the form grpc service interface
package v1alpha1

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/services/form"
	"github.com/KirkDiggler/sheetform/internal/transport"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	FormService form.Service
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c.FormService == nil {
		return errors.InvalidArgument("form service is required")
	}
	return nil
}

// Handler implements the form gRPC service
type Handler struct {
	formService form.Service
}

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		formService: cfg.FormService,
	}, nil
}

var _ FormServiceServer = (*Handler)(nil)

// StartSession opens a form for a player
func (h *Handler) StartSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	playerID := stringField(req, KeyPlayerID)
	if playerID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("player_id is required"))
	}

	output, err := h.formService.StartSession(ctx, &form.StartSessionInput{PlayerID: playerID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return h.respond(map[string]any{
		KeySession: convertSession(output.Session),
		KeyReply:   convertReply(output.Reply),
	})
}

// SendMessage processes one user message. Everything the form would have
// streamed is returned under "messages".
func (h *Handler) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, KeySessionID)
	if sessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}
	text := stringField(req, KeyText)
	if text == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("text is required"))
	}

	recorder := transport.NewRecorder()
	output, err := h.formService.HandleMessage(ctx, &form.HandleMessageInput{
		SessionID: sessionID,
		Text:      text,
		Sender:    recorder,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return h.respond(map[string]any{
		KeySession:  convertSession(output.Session),
		KeyReply:    convertReply(output.Reply),
		KeyMessages: recorder.Messages(),
	})
}

// GetSession returns a form session
func (h *Handler) GetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, KeySessionID)
	if sessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	output, err := h.formService.GetSession(ctx, &form.GetSessionInput{SessionID: sessionID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return h.respond(map[string]any{
		KeySession: convertSession(output.Session),
	})
}

// CancelSession closes a form without saving
func (h *Handler) CancelSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, KeySessionID)
	if sessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	output, err := h.formService.CancelSession(ctx, &form.CancelSessionInput{SessionID: sessionID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return h.respond(map[string]any{
		KeySession: convertSession(output.Session),
		KeyReply:   convertReply(output.Reply),
	})
}

// RollAbilityScores fills missing ability scores with dice rolls
func (h *Handler) RollAbilityScores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sessionID := stringField(req, KeySessionID)
	if sessionID == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("session_id is required"))
	}

	recorder := transport.NewRecorder()
	output, err := h.formService.RollAbilityScores(ctx, &form.RollAbilityScoresInput{
		SessionID: sessionID,
		Method:    stringField(req, KeyMethod),
		Sender:    recorder,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return h.respond(map[string]any{
		KeySession:  convertSession(output.Session),
		KeyReply:    convertReply(output.Reply),
		KeyMessages: recorder.Messages(),
		KeyAssigned: output.Assigned,
	})
}

func (h *Handler) respond(parts map[string]any) (*structpb.Struct, error) {
	out, err := response(parts)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return out, nil
}
