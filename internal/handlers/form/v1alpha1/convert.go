package v1alpha1

import (
	"encoding/json"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/services/form"
)

// Request keys
const (
	KeyPlayerID  = "player_id"
	KeySessionID = "session_id"
	KeyText      = "text"
	KeyMethod    = "method"
)

// Response keys
const (
	KeySession  = "session"
	KeyReply    = "reply"
	KeyMessages = "messages"
	KeyAssigned = "assigned"
)

type replyView struct {
	Kind    form.ReplyKind `json:"kind"`
	Text    string         `json:"text"`
	Sheet   string         `json:"sheet,omitempty"`
	Missing []string       `json:"missing,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

func stringField(req *structpb.Struct, key string) string {
	return strings.TrimSpace(req.GetFields()[key].GetStringValue())
}

// toValue converts anything JSON-encodable into a structpb value
func toValue(v any) (*structpb.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}

	value, err := structpb.NewValue(generic)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	return value, nil
}

// response builds a Struct from the non-nil entries of parts
func response(parts map[string]any) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(parts))}
	for key, part := range parts {
		if part == nil {
			continue
		}
		value, err := toValue(part)
		if err != nil {
			return nil, err
		}
		out.Fields[key] = value
	}
	return out, nil
}

func convertReply(reply *form.Reply) any {
	if reply == nil {
		return nil
	}
	return replyView{
		Kind:    reply.Kind,
		Text:    reply.Text,
		Sheet:   reply.Sheet,
		Missing: reply.Missing,
		Errors:  reply.Errors,
	}
}

func convertSession(session *dnd5e.FormSession) any {
	if session == nil {
		return nil
	}
	return session
}
