// Package transport delivers chat output to the user
package transport

//go:generate mockgen -destination=mock/mock_sender.go -package=transportmock github.com/KirkDiggler/sheetform/internal/transport Sender

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Kind distinguishes full messages from streamed tokens
type Kind string

// Message kinds
const (
	KindChat      Kind = "chat"
	KindChatToken Kind = "chat_token"
)

// Message is one unit of outgoing chat
type Message struct {
	Kind Kind
	Text string
}

// Sender pushes messages to the user as they are produced
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender writes messages to a terminal. Tokens are written inline;
// a chat message after a run of tokens starts on a fresh line.
type ConsoleSender struct {
	mu        sync.Mutex
	out       io.Writer
	streaming bool
}

// NewConsoleSender writes to out
func NewConsoleSender(out io.Writer) *ConsoleSender {
	return &ConsoleSender{out: out}
}

// Send implements Sender
func (c *ConsoleSender) Send(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch msg.Kind {
	case KindChatToken:
		c.streaming = true
		_, err = io.WriteString(c.out, msg.Text)
	default:
		if c.streaming {
			c.streaming = false
			if _, err = io.WriteString(c.out, "\n"); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintln(c.out, msg.Text)
	}
	return err
}

// EndStream terminates a run of tokens with a newline
func (c *ConsoleSender) EndStream() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.streaming {
		return nil
	}
	c.streaming = false
	_, err := io.WriteString(c.out, "\n")
	return err
}

// Recorder keeps every message in memory, for request/response transports
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send implements Sender
func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns the chat messages sent so far, tokens excluded
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, m := range r.messages {
		if m.Kind != KindChatToken {
			out = append(out, m.Text)
		}
	}
	return out
}

// Streamed concatenates the tokens sent so far
func (r *Recorder) Streamed() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, m := range r.messages {
		if m.Kind == KindChatToken {
			sb.WriteString(m.Text)
		}
	}
	return sb.String()
}

// Discard drops every message
type Discard struct{}

// Send implements Sender
func (Discard) Send(context.Context, Message) error { return nil }
