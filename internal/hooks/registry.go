// Package hooks provides named extension points with a default value that
// registered overrides may replace.
package hooks

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// HookAgentPromptPrefix names the hook supplying the persona prefix of
// every generated prompt
const HookAgentPromptPrefix = "agent_prompt_prefix"

// DefaultPromptPrefix is the prompt prefix used when no override is set
const DefaultPromptPrefix = `You are a friendly game master's assistant for Dungeons & Dragons 5th edition.
You are curious and a little theatrical, and you help players build their characters.
You answer the Human shortly and with a focus on the following context.`

// Func receives the value produced so far and returns the next one
type Func func(ctx context.Context, value string) (string, error)

type registration struct {
	priority int
	order    int
	fn       Func
}

// Registry holds the overrides registered for each hook name
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]registration
	seq   int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]registration)}
}

// Register adds an override. Higher priorities run first; equal priorities
// run in registration order.
func (r *Registry) Register(name string, priority int, fn Func) {
	if fn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	regs := append(r.hooks[name], registration{priority: priority, order: r.seq, fn: fn})
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].order < regs[j].order
	})
	r.hooks[name] = regs
}

// Static returns a Func that ignores its input and yields value
func Static(value string) Func {
	return func(context.Context, string) (string, error) {
		return value, nil
	}
}

// Execute threads defaultValue through every override of name. An
// override that fails is logged and skipped so the chain keeps the last
// good value.
func (r *Registry) Execute(ctx context.Context, name, defaultValue string) string {
	r.mu.RLock()
	regs := make([]registration, len(r.hooks[name]))
	copy(regs, r.hooks[name])
	r.mu.RUnlock()

	value := defaultValue
	for _, reg := range regs {
		next, err := reg.fn(ctx, value)
		if err != nil {
			slog.WarnContext(ctx, "hook override failed",
				"hook", name,
				"priority", reg.priority,
				"error", err)
			continue
		}
		value = next
	}
	return value
}

// Resolve is Execute under the name callers use when reading an extension
// point once before use
func (r *Registry) Resolve(ctx context.Context, name, defaultValue string) string {
	return r.Execute(ctx, name, defaultValue)
}

// Has reports whether any override is registered for name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[name]) > 0
}
