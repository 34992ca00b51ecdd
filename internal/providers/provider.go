package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request is the prompt payload sent to an LLM.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Response is the raw output of one review call.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Duration   time.Duration
}

// Reviewer is the provider abstraction. One implementation exists per
// backend. Available must never panic or make unbounded network calls; it
// exists so the orchestrator can fail fast with an actionable message
// instead of a stack trace.
type Reviewer interface {
	Name() string
	Model() string
	Available() bool
	Review(ctx context.Context, req Request) (Response, error)
}

// Factory constructs a provider for a model name (empty selects the
// provider's default model). Construction is cheap and must not fail;
// misconfiguration surfaces through Available and Review.
type Factory func(model string) Reviewer

// Registry maps provider names to factories. Factories are registered
// eagerly at startup but a provider is only constructed when selected, so an
// unconfigured provider never blocks selection of another.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry returns a registry with all built-in providers registered.
// Detection order matters: it is the order Detect probes availability.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("anthropic", func(model string) Reviewer { return NewAnthropic(model) })
	r.Register("openai", func(model string) Reviewer { return NewOpenAI(model) })
	r.Register("gemini", func(model string) Reviewer { return NewGemini(model) })
	r.Register("ollama", func(model string) Reviewer { return NewOllama(model) })
	return r
}

// Register adds a named factory. Later registrations with the same name
// replace earlier ones without changing detection order.
func (r *Registry) Register(name string, factory Factory) {
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = factory
}

// Names returns registered provider names in detection order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get constructs the named provider. Unknown names list what is available.
func (r *Registry) Get(name, model string) (Reviewer, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(r.order, ", "))
	}
	return factory(model), nil
}

// Detect returns the first available provider in detection order.
func (r *Registry) Detect() (string, bool) {
	for _, name := range r.order {
		if r.factories[name]("").Available() {
			return name, true
		}
	}
	return "", false
}

// Status describes one provider's availability.
type Status struct {
	Name      string
	Available bool
	Reason    string
}

// Statuses probes every registered provider.
func (r *Registry) Statuses() []Status {
	statuses := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		p := r.factories[name]("")
		s := Status{Name: name, Available: p.Available()}
		if d, ok := p.(describer); ok {
			s.Reason = d.availabilityReason()
		} else if s.Available {
			s.Reason = "available"
		} else {
			s.Reason = "not available"
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// UnavailableError formats the actionable message shown when the selected
// provider cannot run.
func (r *Registry) UnavailableError(name string) error {
	var b strings.Builder
	if name == "" {
		b.WriteString("no provider is available\n\nProvider status:\n")
	} else {
		fmt.Fprintf(&b, "provider %q is not available\n\nProvider status:\n", name)
	}
	for _, s := range r.Statuses() {
		mark := "[--]"
		if s.Available {
			mark = "[ok]"
		}
		fmt.Fprintf(&b, "  %s %s: %s\n", mark, s.Name, s.Reason)
	}
	if env, ok := envVarFor(name); ok {
		fmt.Fprintf(&b, "\nSet %s to use %s.", env, name)
	}
	return fmt.Errorf("%s", b.String())
}

// describer lets a provider explain its availability state.
type describer interface {
	availabilityReason() string
}

func envVarFor(name string) (string, bool) {
	switch name {
	case "anthropic":
		return "ANTHROPIC_API_KEY", true
	case "openai":
		return "OPENAI_API_KEY", true
	case "gemini":
		return "GEMINI_API_KEY", true
	default:
		return "", false
	}
}
