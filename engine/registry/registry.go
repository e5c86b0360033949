package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-fxcore/engine"
	"github.com/cwbudde/algo-fxcore/engine/feedback"
	"github.com/cwbudde/algo-fxcore/engine/granular"
	"github.com/cwbudde/algo-fxcore/engine/transient"
)

// Factory builds one unprepared engine.
type Factory func(opts ...engine.Option) engine.Processor

// Registry maps engine names to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateEngine = errors.New("duplicate engine name")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("empty engine name")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEngine, name)
	}

	r.factories[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic("engine registry: " + err.Error())
	}
}

// Lookup returns the factory for name, or nil.
func (r *Registry) Lookup(name string) Factory {
	return r.factories[name]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Build creates the engine registered under name.
func (r *Registry) Build(name string, opts ...engine.Option) (engine.Processor, error) {
	f := r.Lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return f(opts...), nil
}

// Default returns a registry holding every built-in kind.
func Default() *Registry {
	r := NewRegistry()

	r.MustRegister(FeedbackNetwork.String(), func(opts ...engine.Option) engine.Processor {
		return feedback.New(opts...)
	})
	r.MustRegister(GranularCloud.String(), func(opts ...engine.Option) engine.Processor {
		return granular.New(opts...)
	})
	r.MustRegister(TransientShaper.String(), func(opts ...engine.Option) engine.Processor {
		return transient.New(opts...)
	})

	return r
}

// New builds a built-in engine by kind.
func New(kind Kind, opts ...engine.Option) (engine.Processor, error) {
	switch kind {
	case FeedbackNetwork:
		return feedback.New(opts...), nil
	case GranularCloud:
		return granular.New(opts...), nil
	case TransientShaper:
		return transient.New(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}
