package bamboo

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/abend/bamboo/internal/funcs"
	"github.com/abend/bamboo/store"
)

// defaultMaxDepth bounds nested def-callable invocation when a caller does
// not set WithMaxDepth; see DESIGN.md's "Def call-depth guard" entry.
const defaultMaxDepth = 100

// Func is a host-callable an application registers via WithFunc, in
// addition to the engine's own builtins (range, len, str, ...).
type Func func(args []any) (any, error)

// engineConfig collects every functional option's effect before New
// assembles the Engine itself. Delimiters are not configurable here:
// spec.md fixes {{ }}, {# #} and {% %} at the lexer level.
type engineConfig struct {
	logger      *zap.Logger
	clock       Clock
	maxDepth    int
	store       store.TemplateStore
	customFuncs map[string]Func
	stderr      io.Writer
}

func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		logger:      zap.NewNop(),
		maxDepth:    defaultMaxDepth,
		customFuncs: make(map[string]Func),
		stderr:      os.Stderr,
	}
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

// WithLogger sets the zap logger used for lexer/parser/executor diagnostics
// (malformed tag debug traces, while-loop guard trips). Nil is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxDepth bounds how deeply a def-bound function may call into other
// def-bound functions, including itself. n <= 0 means unbounded.
func WithMaxDepth(n int) Option {
	return func(c *engineConfig) { c.maxDepth = n }
}

// WithClock overrides the wall clock the while-loop guard reads, for
// deterministic tests. Nil is ignored.
func WithClock(clock Clock) Option {
	return func(c *engineConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithStderr overrides the stream the while-loop termination guard writes
// its diagnostic line to (spec.md's External Interfaces contract). Nil is
// ignored; the default is os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(c *engineConfig) {
		if w != nil {
			c.stderr = w
		}
	}
}

// WithStore attaches a TemplateStore an Engine can use to load and save
// named template sources across process restarts (store.TemplateStore),
// a feature this module adds beyond spec.md's core render pipeline.
func WithStore(s store.TemplateStore) Option {
	return func(c *engineConfig) { c.store = s }
}

// WithFunc registers an additional callable under name, available to every
// template's expressions alongside the builtins. A name collision with a
// builtin is reported by New; a later WithFunc with the same name replaces
// the earlier one without an error.
func WithFunc(name string, fn Func) Option {
	return func(c *engineConfig) { c.customFuncs[name] = fn }
}

func (c *engineConfig) buildRegistry() (*funcs.Registry, error) {
	registry := funcs.NewRegistry()
	for name, fn := range c.customFuncs {
		f := fn
		err := registry.Register(&funcs.Func{Name: name, MinArgs: 0, MaxArgs: -1, Fn: func(args []any) (any, error) {
			return f(args)
		}})
		if err != nil {
			return nil, NewFuncRegistrationError(name, err)
		}
	}
	return registry, nil
}
