package bamboo

import (
	"time"

	"github.com/abend/bamboo/internal"
	"github.com/abend/bamboo/internal/funcs"
	"github.com/abend/bamboo/store"
)

// Clock abstracts time.Now so the while-loop guard can be made
// deterministic under test via WithClock.
type Clock interface {
	Now() time.Time
}

// Engine parses and executes bamboo templates. It is safe for concurrent
// use: Parse and Execute hold no mutable state of their own, and every
// render gets a fresh Env unless the caller supplies one.
type Engine struct {
	config   *engineConfig
	registry *funcs.Registry
}

// New builds an Engine from the given options, or returns a registration
// failure for a WithFunc whose name collides with a builtin.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	registry, err := cfg.buildRegistry()
	if err != nil {
		return nil, err
	}
	return &Engine{config: cfg, registry: registry}, nil
}

// MustNew is New, panicking on error. Intended for package-level engine
// values built from options known at compile time.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse lexes and parses source into a reusable Template, without
// executing it.
func (e *Engine) Parse(source string) (*Template, error) {
	lexer := internal.NewLexer(source, e.config.logger)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, translateError(err)
	}
	parser := internal.NewParser(tokens, e.config.logger)
	tree, err := parser.Parse()
	if err != nil {
		return nil, translateError(err)
	}
	return &Template{source: source, tree: tree, engine: e}, nil
}

// Execute parses and immediately renders source against seed (which may be
// nil for an empty environment). It is equivalent to Parse followed by
// Template.Execute, and does not cache the parsed tree — call Parse
// directly to render the same source repeatedly.
func (e *Engine) Execute(source string, seed *Env) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(seed)
}

// Store returns the TemplateStore configured via WithStore, or nil if none
// was set.
func (e *Engine) Store() store.TemplateStore {
	return e.config.store
}

// internalClock adapts a Clock into internal.Clock; both declare exactly
// Now() time.Time so any Clock value already satisfies internal.Clock, but
// a nil Engine-level Clock must fall through to internal's own real-clock
// default rather than being passed through as a typed nil.
func (c *engineConfig) internalClock() internal.Clock {
	if c.clock == nil {
		return nil
	}
	return c.clock
}
