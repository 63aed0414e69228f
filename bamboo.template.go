package bamboo

import "github.com/abend/bamboo/internal"

// Template is a parsed template tree, ready to be rendered any number of
// times against different environments without re-lexing or re-parsing.
type Template struct {
	source string
	tree   *internal.RootNode
	engine *Engine
}

// Source returns the original template text Template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// Execute renders the template against seed (nil for an empty
// environment), returning the fully-substituted text. Each call gets a
// fresh internal environment seeded from seed's bindings plus the
// module-like placeholders (__name__, __package__, __doc__) spec.md's
// worked examples reference — seed itself is never mutated.
func (t *Template) Execute(seed *Env) (string, error) {
	env := internal.NewEnv()
	env.Set("__name__", "bamboo_code")
	env.Set("__package__", nil)
	env.Set("__doc__", nil)
	if seed != nil {
		for _, name := range seed.Keys() {
			v, _ := seed.Get(name)
			env.Set(name, v)
		}
	}

	executor := internal.NewExecutor(env, t.engine.registry, t.engine.config.logger, t.engine.config.internalClock(), t.engine.config.maxDepth, t.engine.config.stderr)
	out, err := executor.Execute(t.tree)
	if err != nil {
		return "", translateError(err)
	}
	return out, nil
}
