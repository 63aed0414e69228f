// Package bamboo implements a small, four-tag templating engine: Code
// substitutions, Comments, and Block tags, layered over a Python-flavored
// expression language the engine treats as a host black box.
//
// # Template Syntax
//
// Code tags substitute a value or run a statement sequence:
//
//	Hello, {{ name }}!
//	{{ total = price * quantity }}
//
// Comment tags are discarded entirely, including block form:
//
//	{# a note to the template author #}
//	{% comment %}can span multiple lines{% endcomment %}
//
// Block tags cover conditionals, loops, function definitions and capture:
//
//	{% if score >= 90 %}A{% elif score >= 80 %}B{% else %}C{% endif %}
//	{% for item in items %}{{ item }}, {% endfor %}
//	{% def greet who %}Hello, {{ who }}!{% enddef %}{{ greet("World") }}
//	{% capture result %}{{ 2 + 2 }}{% endcapture %}You got {{ result }}
//
// A bare `{% end %}` closes whichever block is innermost; a named form
// (`{% endif %}`, `{% endfor %}`, ...) must match that block's kind.
//
// # Basic Usage
//
//	engine := bamboo.MustNew()
//	env := bamboo.NewEnv()
//	env.Bind("name", "Alice")
//	result, err := engine.Execute("Hello, {{ name }}!", env)
//	// result: "Hello, Alice!"
//
// Parse once, execute many times against different environments:
//
//	tmpl, err := engine.Parse(source)
//	out1, err := tmpl.Execute(envA)
//	out2, err := tmpl.Execute(envB)
//
// # Configuration
//
// Customize the engine with functional options:
//
//	engine, err := bamboo.New(
//	    bamboo.WithMaxDepth(50),
//	    bamboo.WithLogger(logger),
//	    bamboo.WithFunc("shout", func(args []any) (any, error) {
//	        return strings.ToUpper(bamboo.Stringify(args[0])), nil
//	    }),
//	)
//
// # Error Handling
//
// Every failure is a structured cuserr error carrying a stable error code
// (see ErrCodeLex, ErrCodeParse, ErrCodeExec, ErrCodeHost) and position
// metadata where applicable:
//
//	result, err := engine.Execute(source, env)
//	var custom *cuserr.CustomError
//	if errors.As(err, &custom) {
//	    line, _ := custom.GetMetadata(MetaKeyLine)
//	}
package bamboo

// Version is this module's release version.
const Version = "2.2.1"

// Process is the package-level convenience entry point: build a
// default-configured Engine, parse source, and render it against seed in
// one call. Callers who render the same source repeatedly should use an
// Engine's Parse instead, to avoid re-lexing and re-parsing each time.
func Process(source string, seed *Env) (string, error) {
	engine, err := New()
	if err != nil {
		return "", err
	}
	return engine.Execute(source, seed)
}
