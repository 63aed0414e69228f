package bamboo

import "github.com/abend/bamboo/internal/expr"

// Stringify renders a host value the way a {{ }} substitution would,
// available to WithFunc callables that want to format an argument
// consistently with the engine's own substitution rule.
func Stringify(v any) string {
	return expr.Stringify(v)
}

// Truthy applies the host language's boolean-conversion rule to v: None,
// false, zero, the empty string and empty sequences are falsy.
func Truthy(v any) bool {
	return expr.Truthy(v)
}

// HostInterpreter documents the contract spec.md §6 asks of the scripting
// language behind {{ }} substitutions, {% if/elif %} conditions and
// {% for %} generator expressions: evaluate an expression, execute a
// no-value statement sequence, and judge truthiness and string form the
// same way for every tag kind. bamboo's own interpreter (internal/expr)
// provides these operations as Evaluator.EvalString, Evaluator.Exec and the
// package-level Truthy and Stringify, but no type there implements this
// interface; the interface is documentation, not an injection seam —
// spec.md treats the host language as a fixed black box, not something a
// caller swaps out per render.
type HostInterpreter interface {
	// Eval evaluates a single expression and returns its value.
	Eval(src string) (any, error)
	// Exec runs src as a sequence of assignment/expression statements,
	// producing no return value of its own.
	Exec(src string) error
	// Truthy applies the host language's boolean-conversion rules to v.
	Truthy(v any) bool
	// Stringify renders v the way a {{ }} substitution would.
	Stringify(v any) string
}
