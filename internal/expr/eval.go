package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Env is the flat host-environment binding surface the evaluator reads
// and writes. It has no parent/child chain — spec.md §5 "host-environment
// aliasing" is a single shared scope for the lifetime of a render.
type Env interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// Callable is a host-bound function: a def-declared template function, or
// a builtin. Call receives already-evaluated positional arguments.
type Callable interface {
	Call(args []any) (any, error)
}

// CallableFunc adapts a plain Go func into a Callable.
type CallableFunc func(args []any) (any, error)

func (f CallableFunc) Call(args []any) (any, error) { return f(args) }

// Resolver looks up a builtin by name when it is not found in Env.
type Resolver func(name string) (Callable, bool)

// Evaluator evaluates host-language AST nodes against an Env.
type Evaluator struct {
	Env      Env
	Resolve  Resolver
}

func NewEvaluator(env Env, resolve Resolver) *Evaluator {
	return &Evaluator{Env: env, Resolve: resolve}
}

// Eval evaluates a single expression AST node.
func (e *Evaluator) Eval(node Node) (any, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil
	case *Ident:
		if v, ok := e.Env.Get(n.Name); ok {
			return v, nil
		}
		return nil, nil
	case *ListLit:
		vals := make([]any, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.Eval(el)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	case *TupleLit:
		vals := make([]any, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.Eval(el)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	case *Unary:
		return e.evalUnary(n)
	case *Binary:
		return e.evalBinary(n)
	case *Call:
		return e.evalCall(n)
	case *Attr:
		return e.evalAttr(n)
	case *Index:
		return e.evalIndex(n)
	case *GenExpr:
		return e.evalGen(n)
	default:
		return nil, fmt.Errorf("unsupported expression node %T", node)
	}
}

// EvalString parses and evaluates a single expression string.
func (e *Evaluator) EvalString(src string) (any, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Eval(node)
}

// EvalBool evaluates an expression string and coerces the result to Truthy.
func (e *Evaluator) EvalBool(src string) (bool, error) {
	v, err := e.EvalString(src)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Exec runs a statement-sequence fallback (spec.md §4.3.1 Code dispatch),
// producing no value; assignments bind directly into Env.
func (e *Evaluator) Exec(src string) error {
	stmts, err := ParseStatements(src)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		switch st := s.(type) {
		case *Assign:
			v, err := e.Eval(st.Value)
			if err != nil {
				return err
			}
			e.Env.Set(st.Name, v)
		case *ExprStmt:
			if _, err := e.Eval(st.X); err != nil {
				return err
			}
		}
	}
	return nil
}

// Iterate evaluates a for-tag generator-expression string and returns the
// sequence of yielded values (each a scalar for a single target, or a
// []any tuple for multiple targets).
func (e *Evaluator) Iterate(generatorSrc string) ([]any, error) {
	v, err := e.EvalString(generatorSrc)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("generator expression did not yield a sequence")
	}
	return items, nil
}

func (e *Evaluator) evalGen(n *GenExpr) (any, error) {
	srcVal, err := e.Eval(n.Source)
	if err != nil {
		return nil, err
	}
	items, err := AsIterable(srcVal)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		vals, err := Unpack(item, len(n.Targets))
		if err != nil {
			return nil, err
		}
		for i, t := range n.Targets {
			e.Env.Set(t, vals[i])
		}
		v, err := e.Eval(n.Elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Unpack spreads a yielded generator item into arity positional values — a
// pass-through for a single target, a tuple-arity check for multiple.
func Unpack(item any, arity int) ([]any, error) {
	if arity == 1 {
		return []any{item}, nil
	}
	tuple, ok := item.([]any)
	if !ok || len(tuple) != arity {
		return nil, fmt.Errorf("cannot unpack %v into %d targets", item, arity)
	}
	return tuple, nil
}

// AsIterable converts a host value into a sequence suitable for a for loop.
func AsIterable(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case string:
		out := make([]any, 0, len(val))
		for _, r := range val {
			out = append(out, string(r))
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value of type %T is not iterable", v)
	}
}

func (e *Evaluator) evalUnary(n *Unary) (any, error) {
	x, err := e.Eval(n.X)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case TokNot:
		return !Truthy(x), nil
	case TokMinus:
		f, ok := toNumber(x)
		if !ok {
			return nil, fmt.Errorf("cannot negate non-numeric value %v", x)
		}
		return -f, nil
	case TokPlus:
		return x, nil
	default:
		return nil, fmt.Errorf("unknown unary operator %v", n.Op)
	}
}

func (e *Evaluator) evalBinary(n *Binary) (any, error) {
	if n.Op == TokAnd {
		l, err := e.Eval(n.L)
		if err != nil {
			return nil, err
		}
		if !Truthy(l) {
			return l, nil
		}
		return e.Eval(n.R)
	}
	if n.Op == TokOr {
		l, err := e.Eval(n.L)
		if err != nil {
			return nil, err
		}
		if Truthy(l) {
			return l, nil
		}
		return e.Eval(n.R)
	}

	left, err := e.Eval(n.L)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(n.R)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case TokPlus:
		return add(left, right)
	case TokMinus, TokStar, TokSlash, TokDoubleSlash, TokPercent:
		return arith(n.Op, left, right)
	case TokEq:
		return equal(left, right), nil
	case TokNeq:
		return !equal(left, right), nil
	case TokLt, TokLte, TokGt, TokGte:
		return compare(n.Op, left, right)
	case TokIn:
		return contains(left, right)
	default:
		return nil, fmt.Errorf("unknown binary operator %v", n.Op)
	}
}

func (e *Evaluator) evalCall(n *Call) (any, error) {
	ident, ok := n.Callee.(*Ident)
	if !ok {
		return nil, fmt.Errorf("callee is not callable")
	}

	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if v, ok := e.Env.Get(ident.Name); ok {
		if c, ok := v.(Callable); ok {
			return c.Call(args)
		}
	}
	if e.Resolve != nil {
		if c, ok := e.Resolve(ident.Name); ok {
			return c.Call(args)
		}
	}
	return nil, fmt.Errorf("%q is not defined", ident.Name)
}

func (e *Evaluator) evalAttr(n *Attr) (any, error) {
	x, err := e.Eval(n.X)
	if err != nil {
		return nil, err
	}
	if m, ok := x.(map[string]any); ok {
		return m[n.Name], nil
	}
	return nil, fmt.Errorf("value of type %T has no attribute %q", x, n.Name)
}

func (e *Evaluator) evalIndex(n *Index) (any, error) {
	x, err := e.Eval(n.X)
	if err != nil {
		return nil, err
	}
	idx, err := e.Eval(n.Idx)
	if err != nil {
		return nil, err
	}
	switch container := x.(type) {
	case []any:
		i, ok := toNumber(idx)
		if !ok {
			return nil, fmt.Errorf("list index must be numeric, got %T", idx)
		}
		ii := int(i)
		if ii < 0 || ii >= len(container) {
			return nil, fmt.Errorf("list index %d out of range", ii)
		}
		return container[ii], nil
	case map[string]any:
		key, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("map key must be a string, got %T", idx)
		}
		return container[key], nil
	default:
		return nil, fmt.Errorf("value of type %T is not subscriptable", x)
	}
}

// Truthy implements the host language's native definition of boolean
// conversion: None/false/0/""/empty-sequence are falsy, everything else
// is truthy.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// Stringify renders a host value for substitution into output text. The
// distinguished "none" value (Go nil) stringifies to the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = Stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	}
	return 0, false
}

func add(a, b any) (any, error) {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as + bs, nil
		}
	}
	if al, ok := a.([]any); ok {
		if bl, ok := b.([]any); ok {
			out := make([]any, 0, len(al)+len(bl))
			out = append(out, al...)
			out = append(out, bl...)
			return out, nil
		}
	}
	return arith(TokPlus, a, b)
}

func arith(op TokenType, a, b any) (any, error) {
	af, aok := toNumber(a)
	bf, bok := toNumber(b)
	if !aok || !bok {
		return nil, fmt.Errorf("unsupported operand types for arithmetic: %T and %T", a, b)
	}
	switch op {
	case TokPlus:
		return af + bf, nil
	case TokMinus:
		return af - bf, nil
	case TokStar:
		return af * bf, nil
	case TokSlash:
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return af / bf, nil
	case TokDoubleSlash:
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(af) / int64(bf)), nil
	case TokPercent:
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(af) % int64(bf)), nil
	default:
		return nil, fmt.Errorf("unknown arithmetic operator %v", op)
	}
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toNumber(a); aok {
		if bf, bok := toNumber(b); bok {
			return af == bf
		}
	}
	return a == b
}

func compare(op TokenType, a, b any) (bool, error) {
	if af, aok := toNumber(a); aok {
		if bf, bok := toNumber(b); bok {
			switch op {
			case TokLt:
				return af < bf, nil
			case TokLte:
				return af <= bf, nil
			case TokGt:
				return af > bf, nil
			case TokGte:
				return af >= bf, nil
			}
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch op {
			case TokLt:
				return as < bs, nil
			case TokLte:
				return as <= bs, nil
			case TokGt:
				return as > bs, nil
			case TokGte:
				return as >= bs, nil
			}
		}
	}
	return false, fmt.Errorf("cannot compare %T and %T", a, b)
}

func contains(needle, haystack any) (bool, error) {
	switch h := haystack.(type) {
	case []any:
		for _, v := range h {
			if equal(needle, v) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("'in' string operand must be a string, got %T", needle)
		}
		return strings.Contains(h, s), nil
	case map[string]any:
		s, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("'in' map operand must be a string key, got %T", needle)
		}
		_, ok = h[s]
		return ok, nil
	default:
		return false, fmt.Errorf("argument of type %T is not iterable", haystack)
	}
}
