// Package funcs provides the builtin callables available to every
// template's expressions (range, len, str and friends) plus the registry
// type used to look them up by name.
package funcs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/abend/bamboo/internal/expr"
)

// Func is a single builtin, arity-checked before Fn runs.
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means variadic
	Fn      func(args []any) (any, error)
}

// Call implements expr.Callable.
func (f *Func) Call(args []any) (any, error) {
	if len(args) < f.MinArgs {
		return nil, fmt.Errorf("%s: expected at least %d args, got %d", f.Name, f.MinArgs, len(args))
	}
	if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
		return nil, fmt.Errorf("%s: expected at most %d args, got %d", f.Name, f.MaxArgs, len(args))
	}
	return f.Fn(args)
}

// Registry is a concurrency-safe name-to-Func table.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]*Func
}

// NewRegistry builds a Registry pre-populated with the builtin functions.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]*Func)}
	for _, f := range builtins() {
		r.MustRegister(f)
	}
	return r
}

// Register adds f, failing if its name is already taken.
func (r *Registry) Register(f *Func) error {
	if f == nil || f.Name == "" {
		return fmt.Errorf("cannot register a nil or nameless function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[f.Name]; exists {
		return fmt.Errorf("function %q is already registered", f.Name)
	}
	r.funcs[f.Name] = f
	return nil
}

// MustRegister is Register, panicking on error; used for builtins at
// construction time where the name collision would be a programming bug.
func (r *Registry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Get resolves a Func by name, satisfying expr.Resolver.
func (r *Registry) Get(name string) (expr.Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// List returns every registered name, sorted for deterministic output.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

func builtins() []*Func {
	return []*Func{
		{Name: "range", MinArgs: 1, MaxArgs: 3, Fn: rangeFn},
		{Name: "len", MinArgs: 1, MaxArgs: 1, Fn: lenFn},
		{Name: "str", MinArgs: 1, MaxArgs: 1, Fn: func(a []any) (any, error) { return expr.Stringify(a[0]), nil }},
		{Name: "int", MinArgs: 1, MaxArgs: 1, Fn: intFn},
		{Name: "float", MinArgs: 1, MaxArgs: 1, Fn: floatFn},
		{Name: "upper", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.ToUpper)},
		{Name: "lower", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.ToLower)},
		{Name: "trim", MinArgs: 1, MaxArgs: 1, Fn: stringFn(strings.TrimSpace)},
		{Name: "join", MinArgs: 2, MaxArgs: 2, Fn: joinFn},
		{Name: "sorted", MinArgs: 1, MaxArgs: 1, Fn: sortedFn},
	}
}

func rangeFn(args []any) (any, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("range: argument %d must be numeric, got %T", i, a)
		}
		nums[i] = f
	}
	start, stop, step := 0.0, nums[0], 1.0
	if len(nums) >= 2 {
		start, stop = nums[0], nums[1]
	}
	if len(nums) == 3 {
		step = nums[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("range: step must not be zero")
	}
	var out []any
	if step > 0 {
		for v := start; v < stop; v += step {
			out = append(out, v)
		}
	} else {
		for v := start; v > stop; v += step {
			out = append(out, v)
		}
	}
	return out, nil
}

func lenFn(args []any) (any, error) {
	switch v := args[0].(type) {
	case string:
		return float64(len(v)), nil
	case []any:
		return float64(len(v)), nil
	case map[string]any:
		return float64(len(v)), nil
	default:
		return nil, fmt.Errorf("len: value of type %T has no length", v)
	}
}

func intFn(args []any) (any, error) {
	switch v := args[0].(type) {
	case float64:
		return float64(int64(v)), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("int: cannot convert %q", v)
		}
		return float64(i), nil
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	default:
		return nil, fmt.Errorf("int: cannot convert value of type %T", v)
	}
}

func floatFn(args []any) (any, error) {
	switch v := args[0].(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("float: cannot convert %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("float: cannot convert value of type %T", v)
	}
}

func stringFn(f func(string) string) func([]any) (any, error) {
	return func(args []any) (any, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("expected a string argument, got %T", args[0])
		}
		return f(s), nil
	}
}

func joinFn(args []any) (any, error) {
	sep, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("join: separator must be a string")
	}
	list, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("join: first argument must be a list")
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = expr.Stringify(v)
	}
	return strings.Join(parts, sep), nil
}

func sortedFn(args []any) (any, error) {
	list, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("sorted: argument must be a list")
	}
	out := make([]any, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return expr.Stringify(out[i]) < expr.Stringify(out[j])
	})
	return out, nil
}
