package bamboo

import "github.com/abend/bamboo/internal"

// Env is the host-environment mapping a caller seeds before a render and
// inspects after one: the single flat scope spec.md §5 calls
// "host-environment aliasing". There is no parent/child chain — Capture,
// For and Def all read and write through this same map.
type Env struct {
	inner *internal.Env
}

// NewEnv builds an empty Env.
func NewEnv() *Env {
	return &Env{inner: internal.NewEnv()}
}

// Bind sets name to value, overwriting any existing binding.
func (e *Env) Bind(name string, value any) {
	e.inner.Set(name, value)
}

// Unbind removes name, if present.
func (e *Env) Unbind(name string) {
	e.inner.Delete(name)
}

// Has reports whether name is currently bound.
func (e *Env) Has(name string) bool {
	return e.inner.Has(name)
}

// Get returns the raw bound value for name, and whether it was found.
func (e *Env) Get(name string) (any, bool) {
	return e.inner.Get(name)
}

// Keys returns every currently bound name.
func (e *Env) Keys() []string {
	return e.inner.Keys()
}

// GetString returns name's value as a string, if bound and of that type.
func (e *Env) GetString(name string) (string, bool) {
	v, ok := e.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat returns name's value as a float64, if bound and of that type.
// Other Go numeric types (int, int64, ...) report false.
func (e *Env) GetFloat(name string) (float64, bool) {
	v, ok := e.Get(name)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetInt returns name's value truncated to an int, if bound as a float64.
func (e *Env) GetInt(name string) (int, bool) {
	f, ok := e.GetFloat(name)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// GetBool returns name's value as a bool, if bound and of that type.
func (e *Env) GetBool(name string) (bool, bool) {
	v, ok := e.Get(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetSlice returns name's value as a []any, if bound and of that type.
func (e *Env) GetSlice(name string) ([]any, bool) {
	v, ok := e.Get(name)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// GetMap returns name's value as a map[string]any, if bound and of that type.
func (e *Env) GetMap(name string) (map[string]any, bool) {
	v, ok := e.Get(name)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
