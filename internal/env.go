package internal

// Env is the single flat host-environment mapping the whole render shares.
// spec.md §5 calls out "host-environment aliasing": there is no scope
// stack, so For/Def/Capture blocks mutate the same map their caller sees.
// For loops and def calls back up and restore the names they temporarily
// rebind; a Capture binding persists after its block.
type Env struct {
	vars map[string]any
}

// NewEnv builds an empty Env.
func NewEnv() *Env {
	return &Env{vars: make(map[string]any)}
}

// Get implements expr.Env.
func (e *Env) Get(name string) (any, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set implements expr.Env.
func (e *Env) Set(name string, value any) {
	e.vars[name] = value
}

// Has reports whether name is currently bound.
func (e *Env) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Delete unbinds name, if present.
func (e *Env) Delete(name string) {
	delete(e.vars, name)
}

// Keys returns every currently bound name.
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	return keys
}

// binding captures whether a name existed before a backup, so Restore can
// tell "rebind to the old value" apart from "the name never existed".
type binding struct {
	value   any
	existed bool
}

// Backup snapshots the current value (or absence) of each name, for
// restoration once a for loop or def call that rebinds them finishes.
func (e *Env) Backup(names []string) map[string]binding {
	b := make(map[string]binding, len(names))
	for _, n := range names {
		v, ok := e.vars[n]
		b[n] = binding{value: v, existed: ok}
	}
	return b
}

// Restore reverts every name in b to its pre-backup value, deleting it
// entirely if it did not exist before the backup.
func (e *Env) Restore(b map[string]binding) {
	for n, bd := range b {
		if bd.existed {
			e.vars[n] = bd.value
		} else {
			delete(e.vars, n)
		}
	}
}
