// Package store persists named template sources across process restarts.
// It is additive to spec.md's core render pipeline: the engine itself
// never reads or writes a store, callers do, via Engine.Store.
package store

import (
	"context"
	"time"

	"github.com/itsatony/go-cuserr"
)

// Error code constants, following the same cuserr idiom as the root
// package's error surface (bamboo.errors.go).
const (
	ErrCodeNotFound = "BAMBOO_STORE_NOT_FOUND"
	ErrCodeClosed   = "BAMBOO_STORE_CLOSED"
)

// ErrNotFound is returned by Get and Delete when name has no record. It is
// a single shared sentinel (never mutated after construction) so callers
// can compare against it with errors.Is the same way they would a stdlib
// sentinel, while still carrying a structured cuserr code.
var ErrNotFound = cuserr.NewNotFoundError(ErrCodeNotFound, "template not found")

// ErrClosed is returned by MemoryStore operations after Close. PostgresStore
// does not return it; after Close it reports database/sql's own error.
var ErrClosed = cuserr.NewValidationError(ErrCodeClosed, "store is closed")

// Record is a stored template: just enough to round-trip a source string
// by name. Unlike the teacher's StoredTemplate, there is no version
// history, deployment status or tenant metadata — spec.md's engine has no
// compiled/versioned-agent concept for those fields to describe.
type Record struct {
	Name      string
	Source    string
	UpdatedAt time.Time
}

// TemplateStore is a pluggable backend for named template persistence.
// Implementations must be safe for concurrent use.
type TemplateStore interface {
	// Get retrieves the current source for name. Returns ErrNotFound if
	// no record exists.
	Get(ctx context.Context, name string) (*Record, error)

	// Save creates or overwrites the record for name, setting UpdatedAt
	// to the time of the write.
	Save(ctx context.Context, name, source string) (*Record, error)

	// Delete removes the record for name. Returns ErrNotFound if none
	// existed.
	Delete(ctx context.Context, name string) error

	// List returns every stored record, ordered by name.
	List(ctx context.Context) ([]*Record, error)

	// Close releases any resources held by the store. The store must not
	// be used afterward.
	Close() error
}
