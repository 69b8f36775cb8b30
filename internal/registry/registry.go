// Package registry keeps the declared tests of one process. It is an
// explicit value handed to whoever needs it: the suite library inside test
// binaries, and the loader and reporter inside the CLI.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"mt/internal/domain"
)

// ErrDuplicateTest is returned when an identity is declared twice in the
// same package.
var ErrDuplicateTest = errors.New("test is already defined")

type key struct {
	pkg      string
	identity string
}

// Registry maps (package, identity) to a test record, in declaration order
type Registry struct {
	mu      sync.RWMutex
	records map[key]*domain.TestRecord
	order   []key
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{records: make(map[key]*domain.TestRecord)}
}

// Declare stores a new record. Declaring an identity twice within one
// package fails with ErrDuplicateTest and leaves the first record intact.
func (r *Registry) Declare(rec domain.TestRecord) (*domain.TestRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{pkg: rec.Package, identity: rec.Identity}
	if existing, ok := r.records[k]; ok {
		return existing, fmt.Errorf("%s in %s: %w", rec.Identity, describePackage(rec.Package), ErrDuplicateTest)
	}

	stored := rec
	r.records[k] = &stored
	r.order = append(r.order, k)
	return &stored, nil
}

// Ensure returns the record for identity, declaring a minimal one when the
// identity was never declared (results of tests the loader could not see).
func (r *Registry) Ensure(pkg, identity string, build func() domain.TestRecord) *domain.TestRecord {
	if rec, ok := r.Lookup(pkg, identity); ok {
		return rec
	}
	rec := build()
	rec.Package = pkg
	rec.Identity = identity
	stored, _ := r.Declare(rec)
	return stored
}

// Lookup finds a record by package and identity.
func (r *Registry) Lookup(pkg, identity string) (*domain.TestRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key{pkg: pkg, identity: identity}]
	return rec, ok
}

// SetElapsed records how long a test body took.
func (r *Registry) SetElapsed(pkg, identity string, elapsed time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key{pkg: pkg, identity: identity}]
	if !ok {
		return false
	}
	rec.Elapsed = elapsed
	rec.HasElapsed = true
	return true
}

// Records returns every record in declaration order.
func (r *Registry) Records() []*domain.TestRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.TestRecord, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.records[k])
	}
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Delete removes the records matching the predicate.
func (r *Registry) Delete(match func(*domain.TestRecord) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, k := range r.order {
		if match(r.records[k]) {
			delete(r.records, k)
			continue
		}
		kept = append(kept, k)
	}
	r.order = kept
}

// Clear removes every record.
func (r *Registry) Clear() {
	r.Delete(func(*domain.TestRecord) bool { return true })
}

func describePackage(pkg string) string {
	if pkg == "" {
		return "this package"
	}
	return pkg
}
