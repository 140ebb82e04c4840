package collectioncache

import "sync"

// Blueprint is a registered computation and its default options for
// (subject type, scope, name). Blueprints are not modified after registration.
type Blueprint struct {
	SubjectType string
	Scope       Scope
	Name        string
	Computation Computation
	Options     Options
}

type blueprintKey struct {
	subjectType string
	scope       Scope
	name        string
}

// Registry holds blueprints for the process. Safe for concurrent lookups and registrations.
type Registry struct {
	mu         sync.RWMutex
	blueprints map[blueprintKey]*Blueprint
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{blueprints: make(map[blueprintKey]*Blueprint)}
}

// Register stores a blueprint, replacing any previous one for the same triple.
func (r *Registry) Register(subjectType string, scope Scope, name string, fn Computation, opts Options) *Blueprint {
	blueprint := &Blueprint{
		SubjectType: subjectType,
		Scope:       scope,
		Name:        name,
		Computation: fn,
		Options:     opts,
	}

	r.mu.Lock()
	r.blueprints[blueprintKey{subjectType, scope, name}] = blueprint
	r.mu.Unlock()

	return blueprint
}

// RegisterFor registers under the type and scope of subject.
func (r *Registry) RegisterFor(subject Subject, name string, fn Computation, opts Options) *Blueprint {
	return r.Register(subject.SubjectType(), ScopeOf(subject), name, fn, opts)
}

// Lookup finds the blueprint for subject's type and scope.
func (r *Registry) Lookup(subject Subject, name string) (*Blueprint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blueprint, ok := r.blueprints[blueprintKey{subject.SubjectType(), ScopeOf(subject), name}]
	return blueprint, ok
}

// Has reports whether a blueprint exists for subject and name.
func (r *Registry) Has(subject Subject, name string) bool {
	_, ok := r.Lookup(subject, name)
	return ok
}

// Len returns the number of registered blueprints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blueprints)
}

// Clear drops every blueprint.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.blueprints = make(map[blueprintKey]*Blueprint)
	r.mu.Unlock()
}
