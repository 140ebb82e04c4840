package collectioncache

import (
	"context"
	"fmt"
)

// Record is an addressable domain row.
type Record interface {
	RecordID() int64
}

// Subject owns named cached collections. Class subjects return an empty SubjectID.
type Subject interface {
	// SubjectType is the registered type tag of the subject's base type.
	SubjectType() string
	// SubjectID discriminates instances; empty for class subjects.
	SubjectID() string
}

// Scope distinguishes class-level from instance-level blueprints.
type Scope int

const (
	ClassScope Scope = iota
	InstanceScope
)

func (s Scope) String() string {
	if s == InstanceScope {
		return "instance"
	}
	return "class"
}

// ScopeOf reports the scope a subject belongs to.
func ScopeOf(subject Subject) Scope {
	if subject.SubjectID() == "" {
		return ClassScope
	}
	return InstanceScope
}

type plainSubject struct {
	typeTag string
	id      string
}

func (s plainSubject) SubjectType() string { return s.typeTag }
func (s plainSubject) SubjectID() string   { return s.id }

func (s plainSubject) String() string {
	if s.id == "" {
		return s.typeTag
	}
	return s.typeTag + "#" + s.id
}

// Class returns the class subject for typeTag.
func Class(typeTag string) Subject {
	return plainSubject{typeTag: typeTag}
}

// Instance returns the instance subject of typeTag identified by id.
func Instance(typeTag string, id any) Subject {
	return plainSubject{typeTag: typeTag, id: fmt.Sprint(id)}
}

func describeSubject(subject Subject) string {
	if stringer, ok := subject.(fmt.Stringer); ok {
		return stringer.String()
	}
	if id := subject.SubjectID(); id != "" {
		return subject.SubjectType() + "#" + id
	}
	return subject.SubjectType()
}

// Computation produces a collection for subject: a scalar, a slice of records
// (possibly empty) or a LazySource.
type Computation func(ctx context.Context, subject Subject) (any, error)

// LazySource is an unloaded association or scope. Count must not load elements.
type LazySource interface {
	Count(ctx context.Context) (int, error)
	Materialize(ctx context.Context) ([]Record, error)
	// ElementType is the declared element type tag, or "" when unknown.
	ElementType() string
}

// CollectionResolver lets a subject supply computations by name when no
// blueprint is registered and none is passed in.
type CollectionResolver interface {
	ResolveCollection(name string) (Computation, bool)
}

func resolveComputation(subject Subject, name string) (Computation, bool) {
	resolver, ok := subject.(CollectionResolver)
	if !ok {
		return nil, false
	}
	fn, ok := resolver.ResolveCollection(name)
	return fn, ok && fn != nil
}
