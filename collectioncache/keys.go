package collectioncache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/jinzhu/inflection"

	"github.com/goliatone/go-collection-cache/cache"
)

// Namespace prefixes every key written by the proxy.
const Namespace = "collection-cache"

// Scope tokens follow the namespace. Type segments never contain the key
// separator, so a class prefix can never match an instance key.
const (
	classToken    = "class"
	instanceToken = "instance"
)

// maxOptionSegment is the longest serialized option segment kept readable;
// longer ones are digested.
const maxOptionSegment = 64

// KeyBuilder derives cache keys and invalidation prefixes.
//
// Class keys:    collection-cache-class-<type>-<name>[-<options>]
// Instance keys: collection-cache-instance-<plural type>-<id>-<name>[-<options>]
type KeyBuilder struct {
	serializer cache.KeySerializer
}

// NewKeyBuilder uses serializer for the key-affecting option segment.
func NewKeyBuilder(serializer cache.KeySerializer) *KeyBuilder {
	if serializer == nil {
		serializer = cache.NewDefaultKeySerializer()
	}
	return &KeyBuilder{serializer: serializer}
}

// Key returns the cache key for subject's collection name under the
// key-affecting options keyOpts.
func (k *KeyBuilder) Key(subject Subject, name string, keyOpts map[string]any) string {
	var base string
	if id := subject.SubjectID(); id != "" {
		base = InstancePrefix(subject.SubjectType()) + escapeSegment(id) + cache.KeySeparator + escapeSegment(name)
	} else {
		base = ClassPrefix(subject.SubjectType()) + escapeSegment(name)
	}

	if len(keyOpts) == 0 {
		return base
	}

	segment := k.serializer.SerializeKey("", keyOpts)[len(cache.KeySeparator):]
	if len(segment) > maxOptionSegment {
		segment = fmt.Sprintf("x%016x", xxhash.Sum64String(segment))
	}
	return base + cache.KeySeparator + segment
}

// AllPrefix matches every key written by the proxy.
func AllPrefix() string {
	return Namespace + cache.KeySeparator
}

// ClassPrefix matches every class-scope key of typeTag.
func ClassPrefix(typeTag string) string {
	return AllPrefix() + classToken + cache.KeySeparator + classSegment(typeTag) + cache.KeySeparator
}

// InstancePrefix matches every instance-scope key of typeTag.
func InstancePrefix(typeTag string) string {
	return AllPrefix() + instanceToken + cache.KeySeparator + instanceSegment(typeTag) + cache.KeySeparator
}

func classSegment(typeTag string) string {
	return toSnake(typeTag)
}

func instanceSegment(typeTag string) string {
	return inflection.Plural(classSegment(typeTag))
}
