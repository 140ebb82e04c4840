package collectioncache

import (
	"github.com/jmgilman/go/errors"
)

// configurationError reports that nothing can produce the named collection.
func configurationError(subject Subject, name string) error {
	err := errors.Newf(errors.CodeInvalidConfig,
		"%s has no computation for collection %q: pass one, register a blueprint or resolve it on the subject",
		describeSubject(subject), name)
	return errors.WithContextMap(err, map[string]interface{}{
		"subject":    describeSubject(subject),
		"collection": name,
	})
}

// typeResolutionError reports a type tag with no registered record type.
func typeResolutionError(tag string) error {
	err := errors.Newf(errors.CodeNotFound, "no record type registered for %q", tag)
	return errors.WithContext(err, "type_tag", tag)
}

func mixedCollectionError(subject Subject, name string, index int) error {
	err := errors.Newf(errors.CodeInvalidInput,
		"collection %q of %s mixes records with other values at index %d",
		name, describeSubject(subject), index)
	return errors.WithContext(err, "collection", name)
}

// IsConfigurationError reports whether err says a collection has no computation.
func IsConfigurationError(err error) bool {
	return errors.GetCode(err) == errors.CodeInvalidConfig
}

// IsTypeResolutionError reports whether err names an unresolvable record type.
func IsTypeResolutionError(err error) bool {
	if errors.GetCode(err) != errors.CodeNotFound {
		return false
	}
	var platformErr errors.PlatformError
	if !errors.As(err, &platformErr) {
		return false
	}
	_, ok := platformErr.Context()["type_tag"]
	return ok
}
