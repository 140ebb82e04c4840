package collectioncache

import (
	"github.com/goliatone/go-collection-cache/cache"
)

// Records converts a Fetch result holding records of type T. Pages yield
// their records. Other shapes report cache.ErrInvalidResultType.
func Records[T Record](result any) ([]T, error) {
	var records []Record
	switch v := result.(type) {
	case []Record:
		records = v
	case *Page:
		if v == nil {
			return nil, cache.ErrInvalidResultType
		}
		records = v.Records
	case []T:
		return v, nil
	default:
		return nil, cache.ErrInvalidResultType
	}

	out := make([]T, len(records))
	for i, record := range records {
		typed, ok := record.(T)
		if !ok {
			return nil, cache.ErrInvalidResultType
		}
		out[i] = typed
	}
	return out, nil
}

// Count converts an integer FetchCount result to an int. Scalars returned
// unchanged by FetchCount report cache.ErrInvalidResultType.
func Count(result any) (int, error) {
	switch result.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return countOf(result).(int), nil
	}
	return 0, cache.ErrInvalidResultType
}
