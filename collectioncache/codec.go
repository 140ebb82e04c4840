package collectioncache

import (
	"bytes"

	"github.com/jmgilman/go/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-collection-cache/cache"
)

const (
	wireScalar uint8 = iota + 1
	wireReferenceSet
)

// wireEntry is the msgpack form of an Entry.
type wireEntry struct {
	Kind     uint8   `msgpack:"k"`
	Value    any     `msgpack:"v,omitempty"`
	IDs      []int64 `msgpack:"i,omitempty"`
	HasIDs   bool    `msgpack:"hi,omitempty"`
	Count    int     `msgpack:"c,omitempty"`
	HasCount bool    `msgpack:"hc,omitempty"`
	TypeTag  string  `msgpack:"t,omitempty"`
}

type entryCodec struct{}

// NewCodec returns the msgpack codec for entries, for stores that hold bytes.
// Scalars decode loosely: integers come back as int64 or uint64, floats as float64.
func NewCodec() cache.Codec {
	return entryCodec{}
}

func (entryCodec) Marshal(value any) ([]byte, error) {
	var wire wireEntry
	switch e := asEntry(value).(type) {
	case *ReferenceSet:
		ids, hasIDs := e.IDs()
		count, hasCount := e.Count()
		wire = wireEntry{
			Kind:     wireReferenceSet,
			IDs:      ids,
			HasIDs:   hasIDs,
			Count:    count,
			HasCount: hasCount,
			TypeTag:  e.TypeTag(),
		}
	case Scalar:
		wire = wireEntry{Kind: wireScalar, Value: e.Value}
	}

	data, err := msgpack.Marshal(&wire)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "failed to encode cache entry")
	}
	return data, nil
}

func (entryCodec) Unmarshal(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var wire wireEntry
	if err := dec.Decode(&wire); err != nil {
		return nil, errors.Wrap(err, errors.CodeSchemaFailed, "failed to decode cache entry")
	}

	switch wire.Kind {
	case wireReferenceSet:
		set := &ReferenceSet{
			count:    wire.Count,
			typeTag:  wire.TypeTag,
			hasIDs:   wire.HasIDs,
			hasCount: wire.HasCount,
		}
		if wire.HasIDs {
			set.ids = wire.IDs
			if set.ids == nil {
				set.ids = []int64{}
			}
		}
		return set, nil
	case wireScalar:
		return Scalar{Value: wire.Value}, nil
	}
	return nil, errors.Newf(errors.CodeSchemaFailed, "unknown cache entry kind %d", wire.Kind)
}
