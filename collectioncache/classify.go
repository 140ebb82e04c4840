package collectioncache

import (
	"context"
	"reflect"
)

// Mode selects what a request returns.
type Mode int

const (
	FetchMode Mode = iota
	CountMode
)

func (m Mode) String() string {
	if m == CountMode {
		return "count"
	}
	return "fetch"
}

// classified is a computation result together with the entry to persist.
type classified struct {
	entry   Entry
	records []Record // nil unless the result was a record collection
	count   int
	isSet   bool
}

// classify decides the persisted shape of a computation result. Slices whose
// first element is a Record become reference-sets, lazy sources are counted
// without loading in CountMode, everything else is stored as a scalar.
func (p *Proxy) classify(ctx context.Context, subject Subject, name string, result any, mode Mode) (classified, error) {
	if source, ok := result.(LazySource); ok {
		return p.classifyLazy(ctx, subject, source, mode)
	}

	rv := reflect.ValueOf(result)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return classified{entry: Scalar{Value: result}}, nil
	}

	if rv.Len() == 0 {
		tag := subject.SubjectType()
		if declared, ok := p.types.tagOfType(rv.Type().Elem()); ok {
			tag = declared
		}
		return classified{entry: NewReferenceSet(tag, nil), records: []Record{}, isSet: true}, nil
	}

	first, ok := rv.Index(0).Interface().(Record)
	if !ok || isNilRecord(first) {
		return classified{entry: Scalar{Value: result}}, nil
	}

	records := make([]Record, rv.Len())
	for i := range records {
		record, ok := rv.Index(i).Interface().(Record)
		if !ok || isNilRecord(record) {
			return classified{}, mixedCollectionError(subject, name, i)
		}
		records[i] = record
	}

	tag, ok := p.types.tagOfType(rv.Type().Elem())
	if !ok {
		var err error
		if tag, err = p.types.TagOf(first); err != nil {
			return classified{}, err
		}
	}

	return p.recordSet(tag, records), nil
}

func (p *Proxy) classifyLazy(ctx context.Context, subject Subject, source LazySource, mode Mode) (classified, error) {
	if mode == CountMode {
		n, err := source.Count(ctx)
		if err != nil {
			return classified{}, err
		}
		return classified{entry: NewCountOnly(subject.SubjectType(), n), count: n, isSet: true}, nil
	}

	records, err := source.Materialize(ctx)
	if err != nil {
		return classified{}, err
	}

	tag := source.ElementType()
	if tag == "" && len(records) > 0 {
		if tag, err = p.types.TagOf(records[0]); err != nil {
			return classified{}, err
		}
	}
	if tag == "" {
		tag = subject.SubjectType()
	}

	if records == nil {
		records = []Record{}
	}
	return p.recordSet(tag, records), nil
}

func (p *Proxy) recordSet(tag string, records []Record) classified {
	ids := make([]int64, len(records))
	for i, record := range records {
		ids[i] = record.RecordID()
	}
	return classified{
		entry:   NewReferenceSet(tag, ids),
		records: records,
		count:   len(ids),
		isSet:   true,
	}
}

func isNilRecord(record Record) bool {
	rv := reflect.ValueOf(record)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// countOf returns the size of a countable scalar, or the value unchanged.
func countOf(value any) any {
	switch v := value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case interface{ Len() int }:
		return v.Len()
	}

	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return value
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return value
}
