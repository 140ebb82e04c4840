package collectioncache

import (
	"reflect"

	"github.com/jmgilman/go/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultPerPage is used when a page is requested without a per-page size.
const DefaultPerPage = 30

var recordInterface = reflect.TypeOf((*Record)(nil)).Elem()

// RecordType describes a concrete record type that reference-sets can name.
type RecordType struct {
	Tag      string
	Type     reflect.Type // struct type, records are *Type
	IDColumn string
	PerPage  int
}

// NewSlice returns a pointer to an empty []*Type, suitable as a scan target.
func (t *RecordType) NewSlice() any {
	return reflect.New(reflect.SliceOf(reflect.PointerTo(t.Type))).Interface()
}

// NewModel returns a pointer to a zero Type.
func (t *RecordType) NewModel() any {
	return reflect.New(t.Type).Interface()
}

// Records converts a slice, or pointer to slice, of records into []Record.
func (t *RecordType) Records(slice any) []Record {
	rv := reflect.Indirect(reflect.ValueOf(slice))
	out := make([]Record, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if record, ok := rv.Index(i).Interface().(Record); ok {
			out = append(out, record)
		}
	}
	return out
}

// TypeOption customizes a registered record type.
type TypeOption func(*RecordType)

// WithIDColumn overrides the primary key column, "id" by default.
func WithIDColumn(column string) TypeOption {
	return func(t *RecordType) { t.IDColumn = column }
}

// WithPerPage overrides the default page size for the type.
func WithPerPage(n int) TypeOption {
	return func(t *RecordType) { t.PerPage = n }
}

// TypeRegistry maps type tags to record types and back.
type TypeRegistry struct {
	byTag  *xsync.MapOf[string, *RecordType]
	byType *xsync.MapOf[string, *RecordType]
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byTag:  xsync.NewMapOf[string, *RecordType](),
		byType: xsync.NewMapOf[string, *RecordType](),
	}
}

// Register associates tag with the type of prototype, a pointer to a struct
// implementing Record. Registering a tag again replaces it.
func (r *TypeRegistry) Register(tag string, prototype any, opts ...TypeOption) (*RecordType, error) {
	if tag == "" {
		return nil, errors.New(errors.CodeInvalidInput, "collectioncache: empty type tag")
	}

	rt := reflect.TypeOf(prototype)
	if rt == nil {
		return nil, errors.Newf(errors.CodeInvalidInput, "collectioncache: nil prototype for %q", tag)
	}
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, errors.Newf(errors.CodeInvalidInput, "collectioncache: %s is not a struct type", rt)
	}
	if !reflect.PointerTo(rt).Implements(recordInterface) {
		return nil, errors.Newf(errors.CodeInvalidInput, "collectioncache: *%s does not implement Record", rt)
	}

	recordType := &RecordType{Tag: tag, Type: rt, IDColumn: "id", PerPage: DefaultPerPage}
	for _, opt := range opts {
		opt(recordType)
	}

	r.byTag.Store(tag, recordType)
	r.byType.Store(typeKey(rt), recordType)
	return recordType, nil
}

// MustRegister is Register that panics on error, for package initialization.
func (r *TypeRegistry) MustRegister(tag string, prototype any, opts ...TypeOption) *RecordType {
	recordType, err := r.Register(tag, prototype, opts...)
	if err != nil {
		panic(err)
	}
	return recordType
}

// Resolve returns the type registered under tag. Unknown tags are never
// substituted with another type.
func (r *TypeRegistry) Resolve(tag string) (*RecordType, error) {
	if recordType, ok := r.byTag.Load(tag); ok {
		return recordType, nil
	}
	return nil, typeResolutionError(tag)
}

// TagOf returns the tag registered for the runtime type of record.
func (r *TypeRegistry) TagOf(record Record) (string, error) {
	rt := reflect.TypeOf(record)
	if tag, ok := r.tagOfType(rt); ok {
		return tag, nil
	}
	return "", typeResolutionError(rt.String())
}

func (r *TypeRegistry) tagOfType(rt reflect.Type) (string, bool) {
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == nil {
		return "", false
	}
	recordType, ok := r.byType.Load(typeKey(rt))
	if !ok {
		return "", false
	}
	return recordType.Tag, true
}

func (r *TypeRegistry) perPage(tag string) int {
	if recordType, ok := r.byTag.Load(tag); ok && recordType.PerPage > 0 {
		return recordType.PerPage
	}
	return DefaultPerPage
}

func typeKey(rt reflect.Type) string {
	return rt.PkgPath() + "." + rt.Name()
}
