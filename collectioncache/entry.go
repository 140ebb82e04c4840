package collectioncache

// Entry is the persisted shape of a cached collection: Scalar or *ReferenceSet.
type Entry interface {
	entry()
}

// Scalar is a computation result that is not a collection of records, stored verbatim.
type Scalar struct {
	Value any
}

func (Scalar) entry() {}

// ReferenceSet stands in for a record collection: ordered ids, a count and
// the element type tag. Ids and count are each optional; a count-only set
// comes from counting a LazySource.
type ReferenceSet struct {
	ids      []int64
	count    int
	typeTag  string
	hasIDs   bool
	hasCount bool
}

func (*ReferenceSet) entry() {}

// NewReferenceSet captures ids in order. The count is len(ids).
func NewReferenceSet(typeTag string, ids []int64) *ReferenceSet {
	copied := make([]int64, len(ids))
	copy(copied, ids)
	return &ReferenceSet{
		ids:      copied,
		count:    len(copied),
		typeTag:  typeTag,
		hasIDs:   true,
		hasCount: true,
	}
}

// NewCountOnly records a count without ids.
func NewCountOnly(typeTag string, count int) *ReferenceSet {
	return &ReferenceSet{count: count, typeTag: typeTag, hasCount: true}
}

// IDs returns the ordered ids and whether they were captured. The slice must not be modified.
func (r *ReferenceSet) IDs() ([]int64, bool) {
	return r.ids, r.hasIDs
}

// Count returns the count and whether it was captured.
func (r *ReferenceSet) Count() (int, bool) {
	return r.count, r.hasCount
}

// TypeTag returns the element type tag, "" when absent.
func (r *ReferenceSet) TypeTag() string {
	return r.typeTag
}

// asEntry interprets whatever a store returned. Values not written by the
// proxy are treated as opaque scalars.
func asEntry(value any) Entry {
	switch v := value.(type) {
	case *ReferenceSet:
		if v == nil {
			return Scalar{}
		}
		return v
	case Scalar:
		return v
	case *Scalar:
		if v == nil {
			return Scalar{}
		}
		return *v
	default:
		return Scalar{Value: value}
	}
}
