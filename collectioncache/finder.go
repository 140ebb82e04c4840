package collectioncache

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
)

// FindOptions is what the proxy hands the relational side when loading records by id.
type FindOptions struct {
	Where     []Condition
	Relations []string
	Columns   []string
	Order     []string
	Limit     *int
	Offset    *int
	Criteria  []repository.SelectCriteria

	// PreserveOrder, when set, requires results sequenced by position in this
	// list instead of storage order. It is set whenever Order is empty.
	PreserveOrder []int64
}

// Finder loads records by id. Implementations apply opts in a single round trip.
type Finder interface {
	FindByIDs(ctx context.Context, recordType *RecordType, ids []int64, opts FindOptions) ([]Record, error)
	Paginate(ctx context.Context, recordType *RecordType, ids []int64, opts FindOptions, page Pagination) (*Page, error)
}
