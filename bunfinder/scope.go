package bunfinder

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/jmgilman/go/errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-collection-cache/collectioncache"
)

// Scope is an unloaded query over one record type. Counting it issues a
// COUNT query without loading rows.
type Scope struct {
	db         bun.IDB
	recordType *collectioncache.RecordType
	criteria   []repository.SelectCriteria
}

var _ collectioncache.LazySource = (*Scope)(nil)

// NewScope selects the records of recordType matching criteria.
func NewScope(db bun.IDB, recordType *collectioncache.RecordType, criteria ...repository.SelectCriteria) *Scope {
	return &Scope{db: db, recordType: recordType, criteria: criteria}
}

// Where narrows the scope with a condition.
func (s *Scope) Where(query string, args ...any) *Scope {
	criteria := append([]repository.SelectCriteria(nil), s.criteria...)
	criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	})
	return &Scope{db: s.db, recordType: s.recordType, criteria: criteria}
}

func (s *Scope) Count(ctx context.Context) (int, error) {
	q := applyCriteria(s.db.NewSelect().Model(s.recordType.NewModel()), s.criteria)
	n, err := q.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeDatabase, "failed to count "+s.recordType.Tag)
	}
	return n, nil
}

func (s *Scope) Materialize(ctx context.Context) ([]collectioncache.Record, error) {
	dest := s.recordType.NewSlice()
	q := applyCriteria(s.db.NewSelect().Model(dest), s.criteria)
	if err := q.Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to load "+s.recordType.Tag)
	}
	return s.recordType.Records(dest), nil
}

func (s *Scope) ElementType() string {
	return s.recordType.Tag
}
