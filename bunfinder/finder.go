package bunfinder

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-collection-cache/collectioncache"
)

// Finder loads cached ids back into records with bun.
type Finder struct {
	db     bun.IDB
	logger zerolog.Logger
}

var _ collectioncache.Finder = (*Finder)(nil)

// Option configures a Finder.
type Option func(*Finder)

// WithLogger logs every query at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Finder) { f.logger = logger }
}

// New returns a Finder on db, which may be a *bun.DB or a bun.Tx.
func New(db bun.IDB, opts ...Option) *Finder {
	f := &Finder{db: db, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindByIDs selects the records with the given ids in one query.
func (f *Finder) FindByIDs(ctx context.Context, recordType *collectioncache.RecordType, ids []int64, opts collectioncache.FindOptions) ([]collectioncache.Record, error) {
	if len(ids) == 0 {
		return []collectioncache.Record{}, nil
	}

	dest := recordType.NewSlice()
	q := f.query(recordType, dest, ids, opts)
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeDatabase, "failed to load cached records"),
			"type_tag", recordType.Tag,
		)
	}

	f.logger.Debug().Str("type_tag", recordType.Tag).Int("ids", len(ids)).Msg("loaded records by id")
	return recordType.Records(dest), nil
}

// Paginate selects one page of the records with the given ids, counting the
// full set in the same call.
func (f *Finder) Paginate(ctx context.Context, recordType *collectioncache.RecordType, ids []int64, opts collectioncache.FindOptions, page collectioncache.Pagination) (*collectioncache.Page, error) {
	if len(ids) == 0 {
		result := collectioncache.NewPage(page, 0)
		result.Records = []collectioncache.Record{}
		return result, nil
	}

	dest := recordType.NewSlice()
	q := f.query(recordType, dest, ids, opts).
		Limit(page.PerPage).
		Offset(page.Offset())

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeDatabase, "failed to paginate cached records"),
			"type_tag", recordType.Tag,
		)
	}

	result := collectioncache.NewPage(page, total)
	result.Records = recordType.Records(dest)
	f.logger.Debug().Str("type_tag", recordType.Tag).Int("page", page.Page).Int("total", total).Msg("paginated records by id")
	return result, nil
}

func (f *Finder) query(recordType *collectioncache.RecordType, dest any, ids []int64, opts collectioncache.FindOptions) *bun.SelectQuery {
	q := f.db.NewSelect().
		Model(dest).
		Where("?TableAlias.? IN (?)", bun.Ident(recordType.IDColumn), bun.In(ids))

	if len(opts.Columns) > 0 {
		q = q.Column(opts.Columns...)
	}
	for _, relation := range opts.Relations {
		q = q.Relation(relation)
	}
	for _, cond := range opts.Where {
		q = q.Where(cond.Query, cond.Args...)
	}
	q = applyCriteria(q, opts.Criteria)

	switch {
	case len(opts.Order) > 0:
		q = q.Order(opts.Order...)
	case len(opts.PreserveOrder) > 0:
		q = f.preserveOrder(q, recordType.IDColumn, opts.PreserveOrder)
	}
	return q
}

// preserveOrder sequences rows by their position in ids: FIELD() on MySQL,
// a CASE expression elsewhere.
func (f *Finder) preserveOrder(q *bun.SelectQuery, column string, ids []int64) *bun.SelectQuery {
	if f.db.Dialect().Name() == dialect.MySQL {
		return q.OrderExpr("FIELD(?TableAlias.?, ?)", bun.Ident(column), bun.In(ids))
	}

	var b strings.Builder
	args := make([]any, 0, 2*len(ids)+1)
	args = append(args, bun.Ident(column))
	b.WriteString("CASE ?TableAlias.?")
	for i, id := range ids {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, id, i)
	}
	b.WriteString(" END")
	return q.OrderExpr(b.String(), args...)
}

// applyCriteria runs criteria over q in order.
func applyCriteria(q *bun.SelectQuery, criteria []repository.SelectCriteria) *bun.SelectQuery {
	for _, c := range criteria {
		q = c(q)
	}
	return q
}
