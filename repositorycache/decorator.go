package repositorycache

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-collection-cache/collectioncache"
	"github.com/goliatone/go-collection-cache/pkg/logging"
)

var _ repository.Repository[any] = (*InvalidatingRepository[any])(nil)

// Invalidator drops cached collections. *collectioncache.Proxy implements it.
type Invalidator interface {
	ClearClassCaches(ctx context.Context, subject collectioncache.Subject) error
	ClearInstanceCaches(ctx context.Context, subject collectioncache.Subject) error
}

// InvalidatingRepository decorates a base repository so that every
// successful write clears the class and instance collections of the owner
// types it was built with.
type InvalidatingRepository[T any] struct {
	base        repository.Repository[T]
	invalidator Invalidator
	owners      []string
	logger      zerolog.Logger
}

// Option customizes an InvalidatingRepository.
type Option func(*settings)

type settings struct {
	logger zerolog.Logger
}

// WithLogger reports invalidation failures on logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New wraps base. owners are the type tags whose collections depend on
// records of T, e.g. the owning Company for an Employee repository.
func New[T any](base repository.Repository[T], invalidator Invalidator, owners []string, opts ...Option) *InvalidatingRepository[T] {
	s := settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return &InvalidatingRepository[T]{
		base:        base,
		invalidator: invalidator,
		owners:      dedupeStrings(owners),
		logger:      s.logger.With().Str("component", "repositorycache").Logger(),
	}
}

// Owners returns the type tags cleared after each write.
func (r *InvalidatingRepository[T]) Owners() []string {
	return append([]string(nil), r.owners...)
}

func (r *InvalidatingRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.Get(ctx, criteria...)
}

func (r *InvalidatingRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByID(ctx, id, criteria...)
}

func (r *InvalidatingRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return r.base.List(ctx, criteria...)
}

func (r *InvalidatingRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return r.base.Count(ctx, criteria...)
}

func (r *InvalidatingRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIdentifier(ctx, identifier, criteria...)
}

func (r *InvalidatingRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetTx(ctx, tx, criteria...)
}

func (r *InvalidatingRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIDTx(ctx, tx, id, criteria...)
}

func (r *InvalidatingRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return r.base.ListTx(ctx, tx, criteria...)
}

func (r *InvalidatingRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return r.base.CountTx(ctx, tx, criteria...)
}

func (r *InvalidatingRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

// Create inserts record and clears the owner collections.
func (r *InvalidatingRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := r.base.Create(ctx, record, criteria...)
	r.after(ctx, "create", err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := r.base.CreateTx(ctx, tx, record, criteria...)
	r.after(ctx, "create", err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := r.base.CreateMany(ctx, records, criteria...)
	r.after(ctx, "create_many", err)
	return result, err
}

func (r *InvalidatingRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := r.base.CreateManyTx(ctx, tx, records, criteria...)
	r.after(ctx, "create_many", err)
	return result, err
}

// GetOrCreate may insert, so it clears like Create.
func (r *InvalidatingRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := r.base.GetOrCreate(ctx, record)
	r.after(ctx, "get_or_create", err)
	return result, err
}

func (r *InvalidatingRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := r.base.GetOrCreateTx(ctx, tx, record)
	r.after(ctx, "get_or_create", err)
	return result, err
}

func (r *InvalidatingRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.base.Update(ctx, record, criteria...)
	r.after(ctx, "update", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.base.UpdateTx(ctx, tx, record, criteria...)
	r.after(ctx, "update", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.base.UpdateMany(ctx, records, criteria...)
	r.after(ctx, "update_many", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.base.UpdateManyTx(ctx, tx, records, criteria...)
	r.after(ctx, "update_many", err)
	return result, err
}

func (r *InvalidatingRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.base.Upsert(ctx, record, criteria...)
	r.after(ctx, "upsert", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := r.base.UpsertTx(ctx, tx, record, criteria...)
	r.after(ctx, "upsert", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.base.UpsertMany(ctx, records, criteria...)
	r.after(ctx, "upsert_many", err)
	return result, err
}

func (r *InvalidatingRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := r.base.UpsertManyTx(ctx, tx, records, criteria...)
	r.after(ctx, "upsert_many", err)
	return result, err
}

func (r *InvalidatingRepository[T]) Delete(ctx context.Context, record T) error {
	err := r.base.Delete(ctx, record)
	r.after(ctx, "delete", err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := r.base.DeleteTx(ctx, tx, record)
	r.after(ctx, "delete", err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := r.base.DeleteMany(ctx, criteria...)
	r.after(ctx, "delete_many", err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := r.base.DeleteManyTx(ctx, tx, criteria...)
	r.after(ctx, "delete_many", err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := r.base.DeleteWhere(ctx, criteria...)
	r.after(ctx, "delete_where", err)
	return err
}

func (r *InvalidatingRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	err := r.base.DeleteWhereTx(ctx, tx, criteria...)
	r.after(ctx, "delete_where", err)
	return err
}

func (r *InvalidatingRepository[T]) ForceDelete(ctx context.Context, record T) error {
	err := r.base.ForceDelete(ctx, record)
	r.after(ctx, "force_delete", err)
	return err
}

func (r *InvalidatingRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	err := r.base.ForceDeleteTx(ctx, tx, record)
	r.after(ctx, "force_delete", err)
	return err
}

// Raw is not treated as a write.
func (r *InvalidatingRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return r.base.Raw(ctx, sql, args...)
}

func (r *InvalidatingRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return r.base.RawTx(ctx, tx, sql, args...)
}

func (r *InvalidatingRepository[T]) Handlers() repository.ModelHandlers[T] {
	return r.base.Handlers()
}

// Invalidate clears the owner collections plus any types attached to ctx
// with WithInvalidationTypes. Every type is attempted; the first failure is
// returned.
func (r *InvalidatingRepository[T]) Invalidate(ctx context.Context) error {
	var first error
	for _, typeTag := range dedupeStrings(append(r.Owners(), invalidationTypesFromContext(ctx)...)) {
		subject := collectioncache.Class(typeTag)
		if err := r.invalidator.ClearClassCaches(ctx, subject); err != nil && first == nil {
			first = err
		}
		if err := r.invalidator.ClearInstanceCaches(ctx, subject); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// after runs once the base write returned; failed writes clear nothing.
// Invalidation errors are logged since the write itself already happened.
func (r *InvalidatingRepository[T]) after(ctx context.Context, op string, err error) {
	if err != nil {
		return
	}
	if err := r.Invalidate(ctx); err != nil {
		logging.Error(r.logger, err).Str("op", op).Msg("collection cache invalidation failed")
	}
}
