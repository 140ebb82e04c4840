package collectioncache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-collection-cache/cache"
)

// Condition is a SQL fragment with placeholders, e.g. {"name LIKE ?", []any{"a%"}}.
type Condition struct {
	Query string
	Args  []any
}

// Options controls one fetch. Nil pointer and nil slice fields are unset, so
// merging can tell "not given" apart from a zero value.
type Options struct {
	// Force recomputes and overwrites the entry. Only honored at the call site.
	Force bool

	// Key-affecting: part of the cache key.
	AutoExpire *bool
	KeyParams  map[string]any

	// Cache-affecting: applied to writes.
	ExpiresIn *time.Duration

	// Pagination.
	Page         *int
	PerPage      *int
	TotalEntries *int

	// Find options, applied when records are loaded by id.
	Where     []Condition
	Relations []string
	Columns   []string
	Order     []string
	Limit     *int
	Offset    *int
	Criteria  []repository.SelectCriteria
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Duration returns a pointer to d.
func Duration(d time.Duration) *time.Duration { return &d }

// Merge overlays call on defaults field by field; call wins wherever it is set.
// KeyParams merge key by key. Force always comes from call.
func Merge(defaults, call Options) Options {
	merged := defaults
	merged.Force = call.Force

	merged.AutoExpire = pick(call.AutoExpire, defaults.AutoExpire)
	merged.ExpiresIn = pick(call.ExpiresIn, defaults.ExpiresIn)
	merged.Page = pick(call.Page, defaults.Page)
	merged.PerPage = pick(call.PerPage, defaults.PerPage)
	merged.TotalEntries = pick(call.TotalEntries, defaults.TotalEntries)
	merged.Limit = pick(call.Limit, defaults.Limit)
	merged.Offset = pick(call.Offset, defaults.Offset)

	if call.Where != nil {
		merged.Where = call.Where
	}
	if call.Relations != nil {
		merged.Relations = call.Relations
	}
	if call.Columns != nil {
		merged.Columns = call.Columns
	}
	if call.Order != nil {
		merged.Order = call.Order
	}
	if call.Criteria != nil {
		merged.Criteria = call.Criteria
	}

	if len(defaults.KeyParams) > 0 || len(call.KeyParams) > 0 {
		params := make(map[string]any, len(defaults.KeyParams)+len(call.KeyParams))
		for k, v := range defaults.KeyParams {
			params[k] = v
		}
		for k, v := range call.KeyParams {
			params[k] = v
		}
		merged.KeyParams = params
	}

	return merged
}

func pick[T any](preferred, fallback *T) *T {
	if preferred != nil {
		return preferred
	}
	return fallback
}

// Validate rejects pages and sizes below one and negative windows.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.Page, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&o.PerPage, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&o.TotalEntries, validation.Min(0)),
		validation.Field(&o.Limit, validation.Min(0)),
		validation.Field(&o.Offset, validation.Min(0)),
		validation.Field(&o.ExpiresIn, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid collection options")
	}
	return nil
}

// keyOptions is the key-affecting subset, nil when empty.
func (o Options) keyOptions() map[string]any {
	if o.AutoExpire == nil && len(o.KeyParams) == 0 {
		return nil
	}
	out := make(map[string]any, len(o.KeyParams)+1)
	for k, v := range o.KeyParams {
		out[k] = v
	}
	if o.AutoExpire != nil {
		out["auto_expire"] = *o.AutoExpire
	}
	return out
}

// writeOptions is the cache-affecting subset.
func (o Options) writeOptions() cache.WriteOptions {
	var opts cache.WriteOptions
	if o.ExpiresIn != nil {
		opts.ExpiresIn = *o.ExpiresIn
	}
	return opts
}

func (o Options) paginates() bool {
	return o.Page != nil
}

func (o Options) limitsOrOffsets() bool {
	return o.Limit != nil || o.Offset != nil
}

func (o Options) ordered() bool {
	return len(o.Order) > 0
}

// pagination resolves the page request, taking the per-page size from
// defaultPerPage when none is given.
func (o Options) pagination(defaultPerPage int) Pagination {
	p := Pagination{Page: 1, PerPage: defaultPerPage, TotalEntries: o.TotalEntries}
	if o.Page != nil {
		p.Page = *o.Page
	}
	if o.PerPage != nil {
		p.PerPage = *o.PerPage
	}
	return p
}

// findOptions is the find subset. Without an explicit order, results are
// sequenced by ids. Limit and offset are passed only when withWindow is set.
func (o Options) findOptions(ids []int64, withWindow bool) FindOptions {
	find := FindOptions{
		Where:     o.Where,
		Relations: o.Relations,
		Columns:   o.Columns,
		Order:     o.Order,
		Criteria:  o.Criteria,
	}
	if withWindow {
		find.Limit = o.Limit
		find.Offset = o.Offset
	}
	if !o.ordered() {
		find.PreserveOrder = ids
	}
	return find
}
