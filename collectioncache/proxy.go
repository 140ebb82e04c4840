package collectioncache

import (
	"context"

	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-collection-cache/cache"
)

// Proxy serves named collections from a backing store, computing and
// persisting them on miss or forced refresh. Entries for record collections
// hold ids only; hits reload the records through the Finder.
type Proxy struct {
	store      cache.Store
	finder     Finder
	blueprints *Registry
	types      *TypeRegistry
	keys       *KeyBuilder
	logger     zerolog.Logger
	metrics    *Metrics
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Proxy) { p.logger = logger }
}

// WithMetrics records request counters on m.
func WithMetrics(m *Metrics) Option {
	return func(p *Proxy) { p.metrics = m }
}

// WithKeySerializer overrides how key-affecting options are rendered into keys.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(p *Proxy) { p.keys = NewKeyBuilder(serializer) }
}

// WithRegistry shares a blueprint registry between proxies.
func WithRegistry(registry *Registry) Option {
	return func(p *Proxy) { p.blueprints = registry }
}

// WithTypes shares a record type registry between proxies.
func WithTypes(types *TypeRegistry) Option {
	return func(p *Proxy) { p.types = types }
}

// New builds a proxy over store, loading records through finder.
func New(store cache.Store, finder Finder, opts ...Option) (*Proxy, error) {
	if store == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "collection cache requires a store")
	}
	if finder == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "collection cache requires a finder")
	}

	p := &Proxy{
		store:  store,
		finder: finder,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.blueprints == nil {
		p.blueprints = NewRegistry()
	}
	if p.types == nil {
		p.types = NewTypeRegistry()
	}
	if p.keys == nil {
		p.keys = NewKeyBuilder(nil)
	}
	return p, nil
}

// Registry returns the blueprint registry consulted on every call.
func (p *Proxy) Registry() *Registry { return p.blueprints }

// Types returns the record type registry.
func (p *Proxy) Types() *TypeRegistry { return p.types }

// Key returns the cache key a call with opts would use.
func (p *Proxy) Key(subject Subject, name string, opts Options) string {
	if blueprint, ok := p.blueprints.Lookup(subject, name); ok {
		opts = Merge(blueprint.Options, opts)
	}
	return p.keys.Key(subject, name, opts.keyOptions())
}

// Fetch returns the named collection: []Record, a *Page when a page is
// requested, or the cached scalar. fn may be nil when a blueprint is
// registered or the subject resolves the name itself.
func (p *Proxy) Fetch(ctx context.Context, subject Subject, name string, opts Options, fn Computation) (any, error) {
	return p.execute(ctx, FetchMode, subject, name, opts, fn)
}

// FetchCount returns the size of the named collection as an int. Scalars
// without a size are returned unchanged.
func (p *Proxy) FetchCount(ctx context.Context, subject Subject, name string, opts Options, fn Computation) (any, error) {
	return p.execute(ctx, CountMode, subject, name, opts, fn)
}

// request is the state of one call.
type request struct {
	mode    Mode
	subject Subject
	name    string
	call    Options
	merged  Options
	fn      Computation
	key     string
}

func (p *Proxy) execute(ctx context.Context, mode Mode, subject Subject, name string, call Options, fn Computation) (any, error) {
	req := request{mode: mode, subject: subject, name: name, call: call, merged: call, fn: fn}

	blueprint, registered := p.blueprints.Lookup(subject, name)
	if registered {
		req.merged = Merge(blueprint.Options, call)
		if req.fn == nil {
			req.fn = blueprint.Computation
		}
	}
	if req.fn == nil {
		resolved, ok := resolveComputation(subject, name)
		if !ok {
			return nil, configurationError(subject, name)
		}
		req.fn = resolved
	}

	if err := req.merged.Validate(); err != nil {
		return nil, err
	}

	req.key = p.keys.Key(subject, name, req.merged.keyOptions())
	logger := p.logger.With().Str("key", req.key).Str("mode", mode.String()).Logger()

	if call.Force {
		p.metrics.request(mode, "forced")
		logger.Debug().Str("state", "forced").Msg("refreshing collection")
		return p.compute(ctx, req)
	}

	value, found, err := p.store.Read(ctx, req.key)
	if err != nil {
		p.metrics.storeError("read")
		logger.Error().Err(err).Msg("cache read failed")
		return nil, err
	}
	if !found {
		p.metrics.request(mode, "miss")
		logger.Debug().Str("state", "miss").Msg("computing collection")
		return p.compute(ctx, req)
	}

	result, served, err := p.serve(ctx, req, asEntry(value))
	if err != nil {
		return nil, err
	}
	if !served {
		p.metrics.request(mode, "degraded")
		logger.Debug().Str("state", "degraded").Msg("cached entry cannot answer, recomputing")
		return p.compute(ctx, req)
	}

	p.metrics.request(mode, "hit")
	logger.Debug().Str("state", "hit").Msg("served from cache")
	return result, nil
}

// serve answers from a cached entry. served is false when the entry lacks
// what the mode needs: a count for COUNT or ids for FETCH.
func (p *Proxy) serve(ctx context.Context, req request, entry Entry) (any, bool, error) {
	switch e := entry.(type) {
	case *ReferenceSet:
		if req.mode == CountMode {
			n, ok := e.Count()
			return n, ok, nil
		}
		ids, ok := e.IDs()
		if !ok {
			return nil, false, nil
		}
		result, err := p.reconstruct(ctx, req, e.TypeTag(), ids)
		return result, true, err
	case Scalar:
		if req.mode == CountMode {
			return countOf(e.Value), true, nil
		}
		return e.Value, true, nil
	}
	return nil, false, nil
}

// compute runs the computation, persists its classified shape and returns
// it projected through the call-site options.
func (p *Proxy) compute(ctx context.Context, req request) (any, error) {
	result, err := req.fn(ctx, req.subject)
	p.metrics.computation(req.mode, err)
	if err != nil {
		return nil, err
	}

	shaped, err := p.classify(ctx, req.subject, req.name, result, req.mode)
	if err != nil {
		return nil, err
	}

	if err := p.store.Write(ctx, req.key, shaped.entry, req.merged.writeOptions()); err != nil {
		p.metrics.storeError("write")
		p.logger.Error().Err(err).Str("key", req.key).Msg("cache write failed")
		return nil, err
	}
	p.metrics.write(shaped.entry)

	if req.mode == CountMode {
		if shaped.isSet {
			return shaped.count, nil
		}
		return countOf(result), nil
	}

	if !shaped.isSet {
		return result, nil
	}
	return p.project(shaped.entry.(*ReferenceSet).TypeTag(), shaped.records, req.call), nil
}

// project windows freshly computed records in memory.
func (p *Proxy) project(tag string, records []Record, call Options) any {
	if call.paginates() {
		items, page := paginate(records, call.pagination(p.types.perPage(tag)))
		page.Records = items
		return page
	}
	if call.limitsOrOffsets() {
		return window(records, call.Offset, call.Limit)
	}
	return records
}

// reconstruct reloads cached ids through the finder, projected by the
// merged options.
func (p *Proxy) reconstruct(ctx context.Context, req request, tag string, ids []int64) (any, error) {
	opts := req.merged
	if tag == "" {
		tag = req.subject.SubjectType()
	}

	// An empty set of the subject's own type needs no record type; any
	// other stored tag must resolve.
	recordType, err := p.types.Resolve(tag)
	if err != nil && (len(ids) > 0 || tag != req.subject.SubjectType()) {
		return nil, err
	}

	if len(ids) == 0 {
		if opts.paginates() {
			page := NewPage(opts.pagination(p.types.perPage(tag)), 0)
			page.Records = []Record{}
			return page, nil
		}
		return []Record{}, nil
	}

	switch {
	case opts.paginates():
		return p.fetchPage(ctx, recordType, ids, opts)
	case opts.limitsOrOffsets():
		return p.fetchWindow(ctx, recordType, ids, opts)
	default:
		return p.finder.FindByIDs(ctx, recordType, ids, opts.findOptions(ids, false))
	}
}

func (p *Proxy) fetchPage(ctx context.Context, recordType *RecordType, ids []int64, opts Options) (*Page, error) {
	pagination := opts.pagination(p.types.perPage(recordType.Tag))
	if opts.ordered() {
		return p.finder.Paginate(ctx, recordType, ids, opts.findOptions(ids, false), pagination)
	}

	pageIDs, page := paginate(ids, pagination)
	if len(pageIDs) == 0 {
		page.Replace([]Record{})
		return page, nil
	}
	records, err := p.finder.FindByIDs(ctx, recordType, pageIDs, opts.findOptions(pageIDs, false))
	if err != nil {
		return nil, err
	}
	page.Replace(records)
	return page, nil
}

func (p *Proxy) fetchWindow(ctx context.Context, recordType *RecordType, ids []int64, opts Options) ([]Record, error) {
	if opts.ordered() {
		return p.finder.FindByIDs(ctx, recordType, ids, opts.findOptions(ids, true))
	}

	windowIDs := window(ids, opts.Offset, opts.Limit)
	if len(windowIDs) == 0 {
		return []Record{}, nil
	}
	return p.finder.FindByIDs(ctx, recordType, windowIDs, opts.findOptions(windowIDs, false))
}

// ClearCaches deletes every entry written by any proxy.
func (p *Proxy) ClearCaches(ctx context.Context) error {
	return p.clear(ctx, "all", AllPrefix())
}

// ClearClassCaches deletes the class-scope entries of subject's type.
func (p *Proxy) ClearClassCaches(ctx context.Context, subject Subject) error {
	return p.clear(ctx, "class", ClassPrefix(subject.SubjectType()))
}

// ClearInstanceCaches deletes the instance-scope entries of every subject of
// subject's type.
func (p *Proxy) ClearInstanceCaches(ctx context.Context, subject Subject) error {
	return p.clear(ctx, "instance", InstancePrefix(subject.SubjectType()))
}

func (p *Proxy) clear(ctx context.Context, scope, prefix string) error {
	if err := p.store.DeleteMatching(ctx, prefix); err != nil {
		p.metrics.storeError("delete")
		p.logger.Error().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		return err
	}
	p.metrics.invalidation(scope)
	p.logger.Debug().Str("prefix", prefix).Str("scope", scope).Msg("cleared caches")
	return nil
}
