// Package collectioncache caches named collections computed from a subject.
//
// # Overview
//
// A caller asks a Proxy for a named collection of a subject (a class or an
// instance). The first request runs the collection's computation and
// persists a compact entry in a cache.Store; later requests are answered
// from that entry until it is invalidated or a refresh is forced.
//
// Record collections are never stored whole. The proxy keeps a
// ReferenceSet of the record ids in order, their count and the element type
// tag, and reloads the records through a Finder on every hit. Anything else
// a computation returns is stored verbatim as a Scalar.
//
// # Basic Usage
//
//	types := collectioncache.NewTypeRegistry()
//	types.MustRegister("Employee", (*Employee)(nil))
//
//	proxy, err := collectioncache.New(store, bunfinder.New(db),
//		collectioncache.WithTypes(types),
//		collectioncache.WithLogger(logger),
//	)
//
//	company := collectioncache.Instance("Company", 7)
//	proxy.Define(company, "employees", collectioncache.Options{}, loadEmployees)
//
//	// computed once, then served from ids
//	result, err := proxy.Fetch(ctx, company, "employees", collectioncache.Options{
//		Page:    collectioncache.Int(2),
//		PerPage: collectioncache.Int(10),
//	}, nil)
//	page := result.(*collectioncache.Page)
//
//	n, err := proxy.FetchCount(ctx, company, "employees", collectioncache.Options{}, nil)
//
// # Options
//
// Options come from the blueprint (defaults) and the call, merged field by
// field with the call winning. Only AutoExpire and KeyParams are part of the
// cache key, so different pages and windows over one collection share one
// entry. ExpiresIn applies to writes. Page, PerPage and TotalEntries select a
// page; Limit and Offset select a window; Where, Relations, Columns, Order and
// Criteria are applied when records are reloaded.
//
// Without an Order, reloaded records come back in the cached id order.
//
// # Modes
//
// Fetch returns []Record, a *Page, or the cached scalar. FetchCount returns
// an int. A LazySource counted on a miss is stored as a count-only set; a
// Fetch against it recomputes.
//
// # Keys and Invalidation
//
// Class keys are "collection-cache-class-<type>-<name>" and instance keys are
// "collection-cache-instance-<plural type>-<id>-<name>", followed by the serialized
// key options when present. ClearCaches, ClearClassCaches and
// ClearInstanceCaches delete by prefix.
//
// # Errors
//
// A collection with no computation fails with an INVALID_CONFIGURATION error
// naming the subject and the collection (see IsConfigurationError). An
// unregistered element type fails with NOT_FOUND (see IsTypeResolutionError).
// Computation and store errors are returned unchanged, and nothing is
// written when a computation fails.
package collectioncache
