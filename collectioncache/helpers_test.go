package collectioncache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-collection-cache/cache"
)

// TestEmployee is the record type used across proxy tests
type TestEmployee struct {
	ID   int64
	Name string
}

func (e *TestEmployee) RecordID() int64 { return e.ID }

// TestCompany is a subject that also resolves collections by name
type TestCompany struct {
	ID      int64
	methods map[string]Computation
}

func (c *TestCompany) SubjectType() string { return "Company" }

func (c *TestCompany) SubjectID() string {
	if c.ID == 0 {
		return ""
	}
	return strconv.FormatInt(c.ID, 10)
}

func (c *TestCompany) ResolveCollection(name string) (Computation, bool) {
	fn, ok := c.methods[name]
	return fn, ok
}

// recordingStore is an in-memory store that records every call
type recordingStore struct {
	mu       sync.Mutex
	entries  map[string]any
	calls    []string
	writes   map[string]cache.WriteOptions
	readErr  error
	writeErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{entries: map[string]any{}, writes: map[string]cache.WriteOptions{}}
}

func (s *recordingStore) Read(ctx context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Read")
	if s.readErr != nil {
		return nil, false, s.readErr
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *recordingStore) Write(ctx context.Context, key string, value any, opts cache.WriteOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Write")
	if s.writeErr != nil {
		return s.writeErr
	}
	s.entries[key] = value
	s.writes[key] = opts
	return nil
}

func (s *recordingStore) DeleteMatching(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "DeleteMatching")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func (s *recordingStore) entry(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok
}

func (s *recordingStore) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeFinder serves records from memory in storage (id) order unless told
// to preserve an id sequence or to order by "id DESC"
type fakeFinder struct {
	mu        sync.Mutex
	records   map[int64]*TestEmployee
	calls     []string
	lastFind  FindOptions
	lastIDs   []int64
	lastPage  Pagination
	findErr   error
	typesSeen []string
}

func newFakeFinder(records ...*TestEmployee) *fakeFinder {
	f := &fakeFinder{records: map[int64]*TestEmployee{}}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeFinder) FindByIDs(ctx context.Context, recordType *RecordType, ids []int64, opts FindOptions) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "FindByIDs")
	f.lastFind = opts
	f.lastIDs = append([]int64(nil), ids...)
	f.typesSeen = append(f.typesSeen, recordType.Tag)
	if f.findErr != nil {
		return nil, f.findErr
	}

	found := f.load(ids, opts)
	return window(found, opts.Offset, opts.Limit), nil
}

func (f *fakeFinder) Paginate(ctx context.Context, recordType *RecordType, ids []int64, opts FindOptions, page Pagination) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "Paginate")
	f.lastFind = opts
	f.lastIDs = append([]int64(nil), ids...)
	f.lastPage = page
	if f.findErr != nil {
		return nil, f.findErr
	}

	items, result := paginate(f.load(ids, opts), page)
	result.Records = items
	return result, nil
}

func (f *fakeFinder) load(ids []int64, opts FindOptions) []Record {
	var found []*TestEmployee
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			found = append(found, r)
		}
	}

	switch {
	case len(opts.Order) > 0 && opts.Order[0] == "id DESC":
		sort.Slice(found, func(i, j int) bool { return found[i].ID > found[j].ID })
	case len(opts.PreserveOrder) > 0:
		position := map[int64]int{}
		for i, id := range opts.PreserveOrder {
			position[id] = i
		}
		sort.SliceStable(found, func(i, j int) bool { return position[found[i].ID] < position[found[j].ID] })
	default:
		sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	}

	out := make([]Record, len(found))
	for i, r := range found {
		out[i] = r
	}
	return out
}

func (f *fakeFinder) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// countingComputation returns result and counts invocations
type countingComputation struct {
	mu     sync.Mutex
	calls  int
	result any
	err    error
}

func (c *countingComputation) fn(ctx context.Context, subject Subject) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.result, c.err
}

func (c *countingComputation) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fakeLazySource counts without loading and records materialization.
type fakeLazySource struct {
	records     []Record
	elementType string
	counted     int
	loaded      int
}

func (s *fakeLazySource) Count(ctx context.Context) (int, error) {
	s.counted++
	return len(s.records), nil
}

func (s *fakeLazySource) Materialize(ctx context.Context) ([]Record, error) {
	s.loaded++
	return s.records, nil
}

func (s *fakeLazySource) ElementType() string { return s.elementType }

func employees(ids ...int64) []*TestEmployee {
	out := make([]*TestEmployee, len(ids))
	for i, id := range ids {
		out[i] = &TestEmployee{ID: id, Name: "employee"}
	}
	return out
}

func sequence(from, to int64) []int64 {
	var ids []int64
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

func newTestProxy(t *testing.T, store cache.Store, finder Finder, opts ...Option) *Proxy {
	t.Helper()
	types := NewTypeRegistry()
	types.MustRegister("Employee", (*TestEmployee)(nil))

	proxy, err := New(store, finder, append([]Option{WithTypes(types)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return proxy
}

func recordIDs(t *testing.T, result any) []int64 {
	t.Helper()
	var records []Record
	switch v := result.(type) {
	case []Record:
		records = v
	case *Page:
		records = v.Records
	default:
		t.Fatalf("expected records, got %T", result)
	}
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.RecordID()
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var errBoom = errors.New("boom")
