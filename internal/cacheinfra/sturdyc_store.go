package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// storedValue keeps the per-write deadline next to the value.
type storedValue struct {
	value     any
	expiresAt time.Time
}

func (v storedValue) expired(now time.Time) bool {
	return !v.expiresAt.IsZero() && !now.Before(v.expiresAt)
}

// SturdycStore is an in-process store. Values are kept verbatim.
type SturdycStore struct {
	client *sturdyc.Client[storedValue]
	now    func() time.Time
}

// NewSturdycStore validates cfg and initializes a sturdyc client with it.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[storedValue](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{client: client, now: time.Now}, nil
}

// Read returns the value stored under key. Entries past their write deadline are
// deleted and reported as misses.
func (s *SturdycStore) Read(ctx context.Context, key string) (any, bool, error) {
	entry, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(s.now()) {
		s.client.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Write stores value under key.
func (s *SturdycStore) Write(ctx context.Context, key string, value any, opts WriteOptions) error {
	entry := storedValue{value: value}
	if opts.ExpiresIn > 0 {
		entry.expiresAt = s.now().Add(opts.ExpiresIn)
	}
	s.client.Set(key, entry)
	return nil
}

// DeleteMatching removes all entries whose key starts with prefix.
func (s *SturdycStore) DeleteMatching(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size returns the number of entries held, expired or not.
func (s *SturdycStore) Size() int {
	return s.client.Size()
}
