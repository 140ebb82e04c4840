package collectioncache

import (
	"context"
	"strings"
)

// CountSuffix marks a name as the count of the collection named by its prefix.
const CountSuffix = "_count"

// Define registers fn as the computation for name on every subject of
// subject's type and scope, with opts as the blueprint defaults. A nil fn
// resolves name on the subject.
func (p *Proxy) Define(subject Subject, name string, opts Options, fn Computation) (*Blueprint, error) {
	if fn == nil {
		resolved, ok := resolveComputation(subject, name)
		if !ok {
			return nil, configurationError(subject, name)
		}
		fn = resolved
	}
	return p.blueprints.RegisterFor(subject, name, fn, opts), nil
}

// Lookup fetches name, registering a blueprint on first use. Names ending in
// "_count" return the count of the base collection:
//
//   - with fn, fn is registered under the full name and counted;
//   - a registered base collection is counted;
//   - a full name the subject resolves is registered and counted;
//   - a base name the subject resolves is registered and counted.
//
// Any other name is fetched, registering fn or the subject's resolution when
// no blueprint exists yet. An existing blueprint always wins over fn.
func (p *Proxy) Lookup(ctx context.Context, subject Subject, name string, opts Options, fn Computation) (any, error) {
	base, isCount := strings.CutSuffix(name, CountSuffix)
	if !isCount || base == "" {
		if err := p.defineOnce(subject, name, opts, fn); err != nil {
			return nil, err
		}
		return p.Fetch(ctx, subject, name, opts, nil)
	}

	switch {
	case p.blueprints.Has(subject, name):
		return p.FetchCount(ctx, subject, name, opts, nil)
	case fn != nil:
		p.blueprints.RegisterFor(subject, name, fn, blueprintDefaults(opts))
		return p.FetchCount(ctx, subject, name, opts, nil)
	case p.blueprints.Has(subject, base):
		return p.FetchCount(ctx, subject, base, opts, nil)
	}

	if resolved, ok := resolveComputation(subject, name); ok {
		p.blueprints.RegisterFor(subject, name, resolved, blueprintDefaults(opts))
		return p.FetchCount(ctx, subject, name, opts, nil)
	}
	if resolved, ok := resolveComputation(subject, base); ok {
		p.blueprints.RegisterFor(subject, base, resolved, blueprintDefaults(opts))
		return p.FetchCount(ctx, subject, base, opts, nil)
	}
	return nil, configurationError(subject, name)
}

// defineOnce registers name from its first Lookup. Only identity and expiry
// options of that call become defaults.
func (p *Proxy) defineOnce(subject Subject, name string, opts Options, fn Computation) error {
	if p.blueprints.Has(subject, name) {
		return nil
	}
	_, err := p.Define(subject, name, blueprintDefaults(opts), fn)
	return err
}

// blueprintDefaults keeps the options that identify and expire an entry.
// Windows and find options stay per call.
func blueprintDefaults(opts Options) Options {
	return Options{
		AutoExpire: opts.AutoExpire,
		KeyParams:  opts.KeyParams,
		ExpiresIn:  opts.ExpiresIn,
	}
}
