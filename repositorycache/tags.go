package repositorycache

import (
	"context"
)

type invalidationTypesContextKey struct{}

// WithInvalidationTypes attaches extra type tags whose collections should
// be cleared by writes made with the returned context.
func WithInvalidationTypes(ctx context.Context, typeTags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(typeTags) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(invalidationTypesFromContext(ctx), typeTags...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, invalidationTypesContextKey{}, combined)
}

func invalidationTypesFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if typeTags, ok := ctx.Value(invalidationTypesContextKey{}).([]string); ok {
		return append([]string(nil), typeTags...)
	}
	return nil
}

// dedupeStrings keeps the first occurrence of each non-empty value.
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
