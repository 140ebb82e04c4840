package collectioncache

import (
	"strings"
	"unicode"
)

// toSnake lower-cases a type tag into snake_case and folds every other rune
// into a single underscore, so "*models.UserProfile" becomes "models_user_profile".
// Type segments never contain the key separator, which keeps prefix
// invalidation exact.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	pendingUnderscore := false
	flush := func() {
		if pendingUnderscore && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingUnderscore = false
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					pendingUnderscore = true
				}
			}
			flush()
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r) || unicode.IsDigit(r):
			flush()
			b.WriteRune(r)
		default:
			pendingUnderscore = true
		}
	}

	return b.String()
}

// segmentEscaper keeps free-form segments (ids, collection names) from
// producing the separator, so distinct inputs never build the same key.
var segmentEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

func escapeSegment(s string) string {
	return segmentEscaper.Replace(s)
}
