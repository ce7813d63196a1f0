// Package plate normalizes vehicle plate spellings so that "ABC-123",
// "abc 123" and "ABC123" resolve to one identity.
package plate

import "strings"

const (
	minCanonicalLen = 2
	maxCanonicalLen = 10
)

// Canonicalize uppercases the plate and strips everything that is not
// an ASCII letter or digit. Idempotent; empty input yields "".
func Canonicalize(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatWithSeparator rebuilds a display form: if the canonical plate is
// at least 4 characters long and starts with digits, a single dash is
// inserted after the leading digit run. Never used for comparison.
func FormatWithSeparator(raw string) string {
	canonical := Canonicalize(raw)
	if len(canonical) < 4 {
		return canonical
	}
	digits := 0
	for digits < len(canonical) && canonical[digits] >= '0' && canonical[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return canonical
	}
	return canonical[:digits] + "-" + canonical[digits:]
}

// SearchVariants returns the deterministic set of spellings probed when
// the stored spelling of a plate is unknown: the trimmed-uppercased
// original, the canonical form, the dashed display form and, when the
// input already carries a separator, the separator-stripped original.
// Blank variants are dropped; the set holds at most 4 members.
func SearchVariants(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	seen := make(map[string]struct{}, 4)
	variants := make([]string, 0, 4)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(strings.ToUpper(trimmed))
	add(Canonicalize(trimmed))
	add(FormatWithSeparator(trimmed))
	if strings.ContainsAny(trimmed, "- ") {
		stripped := strings.NewReplacer("-", "", " ", "").Replace(trimmed)
		add(strings.ToUpper(stripped))
	}

	return variants
}

// IsPlausible reports whether the string could be a plate at all:
// non-blank, trimmed length >= 2 and canonical length within [2,10].
func IsPlausible(raw string) bool {
	if len(strings.TrimSpace(raw)) < minCanonicalLen {
		return false
	}
	n := len(Canonicalize(raw))
	return n >= minCanonicalLen && n <= maxCanonicalLen
}

// SameIdentity reports whether two spellings collapse to the same
// canonical plate.
func SameIdentity(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}
