package slug

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	maxBaseLen = 250
	maxSlugLen = 280
)

// Make turns arbitrary text into a lowercase, hyphen-separated, URL-safe
// identifier. Runs of characters outside [a-z0-9] collapse into a single
// hyphen; leading and trailing hyphens are stripped. Apostrophes and
// underscores hyphenate like any other symbol ("Don't" -> "don-t"). Slugs
// are upsert identities, so this mapping must stay stable across releases.
func Make(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// ForTitle derives the base slug for a property title: slugified, capped at
// 250 characters, falling back to "property" when the title has no
// slug-safe characters at all.
func ForTitle(title string) string {
	s := truncate(Make(title), maxBaseLen)
	if s == "" {
		return "property"
	}
	return s
}

// ForSource slugifies an explicitly supplied slug source verbatim.
func ForSource(source string) string {
	return Make(source)
}

// Unique appends -1, -2, ... to base until taken reports the candidate as
// free. Each candidate is capped at 280 characters. The caller supplies the
// existence probe and is responsible for running it inside the transaction
// that will persist the result.
func Unique(base string, taken func(string) bool) string {
	candidate := base
	for counter := 1; taken(candidate); counter++ {
		candidate = truncate(base+"-"+strconv.Itoa(counter), maxSlugLen)
	}
	return candidate
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
