package fusion

import "strings"

// cleanText normalizes an accessible name for serialization: private-use
// glyphs (icon fonts) are dropped, non-breaking spaces become plain spaces,
// and runs of whitespace collapse to one space.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r >= 0xE000 && r <= 0xF8FF:
			// BMP private use area
			continue
		case r == '\u00a0' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// truncate bounds a string to max runes, appending an ellipsis marker when it
// was cut. max <= 0 means unbounded.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
