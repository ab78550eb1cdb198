// Package metrics derives size features from text and messages.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features are size measures of a piece of text.
type Features struct {
	Bytes int
	Runes int
	Words int // split on Unicode whitespace
	Lines int // 0 for "", else 1 + newlines
}

// CountFeatures measures s.
func CountFeatures(s string) Features {
	if s == "" {
		return Features{}
	}
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: 1 + strings.Count(s, "\n"),
	}
}

// Add sums two measures. Lines are summed as if the texts were separate.
func (f Features) Add(o Features) Features {
	return Features{
		Bytes: f.Bytes + o.Bytes,
		Runes: f.Runes + o.Runes,
		Words: f.Words + o.Words,
		Lines: f.Lines + o.Lines,
	}
}

// Fields renders f as telemetry fields.
func (f Features) Fields() map[string]any {
	return map[string]any{"bytes": f.Bytes, "runes": f.Runes, "words": f.Words, "lines": f.Lines}
}
