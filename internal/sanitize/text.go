// Package sanitize strips terminal control sequences from backend-supplied text
// before it is printed or drawn by the terminal UI.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// MaxInlineLen bounds single-line fields such as project names in tables.
const MaxInlineLen = 240

// Terminal drops control characters (ESC included, so no ANSI sequences survive)
// and invalid UTF-8. Newlines and tabs are kept; CRLF becomes LF.
func Terminal(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return clean(s, func(r rune) (rune, bool) {
		switch r {
		case '\n', '\t':
			return r, true
		case '\r':
			return '\n', true
		}
		return r, !isControl(r)
	})
}

// Inline is Terminal for single-line display: line breaks and tabs become spaces,
// the result is trimmed and truncated to MaxInlineLen runes.
func Inline(s string) string {
	out := strings.TrimSpace(clean(s, func(r rune) (rune, bool) {
		switch r {
		case '\n', '\r', '\t':
			return ' ', true
		}
		return r, !isControl(r)
	}))
	if utf8.RuneCountInString(out) > MaxInlineLen {
		out = string([]rune(out)[:MaxInlineLen]) + "..."
	}
	return out
}

func clean(s string, keep func(rune) (rune, bool)) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if out, ok := keep(r); ok {
			b.WriteRune(out)
		}
	}
	return b.String()
}

// C0, DEL and C1 controls. C1 includes the single-byte CSI (U+009B).
func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}
