package refdata

import (
	"fmt"

	"github.com/tailscale/hujson"
)

// Sanitize turns a hand-edited reference document into standard JSON. It
// drops raw line breaks inside string literals, then strips comments and
// trailing commas. The flag reports whether anything was changed.
func Sanitize(raw []byte) ([]byte, bool, error) {
	joined, changed := joinBrokenStrings(raw)

	v, err := hujson.Parse(joined)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !v.IsStandard() {
		v.Standardize()
		changed = true
	}
	return v.Pack(), changed, nil
}

// joinBrokenStrings removes CR and LF bytes that appear inside string
// literals. Comments are copied through untouched so a quote inside a
// comment does not open a string.
func joinBrokenStrings(raw []byte) ([]byte, bool) {
	out := make([]byte, 0, len(raw))
	changed := false
	inString, escaped := false, false

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '\n' || c == '\r':
				changed = true
				continue
			case c == '"':
				inString = false
			}
			out = append(out, c)
			continue
		}

		if c == '/' && i+1 < len(raw) {
			end := -1
			switch raw[i+1] {
			case '/':
				end = i + 2
				for end < len(raw) && raw[end] != '\n' && raw[end] != '\r' {
					end++
				}
			case '*':
				end = i + 2
				for end+1 < len(raw) && (raw[end] != '*' || raw[end+1] != '/') {
					end++
				}
				end = min(end+2, len(raw))
			}
			if end > 0 {
				out = append(out, raw[i:end]...)
				i = end - 1
				continue
			}
		}

		if c == '"' {
			inString = true
		}
		out = append(out, c)
	}
	return out, changed
}
