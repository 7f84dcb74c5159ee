// FILE: lixenwraith/chainconf/expand.go
package chainconf

import "strings"

// Macro token delimiters: $(Name)
const (
	MacroPrefix = "$("
	MacroSuffix = ")"
)

// LookupFunc resolves a macro name. ok is false for unknown names.
type LookupFunc func(name string) (value string, ok bool)

// Expand replaces every prefix+name+suffix token in text with lookup(name).
// Tokens are scanned once, left to right; replacement text is not scanned
// again. Unknown names and unterminated tokens are kept as written.
func Expand(text, prefix, suffix string, lookup LookupFunc) string {
	if prefix == "" || suffix == "" || lookup == nil {
		return text
	}

	start := strings.Index(text, prefix)
	if start < 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for start >= 0 {
		start += pos
		nameStart := start + len(prefix)

		end := strings.Index(text[nameStart:], suffix)
		if end < 0 {
			// Unterminated: the rest is literal
			break
		}
		end += nameStart

		sb.WriteString(text[pos:start])
		if value, ok := lookup(text[nameStart:end]); ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(text[start : end+len(suffix)])
		}

		pos = end + len(suffix)
		start = strings.Index(text[pos:], prefix)
	}

	sb.WriteString(text[pos:])
	return sb.String()
}

// ExpandMacros expands $(Name) tokens in text.
func ExpandMacros(text string, lookup LookupFunc) string {
	return Expand(text, MacroPrefix, MacroSuffix, lookup)
}
