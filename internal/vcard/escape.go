package vcard

import "strings"

// EscapeText escapes a text value for the vCard text format. Version 2.1
// has no escape for newlines (its writer falls back to quoted-printable), so
// newlines are left in place there.
func EscapeText(s string, v Version) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case ',':
			if v == V21 {
				b.WriteByte(c)
			} else {
				b.WriteString(`\,`)
			}
		case ';':
			b.WriteString(`\;`)
		case '\r':
			if v == V21 {
				b.WriteByte(c)
				continue
			}
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteString(`\n`)
		case '\n':
			if v == V21 {
				b.WriteByte(c)
			} else {
				b.WriteString(`\n`)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeText reverses EscapeText. Unknown escapes keep their backslash.
func UnescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch next := s[i]; next {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\\', ',', ';', ':':
			b.WriteByte(next)
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return b.String()
}

// splitEscaped splits s on unescaped occurrences of sep, leaving escapes in
// the returned parts untouched.
func splitEscaped(s string, sep byte, limit int) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if limit > 0 && len(parts) == limit-1 {
			break
		}
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// SplitList splits a comma-separated (or sep-separated) value into unescaped
// items. An empty input yields no items.
func SplitList(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	raw := splitEscaped(s, sep, 0)
	items := make([]string, len(raw))
	for i, item := range raw {
		items[i] = UnescapeText(item)
	}
	return items
}

// JoinList escapes and joins items with sep.
func JoinList(items []string, sep byte, v Version) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = escapeComponent(item, v)
	}
	return strings.Join(escaped, string(sep))
}

// SplitStructured splits a ';'-structured value into components, each of
// which is itself a ','-list. Empty components are kept as empty lists.
func SplitStructured(s string) [][]string {
	raw := splitEscaped(s, ';', 0)
	components := make([][]string, len(raw))
	for i, component := range raw {
		if component == "" {
			components[i] = []string{}
			continue
		}
		components[i] = SplitList(component, ',')
	}
	return components
}

// JoinStructured renders components joined by ';' with ','-joined items.
// Empty components are preserved positionally.
func JoinStructured(components [][]string, v Version) string {
	parts := make([]string, len(components))
	for i, items := range components {
		escaped := make([]string, len(items))
		for j, item := range items {
			escaped[j] = escapeComponent(item, v)
		}
		parts[i] = strings.Join(escaped, ",")
	}
	return strings.Join(parts, ";")
}

// escapeComponent escapes commas even in 2.1, since a bare comma inside a
// structured component would be read as an item separator.
func escapeComponent(s string, v Version) string {
	e := EscapeText(s, v)
	if v == V21 {
		e = strings.ReplaceAll(e, ",", `\,`)
	}
	return e
}

// SplitSemiStructured splits on ';' only, unescaping each part. limit > 0
// caps the number of parts, the last holding the remainder.
func SplitSemiStructured(s string, limit int) []string {
	raw := splitEscaped(s, ';', limit)
	parts := make([]string, len(raw))
	for i, part := range raw {
		parts[i] = UnescapeText(part)
	}
	return parts
}

// JoinSemiStructured escapes parts and joins them with ';'.
func JoinSemiStructured(parts []string, v Version) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = EscapeText(part, v)
	}
	return strings.Join(escaped, ";")
}

// Component returns components[i] or an empty slice.
func Component(components [][]string, i int) []string {
	if i < len(components) {
		return components[i]
	}
	return nil
}

// FirstOf returns the first item of a component, or "".
func FirstOf(components [][]string, i int) string {
	if c := Component(components, i); len(c) > 0 {
		return c[0]
	}
	return ""
}

// Part returns parts[i], or "".
func Part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
