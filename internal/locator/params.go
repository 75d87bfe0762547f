package locator

import "strings"

// ParseParams splits a raw parameter list on top-level commas and breaks each
// entry into name, type annotation and default. Commas nested inside default
// expressions, type brackets or string literals do not split.
func ParseParams(raw string) []ParamSpec {
	var params []ParamSpec
	for _, piece := range splitTop(raw, ',') {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		p := ParamSpec{Raw: piece}
		rest := piece
		if eq := indexTop(rest, '='); eq >= 0 {
			p.Default = strings.TrimSpace(rest[eq+1:])
			rest = strings.TrimSpace(rest[:eq])
		}
		if c := indexTop(rest, ':'); c >= 0 {
			p.Type = strings.TrimSpace(rest[c+1:])
			rest = strings.TrimSpace(rest[:c])
		}
		p.Name = rest
		params = append(params, p)
	}
	return params
}

// splitTop splits s on sep occurrences outside brackets and string literals.
func splitTop(s string, sep rune) []string {
	var parts []string
	depth := 0
	var quote rune
	last := 0
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + len(string(r))
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// indexTop returns the first top-level occurrence of sep, or -1.
func indexTop(s string, sep rune) int {
	depth := 0
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			return i
		}
	}
	return -1
}
