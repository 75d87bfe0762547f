// Package render turns segmented docstring sections into Markdown fragments.
// Each section kind has its own formatting rule; the assembler decides which
// rule applies where.
package render

import (
	"fmt"
	"strings"

	"markdoc/internal/segment"
)

// Title renders the leading section of a block. The first line becomes an
// ATX heading of the given depth with its terminal period stripped; the
// contiguous non-blank lines after it form a one-paragraph description.
// With prose set (class titles), the first line stays a plain sentence below
// the separately generated class heading: leading heading markers are
// stripped and terminal punctuation is appended when absent.
func Title(lines []string, depth int, prose bool) string {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		if prose {
			return ""
		}
		return strings.Repeat("#", depth)
	}

	first := strings.TrimSpace(lines[0])
	var parts []string
	if prose {
		first = strings.TrimLeft(first, "# ")
		if !strings.HasSuffix(first, ".") && !strings.HasSuffix(first, "!") &&
			!strings.HasSuffix(first, "?") && !strings.HasSuffix(first, ":") {
			first += "."
		}
		parts = append(parts, first)
	} else {
		parts = append(parts, strings.Repeat("#", depth)+" "+strings.TrimSuffix(first, "."))
	}

	rest := lines[1:]
	i := 0
	for i < len(rest) && strings.TrimSpace(rest[i]) == "" {
		i++
	}
	var para []string
	for i < len(rest) && strings.TrimSpace(rest[i]) != "" {
		para = append(para, strings.TrimSpace(rest[i]))
		i++
	}
	if len(para) > 0 {
		parts = append(parts, strings.Join(para, " "))
	}

	// Anything past the first paragraph is preserved verbatim.
	for i < len(rest) && strings.TrimSpace(rest[i]) == "" {
		i++
	}
	if i < len(rest) {
		parts = append(parts, strings.Join(rest[i:], "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// FirstTitleLine returns the title's opening sentence in prose form, used for
// the method index column.
func FirstTitleLine(lines []string) string {
	t := Title(lines, 0, true)
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[:i]
	}
	return t
}

type tableRow struct {
	name string
	typ  string
	doc  []string
}

// Table renders a Parameters/Attributes/Returns section as a pipe table with
// columns {label, Type, Doc}. Every entry opens with an unindented
// `name : type` header holding exactly one colon; the indented lines below it
// are the entry's description. Zero or multiple colons on a header line is a
// format error, never a row, so no entry can be silently dropped or merged.
func Table(lines []string, label string) (string, error) {
	var rows []tableRow
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if len(rows) == 0 {
				return "", &segment.SectionFormatError{
					Section: label,
					Line:    line,
					Reason:  "description line before any `name : type` header",
				}
			}
			r := &rows[len(rows)-1]
			r.doc = append(r.doc, strings.TrimSpace(line))
			continue
		}
		if n := strings.Count(line, ":"); n != 1 {
			return "", &segment.SectionFormatError{
				Section: label,
				Line:    line,
				Reason:  fmt.Sprintf("header line must contain exactly one ':', found %d", n),
			}
		}
		name, typ, _ := strings.Cut(line, ":")
		rows = append(rows, tableRow{name: strings.TrimSpace(name), typ: strings.TrimSpace(typ)})
	}
	if len(rows) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "| %s | Type | Doc |\n", label)
	b.WriteString("|:---|:---|:---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.name, r.typ, strings.Join(r.doc, " "))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Param is one fallback row for a table derived from a declaration header.
type Param struct {
	Name string
	Type string
	Doc  string
}

// ParamTable renders a table straight from declaration-header parameters,
// the fallback when a block documents no Parameters section of its own.
func ParamTable(params []Param, label string) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "| %s | Type | Doc |\n", label)
	b.WriteString("|:---|:---|:---|\n")
	for _, p := range params {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Name, p.Type, p.Doc)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CodeText renders an Examples/Notes section as interleaved prose and fenced
// code. Lines opening with the interactive prompt markers `>>>` or `...`
// are code; consecutive lines of one classification merge into one block and
// block order is preserved exactly. With flat set classification is skipped
// and the whole section is prose.
func CodeText(lines []string, label string, depth int, flat bool) string {
	if len(lines) == 0 {
		return ""
	}

	var blocks []string
	var text, code []string
	flushText := func() {
		for len(text) > 0 && text[len(text)-1] == "" {
			text = text[:len(text)-1]
		}
		if len(text) > 0 {
			blocks = append(blocks, strings.Join(text, "\n"))
			text = nil
		}
	}
	flushCode := func() {
		if len(code) > 0 {
			blocks = append(blocks, "```python\n"+strings.Join(code, "\n")+"\n```")
			code = nil
		}
	}

	for _, line := range lines {
		t := strings.TrimSpace(line)
		if !flat && (strings.HasPrefix(t, ">>>") || strings.HasPrefix(t, "...")) {
			flushText()
			code = append(code, t)
			continue
		}
		flushCode()
		if t == "" {
			if len(text) > 0 {
				text = append(text, "")
			}
			continue
		}
		text = append(text, t)
	}
	flushText()
	flushCode()

	if len(blocks) == 0 {
		return ""
	}
	heading := strings.Repeat("#", depth) + " " + label
	return heading + "\n\n" + strings.Join(blocks, "\n\n")
}

// IndexEntry is one row of the per-class method index.
type IndexEntry struct {
	Name string
	Doc  string
}

// MethodIndex renders the synthetic method table: name and first title line.
func MethodIndex(entries []IndexEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| Method | Doc |\n")
	b.WriteString("|:---|:---|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %s |\n", e.Name, e.Doc)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CodeBlock wraps a declaration signature in a fenced code block.
func CodeBlock(code string) string {
	return "```python\n" + code + "\n```"
}
