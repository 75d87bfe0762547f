package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes the three declaration levels a source file can hold.
type Kind int

const (
	KindModule Kind = iota
	KindClass
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// Span is a 1-based inclusive line range.
type Span struct {
	Start int
	End   int
}

// ParamSpec is one entry of a declaration's parameter list.
type ParamSpec struct {
	Name    string
	Type    string // annotation after ':', empty if none
	Default string // expression after '=', empty if none
	Raw     string // the parameter text as written, used for signature rendering
}

// Declaration is a recognized module, class or method header together with
// its docstring lines and the span of source lines it owns. Method
// declarations are owned by their class; they never appear at the top level.
type Declaration struct {
	Kind    Kind
	Name    string
	Base    string // class base list, raw text between parentheses
	Params  []ParamSpec
	Doc     []string // dedented docstring content, nil when absent
	Methods []*Declaration
	Line    int // header line, 1-based (0 for the module declaration)
	Span    Span
}

// Constructor returns the class's __init__ method, or nil.
func (d *Declaration) Constructor() *Declaration {
	for _, m := range d.Methods {
		if m.Name == "__init__" {
			return m
		}
	}
	return nil
}

// File is the located declaration tree of one source file.
type File struct {
	Module    *Declaration
	Classes   []*Declaration
	Functions []*Declaration // module-level defs, kept in source order
}

// StructuralError reports a declaration or docstring boundary that could not
// be located. It aborts the whole conversion.
type StructuralError struct {
	Decl string
	Line int
	Msg  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural parse error in %s at line %d: %s", e.Decl, e.Line, e.Msg)
}

var (
	classRe = regexp.MustCompile(`^class\s+([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*:`)
	defRe   = regexp.MustCompile(`^([ \t]*)def\s+([A-Za-z_]\w*)\s*\(`)
)

// Locate scans source text line by line for class and method headers and
// returns the declaration tree. Indentation assigns a def to the class above
// it; a def at column zero closes the current class. Only headers are
// recognized, never the full language grammar.
func Locate(src string) (*File, error) {
	lines := splitLines(src)
	f := &File{Module: &Declaration{Kind: KindModule, Span: Span{Start: 1, End: len(lines)}}}

	i := skipInsignificant(lines, 0)
	if i < len(lines) && isDocstringOpen(lines[i]) {
		doc, next, err := readDocstring(lines, i, "<module>")
		if err != nil {
			return nil, err
		}
		f.Module.Doc = doc
		i = next
	}

	var curClass, curMethod *Declaration
	closeMethod := func(end int) {
		if curMethod != nil {
			curMethod.Span.End = end
			curMethod = nil
		}
	}
	closeClass := func(end int) {
		closeMethod(end)
		if curClass != nil {
			curClass.Span.End = end
			curClass = nil
		}
	}

	for i < len(lines) {
		line := lines[i]

		if m := classRe.FindStringSubmatch(line); m != nil {
			closeClass(i)
			decl := &Declaration{
				Kind: KindClass,
				Name: m[1],
				Base: strings.TrimSpace(m[2]),
				Line: i + 1,
				Span: Span{Start: i + 1, End: len(lines)},
			}
			doc, next, err := readDocstring(lines, i+1, decl.Name)
			if err != nil {
				return nil, err
			}
			decl.Doc = doc
			f.Classes = append(f.Classes, decl)
			curClass = decl
			i = next
			continue
		}

		if m := defRe.FindStringSubmatch(line); m != nil {
			indent, name := m[1], m[2]
			raw, end, err := readHeaderParams(lines, i, name)
			if err != nil {
				return nil, err
			}
			decl := &Declaration{
				Kind:   KindMethod,
				Name:   name,
				Params: ParseParams(raw),
				Line:   i + 1,
				Span:   Span{Start: i + 1, End: len(lines)},
			}
			doc, next, err := readDocstring(lines, end+1, name)
			if err != nil {
				return nil, err
			}
			decl.Doc = doc

			if indent == "" {
				closeClass(i)
				f.Functions = append(f.Functions, decl)
				curMethod = decl
			} else if curClass != nil {
				closeMethod(i)
				curClass.Methods = append(curClass.Methods, decl)
				curMethod = decl
			}
			// An indented def outside any class is a nested function; its
			// docstring is not part of the documented surface.
			i = next
			continue
		}

		i++
	}
	closeClass(len(lines))

	return f, nil
}

// readHeaderParams joins a def header that may span several lines and returns
// the raw text between the opening parenthesis and its match.
func readHeaderParams(lines []string, start int, decl string) (string, int, error) {
	depth := 0
	var b strings.Builder
	opened := false
	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '(', '[', '{':
				if r == '(' && !opened {
					opened = true
					depth++
					continue
				}
				if opened {
					depth++
				}
			case ')', ']', '}':
				if opened {
					depth--
					if depth == 0 {
						return b.String(), i, nil
					}
				}
			}
			if opened && depth > 0 {
				b.WriteRune(r)
			}
		}
		if opened && depth > 0 {
			b.WriteRune(' ')
		}
	}
	return "", len(lines), &StructuralError{Decl: decl, Line: start + 1, Msg: "unterminated declaration header"}
}

// readDocstring looks for a docstring immediately below a declaration header.
// Returns nil lines (and the unchanged position) when the next significant
// line is not a docstring opener. An opener without a closing delimiter is a
// structural error: downstream stages assume well-formed blocks.
func readDocstring(lines []string, start int, decl string) ([]string, int, error) {
	j := skipInsignificant(lines, start)
	if j >= len(lines) || !isDocstringOpen(lines[j]) {
		return nil, start, nil
	}

	first := strings.TrimSpace(lines[j])
	first = strings.TrimPrefix(first, "r") // raw docstrings are plain delimiters here
	first = strings.TrimPrefix(first, `"""`)

	if idx := strings.Index(first, `"""`); idx >= 0 {
		return []string{first[:idx]}, j + 1, nil
	}

	head := strings.TrimSpace(first)
	var body []string
	for k := j + 1; k < len(lines); k++ {
		if idx := strings.Index(lines[k], `"""`); idx >= 0 {
			if tail := strings.TrimRight(lines[k][:idx], " \t"); strings.TrimSpace(tail) != "" {
				body = append(body, tail)
			}
			doc := dedent(body)
			if head != "" {
				doc = append([]string{head}, doc...)
			}
			return doc, k + 1, nil
		}
		body = append(body, strings.TrimRight(lines[k], " \t"))
	}
	return nil, len(lines), &StructuralError{Decl: decl, Line: j + 1, Msg: "unterminated docstring delimiter"}
}

func isDocstringOpen(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, `"""`) || strings.HasPrefix(t, `r"""`)
}

// skipInsignificant advances past blank and comment lines.
func skipInsignificant(lines []string, i int) int {
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t != "" && !strings.HasPrefix(t, "#") {
			return i
		}
		i++
	}
	return i
}

// dedent strips the common leading indentation of the non-blank lines.
func dedent(body []string) []string {
	indent := -1
	for _, l := range body {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return body
	}
	out := make([]string, len(body))
	for i, l := range body {
		if len(l) >= indent {
			out[i] = l[indent:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

func splitLines(src string) []string {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
