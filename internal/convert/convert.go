// Package convert wires the locate, segment and render stages into one
// conversion run and owns the only I/O the pipeline performs: one read of the
// source file and one write of the finished Markdown.
package convert

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"markdoc/internal/locator"
	"markdoc/internal/render"
	"markdoc/internal/segment"
)

// Converter converts one source file. Construction is pure configuration;
// nothing is read or written until Run.
type Converter struct {
	in  string
	out string
	log *slog.Logger

	markdown string
	ran      bool
}

// New returns an unstarted converter. out may be empty, in which case Run
// only builds the in-memory document.
func New(in, out string, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{in: in, out: out, log: log}
}

// NewAutoRun constructs a converter and runs it immediately.
func NewAutoRun(in, out string, log *slog.Logger) (*Converter, error) {
	c := New(in, out, log)
	if err := c.Run(); err != nil {
		return nil, err
	}
	return c, nil
}

// Run reads the input, converts it and, when an output path is configured,
// writes the document. A failed run writes nothing: the document is only
// persisted after every declaration rendered.
func (c *Converter) Run() error {
	data, err := os.ReadFile(c.in)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.in, err)
	}
	doc, err := Source(filepath.Base(c.in), data, c.log)
	if err != nil {
		return err
	}
	c.markdown = doc
	c.ran = true
	if c.out != "" {
		if err := os.WriteFile(c.out, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", c.out, err)
		}
	}
	return nil
}

// Markdown returns the rendered document, empty before a successful Run.
func (c *Converter) Markdown() string { return c.markdown }

// Ran reports whether a Run completed.
func (c *Converter) Ran() bool { return c.ran }

// Source converts in-memory source text to a Markdown document. name is used
// for log context only.
func Source(name string, src []byte, log *slog.Logger) (string, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := locator.Locate(string(src))
	if err != nil {
		return "", err
	}
	a := &assembler{log: log.With("file", name)}
	return a.document(f)
}

// assembler accumulates rendered fragments in declaration order and joins
// them once at the end.
type assembler struct {
	log  *slog.Logger
	frag []string
}

func (a *assembler) add(s string) {
	if s != "" {
		a.frag = append(a.frag, s)
	}
}

// renderers maps a section tag to its formatting rule. Title is handled
// separately because its shape depends on the declaration kind. Adding a
// section kind is an edit here, not a new conditional branch.
var renderers = map[segment.Section]func(sec segment.Section, lines []string, depth int, flat bool) (string, error){
	segment.Parameters: renderTable,
	segment.Attributes: renderTable,
	segment.Returns:    renderTable,
	segment.Examples:   renderCodeText,
	segment.Notes:      renderCodeText,
}

func renderTable(sec segment.Section, lines []string, _ int, _ bool) (string, error) {
	return render.Table(lines, sec.String())
}

func renderCodeText(sec segment.Section, lines []string, depth int, flat bool) (string, error) {
	return render.CodeText(lines, sec.String(), depth, flat), nil
}

func (a *assembler) section(block segment.DocBlock, sec segment.Section, depth int, flat bool) error {
	fn, ok := renderers[sec]
	if !ok {
		return nil
	}
	out, err := fn(sec, block[sec], depth, flat)
	if err != nil {
		return err
	}
	a.add(out)
	return nil
}

func (a *assembler) document(f *locator.File) (string, error) {
	block, err := segment.Segment(f.Module.Doc)
	if err != nil {
		return "", fmt.Errorf("module docstring: %w", err)
	}
	a.warnMissingTitle(block, "<module>")
	a.add(render.Title(block[segment.Title], 1, false))
	for _, sec := range []segment.Section{segment.Examples, segment.Notes} {
		if err := a.section(block, sec, 2, false); err != nil {
			return "", fmt.Errorf("module docstring: %w", err)
		}
	}

	for _, c := range f.Classes {
		if err := a.class(c); err != nil {
			return "", err
		}
	}

	if len(f.Functions) > 0 {
		a.add("## Functions")
		for _, fn := range f.Functions {
			block, err := segment.Segment(fn.Doc)
			if err != nil {
				return "", fmt.Errorf("function %s: %w", fn.Name, err)
			}
			if err := a.method(fn, block, 3); err != nil {
				return "", fmt.Errorf("function %s: %w", fn.Name, err)
			}
		}
	}

	return strings.Join(a.frag, "\n\n") + "\n", nil
}

func (a *assembler) class(c *locator.Declaration) error {
	block, err := segment.Segment(c.Doc)
	if err != nil {
		return fmt.Errorf("class %s: %w", c.Name, err)
	}

	a.add("## " + c.Name)
	a.add(render.CodeBlock(c.Name + "(" + a.signature(c) + ")"))
	a.warnMissingTitle(block, c.Name)
	a.add(render.Title(block[segment.Title], 0, true))

	if err := a.paramSection(block, c.Constructor(), c.Name); err != nil {
		return err
	}
	// Class notes are guidance prose; prompt markers inside them stay text.
	for _, sc := range []struct {
		sec  segment.Section
		flat bool
	}{
		{segment.Attributes, false},
		{segment.Examples, false},
		{segment.Notes, true},
	} {
		if err := a.section(block, sc.sec, 3, sc.flat); err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
	}

	// Pre-segment the methods so the index can be emitted above the bodies.
	type segmented struct {
		decl  *locator.Declaration
		block segment.DocBlock
	}
	var methods []segmented
	var entries []render.IndexEntry
	for _, m := range c.Methods {
		if m.Name == "__init__" {
			continue
		}
		mb, err := segment.Segment(m.Doc)
		if err != nil {
			return fmt.Errorf("method %s.%s: %w", c.Name, m.Name, err)
		}
		methods = append(methods, segmented{decl: m, block: mb})
		entries = append(entries, render.IndexEntry{Name: m.Name, Doc: render.FirstTitleLine(mb[segment.Title])})
	}
	if len(entries) > 0 {
		a.add("### Methods")
		a.add(render.MethodIndex(entries))
	}
	for _, m := range methods {
		if err := a.method(m.decl, m.block, 3); err != nil {
			return fmt.Errorf("method %s.%s: %w", c.Name, m.decl.Name, err)
		}
	}
	return nil
}

// method renders one full method (or module-level function) block: the title
// heading, the call signature, then tables and code/text sections. Method
// notes keep code classification, unlike class notes.
func (a *assembler) method(m *locator.Declaration, block segment.DocBlock, depth int) error {
	a.warnMissingTitle(block, m.Name)
	a.add(render.Title(block[segment.Title], depth, false))
	a.add(render.CodeBlock(m.Name + "(" + joinParams(m.Params) + ")"))
	if err := a.paramSection(block, m, m.Name); err != nil {
		return err
	}
	for _, sec := range []segment.Section{segment.Returns, segment.Examples, segment.Notes} {
		if err := a.section(block, sec, depth+1, false); err != nil {
			return err
		}
	}
	return nil
}

// paramSection prefers the block's own Parameters section; a declaration
// that documents none falls back to a table derived from the header
// parameters, receivers excluded.
func (a *assembler) paramSection(block segment.DocBlock, decl *locator.Declaration, name string) error {
	if len(block[segment.Parameters]) > 0 {
		if err := a.section(block, segment.Parameters, 0, false); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
	if decl == nil {
		return nil
	}
	var rows []render.Param
	for _, p := range decl.Params {
		if isReceiver(p.Name) {
			continue
		}
		doc := ""
		if p.Default != "" {
			doc = "default: " + p.Default
		}
		rows = append(rows, render.Param{Name: p.Name, Type: p.Type, Doc: doc})
	}
	a.add(render.ParamTable(rows, "Parameters"))
	return nil
}

// signature resolves the class's callable form. The `object` placeholder (or
// no base at all) is replaced by the constructor's parameter list; any other
// base is passed through unchanged, a documented limitation rather than an
// error.
func (a *assembler) signature(c *locator.Declaration) string {
	base := strings.TrimSpace(c.Base)
	if base == "" || base == "object" {
		if ctor := c.Constructor(); ctor != nil {
			return joinParams(ctor.Params)
		}
		return ""
	}
	a.log.Warn("class base is not the object placeholder, parameters not substituted",
		"class", c.Name, "base", base)
	return base
}

func (a *assembler) warnMissingTitle(block segment.DocBlock, decl string) {
	if len(block[segment.Title]) == 0 {
		a.log.Warn("docstring has no title, rendering empty heading", "declaration", decl)
	}
}

func joinParams(params []locator.ParamSpec) string {
	var parts []string
	for _, p := range params {
		if isReceiver(p.Name) {
			continue
		}
		parts = append(parts, p.Raw)
	}
	return strings.Join(parts, ", ")
}

func isReceiver(name string) bool { return name == "self" || name == "cls" }
