// Package segment splits one docstring block into its named sections.
//
// The convention marks a section with a keyword line (Parameters, Attributes,
// Returns, Examples, Notes) underlined by dashes. Everything above the first
// keyword belongs to the title; unrecognized trailing content stays in the
// section that was open, so nothing is dropped silently.
package segment

import (
	"fmt"
	"strings"
)

// Section names one subdivision of a documentation block.
type Section int

const (
	Title Section = iota
	Parameters
	Attributes
	Returns
	Examples
	Notes
	Methods // synthetic, assembler-generated method index
)

var sectionNames = map[Section]string{
	Title:      "Title",
	Parameters: "Parameters",
	Attributes: "Attributes",
	Returns:    "Returns",
	Examples:   "Examples",
	Notes:      "Notes",
	Methods:    "Methods",
}

func (s Section) String() string { return sectionNames[s] }

// keywords maps the exact (case-sensitive) header keywords to sections.
var keywords = map[string]Section{
	"Parameters": Parameters,
	"Attributes": Attributes,
	"Returns":    Returns,
	"Examples":   Examples,
	"Notes":      Notes,
}

// DocBlock maps sections to their raw lines. Keys present vary per block.
type DocBlock map[Section][]string

// SectionFormatError reports a line that violates the section conventions,
// such as a dash separator with no keyword above it or a malformed
// `name : type` header. It is fatal for the whole run.
type SectionFormatError struct {
	Section string
	Line    string
	Reason  string
}

func (e *SectionFormatError) Error() string {
	return fmt.Sprintf("section %s: malformed line %q: %s", e.Section, e.Line, e.Reason)
}

type lineKind int

const (
	kindBlank lineKind = iota
	kindSeparator
	kindKeyword
	kindContent
)

func classify(line string) lineKind {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return kindBlank
	case len(t) >= 3 && strings.Count(t, "-") == len(t):
		return kindSeparator
	default:
		if _, ok := keywords[t]; ok {
			return kindKeyword
		}
		return kindContent
	}
}

// Segment runs the per-block state machine over dedented docstring lines.
// A keyword line only opens its section when the next line is a separator;
// otherwise it is ordinary content. A separator anywhere else is malformed
// input, caught here rather than mis-rendered downstream.
func Segment(lines []string) (DocBlock, error) {
	block := DocBlock{}
	cur := Title
	for i := 0; i < len(lines); i++ {
		switch classify(lines[i]) {
		case kindKeyword:
			if i+1 < len(lines) && classify(lines[i+1]) == kindSeparator {
				cur = keywords[strings.TrimSpace(lines[i])]
				i++ // consume the separator
				continue
			}
			block[cur] = append(block[cur], lines[i])
		case kindSeparator:
			return nil, &SectionFormatError{
				Section: cur.String(),
				Line:    lines[i],
				Reason:  "separator line without a section keyword above it",
			}
		case kindBlank:
			if len(block[cur]) > 0 {
				block[cur] = append(block[cur], "")
			}
		case kindContent:
			block[cur] = append(block[cur], lines[i])
		}
	}
	for sec, ls := range block {
		block[sec] = trimTrailingBlanks(ls)
	}
	return block, nil
}

func trimTrailingBlanks(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
