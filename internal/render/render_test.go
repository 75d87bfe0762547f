package render

import (
	"errors"
	"strings"
	"testing"

	"markdoc/internal/segment"
)

func TestTitle_MethodHeadingAndParagraph(t *testing.T) {
	got := Title([]string{"Compute mean.", "", "Longer description."}, 3, false)
	want := "### Compute mean\n\nLonger description."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTitle_ProseStripsMarkerAndPunctuates(t *testing.T) {
	got := Title([]string{"# Train a model"}, 0, true)
	if got != "Train a model." {
		t.Errorf("expected %q, got %q", "Train a model.", got)
	}
}

func TestTitle_ProseKeepsExistingPunctuation(t *testing.T) {
	got := Title([]string{"Train a model!"}, 0, true)
	if got != "Train a model!" {
		t.Errorf("expected %q, got %q", "Train a model!", got)
	}
}

func TestTitle_EmptyDegradesToEmptyHeading(t *testing.T) {
	if got := Title(nil, 2, false); got != "##" {
		t.Errorf("expected bare heading, got %q", got)
	}
	if got := Title(nil, 0, true); got != "" {
		t.Errorf("expected empty prose, got %q", got)
	}
}

func TestTitle_MultiLineParagraph(t *testing.T) {
	got := Title([]string{"Do things.", "", "First line", "second line."}, 2, false)
	want := "## Do things\n\nFirst line second line."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTable_TwoRows(t *testing.T) {
	lines := []string{
		"x : int",
		"    First.",
		"y : str, optional",
		"    Second.",
	}
	got, err := Table(lines, "Parameters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| Parameters | Type | Doc |\n" +
		"|:---|:---|:---|\n" +
		"| x | int | First. |\n" +
		"| y | str, optional | Second. |"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestTable_RowCountMatchesHeaders(t *testing.T) {
	lines := []string{"a : int", "b : str", "c : float"}
	got, err := Table(lines, "Parameters")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 headers in, 3 data rows out: nothing silently dropped.
	if rows := strings.Count(got, "\n") - 1; rows != 3 {
		t.Errorf("expected 3 data rows, got %d:\n%s", rows, got)
	}
}

func TestTable_TwoColonsIsFormatError(t *testing.T) {
	_, err := Table([]string{"x : int : extra"}, "Parameters")
	var format *segment.SectionFormatError
	if !errors.As(err, &format) {
		t.Fatalf("expected SectionFormatError, got %v", err)
	}
	if format.Line != "x : int : extra" {
		t.Errorf("expected offending line in error, got %q", format.Line)
	}
}

func TestTable_NoColonIsFormatError(t *testing.T) {
	_, err := Table([]string{"just words"}, "Attributes")
	var format *segment.SectionFormatError
	if !errors.As(err, &format) {
		t.Fatalf("expected SectionFormatError, got %v", err)
	}
}

func TestTable_Empty(t *testing.T) {
	got, err := Table(nil, "Parameters")
	if err != nil || got != "" {
		t.Errorf("expected empty table and nil error, got %q, %v", got, err)
	}
}

func TestCodeText_Interleaving(t *testing.T) {
	lines := []string{"intro text", ">>> f(1)", "... 2", "more text"}
	got := CodeText(lines, "Examples", 2, false)
	want := "## Examples\n\n" +
		"intro text\n\n" +
		"```python\n>>> f(1)\n... 2\n```\n\n" +
		"more text"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestCodeText_FlatSkipsClassification(t *testing.T) {
	lines := []string{"intro", ">>> not code here"}
	got := CodeText(lines, "Notes", 3, true)
	if strings.Contains(got, "```") {
		t.Errorf("flat mode must not emit code fences: %q", got)
	}
	if !strings.HasPrefix(got, "### Notes\n\n") {
		t.Errorf("missing section heading: %q", got)
	}
}

func TestCodeText_Empty(t *testing.T) {
	if got := CodeText(nil, "Examples", 2, false); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestMethodIndex(t *testing.T) {
	got := MethodIndex([]IndexEntry{
		{Name: "fit", Doc: "Fit the model."},
		{Name: "score", Doc: "Score input."},
	})
	want := "| Method | Doc |\n" +
		"|:---|:---|\n" +
		"| fit | Fit the model. |\n" +
		"| score | Score input. |"
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestParamTable_Fallback(t *testing.T) {
	got := ParamTable([]Param{
		{Name: "alpha", Type: "float"},
		{Name: "beta", Doc: "default: 2"},
	}, "Parameters")
	if !strings.Contains(got, "| alpha | float |  |") {
		t.Errorf("missing alpha row: %q", got)
	}
	if !strings.Contains(got, "| beta |  | default: 2 |") {
		t.Errorf("missing beta row: %q", got)
	}
}
