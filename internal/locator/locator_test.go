package locator

import (
	"errors"
	"strings"
	"testing"
)

const twoClassSource = `"""Example tools.

Utilities for examples.
"""


class Trainer(object):

    """Train a model."""

    def __init__(self, alpha, beta=2):
        """Set up the trainer."""
        self.alpha = alpha

    def fit(self, x, y=None):
        """Fit the model.

        Longer description.
        """
        return x


class Scorer(object):

    """Score a model."""

    def score(self, x):
        """Score input."""
        return x
`

func TestLocate_ModuleDocstring(t *testing.T) {
	f, err := Locate(twoClassSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Example tools.", "", "Utilities for examples."}
	if len(f.Module.Doc) != len(want) {
		t.Fatalf("expected %d module doc lines, got %d: %q", len(want), len(f.Module.Doc), f.Module.Doc)
	}
	for i, w := range want {
		if f.Module.Doc[i] != w {
			t.Errorf("module doc[%d]: expected %q, got %q", i, w, f.Module.Doc[i])
		}
	}
}

func TestLocate_ClassesAndMethods(t *testing.T) {
	f, err := Locate(twoClassSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(f.Classes))
	}

	trainer := f.Classes[0]
	if trainer.Name != "Trainer" || trainer.Base != "object" {
		t.Errorf("expected Trainer(object), got %s(%s)", trainer.Name, trainer.Base)
	}
	if len(trainer.Methods) != 2 {
		t.Fatalf("expected 2 Trainer methods, got %d", len(trainer.Methods))
	}
	if trainer.Methods[0].Name != "__init__" || trainer.Methods[1].Name != "fit" {
		t.Errorf("unexpected method order: %s, %s", trainer.Methods[0].Name, trainer.Methods[1].Name)
	}
	if ctor := trainer.Constructor(); ctor == nil || len(ctor.Params) != 3 {
		t.Errorf("expected constructor with 3 params, got %+v", trainer.Constructor())
	}

	scorer := f.Classes[1]
	if scorer.Name != "Scorer" {
		t.Errorf("expected Scorer, got %s", scorer.Name)
	}
	if len(scorer.Methods) != 1 || scorer.Methods[0].Name != "score" {
		t.Errorf("Scorer methods leaked across the class boundary: %+v", scorer.Methods)
	}
}

func TestLocate_SpansDoNotOverlap(t *testing.T) {
	f, err := Locate(twoClassSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trainer, scorer := f.Classes[0], f.Classes[1]
	if trainer.Span.End >= scorer.Span.Start {
		t.Errorf("class spans overlap: Trainer ends %d, Scorer starts %d", trainer.Span.End, scorer.Span.Start)
	}
	init, fit := trainer.Methods[0], trainer.Methods[1]
	if init.Span.End >= fit.Span.Start {
		t.Errorf("method spans overlap: __init__ ends %d, fit starts %d", init.Span.End, fit.Span.Start)
	}
}

func TestLocate_MethodDocstringDedent(t *testing.T) {
	f, err := Locate(twoClassSource)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fit := f.Classes[0].Methods[1]
	want := []string{"Fit the model.", "", "Longer description."}
	if len(fit.Doc) != len(want) {
		t.Fatalf("expected %d doc lines, got %d: %q", len(want), len(fit.Doc), fit.Doc)
	}
	for i, w := range want {
		if fit.Doc[i] != w {
			t.Errorf("doc[%d]: expected %q, got %q", i, w, fit.Doc[i])
		}
	}
}

func TestLocate_MultiLineHeader(t *testing.T) {
	src := `class C(object):

    """A class."""

    def configure(self,
                  alpha,
                  beta=2):
        """Configure."""
        pass
`
	f, err := Locate(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := f.Classes[0].Methods[0]
	names := paramNames(m.Params)
	if strings.Join(names, ",") != "self,alpha,beta" {
		t.Errorf("unexpected params: %v", names)
	}
}

func TestLocate_UnterminatedDocstring(t *testing.T) {
	src := "class C(object):\n    \"\"\"Never closed.\n"
	_, err := Locate(src)
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
	if structural.Decl != "C" {
		t.Errorf("expected error attributed to C, got %q", structural.Decl)
	}
}

func TestLocate_NoDocstring(t *testing.T) {
	src := "class C(object):\n    def run(self):\n        pass\n"
	f, err := Locate(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Classes[0].Doc != nil {
		t.Errorf("expected nil class doc, got %q", f.Classes[0].Doc)
	}
	if f.Classes[0].Methods[0].Doc != nil {
		t.Errorf("expected nil method doc, got %q", f.Classes[0].Methods[0].Doc)
	}
}

func TestLocate_ModuleLevelFunctionClosesClass(t *testing.T) {
	src := `class C(object):

    """A class."""

    def run(self):
        """Run."""
        pass


def helper(x):
    """Help."""
    return x
`
	f, err := Locate(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Classes) != 1 || len(f.Classes[0].Methods) != 1 {
		t.Fatalf("expected 1 class with 1 method, got %+v", f.Classes)
	}
	if len(f.Functions) != 1 || f.Functions[0].Name != "helper" {
		t.Fatalf("expected module-level helper function, got %+v", f.Functions)
	}
}

func TestParseParams_NestedCommas(t *testing.T) {
	params := ParseParams("self, x={'a': 1, 'b': 2}, items: dict[str, int] = None, y=(1, 2)")
	names := paramNames(params)
	if strings.Join(names, ",") != "self,x,items,y" {
		t.Fatalf("unexpected param names: %v", names)
	}
	if params[1].Default != "{'a': 1, 'b': 2}" {
		t.Errorf("expected dict default preserved, got %q", params[1].Default)
	}
	if params[2].Type != "dict[str, int]" {
		t.Errorf("expected bracketed annotation preserved, got %q", params[2].Type)
	}
	if params[2].Default != "None" {
		t.Errorf("expected default None, got %q", params[2].Default)
	}
}

func TestParseParams_Empty(t *testing.T) {
	if params := ParseParams(""); params != nil {
		t.Errorf("expected nil for empty list, got %+v", params)
	}
}

func paramNames(params []ParamSpec) []string {
	var names []string
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}
