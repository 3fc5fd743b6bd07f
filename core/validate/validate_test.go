package validate

import (
	"strings"
	"testing"

	"github.com/complykit/complykit/core/codec"
	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/errors"
)

func parse(t *testing.T, src string) *doc.Document {
	t.Helper()
	d, err := codec.Parse([]byte(src), codec.FormatJSON, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func TestValidateClean(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "uuid": "11111111-1111-1111-1111-111111111111",
	    "metadata": {"title": "Clean"},
	    "groups": [
	      {"id": "AC", "controls": [
	        {"id": "AC-1", "links": [{"href": "#AC-2"}]},
	        {"id": "AC-2"}
	      ]}
	    ]
	  }
	}`)
	result := Validate(d)
	if !result.Valid() {
		t.Fatalf("errors on clean document: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings on clean document: %v", result.Warnings)
	}
}

func TestValidateDuplicateID(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "metadata": {"title": "Dup"},
	    "controls": [{"id": "AC-1"}, {"id": "AC-1"}]
	  }
	}`)
	result := Validate(d)
	if result.Valid() {
		t.Fatal("duplicate id not reported")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
	var dup *errors.DuplicateIDError
	if !errors.As(result.Errors[0], &dup) {
		t.Fatalf("error type = %T", result.Errors[0])
	}
	if dup.ID != "AC-1" {
		t.Errorf("ID = %q, want AC-1", dup.ID)
	}
	// the second occurrence is the finding, located by path
	if !strings.Contains(dup.Path, "controls[1]") {
		t.Errorf("Path = %q, want the repeat's path", dup.Path)
	}
}

func TestValidateDanglingReference(t *testing.T) {
	d := parse(t, `{
	  "system-security-plan": {
	    "metadata": {"title": "Plan"},
	    "control-implementation": {
	      "implemented-requirements": [
	        {"control-id": "AC-2", "links": [{"href": "#XY-99"}]}
	      ]
	    }
	  }
	}`)
	result := Validate(d)
	if result.Valid() {
		t.Fatal("dangling reference not reported")
	}
	var dangling *errors.DanglingReferenceError
	if !errors.As(result.Errors[0], &dangling) {
		t.Fatalf("error type = %T", result.Errors[0])
	}
	if dangling.Reference != "#XY-99" {
		t.Errorf("Reference = %q, want #XY-99", dangling.Reference)
	}
}

func TestValidateReferenceToMetadataUUID(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "uuid": "11111111-1111-1111-1111-111111111111",
	    "metadata": {"title": "Self"},
	    "controls": [
	      {"id": "AC-1", "links": [{"href": "#11111111-1111-1111-1111-111111111111"}]}
	    ]
	  }
	}`)
	if result := Validate(d); !result.Valid() {
		t.Errorf("reference to the document uuid flagged: %v", result.Errors)
	}
}

func TestValidateEmptyGroupWarning(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "metadata": {"title": "Gaps"},
	    "groups": [
	      {"id": "AC", "controls": [{"id": "AC-1"}]},
	      {"id": "SC"}
	    ]
	  }
	}`)
	result := Validate(d)
	if !result.Valid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(result.Warnings), result.Warnings)
	}
	var warn *errors.ValidationWarning
	if !errors.As(result.Warnings[0], &warn) {
		t.Fatalf("warning type = %T", result.Warnings[0])
	}
	if !strings.Contains(warn.Message, `"SC"`) {
		t.Errorf("Message = %q, want it to name group SC", warn.Message)
	}
}

// A group with controls only in nested groups is not empty.
func TestValidateNestedGroupNotEmpty(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "metadata": {"title": "Nested"},
	    "groups": [
	      {"id": "AC", "groups": [
	        {"id": "AC-SUB", "controls": [{"id": "AC-1"}]}
	      ]}
	    ]
	  }
	}`)
	result := Validate(d)
	if len(result.Warnings) != 0 {
		t.Errorf("warnings on populated nested group: %v", result.Warnings)
	}
}

func TestValidateSSPMissingControlID(t *testing.T) {
	d := parse(t, `{
	  "system-security-plan": {
	    "metadata": {"title": "Plan"},
	    "control-implementation": {
	      "implemented-requirements": [
	        {"description": "no control cited"}
	      ]
	    }
	  }
	}`)
	result := Validate(d)
	if result.Valid() {
		t.Fatal("missing control-id not reported")
	}
	var verr *errors.ValidationError
	if !errors.As(result.Errors[0], &verr) {
		t.Fatalf("error type = %T", result.Errors[0])
	}
	if !strings.Contains(verr.Path, "implemented-requirements[0]") {
		t.Errorf("Path = %q", verr.Path)
	}
}

func TestValidateSSPEmptyImplementation(t *testing.T) {
	d := parse(t, `{
	  "system-security-plan": {
	    "metadata": {"title": "Plan"},
	    "control-implementation": {"implemented-requirements": []}
	  }
	}`)
	result := Validate(d)
	if result.Valid() {
		t.Fatal("empty control implementation not reported")
	}
}

func TestValidateProfileExcludedTarget(t *testing.T) {
	d := parse(t, `{
	  "profile": {
	    "metadata": {"title": "Tailoring"},
	    "modifications": [
	      {"type": "include", "control-ids": ["AC-1"]},
	      {"type": "set-parameter", "control-id": "SC-7", "param-id": "p", "value": "v"}
	    ]
	  }
	}`)
	result := Validate(d)
	if !result.Valid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(result.Warnings), result.Warnings)
	}
	if msg := result.Warnings[0].Error(); !strings.Contains(msg, "SC-7") {
		t.Errorf("warning = %q, want it to name SC-7", msg)
	}
}

func TestValidateProfileIncludeAll(t *testing.T) {
	d := parse(t, `{
	  "profile": {
	    "metadata": {"title": "Tailoring"},
	    "modifications": [
	      {"type": "include", "all": true},
	      {"type": "alter", "control-id": "SC-7", "op": "add", "prop": {"name": "x"}}
	    ]
	  }
	}`)
	if result := Validate(d); len(result.Warnings) != 0 {
		t.Errorf("warnings under include-all: %v", result.Warnings)
	}
}

func TestValidateInvalidKind(t *testing.T) {
	d := &doc.Document{Kind: doc.Kind("mystery"), Root: doc.NewMap()}
	result := Validate(d)
	if result.Valid() {
		t.Fatal("invalid kind not reported")
	}
	if !errors.Is(result.Errors[0], errors.ErrUnknownModelType) {
		t.Errorf("error = %v, want ErrUnknownModelType", result.Errors[0])
	}
}

func TestValidateNil(t *testing.T) {
	result := Validate(nil)
	if result.Valid() {
		t.Fatal("nil document not reported")
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	d := parse(t, `{
	  "catalog": {
	    "metadata": {"title": "Dup"},
	    "controls": [{"id": "AC-1"}, {"id": "AC-1"}, {"href": "#gone"}]
	  }
	}`)
	before := doc.Fingerprint(d)
	Validate(d)
	if doc.Fingerprint(d) != before {
		t.Error("Validate mutated its input")
	}
}
