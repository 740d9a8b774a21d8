package inputval_test

import (
	"strings"
	"testing"

	"github.com/CherdHall/PlotForge/internal/app/system/inputval"
)

type sampleForm struct {
	Title       string `validate:"required,max=120" label:"Title"`
	Description string `validate:"max=10" label:"Description"`
	Untagged    string
}

func TestValidate_AllValid(t *testing.T) {
	res := inputval.Validate(sampleForm{Title: "A Fine Title", Description: "short"})
	if res.HasErrors() {
		t.Errorf("expected no errors, got %v", res.Errors)
	}
	if res.First() != "" {
		t.Errorf("First on a valid result: got %q", res.First())
	}
}

func TestValidate_Required(t *testing.T) {
	res := inputval.Validate(sampleForm{Title: ""})
	if !res.HasErrors() {
		t.Fatal("expected a required error")
	}
	if res.First() != "Title is required." {
		t.Errorf("got %q", res.First())
	}
}

func TestValidate_RequiredWhitespaceOnly(t *testing.T) {
	res := inputval.Validate(sampleForm{Title: "   \t\n"})
	if !res.HasErrors() {
		t.Fatal("expected whitespace-only to fail required")
	}
}

func TestValidate_MaxLength(t *testing.T) {
	res := inputval.Validate(sampleForm{
		Title:       "ok",
		Description: strings.Repeat("x", 11),
	})
	if !res.HasErrors() {
		t.Fatal("expected a max-length error")
	}
	if res.First() != "Description must be at most 10 characters." {
		t.Errorf("got %q", res.First())
	}
}

func TestValidate_MaxCountsRunes(t *testing.T) {
	// 10 multibyte runes are within max=10 even though the byte count
	// is larger.
	res := inputval.Validate(sampleForm{Title: "ok", Description: strings.Repeat("é", 10)})
	if res.HasErrors() {
		t.Errorf("expected rune counting, got %v", res.Errors)
	}
}

func TestValidate_MultipleErrorsInOrder(t *testing.T) {
	res := inputval.Validate(sampleForm{Title: "", Description: strings.Repeat("x", 11)})
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", res.Errors)
	}
	if res.Errors[0] != "Title is required." {
		t.Errorf("expected field-declaration order, got %v", res.Errors)
	}
}

func TestValidate_Pointer(t *testing.T) {
	res := inputval.Validate(&sampleForm{Title: ""})
	if !res.HasErrors() {
		t.Error("expected pointer structs to be validated")
	}
}

func TestValidate_NonStruct(t *testing.T) {
	res := inputval.Validate("not a struct")
	if res.HasErrors() {
		t.Errorf("expected non-structs to be ignored, got %v", res.Errors)
	}
}

func TestValidate_LabelFallsBackToFieldName(t *testing.T) {
	type unlabeled struct {
		Username string `validate:"required"`
	}
	res := inputval.Validate(unlabeled{})
	if res.First() != "Username is required." {
		t.Errorf("got %q", res.First())
	}
}
