package validate

import (
	"testing"

	"github.com/devmarvs/pmboard/apperr"
)

type registration struct {
	Name  string `json:"name" validate:"required,min=3"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin manager developer"`
}

func TestStructValidation(t *testing.T) {
	err := Struct(registration{Name: "Al", Email: "invalid", Role: "owner"})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	verr, ok := As(err)
	if !ok {
		t.Fatalf("expected validation errors")
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d", len(verr.Fields))
	}
	if !verr.Has("role") {
		t.Fatalf("expected role failure")
	}
}

func TestFormUsesSummaryMessage(t *testing.T) {
	err := Form(registration{Name: "   ", Email: "a@b.co", Role: "developer"}, "All fields are required")
	appErr := apperr.As(err)
	if appErr == nil || appErr.Code != apperr.CodeValidation {
		t.Fatalf("expected validation app error, got %v", err)
	}
	if appErr.Message != "All fields are required" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
	verr, _ := As(err)
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "name" {
		t.Fatalf("expected only name to fail, got %+v", verr.Fields)
	}
}

func TestFormAcceptsCompleteInput(t *testing.T) {
	if err := Form(registration{Name: "Alice", Email: "alice@example.com", Role: "manager"}, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldHelpers(t *testing.T) {
	if err := Required("email", " "); err == nil {
		t.Fatalf("expected blank email to fail")
	}
	if err := Email("email", "nope"); err == nil {
		t.Fatalf("expected invalid email to fail")
	}
	if err := PositiveID("id", 0); err == nil {
		t.Fatalf("expected zero id to fail")
	}
	if err := PositiveID("id", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
