package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Name  string `validate:"required,notblank"`
	Email string `validate:"omitempty,email"`
	Grade int    `validate:"min=1,max=12"`
}

func TestNotBlankAndMessages(t *testing.T) {
	v := New()

	if err := v.Struct(sample{Name: "Asha", Grade: 5}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}

	err := v.Struct(sample{Name: "   ", Email: "nope", Grade: 13})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := Message(err)
	for _, want := range []string{"Name is required", "Email must be a valid email", "Grade must be at most 12"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
