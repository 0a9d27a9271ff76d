package validation

import (
	"testing"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Hours int    `validate:"required,min=1,max=24"`
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateStruct(sampleRequest{Email: "ok@test.local", Hours: 8}); err != nil {
		t.Errorf("valid struct should pass, got %v", err)
	}

	err := v.ValidateStruct(sampleRequest{Email: "not-an-email", Hours: 0})
	if err == nil {
		t.Fatal("invalid struct should fail validation")
	}

	formatted := FormatValidationErrors(err)
	if _, ok := formatted["email"]; !ok {
		t.Error("expected a formatted error for email")
	}
	if _, ok := formatted["hours"]; !ok {
		t.Error("expected a formatted error for hours")
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"line\nbreak", "line\nbreak"},
		{"tab\tkept", "tab\tkept"},
		{"bell\x07gone", "bellgone"},
		{"\x00null", "null"},
	}

	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
