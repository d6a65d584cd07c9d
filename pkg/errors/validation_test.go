package errors

import (
	"strings"
	"testing"
)

func TestValidateStepID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "migrate", false},
		{"valid with dash", "create-users", false},
		{"valid with underscore", "seed_data", false},
		{"valid with dot", "v1.2.add-index", false},
		{"valid namespaced", "db:schema/users", false},
		{"valid numeric start", "001_init", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxStepIDLength+1), true},
		{"leading dash", "-flag", true},
		{"space", "create users", true},
		{"tab", "create\tusers", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"quote", `foo"bar`, true},
		{"arrow", "a->b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStepID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStepID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidStep) {
				t.Errorf("ValidateStepID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidStep)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "plans/release.toml", false},
		{"valid absolute", "/etc/stackorder/plan.json", false},
		{"valid parent", "../plan.toml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "plan\x00.toml", true},
		{"control char", "plan\x01.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("JSON", "json", "toml"); err != nil {
		t.Errorf("ValidateFormat(JSON) error = %v, want nil", err)
	}
	err := ValidateFormat("yaml", "json", "toml")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(yaml) error = %v, want %v", err, ErrCodeInvalidFormat)
	}
	if !strings.Contains(err.Error(), "json, toml") {
		t.Errorf("error should list allowed formats: %v", err)
	}
}
