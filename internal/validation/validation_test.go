package validation

import "testing"

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"jane@example.com", true},
		{"a@b.c", true},
		{"first.last+tag@sub.domain.io", true},
		{"", false},
		{"plain", false},
		{"no-at.example.com", false},
		{"no@tld", false},
		{"two@@example.com", false},
		{"space in@example.com", false},
		{"jane@exa mple.com", false},
		{"@example.com", false},
	}
	for _, tt := range tests {
		if got := IsEmail(tt.in); got != tt.want {
			t.Errorf("IsEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,contactemail"`
	Note  string `json:"note,omitempty"`
}

func TestValidateStruct(t *testing.T) {
	v := New()
	tests := []struct {
		name string
		in   sample
		want FieldErrors
	}{
		{name: "ok", in: sample{Name: "Jane", Email: "jane@example.com"}, want: FieldErrors{}},
		{name: "missing both", in: sample{}, want: FieldErrors{"name": "required", "email": "required"}},
		{name: "bad email", in: sample{Name: "Jane", Email: "jane"}, want: FieldErrors{"email": "contactemail"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(v.Struct(tt.in))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, tag := range tt.want {
				if got[k] != tag {
					t.Errorf("%s: got %q, want %q", k, got[k], tag)
				}
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	f := FieldErrors{"email": "contactemail", "name": "required"}
	if !f.HasTag("required") || f.HasTag("max") {
		t.Fatalf("HasTag wrong for %v", f)
	}
}
