package validator

import (
	"regexp"
	"strings"
	"testing"
)

func TestValidateCaption(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		valid   bool
	}{
		{"plain", "Beautiful sunset", true},
		{"exactly 100", strings.Repeat("a", 100), true},
		{"101 chars", strings.Repeat("a", 101), false},
		{"100 multibyte runes", strings.Repeat("é", 100), true},
		{"empty", "", false},
		{"blank", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			ValidateCaption(v, tt.caption)
			if v.IsValid() != tt.valid {
				t.Fatalf("caption %q: expected valid=%v, got errors %v", tt.caption, tt.valid, v.Errors)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	accept := DefaultImagePredicate()
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://example.com/photo.jpg", true},
		{"https://example.com/photo.JPEG", true},
		{"http://example.com/a/b/c.webp", true},
		{"https://picsum.photos/500/500?random=1", true},
		{"https://res.cloudinary.com/demo/image/upload/sample", true},
		{"https://images.unsplash.com/photo-123", true},
		{"https://example.com/page.html", false},
		{"https://example.com/photo", false},
		{"not a url", false},
		{"ftp://example.com/photo.jpg", false},
		{"/relative/photo.jpg", false},
		{"", false},
	}

	for _, tt := range tests {
		v := New()
		ValidateImageURL(v, tt.url, accept)
		if v.IsValid() != tt.valid {
			t.Errorf("url %q: expected valid=%v, got errors %v", tt.url, tt.valid, v.Errors)
		}
		if !tt.valid && v.Errors["image_url"] == "" {
			t.Errorf("url %q: expected an image_url error", tt.url)
		}
	}
}

func TestNewImagePredicate_Pluggable(t *testing.T) {
	accept := NewImagePredicate([]string{".avif"}, []*regexp.Regexp{regexp.MustCompile(`cdn\.internal`)})

	if !accept("https://files.example.com/x.avif") {
		t.Error("expected custom extension to be accepted")
	}
	if !accept("https://cdn.internal/abc") {
		t.Error("expected custom host to be accepted")
	}
	if accept("https://example.com/x.jpg") {
		t.Error("default extensions must not leak into a custom predicate")
	}
}

func TestValidator_FirstErrorWins(t *testing.T) {
	v := New()
	v.AddError("email", "first")
	v.AddError("email", "second")
	if v.Errors["email"] != "first" {
		t.Fatalf("expected first message to be kept, got %q", v.Errors["email"])
	}

	v = New()
	v.CheckEmail("alice@example.com", "must be a valid email address")
	if !v.IsValid() {
		t.Fatalf("expected valid email, got %v", v.Errors)
	}
	v.CheckEmail("alice@", "must be a valid email address")
	if v.IsValid() {
		t.Fatal("expected invalid email to be reported")
	}
}
