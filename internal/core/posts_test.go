package core

import (
	"errors"
	"strings"
	"testing"
)

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")

	tests := []struct {
		name     string
		in       PostInput
		badField string
	}{
		{"blank caption", PostInput{Caption: "   ", ImageURL: "https://example.com/a.jpg"}, "caption"},
		{"long caption", PostInput{Caption: strings.Repeat("x", 101), ImageURL: "https://example.com/a.jpg"}, "caption"},
		{"missing image", PostInput{Caption: "hello"}, "image_url"},
		{"relative image", PostInput{Caption: "hello", ImageURL: "/a.jpg"}, "image_url"},
		{"not an image", PostInput{Caption: "hello", ImageURL: "https://example.com/page.html"}, "image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.core.CreatePost(f.ctx, a.ID, tt.in)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if _, ok := validationErr.Errors[tt.badField]; !ok {
				t.Fatalf("expected an error on %s, got %v", tt.badField, validationErr.Errors)
			}
		})
	}
}

func TestCreatePost_TrimsAndAcceptsCDN(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")

	view, err := f.core.CreatePost(f.ctx, a.ID, PostInput{
		Caption:  "  sunset  ",
		ImageURL: "https://res.cloudinary.com/demo/image/upload/sample",
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if view.Post.Caption != "sunset" {
		t.Fatalf("expected trimmed caption, got %q", view.Post.Caption)
	}
	if view.Author.ID != a.ID {
		t.Fatalf("expected alice as author")
	}
}

func TestCreatePost_CustomImagePredicate(t *testing.T) {
	f := newFixture(t, Options{ImageAccept: func(rawURL string) bool {
		return strings.HasPrefix(rawURL, "https://cdn.snapfeed.test/")
	}})
	a := f.user("alice")

	if _, err := f.core.CreatePost(f.ctx, a.ID, PostInput{Caption: "ok", ImageURL: "https://cdn.snapfeed.test/x"}); err != nil {
		t.Fatalf("expected custom host to be accepted, got %v", err)
	}
	if _, err := f.core.CreatePost(f.ctx, a.ID, PostInput{Caption: "no", ImageURL: "https://example.com/a.jpg"}); err == nil {
		t.Fatal("expected the default extension rule to be replaced")
	}
}

func TestUpdateAndDeletePost_OwnerOnly(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	p := f.post(a)

	caption := "edited"
	if _, err := f.core.UpdatePost(f.ctx, b.ID, p.ID, PostPatch{Caption: &caption}); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission on update, got %v", err)
	}
	if err := f.core.DeletePost(f.ctx, b.ID, p.ID); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission on delete, got %v", err)
	}

	updated, err := f.core.UpdatePost(f.ctx, a.ID, p.ID, PostPatch{Caption: &caption})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Post.Caption != "edited" || updated.Post.ImageURL != p.ImageURL {
		t.Fatalf("unexpected post after update: %+v", updated.Post)
	}

	blank := " "
	if _, err := f.core.UpdatePost(f.ctx, a.ID, p.ID, PostPatch{Caption: &blank}); err == nil {
		t.Fatal("expected blank caption to be rejected on update")
	}

	if err := f.core.DeletePost(f.ctx, a.ID, p.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := f.core.GetPost(f.ctx, a.ID, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
