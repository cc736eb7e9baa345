package core

import (
	"errors"
	"strconv"
	"testing"

	"github.com/siahsang/snapfeed/internal/filter"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t, Options{})

	card, err := f.core.RegisterUser(f.ctx, RegisterInput{
		Username:        "alice_photos",
		Email:           "alice@example.com",
		Password:        "demopass123",
		PasswordConfirm: "demopass123",
		Bio:             "  Photographer  ",
	})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if card.User.ID == 0 || card.User.Profile.Bio != "Photographer" {
		t.Fatalf("unexpected user %+v", card.User)
	}

	if _, err := f.core.Authenticate(f.ctx, "alice_photos", "demopass123"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if _, err := f.core.Authenticate(f.ctx, "alice_photos", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a wrong password, got %v", err)
	}
	if _, err := f.core.Authenticate(f.ctx, "nobody", "demopass123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for an unknown user, got %v", err)
	}

	_, err = f.core.RegisterUser(f.ctx, RegisterInput{
		Username:        "alice_photos",
		Email:           "other@example.com",
		Password:        "demopass123",
		PasswordConfirm: "demopass123",
	})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.core.RegisterUser(f.ctx, RegisterInput{
		Username:        "a b",
		Email:           "not-an-email",
		Password:        "short",
		PasswordConfirm: "different",
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	for _, field := range []string{"username", "email", "password", "password_confirm"} {
		if _, ok := validationErr.Errors[field]; !ok {
			t.Errorf("expected an error on %s, got %v", field, validationErr.Errors)
		}
	}
}

func TestResolveUser(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")

	byID, err := f.core.ResolveUser(f.ctx, strconv.FormatInt(a.ID, 10))
	if err != nil || byID.ID != a.ID {
		t.Fatalf("resolve by id: %v %v", byID, err)
	}
	byName, err := f.core.ResolveUser(f.ctx, "alice")
	if err != nil || byName.ID != a.ID {
		t.Fatalf("resolve by username: %v %v", byName, err)
	}
	if _, err := f.core.ResolveUser(f.ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	f.user("bob")

	bio := "Travel and food"
	avatar := "https://picsum.photos/200"
	card, err := f.core.UpdateProfile(f.ctx, a.ID, ProfileInput{Bio: &bio, AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if card.User.Profile.Bio != bio || card.User.Profile.AvatarURL == nil || *card.User.Profile.AvatarURL != avatar {
		t.Fatalf("profile not updated: %+v", card.User.Profile)
	}

	none := ""
	card, err = f.core.UpdateProfile(f.ctx, a.ID, ProfileInput{AvatarURL: &none})
	if err != nil || card.User.Profile.AvatarURL != nil {
		t.Fatalf("expected avatar to be cleared, got %+v (%v)", card.User.Profile, err)
	}

	taken := "bob@example.com"
	if _, err := f.core.UpdateProfile(f.ctx, a.ID, ProfileInput{Email: &taken}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	badAvatar := "not a url"
	if _, err := f.core.UpdateProfile(f.ctx, a.ID, ProfileInput{AvatarURL: &badAvatar}); err == nil {
		t.Fatal("expected avatar validation to fail")
	}
}

func TestListUsers_CountsAreComputed(t *testing.T) {
	f := newFixture(t, Options{})
	carol := f.user("carol")
	alice := f.user("alice")
	bob := f.user("bob")
	f.follow(alice, carol)
	f.follow(bob, carol)
	f.post(carol)

	page, err := f.core.ListUsers(f.ctx, filter.NewFilter(2, 0))
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 3 || len(page.Items) != 2 {
		t.Fatalf("expected 2 of 3 users, got %d of %d", len(page.Items), page.Count)
	}
	if page.Items[0].User.Username != "alice" || page.Items[1].User.Username != "bob" {
		t.Fatalf("expected username order, got %s, %s", page.Items[0].User.Username, page.Items[1].User.Username)
	}

	card, err := f.core.GetUser(f.ctx, carol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Counts.Followers != 2 || card.Counts.Posts != 1 {
		t.Fatalf("unexpected counts for carol: %+v", card.Counts)
	}
}
