package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/siahsang/snapfeed/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("demopass123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	match, err := IsPasswordMatch(hash, "demopass123")
	if err != nil || !match {
		t.Fatalf("expected password to match, got match=%v err=%v", match, err)
	}

	match, err = IsPasswordMatch(hash, "wrong-password")
	if err != nil || match {
		t.Fatalf("expected mismatch without error, got match=%v err=%v", match, err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := New("test-secret", time.Hour)
	user := &models.User{ID: 42, Username: "alice_photos"}

	token, err := a.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claim, err := a.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if claim.UserID != 42 || claim.Username != "alice_photos" || claim.Subject != "42" {
		t.Fatalf("unexpected claim: %+v", claim)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	a := New("test-secret", time.Hour)
	token, _ := a.GenerateToken(&models.User{ID: 1, Username: "bob"})

	other := New("other-secret", time.Hour)
	if _, err := other.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired := New("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	oldToken, _ := expired.GenerateToken(&models.User{ID: 1, Username: "bob"})
	if _, err := a.Authenticate(oldToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := a.Authenticate("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestRequestContextUser(t *testing.T) {
	a := New("test-secret", time.Hour)
	r := httptest.NewRequest("GET", "/", nil)

	if a.IsUserAuthenticated(r) {
		t.Fatal("fresh request must not be authenticated")
	}

	r = a.SetAuthenticatedUser(r, &models.User{ID: 7, Username: "carol"})
	user, err := a.GetAuthenticatedUser(r)
	if err != nil || user.ID != 7 {
		t.Fatalf("expected user 7, got %v (%v)", user, err)
	}
}
