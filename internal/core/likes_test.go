package core

import (
	"errors"
	"testing"
)

func TestLike_OwnPostAlwaysFails(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	p := f.post(a)

	for i := 0; i < 2; i++ {
		if _, _, err := f.core.Like(f.ctx, a.ID, p.ID); !errors.Is(err, ErrOwnPost) {
			t.Fatalf("attempt %d: expected ErrOwnPost, got %v", i, err)
		}
	}

	view, err := f.core.GetPost(f.ctx, a.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Post.TotalLikes != 0 {
		t.Fatalf("expected no likes, got %d", view.Post.TotalLikes)
	}
}

func TestLike_ThenUnlikeRestoresCount(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	c := f.user("carol")
	p := f.post(a)
	f.like(c, p)

	before, _ := f.core.GetPost(f.ctx, b.ID, p.ID)

	if _, created, err := f.core.Like(f.ctx, b.ID, p.ID); err != nil || !created {
		t.Fatalf("Like failed: created=%v err=%v", created, err)
	}
	during, _ := f.core.GetPost(f.ctx, b.ID, p.ID)
	if during.Post.TotalLikes != before.Post.TotalLikes+1 || !during.IsLiked {
		t.Fatalf("expected one more like, got %d (liked=%v)", during.Post.TotalLikes, during.IsLiked)
	}

	if err := f.core.Unlike(f.ctx, b.ID, p.ID); err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}
	after, _ := f.core.GetPost(f.ctx, b.ID, p.ID)
	if after.Post.TotalLikes != before.Post.TotalLikes || after.IsLiked {
		t.Fatalf("expected %d likes after unlike, got %d", before.Post.TotalLikes, after.Post.TotalLikes)
	}
}

func TestLike_TwiceIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	p := f.post(a)

	first, created, err := f.core.Like(f.ctx, b.ID, p.ID)
	if err != nil || !created {
		t.Fatalf("first like: created=%v err=%v", created, err)
	}
	second, created, err := f.core.Like(f.ctx, b.ID, p.ID)
	if err != nil || created || second.ID != first.ID {
		t.Fatalf("second like: created=%v id=%v err=%v", created, second, err)
	}

	likers, err := f.core.PostLikes(f.ctx, p.ID, unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if likers.Count != 1 || likers.Items[0].User.ID != b.ID {
		t.Fatalf("expected bob as the only liker, got %+v", likers.Items)
	}
}

func TestUnlike_Errors(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	p := f.post(a)

	if err := f.core.Unlike(f.ctx, b.ID, p.ID); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
	if err := f.core.Unlike(f.ctx, b.ID, 777); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := f.core.Like(f.ctx, b.ID, 777); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserLikes_MostRecentFirst(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	p1 := f.post(a)
	p2 := f.post(a)

	f.like(b, p2)
	f.clock.Advance(1)
	f.like(b, p1)

	page, err := f.core.UserLikes(f.ctx, a.ID, b.ID, unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 2 || page.Items[0].Post.Post.ID != p1.ID || page.Items[1].Post.Post.ID != p2.ID {
		t.Fatalf("unexpected liked posts order")
	}
	if page.Items[0].Post.IsLiked {
		t.Fatal("IsLiked is relative to the requester, who liked nothing")
	}
}
