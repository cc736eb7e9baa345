package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/siahsang/snapfeed/internal/data"
)

func TestFollow_SelfIsRejected(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")

	if _, _, err := f.core.Follow(f.ctx, a.ID, a.ID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}

	ids, err := f.core.FollowingIDs(f.ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if idSet(ids)[a.ID] {
		t.Fatal("followingIDs must never contain the user itself")
	}
}

func TestFollow_TwiceIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")

	first, created, err := f.core.Follow(f.ctx, a.ID, b.ID)
	if err != nil || !created {
		t.Fatalf("first follow: created=%v err=%v", created, err)
	}

	second, created, err := f.core.Follow(f.ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("second follow must not fail, got %v", err)
	}
	if created {
		t.Fatal("second follow must report an existing edge")
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing edge %d, got %d", first.ID, second.ID)
	}

	page, err := f.core.Following(f.ctx, a.ID, unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 {
		t.Fatalf("expected exactly one edge, got %d", page.Count)
	}
}

func TestFollow_ConcurrentRequestsCreateOneEdge(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := f.core.Follow(f.ctx, a.ID, b.ID)
			if err != nil {
				t.Errorf("concurrent follow failed: %v", err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 {
		t.Fatalf("expected exactly one created edge, got %d", createdCount)
	}
}

func TestFollow_UnknownTarget(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")

	if _, _, err := f.core.Follow(f.ctx, a.ID, 4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnfollow(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")

	if err := f.core.Unfollow(f.ctx, a.ID, b.ID); !errors.Is(err, ErrNotFollowing) {
		t.Fatalf("expected ErrNotFollowing, got %v", err)
	}

	f.follow(a, b)
	if err := f.core.Unfollow(f.ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}

	following, err := f.core.IsFollowing(f.ctx, a.ID, b.ID)
	if err != nil || following {
		t.Fatalf("expected edge to be gone, got following=%v err=%v", following, err)
	}
	if _, err := f.store.GetFollow(f.ctx, a.ID, b.ID); !errors.Is(err, data.ErrNoRecord) {
		t.Fatalf("store still has the edge: %v", err)
	}
}

func TestFollowersAndFollowing(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	c := f.user("carol")

	f.follow(a, c)
	f.clock.Advance(1)
	f.follow(b, c)

	followers, err := f.core.Followers(f.ctx, c.ID, unbounded)
	if err != nil {
		t.Fatal(err)
	}
	if followers.Count != 2 {
		t.Fatalf("expected 2 followers, got %d", followers.Count)
	}
	if followers.Items[0].Follower.ID != b.ID || followers.Items[1].Follower.ID != a.ID {
		t.Fatalf("expected newest follower first, got %s then %s",
			followers.Items[0].Follower.Username, followers.Items[1].Follower.Username)
	}

	if _, err := f.core.Followers(f.ctx, 999, unbounded); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestMutualFollows(t *testing.T) {
	f := newFixture(t, Options{})
	a := f.user("alice")
	b := f.user("bob")
	c := f.user("carol")
	d := f.user("dave")
	e := f.user("erin")

	f.follow(a, b)
	f.follow(a, c)
	f.follow(a, d)
	f.follow(b, a)
	f.follow(b, c)
	f.follow(b, d)
	f.follow(b, e)

	mutual, err := f.core.MutualFollows(f.ctx, a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := map[int64]bool{}
	for _, u := range mutual {
		got[u.ID] = true
	}
	if len(mutual) != 2 || !got[c.ID] || !got[d.ID] {
		t.Fatalf("expected carol and dave, got %+v", mutual)
	}

	if _, err := f.core.MutualFollows(f.ctx, a.ID, a.ID); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

func TestSuggestedUsers(t *testing.T) {
	f := newFixture(t, Options{SuggestedLimit: 2})
	a := f.user("alice")
	b := f.user("bob")
	c := f.user("carol")
	d := f.user("dave")
	e := f.user("erin")

	f.follow(a, b)
	f.follow(b, d)
	f.follow(c, d)
	f.follow(b, c)

	suggested, err := f.core.SuggestedUsers(f.ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggested) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggested))
	}
	if suggested[0].User.ID != d.ID || suggested[1].User.ID != c.ID {
		t.Fatalf("expected dave then carol, got %s then %s",
			suggested[0].User.Username, suggested[1].User.Username)
	}
	for _, s := range suggested {
		if s.User.ID == a.ID || s.User.ID == b.ID || s.User.ID == e.ID {
			t.Fatalf("unexpected suggestion %s", s.User.Username)
		}
	}
	if suggested[0].Counts.Followers != 2 {
		t.Fatalf("expected dave to carry 2 followers, got %d", suggested[0].Counts.Followers)
	}
}
