package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/models"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T, s *MemoryStore, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: []byte("x")}
	if err := s.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("InsertUser(%s) failed: %v", username, err)
	}
	return u
}

func newPost(t *testing.T, s *MemoryStore, owner int64, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner, Caption: "caption", ImageURL: "https://picsum.photos/1", CreatedAt: at, UpdatedAt: at}
	if err := s.InsertPost(context.Background(), p); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}
	return p
}

func ids(posts []*models.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertUser_Duplicates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	newUser(t, s, "alice")

	err := s.InsertUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	err = s.InsertUser(ctx, &models.User{Username: "alice2", Email: "alice@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestInsertFollow_Constraints(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")

	if err := s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: a.ID}); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected ErrSelfReference, got %v", err)
	}
	if err := s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: 999}); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
	if err := s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}); err != nil {
		t.Fatalf("first follow failed: %v", err)
	}
	if err := s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}); !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("expected ErrDuplicateEdge, got %v", err)
	}

	_, total, err := s.ListFollows(ctx, a.ID, ByFollower, filter.Filter{})
	if err != nil || total != 1 {
		t.Fatalf("expected exactly one edge, got %d (%v)", total, err)
	}
}

func TestInsertLike_OwnPostRejected(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	p := newPost(t, s, a.ID, base)

	if err := s.InsertLike(ctx, &models.Like{UserID: a.ID, PostID: p.ID}); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected ErrSelfReference, got %v", err)
	}
}

func TestDoTransactionally_RollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")

	boom := errors.New("boom")
	err := s.DoTransactionally(ctx, func(txCtx context.Context) error {
		if err := s.InsertFollow(txCtx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := s.GetFollow(ctx, a.ID, b.ID); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("follow should have been rolled back, got %v", err)
	}
}

func TestListPosts_Orderings(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	owner := newUser(t, s, "owner")
	fans := []*models.User{newUser(t, s, "f1"), newUser(t, s, "f2"), newUser(t, s, "f3")}

	p1 := newPost(t, s, owner.ID, base)
	p2 := newPost(t, s, owner.ID, base.Add(time.Hour))
	p3 := newPost(t, s, owner.ID, base.Add(time.Hour)) // same timestamp as p2

	like := func(u *models.User, p *models.Post, at time.Time) {
		if err := s.InsertLike(ctx, &models.Like{UserID: u.ID, PostID: p.ID, CreatedAt: at}); err != nil {
			t.Fatalf("InsertLike failed: %v", err)
		}
	}
	like(fans[0], p1, base.Add(-10*24*time.Hour))
	like(fans[1], p1, base.Add(-10*24*time.Hour))
	like(fans[2], p2, base)

	recent, err := s.ListPosts(ctx, PostQuery{Order: OrderRecent})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{p3.ID, p2.ID, p1.ID}; !equalIDs(ids(recent), want) {
		t.Errorf("recent order: got %v, want %v", ids(recent), want)
	}

	popular, _ := s.ListPosts(ctx, PostQuery{Order: OrderPopular})
	if want := []int64{p1.ID, p2.ID, p3.ID}; !equalIDs(ids(popular), want) {
		t.Errorf("popular order: got %v, want %v", ids(popular), want)
	}
	if popular[0].TotalLikes != 2 {
		t.Errorf("expected 2 likes on p1, got %d", popular[0].TotalLikes)
	}

	trendingQuery := PostQuery{Order: OrderTrending, LikedSince: base.Add(-7 * 24 * time.Hour)}
	trending, _ := s.ListPosts(ctx, trendingQuery)
	if want := []int64{p2.ID}; !equalIDs(ids(trending), want) {
		t.Errorf("trending: got %v, want %v", ids(trending), want)
	}
	if n, _ := s.CountPosts(ctx, trendingQuery); n != 1 {
		t.Errorf("expected trending count 1, got %d", n)
	}
}

func TestListPosts_ScopeAndPage(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")
	for i := 0; i < 3; i++ {
		newPost(t, s, a.ID, base.Add(time.Duration(i)*time.Minute))
	}
	pb := newPost(t, s, b.ID, base)

	only, _ := s.ListPosts(ctx, PostQuery{Scope: OnlyOwners, Owners: []int64{b.ID}})
	if !equalIDs(ids(only), []int64{pb.ID}) {
		t.Errorf("only owners: got %v", ids(only))
	}

	except, _ := s.ListPosts(ctx, PostQuery{Scope: ExceptOwners, Owners: []int64{b.ID}, Page: filter.NewFilter(2, 1)})
	if len(except) != 2 {
		t.Fatalf("expected a page of 2, got %d", len(except))
	}
	if n, _ := s.CountPosts(ctx, PostQuery{Scope: ExceptOwners, Owners: []int64{b.ID}}); n != 3 {
		t.Errorf("expected 3 posts outside b, got %d", n)
	}

	none, _ := s.ListPosts(ctx, PostQuery{Scope: OnlyOwners})
	if len(none) != 0 {
		t.Errorf("empty owner set must select nothing, got %d", len(none))
	}
}

func TestDeletePost_RemovesLikes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")
	p := newPost(t, s, a.ID, base)
	if err := s.InsertLike(ctx, &models.Like{UserID: b.ID, PostID: p.ID}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, total, _ := s.ListLikes(ctx, b.ID, ByFollower, filter.Filter{}); total != 0 {
		t.Errorf("expected likes to be removed with the post, got %d", total)
	}
	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, ErrNoRecord) {
		t.Errorf("expected ErrNoRecord on second delete, got %v", err)
	}
}

func TestUserCountsAndMostFollowed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")
	c := newUser(t, s, "c")
	follow := func(x, y *models.User) {
		if err := s.InsertFollow(ctx, &models.Follow{FollowerID: x.ID, FollowingID: y.ID}); err != nil {
			t.Fatal(err)
		}
	}
	follow(a, c)
	follow(b, c)
	follow(c, b)
	p := newPost(t, s, c.ID, base)
	if err := s.InsertLike(ctx, &models.Like{UserID: a.ID, PostID: p.ID}); err != nil {
		t.Fatal(err)
	}

	counts, err := s.UserCounts(ctx, []int64{a.ID, c.ID})
	if err != nil {
		t.Fatal(err)
	}
	want := models.UserCounts{Followers: 2, Following: 1, Posts: 1, LikesReceived: 1}
	if counts[c.ID] != want {
		t.Errorf("counts for c: got %+v, want %+v", counts[c.ID], want)
	}
	if counts[a.ID].LikesGiven != 1 || counts[a.ID].Following != 1 {
		t.Errorf("counts for a: got %+v", counts[a.ID])
	}

	top, _ := s.MostFollowedUsers(ctx, []int64{a.ID}, 10)
	if len(top) != 2 || top[0].ID != c.ID || top[1].ID != b.ID {
		t.Errorf("unexpected suggestion order: %+v", top)
	}
}

func TestListFollows_NewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")
	c := newUser(t, s, "c")
	_ = s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID, CreatedAt: base})
	_ = s.InsertFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: c.ID, CreatedAt: base.Add(time.Minute)})

	got, _ := s.FollowingIDs(ctx, a.ID)
	if !equalIDs(got, []int64{c.ID, b.ID}) {
		t.Errorf("expected newest edge first, got %v", got)
	}

	followers, total, _ := s.ListFollows(ctx, b.ID, ByTarget, filter.Filter{})
	if total != 1 || followers[0].FollowerID != a.ID {
		t.Errorf("unexpected followers of b: %+v", followers)
	}
}
