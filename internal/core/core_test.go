package core

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *data.MemoryStore
	core  *Core
	clock *fakeClock
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts.Now = clock.Now
	store := data.NewMemoryStore()
	return &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		core:  NewCore(store, slog.New(slog.DiscardHandler), opts),
		clock: clock,
	}
}

// user inserts straight into the store; registration is covered on its own
// because bcrypt makes it slow.
func (f *fixture) user(username string) *models.User {
	f.t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: []byte("not-a-real-hash"),
		CreatedAt:    f.clock.Now(),
	}
	if err := f.store.InsertUser(f.ctx, u); err != nil {
		f.t.Fatalf("InsertUser(%s) failed: %v", username, err)
	}
	return u
}

// post creates a post one minute after the previous event.
func (f *fixture) post(owner *models.User) *models.Post {
	f.t.Helper()
	f.clock.Advance(time.Minute)
	view, err := f.core.CreatePost(f.ctx, owner.ID, PostInput{
		Caption:  fmt.Sprintf("post by %s at %s", owner.Username, f.clock.Now().Format(time.Kitchen)),
		ImageURL: "https://picsum.photos/seed/snap/600/600",
	})
	if err != nil {
		f.t.Fatalf("CreatePost failed: %v", err)
	}
	return view.Post
}

func (f *fixture) follow(a, b *models.User) {
	f.t.Helper()
	if _, _, err := f.core.Follow(f.ctx, a.ID, b.ID); err != nil {
		f.t.Fatalf("Follow(%s, %s) failed: %v", a.Username, b.Username, err)
	}
}

func (f *fixture) like(u *models.User, p *models.Post) {
	f.t.Helper()
	if _, _, err := f.core.Like(f.ctx, u.ID, p.ID); err != nil {
		f.t.Fatalf("Like(%s, %d) failed: %v", u.Username, p.ID, err)
	}
}

var unbounded = filter.Filter{}

func postIDs(views []*PostView) []int64 {
	ids := make([]int64, len(views))
	for i, v := range views {
		ids[i] = v.Post.ID
	}
	return ids
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
