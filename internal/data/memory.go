package data

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/collectionutils"
	"github.com/siahsang/snapfeed/models"
)

type memoryTxKey struct {
}

type sequences struct {
	users   int64
	posts   int64
	follows int64
	likes   int64
}

type memoryState struct {
	users   map[int64]models.User
	posts   map[int64]models.Post
	follows map[int64]models.Follow
	likes   map[int64]models.Like
	seq     sequences
}

func (st *memoryState) clone() memoryState {
	return memoryState{
		users:   maps.Clone(st.users),
		posts:   maps.Clone(st.posts),
		follows: maps.Clone(st.follows),
		likes:   maps.Clone(st.likes),
		seq:     st.seq,
	}
}

// MemoryStore keeps the whole relation graph in process. It enforces the same
// uniqueness and self-reference rules as the PostgreSQL schema.
//
// Writes are serialised: a transaction holds txMu until it finishes and
// restores a snapshot of the maps if fn fails. Reads only take mu, so they
// may observe the writes of a transaction that is still running.
type MemoryStore struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			users:   make(map[int64]models.User),
			posts:   make(map[int64]models.Post),
			follows: make(map[int64]models.Follow),
			likes:   make(map[int64]models.Like),
		},
		now: time.Now,
	}
}

func inMemoryTx(ctx context.Context) bool {
	_, ok := ctx.Value(memoryTxKey{}).(bool)
	return ok
}

func (s *MemoryStore) DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error {
	if inMemoryTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.state = snapshot
			s.mu.Unlock()
		}
		s.txMu.Unlock()
	}()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *MemoryStore) write(ctx context.Context, fn func(st *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return xerrors.New(err)
	}
	if !inMemoryTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

func (s *MemoryStore) read(ctx context.Context, fn func(st *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return xerrors.New(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

func (s *MemoryStore) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

// Users

func (s *MemoryStore) InsertUser(ctx context.Context, user *models.User) error {
	return s.write(ctx, func(st *memoryState) error {
		for _, existing := range st.users {
			if existing.Username == user.Username {
				return xerrors.New(ErrDuplicateUsername)
			}
			if existing.Email == user.Email {
				return xerrors.New(ErrDuplicateEmail)
			}
		}
		st.seq.users++
		user.ID = st.seq.users
		user.CreatedAt = s.stamp(user.CreatedAt)
		user.UpdatedAt = user.CreatedAt
		st.users[user.ID] = *user
		return nil
	})
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.read(ctx, func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return xerrors.New(ErrNoRecord)
		}
		user = &u
		return nil
	})
	return user, err
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := s.read(ctx, func(st *memoryState) error {
		for _, u := range st.users {
			if u.Username == username {
				user = &u
				return nil
			}
		}
		return xerrors.New(ErrNoRecord)
	})
	return user, err
}

func (s *MemoryStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	users := []*models.User{}
	err := s.read(ctx, func(st *memoryState) error {
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if u, ok := st.users[id]; ok {
				users = append(users, &u)
			}
		}
		return nil
	})
	return users, err
}

func (s *MemoryStore) ListUsers(ctx context.Context, page filter.Filter) ([]*models.User, int64, error) {
	var all []*models.User
	err := s.read(ctx, func(st *memoryState) error {
		for _, u := range st.users {
			all = append(all, &u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *models.User) int {
		if c := strings.Compare(a.Username, b.Username); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	start, end := page.Window(len(all))
	return all[start:end], int64(len(all)), nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	return s.write(ctx, func(st *memoryState) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return xerrors.New(ErrNoRecord)
		}
		for id, other := range st.users {
			if id != user.ID && other.Email == user.Email {
				return xerrors.New(ErrDuplicateEmail)
			}
		}
		existing.Email = user.Email
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		existing.Profile = user.Profile
		existing.UpdatedAt = s.stamp(user.UpdatedAt)
		st.users[user.ID] = existing
		*user = existing
		return nil
	})
}

func (s *MemoryStore) UserCounts(ctx context.Context, ids []int64) (map[int64]models.UserCounts, error) {
	counts := make(map[int64]models.UserCounts, len(ids))
	err := s.read(ctx, func(st *memoryState) error {
		wanted := collectionutils.ToSet(ids)
		for id := range wanted {
			if _, ok := st.users[id]; ok {
				counts[id] = models.UserCounts{}
			}
		}
		add := func(id int64, apply func(c *models.UserCounts)) {
			if c, ok := counts[id]; ok {
				apply(&c)
				counts[id] = c
			}
		}
		for _, f := range st.follows {
			add(f.FollowingID, func(c *models.UserCounts) { c.Followers++ })
			add(f.FollowerID, func(c *models.UserCounts) { c.Following++ })
		}
		for _, p := range st.posts {
			add(p.UserID, func(c *models.UserCounts) { c.Posts++ })
		}
		for _, l := range st.likes {
			add(l.UserID, func(c *models.UserCounts) { c.LikesGiven++ })
			if p, ok := st.posts[l.PostID]; ok {
				add(p.UserID, func(c *models.UserCounts) { c.LikesReceived++ })
			}
		}
		return nil
	})
	return counts, err
}

func (s *MemoryStore) MostFollowedUsers(ctx context.Context, exclude []int64, limit int) ([]*models.User, error) {
	var candidates []*models.User
	followers := make(map[int64]int64)
	err := s.read(ctx, func(st *memoryState) error {
		excluded := collectionutils.ToSet(exclude)
		for id, u := range st.users {
			if _, skip := excluded[id]; !skip {
				candidates = append(candidates, &u)
			}
		}
		for _, f := range st.follows {
			followers[f.FollowingID]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(candidates, func(a, b *models.User) int {
		if c := cmp.Compare(followers[b.ID], followers[a.ID]); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// Posts

func (s *MemoryStore) InsertPost(ctx context.Context, post *models.Post) error {
	return s.write(ctx, func(st *memoryState) error {
		if _, ok := st.users[post.UserID]; !ok {
			return xerrors.New(ErrNoRecord)
		}
		st.seq.posts++
		post.ID = st.seq.posts
		post.CreatedAt = s.stamp(post.CreatedAt)
		post.UpdatedAt = s.stamp(post.UpdatedAt)
		post.TotalLikes, post.RecentLikes = 0, 0
		st.posts[post.ID] = *post
		return nil
	})
}

func (s *MemoryStore) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var post *models.Post
	err := s.read(ctx, func(st *memoryState) error {
		p, ok := st.posts[id]
		if !ok {
			return xerrors.New(ErrNoRecord)
		}
		for _, l := range st.likes {
			if l.PostID == id {
				p.TotalLikes++
			}
		}
		post = &p
		return nil
	})
	return post, err
}

func (s *MemoryStore) UpdatePost(ctx context.Context, post *models.Post) error {
	return s.write(ctx, func(st *memoryState) error {
		existing, ok := st.posts[post.ID]
		if !ok {
			return xerrors.New(ErrNoRecord)
		}
		existing.Caption = post.Caption
		existing.ImageURL = post.ImageURL
		existing.UpdatedAt = s.stamp(post.UpdatedAt)
		st.posts[post.ID] = existing
		post.UserID = existing.UserID
		post.CreatedAt = existing.CreatedAt
		post.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

func (s *MemoryStore) DeletePost(ctx context.Context, id int64) error {
	return s.write(ctx, func(st *memoryState) error {
		if _, ok := st.posts[id]; !ok {
			return xerrors.New(ErrNoRecord)
		}
		delete(st.posts, id)
		maps.DeleteFunc(st.likes, func(_ int64, l models.Like) bool {
			return l.PostID == id
		})
		return nil
	})
}

func (s *MemoryStore) selectPosts(st *memoryState, q PostQuery) []*models.Post {
	type likeCount struct{ total, recent int64 }
	counts := make(map[int64]likeCount)
	for _, l := range st.likes {
		c := counts[l.PostID]
		c.total++
		if !l.CreatedAt.Before(q.LikedSince) {
			c.recent++
		}
		counts[l.PostID] = c
	}

	owners := collectionutils.ToSet(q.Owners)
	var posts []*models.Post
	for _, p := range st.posts {
		_, owned := owners[p.UserID]
		if (q.Scope == OnlyOwners && !owned) || (q.Scope == ExceptOwners && owned) {
			continue
		}
		c := counts[p.ID]
		p.TotalLikes, p.RecentLikes = c.total, c.recent
		if q.Order == OrderTrending && p.RecentLikes == 0 {
			continue
		}
		posts = append(posts, &p)
	}
	sortPosts(posts, q.Order)
	return posts
}

func (s *MemoryStore) ListPosts(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.read(ctx, func(st *memoryState) error {
		posts = s.selectPosts(st, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	start, end := q.Page.Window(len(posts))
	return posts[start:end], nil
}

func (s *MemoryStore) CountPosts(ctx context.Context, q PostQuery) (int64, error) {
	var n int64
	err := s.read(ctx, func(st *memoryState) error {
		n = int64(len(s.selectPosts(st, q)))
		return nil
	})
	return n, err
}

// Follows

func (s *MemoryStore) InsertFollow(ctx context.Context, follow *models.Follow) error {
	return s.write(ctx, func(st *memoryState) error {
		if follow.FollowerID == follow.FollowingID {
			return xerrors.New(ErrSelfReference)
		}
		if _, ok := st.users[follow.FollowerID]; !ok {
			return xerrors.New(ErrNoRecord)
		}
		if _, ok := st.users[follow.FollowingID]; !ok {
			return xerrors.New(ErrNoRecord)
		}
		for _, f := range st.follows {
			if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
				return xerrors.New(ErrDuplicateEdge)
			}
		}
		st.seq.follows++
		follow.ID = st.seq.follows
		follow.CreatedAt = s.stamp(follow.CreatedAt)
		st.follows[follow.ID] = *follow
		return nil
	})
}

func (s *MemoryStore) GetFollow(ctx context.Context, followerID, followingID int64) (*models.Follow, error) {
	var follow *models.Follow
	err := s.read(ctx, func(st *memoryState) error {
		for _, f := range st.follows {
			if f.FollowerID == followerID && f.FollowingID == followingID {
				follow = &f
				return nil
			}
		}
		return xerrors.New(ErrNoRecord)
	})
	return follow, err
}

func (s *MemoryStore) DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	deleted := false
	err := s.write(ctx, func(st *memoryState) error {
		for id, f := range st.follows {
			if f.FollowerID == followerID && f.FollowingID == followingID {
				delete(st.follows, id)
				deleted = true
			}
		}
		return nil
	})
	return deleted, err
}

func (s *MemoryStore) followsOf(st *memoryState, userID int64, dir EdgeDirection) []*models.Follow {
	var follows []*models.Follow
	for _, f := range st.follows {
		if (dir == ByFollower && f.FollowerID == userID) || (dir == ByTarget && f.FollowingID == userID) {
			follows = append(follows, &f)
		}
	}
	sortFollows(follows)
	return follows
}

func (s *MemoryStore) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := s.read(ctx, func(st *memoryState) error {
		for _, f := range s.followsOf(st, userID, ByFollower) {
			ids = append(ids, f.FollowingID)
		}
		return nil
	})
	return ids, err
}

func (s *MemoryStore) ListFollows(ctx context.Context, userID int64, dir EdgeDirection, page filter.Filter) ([]*models.Follow, int64, error) {
	var follows []*models.Follow
	err := s.read(ctx, func(st *memoryState) error {
		follows = s.followsOf(st, userID, dir)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	start, end := page.Window(len(follows))
	return follows[start:end], int64(len(follows)), nil
}

// Likes

func (s *MemoryStore) InsertLike(ctx context.Context, like *models.Like) error {
	return s.write(ctx, func(st *memoryState) error {
		if _, ok := st.users[like.UserID]; !ok {
			return xerrors.New(ErrNoRecord)
		}
		post, ok := st.posts[like.PostID]
		if !ok {
			return xerrors.New(ErrNoRecord)
		}
		if post.UserID == like.UserID {
			return xerrors.New(ErrSelfReference)
		}
		for _, l := range st.likes {
			if l.UserID == like.UserID && l.PostID == like.PostID {
				return xerrors.New(ErrDuplicateEdge)
			}
		}
		st.seq.likes++
		like.ID = st.seq.likes
		like.CreatedAt = s.stamp(like.CreatedAt)
		st.likes[like.ID] = *like
		return nil
	})
}

func (s *MemoryStore) GetLike(ctx context.Context, userID, postID int64) (*models.Like, error) {
	var like *models.Like
	err := s.read(ctx, func(st *memoryState) error {
		for _, l := range st.likes {
			if l.UserID == userID && l.PostID == postID {
				like = &l
				return nil
			}
		}
		return xerrors.New(ErrNoRecord)
	})
	return like, err
}

func (s *MemoryStore) DeleteLike(ctx context.Context, userID, postID int64) (bool, error) {
	deleted := false
	err := s.write(ctx, func(st *memoryState) error {
		for id, l := range st.likes {
			if l.UserID == userID && l.PostID == postID {
				delete(st.likes, id)
				deleted = true
			}
		}
		return nil
	})
	return deleted, err
}

func (s *MemoryStore) ListLikes(ctx context.Context, id int64, dir EdgeDirection, page filter.Filter) ([]*models.Like, int64, error) {
	var likes []*models.Like
	err := s.read(ctx, func(st *memoryState) error {
		for _, l := range st.likes {
			if (dir == ByFollower && l.UserID == id) || (dir == ByTarget && l.PostID == id) {
				likes = append(likes, &l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortLikes(likes)
	start, end := page.Window(len(likes))
	return likes[start:end], int64(len(likes)), nil
}

func (s *MemoryStore) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	err := s.read(ctx, func(st *memoryState) error {
		wanted := collectionutils.ToSet(postIDs)
		for _, l := range st.likes {
			if _, ok := wanted[l.PostID]; ok && l.UserID == userID {
				liked[l.PostID] = true
			}
		}
		return nil
	})
	return liked, err
}
