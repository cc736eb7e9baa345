package core

import (
	"context"
	"errors"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/collectionutils"
	"github.com/siahsang/snapfeed/internal/utils/functional"
	"github.com/siahsang/snapfeed/models"
)

// FollowView is a follow edge with both endpoints loaded.
type FollowView struct {
	Follow    *models.Follow
	Follower  *models.User
	Following *models.User
}

type FollowPage struct {
	Items  []*FollowView
	Count  int64
	Filter filter.Filter
}

// FollowingIDs returns the ids userID follows, most recent edge first.
func (c *Core) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	return c.store.FollowingIDs(ctx, userID)
}

func (c *Core) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	_, err := c.store.GetFollow(ctx, followerID, followingID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, data.ErrNoRecord):
		return false, nil
	default:
		return false, err
	}
}

// Followers lists the users following userID.
func (c *Core) Followers(ctx context.Context, userID int64, f filter.Filter) (*FollowPage, error) {
	return c.followPage(ctx, userID, data.ByTarget, f)
}

// Following lists the users userID follows.
func (c *Core) Following(ctx context.Context, userID int64, f filter.Filter) (*FollowPage, error) {
	return c.followPage(ctx, userID, data.ByFollower, f)
}

func (c *Core) followPage(ctx context.Context, userID int64, dir data.EdgeDirection, f filter.Filter) (*FollowPage, error) {
	if _, err := c.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	follows, total, err := c.store.ListFollows(ctx, userID, dir, f)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, 2*len(follows))
	for _, follow := range follows {
		userIDs = append(userIDs, follow.FollowerID, follow.FollowingID)
	}
	users, err := c.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := collectionutils.Associate(users, func(u *models.User) (int64, *models.User) {
		return u.ID, u
	})

	items := make([]*FollowView, len(follows))
	for i, follow := range follows {
		items[i] = &FollowView{
			Follow:    follow,
			Follower:  usersByID[follow.FollowerID],
			Following: usersByID[follow.FollowingID],
		}
	}
	return &FollowPage{Items: items, Count: total, Filter: f}, nil
}

// MutualFollows returns the users both a and b follow, excluding a and b,
// in the order a followed them.
func (c *Core) MutualFollows(ctx context.Context, a, b int64) ([]*models.User, error) {
	if a == b {
		return nil, xerrors.New(ErrSelfFollow)
	}
	if _, err := c.GetUserByID(ctx, b); err != nil {
		return nil, err
	}

	mutualIDs, err := c.mutualIDs(ctx, a, b)
	if err != nil {
		return nil, err
	}
	users, err := c.store.GetUsersByIDs(ctx, mutualIDs)
	if err != nil {
		return nil, err
	}

	usersByID := collectionutils.Associate(users, func(u *models.User) (int64, *models.User) {
		return u.ID, u
	})
	ordered := make([]*models.User, 0, len(mutualIDs))
	for _, id := range mutualIDs {
		if u, ok := usersByID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

func (c *Core) mutualIDs(ctx context.Context, a, b int64) ([]int64, error) {
	followingA, err := c.store.FollowingIDs(ctx, a)
	if err != nil {
		return nil, err
	}
	followingB, err := c.store.FollowingIDs(ctx, b)
	if err != nil {
		return nil, err
	}

	return functional.Filter(collectionutils.Intersect(followingA, followingB), func(id int64) bool {
		return id != a && id != b
	}), nil
}

// SuggestedUsers proposes the most followed users that userID does not
// follow yet.
func (c *Core) SuggestedUsers(ctx context.Context, userID int64) ([]*UserCard, error) {
	following, err := c.store.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := c.store.MostFollowedUsers(ctx, append(following, userID), c.opts.SuggestedLimit)
	if err != nil {
		return nil, err
	}
	return c.userCards(ctx, users)
}
