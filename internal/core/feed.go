package core

import (
	"context"

	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
)

const (
	FeedTypeFollowing = "following_only"
	FeedTypeTimeline  = "timeline"
	FeedTypeDiscover  = "discover"

	discoverDescription = "Posts from users you don't follow"
)

// FeedMeta describes a feed page. Which fields are meaningful depends on
// FeedType.
type FeedMeta struct {
	FeedType       string
	FollowingCount int64
	OwnPostsCount  int64
	HasPosts       bool
	Description    string
}

type FeedPage struct {
	PostPage
	Meta FeedMeta
}

// GetFeed returns posts by the users requesterID follows, newest first.
func (c *Core) GetFeed(ctx context.Context, requesterID int64, f filter.Filter) (*FeedPage, error) {
	following, err := c.store.FollowingIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	page, err := c.postPage(ctx, requesterID, data.PostQuery{
		Scope:  data.OnlyOwners,
		Owners: following,
		Order:  data.OrderRecent,
		Page:   f,
	})
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		PostPage: *page,
		Meta: FeedMeta{
			FeedType:       FeedTypeFollowing,
			FollowingCount: int64(len(following)),
			HasPosts:       len(page.Items) > 0,
		},
	}, nil
}

// GetTimeline is the feed plus requesterID's own posts.
func (c *Core) GetTimeline(ctx context.Context, requesterID int64, f filter.Filter) (*FeedPage, error) {
	following, err := c.store.FollowingIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	page, err := c.postPage(ctx, requesterID, data.PostQuery{
		Scope:  data.OnlyOwners,
		Owners: append(following, requesterID),
		Order:  data.OrderRecent,
		Page:   f,
	})
	if err != nil {
		return nil, err
	}

	ownPosts, err := c.store.CountPosts(ctx, data.PostQuery{Scope: data.OnlyOwners, Owners: []int64{requesterID}})
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		PostPage: *page,
		Meta: FeedMeta{
			FeedType:       FeedTypeTimeline,
			FollowingCount: int64(len(following)),
			OwnPostsCount:  ownPosts,
			HasPosts:       len(page.Items) > 0,
		},
	}, nil
}

// GetDiscover returns posts by everyone outside requesterID's timeline.
func (c *Core) GetDiscover(ctx context.Context, requesterID int64, f filter.Filter) (*FeedPage, error) {
	following, err := c.store.FollowingIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	page, err := c.postPage(ctx, requesterID, data.PostQuery{
		Scope:  data.ExceptOwners,
		Owners: append(following, requesterID),
		Order:  data.OrderRecent,
		Page:   f,
	})
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		PostPage: *page,
		Meta: FeedMeta{
			FeedType:    FeedTypeDiscover,
			HasPosts:    len(page.Items) > 0,
			Description: discoverDescription,
		},
	}, nil
}
