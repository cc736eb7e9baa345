package core

import (
	"context"
	"time"

	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
)

// GetPopular orders every post by total likes, breaking ties by recency.
func (c *Core) GetPopular(ctx context.Context, requesterID int64, f filter.Filter) (*PostPage, error) {
	return c.postPage(ctx, requesterID, data.PostQuery{
		Scope: data.AllOwners,
		Order: data.OrderPopular,
		Page:  f,
	})
}

// GetTrending returns the posts liked most inside the trending window. Posts
// without a like inside the window are left out whatever their total.
func (c *Core) GetTrending(ctx context.Context, requesterID int64) ([]*PostView, error) {
	posts, err := c.store.ListPosts(ctx, data.PostQuery{
		Scope:      data.AllOwners,
		Order:      data.OrderTrending,
		LikedSince: c.now().Add(-c.opts.TrendingWindow),
		Page:       filter.NewFilter(int64(c.opts.TrendingLimit), 0),
	})
	if err != nil {
		return nil, err
	}
	return c.postViews(ctx, requesterID, posts)
}

func (c *Core) TrendingWindow() time.Duration {
	return c.opts.TrendingWindow
}
