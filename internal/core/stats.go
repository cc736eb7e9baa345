package core

import (
	"context"

	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/models"
)

const recentLikesShown = 5

type FollowStats struct {
	FollowersCount int64
	FollowingCount int64
	IsFollowing    bool
	IsFollowedBy   bool
	MutualFollows  int64
}

type RecentLike struct {
	Like *models.Like
	Post *models.Post
}

type LikeStats struct {
	TotalLikesGiven    int64
	TotalLikesReceived int64
	// MostLikedPost is nil unless one of the user's posts has a like.
	MostLikedPost *models.Post
	RecentLikes   []RecentLike
}

type PostStats struct {
	TotalPosts    int64
	UserPosts     int64
	MostLikedPost *PostView
}

type Recommendations struct {
	FollowMoreUsers bool
	CreatePosts     bool
	ExploreDiscover bool
}

type FeedStats struct {
	FollowingCount  int64
	FollowersCount  int64
	FeedPosts       int64
	TimelinePosts   int64
	OwnPosts        int64
	DiscoverPosts   int64
	Recommendations Recommendations
}

// statsTarget resolves the optional target of a stats call, defaulting to
// the requester.
func (c *Core) statsTarget(ctx context.Context, requesterID int64, targetID *int64) (int64, error) {
	if targetID == nil || *targetID == requesterID {
		return requesterID, nil
	}
	if _, err := c.GetUserByID(ctx, *targetID); err != nil {
		return 0, err
	}
	return *targetID, nil
}

func (c *Core) counts(ctx context.Context, userID int64) (models.UserCounts, error) {
	counts, err := c.store.UserCounts(ctx, []int64{userID})
	if err != nil {
		return models.UserCounts{}, err
	}
	return counts[userID], nil
}

// FollowStats reports the follow counts of the target and, when the target
// is someone else, how requesterID relates to it.
func (c *Core) FollowStats(ctx context.Context, requesterID int64, targetID *int64) (*FollowStats, error) {
	target, err := c.statsTarget(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	counts, err := c.counts(ctx, target)
	if err != nil {
		return nil, err
	}
	stats := &FollowStats{
		FollowersCount: counts.Followers,
		FollowingCount: counts.Following,
	}
	if target == requesterID {
		return stats, nil
	}

	if stats.IsFollowing, err = c.IsFollowing(ctx, requesterID, target); err != nil {
		return nil, err
	}
	if stats.IsFollowedBy, err = c.IsFollowing(ctx, target, requesterID); err != nil {
		return nil, err
	}
	mutual, err := c.mutualIDs(ctx, requesterID, target)
	if err != nil {
		return nil, err
	}
	stats.MutualFollows = int64(len(mutual))
	return stats, nil
}

func (c *Core) LikeStats(ctx context.Context, requesterID int64, targetID *int64) (*LikeStats, error) {
	target, err := c.statsTarget(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	counts, err := c.counts(ctx, target)
	if err != nil {
		return nil, err
	}
	stats := &LikeStats{
		TotalLikesGiven:    counts.LikesGiven,
		TotalLikesReceived: counts.LikesReceived,
		RecentLikes:        []RecentLike{},
	}

	top, err := c.store.ListPosts(ctx, data.PostQuery{
		Scope:  data.OnlyOwners,
		Owners: []int64{target},
		Order:  data.OrderPopular,
		Page:   filter.NewFilter(1, 0),
	})
	if err != nil {
		return nil, err
	}
	if len(top) > 0 && top[0].TotalLikes > 0 {
		stats.MostLikedPost = top[0]
	}

	likes, _, err := c.store.ListLikes(ctx, target, data.ByFollower, filter.NewFilter(recentLikesShown, 0))
	if err != nil {
		return nil, err
	}
	for _, like := range likes {
		post, err := c.store.GetPost(ctx, like.PostID)
		if err != nil {
			return nil, err
		}
		stats.RecentLikes = append(stats.RecentLikes, RecentLike{Like: like, Post: post})
	}
	return stats, nil
}

func (c *Core) PostStats(ctx context.Context, requesterID int64) (*PostStats, error) {
	total, err := c.store.CountPosts(ctx, data.PostQuery{Scope: data.AllOwners})
	if err != nil {
		return nil, err
	}
	counts, err := c.counts(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	stats := &PostStats{TotalPosts: total, UserPosts: counts.Posts}

	top, err := c.store.ListPosts(ctx, data.PostQuery{
		Scope: data.AllOwners,
		Order: data.OrderPopular,
		Page:  filter.NewFilter(1, 0),
	})
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		views, err := c.postViews(ctx, requesterID, top)
		if err != nil {
			return nil, err
		}
		stats.MostLikedPost = views[0]
	}
	return stats, nil
}

func (c *Core) FeedStats(ctx context.Context, requesterID int64) (*FeedStats, error) {
	following, err := c.store.FollowingIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	counts, err := c.counts(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	feedPosts, err := c.store.CountPosts(ctx, data.PostQuery{Scope: data.OnlyOwners, Owners: following})
	if err != nil {
		return nil, err
	}
	allPosts, err := c.store.CountPosts(ctx, data.PostQuery{Scope: data.AllOwners})
	if err != nil {
		return nil, err
	}

	timelinePosts := feedPosts + counts.Posts
	stats := &FeedStats{
		FollowingCount: counts.Following,
		FollowersCount: counts.Followers,
		FeedPosts:      feedPosts,
		TimelinePosts:  timelinePosts,
		OwnPosts:       counts.Posts,
		DiscoverPosts:  allPosts - timelinePosts,
	}
	stats.Recommendations = Recommendations{
		FollowMoreUsers: stats.FollowingCount < 5,
		CreatePosts:     stats.OwnPosts < 3,
		ExploreDiscover: stats.DiscoverPosts > 0,
	}
	return stats, nil
}
