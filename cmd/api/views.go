package main

import (
	"time"

	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/utils/functional"
	"github.com/siahsang/snapfeed/models"
)

type userSummary struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

type profileView struct {
	Bio            string  `json:"bio"`
	AvatarURL      *string `json:"avatar_url"`
	FollowersCount int64   `json:"followers_count"`
	FollowingCount int64   `json:"following_count"`
	PostsCount     int64   `json:"posts_count"`
}

type userDetail struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email,omitempty"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Profile   profileView `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
}

type postView struct {
	ID          int64        `json:"id"`
	User        *userSummary `json:"user"`
	Caption     string       `json:"caption"`
	ImageURL    string       `json:"image_url"`
	TotalLikes  int64        `json:"total_likes"`
	RecentLikes *int64       `json:"recent_likes,omitempty"`
	IsLiked     bool         `json:"is_liked"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type followView struct {
	ID        int64        `json:"id"`
	Follower  *userSummary `json:"follower"`
	Following *userSummary `json:"following"`
	CreatedAt time.Time    `json:"created_at"`
}

type likeView struct {
	ID        int64        `json:"id"`
	User      *userSummary `json:"user"`
	PostID    int64        `json:"post"`
	CreatedAt time.Time    `json:"created_at"`
}

type likedPostView struct {
	ID      int64     `json:"id"`
	Post    *postView `json:"post"`
	LikedAt time.Time `json:"liked_at"`
}

func summaryOf(user *models.User) *userSummary {
	if user == nil {
		return nil
	}
	return &userSummary{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AvatarURL: user.Profile.AvatarURL,
	}
}

// detailOf renders a user card. The email is only shown to its owner.
func detailOf(card *core.UserCard, withEmail bool) *userDetail {
	detail := &userDetail{
		ID:        card.User.ID,
		Username:  card.User.Username,
		FirstName: card.User.FirstName,
		LastName:  card.User.LastName,
		Profile: profileView{
			Bio:            card.User.Profile.Bio,
			AvatarURL:      card.User.Profile.AvatarURL,
			FollowersCount: card.Counts.Followers,
			FollowingCount: card.Counts.Following,
			PostsCount:     card.Counts.Posts,
		},
		CreatedAt: card.User.CreatedAt,
	}
	if withEmail {
		detail.Email = card.User.Email
	}
	return detail
}

func detailsOf(cards []*core.UserCard) []*userDetail {
	return functional.Map(cards, func(card *core.UserCard) *userDetail {
		return detailOf(card, false)
	})
}

func postOf(view *core.PostView) *postView {
	return &postView{
		ID:         view.Post.ID,
		User:       summaryOf(view.Author),
		Caption:    view.Post.Caption,
		ImageURL:   view.Post.ImageURL,
		TotalLikes: view.Post.TotalLikes,
		IsLiked:    view.IsLiked,
		CreatedAt:  view.Post.CreatedAt,
		UpdatedAt:  view.Post.UpdatedAt,
	}
}

func postsOf(views []*core.PostView) []*postView {
	return functional.Map(views, postOf)
}

// trendingOf also exposes the in-window like count.
func trendingOf(view *core.PostView) *postView {
	p := postOf(view)
	recent := view.Post.RecentLikes
	p.RecentLikes = &recent
	return p
}

func followOf(view *core.FollowView) *followView {
	return &followView{
		ID:        view.Follow.ID,
		Follower:  summaryOf(view.Follower),
		Following: summaryOf(view.Following),
		CreatedAt: view.Follow.CreatedAt,
	}
}

func likeOf(like *models.Like, user *models.User) *likeView {
	return &likeView{
		ID:        like.ID,
		User:      summaryOf(user),
		PostID:    like.PostID,
		CreatedAt: like.CreatedAt,
	}
}

func likedPostOf(item *core.LikedPost) *likedPostView {
	return &likedPostView{
		ID:      item.Like.ID,
		Post:    postOf(item.Post),
		LikedAt: item.Like.CreatedAt,
	}
}

// feedMetaOf keeps only the fields that belong to the feed type.
func feedMetaOf(meta core.FeedMeta) envelope {
	out := envelope{"feed_type": meta.FeedType}
	switch meta.FeedType {
	case core.FeedTypeFollowing:
		out["following_count"] = meta.FollowingCount
		out["has_posts"] = meta.HasPosts
	case core.FeedTypeTimeline:
		out["following_count"] = meta.FollowingCount
		out["own_posts_count"] = meta.OwnPostsCount
		out["has_posts"] = meta.HasPosts
	case core.FeedTypeDiscover:
		out["description"] = meta.Description
	}
	return out
}

type followStatsView struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
	IsFollowedBy   bool  `json:"is_followed_by"`
	MutualFollows  int64 `json:"mutual_follows"`
}

type recentLikeView struct {
	PostID      int64     `json:"post_id"`
	PostCaption string    `json:"post_caption"`
	LikedAt     time.Time `json:"liked_at"`
}

type mostLikedView struct {
	ID         int64  `json:"id"`
	Caption    string `json:"caption"`
	TotalLikes int64  `json:"total_likes"`
	Username   string `json:"user,omitempty"`
}

type likeStatsView struct {
	TotalLikesGiven    int64             `json:"total_likes_given"`
	TotalLikesReceived int64             `json:"total_likes_received"`
	MostLikedPost      *mostLikedView    `json:"most_liked_post"`
	RecentLikes        []*recentLikeView `json:"recent_likes"`
}

type postStatsView struct {
	TotalPosts    int64          `json:"total_posts"`
	UserPosts     int64          `json:"user_posts"`
	MostLikedPost *mostLikedView `json:"most_liked_post"`
}

type feedStatsView struct {
	SocialStats struct {
		FollowingCount int64 `json:"following_count"`
		FollowersCount int64 `json:"followers_count"`
	} `json:"social_stats"`
	FeedStats struct {
		FeedPosts     int64 `json:"feed_posts"`
		TimelinePosts int64 `json:"timeline_posts"`
		OwnPosts      int64 `json:"own_posts"`
		DiscoverPosts int64 `json:"discover_posts"`
	} `json:"feed_stats"`
	Recommendations struct {
		FollowMoreUsers bool `json:"follow_more_users"`
		CreatePosts     bool `json:"create_posts"`
		ExploreDiscover bool `json:"explore_discover"`
	} `json:"recommendations"`
}

func followStatsOf(stats *core.FollowStats) *followStatsView {
	return &followStatsView{
		FollowersCount: stats.FollowersCount,
		FollowingCount: stats.FollowingCount,
		IsFollowing:    stats.IsFollowing,
		IsFollowedBy:   stats.IsFollowedBy,
		MutualFollows:  stats.MutualFollows,
	}
}

func likeStatsOf(stats *core.LikeStats) *likeStatsView {
	view := &likeStatsView{
		TotalLikesGiven:    stats.TotalLikesGiven,
		TotalLikesReceived: stats.TotalLikesReceived,
		RecentLikes: functional.Map(stats.RecentLikes, func(rl core.RecentLike) *recentLikeView {
			return &recentLikeView{PostID: rl.Post.ID, PostCaption: rl.Post.Caption, LikedAt: rl.Like.CreatedAt}
		}),
	}
	if p := stats.MostLikedPost; p != nil {
		view.MostLikedPost = &mostLikedView{ID: p.ID, Caption: p.Caption, TotalLikes: p.TotalLikes}
	}
	return view
}

func postStatsOf(stats *core.PostStats) *postStatsView {
	view := &postStatsView{TotalPosts: stats.TotalPosts, UserPosts: stats.UserPosts}
	if top := stats.MostLikedPost; top != nil {
		view.MostLikedPost = &mostLikedView{
			ID:         top.Post.ID,
			Caption:    top.Post.Caption,
			TotalLikes: top.Post.TotalLikes,
			Username:   top.Author.Username,
		}
	}
	return view
}

func feedStatsOf(stats *core.FeedStats) *feedStatsView {
	view := &feedStatsView{}
	view.SocialStats.FollowingCount = stats.FollowingCount
	view.SocialStats.FollowersCount = stats.FollowersCount
	view.FeedStats.FeedPosts = stats.FeedPosts
	view.FeedStats.TimelinePosts = stats.TimelinePosts
	view.FeedStats.OwnPosts = stats.OwnPosts
	view.FeedStats.DiscoverPosts = stats.DiscoverPosts
	view.Recommendations.FollowMoreUsers = stats.Recommendations.FollowMoreUsers
	view.Recommendations.CreatePosts = stats.Recommendations.CreatePosts
	view.Recommendations.ExploreDiscover = stats.Recommendations.ExploreDiscover
	return view
}
