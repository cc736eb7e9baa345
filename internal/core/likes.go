package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/collectionutils"
	"github.com/siahsang/snapfeed/models"
)

// LikeView is a like edge with the liking user loaded.
type LikeView struct {
	Like *models.Like
	User *models.User
}

type LikePage struct {
	Items  []*LikeView
	Count  int64
	Filter filter.Filter
}

// Like creates the edge userID -> postID. Liking twice is not an error: the
// existing edge is returned with created set to false.
func (c *Core) Like(ctx context.Context, userID, postID int64) (like *models.Like, created bool, err error) {
	err = c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		post, err := c.store.GetPost(txCtx, postID)
		if err != nil {
			return notFoundOr(err)
		}
		if post.UserID == userID {
			return xerrors.New(ErrOwnPost)
		}

		existing, err := c.store.GetLike(txCtx, userID, postID)
		switch {
		case err == nil:
			like = existing
			return nil
		case !errors.Is(err, data.ErrNoRecord):
			return err
		}

		edge := &models.Like{UserID: userID, PostID: postID, CreatedAt: c.now()}
		err = c.store.InsertLike(txCtx, edge)
		switch {
		case err == nil:
			like, created = edge, true
			return nil
		case errors.Is(err, data.ErrDuplicateEdge):
			like, err = c.store.GetLike(txCtx, userID, postID)
			return err
		case errors.Is(err, data.ErrSelfReference):
			return xerrors.New(ErrOwnPost)
		default:
			return notFoundOr(err)
		}
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		c.log.Info("Post liked", slog.Int64("user_id", userID), slog.Int64("post_id", postID))
	}
	return like, created, nil
}

func (c *Core) Unlike(ctx context.Context, userID, postID int64) error {
	err := c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		if _, err := c.store.GetPost(txCtx, postID); err != nil {
			return notFoundOr(err)
		}

		deleted, err := c.store.DeleteLike(txCtx, userID, postID)
		if err != nil {
			return err
		}
		if !deleted {
			return xerrors.New(ErrNotLiked)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("Post unliked", slog.Int64("user_id", userID), slog.Int64("post_id", postID))
	return nil
}

// PostLikes lists who liked postID, most recent like first.
func (c *Core) PostLikes(ctx context.Context, postID int64, f filter.Filter) (*LikePage, error) {
	if _, err := c.store.GetPost(ctx, postID); err != nil {
		return nil, notFoundOr(err)
	}

	likes, total, err := c.store.ListLikes(ctx, postID, data.ByTarget, f)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, len(likes))
	for i, l := range likes {
		userIDs[i] = l.UserID
	}
	users, err := c.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := collectionutils.Associate(users, func(u *models.User) (int64, *models.User) {
		return u.ID, u
	})

	items := make([]*LikeView, len(likes))
	for i, l := range likes {
		items[i] = &LikeView{Like: l, User: usersByID[l.UserID]}
	}
	return &LikePage{Items: items, Count: total, Filter: f}, nil
}

// LikedPost is a post as seen from one of its likes.
type LikedPost struct {
	Like *models.Like
	Post *PostView
}

type LikedPostPage struct {
	Items  []*LikedPost
	Count  int64
	Filter filter.Filter
}

// UserLikes lists the posts userID liked, most recent like first.
func (c *Core) UserLikes(ctx context.Context, requesterID, userID int64, f filter.Filter) (*LikedPostPage, error) {
	if _, err := c.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	likes, total, err := c.store.ListLikes(ctx, userID, data.ByFollower, f)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(likes))
	for _, l := range likes {
		post, err := c.store.GetPost(ctx, l.PostID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	views, err := c.postViews(ctx, requesterID, posts)
	if err != nil {
		return nil, err
	}

	items := make([]*LikedPost, len(likes))
	for i, l := range likes {
		items[i] = &LikedPost{Like: l, Post: views[i]}
	}
	return &LikedPostPage{Items: items, Count: total, Filter: f}, nil
}
