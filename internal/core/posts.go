package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/collectionutils"
	"github.com/siahsang/snapfeed/internal/validator"
	"github.com/siahsang/snapfeed/models"
)

// PostView is a post prepared for a given requester.
type PostView struct {
	Post    *models.Post
	Author  *models.User
	IsLiked bool
}

type PostPage struct {
	Items  []*PostView
	Count  int64
	Filter filter.Filter
}

type PostInput struct {
	Caption  string
	ImageURL string
}

// PostPatch holds a partial update; nil fields are left unchanged.
type PostPatch struct {
	Caption  *string
	ImageURL *string
}

func (c *Core) validatePost(caption, imageURL string) error {
	v := validator.New()
	validator.ValidateCaption(v, caption)
	validator.ValidateImageURL(v, imageURL, c.opts.ImageAccept)
	if !v.IsValid() {
		return newValidationError(v)
	}
	return nil
}

func (c *Core) CreatePost(ctx context.Context, ownerID int64, in PostInput) (*PostView, error) {
	caption := strings.TrimSpace(in.Caption)
	imageURL := strings.TrimSpace(in.ImageURL)
	if err := c.validatePost(caption, imageURL); err != nil {
		return nil, err
	}

	now := c.now()
	post := &models.Post{
		UserID:    ownerID,
		Caption:   caption,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.InsertPost(ctx, post); err != nil {
		return nil, notFoundOr(err)
	}

	c.log.Info("Post created", slog.Int64("post_id", post.ID), slog.Int64("user_id", ownerID))
	return c.GetPost(ctx, ownerID, post.ID)
}

func (c *Core) GetPost(ctx context.Context, requesterID, postID int64) (*PostView, error) {
	post, err := c.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	views, err := c.postViews(ctx, requesterID, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ownedPost loads a post and checks that requesterID may mutate it.
func (c *Core) ownedPost(ctx context.Context, requesterID, postID int64) (*models.Post, error) {
	post, err := c.store.GetPost(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if post.UserID != requesterID {
		return nil, xerrors.New(ErrPermission)
	}
	return post, nil
}

func (c *Core) UpdatePost(ctx context.Context, requesterID, postID int64, patch PostPatch) (*PostView, error) {
	err := c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		post, err := c.ownedPost(txCtx, requesterID, postID)
		if err != nil {
			return err
		}

		if patch.Caption != nil {
			post.Caption = strings.TrimSpace(*patch.Caption)
		}
		if patch.ImageURL != nil {
			post.ImageURL = strings.TrimSpace(*patch.ImageURL)
		}
		if err := c.validatePost(post.Caption, post.ImageURL); err != nil {
			return err
		}

		post.UpdatedAt = c.now()
		return notFoundOr(c.store.UpdatePost(txCtx, post))
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("Post updated", slog.Int64("post_id", postID), slog.Int64("user_id", requesterID))
	return c.GetPost(ctx, requesterID, postID)
}

func (c *Core) DeletePost(ctx context.Context, requesterID, postID int64) error {
	err := c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		if _, err := c.ownedPost(txCtx, requesterID, postID); err != nil {
			return err
		}
		return notFoundOr(c.store.DeletePost(txCtx, postID))
	})
	if err != nil {
		return err
	}

	c.log.Info("Post deleted", slog.Int64("post_id", postID), slog.Int64("user_id", requesterID))
	return nil
}

// RecentPosts lists every post, newest first.
func (c *Core) RecentPosts(ctx context.Context, requesterID int64, f filter.Filter) (*PostPage, error) {
	return c.postPage(ctx, requesterID, data.PostQuery{Scope: data.AllOwners, Order: data.OrderRecent, Page: f})
}

func (c *Core) UserPosts(ctx context.Context, requesterID, ownerID int64, f filter.Filter) (*PostPage, error) {
	if _, err := c.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return c.postPage(ctx, requesterID, data.PostQuery{
		Scope:  data.OnlyOwners,
		Owners: []int64{ownerID},
		Order:  data.OrderRecent,
		Page:   f,
	})
}

func (c *Core) postPage(ctx context.Context, requesterID int64, q data.PostQuery) (*PostPage, error) {
	posts, err := c.store.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := c.store.CountPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	views, err := c.postViews(ctx, requesterID, posts)
	if err != nil {
		return nil, err
	}
	return &PostPage{Items: views, Count: total, Filter: q.Page}, nil
}

// postViews loads authors and the requester's likes for posts in two batched
// store calls. A zero requesterID marks every post as not liked.
func (c *Core) postViews(ctx context.Context, requesterID int64, posts []*models.Post) ([]*PostView, error) {
	views := make([]*PostView, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	authorIDs := make([]int64, len(posts))
	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		authorIDs[i] = p.UserID
		postIDs[i] = p.ID
	}

	authors, err := c.store.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorsByID := collectionutils.Associate(authors, func(u *models.User) (int64, *models.User) {
		return u.ID, u
	})

	liked := map[int64]bool{}
	if requesterID != 0 {
		if liked, err = c.store.LikedPostIDs(ctx, requesterID, postIDs); err != nil {
			return nil, err
		}
	}

	for i, p := range posts {
		views[i] = &PostView{
			Post:    p,
			Author:  authorsByID[p.UserID],
			IsLiked: liked[p.ID],
		}
	}
	return views, nil
}
