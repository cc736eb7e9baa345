package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/models"
)

// Follow creates the edge followerID -> targetID. Following twice is not an
// error: the existing edge is returned with created set to false.
func (c *Core) Follow(ctx context.Context, followerID, targetID int64) (follow *models.Follow, created bool, err error) {
	if followerID == targetID {
		return nil, false, xerrors.New(ErrSelfFollow)
	}

	err = c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		if _, err := c.store.GetUserByID(txCtx, targetID); err != nil {
			return notFoundOr(err)
		}

		existing, err := c.store.GetFollow(txCtx, followerID, targetID)
		switch {
		case err == nil:
			follow = existing
			return nil
		case !errors.Is(err, data.ErrNoRecord):
			return err
		}

		edge := &models.Follow{FollowerID: followerID, FollowingID: targetID, CreatedAt: c.now()}
		err = c.store.InsertFollow(txCtx, edge)
		switch {
		case err == nil:
			follow, created = edge, true
			return nil
		case errors.Is(err, data.ErrDuplicateEdge):
			// A concurrent request won the race.
			follow, err = c.store.GetFollow(txCtx, followerID, targetID)
			return err
		case errors.Is(err, data.ErrSelfReference):
			return xerrors.New(ErrSelfFollow)
		default:
			return notFoundOr(err)
		}
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		c.log.Info("User followed", slog.Int64("follower_id", followerID), slog.Int64("following_id", targetID))
	}
	return follow, created, nil
}

func (c *Core) Unfollow(ctx context.Context, followerID, targetID int64) error {
	if followerID == targetID {
		return xerrors.New(ErrSelfFollow)
	}

	err := c.store.DoTransactionally(ctx, func(txCtx context.Context) error {
		if _, err := c.store.GetUserByID(txCtx, targetID); err != nil {
			return notFoundOr(err)
		}

		deleted, err := c.store.DeleteFollow(txCtx, followerID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return xerrors.New(ErrNotFollowing)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("User unfollowed", slog.Int64("follower_id", followerID), slog.Int64("following_id", targetID))
	return nil
}
