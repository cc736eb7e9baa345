package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/databaseutils"
	"github.com/siahsang/snapfeed/models"
)

// mapEdgeInsertError converts constraint failures of an edge insert. A
// uniqueness conflict never gets here: inserts use ON CONFLICT DO NOTHING so
// the surrounding transaction stays usable.
func mapEdgeInsertError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return xerrors.New(ErrDuplicateEdge)
	case isViolation(err, pqCheckViolation):
		return xerrors.New(ErrSelfReference)
	case isViolation(err, pqForeignKeyViolation):
		return xerrors.New(ErrNoRecord)
	default:
		return xerrors.New(err)
	}
}

// Follows

func scanFollow(rows *sql.Rows) (*models.Follow, error) {
	follow := &models.Follow{}
	if err := rows.Scan(&follow.ID, &follow.FollowerID, &follow.FollowingID, &follow.CreatedAt); err != nil {
		return nil, xerrors.New(err)
	}
	return follow, nil
}

func (s *PostgresStore) InsertFollow(ctx context.Context, follow *models.Follow) error {
	const insertSQL = `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, following_id) DO NOTHING
		RETURNING id, follower_id, following_id, created_at
	`

	created, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, insertSQL, scanFollow,
		follow.FollowerID, follow.FollowingID, stamp(follow.CreatedAt))
	if err != nil {
		return mapEdgeInsertError(err)
	}
	*follow = *created
	return nil
}

func (s *PostgresStore) GetFollow(ctx context.Context, followerID, followingID int64) (*models.Follow, error) {
	const query = `
		SELECT id, follower_id, following_id, created_at
		FROM follows
		WHERE follower_id = $1 AND following_id = $2
	`

	follow, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, query, scanFollow, followerID, followingID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecord)
		default:
			return nil, xerrors.New(err)
		}
	}
	return follow, nil
}

func (s *PostgresStore) DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error) {
	const deleteSQL = `
		DELETE FROM follows
		WHERE follower_id = $1 AND following_id = $2
	`

	affected, err := databaseutils.ExecuteUpdate(s.sqlTemplate, ctx, deleteSQL, followerID, followingID)
	if err != nil {
		return false, xerrors.New(err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	const query = `
		SELECT following_id
		FROM follows
		WHERE follower_id = $1
		ORDER BY created_at DESC, id DESC
	`

	ids, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		var id int64
		err := rows.Scan(&id)
		return id, err
	}, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (s *PostgresStore) ListFollows(ctx context.Context, userID int64, dir EdgeDirection, page filter.Filter) ([]*models.Follow, int64, error) {
	column := "follower_id"
	if dir == ByTarget {
		column = "following_id"
	}

	query := `
		SELECT id, follower_id, following_id, created_at
		FROM follows
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	follows, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanFollow, userID, limitArg(page), page.Offset)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}

	total, err := databaseutils.QueryInt64(s.sqlTemplate, ctx, `SELECT count(*) FROM follows WHERE `+column+` = $1`, userID)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}
	return follows, total, nil
}

// Likes

func scanLike(rows *sql.Rows) (*models.Like, error) {
	like := &models.Like{}
	if err := rows.Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt); err != nil {
		return nil, xerrors.New(err)
	}
	return like, nil
}

func (s *PostgresStore) InsertLike(ctx context.Context, like *models.Like) error {
	const insertSQL = `
		INSERT INTO likes (user_id, post_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING id, user_id, post_id, created_at
	`

	created, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, insertSQL, scanLike,
		like.UserID, like.PostID, stamp(like.CreatedAt))
	if err != nil {
		return mapEdgeInsertError(err)
	}
	*like = *created
	return nil
}

func (s *PostgresStore) GetLike(ctx context.Context, userID, postID int64) (*models.Like, error) {
	const query = `
		SELECT id, user_id, post_id, created_at
		FROM likes
		WHERE user_id = $1 AND post_id = $2
	`

	like, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, query, scanLike, userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecord)
		default:
			return nil, xerrors.New(err)
		}
	}
	return like, nil
}

func (s *PostgresStore) DeleteLike(ctx context.Context, userID, postID int64) (bool, error) {
	affected, err := databaseutils.ExecuteUpdate(s.sqlTemplate, ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return false, xerrors.New(err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) ListLikes(ctx context.Context, id int64, dir EdgeDirection, page filter.Filter) ([]*models.Like, int64, error) {
	column := "user_id"
	if dir == ByTarget {
		column = "post_id"
	}

	query := `
		SELECT id, user_id, post_id, created_at
		FROM likes
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	likes, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanLike, id, limitArg(page), page.Offset)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}

	total, err := databaseutils.QueryInt64(s.sqlTemplate, ctx, `SELECT count(*) FROM likes WHERE `+column+` = $1`, id)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}
	return likes, total, nil
}

func (s *PostgresStore) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}

	const query = `
		SELECT post_id
		FROM likes
		WHERE user_id = $1 AND post_id = ANY($2)
	`
	ids, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		var id int64
		err := rows.Scan(&id)
		return id, err
	}, userID, int64Array(postIDs))
	if err != nil {
		return nil, xerrors.New(err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
