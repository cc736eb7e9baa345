package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/utils/databaseutils"
	"github.com/siahsang/snapfeed/models"
)

// postFrom annotates every post with its like counts. $1 is the start of the
// recent-likes window.
const postFrom = `
	FROM posts p
	LEFT JOIN (
		SELECT post_id,
		       count(*) AS total,
		       count(*) FILTER (WHERE created_at >= $1) AS recent
		FROM likes
		GROUP BY post_id
	) lc ON lc.post_id = p.id
`

const postSelect = `
	SELECT p.id, p.user_id, p.caption, p.image_url, p.created_at, p.updated_at,
	       COALESCE(lc.total, 0) AS total_likes, COALESCE(lc.recent, 0) AS recent_likes
` + postFrom

func scanPost(rows *sql.Rows) (*models.Post, error) {
	post := &models.Post{}
	if err := rows.Scan(
		&post.ID,
		&post.UserID,
		&post.Caption,
		&post.ImageURL,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.TotalLikes,
		&post.RecentLikes,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return post, nil
}

// postWhere renders the owner scope and the trending cut-off of q. Its
// placeholders start at $2.
func postWhere(q PostQuery) (string, []any) {
	var conditions []string
	args := []any{q.LikedSince}

	switch q.Scope {
	case OnlyOwners:
		args = append(args, int64Array(q.Owners))
		conditions = append(conditions, fmt.Sprintf("p.user_id = ANY($%d)", len(args)))
	case ExceptOwners:
		args = append(args, int64Array(q.Owners))
		conditions = append(conditions, fmt.Sprintf("p.user_id <> ALL($%d)", len(args)))
	}
	if q.Order == OrderTrending {
		conditions = append(conditions, "COALESCE(lc.recent, 0) > 0")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (s *PostgresStore) InsertPost(ctx context.Context, post *models.Post) error {
	const insertSQL = `
		INSERT INTO posts (user_id, caption, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	_, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, insertSQL, func(rows *sql.Rows) (*models.Post, error) {
		if err := rows.Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, xerrors.New(err)
		}
		return post, nil
	}, post.UserID, post.Caption, post.ImageURL, stamp(post.CreatedAt), stamp(post.UpdatedAt))
	if err != nil {
		if isViolation(err, pqForeignKeyViolation) {
			return xerrors.New(ErrNoRecord)
		}
		return xerrors.New(err)
	}
	post.TotalLikes, post.RecentLikes = 0, 0
	return nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	query := postSelect + "WHERE p.id = $2"

	post, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, query, scanPost, time.Time{}, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecord)
		default:
			return nil, xerrors.New(err)
		}
	}
	post.RecentLikes = 0
	return post, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, post *models.Post) error {
	const updateSQL = `
		UPDATE posts
		SET caption = $1, image_url = $2, updated_at = $3
		WHERE id = $4
		RETURNING user_id, created_at, updated_at
	`

	_, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, updateSQL, func(rows *sql.Rows) (*models.Post, error) {
		if err := rows.Scan(&post.UserID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, xerrors.New(err)
		}
		return post, nil
	}, post.Caption, post.ImageURL, stamp(post.UpdatedAt), post.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return xerrors.New(ErrNoRecord)
		default:
			return xerrors.New(err)
		}
	}
	return nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id int64) error {
	affected, err := databaseutils.ExecuteUpdate(s.sqlTemplate, ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return xerrors.New(err)
	}
	if affected == 0 {
		return xerrors.New(ErrNoRecord)
	}
	return nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	where, args := postWhere(q)
	args = append(args, limitArg(q.Page), q.Page.Offset)
	query := fmt.Sprintf("%s %s ORDER BY %s LIMIT $%d OFFSET $%d",
		postSelect, where, orderByClause(q.Order), len(args)-1, len(args))

	posts, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanPost, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (s *PostgresStore) CountPosts(ctx context.Context, q PostQuery) (int64, error) {
	where, args := postWhere(q)
	query := fmt.Sprintf("SELECT count(*) %s %s", postFrom, where)

	n, err := databaseutils.QueryInt64(s.sqlTemplate, ctx, query, args...)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return n, nil
}
