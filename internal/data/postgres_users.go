package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/databaseutils"
	"github.com/siahsang/snapfeed/internal/utils/stringutils"
	"github.com/siahsang/snapfeed/models"
)

const userSelect = `
	SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password,
	       u.created_at, u.updated_at, COALESCE(p.bio, ''), p.avatar_url
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.id
`

func scanUser(rows *sql.Rows) (*models.User, error) {
	user := &models.User{}
	if err := rows.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Profile.Bio,
		&user.Profile.AvatarURL,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}

func mapUserConstraint(err error) error {
	pqErr, ok := asPQError(err)
	if !ok || pqErr.Code != pqUniqueViolation {
		return xerrors.New(err)
	}
	switch pqErr.Constraint {
	case "users_email_key":
		return xerrors.New(ErrDuplicateEmail)
	case "users_username_key":
		return xerrors.New(ErrDuplicateUsername)
	default:
		return xerrors.New(err)
	}
}

func (s *PostgresStore) InsertUser(ctx context.Context, user *models.User) error {
	const insertUserSQL = `
		INSERT INTO users (username, email, first_name, last_name, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	const insertProfileSQL = `
		INSERT INTO profiles (user_id, bio, avatar_url)
		VALUES ($1, $2, $3)
	`

	return s.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		_, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, txCtx, insertUserSQL, func(rows *sql.Rows) (*models.User, error) {
			if err := rows.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
				return nil, xerrors.New(err)
			}
			return user, nil
		}, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, stamp(user.CreatedAt))
		if err != nil {
			return mapUserConstraint(err)
		}

		if _, err := databaseutils.ExecuteUpdate(s.sqlTemplate, txCtx, insertProfileSQL, user.ID, user.Profile.Bio, user.Profile.AvatarURL); err != nil {
			return xerrors.New(err)
		}
		return nil
	})
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user, err := databaseutils.ExecuteSingleQuery(s.sqlTemplate, ctx, userSelect+where, scanUser, arg)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(ErrNoRecord)
		default:
			return nil, xerrors.New(err)
		}
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "WHERE u.id = $1", id)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "WHERE u.username = $1", username)
}

func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	placeholders, args := stringutils.InClause(ids, 1)
	query := fmt.Sprintf("%s WHERE u.id IN (%s)", userSelect, placeholders)

	users, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return users, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, page filter.Filter) ([]*models.User, int64, error) {
	query := userSelect + `
		ORDER BY u.username ASC, u.id ASC
		LIMIT $1 OFFSET $2
	`
	users, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanUser, limitArg(page), page.Offset)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}

	total, err := databaseutils.QueryInt64(s.sqlTemplate, ctx, `SELECT count(*) FROM users`)
	if err != nil {
		return nil, 0, xerrors.New(err)
	}
	return users, total, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	const updateUserSQL = `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`
	const upsertProfileSQL = `
		INSERT INTO profiles (user_id, bio, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET bio = EXCLUDED.bio, avatar_url = EXCLUDED.avatar_url
	`

	return s.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		user.UpdatedAt = stamp(user.UpdatedAt)
		affected, err := databaseutils.ExecuteUpdate(s.sqlTemplate, txCtx, updateUserSQL,
			user.Email, user.FirstName, user.LastName, user.UpdatedAt, user.ID)
		if err != nil {
			return mapUserConstraint(err)
		}
		if affected == 0 {
			return xerrors.New(ErrNoRecord)
		}

		if _, err := databaseutils.ExecuteUpdate(s.sqlTemplate, txCtx, upsertProfileSQL, user.ID, user.Profile.Bio, user.Profile.AvatarURL); err != nil {
			return xerrors.New(err)
		}
		return nil
	})
}

func (s *PostgresStore) UserCounts(ctx context.Context, ids []int64) (map[int64]models.UserCounts, error) {
	const query = `
		SELECT u.id,
		       (SELECT count(*) FROM follows f WHERE f.following_id = u.id),
		       (SELECT count(*) FROM follows f WHERE f.follower_id = u.id),
		       (SELECT count(*) FROM posts p WHERE p.user_id = u.id),
		       (SELECT count(*) FROM likes l WHERE l.user_id = u.id),
		       (SELECT count(*) FROM likes l JOIN posts p ON p.id = l.post_id WHERE p.user_id = u.id)
		FROM users u
		WHERE u.id = ANY($1)
	`

	type row struct {
		id     int64
		counts models.UserCounts
	}
	rows, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, func(rows *sql.Rows) (row, error) {
		var r row
		err := rows.Scan(&r.id, &r.counts.Followers, &r.counts.Following, &r.counts.Posts,
			&r.counts.LikesGiven, &r.counts.LikesReceived)
		return r, err
	}, int64Array(ids))
	if err != nil {
		return nil, xerrors.New(err)
	}

	counts := make(map[int64]models.UserCounts, len(rows))
	for _, r := range rows {
		counts[r.id] = r.counts
	}
	return counts, nil
}

func (s *PostgresStore) MostFollowedUsers(ctx context.Context, exclude []int64, limit int) ([]*models.User, error) {
	query := userSelect + `
		WHERE u.id <> ALL($1)
		ORDER BY (SELECT count(*) FROM follows f WHERE f.following_id = u.id) DESC, u.id ASC
		LIMIT $2
	`
	users, err := databaseutils.ExecuteQuery(s.sqlTemplate, ctx, query, scanUser, int64Array(exclude), limitArg(filter.Filter{Limit: int64(limit)}))
	if err != nil {
		return nil, xerrors.New(err)
	}
	return users, nil
}
