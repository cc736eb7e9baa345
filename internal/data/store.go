package data

import (
	"context"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/models"
)

var (
	ErrNoRecord          = xerrors.Message("No record found")
	ErrDuplicateEmail    = xerrors.Message("Duplicate email")
	ErrDuplicateUsername = xerrors.Message("Duplicate username")
	ErrDuplicateEdge     = xerrors.Message("Duplicate edge")
	ErrSelfReference     = xerrors.Message("Edge references its own owner")
)

// OwnerScope restricts a post listing by owner.
type OwnerScope int

const (
	AllOwners OwnerScope = iota
	OnlyOwners
	ExceptOwners
)

type PostOrder int

const (
	// OrderRecent: created_at DESC, id DESC.
	OrderRecent PostOrder = iota
	// OrderPopular: total likes DESC, created_at DESC, id DESC.
	OrderPopular
	// OrderTrending: likes since LikedSince DESC, total likes DESC,
	// created_at DESC, id DESC. Posts with no like since LikedSince are left out.
	OrderTrending
)

type PostQuery struct {
	Scope      OwnerScope
	Owners     []int64
	Order      PostOrder
	LikedSince time.Time
	Page       filter.Filter
}

// EdgeDirection selects which endpoint of an edge a listing is keyed on.
type EdgeDirection int

const (
	// ByFollower lists the edges a user created (who they follow / what they liked).
	ByFollower EdgeDirection = iota
	// ByTarget lists the edges pointing at a user or post.
	ByTarget
)

// Store is the relation store. Every listing that returns edges orders them by
// created_at DESC, id DESC.
type Store interface {
	DoTransactionally(ctx context.Context, fn func(txCtx context.Context) error) error

	InsertUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	ListUsers(ctx context.Context, page filter.Filter) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UserCounts(ctx context.Context, ids []int64) (map[int64]models.UserCounts, error)
	// MostFollowedUsers orders by follower count DESC, id ASC.
	MostFollowedUsers(ctx context.Context, exclude []int64, limit int) ([]*models.User, error)

	InsertPost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context, q PostQuery) ([]*models.Post, error)
	CountPosts(ctx context.Context, q PostQuery) (int64, error)

	InsertFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID, followingID int64) (*models.Follow, error)
	DeleteFollow(ctx context.Context, followerID, followingID int64) (bool, error)
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollows(ctx context.Context, userID int64, dir EdgeDirection, page filter.Filter) ([]*models.Follow, int64, error)

	InsertLike(ctx context.Context, like *models.Like) error
	GetLike(ctx context.Context, userID, postID int64) (*models.Like, error)
	DeleteLike(ctx context.Context, userID, postID int64) (bool, error)
	// ListLikes keys on the liking user for ByFollower and on the post for ByTarget.
	ListLikes(ctx context.Context, id int64, dir EdgeDirection, page filter.Filter) ([]*models.Like, int64, error)
	LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}
