package data

import (
	"cmp"
	"slices"
	"time"

	"github.com/siahsang/snapfeed/models"
)

// The comparators below are the in-process twin of the ORDER BY clauses in
// postgres_posts.go. Both must give the same total order.

func compareRecent(a, b *models.Post) int {
	return compareNewestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
}

func comparePopular(a, b *models.Post) int {
	if c := cmp.Compare(b.TotalLikes, a.TotalLikes); c != 0 {
		return c
	}
	return compareRecent(a, b)
}

func compareTrending(a, b *models.Post) int {
	if c := cmp.Compare(b.RecentLikes, a.RecentLikes); c != 0 {
		return c
	}
	return comparePopular(a, b)
}

// compareNewestFirst orders by timestamp DESC then id DESC.
func compareNewestFirst(aAt time.Time, aID int64, bAt time.Time, bID int64) int {
	if c := bAt.Compare(aAt); c != 0 {
		return c
	}
	return cmp.Compare(bID, aID)
}

func sortPosts(posts []*models.Post, order PostOrder) {
	switch order {
	case OrderPopular:
		slices.SortFunc(posts, comparePopular)
	case OrderTrending:
		slices.SortFunc(posts, compareTrending)
	default:
		slices.SortFunc(posts, compareRecent)
	}
}

func sortFollows(follows []*models.Follow) {
	slices.SortFunc(follows, func(a, b *models.Follow) int {
		return compareNewestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
}

func sortLikes(likes []*models.Like) {
	slices.SortFunc(likes, func(a, b *models.Like) int {
		return compareNewestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
}

// orderByClause returns the SQL ordering matching sortPosts. It expects the
// total_likes and recent_likes output columns of postSelect.
func orderByClause(order PostOrder) string {
	switch order {
	case OrderPopular:
		return "total_likes DESC, p.created_at DESC, p.id DESC"
	case OrderTrending:
		return "recent_likes DESC, total_likes DESC, p.created_at DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}
