package models

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the 1:1 extension of a User. It carries no counters: every count
// shown next to a profile is computed from the edges, see UserCounts.
type Profile struct {
	Bio       string
	AvatarURL *string
}

type UserCounts struct {
	Followers     int64
	Following     int64
	Posts         int64
	LikesGiven    int64
	LikesReceived int64
}

type Post struct {
	ID        int64
	UserID    int64
	Caption   string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Computed per query from the likes table, never stored.
	TotalLikes  int64
	RecentLikes int64
}

// Follow is the directed edge FollowerID -> FollowingID.
type Follow struct {
	ID          int64
	FollowerID  int64
	FollowingID int64
	CreatedAt   time.Time
}

type Like struct {
	ID        int64
	UserID    int64
	PostID    int64
	CreatedAt time.Time
}
