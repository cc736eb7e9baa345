package core

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/auth"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/utils/collectionutils"
	"github.com/siahsang/snapfeed/internal/utils/stringutils"
	"github.com/siahsang/snapfeed/internal/validator"
	"github.com/siahsang/snapfeed/models"
)

const (
	minUsernameChars = 3
	maxUsernameChars = 150
	minPasswordChars = 8
	maxBioChars      = 500
)

// UserCard is a user together with the counts computed from its edges.
type UserCard struct {
	User   *models.User
	Counts models.UserCounts
}

type UserPage struct {
	Items  []*UserCard
	Count  int64
	Filter filter.Filter
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	Bio             string
	AvatarURL       *string
}

// ProfileInput holds a partial update. Nil fields are left unchanged; an
// empty AvatarURL clears the avatar.
type ProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
}

func validateUsername(v *validator.Validator, username string) {
	n := utf8.RuneCountInString(username)
	v.Check(username != "", "username", "must be provided")
	v.Check(n >= minUsernameChars, "username", "must be at least 3 characters long")
	v.Check(n <= maxUsernameChars, "username", "must not be more than 150 characters long")
	v.Check(v.IsMatch(username, validator.UsernameRX), "username", "may contain only letters, digits and @/./+/-/_")
}

func validateProfile(v *validator.Validator, bio string, avatarURL *string) {
	v.CheckMaxChars(bio, maxBioChars, "bio", "must not be more than 500 characters long")
	if avatarURL != nil {
		v.CheckAbsoluteURL(*avatarURL, "avatar_url", "must be a valid URL")
	}
}

func (c *Core) RegisterUser(ctx context.Context, in RegisterInput) (*UserCard, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Bio = strings.TrimSpace(in.Bio)
	if stringutils.TrimToEmpty(in.AvatarURL) == "" {
		in.AvatarURL = nil
	}

	v := validator.New()
	validateUsername(v, in.Username)
	v.Check(in.Email != "", "email", "must be provided")
	v.CheckEmail(in.Email, "must be a valid email address")
	v.Check(in.Password != "", "password", "must be provided")
	v.Check(utf8.RuneCountInString(in.Password) >= minPasswordChars, "password", "must be at least 8 characters long")
	v.Check(in.Password == in.PasswordConfirm, "password_confirm", "passwords don't match")
	validateProfile(v, in.Bio, in.AvatarURL)
	if !v.IsValid() {
		return nil, newValidationError(v)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := c.now()
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Profile: models.Profile{
			Bio:       in.Bio,
			AvatarURL: in.AvatarURL,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.store.InsertUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			return nil, xerrors.New(ErrDuplicateUsername)
		case errors.Is(err, data.ErrDuplicateEmail):
			return nil, xerrors.New(ErrDuplicateEmail)
		default:
			return nil, err
		}
	}

	c.log.Info("User registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return &UserCard{User: user}, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords are reported the same way.
func (c *Core) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	v := validator.New()
	v.CheckNotBlank(username, "username", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.IsValid() {
		return nil, newValidationError(v)
	}

	user, err := c.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, data.ErrNoRecord) {
			return nil, xerrors.New(ErrInvalidCredentials)
		}
		return nil, err
	}

	match, err := auth.IsPasswordMatch(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, xerrors.New(ErrInvalidCredentials)
	}
	return user, nil
}

func (c *Core) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := c.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

// ResolveUser finds a user by numeric id or, failing that, by username.
func (c *Core) ResolveUser(ctx context.Context, ref string) (*models.User, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		user, err := c.store.GetUserByID(ctx, id)
		if err == nil || !errors.Is(err, data.ErrNoRecord) {
			return user, err
		}
	}
	user, err := c.store.GetUserByUsername(ctx, ref)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return user, nil
}

func (c *Core) GetUser(ctx context.Context, id int64) (*UserCard, error) {
	user, err := c.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cards, err := c.userCards(ctx, []*models.User{user})
	if err != nil {
		return nil, err
	}
	return cards[0], nil
}

func (c *Core) ListUsers(ctx context.Context, f filter.Filter) (*UserPage, error) {
	users, total, err := c.store.ListUsers(ctx, f)
	if err != nil {
		return nil, err
	}
	cards, err := c.userCards(ctx, users)
	if err != nil {
		return nil, err
	}
	return &UserPage{Items: cards, Count: total, Filter: f}, nil
}

func (c *Core) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*UserCard, error) {
	user, err := c.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		user.Profile.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.AvatarURL != nil {
		if avatar := stringutils.TrimToEmpty(in.AvatarURL); avatar == "" {
			user.Profile.AvatarURL = nil
		} else {
			user.Profile.AvatarURL = &avatar
		}
	}

	v := validator.New()
	v.CheckEmail(user.Email, "must be a valid email address")
	validateProfile(v, user.Profile.Bio, user.Profile.AvatarURL)
	if !v.IsValid() {
		return nil, newValidationError(v)
	}

	user.UpdatedAt = c.now()
	if err := c.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateEmail):
			return nil, xerrors.New(ErrDuplicateEmail)
		default:
			return nil, notFoundOr(err)
		}
	}

	c.log.Info("User updated successfully", slog.Int64("user_id", user.ID), slog.String("email", user.Email))
	return c.GetUser(ctx, userID)
}

// userCards attaches computed counts to users, keeping their order.
func (c *Core) userCards(ctx context.Context, users []*models.User) ([]*UserCard, error) {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := c.store.UserCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]*UserCard, len(users))
	for i, u := range users {
		cards[i] = &UserCard{
			User:   u,
			Counts: collectionutils.GetOrDefault(counts, u.ID, models.UserCounts{}),
		}
	}
	return cards, nil
}
