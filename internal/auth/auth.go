package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/web"
	"github.com/siahsang/snapfeed/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	UserCtxKey = "user_data"

	bcryptCost = 12
)

var (
	NotAuthenticatedUser = xerrors.Message("Not authenticated user")
	ErrInvalidToken      = xerrors.Message("invalid token")
)

type Auth struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func New(secret string, tokenTTL time.Duration) *Auth {
	return &Auth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func HashPassword(plainTextPassword string) ([]byte, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcryptCost)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return hashedPassword, nil
}

func IsPasswordMatch(hash []byte, plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(plainTextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, xerrors.New(err)
	}

	return true, nil
}

func (auth *Auth) GenerateToken(user *models.User) (string, error) {
	issuedAt := auth.now()
	claim := UserClaim{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(auth.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	signedString, err := token.SignedString(auth.secret)
	if err != nil {
		return "", xerrors.New(err)
	}
	return signedString, nil
}

func (auth *Auth) Authenticate(tokenString string) (*UserClaim, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &UserClaim{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.New("unexpected signing method")
		}
		return auth.secret, nil
	}, jwt.WithTimeFunc(auth.now))

	if err != nil {
		return nil, xerrors.Newf("%w: %v", ErrInvalidToken, err)
	}

	claim, ok := parsedToken.Claims.(*UserClaim)
	if !ok || !parsedToken.Valid {
		return nil, xerrors.New(ErrInvalidToken)
	}
	return claim, nil
}

func (auth *Auth) GetAuthenticatedUser(r *http.Request) (*models.User, error) {
	user, ok := web.GetValueFromContext[*models.User](r, UserCtxKey)
	if !ok {
		return nil, NotAuthenticatedUser
	}

	return user, nil
}

func (auth *Auth) SetAuthenticatedUser(r *http.Request, user *models.User) *http.Request {
	return web.AddValueToContext(r, UserCtxKey, user)
}

func (auth *Auth) IsUserAuthenticated(r *http.Request) bool {
	_, err := auth.GetAuthenticatedUser(r)
	return err == nil
}
