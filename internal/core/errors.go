package core

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/validator"
)

var (
	ErrNotFound           = xerrors.Message("The requested resource could not be found")
	ErrSelfFollow         = xerrors.Message("You cannot follow yourself")
	ErrOwnPost            = xerrors.Message("You cannot like your own post")
	ErrNotFollowing       = xerrors.Message("You are not following this user")
	ErrNotLiked           = xerrors.Message("You have not liked this post")
	ErrPermission         = xerrors.Message("You do not have permission to perform this action")
	ErrDuplicateEmail     = xerrors.Message("A user with that email already exists")
	ErrDuplicateUsername  = xerrors.Message("A user with that username already exists")
	ErrInvalidCredentials = xerrors.Message("Invalid credentials")
)

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Errors))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Errors[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(v *validator.Validator) error {
	return &ValidationError{Errors: v.Errors}
}

// notFoundOr turns a missing store record into ErrNotFound and passes any
// other error through untouched.
func notFoundOr(err error) error {
	if errors.Is(err, data.ErrNoRecord) {
		return xerrors.New(ErrNotFound)
	}
	return err
}
