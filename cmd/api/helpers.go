package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/filter"
	"github.com/siahsang/snapfeed/internal/validator"
	"github.com/siahsang/snapfeed/models"
)

type envelope map[string]any

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBytes = 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {

		var (
			syntaxError           *json.SyntaxError
			unmarshalTypeError    *json.UnmarshalTypeError
			invalidUnmarshalError *json.InvalidUnmarshalError
			maxBytesError         *http.MaxBytesError
		)

		switch {
		case errors.As(err, &syntaxError):
			return xerrors.Newf("body contains badly-formed JSON at (character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return xerrors.Newf("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return xerrors.Newf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return xerrors.Newf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return xerrors.Newf("body must not be empty")

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return xerrors.Newf("body contains unknown key %s", fieldName)

		case errors.As(err, &maxBytesError):
			return xerrors.Newf("body must not be larger than %d bytes", maxBytes)

		case errors.As(err, &invalidUnmarshalError):
			panic(err)

		default:
			return xerrors.Newf("error decoding JSON: %w", err)
		}
	}

	if err := decoder.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		return xerrors.New("body must contain only a single JSON value")
	}

	return nil
}

// decodeBody reads the request body into dst and answers 400 itself when it
// cannot. It reports whether the handler may continue.
func (app *application) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.readJSON(w, r, dst); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return false
	}
	return true
}

func (app *application) readInt(qs url.Values, key string, defaultValue int64, v *validator.Validator) int64 {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}
	return i
}

// readFilter reads limit and offset from the query string. It answers 422
// itself on bad values and reports whether the handler may continue.
func (app *application) readFilter(w http.ResponseWriter, r *http.Request) (filter.Filter, bool) {
	v := validator.New()
	query := r.URL.Query()

	limit := app.readInt(query, "limit", filter.DefaultLimit, v)
	offset := app.readInt(query, "offset", 0, v)

	filters := filter.NewFilter(limit, offset)
	filter.ValidateFilters(filters, v)
	if !v.IsValid() {
		app.failedValidationResponse(w, r, v.Errors)
		return filters, false
	}
	return filters, true
}

// readIDParam parses a positive numeric route parameter. Anything else is
// answered with 404.
func (app *application) readIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id < 1 {
		app.notFoundResponse(w, r)
		return 0, false
	}
	return id, true
}

// readUserParam resolves the :user route parameter, which is an id or a
// username.
func (app *application) readUserParam(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ref := httprouter.ParamsFromContext(r.Context()).ByName("user")
	user, err := app.core.ResolveUser(r.Context(), ref)
	if err != nil {
		app.handleCoreError(w, r, err)
		return nil, false
	}
	return user, true
}

// currentUser returns the authenticated user. Routes reaching it are wrapped
// in requireAuthenticatedUser.
func (app *application) currentUser(r *http.Request) *models.User {
	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		panic("currentUser called on an unauthenticated route")
	}
	return user
}

func (app *application) respond(w http.ResponseWriter, r *http.Request, status int, data envelope) {
	if err := app.writeJSON(w, status, data, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// listEnvelope is the shape shared by every paginated list.
func listEnvelope(count int64, f filter.Filter, results any) envelope {
	meta := filter.NewMetadata(count, f)
	return envelope{
		"count":   meta.Count,
		"limit":   meta.Limit,
		"offset":  meta.Offset,
		"results": results,
	}
}
