package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/core"
)

type AppError struct {
	ErrorStack   error
	ErrorMessage string
	ErrorDetails map[string]string
}

// badRequestErrors are the core failures the client can fix by changing the
// request.
var badRequestErrors = []error{
	core.ErrSelfFollow,
	core.ErrOwnPost,
	core.ErrNotFollowing,
	core.ErrNotLiked,
}

// handleCoreError maps an error returned by a core operation to a response.
func (app *application) handleCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		app.failedValidationResponse(w, r, validationErr.Errors)
		return
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			app.badRequestResponse(w, r, &AppError{ErrorMessage: target.Error(), ErrorStack: err})
			return
		}
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, core.ErrDuplicateUsername):
		app.badRequestResponse(w, r, &AppError{
			ErrorDetails: map[string]string{"username": "Username is already in use"},
			ErrorStack:   err,
		})
	case errors.Is(err, core.ErrDuplicateEmail):
		app.badRequestResponse(w, r, &AppError{
			ErrorDetails: map[string]string{"email": "Email address is already in use"},
			ErrorStack:   err,
		})
	case errors.Is(err, core.ErrPermission):
		app.errorResponse(w, r, http.StatusForbidden, &AppError{ErrorMessage: core.ErrPermission.Error()})
	case errors.Is(err, core.ErrInvalidCredentials):
		app.errorResponse(w, r, http.StatusUnauthorized, &AppError{ErrorMessage: core.ErrInvalidCredentials.Error()})
	default:
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, appError *AppError) {
	app.errorResponse(w, r, http.StatusBadRequest, appError)
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, &AppError{
		ErrorMessage: "The request failed validation.",
		ErrorDetails: errs,
	})
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, &AppError{
		ErrorMessage: "The requested resource could not be found.",
	})
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, &AppError{
		ErrorMessage: "The " + r.Method + " method is not supported for this resource.",
	})
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", "Token")
	app.errorResponse(w, r, http.StatusUnauthorized, &AppError{
		ErrorMessage: "Invalid or missing authentication token.",
		ErrorStack:   err,
	})
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusUnauthorized, &AppError{
		ErrorMessage: "You must be authenticated to access this resource.",
		ErrorStack:   err,
	})
}

func (app *application) internalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusInternalServerError, &AppError{ErrorStack: err,
		ErrorMessage: "An internal server error occurred.",
	})
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, appError *AppError) {
	errorDetails := envelope{
		"errorMessage": appError.ErrorMessage,
		"errorDetails": appError.ErrorDetails,
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	var attrs []slog.Attr
	attrs = append(attrs, slog.String("request_url", r.URL.String()))
	attrs = append(attrs, slog.String("request_method", r.Method))
	attrs = append(attrs, slog.Int("status", status))
	if requestID := w.Header().Get(requestIDHeader); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if appError.ErrorStack != nil {
		attrs = append(attrs, slog.String("stack", xerrors.Sprint(appError.ErrorStack)))
	}

	for key, valueData := range appError.ErrorDetails {
		attrs = append(attrs, slog.Any(key, valueData))
	}

	app.logger.LogAttrs(r.Context(), level, "Error in handling request", attrs...)

	err := app.writeJSON(w, status, errorDetails, nil)
	if err != nil {
		app.logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	// Append a newline to make it easier to view in terminal applications.
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		app.logger.Error(err.Error())
		return err
	}

	return nil
}
