package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/core"
)

const requestIDHeader = "X-Request-ID"

// authenticate accepts "Token <jwt>" and "Bearer <jwt>". Requests without an
// Authorization header pass through anonymously.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorization := r.Header.Get("Authorization")
		if authorization == "" {
			next.ServeHTTP(w, r)
			return
		}

		authorizationParts := strings.Fields(authorization)
		if len(authorizationParts) != 2 || (authorizationParts[0] != "Token" && authorizationParts[0] != "Bearer") {
			app.invalidAuthenticationTokenResponse(w, r, xerrors.New("Authentication header must be in the format 'Token <token>'"))
			return
		}

		claim, err := app.auth.Authenticate(authorizationParts[1])
		if err != nil {
			app.invalidAuthenticationTokenResponse(w, r, err)
			return
		}

		user, err := app.core.GetUserByID(r.Context(), claim.UserID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				app.invalidAuthenticationTokenResponse(w, r, err)
				return
			}
			app.internalErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, app.auth.SetAuthenticatedUser(r, user))
	})
}

func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !app.auth.IsUserAuthenticated(r) {
			app.authenticationRequiredResponse(w, r, xerrors.Newf("authentication required"))
			return
		}
		next(w, r)
	}
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.internalErrorResponse(w, r, xerrors.Newf("panic: %v", err))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// logRequest tags the request with an id, reusing the caller's when sent, and
// logs one line per completed request.
func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		app.logger.Debug("Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(app.config.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(next)
}
