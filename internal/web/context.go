package web

import (
	"context"
	"net/http"
)

type contextKey string

func AddValueToContext(r *http.Request, key string, value any) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey(key), value)
	return r.WithContext(ctx)
}

func GetValueFromContext[T any](r *http.Request, key string) (T, bool) {
	tVal, ok := r.Context().Value(contextKey(key)).(T)
	return tVal, ok
}
