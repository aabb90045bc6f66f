package handler

import (
	"context"
	"net/http"

	"github.com/aqhub/aqhub/internal/api/middleware"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// requestTraceID retrieves the request ID for problem responses.
func requestTraceID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
