package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserIDHeader carries the caller's identity, set by the upstream gateway.
const UserIDHeader = "user-id"

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestID reuses a well-formed incoming X-Request-ID or generates one.
func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func userID(r *http.Request) string {
	return sanitizeInput(r.Header.Get(UserIDHeader))
}
