package api

import "github.com/pkg/errors"

// Common error types for backend responses.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)
