package usecase

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")

	// ErrSourceUnavailable means neither the network nor the cache produced a season document.
	ErrSourceUnavailable = crerr.New("season source unavailable")
)
