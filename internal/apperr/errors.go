// Package apperr holds the sentinel errors shared across libris packages.
package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid identifier")
)
