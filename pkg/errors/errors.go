package nearchat_errors

import "errors"

// Common errors shared across layers. Repositories map driver errors onto
// these sentinels so services never import gorm.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBanned        = errors.New("banned from room")
	ErrConflict      = errors.New("conflict")
)
