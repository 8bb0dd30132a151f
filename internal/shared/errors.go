package shared

import (
	"errors"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found. Aliased to the httpx
	// sentinel so RespondError maps repository errors without rewrapping.
	ErrNotFound = httpx.ErrNotFound
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
