// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to mutate a place created by someone else, while
// ErrEmailExists signals that a signup collides with an existing
// account.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a place they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a user row cannot be inserted
// because the email address is already registered. Handlers should
// translate this into an HTTP 422 response.
var ErrEmailExists = errors.New("email already exists")

// ErrPlaceNotFound is returned when a place lookup by id matches no
// row. Handlers should translate this into an HTTP 404 response.
var ErrPlaceNotFound = errors.New("place not found")

// ErrUserNotFound is returned when a user lookup by id matches no
// row. On authenticated paths this indicates a verified token whose
// subject no longer exists, which is a server-side inconsistency.
var ErrUserNotFound = errors.New("user not found")
