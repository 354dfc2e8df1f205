// Package repository defines the SQL persistence layer.  The sentinel
// errors below are shared across repositories so handlers can map failure
// scenarios to HTTP statuses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a row does not exist or is not visible to
// the caller.  Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, or one that is protected outright, such as
// deleting an admin account.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert collides with existing state,
// such as adding a song to a playlist twice.  Handlers translate this
// into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is a specific conflict for registration.
var ErrEmailExists = errors.New("email already exists")

// isDup reports whether err is a MySQL duplicate-key violation (1062).
func isDup(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
