// Package repository contains data access logic separated from HTTP handlers.
// Ownership is enforced here: every read or mutation of an owned row carries
// an `AND user_id = ?` predicate, so a row belonging to someone else is
// indistinguishable from a missing row.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that already has
// an account. Handlers translate this into a validation-style 400 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller. Handlers translate this into a 404 response.
var ErrNotFound = errors.New("not found")
