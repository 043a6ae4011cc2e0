// Package repository implements data access over the relational store.
// This file defines sentinel errors reused across the individual
// repositories so that handlers can branch on failure kinds without
// inspecting driver errors.
package repository

import "errors"

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint at the database level.  The handlers check uniqueness with a
// lookup before inserting; this sentinel is the backstop for the window
// between the lookup and the insert.  Handlers translate it into HTTP 409.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned by write operations that matched no row.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("record not found")
