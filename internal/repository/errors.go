// Package repository defines the persistence contract of the PMS and its
// MySQL implementation.  The in-memory implementation lives in the
// memory subpackage.  Sentinel errors declared here are shared by both
// backends so that the service layer can translate them without caring
// which store is configured.
package repository

import "errors"

// ErrNotFound is returned when a room, guest or booking lookup matches
// no record.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a guest is inserted with an email
// that already belongs to another guest.  Callers recover by loading the
// existing guest.
var ErrDuplicateEmail = errors.New("guest email already exists")

// ErrTxDone is returned when a transaction is used after Commit or
// Rollback.
var ErrTxDone = errors.New("transaction already finished")
