package main

import "errors"

// ErrNotFound is returned when no record exists at the given id.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a payload violates its schema. Wrapped
// errors carry the first violation, already formatted for the wire.
var ErrValidation = errors.New("Validation error")

// ErrPreconditionMissing is returned when an update is attempted without a
// version token.
var ErrPreconditionMissing = errors.New("precondition missing")

// ErrVersionConflict is returned when the presented version token does not
// match the stored one; the record is left untouched.
var ErrVersionConflict = errors.New("version conflict")

// ErrZoneNotFound is returned when an assignment references a zone that does
// not exist.
var ErrZoneNotFound = errors.New("zone does not exist")

// ErrCheeseAssigned is returned when an assignment targets a cheese that is
// already bound to a zone.
var ErrCheeseAssigned = errors.New("cheese already assigned")

// ErrStaleBinding is returned when a transfer names a source binding that
// does not exist.
var ErrStaleBinding = errors.New("stale binding")

// Wire-level error messages.
const (
	msgNotFound       = "Not found"
	msgIfMatchMissing = "If-Match header missing"
	msgIfMatchInvalid = "If-Match header invalid"
	msgCheeseAssigned = "Cheese is already assigned to a zone"
	msgZoneNotFound   = "Zone %s does not exist"
	msgStaleBinding   = "Cheese %s is not assigned to zone %s"
)
