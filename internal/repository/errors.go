// Package repository implements MySQL persistence for workshop templates,
// slots and bookings.  This file defines sentinel errors shared across the
// repositories so that handlers can map failure scenarios onto precise HTTP
// responses with errors.Is comparisons.
package repository

import "errors"

// ErrTemplateNotFound is returned when a workshop template does not exist.
var ErrTemplateNotFound = errors.New("workshop template not found")

// ErrTemplateInactive is returned when a booking targets a template that
// was deactivated between slot selection and commit.  Handlers should tell
// the caller to pick another time.
var ErrTemplateInactive = errors.New("workshop template inactive")

// ErrSlotNotFound is returned when a persisted slot does not exist.
var ErrSlotNotFound = errors.New("workshop slot not found")

// ErrSlotFull is returned when a slot's capacity is exhausted at commit
// time.  This is an expected, recoverable outcome; handlers should respond
// with 409 and the caller should re-fetch the slot list.
var ErrSlotFull = errors.New("workshop slot full")

// ErrSlotCancelled is returned when a booking targets a slot that was
// cancelled between selection and commit.
var ErrSlotCancelled = errors.New("workshop slot cancelled")

// ErrNotAnOccurrence is returned when a booking or override targets a date
// the template's recurrence pattern never produces, or a date already in
// the past.  Accepting such a date would create a slot the expander never
// offers to anyone.
var ErrNotAnOccurrence = errors.New("date is not an occurrence of the workshop")

// ErrBookingNotFound is returned when no booking matches a reference.
var ErrBookingNotFound = errors.New("booking not found")

// ErrWriteConflict is returned after bounded retries when concurrent
// bookings keep colliding on the same slot record.  Clients may simply
// retry the request.
var ErrWriteConflict = errors.New("write conflict on workshop slot")

// ErrCapacityBelowBooked is returned when an administrator tries to shrink
// a slot's capacity below the number of seats already booked, which would
// break the booked_count <= capacity invariant.
var ErrCapacityBelowBooked = errors.New("capacity below booked count")
