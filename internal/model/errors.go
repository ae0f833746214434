package model

import (
	"errors"
	"fmt"
)

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

// InviteCancelledError rejects a response against an invite that already
// reached its terminal CANCELLED state.
type InviteCancelledError struct {
	EventID int64
}

func (e *InviteCancelledError) Error() string {
	return fmt.Sprintf("invite for event %v is cancelled", e.EventID)
}

// StaleInviteError rejects a response made against a superseded sequence,
// i.e. the organizer rescheduled after the responder last saw the invite.
type StaleInviteError struct {
	Stored   int64
	Incoming int64
}

func (e *StaleInviteError) Error() string {
	return fmt.Sprintf("invite superseded: responding to sequence %v, stored sequence %v", e.Incoming, e.Stored)
}

// ValidationError carries per-field messages for a malformed broadcast spec.
// It is surfaced to the caller before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}
