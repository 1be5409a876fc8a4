// Package lifecycle owns the donation state machine. Every status
// mutation in the system corresponds to one of its events; the
// postgres store encodes the guards in conditional UPDATE predicates,
// the memory store applies them through Apply.
package lifecycle

import (
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/models"
)

// Event is a requested transition on a donation.
type Event string

const (
	EventAccept   Event = "accept"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// transitions is the full set of legal moves. Anything absent here is
// a Conflict. There is deliberately no path out of accepted back to
// available: claims are permanent once made.
var transitions = map[models.DonationStatus]map[Event]models.DonationStatus{
	models.DonationAvailable: {
		EventAccept: models.DonationAccepted,
		EventCancel: models.DonationCancelled,
	},
	models.DonationAccepted: {
		EventComplete: models.DonationCompleted,
	},
}

// Next returns the state reached by applying event to from, or a
// Conflict error when the transition is illegal.
func Next(from models.DonationStatus, event Event) (models.DonationStatus, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return "", apperrors.Conflict("cannot %s donation in status %q", event, from)
}

// Terminal reports whether no further transitions exist from s.
func Terminal(s models.DonationStatus) bool {
	return len(transitions[s]) == 0
}

// Apply moves d through event at the given instant, maintaining the
// timestamp invariants: accepted_at is set exactly once on accept,
// completed_at exactly once on complete, and a cancelled donation
// carries neither.
func Apply(d *models.Donation, event Event, now time.Time) error {
	to, err := Next(d.Status, event)
	if err != nil {
		return err
	}
	d.Status = to
	switch event {
	case EventAccept:
		at := now
		d.AcceptedAt = &at
	case EventComplete:
		at := now
		d.CompletedAt = &at
	}
	return nil
}
