// Package repository defines the persistence surface the services are
// written against. Implementations live in the postgres and memory
// subpackages; the donation row is the only contended resource and is
// only ever mutated through the conditional updates below.
package repository

import (
	"context"
	"time"

	"foodlink-backend/internal/models"
)

// Store provides all-or-nothing multi-write transactions. Repository
// methods called with the context passed to fn join the transaction.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ListQuery describes a listing page request.
type ListQuery struct {
	// Area filters by case-insensitive substring match when non-empty.
	Area string
	// Status defaults to available when empty.
	Status models.DonationStatus
	// Sort is one of "created_at" (default, descending),
	// "pickup_time" (preferred pickup time ascending), "area"
	// (ascending).
	Sort string
	// Page is 1-indexed.
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip for the requested page.
func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.PageSize
}

// DonationRepository persists donations and their photo child rows.
// The Mark* methods are atomic conditional updates: they apply their
// patch only while the predicate still holds and report whether a row
// was affected. Zero-affected is not an error; the caller decides what
// losing the race means.
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id string) (*models.Donation, error)
	List(ctx context.Context, query ListQuery) ([]*models.Donation, error)

	// MarkAccepted sets status=accepted, accepted_at=at where the
	// donation is still available.
	MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkCompleted sets status=completed, completed_at=at where the
	// donation is currently accepted.
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkCancelled sets status=cancelled where the donation is still
	// available and owned by donorID.
	MarkCancelled(ctx context.Context, id, donorID string) (bool, error)
}

// AcceptanceRepository persists volunteer claims.
type AcceptanceRepository interface {
	Create(ctx context.Context, acceptance *models.Acceptance) error
	GetByDonationAndVolunteer(ctx context.Context, donationID, volunteerID string) (*models.Acceptance, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) error
}
