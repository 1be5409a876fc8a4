package postgres

import (
	"context"
	"fmt"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
)

// AcceptanceRepository handles database operations for acceptances.
type AcceptanceRepository struct {
	db *DB
}

// NewAcceptanceRepository creates a new acceptance repository.
func NewAcceptanceRepository(db *DB) *AcceptanceRepository {
	return &AcceptanceRepository{db: db}
}

// Create inserts an acceptance row.
func (r *AcceptanceRepository) Create(ctx context.Context, acceptance *models.Acceptance) error {
	query := `
		INSERT INTO acceptances (id, donation_id, volunteer_id, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.conn(ctx).Exec(ctx, query,
		acceptance.ID, acceptance.DonationID, acceptance.VolunteerID,
		acceptance.Status, acceptance.CreatedAt, acceptance.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create acceptance: %w", err)
	}
	return nil
}

// GetByDonationAndVolunteer retrieves the acceptance held by a
// volunteer on a donation, if any.
func (r *AcceptanceRepository) GetByDonationAndVolunteer(ctx context.Context, donationID, volunteerID string) (*models.Acceptance, error) {
	query := `
		SELECT id, donation_id, volunteer_id, status, created_at, completed_at
		FROM acceptances
		WHERE donation_id = $1 AND volunteer_id = $2
	`
	var acceptance models.Acceptance
	err := pgxscan.Get(ctx, r.db.conn(ctx), &acceptance, query, donationID, volunteerID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.NotFound("acceptance not found")
		}
		return nil, fmt.Errorf("failed to get acceptance: %w", err)
	}
	return &acceptance, nil
}

// MarkCompleted stamps an acceptance as completed.
func (r *AcceptanceRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.conn(ctx).Exec(ctx, `
		UPDATE acceptances
		SET status = $1, completed_at = $2
		WHERE id = $3
	`, models.AcceptanceCompleted, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark acceptance completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("acceptance not found")
	}
	return nil
}
