package postgres

import (
	"context"
	"fmt"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const donationColumns = `id, donor_id, status, food_type, approx_quantity, quantity_unit,
	area, pickup_address, preferred_pickup_time, contact_number,
	created_at, accepted_at, completed_at`

// DonationRepository handles database operations for donations and
// their photo child rows.
type DonationRepository struct {
	db *DB
}

// NewDonationRepository creates a new donation repository.
func NewDonationRepository(db *DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create inserts a donation together with its photos in one
// transaction. Photos are immutable after this point.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO donations (` + donationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		_, err := r.db.conn(ctx).Exec(ctx, query,
			donation.ID, donation.DonorID, donation.Status,
			donation.FoodType, donation.ApproxQuantity, donation.QuantityUnit,
			donation.Area, donation.PickupAddress, donation.PreferredPickupTime,
			donation.ContactNumber, donation.CreatedAt,
			donation.AcceptedAt, donation.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}

		for _, photo := range donation.Photos {
			_, err := r.db.conn(ctx).Exec(ctx, `
				INSERT INTO donation_photos (id, donation_id, url, position, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, photo.ID, photo.DonationID, photo.URL, photo.Position, photo.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to create donation photo: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a donation with its photos.
func (r *DonationRepository) GetByID(ctx context.Context, id string) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`

	var donation models.Donation
	err := pgxscan.Get(ctx, r.db.conn(ctx), &donation, query, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.NotFound("donation not found")
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	photos, err := r.photosFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	donation.Photos = photos[id]
	if donation.Photos == nil {
		donation.Photos = []models.Photo{}
	}
	return &donation, nil
}

// List returns one page of donations matching the query, with donor
// display fields joined in and photos attached.
func (r *DonationRepository) List(ctx context.Context, q repository.ListQuery) ([]*models.Donation, error) {
	builder := psql().
		Select(
			"d.id", "d.donor_id", "d.status", "d.food_type",
			"d.approx_quantity", "d.quantity_unit", "d.area",
			"d.pickup_address", "d.preferred_pickup_time",
			"d.contact_number", "d.created_at", "d.accepted_at",
			"d.completed_at", "u.name", "u.phone",
		).
		From("donations d").
		LeftJoin("users u ON u.id = d.donor_id")

	status := q.Status
	if status == "" {
		status = models.DonationAvailable
	}
	builder = builder.Where(sq.Eq{"d.status": status})

	if q.Area != "" {
		builder = builder.Where(sq.ILike{"d.area": "%" + q.Area + "%"})
	}

	switch q.Sort {
	case "pickup_time":
		builder = builder.OrderBy("d.preferred_pickup_time ASC")
	case "area":
		builder = builder.OrderBy("d.area ASC")
	default:
		builder = builder.OrderBy("d.created_at DESC")
	}

	builder = builder.
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset()))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build donation list query: %w", err)
	}

	rows, err := r.db.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	var ids []string
	for rows.Next() {
		var d models.Donation
		var donorName, donorPhone *string
		err := rows.Scan(
			&d.ID, &d.DonorID, &d.Status, &d.FoodType,
			&d.ApproxQuantity, &d.QuantityUnit, &d.Area,
			&d.PickupAddress, &d.PreferredPickupTime,
			&d.ContactNumber, &d.CreatedAt, &d.AcceptedAt,
			&d.CompletedAt, &donorName, &donorPhone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		if donorName != nil {
			info := models.DonorInfo{Name: *donorName}
			if donorPhone != nil {
				info.Phone = *donorPhone
			}
			d.Donor = &info
		}
		d.Photos = []models.Photo{}
		donations = append(donations, &d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	if len(ids) > 0 {
		photos, err := r.photosFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, d := range donations {
			if p, ok := photos[d.ID]; ok {
				d.Photos = p
			}
		}
	}

	return donations, nil
}

// photosFor loads photos for a set of donations, ordered by position.
func (r *DonationRepository) photosFor(ctx context.Context, donationIDs []string) (map[string][]models.Photo, error) {
	query := `
		SELECT id, donation_id, url, position, created_at
		FROM donation_photos
		WHERE donation_id = ANY($1)
		ORDER BY donation_id, position
	`
	rows, err := r.db.conn(ctx).Query(ctx, query, donationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation photos: %w", err)
	}
	defer rows.Close()

	photos := make(map[string][]models.Photo)
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.DonationID, &p.URL, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan donation photo: %w", err)
		}
		photos[p.DonationID] = append(photos[p.DonationID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donation photos: %w", err)
	}
	return photos, nil
}

// MarkAccepted is the serialization point of the acceptance protocol:
// among concurrent callers for the same id exactly one sees a row
// affected, everyone else sees zero.
func (r *DonationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.conn(ctx).Exec(ctx, `
		UPDATE donations
		SET status = $1, accepted_at = $2
		WHERE id = $3 AND status = $4
	`, models.DonationAccepted, at, id, models.DonationAvailable)
	if err != nil {
		return false, fmt.Errorf("failed to mark donation accepted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCompleted moves an accepted donation to completed.
func (r *DonationRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.conn(ctx).Exec(ctx, `
		UPDATE donations
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
	`, models.DonationCompleted, at, id, models.DonationAccepted)
	if err != nil {
		return false, fmt.Errorf("failed to mark donation completed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCancelled cancels a donation while it is still available and
// owned by donorID.
func (r *DonationRepository) MarkCancelled(ctx context.Context, id, donorID string) (bool, error) {
	tag, err := r.db.conn(ctx).Exec(ctx, `
		UPDATE donations
		SET status = $1
		WHERE id = $2 AND donor_id = $3 AND status = $4
	`, models.DonationCancelled, id, donorID, models.DonationAvailable)
	if err != nil {
		return false, fmt.Errorf("failed to mark donation cancelled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
