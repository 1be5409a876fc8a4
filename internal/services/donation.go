package services

import (
	"context"
	"strings"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/events"
	"foodlink-backend/internal/metrics"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultQuantityUnit = "portions"

// DonationService handles listing creation and reads.
type DonationService struct {
	donations repository.DonationRepository
	publisher events.Publisher
}

// NewDonationService creates a new donation service.
func NewDonationService(donations repository.DonationRepository, publisher events.Publisher) *DonationService {
	return &DonationService{
		donations: donations,
		publisher: publisher,
	}
}

// CreateDonationInput carries the donor-provided fields of a new
// listing. Everything here is immutable once the donation exists.
type CreateDonationInput struct {
	FoodType            string     `json:"food_type"`
	ApproxQuantity      float64    `json:"approx_quantity"`
	QuantityUnit        string     `json:"quantity_unit"`
	Area                string     `json:"area"`
	PickupAddress       string     `json:"pickup_address"`
	PreferredPickupTime *time.Time `json:"preferred_pickup_time"`
	ContactNumber       string     `json:"contact_number"`
	PhotoURLs           []string   `json:"photo_urls"`
}

func (in *CreateDonationInput) validate() error {
	if strings.TrimSpace(in.FoodType) == "" {
		return apperrors.Validation("food_type is required")
	}
	if in.ApproxQuantity <= 0 {
		return apperrors.Validation("approx_quantity must be positive")
	}
	if strings.TrimSpace(in.Area) == "" {
		return apperrors.Validation("area is required")
	}
	if strings.TrimSpace(in.PickupAddress) == "" {
		return apperrors.Validation("pickup_address is required")
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		return apperrors.Validation("contact_number is required")
	}
	for _, url := range in.PhotoURLs {
		if strings.TrimSpace(url) == "" {
			return apperrors.Validation("photo urls must not be empty")
		}
	}
	return nil
}

// Create validates the input and persists a new available donation
// owned by donorID, together with its photo rows.
func (s *DonationService) Create(ctx context.Context, donorID string, input CreateDonationInput) (*models.Donation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	unit := input.QuantityUnit
	if unit == "" {
		unit = defaultQuantityUnit
	}

	now := time.Now().UTC()
	donation := &models.Donation{
		ID:                  uuid.New().String(),
		DonorID:             donorID,
		Status:              models.DonationAvailable,
		FoodType:            input.FoodType,
		ApproxQuantity:      input.ApproxQuantity,
		QuantityUnit:        unit,
		Area:                input.Area,
		PickupAddress:       input.PickupAddress,
		PreferredPickupTime: input.PreferredPickupTime,
		ContactNumber:       input.ContactNumber,
		CreatedAt:           now,
		Photos:              make([]models.Photo, 0, len(input.PhotoURLs)),
	}
	for i, url := range input.PhotoURLs {
		donation.Photos = append(donation.Photos, models.Photo{
			ID:         uuid.New().String(),
			DonationID: donation.ID,
			URL:        url,
			Position:   i,
			CreatedAt:  now,
		})
	}

	if err := s.donations.Create(ctx, donation); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("create").Inc()
		return nil, err
	}

	metrics.DonationsCreatedTotal.Inc()
	publishEvent(ctx, s.publisher, events.TypeDonationCreated, donation.ID, donorID)

	return donation, nil
}

// Get retrieves a donation with its photos.
func (s *DonationService) Get(ctx context.Context, id string) (*models.Donation, error) {
	if id == "" {
		return nil, apperrors.Validation("donation id is required")
	}
	return s.donations.GetByID(ctx, id)
}

// publishEvent emits a lifecycle event outside the store transaction.
// Delivery is best effort; failures must never fail the operation.
func publishEvent(ctx context.Context, publisher events.Publisher, typ, donationID, actorID string) {
	err := publisher.Publish(ctx, events.Event{
		Type:       typ,
		DonationID: donationID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("event_type", typ).
			Str("donation_id", donationID).
			Msg("Failed to publish lifecycle event")
	}
}
