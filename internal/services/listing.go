package services

import (
	"context"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListingService is the browse read path. No side effects; it only
// needs a consistent snapshot from the store.
type ListingService struct {
	donations repository.DonationRepository
}

// NewListingService creates a new listing service.
func NewListingService(donations repository.DonationRepository) *ListingService {
	return &ListingService{donations: donations}
}

// List returns one page of donations. Unset fields fall back to the
// browse defaults: available status, newest first, page 1 of 10.
func (s *ListingService) List(ctx context.Context, query repository.ListQuery) ([]*models.Donation, error) {
	switch query.Status {
	case "", models.DonationAvailable, models.DonationAccepted,
		models.DonationCompleted, models.DonationCancelled:
	default:
		return nil, apperrors.Validation("unknown status %q", query.Status)
	}

	switch query.Sort {
	case "", "created_at", "pickup_time", "area":
	default:
		return nil, apperrors.Validation("unknown sort %q", query.Sort)
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}

	donations, err := s.donations.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	return donations, nil
}
