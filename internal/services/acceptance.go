package services

import (
	"context"
	"time"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/events"
	"foodlink-backend/internal/metrics"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"

	"github.com/google/uuid"
)

// AcceptanceService resolves concurrent claim attempts into at most
// one winner per donation and drives the post-claim transitions. The
// conditional update on the donation row is the only serialization
// point; no in-process locks are held across store calls.
type AcceptanceService struct {
	store       repository.Store
	donations   repository.DonationRepository
	acceptances repository.AcceptanceRepository
	publisher   events.Publisher
}

// NewAcceptanceService creates a new acceptance service.
func NewAcceptanceService(
	store repository.Store,
	donations repository.DonationRepository,
	acceptances repository.AcceptanceRepository,
	publisher events.Publisher,
) *AcceptanceService {
	return &AcceptanceService{
		store:       store,
		donations:   donations,
		acceptances: acceptances,
		publisher:   publisher,
	}
}

// Accept claims a donation for a volunteer. Among concurrent calls for
// the same donation exactly one succeeds; the rest receive Conflict.
// The conditional status update and the acceptance insert commit
// atomically, so no two volunteers can both believe they won.
func (s *AcceptanceService) Accept(ctx context.Context, donationID, volunteerID string) (*models.Acceptance, error) {
	if donationID == "" || volunteerID == "" {
		return nil, apperrors.Validation("donation id and volunteer id are required")
	}

	now := time.Now().UTC()
	acceptance := &models.Acceptance{
		ID:          uuid.New().String(),
		DonationID:  donationID,
		VolunteerID: volunteerID,
		Status:      models.AcceptanceAccepted,
		CreatedAt:   now,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		won, err := s.donations.MarkAccepted(ctx, donationID, now)
		if err != nil {
			return err
		}
		if !won {
			// Lost the race, or the donation never existed or is
			// already terminal. One outcome for all of them.
			return apperrors.Conflict("donation is not available")
		}
		return s.acceptances.Create(ctx, acceptance)
	})
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindConflict:
			metrics.AcceptConflictsTotal.Inc()
		case apperrors.KindStore:
			metrics.StoreErrorsTotal.WithLabelValues("accept").Inc()
		}
		return nil, err
	}

	metrics.AcceptsTotal.Inc()
	publishEvent(ctx, s.publisher, events.TypeDonationAccepted, donationID, volunteerID)

	return acceptance, nil
}

// Complete marks a claimed donation as picked up. Only the volunteer
// holding the acceptance may complete; donation and acceptance move to
// completed in one transaction so partial application is never
// observable.
func (s *AcceptanceService) Complete(ctx context.Context, donationID, volunteerID string) error {
	if donationID == "" || volunteerID == "" {
		return apperrors.Validation("donation id and volunteer id are required")
	}

	acceptance, err := s.acceptances.GetByDonationAndVolunteer(ctx, donationID, volunteerID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.NotAuthorized("volunteer does not hold the claim on this donation")
		}
		metrics.StoreErrorsTotal.WithLabelValues("complete").Inc()
		return err
	}

	now := time.Now().UTC()
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		done, err := s.donations.MarkCompleted(ctx, donationID, now)
		if err != nil {
			return err
		}
		if !done {
			return apperrors.Conflict("donation is not in an accepted state")
		}
		return s.acceptances.MarkCompleted(ctx, acceptance.ID, now)
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			metrics.StoreErrorsTotal.WithLabelValues("complete").Inc()
		}
		return err
	}

	metrics.CompletionsTotal.Inc()
	publishEvent(ctx, s.publisher, events.TypeDonationCompleted, donationID, volunteerID)

	return nil
}

// Cancel withdraws a donation while it is still available. Missing,
// not owned and already-claimed donations are deliberately collapsed
// into one NotFound outcome so probing actors learn nothing about
// ownership.
func (s *AcceptanceService) Cancel(ctx context.Context, donationID, donorID string) error {
	if donationID == "" || donorID == "" {
		return apperrors.Validation("donation id and donor id are required")
	}

	cancelled, err := s.donations.MarkCancelled(ctx, donationID, donorID)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("cancel").Inc()
		return err
	}
	if !cancelled {
		return apperrors.NotFound("donation not found or cannot be cancelled")
	}

	metrics.CancellationsTotal.Inc()
	publishEvent(ctx, s.publisher, events.TypeDonationCancelled, donationID, donorID)

	return nil
}
