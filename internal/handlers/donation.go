package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/middleware"
	"foodlink-backend/internal/models"
	"foodlink-backend/internal/repository"
	"foodlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DonationHandler handles donation-related HTTP requests
type DonationHandler struct {
	donationService   *services.DonationService
	listingService    *services.ListingService
	acceptanceService *services.AcceptanceService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(
	donationService *services.DonationService,
	listingService *services.ListingService,
	acceptanceService *services.AcceptanceService,
) *DonationHandler {
	return &DonationHandler{
		donationService:   donationService,
		listingService:    listingService,
		acceptanceService: acceptanceService,
	}
}

// CreateDonation handles POST /api/v1/donations
func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)

	var input services.CreateDonationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	donation, err := h.donationService.Create(ctx, actor.ID, input)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().Err(err).Str("donor_id", actor.ID).Msg("Failed to create donation")
		}
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("donation_id", donation.ID).
		Str("donor_id", actor.ID).
		Str("area", donation.Area).
		Msg("Donation created")

	respondJSON(w, donation, http.StatusOK)
}

// ListDonations handles GET /api/v1/donations
func (h *DonationHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := repository.ListQuery{
		Area:   r.URL.Query().Get("area"),
		Status: models.DonationStatus(r.URL.Query().Get("status")),
		Sort:   r.URL.Query().Get("sort"),
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			query.Page = page
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			query.PageSize = limit
		}
	}

	donations, err := h.listingService.List(ctx, query)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().Err(err).Msg("Failed to list donations")
		}
		respondAppError(w, err)
		return
	}

	respondJSON(w, donations, http.StatusOK)
}

// GetDonation handles GET /api/v1/donations/{donation_id}
func (h *DonationHandler) GetDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donationID := chi.URLParam(r, "donation_id")

	donation, err := h.donationService.Get(ctx, donationID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().Err(err).Str("donation_id", donationID).Msg("Failed to get donation")
		}
		respondAppError(w, err)
		return
	}

	respondJSON(w, donation, http.StatusOK)
}

// AcceptDonation handles POST /api/v1/donations/{donation_id}/accept
func (h *DonationHandler) AcceptDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	donationID := chi.URLParam(r, "donation_id")

	acceptance, err := h.acceptanceService.Accept(ctx, donationID, actor.ID)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindConflict:
			// Lost race, normal outcome under competition.
			log.Debug().
				Str("donation_id", donationID).
				Str("volunteer_id", actor.ID).
				Msg("Claim attempt lost")
		case apperrors.KindStore:
			log.Error().Err(err).Str("donation_id", donationID).Msg("Failed to accept donation")
		}
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("donation_id", donationID).
		Str("volunteer_id", actor.ID).
		Str("acceptance_id", acceptance.ID).
		Msg("Donation accepted")

	respondJSON(w, map[string]interface{}{
		"message":    "Donation accepted",
		"acceptance": acceptance,
	}, http.StatusOK)
}

// CompleteDonation handles POST /api/v1/donations/{donation_id}/complete
func (h *DonationHandler) CompleteDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	donationID := chi.URLParam(r, "donation_id")

	err := h.acceptanceService.Complete(ctx, donationID, actor.ID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().Err(err).Str("donation_id", donationID).Msg("Failed to complete donation")
		}
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("donation_id", donationID).
		Str("volunteer_id", actor.ID).
		Msg("Donation completed")

	respondJSON(w, map[string]string{"message": "Donation completed"}, http.StatusOK)
}

// CancelDonation handles DELETE /api/v1/donations/{donation_id}
func (h *DonationHandler) CancelDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)
	donationID := chi.URLParam(r, "donation_id")

	err := h.acceptanceService.Cancel(ctx, donationID, actor.ID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().Err(err).Str("donation_id", donationID).Msg("Failed to cancel donation")
		}
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("donation_id", donationID).
		Str("donor_id", actor.ID).
		Msg("Donation cancelled")

	respondJSON(w, map[string]string{"message": "Donation cancelled"}, http.StatusOK)
}
