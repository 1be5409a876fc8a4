package handlers

import (
	"encoding/json"
	"net/http"

	"foodlink-backend/internal/apperrors"
	"foodlink-backend/internal/middleware"
	"foodlink-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PhotoHandler handles photo upload URL requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// CreateUploadURL handles POST /api/v1/photos/upload-url
func (h *PhotoHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)

	var req services.UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.photoService.CreateUploadURL(ctx, actor.ID, req.Filename, req.ContentType)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindStore {
			log.Error().
				Err(err).
				Str("donor_id", actor.ID).
				Str("filename", req.Filename).
				Msg("Failed to generate pre-signed URL")
		}
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("donor_id", actor.ID).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, response, http.StatusOK)
}
