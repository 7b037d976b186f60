package handlers

import (
	"context"
	"net/http"

	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/models"
	"travel-discovery-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PhotoUploader issues and confirms profile photo uploads
type PhotoUploader interface {
	GetPreSignedURL(ctx context.Context, userID, contentType string) (*services.UploadResponse, error)
	ConfirmUpload(ctx context.Context, token, userID, key string) (*models.UserProfile, *services.Advisory, error)
}

// PhotoHandler handles profile photo HTTP requests
type PhotoHandler struct {
	photoService PhotoUploader
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService PhotoUploader) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// ConfirmRequest is the body of POST /api/v1/profile/photo/confirm
type ConfirmRequest struct {
	Key string `json:"key" validate:"required"`
}

// UploadPhoto handles POST /api/v1/profile/photo/upload
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UploadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	response, err := h.photoService.GetPreSignedURL(ctx, userID, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("content_type", req.ContentType).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err, "Failed to generate upload URL")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("key", response.Key).
		Msg("Pre-signed URL generated")
	respondJSON(w, http.StatusOK, response)
}

// ConfirmUpload handles POST /api/v1/profile/photo/confirm
func (h *PhotoHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, advisory, err := h.photoService.ConfirmUpload(ctx, middleware.GetToken(ctx), userID, req.Key)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("key", req.Key).
			Msg("Failed to confirm photo upload")
		respondWriteError(w, err, advisory, "Failed to update profile photo")
		return
	}
	if profile == nil {
		respondServiceError(w, services.ErrNoSession, "")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
