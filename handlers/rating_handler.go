package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/rating"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// AddRating handles POST /api/v1/visits/{visitID}/rating, the "how was
// the service?" prompt shown right after a successful scan.
func (h *RatingHandler) AddRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visitID := mux.Vars(r)["visitID"]

	var req rating.CreateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.ratingService.AddRating(ctx, clerkID, visitID, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, saved)
}
