package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/qrtoken"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

type RedemptionHandler struct {
	redemptionService *services.RedemptionService
}

func NewRedemptionHandler(redemptionService *services.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
	}
}

// Redeem handles POST /api/v1/redeem. The customer identity comes from
// the session; the body carries the scanned token.
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req qrtoken.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.redemptionService.Redeem(ctx, clerkID, req.Token)
	if err != nil {
		kind := apperrors.Kind(err)
		middleware.RecordRedemption(kind)
		if kind == apperrors.KindPersistenceFailure {
			log.Printf("Redemption failed: %v", err)
			respondWithErrorKind(w, http.StatusInternalServerError, "Could not process the scan, please retry", kind)
			return
		}
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), kind)
		return
	}

	middleware.RecordRedemption("success")
	respondWithJSON(w, http.StatusOK, result)
}
