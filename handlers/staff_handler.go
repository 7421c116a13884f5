package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/qrtoken"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

type StaffHandler struct {
	tokenService *services.TokenService
	staffService *services.StaffService
}

func NewStaffHandler(tokenService *services.TokenService, staffService *services.StaffService) *StaffHandler {
	return &StaffHandler{
		tokenService: tokenService,
		staffService: staffService,
	}
}

// IssueToken handles POST /api/v1/staff/qr: mints a time-limited QR
// token for a POS slot at the staff member's local.
func (h *StaffHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req qrtoken.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.tokenService.IssueToken(ctx, clerkID, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	middleware.RecordTokenIssued()
	respondWithJSON(w, http.StatusCreated, resp)
}

// GetLocal returns the staff member's own record and the local they
// issue tokens for.
func (h *StaffHandler) GetLocal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sw, err := h.staffService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, sw)
}
