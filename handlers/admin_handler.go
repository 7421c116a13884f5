package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/benefit"
	"lokalyAPI/internal/local"
	"lokalyAPI/internal/staff"
	"lokalyAPI/internal/tier"
	"lokalyAPI/services"
)

// AdminHandler groups the back-office CRUD: locals, the tier table,
// staff membership and the benefits catalog.
type AdminHandler struct {
	localService   *services.LocalService
	tierService    *services.TierService
	staffService   *services.StaffService
	benefitService *services.BenefitService
}

func NewAdminHandler(
	localService *services.LocalService,
	tierService *services.TierService,
	staffService *services.StaffService,
	benefitService *services.BenefitService,
) *AdminHandler {
	return &AdminHandler{
		localService:   localService,
		tierService:    tierService,
		staffService:   staffService,
		benefitService: benefitService,
	}
}

func (h *AdminHandler) CreateLocal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req local.CreateLocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	l, err := h.localService.Create(ctx, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, l)
}

func (h *AdminHandler) UpdateLocal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slug := mux.Vars(r)["slug"]

	var req local.UpdateLocalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	l, err := h.localService.Update(ctx, slug, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, l)
}

func (h *AdminHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tiers, err := h.tierService.ListTiers(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Unable to load tiers")
		return
	}

	respondWithJSON(w, http.StatusOK, tiers)
}

// ReplaceTiers swaps the whole tier table at once. Partial edits are
// not offered on purpose: a full replace is the only write that can be
// checked for contiguous, non-overlapping ranges before it lands.
func (h *AdminHandler) ReplaceTiers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req tier.UpsertTiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tiers, err := h.tierService.ReplaceTiers(ctx, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, tiers)
}

func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req staff.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, err := h.staffService.Create(ctx, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, st)
}

func (h *AdminHandler) DeactivateStaff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	staffID := mux.Vars(r)["staffID"]

	if err := h.staffService.Deactivate(ctx, staffID); err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "staff member deactivated"})
}

func (h *AdminHandler) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req benefit.CreateBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.benefitService.Create(ctx, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, b)
}
