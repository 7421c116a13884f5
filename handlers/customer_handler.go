package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/internal/customer"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.customerService.GetProfile(ctx, clerkID)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req customer.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.customerService.UpdateProfile(ctx, clerkID, &req)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) GetVisitHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	history, err := h.customerService.GetVisitHistory(ctx, clerkID, limit)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithErrorKind adds the stable machine-readable errorKind the
// mobile client switches on to pick a user-facing message.
func respondWithErrorKind(w http.ResponseWriter, code int, message string, kind string) {
	respondWithJSON(w, code, map[string]string{"error": message, "errorKind": kind})
}
