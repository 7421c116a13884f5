package handlers

import (
	"context"
	"net/http"
	"time"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

type BenefitHandler struct {
	benefitService *services.BenefitService
}

func NewBenefitHandler(benefitService *services.BenefitService) *BenefitHandler {
	return &BenefitHandler{
		benefitService: benefitService,
	}
}

func (h *BenefitHandler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	benefits, err := h.benefitService.ListForCustomer(ctx, clerkID)
	if err != nil {
		respondWithErrorKind(w, apperrors.HTTPStatus(err), err.Error(), apperrors.Kind(err))
		return
	}

	respondWithJSON(w, http.StatusOK, benefits)
}
