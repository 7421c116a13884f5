package handlers

import (
	"context"
	"net/http"
	"time"

	"lokalyAPI/services"
)

type LocalHandler struct {
	localService *services.LocalService
}

func NewLocalHandler(localService *services.LocalService) *LocalHandler {
	return &LocalHandler{
		localService: localService,
	}
}

// ListLocals is public: the locations screen works before login.
func (h *LocalHandler) ListLocals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	locals, err := h.localService.ListActive(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Unable to load locals")
		return
	}

	respondWithJSON(w, http.StatusOK, locals)
}
