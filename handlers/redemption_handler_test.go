package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokalyAPI/internal/apperrors"
	"lokalyAPI/middleware"
	"lokalyAPI/services"
)

func newRedeemRequest(t *testing.T, body []byte, clerkID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/redeem", bytes.NewReader(body))
	if clerkID != "" {
		ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestRedeemRequiresAuth(t *testing.T) {
	handler := NewRedemptionHandler(services.NewRedemptionService(nil, nil))

	rec := httptest.NewRecorder()
	handler.Redeem(rec, newRedeemRequest(t, []byte(`{"token": "abc"}`), ""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedeemRejectsMalformedBody(t *testing.T) {
	handler := NewRedemptionHandler(services.NewRedemptionService(nil, nil))

	rec := httptest.NewRecorder()
	handler.Redeem(rec, newRedeemRequest(t, []byte(`{not json`), "customer_x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeemRejectsEmptyToken(t *testing.T) {
	handler := NewRedemptionHandler(services.NewRedemptionService(nil, nil))

	rec := httptest.NewRecorder()
	handler.Redeem(rec, newRedeemRequest(t, []byte(`{"token": ""}`), "customer_x"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.KindInvalidInput, body["errorKind"])
}
