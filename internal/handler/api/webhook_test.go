//go:build unit

package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain/order"
	"storefront/internal/handler/api"
	"storefront/internal/pkg/config"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

type fakeCompletionCommands struct {
	ack      *commands.Ack
	err      error
	received []string
}

func (f *fakeCompletionCommands) HandleCompletion(_ context.Context, sessionID string) (*commands.Ack, error) {
	f.received = append(f.received, sessionID)
	if f.err != nil {
		return nil, f.err
	}
	return f.ack, nil
}

func newWebhookRouter(cmds commands.CompletionCommands) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := api.NewWebhookHandler(cmds, config.BillingConfig{WebhookSecret: testWebhookSecret})
	router.POST("/webhooks/billing", handler.HandleBilling)
	return router
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Billing-Signature", signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBillingWebhook(t *testing.T) {
	validBody := []byte(`{"type":"checkout.session.completed","session_id":"cs_123"}`)

	t.Run("valid signature runs completion and acks", func(t *testing.T) {
		orderID := uuid.New()
		fake := &fakeCompletionCommands{ack: &commands.Ack{OrderID: orderID, Status: order.StatusSucceeded}}
		router := newWebhookRouter(fake)

		rec := postWebhook(t, router, validBody, signBody(validBody))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"cs_123"}, fake.received)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, orderID.String(), resp["order_id"])
		assert.Equal(t, "succeeded", resp["status"])
		assert.Equal(t, false, resp["replayed"])
	})

	t.Run("missing signature", func(t *testing.T) {
		fake := &fakeCompletionCommands{}
		router := newWebhookRouter(fake)

		rec := postWebhook(t, router, validBody, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, fake.received, "unauthenticated payloads never reach the handler")
	})

	t.Run("tampered body", func(t *testing.T) {
		fake := &fakeCompletionCommands{}
		router := newWebhookRouter(fake)

		signature := signBody(validBody)
		tampered := []byte(`{"type":"checkout.session.completed","session_id":"cs_evil"}`)
		rec := postWebhook(t, router, tampered, signature)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, fake.received)
	})

	t.Run("missing session id", func(t *testing.T) {
		fake := &fakeCompletionCommands{}
		router := newWebhookRouter(fake)

		body := []byte(`{"type":"checkout.session.completed"}`)
		rec := postWebhook(t, router, body, signBody(body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown session maps to 404", func(t *testing.T) {
		fake := &fakeCompletionCommands{err: commands.ErrSessionNotFound}
		router := newWebhookRouter(fake)

		rec := postWebhook(t, router, validBody, signBody(validBody))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("replay acks with replayed flag", func(t *testing.T) {
		fake := &fakeCompletionCommands{ack: &commands.Ack{OrderID: uuid.New(), Status: order.StatusSucceeded, Replayed: true}}
		router := newWebhookRouter(fake)

		rec := postWebhook(t, router, validBody, signBody(validBody))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["replayed"])
	})
}
