package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/infra/billing"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Billing-Signature"

var (
	errMissingSignature = errs.New("missing webhook signature")
	errBadSignature     = errs.New("webhook signature mismatch")
)

// WebhookHandler receives completion notifications from the billing provider.
// The notification body is authenticated with an HMAC over the raw payload;
// its content is otherwise untrusted and only supplies the session id to
// re-fetch.
type WebhookHandler struct {
	cmds   commands.CompletionCommands
	secret []byte
}

func NewWebhookHandler(cmds commands.CompletionCommands, cfg config.BillingConfig) *WebhookHandler {
	return &WebhookHandler{cmds: cmds, secret: []byte(cfg.WebhookSecret)}
}

type webhookEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// @Summary Billing webhook
// @Description Handle checkout completion notifications from the billing provider
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} resdto.CompletionAckResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /webhooks/billing [post]
func (h *WebhookHandler) HandleBilling(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable payload", nil)
		return
	}

	if err := h.verifySignature(body, c.GetHeader(signatureHeader)); err != nil {
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid signature", nil)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Malformed payload", nil)
		return
	}
	if event.SessionID == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.New("session_id is required"), "Malformed payload", nil)
		return
	}

	ack, err := h.cmds.HandleCompletion(c.Request.Context(), event.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrSessionNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown checkout session", nil)
		case errors.Is(err, billing.ErrBreakerOpen):
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Billing provider unavailable", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Completion failed", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromAck(ack))
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) error {
	if signature == "" {
		return errMissingSignature
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errBadSignature
	}
	return nil
}
