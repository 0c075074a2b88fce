package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"Local_Market/internal/payment"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 16

type WebhookService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentHandler struct {
	svc WebhookService
}

func NewPaymentHandler(svc WebhookService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Webhook POST /payments/connect；验签需要原始 body
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		pkg.Respond(c, http.StatusBadRequest, gin.H{"msg": "Webhook Error: unreadable body"})
		return
	}
	err = h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrInvalidSignature) {
		pkg.Respond(c, http.StatusBadRequest, gin.H{"msg": "Webhook Error: " + err.Error()})
		return
	}
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"received": true})
}
