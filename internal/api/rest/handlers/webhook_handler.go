package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/service"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

// MaxWebhookBodyBytes предельный размер тела вебхука
const MaxWebhookBodyBytes = 65536

// WebhookHandler обработчик для вебхуков
type WebhookHandler struct {
	service service.WebhookService
	log     *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(svc service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: svc, log: log}
}

// HandleStripeWebhook проверяет подпись и передает событие сервису.
// После успешной проверки подписи всегда отвечает 200.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warnw("Failed to read webhook body", "error", err)
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "failed to read webhook body", Code: "bad_request"}, h.log)
		return
	}

	event, err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, domain.ErrSignature) {
			writeError(c, err, h.log)
			return
		}
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "invalid webhook payload", Code: "bad_request"}, h.log)
		return
	}

	res.JSON(c, http.StatusOK, gin.H{"received": true, "status": event.Status})
}
