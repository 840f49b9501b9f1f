package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

// writeError переводит ошибку сервиса в HTTP-ответ.
// Покупатель получает общее сообщение, подробности остаются в логах.
func writeError(c *gin.Context, err error, log *logger.Logger) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{
			Error:   "invalid request data",
			Code:    "validation_error",
			Details: verr.Errors,
		}, log)
	case errors.Is(err, domain.ErrValidation):
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "invalid request data", Code: "validation_error"}, log)
	case errors.Is(err, domain.ErrUnsupportedFormat):
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "unsupported format", Code: "unsupported_format"}, log)
	case errors.Is(err, domain.ErrSignature):
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "webhook signature verification failed", Code: "invalid_signature"}, log)
	case errors.Is(err, domain.ErrPaymentNotCompleted):
		res.Error(c, http.StatusBadRequest, res.ErrorResponse{Error: "payment not completed", Code: "payment_not_completed"}, log)
	case errors.Is(err, domain.ErrNotFound):
		res.Error(c, http.StatusNotFound, res.ErrorResponse{Error: "not found", Code: "not_found"}, log)
	case errors.Is(err, domain.ErrInvalidTransition):
		res.Error(c, http.StatusConflict, res.ErrorResponse{Error: "invalid order status transition", Code: "invalid_transition"}, log)
	case errors.Is(err, domain.ErrAuthentication), errors.Is(err, domain.ErrFulfillment):
		log.Errorw("Upstream provider error", "path", c.Request.URL.Path, "error", err)
		res.Error(c, http.StatusBadGateway, res.ErrorResponse{Error: "upstream provider error", Code: "bad_gateway"}, log)
	default:
		log.Errorw("Request failed", "path", c.Request.URL.Path, "error", err)
		res.Error(c, http.StatusInternalServerError, res.ErrorResponse{Error: "internal server error", Code: "internal_error"}, log)
	}
}
