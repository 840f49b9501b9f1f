package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/service"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/req"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

// CheckoutRequest тело запроса на оформление заказа
type CheckoutRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Gender       string `json:"gender" validate:"required,oneof=male female neutral"`
	Format       string `json:"format" validate:"required"`
	BibleVersion string `json:"bibleVersion" validate:"required,oneof=web kjv"`
}

// CheckoutResponse ответ с адресом оплаты
type CheckoutResponse struct {
	URL string `json:"url"`
}

// CheckoutHandler обработчик оформления заказа
type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

// NewCheckoutHandler создает новый обработчик оформления заказа
func NewCheckoutHandler(svc service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, log: log}
}

// CreateCheckout создает checkout-сессию и возвращает ее URL
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	body, err := req.HandleBody[CheckoutRequest](c, h.log)
	if err != nil {
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), service.CheckoutRequest{
		Name:         body.Name,
		Email:        body.Email,
		Gender:       domain.Gender(body.Gender),
		Format:       domain.ProductFormat(body.Format),
		BibleVersion: domain.BibleVersion(body.BibleVersion),
	})
	if err != nil {
		writeError(c, err, h.log)
		return
	}

	res.JSON(c, http.StatusOK, CheckoutResponse{URL: result.URL})
}

// GetSession возвращает подтверждение оплаты для страницы подтверждения
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	confirmation, err := h.service.GetConfirmation(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, confirmation)
}
