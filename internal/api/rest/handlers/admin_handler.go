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

// FulfillRequest тело запроса на повторное исполнение
type FulfillRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
}

// StatusRequest тело запроса на смену статуса
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed shipped"`
}

// AdminHandler обработчик административного API заказов
type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(svc service.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{service: svc, log: log}
}

// GetOrder возвращает заказ
func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, order)
}

// Fulfill повторно ставит заказ в очередь исполнения
func (h *AdminHandler) Fulfill(c *gin.Context) {
	var body FulfillRequest
	if c.Request.ContentLength != 0 {
		decoded, err := req.HandleBody[FulfillRequest](c, h.log)
		if err != nil {
			return
		}
		body = *decoded
	}

	order, err := h.service.Refulfill(c.Request.Context(), c.Param("id"), body.ShippingAddress)
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusAccepted, order)
}

// UpdateStatus записывает статус, сообщенный внешней системой
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	body, err := req.HandleBody[StatusRequest](c, h.log)
	if err != nil {
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(body.Status))
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, order)
}

// ListEvents возвращает журнал webhook-событий заказа
func (h *AdminHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, gin.H{"events": events})
}
