package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/personalized-gospels/internal/document"
	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/service"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
	"github.com/Dhoini/personalized-gospels/pkg/req"
	"github.com/Dhoini/personalized-gospels/pkg/res"
)

// SampleRequest тело запроса на образец
type SampleRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Gender       string `json:"gender" validate:"required,oneof=male female neutral"`
	BibleVersion string `json:"bibleVersion" validate:"required,oneof=web kjv"`
}

// PreviewRequest тело запроса на предпросмотр
type PreviewRequest struct {
	Name   string `json:"name" validate:"max=100"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female neutral"`
}

// BookHandler обработчик образцов, предпросмотра и документов книги
type BookHandler struct {
	service service.BookService
	log     *logger.Logger
}

// NewBookHandler создает новый обработчик книг
func NewBookHandler(svc service.BookService, log *logger.Logger) *BookHandler {
	return &BookHandler{service: svc, log: log}
}

// CreateSample возвращает PDF образца в base64
func (h *BookHandler) CreateSample(c *gin.Context) {
	body, err := req.HandleBody[SampleRequest](c, h.log)
	if err != nil {
		return
	}

	sample, err := h.service.GenerateSample(c.Request.Context(), domain.Personalization{
		Name:         body.Name,
		Gender:       domain.Gender(body.Gender),
		BibleVersion: domain.BibleVersion(body.BibleVersion),
	})
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, sample)
}

// Preview возвращает персонализированные стихи предпросмотра
func (h *BookHandler) Preview(c *gin.Context) {
	body, err := req.HandleBody[PreviewRequest](c, h.log)
	if err != nil {
		return
	}

	verses, err := h.service.Preview(c.Request.Context(), body.Name, domain.Gender(body.Gender))
	if err != nil {
		writeError(c, err, h.log)
		return
	}
	res.JSON(c, http.StatusOK, gin.H{"verses": verses})
}

// GetDocument отдает PDF внутреннего блока или обложки
func (h *BookHandler) GetDocument(c *gin.Context) {
	kind := document.Kind(c.Param("type"))
	p := domain.Personalization{
		Name:         c.Query("name"),
		Gender:       domain.Gender(c.DefaultQuery("gender", string(domain.GenderNeutral))),
		BibleVersion: domain.BibleVersion(c.DefaultQuery("version", string(domain.BibleVersionWEB))),
	}

	pdf, err := h.service.RenderDocument(c.Request.Context(), kind, p)
	if err != nil {
		writeError(c, err, h.log)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", string(kind)+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetFormats возвращает каталог форматов
func (h *BookHandler) GetFormats(c *gin.Context) {
	res.JSON(c, http.StatusOK, gin.H{"formats": h.service.Formats()})
}
