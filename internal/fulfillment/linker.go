package fulfillment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Dhoini/personalized-gospels/internal/document"
	"github.com/Dhoini/personalized-gospels/internal/domain"
)

// DocumentLinker строит публичные ссылки на PDF книги, которые скачивает провайдер печати
type DocumentLinker struct {
	baseURL string
}

// NewDocumentLinker создает построитель ссылок для публичного адреса сервиса
func NewDocumentLinker(baseURL string) *DocumentLinker {
	return &DocumentLinker{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL возвращает ссылку на документ заданного типа
func (l *DocumentLinker) URL(kind document.Kind, p domain.Personalization) string {
	q := url.Values{}
	q.Set("name", p.Name)
	q.Set("gender", string(p.Gender))
	q.Set("version", string(p.BibleVersion))
	return fmt.Sprintf("%s/api/v1/books/%s?%s", l.baseURL, kind, q.Encode())
}

// InteriorURL ссылка на внутренний блок
func (l *DocumentLinker) InteriorURL(p domain.Personalization) string {
	return l.URL(document.KindInterior, p)
}

// CoverURL ссылка на обложку
func (l *DocumentLinker) CoverURL(p domain.Personalization) string {
	return l.URL(document.KindCover, p)
}
