package service

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/Dhoini/personalized-gospels/internal/document"
	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/metrics"
	"github.com/Dhoini/personalized-gospels/internal/personalization"
	"github.com/Dhoini/personalized-gospels/internal/scripture"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// Sample образец главы в PDF
type Sample struct {
	PDFBase64 string `json:"pdfBase64"`
	Filename  string `json:"filename"`
}

// BookService интерфейс сервиса генерации книг и образцов
type BookService interface {
	// GenerateSample строит PDF образца главы для имени, пола и перевода
	GenerateSample(ctx context.Context, p domain.Personalization) (Sample, error)

	// Preview персонализирует стихи предпросмотра
	Preview(ctx context.Context, name string, gender domain.Gender) ([]personalization.SampleVerse, error)

	// RenderDocument строит PDF внутреннего блока или обложки для печати
	RenderDocument(ctx context.Context, kind document.Kind, p domain.Personalization) ([]byte, error)

	// Formats возвращает каталог форматов
	Formats() []domain.FormatInfo
}

type bookService struct {
	metrics metrics.StoreMetrics
	log     *logger.Logger
}

// NewBookService создает новый сервис книг
func NewBookService(m metrics.StoreMetrics, log *logger.Logger) BookService {
	return &bookService{metrics: m, log: log}
}

func validatePersonalization(p domain.Personalization) error {
	var errs domain.ValidationErrors
	if !p.Gender.Valid() {
		errs.Add("gender", "must be one of male, female, neutral")
	}
	if !p.BibleVersion.Valid() {
		errs.Add("bibleVersion", "must be one of web, kjv")
	}
	if errs.HasErrors() {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// chapterFor возвращает персонализированную главу образца
func chapterFor(p domain.Personalization) (scripture.Chapter, error) {
	ch, err := scripture.SampleChapterFor(p.BibleVersion)
	if err != nil {
		return scripture.Chapter{}, err
	}
	return ch.Personalize(p.Name, p.Gender), nil
}

func (s *bookService) GenerateSample(_ context.Context, p domain.Personalization) (Sample, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Sample{}, domain.NewValidationError("", "name", "is required")
	}
	if err := validatePersonalization(p); err != nil {
		return Sample{}, err
	}

	ch, err := chapterFor(p)
	if err != nil {
		return Sample{}, err
	}
	pdf, err := document.Sample(ch, p.Name)
	if err != nil {
		s.log.Errorw("Failed to render sample", "version", p.BibleVersion, "error", err)
		return Sample{}, err
	}

	s.metrics.IncSampleGenerated(string(p.BibleVersion))
	s.log.Debugw("Sample generated", "version", p.BibleVersion, "gender", p.Gender, "bytes", len(pdf))

	return Sample{
		PDFBase64: base64.StdEncoding.EncodeToString(pdf),
		Filename:  document.SampleFilename(p.Name, p.BibleVersion),
	}, nil
}

func (s *bookService) Preview(_ context.Context, name string, gender domain.Gender) ([]personalization.SampleVerse, error) {
	if gender == "" {
		gender = domain.GenderNeutral
	}
	if !gender.Valid() {
		return nil, domain.NewValidationError("", "gender", "must be one of male, female, neutral")
	}
	return personalization.Preview(strings.TrimSpace(name), gender), nil
}

func (s *bookService) RenderDocument(_ context.Context, kind document.Kind, p domain.Personalization) ([]byte, error) {
	if !kind.Valid() {
		return nil, domain.NewValidationError("", "type", "must be one of interior, cover")
	}
	if err := validatePersonalization(p); err != nil {
		return nil, err
	}

	ch, err := chapterFor(p)
	if err != nil {
		return nil, err
	}
	pdf, err := document.Render(kind, ch, strings.TrimSpace(p.Name))
	if err != nil {
		s.log.Errorw("Failed to render book document", "type", kind, "version", p.BibleVersion, "error", err)
		return nil, err
	}
	return pdf, nil
}

func (s *bookService) Formats() []domain.FormatInfo {
	return domain.Formats()
}
