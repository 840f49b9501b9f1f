// Package document раскладывает персонализированную главу в PDF:
// образец (Letter), внутренний блок и обложку книги (6x9 дюймов).
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/personalization"
	"github.com/Dhoini/personalized-gospels/internal/scripture"
)

// Kind тип документа книги
type Kind string

const (
	KindInterior Kind = "interior"
	KindCover    Kind = "cover"
)

// Valid проверяет тип документа
func (k Kind) Valid() bool {
	return k == KindInterior || k == KindCover
}

type rgb struct{ r, g, b int }

var (
	navy  = rgb{26, 39, 68}
	gold  = rgb{201, 162, 39}
	white = rgb{255, 255, 255}
	grey  = rgb{100, 100, 100}
	light = rgb{150, 150, 150}

	// фиксированная дата делает вывод детерминированным
	documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const (
	brandLine   = "CALLED BY NAME"
	footerBrand = "CalledByName.com — Personalized Scripture"
	footerTerms = "Public Domain Translation — Share Freely"
	bookTitle   = "Called by Name - Personalized Gospels"
)

// SampleFilename имя файла образца: Matthew-5-<name>-<VERSION>.pdf
func SampleFilename(name string, version domain.BibleVersion) string {
	return fmt.Sprintf("%s-%d-%s-%s.pdf", scripture.SampleBook, scripture.SampleChapter, name, version.Upper())
}

type page struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
	margin float64
}

func newPage(init *fpdf.InitType, margin float64) *page {
	pdf := fpdf.NewCustom(init)
	pdf.SetCreationDate(documentDate)
	pdf.SetModificationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle(bookTitle, true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	return &page{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  w,
		height: h,
		margin: margin,
	}
}

func (p *page) color(c rgb) {
	p.pdf.SetTextColor(c.r, c.g, c.b)
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont("Times", style, size)
}

func (p *page) centered(y float64, text string) {
	s := p.tr(text)
	p.pdf.Text((p.width-p.pdf.GetStringWidth(s))/2, y, s)
}

func (p *page) rule(y, inset float64) {
	p.pdf.SetDrawColor(gold.r, gold.g, gold.b)
	p.pdf.SetLineWidth(0.5)
	p.pdf.Line(p.margin+inset, y, p.width-p.margin-inset, y)
}

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// verses раскладывает стихи начиная с y, добавляя страницы с колонтитулом
func (p *page) verses(ch scripture.Chapter, name string, y, lineHeight, fontSize, reserve float64) float64 {
	contentWidth := p.width - 2*p.margin
	header := fmt.Sprintf("%s %d — %s", ch.Book, ch.Chapter, name)

	p.color(navy)
	p.font("", fontSize)
	for _, verse := range ch.Verses {
		lines := p.pdf.SplitLines([]byte(p.tr(fmt.Sprintf("%d. %s", verse.Number, verse.Text))), contentWidth)
		blockHeight := float64(len(lines)) * lineHeight

		if y+blockHeight > p.height-p.margin-reserve {
			p.pdf.AddPage()
			y = p.margin

			p.color(light)
			p.font("", fontSize-2)
			p.centered(y, header)
			y += lineHeight * 2.5
			p.color(navy)
			p.font("", fontSize)
		}

		for i, line := range lines {
			p.pdf.Text(p.margin, y+float64(i)*lineHeight, string(line))
		}
		y += blockHeight + lineHeight*0.6
	}
	return y
}

// Sample раскладывает образец главы на страницах Letter.
// ch должна быть уже персонализирована.
func Sample(ch scripture.Chapter, name string) ([]byte, error) {
	name = personalization.ResolveName(name)
	p := newPage(&fpdf.InitType{OrientationStr: "P", UnitStr: "mm", SizeStr: "Letter"}, 25)

	p.pdf.SetFillColor(navy.r, navy.g, navy.b)
	p.pdf.Rect(0, 0, p.width, 60, "F")

	p.color(gold)
	p.font("B", 12)
	p.centered(25, brandLine)

	p.color(white)
	p.font("B", 24)
	p.centered(40, ch.Title)

	p.font("", 14)
	p.centered(52, "Personalized for "+name)

	y := 80.0
	p.color(navy)
	p.font("B", 16)
	p.centered(y, fmt.Sprintf("%s Chapter %d", ch.Book, ch.Chapter))
	y += 8

	p.color(grey)
	p.font("I", 11)
	p.centered(y, ch.VersionName)
	y += 20

	p.rule(y, 40)
	y += 15

	p.verses(ch, name, y, 6, 11, 20)

	bottom := p.height - p.margin
	p.rule(bottom-15, 40)
	p.color(light)
	p.font("", 9)
	p.centered(bottom-5, footerBrand)
	p.centered(bottom, footerTerms)

	return p.bytes()
}

// Interior раскладывает внутренний блок книги для печати (6x9 дюймов)
func Interior(ch scripture.Chapter, name string) ([]byte, error) {
	name = personalization.ResolveName(name)
	p := newPage(&fpdf.InitType{OrientationStr: "P", UnitStr: "mm", Size: fpdf.SizeType{Wd: 152.4, Ht: 228.6}}, 16)

	// титульная страница
	p.color(navy)
	p.font("B", 22)
	p.centered(70, ch.Title)
	p.font("I", 13)
	p.centered(84, ch.Subtitle)
	p.rule(96, 20)
	p.font("", 12)
	p.centered(110, "Personalized for "+name)
	p.color(grey)
	p.font("", 10)
	p.centered(p.height-30, ch.VersionName)

	p.pdf.AddPage()
	y := p.margin + 6
	p.color(navy)
	p.font("B", 14)
	p.centered(y, fmt.Sprintf("%s Chapter %d", ch.Book, ch.Chapter))
	y += 12

	p.verses(ch, name, y, 5, 10, 10)

	return p.bytes()
}

// Cover раскладывает обложку книги
func Cover(ch scripture.Chapter, name string) ([]byte, error) {
	name = personalization.ResolveName(name)
	p := newPage(&fpdf.InitType{OrientationStr: "P", UnitStr: "mm", Size: fpdf.SizeType{Wd: 152.4, Ht: 228.6}}, 16)

	p.pdf.SetFillColor(navy.r, navy.g, navy.b)
	p.pdf.Rect(0, 0, p.width, p.height, "F")

	p.color(gold)
	p.font("B", 14)
	p.centered(60, brandLine)
	p.rule(68, 15)

	p.color(white)
	p.font("B", 24)
	p.centered(100, "The Gospels")
	p.font("I", 14)
	p.centered(114, "Personalized for")
	p.font("B", 20)
	p.centered(128, name)

	p.color(gold)
	p.font("", 10)
	p.centered(p.height-30, ch.VersionName)

	return p.bytes()
}

// Render выбирает макет по типу документа
func Render(kind Kind, ch scripture.Chapter, name string) ([]byte, error) {
	switch kind {
	case KindInterior:
		return Interior(ch, name)
	case KindCover:
		return Cover(ch, name)
	default:
		return nil, domain.NewValidationError("", "type", fmt.Sprintf("unknown document type %q", kind))
	}
}
