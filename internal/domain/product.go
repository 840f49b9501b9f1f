package domain

import "strings"

// Gender категория местоимений, выбранная покупателем
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// Genders возвращает все поддерживаемые категории в фиксированном порядке
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderNeutral}
}

// Valid проверяет, что категория входит в закрытый набор
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNeutral:
		return true
	}
	return false
}

// PronounLabel возвращает подпись для описания товара ("Beloved" для neutral)
func (g Gender) PronounLabel() string {
	if g == GenderNeutral {
		return "Beloved"
	}
	return string(g)
}

// BibleVersion перевод текста
type BibleVersion string

const (
	BibleVersionWEB BibleVersion = "web"
	BibleVersionKJV BibleVersion = "kjv"
)

var bibleVersionNames = map[BibleVersion]string{
	BibleVersionWEB: "World English Bible",
	BibleVersionKJV: "King James Version",
}

// Valid проверяет, что перевод поддерживается
func (v BibleVersion) Valid() bool {
	_, ok := bibleVersionNames[v]
	return ok
}

// DisplayName возвращает полное название перевода
func (v BibleVersion) DisplayName() string {
	return bibleVersionNames[v]
}

// Upper используется в именах файлов (WEB, KJV)
func (v BibleVersion) Upper() string {
	return strings.ToUpper(string(v))
}

// ProductFormat формат продукта
type ProductFormat string

const (
	FormatDigital   ProductFormat = "digital"
	FormatSoftcover ProductFormat = "softcover"
	FormatHardcover ProductFormat = "hardcover"
	FormatLeather   ProductFormat = "leather"
)

// FormatInfo цена и подпись формата
type FormatInfo struct {
	Format     ProductFormat `json:"format"`
	PriceCents int64         `json:"price_cents"`
	Label      string        `json:"label"`
	Physical   bool          `json:"physical"`
}

var formats = map[ProductFormat]FormatInfo{
	FormatDigital:   {Format: FormatDigital, PriceCents: 2499, Label: "Digital Download (PDF)"},
	FormatSoftcover: {Format: FormatSoftcover, PriceCents: 3999, Label: "Softcover Edition", Physical: true},
	FormatHardcover: {Format: FormatHardcover, PriceCents: 5999, Label: "Hardcover Edition", Physical: true},
	FormatLeather:   {Format: FormatLeather, PriceCents: 8999, Label: "Premium Leather Bound", Physical: true},
}

// Formats возвращает каталог форматов в порядке возрастания цены
func Formats() []FormatInfo {
	return []FormatInfo{
		formats[FormatDigital],
		formats[FormatSoftcover],
		formats[FormatHardcover],
		formats[FormatLeather],
	}
}

// Info возвращает описание формата; ok=false для неизвестного формата
func (f ProductFormat) Info() (FormatInfo, bool) {
	info, ok := formats[f]
	return info, ok
}

// Valid проверяет, что формат есть в каталоге
func (f ProductFormat) Valid() bool {
	_, ok := formats[f]
	return ok
}

// PriceCents цена формата в центах (0 для неизвестного)
func (f ProductFormat) PriceCents() int64 {
	return formats[f].PriceCents
}

// Label человекочитаемое название формата
func (f ProductFormat) Label() string {
	return formats[f].Label
}

// IsPhysical true для всех форматов, кроме digital
func (f ProductFormat) IsPhysical() bool {
	return f != FormatDigital
}

// Personalization данные персонализации книги
type Personalization struct {
	Name         string       `json:"name"`
	Gender       Gender       `json:"gender"`
	BibleVersion BibleVersion `json:"bibleVersion"`
}
