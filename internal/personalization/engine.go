// Package personalization подставляет имя и формы местоимений в текст с
// фиксированным набором плейсхолдеров {{TOKEN}}.
package personalization

import (
	"strings"

	"github.com/Dhoini/personalized-gospels/internal/domain"
)

// Token плейсхолдер в исходном тексте
type Token string

const (
	TokenName        Token = "NAME"
	TokenSonDaughter Token = "SON_DAUGHTER"
	TokenMyChild     Token = "MY_CHILD"
	TokenHeShe       Token = "HE_SHE"
	TokenHimHer      Token = "HIM_HER"
	TokenHisHer      Token = "HIS_HER"
)

// FallbackName подставляется вместо пустого имени
const FallbackName = "[Your Name]"

// Tokens возвращает все шесть плейсхолдеров
func Tokens() []Token {
	return []Token{TokenName, TokenSonDaughter, TokenMyChild, TokenHeShe, TokenHimHer, TokenHisHer}
}

// Pattern возвращает плейсхолдер в виде, в котором он встречается в тексте
func (t Token) Pattern() string {
	return "{{" + string(t) + "}}"
}

// Terms формы слов для одной категории
type Terms struct {
	SonDaughter string
	MyChild     string
	HeShe       string
	HimHer      string
	HisHer      string
}

var genderTerms = map[domain.Gender]Terms{
	domain.GenderMale:    {SonDaughter: "son", MyChild: "my son", HeShe: "he", HimHer: "him", HisHer: "his"},
	domain.GenderFemale:  {SonDaughter: "daughter", MyChild: "my daughter", HeShe: "she", HimHer: "her", HisHer: "her"},
	domain.GenderNeutral: {SonDaughter: "beloved", MyChild: "my child", HeShe: "they", HimHer: "them", HisHer: "their"},
}

// TermsFor возвращает формы слов для категории. Неизвестная категория
// трактуется как neutral.
func TermsFor(gender domain.Gender) Terms {
	if terms, ok := genderTerms[gender]; ok {
		return terms
	}
	return genderTerms[domain.GenderNeutral]
}

// ResolveName возвращает имя без крайних пробелов и скобок плейсхолдеров или FallbackName
func ResolveName(displayName string) string {
	if name := strings.TrimSpace(stripBraces(displayName)); name != "" {
		return name
	}
	return FallbackName
}

// stripBraces убирает "{{" и "}}", пока они встречаются
func stripBraces(name string) string {
	for strings.Contains(name, "{{") || strings.Contains(name, "}}") {
		name = strings.ReplaceAll(strings.ReplaceAll(name, "{{", ""), "}}", "")
	}
	return name
}

func replacer(displayName string, gender domain.Gender) *strings.Replacer {
	terms := TermsFor(gender)
	return strings.NewReplacer(
		TokenName.Pattern(), ResolveName(displayName),
		TokenSonDaughter.Pattern(), terms.SonDaughter,
		TokenMyChild.Pattern(), terms.MyChild,
		TokenHeShe.Pattern(), terms.HeShe,
		TokenHimHer.Pattern(), terms.HimHer,
		TokenHisHer.Pattern(), terms.HisHer,
	)
}

// Render заменяет все вхождения шести плейсхолдеров за один проход.
// Подставленные значения повторно не разбираются; прочие байты текста не меняются.
func Render(source, displayName string, gender domain.Gender) string {
	return replacer(displayName, gender).Replace(source)
}

// RenderVerses применяет Render к каждому тексту; исходный срез не меняется
func RenderVerses(sources []string, displayName string, gender domain.Gender) []string {
	r := replacer(displayName, gender)
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = r.Replace(s)
	}
	return out
}
