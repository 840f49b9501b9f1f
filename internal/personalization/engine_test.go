package personalization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dhoini/personalized-gospels/internal/domain"
)

func TestRender_Examples(t *testing.T) {
	got := Render(`"{{NAME}}, you are the light of the world. {{SON_DAUGHTER}}, shine."`, "Maria", domain.GenderFemale)
	assert.Equal(t, `"Maria, you are the light of the world. daughter, shine."`, got)

	got = Render(`"{{NAME}} is called."`, "", domain.GenderNeutral)
	assert.Equal(t, `"[Your Name] is called."`, got)
}

func TestRender_RemovesAllTokens(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		for _, tok := range Tokens() {
			sb.WriteString(tok.Pattern())
			sb.WriteString(" - ")
		}
	}
	source := sb.String()

	for _, g := range domain.Genders() {
		for _, name := range []string{"", "  ", "John", "{{NAME}}", "{}}{HE_SHE}}", "{{{{"} {
			out := Render(source, name, g)
			for _, tok := range Tokens() {
				assert.NotContains(t, out, tok.Pattern(), "gender=%s name=%q", g, name)
			}
		}
	}
}

func TestRender_NoRecursiveExpansion(t *testing.T) {
	out := Render("Hello {{NAME}}!", "{{HE_SHE}}", domain.GenderMale)
	assert.Equal(t, "Hello HE_SHE!", out)
}

func TestResolveName_StripsPlaceholderBraces(t *testing.T) {
	assert.Equal(t, "NAME", ResolveName("{{NAME}}"))
	assert.Equal(t, "HE_SHE", ResolveName("{}}{HE_SHE}}"))
	assert.Equal(t, FallbackName, ResolveName(" {{}} "))
	assert.Equal(t, "O'Neil {Jr}", ResolveName("O'Neil {Jr}"))
}

func TestRender_IdentityWithoutTokens(t *testing.T) {
	sources := []string{
		"",
		"Blessed are the poor in spirit, for theirs is the Kingdom of Heaven.",
		"  spacing\tand\nnewlines  ",
		"{{UNKNOWN}} {{name}} { {NAME} } {{ NAME }}",
		"unicode — “quotes” ✝",
	}
	for _, src := range sources {
		for _, g := range domain.Genders() {
			assert.Equal(t, src, Render(src, "Maria", g))
		}
	}
}

func TestRender_WhitespaceNameFallsBack(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n  "} {
		assert.Equal(t, FallbackName+".", Render("{{NAME}}.", name, domain.GenderMale))
	}
	assert.Equal(t, "Anna.", Render("{{NAME}}.", "  Anna ", domain.GenderMale))
}

func TestRender_Deterministic(t *testing.T) {
	before := TermsFor(domain.GenderFemale)
	src := "{{MY_CHILD}}, {{HE_SHE}} loves {{HIM_HER}} and {{HIS_HER}} works."

	first := Render(src, "Ruth", domain.GenderFemale)
	second := Render(src, "Ruth", domain.GenderFemale)

	assert.Equal(t, first, second)
	assert.Equal(t, "my daughter, she loves her and her works.", first)
	assert.Equal(t, before, TermsFor(domain.GenderFemale))
}

func TestRender_GenderTable(t *testing.T) {
	src := "{{SON_DAUGHTER}}|{{MY_CHILD}}|{{HE_SHE}}|{{HIM_HER}}|{{HIS_HER}}"
	assert.Equal(t, "son|my son|he|him|his", Render(src, "x", domain.GenderMale))
	assert.Equal(t, "daughter|my daughter|she|her|her", Render(src, "x", domain.GenderFemale))
	assert.Equal(t, "beloved|my child|they|them|their", Render(src, "x", domain.GenderNeutral))
}

func TestTermsFor_Totality(t *testing.T) {
	for _, g := range domain.Genders() {
		terms := TermsFor(g)
		for _, v := range []string{terms.SonDaughter, terms.MyChild, terms.HeShe, terms.HimHer, terms.HisHer} {
			assert.NotEmpty(t, v, "gender=%s", g)
		}
	}
}

func TestPreview_DoesNotMutateSamples(t *testing.T) {
	verses := Preview("Maria", domain.GenderFemale)
	assert.Len(t, verses, 3)
	assert.Contains(t, verses[0].Text, "Maria, you are the light")
	assert.Contains(t, SampleVerses()[0].Text, "{{NAME}}")
}

func TestRenderVerses(t *testing.T) {
	sources := []string{"{{NAME}} is {{MY_CHILD}}", "{{HE_SHE}} rests"}

	out := RenderVerses(sources, "Sam", domain.GenderNeutral)

	assert.Equal(t, []string{"Sam is my child", "they rests"}, out)
	assert.Equal(t, "{{NAME}} is {{MY_CHILD}}", sources[0])
}
