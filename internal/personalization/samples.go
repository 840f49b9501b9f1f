package personalization

import "github.com/Dhoini/personalized-gospels/internal/domain"

// SampleVerse стих для предпросмотра на витрине
type SampleVerse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

var sampleVerses = []SampleVerse{
	{
		ID:        "matthew-5-14",
		Reference: "Matthew 5:14-16",
		Text:      `"{{NAME}}, you are the light of the world. A city set on a hill cannot be hidden... Let your light shine before men, {{SON_DAUGHTER}}, that they may see your good works and glorify your Father who is in heaven."`,
	},
	{
		ID:        "john-15-9",
		Reference: "John 15:9",
		Text:      `"Even as the Father has loved me, I also have loved you. Remain in my love, {{NAME}}. My child, if you keep my commandments, you will remain in my love, even as I have kept my Father's commandments and remain in his love."`,
	},
	{
		ID:        "matthew-11-28",
		Reference: "Matthew 11:28",
		Text:      `"Come to me, all you who labor and are heavily burdened, and I will give you rest. Take my yoke upon you and learn from me, {{NAME}}, for I am gentle and humble in heart; and you will find rest for your soul. {{SON_DAUGHTER}}, my yoke is easy, and my burden is light."`,
	},
}

// SampleVerses возвращает копию стихов для предпросмотра
func SampleVerses() []SampleVerse {
	out := make([]SampleVerse, len(sampleVerses))
	copy(out, sampleVerses)
	return out
}

// Preview персонализирует стихи предпросмотра
func Preview(displayName string, gender domain.Gender) []SampleVerse {
	verses := SampleVerses()
	for i := range verses {
		verses[i].Text = Render(verses[i].Text, displayName, gender)
	}
	return verses
}
