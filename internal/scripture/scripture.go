// Package scripture хранит встроенный набор стихов, используемый для
// образца и для макета книги.
package scripture

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/internal/personalization"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Verse стих с плейсхолдерами
type Verse struct {
	Number int    `yaml:"number" json:"number"`
	Text   string `yaml:"text" json:"text"`
}

// Chapter глава в одном переводе
type Chapter struct {
	Version     domain.BibleVersion `yaml:"version" json:"version"`
	VersionName string              `yaml:"versionName" json:"versionName"`
	Book        string              `yaml:"book" json:"book"`
	Chapter     int                 `yaml:"chapter" json:"chapter"`
	Title       string              `yaml:"title" json:"title"`
	Subtitle    string              `yaml:"subtitle" json:"subtitle"`
	Verses      []Verse             `yaml:"verses" json:"verses"`
}

// SampleBook и SampleChapter фиксированная глава образца
const (
	SampleBook    = "Matthew"
	SampleChapter = 5
)

var chapters = mustLoadChapters()

func mustLoadChapters() map[domain.BibleVersion]Chapter {
	out := make(map[domain.BibleVersion]Chapter)
	for _, v := range []domain.BibleVersion{domain.BibleVersionWEB, domain.BibleVersionKJV} {
		ch, err := loadChapter(v)
		if err != nil {
			panic(err)
		}
		out[v] = ch
	}
	return out
}

func loadChapter(version domain.BibleVersion) (Chapter, error) {
	path := fmt.Sprintf("data/matthew-%d-%s.yaml", SampleChapter, version)
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return Chapter{}, fmt.Errorf("read %s: %w", path, err)
	}

	var ch Chapter
	if err := yaml.Unmarshal(raw, &ch); err != nil {
		return Chapter{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if ch.Version != version || len(ch.Verses) == 0 {
		return Chapter{}, fmt.Errorf("dataset %s is inconsistent", path)
	}
	return ch, nil
}

// SampleChapterFor возвращает главу образца для перевода
func SampleChapterFor(version domain.BibleVersion) (Chapter, error) {
	ch, ok := chapters[version]
	if !ok {
		return Chapter{}, domain.NewValidationError("", "bibleVersion", fmt.Sprintf("unknown version %q", version))
	}
	verses := make([]Verse, len(ch.Verses))
	copy(verses, ch.Verses)
	ch.Verses = verses
	return ch, nil
}

// Personalize возвращает копию главы с подставленными именем и местоимениями
func (c Chapter) Personalize(name string, gender domain.Gender) Chapter {
	texts := make([]string, len(c.Verses))
	for i, v := range c.Verses {
		texts[i] = v.Text
	}
	rendered := personalization.RenderVerses(texts, name, gender)

	out := c
	out.Verses = make([]Verse, len(c.Verses))
	for i, v := range c.Verses {
		out.Verses[i] = Verse{Number: v.Number, Text: rendered[i]}
	}
	return out
}
