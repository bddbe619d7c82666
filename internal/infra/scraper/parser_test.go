package scraper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/scraper"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>El País</title>
  <link>https://elpais.test/</link>
  <item>
    <title>Economía española crece</title>
    <link>https://elpais.test/economia/1</link>
    <pubDate>Fri, 14 Jun 2024 10:00:00 +0200</pubDate>
    <media:content url="https://img.elpais.test/1.jpg" medium="image"/>
  </item>
  <item>
    <title>Sin fecha</title>
    <link>https://elpais.test/sociedad/2</link>
    <media:thumbnail url="https://img.elpais.test/2-thumb.jpg"/>
  </item>
  <item>
    <title></title>
    <link>https://elpais.test/sin-titulo</link>
    <pubDate>Fri, 14 Jun 2024 08:00:00 +0000</pubDate>
    <enclosure url="https://img.elpais.test/3.png" type="image/png" length="100"/>
  </item>
  <item>
    <title>Sin enlace</title>
  </item>
  <item>
    <title>Enlace relativo</title>
    <link>/relativo/5</link>
  </item>
  <item>
    <title>Agencia</title>
    <link>https://elpais.test/agencia/6</link>
    <source url="https://efe.test/rss">Agencia EFE</source>
    <description><![CDATA[<p>Texto <img src="https://img.efe.test/6.webp"/></p>]]></description>
  </item>
</channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Clarín</title>
  <id>urn:clarin</id>
  <updated>2024-06-14T12:00:00Z</updated>
  <entry>
    <title>Elecciones en Buenos Aires</title>
    <id>urn:clarin:1</id>
    <link href="https://clarin.test/politica/1"/>
    <published>2024-06-14T09:30:00-03:00</published>
    <updated>2024-06-14T11:00:00-03:00</updated>
  </entry>
  <entry>
    <title>Solo actualizado</title>
    <id>urn:clarin:2</id>
    <link href="https://clarin.test/sociedad/2"/>
    <updated>2024-06-13T20:00:00Z</updated>
    <source><title>Télam</title></source>
  </entry>
</feed>`

var elPais = entity.SourceDescriptor{
	ID:       "elpais",
	Name:     "El País",
	Country:  "es",
	Language: "es",
	Feeds:    []string{"https://elpais.test/rss"},
}

var clarin = entity.SourceDescriptor{
	ID:       "clarin",
	Name:     "Clarín",
	Country:  "ar",
	Language: "es",
	Feeds:    []string{"https://clarin.test/rss"},
}

func TestParser_RSS(t *testing.T) {
	items, warnings := scraper.NewParser().Parse([]byte(rssFixture), elPais)

	require.Len(t, items, 4)
	assert.Equal(t, []string{"El País: malformed entry skipped"}, warnings)

	first := items[0]
	assert.Equal(t, "Economía española crece", first.Title)
	assert.Equal(t, "https://elpais.test/economia/1", first.Link)
	assert.Equal(t, "https://img.elpais.test/1.jpg", first.ImagePath)
	assert.Equal(t, "El País", first.Source)
	assert.Equal(t, "es", first.Country)
	assert.Equal(t, "es", first.Language)
	require.NotNil(t, first.PublishedAt)
	assert.True(t, first.PublishedAt.Equal(time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, first.PublishedAt.Location())

	// 日付なしでもアイテムは出力される
	assert.Equal(t, "Sin fecha", items[1].Title)
	assert.Nil(t, items[1].PublishedAt)
	assert.Equal(t, "https://img.elpais.test/2-thumb.jpg", items[1].ImagePath)

	assert.Equal(t, entity.UntitledPlaceholder, items[2].Title)
	assert.Equal(t, "https://img.elpais.test/3.png", items[2].ImagePath)

	assert.Equal(t, "Agencia EFE", items[3].Source)
	assert.Equal(t, "https://img.efe.test/6.webp", items[3].ImagePath)
}

func TestParser_Atom(t *testing.T) {
	items, warnings := scraper.NewParser().Parse([]byte(atomFixture), clarin)

	assert.Empty(t, warnings)
	require.Len(t, items, 2)

	assert.Equal(t, "Elecciones en Buenos Aires", items[0].Title)
	assert.Equal(t, "https://clarin.test/politica/1", items[0].Link)
	assert.Equal(t, "Clarín", items[0].Source)
	assert.Equal(t, "ar", items[0].Country)
	require.NotNil(t, items[0].PublishedAt)
	// published は updated より優先
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2024, 6, 14, 12, 30, 0, 0, time.UTC)))

	require.NotNil(t, items[1].PublishedAt)
	assert.True(t, items[1].PublishedAt.Equal(time.Date(2024, 6, 13, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Télam", items[1].Source)
}

func TestParser_ParseFailed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "html page", raw: "<html><body>not a feed</body></html>"},
		{name: "json", raw: `{"version":"https://jsonfeed.org/version/1","items":[]}`},
		{name: "truncated rss", raw: `<rss version="2.0"><channel><item><title>x</ti`},
		{name: "binary", raw: "\x00\x01\x02\x03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				items    []entity.NormalizedItem
				warnings []string
			)
			assert.NotPanics(t, func() {
				items, warnings = scraper.NewParser().Parse([]byte(tt.raw), elPais)
			})
			assert.Empty(t, items)
			assert.Equal(t, []string{"El País: parse failed"}, warnings)
		})
	}
}

func TestParser_EmptyChannel(t *testing.T) {
	raw := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`

	items, warnings := scraper.NewParser().Parse([]byte(raw), elPais)

	assert.Empty(t, items)
	assert.Empty(t, warnings)
}

func TestParser_AllEntriesCarrySourceLocale(t *testing.T) {
	src := elPais
	src.Country = "mx"
	src.Language = "es"

	items, _ := scraper.NewParser().Parse([]byte(rssFixture), src)

	for _, it := range items {
		assert.Equal(t, "mx", it.Country)
		assert.Equal(t, "es", it.Language)
	}
}
