package aggregate

import (
	"fmt"
	"net/url"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/domain/locale"
)

const (
	googleNewsID       = "google-news"
	googleNewsName     = "Google News"
	googleNewsHomepage = "https://news.google.com"

	defaultSearchLanguage = "es"
	defaultSearchRegion   = "US"
)

// GoogleNewsSource builds the synthetic search source added to every call.
// country is a canonical lang-CC code or empty; language is a primary subtag or empty.
func GoogleNewsSource(keyword, country, language string) entity.SourceDescriptor {
	lang := language
	if lang == "" {
		lang = defaultSearchLanguage
	}
	region := locale.Region(country)
	if region == "" {
		region = defaultSearchRegion
	}

	stamped := country
	if stamped == "" {
		stamped = locale.AllCountries
	}

	return entity.SourceDescriptor{
		ID:       googleNewsID,
		Name:     googleNewsName,
		Country:  stamped,
		Language: lang,
		Feeds:    []string{GoogleNewsSearchURL(keyword, lang, region)},
		Homepage: googleNewsHomepage,
	}
}

// GoogleNewsSearchURL returns the RSS search endpoint for keyword.
func GoogleNewsSearchURL(keyword, lang, region string) string {
	return fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		url.QueryEscape(keyword), lang, region, region, lang)
}
