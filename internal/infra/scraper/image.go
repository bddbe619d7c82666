package scraper

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ExtractImage returns the best image URL for a feed item, or "".
// Candidates in order: media:content, media:thumbnail, an image enclosure,
// the item image, then the first <img> in content or description.
func ExtractImage(it *gofeed.Item) string {
	if it == nil {
		return ""
	}
	if u := mediaURL(it.Extensions, "content"); u != "" {
		return u
	}
	if u := mediaURL(it.Extensions, "thumbnail"); u != "" {
		return u
	}
	for _, enc := range it.Enclosures {
		if enc != nil && isImageEnclosure(enc) {
			return strings.TrimSpace(enc.URL)
		}
	}
	if it.Image != nil && strings.TrimSpace(it.Image.URL) != "" {
		return strings.TrimSpace(it.Image.URL)
	}
	if u := firstImgSrc(it.Content); u != "" {
		return u
	}
	return firstImgSrc(it.Description)
}

// mediaURL looks for media:<name> elements, including those nested in media:group.
func mediaURL(exts ext.Extensions, name string) string {
	media, ok := exts["media"]
	if !ok {
		return ""
	}
	if u := firstAttrURL(media[name]); u != "" {
		return u
	}
	for _, group := range media["group"] {
		if u := firstAttrURL(group.Children[name]); u != "" {
			return u
		}
	}
	return ""
}

func firstAttrURL(elems []ext.Extension) string {
	for _, e := range elems {
		if u := strings.TrimSpace(e.Attrs["url"]); u != "" {
			return u
		}
	}
	return ""
}

func isImageEnclosure(enc *gofeed.Enclosure) bool {
	if strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
		return true
	}
	u := strings.ToLower(enc.URL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	_, ok := imageExtensions[path.Ext(u)]
	return ok
}

// firstImgSrc returns the src of the first <img> in an HTML fragment.
func firstImgSrc(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
