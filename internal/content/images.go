package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
	bareImageURLRe  = regexp.MustCompile(`https?://[^\s"'<>)]+\.(?:png|jpe?g|gif|webp|svg)(?:\?[^\s"'<>)]*)?`)
)

// ExtractImageURLs collects inline image URLs from an article body in
// discovery order, deduplicated. Markdown bodies are scanned for image
// syntax plus bare image URLs; HTML bodies are walked for img src
// attributes.
func ExtractImageURLs(body, format string) []string {
	var found []string
	switch format {
	case FormatHTML:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return nil
		}
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok && src != "" {
				found = append(found, src)
			}
		})
	default:
		for _, m := range markdownImageRe.FindAllStringSubmatch(body, -1) {
			found = append(found, m[1])
		}
		found = append(found, bareImageURLRe.FindAllString(body, -1)...)
	}

	seen := make(map[string]struct{}, len(found))
	out := found[:0]
	for _, u := range found {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
