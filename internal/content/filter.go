// Package content implements the editorial pipeline applied to fetched
// articles before they are republished: denylist filtering, tag
// normalization, category mapping, markup rendering and restyling, and
// image extraction.
//
// The package is pure — no I/O, no persistence — so every function is
// deterministic and trivially testable. Services compose these helpers
// around the fetch/translate/publish flow.
package content

import "strings"

// blockedKeywords marks promotional and recruiting material that must never
// be republished. Matching is case-insensitive substring over the title,
// subtitle, and the leading slice of the body.
var blockedKeywords = []string{
	"hiring", "we are hiring", "job opening", "job opportunity",
	"vacancy", "vaga", "vagas", "contratando", "oportunidade de emprego",
	"sale", "discount", "promo", "promotion", "black friday",
	"buy now", "compre agora", "promoção", "desconto",
	"iphone", "samsung galaxy", "smartphone deals",
}

// bodyScanLimit bounds how much of the article body the denylist scan reads.
const bodyScanLimit = 1000

// ShouldFilter reports whether an article must be dropped, and which denylist
// keyword triggered the drop. Only the first bodyScanLimit characters of the
// body are scanned; spam signals cluster at the top of promotional posts.
func ShouldFilter(title, subtitle, body string) (bool, string) {
	title = strings.ToLower(title)
	subtitle = strings.ToLower(subtitle)
	body = strings.ToLower(body)
	if len(body) > bodyScanLimit {
		body = body[:bodyScanLimit]
	}
	for _, kw := range blockedKeywords {
		if strings.Contains(title, kw) || strings.Contains(subtitle, kw) || strings.Contains(body, kw) {
			return true, kw
		}
	}
	return false, ""
}
