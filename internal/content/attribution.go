package content

import (
	"fmt"
	"html"
	"strings"

	"github.com/demandei/mediumsync/internal/domain"
)

const sectionDivider = `<div style="margin: 30px 0; border-top: 2px solid #e0e0e0;"></div>`

// FeaturedImageHTML renders the cover image block placed at the top of a
// post. Returns "" when there is no cover image.
func FeaturedImageHTML(imageURL, title string) string {
	if imageURL == "" {
		return ""
	}
	return fmt.Sprintf(`<div style="margin-bottom: 30px; text-align: center;">
<img src=%q alt=%q style="max-width: 100%%; height: auto; border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.1);">
</div>`, imageURL, html.EscapeString(title))
}

// AboutBox renders the closing card crediting the adaptation and linking back
// to the source article.
func AboutBox(sourceURL string) string {
	if sourceURL == "" {
		sourceURL = "#"
	}
	return fmt.Sprintf(`<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 3px; border-radius: 10px; margin: 30px 0;">
<div style="background: white; padding: 20px; border-radius: 8px;">
<h4 style="margin-top: 0; color: #333;">💡 Sobre este artigo</h4>
<p style="color: #666;">Este conteúdo foi adaptado e traduzido para português brasileiro pela equipe <strong>Demandei</strong>, plataforma que conecta freelancers e empresas de tecnologia.</p>
<p style="margin-bottom: 0;">
<a href=%q target="_blank" rel="noopener" style="color: #667eea; text-decoration: none; font-weight: bold;">📖 Leia o artigo original no Medium →</a>
</p>
</div>
</div>`, sourceURL)
}

// CleanAttribution returns the source metadata worth surfacing alongside a
// post, dropping empty and zero-valued fields.
func CleanAttribution(a *domain.Article) map[string]any {
	out := map[string]any{}
	if a.Author != "" {
		out["author"] = a.Author
	}
	if a.PublishedAt != "" {
		out["published_at"] = a.PublishedAt
	}
	if a.ReadingTime > 0 {
		out["reading_time"] = a.ReadingTime
	}
	if a.Claps > 0 {
		out["claps"] = a.Claps
	}
	if a.URL != "" {
		out["url"] = a.URL
	}
	return out
}

// ComposePostBody assembles the final post HTML: optional cover image, the
// restyled body between dividers, and the closing about box.
func ComposePostBody(featuredImage, bodyHTML, aboutBox string) string {
	parts := make([]string, 0, 5)
	if featuredImage != "" {
		parts = append(parts, featuredImage)
	}
	parts = append(parts, sectionDivider, bodyHTML, sectionDivider, aboutBox)
	return strings.Join(parts, "\n\n")
}
