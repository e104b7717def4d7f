// Package translate implements the rewrite step of the pipeline: article
// text is translated into Brazilian Portuguese through an LLM provider while
// code spans, markup structure, and media references pass through untouched.
//
// The Translator degrades gracefully: without a configured provider every
// method returns its input unchanged, so the rest of the pipeline never
// branches on translation availability.
package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/demandei/mediumsync/internal/domain"
)

// Generator runs one prompt against an LLM and returns its text output.
// *GeminiClient satisfies this; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// minTranslatableLen is the shortest text worth sending to the model.
// Shorter runs are almost always markup residue or technical tokens.
const minTranslatableLen = 10

var (
	codeSpanRe = regexp.MustCompile("```[\\s\\S]*?```|`[^`\\n]+`")
	htmlTagRe  = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
)

// Translator rewrites article text via a Generator.
type Translator struct {
	gen Generator
}

// New returns a Translator backed by gen. A nil gen produces a disabled
// translator whose methods pass input through unchanged.
func New(gen Generator) *Translator {
	return &Translator{gen: gen}
}

// Enabled reports whether a provider is wired in.
func (t *Translator) Enabled() bool { return t.gen != nil }

// TranslateArticle produces the translation artifact for an article. It
// returns (nil, nil) when translation is disabled or the article is already
// in the target language — nothing to do, not a failure.
func (t *Translator) TranslateArticle(ctx context.Context, a *domain.Article, targetLang string) (*domain.Translation, error) {
	if !t.Enabled() {
		return nil, nil
	}
	sourceLang := a.Lang
	if sourceLang == "" {
		sourceLang = "en"
	}
	if sourceLang == targetLang {
		log.Info().Str("article", a.ID).Str("lang", targetLang).Msg("article already in target language")
		return nil, nil
	}

	tr := &domain.Translation{}
	if a.Title != "" {
		tr.Title = t.TranslateTitle(ctx, a.Title, sourceLang, targetLang)
	}
	if a.Subtitle != "" {
		tr.Subtitle = t.translateText(ctx, a.Subtitle, sourceLang, targetLang)
	}
	if a.Content != "" {
		tr.Content = t.RewriteAndTranslate(ctx, a.Content, sourceLang, targetLang)
	}
	return tr, nil
}

// RewriteAndTranslate translates body content while preserving structure.
// Markdown with code spans goes through placeholder substitution so code
// survives byte for byte; HTML is walked node by node; plain text is
// translated wholesale.
func (t *Translator) RewriteAndTranslate(ctx context.Context, content, sourceLang, targetLang string) string {
	if !t.Enabled() || content == "" {
		return content
	}
	switch {
	case strings.Contains(content, "`"):
		return t.translatePreservingCode(ctx, content, sourceLang, targetLang)
	case htmlTagRe.MatchString(content):
		return t.translateHTML(ctx, content, sourceLang, targetLang)
	default:
		return t.translateText(ctx, content, sourceLang, targetLang)
	}
}

// translatePreservingCode swaps fenced blocks and inline code spans for
// placeholders, translates the remaining prose, then restores the original
// spans verbatim.
func (t *Translator) translatePreservingCode(ctx context.Context, content, sourceLang, targetLang string) string {
	var spans []string
	stripped := codeSpanRe.ReplaceAllStringFunc(content, func(m string) string {
		spans = append(spans, m)
		return fmt.Sprintf("__CODE_BLOCK_%d__", len(spans)-1)
	})

	translated := t.translateText(ctx, stripped, sourceLang, targetLang)

	for i, span := range spans {
		translated = strings.Replace(translated, fmt.Sprintf("__CODE_BLOCK_%d__", i), span, 1)
	}
	return translated
}

// translateHTML walks the document's text nodes, translating substantial
// prose runs and leaving script, style, code, and pre content alone.
func (t *Translator) translateHTML(ctx context.Context, content, sourceLang, targetLang string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		log.Warn().Err(err).Msg("html parse failed, translating as plain text")
		return t.translateText(ctx, content, sourceLang, targetLang)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if p := n.Parent; p != nil && p.Type == html.ElementNode {
				switch p.Data {
				case "script", "style", "code", "pre":
					return
				}
			}
			if text := strings.TrimSpace(n.Data); len(text) > minTranslatableLen {
				n.Data = t.translateText(ctx, text, sourceLang, targetLang)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		log.Warn().Err(err).Msg("html render failed after translation")
		return content
	}
	out := sb.String()
	// html.Parse wraps fragments in a full document; unwrap it.
	out = strings.TrimPrefix(out, "<html><head></head><body>")
	out = strings.TrimSuffix(out, "</body></html>")
	return out
}

// TranslateTitle translates a title with the conciseness prompt and applies
// title cleanup. The original title is returned on any provider failure.
func (t *Translator) TranslateTitle(ctx context.Context, title, sourceLang, targetLang string) string {
	if !t.Enabled() || len(strings.TrimSpace(title)) < 3 {
		return title
	}
	prompt := fmt.Sprintf(titlePrompt, langName(sourceLang, "English"), langName(targetLang, "Portuguese"), title)
	out, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("title translation failed")
		return title
	}
	return removeDashes(CleanTitle(strings.TrimSpace(out)))
}

// translateText translates one prose run with the persona prompt. Failures
// fall back to the original text so a flaky provider degrades rather than
// breaks the pipeline.
func (t *Translator) translateText(ctx context.Context, text, sourceLang, targetLang string) string {
	if !t.Enabled() || len(strings.TrimSpace(text)) < minTranslatableLen {
		return text
	}
	prompt := fmt.Sprintf(bodyPrompt, langName(sourceLang, "English"), langName(targetLang, "Portuguese"), text)
	out, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("text translation failed")
		return text
	}
	cleaned := CleanText(strings.TrimSpace(out))
	if len(cleaned) < minTranslatableLen || strings.Count(cleaned, " ") < 3 {
		log.Warn().Str("head", head(cleaned, 50)).Msg("translation might be incomplete")
	}
	return cleaned
}

// Summarize produces a Portuguese summary of at most maxLen characters.
// Without a provider it truncates instead, so callers always get something.
func (t *Translator) Summarize(ctx context.Context, content string, maxLen int) string {
	if maxLen <= 3 {
		maxLen = 4
	}
	truncate := func(s string) string {
		if r := []rune(s); len(r) > maxLen {
			return string(r[:maxLen-3]) + "..."
		}
		return s
	}
	if !t.Enabled() {
		return truncate(content)
	}

	prompt := fmt.Sprintf(summaryPrompt, maxLen, head(content, 2000))
	out, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("summarization failed")
		return truncate(content)
	}
	return truncate(strings.TrimSpace(out))
}

func head(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
