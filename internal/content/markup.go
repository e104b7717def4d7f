package content

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Content formats accepted by RenderBody. Anything else is treated as plain
// text.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// sourcePolicy sanitizes HTML fetched from the source platform before it is
// restyled. User-generated-content defaults: structural and formatting tags
// survive, scripts and event handlers do not.
var sourcePolicy = bluemonday.UGCPolicy()

var (
	escapedBacktickRe = regexp.MustCompile("\\\\`")
	escapedQuoteRe    = regexp.MustCompile(`\\"`)
	leadingH1Re       = regexp.MustCompile(`(?m)^# `)
	headerBeforeRe    = regexp.MustCompile(`\n(#{2,6} )`)
	headerAfterRe     = regexp.MustCompile(`(#{2,6} [^\n]+)\n`)
	blankLinesRe      = regexp.MustCompile(`\n{3,}`)
)

// PreprocessMarkdown normalizes fetched markdown before rendering: escaped
// backticks and quotes are unescaped, top-level headings are demoted to H2
// (the post title owns H1), headings get blank lines around them, and runs
// of three or more blank lines collapse to one.
func PreprocessMarkdown(src string) string {
	src = escapedBacktickRe.ReplaceAllString(src, "`")
	src = escapedQuoteRe.ReplaceAllString(src, `"`)
	src = leadingH1Re.ReplaceAllString(src, "## ")
	src = headerBeforeRe.ReplaceAllString(src, "\n\n$1")
	src = headerAfterRe.ReplaceAllString(src, "$1\n\n")
	src = blankLinesRe.ReplaceAllString(src, "\n\n")
	return src
}

// RenderBody converts an article body into restyled HTML ready for the CMS
// editor.
//
//   - markdown: preprocessed, rendered through goldmark, then restyled.
//   - html: sanitized, then restyled.
//   - anything else: escaped and wrapped as paragraphs.
func RenderBody(body, format string) (string, error) {
	if body == "" {
		return "", nil
	}
	switch format {
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := md.Convert([]byte(PreprocessMarkdown(body)), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return Restyle(buf.String())
	case FormatHTML:
		return Restyle(sourcePolicy.Sanitize(body))
	default:
		return TextToHTML(body), nil
	}
}

// codeCard wraps a code block in the gradient card used across the blog.
// The %s is the HTML-escaped code content.
const codeCard = `<div class="codehilite">
<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 3px; border-radius: 8px; margin: 20px 0;">
<div style="background: #1e1e1e; border-radius: 6px; padding: 0; overflow: hidden;">
<pre style="margin: 0; padding: 15px; overflow-x: auto; background: #1e1e1e;"><code style="color: #d4d4d4; font-family: 'Consolas', 'Monaco', 'Courier New', monospace; font-size: 14px; line-height: 1.5;">%s</code></pre>
</div>
</div>
</div>`

const (
	inlineCodeStyle = "background-color: #f4f4f4; color: #c7254e; padding: 2px 6px; border-radius: 3px; font-family: monospace; font-size: 90%;"
	blockquoteStyle = "border-left: 4px solid #667eea; padding-left: 20px; margin: 20px 0; color: #555; font-style: italic;"
	imageStyle      = "max-width: 100%; height: auto; border-radius: 8px; margin: 20px auto; display: block; box-shadow: 0 4px 6px rgba(0,0,0,0.1);"
	linkStyle       = "color: #667eea; text-decoration: none; border-bottom: 1px solid #667eea;"
)

// Restyle applies the blog's visual conventions to rendered HTML:
//
//   - H1 headings demoted to H2, heading inline styles stripped.
//   - Empty paragraphs removed.
//   - Code blocks wrapped in the gradient card; inline code styled.
//   - Blockquotes, images (lazy loading), and external links styled.
//   - A horizontal rule inserted before every H2 except the first.
func Restyle(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		inner, _ := s.Html()
		s.ReplaceWithHtml("<h2>" + inner + "</h2>")
	})
	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("style")
	})

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" && s.Find("br, img").Length() == 0 {
			s.Remove()
		}
	})

	doc.Find("ul, li").Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("style")
	})

	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		code := s.Find("code").First()
		text := code.Text()
		if code.Length() == 0 {
			text = s.Text()
		}
		s.ReplaceWithHtml(fmt.Sprintf(codeCard, html.EscapeString(text)))
	})
	doc.Find("code").Each(func(_ int, s *goquery.Selection) {
		// Skip code inside the cards inserted above.
		if s.ParentsFiltered("div.codehilite").Length() > 0 {
			return
		}
		s.SetAttr("style", inlineCodeStyle)
	})

	doc.Find("blockquote").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("style", blockquoteStyle)
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("style", imageStyle)
		s.SetAttr("loading", "lazy")
	})

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http") {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener noreferrer")
			s.SetAttr("style", linkStyle)
		}
	})

	doc.Find("h2").Each(func(i int, s *goquery.Selection) {
		if i > 0 {
			s.BeforeHtml("<hr/>")
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}
	return out, nil
}

// TextToHTML escapes plain text and converts blank-line-separated blocks into
// paragraphs, with single newlines becoming <br>.
func TextToHTML(text string) string {
	text = html.EscapeString(text)
	text = strings.ReplaceAll(text, "\n\n", "</p><p>")
	text = strings.ReplaceAll(text, "\n", "<br>")
	return "<p>" + text + "</p>"
}
