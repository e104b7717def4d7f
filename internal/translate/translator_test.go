package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/demandei/mediumsync/internal/domain"
)

// fakeGen answers prompts by extracting the embedded payload text and
// applying a transform, so tests can observe exactly what was sent to the
// provider.
type fakeGen struct {
	transform func(string) string
	err       error
	calls     int
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.transform(extractPayload(prompt)), nil
}

func extractPayload(prompt string) string {
	if i := strings.Index(prompt, "TÍTULO ORIGINAL:\n"); i >= 0 {
		rest := prompt[i+len("TÍTULO ORIGINAL:\n"):]
		if j := strings.Index(rest, "\n\nRESPOSTA"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	if i := strings.Index(prompt, "brasileiro:\n\n"); i >= 0 {
		rest := prompt[i+len("brasileiro:\n\n"):]
		if j := strings.Index(rest, "\n\nIMPORTANTE:"); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	return prompt
}

func upper(s string) string { return strings.ToUpper(s) }

func TestTranslator_DisabledPassesThrough(t *testing.T) {
	tr := New(nil)
	if tr.Enabled() {
		t.Fatalf("nil generator must disable the translator")
	}
	content := "Some original content with `code`."
	if got := tr.RewriteAndTranslate(context.Background(), content, "en", "pt"); got != content {
		t.Fatalf("disabled translator must pass through, got %q", got)
	}
	out, err := tr.TranslateArticle(context.Background(), &domain.Article{Title: "T"}, "pt")
	if err != nil || out != nil {
		t.Fatalf("disabled TranslateArticle = (%v, %v), want (nil, nil)", out, err)
	}
}

func TestRewriteAndTranslate_CodePreservedByteForByte(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)

	fence := "```go\nfunc main() { fmt.Println(\"hello\") }\n```"
	inline := "`x := 42`"
	content := "Here is a longer explanation of the program.\n\n" + fence + "\n\nAnd the variable " + inline + " stays."

	got := tr.RewriteAndTranslate(context.Background(), content, "en", "pt")

	if !strings.Contains(got, fence) {
		t.Fatalf("fenced block altered:\n%s", got)
	}
	if !strings.Contains(got, inline) {
		t.Fatalf("inline code altered:\n%s", got)
	}
	if !strings.Contains(got, "HERE IS A LONGER EXPLANATION") {
		t.Fatalf("prose not translated:\n%s", got)
	}
	if strings.Contains(got, "__CODE_BLOCK_") {
		t.Fatalf("placeholder leaked into output:\n%s", got)
	}
}

func TestRewriteAndTranslate_HTMLSkipsCodeAndShortRuns(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)

	content := `<p>This paragraph is long enough to translate.</p><pre>left alone entirely</pre><p>ok</p><code>x = 1</code>`
	got := tr.RewriteAndTranslate(context.Background(), content, "en", "pt")

	if !strings.Contains(got, "THIS PARAGRAPH IS LONG ENOUGH TO TRANSLATE.") {
		t.Fatalf("paragraph not translated:\n%s", got)
	}
	if !strings.Contains(got, "left alone entirely") {
		t.Fatalf("pre content must not be translated:\n%s", got)
	}
	if !strings.Contains(got, ">ok<") {
		t.Fatalf("short text runs must pass through:\n%s", got)
	}
	if !strings.Contains(got, "x = 1") {
		t.Fatalf("code content must not be translated:\n%s", got)
	}
	if strings.Contains(got, "<html>") || strings.Contains(got, "<body>") {
		t.Fatalf("document wrapper leaked:\n%s", got)
	}
}

func TestRewriteAndTranslate_PlainText(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)
	got := tr.RewriteAndTranslate(context.Background(), "plain prose without any markup at all", "en", "pt")
	if got != "PLAIN PROSE WITHOUT ANY MARKUP AT ALL" {
		t.Fatalf("unexpected output %q", got)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one provider call, got %d", gen.calls)
	}
}

func TestTranslateText_ProviderFailureFallsBack(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota exceeded")}
	tr := New(gen)
	in := "original text that should survive failures"
	if got := tr.RewriteAndTranslate(context.Background(), in, "en", "pt"); got != in {
		t.Fatalf("provider failure must return original, got %q", got)
	}
}

func TestTranslateArticle_SkipsWhenAlreadyTarget(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)

	out, err := tr.TranslateArticle(context.Background(), &domain.Article{Title: "Já em português", Lang: "pt"}, "pt")
	if err != nil || out != nil {
		t.Fatalf("expected (nil, nil) for same-language article, got (%v, %v)", out, err)
	}
	if gen.calls != 0 {
		t.Fatalf("provider must not be called, got %d calls", gen.calls)
	}
}

func TestTranslateArticle_TranslatesAllFields(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)

	a := &domain.Article{
		Title:    "Understanding Goroutines Deeply",
		Subtitle: "A practical walkthrough of Go concurrency",
		Content:  "Concurrency is a first class citizen in this language.",
		Lang:     "en",
	}
	out, err := tr.TranslateArticle(context.Background(), a, "pt")
	if err != nil {
		t.Fatalf("TranslateArticle: %v", err)
	}
	if out == nil {
		t.Fatalf("expected a translation")
	}
	if out.Title != "UNDERSTANDING GOROUTINES DEEPLY" {
		t.Fatalf("title: %q", out.Title)
	}
	if out.Subtitle != "A PRACTICAL WALKTHROUGH OF GO CONCURRENCY" {
		t.Fatalf("subtitle: %q", out.Subtitle)
	}
	if !strings.Contains(out.Content, "FIRST CLASS CITIZEN") {
		t.Fatalf("content: %q", out.Content)
	}
}

func TestTranslateTitle_CleansWrappingQuotes(t *testing.T) {
	gen := &fakeGen{transform: func(s string) string { return `"` + s + `"` }}
	tr := New(gen)

	got := tr.TranslateTitle(context.Background(), "Docker em Produção", "en", "pt")
	if got != "Docker em Produção" {
		t.Fatalf("wrapping quotes not stripped: %q", got)
	}
}

func TestTranslateTitle_ShortTitlesSkipped(t *testing.T) {
	gen := &fakeGen{transform: upper}
	tr := New(gen)
	if got := tr.TranslateTitle(context.Background(), "ab", "en", "pt"); got != "ab" {
		t.Fatalf("short title must pass through, got %q", got)
	}
	if gen.calls != 0 {
		t.Fatalf("provider must not be called for short titles")
	}
}

func TestSummarize_UsesProviderAndTrims(t *testing.T) {
	gen := &fakeGen{transform: func(string) string { return "  Resumo conciso do artigo.  " }}
	tr := New(gen)

	got := tr.Summarize(context.Background(), strings.Repeat("conteúdo longo ", 50), 500)
	if got != "Resumo conciso do artigo." {
		t.Fatalf("Summarize = %q", got)
	}
	if gen.calls != 1 {
		t.Fatalf("provider called %d times, want 1", gen.calls)
	}
}

func TestSummarize_CapsProviderOutput(t *testing.T) {
	gen := &fakeGen{transform: func(string) string { return strings.Repeat("a", 40) }}
	tr := New(gen)

	got := tr.Summarize(context.Background(), "x", 20)
	if len([]rune(got)) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("overlong summary not capped: %q", got)
	}
}

func TestSummarize_FallsBackToTruncation(t *testing.T) {
	content := strings.Repeat("palavra ", 20)

	// Disabled translator truncates directly.
	if got := New(nil).Summarize(context.Background(), content, 30); len([]rune(got)) != 30 || !strings.HasSuffix(got, "...") {
		t.Fatalf("disabled fallback = %q", got)
	}

	// Provider failure degrades the same way.
	gen := &fakeGen{err: errors.New("quota")}
	got := New(gen).Summarize(context.Background(), content, 30)
	if len([]rune(got)) != 30 || !strings.HasSuffix(got, "...") {
		t.Fatalf("error fallback = %q", got)
	}
	if gen.calls != 1 {
		t.Fatalf("provider called %d times, want 1", gen.calls)
	}
}
