package translate

import (
	"regexp"
	"strings"
)

// Model output is never trusted verbatim: providers leak prompt fragments,
// UI strings, and punctuation the persona forbids. The cleanup rules below
// run in a fixed order on every translated text.

var (
	leakagePrefixRe = regexp.MustCompile(`(?i)^(Translated text:|Translation:|Here is|Here's|Aqui está|Texto traduzido).*?:`)
	titlePrefixRe   = regexp.MustCompile(`(?i)^(Título traduzido:|Resposta:|Here is|Aqui está).*?:`)
	blankRunsRe     = regexp.MustCompile(`\n\s*\n\s*\n+`)

	// Standalone UI words that models occasionally hallucinate into body text.
	problemWords = []string{"Refresh", "Reload", "Update", "Click here"}

	// Marker lines that open the related-content/author-bio tail some source
	// bodies drag along. Everything from the first marker onward is dropped.
	trailingSectionRe = regexp.MustCompile(`(?im)^(?:more from\b|related articles?\b|related:|recommended from\b|follow (?:me|him|her|us|the author)\b|sign up for\b|subscribe to\b|about the author\b).*$`)

	pairedDashRe   = regexp.MustCompile(`\s+[–—]\s+([^–—]+?)\s+[–—]\s+`)
	openingDashRe  = regexp.MustCompile(`\s+[–—]\s+([^.!?]+)`)
	trailingDashRe = regexp.MustCompile(`(\w+)\s+[–—]\s+([^.!?]+)`)
	doubleCommaRe  = regexp.MustCompile(`,\s*,`)
	commaPeriodRe  = regexp.MustCompile(`,\s*\.`)
)

// CleanText scrubs a translated body or subtitle: prompt leakage prefixes,
// standalone UI words, trailing related-content/author-bio sections,
// collapsed blank runs, and dash-to-comma conversion.
func CleanText(text string) string {
	text = leakagePrefixRe.ReplaceAllString(text, "")

	for _, w := range problemWords {
		standalone := regexp.MustCompile(`(?im)^` + regexp.QuoteMeta(w) + `\s*$`)
		text = standalone.ReplaceAllString(text, "")
		inline := regexp.MustCompile(`(?i)\n` + regexp.QuoteMeta(w) + `\s*\n`)
		text = inline.ReplaceAllString(text, "\n")
	}

	if loc := trailingSectionRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	return removeDashes(text)
}

// CleanTitle scrubs a translated title: leakage prefixes, wrapping quotes,
// and a hard length cap for the CMS.
func CleanTitle(title string) string {
	title = titlePrefixRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if n := len(title); n >= 2 {
		if (title[0] == '"' && title[n-1] == '"') || (title[0] == '\'' && title[n-1] == '\'') {
			title = title[1 : n-1]
		}
	}

	if r := []rune(title); len(r) > 100 {
		title = string(r[:97]) + "..."
	}
	return strings.TrimSpace(title)
}

// removeDashes converts em/en-dash parentheticals into comma clauses and
// repairs the punctuation artifacts the substitution can leave behind.
func removeDashes(text string) string {
	text = pairedDashRe.ReplaceAllString(text, ", $1, ")
	text = openingDashRe.ReplaceAllString(text, ", $1")
	text = trailingDashRe.ReplaceAllString(text, "$1, $2")
	text = doubleCommaRe.ReplaceAllString(text, ",")
	text = commaPeriodRe.ReplaceAllString(text, ".")
	return text
}
