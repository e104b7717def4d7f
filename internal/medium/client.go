// Package medium wraps the third-party Medium REST API. Every billable call
// is throttled and reported to a UsageRecorder so the monthly budget ledger
// stays accurate; callers gate on the budget before invoking anything here.
package medium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/content"
	"github.com/demandei/mediumsync/internal/domain"
)

// UsageRecorder counts billable provider calls. Implementations must never
// block the fetch path on persistence failures.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, n int)
}

// Client is the provider API wrapper. All article lookups flow through a
// shared rate limiter so back-to-back detail fetches respect the provider's
// pacing expectations.
type Client struct {
	apiKey  string
	apiHost string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	usage   UsageRecorder
}

// NewClient builds a Client from config. usage may be nil when call counting
// is not wanted (tests, one-off tooling).
func NewClient(cfg config.MediumConfig, usage UsageRecorder) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.Logger = nil
	r.HTTPClient.Timeout = cfg.Timeout

	throttle := cfg.Throttle
	if throttle <= 0 {
		throttle = 1
	}
	return &Client{
		apiKey:  cfg.APIKey,
		apiHost: cfg.APIHost,
		baseURL: "https://" + cfg.APIHost,
		http:    r.StandardClient(),
		limiter: rate.NewLimiter(rate.Every(throttle), 1),
		usage:   usage,
	}
}

// Enabled reports whether provider credentials are configured.
func (c *Client) Enabled() bool { return c.apiKey != "" && c.apiHost != "" }

func (c *Client) recordUsage(ctx context.Context, n int) {
	if c.usage != nil {
		c.usage.RecordUsage(ctx, n)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("medium request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("medium API %d on %s: %s", resp.StatusCode, path, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type searchResponse struct {
	Articles   []string `json:"articles"`
	ArticleIDs []string `json:"article_ids"`
}

type articleResponse struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Author        string   `json:"author"`
	AuthorID      string   `json:"author_id"`
	PublicationID string   `json:"publication_id"`
	PublishedAt   string   `json:"published_at"`
	URL           string   `json:"url"`
	Tags          []string `json:"tags"`
	Topics        []string `json:"topics"`
	Claps         int      `json:"claps"`
	Responses     int      `json:"responses_count"`
	ReadingTime   float64  `json:"reading_time"`
	WordCount     int      `json:"word_count"`
	ImageURL      string   `json:"image_url"`
	Lang          string   `json:"lang"`
}

// SearchArticles runs a keyword search and resolves each hit into a full
// article. Denylisted hits and individual fetch failures are dropped, not
// propagated; the search itself failing is an error.
func (c *Client) SearchArticles(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	log.Info().Str("query", query).Msg("searching articles")
	c.recordUsage(ctx, 1)

	var sr searchResponse
	q := url.Values{"query": []string{query}}
	if err := c.get(ctx, "/search/articles", q, &sr); err != nil {
		return nil, err
	}
	ids := sr.Articles
	if len(ids) == 0 {
		ids = sr.ArticleIDs
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		log.Warn().Str("query", query).Msg("no articles found")
		return nil, nil
	}

	return c.resolveArticles(ctx, ids, func(a *domain.Article) {}), nil
}

// GetArticle fetches an article's metadata plus its body. The markdown
// representation is preferred; html is the fallback; a metadata-only article
// carries format "none".
func (c *Client) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	c.recordUsage(ctx, 1)

	var ar articleResponse
	if err := c.get(ctx, "/article/"+id, nil, &ar); err != nil {
		return nil, err
	}
	lang := ar.Lang
	if lang == "" {
		lang = "en"
	}
	a := &domain.Article{
		ID:            id,
		Title:         ar.Title,
		Subtitle:      ar.Subtitle,
		Author:        ar.Author,
		AuthorID:      ar.AuthorID,
		PublicationID: ar.PublicationID,
		PublishedAt:   ar.PublishedAt,
		URL:           ar.URL,
		Tags:          ar.Tags,
		Topics:        ar.Topics,
		Claps:         ar.Claps,
		Responses:     ar.Responses,
		ReadingTime:   ar.ReadingTime,
		WordCount:     ar.WordCount,
		ImageURL:      ar.ImageURL,
		Lang:          lang,
	}

	body, err := c.GetArticleContent(ctx, id, content.FormatMarkdown)
	switch {
	case err == nil && body != "":
		a.Content = body
		a.Format = content.FormatMarkdown
	default:
		body, err = c.GetArticleContent(ctx, id, content.FormatHTML)
		if err == nil && body != "" {
			a.Content = body
			a.Format = content.FormatHTML
		} else {
			if err != nil {
				log.Warn().Err(err).Str("article", id).Msg("could not fetch article content")
			}
			a.Format = "none"
		}
	}
	return a, nil
}

// GetArticleContent fetches the article body in the requested format.
func (c *Client) GetArticleContent(ctx context.Context, id, format string) (string, error) {
	var path string
	switch format {
	case content.FormatMarkdown:
		path = "/article/" + id + "/markdown"
	case content.FormatHTML:
		path = "/article/" + id + "/html"
	default:
		path = "/article/" + id + "/content"
	}

	var body map[string]string
	if err := c.get(ctx, path, nil, &body); err != nil {
		return "", err
	}
	switch format {
	case content.FormatMarkdown:
		return body["markdown"], nil
	case content.FormatHTML:
		return body["html"], nil
	default:
		return body["content"], nil
	}
}

type topfeedsResponse struct {
	Topfeeds []string `json:"topfeeds"`
}

// GetTrending fetches the ranked article list for a tag and mode ("hot",
// "new", "top_week", "top_month", "top_year", "top_all_time") and resolves
// each entry. Denylisted articles are dropped.
func (c *Client) GetTrending(ctx context.Context, tag, mode string, limit int) ([]domain.Article, error) {
	log.Info().Str("tag", tag).Str("mode", mode).Msg("fetching trending articles")

	var tr topfeedsResponse
	if err := c.get(ctx, "/topfeeds/"+tag+"/"+mode, nil, &tr); err != nil {
		return nil, err
	}
	ids := tr.Topfeeds
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		log.Warn().Str("tag", tag).Str("mode", mode).Msg("no trending articles found")
		return nil, nil
	}

	return c.resolveArticles(ctx, ids, func(a *domain.Article) {
		a.TrendingTag = tag
		a.TrendingMode = mode
	}), nil
}

type latestPostsResponse struct {
	LatestPosts []string `json:"latestposts"`
}

// GetLatestPosts fetches the newest articles for a topic. Unlike search and
// trending, results are not denylist-filtered; callers curate them.
func (c *Client) GetLatestPosts(ctx context.Context, topic string, limit int) ([]domain.Article, error) {
	var lr latestPostsResponse
	if err := c.get(ctx, "/latestposts/"+topic, nil, &lr); err != nil {
		return nil, err
	}
	ids := lr.LatestPosts
	if len(ids) > limit {
		ids = ids[:limit]
	}

	var out []domain.Article
	for _, id := range ids {
		a, err := c.GetArticle(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("article", id).Msg("skipping latest post")
			continue
		}
		a.Topic = topic
		out = append(out, *a)
	}
	return out, nil
}

// resolveArticles turns a list of IDs into fetched, denylist-filtered
// articles. Fetch failures skip the article and keep going.
func (c *Client) resolveArticles(ctx context.Context, ids []string, decorate func(*domain.Article)) []domain.Article {
	var out []domain.Article
	for i, id := range ids {
		log.Debug().Int("n", i+1).Int("total", len(ids)).Str("article", id).Msg("fetching article")
		a, err := c.GetArticle(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("article", id).Msg("skipping article")
			continue
		}
		if drop, kw := content.ShouldFilter(a.Title, a.Subtitle, a.Content); drop {
			log.Info().Str("article", id).Str("keyword", kw).Msg("article filtered by denylist")
			continue
		}
		decorate(a)
		out = append(out, *a)
	}
	return out
}

// SearchByKeywords runs one search per keyword until maxArticles unique
// articles are collected, then returns them most recent first.
func (c *Client) SearchByKeywords(ctx context.Context, keywords []string, maxArticles int) ([]domain.Article, error) {
	var all []domain.Article
	seen := make(map[string]struct{})

	for _, kw := range keywords {
		articles, err := c.SearchArticles(ctx, kw, maxArticles)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", kw, err)
		}
		for _, a := range articles {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			all = append(all, a)
		}
		if len(all) >= maxArticles {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt > all[j].PublishedAt
	})
	if len(all) > maxArticles {
		all = all[:maxArticles]
	}
	return all, nil
}

// FilterByLanguage keeps articles whose base language matches lang. The
// special value "both" (and an empty string) keeps everything; regional
// variants match their base, so "pt" keeps "pt-BR".
func FilterByLanguage(articles []domain.Article, lang string) []domain.Article {
	if lang == "" || lang == "both" {
		return articles
	}
	want, err := language.Parse(lang)
	if err != nil {
		return articles
	}
	wantBase, _ := want.Base()

	var out []domain.Article
	for _, a := range articles {
		al := a.Lang
		if al == "" {
			al = "en"
		}
		tag, err := language.Parse(al)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		if base == wantBase {
			out = append(out, a)
		}
	}
	return out
}

// IsRelevant reports whether the article mentions any of the keywords in its
// title or subtitle, or carries one as a tag or topic.
func IsRelevant(a *domain.Article, keywords []string) bool {
	title := strings.ToLower(a.Title)
	subtitle := strings.ToLower(a.Subtitle)

	inList := func(list []string, kw string) bool {
		for _, v := range list {
			if strings.ToLower(v) == kw {
				return true
			}
		}
		return false
	}

	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if strings.Contains(title, kw) || strings.Contains(subtitle, kw) ||
			inList(a.Tags, kw) || inList(a.Topics, kw) {
			return true
		}
	}
	return false
}
