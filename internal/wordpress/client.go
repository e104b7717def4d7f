// Package wordpress publishes rendered articles to a WordPress site through
// the wp-json/wp/v2 REST API using application-password basic auth.
//
// Category and tag terms are resolved get-or-create: an existing term is
// reused, a missing one is created on the fly. Post meta carries the source
// article identity so externally-created duplicates remain detectable.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/content"
	"github.com/demandei/mediumsync/internal/domain"
)

// defaultCategoryID is the WordPress built-in "Uncategorized" term, used when
// term resolution fails outright.
const defaultCategoryID = 1

// maxPostTags caps how many tag terms are attached to a post.
const maxPostTags = 3

// PostResult is the outcome of a successful publish.
type PostResult struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Client talks to one WordPress site.
type Client struct {
	site       string
	apiURL     string
	authHeader string
	postStatus string
	http       *http.Client
}

// NewClient builds a Client from config.
func NewClient(cfg config.WordPressConfig) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.Logger = nil
	r.HTTPClient.Timeout = cfg.Timeout

	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
	return &Client{
		site:       strings.TrimRight(cfg.URL, "/"),
		apiURL:     strings.TrimRight(cfg.URL, "/") + "/wp-json/wp/v2",
		authHeader: "Basic " + creds,
		postStatus: cfg.PostStatus,
		http:       r.StandardClient(),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wordpress request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wordpress API %d on %s: %s", resp.StatusCode, path, string(b))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Enabled reports whether a target site is configured.
func (c *Client) Enabled() bool { return c.site != "" }

// TestConnection probes the posts endpoint with the configured credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	var posts []json.RawMessage
	return c.do(ctx, http.MethodGet, "/posts", url.Values{"per_page": []string{"1"}}, nil, &posts)
}

type term struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GetOrCreateCategory resolves a category name to its term ID, creating the
// category when absent. Resolution failures fall back to the default
// category rather than blocking the publish.
func (c *Client) GetOrCreateCategory(ctx context.Context, name string) int {
	if name == "" {
		name = content.DefaultCategory
	}
	id, err := c.getOrCreateTerm(ctx, "/categories", name)
	if err != nil {
		log.Error().Err(err).Str("category", name).Msg("category resolution failed, using default")
		return defaultCategoryID
	}
	return id
}

func (c *Client) getOrCreateTag(ctx context.Context, name string) (int, error) {
	return c.getOrCreateTerm(ctx, "/tags", name)
}

func (c *Client) getOrCreateTerm(ctx context.Context, path, name string) (int, error) {
	var found []term
	q := url.Values{"search": []string{name}, "per_page": []string{"1"}}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &found); err != nil {
		return 0, err
	}
	if len(found) > 0 {
		return found[0].ID, nil
	}

	log.Info().Str("term", name).Str("taxonomy", path).Msg("creating term")
	var created term
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"name": name}, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// resolveTags maps normalized tag slugs to term IDs, creating missing terms
// under their display names. Individual failures drop the tag.
func (c *Client) resolveTags(ctx context.Context, tags []string) []int {
	if len(tags) > maxPostTags {
		tags = tags[:maxPostTags]
	}
	var ids []int
	for _, t := range tags {
		id, err := c.getOrCreateTag(ctx, content.DisplayTag(t))
		if err != nil {
			log.Error().Err(err).Str("tag", t).Msg("tag resolution failed, dropping")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

type postRequest struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Excerpt    string         `json:"excerpt"`
	Status     string         `json:"status"`
	Categories []int          `json:"categories"`
	Tags       []int          `json:"tags,omitempty"`
	Format     string         `json:"format"`
	Meta       map[string]any `json:"meta"`
}

type postResponse struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// CreatePost renders and publishes one article. The body is composed from
// the restyled content, an optional cover image block, and the closing about
// box; source identity lands in post meta.
func (c *Client) CreatePost(ctx context.Context, a *domain.Article) (*PostResult, error) {
	bodyHTML, err := content.RenderBody(a.Content, a.Format)
	if err != nil {
		return nil, fmt.Errorf("render post body: %w", err)
	}
	full := content.ComposePostBody(
		content.FeaturedImageHTML(a.ImageURL, a.Title),
		bodyHTML,
		content.AboutBox(a.URL),
	)

	categoryID := c.GetOrCreateCategory(ctx, content.DetermineCategory(a.Tags, a.Title))
	tagIDs := c.resolveTags(ctx, content.NormalizeTags(a.Tags))

	req := postRequest{
		Title:      a.Title,
		Content:    full,
		Excerpt:    excerptFor(a),
		Status:     c.postStatus,
		Categories: []int{categoryID},
		Tags:       tagIDs,
		Format:     "standard",
		Meta: map[string]any{
			"medium_article_id":   a.ID,
			"medium_author":       a.Author,
			"medium_url":          a.URL,
			"medium_published_at": a.PublishedAt,
		},
	}

	var pr postResponse
	if err := c.do(ctx, http.MethodPost, "/posts", nil, req, &pr); err != nil {
		return nil, err
	}
	log.Info().Int("post_id", pr.ID).Str("link", pr.Link).Msg("post created")
	return &PostResult{ID: pr.ID, Link: pr.Link, Status: pr.Status}, nil
}

// MediaResult identifies an uploaded media item.
type MediaResult struct {
	ID  int    `json:"id"`
	URL string `json:"source_url"`
}

// UploadMedia uploads raw image bytes to the media library and returns the
// created attachment.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (*MediaResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/media", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress media upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wordpress API %d on /media: %s", resp.StatusCode, string(b))
	}
	var mr MediaResult
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, err
	}
	log.Info().Int("media_id", mr.ID).Str("file", filename).Msg("media uploaded")
	return &mr, nil
}

// excerptFor derives the post excerpt: the subtitle when present, otherwise
// the leading plain text of the body.
func excerptFor(a *domain.Article) string {
	if a.Subtitle != "" {
		return a.Subtitle
	}
	text := plainText(a.Content)
	if r := []rune(text); len(r) > 150 {
		return string(r[:150]) + "..."
	}
	return text
}

// plainText strips html tags and markdown markers crudely, enough for an
// excerpt.
func plainText(s string) string {
	for {
		start := strings.Index(s, "<")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], ">")
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}
	s = strings.NewReplacer("#", "", "*", "", "`", "", "\n>", "\n").Replace(s)
	return strings.TrimSpace(s)
}
