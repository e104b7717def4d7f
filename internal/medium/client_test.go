package medium

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/demandei/mediumsync/internal/config"
	"github.com/demandei/mediumsync/internal/domain"
)

type countingUsage struct{ n int64 }

func (c *countingUsage) RecordUsage(_ context.Context, n int) { atomic.AddInt64(&c.n, int64(n)) }

func newTestClient(t *testing.T, handler http.Handler, usage UsageRecorder) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.MediumConfig{
		APIKey:   "k",
		APIHost:  "medium2.p.rapidapi.com",
		Timeout:  5 * time.Second,
		Throttle: time.Millisecond,
	}, usage)
	c.baseURL = srv.URL
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// articleServer serves a search hit list plus per-article detail and content
// endpoints.
func articleServer(t *testing.T, ids []string, titles map[string]string, markdown map[string]string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/articles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != "k" {
			t.Errorf("missing RapidAPI key header")
		}
		writeJSON(w, map[string]any{"articles": ids})
	})
	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		parts := r.URL.Path
		switch {
		case len(parts) > len("/article/") && parts[len(parts)-len("/markdown"):] == "/markdown":
			id := parts[len("/article/") : len(parts)-len("/markdown")]
			writeJSON(w, map[string]string{"markdown": markdown[id]})
		case parts[len(parts)-len("/html"):] == "/html":
			writeJSON(w, map[string]string{"html": ""})
		default:
			id := parts[len("/article/"):]
			writeJSON(w, map[string]any{
				"title": titles[id], "author": "Ada", "lang": "en",
				"tags": []string{"golang"}, "published_at": "2025-06-0" + id[len(id)-1:],
			})
		}
	})
	return mux
}

func TestSearchArticles_FetchesAndFilters(t *testing.T) {
	usage := &countingUsage{}
	c := newTestClient(t, articleServer(t,
		[]string{"a1", "a2"},
		map[string]string{"a1": "Understanding Channels", "a2": "We Are Hiring Go Devs"},
		map[string]string{"a1": "body one", "a2": "body two"},
	), usage)

	got, err := c.SearchArticles(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("SearchArticles: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("expected only the non-denylisted article, got %+v", got)
	}
	if got[0].Content != "body one" || got[0].Format != "markdown" {
		t.Fatalf("content not resolved: %+v", got[0])
	}
	// 1 for the search + 1 per article detail.
	if n := atomic.LoadInt64(&usage.n); n != 3 {
		t.Fatalf("expected 3 recorded calls, got %d", n)
	}
}

func TestGetArticle_FallsBackToHTML(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/article/x/markdown", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/article/x/html", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"html": "<p>body</p>"})
	})
	mux.HandleFunc("/article/x", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"title": "T"})
	})
	c := newTestClient(t, mux, nil)

	a, err := c.GetArticle(context.Background(), "x")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if a.Content != "<p>body</p>" || a.Format != "html" {
		t.Fatalf("expected html fallback, got %+v", a)
	}
	if a.Lang != "en" {
		t.Fatalf("missing lang must default to en, got %q", a.Lang)
	}
}

func TestGetArticle_NoContentKeepsMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/article/x/markdown", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/article/x/html", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/article/x", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"title": "Metadata Only"})
	})
	c := newTestClient(t, mux, nil)

	a, err := c.GetArticle(context.Background(), "x")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if a.Title != "Metadata Only" || a.Format != "none" || a.Content != "" {
		t.Fatalf("expected metadata-only article, got %+v", a)
	}
}

func TestGetTrending_DecoratesResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topfeeds/golang/hot", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"topfeeds": []string{"t1"}})
	})
	mux.HandleFunc("/article/t1/markdown", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"markdown": "body"})
	})
	mux.HandleFunc("/article/t1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"title": "Trending Piece"})
	})
	c := newTestClient(t, mux, nil)

	got, err := c.GetTrending(context.Background(), "golang", "hot", 5)
	if err != nil {
		t.Fatalf("GetTrending: %v", err)
	}
	if len(got) != 1 || got[0].TrendingTag != "golang" || got[0].TrendingMode != "hot" {
		t.Fatalf("trending metadata missing: %+v", got)
	}
}

func TestGetLatestPosts_StampsTopicAndLimits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latestposts/golang", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"latestposts": []string{"l1", "l2", "l3"}})
	})
	for _, id := range []string{"l1", "l2"} {
		mux.HandleFunc("/article/"+id+"/markdown", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"markdown": "body " + id})
		})
		mux.HandleFunc("/article/"+id, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"title": "Post " + id})
		})
	}
	c := newTestClient(t, mux, nil)

	got, err := c.GetLatestPosts(context.Background(), "golang", 2)
	if err != nil {
		t.Fatalf("GetLatestPosts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not applied, got %d articles", len(got))
	}
	for _, a := range got {
		if a.Topic != "golang" {
			t.Fatalf("topic not stamped: %+v", a)
		}
	}
	if got[0].ID != "l1" || got[1].ID != "l2" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestGetLatestPosts_SkipsUnresolvableArticles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latestposts/golang", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"latestposts": []string{"bad", "l2"}})
	})
	mux.HandleFunc("/article/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/article/l2/markdown", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"markdown": "body"})
	})
	mux.HandleFunc("/article/l2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"title": "Survivor"})
	})
	c := newTestClient(t, mux, nil)

	got, err := c.GetLatestPosts(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("GetLatestPosts: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l2" {
		t.Fatalf("expected only the resolvable article, got %+v", got)
	}
}

func TestSearchByKeywords_DedupsAndSortsNewestFirst(t *testing.T) {
	c := newTestClient(t, articleServer(t,
		[]string{"a1", "a2", "a1"},
		map[string]string{"a1": "First Article", "a2": "Second Article"},
		map[string]string{"a1": "b", "a2": "b"},
	), nil)

	got, err := c.SearchByKeywords(context.Background(), []string{"golang"}, 5)
	if err != nil {
		t.Fatalf("SearchByKeywords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 unique articles, got %d", len(got))
	}
	// published_at ends with the last digit of the id; a2 is newer.
	if got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("not sorted newest first: %+v", got)
	}
}

func TestFilterByLanguage(t *testing.T) {
	in := []domain.Article{
		{ID: "en", Lang: "en"},
		{ID: "pt", Lang: "pt"},
		{ID: "br", Lang: "pt-BR"},
		{ID: "none"},
	}

	if got := FilterByLanguage(in, "both"); len(got) != 4 {
		t.Fatalf("both must keep everything, got %d", len(got))
	}
	pt := FilterByLanguage(in, "pt")
	if len(pt) != 2 || pt[0].ID != "pt" || pt[1].ID != "br" {
		t.Fatalf("pt filter wrong: %+v", pt)
	}
	en := FilterByLanguage(in, "en")
	if len(en) != 2 || en[0].ID != "en" || en[1].ID != "none" {
		t.Fatalf("en filter wrong (default lang is en): %+v", en)
	}
}

func TestIsRelevant(t *testing.T) {
	a := &domain.Article{
		Title:    "Scaling Kubernetes Clusters",
		Subtitle: "Lessons from production",
		Tags:     []string{"DevOps"},
		Topics:   []string{"cloud"},
	}
	if !IsRelevant(a, []string{"kubernetes"}) {
		t.Fatalf("title keyword should match")
	}
	if !IsRelevant(a, []string{"devops"}) {
		t.Fatalf("tag membership should match case-insensitively")
	}
	if !IsRelevant(a, []string{"cloud"}) {
		t.Fatalf("topic membership should match")
	}
	if IsRelevant(a, []string{"blockchain"}) {
		t.Fatalf("unrelated keyword should not match")
	}
}
