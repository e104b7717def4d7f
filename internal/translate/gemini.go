package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/demandei/mediumsync/internal/config"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST API. Transient failures
// are retried by the underlying client; a hard failure on the configured
// model falls back to the fallback model once before giving up.
type GeminiClient struct {
	apiKey        string
	model         string
	fallbackModel string
	baseURL       string
	client        *http.Client
}

// NewGeminiClient builds a client from config. The returned client is usable
// even without an API key; Enabled reports whether calls will be attempted.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.Logger = nil
	r.HTTPClient.Timeout = cfg.Timeout

	return &GeminiClient{
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		baseURL:       defaultGeminiBaseURL,
		client:        r.StandardClient(),
	}
}

// Enabled reports whether the client has credentials to call the API.
func (c *GeminiClient) Enabled() bool { return c.apiKey != "" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate runs one prompt and returns the model's text. When the configured
// model fails the call is repeated once against the fallback model.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := c.generate(ctx, c.model, prompt)
	if err == nil {
		return out, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == c.model {
		return "", err
	}
	log.Warn().Err(err).Str("model", c.model).Str("fallback", c.fallbackModel).
		Msg("gemini model failed, retrying with fallback")
	return c.generate(ctx, c.fallbackModel, prompt)
}

func (c *GeminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini API %d: %s", resp.StatusCode, string(b))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
