// Package settings manages the operator-editable runtime settings stored in
// a flat JSON file. These sit alongside the environment-driven config: env
// supplies defaults, the file carries everything changed through the API.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/demandei/mediumsync/internal/config"
)

// Manager reads and writes the settings file. All methods are safe for
// concurrent use; writes rewrite the whole file.
type Manager struct {
	path string
	cfg  config.Config

	mu       sync.RWMutex
	settings map[string]any
}

// NewManager loads settings from cfg.SettingsPath, falling back to defaults
// derived from cfg when the file is missing or unreadable.
func NewManager(cfg config.Config) *Manager {
	m := &Manager{path: cfg.SettingsPath, cfg: cfg}
	m.settings = m.load()
	return m
}

func (m *Manager) load() map[string]any {
	b, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("path", m.path).Msg("settings read failed, using defaults")
		}
		return m.defaults()
	}
	var s map[string]any
	if err := json.Unmarshal(b, &s); err != nil {
		log.Error().Err(err).Str("path", m.path).Msg("settings parse failed, using defaults")
		return m.defaults()
	}
	log.Info().Str("path", m.path).Msg("settings loaded")
	return s
}

// defaults builds the initial settings tree from the environment-driven
// config.
func (m *Manager) defaults() map[string]any {
	cfg := m.cfg
	return map[string]any{
		"medium_api": map[string]any{
			"rapidapi_key":  cfg.Medium.APIKey,
			"rapidapi_host": cfg.Medium.APIHost,
		},
		"wordpress": map[string]any{
			"url":              cfg.WordPress.URL,
			"username":         cfg.WordPress.Username,
			"password":         cfg.WordPress.Password,
			"author_name":      cfg.WordPress.AuthorName,
			"default_category": cfg.WordPress.Category,
			"post_status":      cfg.WordPress.PostStatus,
		},
		"gemini": map[string]any{
			"api_key": cfg.Gemini.APIKey,
			"enabled": cfg.Search.AutoTranslate,
		},
		"search": map[string]any{
			"keywords":            toAnySlice(cfg.Search.Keywords),
			"max_articles":        cfg.Search.MaxPerRun,
			"language_preference": cfg.Search.Language,
			"min_claps":           0,
			"recent_days":         30,
		},
		"schedule": map[string]any{
			"enabled":  true,
			"hour":     cfg.Schedule.Hour,
			"minute":   cfg.Schedule.Minute,
			"timezone": cfg.Schedule.Timezone,
		},
		"content": map[string]any{
			"auto_translate":      cfg.Search.AutoTranslate,
			"target_language":     cfg.Search.TargetLang,
			"preserve_formatting": true,
			"add_source_link":     true,
			"add_author_credit":   true,
		},
	}
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// save persists the current tree. The caller must hold mu.
func (m *Manager) save() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	b, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Get returns the value at a dot-notation path, or def when any segment is
// missing.
func (m *Manager) Get(keyPath string, def any) any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cur any = m.settings
	for _, key := range strings.Split(keyPath, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = node[key]
		if !ok {
			return def
		}
	}
	return cur
}

// GetString is Get with a string assertion.
func (m *Manager) GetString(keyPath, def string) string {
	if s, ok := m.Get(keyPath, def).(string); ok {
		return s
	}
	return def
}

// GetBool is Get with a bool assertion.
func (m *Manager) GetBool(keyPath string, def bool) bool {
	if b, ok := m.Get(keyPath, def).(bool); ok {
		return b
	}
	return def
}

// Set writes the value at a dot-notation path, creating intermediate maps as
// needed, and persists the file.
func (m *Manager) Set(keyPath string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := strings.Split(keyPath, ".")
	node := m.settings
	for _, key := range keys[:len(keys)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[key] = child
		}
		node = child
	}
	node[keys[len(keys)-1]] = value
	return m.save()
}

// UpdateSection merges data into one top-level section and persists.
func (m *Manager) UpdateSection(section string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.settings[section].(map[string]any)
	if !ok {
		existing = map[string]any{}
		m.settings[section] = existing
	}
	for k, v := range data {
		existing[k] = v
	}
	return m.save()
}

// All returns a shallow copy of the top-level settings tree.
func (m *Manager) All() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]any, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out
}

// ResetToDefaults discards the current tree and persists the defaults.
func (m *Manager) ResetToDefaults() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = m.defaults()
	return m.save()
}

// Validation is the outcome of a settings check.
type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	IsValid  bool     `json:"is_valid"`
}

// Validate checks the current settings for missing credentials and returns
// the collected errors and warnings.
func (m *Manager) Validate() Validation {
	v := Validation{Errors: []string{}, Warnings: []string{}}

	if m.GetString("medium_api.rapidapi_key", "") == "" {
		v.Errors = append(v.Errors, "RapidAPI key is missing")
	}
	if m.GetString("wordpress.url", "") == "" {
		v.Errors = append(v.Errors, "WordPress URL is missing")
	}
	if m.GetString("wordpress.username", "") == "" {
		v.Errors = append(v.Errors, "WordPress username is missing")
	}
	if m.GetString("wordpress.password", "") == "" {
		v.Errors = append(v.Errors, "WordPress password is missing")
	}
	if m.GetBool("content.auto_translate", false) && m.GetString("gemini.api_key", "") == "" {
		v.Warnings = append(v.Warnings, "Translation enabled but Gemini API key is missing")
	}
	if kw, ok := m.Get("search.keywords", nil).([]any); !ok || len(kw) == 0 {
		v.Errors = append(v.Errors, "No search keywords configured")
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

// Export serializes the settings tree as indented JSON.
func (m *Manager) Export() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Import replaces the settings tree from a JSON document and persists it.
func (m *Manager) Import(jsonDoc string) error {
	var s map[string]any
	if err := json.Unmarshal([]byte(jsonDoc), &s); err != nil {
		return fmt.Errorf("parse settings import: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return m.save()
}
