package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// #region types

// Citation is a single literature reference backing a routing decision.
type Citation struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

// Evidence bundles what the knowledge service returned for a query.
type Evidence struct {
	Citations  []Citation `json:"citations"`
	Guidelines []string   `json:"guidelines"`
}

// Source abstracts the domain knowledge service. Implementations may fail;
// callers treat failure as "no evidence", never as a hard error.
type Source interface {
	Evidence(ctx context.Context, query string) (Evidence, error)
}

// Config holds knowledge service parameters.
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"-"`
	MaxCitations int           `yaml:"max_citations"`
	Timeout      time.Duration `yaml:"timeout"`
}

// #endregion types

// #region config

// DefaultConfig returns default knowledge service configuration.
// Reads from env vars: EVIDENCE_ENABLED, EVIDENCE_BASE_URL, EVIDENCE_API_KEY,
// EVIDENCE_MAX_CITATIONS, EVIDENCE_TIMEOUT.
func DefaultConfig() Config {
	cfg := Config{
		Enabled:      false,
		MaxCitations: 3,
		Timeout:      10 * time.Second,
		APIKey:       os.Getenv("EVIDENCE_API_KEY"),
	}
	if v := os.Getenv("EVIDENCE_ENABLED"); v != "" {
		cfg.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("EVIDENCE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("EVIDENCE_MAX_CITATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCitations = n
		}
	}
	if v := os.Getenv("EVIDENCE_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// #endregion config

// #region http-source

// HTTPSource queries a JSON evidence endpoint (GET {base}/evidence?q=...).
type HTTPSource struct {
	config Config
	client *http.Client
}

// NewHTTPSource creates an HTTPSource with the given config.
func NewHTTPSource(config Config) *HTTPSource {
	return &HTTPSource{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Evidence fetches citations for the query, truncated to MaxCitations.
func (s *HTTPSource) Evidence(ctx context.Context, query string) (Evidence, error) {
	if !s.config.Enabled || s.config.BaseURL == "" {
		return Evidence{}, nil
	}

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/evidence?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Evidence{}, err
	}
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Evidence{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Evidence{}, err
	}
	if resp.StatusCode != 200 {
		return Evidence{}, fmt.Errorf("evidence service (status %d): %s", resp.StatusCode, string(body))
	}

	var ev Evidence
	if err := json.Unmarshal(body, &ev); err != nil {
		return Evidence{}, fmt.Errorf("parse evidence: %w", err)
	}
	if s.config.MaxCitations > 0 && len(ev.Citations) > s.config.MaxCitations {
		ev.Citations = ev.Citations[:s.config.MaxCitations]
	}
	return ev, nil
}

// #endregion http-source

// #region format

// FormatAsEvidence converts citations to a string suitable for injection
// alongside retrieved exemplars.
func FormatAsEvidence(ev Evidence) string {
	if len(ev.Citations) == 0 && len(ev.Guidelines) == 0 {
		return ""
	}
	var b strings.Builder
	if len(ev.Citations) > 0 {
		b.WriteString("[Literature]\n")
		for i, c := range ev.Citations {
			fmt.Fprintf(&b, "%d. %s", i+1, c.Title)
			if c.Source != "" {
				fmt.Fprintf(&b, " (%s)", c.Source)
			}
			b.WriteString("\n")
		}
	}
	if len(ev.Guidelines) > 0 {
		b.WriteString("[Guidelines]\n")
		for _, g := range ev.Guidelines {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}
	return b.String()
}

// #endregion format
