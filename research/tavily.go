package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agoralive/agora/types"
)

// TavilyProvider implements SearchProvider against the Tavily search
// API.
type TavilyProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// TavilyConfig configures the Tavily search provider.
type TavilyConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NewTavilyProvider creates a Tavily-backed search provider.
func NewTavilyProvider(cfg TavilyConfig, logger *zap.Logger) *TavilyProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &TavilyProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "search_provider")),
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements SearchProvider.
func (p *TavilyProvider) Search(ctx context.Context, query string, depth types.ResearchDepth) (*SearchResult, error) {
	searchDepth := "basic"
	maxResults := 5
	if depth == types.ResearchAdvanced {
		searchDepth = "advanced"
		maxResults = 10
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        p.apiKey,
		Query:         query,
		SearchDepth:   searchDepth,
		IncludeAnswer: true,
		MaxResults:    maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed: status=%d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &SearchResult{Answer: parsed.Answer}
	for _, r := range parsed.Results {
		result.Sources = append(result.Sources, Source{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}

	p.logger.Debug("search finished",
		zap.String("depth", searchDepth),
		zap.Int("sources", len(result.Sources)),
		zap.Duration("latency", time.Since(start)),
	)
	return result, nil
}
