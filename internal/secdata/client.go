// Package secdata is a thin pass-through client for an external SEC-style
// financial-data API. Responses are cached in Redis; the cache is an
// optimization only and every cache failure falls through to the origin.
package secdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"dealscope/internal/config"
	"dealscope/pkg/logger"
)

// Client proxies requests to the configured financial-data API.
type Client struct {
	baseURL   string
	userAgent string
	cacheTTL  time.Duration
	http      *http.Client
	cache     *redis.Client
	log       *logger.Logger
}

// New creates a Client. cache may be nil to disable caching.
func New(cfg config.SECDataConfig, cache *redis.Client) *Client {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		cacheTTL:  ttl,
		http:      &http.Client{Timeout: 30 * time.Second},
		cache:     cache,
		log:       logger.New("secdata"),
	}
}

// CompanyFacts returns all standardized facts filed for a company.
func (c *Client) CompanyFacts(ctx context.Context, cik string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/api/xbrl/companyfacts/CIK%s.json", cik))
}

// CompanyConcept returns one concept's filings for a company.
func (c *Client) CompanyConcept(ctx context.Context, cik, taxonomy, tag string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/api/xbrl/companyconcept/CIK%s/%s/%s.json", cik, taxonomy, tag))
}

// Submissions returns a company's filing history.
func (c *Client) Submissions(ctx context.Context, cik string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/submissions/CIK%s.json", cik))
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	cacheKey := "secdata:" + path

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		} else if err != redis.Nil {
			c.log.WithError(err).Warn("cache read failed, falling through to origin")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: upstream returned %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL).Err(); err != nil {
			c.log.WithError(err).Warn("cache write failed")
		}
	}
	return body, nil
}
