// Package catalog fetches swipeable entities from public REST APIs: PokeAPI
// for Pokémon and TheCatAPI for cats.
//
// Requests are retried with capped exponential backoff on 429 and 5xx
// responses. Batch helpers fan out with a bounded number of concurrent
// requests and report per-entity failures instead of aborting.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config holds configuration for the catalog client.
type Config struct {
	// PokemonBaseURL defaults to https://pokeapi.co/api/v2.
	PokemonBaseURL string `yaml:"pokemon_base_url"`
	// CatBaseURL defaults to https://api.thecatapi.com/v1.
	CatBaseURL string `yaml:"cat_base_url"`
	// CatAPIKey is sent as x-api-key. Optional for low request volumes.
	CatAPIKey string `yaml:"-"`

	// MaxRetries defaults to 3.
	MaxRetries uint64 `yaml:"max_retries"`
	// BaseRetryDelay defaults to 500ms.
	BaseRetryDelay time.Duration `yaml:"base_retry_delay"`
	// MaxRetryDelay caps the backoff. Defaults to 5s.
	MaxRetryDelay time.Duration `yaml:"max_retry_delay"`
	// Concurrency bounds batch fetches. Defaults to 8.
	Concurrency int `yaml:"concurrency"`

	UserAgent string `yaml:"user_agent"`

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	HTTPClient *http.Client `yaml:"-"`
}

// Client is a catalog API client.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client, filling unset config with defaults.
func NewClient(cfg Config) *Client {
	if cfg.PokemonBaseURL == "" {
		cfg.PokemonBaseURL = "https://pokeapi.co/api/v2"
	}
	if cfg.CatBaseURL == "" {
		cfg.CatBaseURL = "https://api.thecatapi.com/v1"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{config: cfg, http: httpClient}
}

// Pokemon fetches a pokemon by national dex number.
func (c *Client) Pokemon(ctx context.Context, id int64) (*Pokemon, error) {
	var p Pokemon
	u := joinURL(c.config.PokemonBaseURL, "pokemon", formatID(id))
	if err := c.getJSON(ctx, u, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Cat returns the cat image at a stable position of the breed-tagged image
// listing. The sequence index is used as the page number of an ascending
// one-per-page search, which makes the mapping deterministic.
func (c *Client) Cat(ctx context.Context, index int64) (*CatImage, error) {
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("page", formatID(index))
	q.Set("order", "ASC")
	q.Set("has_breeds", "1")
	u := joinURL(c.config.CatBaseURL, "images", "search") + "?" + q.Encode()

	var images []CatImage
	if err := c.getJSON(ctx, u, c.catHeaders(), &images); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNotFound
	}
	return &images[0], nil
}

// Entity fetches one entity of the given kind.
func (c *Client) Entity(ctx context.Context, kind string, id int64) (*Entity, error) {
	switch kind {
	case KindPokemon:
		p, err := c.Pokemon(ctx, id)
		if err != nil {
			return nil, err
		}
		e := p.Entity()
		return &e, nil
	case KindCat:
		img, err := c.Cat(ctx, id)
		if err != nil {
			return nil, err
		}
		e := img.Entity(id)
		return &e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (c *Client) catHeaders() http.Header {
	h := http.Header{}
	if c.config.CatAPIKey != "" {
		h.Set("x-api-key", c.config.CatAPIKey)
	}
	return h
}

// getJSON fetches u with retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, u string, header http.Header, out any) error {
	var body []byte
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		b, err := c.get(ctx, u, header)
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) && httpErr.IsRetryable() {
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.config.BaseRetryDelay)
	b = retry.WithCappedDuration(c.config.MaxRetryDelay, b)
	return retry.WithMaxRetries(c.config.MaxRetries, b)
}

// get sends a single GET request and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, u string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func joinURL(base string, parts ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
