package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// FetchMany fetches several entities concurrently. Entities that fail are
// reported in failures. Both slices keep the order of ids.
func (c *Client) FetchMany(ctx context.Context, kind string, ids []int64) ([]Entity, []Failure) {
	results := make([]*Entity, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i], errs[i] = c.Entity(gctx, kind, id)
			return nil
		})
	}
	_ = g.Wait()

	found := make([]Entity, 0, len(ids))
	var failures []Failure
	for i, e := range results {
		if errs[i] != nil {
			failures = append(failures, Failure{ID: formatID(ids[i]), Reason: errs[i].Error()})
			continue
		}
		found = append(found, *e)
	}
	return found, failures
}

// Preload warms media caches by downloading each URL once. Failures are
// returned in the order of urls, never fatal.
func (c *Client) Preload(ctx context.Context, urls []string) []Failure {
	errs := make([]error, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)
	for i, u := range urls {
		if u == "" {
			continue
		}
		g.Go(func() error {
			errs[i] = c.preloadOne(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	var failures []Failure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, Failure{ID: urls[i], Reason: err.Error()})
		}
	}
	return failures
}

func (c *Client) preloadOne(ctx context.Context, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
