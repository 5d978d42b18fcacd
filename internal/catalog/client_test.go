package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		PokemonBaseURL: srv.URL,
		CatBaseURL:     srv.URL,
		CatAPIKey:      "cat-key",
		MaxRetries:     2,
		BaseRetryDelay: time.Millisecond,
		MaxRetryDelay:  5 * time.Millisecond,
		HTTPClient:     srv.Client(),
	})
}

func pokemonHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/pokemon/")
		if id == "404" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":   json.Number(id),
			"name": "mon-" + id,
			"sprites": map[string]any{
				"front_default": "https://img/" + id + ".png",
				"other": map[string]any{
					"official-artwork": map[string]any{"front_default": "https://art/" + id + ".png"},
				},
			},
			"types": []map[string]any{
				{"slot": 1, "type": map[string]any{"name": "grass"}},
				{"slot": 2, "type": map[string]any{"name": "poison"}},
			},
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, "https://pokeapi.co/api/v2", c.config.PokemonBaseURL)
	assert.Equal(t, "https://api.thecatapi.com/v1", c.config.CatBaseURL)
	assert.Equal(t, uint64(3), c.config.MaxRetries)
	assert.Equal(t, 8, c.config.Concurrency)
	assert.NotNil(t, c.http)
}

func TestPokemon(t *testing.T) {
	c := testClient(t, pokemonHandler(t))

	p, err := c.Pokemon(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, []string{"grass", "poison"}, p.TypeNames())

	e := p.Entity()
	assert.Equal(t, KindPokemon, e.Kind)
	assert.Equal(t, "1", e.ID)
	assert.Equal(t, "https://art/1.png", e.MediaURL)
}

func TestPokemonNotFound(t *testing.T) {
	c := testClient(t, pokemonHandler(t))
	_, err := c.Pokemon(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCat(t *testing.T) {
	var gotKey, gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/images/search", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{{
			"id":     "abc",
			"url":    "https://cdn/abc.jpg",
			"breeds": []map[string]any{{"id": "beng", "name": "Bengal"}},
		}})
	}))

	e, err := c.Entity(context.Background(), KindCat, 7)
	require.NoError(t, err)
	assert.Equal(t, "cat-key", gotKey)
	assert.Contains(t, gotQuery, "page=7")
	assert.Contains(t, gotQuery, "has_breeds=1")
	assert.Equal(t, Entity{
		Kind:     KindCat,
		ID:       "7",
		Name:     "Bengal",
		MediaURL: "https://cdn/abc.jpg",
		Tags:     []string{"Bengal"},
	}, *e)
}

func TestCatEmptyPage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	_, err := c.Cat(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityUnknownKind(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Entity(context.Background(), "dog", 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		pokemonHandler(t)(w, r)
	}))

	p, err := c.Pokemon(context.Background(), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), p.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Pokemon(context.Background(), 1)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	// one attempt plus MaxRetries
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.Pokemon(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPErrorRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&HTTPError{StatusCode: tt.code}).IsRetryable(), "status %d", tt.code)
	}
}

func TestFetchMany(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(pokemonHandler(t))
	c := NewClient(Config{
		PokemonBaseURL: srv.URL,
		MaxRetries:     1,
		BaseRetryDelay: time.Millisecond,
		Concurrency:    2,
		HTTPClient:     srv.Client(),
	})

	found, failures := c.FetchMany(context.Background(), KindPokemon, []int64{3, 404, 1, 2})

	ids := make([]string, 0, len(found))
	for _, e := range found {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
	require.Len(t, failures, 1)
	assert.Equal(t, "404", failures[0].ID)
	assert.Contains(t, failures[0].Reason, "not found")

	srv.Client().CloseIdleConnections()
	srv.Close()
}

func TestFetchManyFailuresKeepInputOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pokemon/2" {
			http.NotFound(w, r)
			return
		}
		pokemonHandler(t)(w, r)
	}))
	c := NewClient(Config{
		PokemonBaseURL: srv.URL,
		MaxRetries:     1,
		BaseRetryDelay: time.Millisecond,
		Concurrency:    4,
		HTTPClient:     srv.Client(),
	})

	found, failures := c.FetchMany(context.Background(), KindPokemon, []int64{10, 2, 9, 11})
	require.Len(t, found, 1)
	ids := make([]string, 0, len(failures))
	for _, f := range failures {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"10", "9", "11"}, ids)

	srv.Client().CloseIdleConnections()
	srv.Close()
}

func TestPreload(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("png"))
	}))
	c := NewClient(Config{HTTPClient: srv.Client(), Concurrency: 3})

	failures := c.Preload(context.Background(), []string{
		srv.URL + "/a.png",
		"",
		srv.URL + "/missing.png",
		srv.URL + "/b.png",
	})
	require.Len(t, failures, 1)
	assert.Equal(t, srv.URL+"/missing.png", failures[0].ID)
	assert.Equal(t, int32(3), hits.Load())

	srv.Client().CloseIdleConnections()
	srv.Close()
}
