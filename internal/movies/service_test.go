package movies

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Coddedx/MoviePx-API/internal/cache"
)

const searchPayload = `{
	"Search": [
		{"Title": "Blade Runner", "Year": "1982", "imdbID": "tt0083658", "Type": "movie", "Poster": "N/A"},
		{"Title": "Blade Runner 2049", "Year": "2017", "imdbID": "tt1856101", "Type": "movie", "Poster": "N/A"}
	],
	"totalResults": "2",
	"Response": "True"
}`

const titlePayload = `{
	"Title": "Blade Runner",
	"Year": "1982",
	"imdbID": "tt0083658",
	"Type": "movie",
	"Poster": "N/A",
	"Plot": "A blade runner must pursue and terminate four replicants.",
	"Genre": "Action, Drama, Sci-Fi",
	"Response": "True"
}`

const notFoundPayload = `{"Response": "False", "Error": "Movie not found!"}`

func newOMDbServer(t *testing.T, payload string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.NotEmpty(t, r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, time.Minute)
}

func TestOMDbClientSearch(t *testing.T) {
	srv := newOMDbServer(t, searchPayload, nil)
	client := NewOMDbClient("test-key", srv.URL)

	result, err := client.Search(context.Background(), "blade runner", 1)
	require.NoError(t, err)

	require.Len(t, result.Movies, 2)
	assert.Equal(t, "Blade Runner", result.Movies[0].Title)
	assert.Equal(t, "tt0083658", result.Movies[0].ImdbID)
	assert.Equal(t, "2", result.TotalResults)
}

func TestOMDbClientGetByID(t *testing.T) {
	srv := newOMDbServer(t, titlePayload, nil)
	client := NewOMDbClient("test-key", srv.URL)

	movie, err := client.GetByID(context.Background(), "tt0083658")
	require.NoError(t, err)

	assert.Equal(t, "Blade Runner", movie.Title)
	assert.Contains(t, movie.Plot, "blade runner")
}

func TestOMDbClientNotFound(t *testing.T) {
	srv := newOMDbServer(t, notFoundPayload, nil)
	client := NewOMDbClient("test-key", srv.URL)

	_, err := client.GetByID(context.Background(), "tt0000000")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestServiceSearchUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newOMDbServer(t, searchPayload, &hits)

	svc := NewService(NewOMDbClient("test-key", srv.URL), newCache(t))

	first, err := svc.Search(context.Background(), "Blade Runner", 1)
	require.NoError(t, err)
	require.Len(t, first.Movies, 2)

	second, err := svc.Search(context.Background(), "Blade Runner", 1)
	require.NoError(t, err)
	assert.Equal(t, first.Movies, second.Movies)

	assert.Equal(t, int32(1), hits.Load(), "second search must be served from cache")
}

func TestServiceGetUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := newOMDbServer(t, titlePayload, &hits)

	svc := NewService(NewOMDbClient("test-key", srv.URL), newCache(t))

	_, err := svc.Get(context.Background(), "tt0083658")
	require.NoError(t, err)

	movie, err := svc.Get(context.Background(), "tt0083658")
	require.NoError(t, err)
	assert.Equal(t, "Blade Runner", movie.Title)

	assert.Equal(t, int32(1), hits.Load())
}
