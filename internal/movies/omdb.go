package movies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var ErrMovieNotFound = errors.New("movies: not found")

// Movie is the OMDb metadata shape exposed to clients. Field names match
// the OMDb payload, which capitalizes keys.
type Movie struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
	Plot   string `json:"Plot,omitempty"`
	Genre  string `json:"Genre,omitempty"`
}

// SearchResult is one page of OMDb search hits.
type SearchResult struct {
	Movies       []Movie `json:"Search"`
	TotalResults string  `json:"totalResults"`
}

// omdbEnvelope carries OMDb's in-band error reporting.
type omdbEnvelope struct {
	SearchResult
	Movie
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// OMDbClient talks to the OMDb HTTP API.
type OMDbClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewOMDbClient(apiKey, baseURL string) *OMDbClient {
	return &OMDbClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

func (c *OMDbClient) get(ctx context.Context, params url.Values) (*omdbEnvelope, error) {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb returned status %d", resp.StatusCode)
	}

	var env omdbEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("omdb response decode failed: %w", err)
	}

	if env.Response == "False" {
		if env.Error == "Movie not found!" {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("omdb error: %s", env.Error)
	}

	return &env, nil
}

// Search queries OMDb by title. Pages are 1-based.
func (c *OMDbClient) Search(ctx context.Context, title string, page int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("s", title)
	params.Set("type", "movie")
	params.Set("page", strconv.Itoa(page))

	env, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	return &env.SearchResult, nil
}

// GetByID fetches full metadata for one title.
func (c *OMDbClient) GetByID(ctx context.Context, imdbID string) (*Movie, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "short")

	env, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	return &env.Movie, nil
}
