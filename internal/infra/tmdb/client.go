package infra_tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
)

type searchResponse struct {
	Results []movieDTO `json:"results"`
}

type movieDTO struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
}

type genreDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type detailsDTO struct {
	movieDTO
	Runtime int        `json:"runtime"`
	Genres  []genreDTO `json:"genres"`
}

func (m movieDTO) posterPath() string {
	if m.PosterPath == nil {
		return ""
	}
	return *m.PosterPath
}

func (m movieDTO) toSearchResult() model.SearchResult {
	return model.SearchResult{
		TMDBID:      m.ID,
		Title:       m.Title,
		PosterPath:  m.posterPath(),
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
	}
}

func (d detailsDTO) toDomain() model.MovieDetails {
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	return model.MovieDetails{
		TMDBID:      d.ID,
		Title:       d.Title,
		PosterPath:  d.posterPath(),
		ReleaseDate: d.ReleaseDate,
		Overview:    d.Overview,
		Runtime:     d.Runtime,
		Genres:      genres,
	}
}

// HTTPClient talks to the TMDB v3 API with a read access token.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")

	var resp searchResponse
	if err := c.get(ctx, "/search/movie?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Results))
	for _, m := range resp.Results {
		results = append(results, m.toSearchResult())
	}
	return results, nil
}

func (c *HTTPClient) Details(ctx context.Context, tmdbID int64) (model.MovieDetails, error) {
	var resp detailsDTO
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10)+"?language=en-US", &resp); err != nil {
		return model.MovieDetails{}, err
	}
	return resp.toDomain(), nil
}

func (c *HTTPClient) get(ctx context.Context, pathAndQuery string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("tmdb request failed",
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return fmt.Errorf("tmdb %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
