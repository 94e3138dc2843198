package client_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	http_auth "github.com/Klaiveft/What2Watch/internal/delivery/http/auth"
	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	http_movie "github.com/Klaiveft/What2Watch/internal/delivery/http/movie"
	http_proposal "github.com/Klaiveft/What2Watch/internal/delivery/http/proposal"
	http_room "github.com/Klaiveft/What2Watch/internal/delivery/http/room"
	http_voting "github.com/Klaiveft/What2Watch/internal/delivery/http/voting"
	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/gorilla/websocket"
)

const apiPrefix = "/api/v1"

// Error is a non 2xx answer of the server.
type Error struct {
	Status   int
	Message  string
	Redirect string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client talks to the What2Watch HTTP API on behalf of one anonymous user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.Token(); t != "" {
		req.Header.Set(http_common.UserTokenHeader, t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e http_common.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = resp.Status
		}
		return &Error{Status: resp.StatusCode, Message: e.Message, Redirect: e.Redirect}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SignIn obtains a fresh anonymous identity and keeps its token.
func (c *Client) SignIn(ctx context.Context) (http_auth.AnonymousResponseDTO, error) {
	var resp http_auth.AnonymousResponseDTO
	if err := c.do(ctx, http.MethodPost, "/auth/anonymous", nil, &resp); err != nil {
		return resp, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

func (c *Client) CreateRoom(ctx context.Context, displayName string) (string, error) {
	var resp http_room.CreateResponseDTO
	err := c.do(ctx, http.MethodPost, "/rooms", http_room.DisplayNameRequestDTO{DisplayName: displayName}, &resp)
	return resp.RoomCode, err
}

func (c *Client) Join(ctx context.Context, code, displayName string) (http_room.JoinResponseDTO, error) {
	var resp http_room.JoinResponseDTO
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/participants",
		http_room.DisplayNameRequestDTO{DisplayName: displayName}, &resp)
	return resp, err
}

func (c *Client) Room(ctx context.Context, code string) (http_room.LobbyResponseDTO, error) {
	var resp http_room.LobbyResponseDTO
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code), nil, &resp)
	return resp, err
}

func (c *Client) StartVoting(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/voting", nil, nil)
}

func (c *Client) Search(ctx context.Context, query string) ([]http_movie.SearchResultDTO, error) {
	var resp http_movie.SearchResponseDTO
	err := c.do(ctx, http.MethodGet, "/movies/search?query="+url.QueryEscape(query), nil, &resp)
	return resp.Results, err
}

func (c *Client) Propose(ctx context.Context, code string, tmdbID int64) (http_common.MovieDTO, error) {
	var resp http_common.MovieDTO
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/proposals",
		http_proposal.ProposeRequestDTO{TMDBID: tmdbID}, &resp)
	return resp, err
}

func (c *Client) ProposedMovies(ctx context.Context, code string) ([]http_proposal.ProposedMovieDTO, error) {
	var resp http_proposal.ProposalsResponseDTO
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code)+"/proposals", nil, &resp)
	return resp.Movies, err
}

func (c *Client) Ballot(ctx context.Context, code string) (http_voting.BallotResponseDTO, error) {
	var resp http_voting.BallotResponseDTO
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code)+"/ballot", nil, &resp)
	return resp, err
}

func (c *Client) Vote(ctx context.Context, code string, movieID int64, value bool) (http_voting.VoteResponseDTO, error) {
	var resp http_voting.VoteResponseDTO
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/votes",
		http_voting.VoteRequestDTO{MovieID: movieID, Value: &value}, &resp)
	return resp, err
}

func (c *Client) CheckCompletion(ctx context.Context, code string, force bool) (http_voting.CompletionDTO, error) {
	var resp http_voting.CompletionDTO
	err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(code)+"/completion",
		http_voting.CompletionRequestDTO{Force: force}, &resp)
	return resp, err
}

func (c *Client) Results(ctx context.Context, code string) (http_voting.ResultsResponseDTO, error) {
	var resp http_voting.ResultsResponseDTO
	err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code)+"/results", nil, &resp)
	return resp, err
}

// Events opens the room's change stream. The channel is closed when ctx is
// done or the connection drops.
func (c *Client) Events(ctx context.Context, code string) (<-chan model.Event, error) {
	u, err := url.Parse(c.baseURL + apiPrefix + "/rooms/" + url.PathEscape(code) + "/events")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", c.Token())
	u.RawQuery = q.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &Error{Status: resp.StatusCode, Message: "events stream refused"}
		}
		return nil, err
	}

	events := make(chan model.Event, 16)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var e model.Event
			if err := conn.ReadJSON(&e); err != nil {
				return
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
