// Package rest is the typed client for the Quiz Battle Royale HTTP API:
// auth, arena CRUD and question management. The realtime session itself
// lives on the websocket channel, not here.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
)

// Client talks to the arena REST API. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("component", "rest").Logger(),
	}
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Login exchanges credentials for a user and a bearer token. The token
// is installed on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (domain.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", credentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// Register creates an account and installs the returned token.
func (c *Client) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", credentialsRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	c.token = resp.Token
	return resp.User, nil
}

// CurrentUser fetches the account behind the installed token.
func (c *Client) CurrentUser(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

// GetArena fetches one arena by id.
func (c *Client) GetArena(ctx context.Context, arenaID string) (domain.Arena, error) {
	var arena domain.Arena
	err := c.do(ctx, http.MethodGet, "/api/arenas/"+arenaID, nil, &arena)
	return arena, err
}

// ListArenas fetches every visible arena.
func (c *Client) ListArenas(ctx context.Context) ([]domain.Arena, error) {
	var arenas []domain.Arena
	err := c.do(ctx, http.MethodGet, "/api/arenas", nil, &arenas)
	return arenas, err
}

// ListArenasByCreator fetches the arenas owned by one user.
func (c *Client) ListArenasByCreator(ctx context.Context, creatorID string) ([]domain.Arena, error) {
	var arenas []domain.Arena
	err := c.do(ctx, http.MethodGet, "/api/users/"+creatorID+"/arenas", nil, &arenas)
	return arenas, err
}

// CreateArena creates an arena and returns the stored copy.
func (c *Client) CreateArena(ctx context.Context, arena domain.Arena) (domain.Arena, error) {
	var created domain.Arena
	err := c.do(ctx, http.MethodPost, "/api/arenas", arena, &created)
	return created, err
}

// UpdateArena replaces an arena's definition.
func (c *Client) UpdateArena(ctx context.Context, arena domain.Arena) (domain.Arena, error) {
	var updated domain.Arena
	err := c.do(ctx, http.MethodPut, "/api/arenas/"+arena.ID, arena, &updated)
	return updated, err
}

// DeleteArena removes an arena.
func (c *Client) DeleteArena(ctx context.Context, arenaID string) error {
	return c.do(ctx, http.MethodDelete, "/api/arenas/"+arenaID, nil, nil)
}

// ListQuestions fetches an arena's questions in order. Creator only: the
// drafts include correctness.
func (c *Client) ListQuestions(ctx context.Context, arenaID string) ([]domain.QuestionDraft, error) {
	var questions []domain.QuestionDraft
	err := c.do(ctx, http.MethodGet, "/api/arenas/"+arenaID+"/questions", nil, &questions)
	return questions, err
}

// CreateQuestion appends a question to an arena.
func (c *Client) CreateQuestion(ctx context.Context, arenaID string, draft domain.QuestionDraft) (domain.QuestionDraft, error) {
	var created domain.QuestionDraft
	err := c.do(ctx, http.MethodPost, "/api/arenas/"+arenaID+"/questions", draft, &created)
	return created, err
}

// UpdateQuestion replaces one question.
func (c *Client) UpdateQuestion(ctx context.Context, arenaID string, draft domain.QuestionDraft) (domain.QuestionDraft, error) {
	var updated domain.QuestionDraft
	err := c.do(ctx, http.MethodPut, "/api/arenas/"+arenaID+"/questions/"+draft.ID, draft, &updated)
	return updated, err
}

// DeleteQuestion removes one question.
func (c *Client) DeleteQuestion(ctx context.Context, arenaID, questionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/arenas/"+arenaID+"/questions/"+questionID, nil, nil)
}

type reorderRequest struct {
	QuestionIDs []string `json:"questionIds"`
}

// ReorderQuestions sets the broadcast order for an arena's questions.
func (c *Client) ReorderQuestions(ctx context.Context, arenaID string, questionIDs []string) error {
	return c.do(ctx, http.MethodPut, "/api/arenas/"+arenaID+"/questions/order", reorderRequest{QuestionIDs: questionIDs}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("api request")

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrArenaNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
