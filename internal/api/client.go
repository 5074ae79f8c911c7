package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/config"
	"github.com/supporthub/supporthub-client/internal/domain"
	"github.com/supporthub/supporthub-client/pkg/util"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// Client issues authenticated REST calls against the SupportHub server.
// Every call either resolves with the typed payload unwrapped from its
// response envelope, or fails with a ClientError. The client performs no
// retries; transient failures surface immediately to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewClient constructs the gateway client. The request timeout from cfg
// bounds every call end to end.
func NewClient(cfg config.APIConfig, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		tokens:  tokens,
		logger:  logger,
	}
}

// Login exchanges credentials for a bearer token. Persisting the token is
// the caller's responsibility.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env tokenEnvelope
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &env)
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

// Me fetches the profile of the logged-in user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/users/profile/me", nil, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var env usersEnvelope
	if err := c.do(ctx, http.MethodGet, "/users", nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPost, "/users", input, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// UpdateUser patches an existing account.
func (c *Client) UpdateUser(ctx context.Context, id int, input UserInput) (*domain.User, error) {
	var env userEnvelope
	path := fmt.Sprintf("/users/update/%d", id)
	if err := c.do(ctx, http.MethodPut, path, input, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// DeactivateUser soft-deletes an account. The server keeps the row and
// flips isActive, hence PUT rather than DELETE.
func (c *Client) DeactivateUser(ctx context.Context, id int) error {
	path := fmt.Sprintf("/users/delete/%d", id)
	return c.do(ctx, http.MethodPut, path, struct{}{}, nil)
}

// ListTickets returns all tickets visible to an administrator.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var env ticketsEnvelope
	if err := c.do(ctx, http.MethodGet, "/tickets", nil, &env); err != nil {
		return nil, err
	}
	return env.Tickets, nil
}

// ListOwnTickets returns tickets authored by the logged-in user.
func (c *Client) ListOwnTickets(ctx context.Context) ([]domain.Ticket, error) {
	var env ticketsEnvelope
	if err := c.do(ctx, http.MethodGet, "/tickets/user", nil, &env); err != nil {
		return nil, err
	}
	return env.Tickets, nil
}

// GetTicket fetches a single ticket by id.
func (c *Client) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	var env ticketEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Ticket, nil
}

// CreateTicket opens a new ticket for the logged-in user.
func (c *Client) CreateTicket(ctx context.Context, problemDescription string) (*domain.Ticket, error) {
	var env ticketEnvelope
	body := createTicketRequest{ProblemDescription: problemDescription}
	if err := c.do(ctx, http.MethodPost, "/tickets", body, &env); err != nil {
		return nil, err
	}
	return &env.Ticket, nil
}

// FinalizeTicket closes a ticket with resolution notes.
func (c *Client) FinalizeTicket(ctx context.Context, id int, patch FinalizePatch) (*domain.Ticket, error) {
	var env ticketEnvelope
	path := fmt.Sprintf("/tickets/update/%d", id)
	body := finalizeTicketRequest{Finished: true, Notes: patch.Notes}
	if err := c.do(ctx, http.MethodPut, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Ticket, nil
}

// AssignTicket claims a ticket for the calling administrator.
func (c *Client) AssignTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	var env ticketEnvelope
	path := fmt.Sprintf("/tickets/update/assigned-ticket/%d", id)
	if err := c.do(ctx, http.MethodPut, path, AssignPatch{}, &env); err != nil {
		return nil, err
	}
	return &env.Ticket, nil
}

// ListSectors returns every sector.
func (c *Client) ListSectors(ctx context.Context) ([]domain.Sector, error) {
	var env sectorsEnvelope
	if err := c.do(ctx, http.MethodGet, "/sectors", nil, &env); err != nil {
		return nil, err
	}
	return env.Sectors, nil
}

// ListTicketTypes returns every ticket type.
func (c *Client) ListTicketTypes(ctx context.Context) ([]domain.TicketType, error) {
	var env ticketTypesEnvelope
	if err := c.do(ctx, http.MethodGet, "/ticket-types", nil, &env); err != nil {
		return nil, err
	}
	return env.TicketTypes, nil
}

// CreateTicketType registers a new ticket type.
func (c *Client) CreateTicketType(ctx context.Context, name string) (*domain.TicketType, error) {
	var env ticketTypeEnvelope
	if err := c.do(ctx, http.MethodPost, "/ticket-types", createTicketTypeRequest{Name: name}, &env); err != nil {
		return nil, err
	}
	return &env.TicketType, nil
}

// TotalTickets returns the total ticket count.
func (c *Client) TotalTickets(ctx context.Context) (int, error) {
	var env totalEnvelope
	if err := c.do(ctx, http.MethodGet, "/ticket-types/total", nil, &env); err != nil {
		return 0, err
	}
	return env.Total, nil
}

// TicketsByType returns ticket counts aggregated per type.
func (c *Client) TicketsByType(ctx context.Context) ([]domain.TypeCount, error) {
	var env byTypeEnvelope
	if err := c.do(ctx, http.MethodGet, "/ticket-types/by-type", nil, &env); err != nil {
		return nil, err
	}
	return env.TicketsByType, nil
}

// TicketsBySector returns ticket counts aggregated per sector.
func (c *Client) TicketsBySector(ctx context.Context) ([]domain.SectorCount, error) {
	var env bySectorEnvelope
	if err := c.do(ctx, http.MethodGet, "/ticket-types/by-sector", nil, &env); err != nil {
		return nil, err
	}
	return env.TicketsBySector, nil
}

// do performs one request and decodes the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return util.NewRequestFailure("encode request body", 0, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return util.NewRequestFailure("build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return util.NewRequestFailure(fmt.Sprintf("%s %s", method, path), 0, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return util.NewAuthFailure(fmt.Sprintf("%s %s: %s", method, path, strings.TrimSpace(string(snippet))), resp.StatusCode)
		}
		return util.NewRequestFailure(fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode), resp.StatusCode, nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.NewRequestFailure(fmt.Sprintf("decode %s %s response", method, path), resp.StatusCode, err)
	}
	return nil
}
