// Package client is a Go client for the payments portal API together with the
// client-side session and route guard used by front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second

	msgGeneric     = "Something went wrong. Please try again."
	msgServerError = "An internal server error occurred. Please try again later."
	msgNoResponse  = "No response from server. Please check your internet connection."
)

// APIError is a non-2xx response. Message is safe to render as HTML.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// FieldError is one failed request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name          string `json:"name"`
	IDNumber      string `json:"idNumber"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IDNumber      string    `json:"idNumber"`
	AccountNumber string    `json:"accountNumber"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type PaymentRequest struct {
	RecipientAccount string  `json:"recipientAccount"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Description      string  `json:"description,omitempty"`
}

type PaymentResponse struct {
	Message          string  `json:"message"`
	Reference        string  `json:"reference"`
	Status           string  `json:"status"`
	RecipientAccount string  `json:"recipientAccount"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	SubmittedAt      string  `json:"submittedAt"`
}

// Client calls the API on behalf of one session. The bearer token is read
// from and written to its TokenStore.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New returns a client for baseURL, e.g. "https://portal.example.com/api".
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = &MemoryStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		session: Session{Store: store},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the client's local session.
func (c *Client) Session() Session {
	return c.session
}

// Register creates a customer account and returns the server's confirmation.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Login authenticates and stores the returned token in the session.
func (c *Client) Login(ctx context.Context, accountNumber, password string) (*LoginResponse, error) {
	body := map[string]string{"accountNumber": accountNumber, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	c.session.Store.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Customers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/user/customers", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) SubmitPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	var resp PaymentResponse
	if err := c.do(ctx, http.MethodPost, "/employee/payments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout discards the local token. The token itself stays valid until it expires.
func (c *Client) Logout() {
	c.session.Logout()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Store.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", msgNoResponse, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Logout()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: msgGeneric}
	if resp.StatusCode >= http.StatusInternalServerError {
		apiErr.Message = msgServerError
		return apiErr
	}

	var env struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err != nil || env.Message == "" {
		return apiErr
	}
	apiErr.Message = html.EscapeString(env.Message)
	for _, fe := range env.Errors {
		apiErr.Fields = append(apiErr.Fields, FieldError{Field: fe.Field, Message: html.EscapeString(fe.Message)})
	}
	return apiErr
}
