package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Sent bool `json:"sent"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *HTTPClient) Register(ctx context.Context, email, username string, password []byte) error {
	body := registerRequest{Email: email, Username: username, Password: string(password)}
	return c.call(ctx, http.MethodPost, "/auth/register", body, "", nil)
}

// Login stores the returned token for later calls.
func (c *HTTPClient) Login(ctx context.Context, identifier string, password []byte) error {
	var out loginResponse
	body := loginRequest{Identifier: identifier, Password: string(password)}
	if err := c.call(ctx, http.MethodPost, "/auth/login", body, "", &out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("login: empty token in response")
	}

	c.mu.Lock()
	c.accessToken = out.Token
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) SendVerifyEmail(ctx context.Context) (bool, error) {
	token := c.token()
	if token == "" {
		return false, ErrNotLoggedIn
	}
	var out verifyResponse
	if err := c.call(ctx, http.MethodPost, "/auth/send_verify_email", nil, token, &out); err != nil {
		return false, err
	}
	return out.Sent, nil
}

// Ping succeeds only while the server reports its database connection up.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, "", nil)
}

// Revoke invalidates the stored token on the server. The token is forgotten
// locally whatever the outcome.
func (c *HTTPClient) Revoke(ctx context.Context) error {
	token := c.token()
	if token == "" {
		return ErrNotLoggedIn
	}
	defer c.Logout()
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, token, nil)
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func (c *HTTPClient) LoggedIn() bool {
	return c.token() != ""
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) call(ctx context.Context, method, path string, in any, token string, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)

	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	case http.StatusUnauthorized:
		if e.Error != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, e.Error)
		}
		return ErrUnauthorized
	}
	return &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Error}
}
