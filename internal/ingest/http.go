package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"home_energy/internal/apperr"
	"home_energy/internal/models"
)

const defaultHTTPTimeout = 10 * time.Second

// Client talks to the server API. It implements Submitter.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a bearer token and stores it on c.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/sign-in", credentials{Email: email, Password: password}, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return apperr.Configuration("sign-in for %q returned no token", email)
	}
	c.token = out.Token
	return nil
}

// Submit posts one reading. The session is carried by the bearer token.
func (c *Client) Submit(ctx context.Context, _ models.Session, r models.TelemetryReading) error {
	return c.do(ctx, http.MethodPost, "/api/v1/telemetry", r, nil)
}

// Devices lists the caller's devices.
func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	var out []models.Device
	if err := c.do(ctx, http.MethodGet, "/api/v1/devices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperr.Transient(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// statusError maps a non-2xx response onto the apperr kinds.
func statusError(op string, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(raw))
	}
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, payload.Error)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return apperr.Transient(op, cause)
	case resp.StatusCode == http.StatusNotFound:
		return &apperr.Error{Kind: apperr.KindNotFound, Op: op, Err: cause}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &apperr.Error{Kind: apperr.KindConfiguration, Op: op, Msg: "credentials rejected", Err: cause}
	default:
		return &apperr.Error{Kind: apperr.KindValidation, Op: op, Err: cause}
	}
}
