// Package apistore implements store.Store against the dashboard HTTP API.
package apistore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
)

// Error is a non-2xx answer from the API. Message is the server's "error"
// field, or "HTTP <status>" when the body was not JSON.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is lets callers match a 404 with errors.Is(err, store.ErrNotFound).
func (e *Error) Is(target error) bool {
	return target == store.ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 10 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type envelope struct {
	Items []json.RawMessage `json:"items"`
	Item  json.RawMessage   `json:"item"`
	Error string            `json:"error"`
}

func (c *Client) List(ctx context.Context, section model.Section) ([]model.Item, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, c.path(section), nil, &env); err != nil {
		return nil, err
	}
	out := make([]model.Item, 0, len(env.Items))
	for _, raw := range env.Items {
		it, err := model.Decode(section, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, section model.Section, id int) (model.Item, error) {
	return c.itemCall(ctx, http.MethodGet, section, c.path(section, strconv.Itoa(id)), nil)
}

func (c *Client) Create(ctx context.Context, section model.Section, fields model.Item) (model.Item, error) {
	return c.itemCall(ctx, http.MethodPost, section, c.path(section), fields)
}

func (c *Client) Update(ctx context.Context, section model.Section, id int, fields model.Item) (model.Item, error) {
	return c.itemCall(ctx, http.MethodPatch, section, c.path(section, strconv.Itoa(id)), fields)
}

func (c *Client) Delete(ctx context.Context, section model.Section, id int) error {
	return c.do(ctx, http.MethodDelete, c.path(section, strconv.Itoa(id)), nil, nil)
}

func (c *Client) Toggle(ctx context.Context, section model.Section, id int) (model.Item, error) {
	if !section.Toggleable() {
		return nil, fmt.Errorf("toggle %s: %w", section, store.ErrNotToggleable)
	}
	return c.itemCall(ctx, http.MethodPost, section, c.path(section, strconv.Itoa(id), "toggle"), nil)
}

func (c *Client) itemCall(ctx context.Context, method string, section model.Section, path string, body model.Item) (model.Item, error) {
	if !section.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownSection, section)
	}
	var env envelope
	var in any
	if body != nil {
		in = body
	}
	if err := c.do(ctx, method, path, in, &env); err != nil {
		return nil, err
	}
	if len(env.Item) == 0 {
		return nil, fmt.Errorf("%s %s: response has no item", method, path)
	}
	return model.Decode(section, env.Item)
}

func (c *Client) path(section model.Section, parts ...string) string {
	segs := append([]string{"api", string(section)}, parts...)
	return c.base.JoinPath(segs...).String()
}

func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
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
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	parsed := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed && env.Error != "" {
			msg = env.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if !parsed {
		return errors.New("response is not JSON")
	}
	if p, ok := out.(*envelope); ok {
		*p = env
		return nil
	}
	return json.Unmarshal(raw, out)
}
