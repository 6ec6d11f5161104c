// Package petfriends is a client for the PetFriends REST API.
//
// Every call returns the HTTP status together with the body as received and,
// when the body is a JSON object, its decoded form. HTTP error statuses are
// reported through Response, never through the returned error: tests need to
// assert on 400 and 403 answers as readily as on 200s.
package petfriends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultBaseURL is the public PetFriends deployment.
const DefaultBaseURL = "https://petfriends.skillfactory.ru/"

// Filter selects which pets ListPets returns.
type Filter string

const (
	// FilterAll lists every pet on the service.
	FilterAll Filter = ""
	// FilterMyPets lists only the caller's pets.
	FilterMyPets Filter = "my_pets"
)

// Client talks to one PetFriends deployment. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	fs         afero.Fs
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another deployment, e.g. a local twin.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the underlying HTTP client. nil restores the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithFS sets the filesystem photo paths are read from.
func WithFS(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// WithTimeout bounds every request, including reading the response body.
// It applies to whichever HTTP client the other options leave in place; the
// caller's client is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New returns a Client for DefaultBaseURL unless overridden by opts.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		fs:         afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/") + "/"
	return c
}

// BaseURL returns the normalised base URL, always ending in a slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is the outcome of one API call.
type Response struct {
	StatusCode int
	// Raw is the body text exactly as received.
	Raw string
	// JSON is the decoded body, or nil when the body is not a JSON object.
	JSON map[string]interface{}
}

// IsJSON reports whether the body decoded as a JSON object.
func (r *Response) IsJSON() bool {
	return r.JSON != nil
}

// Key returns the auth key of a GetAPIKey response, if present.
func (r *Response) Key() (string, bool) {
	if r.JSON == nil {
		return "", false
	}
	key, ok := r.JSON["key"].(string)
	return key, ok
}

// Pets decodes the "pets" array. ok is false when the field is absent or not
// an array; an empty array yields a non-nil empty slice and ok true.
func (r *Response) Pets() (pets []Pet, ok bool) {
	if r.JSON == nil {
		return nil, false
	}
	raw, present := r.JSON["pets"]
	if !present {
		return nil, false
	}
	if _, isArray := raw.([]interface{}); !isArray {
		return nil, false
	}

	var body struct {
		Pets []Pet `json:"pets"`
	}
	if err := json.Unmarshal([]byte(r.Raw), &body); err != nil {
		return nil, false
	}
	if body.Pets == nil {
		body.Pets = []Pet{}
	}
	return body.Pets, true
}

// Pet decodes a single pet record.
func (r *Response) Pet() (*Pet, bool) {
	if r.JSON == nil {
		return nil, false
	}
	var p Pet
	if err := json.Unmarshal([]byte(r.Raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Pet is a pet record as the service returns it.
type Pet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AnimalType string `json:"animal_type"`
	Age        Age    `json:"age"`
	PetPhoto   string `json:"pet_photo"`
	UserID     string `json:"user_id"`
	CreatedAt  string `json:"created_at"`
}

// Age accepts the age as either a JSON string or a number.
type Age string

func (a *Age) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age: %w", err)
	}
	*a = Age(n.String())
	return nil
}

// do sends req and reads the whole body. Only transport failures are errors.
func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("petfriends request failed",
			"method", req.Method, "path", req.URL.Path, "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("petfriends request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	out := &Response{StatusCode: resp.StatusCode, Raw: string(data)}
	var obj map[string]interface{}
	if json.Unmarshal(data, &obj) == nil {
		out.JSON = obj
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	return req, nil
}
