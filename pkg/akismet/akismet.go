// Package akismet implements the small slice of the Akismet REST API
// needed to classify contact form submissions as spam.
package akismet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the API key or site URL is missing.
var ErrNotConfigured = errors.New("akismet: API key and site URL must be configured")

const defaultBaseURL = "https://%s.rest.akismet.com/1.1"

// Comment is one piece of user-submitted content to classify.
type Comment struct {
	UserIP      string
	UserAgent   string
	Author      string
	AuthorEmail string
	Content     string
	Type        string // e.g. "contact-form"
}

// Client calls the Akismet comment-check endpoint.
type Client struct {
	apiKey     string
	siteURL    string
	baseURL    string // derived from apiKey unless overridden in tests
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an Akismet client for the given API key and the
// site URL the key is registered for.
func NewClient(apiKey, siteURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		siteURL: siteURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if apiKey != "" {
		c.baseURL = fmt.Sprintf(defaultBaseURL, apiKey)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether both required settings are present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != "" && c.siteURL != ""
}

// CheckComment classifies the comment, returning true when Akismet
// considers it spam.
func (c *Client) CheckComment(ctx context.Context, comment Comment) (bool, error) {
	if !c.IsConfigured() {
		return false, ErrNotConfigured
	}

	data := url.Values{}
	data.Set("blog", c.siteURL)
	data.Set("user_ip", comment.UserIP)
	data.Set("user_agent", comment.UserAgent)
	data.Set("comment_author", comment.Author)
	data.Set("comment_author_email", comment.AuthorEmail)
	data.Set("comment_content", comment.Content)
	data.Set("comment_type", comment.Type)

	body, err := c.post(ctx, c.baseURL+"/comment-check", data)
	if err != nil {
		return false, err
	}

	switch body {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("akismet: unexpected comment-check response %q", body)
	}
}

// VerifyKey checks the API key against Akismet. Useful at startup to
// catch bad credentials before the first submission arrives.
func (c *Client) VerifyKey(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	data := url.Values{}
	data.Set("key", c.apiKey)
	data.Set("blog", c.siteURL)

	// verify-key lives on the bare API host, not the key subdomain
	endpoint := "https://rest.akismet.com/1.1/verify-key"
	if !strings.Contains(c.baseURL, "rest.akismet.com") {
		endpoint = c.baseURL + "/verify-key"
	}

	body, err := c.post(ctx, endpoint, data)
	if err != nil {
		return err
	}
	if body != "valid" {
		return fmt.Errorf("akismet: key rejected: %s", body)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, data url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("akismet: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("akismet: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("akismet: unexpected status %d", resp.StatusCode)
	}
	return strings.TrimSpace(string(raw)), nil
}
