// Package recaptcha verifies Google reCAPTCHA v2 response tokens.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const VerifyEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// ErrNotConfigured is returned when the site or secret key is missing.
var ErrNotConfigured = errors.New("recaptcha: site key and secret key must be configured")

// Response is the payload returned by the siteverify API.
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// VerificationError reports a rejected token along with the error codes
// the verification service returned.
type VerificationError struct {
	Codes []string
}

func (e *VerificationError) Error() string {
	if len(e.Codes) == 0 {
		return "recaptcha: token rejected"
	}
	return fmt.Sprintf("recaptcha: token rejected (%s)", strings.Join(e.Codes, ", "))
}

// Verifier validates client-submitted challenge tokens.
type Verifier struct {
	siteKey    string
	secretKey  string
	lang       string // optional widget language code
	endpoint   string
	httpClient *http.Client
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithEndpoint overrides the verification endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(v *Verifier) { v.endpoint = endpoint }
}

// WithLang sets the widget language code advertised to clients.
func WithLang(lang string) Option {
	return func(v *Verifier) { v.lang = lang }
}

// NewVerifier creates a Verifier for the given key pair.
func NewVerifier(siteKey, secretKey string, opts ...Option) *Verifier {
	v := &Verifier{
		siteKey:   siteKey,
		secretKey: secretKey,
		endpoint:  VerifyEndpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsConfigured reports whether both keys are present.
func (v *Verifier) IsConfigured() bool {
	return v.siteKey != "" && v.secretKey != ""
}

// SiteKey returns the public key clients embed in the widget.
func (v *Verifier) SiteKey() string { return v.siteKey }

// Lang returns the configured widget language code, if any.
func (v *Verifier) Lang() string { return v.lang }

// Verify checks the token with the verification service. A rejected
// token yields a *VerificationError carrying the service's reason.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.IsConfigured() {
		return ErrNotConfigured
	}

	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("recaptcha: reading response: %w", err)
	}

	var result Response
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("recaptcha: decoding response: %w", err)
	}

	if !result.Success {
		return &VerificationError{Codes: result.ErrorCodes}
	}
	return nil
}
