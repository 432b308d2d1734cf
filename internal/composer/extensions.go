package composer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go-contactform-backend/internal/domain"
	"go-contactform-backend/pkg/akismet"
	"go-contactform-backend/pkg/recaptcha"
)

// Extension is a pluggable validation step that runs after the
// syntactic pass. Extensions compose: a composer can carry any number
// of them, in order. An extension is skipped when its field already
// failed the syntactic pass.
type Extension interface {
	// Field names the submission field the extension reports on.
	Field() string
	// Validate checks the cleaned values against the extension's
	// external capability. Returning a *Rejection records a field
	// error; any other error aborts validation.
	Validate(ctx context.Context, req *http.Request, cleaned *domain.SubmittedFields) error
}

// Rejection marks the extension's field as rejected, with a message
// suitable for display to the submitter.
type Rejection struct {
	Message string
}

func (e *Rejection) Error() string { return e.Message }

// SpamRejectedMessage is the fixed message reported when the
// classification service flags the body.
const SpamRejectedMessage = "Your message was classified as spam."

// spamClassifier is the slice of the akismet client the extension
// needs. Narrowed for testing.
type spamClassifier interface {
	IsConfigured() bool
	CheckComment(ctx context.Context, comment akismet.Comment) (bool, error)
}

// SpamCheck classifies the message body through an external spam
// classification service. It runs only when the body passed the
// syntactic rules.
type SpamCheck struct {
	classifier spamClassifier
}

// NewSpamCheck wraps a classification client as an Extension.
func NewSpamCheck(client *akismet.Client) *SpamCheck {
	return &SpamCheck{classifier: client}
}

func (s *SpamCheck) Field() string { return "body" }

func (s *SpamCheck) Validate(ctx context.Context, req *http.Request, cleaned *domain.SubmittedFields) error {
	if !s.classifier.IsConfigured() {
		return &ConfigError{Msg: "composer: spam check requires an API key and site URL"}
	}
	isSpam, err := s.classifier.CheckComment(ctx, akismet.Comment{
		UserIP:      clientIP(req),
		UserAgent:   req.UserAgent(),
		Author:      cleaned.Name,
		AuthorEmail: cleaned.Email,
		Content:     cleaned.Body,
		Type:        "contact-form",
	})
	if err != nil {
		if errors.Is(err, akismet.ErrNotConfigured) {
			return &ConfigError{Msg: "composer: spam check requires an API key and site URL"}
		}
		return err
	}
	if isSpam {
		return &Rejection{Message: SpamRejectedMessage}
	}
	return nil
}

// ChallengeTokenField is the form field carrying the client's
// challenge-response token.
const ChallengeTokenField = "g-recaptcha-response"

// challengeVerifier is the slice of the recaptcha verifier the
// extension needs. Narrowed for testing.
type challengeVerifier interface {
	IsConfigured() bool
	Verify(ctx context.Context, token, remoteIP string) error
}

// Challenge adds one extra required field, a human-verification token,
// checked against an external challenge-verification service. The
// failure reason comes from that service, not from this component.
type Challenge struct {
	verifier challengeVerifier
}

// NewChallenge wraps a challenge verifier as an Extension.
func NewChallenge(verifier *recaptcha.Verifier) *Challenge {
	return &Challenge{verifier: verifier}
}

func (c *Challenge) Field() string { return "captcha" }

func (c *Challenge) Validate(ctx context.Context, req *http.Request, cleaned *domain.SubmittedFields) error {
	if !c.verifier.IsConfigured() {
		return &ConfigError{Msg: "composer: challenge verification requires a site key and secret key"}
	}
	token := req.FormValue(ChallengeTokenField)
	if token == "" {
		token = req.Header.Get("X-Recaptcha-Token")
	}
	if token == "" {
		return &Rejection{Message: "This field is required."}
	}
	if err := c.verifier.Verify(ctx, token, clientIP(req)); err != nil {
		var verr *recaptcha.VerificationError
		if errors.As(err, &verr) {
			return &Rejection{Message: verr.Error()}
		}
		if errors.Is(err, recaptcha.ErrNotConfigured) {
			return &ConfigError{Msg: "composer: challenge verification requires a site key and secret key"}
		}
		return err
	}
	return nil
}

// clientIP extracts the submitter's network address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
