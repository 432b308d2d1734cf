package composer

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"go-contactform-backend/internal/domain"
	"go-contactform-backend/pkg/akismet"
	"go-contactform-backend/pkg/recaptcha"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	configured bool
	isSpam     bool
	err        error
	lastSeen   akismet.Comment
}

func (f *fakeClassifier) IsConfigured() bool { return f.configured }

func (f *fakeClassifier) CheckComment(ctx context.Context, comment akismet.Comment) (bool, error) {
	f.lastSeen = comment
	return f.isSpam, f.err
}

type fakeVerifier struct {
	configured bool
	err        error
	lastToken  string
}

func (f *fakeVerifier) IsConfigured() bool { return f.configured }

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	f.lastToken = token
	return f.err
}

func TestSpamCheck(t *testing.T) {
	t.Run("Should reject a body classified as spam with the fixed message", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true, isSpam: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: classifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var vf *domain.ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.Equal(t, []string{SpamRejectedMessage}, vf.Fields["body"])
	})

	t.Run("Should accept a body classified as ham", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true, isSpam: false}
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: classifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		assert.NoError(t, comp.Validate(context.Background()))
	})

	t.Run("Should forward the submitter identity to the classifier", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: classifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("User-Agent", "test-agent/1.0")
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)
		require.NoError(t, comp.Validate(context.Background()))

		assert.Equal(t, "203.0.113.7", classifier.lastSeen.UserIP)
		assert.Equal(t, "test-agent/1.0", classifier.lastSeen.UserAgent)
		assert.Equal(t, "Jane", classifier.lastSeen.Author)
		assert.Equal(t, "jane@example.com", classifier.lastSeen.AuthorEmail)
		assert.Equal(t, "contact-form", classifier.lastSeen.Type)
	})

	t.Run("Should skip the classifier when the body already failed", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true, isSpam: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: classifier}}

		fields := validFields()
		fields.Body = ""
		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, fields, req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var vf *domain.ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.NotContains(t, vf.Fields["body"], SpamRejectedMessage)
		assert.Empty(t, classifier.lastSeen.Content)
	})

	t.Run("Should surface a configuration error when credentials are missing", func(t *testing.T) {
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: &fakeClassifier{configured: false}}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("Should abort validation on classifier failure", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true, err: errors.New("akismet: unexpected status 500")}
		cfg := testConfig()
		cfg.Extensions = []Extension{&SpamCheck{classifier: classifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		require.Error(t, err)
		var vf *domain.ValidationFailure
		assert.False(t, errors.As(err, &vf))
	})
}

func TestChallenge(t *testing.T) {
	t.Run("Should reject a token the verifier refuses", func(t *testing.T) {
		verifier := &fakeVerifier{configured: true, err: &recaptcha.VerificationError{Codes: []string{"invalid-input-response"}}}
		cfg := testConfig()
		cfg.Extensions = []Extension{&Challenge{verifier: verifier}}

		req := httptest.NewRequest("POST", "/v1/contact?g-recaptcha-response=bad-token", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var vf *domain.ValidationFailure
		require.ErrorAs(t, err, &vf)
		require.True(t, vf.Fields.Has("captcha"))
		assert.Contains(t, vf.Fields["captcha"][0], "invalid-input-response")
	})

	t.Run("Should accept a token the verifier approves", func(t *testing.T) {
		verifier := &fakeVerifier{configured: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&Challenge{verifier: verifier}}

		req := httptest.NewRequest("POST", "/v1/contact?g-recaptcha-response=good-token", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		require.NoError(t, comp.Validate(context.Background()))
		assert.Equal(t, "good-token", verifier.lastToken)
	})

	t.Run("Should require the token field", func(t *testing.T) {
		verifier := &fakeVerifier{configured: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&Challenge{verifier: verifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var vf *domain.ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.True(t, vf.Fields.Has("captcha"))
		assert.Empty(t, verifier.lastToken)
	})

	t.Run("Should read the token from the header fallback", func(t *testing.T) {
		verifier := &fakeVerifier{configured: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{&Challenge{verifier: verifier}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		req.Header.Set("X-Recaptcha-Token", "header-token")
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		require.NoError(t, comp.Validate(context.Background()))
		assert.Equal(t, "header-token", verifier.lastToken)
	})

	t.Run("Should surface a configuration error when keys are missing", func(t *testing.T) {
		cfg := testConfig()
		cfg.Extensions = []Extension{&Challenge{verifier: &fakeVerifier{configured: false}}}

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		err = comp.Validate(context.Background())
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("Extensions compose in order", func(t *testing.T) {
		classifier := &fakeClassifier{configured: true}
		verifier := &fakeVerifier{configured: true}
		cfg := testConfig()
		cfg.Extensions = []Extension{
			&SpamCheck{classifier: classifier},
			&Challenge{verifier: verifier},
		}

		req := httptest.NewRequest("POST", "/v1/contact?g-recaptcha-response=good-token", nil)
		comp, err := New(cfg, validFields(), req, nil)
		require.NoError(t, err)

		require.NoError(t, comp.Validate(context.Background()))
		assert.NotEmpty(t, classifier.lastSeen.Content)
		assert.Equal(t, "good-token", verifier.lastToken)
	})
}
