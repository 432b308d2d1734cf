// Package composer builds outgoing contact messages from submitted
// form fields: it validates the fields, renders subject and body from
// templates, and hands the finished message to a mail transport.
package composer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"text/template"

	"go-contactform-backend/internal/domain"
	"go-contactform-backend/pkg/mailer"
	"go-contactform-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ErrNotValidated is returned when render, build or dispatch is called
// before the submission passed validation. This is a usage error, not a
// user-input error.
var ErrNotValidated = errors.New("composer: submission has not passed validation")

// ConfigError indicates the composer or one of its extensions is
// missing required configuration. Not retryable.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

var (
	ErrMissingRequest = &ConfigError{Msg: "composer: an http request is required"}
	ErrNoRecipients   = &ConfigError{Msg: "composer: no recipients configured"}
	ErrNoTransport    = &ConfigError{Msg: "composer: no mail transport configured"}
)

// Default templates, overridable via Config. The subject is collapsed
// to one line after rendering regardless of the template's shape.
const (
	defaultSubjectTemplate = "[{{.Site}}] Message from {{.Name}} {{.LastName}}: {{.Title}}"
	defaultBodyTemplate    = `Name: {{.Name}} {{.LastName}}
Email: {{.Email}}
Phone: {{.PhoneNumber}}
Subject: {{.Title}}

{{.Body}}
`
)

// RenderContext carries the validated field values plus the site
// identity used to fill in the subject and body templates.
type RenderContext struct {
	Name        string
	LastName    string
	PhoneNumber string
	Email       string
	Title       string
	Body        string
	Site        string
}

// Config holds everything a Composer needs beyond the submission
// itself. All values are explicit; nothing is read from globals.
type Config struct {
	// Recipients is the default recipient list. A per-composer
	// override can be passed to New.
	Recipients []string
	// SubjectTemplate and BodyTemplate override the built-in
	// templates when non-empty. Parsed once, at construction.
	SubjectTemplate string
	BodyTemplate    string
	// SiteName names the site in rendered output. When empty the
	// request host is used.
	SiteName string
	// Transport delivers the finished message.
	Transport mailer.Transport
	// Extensions run after the syntactic pass, in order.
	Extensions []Extension
	// Validate allows sharing one validator instance across
	// composers. A fresh one is created when nil.
	Validate *validator.Validate
}

// Composer validates one contact form submission and builds the
// outgoing message. One instance handles exactly one submission.
//
// Lifecycle: Unvalidated -> Valid or Invalid. Only Valid permits
// RenderContext, RenderSubject, RenderBody, SenderAddress,
// BuildMessage and Dispatch. An Invalid composer cannot transition
// back; construct a new one with fresh data.
type Composer struct {
	cfg         Config
	subjectTmpl *template.Template
	bodyTmpl    *template.Template

	data *domain.SubmittedFields // nil means an unsubmitted form
	req  *http.Request

	done        bool
	outcome     error
	cleaned     *domain.SubmittedFields
	fieldErrors domain.FieldErrors
}

// New constructs a Composer for one submission. data may be nil (an
// unsubmitted form, which can never validate). req is required.
// recipients overrides cfg.Recipients when non-nil.
func New(cfg Config, data *domain.SubmittedFields, req *http.Request, recipients []string) (*Composer, error) {
	if req == nil {
		return nil, ErrMissingRequest
	}
	if recipients != nil {
		cfg.Recipients = recipients
	}
	if len(cfg.Recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if cfg.Validate == nil {
		cfg.Validate = validation.New()
	}

	subjectSrc := cfg.SubjectTemplate
	if subjectSrc == "" {
		subjectSrc = defaultSubjectTemplate
	}
	bodySrc := cfg.BodyTemplate
	if bodySrc == "" {
		bodySrc = defaultBodyTemplate
	}

	subjectTmpl, err := template.New("subject").Parse(subjectSrc)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("composer: invalid subject template: %v", err)}
	}
	bodyTmpl, err := template.New("body").Parse(bodySrc)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("composer: invalid body template: %v", err)}
	}

	return &Composer{
		cfg:         cfg,
		subjectTmpl: subjectTmpl,
		bodyTmpl:    bodyTmpl,
		data:        data,
		req:         req,
	}, nil
}

// Validate applies the syntactic field rules, then runs each extension
// whose field passed. Idempotent: repeated calls return the first
// outcome without re-running checks. A *domain.ValidationFailure means
// user input was rejected; a *ConfigError or other error means a check
// could not run at all.
func (c *Composer) Validate(ctx context.Context) error {
	if c.done {
		return c.outcome
	}

	if c.data == nil {
		c.done = true
		c.fieldErrors = domain.FieldErrors{}
		c.outcome = &domain.ValidationFailure{Fields: c.fieldErrors}
		return c.outcome
	}

	cleaned := trimFields(*c.data)
	fieldErrors := domain.FieldErrors{}

	if err := c.cfg.Validate.Struct(&cleaned); err != nil {
		for field, messages := range validation.FormatFieldErrors(err) {
			fieldErrors[field] = messages
		}
	}

	for _, ext := range c.cfg.Extensions {
		if fieldErrors.Has(ext.Field()) {
			continue
		}
		err := ext.Validate(ctx, c.req, &cleaned)
		if err == nil {
			continue
		}
		var rej *Rejection
		if errors.As(err, &rej) {
			fieldErrors.Add(ext.Field(), rej.Message)
			continue
		}
		// Configuration or infrastructure failure: the check never
		// ran, so this is not a field error.
		c.done = true
		c.outcome = err
		return c.outcome
	}

	c.done = true
	if len(fieldErrors) > 0 {
		c.fieldErrors = fieldErrors
		c.outcome = &domain.ValidationFailure{Fields: fieldErrors}
	} else {
		c.cleaned = &cleaned
	}
	return c.outcome
}

// FieldErrors returns the error mapping of a failed validation, or nil.
func (c *Composer) FieldErrors() domain.FieldErrors {
	return c.fieldErrors
}

// RenderContext returns the cleaned values plus the site identity.
func (c *Composer) RenderContext() (*RenderContext, error) {
	if !c.valid() {
		return nil, ErrNotValidated
	}
	return &RenderContext{
		Name:        c.cleaned.Name,
		LastName:    c.cleaned.LastName,
		PhoneNumber: c.cleaned.PhoneNumber,
		Email:       c.cleaned.Email,
		Title:       c.cleaned.Title,
		Body:        c.cleaned.Body,
		Site:        c.site(),
	}, nil
}

// RenderSubject renders the subject template and collapses the result
// to a single line, since mail subjects must not contain newlines.
func (c *Composer) RenderSubject() (string, error) {
	rendered, err := c.render(c.subjectTmpl)
	if err != nil {
		return "", err
	}
	return collapseLines(rendered), nil
}

// RenderBody renders the body template.
func (c *Composer) RenderBody() (string, error) {
	return c.render(c.bodyTmpl)
}

// SenderAddress derives a display-name + address pair from the
// submitter's name and email, so the reply identity reflects the
// submitter even though the envelope sender is the system address.
func (c *Composer) SenderAddress() (string, error) {
	if !c.valid() {
		return "", ErrNotValidated
	}
	addr := mail.Address{Name: c.cleaned.Name, Address: c.cleaned.Email}
	return addr.String(), nil
}

// BuildMessage aggregates sender, recipients, subject and body into a
// descriptor ready for the mail transport.
func (c *Composer) BuildMessage() (*domain.MessageDescriptor, error) {
	if !c.valid() {
		return nil, ErrNotValidated
	}
	from, err := c.SenderAddress()
	if err != nil {
		return nil, err
	}
	subject, err := c.RenderSubject()
	if err != nil {
		return nil, err
	}
	body, err := c.RenderBody()
	if err != nil {
		return nil, err
	}
	return &domain.MessageDescriptor{
		From:       from,
		ReplyTo:    c.cleaned.Email,
		Recipients: append([]string(nil), c.cfg.Recipients...),
		Subject:    subject,
		Body:       body,
	}, nil
}

// Dispatch builds the message and sends it through the configured
// transport. Transport failures are swallowed when suppressErrors is
// true; calling Dispatch before successful validation is still an
// error regardless of the flag.
func (c *Composer) Dispatch(suppressErrors bool) error {
	if !c.valid() {
		return ErrNotValidated
	}
	if c.cfg.Transport == nil {
		return ErrNoTransport
	}
	msg, err := c.BuildMessage()
	if err != nil {
		return err
	}
	if err := c.cfg.Transport.Send(*msg); err != nil {
		if suppressErrors {
			return nil
		}
		return fmt.Errorf("composer: dispatch failed: %w", err)
	}
	return nil
}

func (c *Composer) valid() bool {
	return c.done && c.outcome == nil && c.cleaned != nil
}

func (c *Composer) site() string {
	if c.cfg.SiteName != "" {
		return c.cfg.SiteName
	}
	return c.req.Host
}

func (c *Composer) render(tmpl *template.Template) (string, error) {
	rc, err := c.RenderContext()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, rc); err != nil {
		return "", fmt.Errorf("composer: rendering %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// collapseLines joins all lines of s with no separator, stripping any
// embedded CR/LF characters.
func collapseLines(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r'
	}), "")
}

// trimFields returns a copy with surrounding whitespace removed, the
// values that validation and rendering operate on.
func trimFields(f domain.SubmittedFields) domain.SubmittedFields {
	f.Name = strings.TrimSpace(f.Name)
	f.LastName = strings.TrimSpace(f.LastName)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.Email = strings.TrimSpace(f.Email)
	f.Title = strings.TrimSpace(f.Title)
	f.Body = strings.TrimSpace(f.Body)
	return f
}
