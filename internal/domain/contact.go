package domain

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// SubmittedFields holds the raw values of one contact form submission.
// Length ceilings mirror what the frontend form enforces; the backend
// re-checks them because the endpoint is public.
type SubmittedFields struct {
	Name        string `json:"name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=200"`
	Title       string `json:"title" validate:"required,max=200"`
	Body        string `json:"body" validate:"required"`
}

// FieldErrors maps a submitted field name to the list of messages
// explaining why it was rejected.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Has reports whether the field has at least one error.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// ValidationFailure is returned when a submission fails validation.
// It carries the per-field messages for the caller to re-display.
type ValidationFailure struct {
	Fields FieldErrors
}

func (e *ValidationFailure) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed for fields: %s", strings.Join(names, ", "))
}

// MessageDescriptor is the finalized message handed to the mail
// transport. Built only from a successfully validated submission.
type MessageDescriptor struct {
	From       string   // display-name + address of the submitter
	ReplyTo    string   // submitter address for replies
	Recipients []string // configured, never user-supplied
	Subject    string   // single line
	Body       string
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage validates the submission and sends the message.
	// A *ValidationFailure is returned when one or more fields are
	// rejected; other errors indicate configuration or delivery problems.
	SendContactMessage(ctx context.Context, r *http.Request, fields *SubmittedFields) error
}
