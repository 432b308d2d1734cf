package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"Name":        "Your name",
	"LastName":    "Your last name",
	"PhoneNumber": "Your phone number",
	"Email":       "Your email address",
	"Title":       "Subject",
	"Body":        "Your message",
}

// New returns a validator instance that reports fields by their json
// tag name, so error mappings line up with the wire format.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormatFieldErrors converts validator.ValidationErrors to a mapping of
// field name to user-friendly messages.
func FormatFieldErrors(err error) map[string][]string {
	out := make(map[string][]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a validation error, return a generic form-level message
		out["__all__"] = []string{err.Error()}
		return out
	}

	for _, e := range validationErrors {
		out[e.Field()] = append(out[e.Field()], formatSingleError(e))
	}

	return out
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: This field is required", label)

	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s: Ensure this value has at most %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s: Must be at most %s", label, e.Param())

	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s: Ensure this value has at least %s characters", label, e.Param())
		}
		return fmt.Sprintf("%s: Must be at least %s", label, e.Param())

	case "email":
		return fmt.Sprintf("%s: Enter a valid email address", label)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s: Validation failed (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// Return field name with spaces between camelCase words
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
