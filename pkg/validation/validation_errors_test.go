package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
}

func TestFormatFieldErrors(t *testing.T) {
	v := New()

	t.Run("Should key errors by json field name", func(t *testing.T) {
		err := v.Struct(&sampleForm{})
		require.Error(t, err)

		fields := FormatFieldErrors(err)
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "email")
	})

	t.Run("Should produce user-friendly messages", func(t *testing.T) {
		err := v.Struct(&sampleForm{Name: strings.Repeat("a", 6), Email: "nope"})
		require.Error(t, err)

		fields := FormatFieldErrors(err)
		require.Len(t, fields["name"], 1)
		assert.Contains(t, fields["name"][0], "at most 5 characters")
		require.Len(t, fields["email"], 1)
		assert.Contains(t, fields["email"][0], "valid email address")
	})

	t.Run("Should fall back to a form-level message for non-validation errors", func(t *testing.T) {
		fields := FormatFieldErrors(assert.AnError)
		assert.Contains(t, fields, "__all__")
	})
}
