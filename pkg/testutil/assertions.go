package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fielded is implemented by errors that name the offending input field.
type fielded interface {
	error
	FieldName() string
}

// RequireErrorKind fails the test immediately unless err matches kind.
func RequireErrorKind(t *testing.T, err, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

// AssertFieldError checks that err matches kind and names field.
func AssertFieldError(t *testing.T, err, kind error, field string) {
	t.Helper()
	RequireErrorKind(t, err, kind)

	var fe fielded
	if assert.True(t, errors.As(err, &fe), "error does not name a field: %v", err) {
		assert.Equal(t, field, fe.FieldName())
	}
}
