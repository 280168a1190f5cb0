package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestValidate_AcceptsValidStruct(t *testing.T) {
	assert.NoError(t, Validate(loginForm{Email: "jane@example.com", Password: "hunter22!"}))
}

func TestValidate_ReportsFieldMessages(t *testing.T) {
	err := Validate(loginForm{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := verr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 8 characters", fields["Password"])
}

func TestValidate_RequiredFields(t *testing.T) {
	err := Validate(loginForm{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields()["Email"])
	assert.Contains(t, err.Error(), "Email")
}
