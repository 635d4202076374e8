package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title  string   `json:"title" validate:"required"`
	Status string   `json:"status" validate:"omitempty,animestatus"`
	Rating *float64 `json:"rating" validate:"omitempty,min=1,max=10"`
	Bio    string   `json:"bio" validate:"max=5"`
	Email  string   `form:"email" validate:"omitempty,email"`
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	rating := 7.5
	err := ValidateStruct(&sampleRequest{Title: "Frieren", Status: "ONGOING", Rating: &rating})
	assert.NoError(t, err)
}

func TestValidateStructUsesTagNames(t *testing.T) {
	rating := 11.0
	err := ValidateStruct(&sampleRequest{Status: "PAUSED", Rating: &rating, Bio: "too long", Email: "nope"})
	require.Error(t, err)

	var ve *RequestValidationError
	require.True(t, errors.As(err, &ve))

	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}

	assert.Equal(t, "title is required", fields["title"])
	assert.Equal(t, "status must be one of ONGOING, COMPLETED, UPCOMING", fields["status"])
	assert.Equal(t, "rating must be at most 10", fields["rating"])
	assert.Equal(t, "bio must be at most 5 characters", fields["bio"])
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Contains(t, err.Error(), "title is required")
}
