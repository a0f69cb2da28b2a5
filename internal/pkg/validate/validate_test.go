package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,numeric"`
}

func TestStruct_OK(t *testing.T) {
	assert.NoError(t, Struct(loginInput{Email: "a@x.com", Code: "012345"}))
}

func TestStruct_ListsEveryFailure(t *testing.T) {
	err := Struct(loginInput{Email: "not-an-email"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'Code' failed 'required'")
}
