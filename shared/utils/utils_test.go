package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.True(t, ValidatePatientID(id))
	assert.NotEqual(t, id, GenerateID())
}

func TestGenerateAccountID(t *testing.T) {
	id := GenerateAccountID("bill")
	assert.True(t, strings.HasPrefix(id, "bill-"))
	assert.Len(t, id, len("bill-")+12)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123")
	assert.NoError(t, err)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("password1234", hash))
}

func TestValidatePatientID(t *testing.T) {
	assert.False(t, ValidatePatientID("usr-001"))
	assert.False(t, ValidatePatientID(""))
	assert.True(t, ValidatePatientID("123e4567-e89b-12d3-a456-426614174000"))
}
