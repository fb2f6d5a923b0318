package accessCode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	slug := "exampleSlug"
	secret := "stringsy"
	encodedCode := GenerateCode(slug, secret)
	assert.NotEmpty(t, encodedCode, "Encoded code should not be empty")
}

func TestDecode(t *testing.T) {
	// First, generate a code
	slug := "testSlug"
	secret := "stringsy"
	encodedCode := GenerateCode(slug, secret)

	// Now, decode the encoded code
	decodedSlug, decodedSecret, err := Decode(encodedCode)

	// Check if there are any errors
	assert.Nil(t, err, "Should not have an error during decoding")
	assert.Equal(t, slug, decodedSlug, "Decoded slug should match the original")
	assert.Equal(t, secret, decodedSecret, "Decoded secret should match the original")
}

func TestDecode_ErrorHandling(t *testing.T) {
	// Pass an incorrectly formatted string
	_, _, err := Decode("this is not a base64 string")
	assert.NotNil(t, err, "Expected an error for incorrect base64 string")
}

func TestNewSecret(t *testing.T) {
	a := NewSecret()
	b := NewSecret()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b, "Secrets should be unique")
}
