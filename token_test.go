package jsonstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenString(t *testing.T) {
	assert.Equal(t, "left_brace", tokLeftBrace.String())
	assert.Equal(t, "string_with_escapes", tokStringWithEscapes.String())
	assert.Equal(t, "unknown", Token(255).String())
}

func TestTokenIsScalarString(t *testing.T) {
	assert.True(t, tokString.isScalarString())
	assert.True(t, tokStringWithEscapes.isScalarString())
	assert.False(t, tokInteger.isScalarString())
}

func TestTokenIsNumber(t *testing.T) {
	assert.True(t, tokInteger.isNumber())
	assert.True(t, tokDouble.isNumber())
	assert.False(t, tokString.isNumber())
}

func TestTokenIsValueToken(t *testing.T) {
	for _, tok := range []Token{tokNull, tokBoolTrue, tokBoolFalse, tokString, tokStringWithEscapes, tokInteger, tokDouble} {
		assert.True(t, tok.isValueToken(), "%s should be a value token", tok)
	}
	for _, tok := range []Token{tokLeftBrace, tokRightBrace, tokComma, tokColon, tokComment, tokEOF, tokError} {
		assert.False(t, tok.isValueToken(), "%s should not be a value token", tok)
	}
}
