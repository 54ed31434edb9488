package jsonstream

import "fmt"

// LexError is the closed set of lexical error kinds. It implements error so
// it can be wrapped and compared with errors.Is/As by callers.
type LexError byte

const (
	lexErrNone LexError = iota
	lexErrInvalidChar
	lexErrInvalidString
	lexErrStringInvalidUTF8
	lexErrStringInvalidEscapedChar
	lexErrStringInvalidJSONChar
	lexErrStringInvalidHexChar
	lexErrLeadingZeros
	lexErrMissingIntegerAfterMinus
	lexErrMissingIntegerAfterDecimal
	lexErrMissingIntegerAfterExponent
	lexErrUnallowedComment
	// Reverse-lexer-only errors: the reverse number grammar can detect these
	// violations before the forward grammar would have a name for them.
	lexErrMissingIntegerBeforeExponent
	lexErrMissingIntegerBeforeDecimal
	lexErrMissingExponentBeforePlus
)

func (e LexError) String() string {
	switch e {
	case lexErrNone:
		return "ok, no error"
	case lexErrInvalidChar:
		return "invalid char in json text"
	case lexErrInvalidString:
		return "invalid string in json text"
	case lexErrStringInvalidUTF8:
		return "invalid bytes in UTF8 string"
	case lexErrStringInvalidEscapedChar:
		return "inside a string, '\\' occurs before a character which it may not"
	case lexErrStringInvalidJSONChar:
		return "invalid character inside string"
	case lexErrStringInvalidHexChar:
		return "invalid (non-hex) character occurs after '\\u' inside string"
	case lexErrLeadingZeros:
		return "malformed number, extra leading zeros are not allowed"
	case lexErrMissingIntegerAfterMinus:
		return "malformed number, a digit is required after the minus sign"
	case lexErrMissingIntegerAfterDecimal:
		return "malformed number, a digit is required after the decimal point"
	case lexErrMissingIntegerAfterExponent:
		return "malformed number, a digit is required after the exponent"
	case lexErrUnallowedComment:
		return "probable comment found in input text, comments are not enabled"
	case lexErrMissingIntegerBeforeExponent:
		return "malformed number, a digit is required before the exponent"
	case lexErrMissingIntegerBeforeDecimal:
		return "malformed number, a digit is required before the decimal point"
	case lexErrMissingExponentBeforePlus:
		return "malformed number, an exponent is required before the plus sign"
	}
	return "unknown lexical error"
}

func (e LexError) Error() string {
	return e.String()
}

// Parser error strings. Each is returned to callers wrapped in a new
// parseError value whose Error() is the string itself; parseError has no Is
// method, so errors are told apart by their message text.
const (
	errTextTrailingGarbage     = "trailing garbage"
	errTextPrematureEOF        = "premature EOF"
	errTextClientCancelled     = "client cancelled parse via callback return value"
	errTextIntegerOverflow     = "integer overflow"
	errTextDoubleOverflow      = "numeric (floating point) overflow"
	errTextInvalidObjectKey    = "invalid object key (must be a string)"
	errTextExpectColon         = "object key and value must be separated by a colon (':')"
	errTextUnallowedToken      = "unallowed token at this point in JSON text"
	errTextExpectCommaOrBrack  = "before array element, I expect ',' or '['"
	errTextExpectCommaOrBrace  = "before key and value, inside map, I expect ',' or '{'"
	errTextExpectCommaOrRBrack = "before array element, I expect ',' or ']'"
	errTextExpectCommaOrRBrace = "before key and value, inside map, I expect ',' or '}'"
)

// parseError wraps a parser error string so it satisfies the error
// interface without allocating a new string type per occurrence.
type parseError struct {
	text string
}

func (e *parseError) Error() string {
	return e.text
}

func newParseError(text string) *parseError {
	return &parseError{text: text}
}

// lexicalError wraps a LexError together with the absolute stream offset it
// occurred at, so Handle.ErrorContext can point an arrow at the offending
// byte even after the chunk that contained it has been discarded.
type lexicalError struct {
	kind   LexError
	offset int64
}

func (e *lexicalError) Error() string {
	return fmt.Sprintf("lexical error: %s", e.kind.String())
}

func newLexicalError(kind LexError, offset int64) *lexicalError {
	return &lexicalError{kind: kind, offset: offset}
}
