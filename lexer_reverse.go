package jsonstream

import "unicode/utf8"

// rlMajor is the outer state of the resumable reverse lexer, mirroring
// lexMajor but for right-to-left scanning.
type rlMajor byte

const (
	rlStart rlMajor = iota
	rlExpect
	rlString
	rlNumber
	rlComment
)

// ReverseLexer is a resumable token recognizer that scans a chunk from its
// last byte toward its first. Callers feed it successive chunks in reverse
// document order: the chunk nearest the end of the logical stream first.
//
// Offsets still count bytes consumed, same as Lexer; they just map to a
// shrinking read position (len(input)-offset-1) rather than a growing one.
// A token that spans a chunk boundary is assembled by prepending each newly
// discovered (and, relative to the document, earlier) fragment in front of
// what was already buffered, rather than appending.
type ReverseLexer struct {
	major rlMajor
	sub   int
	subsub int

	resultTok Token
	lastErr   LexError

	buf *byteBuffer

	allowComments bool
	validateUTF8  bool
}

// NewReverseLexer creates a ReverseLexer ready to scan from the end of a
// document.
func NewReverseLexer(allowComments, validateUTF8 bool) *ReverseLexer {
	return &ReverseLexer{
		buf:           newByteBuffer(),
		allowComments: allowComments,
		validateUTF8:  validateUTF8,
	}
}

// Reset returns the ReverseLexer to its just-constructed state.
func (l *ReverseLexer) Reset() {
	l.major = rlStart
	l.sub = 0
	l.subsub = 0
	l.resultTok = tokEOF
	l.lastErr = lexErrNone
	l.buf.clear()
}

// Error returns the typed lexical error recorded by the most recent Lex call
// that returned tokError.
func (l *ReverseLexer) Error() LexError {
	return l.lastErr
}

// nextByte reads the next byte toward the front of input, or reports that
// the current chunk is exhausted.
func (l *ReverseLexer) nextByte(input []byte, offset *int) (byte, bool) {
	if *offset >= len(input) {
		return 0, false
	}
	c := input[len(input)-*offset-1]
	*offset++
	return c, true
}

func (l *ReverseLexer) unread(offset *int) {
	*offset--
}

// Lex scans the next token ending at the position *offset bytes in from the
// right edge of input, advancing *offset as bytes are consumed leftward. Its
// return contract matches Lexer.Lex, with the token's raw source bytes
// reassembled in ordinary left-to-right order regardless of scan direction.
func (l *ReverseLexer) Lex(input []byte, offset *int) (Token, []byte) {
	entryMajor := l.major
	if entryMajor == rlStart {
		l.buf.clear()
	}
	startOffset := *offset

	var tok Token
	switch entryMajor {
	case rlStart:
		tok = l.lexStart(input, offset, &startOffset)
	case rlExpect:
		tok = l.lexExpect(input, offset)
	case rlString:
		tok = l.lexString(input, offset)
	case rlNumber:
		tok = l.lexNumber(input, offset)
	case rlComment:
		tok = l.lexComment(input, offset)
		if tok == tokComment {
			l.major = rlStart
			l.buf.clear()
			startOffset = *offset
			tok = l.lexStart(input, offset, &startOffset)
		}
	}

	// The major that actually ran, as opposed to entryMajor: a comment
	// resolving mid-call can transparently hand off into a nested
	// lexNumber/lexExpect/lexString within this same Lex call, and it's that
	// recognizer's buffering discipline that finish must defer to.
	dispatchMajor := l.major
	return l.finish(input, entryMajor, dispatchMajor, startOffset, offset, tok)
}

// finish mirrors Lexer.finish, with the new-bytes span computed from the
// shrinking read position and stitched by prepending rather than appending,
// and with string classification and validation deferred to this point
// since, scanning backward, an escaped closing quote cannot be told from a
// real one until the bytes to its left have been counted.
//
// lexExpect and lexNumber are exceptions to the generic stitching below:
// they accumulate their own run of bytes directly into l.buf as they scan
// (the only way they can classify a keyword or validate a number grammar
// that is read back-to-front), so re-prepending the raw span here on top of
// what they already buffered would count every byte twice.
func (l *ReverseLexer) finish(input []byte, entryMajor, dispatchMajor rlMajor, startOffset int, offset *int, tok Token) (Token, []byte) {
	if dispatchMajor == rlNumber || dispatchMajor == rlExpect {
		var out []byte
		if tok != tokEOF {
			if tok != tokError {
				out = l.buf.bytes()
			}
			l.major = rlStart
		}
		return tok, out
	}

	var out []byte
	spanStart := len(input) - *offset
	spanEnd := len(input) - startOffset
	newBytes := input[spanStart:spanEnd]

	if tok == tokEOF || entryMajor != rlStart {
		l.buf.prepend(newBytes)
		if tok != tokEOF {
			if tok != tokError {
				out = l.buf.bytes()
			}
			l.major = rlStart
		}
	} else {
		if tok != tokError {
			out = newBytes
		}
		l.major = rlStart
	}

	if tok != tokString {
		return tok, out
	}

	body := out
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	hasEscape, errKind := l.validateStringBody(body)
	if errKind != lexErrNone {
		l.lastErr = errKind
		return tokError, nil
	}
	if hasEscape {
		return tokStringWithEscapes, body
	}
	return tokString, body
}

// Peek computes the next token non-destructively, mirroring Lexer.Peek.
func (l *ReverseLexer) Peek(input []byte, offset int) Token {
	savedMajor, savedSub, savedSubsub := l.major, l.sub, l.subsub
	savedResult, savedErr := l.resultTok, l.lastErr
	savedBufLen := l.buf.len()

	tok, _ := l.Lex(input, &offset)

	l.major, l.sub, l.subsub = savedMajor, savedSub, savedSubsub
	l.resultTok, l.lastErr = savedResult, savedErr
	l.buf.truncate(savedBufLen)

	return tok
}

// lexStart is the between-tokens scanner for the reverse direction. Every
// token's last byte, read first here, is enough to dispatch except for the
// true/false ambiguity (both end in 'e'), which lexExpect resolves by
// accumulating the trailing letter run. *tokStart is moved past skipped
// whitespace and comments so it ends at the token's last byte.
func (l *ReverseLexer) lexStart(input []byte, offset *int, tokStart *int) Token {
	for {
		*tokStart = *offset
		c, ok := l.nextByte(input, offset)
		if !ok {
			return tokEOF
		}

		switch c {
		case '{':
			return tokLeftBrace
		case '}':
			return tokRightBrace
		case '[':
			return tokLeftBracket
		case ']':
			return tokRightBracket
		case ',':
			return tokComma
		case ':':
			return tokColon
		case '\t', '\n', '\v', '\f', '\r', ' ':
			continue
		case '"':
			l.major = rlString
			l.sub, l.subsub = 0, 0
			return l.lexString(input, offset)
		case 'e', 'l':
			l.unread(offset)
			l.major = rlExpect
			l.sub, l.subsub = 0, 0
			return l.lexExpect(input, offset)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			l.unread(offset)
			l.major = rlNumber
			l.sub, l.subsub = 0, 0
			return l.lexNumber(input, offset)
		case '/':
			if !l.allowComments {
				l.unread(offset)
				l.lastErr = lexErrUnallowedComment
				return tokError
			}
			l.major = rlComment
			l.subsub = 0
			l.sub = 3
			tok := l.lexComment(input, offset)
			if tok == tokComment {
				l.major = rlStart
				continue
			}
			return tok
		default:
			l.unread(offset)
			l.lastErr = lexErrInvalidChar
			return tokError
		}
	}
}

// lexExpect recognizes true/false/null by accumulating the contiguous run of
// lowercase letters ending at the already-seen last character, then matching
// it against the three literals in full. JSON's grammar guarantees a keyword
// is never adjacent to another letter, so the run's extent is unambiguous.
func (l *ReverseLexer) lexExpect(input []byte, offset *int) Token {
	switch l.sub {
	case 0:
		l.buf.clear()
	case 1:
		goto loop
	}

loop:
	if l.buf.len() >= 5 {
		return l.finishKeyword()
	}
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 1
			return tokEOF
		}
		if c < 'a' || c > 'z' {
			l.unread(offset)
			return l.finishKeyword()
		}
		l.buf.appendByte(c)
	}
	goto loop
}

func (l *ReverseLexer) finishKeyword() Token {
	word := l.buf.bytes()
	switch {
	case matchesReversed(word, "true"):
		return tokBoolTrue
	case matchesReversed(word, "false"):
		return tokBoolFalse
	case matchesReversed(word, "null"):
		return tokNull
	}
	l.lastErr = lexErrInvalidString
	return tokError
}

func matchesReversed(scratch []byte, word string) bool {
	if len(scratch) != len(word) {
		return false
	}
	for i := 0; i < len(scratch); i++ {
		if scratch[i] != word[len(word)-1-i] {
			return false
		}
	}
	return true
}

// lexString recognizes a JSON string body scanning backward from just after
// the already-consumed closing quote. Content bytes are never inspected or
// copied here: only quote bytes matter, and only to tell a real opening
// quote from one escaped by an odd-length run of backslashes immediately to
// its left. finish assembles and validates the body once the boundary is
// found.
func (l *ReverseLexer) lexString(input []byte, offset *int) Token {
	switch l.sub {
	case 1:
		goto readNext
	case 2:
		goto countBackslash
	}

readNext:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 1
			return tokEOF
		}
		if c != '"' {
			goto readNext
		}
	}
	l.subsub = 0

countBackslash:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 2
			return tokEOF
		}
		if c == '\\' {
			l.subsub++
			goto countBackslash
		}
		l.unread(offset)
	}
	if l.subsub%2 == 1 {
		l.subsub = 0
		goto readNext
	}
	return tokString
}

// validateStringBody runs the same grammar and (optionally) UTF-8 checks the
// forward lexer applies byte-at-a-time, but in one forward pass over the
// fully reassembled span: reverse scanning only needs to find where a
// string starts, not classify each byte as it goes, so the two lexers
// diverge here without sacrificing either one's validation guarantees.
func (l *ReverseLexer) validateStringBody(body []byte) (hasEscape bool, errKind LexError) {
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '\\' {
			hasEscape = true
			i++
			if i >= len(body) {
				return hasEscape, lexErrInvalidString
			}
			e := body[i]
			if e == 'u' {
				i++
				for k := 0; k < 4; k++ {
					if i >= len(body) || charLookupTable[body[i]]&validHex == 0 {
						return hasEscape, lexErrStringInvalidHexChar
					}
					i++
				}
				continue
			}
			if charLookupTable[e]&validEscape == 0 {
				return hasEscape, lexErrStringInvalidEscapedChar
			}
			i++
			continue
		}
		if charLookupTable[c]&invalidJSONChar != 0 {
			return hasEscape, lexErrStringInvalidJSONChar
		}
		if l.validateUTF8 && c >= 0x80 {
			r, size := utf8.DecodeRune(body[i:])
			if r == utf8.RuneError && size <= 1 {
				return hasEscape, lexErrStringInvalidUTF8
			}
			i += size
			continue
		}
		i++
	}
	return hasEscape, lexErrNone
}

// lexNumber accumulates the run of number-grammar bytes ending at the
// already-seen last digit, then validates the reassembled text in one shot
// against the full (forward-read) number grammar. Unlike the forward lexer,
// which can classify integer-vs-double and report the precise violation
// byte-at-a-time, the reverse scan cannot tell which phase (exponent,
// fraction, integer) a given digit belongs to until the whole run is in
// hand, so buffering first is the simpler and more robust choice here.
func (l *ReverseLexer) lexNumber(input []byte, offset *int) Token {
	switch l.sub {
	case 0:
		l.buf.clear()
	case 1:
		goto readNext
	}

readNext:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 1
			return tokEOF
		}
		if !isNumberByte(c) {
			l.unread(offset)
			return l.finishNumber()
		}
		l.buf.appendByte(c)
	}
	goto readNext
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func (l *ReverseLexer) finishNumber() Token {
	text := l.buf.bytes()
	reverseBytesInPlace(text)
	kind, errKind := validateNumberGrammar(text)
	if errKind != lexErrNone {
		l.lastErr = errKind
		return tokError
	}
	return kind
}

func reverseBytesInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// validateNumberGrammar checks text (already in ordinary left-to-right
// order) against the JSON number grammar, reporting the reverse-specific
// error kind appropriate to where validation failed.
func validateNumberGrammar(text []byte) (Token, LexError) {
	i, n := 0, len(text)
	if i < n && text[i] == '-' {
		i++
	}
	if i >= n || text[i] < '0' || text[i] > '9' {
		return tokError, lexErrMissingIntegerAfterMinus
	}
	if text[i] == '0' {
		i++
		if i < n && text[i] >= '0' && text[i] <= '9' {
			return tokError, lexErrLeadingZeros
		}
	} else {
		for i < n && text[i] >= '0' && text[i] <= '9' {
			i++
		}
	}

	isDouble := false
	if i < n && text[i] == '.' {
		isDouble = true
		i++
		start := i
		for i < n && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		if i == start {
			return tokError, lexErrMissingIntegerBeforeDecimal
		}
	}

	if i < n && (text[i] == 'e' || text[i] == 'E') {
		isDouble = true
		i++
		if i < n && (text[i] == '+' || text[i] == '-') {
			i++
		}
		start := i
		for i < n && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		if i == start {
			return tokError, lexErrMissingIntegerBeforeExponent
		}
	}

	if i != n {
		return tokError, lexErrMissingExponentBeforePlus
	}
	if isDouble {
		return tokDouble, lexErrNone
	}
	return tokInteger, lexErrNone
}

// lexComment recognizes a '/* */' block comment scanning backward from just
// after the already-consumed '/' of its closing "*/", whose '*' it checks
// first. Line comments are not detected
// in reverse: a trailing '\n' is indistinguishable from ordinary whitespace
// without unbounded backward lookahead, so a document relying on a '//'
// comment to terminate a line is only safe to parse forward.
func (l *ReverseLexer) lexComment(input []byte, offset *int) Token {
	switch l.sub {
	case 1:
		goto readNext
	case 2:
		goto afterStar
	case 3:
		goto checkStar
	}

checkStar:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 3
			return tokEOF
		}
		if c != '*' {
			l.unread(offset)
			l.lastErr = lexErrInvalidChar
			return tokError
		}
	}

readNext:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 1
			return tokEOF
		}
		if c != '*' {
			goto readNext
		}
	}

afterStar:
	{
		c, ok := l.nextByte(input, offset)
		if !ok {
			l.sub = 2
			return tokEOF
		}
		if c == '/' {
			return tokComment
		}
		l.unread(offset)
	}
	goto readNext
}
