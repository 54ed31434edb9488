package jsonstream

import (
	"fmt"
	"log"
	"strings"
)

// Status is the outcome of a Parse or Finish call.
type Status byte

const (
	StatusOK Status = iota
	StatusClientCanceled
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusClientCanceled:
		return "client canceled"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// tokenSource is satisfied by both Lexer and ReverseLexer, letting Handle's
// dispatch plumbing (error capture, status bookkeeping) stay unduplicated
// while the forward/reverse admitted-token matrices differ in parser.go and
// parser_reverse.go.
type tokenSource interface {
	Lex(input []byte, offset *int) (Token, []byte)
	Error() LexError
	Reset()
}

// Handle is the top-level parser object: it owns a lexer (forward or
// reverse), the pushdown state stack, callback table, scratch decode
// buffer, option flags and the running byte-consumption counter. A Handle
// is created once and fed successive chunks via Parse; call Finish once the
// logical stream ends.
type Handle struct {
	lex     tokenSource
	reverse bool
	stack   *stateStack
	cb      *Callbacks

	decodeBuf []byte

	allowComments        bool
	dontValidateStrings  bool
	allowTrailingGarbage bool
	allowMultipleValues  bool
	allowPartialValues   bool
	resumeAfterCancel    bool
	debug                bool

	bytesConsumed int64
	startOffset   int64
	endOffset     int64

	lastInput []byte

	parseErrText string
	lexErr       *lexicalError
}

// NewHandle creates a forward Handle dispatching to cb.
func NewHandle(cb *Callbacks) *Handle {
	h := &Handle{cb: cb, stack: newStateStack()}
	h.lex = NewLexer(h.allowComments, !h.dontValidateStrings)
	return h
}

// NewReverseHandle creates a Handle that parses its input right-to-left,
// yielding map entries value-then-key at the callback level.
func NewReverseHandle(cb *Callbacks) *Handle {
	h := &Handle{cb: cb, stack: newStateStack(), reverse: true}
	h.lex = NewReverseLexer(h.allowComments, !h.dontValidateStrings)
	return h
}

// SetAllowComments permits `//` and `/* */` comments between tokens.
func (h *Handle) SetAllowComments(v bool) {
	h.allowComments = v
	h.rebuildLexer()
}

// SetDontValidateStrings disables UTF-8 validation of string bodies.
func (h *Handle) SetDontValidateStrings(v bool) {
	h.dontValidateStrings = v
	h.rebuildLexer()
}

// SetAllowTrailingGarbage suppresses the "trailing garbage" error after a
// complete top-level value.
func (h *Handle) SetAllowTrailingGarbage(v bool) {
	h.allowTrailingGarbage = v
}

// SetAllowMultipleValues permits consecutive top-level values in one stream.
func (h *Handle) SetAllowMultipleValues(v bool) {
	h.allowMultipleValues = v
}

// SetAllowPartialValues treats an unexpected EOF mid-value as success rather
// than "premature EOF".
func (h *Handle) SetAllowPartialValues(v bool) {
	h.allowPartialValues = v
}

// SetResumeAfterCancel allows a subsequent Parse call to continue after a
// callback returned cancel, instead of sticking in error.
func (h *Handle) SetResumeAfterCancel(v bool) {
	h.resumeAfterCancel = v
}

// SetDebug turns on diagnostic logging of state transitions via the
// standard log package, off by default.
func (h *Handle) SetDebug(v bool) {
	h.debug = v
}

func (h *Handle) rebuildLexer() {
	if h.reverse {
		h.lex = NewReverseLexer(h.allowComments, !h.dontValidateStrings)
	} else {
		h.lex = NewLexer(h.allowComments, !h.dontValidateStrings)
	}
}

// Reset returns the Handle to its just-constructed state, ready to parse a
// new logical stream with the same callbacks and flags.
func (h *Handle) Reset() {
	h.stack.reset()
	h.lex.Reset()
	h.decodeBuf = h.decodeBuf[:0]
	h.bytesConsumed = 0
	h.startOffset = 0
	h.endOffset = 0
	h.lastInput = nil
	h.parseErrText = ""
	h.lexErr = nil
}

// BytesConsumed returns the absolute offset of the last byte this Handle
// has fully consumed from the logical stream.
func (h *Handle) BytesConsumed() int64 {
	return h.bytesConsumed
}

func (h *Handle) logDebug(format string, args ...interface{}) {
	if !h.debug {
		return
	}
	log.Printf("debug: jsonstream: "+format, args...)
}

// Parse feeds one chunk of the logical stream to the Handle. Call it
// repeatedly as chunks arrive; call Finish once no more input remains.
func (h *Handle) Parse(chunk []byte) (Status, error) {
	h.lastInput = chunk
	if h.reverse {
		return h.parseReverse(chunk, false)
	}
	return h.parseForward(chunk, false)
}

// Finish signals that the logical stream has ended. It must be called
// exactly once, after the final Parse call (or with no prior Parse call at
// all, for an empty stream). A single space is run through the parse loop
// so that a number or keyword still waiting for a terminating byte is
// completed and dispatched; that space is not counted in BytesConsumed.
func (h *Handle) Finish() (Status, error) {
	base := h.bytesConsumed
	flush := []byte{' '}
	var status Status
	var err error
	if h.reverse {
		status, err = h.parseReverse(flush, true)
	} else {
		status, err = h.parseForward(flush, true)
	}
	if h.bytesConsumed > base {
		h.bytesConsumed = base
	}
	return status, err
}

func (h *Handle) setParseError(text string) (Status, error) {
	h.parseErrText = text
	h.stack.set(stateParseError)
	return StatusError, newParseError(text)
}

func (h *Handle) setLexicalError(kind LexError) (Status, error) {
	h.lexErr = newLexicalError(kind, h.bytesConsumed)
	h.stack.set(stateLexicalError)
	return StatusError, h.lexErr
}

// currentError reconstructs the error appropriate to the Handle's current
// terminal state, for callers that stash the (Status, error) from Parse but
// then call ErrorContext later without holding onto it directly.
func (h *Handle) currentError() error {
	switch h.stack.current() {
	case stateLexicalError:
		return h.lexErr
	case stateParseError:
		return newParseError(h.parseErrText)
	}
	return nil
}

// ErrorContext renders a human-readable description of the Handle's current
// error. When verbose is true and the offending input chunk is still
// available, it additionally renders up to 30 bytes of context before and
// after the offending byte with an arrow pointing at it, mirroring the
// original C lexer's (disabled-by-default) verbose error renderer.
func (h *Handle) ErrorContext(verbose bool) string {
	err := h.currentError()
	if err == nil {
		return ""
	}
	if !verbose {
		return err.Error()
	}

	var offset int64
	switch h.stack.current() {
	case stateLexicalError:
		offset = h.lexErr.offset
	default:
		offset = h.bytesConsumed
	}

	ctx := renderErrorContext(h.lastInput, offset)
	if ctx == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s\n%s", err.Error(), ctx)
}

const errorContextWindow = 30

// renderErrorContext renders up to errorContextWindow bytes of input before
// and after localOffset (an offset relative to the start of input) as one
// line, with an arrow pointing at the offending byte on the line below.
// Embedded newlines are flattened to spaces so the window stays single-line.
func renderErrorContext(input []byte, localOffset int64) string {
	if input == nil || localOffset < 0 || localOffset > int64(len(input)) {
		return ""
	}
	off := int(localOffset)

	start := off - errorContextWindow
	if start < 0 {
		start = 0
	}
	end := off + errorContextWindow
	if end > len(input) {
		end = len(input)
	}

	window := make([]byte, end-start)
	copy(window, input[start:end])
	for i, c := range window {
		if c == '\n' || c == '\r' {
			window[i] = ' '
		}
	}

	var b strings.Builder
	b.Write(window)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", off-start))
	b.WriteByte('^')
	return b.String()
}
