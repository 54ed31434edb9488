package jsonstream

import (
	"errors"
	"math"
	"strconv"
)

// parseForward drives the forward pushdown automaton over one chunk (or, when
// finishing is true, over the flush byte Finish supplies at end of stream,
// after which the lexer's tokEOF means the stream has ended). It loops
// fetching tokens from the Handle's lexer and applying the admitted-token
// matrix until the lexer needs more input, the stream ends, or the parse
// stops on cancellation or error.
func (h *Handle) parseForward(input []byte, finishing bool) (Status, error) {
	base := h.bytesConsumed
	offset := 0

	for {
		switch h.stack.current() {
		case stateParseError:
			return StatusError, newParseError(h.parseErrText)
		case stateLexicalError:
			return StatusError, h.lexErr
		}

		tok, payload := h.lex.Lex(input, &offset)
		h.bytesConsumed = base + int64(offset)
		h.logDebug("token %s in state %s", tok, h.stack.current())

		if tok == tokError {
			return h.setLexicalError(h.lex.Error())
		}
		if tok == tokEOF {
			if finishing {
				return h.finishDisposition()
			}
			return StatusOK, nil
		}

		status, err := h.step(tok, payload)
		if status != StatusOK {
			return status, err
		}
	}
}

// step applies a single token to the forward admitted-token matrix: it
// either dispatches a callback and advances the state stack (StatusOK), or
// stops the parse (StatusClientCanceled, StatusError).
func (h *Handle) step(tok Token, payload []byte) (Status, error) {
	state := h.stack.current()

	if state == stateParseComplete {
		switch {
		case h.allowMultipleValues:
			h.stack.set(stateGotValue)
			state = stateGotValue
		case h.allowTrailingGarbage:
			return StatusOK, nil
		default:
			return h.setParseError(errTextTrailingGarbage)
		}
	}

	switch {
	case isValueAdmitting(state) && tok.isValueToken():
		ok, err := h.dispatchValueCallback(tok, payload)
		if err != nil {
			return h.setParseError(err.Error())
		}
		if !ok {
			return h.cancel()
		}
		h.afterValue(state)
		return StatusOK, nil

	case isValueAdmitting(state) && tok == tokLeftBracket:
		return h.openContainer(h.cb.StartArray, stateArrayStart)

	case isValueAdmitting(state) && tok == tokLeftBrace:
		return h.openContainer(h.cb.StartMap, stateMapStart)

	case state == stateArrayStart && tok == tokRightBracket:
		return h.closeArray()

	case state == stateArrayGotVal && tok == tokComma:
		h.stack.set(stateArrayNeedVal)
		return StatusOK, nil

	case state == stateArrayGotVal && tok == tokRightBracket:
		return h.closeArray()

	case state == stateMapStart && tok == tokRightBrace:
		return h.closeMap()

	case (state == stateMapStart || state == stateMapNeedKey) && tok.isScalarString():
		ok, err := h.dispatchMapKey(tok, payload)
		if err != nil {
			return h.setParseError(err.Error())
		}
		if !ok {
			return h.cancel()
		}
		h.stack.set(stateMapSep)
		return StatusOK, nil

	case state == stateMapStart || state == stateMapNeedKey:
		return h.setParseError(errTextInvalidObjectKey)

	case state == stateMapSep && tok == tokColon:
		h.stack.set(stateMapNeedVal)
		return StatusOK, nil

	case state == stateMapSep:
		return h.setParseError(errTextExpectColon)

	case state == stateMapGotVal && tok == tokComma:
		h.stack.set(stateMapNeedKey)
		return StatusOK, nil

	case state == stateMapGotVal && tok == tokRightBrace:
		return h.closeMap()
	}

	return h.unallowedToken(state)
}

func isValueAdmitting(s parseState) bool {
	switch s {
	case stateStart, stateGotValue, stateMapNeedVal, stateArrayNeedVal, stateArrayStart:
		return true
	}
	return false
}

// afterValue applies the "just consumed a complete scalar value" transition
// for the state that admitted it (or, when called after a container closes,
// for the state enclosing that container).
func (h *Handle) afterValue(state parseState) {
	switch state {
	case stateStart, stateGotValue:
		h.stack.set(stateParseComplete)
	case stateMapNeedVal:
		h.stack.set(stateMapGotVal)
	case stateArrayNeedVal, stateArrayStart:
		h.stack.set(stateArrayGotVal)
	}
}

func (h *Handle) openContainer(start func() bool, pushState parseState) (Status, error) {
	ok := true
	if start != nil {
		ok = start()
	}
	if !ok {
		return h.cancel()
	}
	h.stack.push(pushState)
	return StatusOK, nil
}

func (h *Handle) closeArray() (Status, error) {
	ok := true
	if h.cb.EndArray != nil {
		ok = h.cb.EndArray()
	}
	h.stack.pop()
	if !ok {
		return h.cancel()
	}
	h.afterValue(h.stack.current())
	return StatusOK, nil
}

func (h *Handle) closeMap() (Status, error) {
	ok := true
	if h.cb.EndMap != nil {
		ok = h.cb.EndMap()
	}
	h.stack.pop()
	if !ok {
		return h.cancel()
	}
	h.afterValue(h.stack.current())
	return StatusOK, nil
}

func (h *Handle) cancel() (Status, error) {
	if !h.resumeAfterCancel {
		h.stack.set(stateParseError)
		h.parseErrText = errTextClientCancelled
	}
	return StatusClientCanceled, nil
}

func (h *Handle) unallowedToken(state parseState) (Status, error) {
	switch state {
	case stateArrayGotVal:
		return h.setParseError(errTextExpectCommaOrBrack)
	case stateMapGotVal, stateMapSep:
		return h.setParseError(errTextExpectCommaOrBrace)
	}
	return h.setParseError(errTextUnallowedToken)
}

// dispatchValueCallback decodes (if needed) and forwards a scalar value
// token to its callback. The returned bool is the callback's continuation
// signal; a non-nil error means the value itself was malformed (numeric
// overflow), not that the callback requested cancellation.
func (h *Handle) dispatchValueCallback(tok Token, payload []byte) (bool, error) {
	switch tok {
	case tokNull:
		if h.cb.Null == nil {
			return true, nil
		}
		return h.cb.Null(), nil
	case tokBoolTrue:
		if h.cb.Boolean == nil {
			return true, nil
		}
		return h.cb.Boolean(true), nil
	case tokBoolFalse:
		if h.cb.Boolean == nil {
			return true, nil
		}
		return h.cb.Boolean(false), nil
	case tokInteger, tokDouble:
		return h.dispatchNumber(tok, payload)
	case tokString, tokStringWithEscapes:
		text := h.decodeValueString(tok, payload)
		if h.cb.String == nil {
			return true, nil
		}
		return h.cb.String(text), nil
	}
	return true, nil
}

func (h *Handle) dispatchMapKey(tok Token, payload []byte) (bool, error) {
	text := h.decodeValueString(tok, payload)
	if h.cb.MapKey == nil {
		return true, nil
	}
	return h.cb.MapKey(text), nil
}

// decodeValueString returns payload unchanged for a plain string (the fast
// path: no escapes means no decoding), or expands it into the Handle's
// scratch decode buffer when escapes are present.
func (h *Handle) decodeValueString(tok Token, payload []byte) []byte {
	if tok == tokString {
		return payload
	}
	h.decodeBuf = h.decodeBuf[:0]
	h.decodeBuf = decodeString(h.decodeBuf, payload)
	return h.decodeBuf
}

func (h *Handle) dispatchNumber(tok Token, payload []byte) (bool, error) {
	if h.cb.Number != nil {
		return h.cb.Number(payload), nil
	}
	if tok == tokInteger {
		v, ok := parseSaturatingInt(payload)
		if !ok {
			return false, errors.New(errTextIntegerOverflow)
		}
		if h.cb.Integer == nil {
			return true, nil
		}
		return h.cb.Integer(v), nil
	}

	v, err := strconv.ParseFloat(string(payload), 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		return false, errors.New(errTextDoubleOverflow)
	}
	if h.cb.Double == nil {
		return true, nil
	}
	return h.cb.Double(v), nil
}

// parseSaturatingInt parses a JSON integer token's raw bytes, reporting
// overflow by checking before each multiply-and-add rather than after.
func parseSaturatingInt(payload []byte) (int64, bool) {
	i := 0
	neg := false
	if i < len(payload) && payload[i] == '-' {
		neg = true
		i++
	}

	var v int64
	for ; i < len(payload); i++ {
		d := int64(payload[i] - '0')
		if v > (math.MaxInt64-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	if neg {
		v = -v
	}
	return v, true
}

func (h *Handle) finishDisposition() (Status, error) {
	switch h.stack.current() {
	case stateParseComplete, stateGotValue:
		return StatusOK, nil
	case stateParseError:
		return StatusError, newParseError(h.parseErrText)
	case stateLexicalError:
		return StatusError, h.lexErr
	default:
		if h.allowPartialValues {
			return StatusOK, nil
		}
		return h.setParseError(errTextPrematureEOF)
	}
}
