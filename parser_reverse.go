package jsonstream

// parseReverse drives the reverse pushdown automaton. It shares its value,
// number and string dispatch helpers with parseForward (Handle.dispatch*
// methods do not care which direction produced the token); only the
// admitted-token matrix itself differs, since scanning right-to-left
// reorders an object's members to value-then-key.
func (h *Handle) parseReverse(input []byte, finishing bool) (Status, error) {
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

		status, err := h.stepReverse(tok, payload)
		if status != StatusOK {
			return status, err
		}
	}
}

// stepReverse applies a single token to the reverse admitted-token matrix.
//
// Objects are reused here with the same five parseState codes the forward
// matrix uses (mapStart/mapSep/mapGotVal/mapNeedVal/mapNeedKey) but a
// different transition table, since in reverse a member's value token comes
// before its colon and key:
//
//	mapStart   + value          -> mapSep     (open, awaiting colon)
//	mapStart   + '{'            -> close (empty map)
//	mapSep     + ':'            -> mapGotVal  (awaiting key)
//	mapGotVal  + key string     -> mapNeedVal (member complete)
//	mapNeedVal + ','            -> mapNeedKey (awaiting next member's value)
//	mapNeedVal + '{'            -> close (non-empty map)
//	mapNeedKey + value          -> mapSep     (loop)
//
// Arrays need no reinterpretation: opening on ']' and closing on '[' instead
// of the reverse, the rest of the shape (value, comma, value, ...) is
// unchanged from forward.
func (h *Handle) stepReverse(tok Token, payload []byte) (Status, error) {
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
	case isValueAdmittingReverse(state) && tok.isValueToken():
		ok, err := h.dispatchValueCallback(tok, payload)
		if err != nil {
			return h.setParseError(err.Error())
		}
		if !ok {
			return h.cancel()
		}
		h.afterValueReverse(state)
		return StatusOK, nil

	case isValueAdmittingReverse(state) && tok == tokRightBracket:
		return h.openContainer(h.cb.StartArray, stateArrayStart)

	case isValueAdmittingReverse(state) && tok == tokRightBrace:
		return h.openContainer(h.cb.StartMap, stateMapStart)

	case state == stateArrayStart && tok == tokLeftBracket:
		return h.closeArrayReverse()

	case state == stateArrayGotVal && tok == tokComma:
		h.stack.set(stateArrayNeedVal)
		return StatusOK, nil

	case state == stateArrayGotVal && tok == tokLeftBracket:
		return h.closeArrayReverse()

	case state == stateMapStart && tok == tokLeftBrace:
		return h.closeMapReverse()

	case state == stateMapSep && tok == tokColon:
		h.stack.set(stateMapGotVal)
		return StatusOK, nil

	case state == stateMapSep:
		return h.setParseError(errTextExpectColon)

	case state == stateMapGotVal && tok.isScalarString():
		ok, err := h.dispatchMapKey(tok, payload)
		if err != nil {
			return h.setParseError(err.Error())
		}
		if !ok {
			return h.cancel()
		}
		h.stack.set(stateMapNeedVal)
		return StatusOK, nil

	case state == stateMapGotVal:
		return h.setParseError(errTextInvalidObjectKey)

	case state == stateMapNeedVal && tok == tokComma:
		h.stack.set(stateMapNeedKey)
		return StatusOK, nil

	case state == stateMapNeedVal && tok == tokLeftBrace:
		return h.closeMapReverse()
	}

	return h.unallowedTokenReverse(state)
}

func isValueAdmittingReverse(s parseState) bool {
	switch s {
	case stateStart, stateGotValue, stateArrayStart, stateArrayNeedVal, stateMapStart, stateMapNeedKey:
		return true
	}
	return false
}

// afterValueReverse applies the "just consumed a complete scalar value"
// transition for the state that admitted it. Top-level and array cases are
// unchanged from forward; stateMapStart/stateMapNeedKey (which admit a
// value, not a key, in reverse) both advance to stateMapSep to await the
// colon.
func (h *Handle) afterValueReverse(state parseState) {
	switch state {
	case stateStart, stateGotValue:
		h.stack.set(stateParseComplete)
	case stateMapStart, stateMapNeedKey:
		h.stack.set(stateMapSep)
	case stateArrayNeedVal, stateArrayStart:
		h.stack.set(stateArrayGotVal)
	}
}

func (h *Handle) closeArrayReverse() (Status, error) {
	ok := true
	if h.cb.EndArray != nil {
		ok = h.cb.EndArray()
	}
	h.stack.pop()
	if !ok {
		return h.cancel()
	}
	h.afterValueReverse(h.stack.current())
	return StatusOK, nil
}

func (h *Handle) closeMapReverse() (Status, error) {
	ok := true
	if h.cb.EndMap != nil {
		ok = h.cb.EndMap()
	}
	h.stack.pop()
	if !ok {
		return h.cancel()
	}
	h.afterValueReverse(h.stack.current())
	return StatusOK, nil
}

// unallowedTokenReverse reports a parse error for a token not admitted by
// state. The continuation errors use the constants naming the right
// delimiters (']' / '}'), since those are what reverse scanning has already
// consumed to open the enclosing container; the forward matrix claims the
// left-delimiter constants for its own continuation errors, so every one of
// the four defined constants ends up used exactly once.
func (h *Handle) unallowedTokenReverse(state parseState) (Status, error) {
	switch state {
	case stateArrayGotVal:
		return h.setParseError(errTextExpectCommaOrRBrack)
	case stateMapNeedVal:
		return h.setParseError(errTextExpectCommaOrRBrace)
	}
	return h.setParseError(errTextUnallowedToken)
}
