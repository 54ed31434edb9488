package jsonstream

import "unicode/utf8"

// decodeString expands a string_with_escapes payload (as returned by the
// lexer, delimiters already stripped) into its UTF-8 byte representation,
// appending the result to dst and returning the extended slice. Runs of
// unescaped bytes are copied verbatim; escapes are expanded one at a time.
func decodeString(dst []byte, src []byte) []byte {
	i := 0
	for i < len(src) {
		start := i
		for i < len(src) && src[i] != '\\' {
			i++
		}
		dst = append(dst, src[start:i]...)
		if i >= len(src) {
			break
		}

		// src[i] == '\\'
		i++
		if i >= len(src) {
			break
		}
		c := src[i]
		i++

		switch c {
		case '"':
			dst = append(dst, '"')
		case '\\':
			dst = append(dst, '\\')
		case '/':
			dst = append(dst, '/')
		case 'b':
			dst = append(dst, 0x08)
		case 'f':
			dst = append(dst, 0x0C)
		case 'n':
			dst = append(dst, 0x0A)
		case 'r':
			dst = append(dst, 0x0D)
		case 't':
			dst = append(dst, 0x09)
		case 'u':
			var r rune
			r, i = decodeHex4(src, i)

			if isHighSurrogate(r) && i+1 < len(src) && src[i] == '\\' && src[i+1] == 'u' {
				lowRune, next := decodeHex4(src, i+2)
				if isLowSurrogate(lowRune) {
					dst = utf8.AppendRune(dst, combineSurrogates(r, lowRune))
					i = next
					continue
				}
			}

			// Lone or mismatched surrogate half: encode as-is, even though
			// that yields an ill-formed UTF-8 byte sequence. Matches the
			// original C lexer's lenient behavior.
			dst = appendRuneLenient(dst, r)
		}
	}
	return dst
}

// decodeHex4 reads exactly four hex digits from src starting at i and
// returns the 16-bit scalar they encode, along with the index past them.
// The caller (the lexer) has already validated every digit is VALID_HEX.
func decodeHex4(src []byte, i int) (rune, int) {
	var v rune
	for n := 0; n < 4 && i < len(src); n++ {
		v = v<<4 | rune(hexVal(src[i]))
		i++
	}
	return v, i
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func isHighSurrogate(r rune) bool {
	return r >= 0xD800 && r <= 0xDBFF
}

func isLowSurrogate(r rune) bool {
	return r >= 0xDC00 && r <= 0xDFFF
}

func combineSurrogates(high, low rune) rune {
	return 0x10000 + (high-0xD800)<<10 + (low - 0xDC00)
}

// appendRuneLenient encodes r as UTF-8 even when r is a lone surrogate half,
// which utf8.AppendRune alone would replace with U+FFFD. This mirrors the
// source's pass-through behavior for malformed \u escapes.
func appendRuneLenient(dst []byte, r rune) []byte {
	if r < 0 || r > 0x10FFFF {
		return utf8.AppendRune(dst, utf8.RuneError)
	}
	if !utf8.ValidRune(r) {
		// Surrogate halves (0xD800-0xDFFF) fail ValidRune; encode the
		// three-byte form by hand rather than substitute the replacement
		// character, since the byte sequence itself (however ill-formed)
		// is what the original lexer would have produced.
		return append(dst,
			0xE0|byte(r>>12),
			0x80|byte(r>>6)&0x3F,
			0x80|byte(r)&0x3F,
		)
	}
	return utf8.AppendRune(dst, r)
}
