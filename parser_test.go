package jsonstream

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// event is a single structural callback recorded by value, suitable for
// diffing with cmp against an expected trace.
type event struct {
	Kind string
	Text string
}

// tracingCallbacks wires every Callbacks hook to append an event to trace.
func tracingCallbacks(trace *[]event) *Callbacks {
	return &Callbacks{
		Null:       func() bool { *trace = append(*trace, event{Kind: "null"}); return true },
		Boolean:    func(v bool) bool { *trace = append(*trace, event{Kind: "bool", Text: boolText(v)}); return true },
		Integer:    func(v int64) bool { *trace = append(*trace, event{Kind: "int", Text: strconv.FormatInt(v, 10)}); return true },
		Double:     func(v float64) bool { *trace = append(*trace, event{Kind: "double", Text: strconv.FormatFloat(v, 'g', -1, 64)}); return true },
		String:     func(text []byte) bool { *trace = append(*trace, event{Kind: "string", Text: string(text)}); return true },
		StartMap:   func() bool { *trace = append(*trace, event{Kind: "start_map"}); return true },
		MapKey:     func(text []byte) bool { *trace = append(*trace, event{Kind: "map_key", Text: string(text)}); return true },
		EndMap:     func() bool { *trace = append(*trace, event{Kind: "end_map"}); return true },
		StartArray: func() bool { *trace = append(*trace, event{Kind: "start_array"}); return true },
		EndArray:   func() bool { *trace = append(*trace, event{Kind: "end_array"}); return true },
	}
}

func boolText(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func TestParseArrayOfMixedValues(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	status, err := h.Parse([]byte(`[1,"ab",null]`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	status, err = h.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	want := []event{
		{Kind: "start_array"},
		{Kind: "int", Text: "1"},
		{Kind: "string", Text: "ab"},
		{Kind: "null"},
		{Kind: "end_array"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChunkedAcrossBoundaries(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	full := []byte(`{"k":true}`)
	for i := 0; i < len(full); i++ {
		status, err := h.Parse(full[i : i+1])
		require.NoError(t, err)
		require.NotEqual(t, StatusError, status)
	}
	status, err := h.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	want := []event{
		{Kind: "start_map"},
		{Kind: "map_key", Text: "k"},
		{Kind: "bool", Text: "true"},
		{Kind: "end_map"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnicodeEscapedString(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	_, err := h.Parse([]byte(`"\u00e9"`))
	require.NoError(t, err)
	_, err = h.Finish()
	require.NoError(t, err)

	require.Len(t, trace, 1)
	assert.Equal(t, "string", trace[0].Kind)
	assert.Equal(t, "é", trace[0].Text)
}

func TestParseLeadingZerosReportsBytesConsumed(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	status, err := h.Parse([]byte("01"))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)
	assert.Equal(t, int64(1), h.BytesConsumed())
}

func TestParseMultipleValuesRequiresOptIn(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	status, err := h.Parse([]byte(`{"a":1}{"b":2}`))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)

	trace = nil
	h2 := NewHandle(tracingCallbacks(&trace))
	h2.SetAllowMultipleValues(true)
	status, err = h2.Parse([]byte(`{"a":1}{"b":2}`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	status, err = h2.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	want := []event{
		{Kind: "start_map"}, {Kind: "map_key", Text: "a"}, {Kind: "int", Text: "1"}, {Kind: "end_map"},
		{Kind: "start_map"}, {Kind: "map_key", Text: "b"}, {Kind: "int", Text: "2"}, {Kind: "end_map"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCommentsRequireOptIn(t *testing.T) {
	h := NewHandle(tracingCallbacks(&[]event{}))
	status, err := h.Parse([]byte("/*x*/ 42"))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)

	// The trailing space lets the number complete within this Parse call;
	// a bare trailing "42" with no delimiter byte would leave the lexer
	// waiting for one more byte to confirm the number's extent, and the
	// value would only be delivered by Finish.
	var trace []event
	h2 := NewHandle(tracingCallbacks(&trace))
	h2.SetAllowComments(true)
	status, err = h2.Parse([]byte("/*x*/ 42 "))
	require.NoError(t, err)
	status, err = h2.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, []event{{Kind: "int", Text: "42"}}, trace)
}

func TestParseSurrogatePairDecoding(t *testing.T) {
	var trace []event
	h := NewHandle(tracingCallbacks(&trace))

	_, err := h.Parse([]byte(`"\uD834\uDD1E"`))
	require.NoError(t, err)
	_, err = h.Finish()
	require.NoError(t, err)

	require.Len(t, trace, 1)
	assert.Equal(t, "𝄞", trace[0].Text)
}

func TestParseCancellationStopsParse(t *testing.T) {
	var seen []string
	cb := &Callbacks{
		Integer: func(v int64) bool {
			seen = append(seen, "int")
			return false
		},
	}
	h := NewHandle(cb)
	status, err := h.Parse([]byte(`[1,2,3]`))
	assert.Equal(t, StatusClientCanceled, status)
	assert.NoError(t, err)
	assert.Equal(t, []string{"int"}, seen)
}

func TestParseIntegerOverflowFallsBackToError(t *testing.T) {
	h := NewHandle(&Callbacks{})
	// A trailing space lets the digit run complete within this call instead
	// of suspending at true end-of-chunk waiting for a terminating byte.
	status, err := h.Parse([]byte("99999999999999999999999999 "))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)
}

func TestParsePrematureEOF(t *testing.T) {
	h := NewHandle(&Callbacks{})
	status, err := h.Parse([]byte(`{"a":`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	status, err = h.Finish()
	assert.Equal(t, StatusError, status)
	require.Error(t, err)
}

func TestParseAllowPartialValuesSuppressesPrematureEOF(t *testing.T) {
	h := NewHandle(&Callbacks{})
	h.SetAllowPartialValues(true)
	status, err := h.Parse([]byte(`{"a":`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	status, err = h.Finish()
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}
