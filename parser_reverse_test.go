package jsonstream

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseParseObjectValueBeforeKey(t *testing.T) {
	var trace []event
	h := NewReverseHandle(tracingCallbacks(&trace))

	status, err := h.Parse([]byte(`{"k":true}`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	status, err = h.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	want := []event{
		{Kind: "start_map"},
		{Kind: "bool", Text: "true"},
		{Kind: "map_key", Text: "k"},
		{Kind: "end_map"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestReverseParseArraySymmetricWithForward(t *testing.T) {
	var trace []event
	h := NewReverseHandle(tracingCallbacks(&trace))

	status, err := h.Parse([]byte(`[1,"ab",null]`))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	status, err = h.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	// Members are reported in scan order, so the mirror image of the
	// forward trace: last member first.
	want := []event{
		{Kind: "start_array"},
		{Kind: "null"},
		{Kind: "string", Text: "ab"},
		{Kind: "int", Text: "1"},
		{Kind: "end_array"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestReverseParseNestedObjectInArray(t *testing.T) {
	var trace []event
	h := NewReverseHandle(tracingCallbacks(&trace))

	_, err := h.Parse([]byte(`[{"a":1,"b":2}]`))
	require.NoError(t, err)
	_, err = h.Finish()
	require.NoError(t, err)

	want := []event{
		{Kind: "start_array"},
		{Kind: "start_map"},
		{Kind: "int", Text: "2"},
		{Kind: "map_key", Text: "b"},
		{Kind: "int", Text: "1"},
		{Kind: "map_key", Text: "a"},
		{Kind: "end_map"},
		{Kind: "end_array"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestReverseParseEmptyContainers(t *testing.T) {
	var trace []event
	h := NewReverseHandle(tracingCallbacks(&trace))

	_, err := h.Parse([]byte(`{}`))
	require.NoError(t, err)
	_, err = h.Finish()
	require.NoError(t, err)

	assert.Equal(t, []event{{Kind: "start_map"}, {Kind: "end_map"}}, trace)
}

func TestReverseParseMissingColonIsError(t *testing.T) {
	h := NewReverseHandle(&Callbacks{})
	status, err := h.Parse([]byte(`{"k" true}`))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)
}

func TestReverseParseLeadingZerosSurfacesAsLexicalError(t *testing.T) {
	h := NewReverseHandle(&Callbacks{})
	status, err := h.Parse([]byte(" 01"))
	assert.Equal(t, StatusError, status)
	require.Error(t, err)
}

func TestReverseParseChunkedAcrossBoundaries(t *testing.T) {
	var trace []event
	h := NewReverseHandle(tracingCallbacks(&trace))

	full := []byte(`{"k":true}`)
	// Reverse chunks must arrive in reverse document order.
	for i := len(full); i > 0; i-- {
		status, err := h.Parse(full[i-1 : i])
		require.NoError(t, err)
		require.NotEqual(t, StatusError, status)
	}
	status, err := h.Finish()
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	want := []event{
		{Kind: "start_map"},
		{Kind: "bool", Text: "true"},
		{Kind: "map_key", Text: "k"},
		{Kind: "end_map"},
	}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}
