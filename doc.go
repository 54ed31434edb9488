// Package jsonstream implements a resumable, push-driven JSON lexer and
// pushdown-automaton parser. Input arrives in arbitrarily sized chunks via
// repeated calls to Handle.Parse; the lexer suspends mid-token at a chunk
// boundary and resumes exactly where it left off on the next call, so a
// caller never needs to buffer a whole document in memory.
//
// A forward Handle (NewHandle) reads left-to-right in the usual way. A
// reverse Handle (NewReverseHandle) reads a document right-to-left, one
// chunk at a time, with chunks supplied in reverse document order; object
// members are reported value-then-key rather than key-then-value, since
// that is the order a backward scan encounters them in.
//
// Parse results are delivered entirely through the Callbacks table; the
// package does not build a value tree itself.
package jsonstream
