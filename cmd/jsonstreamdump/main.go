// Command jsonstreamdump reads a JSON document and prints the sequence of
// callback events jsonstream produces for it, feeding the input through the
// library in fixed-size chunks to exercise its chunk-boundary resumption.
//
// Usage: jsonstreamdump [--chunk-size N] [--reverse] [--allow-comments]
//
//	[--multiple-values] [--repr] [FILE]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/repr"
	"github.com/pborman/getopt"

	"github.com/kgersen/jsonstream"
)

type event struct {
	Kind string
	Text string
}

func main() {
	chunkSize := 4096
	var reverse, allowComments, multipleValues, useRepr bool

	getopt.FlagLong(&chunkSize, "chunk-size", 0, "bytes fed to Parse per call")
	getopt.FlagLong(&reverse, "reverse", 0, "parse right-to-left via NewReverseHandle")
	getopt.FlagLong(&allowComments, "allow-comments", 0, "allow // and /* */ comments")
	getopt.FlagLong(&multipleValues, "multiple-values", 0, "allow consecutive top-level values")
	getopt.FlagLong(&useRepr, "repr", 0, "dump the captured event trace with alecthomas/repr")
	getopt.SetParameters("[FILE]")
	getopt.Parse()

	var in io.Reader = os.Stdin
	if args := getopt.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var events []event
	record := func(kind string, text ...string) bool {
		e := event{Kind: kind}
		if len(text) > 0 {
			e.Text = text[0]
		}
		events = append(events, e)
		return true
	}

	cb := &jsonstream.Callbacks{
		Null:       func() bool { return record("null") },
		Boolean:    func(v bool) bool { return record("bool", fmt.Sprint(v)) },
		Integer:    func(v int64) bool { return record("integer", fmt.Sprint(v)) },
		Double:     func(v float64) bool { return record("double", fmt.Sprint(v)) },
		String:     func(text []byte) bool { return record("string", string(text)) },
		StartMap:   func() bool { return record("start_map") },
		MapKey:     func(text []byte) bool { return record("map_key", string(text)) },
		EndMap:     func() bool { return record("end_map") },
		StartArray: func() bool { return record("start_array") },
		EndArray:   func() bool { return record("end_array") },
	}

	var h *jsonstream.Handle
	if reverse {
		h = jsonstream.NewReverseHandle(cb)
	} else {
		h = jsonstream.NewHandle(cb)
	}
	h.SetAllowComments(allowComments)
	h.SetAllowMultipleValues(multipleValues)

	chunks := splitChunks(data, chunkSize)
	if reverse {
		chunks = reverseChunks(chunks)
	}

	var status jsonstream.Status
	for _, c := range chunks {
		status, err = h.Parse(c)
		if status == jsonstream.StatusError {
			break
		}
	}
	if status != jsonstream.StatusError {
		status, err = h.Finish()
	}

	if useRepr {
		repr.Println(events)
	} else {
		for _, e := range events {
			if e.Text == "" {
				fmt.Println(e.Kind)
			} else {
				fmt.Printf("%s: %s\n", e.Kind, e.Text)
			}
		}
	}

	if status == jsonstream.StatusError {
		fmt.Fprintln(os.Stderr, h.ErrorContext(true))
		os.Exit(1)
	}
}

func splitChunks(data []byte, size int) [][]byte {
	if size <= 0 {
		size = len(data)
		if size == 0 {
			return nil
		}
	}
	var chunks [][]byte
	for off := 0; off < len(data); off += size {
		end := off + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[off:end])
	}
	return chunks
}

func reverseChunks(chunks [][]byte) [][]byte {
	out := make([][]byte, len(chunks))
	for i, c := range chunks {
		out[len(chunks)-1-i] = c
	}
	return out
}
