package jsonstream

// parseState is one of the pushdown automaton's state codes, small enough to
// fit in a byte so a deep container nesting keeps the state stack cheap.
type parseState byte

const (
	stateStart parseState = iota
	stateParseComplete
	stateParseError
	stateLexicalError
	stateGotValue
	stateMapStart
	stateMapNeedKey
	stateMapSep
	stateMapNeedVal
	stateMapGotVal
	stateArrayStart
	stateArrayNeedVal
	stateArrayGotVal
)

func (s parseState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateParseComplete:
		return "parse_complete"
	case stateParseError:
		return "parse_error"
	case stateLexicalError:
		return "lexical_error"
	case stateGotValue:
		return "got_value"
	case stateMapStart:
		return "map_start"
	case stateMapNeedKey:
		return "map_need_key"
	case stateMapSep:
		return "map_sep"
	case stateMapNeedVal:
		return "map_need_val"
	case stateMapGotVal:
		return "map_got_val"
	case stateArrayStart:
		return "array_start"
	case stateArrayNeedVal:
		return "array_need_val"
	case stateArrayGotVal:
		return "array_got_val"
	}
	return "unknown"
}

// stateStack is the LIFO of parser-state codes tracking container nesting.
// The top of the stack is always the parser's current expectation.
type stateStack struct {
	states []parseState
}

func newStateStack() *stateStack {
	s := &stateStack{states: make([]parseState, 0, 16)}
	s.states = append(s.states, stateStart)
	return s
}

func (s *stateStack) current() parseState {
	return s.states[len(s.states)-1]
}

func (s *stateStack) set(st parseState) {
	s.states[len(s.states)-1] = st
}

func (s *stateStack) push(st parseState) {
	s.states = append(s.states, st)
}

func (s *stateStack) pop() {
	s.states = s.states[:len(s.states)-1]
}

func (s *stateStack) depth() int {
	return len(s.states)
}

// reset returns the stack to its just-allocated state: a single start frame.
func (s *stateStack) reset() {
	s.states = s.states[:0]
	s.states = append(s.states, stateStart)
}
