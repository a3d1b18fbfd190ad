// Package rule implements the PEG combinators the grammar is built
// from: ordered choice with backtracking, sequencing, repetition,
// until/minus and the "must" / "raise" primitives used to turn an
// otherwise-recoverable match failure into a parse error. There is no
// and/not lookahead predicate.
//
// A Rule never leaves the cursor in a partially-consumed state on
// failure — every combinator that can fail partway through rewinds to
// its own entry mark before returning false. That invariant is what
// makes backtracking in Sor safe.
package rule

import (
	"strings"
	"unicode"

	"github.com/vibraphone/pegtl-css/cursor"
)

// Event records that a named rule matched and committed: it did not
// end up inside a branch that a later Sor alternative discarded.
// Events are appended in the order their rules finish matching, so
// children always appear before their parents.
type Event struct {
	Name  string
	Start cursor.Mark
	End   cursor.Mark
}

// FatalError describes an unrecoverable grammar failure: a Must-wrapped
// rule failed, or a Raise was reached.
type FatalError struct {
	RuleName string
	Pos      cursor.Mark
}

// State is the mutable context threaded through a single parse: the
// cursor being consumed, the event log actions replay from, and the
// sticky fatal-error slot that aborts backtracking once set.
type State struct {
	C      *cursor.Cursor
	Events []Event
	Fatal  *FatalError
}

// NewState creates parse state over src.
func NewState(src []byte) *State {
	return &State{C: cursor.New(src)}
}

// Rule is a recognizer: given state, it either consumes zero or more
// code points from the cursor and returns true, or leaves the cursor
// unchanged and returns false.
type Rule func(*State) bool

func (s *State) truncate(n int) { s.Events = s.Events[:n] }

// Named wraps r so that, on a successful match, an Event recording
// r's name and matched span is appended to the event log. This is the
// sole mechanism by which a grammar symbol becomes observable to
// action dispatch (see the css package).
func Named(name string, r Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		start := s.C.Mark()
		if !r(s) {
			return false
		}
		s.Events = append(s.Events, Event{Name: name, Start: start, End: s.C.Mark()})
		return true
	}
}

// Literal matches a fixed byte sequence exactly.
func Literal(lit string) Rule {
	b := []byte(lit)
	return func(s *State) bool {
		if s.Fatal != nil || !s.C.HasPrefix(b) {
			return false
		}
		s.C.Advance(len(b))
		return true
	}
}

// ILiteral matches lit case-insensitively over ASCII letters; any
// non-letter byte in lit must match exactly.
func ILiteral(lit string) Rule {
	want := []byte(lit)
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		for i, wb := range want {
			got, ok := s.C.PeekByte(i)
			if !ok {
				s.C.Rewind(m)
				return false
			}
			if asciiLower(got) != asciiLower(wb) {
				s.C.Rewind(m)
				return false
			}
		}
		s.C.Advance(len(want))
		return true
	}
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// OneOf matches a single code point present in set.
func OneOf(set string) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		r, size, ok := s.C.PeekRune()
		if !ok || !strings.ContainsRune(set, r) {
			return false
		}
		s.C.Advance(size)
		return true
	}
}

// RangeOf matches a single code point in [lo, hi].
func RangeOf(lo, hi rune) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		r, size, ok := s.C.PeekRune()
		if !ok || r < lo || r > hi {
			return false
		}
		s.C.Advance(size)
		return true
	}
}

// Any matches one code point; it fails only at EOF or on malformed
// UTF-8.
func Any() Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		_, size, ok := s.C.PeekRune()
		if !ok {
			return false
		}
		s.C.Advance(size)
		return true
	}
}

// NotOne matches a single code point that is not present in set and
// is not EOF.
func NotOne(set string) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		r, size, ok := s.C.PeekRune()
		if !ok || strings.ContainsRune(set, r) {
			return false
		}
		s.C.Advance(size)
		return true
	}
}

// UnicodeSpace matches a single Unicode white-space code point.
func UnicodeSpace() Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		r, size, ok := s.C.PeekRune()
		if !ok || !unicode.IsSpace(r) {
			return false
		}
		s.C.Advance(size)
		return true
	}
}

// Seq matches rs in order; on the failure of any, the whole sequence
// fails and the cursor is rewound to the entry mark.
func Seq(rs ...Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		el := len(s.Events)
		for _, r := range rs {
			if !r(s) {
				s.C.Rewind(m)
				s.truncate(el)
				return false
			}
		}
		return true
	}
}

// Sor is ordered choice: alternatives are tried left-to-right; the
// first success commits, and remaining alternatives are never tried.
// Each failed alternative rewinds the cursor and discards any events
// it recorded before the next alternative is attempted.
func Sor(rs ...Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		el := len(s.Events)
		for _, r := range rs {
			if r(s) {
				return true
			}
			s.C.Rewind(m)
			s.truncate(el)
			if s.Fatal != nil {
				return false
			}
		}
		return false
	}
}

// Opt tries r and succeeds whether or not it matched — unless r's
// failure was promoted to fatal by a Must/Raise inside it, in which
// case Opt must not swallow that failure into a false success.
func Opt(r Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		el := len(s.Events)
		if !r(s) {
			if s.Fatal != nil {
				return false
			}
			s.C.Rewind(m)
			s.truncate(el)
		}
		return true
	}
}

// Star matches r zero or more times, greedily. It always succeeds,
// unless a later attempt's failure was promoted to fatal.
func Star(r Rule) Rule {
	return func(s *State) bool {
		for {
			if s.Fatal != nil {
				return false
			}
			m := s.C.Mark()
			el := len(s.Events)
			if !r(s) {
				if s.Fatal != nil {
					return false
				}
				s.C.Rewind(m)
				s.truncate(el)
				return true
			}
			if s.C.Mark() == m {
				// r matched without consuming; stop to avoid looping forever.
				return true
			}
		}
	}
}

// Plus matches r one or more times, greedily.
func Plus(r Rule) Rule {
	return Seq(r, Star(r))
}

// Until consumes zero or more matches of body until term matches;
// term is consumed. If body is omitted, Any is used.
func Until(term Rule, body ...Rule) Rule {
	b := Any()
	if len(body) > 0 {
		b = Seq(body...)
	}
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		el := len(s.Events)
		for {
			if term(s) {
				return true
			}
			if s.Fatal != nil {
				s.C.Rewind(m)
				s.truncate(el)
				return false
			}
			if !b(s) {
				s.C.Rewind(m)
				s.truncate(el)
				return false
			}
		}
	}
}

// Minus matches r, then rejects the match (rewinding) if the matched
// text also fully matches excluded.
func Minus(r Rule, excluded Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		m := s.C.Mark()
		el := len(s.Events)
		if !r(s) {
			return false
		}
		matchedEnd := s.C.Mark()
		text := s.C.Slice(m, matchedEnd)
		sub := NewState([]byte(text))
		if excluded(sub) && sub.C.AtEnd() {
			s.C.Rewind(m)
			s.truncate(el)
			return false
		}
		return true
	}
}

// Eof matches only at end of input.
func Eof() Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		return s.C.AtEnd()
	}
}

// Raise unconditionally fails with a named, unrecoverable error. It is
// used as the final alternative of a Sor whose preceding branches are
// known to be exhaustive, to force a parse error instead of a silent
// backtrack past the point where the grammar knows it cannot recover.
func Raise(name string) Rule {
	return func(s *State) bool {
		if s.Fatal == nil {
			pos := s.C.Mark()
			s.Fatal = &FatalError{RuleName: name, Pos: pos}
		}
		return false
	}
}

// Must wraps r so that a failure inside it is promoted to a fatal,
// unrecoverable parse error instead of an ordinary backtrackable
// failure: no enclosing Sor will try a further alternative afterward.
func Must(name string, r Rule) Rule {
	return func(s *State) bool {
		if s.Fatal != nil {
			return false
		}
		if r(s) {
			return true
		}
		if s.Fatal == nil {
			s.Fatal = &FatalError{RuleName: name, Pos: s.C.Mark()}
		}
		return false
	}
}
