// Package cursor implements the byte-addressable, transactional input
// view the grammar engine runs over. It has no notion of CSS; it only
// knows how to decode UTF-8 on demand, track line/column, and
// checkpoint/restore position for backtracking.
package cursor

import "unicode/utf8"

// Mark is an opaque snapshot of a Cursor's position, returned by Mark
// and consumed by Rewind. Marks are only valid against the Cursor that
// produced them.
type Mark struct {
	offset int
	line   int
	column int
}

// Offset, Line, Column expose the snapshot, mainly for diagnostics
// built after the cursor itself has moved on or been rewound.
func (m Mark) Offset() int { return m.offset }
func (m Mark) Line() int   { return m.line }
func (m Mark) Column() int { return m.column }

// Cursor is a random-access view over an immutable byte buffer with a
// mutable read position. All grammar consumption goes through it.
type Cursor struct {
	src    []byte
	offset int
	line   int
	column int
}

// New wraps src for reading. Line and column are 1-based, matching the
// convention used by the error reporter.
func New(src []byte) *Cursor {
	return &Cursor{src: src, line: 1, column: 1}
}

// Bytes returns the full underlying buffer, unmodified.
func (c *Cursor) Bytes() []byte { return c.src }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (c *Cursor) AtEnd() bool { return c.offset >= len(c.src) }

// Offset, Line, Column report the cursor's current position.
func (c *Cursor) Offset() int { return c.offset }
func (c *Cursor) Line() int   { return c.line }
func (c *Cursor) Column() int { return c.column }

// PeekByte returns the byte n positions ahead of the cursor (0 is the
// next unread byte) and true, or false if that position is past the
// end of the buffer.
func (c *Cursor) PeekByte(n int) (byte, bool) {
	i := c.offset + n
	if i < 0 || i >= len(c.src) {
		return 0, false
	}
	return c.src[i], true
}

// PeekRune decodes, without consuming, the code point starting at the
// cursor. ok is false at EOF or on malformed UTF-8 — callers treat
// either as "this rule does not match here", never as a fatal error.
func (c *Cursor) PeekRune() (r rune, size int, ok bool) {
	if c.AtEnd() {
		return 0, 0, false
	}
	r, size = utf8.DecodeRune(c.src[c.offset:])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	return r, size, true
}

// HasPrefix reports whether the unread portion of the buffer starts
// with lit.
func (c *Cursor) HasPrefix(lit []byte) bool {
	rest := c.src[c.offset:]
	if len(lit) > len(rest) {
		return false
	}
	return string(rest[:len(lit)]) == string(lit)
}

// Advance consumes n bytes, scanning them for newlines to keep
// line/column in sync. \n, \r\n, \r and \f all count as one newline;
// \r\n is not double-counted.
func (c *Cursor) Advance(n int) {
	end := c.offset + n
	if end > len(c.src) {
		end = len(c.src)
	}
	i := c.offset
	for i < end {
		b := c.src[i]
		switch b {
		case '\n', '\f':
			// A \n whose \r was consumed by an earlier Advance completes
			// that same \r\n newline.
			if b != '\n' || i != c.offset || i == 0 || c.src[i-1] != '\r' {
				c.line++
			}
			c.column = 1
			i++
		case '\r':
			i++
			c.line++
			c.column = 1
			if i < end && c.src[i] == '\n' {
				i++
			}
		default:
			c.column++
			i++
		}
	}
	c.offset = end
}

// Mark checkpoints the current position.
func (c *Cursor) Mark() Mark {
	return Mark{offset: c.offset, line: c.line, column: c.column}
}

// Rewind restores a previously taken Mark. This is the only way
// control flow backtracks in the grammar engine.
func (c *Cursor) Rewind(m Mark) {
	c.offset = m.offset
	c.line = m.line
	c.column = m.column
}

// Slice returns the text consumed between two marks (from's offset to
// to's offset) as a substring of the underlying buffer.
func (c *Cursor) Slice(from, to Mark) string {
	if from.offset > to.offset {
		return ""
	}
	return string(c.src[from.offset:to.offset])
}

// SliceFrom returns the text consumed between mark m and the cursor's
// current position.
func (c *Cursor) SliceFrom(m Mark) string {
	return c.Slice(m, c.Mark())
}

// LineText returns the full text of the line containing offset, with
// no trailing newline, for use in diagnostics.
func (c *Cursor) LineText(offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(c.src) {
		offset = len(c.src)
	}
	start := offset
	for start > 0 && c.src[start-1] != '\n' && c.src[start-1] != '\r' {
		start--
	}
	end := offset
	for end < len(c.src) && c.src[end] != '\n' && c.src[end] != '\r' {
		end++
	}
	return string(c.src[start:end])
}
