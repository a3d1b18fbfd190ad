package css

import (
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/vibraphone/pegtl-css/rule"
)

// Parser parses CSS stylesheets into a flat Stylesheet value
// (spec.md §6, "Entry point"). It holds nothing but an optional
// logger — a Parser has no state that outlives a single Parse call,
// so distinct Parse calls never share mutable state (spec.md §5).
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser. A nil logger is replaced with a
// no-op one, matching the teacher's convention in css.NewParser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses data into a Stylesheet. source, if given, identifies
// what is being parsed for debug logging only; it has no bearing on
// the result.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	sheet := newStylesheet()
	acc := newAccumulator()
	st := rule.NewState(data)

	ok := StylesheetRule(st)

	if ok && st.Fatal == nil {
		replay(st, acc, sheet)
		sheet.Valid = true
		validateEncoding(sheet)
		p.log.Debug("parsed CSS", zap.Int("selectors", len(sheet.Properties)), zap.Int("warnings", len(sheet.Warnings)))
		return sheet
	}

	sheet.Valid = false
	ruleName := "stylesheet"
	offset := len(data)
	if st.Fatal != nil {
		ruleName = st.Fatal.RuleName
		offset = st.Fatal.Pos.Offset()
	}
	sheet.Err = newParseError(data, ruleName, offset)
	p.log.Debug("CSS parse error", zap.Error(sheet.Err))
	return sheet
}

// replay invokes the bound action, if any, for every recorded event in
// order (spec.md §4.5). Because package rule only appends an event
// once its rule has committed — never for a branch a Sor discarded —
// replaying the whole log once, after the top rule has fully
// succeeded, is equivalent to running actions live with rollback on
// backtrack, without needing to snapshot accumulator state at every
// Sor entry (spec.md §9, "deferred actions" strategy).
func replay(st *rule.State, acc *Accumulator, sheet *Stylesheet) {
	for _, ev := range st.Events {
		act, ok := actionTable[ev.Name]
		if !ok {
			continue
		}
		text := st.C.Slice(ev.Start, ev.End)
		act(acc, sheet, text)
	}
}

// validateEncoding checks an @charset label, if one was set, against
// the WHATWG encoding index. An unrecognized label is reported as a
// warning but never fails the parse or changes Encoding — the core
// never re-decodes the input buffer (spec.md §6).
func validateEncoding(sheet *Stylesheet) {
	if sheet.Encoding == "utf-8" {
		return
	}
	if _, err := htmlindex.Get(sheet.Encoding); err != nil {
		sheet.warn("unrecognized @charset label: " + sheet.Encoding)
	}
}

// Parse is a convenience wrapper around NewParser(nil).Parse, for
// callers that have no logger to thread through (spec.md §6's
// "Entry point: a single function parse(bytes, filename) → stylesheet").
func Parse(data []byte, filename string) *Stylesheet {
	return NewParser(nil).Parse(data, filename)
}

