package css

import "strings"

// Action dispatch (spec.md §4.5). Every grammar symbol has an
// implicit no-op action; only the symbols listed in actionTable do
// anything. Actions run during Parser.replay, once per event in the
// order package rule recorded them — which is to say, once per
// successful, *committed* match, children before parents, and never
// for a branch a Sor later discarded.

type action func(acc *Accumulator, sheet *Stylesheet, text string)

var actionTable = map[string]action{
	"encoding_charset": func(acc *Accumulator, sheet *Stylesheet, text string) {
		sheet.Encoding = unquote(text)
	},

	// selector fires once per matching selector. In a comma-separated
	// list, every member's selector action fires in turn and
	// overwrites CurrentSelector, so only the last one is still set
	// when ruleset's action flushes CurrentSet. This reproduces the
	// source deficiency documented in spec.md §4.5/§9 on purpose —
	// see SPEC_FULL.md's Open Question decisions.
	"selector": func(acc *Accumulator, sheet *Stylesheet, text string) {
		acc.CurrentSelector = strings.TrimRight(text, " \t\n\r\f")
	},

	"property": func(acc *Accumulator, sheet *Stylesheet, text string) {
		acc.CurrentProperty.Name = text
	},

	// term tokens consume their own trailing whitespace so the
	// composite grammar never needs a leading-whitespace rule before
	// the next token; trim it back off here so the stored value
	// matches what was actually written, not what the token consumed.
	"property_value": func(acc *Accumulator, sheet *Stylesheet, text string) {
		acc.CurrentProperty.Value = strings.TrimRight(text, " \t\n\r\f")
	},

	"important": func(acc *Accumulator, sheet *Stylesheet, text string) {
		acc.CurrentProperty.Important = true
	},

	"declaration": func(acc *Accumulator, sheet *Stylesheet, text string) {
		if acc.CurrentProperty.Name != "" {
			acc.CurrentSet.Set(acc.CurrentProperty)
		}
		acc.CurrentProperty = Property{}
	},

	"ruleset": func(acc *Accumulator, sheet *Stylesheet, text string) {
		dst, ok := sheet.Properties[acc.CurrentSelector]
		if !ok {
			dst = PropertySet{}
		}
		for _, p := range acc.CurrentSet {
			dst.Set(p)
		}
		sheet.Properties[acc.CurrentSelector] = dst
		acc.CurrentSet = PropertySet{}
	},

	// page discards the declarations of an @page block, so they are not
	// flushed into the next ruleset's selector.
	"page": func(acc *Accumulator, sheet *Stylesheet, text string) {
		acc.CurrentSet = PropertySet{}
	},

	"bad_comment": func(acc *Accumulator, sheet *Stylesheet, text string) {
		sheet.warn("unterminated comment at end of input")
	},
}

// unquote strips the surrounding quote characters from a matched
// string token's text (spec.md §4.5: "set stylesheet.encoding to the
// matched string with its surrounding quote characters stripped").
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	return s[1 : len(s)-1]
}
