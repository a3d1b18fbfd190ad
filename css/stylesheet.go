package css

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vibraphone/pegtl-css/common"
)

// Property is a single declaration's accumulated state (spec.md §3).
// Two properties are equal iff their Name fields are equal — that
// equality is what gives last-wins merge semantics to PropertySet.
type Property struct {
	Name      string
	Value     string
	Important bool
	Source    common.PropertySource
}

// PropertySet maps a property name to its (last-seen-wins) Property.
// Iteration order is not observable; String/WriteTo sort by name to
// produce deterministic output.
type PropertySet map[string]Property

// Set inserts p, overwriting any existing entry with the same name.
func (ps PropertySet) Set(p Property) {
	ps[p.Name] = p
}

// Clone returns a shallow copy of ps.
func (ps PropertySet) Clone() PropertySet {
	out := make(PropertySet, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

func (ps PropertySet) names() []string {
	names := make([]string, 0, len(ps))
	for n := range ps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Accumulator is the transient state built up during a single parse
// (spec.md §3). It is scoped to one Parse call and discarded once the
// call returns.
type Accumulator struct {
	CurrentSelector string
	CurrentProperty Property
	CurrentSet      PropertySet
}

func newAccumulator() *Accumulator {
	return &Accumulator{CurrentSet: PropertySet{}}
}

// Stylesheet is the parse result (spec.md §3/§6): an encoding label,
// a validity flag, and a flat selector-text → property-set mapping.
// It is frozen (treated as read-only) once Parse returns.
type Stylesheet struct {
	Encoding   string
	Valid      bool
	Properties map[string]PropertySet

	// Warnings records non-fatal conditions noticed during the parse:
	// an unrecognized @charset label or an unterminated comment.
	// Media/page/import constructs whose contents are parsed but not
	// retained (spec.md §9, "no AST, only a flat map") add no warning.
	// This is a supplement over the original; see SPEC_FULL.md.
	Warnings []string

	// Err holds the single fatal diagnostic when Valid is false.
	Err error
}

func newStylesheet() *Stylesheet {
	return &Stylesheet{
		Encoding:   "utf-8",
		Properties: map[string]PropertySet{},
	}
}

func (s *Stylesheet) warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// String renders the stylesheet back to CSS text. This is not a
// general-purpose formatter — spec.md places pretty-printing outside
// the core — it exists only so the round-trip testable property
// (spec.md §8) has something deterministic to re-parse.
func (s *Stylesheet) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

// WriteTo writes canonical CSS text for the stylesheet, selectors in
// sorted order and properties within each selector sorted by name.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	selectors := make([]string, 0, len(s.Properties))
	for sel := range s.Properties {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		ps := s.Properties[sel]
		n, err := fmt.Fprintf(w, "%s {\n", sel)
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, name := range ps.names() {
			p := ps[name]
			suffix := ""
			if p.Important {
				suffix = " !important"
			}
			n, err = fmt.Fprintf(w, "  %s: %s%s;\n", p.Name, p.Value, suffix)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprint(w, "}\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
