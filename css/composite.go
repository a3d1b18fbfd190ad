package css

import (
	"github.com/vibraphone/pegtl-css/rule"
)

// Composite grammar: selectors, declarations, rulesets, at-rules, and
// the stylesheet envelope (spec.md §4.4). Built entirely out of the
// token grammar (tokens.go) plus the combinators in package rule.
//
// Three families of mutual/self recursion appear here: Selector
// references itself, term → function → expr → term, and
// media_condition → media_in_parens → media_condition. Go evaluates
// package-level var initializers eagerly, so a rule cannot embed a
// not-yet-initialized sibling var directly; the *Rec wrapper functions
// below call through indirection vars and are only invoked once
// parsing begins, by which point every var in this file has its final
// value.

// selectorRef, mediaConditionRef, and functionRef hold the final
// Selector/MediaCondition/Function rule values. They are assigned in
// init(), which runs after all package-level vars are initialized, so
// the *Rec wrapper functions below have no direct textual reference
// to the var they recurse into — only to these indirection vars —
// which keeps Go's initialization-cycle detector from tripping on the
// mutual/self recursion described above.
var (
	selectorRef       rule.Rule
	mediaConditionRef rule.Rule
	functionRef       rule.Rule
)

func init() {
	selectorRef = Selector
	mediaConditionRef = MediaCondition
	functionRef = Function
}

func selectorRec(s *rule.State) bool       { return selectorRef(s) }
func mediaConditionRec(s *rule.State) bool { return mediaConditionRef(s) }

var (
	Important = rule.Named("important", rule.Seq(
		Bang,
		rule.Star(Whitespace),
		rule.ILiteral("important"),
	))

	functionOpen  = rule.Seq(Ident, ParenOpen)
	functionClose = ParenClose

	// Term is ordered so the generic Dimension fallback is tried
	// after every specific unit token (spec.md §4.4 "the typed
	// numeric alternation must be ordered so dimension is tried
	// after all specific unit tokens").
	Term = rule.Named("term", rule.Sor(
		rule.Rule(functionRec),
		rule.Seq(
			rule.Sor(
				Percentage, Length, Ems, Exs, Angle, Time, Frequency,
				String, Ident, Dimension, Number, URL,
			),
			OptionalWhitespace,
		),
		Hexcolor,
		Ident,
	))

	operatorRule = rule.Named("operator_rule", rule.Seq(rule.Sor(Slash, Comma), OptionalWhitespace))

	Expr = rule.Named("expr", rule.Seq(
		Term,
		rule.Star(rule.Seq(rule.Opt(operatorRule), Term)),
	))

	Function = rule.Named("function", rule.Seq(
		functionOpen, OptionalWhitespace, Expr, functionClose, OptionalWhitespace,
	))

	Prio = rule.Named("prio", rule.Seq(Important, OptionalWhitespace))

	propertyName = rule.Named("property", Ident)

	PropertyValue = rule.Named("property_value", rule.Sor(Function, Expr))

	// Once propertyName has matched, a missing colon or value is an
	// unrecoverable error rather than an ordinary backtrack (spec.md
	// §8 scenario 6: "color red" with no colon must invalidate the
	// parse, not silently produce zero declarations).
	Declaration = rule.Named("declaration", rule.Seq(
		propertyName, OptionalWhitespace,
		rule.Must("declaration", Colon), OptionalWhitespace,
		rule.Must("declaration", PropertyValue), rule.Opt(Prio),
	))

	Pseudo = rule.Named("pseudo", rule.Seq(
		Colon, rule.Opt(Colon), rule.Sor(Function, Ident),
	))

	matchOp = rule.Sor(Equal, Includes, Dashmatch, Prefixmatch, Suffixmatch, Starmatch)

	Attrib = rule.Named("attrib", rule.Seq(
		BracketOpen, OptionalWhitespace, Ident, OptionalWhitespace,
		rule.Opt(rule.Seq(
			matchOp, OptionalWhitespace,
			rule.Sor(
				Ident,
				rule.Seq(String, rule.Opt(rule.Seq(OptionalWhitespace, rule.OneOf("is")))),
			),
			OptionalWhitespace,
		)),
		BracketClose,
	))

	ElementName = rule.Named("element_name", rule.Sor(Ident, Star))

	ClassModifier = rule.Named("class_modifier", rule.Seq(Dot, Ident))

	Combinator = rule.Named("combinator", rule.Seq(rule.Sor(rule.Literal("+"), AngleClose), OptionalWhitespace))

	SelectorModifier = rule.Named("selector_modifier", rule.Sor(Hash, ClassModifier, Attrib, Pseudo))

	SimpleSelector = rule.Named("simple_selector", rule.Sor(
		rule.Seq(ElementName, rule.Star(SelectorModifier)),
		rule.Plus(SelectorModifier),
	))

	// Selector is right-recursive: every recursive descent consumes
	// at least one code point via SimpleSelector first, so the PEG
	// is well-formed despite the self-reference (spec.md §4.4
	// "left-recursion hazard").
	Selector = rule.Named("selector", rule.Seq(
		SimpleSelector,
		rule.Opt(rule.Sor(
			rule.Seq(Combinator, rule.Rule(selectorRec)),
			rule.Seq(Whitespace, rule.Opt(rule.Seq(rule.Opt(Combinator), rule.Rule(selectorRec)))),
		)),
	))

	selectorList = rule.Seq(Selector, rule.Star(rule.Seq(Comma, OptionalWhitespace, Selector)))

	declarationList = rule.Seq(
		CurlyOpen, OptionalWhitespace, rule.Opt(Declaration),
		rule.Star(rule.Seq(Semicolon, OptionalWhitespace, rule.Opt(Declaration))),
		CurlyClose, OptionalWhitespace,
	)

	Ruleset = rule.Named("ruleset", rule.Seq(selectorList, declarationList))

	PseudoPage = rule.Named("pseudo_page", rule.Seq(Colon, Ident, OptionalWhitespace))

	Page = rule.Named("page", rule.Seq(
		PageKeyword, OptionalWhitespace, rule.Opt(PseudoPage), declarationList,
	))

	MediaType = rule.Named("media_type", Ident)
	mfName    = rule.Named("mf_name", Ident)

	mfValue = rule.Sor(Dimension, Ratio, Number, Ident)

	mfPlain = rule.Named("mf_plain", rule.Seq(
		mfName, OptionalWhitespace, Colon, OptionalWhitespace, mfValue, OptionalWhitespace,
	))

	mfBoolean = rule.Named("mf_boolean", mfName)

	// mf_range matches the four forms spec.md §4.4 allows; the two
	// mixed-direction forms (e.g. "value < name > value") are not in
	// this alternation and are therefore rejected. The two double-sided
	// forms are listed first: each is a strict extension of the
	// single-comparator "value cmp name" shape, so trying the shorter
	// form first would let it commit on a prefix of a double-sided
	// range and never backtrack into the longer match.
	mfRange = rule.Named("mf_range", rule.Sor(
		rule.Seq(mfValue, OptionalWhitespace, LteComparator, OptionalWhitespace, mfName, OptionalWhitespace, LteComparator, OptionalWhitespace, mfValue),
		rule.Seq(mfValue, OptionalWhitespace, GteComparator, OptionalWhitespace, mfName, OptionalWhitespace, GteComparator, OptionalWhitespace, mfValue),
		rule.Seq(mfName, OptionalWhitespace, Comparator, OptionalWhitespace, mfValue),
		rule.Seq(mfValue, OptionalWhitespace, Comparator, OptionalWhitespace, mfName),
	))

	MediaFeature = rule.Named("media_feature", rule.Seq(
		ParenOpen, OptionalWhitespace, rule.Sor(mfPlain, mfBoolean, mfRange), OptionalWhitespace, ParenClose, OptionalWhitespace,
	))

	generalEnclosed = rule.Named("general_enclosed", rule.Sor(
		rule.Seq(functionOpen, rule.Until(functionClose)),
		rule.Seq(ParenOpen, OptionalWhitespace, Ident, rule.Until(ParenClose)),
	))

	MediaInParens = rule.Named("media_in_parens", rule.Sor(
		rule.Seq(ParenOpen, OptionalWhitespace, rule.Rule(mediaConditionRec), OptionalWhitespace, ParenClose),
		MediaFeature,
		generalEnclosed,
	))

	MediaNot = rule.Named("media_not", rule.Seq(NotKeyword, Whitespace, MediaInParens))

	MediaAnd = rule.Named("media_and", rule.Seq(
		MediaInParens,
		rule.Plus(rule.Seq(OptionalWhitespace, AndKeyword, Whitespace, MediaInParens)),
	))

	MediaOr = rule.Named("media_or", rule.Seq(
		MediaInParens,
		rule.Plus(rule.Seq(Whitespace, OrKeyword, Whitespace, MediaInParens)),
	))

	// MediaCondition and MediaConditionWithoutOr are deliberately
	// identical: the MDN grammar spec.md follows only admits "or" at
	// the top level of a full condition, but this teacher's original
	// already folds that distinction away (spec.md §4.4 notes both
	// match "the same set (no or in the grammar body"), so both
	// symbols bind the same alternation.
	MediaCondition = rule.Named("media_condition", rule.Sor(MediaNot, MediaAnd, MediaInParens))

	MediaConditionWithoutOr = rule.Named("media_condition_without_or", rule.Sor(MediaNot, MediaAnd, MediaInParens))

	Medium = rule.Named("medium", rule.Seq(
		rule.Sor(
			MediaCondition,
			rule.Seq(
				rule.Opt(rule.Sor(NotKeyword, OnlyKeyword)),
				MediaType,
				rule.Opt(rule.Seq(Whitespace, AndKeyword, Whitespace, MediaConditionWithoutOr)),
			),
		),
		OptionalWhitespace,
	))

	MediaList = rule.Named("media_list", rule.Seq(
		Medium, rule.Star(rule.Seq(Comma, OptionalWhitespace, Medium)),
	))

	Media = rule.Named("media", rule.Seq(
		MediaKeyword, Whitespace, MediaList, CurlyOpen, OptionalWhitespace,
		rule.Star(Ruleset), CurlyClose, OptionalWhitespace,
	))

	ImportRule = rule.Named("import_rule", rule.Seq(
		ImportKeyword, OptionalWhitespace, rule.Sor(String, URL), OptionalWhitespace,
		rule.Opt(MediaList), Semicolon, OptionalWhitespace,
	))

	cdoOrCdc = rule.Sor(
		rule.Seq(CDO, OptionalWhitespace),
		rule.Seq(CDC, OptionalWhitespace),
	)

	importRules = rule.Star(rule.Seq(ImportRule, rule.Opt(cdoOrCdc)))

	// Stylesheet is the grammar's top rule (spec.md §4.4). opt(encoding)
	// being the very first element is what guarantees @charset is only
	// honored as the literal first thing in the file (spec.md §3's
	// invariant "Encoding is set only if an @charset rule appeared as
	// the very first non-whitespace content").
	StylesheetRule = rule.Named("stylesheet", rule.Seq(
		rule.Opt(Encoding),
		rule.Star(rule.Sor(Whitespace, CDO, CDC)),
		importRules,
		rule.Star(rule.Seq(
			rule.Sor(Ruleset, Media, Page),
			rule.Star(cdoOrCdc),
		)),
		rule.Eof(),
	))
)

func functionRec(s *rule.State) bool { return functionRef(s) }
