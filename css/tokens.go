package css

import (
	"github.com/vibraphone/pegtl-css/rule"
)

// Token grammar: lexical rules (spec.md §4.3). Every exported Rule
// here is a symbol of the token layer; all but the punctuation
// literals at the end are Named. None of these run actions directly — action bindings live in
// actions.go and attach only to the composite symbols that need them.

var (
	Newline = rule.Named("newline", rule.Sor(
		rule.Literal("\r\n"),
		rule.OneOf("\n\r\f"),
	))

	comment = rule.Named("comment", rule.Seq(
		rule.Literal("/*"),
		rule.Until(rule.Literal("*/")),
	))

	badComment = rule.Named("bad_comment", rule.Seq(
		rule.Literal("/*"),
		rule.Minus(rule.Star(rule.Any()), rule.Literal("*/")),
		rule.Eof(),
	))

	// Whitespace is one or more of: Unicode white-space, comment,
	// bad_comment, newline. Comments are matched as whitespace so
	// that, per spec.md §4.3, an unterminated comment can still leave
	// the surrounding grammar valid.
	Whitespace = rule.Named("whitespace", rule.Plus(rule.Sor(
		rule.UnicodeSpace(),
		comment,
		badComment,
		Newline,
	)))

	OptionalWhitespace = rule.Named("optional_whitespace", rule.Star(Whitespace))

	hexDigitClass = rule.Sor(
		rule.RangeOf('0', '9'),
		rule.RangeOf('a', 'f'),
		rule.RangeOf('A', 'F'),
	)

	hexNumber = rule.Seq(hexDigitClass, rule.Opt(hexDigitClass), rule.Opt(hexDigitClass),
		rule.Opt(hexDigitClass), rule.Opt(hexDigitClass), rule.Opt(hexDigitClass))

	// Escape: a backslash followed by either a 1-6 hex digit unit or
	// any code point except a newline.
	Escape = rule.Named("escape", rule.Seq(
		rule.Literal(`\`),
		rule.Sor(
			hexNumber,
			rule.NotOne("\n\r\f"),
		),
	))

	nonASCII = rule.RangeOf(0x00A0, 0x10FFFF)

	lettersDigits = rule.Sor(
		rule.RangeOf('a', 'z'),
		rule.RangeOf('A', 'Z'),
		rule.RangeOf('0', '9'),
	)

	identSuffix = rule.Named("ident_suffix", rule.Star(rule.Sor(
		Escape,
		lettersDigits,
		rule.Literal("-"),
		rule.Literal("_"),
		nonASCII,
	)))

	Ident = rule.Named("ident", rule.Seq(
		rule.Sor(
			rule.Literal("--"),
			rule.Seq(
				rule.Opt(rule.Literal("-")),
				rule.Sor(
					Escape,
					nonASCII,
					rule.RangeOf('a', 'z'),
					rule.RangeOf('A', 'Z'),
					rule.Literal("_"),
				),
			),
		),
		identSuffix,
	))

	Hash = rule.Named("hash", rule.Seq(rule.Literal("#"), identSuffix))

	// Hexcolor deliberately does not enforce a 3/4/6/8 hex-digit count
	// (spec.md §4.3, §9 open question — resolved in favor of the
	// documented, unenforced grammar).
	Hexcolor = rule.Named("hexcolor", rule.Seq(Hash, OptionalWhitespace))

	sign = rule.OneOf("+-")
	digits = rule.Plus(rule.RangeOf('0', '9'))

	Number = rule.Named("number", rule.Seq(
		rule.Opt(sign),
		rule.Sor(
			rule.Seq(digits, rule.Literal("."), digits),
			digits,
			rule.Seq(rule.Literal("."), digits),
		),
		rule.Opt(rule.Seq(
			rule.OneOf("eE"),
			rule.Opt(sign),
			digits,
		)),
	))

	lengthUnits = rule.Sor(
		rule.ILiteral("px"), rule.ILiteral("cm"), rule.ILiteral("mm"),
		rule.ILiteral("in"), rule.ILiteral("pt"), rule.ILiteral("pc"),
	)
	Length = rule.Named("length", rule.Seq(Number, lengthUnits))

	Ems = rule.Named("ems", rule.Seq(Number, rule.ILiteral("em")))
	Exs = rule.Named("exs", rule.Seq(Number, rule.ILiteral("ex")))

	angleUnits = rule.Sor(rule.ILiteral("deg"), rule.ILiteral("rad"), rule.ILiteral("grad"))
	Angle = rule.Named("angle", rule.Seq(Number, angleUnits))

	timeUnits = rule.Sor(rule.ILiteral("ms"), rule.ILiteral("s"))
	Time = rule.Named("time", rule.Seq(Number, timeUnits))

	frequencyUnits = rule.Sor(rule.ILiteral("hz"), rule.ILiteral("khz"))
	Frequency = rule.Named("frequency", rule.Seq(Number, frequencyUnits))

	Percentage = rule.Named("percentage", rule.Seq(Number, rule.Literal("%")))

	// Dimension is the generic, unknown-unit fallback. It must be
	// ordered after all typed units wherever it competes with them in
	// a Sor (spec.md §4.3/§4.4) — composite.go's term alternation does
	// exactly that.
	Dimension = rule.Named("dimension", rule.Seq(Number, Ident))

	Ratio = rule.Named("ratio", rule.Seq(
		Number, OptionalWhitespace, rule.Literal(":"), OptionalWhitespace, Number,
	))

	lineContinuation = rule.Seq(rule.Literal(`\`), Newline)

	unescapedDouble = rule.NotOne("\"\\\n\r\f")
	unescapedSingle = rule.NotOne("'\\\n\r\f")

	doubleQuotedString = rule.Seq(
		rule.Literal(`"`),
		rule.Star(rule.Sor(unescapedDouble, Escape, lineContinuation)),
		rule.Literal(`"`),
	)
	singleQuotedString = rule.Seq(
		rule.Literal(`'`),
		rule.Star(rule.Sor(unescapedSingle, Escape, lineContinuation)),
		rule.Literal(`'`),
	)

	String = rule.Named("string", rule.Sor(doubleQuotedString, singleQuotedString))

	urlBodyChar = rule.NotOne("\"'\\ \t\n\r\f()")
	URL = rule.Named("url", rule.Seq(
		rule.ILiteral("url"),
		rule.Literal("("),
		OptionalWhitespace,
		rule.Opt(rule.Star(rule.Sor(Escape, urlBodyChar))),
		OptionalWhitespace,
		rule.Literal(")"),
	))

	ImportKeyword = rule.Named("import_keyword", rule.ILiteral("@import"))
	PageKeyword   = rule.Named("page_keyword", rule.ILiteral("@page"))
	MediaKeyword  = rule.Named("media_keyword", rule.ILiteral("@media"))

	// EncodingCharset is the double-quoted string value of an
	// @charset rule; its action strips the surrounding quotes.
	EncodingCharset = rule.Named("encoding_charset", doubleQuotedString)

	// Encoding requires a single literal space before the quoted
	// name (spec.md §4.3/§9): tabs or newlines do not match.
	Encoding = rule.Named("encoding", rule.Seq(
		rule.ILiteral("@charset "),
		EncodingCharset,
		rule.Literal(";"),
	))

	NotKeyword  = rule.Named("not_keyword", rule.ILiteral("not"))
	AndKeyword  = rule.Named("and_keyword", rule.ILiteral("and"))
	OrKeyword   = rule.Named("or_keyword", rule.ILiteral("or"))
	OnlyKeyword = rule.Named("only_keyword", rule.ILiteral("only"))

	CDO = rule.Named("CDO", rule.Literal("<!--"))
	CDC = rule.Named("CDC", rule.Literal("-->"))

	Colon        = rule.Literal(":")
	Dot          = rule.Literal(".")
	Star         = rule.Literal("*")
	Slash        = rule.Literal("/")
	Bang         = rule.Literal("!")
	Equal        = rule.Literal("=")
	Semicolon    = rule.Literal(";")
	Comma        = rule.Literal(",")
	AngleOpen    = rule.Literal("<")
	AngleClose   = rule.Literal(">")
	BracketOpen  = rule.Literal("[")
	BracketClose = rule.Literal("]")
	ParenOpen    = rule.Literal("(")
	ParenClose   = rule.Literal(")")
	CurlyOpen    = rule.Literal("{")
	CurlyClose   = rule.Literal("}")

	Includes    = rule.Literal("~=")
	Dashmatch   = rule.Literal("|=")
	Prefixmatch = rule.Literal("^=")
	Suffixmatch = rule.Literal("$=")
	Starmatch   = rule.Literal("*=")

	// Comparator lists longer prefixes first so that ordered choice
	// obtains longest-match without backtracking past a short match
	// (spec.md §4.2 "Ordering and tie-breaks").
	Comparator    = rule.Named("comparator", rule.Sor(rule.Literal("<="), rule.Literal(">="), rule.Literal("="), rule.Literal("<"), rule.Literal(">")))
	LteComparator = rule.Named("lte_comparator", rule.Sor(rule.Literal("<="), rule.Literal("<")))
	GteComparator = rule.Named("gte_comparator", rule.Sor(rule.Literal(">="), rule.Literal(">")))
)
