package css_test

import (
	"testing"

	"github.com/vibraphone/pegtl-css/css"
	"github.com/vibraphone/pegtl-css/rule"
)

func matchAll(t *testing.T, r rule.Rule, src string) {
	t.Helper()
	s := rule.NewState([]byte(src))
	if !r(s) {
		t.Fatalf("expected %q to match", src)
	}
	if !s.C.AtEnd() {
		t.Fatalf("expected %q to be fully consumed, %d bytes left", src, len(src)-s.C.Offset())
	}
}

func noMatch(t *testing.T, r rule.Rule, src string) {
	t.Helper()
	s := rule.NewState([]byte(src))
	if r(s) && s.C.AtEnd() {
		t.Fatalf("expected %q not to fully match", src)
	}
}

func TestIdent(t *testing.T) {
	matchAll(t, css.Ident, "foo-bar_baz")
	matchAll(t, css.Ident, "--custom-prop")
	matchAll(t, css.Ident, "-moz-foo")
	noMatch(t, css.Ident, "123abc")
}

func TestHexcolor(t *testing.T) {
	matchAll(t, css.Hexcolor, "#fff")
	matchAll(t, css.Hexcolor, "#ABCDEF")
	// unenforced digit count, per spec's open-question resolution.
	matchAll(t, css.Hexcolor, "#12")
}

func TestNumber(t *testing.T) {
	matchAll(t, css.Number, "42")
	matchAll(t, css.Number, "-3.14")
	matchAll(t, css.Number, "+1e10")
	matchAll(t, css.Number, ".5")
}

func TestLength(t *testing.T) {
	matchAll(t, css.Length, "12pt")
	matchAll(t, css.Length, "1.5PX")
	noMatch(t, css.Length, "12")
}

func TestStringToken(t *testing.T) {
	matchAll(t, css.String, `"hello world"`)
	matchAll(t, css.String, `'it\'s'`)
}

func TestURLToken(t *testing.T) {
	matchAll(t, css.URL, `url(foo.png)`)
	matchAll(t, css.URL, `URL( foo.png )`)
}

func TestEncoding(t *testing.T) {
	matchAll(t, css.Encoding, `@charset "utf-8";`)
	// a tab instead of the single literal space must not match.
	noMatch(t, css.Encoding, "@charset\t\"utf-8\";")
}
