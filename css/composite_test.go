package css_test

import (
	"testing"

	"github.com/vibraphone/pegtl-css/css"
	"github.com/vibraphone/pegtl-css/rule"
)

func TestSelectorCompound(t *testing.T) {
	matchAll(t, css.Selector, "div.container#main")
}

func TestSelectorCombinator(t *testing.T) {
	matchAll(t, css.Selector, "ul > li")
	matchAll(t, css.Selector, "h1 + p")
	matchAll(t, css.Selector, "div p")
}

func TestSelectorAttrib(t *testing.T) {
	matchAll(t, css.Selector, `a[href^="https"]`)
}

func TestSelectorPseudo(t *testing.T) {
	matchAll(t, css.Selector, "a:hover")
	matchAll(t, css.Selector, "li:nth-child(2)")
}

func TestDeclaration(t *testing.T) {
	matchAll(t, css.Declaration, "color: red")
	matchAll(t, css.Declaration, "font-size: 12pt !important")
}

func TestDeclarationMissingColonIsFatal(t *testing.T) {
	s := rule.NewState([]byte("color red"))
	if css.Declaration(s) {
		t.Fatal("expected declaration without a colon to fail")
	}
	if s.Fatal == nil {
		t.Fatal("expected the missing colon to be promoted to a fatal error")
	}
}

func TestFunctionTerm(t *testing.T) {
	matchAll(t, css.Term, "rgba(0, 0, 0, 0.5)")
}

func TestMediaFeature(t *testing.T) {
	matchAll(t, css.MediaFeature, "(min-width: 600px)")
	matchAll(t, css.MediaFeature, "(color)")
	matchAll(t, css.MediaFeature, "(400px <= width <= 700px)")
}

func TestMediaCondition(t *testing.T) {
	matchAll(t, css.MediaCondition, "(min-width: 600px) and (max-width: 900px)")
	matchAll(t, css.MediaCondition, "not (color)")
}
