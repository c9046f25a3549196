package render

import (
	"strings"
	"testing"

	"github.com/pipe01/lexkit/css"
	"github.com/pipe01/lexkit/markup"
	"github.com/pipe01/lexkit/token"
	"github.com/pipe01/lexkit/walker"
)

func assert[T comparable](t *testing.T, expected, got T, msg string) {
	t.Helper()

	if got != expected {
		t.Fatalf("%s: expected %v, got %v", msg, expected, got)
	}
}

func collect[K token.Kind](t *testing.T, seq token.Sequence[K]) []token.Token[K] {
	t.Helper()

	tks, err := token.Collect(seq)
	if err != nil {
		t.Fatalf("failed to tokenize: %s", err)
	}
	return tks
}

const styleInput = `a ,b { color : red ; margin:0 }
@import url(x.css);
@media print { p { x: y } }`

func TestStyleSheet(t *testing.T) {
	type testCase struct {
		name     string
		pretty   bool
		expected string
	}

	cases := []testCase{
		{
			name:     "compact",
			expected: "a,b{color:red;margin:0}@import url(x.css);@media print{p{x:y}}",
		},
		{
			name:   "pretty",
			pretty: true,
			expected: "a, b {\n\tcolor: red;\n\tmargin: 0;\n}\n\n" +
				"@import url(x.css);\n\n" +
				"@media print {\n\tp {\n\t\tx: y;\n\t}\n}\n",
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			sheet, err := css.NewParser("test.css", styleInput).StyleSheet()
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}

			var b strings.Builder
			if err := StyleSheet(&b, sheet, Options{Pretty: c.pretty}); err != nil {
				t.Fatalf("failed to render: %s", err)
			}

			assert(t, c.expected, b.String(), "output")
		})
	}
}

func TestStyleSheetRoundTrip(t *testing.T) {
	input := `@font-face { font-family: x; src: url(a.woff) } @media screen { b: c; d e { f: g !important } }`

	first, err := css.NewParser("a.css", input).StyleSheet()
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	var b strings.Builder
	if err := StyleSheet(&b, first, Options{}); err != nil {
		t.Fatalf("failed to render: %s", err)
	}

	second, err := css.NewParser("b.css", b.String()).StyleSheet()
	if err != nil {
		t.Fatalf("failed to parse rendered output: %s", err)
	}

	var b2 strings.Builder
	if err := StyleSheet(&b2, second, Options{}); err != nil {
		t.Fatalf("failed to render: %s", err)
	}

	assert(t, b.String(), b2.String(), "second render")
}

func TestMarkupHTML(t *testing.T) {
	type testCase struct {
		name     string
		input    string
		expected string
	}

	cases := []testCase{
		{
			name:     "entities and void elements",
			input:    `<p class=x>a &amp; b<br></p>`,
			expected: `<p class="x">a &amp; b<br /></p>`,
		},
		{
			name:     "raw text",
			input:    `<script>if (a < b) {}</script>`,
			expected: `<script>if (a < b) {}</script>`,
		},
		{
			name:     "comment",
			input:    `<!-- note --><i>x</i>`,
			expected: `<!-- note --><i>x</i>`,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			tz := &markup.HTMLTokenizer{AutoBalanceTags: true}
			tks := collect(t, tz.GetTokens(c.input))

			var b strings.Builder
			if err := Markup(&b, tks, Options{HTML: true}); err != nil {
				t.Fatalf("failed to render: %s", err)
			}

			assert(t, c.expected, b.String(), "output")
		})
	}
}

func TestMarkupXMLRoundTrip(t *testing.T) {
	input := `<root xmlns="http://a" xmlns:b="http://b"><b:item name="x &amp; y" id="1"/>text &lt; more<!-- c --></root>`

	tz := &markup.XMLTokenizer{}
	first := collect(t, tz.GetTokens(input))

	var b strings.Builder
	if err := Markup(&b, first, Options{}); err != nil {
		t.Fatalf("failed to render: %s", err)
	}

	second := collect(t, tz.GetTokens(b.String()))

	assert(t, len(first), len(second), "token count")
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("token %d: expected %s, got %s", i, first[i], second[i])
		}
	}
}

func TestMarkupCharText(t *testing.T) {
	tks := []markup.Token{
		markup.TokenElementBegin(token.DataName{Local: "p"}),
		markup.TokenText("1 "),
		markup.TokenTextChar('<'),
		markup.TokenText(" 2"),
		markup.TokenElementEnd(),
	}

	var b strings.Builder
	if err := Markup(&b, tks, Options{}); err != nil {
		t.Fatalf("failed to render: %s", err)
	}

	assert(t, "<p>1 &lt; 2</p>", b.String(), "output")
}

func TestMarkupErrors(t *testing.T) {
	cases := map[string][]markup.Token{
		"attribute outside tag": {
			markup.TokenAttribute(token.DataName{Local: "a"}),
		},
		"attribute without value": {
			markup.TokenElementBegin(token.DataName{Local: "a"}),
			markup.TokenAttribute(token.DataName{Local: "b"}),
			markup.TokenElementEnd(),
		},
	}

	for name, tks := range cases {
		tks := tks

		t.Run(name, func(t *testing.T) {
			var b strings.Builder
			if err := Markup(&b, tks, Options{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestTokens(t *testing.T) {
	tks := []walker.Token{
		walker.TokenArrayBegin("array"),
		walker.TokenValue(1),
		walker.TokenNull(),
		walker.TokenArrayEnd(),
	}

	var b strings.Builder
	if err := Tokens(&b, tks); err != nil {
		t.Fatalf("failed to write tokens: %s", err)
	}

	assert(t, "{ ArrayBegin=array }\n{ Value=1 }\n{ Null }\n{ ArrayEnd }\n", b.String(), "output")
}
