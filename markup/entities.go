package markup

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var xmlEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// lookupEntity decodes a named entity. XML only knows its five predefined
// entities, HTML knows the whole HTML5 table.
func lookupEntity(name string, strict bool) (string, bool) {
	if strict {
		s, ok := xmlEntities[name]
		return s, ok
	}

	ref := "&" + name + ";"

	// Legacy entities like &not decode without their semicolon, so a
	// result still ending in one means only a prefix of name was known.
	decoded := nethtml.UnescapeString(ref)
	if decoded == ref || strings.HasSuffix(decoded, ";") {
		return "", false
	}

	return decoded, true
}

// EscapeText escapes s for use as element text or a quoted attribute value.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

var voidElements = map[atom.Atom]struct{}{
	atom.Area:   {},
	atom.Base:   {},
	atom.Br:     {},
	atom.Col:    {},
	atom.Embed:  {},
	atom.Hr:     {},
	atom.Img:    {},
	atom.Input:  {},
	atom.Link:   {},
	atom.Meta:   {},
	atom.Param:  {},
	atom.Source: {},
	atom.Track:  {},
	atom.Wbr:    {},
}

// IsVoidElement reports whether name is an HTML element that never has
// contents, like br or img.
func IsVoidElement(name string) bool {
	_, ok := voidElements[lookupAtom(name)]
	return ok
}

func IsRawTextElement(name string) bool {
	a := lookupAtom(name)
	return a == atom.Script || a == atom.Style
}

func lookupAtom(name string) atom.Atom {
	return atom.Lookup([]byte(strings.ToLower(name)))
}
