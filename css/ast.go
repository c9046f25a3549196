package css

import (
	"strings"

	"github.com/pipe01/lexkit/token"
)

type Pos struct {
	Location token.Location
}

func (p Pos) At() token.Location {
	return p.Location
}

type StyleSheet struct {
	Statements []Statement
}

// Statement is either a *RuleSet or an *AtRule.
type Statement interface {
	At() token.Location
	isStatement()
}

type RuleSet struct {
	Pos

	Selectors    []*Selector
	Declarations []*Declaration
}

func (*RuleSet) isStatement() {}

type AtRule struct {
	Pos

	Ident string
	Value string

	// HasBlock is false for at-rules ended by a semicolon.
	HasBlock bool

	Block        []Statement
	Declarations []*Declaration
}

func (*AtRule) isStatement() {}

type Selector struct {
	Pos

	Text string
}

type Declaration struct {
	Pos

	Property string
	Value    ValueList
}

// Important reports whether the value ends with !important.
func (d *Declaration) Important() bool {
	v := strings.TrimSpace(d.Value.String())
	if len(v) < len(Important) {
		return false
	}

	return strings.EqualFold(v[len(v)-len(Important):], Important)
}

// ValueList holds the raw text of a declaration value.
type ValueList struct {
	Values []string
}

func (v ValueList) String() string {
	return strings.Join(v.Values, " ")
}

// Import returns the target of an @import rule, written either as a string
// or as url(...).
func (a *AtRule) Import() (string, bool) {
	if !strings.EqualFold(a.Ident, "import") {
		return "", false
	}

	v := strings.TrimSpace(a.Value)

	if len(v) > 4 && strings.EqualFold(v[:4], "url(") {
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return "", false
		}

		target := unquote(strings.TrimSpace(v[4:end]))
		return target, target != ""
	}

	if v == "" || (v[0] != OperatorStringDelim && v[0] != OperatorStringDelim2) {
		return "", false
	}

	end := strings.IndexByte(v[1:], v[0])
	if end < 0 {
		return "", false
	}

	target := v[1 : end+1]
	return target, target != ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == OperatorStringDelim || s[0] == OperatorStringDelim2) && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
