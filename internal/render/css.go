package render

import (
	"fmt"
	"io"
	"reflect"

	"github.com/pipe01/lexkit/css"
)

type styleContext struct {
	w *outputWriter
}

// StyleSheet prints a parsed style sheet. Compact output keeps everything on
// one line.
func StyleSheet(w io.Writer, sheet *css.StyleSheet, opts Options) error {
	ctx := styleContext{
		w: newOutputWriter(w, opts.Pretty),
	}

	if err := ctx.visitStatements(sheet.Statements, true); err != nil {
		return err
	}

	return ctx.w.Flush()
}

func (c *styleContext) visitStatements(stmts []css.Statement, top bool) error {
	for i, stmt := range stmts {
		if i > 0 && top {
			c.w.WriteNewLine()
		}

		if err := c.visitStatement(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (c *styleContext) visitStatement(stmt css.Statement) error {
	switch stmt := stmt.(type) {
	case *css.RuleSet:
		c.visitRuleSet(stmt)

	case *css.AtRule:
		return c.visitAtRule(stmt)

	default:
		return fmt.Errorf("unknown statement type %s", reflect.ValueOf(stmt).String())
	}

	return nil
}

func (c *styleContext) visitRuleSet(rs *css.RuleSet) {
	c.w.writeIndentation()

	for i, sel := range rs.Selectors {
		if i > 0 {
			c.w.WriteLiteralUnescaped(",")
			c.w.WriteSpace()
		}
		c.w.WriteLiteralUnescaped(sel.Text)
	}

	c.w.WriteBlockStart()
	c.visitDeclarations(rs.Declarations, false)
	c.w.WriteBlockEnd()
}

func (c *styleContext) visitAtRule(at *css.AtRule) error {
	c.w.writeIndentation()
	c.w.WriteLiteralUnescapedf("@%s", at.Ident)

	if at.Value != "" {
		c.w.WriteLiteralUnescapedf(" %s", at.Value)
	}

	if !at.HasBlock {
		c.w.WriteLiteralUnescaped(";")
		c.w.WriteNewLine()
		return nil
	}

	c.w.WriteBlockStart()
	c.visitDeclarations(at.Declarations, len(at.Block) > 0)
	if err := c.visitStatements(at.Block, false); err != nil {
		return err
	}
	c.w.WriteBlockEnd()

	return nil
}

// trailing forces a semicolon after the last declaration.
func (c *styleContext) visitDeclarations(decls []*css.Declaration, trailing bool) {
	for i, d := range decls {
		c.w.writeIndentation()
		c.w.WriteLiteralUnescapedf("%s:", d.Property)
		c.w.WriteSpace()
		c.w.WriteLiteralUnescaped(d.Value.String())

		if c.w.pretty || trailing || i < len(decls)-1 {
			c.w.WriteLiteralUnescaped(";")
		}
		c.w.WriteNewLine()
	}
}
