package render

import (
	"fmt"
	"io"

	"github.com/pipe01/lexkit/markup"
	"github.com/pipe01/lexkit/token"
)

type markupContext struct {
	w    *outputWriter
	html bool

	// open start tag waiting for attributes
	inTag   bool
	tagVoid bool
	attr    *token.DataName

	decls []string
	open  []token.DataName
}

// Markup writes a markup token stream back out as text.
func Markup(w io.Writer, tokens []markup.Token, opts Options) error {
	ctx := markupContext{
		w:    newOutputWriter(w, false),
		html: opts.HTML,
	}

	for i, t := range tokens {
		if err := ctx.visitToken(t); err != nil {
			return fmt.Errorf("token %d: %w", i, err)
		}
	}

	ctx.closeTag()

	return ctx.w.Flush()
}

func (c *markupContext) visitToken(t markup.Token) error {
	if c.attr != nil {
		if t.Kind != markup.TextValue {
			return fmt.Errorf("expected attribute value, found %s", t)
		}

		c.w.WriteLiteralUnescapedf(` %s="`, c.attr)
		c.w.WriteLiteralEscaped(t.Value.Text())
		c.w.WriteLiteralUnescaped(`"`)
		c.attr = nil

		return nil
	}

	if t.Kind == markup.Attribute {
		if !c.inTag {
			return fmt.Errorf("attribute outside of a start tag")
		}

		name, _ := t.Value.AsName()
		c.attr = &name

		return nil
	}

	c.closeTag()

	switch t.Kind {
	case markup.PrefixBegin:
		prefix, ns, _ := t.Value.AsPrefix()
		if prefix == "" {
			c.decls = append(c.decls, fmt.Sprintf(` %s="%s"`, markup.XMLNamespacePrefix, markup.EscapeText(ns)))
		} else {
			c.decls = append(c.decls, fmt.Sprintf(` %s:%s="%s"`, markup.XMLNamespacePrefix, prefix, markup.EscapeText(ns)))
		}

	case markup.PrefixEnd, markup.None:

	case markup.ElementBegin, markup.ElementVoid:
		name, _ := t.Value.AsName()

		c.w.WriteLiteralUnescapedf("<%s", &name)
		for _, d := range c.decls {
			c.w.WriteLiteralUnescaped(d)
		}
		c.decls = c.decls[:0]

		c.inTag = true
		c.tagVoid = t.Kind == markup.ElementVoid

		if !c.tagVoid {
			c.open = append(c.open, name)
		}

	case markup.ElementEnd:
		name, ok := t.Value.AsName()
		if !ok {
			if len(c.open) == 0 {
				// nothing left to close, the tag name is unknown
				return nil
			}
			name = c.open[len(c.open)-1]
		}

		if len(c.open) > 0 {
			c.open = c.open[:len(c.open)-1]
		}

		c.w.WriteLiteralUnescapedf("</%s>", &name)

	case markup.TextValue:
		if c.rawText() {
			c.w.WriteLiteralUnescaped(t.Value.Text())
		} else {
			c.w.WriteLiteralEscaped(t.Value.Text())
		}

	case markup.Whitespace:
		c.w.WriteLiteralUnescaped(t.Value.Text())

	case markup.UnparsedBlock:
		format, text, _ := t.Value.AsUnparsed()
		c.w.WriteLiteralUnescapedf("<%s>", token.FormatUnparsed(format, text))

	default:
		return fmt.Errorf("unexpected token %s", t)
	}

	return nil
}

func (c *markupContext) closeTag() {
	if !c.inTag {
		return
	}

	if c.tagVoid {
		c.w.WriteLiteralUnescaped(" />")
	} else {
		c.w.WriteLiteralUnescaped(">")
	}

	c.inTag = false
}

func (c *markupContext) rawText() bool {
	if !c.html || len(c.open) == 0 {
		return false
	}

	return markup.IsRawTextElement(c.open[len(c.open)-1].Local)
}
