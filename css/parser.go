package css

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pipe01/lexkit/internal/reader"
	"github.com/pipe01/lexkit/token"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lexkit.css")

// Parser reads a single style sheet. The tree is parsed on the first call to
// StyleSheet or Errors and cached for the lifetime of the parser.
type Parser struct {
	file string
	open func() (*reader.Reader, error)

	once   sync.Once
	parses int
	sheet  *StyleSheet
	err    error
	errs   []*ParseError

	r     *reader.Reader
	depth int
}

func readerOptions() []reader.Option {
	return []reader.Option{
		reader.Filter(CommentBegin, CommentEnd),
		reader.NormalizeWhiteSpace(),
	}
}

func NewParser(file, source string) *Parser {
	return &Parser{
		file: file,
		open: func() (*reader.Reader, error) {
			return reader.New(file, source, readerOptions()...), nil
		},
	}
}

// NewFileParser reads the style sheet from path once it is first needed.
func NewFileParser(path string) *Parser {
	return &Parser{
		file: path,
		open: func() (*reader.Reader, error) {
			return reader.Open(path, readerOptions()...)
		},
	}
}

func (p *Parser) File() string {
	return p.file
}

// StyleSheet returns the parsed tree. When the input ends inside a construct
// the error is returned along with every statement completed before it.
func (p *Parser) StyleSheet() (*StyleSheet, error) {
	p.once.Do(func() {
		p.sheet, p.err = p.parse()
	})

	return p.sheet, p.err
}

// Errors returns the recoverable errors found while parsing, in source order.
func (p *Parser) Errors() []*ParseError {
	p.StyleSheet()

	return p.errs
}

func (p *Parser) parse() (*StyleSheet, error) {
	p.parses++

	r, err := p.open()
	if err != nil {
		return nil, err
	}

	p.r = r
	defer func() { p.r = nil }()

	sheet := &StyleSheet{}
	err = p.parseStyleSheet(sheet)

	return sheet, err
}

func (p *Parser) parseStyleSheet(sheet *StyleSheet) error {
	for {
		p.skipWhitespace()

		c, ok := p.r.Peek()
		if !ok {
			return nil
		}

		switch {
		case p.r.HasPrefix(CDO):
			p.r.Skip(len(CDO))
			continue

		case p.r.HasPrefix(CDC):
			p.r.Skip(len(CDC))
			continue

		case c == OperatorBlockEnd:
			p.r.Read()
			p.addError("unexpected '}'", p.r.Location())
			continue

		case c == OperatorRuleEnd:
			p.r.Read()
			continue
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return err
		}
		if stmt != nil {
			sheet.Statements = append(sheet.Statements, stmt)
		}
	}
}

func (p *Parser) parseStatement() (Statement, error) {
	if c, _ := p.r.Peek(); c == OperatorAtRule {
		p.r.Read()

		at, err := p.parseAtRule()
		if at == nil {
			return nil, err
		}
		return at, err
	}

	rs, err := p.parseRuleSet()
	if rs == nil {
		return nil, err
	}
	return rs, err
}

func (p *Parser) parseAtRule() (*AtRule, error) {
	loc := p.r.Location()

	ident := p.readWhile(isIdentChar)
	if ident == "" {
		p.addError("invalid at-rule name", loc)
		return nil, p.skipStatement(loc)
	}

	p.skipWhitespace()

	value, stop, ok := p.scanTo("{;}")
	if !ok {
		return nil, p.eofError("at-rule", loc)
	}

	at := &AtRule{
		Pos:   Pos{loc},
		Ident: ident,
		Value: collapse(value),
	}

	switch stop {
	case OperatorRuleEnd:
		return at, nil

	case OperatorBlockEnd:
		p.addError("unclosed at-rule", loc)
		if p.depth > 0 {
			p.r.PutBack()
		}
		return nil, nil
	}

	at.HasBlock = true

	p.depth++
	err := p.parseBlock(at, p.r.Location())
	p.depth--

	if err != nil {
		return nil, err
	}

	return at, nil
}

func (p *Parser) parseBlock(at *AtRule, start token.Location) error {
	for {
		p.skipWhitespace()

		c, ok := p.r.Peek()
		if !ok {
			return p.eofError("block", start)
		}

		switch c {
		case OperatorBlockEnd:
			p.r.Read()
			return nil

		case OperatorRuleEnd:
			p.r.Read()
			continue
		}

		if c == OperatorAtRule || p.nextIsRuleSet() {
			stmt, err := p.parseStatement()
			if err != nil {
				return err
			}
			if stmt != nil {
				at.Block = append(at.Block, stmt)
			}
			continue
		}

		decl, stop, err := p.parseDeclaration()
		if err != nil {
			return err
		}
		if decl != nil {
			at.Declarations = append(at.Declarations, decl)
		}

		switch stop {
		case OperatorBlockEnd:
			return nil

		case OperatorBlockBegin:
			if err := p.skipBlock(1, start); err != nil {
				return err
			}
		}
	}
}

// nextIsRuleSet looks ahead to tell a nested rule set from a declaration.
func (p *Parser) nextIsRuleSet() bool {
	state := p.r.State()
	defer p.r.Restore(state)

	_, stop, ok := p.scanTo("{;}")

	return ok && stop == OperatorBlockBegin
}

// resync is the recovery point a production jumps to after a syntax error.
type resync int

const (
	// ',' seen, try the next selector
	resyncSelector resync = iota
	// '{' seen, start reading declarations
	resyncDeclarations
	// ';' seen, try the next declaration
	resyncDeclaration
	// '}' seen, the enclosing rule set is done
	resyncRuleEnd
	// the statement cannot be recovered
	resyncAbort
)

func (p *Parser) parseRuleSet() (*RuleSet, error) {
	rs := &RuleSet{
		Pos: Pos{p.r.NextLocation()},
	}

	next := resyncSelector
	for next == resyncSelector {
		p.skipWhitespace()
		loc := p.r.NextLocation()

		text, stop, ok := p.scanTo(",{;}")
		if !ok {
			return nil, p.eofError("selector", loc)
		}

		text = collapse(text)

		switch stop {
		case OperatorSelectorNext:
			if text == "" {
				p.addError("expected selector before ','", loc)
				continue
			}

		case OperatorBlockBegin:
			next = resyncDeclarations

			if text == "" {
				if len(rs.Selectors) == 0 {
					p.addError("rule set missing selector", loc)
				} else {
					p.addError("expected selector after ','", loc)
				}
				continue
			}

		default:
			p.addError("error parsing selectors", loc)

			if stop == OperatorBlockEnd && p.depth > 0 {
				p.r.PutBack()
			}
			return nil, nil
		}

		rs.Selectors = append(rs.Selectors, &Selector{
			Pos:  Pos{loc},
			Text: text,
		})
	}

	block := p.r.Location()

	for next == resyncDeclarations || next == resyncDeclaration {
		p.skipWhitespace()

		c, ok := p.r.Peek()
		if !ok {
			return nil, p.eofError("rule set", block)
		}

		switch c {
		case OperatorBlockEnd:
			p.r.Read()
			next = resyncRuleEnd
			continue

		case OperatorRuleEnd:
			p.r.Read()
			continue
		}

		decl, stop, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			rs.Declarations = append(rs.Declarations, decl)
		}

		switch stop {
		case OperatorRuleEnd:
			next = resyncDeclaration

		case OperatorBlockEnd:
			next = resyncRuleEnd

		case OperatorBlockBegin:
			if err := p.skipBlock(2, block); err != nil {
				return nil, err
			}
			next = resyncAbort
		}
	}

	if next == resyncAbort || len(rs.Selectors) == 0 {
		return nil, nil
	}

	return rs, nil
}

// parseDeclaration reads "property: value" and returns the character that
// ended it, one of ';', '{' or '}'.
func (p *Parser) parseDeclaration() (*Declaration, rune, error) {
	loc := p.r.NextLocation()

	prop := p.readProperty()
	p.skipWhitespace()

	c, ok := p.r.Peek()
	if !ok {
		return nil, 0, p.eofError("declaration", loc)
	}

	if prop == "" {
		if c == OperatorValueDelim {
			return p.resyncDeclaration("declaration missing property name", loc)
		}
		return p.resyncDeclaration("invalid property name: "+string(c), loc)
	}
	if c != OperatorValueDelim {
		return p.resyncDeclaration("expected <property> : <value>", loc)
	}

	p.r.Read()
	p.skipWhitespace()
	valueLoc := p.r.NextLocation()

	value, stop, ok := p.scanTo(";{}")
	if !ok {
		return nil, 0, p.eofError("declaration", loc)
	}

	if stop == OperatorBlockBegin {
		p.addError("invalid char in property value: '{'", p.r.Location())
		return nil, stop, nil
	}

	value = collapse(value)
	if value == "" {
		p.addError("invalid property value: "+prop, valueLoc)
		return nil, stop, nil
	}

	return &Declaration{
		Pos:      Pos{loc},
		Property: prop,
		Value:    ValueList{Values: []string{value}},
	}, stop, nil
}

func (p *Parser) resyncDeclaration(msg string, loc token.Location) (*Declaration, rune, error) {
	p.addError(msg, loc)

	_, stop, ok := p.scanTo(";{}")
	if !ok {
		return nil, 0, p.eofError("declaration", loc)
	}

	return nil, stop, nil
}

// skipStatement discards the rest of a statement that could not be parsed.
func (p *Parser) skipStatement(loc token.Location) error {
	_, stop, ok := p.scanTo(";{}")
	if !ok {
		return nil
	}

	switch stop {
	case OperatorBlockBegin:
		return p.skipBlock(1, loc)

	case OperatorBlockEnd:
		if p.depth > 0 {
			p.r.PutBack()
		}
	}

	return nil
}

// skipBlock reads until depth open blocks have been closed.
func (p *Parser) skipBlock(depth int, loc token.Location) error {
	for depth > 0 {
		_, stop, ok := p.scanTo("{}")
		if !ok {
			return p.eofError("block", loc)
		}

		if stop == OperatorBlockBegin {
			depth++
		} else {
			depth--
		}
	}

	return nil
}

// scanTo reads until one of stops appears outside strings and parentheses,
// consumes it and returns the text before it. Braces always stop the scan.
func (p *Parser) scanTo(stops string) (string, rune, bool) {
	var b strings.Builder
	nesting := 0

	for {
		c, ok := p.r.Peek()
		if !ok {
			return b.String(), 0, false
		}
		p.r.Read()

		switch {
		case c == OperatorStringDelim || c == OperatorStringDelim2:
			b.WriteRune(c)
			if !p.readString(&b, c) {
				return b.String(), 0, false
			}
			continue

		case c == OperatorEscape:
			b.WriteRune(c)
			if n, ok := p.r.Peek(); ok {
				p.r.Read()
				b.WriteRune(n)
			}
			continue

		case c == '(' || c == '[':
			nesting++

		case (c == ')' || c == ']') && nesting > 0:
			nesting--

		case (nesting == 0 || c == OperatorBlockBegin || c == OperatorBlockEnd) && strings.ContainsRune(stops, c):
			return b.String(), c, true
		}

		b.WriteRune(c)
	}
}

func (p *Parser) readString(b *strings.Builder, quote rune) bool {
	for {
		c, ok := p.r.Peek()
		if !ok {
			return false
		}
		p.r.Read()
		b.WriteRune(c)

		switch c {
		case quote:
			return true

		case OperatorEscape:
			if n, ok := p.r.Peek(); ok {
				p.r.Read()
				b.WriteRune(n)
			}
		}
	}
}

func (p *Parser) readWhile(fn func(rune) bool) string {
	start := p.r.Position() + 1

	for {
		c, ok := p.r.Peek()
		if !ok || !fn(c) {
			break
		}
		p.r.Read()
	}

	return p.r.Copy(start, p.r.Position()+1)
}

func (p *Parser) readProperty() string {
	start := p.r.Position() + 1

	// IE star and underscore hacks
	if c, ok := p.r.Peek(); ok && (c == '*' || c == '_') {
		p.r.Read()
	}
	p.readWhile(isIdentChar)

	return p.r.Copy(start, p.r.Position()+1)
}

func (p *Parser) skipWhitespace() {
	for {
		c, ok := p.r.Peek()
		if !ok || !unicode.IsSpace(c) {
			return
		}
		p.r.Read()
	}
}

func (p *Parser) addError(msg string, loc token.Location) {
	err := &ParseError{
		Inner:    &SyntaxError{Message: msg},
		Location: loc,
	}

	log.Debugf("recovered from %s", err)
	p.errs = append(p.errs, err)
}

func (p *Parser) eofError(construct string, loc token.Location) error {
	return &ParseError{
		Inner:    &UnexpectedEOFError{Construct: construct},
		Location: loc,
	}
}

func isIdentChar(c rune) bool {
	return c == '-' || c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// collapse trims s and turns runs of white space outside strings into a
// single space.
func collapse(s string) string {
	var b strings.Builder
	var quote rune
	space := false

	for _, c := range strings.TrimSpace(s) {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

		case c == OperatorStringDelim || c == OperatorStringDelim2:
			quote = c

		case unicode.IsSpace(c):
			space = true
			continue
		}

		if space {
			b.WriteRune(' ')
			space = false
		}
		b.WriteRune(c)
	}

	return b.String()
}
