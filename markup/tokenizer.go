package markup

import (
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pipe01/lexkit/internal/reader"
	"github.com/pipe01/lexkit/token"
	"golang.org/x/exp/slices"
)

type stateFunc func() stateFunc

type attr struct {
	raw   string
	name  token.DataName
	value string
	pos   int
}

type decl struct {
	prefix, uri string
}

// scope is an open element along with the namespaces it declares.
type scope struct {
	name  token.DataName
	decls []decl
}

// tokenizer is the state machine shared by the HTML and XML tokenizers.
// Tokens are produced on demand and queued until Next hands them out.
type tokenizer struct {
	r *reader.Reader

	strict      bool
	autoBalance bool
	splitSpace  bool

	state   stateFunc
	pending []Token
	err     error

	text   strings.Builder
	scopes []scope
}

func newTokenizer(r *reader.Reader) *tokenizer {
	t := &tokenizer{r: r}
	t.state = t.lexText

	return t
}

func (t *tokenizer) Next() (Token, error) {
	for len(t.pending) == 0 {
		if t.state == nil {
			if t.err != nil {
				return Token{}, t.err
			}
			return Token{}, io.EOF
		}

		t.state = t.state()
	}

	tk := t.pending[0]
	t.pending = t.pending[1:]

	return tk, nil
}

func (t *tokenizer) emit(tks ...Token) {
	t.pending = append(t.pending, tks...)
}

func (t *tokenizer) fail(err error, pos int) stateFunc {
	loc := t.r.LocationAt(pos)

	if t.strict {
		t.err = &DeserializationError{
			Inner:    err,
			Index:    loc.Offset,
			Location: loc,
		}
	} else {
		t.err = &TokenizeError{
			Inner:    err,
			Location: loc,
		}
	}

	return nil
}

func (t *tokenizer) failEOF(construct string, pos int) stateFunc {
	return t.fail(&UnexpectedEOFError{Construct: construct}, pos)
}

func (t *tokenizer) flushText() {
	if t.text.Len() == 0 {
		return
	}

	s := t.text.String()
	t.text.Reset()

	if (t.strict || t.splitSpace) && isWhitespace(s) {
		t.emit(TokenWhitespace(s))
	} else {
		t.emit(TokenText(s))
	}
}

func (t *tokenizer) lexText() stateFunc {
	for {
		c, ok := t.r.Peek()
		if !ok {
			t.flushText()
			return t.lexEOF
		}

		switch c {
		case OperatorElementBegin:
			if t.atMarkup() {
				t.flushText()
				t.r.Read()
				return t.lexMarkup
			}

			if t.strict {
				return t.fail(ErrUnclosedMarkup, t.r.Position()+1)
			}

		case OperatorEntityBegin:
			t.r.Read()
			if !t.lexEntity() {
				return nil
			}
			continue
		}

		t.r.Read()
		t.text.WriteRune(c)
	}
}

// lexEntity handles an entity reference right after its '&'. Strict mode
// decodes it into the current text run, otherwise the decoded text becomes a
// token of its own and malformed references pass through as they were.
func (t *tokenizer) lexEntity() bool {
	start := t.r.Position()
	decoded, ok := t.readEntity()

	if t.strict {
		if !ok {
			t.fail(&EntityError{Entity: t.r.Copy(start, t.r.Position()+1)}, start)
			return false
		}

		t.text.WriteString(decoded)
		return true
	}

	t.flushText()

	if ok {
		t.emit(TokenText(decoded))
	} else {
		t.emit(TokenText(t.r.Copy(start, t.r.Position()+1)))
	}

	return true
}

func (t *tokenizer) readEntity() (string, bool) {
	c, ok := t.r.Peek()
	if !ok {
		return "", false
	}

	if c == OperatorEntityNum {
		t.r.Read()

		hex := false
		if c, ok := t.r.Peek(); ok && (c == OperatorEntityHex || c == OperatorEntityHexAlt) {
			t.r.Read()
			hex = true
		}

		base := 10
		digits := t.readWhile(func(c rune) bool {
			return c >= '0' && c <= '9' || hex && isHexLetter(c)
		})
		if hex {
			base = 16
		}

		if digits == "" {
			return "", false
		}

		n, err := strconv.ParseUint(digits, base, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return "", false
		}

		if c, ok := t.r.Peek(); ok && c == OperatorEntityEnd {
			t.r.Read()
		} else if t.strict {
			return "", false
		}

		if n == 0 {
			// U+0000 cannot be referenced
			return "", false
		}

		return string(rune(n)), true
	}

	name := t.readWhile(func(c rune) bool {
		return c < utf8.RuneSelf && (unicode.IsLetter(c) || unicode.IsDigit(c))
	})
	if name == "" {
		return "", false
	}

	if c, ok := t.r.Peek(); !ok || c != OperatorEntityEnd {
		return "", false
	}

	decoded, ok := lookupEntity(name, t.strict)
	if !ok {
		return "", false
	}
	t.r.Read()

	return decoded, true
}

// entityText reads an entity reference in an attribute value, returning it
// literally when it can't be decoded.
func (t *tokenizer) entityText() (string, bool) {
	start := t.r.Position()

	if decoded, ok := t.readEntity(); ok {
		return decoded, true
	}

	return t.r.Copy(start, t.r.Position()+1), false
}

// atMarkup reports whether the '<' under the cursor starts a tag or another
// markup construct.
func (t *tokenizer) atMarkup() bool {
	state := t.r.State()
	defer t.r.Restore(state)

	t.r.Read()

	c, ok := t.r.Peek()
	if !ok {
		return false
	}

	return isNameStart(c) ||
		c == OperatorElementClose ||
		c == OperatorDeclaration ||
		c == OperatorInstruction ||
		c == OperatorCode
}

func (t *tokenizer) lexMarkup() stateFunc {
	start := t.r.Position()

	switch {
	case t.r.HasPrefix(CommentBegin):
		t.r.Skip(len(CommentBegin))

		text, ok := t.r.ReadUntil(CommentEnd)
		if !ok {
			return t.failEOF("comment", start)
		}

		t.emit(TokenUnparsed(FormatComment, text))

	case t.r.HasPrefix(CDataBegin):
		t.r.Skip(len(CDataBegin))

		text, ok := t.r.ReadUntil(CDataEnd)
		if !ok {
			return t.failEOF("CDATA section", start)
		}

		t.emit(TokenText(text))

	default:
		c, _ := t.r.Peek()

		switch c {
		case OperatorDeclaration:
			return t.lexDeclaration(start)
		case OperatorInstruction:
			return t.lexInstruction(start)
		case OperatorCode:
			return t.lexCode(start)
		case OperatorElementClose:
			t.r.Read()
			return t.lexEndTag(start)
		}

		return t.lexStartTag(start)
	}

	return t.lexText
}

func (t *tokenizer) lexDeclaration(start int) stateFunc {
	t.r.Read()

	var b strings.Builder
	var quote rune
	depth := 0

	for {
		c, ok := t.r.Peek()
		if !ok {
			return t.failEOF("declaration", start)
		}
		t.r.Read()

		if quote != 0 {
			if c == quote {
				quote = 0
			}
		} else if c == OperatorStringDelim || c == OperatorStringDelim2 {
			quote = c
		} else if c == '[' {
			depth++
		} else if c == ']' && depth > 0 {
			depth--
		} else if c == OperatorElementEnd && depth == 0 {
			break
		}

		b.WriteRune(c)
	}

	body := b.String()

	if t.strict {
		if !strings.HasPrefix(strings.ToUpper(body), DocTypeBegin[1:]) {
			return t.fail(ErrDeclaration, start)
		}
		if !strings.ContainsRune(body, '[') {
			return t.fail(ErrDocType, start)
		}
	}

	t.emit(TokenUnparsed(FormatDeclaration, body))

	return t.lexText
}

func (t *tokenizer) lexInstruction(start int) stateFunc {
	t.r.Read()

	format := FormatInstruction
	if c, ok := t.r.Peek(); ok && c == OperatorCodeExpr {
		t.r.Read()
		format = FormatExpression
	}

	text, ok := t.r.ReadUntil(InstructionEnd)
	if !ok {
		return t.failEOF("processing instruction", start)
	}

	t.emit(TokenUnparsed(format, text))

	return t.lexText
}

var codeFormats = map[rune]string{
	OperatorCodeDirective: FormatCodeDirective,
	OperatorCodeExpr:      FormatCodeExpr,
	OperatorCodeDecl:      FormatCodeDecl,
	OperatorCodeData:      FormatCodeData,
	OperatorCodeResource:  FormatCodeResource,
}

func (t *tokenizer) lexCode(start int) stateFunc {
	if t.strict {
		return t.fail(ErrCodeBlock, start)
	}

	if t.r.HasPrefix(CodeComment) {
		t.r.Skip(len(CodeComment))

		text, ok := t.r.ReadUntil(CodeCommentEnd)
		if !ok {
			return t.failEOF("code block", start)
		}

		t.emit(TokenUnparsed(FormatCodeComment, text))
		return t.lexText
	}

	t.r.Read()

	format := FormatCode
	if c, ok := t.r.Peek(); ok {
		if f, ok := codeFormats[c]; ok {
			t.r.Read()
			format = f
		}
	}

	text, ok := t.r.ReadUntil(CodeEnd)
	if !ok {
		return t.failEOF("code block", start)
	}

	t.emit(TokenUnparsed(format, text))

	return t.lexText
}

func (t *tokenizer) lexStartTag(start int) stateFunc {
	raw := t.readName()
	if raw == "" {
		return t.fail(ErrMissingName, start+1)
	}

	attrs, void, ok := t.readAttributes(start)
	if !ok {
		return nil
	}

	return t.openElement(raw, attrs, void, start)
}

func (t *tokenizer) readAttributes(start int) (attrs []attr, void bool, ok bool) {
	for {
		t.skipWhitespace()

		c, ok := t.r.Peek()
		if !ok {
			t.failEOF("tag", start)
			return nil, false, false
		}

		if c == OperatorElementEnd {
			t.r.Read()
			return attrs, false, true
		}
		if t.r.HasPrefix("/>") {
			t.r.Skip(2)
			return attrs, true, true
		}

		pos := t.r.Position() + 1

		raw := t.readName()
		if raw == "" {
			if t.strict {
				t.fail(&UnexpectedRuneError{Got: c, Expected: "attribute name"}, pos)
				return nil, false, false
			}

			t.r.Read()
			continue
		}

		t.skipWhitespace()

		value := ""
		if c, ok := t.r.Peek(); ok && c == OperatorValueDelim {
			t.r.Read()
			t.skipWhitespace()

			if value, ok = t.readAttributeValue(start, pos); !ok {
				return nil, false, false
			}
		} else if t.strict {
			t.fail(ErrMissingValue, pos)
			return nil, false, false
		}

		attrs = append(attrs, attr{
			raw:   raw,
			value: value,
			pos:   pos,
		})
	}
}

func (t *tokenizer) readAttributeValue(start, pos int) (string, bool) {
	c, ok := t.r.Peek()
	if !ok {
		t.failEOF("tag", start)
		return "", false
	}

	var b strings.Builder

	if c != OperatorStringDelim && c != OperatorStringDelim2 {
		if t.strict {
			t.fail(ErrMissingValue, pos)
			return "", false
		}

		for {
			c, ok := t.r.Peek()
			if !ok || unicode.IsSpace(c) || c == OperatorElementEnd || t.r.HasPrefix("/>") {
				return b.String(), true
			}
			t.r.Read()

			if c == OperatorEntityBegin {
				text, _ := t.entityText()
				b.WriteString(text)
				continue
			}

			b.WriteRune(c)
		}
	}

	quote := c
	t.r.Read()

	for {
		c, ok := t.r.Peek()
		if !ok {
			t.failEOF("attribute value", start)
			return "", false
		}
		t.r.Read()

		switch {
		case c == quote:
			return b.String(), true

		case c == OperatorEntityBegin:
			text, ok := t.entityText()
			if !ok && t.strict {
				t.fail(&EntityError{Entity: text}, t.r.Position())
				return "", false
			}
			b.WriteString(text)
			continue

		case t.strict && (c == '\t' || c == '\n' || c == '\r'):
			c = ' '
		}

		b.WriteRune(c)
	}
}

func (t *tokenizer) openElement(raw string, attrs []attr, void bool, start int) stateFunc {
	var sc scope
	plain := make([]attr, 0, len(attrs))

	for _, a := range attrs {
		switch {
		case a.raw == XMLNamespacePrefix:
			sc.decls = append(sc.decls, decl{"", a.value})

		case strings.HasPrefix(a.raw, XMLNamespacePrefix+":"):
			sc.decls = append(sc.decls, decl{a.raw[len(XMLNamespacePrefix)+1:], a.value})

		default:
			plain = append(plain, a)
		}
	}

	t.scopes = append(t.scopes, sc)

	name, ok := t.resolve(raw, true, start+1)
	if !ok {
		return nil
	}
	t.scopes[len(t.scopes)-1].name = name

	for i := range plain {
		if plain[i].name, ok = t.resolve(plain[i].raw, false, plain[i].pos); !ok {
			return nil
		}

		if !t.strict {
			continue
		}

		for _, prev := range plain[:i] {
			if prev.name.Equal(plain[i].name) {
				return t.fail(&DuplicateAttributeError{Name: plain[i].name}, plain[i].pos)
			}
		}
	}

	if t.strict {
		for _, d := range sc.decls {
			t.emit(TokenPrefixBegin(d.prefix, d.uri))
		}

		slices.SortStableFunc(plain, func(a, b attr) int {
			if c := strings.Compare(a.name.Local, b.name.Local); c != 0 {
				return c
			}
			return strings.Compare(a.name.Namespace, b.name.Namespace)
		})
	}

	switch {
	case void && t.strict:
		t.emit(TokenElementBegin(name))
		t.emitAttributes(plain)
		t.closeTop()

	case void || t.autoBalance && IsVoidElement(name.Local):
		t.emit(TokenElementVoid(name))
		t.emitAttributes(plain)
		t.scopes = t.scopes[:len(t.scopes)-1]

	default:
		t.emit(TokenElementBegin(name))
		t.emitAttributes(plain)

		if !t.strict && IsRawTextElement(name.Local) {
			return t.lexRawText(name.Local)
		}
	}

	return t.lexText
}

func (t *tokenizer) emitAttributes(attrs []attr) {
	for _, a := range attrs {
		t.emit(TokenAttribute(a.name), TokenText(a.value))
	}
}

// lexRawText reads the contents of elements like script whose text is not
// markup, up to their end tag.
func (t *tokenizer) lexRawText(name string) stateFunc {
	return func() stateFunc {
		for {
			c, ok := t.r.Peek()
			if !ok {
				t.flushText()
				return t.lexEOF
			}

			if c == OperatorElementBegin && t.atEndTag(name) {
				t.flushText()
				return t.lexText
			}

			t.r.Read()
			t.text.WriteRune(c)
		}
	}
}

func (t *tokenizer) atEndTag(name string) bool {
	state := t.r.State()
	defer t.r.Restore(state)

	if !t.r.Skip(2) || t.r.Copy(t.r.Position()-1, t.r.Position()+1) != "</" {
		return false
	}

	start := t.r.Position() + 1
	if !t.r.Skip(utf8.RuneCountInString(name)) {
		return false
	}

	return strings.EqualFold(t.r.Copy(start, t.r.Position()+1), name)
}

func (t *tokenizer) lexEndTag(start int) stateFunc {
	pos := t.r.Position() + 1
	raw := t.readName()

	if raw == "" && t.strict {
		return t.fail(ErrMissingName, pos)
	}

	for {
		c, ok := t.r.Peek()
		if !ok {
			return t.failEOF("end tag", start)
		}
		t.r.Read()

		if c == OperatorElementEnd {
			break
		}
		if t.strict && !unicode.IsSpace(c) {
			return t.fail(&UnexpectedRuneError{Got: c, Expected: "'>'"}, t.r.Position())
		}
	}

	if t.strict {
		return t.closeStrict(raw, pos)
	}

	return t.closePermissive(raw, pos)
}

func (t *tokenizer) closeStrict(raw string, pos int) stateFunc {
	if len(t.scopes) == 0 {
		return t.fail(&MismatchedTagError{Got: Name(raw)}, pos)
	}

	name, ok := t.resolve(raw, true, pos)
	if !ok {
		return nil
	}

	top := t.scopes[len(t.scopes)-1]
	if !name.Equal(top.name) {
		return t.fail(&MismatchedTagError{Expected: top.name, Got: name}, pos)
	}

	t.closeTop()

	return t.lexText
}

// closeTop ends the innermost element along with its namespace scope.
func (t *tokenizer) closeTop() {
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]

	t.emit(TokenElementEndNamed(top.name))

	for _, d := range top.decls {
		t.emit(TokenPrefixEnd(d.prefix, d.uri))
	}
}

func (t *tokenizer) closePermissive(raw string, pos int) stateFunc {
	name, _ := t.resolve(raw, true, pos)

	idx := -1
	for i := len(t.scopes) - 1; i >= 0; i-- {
		open := t.scopes[i].name

		if strings.EqualFold(open.Local, name.Local) && open.Namespace == name.Namespace {
			idx = i
			break
		}
	}

	if !t.autoBalance {
		t.emit(TokenElementEnd())

		if idx >= 0 {
			t.scopes = t.scopes[:idx]
		}
		return t.lexText
	}

	if idx < 0 {
		return t.lexText
	}

	for i := len(t.scopes) - 1; i >= idx; i-- {
		t.emit(TokenElementEnd())
	}
	t.scopes = t.scopes[:idx]

	return t.lexText
}

func (t *tokenizer) lexEOF() stateFunc {
	if t.strict && len(t.scopes) > 0 {
		top := t.scopes[len(t.scopes)-1]
		return t.failEOF("element "+top.name.String(), t.r.Length())
	}

	if t.autoBalance {
		for range t.scopes {
			t.emit(TokenElementEnd())
		}
		t.scopes = nil
	}

	return nil
}

// resolve binds the prefix of raw to the namespace declared by the closest
// enclosing scope. Unprefixed attributes never take the default namespace.
func (t *tokenizer) resolve(raw string, element bool, pos int) (token.DataName, bool) {
	name := Name(raw)

	if name.Prefix == "" && !element {
		return name, true
	}

	uri, ok := t.lookup(name.Prefix)
	if !ok && t.strict {
		t.fail(&UndeclaredPrefixError{Prefix: name.Prefix}, pos+utf8.RuneCountInString(name.Prefix))
		return name, false
	}

	name.Namespace = uri
	return name, true
}

func (t *tokenizer) lookup(prefix string) (string, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		decls := t.scopes[i].decls

		for j := len(decls) - 1; j >= 0; j-- {
			if decls[j].prefix == prefix {
				return decls[j].uri, true
			}
		}
	}

	switch prefix {
	case "":
		return "", true
	case XMLPrefix:
		return XMLNamespaceURI, true
	case XMLNamespacePrefix:
		return XMLNSNamespaceURI, true
	}

	return "", false
}

func (t *tokenizer) readName() string {
	return t.readWhile(isNameChar)
}

func (t *tokenizer) readWhile(fn func(rune) bool) string {
	start := t.r.Position() + 1

	for {
		c, ok := t.r.Peek()
		if !ok || !fn(c) {
			break
		}
		t.r.Read()
	}

	return t.r.Copy(start, t.r.Position()+1)
}

func (t *tokenizer) skipWhitespace() {
	t.readWhile(unicode.IsSpace)
}

func isNameStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c == OperatorPrefixDelim
}

func isNameChar(c rune) bool {
	switch c {
	case OperatorElementBegin, OperatorElementEnd, OperatorElementClose, OperatorValueDelim,
		OperatorStringDelim, OperatorStringDelim2:
		return false
	}

	return !unicode.IsSpace(c)
}

func isHexLetter(c rune) bool {
	return c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isWhitespace(s string) bool {
	for _, c := range s {
		if !unicode.IsSpace(c) {
			return false
		}
	}

	return true
}
