package markup

import "github.com/pipe01/lexkit/token"

type Kind int

const (
	None Kind = iota

	ElementBegin
	ElementVoid
	ElementEnd

	Attribute
	TextValue
	Whitespace
	UnparsedBlock

	PrefixBegin
	PrefixEnd
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case ElementBegin:
		return "ElementBegin"
	case ElementVoid:
		return "ElementVoid"
	case ElementEnd:
		return "ElementEnd"
	case Attribute:
		return "Attribute"
	case TextValue:
		return "TextValue"
	case Whitespace:
		return "Whitespace"
	case UnparsedBlock:
		return "UnparsedBlock"
	case PrefixBegin:
		return "PrefixBegin"
	case PrefixEnd:
		return "PrefixEnd"
	}

	return "<unknown>"
}

type Token = token.Token[Kind]

const (
	OperatorElementBegin = '<'
	OperatorElementEnd   = '>'
	OperatorElementClose = '/'
	OperatorValueDelim   = '='
	OperatorPrefixDelim  = ':'
	OperatorStringDelim  = '"'
	OperatorStringDelim2 = '\''

	OperatorEntityBegin   = '&'
	OperatorEntityNum     = '#'
	OperatorEntityHex     = 'x'
	OperatorEntityHexAlt  = 'X'
	OperatorEntityEnd     = ';'
	OperatorDeclaration   = '!'
	OperatorInstruction   = '?'
	OperatorCode          = '%'
	OperatorCodeDirective = '@'
	OperatorCodeExpr      = '='
	OperatorCodeDecl      = '!'
	OperatorCodeData      = '#'
	OperatorCodeResource  = '$'

	CommentBegin = "!--"
	CommentEnd   = "-->"
	CDataBegin   = "![CDATA["
	CDataEnd     = "]]>"
	DocTypeBegin = "!DOCTYPE"

	InstructionEnd = "?>"
	CodeEnd        = "%>"
	CodeComment    = "%--"
	CodeCommentEnd = "--%>"

	XMLNamespacePrefix = "xmlns"
	XMLPrefix          = "xml"
	XMLNamespaceURI    = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespaceURI  = "http://www.w3.org/2000/xmlns/"
)

// Formats for unparsed blocks, {0} stands for the inner text.
const (
	FormatComment     = "!--{0}--"
	FormatDeclaration = "!{0}"
	FormatInstruction = "?{0}?"
	FormatExpression  = "?={0}?"

	FormatCode          = "%{0}%"
	FormatCodeComment   = "%--{0}--%"
	FormatCodeDirective = "%@{0}%"
	FormatCodeExpr      = "%={0}%"
	FormatCodeDecl      = "%!{0}%"
	FormatCodeData      = "%#{0}%"
	FormatCodeResource  = "%${0}%"
)

func TokenNone() Token {
	return token.New(None, token.Value{})
}

func TokenElementBegin(name token.DataName) Token {
	return token.New(ElementBegin, token.NameValue(name))
}

func TokenElementVoid(name token.DataName) Token {
	return token.New(ElementVoid, token.NameValue(name))
}

// TokenElementEnd closes the innermost open element without naming it.
func TokenElementEnd() Token {
	return token.New(ElementEnd, token.Value{})
}

func TokenElementEndNamed(name token.DataName) Token {
	return token.New(ElementEnd, token.NameValue(name))
}

func TokenAttribute(name token.DataName) Token {
	return token.New(Attribute, token.NameValue(name))
}

func TokenText(text string) Token {
	return token.New(TextValue, token.StringValue(text))
}

func TokenTextChar(c rune) Token {
	return token.New(TextValue, token.CharValue(c))
}

func TokenWhitespace(text string) Token {
	return token.New(Whitespace, token.StringValue(text))
}

func TokenUnparsed(format, text string) Token {
	return token.New(UnparsedBlock, token.UnparsedValue(format, text))
}

func TokenPrefixBegin(prefix, namespace string) Token {
	return token.New(PrefixBegin, token.PrefixValue(prefix, namespace))
}

func TokenPrefixEnd(prefix, namespace string) Token {
	return token.New(PrefixEnd, token.PrefixValue(prefix, namespace))
}

// Name builds a DataName from a possibly prefixed raw name.
func Name(raw string) token.DataName {
	prefix, local := splitName(raw)

	return token.DataName{
		Local:  local,
		Prefix: prefix,
	}
}

func splitName(raw string) (prefix, local string) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == OperatorPrefixDelim {
			return raw[:i], raw[i+1:]
		}
	}

	return "", raw
}
