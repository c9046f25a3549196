package markup

import (
	"errors"
	"fmt"

	"github.com/pipe01/lexkit/token"
)

// TokenizeError stops the permissive tokenizer, which only happens when the
// input ends inside a construct.
type TokenizeError struct {
	Inner    error
	Location token.Location
}

func (e *TokenizeError) Unwrap() error {
	return e.Inner
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("%s at %s", e.Inner, &e.Location)
}

func (e *TokenizeError) At() token.Location {
	return e.Location
}

// DeserializationError stops the strict XML tokenizer. Index is the offset,
// in characters, of the offending construct.
type DeserializationError struct {
	Inner    error
	Index    int
	Location token.Location
}

func (e *DeserializationError) Unwrap() error {
	return e.Inner
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("%s at %s (index %d)", e.Inner, &e.Location, e.Index)
}

func (e *DeserializationError) At() token.Location {
	return e.Location
}

type UnexpectedEOFError struct {
	Construct string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of file: unclosed %s", e.Construct)
}

type UndeclaredPrefixError struct {
	Prefix string
}

func (e *UndeclaredPrefixError) Error() string {
	return fmt.Sprintf("undeclared namespace prefix %q", e.Prefix)
}

type MismatchedTagError struct {
	Expected token.DataName
	Got      token.DataName
}

func (e *MismatchedTagError) Error() string {
	if e.Expected.IsEmpty() {
		return fmt.Sprintf("unexpected end tag %q", e.Got.String())
	}

	return fmt.Sprintf("expected end tag %q, found %q", e.Expected.String(), e.Got.String())
}

type DuplicateAttributeError struct {
	Name token.DataName
}

func (e *DuplicateAttributeError) Error() string {
	return fmt.Sprintf("duplicate attribute %q", e.Name.Qualified())
}

type UnexpectedRuneError struct {
	Got      rune
	Expected string
}

func (e *UnexpectedRuneError) Error() string {
	return fmt.Sprintf("expected %s, found %q", e.Expected, e.Got)
}

var (
	ErrDocType        = errors.New("document type declaration without internal subset")
	ErrDeclaration    = errors.New("unsupported markup declaration")
	ErrCodeBlock      = errors.New("code blocks are not allowed in XML")
	ErrMissingValue   = errors.New("attribute value must be quoted")
	ErrMissingName    = errors.New("missing element name")
	ErrUnclosedMarkup = errors.New("unescaped '<' in text")
)

type EntityError struct {
	Entity string
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("invalid entity reference %q", e.Entity)
}
