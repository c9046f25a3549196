package css

import (
	"fmt"

	"github.com/pipe01/lexkit/token"
)

type ParseError struct {
	Inner    error
	Location token.Location
}

func (e *ParseError) Unwrap() error {
	return e.Inner
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s", e.Inner, &e.Location)
}

func (e *ParseError) At() token.Location {
	return e.Location
}

// SyntaxError is a malformed construct the parser recovered from.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// UnexpectedEOFError is raised when the input ends inside a construct. It
// aborts the whole parse.
type UnexpectedEOFError struct {
	Construct string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of file: unclosed %s", e.Construct)
}
