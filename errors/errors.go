package errors

import (
	goerrors "errors"

	"github.com/pipe01/lexkit/token"
)

// SituatedErr is implemented by every error that points at a place in the
// source being read.
type SituatedErr interface {
	Unwrap() error
	At() token.Location
}

// Locate returns the location of the first situated error in err's chain.
func Locate(err error) (token.Location, bool) {
	var serr SituatedErr

	if goerrors.As(err, &serr) {
		return serr.At(), true
	}

	return token.Location{}, false
}

// Message returns the message of err without its location suffix.
func Message(err error) string {
	var serr SituatedErr

	if goerrors.As(err, &serr) {
		return serr.Unwrap().Error()
	}

	return err.Error()
}
