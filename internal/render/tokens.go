package render

import (
	"io"

	"github.com/pipe01/lexkit/token"
)

// Tokens writes one token per line.
func Tokens[K token.Kind](w io.Writer, tokens []token.Token[K]) error {
	ow := newOutputWriter(w, true)

	for _, t := range tokens {
		ow.WriteLiteralUnescaped(t.String())
		ow.WriteNewLine()
	}

	return ow.Flush()
}
