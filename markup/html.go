package markup

import (
	"github.com/pipe01/lexkit/internal/reader"
	"github.com/pipe01/lexkit/token"
)

// HTMLTokenizer is a permissive markup tokenizer. It never fails on malformed
// entities or mismatched tags, only when the input ends inside a construct.
type HTMLTokenizer struct {
	// File is used in error locations.
	File string

	// AutoBalanceTags drops end tags that don't match an open element, closes
	// elements left open at the end of the input and emits known void
	// elements like br as ElementVoid.
	AutoBalanceTags bool

	// SplitWhitespace emits white space only text as Whitespace tokens.
	SplitWhitespace bool
}

func (h *HTMLTokenizer) GetTokens(input string) token.Sequence[Kind] {
	return h.tokenizer(reader.New(h.File, input))
}

func (h *HTMLTokenizer) GetFileTokens(path string) (token.Sequence[Kind], error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}

	return h.tokenizer(r), nil
}

func (h *HTMLTokenizer) tokenizer(r *reader.Reader) *tokenizer {
	t := newTokenizer(r)
	t.autoBalance = h.AutoBalanceTags
	t.splitSpace = h.SplitWhitespace

	return t
}
