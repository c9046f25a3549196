package markup

import (
	"github.com/pipe01/lexkit/internal/reader"
	"github.com/pipe01/lexkit/token"
)

// XMLTokenizer is a strict namespace aware tokenizer. Namespace declarations
// surface as PrefixBegin and PrefixEnd tokens around the element declaring
// them, and any violation stops the stream with a *DeserializationError.
//
// The attributes of an element are emitted sorted by local name and then by
// namespace, not in source order.
type XMLTokenizer struct {
	// File is used in error locations.
	File string
}

func (x *XMLTokenizer) GetTokens(input string) token.Sequence[Kind] {
	return x.tokenizer(reader.New(x.File, input, reader.NormalizeLineBreaks()))
}

func (x *XMLTokenizer) GetFileTokens(path string) (token.Sequence[Kind], error) {
	r, err := reader.Open(path, reader.NormalizeLineBreaks())
	if err != nil {
		return nil, err
	}

	return x.tokenizer(r), nil
}

func (x *XMLTokenizer) tokenizer(r *reader.Reader) *tokenizer {
	t := newTokenizer(r)
	t.strict = true

	return t
}
