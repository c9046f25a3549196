package token

import (
	"fmt"
	"io"
)

// Kind is implemented by every grammar's token type enumeration.
type Kind interface {
	comparable
	fmt.Stringer
}

// Token is a single tagged unit produced by a tokenizer or walker. Tokens are
// built by grammar factory functions and must not be mutated afterwards.
type Token[K Kind] struct {
	Kind  K
	Value Value
}

func New[K Kind](kind K, value Value) Token[K] {
	return Token[K]{
		Kind:  kind,
		Value: value,
	}
}

func (t Token[K]) Equal(other Token[K]) bool {
	return t.Kind == other.Kind && t.Value.Equal(other.Value)
}

func (t Token[K]) String() string {
	if t.Value.IsNone() {
		return fmt.Sprintf("{ %s }", t.Kind)
	}

	return fmt.Sprintf("{ %s=%s }", t.Kind, t.Value)
}

// Sequence is a pull-based stream of tokens. Next returns io.EOF once the
// stream is exhausted; any other error is fatal and ends the stream.
type Sequence[K Kind] interface {
	Next() (Token[K], error)
}

type SequenceFunc[K Kind] func() (Token[K], error)

func (f SequenceFunc[K]) Next() (Token[K], error) {
	return f()
}

type sliceSequence[K Kind] struct {
	tokens []Token[K]
	index  int
}

// FromSlice returns a sequence yielding the given tokens in order.
func FromSlice[K Kind](tokens []Token[K]) Sequence[K] {
	return &sliceSequence[K]{tokens: tokens}
}

func (s *sliceSequence[K]) Next() (Token[K], error) {
	if s.index >= len(s.tokens) {
		return Token[K]{}, io.EOF
	}

	tk := s.tokens[s.index]
	s.index++

	return tk, nil
}

// Collect drains seq. On a fatal error the tokens produced so far are
// returned along with it.
func Collect[K Kind](seq Sequence[K]) ([]Token[K], error) {
	tks := []Token[K]{}

	for {
		tk, err := seq.Next()
		if err == io.EOF {
			return tks, nil
		}
		if err != nil {
			return tks, err
		}

		tks = append(tks, tk)
	}
}
