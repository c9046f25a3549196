package walker

import (
	"fmt"

	"github.com/pipe01/lexkit/token"
)

type Kind int

const (
	None Kind = iota

	Null
	False
	True
	Value

	ArrayBegin
	ArrayEnd
	ObjectBegin
	ObjectEnd
	PropertyKey
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Null:
		return "Null"
	case False:
		return "False"
	case True:
		return "True"
	case Value:
		return "Value"
	case ArrayBegin:
		return "ArrayBegin"
	case ArrayEnd:
		return "ArrayEnd"
	case ObjectBegin:
		return "ObjectBegin"
	case ObjectEnd:
		return "ObjectEnd"
	case PropertyKey:
		return "PropertyKey"
	}

	return "<unknown>"
}

type Token = token.Token[Kind]

const (
	LabelArray  = "array"
	LabelObject = "object"
)

func TokenNull() Token {
	return token.New(Null, token.Value{})
}

func TokenFalse() Token {
	return token.New(False, token.Value{})
}

func TokenTrue() Token {
	return token.New(True, token.Value{})
}

func TokenArrayBegin(label string) Token {
	return token.New(ArrayBegin, token.StringValue(label))
}

func TokenArrayEnd() Token {
	return token.New(ArrayEnd, token.Value{})
}

func TokenObjectBegin(label string) Token {
	return token.New(ObjectBegin, token.StringValue(label))
}

func TokenObjectEnd() Token {
	return token.New(ObjectEnd, token.Value{})
}

func TokenProperty(name string) Token {
	return token.New(PropertyKey, token.StringValue(name))
}

// TokenValue wraps a primitive in a Value token. Booleans and nil map to
// their dedicated kinds.
func TokenValue(v any) Token {
	switch v := v.(type) {
	case nil:
		return TokenNull()
	case bool:
		if v {
			return TokenTrue()
		}
		return TokenFalse()
	case token.Value:
		return token.New(Value, v)
	case string:
		return token.New(Value, token.StringValue(v))
	case int:
		return token.New(Value, token.IntValue(int64(v)))
	case int8:
		return token.New(Value, token.IntValue(int64(v)))
	case int16:
		return token.New(Value, token.IntValue(int64(v)))
	case int32:
		return token.New(Value, token.IntValue(int64(v)))
	case int64:
		return token.New(Value, token.IntValue(v))
	case uint:
		return token.New(Value, token.UintValue(uint64(v)))
	case uint8:
		return token.New(Value, token.UintValue(uint64(v)))
	case uint16:
		return token.New(Value, token.UintValue(uint64(v)))
	case uint32:
		return token.New(Value, token.UintValue(uint64(v)))
	case uint64:
		return token.New(Value, token.UintValue(v))
	case float32:
		return token.New(Value, token.FloatValue(float64(v)))
	case float64:
		return token.New(Value, token.FloatValue(v))
	}

	return token.New(Value, token.StringValue(fmt.Sprint(v)))
}
