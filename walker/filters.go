package walker

import (
	"reflect"
	"time"
)

// Filter lets callers replace the token output for values of specific types.
// TryWrite reports false to let the walker handle the value itself.
type Filter interface {
	TryWrite(v reflect.Value) ([]Token, bool)
}

const ISO8601Layout = "2006-01-02T15:04:05.000Z"

var timeType = reflect.TypeOf(time.Time{})

// DateISO8601Filter writes time.Time values as UTC ISO-8601 strings with
// millisecond precision.
type DateISO8601Filter struct{}

func (DateISO8601Filter) TryWrite(v reflect.Value) ([]Token, bool) {
	if v.Type() != timeType || !v.CanInterface() {
		return nil, false
	}

	t := v.Interface().(time.Time)

	return []Token{TokenValue(t.UTC().Format(ISO8601Layout))}, true
}
