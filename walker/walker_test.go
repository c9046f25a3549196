package walker

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pipe01/lexkit/token"
)

func assert[T comparable](t *testing.T, expected, got T, msg string) {
	t.Helper()

	if got != expected {
		t.Fatalf("%s: expected %v, got %v", msg, expected, got)
	}
}

func assertTokens(t *testing.T, expected, got []Token) {
	t.Helper()

	if len(expected) != len(got) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(got), got)
	}

	for i := range expected {
		if !expected[i].Equal(got[i]) {
			t.Fatalf("token %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func walkAll(t *testing.T, settings *Settings, v any) ([]Token, error) {
	t.Helper()

	w, err := New(settings)
	if err != nil {
		t.Fatalf("failed to create walker: %s", err)
	}

	seq, err := w.GetTokens(v)
	if err != nil {
		t.Fatalf("failed to start walk: %s", err)
	}

	return token.Collect(seq)
}

type Person struct {
	Name     string
	Father   *Person
	Mother   *Person
	Children []*Person
}

func family() *Person {
	p := &Person{
		Name:   "John, Jr.",
		Father: &Person{Name: "John, Sr."},
		Mother: &Person{Name: "Sally"},
	}

	// both parents point back at the child
	p.Father.Children = []*Person{p}
	p.Mother.Children = p.Father.Children

	return p
}

func nested(depth int) any {
	var v any = "Too deep"
	for i := 0; i < depth; i++ {
		v = []any{v}
	}
	return v
}

type tagged struct {
	ID       int    `json:"id"`
	Skipped  string `json:"-"`
	Optional string `json:"optional,omitempty"`
	Plain    bool
	hidden   int
}

type Base struct {
	ID int
}

type hidden struct {
	Code string
}

type Record struct {
	Base
	hidden
	Name string
}

type shadowed struct {
	Base
	ID string
}

type optionalBase struct {
	*Base
	Name string
}

type namedBase struct {
	Base `json:"base"`
}

type stamped struct {
	At time.Time
}

func TestTokens(t *testing.T) {
	type testCase struct {
		name     string
		input    any
		expected []Token
	}

	cases := []testCase{
		{
			name:     "nil",
			input:    nil,
			expected: []Token{TokenNull()},
		},
		{
			name:     "true",
			input:    true,
			expected: []Token{TokenTrue()},
		},
		{
			name:     "false",
			input:    false,
			expected: []Token{TokenFalse()},
		},
		{
			name:     "int",
			input:    42,
			expected: []Token{TokenValue(42)},
		},
		{
			name:     "uint",
			input:    uint16(7),
			expected: []Token{TokenValue(uint64(7))},
		},
		{
			name:     "float32 widened",
			input:    float32(0.5),
			expected: []Token{TokenValue(0.5)},
		},
		{
			name:     "NaN",
			input:    math.NaN(),
			expected: []Token{TokenValue(math.NaN())},
		},
		{
			name:     "positive infinity",
			input:    math.Inf(1),
			expected: []Token{TokenValue(math.Inf(1))},
		},
		{
			name:     "negative infinity",
			input:    math.Inf(-1),
			expected: []Token{TokenValue(math.Inf(-1))},
		},
		{
			name:     "string",
			input:    "hello",
			expected: []Token{TokenValue("hello")},
		},
		{
			name:     "rune is an int",
			input:    'a',
			expected: []Token{TokenValue(97)},
		},
		{
			name:     "empty array",
			input:    []any{},
			expected: []Token{TokenArrayBegin("array"), TokenArrayEnd()},
		},
		{
			name:     "nil slice",
			input:    []int(nil),
			expected: []Token{TokenNull()},
		},
		{
			name:  "single item array",
			input: []any{nil},
			expected: []Token{
				TokenArrayBegin("array"),
				TokenNull(),
				TokenArrayEnd(),
			},
		},
		{
			name:  "mixed array",
			input: [4]any{false, true, nil, "a"},
			expected: []Token{
				TokenArrayBegin("array"),
				TokenFalse(),
				TokenTrue(),
				TokenNull(),
				TokenValue("a"),
				TokenArrayEnd(),
			},
		},
		{
			name:  "nested arrays",
			input: []any{false, []int{1, 2}, []any{}},
			expected: []Token{
				TokenArrayBegin("array"),
				TokenFalse(),
				TokenArrayBegin("array"),
				TokenValue(1),
				TokenValue(2),
				TokenArrayEnd(),
				TokenArrayBegin("array"),
				TokenArrayEnd(),
				TokenArrayEnd(),
			},
		},
		{
			name:     "empty anonymous struct",
			input:    struct{}{},
			expected: []Token{TokenObjectBegin("object"), TokenObjectEnd()},
		},
		{
			name: "anonymous struct",
			input: struct {
				One   int
				Two   int
				Three int
			}{1, 2, 3},
			expected: []Token{
				TokenObjectBegin("object"),
				TokenProperty("One"),
				TokenValue(1),
				TokenProperty("Two"),
				TokenValue(2),
				TokenProperty("Three"),
				TokenValue(3),
				TokenObjectEnd(),
			},
		},
		{
			name:  "map keys sorted",
			input: map[string]int{"One": 1, "Two": 2, "Three": 3},
			expected: []Token{
				TokenObjectBegin("object"),
				TokenProperty("One"),
				TokenValue(1),
				TokenProperty("Three"),
				TokenValue(3),
				TokenProperty("Two"),
				TokenValue(2),
				TokenObjectEnd(),
			},
		},
		{
			name:  "int map keys",
			input: map[int]bool{2: true, 1: false},
			expected: []Token{
				TokenObjectBegin("object"),
				TokenProperty("1"),
				TokenFalse(),
				TokenProperty("2"),
				TokenTrue(),
				TokenObjectEnd(),
			},
		},
		{
			name:  "ordered object",
			input: Object{{"Two", 2}, {"One", 1}, {"Three", []any{}}},
			expected: []Token{
				TokenObjectBegin("object"),
				TokenProperty("Two"),
				TokenValue(2),
				TokenProperty("One"),
				TokenValue(1),
				TokenProperty("Three"),
				TokenArrayBegin("array"),
				TokenArrayEnd(),
				TokenObjectEnd(),
			},
		},
		{
			name:  "json tags",
			input: tagged{ID: 5, Skipped: "x", Plain: true, hidden: 3},
			expected: []Token{
				TokenObjectBegin("tagged"),
				TokenProperty("id"),
				TokenValue(5),
				TokenProperty("Plain"),
				TokenTrue(),
				TokenObjectEnd(),
			},
		},
		{
			name:  "json tag omitempty set",
			input: &tagged{Optional: "yes"},
			expected: []Token{
				TokenObjectBegin("tagged"),
				TokenProperty("id"),
				TokenValue(0),
				TokenProperty("optional"),
				TokenValue("yes"),
				TokenProperty("Plain"),
				TokenFalse(),
				TokenObjectEnd(),
			},
		},
		{
			name:  "embedded structs promote their fields",
			input: Record{Base{7}, hidden{"x"}, "n"},
			expected: []Token{
				TokenObjectBegin("Record"),
				TokenProperty("ID"),
				TokenValue(7),
				TokenProperty("Code"),
				TokenValue("x"),
				TokenProperty("Name"),
				TokenValue("n"),
				TokenObjectEnd(),
			},
		},
		{
			name:  "outer field hides promoted field",
			input: shadowed{Base: Base{1}, ID: "outer"},
			expected: []Token{
				TokenObjectBegin("shadowed"),
				TokenProperty("ID"),
				TokenValue("outer"),
				TokenObjectEnd(),
			},
		},
		{
			name:  "nil embedded pointer",
			input: optionalBase{Name: "n"},
			expected: []Token{
				TokenObjectBegin("optionalBase"),
				TokenProperty("Name"),
				TokenValue("n"),
				TokenObjectEnd(),
			},
		},
		{
			name:  "embedded pointer",
			input: optionalBase{Base: &Base{3}, Name: "n"},
			expected: []Token{
				TokenObjectBegin("optionalBase"),
				TokenProperty("ID"),
				TokenValue(3),
				TokenProperty("Name"),
				TokenValue("n"),
				TokenObjectEnd(),
			},
		},
		{
			name:  "tagged embedded struct is nested",
			input: namedBase{Base{2}},
			expected: []Token{
				TokenObjectBegin("namedBase"),
				TokenProperty("base"),
				TokenObjectBegin("Base"),
				TokenProperty("ID"),
				TokenValue(2),
				TokenObjectEnd(),
				TokenObjectEnd(),
			},
		},
		{
			name:  "json numbers",
			input: []json.Number{"12", "1.5", "1e400"},
			expected: []Token{
				TokenArrayBegin("array"),
				TokenValue(12),
				TokenValue(1.5),
				TokenValue("1e400"),
				TokenArrayEnd(),
			},
		},
		{
			name:  "shared sibling is not a cycle",
			input: func() any { p := &Person{Name: "x"}; return []*Person{p, p} }(),
			expected: []Token{
				TokenArrayBegin("array"),
				TokenObjectBegin("Person"),
				TokenProperty("Name"),
				TokenValue("x"),
				TokenProperty("Father"),
				TokenNull(),
				TokenProperty("Mother"),
				TokenNull(),
				TokenProperty("Children"),
				TokenNull(),
				TokenObjectEnd(),
				TokenObjectBegin("Person"),
				TokenProperty("Name"),
				TokenValue("x"),
				TokenProperty("Father"),
				TokenNull(),
				TokenProperty("Mother"),
				TokenNull(),
				TokenProperty("Children"),
				TokenNull(),
				TokenObjectEnd(),
				TokenArrayEnd(),
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			tks, err := walkAll(t, DefaultSettings(), c.input)
			if err != nil {
				t.Fatalf("failed to walk: %s", err)
			}

			assertTokens(t, c.expected, tks)
		})
	}
}

func TestGraphCycleIgnore(t *testing.T) {
	tks, err := walkAll(t, &Settings{GraphCycles: Ignore}, family())
	if err != nil {
		t.Fatalf("failed to walk: %s", err)
	}

	parent := func(name string) []Token {
		return []Token{
			TokenObjectBegin("Person"),
			TokenProperty("Name"),
			TokenValue(name),
			TokenProperty("Father"),
			TokenNull(),
			TokenProperty("Mother"),
			TokenNull(),
			TokenProperty("Children"),
			TokenArrayBegin("array"),
			TokenNull(),
			TokenArrayEnd(),
			TokenObjectEnd(),
		}
	}

	expected := []Token{
		TokenObjectBegin("Person"),
		TokenProperty("Name"),
		TokenValue("John, Jr."),
		TokenProperty("Father"),
	}
	expected = append(expected, parent("John, Sr.")...)
	expected = append(expected, TokenProperty("Mother"))
	expected = append(expected, parent("Sally")...)
	expected = append(expected,
		TokenProperty("Children"),
		TokenNull(),
		TokenObjectEnd(),
	)

	assertTokens(t, expected, tks)
}

func TestGraphCycleErrors(t *testing.T) {
	type testCase struct {
		name     string
		settings *Settings
		input    any
		expected CycleType
	}

	cases := []testCase{
		{
			name:     "reference",
			settings: &Settings{GraphCycles: Reference},
			input:    family(),
			expected: Reference,
		},
		{
			name:     "max depth on cycle",
			settings: &Settings{GraphCycles: MaxDepth, MaxDepth: 25},
			input:    family(),
			expected: MaxDepth,
		},
		{
			name:     "max depth on deep acyclic data",
			settings: &Settings{GraphCycles: MaxDepth, MaxDepth: 19},
			input:    nested(20),
			expected: MaxDepth,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			tks, err := walkAll(t, c.settings, c.input)

			var cycleErr *GraphCycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected graph cycle error, got %v", err)
			}

			assert(t, c.expected, cycleErr.Type, "cycle type")

			if len(tks) == 0 {
				t.Fatalf("expected tokens before the failure")
			}
		})
	}
}

func TestMaxDepthWithinLimit(t *testing.T) {
	tks, err := walkAll(t, &Settings{GraphCycles: MaxDepth, MaxDepth: 20}, nested(20))
	if err != nil {
		t.Fatalf("failed to walk: %s", err)
	}

	assert(t, 41, len(tks), "token count")
	assert(t, "Too deep", tks[20].Value.Text(), "innermost value")
}

func TestArgumentErrors(t *testing.T) {
	_, err := New(nil)

	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected argument error, got %v", err)
	}
	assert(t, "settings", argErr.Param, "param")

	w, err := New(&Settings{GraphCycles: MaxDepth, MaxDepth: 0})
	if err != nil {
		t.Fatalf("failed to create walker: %s", err)
	}

	_, err = w.GetTokens(family())
	if !errors.As(err, &argErr) {
		t.Fatalf("expected argument error, got %v", err)
	}
	assert(t, "maxDepth", argErr.Param, "param")
}

func TestUnsupportedType(t *testing.T) {
	tks, err := walkAll(t, DefaultSettings(), []any{1, make(chan int)})

	var typeErr *UnsupportedTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}

	assertTokens(t, []Token{TokenArrayBegin("array"), TokenValue(1)}, tks)
}

func TestDateFilter(t *testing.T) {
	type testCase struct {
		name     string
		input    time.Time
		expected string
	}

	cases := []testCase{
		{
			name:     "utc",
			input:    time.Date(2008, 2, 29, 23, 59, 59, 999e6, time.UTC),
			expected: "2008-02-29T23:59:59.999Z",
		},
		{
			name:     "offset converted to utc",
			input:    time.Date(2008, 2, 29, 23, 59, 59, 999e6, time.FixedZone("PST", -8*60*60)),
			expected: "2008-03-01T07:59:59.999Z",
		},
		{
			name:     "whole seconds",
			input:    time.Date(2010, 7, 5, 10, 51, 17, 0, time.UTC),
			expected: "2010-07-05T10:51:17.000Z",
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			tks, err := walkAll(t, DefaultSettings(), stamped{At: c.input})
			if err != nil {
				t.Fatalf("failed to walk: %s", err)
			}

			assertTokens(t, []Token{
				TokenObjectBegin("stamped"),
				TokenProperty("At"),
				TokenValue(c.expected),
				TokenObjectEnd(),
			}, tks)
		})
	}
}

func TestWithoutFilters(t *testing.T) {
	tks, err := walkAll(t, &Settings{}, time.Time{})
	if err != nil {
		t.Fatalf("failed to walk: %s", err)
	}

	assertTokens(t, []Token{TokenObjectBegin("Time"), TokenObjectEnd()}, tks)
}

func TestParseCycleType(t *testing.T) {
	for _, c := range []CycleType{Ignore, Reference, MaxDepth} {
		got, err := ParseCycleType(c.String())
		if err != nil {
			t.Fatalf("failed to parse %s: %s", c, err)
		}
		assert(t, c, got, "cycle type")
	}

	if _, err := ParseCycleType("nope"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
