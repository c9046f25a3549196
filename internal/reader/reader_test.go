package reader

import (
	"testing"
)

func assert[T comparable](t *testing.T, expected, got T, msg string) {
	t.Helper()

	if got != expected {
		t.Fatalf("%s: expected %v, got %v", msg, expected, got)
	}
}

func readAll(r *Reader) string {
	var out []rune

	for {
		c, ok := r.Read()
		if !ok {
			return string(out)
		}
		out = append(out, c)
	}
}

func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()

	defer func() {
		got := recover()
		if got != want {
			t.Fatalf("expected panic %v, got %v", want, got)
		}
	}()

	fn()
}

func TestReadPeekPutBack(t *testing.T) {
	r := New("test", "ab")

	c, ok := r.Peek()
	assert(t, 'a', c, "peek")
	assert(t, true, ok, "peek ok")
	assert(t, -1, r.Position(), "position before read")

	c, _ = r.Read()
	assert(t, 'a', c, "first read")
	assert(t, 0, r.Position(), "position")

	r.PutBack()
	c, _ = r.Read()
	assert(t, 'a', c, "read after put back")

	c, _ = r.Read()
	assert(t, 'b', c, "second read")

	_, ok = r.Read()
	assert(t, false, ok, "end of input")
	assert(t, true, r.EndOfFile(), "end of file")

	r.PutBack()
	assert(t, false, r.EndOfFile(), "end of file after put back")

	_, ok = r.Read()
	assert(t, false, ok, "end of input again")
}

func TestDoublePutBackPanics(t *testing.T) {
	r := New("test", "abc")
	r.Read()
	r.Read()
	r.PutBack()

	expectPanic(t, ErrDoublePutBack, r.PutBack)
}

func TestReadPastEndPanics(t *testing.T) {
	r := New("test", "a")
	r.Read()
	r.Read()

	expectPanic(t, ErrReadPastEnd, func() { r.Read() })
}

func TestCopy(t *testing.T) {
	r := New("test", "hello world")
	r.Skip(5)

	assert(t, "hello", r.Copy(0, r.Position()+1), "copy")
	assert(t, "world", r.Copy(6, 100), "copy clamps end")
	assert(t, "", r.Copy(4, 2), "empty range")
}

func TestFilter(t *testing.T) {
	type testCase struct {
		name, input, expected string
	}

	cases := []testCase{
		{"single", "a/* x */b", "a b"},
		{"several", "/**/a/* x */b/*y*/", " a b "},
		{"unterminated", "a/* x", "a "},
		{"no filter", "a*/b", "a*/b"},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			r := New("test", c.input, Filter("/*", "*/"))
			assert(t, c.expected, readAll(r), "visible text")
		})
	}
}

func TestFilterKeepsLineCount(t *testing.T) {
	r := New("test", "/* a\nb\n*/x", Filter("/*", "*/"))
	r.Read()
	r.Read()

	loc := r.Location()
	assert(t, 2, loc.Line, "line")
	assert(t, 2, loc.Column, "column")
	assert(t, 9, loc.Offset, "offset")
}

func TestNormalizeWhiteSpace(t *testing.T) {
	r := New("test", "a\r\nb\rc\td\u00a0e\uFEFFf", NormalizeWhiteSpace())
	assert(t, "a\nb\nc d e f", readAll(r), "normalized")
}

func TestNormalizeLineBreaks(t *testing.T) {
	r := New("test", "a\r\n\tb\rc", NormalizeLineBreaks())
	assert(t, "a\n\tb\nc", readAll(r), "normalized")
}

func TestRawKeepsCarriageReturn(t *testing.T) {
	r := New("test", "a\r\nb")
	assert(t, "a\r\nb", readAll(r), "raw")

	loc := r.LocationAt(3)
	assert(t, 1, loc.Line, "line of b")
	assert(t, 0, loc.Column, "column of b")
}

func TestLineColumn(t *testing.T) {
	r := New("test", "ab\ncd")
	r.Skip(4)

	assert(t, 1, r.Line(), "line")
	assert(t, 0, r.Column(), "column")
	assert(t, 'c', r.Current(), "current")
}

func TestReadUntil(t *testing.T) {
	r := New("test", "<!-- x -->y")
	r.Skip(4)

	text, ok := r.ReadUntil("-->")
	assert(t, " x ", text, "text")
	assert(t, true, ok, "found")

	c, _ := r.Read()
	assert(t, 'y', c, "after delimiter")

	r = New("test", "abc")
	text, ok = r.ReadUntil("-->")
	assert(t, "abc", text, "unterminated text")
	assert(t, false, ok, "not found")
}

func TestStateRestore(t *testing.T) {
	r := New("test", "abc")
	r.Read()

	s := r.State()
	r.Read()
	r.Read()
	r.Restore(s)

	c, _ := r.Read()
	assert(t, 'b', c, "read after restore")
	assert(t, true, r.HasPrefix("c"), "prefix")
	assert(t, false, r.HasPrefix("cd"), "longer prefix")
}
