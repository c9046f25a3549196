package reader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pipe01/lexkit/token"
)

var (
	ErrReadPastEnd      = errors.New("reading past end of file")
	ErrDoublePutBack    = errors.New("cannot put back more than one character")
	ErrNothingToPutBack = errors.New("nothing to put back")
)

type filter struct {
	open, close string
}

type config struct {
	filters    []filter
	normalize  bool
	lineBreaks bool
}

type Option func(*config)

// Filter makes every span starting with open and ending with close (or the
// end of input) read as a single space.
func Filter(open, close string) Option {
	return func(c *config) {
		c.filters = append(c.filters, filter{open, close})
	}
}

// NormalizeLineBreaks turns CRLF and lone CR line breaks into LF.
func NormalizeLineBreaks() Option {
	return func(c *config) {
		c.lineBreaks = true
	}
}

// NormalizeWhiteSpace normalizes line breaks and turns every other white
// space character into a plain space.
func NormalizeWhiteSpace() Option {
	return func(c *config) {
		c.normalize = true
		c.lineBreaks = true
	}
}

type char struct {
	r   rune
	loc token.Location
}

// State is a saved cursor position, see Reader.State.
type State struct {
	pos     int
	putBack bool
	eof     bool
}

// Reader is a character scanner over a fully buffered source. It is not safe
// for concurrent use.
type Reader struct {
	file  string
	chars []char
	end   token.Location

	st State
}

func New(file, source string, opts ...Option) *Reader {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	r := &Reader{
		file:  file,
		chars: make([]char, 0, utf8.RuneCountInString(source)),
	}
	r.scan(source, &cfg)

	return r
}

func Open(path string, opts ...Option) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return New(path, string(data), opts...), nil
}

func (r *Reader) scan(src string, cfg *config) {
	loc := token.Location{File: r.file}

	advance := func(c rune) {
		loc.Offset++
		if c == '\n' {
			loc.Line++
			loc.Column = 0
		} else {
			loc.Column++
		}
	}

	for i := 0; i < len(src); {
		if f, ok := matchFilter(src[i:], cfg.filters); ok {
			start := loc
			end := strings.Index(src[i+len(f.open):], f.close)

			var skip int
			if end < 0 {
				skip = len(src) - i
			} else {
				skip = len(f.open) + end + len(f.close)
			}

			for _, c := range src[i : i+skip] {
				advance(c)
			}
			i += skip

			r.chars = append(r.chars, char{' ', start})
			continue
		}

		c, size := utf8.DecodeRuneInString(src[i:])
		start := loc
		i += size

		if c == '\r' {
			crlf := i < len(src) && src[i] == '\n'

			switch {
			case crlf && cfg.lineBreaks:
				// Dropped, the LF that follows stands for both
				loc.Offset++
				loc.Column++
				continue

			case crlf:
				loc.Offset++
				loc.Column++
				r.chars = append(r.chars, char{c, start})
				continue

			case cfg.lineBreaks:
				c = '\n'

			default:
				loc.Offset++
				loc.Line++
				loc.Column = 0
				r.chars = append(r.chars, char{c, start})
				continue
			}
		} else if cfg.normalize && c != '\n' && (unicode.IsSpace(c) || c == '\uFEFF') {
			c = ' '
		}

		advance(c)
		r.chars = append(r.chars, char{c, start})
	}

	r.end = loc
}

func matchFilter(s string, filters []filter) (filter, bool) {
	for _, f := range filters {
		if strings.HasPrefix(s, f.open) {
			return f, true
		}
	}

	return filter{}, false
}

// Read returns the next character, or false at the end of the input. Reading
// again once the end has been reported panics with ErrReadPastEnd.
func (r *Reader) Read() (rune, bool) {
	if r.st.pos >= len(r.chars) {
		if r.st.eof {
			panic(ErrReadPastEnd)
		}

		r.st.eof = true
		r.st.putBack = false
		return 0, false
	}

	c := r.chars[r.st.pos].r
	r.st.pos++
	r.st.putBack = false

	return c, true
}

func (r *Reader) Peek() (rune, bool) {
	if r.st.pos >= len(r.chars) {
		return 0, false
	}

	return r.chars[r.st.pos].r, true
}

// PutBack undoes the last Read. It panics when called twice in a row.
func (r *Reader) PutBack() {
	if r.st.putBack {
		panic(ErrDoublePutBack)
	}

	if r.st.eof {
		r.st.eof = false
	} else {
		if r.st.pos == 0 {
			panic(ErrNothingToPutBack)
		}
		r.st.pos--
	}

	r.st.putBack = true
}

// HasPrefix reports whether the unread input starts with s.
func (r *Reader) HasPrefix(s string) bool {
	i := r.st.pos

	for _, c := range s {
		if i >= len(r.chars) || r.chars[i].r != c {
			return false
		}
		i++
	}

	return true
}

// Skip reads n characters, returning false if the input ended first.
func (r *Reader) Skip(n int) bool {
	for i := 0; i < n; i++ {
		if _, ok := r.Read(); !ok {
			return false
		}
	}

	return true
}

// ReadUntil reads up to and including delim and returns the text before it.
// If delim never appears the rest of the input is returned along with false.
func (r *Reader) ReadUntil(delim string) (string, bool) {
	start := r.st.pos

	for r.st.pos < len(r.chars) {
		if r.HasPrefix(delim) {
			text := r.Copy(start, r.st.pos)
			r.Skip(utf8.RuneCountInString(delim))
			return text, true
		}
		r.st.pos++
	}
	r.st.putBack = false

	return r.Copy(start, r.st.pos), false
}

// Copy returns the visible characters in [start, end).
func (r *Reader) Copy(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(r.chars) {
		end = len(r.chars)
	}
	if start >= end {
		return ""
	}

	var b strings.Builder
	b.Grow(end - start)

	for _, c := range r.chars[start:end] {
		b.WriteRune(c.r)
	}

	return b.String()
}

// Position is the index of the last character read, -1 before the first one.
func (r *Reader) Position() int {
	return r.st.pos - 1
}

// Current is the last character read.
func (r *Reader) Current() rune {
	if r.st.pos == 0 {
		return 0
	}

	return r.chars[r.st.pos-1].r
}

func (r *Reader) EndOfFile() bool {
	return r.st.eof
}

func (r *Reader) Length() int {
	return len(r.chars)
}

func (r *Reader) File() string {
	return r.file
}

// Location of the last character read.
func (r *Reader) Location() token.Location {
	return r.LocationAt(r.st.pos - 1)
}

// NextLocation is the location of the character the next Read returns.
func (r *Reader) NextLocation() token.Location {
	return r.LocationAt(r.st.pos)
}

func (r *Reader) LocationAt(pos int) token.Location {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(r.chars) {
		return r.end
	}

	return r.chars[pos].loc
}

func (r *Reader) Line() int {
	return r.Location().Line
}

func (r *Reader) Column() int {
	return r.Location().Column
}

// State returns the current cursor so it can be restored later with Restore.
func (r *Reader) State() State {
	return r.st
}

func (r *Reader) Restore(s State) {
	r.st = s
}
