package token

import "fmt"

type Location struct {
	File string

	// 0-based
	Line, Column int

	// Offset is the index of the character in the source, counted in runes.
	Offset int
}

func (l *Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line+1, l.Column+1)
}
