package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pipe01/lexkit/markup"
)

type Options struct {
	// Pretty puts every CSS declaration and statement on its own line.
	Pretty bool
	// HTML writes script and style contents unescaped.
	HTML bool
}

type outputWriter struct {
	w           *bufio.Writer
	indentation int
	pretty      bool
}

func newOutputWriter(w io.Writer, pretty bool) *outputWriter {
	return &outputWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
	}
}

func (w *outputWriter) indent(delta int) {
	w.indentation += delta
}

func (w *outputWriter) writeIndentation() {
	if w.pretty {
		w.w.WriteString(strings.Repeat("\t", w.indentation))
	}
}

func (w *outputWriter) WriteNewLine() {
	if w.pretty {
		w.w.WriteByte('\n')
	}
}

// WriteSpace writes a separator that is only needed in pretty output.
func (w *outputWriter) WriteSpace() {
	if w.pretty {
		w.w.WriteByte(' ')
	}
}

func (w *outputWriter) WriteLiteralUnescaped(str string) {
	w.w.WriteString(str)
}

func (w *outputWriter) WriteLiteralUnescapedf(format string, a ...any) {
	fmt.Fprintf(w.w, format, a...)
}

func (w *outputWriter) WriteLiteralEscaped(str string) {
	w.w.WriteString(markup.EscapeText(str))
}

func (w *outputWriter) WriteBlockStart() {
	w.WriteSpace()
	w.w.WriteByte('{')
	w.WriteNewLine()
	w.indent(1)
}

func (w *outputWriter) WriteBlockEnd() {
	w.indent(-1)
	w.writeIndentation()
	w.w.WriteByte('}')
	w.WriteNewLine()
}

func (w *outputWriter) Flush() error {
	return w.w.Flush()
}
