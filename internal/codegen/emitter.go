package codegen

import (
	"fmt"
	"strings"
)

// Emitter builds Go source with block indentation. Output is run through
// the formatter afterwards, so alignment does not matter here.
type Emitter struct {
	buf    strings.Builder
	indent int
}

// Line writes a single line at the current indentation level.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		e.buf.WriteByte('\n')
		return
	}
	e.buf.WriteString(strings.Repeat("\t", e.indent))
	e.buf.WriteString(line)
	e.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (e *Emitter) Blank() { e.buf.WriteByte('\n') }

// Block writes the line with " {" appended and indents what follows.
func (e *Emitter) Block(format string, args ...any) {
	e.Line(format+" {", args...)
	e.indent++
}

// Open writes the line as is and indents what follows, for blocks that
// open with something other than " {".
func (e *Emitter) Open(format string, args ...any) {
	e.Line(format, args...)
	e.indent++
}

// EndBlock closes a block.
func (e *Emitter) EndBlock() { e.EndBlockSuffix("") }

// EndBlockSuffix closes a block with a suffix, e.g. "}," or "})".
func (e *Emitter) EndBlockSuffix(suffix string) {
	e.indent--
	e.Line("}%s", suffix)
}

// Doc writes a comment, one line per "\n"-separated line of text.
func (e *Emitter) Doc(text string) {
	for _, l := range strings.Split(text, "\n") {
		e.Line("// %s", l)
	}
}

// Bytes returns the source written so far.
func (e *Emitter) Bytes() []byte { return []byte(e.buf.String()) }
