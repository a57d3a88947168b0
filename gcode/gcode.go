// Package gcode serializes motion commands as a G-code text stream.
package gcode

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits motion commands to an underlying stream, one command
// per line. All numeric fields carry fixed 6-decimal precision.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer emitting to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// MoveZ emits a vertical repositioning command.
func (g *Writer) MoveZ(z float64) {
	g.printf("G1 Z%.6f\n", z)
}

// Travel emits a combined X/Y/Z positioning command with no extrusion.
func (g *Writer) Travel(x, y, z float64) {
	g.printf("G1 X%.6f Y%.6f Z%.6f\n", x, y, z)
}

// Extrude emits an X/Y move feeding e millimeters of filament over the
// segment.
func (g *Writer) Extrude(x, y, e float64) {
	g.printf("G1 X%.6f Y%.6f E%.6f\n", x, y, e)
}

// Flush writes buffered commands to the underlying stream and returns
// the first error encountered by any command.
func (g *Writer) Flush() error {
	if g.err != nil {
		return g.err
	}
	return g.w.Flush()
}

// Err returns the first write error encountered.
func (g *Writer) Err() error {
	return g.err
}

func (g *Writer) printf(format string, args ...interface{}) {
	if g.err != nil {
		return
	}
	_, g.err = fmt.Fprintf(g.w, format, args...)
}
