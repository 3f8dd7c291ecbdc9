// Package diag implements the compiler's diagnostic context: accumulating
// errors and warnings, panic-mode suppression, and a source-excerpt renderer
// with carets. Ported from original_source/src/diagnostic.c.
package diag

import (
	"fmt"
	"io"
	"strings"
)

// MaxErrors caps the number of errors collected before compilation stops,
// matching original_source/src/diagnostic.h's MAX_ERRORS.
const MaxErrors = 8

// Level distinguishes an error from a warning.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

// SourceLoc pinpoints a single-line, single-caret-span location.
type SourceLoc struct {
	Line, Column, Length int
}

// Diagnostic is a single reported error or warning.
type Diagnostic struct {
	Level   Level
	Code    Code
	Message string
	Loc     SourceLoc
	Notes   []string
	Help    string
}

// Context accumulates diagnostics for one compilation and renders them.
type Context struct {
	Source     string
	Filename   string
	UseColors  bool
	ErrorCount int
	WarnCount  int

	panicMode bool
	diags     []Diagnostic
}

// NewContext returns a Context ready to collect diagnostics for source.
func NewContext(source, filename string, useColors bool) *Context {
	return &Context{Source: source, Filename: filename, UseColors: useColors}
}

// InPanicMode reports whether the parser should currently suppress errors.
func (c *Context) InPanicMode() bool { return c.panicMode }

// Synchronize clears panic mode once the parser has resynced at a statement
// boundary.
func (c *Context) Synchronize() { c.panicMode = false }

// ShouldStop reports whether compilation must halt (error cap reached).
func (c *Context) ShouldStop() bool { return c.ErrorCount >= MaxErrors }

// Report records a diagnostic. Errors are suppressed while in panic mode.
// Report does not enforce MaxErrors itself; callers check ShouldStop.
func (c *Context) Report(d Diagnostic) {
	if d.Level == LevelError {
		if c.panicMode {
			return
		}
		c.panicMode = true
		c.ErrorCount++
	} else {
		c.WarnCount++
	}
	c.diags = append(c.diags, d)
}

// Errorf reports a formatted error at loc.
func (c *Context) Errorf(loc SourceLoc, code Code, format string, args ...any) {
	c.Report(Diagnostic{Level: LevelError, Code: code, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Warnf reports a formatted warning at loc.
func (c *Context) Warnf(loc SourceLoc, code Code, format string, args ...any) {
	c.Report(Diagnostic{Level: LevelWarning, Code: code, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (c *Context) Diagnostics() []Diagnostic { return c.diags }

// HasErrors reports whether any error-level diagnostic was reported.
func (c *Context) HasErrors() bool { return c.ErrorCount > 0 }

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31;1m"
	colorYellow = "\x1b[33;1m"
	colorBlue   = "\x1b[34;1m"
	colorBold   = "\x1b[1m"
)

func (c *Context) getSourceLine(line int) string {
	cur := 1
	start := 0
	for i := 0; i < len(c.Source); i++ {
		if cur == line {
			start = i
			for i < len(c.Source) && c.Source[i] != '\n' {
				i++
			}
			return c.Source[start:i]
		}
		if c.Source[i] == '\n' {
			cur++
		}
	}
	if cur == line {
		return c.Source[start:]
	}
	return ""
}

func (c *Context) color(code string) string {
	if !c.UseColors {
		return ""
	}
	return code
}

// Render writes every accumulated diagnostic to w, in the
// original_source/src/diagnostic.c layout: a level line, a "--> file:L:C"
// location line, a source excerpt gutter, and a caret line.
func (c *Context) Render(w io.Writer) {
	for _, d := range c.diags {
		c.renderOne(w, d)
	}
}

func (c *Context) renderOne(w io.Writer, d Diagnostic) {
	levelWord, color := "error", c.color(colorRed)
	if d.Level == LevelWarning {
		levelWord, color = "warning", c.color(colorYellow)
	}
	reset := c.color(colorReset)
	bold := c.color(colorBold)
	blue := c.color(colorBlue)

	fmt.Fprintf(w, "%s%s%s[%s]%s: %s%s\n", color, levelWord, reset, d.Code, reset, bold, d.Message)
	fmt.Fprint(w, reset)
	fmt.Fprintf(w, "%s  --> %s:%d:%d%s\n", blue, c.Filename, d.Loc.Line, d.Loc.Column, reset)

	line := c.getSourceLine(d.Loc.Line)
	fmt.Fprintf(w, "%s%4d | %s%s\n", blue, d.Loc.Line, reset, line)

	gutter := strings.Repeat(" ", 4) + " | "
	caretPad := buildCaretPad(line, d.Loc.Column)
	carets := strings.Repeat("^", max(1, d.Loc.Length))
	fmt.Fprintf(w, "%s%s%s%s%s%s\n", blue, gutter, reset, caretPad, color, carets+reset)

	for _, n := range d.Notes {
		fmt.Fprintf(w, "  = note: %s\n", n)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
}

// buildCaretPad reproduces tabs verbatim up to column so carets line up
// under the offending source regardless of tab width.
func buildCaretPad(line string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	for b.Len() < column-1 {
		b.WriteByte(' ')
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
