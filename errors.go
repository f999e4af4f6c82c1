// Diagnostic model and terminal rendering.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/env/v2"
)

// ErrorLevel indicates the severity of a diagnostic.
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
	LevelFatal
)

func (l ErrorLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal error"
	default:
		return "unknown"
	}
}

// CompilerError is a single diagnostic: a position and a message.
// Semantic analysis returns the first one encountered.
type CompilerError struct {
	Level   ErrorLevel
	Pos     SourcePos
	Message string
}

// NewError creates an error-level diagnostic at pos.
func NewError(pos SourcePos, format string, args ...any) *CompilerError {
	return &CompilerError{
		Level:   LevelError,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface with the short location form.
func (e *CompilerError) Error() string {
	if e.Pos.Line == nil {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line.Lineno, e.Pos.Col+1, e.Message)
}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[1;31m"
	ansiPurple = "\033[1;35m"
)

func levelColor(l ErrorLevel) string {
	if l == LevelWarning {
		return ansiPurple
	}
	return ansiRed
}

// useColor reports whether diagnostics should be coloured: only on a
// terminal, and never when NO_COLOR is set.
func useColor(w io.Writer) bool {
	if env.Has("NO_COLOR") {
		return false
	}
	return writerIsTerminal(w)
}

// PrintMessage renders a diagnostic the way a C compiler would:
// include chain, "file:line:col: level: message", the offending source
// line, and a caret under the column.
func PrintMessage(w io.Writer, src *SourceState, e *CompilerError) {
	color := useColor(w)

	if e.Pos.Line == nil {
		if color {
			fmt.Fprintf(w, "%s%s:%s %s\n", levelColor(e.Level), e.Level, ansiReset, e.Message)
		} else {
			fmt.Fprintf(w, "%s: %s\n", e.Level, e.Message)
		}
		return
	}

	line := e.Pos.Line
	file := &src.Files[line.FileIndex]

	// Include chain, outermost last.
	if line.FileIndex != 0 && file.Pos.Line != nil {
		includedBy := file.Pos.Line.FileIndex
		includedFile := &src.Files[includedBy]
		sep := byte(',')
		if includedBy == 0 {
			sep = ':'
		}
		fmt.Fprintf(w, "In file included from %s:%d%c\n",
			includedFile.Filename, file.Pos.Line.Lineno, sep)
		for includedBy != 0 && includedFile.Pos.Line != nil {
			at := includedFile.Pos.Line.Lineno
			includedBy = includedFile.Pos.Line.FileIndex
			includedFile = &src.Files[includedBy]
			sep = ','
			if includedBy == 0 {
				sep = ':'
			}
			fmt.Fprintf(w, "                 from %s:%d%c\n",
				includedFile.Filename, at, sep)
		}
	}

	if color {
		fmt.Fprintf(w, "%s%s:%d:%d:%s %s%s:%s %s\n",
			ansiBold, file.Filename, line.Lineno, e.Pos.Col+1, ansiReset,
			levelColor(e.Level), e.Level, ansiReset, e.Message)
	} else {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			file.Filename, line.Lineno, e.Pos.Col+1, e.Level, e.Message)
	}

	fmt.Fprintf(w, "%5d | %s\n", line.Lineno, line.Content)
	fmt.Fprintf(w, "      | %s^\n", strings.Repeat(" ", e.Pos.Col))
}
