// Preprocessor: flattens #include directives into a single line list
// and records #define/#undef constants in the global symbol table.
package main

import (
	"os"
	"strconv"
	"strings"
)

// MaxIncludeDepth bounds transitive includes.
const MaxIncludeDepth = 15

// NewSourceState creates an empty translation unit backed by the arena.
func NewSourceState(arena *Arena) *SourceState {
	return &SourceState{arena: arena}
}

func (s *SourceState) addFile(filename string, isOpen bool, pos SourcePos) int {
	s.Files = append(s.Files, SourceFile{
		Filename: filename,
		IsOpen:   isOpen,
		Pos:      pos,
	})
	return len(s.Files) - 1
}

func (s *SourceState) addLine(fileIndex, lineno int, content string) *SourceLine {
	line := &SourceLine{
		FileIndex: fileIndex,
		Lineno:    lineno,
		Content:   s.arena.CopyString(content),
	}
	s.Lines = append(s.Lines, line)
	return line
}

func ppError(pos SourcePos, format string, args ...any) *CompilerError {
	return NewError(pos, format, args...)
}

// Expand reads filename and appends its lines to the unit, recursively
// expanding #include "..." directives and recording #define/#undef in
// sym. includePos is the include site (zero value for root files).
func (s *SourceState) Expand(filename string, sym *SymbolTable, depth int, includePos SourcePos) *CompilerError {
	if depth > MaxIncludeDepth {
		return ppError(includePos, "#include nested too deeply")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		s.addFile(filename, false, includePos)
		return ppError(includePos, "cannot open %s: %v", filename, err)
	}

	fileIndex := s.addFile(filename, true, includePos)

	lines := strings.Split(string(data), "\n")
	for i, raw := range lines {
		lineno := i + 1
		trimmed := strings.TrimLeft(raw, " \t")

		switch {
		case strings.HasPrefix(trimmed, "#include"):
			line := s.addLine(fileIndex, lineno, raw)
			pos := SourcePos{Line: line, Col: len(raw) - len(trimmed)}
			target, perr := parseIncludeTarget(trimmed, pos)
			if perr != nil {
				return perr
			}
			if perr := s.Expand(target, sym, depth+1, pos); perr != nil {
				return perr
			}

		case strings.HasPrefix(trimmed, "#define"):
			line := s.addLine(fileIndex, lineno, raw)
			pos := SourcePos{Line: line, Col: len(raw) - len(trimmed)}
			if perr := parseDefine(trimmed, sym, pos); perr != nil {
				return perr
			}

		case strings.HasPrefix(trimmed, "#undef"):
			line := s.addLine(fileIndex, lineno, raw)
			pos := SourcePos{Line: line, Col: len(raw) - len(trimmed)}
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#undef"))
			if name == "" {
				return ppError(pos, "#undef expects an identifier")
			}
			sym.Remove(name)

		case strings.HasPrefix(trimmed, "#"):
			line := s.addLine(fileIndex, lineno, raw)
			pos := SourcePos{Line: line, Col: len(raw) - len(trimmed)}
			directive := trimmed
			if idx := strings.IndexAny(directive, " \t"); idx >= 0 {
				directive = directive[:idx]
			}
			return ppError(pos, "unknown preprocessing directive '%s'", directive)

		default:
			s.addLine(fileIndex, lineno, raw)
		}
	}

	return nil
}

func parseIncludeTarget(trimmed string, pos SourcePos) (string, *CompilerError) {
	rest := strings.TrimLeft(strings.TrimPrefix(trimmed, "#include"), " \t")
	if len(rest) == 0 || rest[0] != '"' {
		return "", ppError(pos, `#include expects "FILENAME"`)
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", ppError(pos, `missing terminating " character`)
	}
	return rest[:end], nil
}

func parseDefine(trimmed string, sym *SymbolTable, pos SourcePos) *CompilerError {
	fields := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(trimmed, "#define")), " ", 2)
	if fields[0] == "" {
		return ppError(pos, "#define expects an identifier")
	}
	name := fields[0]

	val := DefValue{Val: 0, DataType: TypeI32}
	if len(fields) == 2 {
		body := strings.TrimSpace(fields[1])
		switch {
		case len(body) >= 2 && body[0] == '"' && body[len(body)-1] == '"':
			val = DefValue{IsStr: true, Str: body[1 : len(body)-1]}
		default:
			n, err := strconv.ParseInt(body, 0, 64)
			if err != nil {
				return ppError(pos, "#define value must be an integer or string literal")
			}
			val = DefValue{Val: int(int32(n)), DataType: TypeI32}
			if n > int64(^uint32(0)>>1) {
				val.DataType = TypeU32
			}
		}
	}

	sym.Remove(name)
	sym.AppendDef(name, val, pos)
	return nil
}
