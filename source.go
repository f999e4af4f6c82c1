// Source provenance shared by the preprocessor, the lexer and the
// diagnostic printer.
package main

// SourceLine is one physical line of the expanded translation unit,
// with the file it originally came from.
type SourceLine struct {
	FileIndex int
	Lineno    int
	Content   string
}

// SourcePos points into the expanded source: a line plus a 0-based
// column.
type SourcePos struct {
	Line *SourceLine
	Col  int
}

// SourceFile records one file pulled into the translation unit.
// Pos is the include site in the including file (zero for roots).
type SourceFile struct {
	Filename string
	IsOpen   bool // false when the file could not be read
	Pos      SourcePos
}

// SourceState owns the expanded translation unit: the file table and
// the flattened line list. Line content is interned into the arena.
type SourceState struct {
	arena *Arena

	Files []SourceFile
	Lines []*SourceLine
}
