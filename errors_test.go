package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorShortForm(t *testing.T) {
	line := &SourceLine{FileIndex: 0, Lineno: 3, Content: "i32 x = ;"}
	err := NewError(SourcePos{Line: line, Col: 8}, "expected expression")
	assert.Equal(t, "3:9: expected expression", err.Error())
}

func TestErrorWithoutPosition(t *testing.T) {
	err := NewError(SourcePos{}, "out of luck")
	assert.Equal(t, "out of luck", err.Error())

	var buf bytes.Buffer
	src := NewSourceState(NewArena(1<<10, nil))
	PrintMessage(&buf, src, err)
	assert.Equal(t, "error: out of luck\n", buf.String())
}

func TestPrintMessageCaret(t *testing.T) {
	src := NewSourceState(NewArena(1<<10, nil))
	src.addFile("demo.kel", true, SourcePos{})
	line := src.addLine(0, 7, "i32 x = bad;")

	var buf bytes.Buffer
	PrintMessage(&buf, src, NewError(SourcePos{Line: line, Col: 8}, "'bad' undeclared"))

	out := buf.String()
	assert.Contains(t, out, "demo.kel:7:9: error: 'bad' undeclared")
	assert.Contains(t, out, "    7 | i32 x = bad;")
	assert.Contains(t, out, "      |         ^")
}

func TestPrintMessageIncludeChain(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.kel")
	outer := filepath.Join(dir, "outer.kel")
	main := filepath.Join(dir, "main.kel")

	require.NoError(t, os.WriteFile(inner, []byte("i32 broken = ;\n"), 0o644))
	require.NoError(t, os.WriteFile(outer, []byte("#include \""+inner+"\"\n"), 0o644))
	require.NoError(t, os.WriteFile(main, []byte("#include \""+outer+"\"\n"), 0o644))

	state := NewSourceState(NewArena(1<<12, nil))
	globals := NewSymbolTable(0, nil, true)
	require.Nil(t, state.Expand(main, globals, 0, SourcePos{}))

	parser := NewParser(state, globals)
	_, perr := parser.ParseUnit()
	require.NotNil(t, perr)

	var buf bytes.Buffer
	PrintMessage(&buf, state, perr)
	out := buf.String()

	assert.Contains(t, out, "In file included from "+outer+":1,")
	assert.Contains(t, out, "                 from "+main+":1:")
	assert.Contains(t, out, inner+":1:")
}

func TestPrintMessageNoColorOnBuffer(t *testing.T) {
	src := NewSourceState(NewArena(1<<10, nil))
	src.addFile("x.kel", true, SourcePos{})
	line := src.addLine(0, 1, "boom")

	var buf bytes.Buffer
	PrintMessage(&buf, src, NewError(SourcePos{Line: line, Col: 0}, "msg"))
	// a bytes.Buffer is not a terminal, so no ANSI escapes
	assert.NotContains(t, buf.String(), "\033[")
}
