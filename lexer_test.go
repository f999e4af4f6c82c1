package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSource builds a translation unit directly from a string,
// bypassing the include machinery.
func newTestSource(src string) *SourceState {
	state := NewSourceState(NewArena(1<<12, nil))
	state.addFile("test.kel", true, SourcePos{})
	for i, line := range strings.Split(src, "\n") {
		state.addLine(0, i+1, line)
	}
	return state
}

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lx := NewLexer(newTestSource(src))
	var tokens []Token
	for lx.Peek().Type != TkEOF {
		tokens = append(tokens, lx.Peek())
		lx.Next()
	}
	require.Nil(t, lx.Err())
	return tokens
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tk := range tokens {
		out[i] = tk.Type
	}
	return out
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	tokens := lexAll(t, "fn foo i32 bar while")
	assert.Equal(t,
		[]TokenType{TkKwFn, TkIdent, TkKwI32, TkIdent, TkKwWhile},
		tokenTypes(tokens))
	assert.Equal(t, "foo", tokens[1].Str)
	assert.Equal(t, "bar", tokens[3].Str)
}

func TestLexerOperators(t *testing.T) {
	tokens := lexAll(t, "+ - * / % << >> <= >= == != && || & | ^ ~ ! < > = , ; ...")
	assert.Equal(t,
		[]TokenType{
			TkAdd, TkSub, TkMul, TkDiv, TkMod, TkShl, TkShr,
			TkLe, TkGe, TkEq, TkNe, TkLand, TkLor,
			TkAnd, TkOr, TkXor, TkNot, TkLnot, TkLt, TkGt,
			TkAssign, TkComma, TkSemicolon, TkEllipsis,
		},
		tokenTypes(tokens))
}

func TestLexerIntLiterals(t *testing.T) {
	tokens := lexAll(t, "0 42 0x10 0xFF")
	require.Len(t, tokens, 4)
	assert.Equal(t, 0, tokens[0].Val)
	assert.Equal(t, 42, tokens[1].Val)
	assert.Equal(t, 16, tokens[2].Val)
	assert.Equal(t, 255, tokens[3].Val)
	for _, tk := range tokens {
		assert.Equal(t, TypeI32, tk.Prim)
	}
}

func TestLexerLargeLiteralIsUnsigned(t *testing.T) {
	tokens := lexAll(t, "0xFFFFFFFF")
	require.Len(t, tokens, 1)
	assert.Equal(t, TypeU32, tokens[0].Prim)
	assert.Equal(t, -1, tokens[0].Val) // bit pattern, two's complement
}

func TestLexerCharLiterals(t *testing.T) {
	tokens := lexAll(t, `'a' '\n' '\0'`)
	require.Len(t, tokens, 3)
	assert.Equal(t, int('a'), tokens[0].Val)
	assert.Equal(t, int('\n'), tokens[1].Val)
	assert.Equal(t, 0, tokens[2].Val)
	assert.Equal(t, TypeU8, tokens[0].Prim)
}

func TestLexerStringLiteral(t *testing.T) {
	tokens := lexAll(t, `"hello world\n"`)
	require.Len(t, tokens, 1)
	assert.Equal(t, TkStrLit, tokens[0].Type)
	// Escapes stay raw; the assembler interprets them in .string.
	assert.Equal(t, `hello world\n`, tokens[0].Str)
}

func TestLexerComments(t *testing.T) {
	tokens := lexAll(t, "1 // comment with tokens + - *\n2")
	require.Len(t, tokens, 2)
	assert.Equal(t, 1, tokens[0].Val)
	assert.Equal(t, 2, tokens[1].Val)
}

func TestLexerPositions(t *testing.T) {
	tokens := lexAll(t, "a\n  b")
	require.Len(t, tokens, 2)
	assert.Equal(t, 1, tokens[0].Pos.Line.Lineno)
	assert.Equal(t, 0, tokens[0].Pos.Col)
	assert.Equal(t, 2, tokens[1].Pos.Line.Lineno)
	assert.Equal(t, 2, tokens[1].Pos.Col)
}

func TestLexerSkipsDirectiveLines(t *testing.T) {
	tokens := lexAll(t, "#define N 10\n1")
	require.Len(t, tokens, 1)
	assert.Equal(t, 1, tokens[0].Val)
}

func TestLexerUnterminatedString(t *testing.T) {
	lx := NewLexer(newTestSource(`"oops`))
	for lx.Peek().Type != TkEOF {
		lx.Next()
	}
	require.NotNil(t, lx.Err())
	assert.Contains(t, lx.Err().Message, "terminating")
}

func TestLexerBadCharacter(t *testing.T) {
	lx := NewLexer(newTestSource("$"))
	for lx.Peek().Type != TkEOF {
		lx.Next()
	}
	require.NotNil(t, lx.Err())
}
