package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) (*StmtList, *SymbolTable) {
	t.Helper()
	globals := NewSymbolTable(0, nil, true)
	parser := NewParser(newTestSource(src), globals)
	unit, err := parser.ParseUnit()
	require.Nil(t, err, "parse error: %v", err)
	return unit, globals
}

func parseError(t *testing.T, src string) *CompilerError {
	t.Helper()
	globals := NewSymbolTable(0, nil, true)
	parser := NewParser(newTestSource(src), globals)
	_, err := parser.ParseUnit()
	require.NotNil(t, err, "expected a parse error")
	return err
}

func TestParsePrecedence(t *testing.T) {
	unit, _ := parseString(t, "i32 x = 0; x = 2 + 3 * 4;")
	require.Len(t, unit.Stmts, 1)
	// multiplication binds tighter than addition
	assert.Equal(t, "x = (2 + (3 * 4))", unit.Stmts[0].String())
}

func TestParseUnaryBinding(t *testing.T) {
	unit, _ := parseString(t, "i32 x = 0; x = -x + 1;")
	require.Len(t, unit.Stmts, 1)
	assert.Equal(t, "x = ((-x) + 1)", unit.Stmts[0].String())
}

func TestParseComparisonAndLogic(t *testing.T) {
	unit, _ := parseString(t, "i32 a = 0; i32 b = 0; bool c = a < 1 && b > 2;")
	require.Len(t, unit.Stmts, 1)
	assert.Equal(t, "c = ((a < 1) && (b > 2))", unit.Stmts[0].String())
}

func TestParseGlobalLiteralInit(t *testing.T) {
	unit, globals := parseString(t, `i32 g = 42; u8[] s = "hi";`)
	// literal initializers go to .data, not the entry body
	assert.Empty(t, unit.Stmts)

	g, ok := globals.Find("g", true).(*VarSymbol)
	require.True(t, ok)
	require.NotNil(t, g.InitVal)
	assert.Equal(t, 42, g.InitVal.(*IntLit).Val)

	s, ok := globals.Find("s", true).(*VarSymbol)
	require.True(t, ok)
	assert.Equal(t, "hi", s.InitVal.(*StrLit).Val)
}

func TestParseGlobalRuntimeInit(t *testing.T) {
	unit, globals := parseString(t, "i32 x = 2 + 3 * 4;")
	// non-literal initializers run before the entry body
	require.Len(t, unit.Stmts, 1)
	assign, ok := unit.Stmts[0].(*Assign)
	require.True(t, ok)
	assert.True(t, assign.FromDecl)

	x, ok := globals.Find("x", true).(*VarSymbol)
	require.True(t, ok)
	assert.Nil(t, x.InitVal)
}

func TestParseTypeDecl(t *testing.T) {
	_, globals := parseString(t, "type Vec { i32 x; i32 y; }")

	ts, ok := globals.Find("Vec", true).(*TypeSymbol)
	require.True(t, ok)
	assert.False(t, ts.Incomplete)
	assert.Equal(t, 8, ts.Size)
	assert.Equal(t, 4, ts.Alignment)

	fx, ok := ts.Namespace.Find("x", true).(*FieldSymbol)
	require.True(t, ok)
	assert.Equal(t, 0, fx.Offset)
	fy := ts.Namespace.Find("y", true).(*FieldSymbol)
	assert.Equal(t, 4, fy.Offset)
}

func TestParseTypePadding(t *testing.T) {
	_, globals := parseString(t, "type Mixed { u8 tag; i32 value; u16 extra; }")
	ts := globals.Find("Mixed", true).(*TypeSymbol)
	// tag@0, value@4, extra@8, rounded to alignment 4
	assert.Equal(t, 12, ts.Size)
}

func TestParseFuncDecl(t *testing.T) {
	_, globals := parseString(t, `
fn add(i32 a, i32 b) i32 {
    return a + b;
}`)

	fn, ok := globals.Find("add", true).(*FuncSymbol)
	require.True(t, ok)
	require.NotNil(t, fn.Body)
	require.NotNil(t, fn.FuncSym)
	assert.Equal(t, CallCdecl, fn.FuncData.CallConv)
	assert.Len(t, fn.FuncData.Args, 2)
	assert.Equal(t, TypeI32, fn.FuncData.ReturnType.Primitive)

	a := fn.FuncSym.Find("a", true).(*VarSymbol)
	b := fn.FuncSym.Find("b", true).(*VarSymbol)
	assert.True(t, a.IsArg)
	assert.Equal(t, 0, a.Offset)
	assert.Equal(t, 4, b.Offset)
}

func TestParseExternFunc(t *testing.T) {
	_, globals := parseString(t, "extern fn printf(u8[] fmt, ...) i32;")
	fn := globals.Find("printf", true).(*FuncSymbol)
	assert.Equal(t, AttrExtern, fn.Attr)
	assert.Nil(t, fn.Body)
	assert.True(t, fn.FuncData.Variadic)
}

func TestParseCallConvAttrs(t *testing.T) {
	_, globals := parseString(t, `
fn f(i32 a) void @stdcall { return; }
type Obj { i32 v; }
fn m(Obj* this, i32 k) void @thiscall { return; }`)

	f := globals.Find("f", true).(*FuncSymbol)
	assert.Equal(t, CallStdcall, f.FuncData.CallConv)

	m := globals.Find("m", true).(*FuncSymbol)
	assert.Equal(t, CallThiscall, m.FuncData.CallConv)
}

func TestParseCompositeReturnShiftsArgs(t *testing.T) {
	_, globals := parseString(t, `
type Pair { i32 a; i32 b; }
fn make(i32 x, i32 y) Pair {
    Pair p;
    return p;
}`)

	fn := globals.Find("make", true).(*FuncSymbol)
	// the hidden return slot sits before the visible arguments
	x := fn.FuncSym.Find("x", true).(*VarSymbol)
	y := fn.FuncSym.Find("y", true).(*VarSymbol)
	assert.Equal(t, 4, x.Offset)
	assert.Equal(t, 8, y.Offset)
}

func TestParsePointerAndArrayTypes(t *testing.T) {
	_, globals := parseString(t, "i32* p; i32** pp; u8[16] buf; u8[] s;")

	p := globals.Find("p", true).(*VarSymbol)
	require.True(t, IsPtr(p.DataType))
	assert.Equal(t, 1, p.DataType.PointerLevel)

	pp := globals.Find("pp", true).(*VarSymbol)
	assert.Equal(t, 2, pp.DataType.PointerLevel)

	buf := globals.Find("buf", true).(*VarSymbol)
	assert.Equal(t, KindArray, buf.DataType.Kind)
	assert.Equal(t, 16, buf.DataType.ArraySize)
	assert.Equal(t, 16, buf.DataType.Size)

	s := globals.Find("s", true).(*VarSymbol)
	assert.True(t, IsArrayPtr(s.DataType))
}

func TestParseForDesugarsToWhile(t *testing.T) {
	_, globals := parseString(t, `
fn f() void {
    i32 total = 0;
    for (i32 i = 0; i < 3; i = i + 1) {
        total = total + i;
    }
    return;
}`)
	fn := globals.Find("f", true).(*FuncSymbol)
	body := fn.Body.(*StmtList)
	// init assign + loop
	forStmts := body.Stmts[1].(*StmtList)
	require.Len(t, forStmts.Stmts, 2)
	loop, ok := forStmts.Stmts[1].(*While)
	require.True(t, ok)
	require.NotNil(t, loop.Inc)
}

func TestParseCast(t *testing.T) {
	unit, _ := parseString(t, "u8 c = 0; i32 x = (i32)c;")
	require.Len(t, unit.Stmts, 1)

	assign := unit.Stmts[0].(*Assign)
	cast, ok := assign.Right.(*Cast)
	require.True(t, ok)
	assert.Equal(t, TypeI32, cast.Target.DataType.Primitive)
	assert.Equal(t, "(i32)c", cast.String())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", "i32 x = 1", "expected ';'"},
		{"unknown type", "Foo x;", "undeclared"},
		{"redefinition", "i32 x; i32 x;", "redefinition"},
		{"bad attribute", "fn f() void @fastcall { return; }", "unknown attribute"},
		{"nested function", "fn f() void { fn g() void { return; } return; }", "expected expression"},
		{"undeclared", "x = 1;", "undeclared"},
		{"empty type", "type T { }", "empty type"},
		{"duplicate member", "type T { i32 a; i32 a; }", "duplicate member"},
		{"thiscall without this", "fn f() void @thiscall { return; }", "this parameter"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := parseError(t, c.src)
			assert.Contains(t, err.Message, c.want)
		})
	}
}

func TestParseCommaExpression(t *testing.T) {
	unit, _ := parseString(t, "i32 a = 0; i32 b = 0; a = (a = 1, b = 2);")
	last := unit.Stmts[len(unit.Stmts)-1]
	assert.Contains(t, last.String(), ",")
}
