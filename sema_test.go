package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeString(t *testing.T, src string) (*StmtList, *SymbolTable, *CompilerError) {
	t.Helper()
	globals := NewSymbolTable(0, nil, true)
	parser := NewParser(newTestSource(src), globals)
	unit, err := parser.ParseUnit()
	require.Nil(t, err, "parse error: %v", err)
	return unit, globals, Analyze(unit, globals)
}

func analyzeOK(t *testing.T, src string) (*StmtList, *SymbolTable) {
	t.Helper()
	unit, globals, err := analyzeString(t, src)
	require.Nil(t, err, "unexpected semantic error: %v", err)
	return unit, globals
}

func analyzeErr(t *testing.T, src string) *CompilerError {
	t.Helper()
	_, _, err := analyzeString(t, src)
	require.NotNil(t, err, "expected a semantic error")
	return err
}

func TestSemaIntLiteralTypes(t *testing.T) {
	unit, _ := analyzeOK(t, "i32 x = 0; x = 2 + 3;")
	assign := unit.Stmts[0].(*Assign)
	assert.Equal(t, TypeI32, assign.Right.Info().Type.Primitive)
	assert.False(t, assign.Right.Info().IsLvalue)
	// the assignment itself stays an lvalue of the left type
	assert.True(t, assign.Info().IsLvalue)
	assert.Equal(t, TypeI32, assign.Info().Type.Primitive)
}

func TestSemaNullLiteralIsVoidPtr(t *testing.T) {
	unit, _ := analyzeOK(t, "i32* p; p = null;")
	assign := unit.Stmts[0].(*Assign)
	assert.True(t, IsVoidPtr(assign.Right.Info().Type))
}

func TestSemaStringLiteral(t *testing.T) {
	unit, _ := analyzeOK(t, `u8[] s; s = "hi";`)
	assign := unit.Stmts[0].(*Assign)
	assert.True(t, IsArrayPtr(assign.Right.Info().Type))
}

func TestSemaImplicitPromotion(t *testing.T) {
	unit, _ := analyzeOK(t, "u8 a; i16 b; i32 r; r = a + b;")
	assign := unit.Stmts[0].(*Assign)
	sum := assign.Right.(*BinaryOp)
	assert.Equal(t, TypeU16, sum.Info().Type.Primitive)
}

func TestSemaVariableIsLvalue(t *testing.T) {
	unit, _ := analyzeOK(t, "i32 x = 0; x = x;")
	assign := unit.Stmts[0].(*Assign)
	assert.True(t, assign.Right.Info().IsLvalue)
}

func TestSemaAssignToRvalue(t *testing.T) {
	err := analyzeErr(t, "i32 x = 0; 1 = x;")
	assert.Contains(t, err.Message, "lvalue required")
}

func TestSemaAddressOfRvalue(t *testing.T) {
	err := analyzeErr(t, "i32* p = &1;")
	assert.Contains(t, err.Message, "lvalue required")
}

func TestSemaAddressOfAndDeref(t *testing.T) {
	unit, _ := analyzeOK(t, "i32 x = 0; i32* p; p = &x; x = *p;")
	addr := unit.Stmts[0].(*Assign)
	require.True(t, IsPtr(addr.Right.Info().Type))
	assert.Equal(t, 1, addr.Right.Info().Type.PointerLevel)

	deref := unit.Stmts[1].(*Assign)
	assert.Equal(t, TypeI32, deref.Right.Info().Type.Primitive)
	assert.True(t, deref.Right.Info().IsLvalue)
}

func TestSemaDerefCollapsesPointerLevel(t *testing.T) {
	unit, _ := analyzeOK(t, "i32** pp; i32* p; p = *pp;")
	assign := unit.Stmts[0].(*Assign)
	got := assign.Right.Info().Type
	require.True(t, IsPtr(got))
	assert.Equal(t, 1, got.PointerLevel)
}

func TestSemaDerefNonPointer(t *testing.T) {
	err := analyzeErr(t, "i32 x = 0; x = *x;")
	assert.Contains(t, err.Message, "indirection")
}

func TestSemaBoolConditions(t *testing.T) {
	analyzeOK(t, "bool b; if (b) { b = false; }")
	err := analyzeErr(t, "i32 x = 0; if (x) { x = 1; }")
	assert.Contains(t, err.Message, "bool")
}

func TestSemaLogicalNeedsBool(t *testing.T) {
	err := analyzeErr(t, "i32 a = 0; bool c; c = a && a;")
	assert.Contains(t, err.Message, "boolean")
}

func TestSemaBreakOutsideLoop(t *testing.T) {
	err := analyzeErr(t, "break;")
	assert.Contains(t, err.Message, "break statement not within a loop")

	err = analyzeErr(t, "continue;")
	assert.Contains(t, err.Message, "continue statement not within a loop")
}

func TestSemaBreakInsideLoop(t *testing.T) {
	analyzeOK(t, `
bool cond;
while (cond) {
    if (cond) { break; }
    continue;
}`)
}

func TestSemaBreakAfterLoopBody(t *testing.T) {
	err := analyzeErr(t, "bool c; while (c) { c = false; } break;")
	assert.Contains(t, err.Message, "not within a loop")
}

func TestSemaPointerArithmetic(t *testing.T) {
	unit, _ := analyzeOK(t, "i32* p; p = p + 1;")
	assign := unit.Stmts[0].(*Assign)
	assert.True(t, IsPtr(assign.Right.Info().Type))

	// integer + pointer works too
	analyzeOK(t, "i32* p; p = 1 + p;")

	// pointer + pointer does not
	err := analyzeErr(t, "i32* p; i32* q; p = p + q;")
	assert.Contains(t, err.Message, "invalid operands")
}

func TestSemaVoidPtrComparisons(t *testing.T) {
	analyzeOK(t, "i32* p; bool b; b = p == null;")
	analyzeOK(t, "u8[] s; bool b; b = s != null;")

	// ordering is stricter than equality
	err := analyzeErr(t, "i32* p; i32* q; bool b; b = p < q;")
	assert.Contains(t, err.Message, "comparison")
}

func TestSemaUnsizedArrayOrdering(t *testing.T) {
	analyzeOK(t, "u8[] a; u8[] b; bool c; c = a < b;")
	err := analyzeErr(t, "u8[] a; u16[] b; bool c; c = a < b;")
	assert.Contains(t, err.Message, "comparison")
}

func TestSemaCallChecks(t *testing.T) {
	analyzeOK(t, `
fn add(i32 a, i32 b) i32 { return a + b; }
i32 r = add(1, 2);`)

	err := analyzeErr(t, `
fn add(i32 a, i32 b) i32 { return a + b; }
i32 r = add(1);`)
	assert.Contains(t, err.Message, "too few arguments")

	err = analyzeErr(t, `
fn add(i32 a, i32 b) i32 { return a + b; }
i32 r = add(1, 2, 3);`)
	assert.Contains(t, err.Message, "too many arguments")

	err = analyzeErr(t, `
fn f(i32* p) void { return; }
i32 x = 0;
f(x);`)
	assert.Contains(t, err.Message, "invalid type")
}

func TestSemaVariadicCall(t *testing.T) {
	analyzeOK(t, `
extern fn printf(u8[] fmt, ...) i32;
i32 n = printf("%d %d\n", 1, 2);`)
}

func TestSemaCallNonFunction(t *testing.T) {
	err := analyzeErr(t, "i32 x = 0; i32 y = x(1);")
	assert.Contains(t, err.Message, "not a function")
}

func TestSemaReturnTypes(t *testing.T) {
	analyzeOK(t, "fn f() void { return; }")
	analyzeOK(t, "fn f() i32 { return 1; }")
	analyzeOK(t, "fn f() u8 { return 300; }") // integer conversion

	err := analyzeErr(t, "fn f() void { return 1; }")
	assert.Contains(t, err.Message, "invalid return type")

	err = analyzeErr(t, "fn f() i32* { return 1; }")
	assert.Contains(t, err.Message, "invalid return type")
}

func TestSemaTopLevelReturnsI32(t *testing.T) {
	analyzeOK(t, "return 0;")
	err := analyzeErr(t, "u8[] s; return s;")
	assert.Contains(t, err.Message, "invalid return type")
}

func TestSemaIndexing(t *testing.T) {
	unit, _ := analyzeOK(t, "u8[16] buf; u8 c; c = buf[3];")
	assign := unit.Stmts[0].(*Assign)
	assert.Equal(t, TypeU8, assign.Right.Info().Type.Primitive)
	assert.True(t, assign.Right.Info().IsLvalue)

	err := analyzeErr(t, "i32 x = 0; i32 y = x[0];")
	assert.Contains(t, err.Message, "subscripted")

	err = analyzeErr(t, `u8[16] buf; u8 c = buf["a"];`)
	assert.Contains(t, err.Message, "subscript is not an integer")
}

func TestSemaFieldAccess(t *testing.T) {
	unit, _ := analyzeOK(t, `
type Vec { i32 x; i32 y; }
Vec v;
i32 n = v.x;`)
	assign := unit.Stmts[0].(*Assign)
	field := assign.Right.(*Field)
	assert.Equal(t, TypeI32, field.Info().Type.Primitive)
	assert.True(t, field.Info().IsLvalue)
	require.NotNil(t, field.Sym)

	// auto-dereference through a single-level pointer
	analyzeOK(t, `
type Vec { i32 x; i32 y; }
Vec v;
Vec* p;
i32 n = p.x;`)

	err := analyzeErr(t, "i32 x = 0; i32 y = x.z;")
	assert.Contains(t, err.Message, "not a struct")

	err = analyzeErr(t, `
type Vec { i32 x; }
Vec v;
i32 n = v.w;`)
	assert.Contains(t, err.Message, "no member")
}

func TestSemaPrintArgSizes(t *testing.T) {
	analyzeOK(t, `i32 x = 0; print("%d\n", x);`)

	err := analyzeErr(t, `
type Big { i32 a; i32 b; }
Big b;
print("%d\n", b);`)
	assert.Contains(t, err.Message, "invalid type")
}

func TestSemaAssignability(t *testing.T) {
	// void* converts both ways
	analyzeOK(t, "void* v; i32* p; v = p; p = v;")
	// array decay: pointer to sized array assigns to unsized array
	analyzeOK(t, "u8[8] buf; u8[] s; s = &buf;")

	err := analyzeErr(t, "i32* p; u8* q; p = q;")
	assert.Contains(t, err.Message, "not assignable")
}

func TestSemaCasts(t *testing.T) {
	analyzeOK(t, "u8 c; i32 x; x = (i32)c;")
	analyzeOK(t, "void* v; i32* p; p = (i32*)v;")

	unit, _ := analyzeOK(t, "u8 c; i32 x; x = (i32)c;")
	assign := unit.Stmts[0].(*Assign)
	cast := assign.Right.(*Cast)
	assert.Equal(t, TypeI32, cast.Info().Type.Primitive)
	assert.False(t, cast.Info().IsLvalue)
}

func TestSemaUnaryOperand(t *testing.T) {
	analyzeOK(t, "i32 x = 0; x = -x; x = ~x;")
	analyzeOK(t, "bool b; b = !b;")

	err := analyzeErr(t, "bool b; b = -b;")
	assert.Contains(t, err.Message, "unary")

	err = analyzeErr(t, "i32 x = 0; x = !x;")
	assert.Contains(t, err.Message, "unary")
}

func TestSemaIncompletePointerArithmetic(t *testing.T) {
	// void* arithmetic is allowed and byte-scaled
	analyzeOK(t, "void* p; p = p + 7;")
}

func TestSemaCompositeReturnTracking(t *testing.T) {
	_, globals := analyzeOK(t, `
type Pair { i32 a; i32 b; }
fn make() Pair { Pair p; return p; }
fn use() i32 {
    Pair p;
    p = make();
    return p.a;
}`)

	use := globals.Find("use", true).(*FuncSymbol)
	assert.Equal(t, 8, use.FuncSym.MaxStructRet)

	make := globals.Find("make", true).(*FuncSymbol)
	assert.Equal(t, 0, make.FuncSym.MaxStructRet)
}

func TestSemaFunctionDesignatorNotLvalue(t *testing.T) {
	err := analyzeErr(t, `
fn f() void { return; }
f = f;`)
	assert.Contains(t, err.Message, "lvalue")
}
