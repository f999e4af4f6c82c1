// Code generation: single-pass lowering of the typed AST into x86-32
// assembly in AT&T syntax. Registers in play are eax (accumulator),
// ecx (scratch and this pointer), edx (shift count, divide high half,
// copy scratch) plus esi/edi for block copies.
//
// After emitting an expression, eax holds either the value itself or
// the address of the value; emitExpr reports which. Composite values
// (larger than a register) always stay as addresses and move through
// the memcpy helper.
package main

import (
	"fmt"
	"io"
	"strconv"
)

// InlineCopyLimit is the largest composite copied with unrolled moves;
// bigger copies use rep movsb (or the C runtime's memcpy when
// UseMemcpyCall is set).
const InlineCopyLimit = 16

// Codegen holds the per-compile emission state.
type Codegen struct {
	w      io.Writer
	target TargetOS

	// UseMemcpyCall routes large composite copies through the C
	// runtime instead of inline rep movsb.
	UseMemcpyCall bool

	labelCount int
	data       []string // interned string literals, emitted as .LC<n>

	// per-function state
	returnLabel    int
	returnType     *Type
	hiddenPtrSlot  int // ebp offset of the hidden return pointer, 0 if none
	tempSlotOffset int // frame offset of the composite-return temporary
	breakLabel     int
	continueLabel  int

	err error
}

// NewCodegen creates a generator writing to w for the given target OS.
func NewCodegen(w io.Writer, target TargetOS) *Codegen {
	return &Codegen{w: w, target: target}
}

// Err returns the first I/O error encountered while emitting.
func (g *Codegen) Err() error { return g.err }

func (g *Codegen) genf(format string, args ...any) {
	if g.err != nil {
		return
	}
	if _, err := fmt.Fprintf(g.w, format, args...); err != nil {
		g.err = err
		return
	}
	if _, err := io.WriteString(g.w, "\n"); err != nil {
		g.err = err
	}
}

func (g *Codegen) blank() {
	if g.err != nil {
		return
	}
	if _, err := io.WriteString(g.w, "\n"); err != nil {
		g.err = err
	}
}

func (g *Codegen) addLabel() int {
	label := g.labelCount
	g.labelCount++
	return label
}

// addData interns a string literal into the data pool and returns its
// .LC index.
func (g *Codegen) addData(s string) int {
	for i, existing := range g.data {
		if existing == s {
			return i
		}
	}
	g.data = append(g.data, s)
	return len(g.data) - 1
}

func (g *Codegen) sym(name string) string {
	return g.target.SymPrefix() + name
}

// mangle applies stdcall decoration.
func (g *Codegen) mangle(fn *FuncSymbol) string {
	if fn.FuncData.CallConv == CallStdcall {
		return g.sym(fn.Ident) + "@" + strconv.Itoa(funcArgsSize(&fn.FuncData))
	}
	return g.sym(fn.Ident)
}

// funcArgsSize is the callee-visible argument byte count: every
// argument padded to a word, plus the hidden return pointer slot for
// composite returns. For thiscall this includes the this pointer,
// which the callee re-pushes and cleans itself.
func funcArgsSize(meta *FuncMeta) int {
	size := 0
	for _, arg := range meta.Args {
		size += alignWord(arg.Size)
	}
	if meta.ReturnType.Size > RegisterSize && !meta.ReturnType.Incomplete {
		size += PtrSize
	}
	return size
}

// emitLoadAddress turns the address in eax into the value, with a
// size- and sign-appropriate move. Composites stay as addresses.
func (g *Codegen) emitLoadAddress(t *Type) {
	switch t.Size {
	case 4:
		g.genf("    movl (%%eax), %%eax")
	case 3:
		g.genf("    movl %%eax, %%ecx")
		g.genf("    movzwl (%%ecx), %%eax")
		g.genf("    movb 2(%%ecx), %%ah")
	case 2:
		if t.Kind == KindPrimitive && t.Primitive == TypeI16 {
			g.genf("    movswl (%%eax), %%eax")
		} else {
			g.genf("    movzwl (%%eax), %%eax")
		}
	case 1:
		if t.Kind == KindPrimitive && t.Primitive == TypeI8 {
			g.genf("    movsbl (%%eax), %%eax")
		} else {
			g.genf("    movzbl (%%eax), %%eax")
		}
	}
}

// emitValue emits e and guarantees the value (not its address) in eax.
func (g *Codegen) emitValue(e Expr) {
	if g.emitExpr(e) {
		g.emitLoadAddress(e.Info().Type)
	}
}

// emitMemcpy copies size bytes from the address in src to the address
// in dest. dest and src must not be %edx, %esi, %edi or %esp.
func (g *Codegen) emitMemcpy(dest, src string, size int) {
	if g.UseMemcpyCall {
		g.genf("    movl $%d, %%edx", size)
		g.genf("    pushl %%edx")
		g.genf("    pushl %s", src)
		g.genf("    pushl %s", dest)
		g.genf("    call %s", g.sym("memcpy"))
		g.genf("    addl $12, %%esp")
		return
	}

	if size <= InlineCopyLimit {
		for offset := 0; offset < size; {
			switch {
			case size-offset >= 4:
				g.genf("    movl %d(%s), %%edx", offset, src)
				g.genf("    movl %%edx, %d(%s)", offset, dest)
				offset += 4
			case size-offset >= 2:
				g.genf("    movw %d(%s), %%dx", offset, src)
				g.genf("    movw %%dx, %d(%s)", offset, dest)
				offset += 2
			default:
				g.genf("    movb %d(%s), %%dl", offset, src)
				g.genf("    movb %%dl, %d(%s)", offset, dest)
				offset++
			}
		}
		return
	}

	g.genf("    pushl %%esi")
	g.genf("    pushl %%edi")
	g.genf("    pushl %%ecx")
	g.genf("    movl %s, %%esi", src)
	g.genf("    movl %s, %%edi", dest)
	g.genf("    movl $%d, %%ecx", size)
	g.genf("    cld")
	g.genf("    rep movsb")
	g.genf("    popl %%ecx")
	g.genf("    popl %%edi")
	g.genf("    popl %%esi")
}

// pointeeSize is the stride of pointer arithmetic on t. void* advances
// by single bytes; deeper pointer levels step over pointers.
func pointeeSize(t *Type) int {
	if IsArrayPtr(t) {
		return t.Inner.Size
	}
	if t.PointerLevel > 1 {
		return PtrSize
	}
	if IsVoid(t.Inner) {
		return 1
	}
	return t.Inner.Size
}

// emitExpr emits code for an expression and reports whether eax holds
// the address of the result rather than the result itself.
func (g *Codegen) emitExpr(e Expr) bool {
	switch n := e.(type) {
	case *IntLit:
		g.genf("    movl $%d, %%eax", n.Val)
		return false

	case *StrLit:
		g.genf("    movl $.LC%d, %%eax", g.addData(n.Val))
		return false

	case *VarRef:
		return g.emitVar(n)

	case *BinaryOp:
		return g.emitBinop(n)

	case *UnaryOp:
		return g.emitUnaryop(n)

	case *Assign:
		return g.emitAssign(n)

	case *Call:
		return g.emitCall(n)

	case *Index:
		g.emitIndex(n)
		return true

	case *Field:
		g.emitField(n)
		return true

	case *Cast:
		g.emitValue(n.X)
		return false

	default:
		panic("unreachable")
	}
}

func (g *Codegen) emitVar(ref *VarRef) bool {
	switch sym := ref.Sym.(type) {
	case *VarSymbol:
		switch {
		case sym.IsGlobal || sym.Attr == AttrExtern:
			g.genf("    movl $%s, %%eax", g.sym(sym.Ident))
		case sym.IsArg:
			g.genf("    leal %d(%%ebp), %%eax", sym.Table.ArgOffset+sym.Offset)
		default:
			size := alignWord(sym.DataType.Size)
			if size < PtrSize {
				size = PtrSize
			}
			g.genf("    leal -%d(%%ebp), %%eax", sym.Offset+size)
		}
		return true

	case *FuncSymbol:
		g.genf("    movl $%s, %%eax", g.mangle(sym))
		return false

	default:
		panic("unreachable")
	}
}

func (g *Codegen) emitBinop(binop *BinaryOp) bool {
	if binop.Op == TkComma {
		// The left value is discarded; a dangling address is fine.
		g.emitExpr(binop.Left)
		return g.emitExpr(binop.Right)
	}

	lType := binop.Left.Info().Type
	rType := binop.Right.Info().Type

	// Short-circuit forms evaluate the right operand only behind the
	// branch.
	if binop.Op == TkLand || binop.Op == TkLor {
		join := g.addLabel()
		g.emitValue(binop.Left)
		g.genf("    testl %%eax, %%eax")
		if binop.Op == TkLand {
			g.genf("    jz .L%d", join)
		} else {
			g.genf("    jnz .L%d", join)
		}
		g.emitValue(binop.Right)
		g.genf(".L%d:", join)
		return false
	}

	g.emitValue(binop.Left)
	g.genf("    pushl %%eax")
	g.emitValue(binop.Right)
	g.genf("    movl %%eax, %%ecx")
	g.genf("    popl %%eax")

	if IsBool(lType) {
		// equality on bool
		g.genf("    cmpl %%ecx, %%eax")
		if binop.Op == TkEq {
			g.genf("    sete %%al")
		} else {
			g.genf("    setne %%al")
		}
		g.genf("    movzbl %%al, %%eax")
		return false
	}

	switch binop.Op {
	case TkAdd, TkSub:
		lPtr := IsPtrLike(lType)
		rPtr := IsPtrLike(rType)

		if lPtr || rPtr {
			pType := lType
			if rPtr {
				pType = rType
			}
			if size := pointeeSize(pType); size != 1 {
				// scale the integer operand by the element size
				if lPtr {
					g.genf("    imull $%d, %%ecx", size)
				} else {
					g.genf("    imull $%d, %%eax", size)
				}
			}
		}
		if binop.Op == TkAdd {
			g.genf("    addl %%ecx, %%eax")
		} else {
			g.genf("    subl %%ecx, %%eax")
		}

	case TkEq, TkNe, TkLt, TkLe, TkGt, TkGe:
		g.genf("    cmpl %%ecx, %%eax")
		switch binop.Op {
		case TkEq:
			g.genf("    sete %%al")
		case TkNe:
			g.genf("    setne %%al")
		case TkLt:
			g.genf("    setl %%al")
		case TkLe:
			g.genf("    setle %%al")
		case TkGt:
			g.genf("    setg %%al")
		case TkGe:
			g.genf("    setge %%al")
		}
		g.genf("    movzbl %%al, %%eax")

	default:
		promoted := ImplicitTypeConvert(lType.Primitive, rType.Primitive)
		signed := IsSigned(promoted)

		switch binop.Op {
		case TkMul:
			g.genf("    imull %%ecx, %%eax")

		case TkDiv:
			if signed {
				g.genf("    cdq")
				g.genf("    idivl %%ecx")
			} else {
				g.genf("    xorl %%edx, %%edx")
				g.genf("    divl %%ecx")
			}

		case TkMod:
			if signed {
				g.genf("    cdq")
				g.genf("    idivl %%ecx")
			} else {
				g.genf("    xorl %%edx, %%edx")
				g.genf("    divl %%ecx")
			}
			g.genf("    movl %%edx, %%eax")

		case TkShl:
			g.genf("    shll %%cl, %%eax")

		case TkShr:
			if signed {
				g.genf("    sarl %%cl, %%eax")
			} else {
				g.genf("    shrl %%cl, %%eax")
			}

		case TkAnd:
			g.genf("    andl %%ecx, %%eax")

		case TkXor:
			g.genf("    xorl %%ecx, %%eax")

		case TkOr:
			g.genf("    orl %%ecx, %%eax")

		default:
			panic("unreachable")
		}
	}

	return false
}

func (g *Codegen) emitUnaryop(unaryop *UnaryOp) bool {
	isAddr := g.emitExpr(unaryop.Operand)
	opType := unaryop.Operand.Info().Type

	switch unaryop.Op {
	case TkAdd:
		if isAddr {
			g.emitLoadAddress(opType)
		}
		return false

	case TkSub:
		if isAddr {
			g.emitLoadAddress(opType)
		}
		g.genf("    negl %%eax")
		return false

	case TkNot:
		if isAddr {
			g.emitLoadAddress(opType)
		}
		g.genf("    notl %%eax")
		return false

	case TkLnot:
		if isAddr {
			g.emitLoadAddress(opType)
		}
		g.genf("    testl %%eax, %%eax")
		g.genf("    sete %%al")
		g.genf("    movzbl %%al, %%eax")
		return false

	case TkMul:
		// Load the pointer value; it is the address of the pointee.
		if isAddr {
			g.emitLoadAddress(opType)
		}
		return true

	case TkAnd:
		// The operand is an lvalue, so eax already holds its address.
		return false

	default:
		panic("unreachable")
	}
}

func (g *Codegen) emitAssign(assign *Assign) bool {
	g.emitExpr(assign.Left)
	lType := assign.Left.Info().Type

	g.genf("    pushl %%eax")
	g.emitValue(assign.Right)
	g.genf("    popl %%ecx")

	// ecx = destination address, eax = value (or source address for
	// composites).
	switch lType.Size {
	case 4:
		g.genf("    movl %%eax, (%%ecx)")
	case 3:
		g.genf("    movw %%ax, (%%ecx)")
		g.genf("    movb %%ah, 2(%%ecx)")
	case 2:
		g.genf("    movw %%ax, (%%ecx)")
	case 1:
		g.genf("    movb %%al, (%%ecx)")
	default:
		g.emitMemcpy("%ecx", "%eax", lType.Size)
	}

	g.genf("    movl %%ecx, %%eax")
	return true
}

func (g *Codegen) emitIndex(idx *Index) {
	isAddr := g.emitExpr(idx.Left)
	lType := idx.Left.Info().Type

	// Unsized arrays hold a pointer; sized arrays are the storage.
	if isAddr && lType.ArraySize == 0 {
		g.emitLoadAddress(lType)
	}

	g.genf("    pushl %%eax")
	g.emitValue(idx.Right)
	g.genf("    popl %%ecx")
	// ecx = array base, eax = index
	if size := lType.Inner.Size; size != 1 {
		g.genf("    imull $%d, %%eax", size)
	}
	g.genf("    addl %%ecx, %%eax")
}

func (g *Codegen) emitField(field *Field) {
	isAddr := g.emitExpr(field.X)
	xType := field.X.Info().Type

	if xType.Kind == KindPointer && xType.PointerLevel == 1 {
		// member access through pointer
		if isAddr {
			g.emitLoadAddress(xType)
		}
	}

	if field.Sym.Offset != 0 {
		g.genf("    leal %d(%%eax), %%eax", field.Sym.Offset)
	}
}

/*
 * Frame and call layout:
 *
 *	local n          [ebp]-stack   <- esp after prologue (plus temp)
 *	local 1          [ebp]-4
 *	saved ebp        <- ebp
 *	return address
 *	this             [ebp]+8       (thiscall only, re-pushed by callee)
 *	hidden ret ptr   [ebp]+8/+12   (composite returns)
 *	arg 1            following
 *	arg 2            ...
 */
func (g *Codegen) emitCall(call *Call) bool {
	funcType := call.Callee.Info().Type
	meta := funcType.Func
	conv := meta.CallConv
	returnType := meta.ReturnType
	hidden := !returnType.Incomplete && returnType.Size > RegisterSize

	args := call.Args
	var thisArg Expr
	if conv == CallThiscall {
		thisArg, args = args[0], args[1:]
	}

	// this is evaluated first (source order) and parked above the
	// argument block; it moves into ecx right before the call.
	if thisArg != nil {
		g.emitValue(thisArg)
		g.genf("    pushl %%eax")
	}

	// Reserve the whole argument block, then store every argument at
	// its final position. This keeps evaluation left-to-right while
	// producing the C layout: first argument at the lowest address.
	blockSize := 0
	offsets := make([]int, len(args))
	if hidden {
		blockSize += PtrSize
	}
	for i, arg := range args {
		offsets[i] = blockSize
		blockSize += alignWord(arg.Info().Type.Size)
	}

	if blockSize > 0 {
		g.genf("    subl $%d, %%esp", blockSize)
	}

	for i, arg := range args {
		size := arg.Info().Type.Size
		if size > RegisterSize {
			g.emitExpr(arg)
			g.genf("    leal %d(%%esp), %%ecx", offsets[i])
			g.emitMemcpy("%ecx", "%eax", size)
		} else {
			g.emitValue(arg)
			g.genf("    movl %%eax, %d(%%esp)", offsets[i])
		}
	}

	if hidden {
		g.genf("    leal -%d(%%ebp), %%eax", g.tempSlotOffset)
		g.genf("    movl %%eax, (%%esp)")
	}

	g.emitValue(call.Callee)

	if thisArg != nil {
		g.genf("    movl %d(%%esp), %%ecx", blockSize)
	}

	g.genf("    call *%%eax")

	switch conv {
	case CallCdecl:
		if blockSize > 0 {
			g.genf("    addl $%d, %%esp", blockSize)
		}
	case CallThiscall:
		// The callee cleaned the block and its re-pushed this; only
		// the parked copy remains.
		g.genf("    addl $%d, %%esp", PtrSize)
	}

	if IsVoid(returnType) {
		return false
	}
	if hidden {
		// The callee wrote through the hidden pointer and returned it.
		return true
	}
	if returnType.Kind != KindPrimitive {
		return false
	}

	switch returnType.Size {
	case 2:
		if returnType.Primitive == TypeI16 {
			g.genf("    movswl %%ax, %%eax")
		} else {
			g.genf("    movzwl %%ax, %%eax")
		}
	case 1:
		if returnType.Primitive == TypeI8 {
			g.genf("    movsbl %%al, %%eax")
		} else {
			g.genf("    movzbl %%al, %%eax")
		}
	}
	return false
}

// emitPrint lowers the print builtin onto printf: the argument block
// is laid out as (format, args...) and cleaned by the caller.
func (g *Codegen) emitPrint(print *Print) {
	blockSize := RegisterSize * (1 + len(print.Args))
	g.genf("    subl $%d, %%esp", blockSize)

	for i, arg := range print.Args {
		g.emitValue(arg)
		g.genf("    movl %%eax, %d(%%esp)", RegisterSize*(1+i))
	}

	g.genf("    movl $.LC%d, %%eax", g.addData(print.Fmt))
	g.genf("    movl %%eax, (%%esp)")
	g.genf("    call %s", g.sym("printf"))
	g.genf("    addl $%d, %%esp", blockSize)
}

func (g *Codegen) emitReturn(ret *Return) {
	if ret.Value != nil {
		if !g.returnType.Incomplete && g.returnType.Size > RegisterSize {
			g.emitExpr(ret.Value)
			g.genf("    movl %d(%%ebp), %%ecx", g.hiddenPtrSlot)
			g.emitMemcpy("%ecx", "%eax", g.returnType.Size)
			g.genf("    movl %d(%%ebp), %%eax", g.hiddenPtrSlot)
		} else {
			g.emitValue(ret.Value)
		}
	}
	g.genf("    jmp .L%d", g.returnLabel)
}

func (g *Codegen) emitIf(node *If) {
	/*
	 *      <cond>
	 *      jz else_label
	 *      <then>
	 *      jmp end_label
	 *  else_label:
	 *      <else>
	 *  end_label:
	 */
	endLabel := g.addLabel()
	elseLabel := g.addLabel()

	g.emitValue(node.Cond)
	g.genf("    testl %%eax, %%eax")
	g.genf("    jz .L%d", elseLabel)

	g.emitNode(node.Then)
	g.genf("    jmp .L%d", endLabel)
	g.genf(".L%d:", elseLabel)

	if node.Else != nil {
		g.emitNode(node.Else)
	}
	g.genf(".L%d:", endLabel)
}

func (g *Codegen) emitWhile(node *While) {
	/*
	 *  loop_label:
	 *      <cond>
	 *      jz end_label
	 *      <body>
	 *  inc_label:
	 *      <inc>
	 *      jmp loop_label
	 *  end_label:
	 */
	loopLabel := g.addLabel()
	incLabel := g.addLabel()
	endLabel := g.addLabel()

	g.genf(".L%d:", loopLabel)
	g.emitValue(node.Cond)
	g.genf("    testl %%eax, %%eax")
	g.genf("    jz .L%d", endLabel)

	prevBreak := g.breakLabel
	prevContinue := g.continueLabel
	g.breakLabel = endLabel
	g.continueLabel = incLabel

	g.emitNode(node.Body)

	g.breakLabel = prevBreak
	g.continueLabel = prevContinue

	g.genf(".L%d:", incLabel)
	if node.Inc != nil {
		g.emitNode(node.Inc)
	}
	g.genf("    jmp .L%d", loopLabel)
	g.genf(".L%d:", endLabel)
}

func (g *Codegen) emitGoto(node *Goto) {
	switch node.Op {
	case TkBreak:
		g.genf("    jmp .L%d", g.breakLabel)
	case TkContinue:
		g.genf("    jmp .L%d", g.continueLabel)
	default:
		panic("unreachable")
	}
}

func (g *Codegen) emitNode(n Node) {
	switch node := n.(type) {
	case *StmtList:
		for _, stmt := range node.Stmts {
			g.emitNode(stmt)
		}
	case *Print:
		g.emitPrint(node)
	case *Return:
		g.emitReturn(node)
	case *If:
		g.emitIf(node)
	case *While:
		g.emitWhile(node)
	case *Goto:
		g.emitGoto(node)
	case *Asm:
		g.genf("    %s", node.Text)
	case Expr:
		g.emitExpr(node)
	default:
		panic("unreachable")
	}
}

func (g *Codegen) emitFuncStart(stackSize int) {
	g.genf("    pushl %%ebp")
	g.genf("    movl %%esp, %%ebp")
	if stackSize > 0 {
		g.genf("    subl $%d, %%esp", stackSize)
	}
}

func (g *Codegen) emitFuncExit(argsSize int) {
	g.genf(".L%d:", g.returnLabel)
	g.genf("    leave")
	if argsSize > 0 {
		g.genf("    ret $%d", argsSize)
	} else {
		g.genf("    ret")
	}
}

// frameSize is the prologue reservation: locals plus the shared
// composite-return temporary.
func frameSize(scope *SymbolTable) int {
	return *scope.StackSize + alignWord(scope.MaxStructRet)
}

func (g *Codegen) setupFuncState(returnType *Type, scope *SymbolTable) {
	g.returnLabel = g.addLabel()
	g.returnType = returnType
	g.tempSlotOffset = frameSize(scope)
	g.hiddenPtrSlot = 0
}

func (g *Codegen) emitFunc(fn *FuncSymbol) {
	meta := &fn.FuncData
	g.setupFuncState(meta.ReturnType, fn.FuncSym)

	hidden := !meta.ReturnType.Incomplete && meta.ReturnType.Size > RegisterSize
	if hidden {
		g.hiddenPtrSlot = 8
		if meta.CallConv == CallThiscall {
			g.hiddenPtrSlot = 12
		}
	}

	name := g.mangle(fn)
	g.genf("%s:", name)

	if meta.CallConv == CallThiscall {
		// Re-push this below the return address so the body can treat
		// the function as stdcall-like.
		g.genf("    popl %%edx")
		g.genf("    pushl %%ecx")
		g.genf("    pushl %%edx")
	}

	g.emitFuncStart(frameSize(fn.FuncSym))
	g.emitNode(fn.Body)

	if hidden {
		// In case the body falls off the end without a return.
		g.genf("    movl %d(%%ebp), %%eax", g.hiddenPtrSlot)
	}

	// For thiscall the argument size already counts this, which the
	// callee re-pushed and now cleans along with the block.
	argsSize := funcArgsSize(meta)
	if meta.CallConv == CallCdecl {
		g.emitFuncExit(0)
	} else {
		g.emitFuncExit(argsSize)
	}

	g.genf(".globl %s", name)
}

// Generate emits the whole unit: globals, functions, the synthesized
// entry point when the user did not define one, then the string pool.
func Generate(g *Codegen, unit *StmtList, globals *SymbolTable, entrySym string) error {
	// Global variables
	g.genf(".data")

	globals.Entries(func(s Symbol) bool {
		v, ok := s.(*VarSymbol)
		if !ok || v.Attr == AttrExtern {
			return true
		}
		g.genf("%s:", g.sym(v.Ident))
		if v.InitVal != nil {
			switch init := v.InitVal.(type) {
			case *IntLit:
				g.genf("    .long %d", init.Val)
			case *StrLit:
				g.genf("    .long .LC%d", g.addData(init.Val))
			default:
				panic("unreachable")
			}
		} else {
			g.genf("    .zero %d", alignWord(v.DataType.Size))
		}
		g.genf(".globl %s", g.sym(v.Ident))
		g.blank()
		return true
	})

	// Functions, oldest first to match source order.
	g.genf(".text")

	var funcs []*FuncSymbol
	globals.Entries(func(s Symbol) bool {
		if fn, ok := s.(*FuncSymbol); ok && fn.Body != nil {
			funcs = append(funcs, fn)
		}
		return true
	})
	for i := len(funcs) - 1; i >= 0; i-- {
		g.emitFunc(funcs[i])
		g.blank()
	}

	// Entry synthesis: wrap the top-level statement list.
	if globals.Find(entrySym, true) == nil {
		g.setupFuncState(GetPrimitiveType(TypeI32), globals)

		g.genf("%s:", g.sym(entrySym))
		g.emitFuncStart(frameSize(globals))
		g.emitNode(unit)
		g.genf("    xorl %%eax, %%eax")
		g.emitFuncExit(0)
		g.genf(".globl %s", g.sym(entrySym))
	}

	g.blank()

	// String pool
	g.genf(".data")
	for i, s := range g.data {
		g.genf(".LC%d:", i)
		g.genf("    .string \"%s\"", s)
	}

	return g.err
}
