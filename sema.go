// Semantic analysis: walks the AST top-down, fills each expression's
// type-info slot and enforces the typing rules. Returns the first
// error encountered; the code generator then assumes a well-typed AST.
package main

// Sema carries the walk state: the expected return type of the
// enclosing function, the loop nesting depth, and the scope whose
// composite-return accumulator the current walk feeds.
type Sema struct {
	returnType *Type
	loopDepth  int
	frameScope *SymbolTable
}

// Analyze checks every function body in the global scope, then the
// top-level statement list under an implicit i32 return type.
func Analyze(unit *StmtList, globals *SymbolTable) *CompilerError {
	s := &Sema{}

	var err *CompilerError
	globals.Entries(func(sym Symbol) bool {
		fn, ok := sym.(*FuncSymbol)
		if !ok || fn.Body == nil {
			return true
		}
		err = s.checkFunc(fn)
		return err == nil
	})
	if err != nil {
		return err
	}

	s.returnType = GetPrimitiveType(TypeI32)
	s.frameScope = globals
	return s.checkNode(unit)
}

func (s *Sema) checkFunc(fn *FuncSymbol) *CompilerError {
	prev := s.returnType
	prevScope := s.frameScope
	s.returnType = fn.FuncData.ReturnType
	s.frameScope = fn.FuncSym
	err := s.checkNode(fn.Body)
	s.returnType = prev
	s.frameScope = prevScope
	return err
}

func (s *Sema) checkNode(n Node) *CompilerError {
	switch node := n.(type) {
	case *StmtList:
		for _, stmt := range node.Stmts {
			if err := s.checkNode(stmt); err != nil {
				return err
			}
		}
		return nil

	case *IntLit:
		info := node.Info()
		info.IsLvalue = false
		if node.DataType == TypeVoid {
			// null pointer literal
			info.Type = GetVoidPtrType()
		} else {
			info.Type = GetPrimitiveType(node.DataType)
		}
		return nil

	case *StrLit:
		info := node.Info()
		info.IsLvalue = false
		info.Type = GetStringType()
		return nil

	case *BinaryOp:
		return s.checkBinop(node)

	case *UnaryOp:
		return s.checkUnaryop(node)

	case *VarRef:
		return s.checkVar(node)

	case *Assign:
		return s.checkAssign(node)

	case *If:
		return s.checkIf(node)

	case *While:
		return s.checkWhile(node)

	case *Goto:
		return s.checkGoto(node)

	case *Call:
		return s.checkCall(node)

	case *Print:
		return s.checkPrint(node)

	case *Return:
		return s.checkReturn(node)

	case *Field:
		return s.checkField(node)

	case *Index:
		return s.checkIndex(node)

	case *Cast:
		return s.checkCast(node)

	case *Asm:
		return nil

	default:
		panic("unreachable")
	}
}

func (s *Sema) checkBinop(binop *BinaryOp) *CompilerError {
	if err := s.checkNode(binop.Left); err != nil {
		return err
	}

	if binop.Op == TkComma {
		if err := s.checkNode(binop.Right); err != nil {
			return err
		}
		*binop.Info() = *binop.Right.Info()
		return nil
	}

	lType := binop.Left.Info().Type
	if !IsBool(lType) && !IsInt(lType) && !IsPtrLike(lType) {
		return NewError(binop.Pos(), "invalid left operand to binary operation")
	}

	if err := s.checkNode(binop.Right); err != nil {
		return err
	}
	rType := binop.Right.Info().Type

	info := binop.Info()
	info.IsLvalue = false

	if IsBool(lType) {
		switch binop.Op {
		case TkEq, TkNe, TkLor, TkLand:
		default:
			return NewError(binop.Pos(), "invalid boolean operator")
		}
		if !IsBool(rType) {
			return NewError(binop.Pos(), "invalid right operand to boolean operation")
		}
		info.Type = GetPrimitiveType(TypeBool)
		return nil
	}

	if binop.Op == TkLand || binop.Op == TkLor {
		return NewError(binop.Pos(), "invalid left operand to boolean operation")
	}

	if !IsInt(rType) && !IsPtrLike(rType) {
		return NewError(binop.Pos(), "invalid right operand to binary operation")
	}

	// Both operands are integer or pointer-like from here.
	switch binop.Op {
	case TkAdd, TkSub:
		lPtr := IsPtrLike(lType)
		rPtr := IsPtrLike(rType)

		switch {
		case lPtr && rPtr:
			// pointer-pointer arithmetic is not supported
			return NewError(binop.Pos(), "invalid operands to binary operation")
		case lPtr || rPtr:
			pType := lType
			iType := rType
			if rPtr {
				pType, iType = rType, lType
			}
			if !IsInt(iType) {
				return NewError(binop.Pos(), "invalid operands to binary operation")
			}
			if pointeeIncomplete(pType) {
				return NewError(binop.Pos(), "use of incomplete type")
			}
			info.Type = pType
		case IsInt(lType) && IsInt(rType):
			info.Type = GetPrimitiveType(ImplicitTypeConvert(lType.Primitive, rType.Primitive))
		default:
			return NewError(binop.Pos(), "invalid operands to binary operation")
		}
		return nil

	case TkEq, TkNe:
		valid := false
		switch {
		case IsInt(lType) && IsInt(rType):
			valid = true
		case IsVoidPtr(lType) && IsPtrLike(rType):
			valid = true
		case IsVoidPtr(rType) && IsPtrLike(lType):
			valid = true
		case IsEqualType(lType, rType):
			valid = true
		}
		if !valid {
			return NewError(binop.Pos(), "invalid operands for comparison operation")
		}
		info.Type = GetPrimitiveType(TypeBool)
		return nil

	case TkLt, TkLe, TkGt, TkGe:
		// Ordering is stricter than equality: only equal-typed
		// unsized-array pointers qualify beyond integers.
		valid := (IsInt(lType) && IsInt(rType)) ||
			(IsArrayPtr(lType) && IsEqualType(lType, rType))
		if !valid {
			return NewError(binop.Pos(), "invalid operands for comparison operation")
		}
		info.Type = GetPrimitiveType(TypeBool)
		return nil

	default:
		// bitwise, shift, multiplicative
		if !IsInt(lType) || !IsInt(rType) {
			return NewError(binop.Pos(), "invalid operands to binary operation")
		}
		info.Type = GetPrimitiveType(ImplicitTypeConvert(lType.Primitive, rType.Primitive))
		return nil
	}
}

func (s *Sema) checkUnaryop(unaryop *UnaryOp) *CompilerError {
	if err := s.checkNode(unaryop.Operand); err != nil {
		return err
	}

	opInfo := unaryop.Operand.Info()
	opType := opInfo.Type

	info := unaryop.Info()
	info.IsLvalue = false
	info.Type = opType

	switch unaryop.Op {
	case TkAdd, TkSub, TkNot:
		if !IsInt(opType) {
			return NewError(unaryop.Pos(), "invalid type to unary operation")
		}

	case TkLnot:
		if !IsBool(opType) {
			return NewError(unaryop.Pos(), "invalid type to unary operation")
		}

	case TkMul:
		if !IsPtrLike(opType) {
			return NewError(unaryop.Pos(), "indirection requires pointer operand")
		}
		if IsPtr(opType) {
			if opType.PointerLevel == 1 {
				info.Type = opType.Inner
			} else {
				inner := *opType
				inner.PointerLevel--
				info.Type = &inner
			}
		} else {
			info.Type = opType.Inner
		}
		info.IsLvalue = true

	case TkAnd:
		if !opInfo.IsLvalue {
			return NewError(unaryop.Pos(), "lvalue required as unary '&' operand")
		}
		if IsPtr(opType) {
			outer := *opType
			outer.PointerLevel++
			info.Type = &outer
		} else {
			info.Type = &Type{
				Size:         PtrSize,
				Alignment:    PtrSize,
				Kind:         KindPointer,
				PointerLevel: 1,
				Inner:        opType,
			}
		}

	default:
		panic("unreachable")
	}

	return nil
}

func (s *Sema) checkVar(ref *VarRef) *CompilerError {
	info := ref.Info()
	switch sym := ref.Sym.(type) {
	case *VarSymbol:
		info.IsLvalue = true
		info.Type = sym.DataType
	case *FuncSymbol:
		// Function designators are addresses, not lvalues.
		info.IsLvalue = false
		info.Type = &Type{Kind: KindFunc, Func: &sym.FuncData}
	default:
		panic("unreachable")
	}
	return nil
}

// pointeeIncomplete reports whether pointer arithmetic on t would step
// over an incomplete element. void* is exempt: it advances by bytes.
func pointeeIncomplete(t *Type) bool {
	if IsArrayPtr(t) {
		return t.Inner.Incomplete
	}
	if t.PointerLevel > 1 {
		return false // the element is itself a pointer
	}
	return !IsVoid(t.Inner) && t.Inner.Incomplete
}

// isAllowedTypeConvert is the assignability relation: equal types,
// integer to integer, pointer-like against void*, or a pointer to a
// complete array decaying to the unsized array of its element.
func isAllowedTypeConvert(left, right *Type) bool {
	if IsEqualType(left, right) {
		return true
	}

	if IsInt(left) && IsInt(right) {
		return true
	}

	if IsPtrLike(right) && IsVoidPtr(left) {
		return true
	}
	if IsPtrLike(left) && IsVoidPtr(right) {
		return true
	}

	if IsArrayPtr(left) && IsPtr(right) && right.PointerLevel == 1 {
		rInner := right.Inner
		if rInner.Kind == KindArray && rInner.ArraySize != 0 {
			return IsEqualType(left.Inner, rInner.Inner)
		}
	}

	return false
}

func (s *Sema) checkAssign(assign *Assign) *CompilerError {
	if err := s.checkNode(assign.Left); err != nil {
		return err
	}
	if !assign.Left.Info().IsLvalue {
		return NewError(assign.Pos(), "lvalue required as left operand of assignment")
	}

	if err := s.checkNode(assign.Right); err != nil {
		return err
	}

	lType := assign.Left.Info().Type
	rType := assign.Right.Info().Type
	if !isAllowedTypeConvert(lType, rType) {
		return NewError(assign.Pos(), "type is not assignable")
	}

	info := assign.Info()
	info.IsLvalue = true
	info.Type = lType
	return nil
}

func (s *Sema) checkIf(node *If) *CompilerError {
	if err := s.checkNode(node.Cond); err != nil {
		return err
	}
	if !IsBool(node.Cond.Info().Type) {
		return NewError(node.Cond.Pos(), "expected type 'bool'")
	}

	if err := s.checkNode(node.Then); err != nil {
		return err
	}
	if node.Else != nil {
		if err := s.checkNode(node.Else); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sema) checkWhile(node *While) *CompilerError {
	if err := s.checkNode(node.Cond); err != nil {
		return err
	}
	if !IsBool(node.Cond.Info().Type) {
		return NewError(node.Cond.Pos(), "expected type 'bool'")
	}

	s.loopDepth++
	err := s.checkNode(node.Body)
	s.loopDepth--
	if err != nil {
		return err
	}

	if node.Inc != nil {
		if err := s.checkNode(node.Inc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sema) checkGoto(node *Goto) *CompilerError {
	if s.loopDepth == 0 {
		switch node.Op {
		case TkBreak:
			return NewError(node.Pos(), "break statement not within a loop")
		case TkContinue:
			return NewError(node.Pos(), "continue statement not within a loop")
		default:
			panic("unreachable")
		}
	}
	return nil
}

func (s *Sema) checkCall(call *Call) *CompilerError {
	if err := s.checkNode(call.Callee); err != nil {
		return err
	}

	funcType := call.Callee.Info().Type
	if funcType.Kind != KindFunc {
		return NewError(call.Pos(), "called object is not a function or function pointer")
	}

	meta := funcType.Func
	for i, arg := range call.Args {
		if err := s.checkNode(arg); err != nil {
			return err
		}
		if i < len(meta.Args) {
			if !isAllowedTypeConvert(meta.Args[i], arg.Info().Type) {
				return NewError(arg.Pos(), "passing argument with invalid type")
			}
		} else if !meta.Variadic {
			return NewError(call.Pos(), "too many arguments")
		}
	}
	if len(call.Args) < len(meta.Args) {
		return NewError(call.Pos(), "too few arguments")
	}

	ret := meta.ReturnType
	if !ret.Incomplete && ret.Size > RegisterSize && s.frameScope != nil {
		if s.frameScope.MaxStructRet < ret.Size {
			s.frameScope.MaxStructRet = ret.Size
		}
	}

	info := call.Info()
	info.IsLvalue = false
	info.Type = ret
	return nil
}

func (s *Sema) checkPrint(node *Print) *CompilerError {
	for _, arg := range node.Args {
		if err := s.checkNode(arg); err != nil {
			return err
		}
		t := arg.Info().Type
		if t.Incomplete || t.Size > RegisterSize {
			return NewError(arg.Pos(), "passing argument with invalid type")
		}
	}
	return nil
}

func (s *Sema) checkReturn(ret *Return) *CompilerError {
	retType := GetPrimitiveType(TypeVoid)
	if ret.Value != nil {
		if err := s.checkNode(ret.Value); err != nil {
			return err
		}
		retType = ret.Value.Info().Type
	}

	if !isAllowedTypeConvert(s.returnType, retType) {
		return NewError(ret.Pos(), "invalid return type")
	}
	return nil
}

func (s *Sema) checkField(field *Field) *CompilerError {
	if err := s.checkNode(field.X); err != nil {
		return err
	}

	t := field.X.Info().Type
	if t.Kind == KindPointer && t.PointerLevel == 1 {
		// member access through pointer
		t = t.Inner
	}
	if t.Kind != KindUser {
		return NewError(field.Pos(), "request for member in something not a struct")
	}

	sym := t.TypeSym.Namespace.Find(field.Ident, true)
	fieldSym, ok := sym.(*FieldSymbol)
	if !ok {
		return NewError(field.Pos(), "type has no member '%s'", field.Ident)
	}

	field.Sym = fieldSym
	info := field.Info()
	info.IsLvalue = true
	info.Type = fieldSym.DataType
	return nil
}

func (s *Sema) checkIndex(idx *Index) *CompilerError {
	if err := s.checkNode(idx.Left); err != nil {
		return err
	}
	lType := idx.Left.Info().Type
	if lType.Kind != KindArray {
		return NewError(idx.Pos(), "subscripted value is neither array nor array pointer")
	}

	if err := s.checkNode(idx.Right); err != nil {
		return err
	}
	if !IsInt(idx.Right.Info().Type) {
		return NewError(idx.Pos(), "array subscript is not an integer")
	}

	info := idx.Info()
	info.IsLvalue = true
	info.Type = lType.Inner
	return nil
}

func (s *Sema) checkCast(cast *Cast) *CompilerError {
	if err := s.checkNode(cast.X); err != nil {
		return err
	}

	target := cast.Target.DataType
	opType := cast.X.Info().Type

	ok := (IsInt(target) || IsBool(target)) && (IsInt(opType) || IsBool(opType)) ||
		IsPtrLike(target) && IsPtrLike(opType) ||
		IsInt(target) && IsPtrLike(opType) ||
		IsPtrLike(target) && IsInt(opType)
	if !ok {
		return NewError(cast.Pos(), "invalid cast")
	}

	info := cast.Info()
	info.IsLvalue = false
	info.Type = target
	return nil
}
