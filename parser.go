// Recursive-descent parser for Kel. Builds the AST and populates the
// symbol tables the semantic analyser and code generator share.
package main

// Parser owns the token stream. Scopes nest as blocks open and close;
// all string data is already interned in the source arena by the
// preprocessor.
type Parser struct {
	lx *Lexer

	globals *SymbolTable
	scope   *SymbolTable

	// current function context, nil at top level
	curFunc *FuncSymbol
}

// NewParser creates a parser over the expanded unit. The global symbol
// table may already hold #define entries from the preprocessor.
func NewParser(src *SourceState, globals *SymbolTable) *Parser {
	return &Parser{
		lx:      NewLexer(src),
		globals: globals,
		scope:   globals,
	}
}

func (p *Parser) tok() Token     { return p.lx.Peek() }
func (p *Parser) next()          { p.lx.Next() }
func (p *Parser) pos() SourcePos { return p.lx.Peek().Pos }

func (p *Parser) errf(pos SourcePos, format string, args ...any) *CompilerError {
	// A lexical error surfaces as an EOF token; report it instead of
	// the confusing parse error it would otherwise cause.
	if lerr := p.lx.Err(); lerr != nil {
		return lerr
	}
	return NewError(pos, format, args...)
}

func (p *Parser) expect(tt TokenType) (Token, *CompilerError) {
	t := p.tok()
	if t.Type != tt {
		return t, p.errf(t.Pos, "expected '%s' before '%s'", tt, t.Type)
	}
	p.next()
	return t, nil
}

func (p *Parser) accept(tt TokenType) bool {
	if p.tok().Type == tt {
		p.next()
		return true
	}
	return false
}

// ParseUnit parses the whole translation unit and returns the
// top-level statement list (the implicit entry body).
func (p *Parser) ParseUnit() (*StmtList, *CompilerError) {
	unit := &StmtList{node: node{pos: p.pos()}}

	for p.tok().Type != TkEOF {
		stmt, err := p.parseTop()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			unit.Stmts = append(unit.Stmts, stmt)
		}
	}

	if err := p.lx.Err(); err != nil {
		return nil, err
	}
	return unit, nil
}

// parseTop handles declarations that may only appear at the top level
// (type, fn, extern) and defers everything else to the statement
// grammar. Declarations produce no AST; they only populate symbols.
func (p *Parser) parseTop() (Node, *CompilerError) {
	switch p.tok().Type {
	case TkKwType:
		return nil, p.parseTypeDecl()
	case TkKwFn:
		return nil, p.parseFuncDecl(AttrNone)
	case TkKwExtern:
		p.next()
		if p.tok().Type == TkKwFn {
			return nil, p.parseFuncDecl(AttrExtern)
		}
		if p.isTypeStart() {
			return nil, p.parseExternVar()
		}
		return nil, p.errf(p.pos(), "expected 'fn' or type after 'extern'")
	default:
		return p.parseStmt()
	}
}

// isTypeStart reports whether the current token begins a type: a
// primitive keyword or an identifier bound to a user type.
func (p *Parser) isTypeStart() bool {
	switch p.tok().Type {
	case TkKwVoid, TkKwBool, TkKwU8, TkKwI8, TkKwU16, TkKwI16, TkKwU32, TkKwI32:
		return true
	case TkIdent:
		sym := p.scope.Find(p.tok().Str, false)
		_, ok := sym.(*TypeSymbol)
		return ok
	default:
		return false
	}
}

// parseType parses: base '*'* ('[' INT? ']')?
func (p *Parser) parseType() (*Type, *CompilerError) {
	t := p.tok()
	var base *Type

	switch t.Type {
	case TkKwVoid:
		base = GetPrimitiveType(TypeVoid)
	case TkKwBool:
		base = GetPrimitiveType(TypeBool)
	case TkKwU8:
		base = GetPrimitiveType(TypeU8)
	case TkKwI8:
		base = GetPrimitiveType(TypeI8)
	case TkKwU16:
		base = GetPrimitiveType(TypeU16)
	case TkKwI16:
		base = GetPrimitiveType(TypeI16)
	case TkKwU32:
		base = GetPrimitiveType(TypeU32)
	case TkKwI32:
		base = GetPrimitiveType(TypeI32)
	case TkIdent:
		sym := p.scope.Find(t.Str, false)
		ts, ok := sym.(*TypeSymbol)
		if !ok {
			return nil, p.errf(t.Pos, "unknown type name '%s'", t.Str)
		}
		if ts.Incomplete {
			return nil, p.errf(t.Pos, "use of incomplete type '%s'", t.Str)
		}
		base = &Type{
			Size:      ts.Size,
			Alignment: ts.Alignment,
			Kind:      KindUser,
			TypeSym:   ts,
		}
	default:
		return nil, p.errf(t.Pos, "expected type name before '%s'", t.Type)
	}
	p.next()

	level := 0
	for p.tok().Type == TkMul {
		level++
		p.next()
	}
	if level > 0 {
		base = &Type{
			Size:         PtrSize,
			Alignment:    PtrSize,
			Kind:         KindPointer,
			PointerLevel: level,
			Inner:        base,
		}
	}

	if p.tok().Type == TkLbrack {
		p.next()
		arraySize := 0
		if p.tok().Type == TkIntLit {
			arraySize = p.tok().Val
			if arraySize <= 0 {
				return nil, p.errf(p.pos(), "array size must be positive")
			}
			p.next()
		}
		if _, err := p.expect(TkRbrack); err != nil {
			return nil, err
		}
		if base.Incomplete {
			return nil, p.errf(p.pos(), "array of incomplete type")
		}

		arr := &Type{
			Kind:      KindArray,
			ArraySize: arraySize,
			Inner:     base,
		}
		if arraySize == 0 {
			arr.Size = PtrSize
			arr.Alignment = PtrSize
		} else {
			arr.Size = base.Size * arraySize
			arr.Alignment = base.Alignment
		}
		base = arr
	}

	return base, nil
}

// parseTypeDecl parses: type IDENT { (type IDENT ;)* }
func (p *Parser) parseTypeDecl() *CompilerError {
	declPos := p.pos()
	p.next()

	name, err := p.expect(TkIdent)
	if err != nil {
		return err
	}
	if p.globals.Find(name.Str, true) != nil {
		return p.errf(name.Pos, "redefinition of '%s'", name.Str)
	}

	ts := p.globals.AppendType(name.Str, name.Pos)
	ts.Namespace = NewSymbolTable(0, nil, false)

	if _, err := p.expect(TkLbrace); err != nil {
		return err
	}

	size, alignment := 0, 1
	for p.tok().Type != TkRbrace {
		fieldType, err := p.parseType()
		if err != nil {
			return err
		}
		if fieldType.Incomplete {
			return p.errf(p.pos(), "field has incomplete type")
		}

		fieldName, err := p.expect(TkIdent)
		if err != nil {
			return err
		}
		if ts.Namespace.Find(fieldName.Str, true) != nil {
			return p.errf(fieldName.Pos, "duplicate member '%s'", fieldName.Str)
		}
		ts.Namespace.AppendField(fieldName.Str, fieldType, &size, &alignment, fieldName.Pos)

		if _, err := p.expect(TkSemicolon); err != nil {
			return err
		}
	}
	p.next()

	if size == 0 {
		return p.errf(declPos, "empty type declaration")
	}

	// Round the size up so arrays of this type stay aligned.
	size += alignmentLoss(size, alignment)
	ts.Size = size
	ts.Alignment = alignment
	ts.Incomplete = false
	return nil
}

type paramDecl struct {
	typ  *Type
	name string
	pos  SourcePos
}

// parseFuncDecl parses:
//
//	fn IDENT ( params ) type attr* { body }
//	extern fn IDENT ( params ) type attr* ;
func (p *Parser) parseFuncDecl(attr SymbolAttr) *CompilerError {
	p.next() // fn

	name, err := p.expect(TkIdent)
	if err != nil {
		return err
	}
	if p.curFunc != nil {
		return p.errf(name.Pos, "nested function definitions are not allowed")
	}
	if p.globals.Find(name.Str, true) != nil {
		return p.errf(name.Pos, "redefinition of '%s'", name.Str)
	}

	if _, err := p.expect(TkLparen); err != nil {
		return err
	}

	var params []paramDecl
	variadic := false
	for p.tok().Type != TkRparen {
		if len(params) > 0 || variadic {
			if _, err := p.expect(TkComma); err != nil {
				return err
			}
		}
		if p.tok().Type == TkEllipsis {
			p.next()
			variadic = true
			break
		}
		typ, err := p.parseType()
		if err != nil {
			return err
		}
		if typ.Incomplete {
			return p.errf(p.pos(), "parameter has incomplete type")
		}
		pname, err := p.expect(TkIdent)
		if err != nil {
			return err
		}
		params = append(params, paramDecl{typ: typ, name: pname.Str, pos: pname.Pos})
	}
	p.next() // )

	retType, err := p.parseType()
	if err != nil {
		return err
	}
	if retType.Incomplete && !IsVoid(retType) {
		return p.errf(p.pos(), "function returns incomplete type")
	}

	conv := CallCdecl
	for p.tok().Type == TkAt {
		p.next()
		attrName, err := p.expect(TkIdent)
		if err != nil {
			return err
		}
		switch attrName.Str {
		case "stdcall":
			conv = CallStdcall
		case "thiscall":
			conv = CallThiscall
		default:
			return p.errf(attrName.Pos, "unknown attribute '@%s'", attrName.Str)
		}
	}

	if conv == CallThiscall && len(params) == 0 {
		return p.errf(name.Pos, "thiscall function needs a this parameter")
	}

	fn := p.globals.AppendFunc(name.Str, attr, name.Pos)
	fn.FuncData = FuncMeta{
		ReturnType: retType,
		Variadic:   variadic,
		CallConv:   conv,
	}
	for _, param := range params {
		fn.FuncData.Args = append(fn.FuncData.Args, param.typ)
	}

	if attr == AttrExtern {
		_, err := p.expect(TkSemicolon)
		return err
	}

	// Body: build the function scope. Argument offsets mirror the
	// in-memory layout the caller produces; a composite return
	// reserves one hidden-pointer slot before the visible arguments
	// (after this for thiscall).
	fnScope := NewSymbolTable(0, nil, false)
	fnScope.Parent = p.globals
	fn.FuncSym = fnScope

	hidden := !retType.Incomplete && retType.Size > RegisterSize

	start := 0
	if conv == CallThiscall {
		// this comes first; with a composite return the hidden
		// pointer slot sits between this and the visible arguments.
		fnScope.AppendVar(params[0].name, true, AttrNone, params[0].typ, params[0].pos)
		start = 1
	}
	if hidden {
		fnScope.Offset += PtrSize
	}
	for _, param := range params[start:] {
		fnScope.AppendVar(param.name, true, AttrNone, param.typ, param.pos)
	}

	// Locals live below ebp in their own area; the body scope starts
	// its offset at zero but shares the function's frame accumulator.
	bodyScope := NewSymbolTable(0, fnScope.StackSize, false)
	bodyScope.Parent = fnScope
	bodyScope.ArgOffset = fnScope.ArgOffset

	prevFunc := p.curFunc
	prevScope := p.scope
	p.curFunc = fn
	p.scope = bodyScope

	body, err2 := p.parseBlock()

	p.curFunc = prevFunc
	p.scope = prevScope

	if err2 != nil {
		return err2
	}
	fn.Body = body
	return nil
}

// parseExternVar parses: extern type IDENT ; for a variable defined
// outside this translation unit.
func (p *Parser) parseExternVar() *CompilerError {
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	if typ.Incomplete {
		return p.errf(p.pos(), "variable has incomplete type")
	}
	name, err := p.expect(TkIdent)
	if err != nil {
		return err
	}
	if p.globals.Find(name.Str, true) != nil {
		return p.errf(name.Pos, "redefinition of '%s'", name.Str)
	}
	p.globals.AppendVar(name.Str, false, AttrExtern, typ, name.Pos)
	_, err = p.expect(TkSemicolon)
	return err
}

// parseBlock parses { stmt* } in a fresh child scope.
func (p *Parser) parseBlock() (Node, *CompilerError) {
	open, err := p.expect(TkLbrace)
	if err != nil {
		return nil, err
	}

	prev := p.scope
	p.scope = prev.NewChildScope()
	defer func() { p.scope = prev }()

	list := &StmtList{node: node{pos: open.Pos}}
	for p.tok().Type != TkRbrace {
		if p.tok().Type == TkEOF {
			return nil, p.errf(p.pos(), "expected '}' before end of file")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			list.Stmts = append(list.Stmts, stmt)
		}
	}
	p.next()
	return list, nil
}

// parseStmt parses one statement. Declarations return the initializing
// assignment (or nil when there is no initializer).
func (p *Parser) parseStmt() (Node, *CompilerError) {
	t := p.tok()

	switch t.Type {
	case TkLbrace:
		return p.parseBlock()

	case TkKwIf:
		return p.parseIf()

	case TkKwWhile:
		return p.parseWhile()

	case TkKwFor:
		return p.parseFor()

	case TkBreak, TkContinue:
		p.next()
		if _, err := p.expect(TkSemicolon); err != nil {
			return nil, err
		}
		return &Goto{node: node{pos: t.Pos}, Op: t.Type}, nil

	case TkKwReturn:
		p.next()
		ret := &Return{node: node{pos: t.Pos}}
		if p.tok().Type != TkSemicolon {
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ret.Value = value
		}
		if _, err := p.expect(TkSemicolon); err != nil {
			return nil, err
		}
		return ret, nil

	case TkKwPrint:
		return p.parsePrint()

	case TkKwAsm:
		p.next()
		if _, err := p.expect(TkLparen); err != nil {
			return nil, err
		}
		text, err := p.expect(TkStrLit)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TkRparen); err != nil {
			return nil, err
		}
		if _, err := p.expect(TkSemicolon); err != nil {
			return nil, err
		}
		return &Asm{node: node{pos: t.Pos}, Text: text.Str}, nil

	case TkSemicolon:
		p.next()
		return nil, nil
	}

	if p.isTypeStart() {
		return p.parseVarDecl()
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TkSemicolon); err != nil {
		return nil, err
	}
	return e, nil
}

// parseVarDecl parses: type IDENT (= expr)? ;
func (p *Parser) parseVarDecl() (Node, *CompilerError) {
	declPos := p.pos()

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if typ.Incomplete {
		return nil, p.errf(declPos, "variable has incomplete type")
	}

	name, err := p.expect(TkIdent)
	if err != nil {
		return nil, err
	}
	if p.scope.Find(name.Str, true) != nil {
		return nil, p.errf(name.Pos, "redefinition of '%s'", name.Str)
	}

	sym := p.scope.AppendVar(name.Str, false, AttrNone, typ, name.Pos)

	var init Expr
	if p.accept(TkAssign) {
		init, err = p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TkSemicolon); err != nil {
		return nil, err
	}

	if init == nil {
		return nil, nil
	}

	if sym.IsGlobal {
		// Literal initializers are laid down in .data; anything else
		// runs as an assignment before the entry body.
		switch init.(type) {
		case *IntLit, *StrLit:
			sym.InitVal = init
			return nil, nil
		}
	}

	ref := &VarRef{expr: expr{node: node{pos: name.Pos}}, Sym: sym}
	return &Assign{
		expr:     expr{node: node{pos: name.Pos}},
		Left:     ref,
		Right:    init,
		FromDecl: true,
	}, nil
}

func (p *Parser) parseIf() (Node, *CompilerError) {
	ifPos := p.pos()
	p.next()

	if _, err := p.expect(TkLparen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TkRparen); err != nil {
		return nil, err
	}

	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	out := &If{node: node{pos: ifPos}, Cond: cond, Then: then}
	if p.accept(TkKwElse) {
		out.Else, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Parser) parseWhile() (Node, *CompilerError) {
	whilePos := p.pos()
	p.next()

	if _, err := p.expect(TkLparen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TkRparen); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &While{node: node{pos: whilePos}, Cond: cond, Body: body}, nil
}

// parseFor desugars for (init; cond; inc) into a scoped init followed
// by a while whose continue point runs inc.
func (p *Parser) parseFor() (Node, *CompilerError) {
	forPos := p.pos()
	p.next()

	if _, err := p.expect(TkLparen); err != nil {
		return nil, err
	}

	prev := p.scope
	p.scope = prev.NewChildScope()
	defer func() { p.scope = prev }()

	var init Node
	if p.tok().Type != TkSemicolon {
		if p.isTypeStart() {
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			init = decl
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TkSemicolon); err != nil {
				return nil, err
			}
			init = e
		}
	} else {
		p.next()
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TkSemicolon); err != nil {
		return nil, err
	}

	var inc Node
	if p.tok().Type != TkRparen {
		inc, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TkRparen); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	loop := &While{node: node{pos: forPos}, Cond: cond, Inc: inc, Body: body}
	if init == nil {
		return loop, nil
	}
	return &StmtList{node: node{pos: forPos}, Stmts: []Node{init, loop}}, nil
}

func (p *Parser) parsePrint() (Node, *CompilerError) {
	printPos := p.pos()
	p.next()

	if _, err := p.expect(TkLparen); err != nil {
		return nil, err
	}
	format, err := p.expect(TkStrLit)
	if err != nil {
		return nil, err
	}

	out := &Print{node: node{pos: printPos}, Fmt: format.Str}
	for p.accept(TkComma) {
		arg, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, arg)
	}
	if _, err := p.expect(TkRparen); err != nil {
		return nil, err
	}
	if _, err := p.expect(TkSemicolon); err != nil {
		return nil, err
	}
	return out, nil
}

/*
 * Expression grammar, C precedence:
 *   expr        := assign (',' assign)*
 *   assign      := logor ('=' assign)?
 *   logor       := logand ('||' logand)*
 *   logand      := bitor ('&&' bitor)*
 *   bitor       := bitxor ('|' bitxor)*
 *   bitxor      := bitand ('^' bitand)*
 *   bitand      := equality ('&' equality)*
 *   equality    := relational (('=='|'!=') relational)*
 *   relational  := shift (('<'|'<='|'>'|'>=') shift)*
 *   shift       := additive (('<<'|'>>') additive)*
 *   additive    := multiplicative (('+'|'-') multiplicative)*
 *   multiplicative := unary (('*'|'/'|'%') unary)*
 *   unary       := ('+'|'-'|'!'|'~'|'*'|'&') unary | '(' type ')' unary | postfix
 *   postfix     := primary ('(' args ')' | '[' expr ']' | '.' IDENT)*
 *   primary     := INT | STRING | 'true' | 'false' | 'null' | IDENT | '(' expr ')'
 */

func (p *Parser) parseExpr() (Expr, *CompilerError) {
	left, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	for p.tok().Type == TkComma {
		opPos := p.pos()
		p.next()
		right, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{
			expr: expr{node: node{pos: opPos}},
			Op:   TkComma, Left: left, Right: right,
		}
	}
	return left, nil
}

func (p *Parser) parseAssignExpr() (Expr, *CompilerError) {
	left, err := p.parseBinaryExpr(0)
	if err != nil {
		return nil, err
	}
	if p.tok().Type == TkAssign {
		opPos := p.pos()
		p.next()
		right, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &Assign{
			expr: expr{node: node{pos: opPos}},
			Left: left, Right: right,
		}, nil
	}
	return left, nil
}

// binary precedence levels, loosest first
var binaryLevels = [][]TokenType{
	{TkLor},
	{TkLand},
	{TkOr},
	{TkXor},
	{TkAnd},
	{TkEq, TkNe},
	{TkLt, TkLe, TkGt, TkGe},
	{TkShl, TkShr},
	{TkAdd, TkSub},
	{TkMul, TkDiv, TkMod},
}

func (p *Parser) parseBinaryExpr(level int) (Expr, *CompilerError) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinaryExpr(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		matched := false
		for _, tt := range binaryLevels[level] {
			if p.tok().Type == tt {
				opPos := p.pos()
				p.next()
				right, err := p.parseBinaryExpr(level + 1)
				if err != nil {
					return nil, err
				}
				left = &BinaryOp{
					expr: expr{node: node{pos: opPos}},
					Op:   tt, Left: left, Right: right,
				}
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *Parser) parseUnary() (Expr, *CompilerError) {
	t := p.tok()

	switch t.Type {
	case TkAdd, TkSub, TkNot, TkLnot, TkMul, TkAnd:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{
			expr: expr{node: node{pos: t.Pos}},
			Op:   t.Type, Operand: operand,
		}, nil

	case TkLparen:
		// Either a cast or a parenthesized expression; a type name
		// after '(' decides.
		p.next()
		if p.isTypeStart() {
			target, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TkRparen); err != nil {
				return nil, err
			}
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &Cast{
				expr:   expr{node: node{pos: t.Pos}},
				Target: &TypeRef{node: node{pos: t.Pos}, DataType: target},
				X:      operand,
			}, nil
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TkRparen); err != nil {
			return nil, err
		}
		return p.parsePostfixOps(inner)
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expr, *CompilerError) {
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixOps(prim)
}

func (p *Parser) parsePostfixOps(e Expr) (Expr, *CompilerError) {
	for {
		t := p.tok()
		switch t.Type {
		case TkLparen:
			p.next()
			call := &Call{expr: expr{node: node{pos: t.Pos}}, Callee: e}
			for p.tok().Type != TkRparen {
				if len(call.Args) > 0 {
					if _, err := p.expect(TkComma); err != nil {
						return nil, err
					}
				}
				arg, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
			p.next()
			e = call

		case TkLbrack:
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TkRbrack); err != nil {
				return nil, err
			}
			e = &Index{expr: expr{node: node{pos: t.Pos}}, Left: e, Right: idx}

		case TkDot:
			p.next()
			name, err := p.expect(TkIdent)
			if err != nil {
				return nil, err
			}
			e = &Field{expr: expr{node: node{pos: t.Pos}}, X: e, Ident: name.Str}

		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (Expr, *CompilerError) {
	t := p.tok()

	switch t.Type {
	case TkIntLit:
		p.next()
		return &IntLit{
			expr: expr{node: node{pos: t.Pos}},
			Val:  t.Val, DataType: t.Prim,
		}, nil

	case TkStrLit:
		p.next()
		return &StrLit{expr: expr{node: node{pos: t.Pos}}, Val: t.Str}, nil

	case TkKwTrue, TkKwFalse:
		p.next()
		val := 0
		if t.Type == TkKwTrue {
			val = 1
		}
		return &IntLit{
			expr: expr{node: node{pos: t.Pos}},
			Val:  val, DataType: TypeBool,
		}, nil

	case TkKwNull:
		p.next()
		// The void tag marks the null pointer literal.
		return &IntLit{
			expr: expr{node: node{pos: t.Pos}},
			Val:  0, DataType: TypeVoid,
		}, nil

	case TkIdent:
		p.next()
		sym := p.scope.Find(t.Str, false)
		if sym == nil {
			return nil, p.errf(t.Pos, "'%s' undeclared", t.Str)
		}
		switch s := sym.(type) {
		case *DefSymbol:
			// #define constants substitute at parse time.
			if s.Val.IsStr {
				return &StrLit{expr: expr{node: node{pos: t.Pos}}, Val: s.Val.Str}, nil
			}
			return &IntLit{
				expr: expr{node: node{pos: t.Pos}},
				Val:  s.Val.Val, DataType: s.Val.DataType,
			}, nil
		case *VarSymbol, *FuncSymbol:
			return &VarRef{expr: expr{node: node{pos: t.Pos}}, Sym: sym}, nil
		default:
			return nil, p.errf(t.Pos, "'%s' is not a value", t.Str)
		}
	}

	return nil, p.errf(t.Pos, "expected expression before '%s'", t.Type)
}
