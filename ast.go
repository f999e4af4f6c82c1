// AST for Kel. Statements and expressions are separate variant sets
// sharing a positioned envelope; expression nodes additionally carry
// the type-info slot the semantic analyser fills in.
package main

import (
	"fmt"
	"strings"
)

// TypeInfo is the semantic annotation on an expression: its type and
// whether it denotes a storage location.
type TypeInfo struct {
	Type     *Type
	IsLvalue bool
}

// Node is any AST node.
type Node interface {
	Pos() SourcePos
	String() string
}

// Expr is an expression node: a Node with a type-info slot.
type Expr interface {
	Node
	Info() *TypeInfo
}

type node struct {
	pos SourcePos
}

func (n *node) Pos() SourcePos { return n.pos }

type expr struct {
	node
	typeInfo TypeInfo
}

func (e *expr) Info() *TypeInfo { return &e.typeInfo }

// StmtList is a sequence of statements; also the root of a unit.
type StmtList struct {
	node
	Stmts []Node
}

func (s *StmtList) String() string {
	var out strings.Builder
	for _, stmt := range s.Stmts {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	return out.String()
}

// IntLit is an integer literal. A literal tagged void is the null
// pointer literal.
type IntLit struct {
	expr
	Val      int
	DataType PrimitiveType
}

func (l *IntLit) String() string { return fmt.Sprintf("%d", l.Val) }

// StrLit is a string literal, typed as u8[].
type StrLit struct {
	expr
	Val string
}

func (l *StrLit) String() string { return fmt.Sprintf("%q", l.Val) }

// BinaryOp is a binary expression; Op is the operator token.
type BinaryOp struct {
	expr
	Op    TokenType
	Left  Expr
	Right Expr
}

func (b *BinaryOp) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

// UnaryOp is a prefix expression.
type UnaryOp struct {
	expr
	Op      TokenType
	Operand Expr
}

func (u *UnaryOp) String() string {
	return "(" + u.Op.String() + u.Operand.String() + ")"
}

// VarRef is an identifier bound to a variable or function symbol.
type VarRef struct {
	expr
	Sym Symbol
}

func (v *VarRef) String() string { return v.Sym.Name() }

// Call applies a function-typed expression to arguments.
type Call struct {
	expr
	Callee Expr
	Args   []Expr
}

func (c *Call) String() string {
	var out strings.Builder
	out.WriteString(c.Callee.String())
	out.WriteString("(")
	for i, arg := range c.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(arg.String())
	}
	out.WriteString(")")
	return out.String()
}

// Print is the print builtin: a format string plus register-sized
// arguments, lowered onto the C runtime's printf.
type Print struct {
	node
	Fmt  string
	Args []Expr
}

func (p *Print) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "print(%q", p.Fmt)
	for _, arg := range p.Args {
		out.WriteString(", ")
		out.WriteString(arg.String())
	}
	out.WriteString(")")
	return out.String()
}

// Return exits the enclosing function; Value may be nil.
type Return struct {
	node
	Value Expr
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// Assign stores Right into the location denoted by Left.
type Assign struct {
	expr
	Left     Expr
	Right    Expr
	FromDecl bool
}

func (a *Assign) String() string {
	return a.Left.String() + " = " + a.Right.String()
}

// If is a conditional with an optional else branch.
type If struct {
	node
	Cond Expr
	Then Node
	Else Node
}

func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") {...}"
	if i.Else != nil {
		s += " else {...}"
	}
	return s
}

// While is a loop. Inc, when non-nil, runs at the continue point; the
// parser uses it to desugar for loops.
type While struct {
	node
	Cond Expr
	Inc  Node
	Body Node
}

func (w *While) String() string {
	return "while (" + w.Cond.String() + ") {...}"
}

// Goto is break or continue; Op is TkBreak or TkContinue.
type Goto struct {
	node
	Op TokenType
}

func (g *Goto) String() string { return g.Op.String() }

// TypeRef names a type in expression position; the parser produces it
// for the target of a cast.
type TypeRef struct {
	node
	DataType *Type
}

func (t *TypeRef) String() string { return t.DataType.String() }

// Cast converts X to the referenced type.
type Cast struct {
	expr
	Target *TypeRef
	X      Expr
}

func (c *Cast) String() string {
	return "(" + c.Target.String() + ")" + c.X.String()
}

// Index subscripts an array.
type Index struct {
	expr
	Left  Expr
	Right Expr
}

func (i *Index) String() string {
	return i.Left.String() + "[" + i.Right.String() + "]"
}

// Field accesses a named field of a user type (or single-level pointer
// to one). Sym is resolved by the semantic analyser.
type Field struct {
	expr
	X     Expr
	Ident string
	Sym   *FieldSymbol
}

func (f *Field) String() string { return f.X.String() + "." + f.Ident }

// Asm splices a raw assembly line into the output.
type Asm struct {
	node
	Text string
}

func (a *Asm) String() string { return fmt.Sprintf("asm(%q)", a.Text) }
