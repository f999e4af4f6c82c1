// Kel type model: primitives, user types, arrays, pointers, functions.
// Type descriptors are immutable once built; the canonical primitives
// live in a static table.
package main

import "strconv"

// Target constants. Kel targets 32-bit x86, so a machine word and a
// pointer are both 4 bytes.
const (
	MaxAlignment = 4
	PtrSize      = 4
	RegisterSize = 4
)

// PrimitiveType enumerates the built-in scalar types.
type PrimitiveType int

const (
	TypeVoid PrimitiveType = iota
	TypeBool
	TypeU8
	TypeU16
	TypeU32
	TypeI8
	TypeI16
	TypeI32
)

func (p PrimitiveType) String() string {
	switch p {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeU32:
		return "u32"
	case TypeI8:
		return "i8"
	case TypeI16:
		return "i16"
	case TypeI32:
		return "i32"
	default:
		return "unknown"
	}
}

// TypeKind is the shape discriminant of a Type.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindUser
	KindArray
	KindPointer
	KindFunc
)

// CallConv selects the calling convention of a function type.
type CallConv int

const (
	CallCdecl CallConv = iota
	CallStdcall
	CallThiscall
)

func (c CallConv) String() string {
	switch c {
	case CallCdecl:
		return "cdecl"
	case CallStdcall:
		return "stdcall"
	case CallThiscall:
		return "thiscall"
	default:
		return "unknown"
	}
}

// FuncMeta describes a function type: return type, ordered argument
// list, variadic flag and calling convention.
type FuncMeta struct {
	ReturnType *Type
	Args       []*Type
	Variadic   bool
	CallConv   CallConv
}

// Type describes one of five shapes. Exactly the fields of the active
// kind are meaningful; the rest stay zero.
type Type struct {
	Incomplete bool

	// Size and Alignment are valid when Incomplete is false.
	Size      int
	Alignment int

	Kind TypeKind

	Primitive    PrimitiveType // KindPrimitive
	TypeSym      *TypeSymbol   // KindUser (nominal identity)
	ArraySize    int           // KindArray; 0 means unsized
	PointerLevel int           // KindPointer
	Func         *FuncMeta     // KindFunc

	Inner *Type // element type for arrays, pointee for pointers
}

var primitiveTypes = [...]Type{
	TypeVoid: {Incomplete: true, Kind: KindPrimitive, Primitive: TypeVoid},
	TypeBool: {Size: 1, Alignment: 1, Kind: KindPrimitive, Primitive: TypeBool},
	TypeU8:   {Size: 1, Alignment: 1, Kind: KindPrimitive, Primitive: TypeU8},
	TypeI8:   {Size: 1, Alignment: 1, Kind: KindPrimitive, Primitive: TypeI8},
	TypeU16:  {Size: 2, Alignment: 2, Kind: KindPrimitive, Primitive: TypeU16},
	TypeI16:  {Size: 2, Alignment: 2, Kind: KindPrimitive, Primitive: TypeI16},
	TypeU32:  {Size: 4, Alignment: 4, Kind: KindPrimitive, Primitive: TypeU32},
	TypeI32:  {Size: 4, Alignment: 4, Kind: KindPrimitive, Primitive: TypeI32},
}

// GetPrimitiveType returns the canonical descriptor for a primitive.
func GetPrimitiveType(p PrimitiveType) *Type {
	return &primitiveTypes[p]
}

var stringType = Type{
	Size:      PtrSize,
	Alignment: PtrSize,
	Kind:      KindArray,
	ArraySize: 0,
	Inner:     &primitiveTypes[TypeU8],
}

// GetStringType returns the type of string literals: an unsized array
// of u8.
func GetStringType() *Type { return &stringType }

var voidPtrType = Type{
	Size:         PtrSize,
	Alignment:    PtrSize,
	Kind:         KindPointer,
	PointerLevel: 1,
	Inner:        &primitiveTypes[TypeVoid],
}

// GetVoidPtrType returns the canonical void* descriptor, the type of
// the null literal.
func GetVoidPtrType() *Type { return &voidPtrType }

// IsEqualType reports structural equality. Primitives compare by tag,
// user types by symbol identity, arrays by size and element, pointers
// by level and pointee, functions by variadic flag, return type and
// positional arguments.
func IsEqualType(a, b *Type) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindPrimitive:
		return a.Primitive == b.Primitive

	case KindUser:
		return a.TypeSym == b.TypeSym

	case KindArray:
		if a.ArraySize != b.ArraySize {
			return false
		}
		return IsEqualType(a.Inner, b.Inner)

	case KindPointer:
		if a.PointerLevel != b.PointerLevel {
			return false
		}
		return IsEqualType(a.Inner, b.Inner)

	case KindFunc:
		if a.Func.Variadic != b.Func.Variadic {
			return false
		}
		if !IsEqualType(a.Func.ReturnType, b.Func.ReturnType) {
			return false
		}
		if len(a.Func.Args) != len(b.Func.Args) {
			return false
		}
		for i := range a.Func.Args {
			if !IsEqualType(a.Func.Args[i], b.Func.Args[i]) {
				return false
			}
		}
		return true

	default:
		panic("unreachable")
	}
}

func IsPtr(t *Type) bool { return t.Kind == KindPointer }

// IsArrayPtr reports whether t is an unsized array, which behaves as a
// pointer to its element type.
func IsArrayPtr(t *Type) bool {
	return t.Kind == KindArray && t.ArraySize == 0
}

func IsPtrLike(t *Type) bool { return IsPtr(t) || IsArrayPtr(t) }

func IsVoid(t *Type) bool {
	return t.Kind == KindPrimitive && t.Primitive == TypeVoid
}

func IsVoidPtr(t *Type) bool {
	return IsPtr(t) && t.PointerLevel == 1 && IsVoid(t.Inner)
}

func IsBool(t *Type) bool {
	return t.Kind == KindPrimitive && t.Primitive == TypeBool
}

// IsInt reports whether t is an integer primitive (not void, not bool).
func IsInt(t *Type) bool {
	return t.Kind == KindPrimitive &&
		t.Primitive != TypeVoid &&
		t.Primitive != TypeBool
}

// IsSigned reports the signedness of an integer primitive.
func IsSigned(p PrimitiveType) bool {
	switch p {
	case TypeU8, TypeU16, TypeU32:
		return false
	case TypeI8, TypeI16, TypeI32:
		return true
	default:
		panic("unreachable")
	}
}

func intWidth(p PrimitiveType) int {
	switch p {
	case TypeU8, TypeI8:
		return 1
	case TypeU16, TypeI16:
		return 2
	case TypeU32, TypeI32:
		return 4
	default:
		panic("unreachable")
	}
}

func unsignedOfWidth(w int) PrimitiveType {
	switch w {
	case 1:
		return TypeU8
	case 2:
		return TypeU16
	default:
		return TypeU32
	}
}

func signedOfWidth(w int) PrimitiveType {
	switch w {
	case 1:
		return TypeI8
	case 2:
		return TypeI16
	default:
		return TypeI32
	}
}

// ImplicitTypeConvert yields the promoted type of a mixed integer
// pair: the width is the maximum of the operand widths, and the result
// is unsigned whenever either operand is unsigned.
func ImplicitTypeConvert(a, b PrimitiveType) PrimitiveType {
	w := intWidth(a)
	if wb := intWidth(b); wb > w {
		w = wb
	}

	if !IsSigned(a) || !IsSigned(b) {
		return unsignedOfWidth(w)
	}
	return signedOfWidth(w)
}

// String renders a type the way Kel source spells it.
func (t *Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindUser:
		if t.TypeSym != nil {
			return t.TypeSym.Ident
		}
		return "<type>"
	case KindArray:
		if t.ArraySize == 0 {
			return t.Inner.String() + "[]"
		}
		return t.Inner.String() + "[" + strconv.Itoa(t.ArraySize) + "]"
	case KindPointer:
		s := t.Inner.String()
		for i := 0; i < t.PointerLevel; i++ {
			s += "*"
		}
		return s
	case KindFunc:
		s := "fn("
		for i, arg := range t.Func.Args {
			if i > 0 {
				s += ", "
			}
			s += arg.String()
		}
		if t.Func.Variadic {
			if len(t.Func.Args) > 0 {
				s += ", "
			}
			s += "..."
		}
		return s + ") " + t.Func.ReturnType.String()
	default:
		return "<invalid>"
	}
}
