// Package dbr implements the DBR (Data Buffer Request) value layouts used
// on the Channel Access wire: the base scalar/array types plus the STS,
// TIME, GR and CTRL prefix families layered on top of them.
//
// Every function here is pure: given bytes and a type/count it produces a
// Value, and given a Value it produces bytes. Nothing in this package does
// I/O; that rule is what lets internal/ca/wire reuse it from both encode
// and decode paths.
package dbr

import "fmt"

// Type is a DBR type code as it appears on the wire (the data_type field
// of a CA header).
type Type uint16

// Base scalar types, in increasing Type code order.
const (
	String Type = 0
	Int    Type = 1 // DBR_INT, a.k.a. DBR_SHORT
	Float  Type = 2
	Enum   Type = 3
	Char   Type = 4
	Long   Type = 5
	Double Type = 6
)

// STS family: base type plus a status/severity prefix.
const (
	STSString Type = 7
	STSInt    Type = 8
	STSFloat  Type = 9
	STSEnum   Type = 10
	STSChar   Type = 11
	STSLong   Type = 12
	STSDouble Type = 13
)

// TIME family: status/severity plus an epics timestamp.
const (
	TimeString Type = 14
	TimeInt    Type = 15
	TimeFloat  Type = 16
	TimeEnum   Type = 17
	TimeChar   Type = 18
	TimeLong   Type = 19
	TimeDouble Type = 20
)

// GR family: status/severity plus graphic display limits.
const (
	GRString Type = 21
	GRInt    Type = 22
	GRFloat  Type = 23
	GREnum   Type = 24
	GRChar   Type = 25
	GRLong   Type = 26
	GRDouble Type = 27
)

// CTRL family: GR fields plus control limits.
const (
	CTRLString Type = 28
	CTRLInt    Type = 29
	CTRLFloat  Type = 30
	CTRLEnum   Type = 31
	CTRLChar   Type = 32
	CTRLLong   Type = 33
	CTRLDouble Type = 34
)

// Family identifies which prefix, if any, decorates a base DBR type.
type Family int

const (
	FamilyBasic Family = iota
	FamilySTS
	FamilyTime
	FamilyGR
	FamilyCTRL
)

// Family and Base split a Type code by range: each family occupies seven
// consecutive codes starting at 0 (basic), 7 (STS), 14 (TIME), 21 (GR),
// or 28 (CTRL).
func (t Type) Family() Family {
	switch {
	case t <= Double:
		return FamilyBasic
	case t <= STSDouble:
		return FamilySTS
	case t <= TimeDouble:
		return FamilyTime
	case t <= GRDouble:
		return FamilyGR
	case t <= CTRLDouble:
		return FamilyCTRL
	default:
		return FamilyBasic
	}
}

// Base returns the base scalar type (String..Double) underlying t,
// stripping off whichever status/time/limits prefix applies.
func (t Type) Base() Type {
	switch t.Family() {
	case FamilySTS:
		return t - 7
	case FamilyTime:
		return t - 14
	case FamilyGR:
		return t - 21
	case FamilyCTRL:
		return t - 28
	default:
		return t
	}
}

// Valid reports whether t is one of the 35 DBR type codes this package
// knows how to pack and unpack.
func (t Type) Valid() bool {
	return t <= CTRLDouble
}

// ElementSize returns the on-wire size, in bytes, of one element of the
// base type underlying t. String elements are a fixed 40-byte field
// (MAX_STRING_SIZE); all other base types are their natural binary width.
func (t Type) ElementSize() int {
	switch t.Base() {
	case String:
		return 40
	case Int, Enum:
		return 2
	case Float:
		return 4
	case Char:
		return 1
	case Long:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t.Base() {
	case String:
		return familyPrefix(t) + "STRING"
	case Int:
		return familyPrefix(t) + "INT"
	case Float:
		return familyPrefix(t) + "FLOAT"
	case Enum:
		return familyPrefix(t) + "ENUM"
	case Char:
		return familyPrefix(t) + "CHAR"
	case Long:
		return familyPrefix(t) + "LONG"
	case Double:
		return familyPrefix(t) + "DOUBLE"
	default:
		return fmt.Sprintf("DBR(%d)", uint16(t))
	}
}

func familyPrefix(t Type) string {
	switch t.Family() {
	case FamilySTS:
		return "STS_"
	case FamilyTime:
		return "TIME_"
	case FamilyGR:
		return "GR_"
	case FamilyCTRL:
		return "CTRL_"
	default:
		return ""
	}
}
