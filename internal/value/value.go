// Package value implements the tagged-sum Value type, the heap object
// model, the hash table, and the bytecode chunk container. Ported from
// original_source/src/value.h, object.h/object.c, and table.h/chunk.h.
package value

import "strconv"

// Type identifies which variant of the tagged sum a Value holds.
type Type uint8

const (
	TypeNil Type = iota
	TypeBool
	TypeNumber
	TypeObj
)

// Value is the tagged-sum value manipulated by the compiler and VM: nil,
// bool, an IEEE-754 double, or a reference to a heap Obj.
type Value struct {
	typ Type
	num float64
	obj Obj
}

// Nil is the singleton nil value.
var Nil = Value{typ: TypeNil}

// Bool returns a boolean value.
func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{typ: TypeBool, num: n}
}

// Number returns a numeric value.
func Number(n float64) Value { return Value{typ: TypeNumber, num: n} }

// FromObj returns a value wrapping a heap object.
func FromObj(o Obj) Value { return Value{typ: TypeObj, obj: o} }

func (v Value) IsNil() bool    { return v.typ == TypeNil }
func (v Value) IsBool() bool   { return v.typ == TypeBool }
func (v Value) IsNumber() bool { return v.typ == TypeNumber }
func (v Value) IsObj() bool    { return v.typ == TypeObj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

// Truthy reports the language's truthiness rule: only nil and false are
// falsey, everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.typ {
	case TypeNil:
		return false
	case TypeBool:
		return v.AsBool()
	default:
		return true
	}
}

// TypeName returns the short runtime type name used by the `type` native.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeNil:
		return "nil"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeObj:
		return v.obj.ObjType().String()
	}
	return "unknown"
}

// Equal implements the language's `==` for any pair of values: nil=nil,
// bools by value, numbers by IEEE equality, objects by identity (strings
// compare equal here too because they are always interned).
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeNil:
		return true
	case TypeBool:
		return a.AsBool() == b.AsBool()
	case TypeNumber:
		return a.num == b.num
	case TypeObj:
		return a.obj == b.obj
	}
	return false
}

// String renders v the way the `print`/`tostring` natives do, ported from
// object.c's printObject/printValue.
func (v Value) String() string {
	switch v.typ {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.num)
	case TypeObj:
		return v.obj.String()
	}
	return "?"
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
