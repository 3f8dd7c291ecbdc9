package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// ObjClass is a class: an optional superclass, a method table, and a
// parallel set recording which methods are private. Ported from
// object.h's ObjClass and the INHERIT/METHOD opcode semantics in vm.c:
// INHERIT copies the superclass's method table down before the super
// pointer is set (shallow single inheritance, spec §3/§4.2).
type ObjClass struct {
	Header
	Name     *ObjString
	Super    *ObjClass
	Methods  *swiss.Map[*ObjString, Value]
	Privates *swiss.Map[*ObjString, bool]
}

func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{
		Header:   newHeader(ObjTypeClass),
		Name:     name,
		Methods:  swiss.NewMap[*ObjString, Value](8),
		Privates: swiss.NewMap[*ObjString, bool](4),
	}
}

func (c *ObjClass) String() string { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// Method looks up name in this class's own method table (post-inheritance
// copy-down, so this already reflects any ancestor methods).
func (c *ObjClass) Method(name *ObjString) (Value, bool) {
	return c.Methods.Get(name)
}

// IsPrivate reports whether name was declared `private` on this class.
func (c *ObjClass) IsPrivate(name *ObjString) bool {
	p, _ := c.Privates.Get(name)
	return p
}

// Inherit copies super's methods and privates down into c (shallow copy,
// executed before c.Super is assigned), per vm.c's OP_INHERIT handler.
func (c *ObjClass) Inherit(super *ObjClass) {
	super.Methods.Iter(func(k *ObjString, v Value) bool {
		c.Methods.Put(k, v)
		return false
	})
	super.Privates.Iter(func(k *ObjString, v bool) bool {
		c.Privates.Put(k, v)
		return false
	})
	c.Super = super
}

// Implement merges a trait's methods wholesale into c, per OP_IMPLEMENT.
func (c *ObjClass) Implement(t *ObjTrait) {
	t.Methods.Iter(func(k *ObjString, v Value) bool {
		c.Methods.Put(k, v)
		return false
	})
}

// ObjTrait is a named, standalone collection of methods merged into a
// class wholesale at `implements` time (object.h's ObjTrait).
type ObjTrait struct {
	Header
	Name    *ObjString
	Methods *swiss.Map[*ObjString, Value]
}

func NewTrait(name *ObjString) *ObjTrait {
	return &ObjTrait{Header: newHeader(ObjTypeTrait), Name: name, Methods: swiss.NewMap[*ObjString, Value](8)}
}

func (t *ObjTrait) String() string { return fmt.Sprintf("<trait %s>", t.Name.Chars) }

// ObjInstance is a class instance: a class reference plus an independent
// fields table (object.h's ObjInstance).
type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields *swiss.Map[*ObjString, Value]
}

func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Header: newHeader(ObjTypeInstance), Class: class, Fields: swiss.NewMap[*ObjString, Value](4)}
}

func (i *ObjInstance) String() string { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// ObjBoundMethod pairs a receiver with a method closure, produced
// transiently by property lookup (GET_PROPERTY) and consumed by the next
// CALL, per object.h's ObjBoundMethod.
type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

func NewBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{Header: newHeader(ObjTypeBoundMethod), Receiver: receiver, Method: method}
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }
