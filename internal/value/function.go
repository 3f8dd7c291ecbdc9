package value

import "fmt"

// ObjFunction is the compiler's output for one function body: never
// executed directly, always wrapped in a Closure before a CALL, per spec §3.
type ObjFunction struct {
	Header
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString // nil for the top-level script
}

// NewFunction returns an empty function object ready for the compiler to
// emit bytecode into.
func NewFunction() *ObjFunction {
	return &ObjFunction{Header: newHeader(ObjTypeFunction), Chunk: &Chunk{}}
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<function %s>", f.Name.Chars)
}

// NativeFn is the Go implementation of a built-in function: it receives
// its positional arguments and returns a single result or an error. A
// non-nil error makes the VM report a runtime error with a stack trace and
// stop the run; natives that merely fail return nil with no error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a Go-implemented built-in function.
type ObjNative struct {
	Header
	Name string
	Fn   NativeFn
}

func NewNative(name string, fn NativeFn) *ObjNative {
	return &ObjNative{Header: newHeader(ObjTypeNative), Name: name, Fn: fn}
}

func (n *ObjNative) String() string { return fmt.Sprintf("<native %s>", n.Name) }

// ObjUpvalue references a closed-over local: while "open" it points at a
// live VM stack slot; once "closed" the value has been copied inline.
// Ported from object.h's ObjUpvalue and the open/closed lifecycle
// described in vm.c's captureUpvalue/closeUpvalues and spec §9.
type ObjUpvalue struct {
	Header
	// Location points into the VM's stack slice while open. Closed is set
	// and Location is redirected to &Closed when the upvalue closes.
	Location *Value
	Closed   Value
	// NextOpen links the intrusive, descending-stack-address-ordered list
	// of open upvalues; nil once closed.
	NextOpen *ObjUpvalue
	// StackIndex records the absolute stack slot this upvalue was opened
	// over, used to keep NextOpen sorted and to find-by-address during
	// capture/closing without needing real pointer arithmetic into a Go
	// slice (which is not stable across reallocation).
	StackIndex int
}

func NewUpvalue(loc *Value, stackIndex int) *ObjUpvalue {
	return &ObjUpvalue{Header: newHeader(ObjTypeUpvalue), Location: loc, StackIndex: stackIndex}
}

func (u *ObjUpvalue) String() string { return "<upvalue>" }

// ObjClosure pairs a Function with its captured upvalues, produced by the
// CLOSURE opcode.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		Header:   newHeader(ObjTypeClosure),
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }
