package value

// ObjType tags the concrete kind of a heap object.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
	ObjTypeTable
	ObjTypeTrait
)

var objTypeNames = [...]string{
	ObjTypeString:      "string",
	ObjTypeFunction:    "function",
	ObjTypeNative:      "native",
	ObjTypeClosure:     "function",
	ObjTypeUpvalue:     "upvalue",
	ObjTypeClass:       "class",
	ObjTypeInstance:    "instance",
	ObjTypeBoundMethod: "function",
	ObjTypeTable:       "table",
	ObjTypeTrait:       "trait",
}

func (t ObjType) String() string { return objTypeNames[t] }

// Obj is the common interface every heap object satisfies: a header of
// {type tag, mark bit, intrusive next-object link}, ported from
// object.h's Obj struct.
type Obj interface {
	ObjType() ObjType
	IsMarked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
	String() string
}

// Header is embedded by every concrete heap object to provide the common
// GC-visible fields and promote the Obj interface's header methods.
type Header struct {
	typ    ObjType
	marked bool
	next   Obj
}

func (h *Header) ObjType() ObjType   { return h.typ }
func (h *Header) IsMarked() bool     { return h.marked }
func (h *Header) SetMarked(m bool)   { h.marked = m }
func (h *Header) Next() Obj          { return h.next }
func (h *Header) SetNext(o Obj)      { h.next = o }
func newHeader(t ObjType) Header     { return Header{typ: t} }
