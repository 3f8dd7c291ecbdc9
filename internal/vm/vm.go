// Package vm implements the stack-based bytecode interpreter: the
// fetch/decode/execute loop, call-frame management, upvalue capture,
// class/trait dispatch, tables, and the native-function library. Ported
// from original_source/src/vm.c; the injected-io.Writer tracing idiom and
// the VM-as-struct-with-explicit-init/teardown shape follow the ambient
// style of the teacher repository's command layer.
package vm

import (
	"fmt"
	"io"

	"github.com/dolthub/swiss"

	"github.com/Juicywoowowow/Luaplusplus/internal/bytecode"
	"github.com/Juicywoowowow/Luaplusplus/internal/disasm"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// Result mirrors original_source's InterpretResult.
type Result int

const (
	InterpretOK Result = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CallFrame is one activation record: a closure, an instruction pointer
// (byte offset into the closure's chunk), and the stack index its local
// slots begin at.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// VM owns all runtime state for one running program: the value stack,
// call frames, globals, string interner, open-upvalue list, and the
// object/GC bookkeeping described in spec §5.
type VM struct {
	stack      [StackMax]value.Value
	stackTop   int
	frames     [FramesMax]CallFrame
	frameCount int

	Globals  *swiss.Map[*value.ObjString, value.Value]
	Interner *value.Interner

	initString *value.ObjString

	openUpvalues *value.ObjUpvalue

	objects        value.Obj
	bytesAllocated int
	nextGC         int

	// StressGC forces a collection before every growing allocation,
	// used to validate the "GC safety" testable property in spec §8.
	StressGC bool

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	TraceExecution bool
	LogGC          bool

	moduleCache  map[string]value.Value
	RequirePaths []string
}

// New returns an initialized VM with the runtime library registered.
func New(stdout, stderr io.Writer, stdin io.Reader) *VM {
	vm := &VM{
		Globals:      swiss.NewMap[*value.ObjString, value.Value](32),
		Interner:     value.NewInterner(),
		nextGC:       1024 * 1024,
		Stdout:       stdout,
		Stderr:       stderr,
		Stdin:        stdin,
		moduleCache:  make(map[string]value.Value),
		RequirePaths: []string{"./%s.luapp", "./lib/%s.luapp", "./stdlib/%s.luapp"},
	}
	vm.initString = vm.internString("init")
	vm.defineNatives()
	return vm
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func isFalsey(v value.Value) bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// RuntimeError prints message plus a stack trace of {line, function-or-
// script} from innermost frame outward, then resets the stack, per
// spec §4.4's runtime failure semantics.
func (vm *VM) RuntimeError(format string, args ...any) {
	fmt.Fprintf(vm.Stderr, format, args...)
	fmt.Fprint(vm.Stderr, "\n")

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		fn := frame.closure.Function
		line := fn.Chunk.Lines[frame.ip-1]
		if fn.Name == nil {
			fmt.Fprintf(vm.Stderr, "[line %d] in script\n", line)
		} else {
			fmt.Fprintf(vm.Stderr, "[line %d] in %s()\n", line, fn.Name.Chars)
		}
	}
	vm.resetStack()
}

func (vm *VM) concatenate() bool {
	b, aok1 := vm.peek(0).AsObj().(*value.ObjString)
	a, aok2 := vm.peek(1).AsObj().(*value.ObjString)
	if !aok1 || !aok2 {
		return false
	}
	result := vm.internString(a.Chars + b.Chars)
	vm.pop()
	vm.pop()
	vm.push(value.FromObj(result))
	return true
}

// Interpret compiles and runs source as the top-level program.
func Interpret(vm *VM, compile func(interner *value.Interner) (*value.ObjFunction, bool)) Result {
	fn, ok := compile(vm.Interner)
	if !ok {
		return InterpretCompileError
	}
	vm.push(value.FromObj(fn))
	closure := vm.allocClosure(fn)
	vm.pop()
	vm.push(value.FromObj(closure))
	vm.call(closure, 0)
	return vm.run()
}

// Run wraps an already-compiled top-level function in a closure and
// executes it, for callers that keep compilation and execution decoupled
// (the REPL, which recompiles into the same VM's globals each line, and
// require). It returns when that function returns.
func (vm *VM) Run(fn *value.ObjFunction) Result {
	vm.push(value.FromObj(fn))
	closure := vm.allocClosure(fn)
	vm.pop()
	vm.push(value.FromObj(closure))
	if !vm.call(closure, 0) {
		return InterpretRuntimeError
	}
	return vm.run()
}

func (vm *VM) run() Result {
	frame := &vm.frames[vm.frameCount-1]
	// Returning from the frame this run started in ends the run, so a
	// nested Run (require) hands control back to its caller.
	baseFrames := vm.frameCount - 1

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		return readConstant().AsObj().(*value.ObjString)
	}

	for {
		if vm.TraceExecution {
			fmt.Fprint(vm.Stdout, "          ")
			for i := 0; i < vm.stackTop; i++ {
				fmt.Fprintf(vm.Stdout, "[ %s ]", vm.stack[i].String())
			}
			fmt.Fprintln(vm.Stdout)
			disasm.Instruction(vm.Stdout, frame.closure.Function.Chunk, frame.ip)
		}

		op := bytecode.Op(readByte())
		switch op {
		case bytecode.OpConstant:
			vm.push(readConstant())

		case bytecode.OpNil:
			vm.push(value.Nil)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpPopN:
			n := int(readByte())
			vm.stackTop -= n

		case bytecode.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.slots+slot])
		case bytecode.OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.slots+slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := readString()
			v, ok := vm.Globals.Get(name)
			if !ok {
				vm.RuntimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}
			vm.push(v)
		case bytecode.OpDefineGlobal:
			name := readString()
			vm.Globals.Put(name, vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := readString()
			if _, ok := vm.Globals.Get(name); !ok {
				vm.RuntimeError("Undefined variable '%s'.", name.Chars)
				return InterpretRuntimeError
			}
			vm.Globals.Put(name, vm.peek(0))

		case bytecode.OpGetUpvalue:
			slot := int(readByte())
			vm.push(*frame.closure.Upvalues[slot].Location)
		case bytecode.OpSetUpvalue:
			slot := int(readByte())
			*frame.closure.Upvalues[slot].Location = vm.peek(0)
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.OpGetProperty:
			if t, ok := vm.peek(0).AsObj().(*value.ObjTable); ok {
				name := readString()
				vm.pop()
				vm.push(t.GetField(name))
				break
			}
			if !vm.isInstance(vm.peek(0)) {
				vm.RuntimeError("Only instances have properties.")
				return InterpretRuntimeError
			}
			inst := vm.peek(0).AsObj().(*value.ObjInstance)
			name := readString()
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(inst.Class, name) {
				return InterpretRuntimeError
			}
		case bytecode.OpSetProperty:
			if t, ok := vm.peek(1).AsObj().(*value.ObjTable); ok {
				t.SetField(readString(), vm.peek(0))
				v := vm.pop()
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.isInstance(vm.peek(1)) {
				vm.RuntimeError("Only instances have fields.")
				return InterpretRuntimeError
			}
			inst := vm.peek(1).AsObj().(*value.ObjInstance)
			inst.Fields.Put(readString(), vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)
		case bytecode.OpGetSuper:
			name := readString()
			super := vm.pop().AsObj().(*value.ObjClass)
			if !vm.bindMethod(super, name) {
				return InterpretRuntimeError
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpGreater:
			if !vm.binaryCompare(func(a, b float64) bool { return a > b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpLess:
			if !vm.binaryCompare(func(a, b float64) bool { return a < b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpAdd:
			if !vm.binaryArith(func(a, b float64) float64 { return a + b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpSubtract:
			if !vm.binaryArith(func(a, b float64) float64 { return a - b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpMultiply:
			if !vm.binaryArith(func(a, b float64) float64 { return a * b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpDivide:
			if !vm.binaryArith(func(a, b float64) float64 { return a / b }) {
				return InterpretRuntimeError
			}
		case bytecode.OpModulo:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.RuntimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := int64(vm.pop().AsNumber())
			a := int64(vm.pop().AsNumber())
			if b == 0 {
				vm.RuntimeError("attempt to perform 'n%%0'")
				return InterpretRuntimeError
			}
			vm.push(value.Number(float64(a % b)))

		case bytecode.OpConcat:
			if !vm.peek(0).IsObj() || !vm.peek(1).IsObj() {
				vm.RuntimeError("Operands must be strings.")
				return InterpretRuntimeError
			}
			if !vm.concatenate() {
				vm.RuntimeError("Operands must be strings.")
				return InterpretRuntimeError
			}
		case bytecode.OpNot:
			vm.push(value.Bool(isFalsey(vm.pop())))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.RuntimeError("Operand must be a number.")
				return InterpretRuntimeError
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case bytecode.OpLength:
			v := vm.pop()
			switch o := v.AsObj().(type) {
			case *value.ObjString:
				vm.push(value.Number(float64(len(o.Chars))))
			default:
				if t, ok := v.AsObj().(*value.ObjTable); ok {
					vm.push(value.Number(float64(t.Len())))
				} else {
					vm.RuntimeError("Can only get length of string or table.")
					return InterpretRuntimeError
				}
			}

		case bytecode.OpJump:
			offset := readShort()
			frame.ip += offset
		case bytecode.OpJumpIfFalse:
			offset := readShort()
			if isFalsey(vm.peek(0)) {
				frame.ip += offset
			}
		case bytecode.OpLoop:
			offset := readShort()
			frame.ip -= offset

		case bytecode.OpCall:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]
		case bytecode.OpInvoke:
			method := readString()
			argCount := int(readByte())
			if !vm.invoke(method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]
		case bytecode.OpSuperInvoke:
			method := readString()
			argCount := int(readByte())
			super := vm.pop().AsObj().(*value.ObjClass)
			if !vm.invokeFromClass(super, method, argCount) {
				return InterpretRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClosure:
			fn := readConstant().AsObj().(*value.ObjFunction)
			closure := vm.allocClosure(fn)
			vm.push(value.FromObj(closure))
			for i := 0; i < len(closure.Upvalues); i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == baseFrames {
				vm.stackTop = frame.slots
				return InterpretOK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClass:
			vm.push(value.FromObj(vm.allocClass(readString())))
		case bytecode.OpInherit:
			superVal := vm.peek(1)
			super, ok := superVal.AsObj().(*value.ObjClass)
			if !superVal.IsObj() || !ok {
				vm.RuntimeError("Superclass must be a class.")
				return InterpretRuntimeError
			}
			sub := vm.peek(0).AsObj().(*value.ObjClass)
			sub.Inherit(super)
			vm.pop()
		case bytecode.OpMethod:
			name := readString()
			isPrivate := readByte() != 0
			vm.defineMethod(name, isPrivate)
		case bytecode.OpNew:
			argCount := int(readByte())
			classVal := vm.peek(argCount)
			class, ok := classVal.AsObj().(*value.ObjClass)
			if !classVal.IsObj() || !ok {
				vm.RuntimeError("Can only instantiate classes.")
				return InterpretRuntimeError
			}
			inst := vm.allocInstance(class)
			vm.stack[vm.stackTop-argCount-1] = value.FromObj(inst)
			if initializer, ok := class.Method(vm.initString); ok {
				if !vm.call(initializer.AsObj().(*value.ObjClosure), argCount) {
					return InterpretRuntimeError
				}
				frame = &vm.frames[vm.frameCount-1]
			} else if argCount != 0 {
				vm.RuntimeError("Expected 0 arguments but got %d.", argCount)
				return InterpretRuntimeError
			}
		case bytecode.OpTrait:
			vm.push(value.FromObj(vm.allocTrait(readString())))
		case bytecode.OpImplement:
			traitVal := vm.pop()
			classVal := vm.pop()
			trait, tok := traitVal.AsObj().(*value.ObjTrait)
			class, cok := classVal.AsObj().(*value.ObjClass)
			if !traitVal.IsObj() || !tok {
				vm.RuntimeError("Can only implement traits.")
				return InterpretRuntimeError
			}
			if !classVal.IsObj() || !cok {
				vm.RuntimeError("Only classes can implement traits.")
				return InterpretRuntimeError
			}
			class.Implement(trait)

		case bytecode.OpTable:
			vm.push(value.FromObj(vm.allocTable()))
		case bytecode.OpTableGet:
			key := vm.pop()
			tableVal := vm.pop()
			t, ok := tableVal.AsObj().(*value.ObjTable)
			if !tableVal.IsObj() || !ok {
				vm.RuntimeError("Can only index tables.")
				return InterpretRuntimeError
			}
			vm.push(t.Get(key))
		case bytecode.OpTableSet:
			v := vm.pop()
			key := vm.pop()
			tableVal := vm.pop()
			t, ok := tableVal.AsObj().(*value.ObjTable)
			if !tableVal.IsObj() || !ok {
				vm.RuntimeError("Can only index tables.")
				return InterpretRuntimeError
			}
			if !t.Set(key, v) {
				vm.RuntimeError("Table key must be a string or positive integer.")
				return InterpretRuntimeError
			}
			vm.push(v)
		case bytecode.OpTableSetKeyed:
			v := vm.pop()
			key := vm.pop()
			t := vm.peek(0).AsObj().(*value.ObjTable)
			if !t.Set(key, v) {
				vm.RuntimeError("Table key must be a string or positive integer.")
				return InterpretRuntimeError
			}
		case bytecode.OpTableAdd:
			v := vm.pop()
			t := vm.peek(0).AsObj().(*value.ObjTable)
			t.Append(v)
		case bytecode.OpTableSetField:
			name := readString()
			v := vm.pop()
			t := vm.peek(0).AsObj().(*value.ObjTable)
			t.SetField(name, v)
		}
	}
}

func (vm *VM) isInstance(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	_, ok := v.AsObj().(*value.ObjInstance)
	return ok
}

func (vm *VM) binaryArith(op func(a, b float64) float64) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.RuntimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.Number(op(a, b)))
	return true
}

func (vm *VM) binaryCompare(op func(a, b float64) bool) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.RuntimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.Bool(op(a, b)))
	return true
}
