package vm

import "github.com/Juicywoowowow/Luaplusplus/internal/value"

// call pushes a new CallFrame for closure, per spec §4.4's call protocol:
// verify arity, check for frame-stack overflow, slots-base = stack-top -
// argCount - 1 so slot 0 is the callee/receiver.
func (vm *VM) call(closure *value.ObjClosure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.RuntimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.RuntimeError("Stack overflow.")
		return false
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return true
}

func (vm *VM) callValue(callee value.Value, argCount int) bool {
	if callee.IsObj() {
		switch fn := callee.AsObj().(type) {
		case *value.ObjClosure:
			return vm.call(fn, argCount)
		case *value.ObjNative:
			args := vm.stack[vm.stackTop-argCount : vm.stackTop]
			result, err := fn.Fn(args)
			if err != nil {
				vm.RuntimeError("%s", err.Error())
				return false
			}
			vm.stackTop -= argCount + 1
			vm.push(result)
			return true
		case *value.ObjBoundMethod:
			vm.stack[vm.stackTop-argCount-1] = fn.Receiver
			return vm.call(fn.Method, argCount)
		}
	}
	vm.RuntimeError("Can only call functions and classes.")
	return false
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argCount int) bool {
	method, ok := class.Method(name)
	if !ok {
		vm.RuntimeError("Undefined method '%s'.", name.Chars)
		return false
	}
	return vm.call(method.AsObj().(*value.ObjClosure), argCount)
}

func (vm *VM) invoke(name *value.ObjString, argCount int) bool {
	receiver := vm.peek(argCount)
	if t, ok := receiver.AsObj().(*value.ObjTable); ok {
		fn := t.GetField(name)
		vm.stack[vm.stackTop-argCount-1] = fn
		return vm.callValue(fn, argCount)
	}
	if !vm.isInstance(receiver) {
		vm.RuntimeError("Only instances have methods.")
		return false
	}
	inst := receiver.AsObj().(*value.ObjInstance)

	if v, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = v
		return vm.callValue(v, argCount)
	}
	return vm.invokeFromClass(inst.Class, name, argCount)
}

func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) bool {
	method, ok := class.Method(name)
	if !ok {
		vm.RuntimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	bound := vm.allocBoundMethod(vm.peek(0), method.AsObj().(*value.ObjClosure))
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

// captureUpvalue finds or creates the open upvalue for the stack slot at
// absolute index stackIndex, keeping the intrusive list sorted in
// descending address order, per spec §4.3/§9.
func (vm *VM) captureUpvalue(stackIndex int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	uv := vm.openUpvalues
	for uv != nil && uv.StackIndex > stackIndex {
		prev = uv
		uv = uv.NextOpen
	}
	if uv != nil && uv.StackIndex == stackIndex {
		return uv
	}

	created := value.NewUpvalue(&vm.stack[stackIndex], stackIndex)
	created.NextOpen = uv
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose slot is at or above last,
// copying the live stack value into the upvalue's own storage before the
// frame that owns that slot disappears.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.StackIndex >= last {
		uv := vm.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}

// defineMethod attaches the method on top of the stack to the class or
// trait beneath it, per OP_METHOD's handler in vm.c.
func (vm *VM) defineMethod(name *value.ObjString, isPrivate bool) {
	method := vm.peek(0)
	target := vm.peek(1)
	switch t := target.AsObj().(type) {
	case *value.ObjClass:
		t.Methods.Put(name, method)
		if isPrivate {
			t.Privates.Put(name, true)
		}
	case *value.ObjTrait:
		t.Methods.Put(name, method)
	}
	vm.pop()
}
