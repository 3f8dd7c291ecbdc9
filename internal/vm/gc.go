package vm

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

// gcHeapGrowFactor mirrors memory.c's GC_HEAP_GROW_FACTOR.
const gcHeapGrowFactor = 2

// objSize approximates the number of bytes an allocation of this kind
// "costs" against the byte-balance threshold. Go's own allocator does the
// real bookkeeping; this counter only exists to reproduce the collector's
// triggering behavior (and the stress-GC testable property) from
// original_source/src/memory.c, not to manage real memory.
func objSize(t value.ObjType) int {
	switch t {
	case value.ObjTypeString:
		return 32
	case value.ObjTypeTable:
		return 64
	case value.ObjTypeInstance:
		return 48
	case value.ObjTypeClosure:
		return 40
	default:
		return 24
	}
}

// track links a freshly built object into the VM's intrusive all-objects
// list and charges its approximate size against the allocation balance,
// collecting first if stress mode is on or the threshold was crossed by an
// earlier allocation (memory.c's reallocate/collectGarbage interplay).
func (vm *VM) track(o value.Obj) {
	if vm.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
	o.SetNext(vm.objects)
	vm.objects = o
	vm.bytesAllocated += objSize(o.ObjType())
}

func (vm *VM) allocTable() *value.ObjTable {
	t := value.NewTable()
	vm.track(t)
	return t
}

func (vm *VM) allocInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewInstance(class)
	vm.track(i)
	return i
}

func (vm *VM) allocClass(name *value.ObjString) *value.ObjClass {
	c := value.NewClass(name)
	vm.track(c)
	return c
}

func (vm *VM) allocTrait(name *value.ObjString) *value.ObjTrait {
	t := value.NewTrait(name)
	vm.track(t)
	return t
}

func (vm *VM) allocClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewClosure(fn)
	vm.track(c)
	return c
}

func (vm *VM) allocBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := value.NewBoundMethod(receiver, method)
	vm.track(b)
	return b
}

func (vm *VM) allocNative(name string, fn value.NativeFn) *value.ObjNative {
	n := value.NewNative(name, fn)
	vm.track(n)
	return n
}

// internString returns the canonical interned string for s, allocating
// and tracking a new ObjString only on a miss, per spec §4.6.
func (vm *VM) internString(s string) *value.ObjString {
	if existing, ok := vm.Interner.Find(s); ok {
		return existing
	}
	obj := &value.ObjString{Chars: s, Hash: value.HashFNV1a(s)}
	vm.track(obj)
	vm.Interner.Intern(obj)
	return obj
}

// collectGarbage runs one full mark-and-sweep pass, per spec §4.3.
func (vm *VM) collectGarbage() {
	before := vm.bytesAllocated
	if vm.LogGC {
		fmt.Fprintf(vm.Stdout, "-- gc begin (allocated: %d bytes)\n", before)
	}

	gray := vm.markRoots()
	gray = vm.traceReferences(gray)
	vm.Interner.RemoveWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * gcHeapGrowFactor
	if vm.nextGC < 1024 {
		vm.nextGC = 1024
	}

	if vm.LogGC {
		fmt.Fprintf(vm.Stdout, "-- gc end: collected %d bytes (from %d to %d), next at %d\n",
			before-vm.bytesAllocated, before, vm.bytesAllocated, vm.nextGC)
	}
}

func markObject(gray []value.Obj, o value.Obj) []value.Obj {
	if o == nil || o.IsMarked() {
		return gray
	}
	o.SetMarked(true)
	return append(gray, o)
}

func markValue(gray []value.Obj, v value.Value) []value.Obj {
	if v.IsObj() {
		return markObject(gray, v.AsObj())
	}
	return gray
}

// markRoots marks every GC root described in spec §4.3 and returns the
// initial gray worklist.
func (vm *VM) markRoots() []value.Obj {
	gray := slices.Grow([]value.Obj{}, vm.stackTop+vm.frameCount+8)

	for i := 0; i < vm.stackTop; i++ {
		gray = markValue(gray, vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		gray = markObject(gray, vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen {
		gray = markObject(gray, uv)
	}

	vm.Globals.Iter(func(k *value.ObjString, v value.Value) bool {
		gray = markObject(gray, k)
		gray = markValue(gray, v)
		return false
	})

	for _, v := range vm.moduleCache {
		gray = markValue(gray, v)
	}

	gray = markObject(gray, vm.initString)
	return gray
}

// traceReferences drains the gray worklist, blackening each object by
// marking whatever it references in turn, per spec §4.3's mark phase.
func (vm *VM) traceReferences(gray []value.Obj) []value.Obj {
	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		gray = vm.blacken(gray, o)
	}
	return gray
}

func (vm *VM) blacken(gray []value.Obj, o value.Obj) []value.Obj {
	switch obj := o.(type) {
	case *value.ObjString, *value.ObjNative:
		// no out-references
	case *value.ObjUpvalue:
		gray = markValue(gray, *obj.Location)
	case *value.ObjFunction:
		if obj.Name != nil {
			gray = markObject(gray, obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			gray = markValue(gray, c)
		}
	case *value.ObjClosure:
		gray = markObject(gray, obj.Function)
		for _, uv := range obj.Upvalues {
			gray = markObject(gray, uv)
		}
	case *value.ObjClass:
		gray = markObject(gray, obj.Name)
		if obj.Super != nil {
			gray = markObject(gray, obj.Super)
		}
		obj.Methods.Iter(func(k *value.ObjString, v value.Value) bool {
			gray = markObject(gray, k)
			gray = markValue(gray, v)
			return false
		})
	case *value.ObjTrait:
		gray = markObject(gray, obj.Name)
		obj.Methods.Iter(func(k *value.ObjString, v value.Value) bool {
			gray = markObject(gray, k)
			gray = markValue(gray, v)
			return false
		})
	case *value.ObjInstance:
		gray = markObject(gray, obj.Class)
		obj.Fields.Iter(func(k *value.ObjString, v value.Value) bool {
			gray = markObject(gray, k)
			gray = markValue(gray, v)
			return false
		})
	case *value.ObjBoundMethod:
		gray = markValue(gray, obj.Receiver)
		gray = markObject(gray, obj.Method)
	case *value.ObjTable:
		for _, v := range obj.Array {
			gray = markValue(gray, v)
		}
		obj.Hash.Iter(func(k *value.ObjString, v value.Value) bool {
			gray = markObject(gray, k)
			gray = markValue(gray, v)
			return false
		})
	}
	return gray
}

// sweep walks the intrusive all-objects list once, unmarking survivors
// and unlinking the rest. There is no explicit free: once unlinked, an
// object becomes unreachable to real Go code too, and the host GC
// reclaims it in its own time — this loop only owns the language-level
// liveness bookkeeping, per spec §4.3's sweep phase.
func (vm *VM) sweep() {
	var prev value.Obj
	obj := vm.objects
	for obj != nil {
		if obj.IsMarked() {
			obj.SetMarked(false)
			prev = obj
			obj = obj.Next()
			continue
		}
		unreached := obj
		obj = obj.Next()
		if prev != nil {
			prev.SetNext(obj)
		} else {
			vm.objects = obj
		}
		unreached.SetNext(nil)
		vm.bytesAllocated -= objSize(unreached.ObjType())
	}
}
