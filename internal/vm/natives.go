package vm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

// defineNative registers a Go-implemented built-in under name, per vm.c's
// defineNative.
func (vm *VM) defineNative(name string, fn value.NativeFn) {
	nameStr := vm.internString(name)
	native := vm.allocNative(name, fn)
	vm.Globals.Put(nameStr, value.FromObj(native))
}

// defineNatives registers the full runtime library named in spec §2/§6:
// the original five (print/read/type/tonumber/tostring) plus the
// supplemented set from SPEC_FULL.md §12.
func (vm *VM) defineNatives() {
	vm.defineNative("print", vm.printNative)
	vm.defineNative("read", vm.readNative)
	vm.defineNative("type", vm.typeNative)
	vm.defineNative("tonumber", tonumberNative)
	vm.defineNative("tostring", vm.tostringNative)
	vm.defineNative("require", vm.requireNative)
	vm.defineNative("pairs", pairsNative)
	vm.defineNative("ipairs", pairsNative)
	vm.defineNative("next", vm.nextNative)
	vm.defineNative("error", errorNative)
	vm.defineNative("assert", assertNative)
	vm.defineNative("rawget", rawgetNative)
	vm.defineNative("rawset", rawsetNative)
}

func (vm *VM) printNative(args []value.Value) (value.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(vm.Stdout, "\t")
		}
		fmt.Fprint(vm.Stdout, a.String())
	}
	fmt.Fprintln(vm.Stdout)
	return value.Nil, nil
}

func (vm *VM) readNative(args []value.Value) (value.Value, error) {
	scanner := bufio.NewScanner(vm.Stdin)
	if !scanner.Scan() {
		return value.Nil, nil
	}
	return value.FromObj(vm.internString(scanner.Text())), nil
}

func (vm *VM) typeNative(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, nil
	}
	v := args[0]
	name := v.TypeName()
	if v.IsObj() {
		switch v.AsObj().(type) {
		case *value.ObjFunction, *value.ObjClosure, *value.ObjNative, *value.ObjBoundMethod:
			name = "function"
		}
	}
	return value.FromObj(vm.internString(name)), nil
}

func tonumberNative(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, nil
	}
	if args[0].IsNumber() {
		return args[0], nil
	}
	if s, ok := args[0].AsObj().(*value.ObjString); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s.Chars), 64); err == nil {
			return value.Number(n), nil
		}
	}
	return value.Nil, nil
}

func (vm *VM) tostringNative(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, nil
	}
	return value.FromObj(vm.internString(args[0].String())), nil
}

// pairsNative backs both `pairs` and `ipairs`: an identity passthrough; the actual iteration
// is driven by the language via `next`, per spec §6.
func pairsNative(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, nil
	}
	return args[0], nil
}

// nextNative returns a 2-element table {key, value} for the entry after
// key (array part first, then hash part), or nil at the end, per spec §6.
func (vm *VM) nextNative(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Nil, nil
	}
	t, ok := args[0].AsObj().(*value.ObjTable)
	if !ok {
		return value.Nil, nil
	}
	hasPrev := len(args) >= 2 && !args[1].IsNil()
	returnNext := !hasPrev

	var result value.Value
	t.ForEach(func(k, v value.Value) bool {
		if returnNext {
			result = vm.pairResult(k, v)
			return false
		}
		if value.Equal(k, args[1]) {
			returnNext = true
		}
		return true
	})
	if result.IsNil() {
		return value.Nil, nil
	}
	return result, nil
}

func (vm *VM) pairResult(k, v value.Value) value.Value {
	t := vm.allocTable()
	t.Append(k)
	t.Append(v)
	return value.FromObj(t)
}

// errorNative and assertNative are the supplemented natives described in
// SPEC_FULL.md §12: unlike the original five, they signal failure by
// returning a Go error, which callValue turns into the normal
// RuntimeError stack-trace path.
func errorNative(args []value.Value) (value.Value, error) {
	msg := "error"
	if len(args) >= 1 {
		msg = args[0].String()
	}
	return value.Nil, fmt.Errorf("%s", msg)
}

func assertNative(args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].Truthy() {
		msg := "assertion failed!"
		if len(args) >= 2 {
			msg = args[1].String()
		}
		return value.Nil, fmt.Errorf("%s", msg)
	}
	return args[0], nil
}

func rawgetNative(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Nil, nil
	}
	t, ok := args[0].AsObj().(*value.ObjTable)
	if !ok {
		return value.Nil, nil
	}
	return t.Get(args[1]), nil
}

func rawsetNative(args []value.Value) (value.Value, error) {
	if len(args) != 3 {
		return value.Nil, nil
	}
	t, ok := args[0].AsObj().(*value.ObjTable)
	if !ok {
		return value.Nil, nil
	}
	t.Set(args[1], args[2])
	return args[0], nil
}

// requireNative implements the module loader from spec §6: search
// ./name.luapp, ./lib/name.luapp, ./stdlib/name.luapp (vm.RequirePaths, in
// that order), compile and run the module as a top-level program, and
// return a table of the globals it newly defined. Results are cached per
// VM by resolved path.
func (vm *VM) requireNative(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, fmt.Errorf("require expects a module name")
	}
	nameStr, ok := args[0].AsObj().(*value.ObjString)
	if !ok {
		return value.Nil, fmt.Errorf("require expects a string module name")
	}
	name := nameStr.Chars

	var resolved string
	var src []byte
	for _, pattern := range vm.RequirePaths {
		path := fmt.Sprintf(pattern, name)
		b, err := os.ReadFile(path)
		if err == nil {
			resolved = path
			src = b
			break
		}
	}
	if resolved == "" {
		return value.Nil, fmt.Errorf("module '%s' not found", name)
	}
	if cached, ok := vm.moduleCache[resolved]; ok {
		return cached, nil
	}

	before := make(map[*value.ObjString]bool)
	vm.Globals.Iter(func(k *value.ObjString, v value.Value) bool {
		before[k] = true
		return false
	})

	fn, ctx := compiler.Compile(string(src), resolved, vm.Interner, false)
	if fn == nil {
		return value.Nil, fmt.Errorf("module '%s' failed to compile (%d error(s))", name, ctx.ErrorCount)
	}
	if result := vm.Run(fn); result != InterpretOK {
		return value.Nil, fmt.Errorf("module '%s' raised a runtime error", name)
	}

	mod := vm.allocTable()
	vm.Globals.Iter(func(k *value.ObjString, v value.Value) bool {
		if !before[k] {
			mod.SetField(k, v)
		}
		return false
	})
	modVal := value.FromObj(mod)
	vm.moduleCache[resolved] = modVal
	return modVal, nil
}
