package vm_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
	"github.com/Juicywoowowow/Luaplusplus/internal/vm"
)

// run compiles and executes src against a fresh VM, returning stdout.
func run(t *testing.T, src string) string {
	t.Helper()

	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))

	fn, ctx := compiler.Compile(src, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())

	result := machine.Run(fn)
	require.Equal(t, vm.InterpretOK, result, "stderr: %s", stderr.String())
	return stdout.String()
}

func TestArithmeticPrecedence(t *testing.T) {
	out := run(t, `local x = 2 + 3 * 4 print(x)`)
	require.Equal(t, "14\n", out)
}

func TestRecursiveFactorial(t *testing.T) {
	out := run(t, `function fact(n) if n <= 1 then return 1 end return n * fact(n - 1) end print(fact(5))`)
	require.Equal(t, "120\n", out)
}

func TestClosureCounter(t *testing.T) {
	out := run(t, `
function mk()
  local c = 0
  function inc()
    c = c + 1
    return c
  end
  return inc
end
local a = mk()
print(a())
print(a())
print(a())
`)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestInheritanceWithSuper(t *testing.T) {
	out := run(t, `
class A
  function greet()
    return "A"
  end
end
class B extends A
  function greet()
    return super.greet() .. "/B"
  end
end
print((new B()):greet())
`)
	require.Equal(t, "A/B\n", out)
}

func TestTableLiteralMixedAccess(t *testing.T) {
	out := run(t, `local t = { "a", "b", name = "x" } print(t[1]) print(t[2]) print(t.name) print(#t)`)
	require.Equal(t, "a\nb\nx\n2\n", out)
}

func TestShortCircuitOr(t *testing.T) {
	out := run(t, `
local called = false
function f()
  called = true
  return true
end
local x = true or f()
print(called)
`)
	require.Equal(t, "false\n", out)
}

func TestArityMismatchRaisesRuntimeError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))

	fn, ctx := compiler.Compile(`function f(a, b) return a + b end f(1)`, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())

	result := machine.Run(fn)
	require.Equal(t, vm.InterpretRuntimeError, result)
	require.Contains(t, stderr.String(), "Expected 2 arguments but got 1")
}

func TestModuloByZeroRaisesRuntimeError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))

	fn, ctx := compiler.Compile(`local x = 5 % 0 print(x)`, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())

	result := machine.Run(fn)
	require.Equal(t, vm.InterpretRuntimeError, result)
}

func TestStressGCProducesSameOutput(t *testing.T) {
	src := `
local t = {}
for i = 1, 50 do
  t[i] = tostring(i) .. "!"
end
print(t[50])
`
	var stdoutNormal, stderrNormal bytes.Buffer
	normal := vm.New(&stdoutNormal, &stderrNormal, strings.NewReader(""))
	fn, ctx := compiler.Compile(src, "<test>", normal.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())
	require.Equal(t, vm.InterpretOK, normal.Run(fn))

	var stdoutStress, stderrStress bytes.Buffer
	stress := vm.New(&stdoutStress, &stderrStress, strings.NewReader(""))
	stress.StressGC = true
	fnStress, ctxStress := compiler.Compile(src, "<test>", stress.Interner, false)
	require.NotNil(t, fnStress, "compile errors: %v", ctxStress.Diagnostics())
	require.Equal(t, vm.InterpretOK, stress.Run(fnStress))

	require.Equal(t, stdoutNormal.String(), stdoutStress.String())
	require.Equal(t, "50!\n", stdoutStress.String())
}

func TestRequireLoadsModuleGlobals(t *testing.T) {
	dir := t.TempDir()
	modPath := dir + "/greeter.luapp"
	require.NoError(t, os.WriteFile(modPath, []byte(`function hello() return "hi" end`), 0o600))

	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))
	machine.RequirePaths = []string{dir + "/%s.luapp"}

	fn, ctx := compiler.Compile(`local g = require("greeter") print(g.hello())`, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())
	require.Equal(t, vm.InterpretOK, machine.Run(fn), "stderr: %s", stderr.String())
	require.Equal(t, "hi\n", stdout.String())
}

func TestUnboundedRecursionRaisesStackOverflow(t *testing.T) {
	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))

	fn, ctx := compiler.Compile(`function loop() return loop() end loop()`, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())

	result := machine.Run(fn)
	require.Equal(t, vm.InterpretRuntimeError, result)
	require.Contains(t, stderr.String(), "Stack overflow.")
}

func TestConcatInternsResult(t *testing.T) {
	var stdout, stderr bytes.Buffer
	machine := vm.New(&stdout, &stderr, strings.NewReader(""))
	fn, ctx := compiler.Compile(`print("a" .. "b")`, "<test>", machine.Interner, false)
	require.NotNil(t, fn, "compile errors: %v", ctx.Diagnostics())
	require.Equal(t, vm.InterpretOK, machine.Run(fn))
	require.Equal(t, "ab\n", stdout.String())

	interned, ok := machine.Interner.Find("ab")
	require.True(t, ok)
	require.Equal(t, value.FromObj(interned).String(), "ab")
}
