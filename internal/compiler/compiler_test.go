package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/diag"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

func TestCompilesWellFormedProgram(t *testing.T) {
	fn, ctx := compiler.Compile(`local x = 1 print(x)`, "<test>", value.NewInterner(), false)
	require.NotNil(t, fn)
	require.False(t, ctx.HasErrors())
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	fn, ctx := compiler.Compile(`break`, "<test>", value.NewInterner(), false)
	require.Nil(t, fn)
	require.True(t, ctx.HasErrors())
}

func TestContinueOutsideLoopIsCompileError(t *testing.T) {
	fn, ctx := compiler.Compile(`continue`, "<test>", value.NewInterner(), false)
	require.Nil(t, fn)
	require.True(t, ctx.HasErrors())
}

func TestUnusedLocalWarns(t *testing.T) {
	fn, ctx := compiler.Compile("do\nlocal unused = 1\nprint(\"hi\")\nend", "<test>", value.NewInterner(), false)
	require.NotNil(t, fn)
	require.False(t, ctx.HasErrors())

	var sawWarning bool
	for _, d := range ctx.Diagnostics() {
		if d.Level == diag.LevelWarning {
			sawWarning = true
		}
	}
	require.True(t, sawWarning)
}

func TestUnderscorePrefixedLocalDoesNotWarn(t *testing.T) {
	fn, ctx := compiler.Compile("do\nlocal _unused = 1\nprint(\"hi\")\nend", "<test>", value.NewInterner(), false)
	require.NotNil(t, fn)
	require.Empty(t, ctx.Diagnostics())
}

func TestTooManyLocalsIsCompileError(t *testing.T) {
	src := "function f()\n"
	for i := 0; i < 257; i++ {
		src += "local a" + itoa(i) + " = 0\n"
	}
	src += "end\n"
	fn, ctx := compiler.Compile(src, "<test>", value.NewInterner(), false)
	require.Nil(t, fn)
	require.True(t, ctx.HasErrors())
}

func TestTooManyConstantsIsCompileError(t *testing.T) {
	src := "do\n"
	for i := 0; i < 257; i++ {
		src += "print(" + itoa(i) + ".5)\n"
	}
	src += "end\n"
	fn, ctx := compiler.Compile(src, "<test>", value.NewInterner(), false)
	require.Nil(t, fn)
	require.True(t, ctx.HasErrors())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
