package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/diag"
)

func TestReportSuppressesFurtherErrorsInPanicMode(t *testing.T) {
	ctx := diag.NewContext("local x = \n", "<test>", false)
	ctx.Errorf(diag.SourceLoc{Line: 1, Column: 11, Length: 1}, diag.EExpectedExpr, "Expected expression.")
	ctx.Errorf(diag.SourceLoc{Line: 1, Column: 11, Length: 1}, diag.EExpectedExpr, "Expected expression.")

	require.Equal(t, 1, ctx.ErrorCount)
	require.Len(t, ctx.Diagnostics(), 1)
	require.True(t, ctx.HasErrors())
}

func TestSynchronizeReenablesErrorReporting(t *testing.T) {
	ctx := diag.NewContext("x\ny\n", "<test>", false)
	ctx.Errorf(diag.SourceLoc{Line: 1, Column: 1, Length: 1}, diag.EExpectedExpr, "first")
	ctx.Synchronize()
	ctx.Errorf(diag.SourceLoc{Line: 2, Column: 1, Length: 1}, diag.EExpectedExpr, "second")

	require.Equal(t, 2, ctx.ErrorCount)
	require.Len(t, ctx.Diagnostics(), 2)
}

func TestShouldStopAtMaxErrors(t *testing.T) {
	ctx := diag.NewContext("", "<test>", false)
	for i := 0; i < diag.MaxErrors; i++ {
		ctx.Errorf(diag.SourceLoc{Line: 1, Column: 1, Length: 1}, diag.EExpectedExpr, "err %d", i)
		ctx.Synchronize()
	}
	require.True(t, ctx.ShouldStop())
}

func TestWarnDoesNotCountAsError(t *testing.T) {
	ctx := diag.NewContext("local unused = 1\n", "<test>", false)
	ctx.Warnf(diag.SourceLoc{Line: 1, Column: 7, Length: 6}, diag.WUnusedLocal, "Unused local 'unused'.")

	require.False(t, ctx.HasErrors())
	require.Equal(t, 1, ctx.WarnCount)
}

func TestRenderIncludesSourceExcerptAndLocation(t *testing.T) {
	ctx := diag.NewContext("local x = \n", "myfile.luapp", false)
	ctx.Errorf(diag.SourceLoc{Line: 1, Column: 11, Length: 1}, diag.EExpectedExpr, "Expected expression.")

	var buf bytes.Buffer
	ctx.Render(&buf)
	out := buf.String()

	require.Contains(t, out, "myfile.luapp:1:11")
	require.Contains(t, out, "Expected expression.")
	require.Contains(t, out, "local x = ")
}
