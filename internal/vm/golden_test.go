package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/filetest"
	"github.com/Juicywoowowow/Luaplusplus/internal/vm"
)

var testUpdateGolden = flag.Bool("test.update-golden-tests", false, "update internal/vm golden .want files")

// TestGoldenScripts runs every testdata/scripts/*.luapp program end to end
// and diffs its stdout against the sibling testdata/scripts/<name>.luapp.want
// file, in the teacher's filetest.DiffOutput idiom.
func TestGoldenScripts(t *testing.T) {
	dir := filepath.Join("testdata", "scripts")
	for _, fi := range filetest.SourceFiles(t, dir, ".luapp") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			srcBytes, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)
			src := string(srcBytes)

			var stdout, stderr bytes.Buffer
			machine := vm.New(&stdout, &stderr, strings.NewReader(""))

			fn, ctx := compiler.Compile(src, fi.Name(), machine.Interner, false)
			require.NotNil(t, fn, "compile errors in %s: %v", fi.Name(), ctx.Diagnostics())

			result := machine.Run(fn)
			require.Equal(t, vm.InterpretOK, result, "%s: stderr: %s", fi.Name(), stderr.String())

			filetest.DiffOutput(t, fi, stdout.String(), dir, testUpdateGolden)
		})
	}
}
