package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/disasm"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := disasmFile(stdio, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}

func disasmFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fn, diagCtx := compiler.Compile(string(src), path, value.NewInterner(), false)
	if fn == nil {
		diagCtx.Render(stdio.Stderr)
		return fmt.Errorf("%s: %d compile error(s)", path, diagCtx.ErrorCount)
	}

	disassembleRecursive(stdio, fn)
	return nil
}

// disassembleRecursive prints fn's chunk and then every function-valued
// constant's chunk in turn, since CLOSURE operands reference child
// functions compiled as separate chunks.
func disassembleRecursive(stdio mainer.Stdio, fn *value.ObjFunction) {
	name := "<script>"
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	disasm.Chunk(stdio.Stdout, fn.Chunk, name)

	for _, k := range fn.Chunk.Constants {
		if child, ok := k.AsObj().(*value.ObjFunction); ok {
			disassembleRecursive(stdio, child)
		}
	}
}
