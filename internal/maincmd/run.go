package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		err := fmt.Errorf("run: at least one file must be provided")
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	cfg, err := c.runtimeConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	machine := vm.New(stdio.Stdout, stdio.Stderr, stdio.Stdin)
	machine.StressGC = cfg.StressGC
	machine.LogGC = cfg.LogGC
	machine.TraceExecution = cfg.TraceExecution
	machine.RequirePaths = cfg.RequirePaths

	for _, path := range args {
		if err := runFile(machine, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}

func runFile(machine *vm.VM, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fn, diagCtx := compiler.Compile(string(src), path, machine.Interner, true)
	if fn == nil {
		diagCtx.Render(machine.Stderr)
		return fmt.Errorf("%s: %d compile error(s)", path, diagCtx.ErrorCount)
	}
	if len(diagCtx.Diagnostics()) > 0 {
		diagCtx.Render(machine.Stderr)
	}

	switch machine.Run(fn) {
	case vm.InterpretRuntimeError:
		return fmt.Errorf("%s: runtime error", path)
	case vm.InterpretCompileError:
		return fmt.Errorf("%s: compile error", path)
	}
	return nil
}
