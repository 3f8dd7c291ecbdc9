package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/Juicywoowowow/Luaplusplus/internal/compiler"
	"github.com/Juicywoowowow/Luaplusplus/internal/vm"
)

// Repl starts an interactive loop: each line is compiled and run against a
// single, long-lived VM, so globals and `require` caches persist across
// lines the way a script's top-level statements would.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		fn, diagCtx := compiler.Compile(line, "<repl>", machine.Interner, true)
		if fn == nil {
			diagCtx.Render(stdio.Stderr)
			continue
		}
		machine.Run(fn)
	}
}
