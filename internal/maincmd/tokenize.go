package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/Juicywoowowow/Luaplusplus/internal/lexer"
	"github.com/Juicywoowowow/Luaplusplus/internal/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := tokenizeFile(stdio, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	lx := lexer.New(src)
	for {
		tok := lx.Next()
		fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", path, tok.Line, tok.Column, tok.Kind)
		if tok.Lexeme != "" {
			fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}
