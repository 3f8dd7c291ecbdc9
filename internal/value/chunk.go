package value

import "github.com/Juicywoowowow/Luaplusplus/internal/bytecode"

// Chunk is a function's bytecode, source-line table, and constant pool,
// ported from original_source/src/chunk.h.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// Write appends a single bytecode byte, recording its source line.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op bytecode.Op, line int) int {
	return c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index.
// Callers are responsible for enforcing the 256-constant limit (spec §3).
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}
