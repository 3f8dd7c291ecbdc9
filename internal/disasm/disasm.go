// Package disasm renders a Chunk's bytecode as human-readable text, for the
// "disasm" CLI command and the VM's TraceExecution mode. Declared interface
// ported from original_source/src/debug.h (disassembleChunk/disassembleInstruction);
// the per-opcode operand widths are derived from how internal/compiler emits
// each instruction, since the original debug.c itself was not kept in the
// retrieval pack.
package disasm

import (
	"fmt"
	"io"

	"github.com/Juicywoowowow/Luaplusplus/internal/bytecode"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

// Chunk disassembles every instruction in c to w, headed by name.
func Chunk(w io.Writer, c *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction disassembles the single instruction at offset and returns the
// offset of the next one.
func Instruction(w io.Writer, c *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := bytecode.Op(c.Code[offset])
	switch op {
	case bytecode.OpNil, bytecode.OpTrue, bytecode.OpFalse, bytecode.OpPop,
		bytecode.OpAdd, bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide,
		bytecode.OpModulo, bytecode.OpNegate, bytecode.OpConcat, bytecode.OpLength,
		bytecode.OpNot, bytecode.OpEqual, bytecode.OpGreater, bytecode.OpLess,
		bytecode.OpCloseUpvalue, bytecode.OpReturn, bytecode.OpInherit,
		bytecode.OpTable, bytecode.OpTableGet, bytecode.OpTableSet,
		bytecode.OpTableAdd, bytecode.OpTableSetKeyed:
		return simpleInstruction(w, op, offset)

	case bytecode.OpConstant, bytecode.OpGetGlobal, bytecode.OpSetGlobal,
		bytecode.OpDefineGlobal, bytecode.OpClass, bytecode.OpTrait,
		bytecode.OpGetProperty, bytecode.OpSetProperty, bytecode.OpGetSuper,
		bytecode.OpTableSetField:
		return constantInstruction(w, op, c, offset)

	case bytecode.OpPopN, bytecode.OpGetLocal, bytecode.OpSetLocal,
		bytecode.OpGetUpvalue, bytecode.OpSetUpvalue, bytecode.OpCall, bytecode.OpNew:
		return byteInstruction(w, op, c, offset)

	case bytecode.OpJump, bytecode.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, c, offset)
	case bytecode.OpLoop:
		return jumpInstruction(w, op, -1, c, offset)

	case bytecode.OpMethod:
		return methodInstruction(w, c, offset)
	case bytecode.OpImplement:
		return simpleInstruction(w, op, offset)
	case bytecode.OpInvoke, bytecode.OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case bytecode.OpClosure:
		return closureInstruction(w, c, offset)

	default:
		fmt.Fprintf(w, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func simpleInstruction(w io.Writer, op bytecode.Op, offset int) int {
	fmt.Fprintf(w, "%-16s\n", op.String())
	return offset + 1
}

func byteInstruction(w io.Writer, op bytecode.Op, c *value.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op.String(), slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op bytecode.Op, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op.String(), idx, c.Constants[idx].String())
	return offset + 2
}

func jumpInstruction(w io.Writer, op bytecode.Op, sign int, c *value.Chunk, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op.String(), offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w io.Writer, op bytecode.Op, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	argCount := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op.String(), argCount, idx, c.Constants[idx].String())
	return offset + 3
}

func methodInstruction(w io.Writer, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	isPrivate := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s %4d '%s' private=%v\n", bytecode.OpMethod.String(), idx, c.Constants[idx].String(), isPrivate != 0)
	return offset + 3
}

func closureInstruction(w io.Writer, c *value.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", bytecode.OpClosure.String(), idx, c.Constants[idx].String())
	offset += 2

	fn, ok := c.Constants[idx].AsObj().(*value.ObjFunction)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}
