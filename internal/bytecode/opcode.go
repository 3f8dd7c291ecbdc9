// Package bytecode defines the opcode set shared by the compiler and the
// interpreter (the per-function Chunk lives in internal/value). Ported from
// original_source/src/chunk.h; Go naming/table idiom follows
// lang/compiler/opcode.go from the teacher repository.
package bytecode

import "fmt"

// Op is a single bytecode instruction opcode.
type Op uint8

//nolint:revive
const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpPopN

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpNegate
	OpConcat
	OpLength
	OpNot
	OpEqual
	OpGreater
	OpLess

	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall
	OpClosure
	OpReturn

	OpClass
	OpInherit
	OpMethod
	OpGetProperty
	OpSetProperty
	OpGetSuper
	OpInvoke
	OpSuperInvoke
	OpNew
	OpTrait
	OpImplement

	OpTable
	OpTableGet
	OpTableSet
	OpTableAdd
	OpTableSetField
	// OpTableSetKeyed evaluates (table, key, value) in that fixed stack
	// order for a `[key] = value` table-literal item. A dedicated opcode
	// resolves the stack-order ambiguity flagged against the original
	// source's reuse of OP_TABLE_SET for this purpose (see DESIGN.md).
	OpTableSetKeyed

	opCount
)

var opNames = [...]string{
	OpConstant:      "CONSTANT",
	OpNil:           "NIL",
	OpTrue:          "TRUE",
	OpFalse:         "FALSE",
	OpPop:           "POP",
	OpPopN:          "POPN",
	OpGetLocal:      "GET_LOCAL",
	OpSetLocal:      "SET_LOCAL",
	OpGetGlobal:     "GET_GLOBAL",
	OpSetGlobal:     "SET_GLOBAL",
	OpDefineGlobal:  "DEFINE_GLOBAL",
	OpGetUpvalue:    "GET_UPVALUE",
	OpSetUpvalue:    "SET_UPVALUE",
	OpCloseUpvalue:  "CLOSE_UPVALUE",
	OpAdd:           "ADD",
	OpSubtract:      "SUBTRACT",
	OpMultiply:      "MULTIPLY",
	OpDivide:        "DIVIDE",
	OpModulo:        "MODULO",
	OpNegate:        "NEGATE",
	OpConcat:        "CONCAT",
	OpLength:        "LENGTH",
	OpNot:           "NOT",
	OpEqual:         "EQUAL",
	OpGreater:       "GREATER",
	OpLess:          "LESS",
	OpJump:          "JUMP",
	OpJumpIfFalse:   "JUMP_IF_FALSE",
	OpLoop:          "LOOP",
	OpCall:          "CALL",
	OpClosure:       "CLOSURE",
	OpReturn:        "RETURN",
	OpClass:         "CLASS",
	OpInherit:       "INHERIT",
	OpMethod:        "METHOD",
	OpGetProperty:   "GET_PROPERTY",
	OpSetProperty:   "SET_PROPERTY",
	OpGetSuper:      "GET_SUPER",
	OpInvoke:        "INVOKE",
	OpSuperInvoke:   "SUPER_INVOKE",
	OpNew:           "NEW",
	OpTrait:         "TRAIT",
	OpImplement:     "IMPLEMENT",
	OpTable:         "TABLE",
	OpTableGet:      "TABLE_GET",
	OpTableSet:      "TABLE_SET",
	OpTableAdd:      "TABLE_ADD",
	OpTableSetField: "TABLE_SET_FIELD",
	OpTableSetKeyed: "TABLE_SET_KEYED",
}

func (op Op) String() string {
	if op < opCount {
		if s := opNames[op]; s != "" {
			return s
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}
