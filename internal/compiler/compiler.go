// Package compiler implements the single-pass Pratt-parsing bytecode
// compiler: a stack of nested function compilers, local/upvalue
// resolution, loop and class contexts, constant folding, and unused-local
// warnings. Ported from original_source/src/compiler.c; the Go
// table-of-opcodes idiom follows lang/compiler/opcode.go from the teacher
// repository (see internal/bytecode).
package compiler

import (
	"strconv"

	"github.com/Juicywoowowow/Luaplusplus/internal/bytecode"
	"github.com/Juicywoowowow/Luaplusplus/internal/diag"
	"github.com/Juicywoowowow/Luaplusplus/internal/lexer"
	"github.com/Juicywoowowow/Luaplusplus/internal/token"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

// FunctionType distinguishes the kind of function currently compiling,
// mirroring compiler.c's FunctionType enum.
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeMethod
	TypeInitializer
	TypeScript
)

const (
	maxLocals    = 256
	maxUpvalues  = 256
	maxConstants = 256
	maxBreaks    = 256
)

type local struct {
	name       string
	depth      int
	isCaptured bool
	used       bool
	loc        diag.SourceLoc
}

type upvalueRef struct {
	index   int
	isLocal bool
}

type loopCtx struct {
	enclosing      *loopCtx
	continueTarget int
	scopeDepth     int
	breakJumps     []int
	inFunction     *funcState // the funcState this loop belongs to, so break/continue cannot cross a function boundary (resolved Open Question, SPEC_FULL.md §13)
}

type classCtx struct {
	enclosing *classCtx
	hasSuper  bool
}

// funcState is one nested function-compilation context.
type funcState struct {
	enclosing *funcState
	function  *value.ObjFunction
	typ       FunctionType

	locals    []local
	scopeDepth int
	upvalues  []upvalueRef
	loop      *loopCtx
}

// Compiler drives the lexer and emits bytecode for one top-level
// compilation unit.
type Compiler struct {
	lex      *lexer.Lexer
	diags    *diag.Context
	interner *value.Interner

	previous token.Token
	current  token.Token
	ahead    token.Token // one token of extra lookahead past current

	cur   *funcState
	class *classCtx

	// lastUpvalues holds the upvalue table of the funcState that endCompiler
	// most recently popped, so the enclosing compiler's emitClosure can read
	// it right after function() calls endCompiler.
	lastUpvalues []upvalueRef

	// globals records every name declared at scope depth 0 (locals,
	// functions, classes, traits), so declareVariable can warn when a
	// nested local shadows one.
	globals map[string]bool

	// sawTerminator is set by return/break/continue and read by block()
	// to flag any statement compiled after one of them as unreachable.
	sawTerminator bool
}

// Compile compiles source into a top-level Function (wrapping the program
// in an implicit zero-arg, zero-upvalue function, per spec §2's data
// flow). Returns nil if any error was reported; inspect ctx for
// diagnostics either way.
func Compile(source, filename string, interner *value.Interner, useColors bool) (*value.ObjFunction, *diag.Context) {
	ctx := diag.NewContext(source, filename, useColors)
	c := &Compiler{lex: lexer.New([]byte(source)), diags: ctx, interner: interner, globals: make(map[string]bool)}

	fn := value.NewFunction()
	c.cur = &funcState{function: fn, typ: TypeScript}
	c.pushLocalSlotZero()

	c.ahead = c.lex.Next()
	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
		if c.diags.ShouldStop() {
			break
		}
	}
	c.endCompiler()

	if ctx.HasErrors() {
		return nil, ctx
	}
	return fn, ctx
}

func (c *Compiler) pushLocalSlotZero() {
	// Slot 0 is reserved for the implicit receiver in methods/initializers,
	// unnamed (and unusable) otherwise, per spec §3.
	name := ""
	if c.cur.typ == TypeMethod || c.cur.typ == TypeInitializer {
		name = "self"
	}
	c.cur.locals = append(c.cur.locals, local{name: name, depth: 0, used: true})
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	c.current = c.ahead
	for {
		c.ahead = c.lex.Next()
		if c.ahead.Kind != token.ILLEGAL {
			break
		}
		next := c.ahead
		code := diag.EUnexpectedChar
		switch next.Lexeme {
		case "Unterminated string.":
			code = diag.EUnterminatedStr
		case "Unterminated long string.":
			code = diag.EUnterminatedLong
		}
		c.errorAtToken(next, code, "", next.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) loc(t token.Token) diag.SourceLoc {
	return diag.SourceLoc{Line: t.Line, Column: t.Column, Length: max(1, len(t.Lexeme))}
}

// errorAtToken reports a diagnostic at an arbitrary token with an explicit
// code and optional help text, per original_source/src/diagnostic.h's
// reportDiagnostic contract.
func (c *Compiler) errorAtToken(t token.Token, code diag.Code, help, msg string) {
	c.diags.Report(diag.Diagnostic{Level: diag.LevelError, Code: code, Message: msg, Loc: c.loc(t), Help: help})
}

// errorAt, errorAtCurrent and error mirror compiler.c's plain error()/
// errorAtCurrent(): the generic "expected token" code with no help text.
// Call sites with a more specific diagnosis use errorWithCode /
// errorAtCurrentWithCode instead, matching compiler.c's errorWithCode().
func (c *Compiler) errorAt(t token.Token, msg string) { c.errorAtToken(t, diag.EExpectedToken, "", msg) }
func (c *Compiler) errorAtCurrent(msg string)         { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)                  { c.errorAt(c.previous, msg) }

// errorWithCode and errorAtCurrentWithCode report at the previous/current
// token respectively with a specific diag.Code and help text, ported from
// compiler.c's errorWithCode()/errorAtCurrentWithCode().
func (c *Compiler) errorWithCode(code diag.Code, msg, help string) {
	c.errorAtToken(c.previous, code, help, msg)
}
func (c *Compiler) errorAtCurrentWithCode(code diag.Code, msg, help string) {
	c.errorAtToken(c.current, code, help, msg)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ---- bytecode emission ----

func (c *Compiler) chunk() *value.Chunk { return c.cur.function.Chunk }

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, c.previous.Line) }
func (c *Compiler) emitOp(op bytecode.Op) { c.chunk().WriteOp(op, c.previous.Line) }
func (c *Compiler) emitOpByte(op bytecode.Op, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.errorWithCode(diag.EJumpTooFar, "Loop body too large.", "split this loop body into smaller functions")
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.errorWithCode(diag.EJumpTooFar, "Too much code to jump over.", "split this branch into smaller statements")
	}
	c.chunk().Code[offset] = byte((jump >> 8) & 0xff)
	c.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	if len(c.chunk().Constants) >= maxConstants {
		c.errorWithCode(diag.ETooManyConstants, "Too many constants in one chunk.",
			"split this function into smaller functions")
		return 0
	}
	return byte(c.chunk().AddConstant(v))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

func (c *Compiler) internString(s string) *value.ObjString {
	if existing, ok := c.interner.Find(s); ok {
		return existing
	}
	obj := &value.ObjString{Chars: s, Hash: value.HashFNV1a(s)}
	c.interner.Intern(obj)
	return obj
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.FromObj(c.internString(name)))
}

func (c *Compiler) emitReturn() {
	if c.cur.typ == TypeInitializer {
		c.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
}

// ---- constant folding (peeks the just-emitted tail, spec §4.2/§9) ----

func (c *Compiler) lastIsConstant() (idx int, val value.Value, ok bool) {
	code := c.chunk().Code
	if len(code) < 2 {
		return 0, value.Nil, false
	}
	i := len(code) - 2
	if bytecode.Op(code[i]) != bytecode.OpConstant {
		return 0, value.Nil, false
	}
	return i, c.chunk().Constants[code[i+1]], true
}

func (c *Compiler) removeLastConstant(from int) {
	c.chunk().Code = c.chunk().Code[:from]
	c.chunk().Lines = c.chunk().Lines[:from]
}

// ---- scopes ----

func (c *Compiler) beginScope() { c.cur.scopeDepth++ }

func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	locals := c.cur.locals
	n := 0
	for len(locals) > 0 && locals[len(locals)-1].depth > c.cur.scopeDepth {
		last := locals[len(locals)-1]
		if !last.used && last.name != "" && last.name[0] != '_' {
			c.diags.Warnf(last.loc, diag.WUnusedLocal, "unused local variable '%s'", last.name)
		}
		if last.isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			n++
		}
		locals = locals[:len(locals)-1]
	}
	c.cur.locals = locals
	if n == 1 {
		c.emitOp(bytecode.OpPop)
	} else if n > 1 {
		c.emitOpByte(bytecode.OpPopN, byte(n))
	}
}

// ---- locals / upvalues ----

func (c *Compiler) addLocal(name string, loc diag.SourceLoc) {
	if len(c.cur.locals) >= maxLocals {
		c.errorWithCode(diag.ETooManyLocals, "Too many local variables in function.",
			"split this function into smaller functions")
		return
	}
	c.cur.locals = append(c.cur.locals, local{name: name, depth: -1, loc: loc})
}

func (c *Compiler) declareVariable(name string, loc diag.SourceLoc) {
	if c.cur.scopeDepth == 0 {
		c.globals[name] = true
		return
	}
	if c.globals[name] {
		c.diags.Warnf(loc, diag.WShadowedGlobal, "local '%s' shadows a global of the same name", name)
	}
	for i := len(c.cur.locals) - 1; i >= 0; i-- {
		l := c.cur.locals[i]
		if l.depth != -1 && l.depth < c.cur.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAt(c.previous, "Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name, loc)
}

func (c *Compiler) markInitialized() {
	if c.cur.scopeDepth == 0 {
		return
	}
	c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
}

func resolveLocalIn(f *funcState, name string) int {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			if f.locals[i].depth == -1 {
				return -1
			}
			f.locals[i].used = true
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveLocal(f *funcState, name string) int {
	return resolveLocalIn(f, name)
}

func (c *Compiler) addUpvalue(f *funcState, index int, isLocal bool) int {
	for i, uv := range f.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(f.upvalues) >= maxUpvalues {
		c.errorWithCode(diag.ETooManyUpvalues, "Too many closure variables in function.",
			"split this function into smaller functions")
		return 0
	}
	f.upvalues = append(f.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(f.upvalues) - 1
}

func (c *Compiler) resolveUpvalue(f *funcState, name string) int {
	if f.enclosing == nil {
		return -1
	}
	if local := resolveLocalIn(f.enclosing, name); local != -1 {
		f.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(f, local, true)
	}
	if up := c.resolveUpvalue(f.enclosing, name); up != -1 {
		return c.addUpvalue(f, up, false)
	}
	return -1
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	name := c.previous.Lexeme
	loc := c.loc(c.previous)
	c.declareVariable(name, loc)
	if c.cur.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.cur.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

// ---- function compiler push/pop ----

func (c *Compiler) pushFunc(typ FunctionType, name string) {
	fn := value.NewFunction()
	if name != "" {
		fn.Name = c.internString(name)
	}
	fs := &funcState{enclosing: c.cur, function: fn, typ: typ}
	c.cur = fs
	c.pushLocalSlotZero()
}

func (c *Compiler) endCompiler() *value.ObjFunction {
	c.emitReturn()
	fn := c.cur.function
	fn.UpvalueCount = len(c.cur.upvalues)
	if c.cur.scopeDepth == 0 {
		for _, l := range c.cur.locals {
			if l.depth == 0 && !l.used && l.name != "" && l.name[0] != '_' {
				c.diags.Warnf(l.loc, diag.WUnusedLocal, "unused local variable '%s'", l.name)
			}
		}
	}
	c.lastUpvalues = c.cur.upvalues
	c.cur = c.cur.enclosing
	return fn
}

// ---- expressions ----

func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	rule := getRule(c.previous.Kind)
	if rule.prefix == nil {
		c.errorWithCode(diag.EExpectedExpr, "Expect expression.", "")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Kind).precedence {
		c.advance()
		infix := getRule(c.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.errorWithCode(diag.EInvalidAssignTgt, "Invalid assignment target.", "")
	}
}

func (c *Compiler) number(bool) {
	n, _ := strconv.ParseFloat(c.previous.Lexeme, 64)
	c.emitConstant(value.Number(n))
}

func (c *Compiler) string(bool) {
	c.emitConstant(value.FromObj(c.internString(c.previous.Decoded)))
}

func (c *Compiler) literal(bool) {
	switch c.previous.Kind {
	case token.FALSE:
		c.emitOp(bytecode.OpFalse)
	case token.TRUE:
		c.emitOp(bytecode.OpTrue)
	case token.NIL:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) grouping(bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.previous.Kind
	c.parsePrecedence(PrecUnary)

	switch op {
	case token.MINUS:
		if idx, val, ok := c.lastIsConstant(); ok && val.IsNumber() {
			c.removeLastConstant(idx)
			c.emitConstant(value.Number(-val.AsNumber()))
			return
		}
		c.emitOp(bytecode.OpNegate)
	case token.NOT:
		if idx, val, ok := c.lastIsConstant(); ok {
			c.removeLastConstant(idx)
			c.emitConstant(value.Bool(!val.Truthy()))
			return
		}
		c.emitOp(bytecode.OpNot)
	case token.HASH:
		c.emitOp(bytecode.OpLength)
	}
}

func foldNumberBinary(op token.Kind, a, b float64) (value.Value, bool) {
	switch op {
	case token.PLUS:
		return value.Number(a + b), true
	case token.MINUS:
		return value.Number(a - b), true
	case token.STAR:
		return value.Number(a * b), true
	case token.SLASH:
		if b == 0 {
			return value.Nil, false // division by zero is not folded, spec §4.2
		}
		return value.Number(a / b), true
	case token.PERCENT:
		if int64(b) == 0 {
			return value.Nil, false // modulo by zero is not folded; runtime raises (SPEC_FULL.md §13)
		}
		return value.Number(float64(int64(a) % int64(b))), true
	case token.EQUAL_EQUAL:
		return value.Bool(a == b), true
	case token.TILDE_EQUAL:
		return value.Bool(a != b), true
	case token.LESS:
		return value.Bool(a < b), true
	case token.LESS_EQUAL:
		return value.Bool(a <= b), true
	case token.GREATER:
		return value.Bool(a > b), true
	case token.GREATER_EQUAL:
		return value.Bool(a >= b), true
	}
	return value.Nil, false
}

func (c *Compiler) binary(canAssign bool) {
	op := c.previous.Kind
	rule := getRule(op)
	c.parsePrecedence(rule.precedence + 1)

	// constant folding over the just-emitted pair, per spec §4.2/§9.
	if rIdx, rv, ok := c.lastIsConstant(); ok {
		code := c.chunk().Code
		if len(code) >= 4 && rIdx >= 2 && bytecode.Op(code[rIdx-2]) == bytecode.OpConstant {
			lv := c.chunk().Constants[code[rIdx-1]]
			if lv.IsNumber() && rv.IsNumber() {
				if folded, ok := foldNumberBinary(op, lv.AsNumber(), rv.AsNumber()); ok {
					c.removeLastConstant(rIdx - 2)
					c.emitConstant(folded)
					return
				}
			}
			if op == token.EQUAL_EQUAL || op == token.TILDE_EQUAL {
				eq := value.Equal(lv, rv)
				if op == token.TILDE_EQUAL {
					eq = !eq
				}
				c.removeLastConstant(rIdx - 2)
				c.emitConstant(value.Bool(eq))
				return
			}
		}
	}

	switch op {
	case token.PLUS:
		c.emitOp(bytecode.OpAdd)
	case token.MINUS:
		c.emitOp(bytecode.OpSubtract)
	case token.STAR:
		c.emitOp(bytecode.OpMultiply)
	case token.SLASH:
		c.emitOp(bytecode.OpDivide)
	case token.PERCENT:
		c.emitOp(bytecode.OpModulo)
	case token.EQUAL_EQUAL:
		c.emitOp(bytecode.OpEqual)
	case token.TILDE_EQUAL:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.GREATER:
		c.emitOp(bytecode.OpGreater)
	case token.GREATER_EQUAL:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.LESS:
		c.emitOp(bytecode.OpLess)
	case token.LESS_EQUAL:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) concat(canAssign bool) {
	// right-leaning via recursion, per spec §4.2.
	c.parsePrecedence(PrecConcat)
	c.emitOp(bytecode.OpConcat)
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp bytecode.Op
	arg := c.resolveLocal(c.cur, name)
	if arg != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else if arg = c.resolveUpvalue(c.cur, name); arg != -1 {
		getOp, setOp = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
		return
	}
	c.emitOpByte(getOp, byte(arg))
}

func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.previous.Lexeme, canAssign) }

func (c *Compiler) self(bool) {
	if c.class == nil {
		c.errorWithCode(diag.ESelfOutsideMethod, "Can't use 'self' outside of a class method.",
			"'self' refers to the current instance and is only valid inside class methods")
		return
	}
	c.namedVariable("self", false)
}

func (c *Compiler) super(bool) {
	if c.class == nil {
		c.errorWithCode(diag.ESuperOutsideClass, "Can't use 'super' outside of a class.",
			"'super' is only valid inside class methods")
		return
	} else if !c.class.hasSuper {
		c.errorWithCode(diag.ESuperOutsideClass, "Can't use 'super' in a class with no superclass.",
			"add 'extends ParentClass' to use super")
	}
	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.previous.Lexeme)

	c.namedVariable("self", false)
	if c.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte(bytecode.OpSuperInvoke, name)
		c.emitByte(byte(argCount))
		return
	}
	c.namedVariable("super", false)
	c.emitOpByte(bytecode.OpGetSuper, name)
}

func (c *Compiler) new_(bool) {
	c.consume(token.IDENT, "Expect class name.")
	c.namedVariable(c.previous.Lexeme, false)
	c.consume(token.LEFT_PAREN, "Expect '(' after class name.")
	argCount := c.argumentList()
	c.emitOpByte(bytecode.OpNew, byte(argCount))
}

func (c *Compiler) argumentList() int {
	argCount := 0
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argCount == 255 {
				c.errorWithCode(diag.ETooManyArgs, "Can't have more than 255 arguments.", "")
			}
			argCount++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return argCount
}

func (c *Compiler) call(bool) {
	argCount := c.argumentList()
	c.emitOpByte(bytecode.OpCall, byte(argCount))
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous.Lexeme)

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(bytecode.OpSetProperty, name)
		return
	}
	if c.match(token.LEFT_PAREN) {
		argCount := c.argumentList()
		c.emitOpByte(bytecode.OpInvoke, name)
		c.emitByte(byte(argCount))
		return
	}
	c.emitOpByte(bytecode.OpGetProperty, name)
}

func (c *Compiler) colonCall(bool) {
	c.consume(token.IDENT, "Expect method name after ':'.")
	name := c.identifierConstant(c.previous.Lexeme)
	c.consume(token.LEFT_PAREN, "Expect '(' after method name.")
	argCount := c.argumentList()
	c.emitOpByte(bytecode.OpInvoke, name)
	c.emitByte(byte(argCount))
}

func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.consume(token.RIGHT_BRACKET, "Expect ']' after index.")

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOp(bytecode.OpTableSet)
		return
	}
	c.emitOp(bytecode.OpTableGet)
}

func (c *Compiler) tableLiteral(bool) {
	c.emitOp(bytecode.OpTable)
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		switch {
		case c.check(token.LEFT_BRACKET):
			c.advance()
			c.expression()
			c.consume(token.RIGHT_BRACKET, "Expect ']' after table key.")
			c.consume(token.EQUAL, "Expect '=' after table key.")
			c.expression()
			c.emitOp(bytecode.OpTableSetKeyed)
		case c.check(token.IDENT) && c.peekIsFieldAssign():
			c.advance()
			name := c.identifierConstant(c.previous.Lexeme)
			c.consume(token.EQUAL, "Expect '=' after field name.")
			c.expression()
			c.emitOpByte(bytecode.OpTableSetField, name)
		default:
			c.expression()
			c.emitOp(bytecode.OpTableAdd)
		}
		if !c.match(token.COMMA) {
			break
		}
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after table literal.")
}

// peekIsFieldAssign looks one token ahead (via the buffered c.ahead token
// that follows the current IDENT) to tell `name = expr` apart from a bare
// identifier expression inside a table literal.
func (c *Compiler) peekIsFieldAssign() bool {
	return c.ahead.Kind == token.EQUAL
}
