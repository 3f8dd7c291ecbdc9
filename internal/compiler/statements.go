package compiler

import (
	"github.com/Juicywoowowow/Luaplusplus/internal/bytecode"
	"github.com/Juicywoowowow/Luaplusplus/internal/diag"
	"github.com/Juicywoowowow/Luaplusplus/internal/token"
	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

func (c *Compiler) declaration() {
	c.sawTerminator = false
	switch {
	case c.match(token.LOCAL):
		c.localDeclaration()
	case c.match(token.FUNCTION):
		c.funDeclaration()
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.TRAIT):
		c.traitDeclaration()
	default:
		c.statement()
	}
	if c.diags.InPanicMode() {
		c.synchronize()
	}
}

func (c *Compiler) synchronize() {
	c.diags.Synchronize()
	for !c.check(token.EOF) {
		switch c.current.Kind {
		case token.CLASS, token.FUNCTION, token.LOCAL, token.FOR, token.IF, token.WHILE, token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.REPEAT):
		c.repeatStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.DO):
		c.beginScope()
		c.block()
		c.endScope()
		// A do...end block is not itself a terminator, even when its last
		// statement is return/break/continue.
		c.sawTerminator = false
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	warned := false
	for !c.check(token.END) && !c.check(token.EOF) {
		if c.sawTerminator && !warned {
			c.diags.Warnf(c.loc(c.current), diag.WUnreachable, "unreachable code after return/break/continue")
			warned = true
		}
		c.declaration()
	}
	c.consume(token.END, "Expect 'end' after block.")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.emitOp(bytecode.OpPop)
}

// ---- local ----

func (c *Compiler) localDeclaration() {
	if c.match(token.FUNCTION) {
		c.localFunction()
		return
	}
	c.localVarList()
}

func (c *Compiler) localFunction() {
	c.consume(token.IDENT, "Expect function name.")
	name := c.previous.Lexeme
	loc := c.loc(c.previous)
	c.declareVariable(name, loc)
	c.markInitialized()
	c.function(TypeFunction, name)
}

func (c *Compiler) localVarList() {
	for {
		c.consume(token.IDENT, "Expect variable name.")
		name := c.previous.Lexeme
		loc := c.loc(c.previous)
		c.declareVariable(name, loc)
		slot := len(c.cur.locals) - 1

		if c.match(token.EQUAL) {
			c.expression()
		} else {
			c.emitOp(bytecode.OpNil)
		}
		if c.cur.scopeDepth > 0 {
			c.cur.locals[slot].depth = c.cur.scopeDepth
		} else {
			c.emitOpByte(bytecode.OpDefineGlobal, c.identifierConstant(name))
		}
		if !c.match(token.COMMA) {
			break
		}
	}
}

// ---- function ----

func (c *Compiler) funDeclaration() {
	c.consume(token.IDENT, "Expect function name.")
	name := c.previous.Lexeme
	loc := c.loc(c.previous)
	c.declareVariable(name, loc)
	c.markInitialized()
	global := byte(0)
	if c.cur.scopeDepth == 0 {
		global = c.identifierConstant(name)
	}
	c.function(TypeFunction, name)
	c.defineVariable(global)
}

func (c *Compiler) function(typ FunctionType, name string) {
	c.pushFunc(typ, name)
	c.beginScope()

	c.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.cur.function.Arity++
			if c.cur.function.Arity > 255 {
				c.errorAtCurrentWithCode(diag.ETooManyArgs, "Can't have more than 255 parameters.", "")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	c.block()
	// A function declaration is not itself a terminator, even when its body
	// ends in return.
	c.sawTerminator = false

	fn := c.endCompiler()
	c.emitClosure(fn)
}

// emitClosure must run in the *enclosing* compiler, using the upvalue
// table recorded by the function compiler that just ended.
func (c *Compiler) emitClosure(fn *value.ObjFunction) {
	c.emitOpByte(bytecode.OpClosure, c.makeConstant(value.FromObj(fn)))
	for _, uv := range c.lastUpvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(byte(uv.index))
	}
}

// ---- control flow ----

func (c *Compiler) ifStatement() {
	c.expression()
	c.consume(token.THEN, "Expect 'then' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.beginScope()
	warned := false
	for !c.check(token.ELSE) && !c.check(token.ELSEIF) && !c.check(token.END) && !c.check(token.EOF) {
		if c.sawTerminator && !warned {
			c.diags.Warnf(c.loc(c.current), diag.WUnreachable, "unreachable code after return/break/continue")
			warned = true
		}
		c.declaration()
	}
	c.endScope()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	switch {
	case c.match(token.ELSEIF):
		c.ifStatement()
	case c.match(token.ELSE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.consume(token.END, "Expect 'end' after if statement.")
	}
	c.patchJump(elseJump)
	// An if/elseif/else is conditional, never itself a terminator, even
	// when every branch ends in return/break/continue.
	c.sawTerminator = false
}

func (c *Compiler) pushLoop() *loopCtx {
	l := &loopCtx{enclosing: c.cur.loop, scopeDepth: c.cur.scopeDepth, inFunction: c.cur}
	c.cur.loop = l
	return l
}

func (c *Compiler) popLoop() {
	c.cur.loop = c.cur.loop.enclosing
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	l := c.pushLoop()
	l.continueTarget = loopStart

	c.expression()
	c.consume(token.DO, "Expect 'do' after condition.")
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)

	c.beginScope()
	c.block()
	c.endScope()
	// A while loop is conditional, never itself a terminator, even when
	// its body ends in return/break/continue.
	c.sawTerminator = false
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
	c.patchBreaks(l)
	c.popLoop()
}

func (c *Compiler) repeatStatement() {
	loopStart := len(c.chunk().Code)
	l := c.pushLoop()

	c.beginScope()
	warned := false
	for !c.check(token.UNTIL) && !c.check(token.EOF) {
		if c.sawTerminator && !warned {
			c.diags.Warnf(c.loc(c.current), diag.WUnreachable, "unreachable code after return/break/continue")
			warned = true
		}
		c.declaration()
	}
	l.continueTarget = len(c.chunk().Code)
	c.consume(token.UNTIL, "Expect 'until' after repeat body.")
	c.expression()
	c.endScope()
	// A repeat loop is conditional, never itself a terminator, even when
	// its body ends in return/break/continue.
	c.sawTerminator = false

	// The loop exits once the `until` condition is true.
	c.emitOp(bytecode.OpNot)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
	c.patchBreaks(l)
	c.popLoop()
}

// forStatement compiles `for name = start, limit[, step] do ... end`. Per
// spec §4.4/§9, only the positive-step form is supported: the test is
// unconditionally `var <= limit`.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.IDENT, "Expect loop variable name.")
	varName := c.previous.Lexeme
	varLoc := c.loc(c.previous)
	c.consume(token.EQUAL, "Expect '=' after loop variable.")

	c.expression() // start
	c.consume(token.COMMA, "Expect ',' after loop start value.")
	c.expression() // limit
	hasStep := c.match(token.COMMA)
	if hasStep {
		c.expression() // step
	} else {
		c.emitConstant(value.Number(1))
	}
	c.consume(token.DO, "Expect 'do' after for clauses.")

	// hidden locals: var, limit, step (slots already on stack in this order).
	// The counter local is declared under the loop variable's own name, so
	// the body resolves it directly with no extra copy.
	c.addLocal(varName, varLoc)
	c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
	varSlot := len(c.cur.locals) - 1
	c.addLocal("(for limit)", varLoc)
	c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
	limitSlot := len(c.cur.locals) - 1
	c.addLocal("(for step)", varLoc)
	c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
	stepSlot := len(c.cur.locals) - 1

	loopStart := len(c.chunk().Code)
	c.emitOpByte(bytecode.OpGetLocal, byte(varSlot))
	c.emitOpByte(bytecode.OpGetLocal, byte(limitSlot))
	c.emitOp(bytecode.OpGreater)
	c.emitOp(bytecode.OpNot) // var <= limit
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	bodyJump := c.emitJump(bytecode.OpJump)

	// increment step, jumped to by `continue`
	l := c.pushLoop()
	incrStart := len(c.chunk().Code)
	c.emitOpByte(bytecode.OpGetLocal, byte(varSlot))
	c.emitOpByte(bytecode.OpGetLocal, byte(stepSlot))
	c.emitOp(bytecode.OpAdd)
	c.emitOpByte(bytecode.OpSetLocal, byte(varSlot))
	c.emitOp(bytecode.OpPop)
	c.emitLoop(loopStart)
	l.continueTarget = incrStart

	c.patchJump(bodyJump)
	c.beginScope()
	c.block()
	c.endScope()
	// A for loop is conditional, never itself a terminator, even when its
	// body ends in return/break/continue.
	c.sawTerminator = false
	c.emitLoop(incrStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
	c.patchBreaks(l)
	c.popLoop()
	c.endScope()
}

func (c *Compiler) patchBreaks(l *loopCtx) {
	for _, j := range l.breakJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) breakStatement() {
	if c.cur.loop == nil {
		c.errorWithCode(diag.EBreakOutsideLoop, "Can't use 'break' outside of a loop.",
			"'break' can only be used inside while, for, or repeat loops")
		return
	}
	c.popScopeLocals(c.cur.loop.scopeDepth)
	if len(c.cur.loop.breakJumps) >= maxBreaks {
		c.error("Too many break statements in one loop.")
		return
	}
	j := c.emitJump(bytecode.OpJump)
	c.cur.loop.breakJumps = append(c.cur.loop.breakJumps, j)
	c.sawTerminator = true
}

func (c *Compiler) continueStatement() {
	if c.cur.loop == nil {
		c.errorWithCode(diag.EBreakOutsideLoop, "Can't use 'continue' outside of a loop.",
			"'continue' can only be used inside while, for, or repeat loops")
		return
	}
	c.popScopeLocals(c.cur.loop.scopeDepth)
	c.emitLoop(c.cur.loop.continueTarget)
	c.sawTerminator = true
}

// popScopeLocals emits pops for every local above targetDepth without
// actually removing them from the compiler's local list (the enclosing
// block's endScope still owns that).
func (c *Compiler) popScopeLocals(targetDepth int) {
	n := 0
	for i := len(c.cur.locals) - 1; i >= 0 && c.cur.locals[i].depth > targetDepth; i-- {
		n++
	}
	if n == 1 {
		c.emitOp(bytecode.OpPop)
	} else if n > 1 {
		c.emitOpByte(bytecode.OpPopN, byte(n))
	}
}

func (c *Compiler) returnStatement() {
	if c.cur.enclosing == nil {
		c.errorWithCode(diag.EReturnAtTop, "Can't return from top-level code.",
			"return statements must be inside a function")
	}
	if c.check(token.END) || c.check(token.EOF) || c.check(token.ELSE) || c.check(token.ELSEIF) {
		c.emitReturn()
		c.sawTerminator = true
		return
	}
	if c.cur.typ == TypeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.emitOp(bytecode.OpReturn)
	c.sawTerminator = true
}

// ---- classes & traits ----

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	nameTok := c.previous
	className := nameTok.Lexeme
	nameConstant := c.identifierConstant(className)
	c.declareVariable(className, c.loc(nameTok))

	c.emitOpByte(bytecode.OpClass, nameConstant)
	c.defineVariable(nameConstant)

	cc := &classCtx{enclosing: c.class}
	c.class = cc

	if c.match(token.EXTENDS) {
		c.consume(token.IDENT, "Expect superclass name.")
		if c.previous.Lexeme == className {
			c.errorWithCode(diag.EInheritSelf, "A class can't inherit from itself.",
				"use a different class as the superclass")
		}
		c.variable(false)

		c.beginScope()
		c.addLocal("super", c.loc(c.previous))
		c.cur.locals[len(c.cur.locals)-1].depth = c.cur.scopeDepth
		c.namedVariable(className, false)
		c.emitOp(bytecode.OpInherit)
		cc.hasSuper = true
	}

	if c.match(token.IMPLEMENTS) {
		for {
			c.consume(token.IDENT, "Expect trait name.")
			c.namedVariable(className, false)
			c.namedVariable(c.previous.Lexeme, false)
			c.emitOp(bytecode.OpImplement)
			if !c.match(token.COMMA) {
				break
			}
		}
	}

	c.namedVariable(className, false)
	for !c.check(token.END) && !c.check(token.EOF) {
		c.method()
	}
	c.emitOp(bytecode.OpPop)
	c.consume(token.END, "Expect 'end' after class body.")

	if cc.hasSuper {
		c.endScope()
	}
	c.class = c.class.enclosing
}

func (c *Compiler) method() {
	isPrivate := byte(0)
	if c.match(token.PRIVATE) {
		isPrivate = 1
	}
	c.consume(token.FUNCTION, "Expect 'function' in method declaration.")
	c.consume(token.IDENT, "Expect method name.")
	name := c.previous.Lexeme
	constant := c.identifierConstant(name)

	typ := TypeMethod
	if name == "init" {
		typ = TypeInitializer
	}
	c.function(typ, name)
	c.emitOpByte(bytecode.OpMethod, constant)
	c.emitByte(isPrivate)
}

func (c *Compiler) traitDeclaration() {
	c.consume(token.IDENT, "Expect trait name.")
	nameConstant := c.identifierConstant(c.previous.Lexeme)
	c.declareVariable(c.previous.Lexeme, c.loc(c.previous))

	c.emitOpByte(bytecode.OpTrait, nameConstant)
	c.defineVariable(nameConstant)

	// Trait methods run with an instance receiver, so `self` is valid in them.
	c.class = &classCtx{enclosing: c.class}
	c.namedVariable(c.previous.Lexeme, false)
	for !c.check(token.END) && !c.check(token.EOF) {
		c.method()
	}
	c.emitOp(bytecode.OpPop)
	c.consume(token.END, "Expect 'end' after trait body.")
	c.class = c.class.enclosing
}
