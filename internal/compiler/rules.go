package compiler

import "github.com/Juicywoowowow/Luaplusplus/internal/token"

// Precedence levels, low to high, per spec §4.2.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecConcat
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LEFT_PAREN:    {(*Compiler).grouping, (*Compiler).call, PrecCall},
		token.LEFT_BRACKET:  {nil, (*Compiler).subscript, PrecCall},
		token.DOT:           {nil, (*Compiler).dot, PrecCall},
		token.COLON:         {nil, (*Compiler).colonCall, PrecCall},
		token.MINUS:         {(*Compiler).unary, (*Compiler).binary, PrecTerm},
		token.PLUS:          {nil, (*Compiler).binary, PrecTerm},
		token.SLASH:         {nil, (*Compiler).binary, PrecFactor},
		token.STAR:          {nil, (*Compiler).binary, PrecFactor},
		token.PERCENT:       {nil, (*Compiler).binary, PrecFactor},
		token.HASH:          {(*Compiler).unary, nil, PrecUnary},
		token.NOT:           {(*Compiler).unary, nil, PrecUnary},
		token.DOT_DOT:       {nil, (*Compiler).concat, PrecConcat},
		token.TILDE_EQUAL:   {nil, (*Compiler).binary, PrecEquality},
		token.EQUAL_EQUAL:   {nil, (*Compiler).binary, PrecEquality},
		token.GREATER:       {nil, (*Compiler).binary, PrecComparison},
		token.GREATER_EQUAL: {nil, (*Compiler).binary, PrecComparison},
		token.LESS:          {nil, (*Compiler).binary, PrecComparison},
		token.LESS_EQUAL:    {nil, (*Compiler).binary, PrecComparison},
		token.IDENT:         {(*Compiler).variable, nil, PrecNone},
		token.STRING:        {(*Compiler).string, nil, PrecNone},
		token.NUMBER:        {(*Compiler).number, nil, PrecNone},
		token.AND:           {nil, (*Compiler).and, PrecAnd},
		token.OR:             {nil, (*Compiler).or, PrecOr},
		token.FALSE:         {(*Compiler).literal, nil, PrecNone},
		token.TRUE:          {(*Compiler).literal, nil, PrecNone},
		token.NIL:           {(*Compiler).literal, nil, PrecNone},
		token.SELF:          {(*Compiler).self, nil, PrecNone},
		token.SUPER:         {(*Compiler).super, nil, PrecNone},
		token.NEW:           {(*Compiler).new_, nil, PrecNone},
		token.LEFT_BRACE:    {(*Compiler).tableLiteral, nil, PrecNone},
	}
}

func getRule(k token.Kind) parseRule {
	if r, ok := rules[k]; ok {
		return r
	}
	return parseRule{}
}
