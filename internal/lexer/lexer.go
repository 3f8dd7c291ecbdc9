// Package lexer tokenizes Luaplusplus source text.
package lexer

import (
	"strings"

	"github.com/Juicywoowowow/Luaplusplus/internal/token"
)

// Lexer scans a borrowed source buffer into a stream of tokens.
type Lexer struct {
	src []byte

	start     int // byte offset of the token currently being scanned
	current   int // byte offset of the next unread byte
	line      int
	lineStart int // byte offset of the start of the current line

	sb strings.Builder
}

// New returns a Lexer over src.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) atEnd() bool { return l.current >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.src) {
		return 0
	}
	return l.src[l.current+1]
}

func (l *Lexer) advance() byte {
	b := l.src[l.current]
	l.current++
	return b
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.src[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *Lexer) column(offset int) int {
	return offset - l.lineStart + 1
}

func (l *Lexer) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Lexeme: string(l.src[l.start:l.current]),
		Line:   l.line,
		Column: l.column(l.start),
	}
}

func (l *Lexer) errorTok(msg string) token.Token {
	return token.Token{
		Kind:   token.ILLEGAL,
		Lexeme: msg,
		Line:   l.line,
		Column: l.current - l.lineStart,
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func (l *Lexer) newline() {
	l.line++
	l.advance()
	l.lineStart = l.current
}

// skipWhitespace consumes spaces, tabs, newlines, line comments (`--`) and
// non-nesting block comments (`--[[ ... ]]`).
func (l *Lexer) skipWhitespace() {
	for {
		switch c := l.peek(); c {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.newline()
		case '-':
			if l.peekNext() != '-' {
				return
			}
			l.advance()
			l.advance() // consume "--"
			if l.peek() == '[' && l.peekNext() == '[' {
				l.advance()
				l.advance()
				for !l.atEnd() {
					if l.peek() == ']' && l.peekNext() == ']' {
						l.advance()
						l.advance()
						break
					}
					if l.peek() == '\n' {
						l.newline()
					} else {
						l.advance()
					}
				}
			} else {
				for l.peek() != '\n' && !l.atEnd() {
					l.advance()
				}
			}
		default:
			return
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.atEnd() {
		return l.make(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '(':
		return l.make(token.LEFT_PAREN)
	case ')':
		return l.make(token.RIGHT_PAREN)
	case '{':
		return l.make(token.LEFT_BRACE)
	case '}':
		return l.make(token.RIGHT_BRACE)
	case '[':
		if l.peek() == '[' {
			l.advance()
			return l.longString()
		}
		return l.make(token.LEFT_BRACKET)
	case ']':
		return l.make(token.RIGHT_BRACKET)
	case ',':
		return l.make(token.COMMA)
	case ':':
		return l.make(token.COLON)
	case ';':
		return l.make(token.SEMICOLON)
	case '+':
		return l.make(token.PLUS)
	case '-':
		return l.make(token.MINUS)
	case '*':
		return l.make(token.STAR)
	case '/':
		return l.make(token.SLASH)
	case '%':
		return l.make(token.PERCENT)
	case '#':
		return l.make(token.HASH)
	case '~':
		if l.match('=') {
			return l.make(token.TILDE_EQUAL)
		}
		return l.make(token.TILDE)
	case '=':
		if l.match('=') {
			return l.make(token.EQUAL_EQUAL)
		}
		return l.make(token.EQUAL)
	case '<':
		if l.match('=') {
			return l.make(token.LESS_EQUAL)
		}
		return l.make(token.LESS)
	case '>':
		if l.match('=') {
			return l.make(token.GREATER_EQUAL)
		}
		return l.make(token.GREATER)
	case '.':
		if l.match('.') {
			if l.match('.') {
				return l.make(token.DOT_DOT_DOT)
			}
			return l.make(token.DOT_DOT)
		}
		return l.make(token.DOT)
	case '"':
		return l.string('"')
	case '\'':
		return l.string('\'')
	}

	return l.errorTok("Unexpected character.")
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[l.start:l.current])
	if kind, ok := token.Keywords[lexeme]; ok {
		return l.make(kind)
	}
	return l.make(token.IDENT)
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peek(); c == '+' || c == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.make(token.NUMBER)
}

var simpleEscapes = map[byte]byte{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
	'v': '\v', '\\': '\\', '\'': '\'', '"': '"', '0': 0,
}

// string scans a quoted string literal, decoding C-style backslash escapes
// into the token's Decoded field while the raw Lexeme (with quotes) is kept for diagnostics.
func (l *Lexer) string(quote byte) token.Token {
	l.sb.Reset()
	for l.peek() != quote && !l.atEnd() {
		c := l.peek()
		if c == '\n' {
			l.newline()
			l.sb.WriteByte('\n')
			continue
		}
		if c == '\\' && l.current+1 < len(l.src) {
			l.advance() // backslash
			esc := l.advance()
			if r, ok := simpleEscapes[esc]; ok {
				l.sb.WriteByte(r)
			} else {
				l.sb.WriteByte(esc)
			}
			continue
		}
		l.sb.WriteByte(c)
		l.advance()
	}
	if l.atEnd() {
		return l.errorTok("Unterminated string.")
	}
	l.advance() // closing quote
	tok := l.make(token.STRING)
	tok.Decoded = l.sb.String()
	return tok
}

func (l *Lexer) longString() token.Token {
	l.sb.Reset()
	for !l.atEnd() {
		if l.peek() == ']' && l.peekNext() == ']' {
			l.advance()
			l.advance()
			tok := l.make(token.STRING)
			tok.Decoded = l.sb.String()
			return tok
		}
		if l.peek() == '\n' {
			l.newline()
			l.sb.WriteByte('\n')
		} else {
			l.sb.WriteByte(l.peek())
			l.advance()
		}
	}
	return l.errorTok("Unterminated long string.")
}
