package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/lexer"
	"github.com/Juicywoowowow/Luaplusplus/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	lx := lexer.New([]byte(src))
	var out []token.Kind
	for {
		tok := lx.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestNumbersAndOperators(t *testing.T) {
	got := kinds(t, `1 + 2.5 * 10 == 3`)
	require.Equal(t, []token.Kind{
		token.NUMBER, token.PLUS, token.NUMBER, token.STAR, token.NUMBER,
		token.EQUAL_EQUAL, token.NUMBER, token.EOF,
	}, got)
}

func TestKeywordsAreNotIdentifierPrefixes(t *testing.T) {
	got := kinds(t, `class classify`)
	require.Equal(t, []token.Kind{token.CLASS, token.IDENT, token.EOF}, got)
}

func TestDoubleCharOperators(t *testing.T) {
	got := kinds(t, `a == b ~= c <= d >= e .. f`)
	require.Equal(t, []token.Kind{
		token.IDENT, token.EQUAL_EQUAL, token.IDENT, token.TILDE_EQUAL, token.IDENT,
		token.LESS_EQUAL, token.IDENT, token.GREATER_EQUAL, token.IDENT,
		token.DOT_DOT, token.IDENT, token.EOF,
	}, got)
}

func TestLineCommentSkipped(t *testing.T) {
	lx := lexer.New([]byte("local x -- a comment\nprint(x)"))
	tok := lx.Next()
	require.Equal(t, token.LOCAL, tok.Kind)
	tok = lx.Next()
	require.Equal(t, token.IDENT, tok.Kind)
	require.Equal(t, "x", tok.Lexeme)
	tok = lx.Next()
	require.Equal(t, token.IDENT, tok.Kind)
	require.Equal(t, "print", tok.Lexeme)
	require.Equal(t, 2, tok.Line)
}

func TestLongBracketCommentSkipped(t *testing.T) {
	got := kinds(t, "--[[ this\nspans lines ]] local y")
	require.Equal(t, []token.Kind{token.LOCAL, token.IDENT, token.EOF}, got)
}

func TestUnterminatedStringIsError(t *testing.T) {
	lx := lexer.New([]byte(`"abc`))
	tok := lx.Next()
	require.Equal(t, token.ILLEGAL, tok.Kind)
}

func TestStringEscapesPassThrough(t *testing.T) {
	lx := lexer.New([]byte(`"a\nb"`))
	tok := lx.Next()
	require.Equal(t, token.STRING, tok.Kind)
	require.Equal(t, "a\nb", tok.Decoded)
}
