// Package lexer converts raw protocol text into a token stream.
//
// The lexer is total: it never reports an error. Characters it does not
// recognize are emitted as single-character identifiers so the parser, which
// has the grammar context, decides whether the input is malformed. Whitespace
// and // comments are skipped; newlines increment the line counter attached
// to later tokens.
package lexer

import (
	"github.com/dynamicduo/protoscope/internal/token"
)

// Lexer scans a protocol source string one token at a time.
type Lexer struct {
	src  string
	pos  int
	line int
}

// New returns a lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Next scans and returns the next token. After the end of input it returns
// EOF tokens forever.
func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Lexeme: "", Line: l.line}
	}

	c := l.advance()

	switch c {
	case ':':
		return l.tok(token.COLON, ":")
	case ',':
		return l.tok(token.COMMA, ",")
	case '=':
		return l.tok(token.EQUAL, "=")
	case '(':
		return l.tok(token.LPAREN, "(")
	case ')':
		return l.tok(token.RPAREN, ")")
	case '-':
		if l.match('>') {
			return l.tok(token.ARROW, "->")
		}
		// A lone '-' degrades to a one-character identifier.
		return l.tok(token.IDENT, "-")
	case '|':
		if l.match('|') {
			return l.tok(token.CONCAT, "||")
		}
		return l.tok(token.IDENT, "|")
	}

	if isLetter(c) {
		return l.identifier()
	}

	// Unknown character: emit as a one-character identifier rather than
	// failing, so structural errors surface in the parser.
	return l.tok(token.IDENT, string(c))
}

// All scans the remaining input and returns every token including the
// trailing EOF.
func (l *Lexer) All() []token.Token {
	var out []token.Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func (l *Lexer) identifier() token.Token {
	start := l.pos - 1 // first character was already consumed
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.pos++
	}
	text := l.src[start:l.pos]
	return l.tok(token.Lookup(text), text)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			l.line++
			l.pos++
		case '/':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
				for !l.atEnd() && l.peek() != '\n' {
					l.pos++
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (l *Lexer) tok(k token.Kind, lexeme string) token.Token {
	return token.Token{Kind: k, Lexeme: lexeme, Line: l.line}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.src[l.pos] != expected {
		return false
	}
	l.pos++
	return true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9'
}
