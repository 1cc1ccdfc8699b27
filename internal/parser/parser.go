// Package parser builds a protocol syntax tree from a token stream.
//
// The parser is single-pass recursive descent over this grammar:
//
//	protocol   := rolesDecl keyDecl* message* assertion* ;
//	rolesDecl  := "roles" ":" ident ("," ident)* ;
//	keyDecl    := ("shared" ident "for" identList)
//	            | ("public"|"private") ident "for" ident ;
//	message    := ident "->" ident ":" stmt ;
//	stmt       := ident "=" expr | expr ;
//	expr       := term ("||" term)* ;
//	term       := "Enc" "(" ident "," expr ")"
//	            | "Mac" "(" ident "," expr ")"
//	            | "Sign" "(" ident "," expr ")"
//	            | "Verify" "(" ident "," expr "," expr ")"
//	            | "H" "(" expr ")"
//	            | ident ;
//	assertion  := "assert" "secret" "(" ident ")" ("for" identList)? ;
//
// One token of lookahead is used in a single place: at statement position,
// IDENT followed by "=" parses as an assignment, anything else as a bare
// expression. The first unexpected token aborts parsing; there is no error
// recovery. After a successful parse a declaration check runs: senders,
// receivers, key owners, and restricted-secrecy sets must name declared
// roles, key arguments must name declared keys or earlier variables, and
// assertions must be about terms the protocol mentions. Fresh payload
// identifiers are introduced implicitly by their first use, as in
// Alice-and-Bob notation. Declaration errors share the *ParseError surface
// with syntax errors.
package parser

import (
	"fmt"

	"github.com/dynamicduo/protoscope/internal/ast"
	"github.com/dynamicduo/protoscope/internal/lexer"
	"github.com/dynamicduo/protoscope/internal/token"
)

// ParseError reports the first syntactic or declaration problem found, with
// the source line it occurred on.
type ParseError struct {
	Msg  string
	Line int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse lexes and parses src into a Protocol, or returns a *ParseError.
func Parse(src string) (*ast.Protocol, error) {
	p := &parser{tokens: lexer.New(src).All()}
	proto, err := p.protocol()
	if err != nil {
		return nil, err
	}
	if err := validate(proto); err != nil {
		return nil, err
	}
	return proto, nil
}

type parser struct {
	tokens []token.Token
	pos    int
}

func (p *parser) protocol() (*ast.Protocol, error) {
	roles, err := p.rolesDecl()
	if err != nil {
		return nil, err
	}
	proto := &ast.Protocol{Roles: roles}

	for p.peek().Kind == token.SHARED || p.peek().Kind == token.PUBLIC || p.peek().Kind == token.PRIVATE {
		kd, err := p.keyDecl()
		if err != nil {
			return nil, err
		}
		proto.KeyDecls = append(proto.KeyDecls, kd)
	}

	for p.peek().Kind == token.IDENT {
		msg, err := p.message()
		if err != nil {
			return nil, err
		}
		proto.Messages = append(proto.Messages, msg)
	}

	for p.peek().Kind == token.ASSERT {
		a, err := p.assertion()
		if err != nil {
			return nil, err
		}
		proto.Assertions = append(proto.Assertions, a)
	}

	if p.peek().Kind != token.EOF {
		return nil, p.errorf("expected message, assertion, or end of input, found %q", p.peek().Lexeme)
	}
	return proto, nil
}

func (p *parser) rolesDecl() (*ast.RoleSet, error) {
	if _, err := p.consume(token.ROLES, "expected 'roles' declaration"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.COLON, "expected ':' after 'roles'"); err != nil {
		return nil, err
	}

	roles := &ast.RoleSet{}
	first, err := p.identifier("expected role name after ':'")
	if err != nil {
		return nil, err
	}
	roles.Roles = append(roles.Roles, first)
	for p.match(token.COMMA) {
		r, err := p.identifier("expected role name after ','")
		if err != nil {
			return nil, err
		}
		roles.Roles = append(roles.Roles, r)
	}
	return roles, nil
}

func (p *parser) keyDecl() (*ast.KeyDecl, error) {
	var kind ast.KeyKind
	switch p.peek().Kind {
	case token.SHARED:
		kind = ast.SharedKey
	case token.PUBLIC:
		kind = ast.PublicKey
	case token.PRIVATE:
		kind = ast.PrivateKey
	}
	kw := p.advance()

	name, err := p.identifier("expected key name after '" + kw.Lexeme + "'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.FOR, "expected 'for' after key name"); err != nil {
		return nil, err
	}

	owner, err := p.identifier("expected owner name after 'for'")
	if err != nil {
		return nil, err
	}
	owners := []string{owner.Name}

	if kind == ast.SharedKey {
		for p.match(token.COMMA) {
			o, err := p.identifier("expected owner name after ','")
			if err != nil {
				return nil, err
			}
			owners = append(owners, o.Name)
		}
	}
	return &ast.KeyDecl{Kind: kind, Name: name.Name, Owners: owners, Line: kw.Line}, nil
}

func (p *parser) message() (*ast.MessageSend, error) {
	sender, err := p.identifier("expected sender identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ARROW, "expected '->' after sender"); err != nil {
		return nil, err
	}
	receiver, err := p.identifier("expected receiver identifier after '->'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.COLON, "expected ':' after receiver"); err != nil {
		return nil, err
	}
	body, err := p.stmt()
	if err != nil {
		return nil, err
	}
	return &ast.MessageSend{Sender: sender, Receiver: receiver, Body: body}, nil
}

// stmt uses the parser's only lookahead: IDENT "=" starts an assignment.
func (p *parser) stmt() (ast.Stmt, error) {
	if p.peek().Kind == token.IDENT && p.peekNext().Kind == token.EQUAL {
		target, err := p.identifier("expected variable name")
		if err != nil {
			return nil, err
		}
		p.advance() // '='
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Target: target, Value: value}, nil
	}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	return expr.(ast.Stmt), nil
}

func (p *parser) expr() (ast.Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(token.CONCAT) {
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &ast.Concat{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) term() (ast.Expr, error) {
	switch p.peek().Kind {
	case token.ENC:
		p.advance()
		key, msg, err := p.keyedPair("Enc")
		if err != nil {
			return nil, err
		}
		return &ast.Encrypt{Key: key, Message: msg}, nil

	case token.MAC:
		p.advance()
		key, msg, err := p.keyedPair("Mac")
		if err != nil {
			return nil, err
		}
		return &ast.Mac{Key: key, Message: msg}, nil

	case token.SIGN:
		p.advance()
		key, msg, err := p.keyedPair("Sign")
		if err != nil {
			return nil, err
		}
		return &ast.Sign{Key: key, Message: msg}, nil

	case token.VERIFY:
		p.advance()
		if _, err := p.consume(token.LPAREN, "expected '(' after 'Verify'"); err != nil {
			return nil, err
		}
		key, err := p.identifier("expected key identifier after '('")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COMMA, "expected ',' after key"); err != nil {
			return nil, err
		}
		msg, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.COMMA, "expected ',' after message"); err != nil {
			return nil, err
		}
		sig, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' after signature"); err != nil {
			return nil, err
		}
		return &ast.Verify{Key: key, Message: msg, Signature: sig}, nil

	case token.HASH:
		p.advance()
		if _, err := p.consume(token.LPAREN, "expected '(' after 'H'"); err != nil {
			return nil, err
		}
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' after H(...)"); err != nil {
			return nil, err
		}
		return &ast.Hash{Inner: inner}, nil

	case token.IDENT:
		return p.identifier("expected identifier")

	default:
		return nil, p.errorf("expected expression, found %q", p.peek().Lexeme)
	}
}

// keyedPair parses "(" ident "," expr ")" shared by Enc, Mac, and Sign.
func (p *parser) keyedPair(cons string) (*ast.Identifier, ast.Expr, error) {
	if _, err := p.consume(token.LPAREN, "expected '(' after '"+cons+"'"); err != nil {
		return nil, nil, err
	}
	key, err := p.identifier("expected key identifier after '('")
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.consume(token.COMMA, "expected ',' between key and message"); err != nil {
		return nil, nil, err
	}
	msg, err := p.expr()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after "+cons+"(...)"); err != nil {
		return nil, nil, err
	}
	return key, msg, nil
}

func (p *parser) assertion() (*ast.SecrecyAssertion, error) {
	p.advance() // 'assert'
	if _, err := p.consume(token.SECRET, "expected 'secret' after 'assert'"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "expected '(' after 'secret'"); err != nil {
		return nil, err
	}
	term, err := p.identifier("expected term identifier after '('")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after term"); err != nil {
		return nil, err
	}

	a := &ast.SecrecyAssertion{Term: term}
	if p.match(token.FOR) {
		r, err := p.identifier("expected principal name after 'for'")
		if err != nil {
			return nil, err
		}
		a.RestrictedTo = append(a.RestrictedTo, r.Name)
		for p.match(token.COMMA) {
			r, err := p.identifier("expected principal name after ','")
			if err != nil {
				return nil, err
			}
			a.RestrictedTo = append(a.RestrictedTo, r.Name)
		}
	}
	return a, nil
}

// --- token helpers ---

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekNext() token.Token {
	if p.tokens[p.pos].Kind == token.EOF {
		return p.tokens[p.pos]
	}
	return p.tokens[p.pos+1]
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) match(k token.Kind) bool {
	if p.peek().Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *parser) consume(k token.Kind, msg string) (token.Token, error) {
	if p.peek().Kind == k {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("%s, found %q", msg, p.peek().Lexeme)
}

func (p *parser) identifier(msg string) (*ast.Identifier, error) {
	t, err := p.consume(token.IDENT, msg)
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Name: t.Lexeme, Line: t.Line}, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: p.peek().Line}
}
