package parser

import (
	"github.com/dynamicduo/protoscope/internal/ast"
)

// validate enforces the declaration rules a knowledge analysis depends on:
//
//   - senders, receivers, key-declaration owners, and restricted-secrecy
//     principals must be declared roles;
//   - the key argument of Enc, Mac, Sign, and Verify must be a declared key
//     or a variable introduced by an earlier message;
//   - an assertion term must occur somewhere in the protocol, or the
//     assertion could never mean anything.
//
// Fresh payload identifiers (plaintexts, nonces) are introduced implicitly
// at their first authored use: writing "Alice -> Bob: c = Enc(K, M)" is how
// M comes into existence, exactly as in Alice-and-Bob notation. Messages
// are walked in protocol order, so a name only counts as introduced for
// the steps after the one that coined it.
func validate(p *ast.Protocol) error {
	roles := map[string]bool{}
	for _, r := range p.Roles.Roles {
		roles[r.Name] = true
	}

	// known: names usable in key position; seen: every name that occurred.
	known := map[string]bool{}
	seen := map[string]bool{}
	for name := range roles {
		seen[name] = true
	}
	for _, kd := range p.KeyDecls {
		known[kd.Name] = true
		seen[kd.Name] = true
		for _, owner := range kd.Owners {
			if !roles[owner] {
				return &ParseError{
					Msg:  "key " + kd.Name + " declared for undeclared role " + quoted(owner),
					Line: kd.Line,
				}
			}
		}
	}

	for _, msg := range p.Messages {
		for _, who := range []*ast.Identifier{msg.Sender, msg.Receiver} {
			if !roles[who.Name] {
				return &ParseError{
					Msg:  "undeclared role " + quoted(who.Name),
					Line: who.Line,
				}
			}
		}
		if err := checkKeys(exprOf(msg.Body), known); err != nil {
			return err
		}
		// Everything the body mentions is introduced for later steps.
		introduce(msg.Body, known, seen)
	}

	for _, a := range p.Assertions {
		if !seen[a.Term.Name] {
			return &ParseError{
				Msg:  "assertion about unknown term " + quoted(a.Term.Name),
				Line: a.Term.Line,
			}
		}
		for _, name := range a.RestrictedTo {
			if !roles[name] {
				return &ParseError{
					Msg:  "assertion restricted to undeclared role " + quoted(name),
					Line: a.Term.Line,
				}
			}
		}
	}
	return nil
}

// checkKeys walks an expression and rejects key positions holding a name
// that is neither a declared key nor a previously introduced variable.
func checkKeys(e ast.Expr, known map[string]bool) error {
	var key *ast.Identifier
	var payloads []ast.Expr

	switch n := e.(type) {
	case *ast.Identifier:
		return nil
	case *ast.Concat:
		payloads = []ast.Expr{n.Left, n.Right}
	case *ast.Encrypt:
		key, payloads = n.Key, []ast.Expr{n.Message}
	case *ast.Mac:
		key, payloads = n.Key, []ast.Expr{n.Message}
	case *ast.Hash:
		payloads = []ast.Expr{n.Inner}
	case *ast.Sign:
		key, payloads = n.Key, []ast.Expr{n.Message}
	case *ast.Verify:
		key, payloads = n.Key, []ast.Expr{n.Message, n.Signature}
	}

	if key != nil && !known[key.Name] {
		return &ParseError{
			Msg:  "undeclared key " + quoted(key.Name),
			Line: key.Line,
		}
	}
	for _, sub := range payloads {
		if err := checkKeys(sub, known); err != nil {
			return err
		}
	}
	return nil
}

func introduce(s ast.Stmt, known, seen map[string]bool) {
	if a, ok := s.(*ast.Assign); ok {
		known[a.Target.Name] = true
		seen[a.Target.Name] = true
		introduceExpr(a.Value, known, seen)
		return
	}
	introduceExpr(s.(ast.Expr), known, seen)
}

func introduceExpr(e ast.Expr, known, seen map[string]bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		known[n.Name] = true
		seen[n.Name] = true
	case *ast.Concat:
		introduceExpr(n.Left, known, seen)
		introduceExpr(n.Right, known, seen)
	case *ast.Encrypt:
		introduceExpr(n.Message, known, seen)
	case *ast.Mac:
		introduceExpr(n.Message, known, seen)
	case *ast.Hash:
		introduceExpr(n.Inner, known, seen)
	case *ast.Sign:
		introduceExpr(n.Message, known, seen)
	case *ast.Verify:
		introduceExpr(n.Message, known, seen)
		introduceExpr(n.Signature, known, seen)
	}
}

func exprOf(s ast.Stmt) ast.Expr {
	if a, ok := s.(*ast.Assign); ok {
		return a.Value
	}
	return s.(ast.Expr)
}

func quoted(s string) string { return "'" + s + "'" }
