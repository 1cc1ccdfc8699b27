// Package ast defines the immutable syntax tree for parsed protocols.
//
// The node set is sealed: expressions and statements are closed interfaces
// with unexported marker methods, so a type switch over them is exhaustive
// and adding a variant forces every walker (knowledge analysis, diagram
// labels, code generation) to be revisited.
//
// Every node renders a compact Label used on diagram arrows and in reports,
// e.g. "Enc(K_AB, M_1)" or "c = Enc(K_AB, M_1)". Labels describe structure
// only; they never decode the contents of cryptographic constructs.
package ast

import (
	"fmt"
	"strings"
)

// Expr is a protocol expression: an identifier, a concatenation, or one of
// the cryptographic constructors.
type Expr interface {
	// Label returns the compact textual rendering of the expression.
	Label() string
	exprNode()
}

// Stmt is a message body: either a bare expression or an assignment.
type Stmt interface {
	Label() string
	stmtNode()
}

// Identifier is an atomic symbolic name: a role, a key, or a variable.
// Line records where the name appeared, for post-parse diagnostics.
type Identifier struct {
	Name string
	Line int
}

func (i *Identifier) Label() string { return i.Name }
func (i *Identifier) exprNode()     {}
func (i *Identifier) stmtNode()     {}

// Concat is the opaque pairing of two sub-expressions (left || right).
type Concat struct {
	Left  Expr
	Right Expr
}

func (c *Concat) Label() string {
	return c.Left.Label() + " || " + c.Right.Label()
}
func (c *Concat) exprNode() {}
func (c *Concat) stmtNode() {}

// Encrypt is Enc(key, message). Observers see the constructor, the key name,
// and the message's label, never the message itself.
type Encrypt struct {
	Key     *Identifier
	Message Expr
}

func (e *Encrypt) Label() string {
	return fmt.Sprintf("Enc(%s, %s)", e.Key.Name, e.Message.Label())
}
func (e *Encrypt) exprNode() {}
func (e *Encrypt) stmtNode() {}

// Mac is Mac(key, message).
type Mac struct {
	Key     *Identifier
	Message Expr
}

func (m *Mac) Label() string {
	return fmt.Sprintf("Mac(%s, %s)", m.Key.Name, m.Message.Label())
}
func (m *Mac) exprNode() {}
func (m *Mac) stmtNode() {}

// Hash is H(inner).
type Hash struct {
	Inner Expr
}

func (h *Hash) Label() string { return fmt.Sprintf("H(%s)", h.Inner.Label()) }
func (h *Hash) exprNode()     {}
func (h *Hash) stmtNode()     {}

// Sign is Sign(signingKey, message).
type Sign struct {
	Key     *Identifier
	Message Expr
}

func (s *Sign) Label() string {
	return fmt.Sprintf("Sign(%s, %s)", s.Key.Name, s.Message.Label())
}
func (s *Sign) exprNode() {}
func (s *Sign) stmtNode() {}

// Verify is Verify(publicKey, message, signature). Its label deliberately
// elides the payload, matching how observers record it.
type Verify struct {
	Key       *Identifier
	Message   Expr
	Signature Expr
}

func (v *Verify) Label() string { return fmt.Sprintf("Verify(%s, ...)", v.Key.Name) }
func (v *Verify) exprNode()     {}
func (v *Verify) stmtNode()     {}

// Assign binds a variable to an expression's result. The target name is
// always visible in the clear to observers of the message.
type Assign struct {
	Target *Identifier
	Value  Expr
}

func (a *Assign) Label() string { return a.Target.Name + " = " + a.Value.Label() }
func (a *Assign) stmtNode()     {}

// KeyKind classifies a declared key.
type KeyKind int

const (
	SharedKey KeyKind = iota
	PublicKey
	PrivateKey
)

func (k KeyKind) String() string {
	switch k {
	case SharedKey:
		return "shared"
	case PublicKey:
		return "public"
	case PrivateKey:
		return "private"
	}
	return fmt.Sprintf("KeyKind(%d)", int(k))
}

// KeyDecl declares a key and its owners, e.g. "shared K_AB for Alice, Bob".
type KeyDecl struct {
	Kind   KeyKind
	Name   string
	Owners []string
	Line   int
}

// Label renders the declaration, e.g. "shared K_AB for Alice, Bob".
func (k *KeyDecl) Label() string {
	return k.Kind.String() + " " + k.Name + " for " + strings.Join(k.Owners, ", ")
}

// RoleSet is the ordered list of declared principals.
type RoleSet struct {
	Roles []*Identifier
}

// Names returns the role names in declaration order.
func (r *RoleSet) Names() []string {
	out := make([]string, len(r.Roles))
	for i, role := range r.Roles {
		out[i] = role.Name
	}
	return out
}

// MessageSend is one protocol step: sender -> receiver : body.
type MessageSend struct {
	Sender   *Identifier
	Receiver *Identifier
	Body     Stmt
}

func (m *MessageSend) Label() string {
	return m.Sender.Name + " -> " + m.Receiver.Name + ": " + m.Body.Label()
}

// SecrecyAssertion claims a term must stay unknown to disallowed principals.
// An empty RestrictedTo list means only the adversary is disallowed.
type SecrecyAssertion struct {
	Term         *Identifier
	RestrictedTo []string
}

func (s *SecrecyAssertion) Label() string {
	if len(s.RestrictedTo) == 0 {
		return "secret(" + s.Term.Name + ")"
	}
	return "secret(" + s.Term.Name + ") for " + strings.Join(s.RestrictedTo, ", ")
}

// Protocol is the root of the tree. It is built once by the parser and only
// read afterward.
type Protocol struct {
	Roles      *RoleSet
	KeyDecls   []*KeyDecl
	Messages   []*MessageSend
	Assertions []*SecrecyAssertion
}
