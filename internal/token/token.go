// Package token defines the token kinds produced by the protocol lexer.
//
// Tokens are the smallest meaningful units of a protocol source file. Every
// token carries its kind, the exact text it was scanned from, and the source
// line it started on (used for diagnostics). The kind set is closed: the
// lexer never invents new kinds, and unknown input degrades to IDENT.
package token

import "fmt"

// Kind identifies the category of a scanned token.
type Kind int

const (
	// EOF marks the end of the input stream. The parser stops when it sees it.
	EOF Kind = iota

	// Keywords.
	ROLES   // "roles"
	SHARED  // "shared"
	PUBLIC  // "public"
	PRIVATE // "private"
	FOR     // "for"
	ASSERT  // "assert"
	SECRET  // "secret"
	ENC     // "Enc"
	MAC     // "Mac"
	SIGN    // "Sign"
	VERIFY  // "Verify"
	HASH    // "H"

	// Symbols.
	ARROW  // "->"
	COLON  // ":"
	COMMA  // ","
	EQUAL  // "="
	CONCAT // "||"
	LPAREN // "("
	RPAREN // ")"

	// IDENT covers names like Alice, K_AB, c, and any character the lexer
	// does not otherwise recognize.
	IDENT
)

var kindNames = map[Kind]string{
	EOF:     "EOF",
	ROLES:   "ROLES",
	SHARED:  "SHARED",
	PUBLIC:  "PUBLIC",
	PRIVATE: "PRIVATE",
	FOR:     "FOR",
	ASSERT:  "ASSERT",
	SECRET:  "SECRET",
	ENC:     "ENC",
	MAC:     "MAC",
	SIGN:    "SIGN",
	VERIFY:  "VERIFY",
	HASH:    "HASH",
	ARROW:   "ARROW",
	COLON:   "COLON",
	COMMA:   "COMMA",
	EQUAL:   "EQUAL",
	CONCAT:  "CONCAT",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	IDENT:   "IDENT",
}

// String returns the kind's name for debug output.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps identifier spellings to their keyword kinds. Identifiers that
// match are reclassified by the lexer before the token is returned.
var keywords = map[string]Kind{
	"roles":   ROLES,
	"shared":  SHARED,
	"public":  PUBLIC,
	"private": PRIVATE,
	"for":     FOR,
	"assert":  ASSERT,
	"secret":  SECRET,
	"Enc":     ENC,
	"Mac":     MAC,
	"Sign":    SIGN,
	"Verify":  VERIFY,
	"H":       HASH,
}

// Lookup returns the keyword kind for an identifier spelling, or IDENT.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Token is a single scanned token: kind, exact source text, and line number.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// String renders the token for the debug token dump.
func (t Token) String() string {
	return fmt.Sprintf("%-8s %q (line %d)", t.Kind, t.Lexeme, t.Line)
}
