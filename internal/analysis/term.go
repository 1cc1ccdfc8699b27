package analysis

import "fmt"

// Principal identifies a participant in the analysis. The passive adversary
// is a distinguished value outside the namespace of declared roles, so a
// protocol is free to declare a role literally named "Adversary" without
// colliding with it.
type Principal struct {
	Name      string
	Adversary bool
}

// Eavesdropper is the implicit passive adversary: it observes every message
// on the wire but is never declared.
var Eavesdropper = Principal{Adversary: true}

// Role returns the principal for a declared role name.
func Role(name string) Principal {
	return Principal{Name: name}
}

func (p Principal) String() string {
	if p.Adversary {
		return "Adversary"
	}
	return p.Name
}

// Constructor tags an opaque term with the cryptographic construct that
// produced it.
type Constructor int

const (
	ConsEnc Constructor = iota
	ConsMac
	ConsHash
	ConsSign
	ConsVerify
	ConsConcat
)

func (c Constructor) String() string {
	switch c {
	case ConsEnc:
		return "Enc"
	case ConsMac:
		return "Mac"
	case ConsHash:
		return "H"
	case ConsSign:
		return "Sign"
	case ConsVerify:
		return "Verify"
	case ConsConcat:
		return "Concat"
	}
	return fmt.Sprintf("Constructor(%d)", int(c))
}

// OpaqueTerm is a structured crypto term as seen by an observer: the
// constructor, the key name if the constructor takes one, and the label of
// the payload. Compared by value; nothing is ever re-parsed out of a string.
//
// InnerAtomic records whether the payload was a bare identifier. Only such
// terms can be opened by the decryption rule: a structured payload label like
// "M_1 || N_A" names no single identifier to learn.
type OpaqueTerm struct {
	Cons        Constructor
	Key         string
	Inner       string
	InnerAtomic bool
}

// Label renders the term the way reports and diagrams print it.
func (t OpaqueTerm) Label() string {
	switch t.Cons {
	case ConsVerify:
		return fmt.Sprintf("Verify(%s, ...)", t.Key)
	case ConsHash, ConsConcat:
		return fmt.Sprintf("%s(%s)", t.Cons, t.Inner)
	default:
		return fmt.Sprintf("%s(%s, %s)", t.Cons, t.Key, t.Inner)
	}
}
