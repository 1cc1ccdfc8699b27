// Package analysis approximates what every protocol participant, and a
// passive eavesdropper, can possess after one run of a parsed protocol, and
// evaluates the protocol's secrecy assertions against that approximation.
//
// The model is deliberately simple and sound in one direction: cryptographic
// constructs are opaque to observers, the adversary sees every message on the
// wire, and the only inference rule that opens a construct is decryption of
// Enc(k, m) by a principal that separately knows k. MACs, hashes, signatures,
// Verify, and concatenation never reveal their arguments.
//
// Analysis is a total function over a validated protocol: it has no error
// channel and always terminates, because knowledge sets only grow and are
// bounded by the protocol's finite identifier universe.
package analysis

import (
	"strings"

	"github.com/dynamicduo/protoscope/internal/ast"
)

// Verdict is the outcome of one secrecy assertion.
type Verdict struct {
	Assertion *ast.SecrecyAssertion
	Pass      bool
	// Reason explains a failure ("Adversary knows M"); empty on a pass.
	Reason string
}

// PrincipalKnowledge is one row of the report: a principal and everything
// it ended up knowing.
type PrincipalKnowledge struct {
	Principal Principal
	Atomic    []string
	Opaque    []OpaqueTerm
}

// Report is the full analysis output. Principals appear in declaration
// order with the adversary last.
type Report struct {
	Principals []PrincipalKnowledge
	Verdicts   []Verdict

	// Catastrophic lists adversary-known terms that lexically look like
	// declared keys or plaintexts (K_*, M_*). A coarse signal that fires
	// even when no assertion was written.
	Catastrophic []string

	// ClosureIterations counts full passes of the decryption fixed point,
	// including the final pass that found nothing new.
	ClosureIterations int
}

type analyzer struct {
	order []Principal
	know  map[Principal]*Knowledge

	// authorOnly[p] holds terms p knows solely because p authored a message
	// containing them, never having seen them in the clear. Restricted
	// secrecy checks ignore such knowledge.
	authorOnly map[Principal]map[string]bool
}

// Analyze runs the knowledge computation over a validated protocol.
func Analyze(p *ast.Protocol) *Report {
	a := &analyzer{
		know:       make(map[Principal]*Knowledge),
		authorOnly: make(map[Principal]map[string]bool),
	}
	for _, r := range p.Roles.Roles {
		a.addPrincipal(Role(r.Name))
	}
	a.addPrincipal(Eavesdropper)

	for _, msg := range p.Messages {
		a.observe(msg)
	}
	iterations := a.decryptionClosure()

	report := &Report{ClosureIterations: iterations}
	for _, pr := range a.order {
		k := a.know[pr]
		report.Principals = append(report.Principals, PrincipalKnowledge{
			Principal: pr,
			Atomic:    k.Atomic(),
			Opaque:    k.Opaque(),
		})
	}
	for _, assert := range p.Assertions {
		report.Verdicts = append(report.Verdicts, a.evaluate(assert))
	}
	report.Catastrophic = a.catastrophic()
	return report
}

func (a *analyzer) addPrincipal(p Principal) {
	if _, ok := a.know[p]; ok {
		return
	}
	a.order = append(a.order, p)
	a.know[p] = newKnowledge()
	a.authorOnly[p] = make(map[string]bool)
}

// observe processes one message: the visible terms go to sender, receiver,
// and the adversary; the sender alone additionally learns every identifier
// anywhere in the body, since constructing the message requires knowing its
// ingredients.
func (a *analyzer) observe(msg *ast.MessageSend) {
	var ids []string
	var ops []OpaqueTerm
	visibleTerms(msg.Body, &ids, &ops)

	sender := Role(msg.Sender.Name)
	observers := []Principal{sender, Role(msg.Receiver.Name), Eavesdropper}
	for _, obs := range observers {
		k, ok := a.know[obs]
		if !ok {
			// A hand-built AST can name an undeclared sender or receiver.
			continue
		}
		for _, id := range ids {
			k.addAtomic(id)
			// Seen in the clear, so no longer author-only knowledge.
			delete(a.authorOnly[obs], id)
		}
		for _, op := range ops {
			k.addOpaque(op)
		}
	}

	if k, ok := a.know[sender]; ok {
		for _, id := range authorTerms(msg.Body) {
			if k.addAtomic(id) {
				a.authorOnly[sender][id] = true
			}
		}
	}
}

// decryptionClosure applies the one inference rule until a full pass adds
// nothing: a principal holding Enc(k, m) with k atomic and m a bare
// identifier learns m. Returns the number of passes taken.
func (a *analyzer) decryptionClosure() int {
	passes := 0
	for {
		passes++
		changed := false
		for _, pr := range a.order {
			k := a.know[pr]
			for _, op := range k.Opaque() {
				if op.Cons != ConsEnc || !op.InnerAtomic {
					continue
				}
				if k.KnowsAtomic(op.Key) && !k.KnowsAtomic(op.Inner) {
					k.addAtomic(op.Inner)
					// Decryption is observation, not authorship.
					delete(a.authorOnly[pr], op.Inner)
					changed = true
				}
			}
		}
		if !changed {
			return passes
		}
	}
}

func (a *analyzer) evaluate(assert *ast.SecrecyAssertion) Verdict {
	term := assert.Term.Name

	if a.know[Eavesdropper].KnowsAtomic(term) {
		return Verdict{Assertion: assert, Reason: "Adversary knows " + term}
	}

	if len(assert.RestrictedTo) > 0 {
		allowed := make(map[string]bool, len(assert.RestrictedTo))
		for _, name := range assert.RestrictedTo {
			allowed[name] = true
		}
		for _, pr := range a.order {
			if pr.Adversary || allowed[pr.Name] {
				continue
			}
			if !a.know[pr].KnowsAtomic(term) {
				continue
			}
			// Authoring a value is not the same as it leaking to you.
			if a.authorOnly[pr][term] {
				continue
			}
			return Verdict{
				Assertion: assert,
				Reason:    pr.Name + " knows " + term + " but is not in the allowed set",
			}
		}
	}
	return Verdict{Assertion: assert, Pass: true}
}

func (a *analyzer) catastrophic() []string {
	var out []string
	for _, t := range a.know[Eavesdropper].Atomic() {
		if strings.HasPrefix(t, "K_") || strings.HasPrefix(t, "M_") {
			out = append(out, t)
		}
	}
	return out
}

// visibleTerms is the opacity-aware walk for observer knowledge. Bare
// identifiers and assignment targets are visible atoms; each cryptographic
// construct and concatenation contributes exactly one opaque term and is not
// recursed into.
func visibleTerms(node ast.Stmt, ids *[]string, ops *[]OpaqueTerm) {
	if a, ok := node.(*ast.Assign); ok {
		*ids = append(*ids, a.Target.Name)
		visibleExpr(a.Value, ids, ops)
		return
	}
	visibleExpr(node.(ast.Expr), ids, ops)
}

func visibleExpr(node ast.Expr, ids *[]string, ops *[]OpaqueTerm) {
	switch n := node.(type) {
	case *ast.Identifier:
		*ids = append(*ids, n.Name)
	case *ast.Encrypt:
		*ops = append(*ops, opaqueFor(ConsEnc, n.Key.Name, n.Message))
	case *ast.Mac:
		*ops = append(*ops, opaqueFor(ConsMac, n.Key.Name, n.Message))
	case *ast.Hash:
		*ops = append(*ops, opaqueFor(ConsHash, "", n.Inner))
	case *ast.Sign:
		*ops = append(*ops, opaqueFor(ConsSign, n.Key.Name, n.Message))
	case *ast.Verify:
		*ops = append(*ops, OpaqueTerm{Cons: ConsVerify, Key: n.Key.Name})
	case *ast.Concat:
		*ops = append(*ops, OpaqueTerm{
			Cons:  ConsConcat,
			Inner: n.Left.Label() + ", " + n.Right.Label(),
		})
	}
}

func opaqueFor(cons Constructor, key string, payload ast.Expr) OpaqueTerm {
	t := OpaqueTerm{Cons: cons, Key: key, Inner: payload.Label()}
	if _, bare := payload.(*ast.Identifier); bare {
		t.InnerAtomic = true
	}
	return t
}

// authorTerms collects every identifier anywhere in a message body,
// including names under encryption and signing: the author had to know all
// of them to build the message.
func authorTerms(node ast.Stmt) []string {
	var out []string
	if a, ok := node.(*ast.Assign); ok {
		out = append(out, a.Target.Name)
		collectIdents(a.Value, &out)
		return out
	}
	collectIdents(node.(ast.Expr), &out)
	return out
}

func collectIdents(node ast.Expr, out *[]string) {
	switch n := node.(type) {
	case *ast.Identifier:
		*out = append(*out, n.Name)
	case *ast.Concat:
		collectIdents(n.Left, out)
		collectIdents(n.Right, out)
	case *ast.Encrypt:
		*out = append(*out, n.Key.Name)
		collectIdents(n.Message, out)
	case *ast.Mac:
		*out = append(*out, n.Key.Name)
		collectIdents(n.Message, out)
	case *ast.Hash:
		collectIdents(n.Inner, out)
	case *ast.Sign:
		*out = append(*out, n.Key.Name)
		collectIdents(n.Message, out)
	case *ast.Verify:
		*out = append(*out, n.Key.Name)
		collectIdents(n.Message, out)
		collectIdents(n.Signature, out)
	}
}
