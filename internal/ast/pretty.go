package ast

import "strings"

// Pretty renders the protocol as an indented tree, one branch per
// declaration, message, and assertion. Used by the check command's --tree
// flag and handy in failing-test output.
func (p *Protocol) Pretty() string {
	var sb strings.Builder
	sb.WriteString("Protocol\n")

	remaining := 1 + len(p.KeyDecls) + len(p.Messages) + len(p.Assertions)
	next := func() bool { remaining--; return remaining == 0 }

	branch(&sb, "", next(), "roles: "+strings.Join(p.Roles.Names(), ", "))
	for _, kd := range p.KeyDecls {
		branch(&sb, "", next(), kd.Label())
	}
	for _, msg := range p.Messages {
		last := next()
		branch(&sb, "", last, msg.Sender.Name+" -> "+msg.Receiver.Name)
		prettyStmt(&sb, childIndent("", last), msg.Body)
	}
	for _, a := range p.Assertions {
		branch(&sb, "", next(), "assert "+a.Label())
	}
	return sb.String()
}

func prettyStmt(sb *strings.Builder, indent string, s Stmt) {
	switch n := s.(type) {
	case *Assign:
		branch(sb, indent, true, n.Target.Name+" =")
		prettyExpr(sb, childIndent(indent, true), true, n.Value)
	case Expr:
		prettyExpr(sb, indent, true, n)
	}
}

func prettyExpr(sb *strings.Builder, indent string, last bool, e Expr) {
	switch n := e.(type) {
	case *Identifier:
		branch(sb, indent, last, n.Name)
	case *Concat:
		branch(sb, indent, last, "||")
		in := childIndent(indent, last)
		prettyExpr(sb, in, false, n.Left)
		prettyExpr(sb, in, true, n.Right)
	case *Encrypt:
		branch(sb, indent, last, "Enc")
		in := childIndent(indent, last)
		prettyExpr(sb, in, false, n.Key)
		prettyExpr(sb, in, true, n.Message)
	case *Mac:
		branch(sb, indent, last, "Mac")
		in := childIndent(indent, last)
		prettyExpr(sb, in, false, n.Key)
		prettyExpr(sb, in, true, n.Message)
	case *Hash:
		branch(sb, indent, last, "H")
		prettyExpr(sb, childIndent(indent, last), true, n.Inner)
	case *Sign:
		branch(sb, indent, last, "Sign")
		in := childIndent(indent, last)
		prettyExpr(sb, in, false, n.Key)
		prettyExpr(sb, in, true, n.Message)
	case *Verify:
		branch(sb, indent, last, "Verify")
		in := childIndent(indent, last)
		prettyExpr(sb, in, false, n.Key)
		prettyExpr(sb, in, false, n.Message)
		prettyExpr(sb, in, true, n.Signature)
	}
}

func branch(sb *strings.Builder, indent string, last bool, label string) {
	sb.WriteString(indent)
	if last {
		sb.WriteString("└─ ")
	} else {
		sb.WriteString("├─ ")
	}
	sb.WriteString(label)
	sb.WriteByte('\n')
}

func childIndent(indent string, last bool) string {
	if last {
		return indent + "   "
	}
	return indent + "│  "
}
