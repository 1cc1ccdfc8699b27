// Package render turns a parsed protocol into Graphviz DOT text.
//
// Only text comes out of here: producing an actual image is the caller's
// business (pipe the output through dot). Two renderings are provided, a
// sequence diagram of the message flow and a node-and-edge dump of the
// syntax tree itself.
package render

import (
	"fmt"
	"strings"

	"github.com/dynamicduo/protoscope/internal/ast"
)

// SequenceDOT renders the protocol as a sequence diagram: one column per
// role, one row per message, arrows labeled with the message body. rankDir
// is a Graphviz rank direction; "" means TB, time flowing top to bottom.
func SequenceDOT(p *ast.Protocol, rankDir string) string {
	if rankDir == "" {
		rankDir = "TB"
	}
	roles := p.Roles.Names()
	rows := len(p.Messages)

	var sb strings.Builder
	sb.WriteString("digraph Protocol {\n")
	fmt.Fprintf(&sb, "  rankdir=%s;\n", rankDir)
	sb.WriteString("  splines=polyline;\n")
	sb.WriteString("  node [fontsize=12];\n")
	sb.WriteString("  graph [nodesep=0.8, ranksep=0.8];\n\n")

	// Role headers across the top.
	for _, role := range roles {
		fmt.Fprintf(&sb, "  %s [label=\"%s\", shape=box, style=rounded];\n",
			headerID(role), escape(role))
	}
	sb.WriteString("\n")

	// Invisible lifeline points, one per (role, row).
	for r := 0; r < rows; r++ {
		for _, role := range roles {
			fmt.Fprintf(&sb, "  %s [label=\"\", shape=point, width=0.02, height=0.02];\n",
				pointID(role, r))
		}
	}
	sb.WriteString("\n")

	// Headers share a rank; each message row shares a rank.
	sb.WriteString("  { rank=same; ")
	for _, role := range roles {
		sb.WriteString(headerID(role) + " ")
	}
	sb.WriteString("}\n")
	for r := 0; r < rows; r++ {
		sb.WriteString("  { rank=same; ")
		for _, role := range roles {
			sb.WriteString(pointID(role, r) + " ")
		}
		sb.WriteString("}\n")
	}
	sb.WriteString("\n")

	// Invisible edges keep each column vertically aligned.
	for _, role := range roles {
		if rows > 0 {
			fmt.Fprintf(&sb, "  %s -> %s [style=invis];\n", headerID(role), pointID(role, 0))
		}
		for r := 0; r+1 < rows; r++ {
			fmt.Fprintf(&sb, "  %s -> %s [style=invis];\n", pointID(role, r), pointID(role, r+1))
		}
	}
	sb.WriteString("\n")

	// One labeled arrow per message.
	for r, msg := range p.Messages {
		fmt.Fprintf(&sb, "  %s -> %s [label=\"%s\", constraint=false];\n",
			pointID(msg.Sender.Name, r), pointID(msg.Receiver.Name, r),
			escape(msg.Body.Label()))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// TreeDOT renders the syntax tree itself, one node per AST node. Useful for
// debugging grammar changes; diagram --ast exposes it.
func TreeDOT(p *ast.Protocol) string {
	var sb strings.Builder
	n := 0
	next := func() string { n++; return fmt.Sprintf("n%d", n) }

	sb.WriteString("digraph AST {\n")
	sb.WriteString("  node [shape=box, fontsize=11];\n")

	root := next()
	fmt.Fprintf(&sb, "  %s [label=\"Protocol\"];\n", root)

	rolesNode := next()
	fmt.Fprintf(&sb, "  %s [label=\"roles: %s\"];\n", rolesNode, escape(strings.Join(p.Roles.Names(), ", ")))
	fmt.Fprintf(&sb, "  %s -> %s;\n", root, rolesNode)

	for _, kd := range p.KeyDecls {
		id := next()
		fmt.Fprintf(&sb, "  %s [label=\"%s\"];\n", id, escape(kd.Label()))
		fmt.Fprintf(&sb, "  %s -> %s;\n", root, id)
	}
	for _, msg := range p.Messages {
		id := next()
		fmt.Fprintf(&sb, "  %s [label=\"%s -> %s\"];\n", id, escape(msg.Sender.Name), escape(msg.Receiver.Name))
		fmt.Fprintf(&sb, "  %s -> %s;\n", root, id)
		treeStmt(&sb, next, id, msg.Body)
	}
	for _, a := range p.Assertions {
		id := next()
		fmt.Fprintf(&sb, "  %s [label=\"assert %s\"];\n", id, escape(a.Label()))
		fmt.Fprintf(&sb, "  %s -> %s;\n", root, id)
	}

	sb.WriteString("}\n")
	return sb.String()
}

func treeStmt(sb *strings.Builder, next func() string, parent string, s ast.Stmt) {
	switch node := s.(type) {
	case *ast.Assign:
		id := next()
		fmt.Fprintf(sb, "  %s [label=\"%s =\"];\n", id, escape(node.Target.Name))
		fmt.Fprintf(sb, "  %s -> %s;\n", parent, id)
		treeExpr(sb, next, id, node.Value)
	case ast.Expr:
		treeExpr(sb, next, parent, node)
	}
}

func treeExpr(sb *strings.Builder, next func() string, parent string, e ast.Expr) {
	id := next()
	switch node := e.(type) {
	case *ast.Identifier:
		fmt.Fprintf(sb, "  %s [label=\"%s\"];\n", id, escape(node.Name))
	case *ast.Concat:
		fmt.Fprintf(sb, "  %s [label=\"||\"];\n", id)
		treeExpr(sb, next, id, node.Left)
		treeExpr(sb, next, id, node.Right)
	case *ast.Encrypt:
		fmt.Fprintf(sb, "  %s [label=\"Enc\"];\n", id)
		treeExpr(sb, next, id, node.Key)
		treeExpr(sb, next, id, node.Message)
	case *ast.Mac:
		fmt.Fprintf(sb, "  %s [label=\"Mac\"];\n", id)
		treeExpr(sb, next, id, node.Key)
		treeExpr(sb, next, id, node.Message)
	case *ast.Hash:
		fmt.Fprintf(sb, "  %s [label=\"H\"];\n", id)
		treeExpr(sb, next, id, node.Inner)
	case *ast.Sign:
		fmt.Fprintf(sb, "  %s [label=\"Sign\"];\n", id)
		treeExpr(sb, next, id, node.Key)
		treeExpr(sb, next, id, node.Message)
	case *ast.Verify:
		fmt.Fprintf(sb, "  %s [label=\"Verify\"];\n", id)
		treeExpr(sb, next, id, node.Key)
		treeExpr(sb, next, id, node.Message)
		treeExpr(sb, next, id, node.Signature)
	}
	fmt.Fprintf(sb, "  %s -> %s;\n", parent, id)
}

// headerID and pointID build DOT-safe node ids from role names; roles are
// identifiers already, so sanitizing is a formality.
func headerID(role string) string {
	return "hdr_" + sanitize(role)
}

func pointID(role string, row int) string {
	return fmt.Sprintf("p_%s_%d", sanitize(role), row)
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
