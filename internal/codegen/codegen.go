// Package codegen emits a standalone Go program that performs one run of a
// parsed protocol over TCP.
//
// The generator is a faithful-structure translator, not a verifier: each
// MessageSend becomes one wire exchange in protocol order, each expression
// variant maps to a fixed primitive call site (Enc to AES-GCM, Mac to
// HMAC-SHA256, H to SHA-256, Sign/Verify to Ed25519), and key material is
// loaded from files named after the declared keys. The generated code is
// text only; nothing cryptographic executes here.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dynamicduo/protoscope/internal/ast"
	perrors "github.com/dynamicduo/protoscope/internal/errors"
)

// Generate returns the Go source for the protocol, or an error when the
// protocol has nothing runnable (no roles or no messages).
func Generate(p *ast.Protocol) (string, error) {
	if len(p.Roles.Roles) == 0 {
		return "", perrors.ErrNoRoles
	}
	if len(p.Messages) == 0 {
		return "", perrors.ErrNoMessages
	}

	g := &generator{proto: p}
	return g.run(), nil
}

type generator struct {
	proto *ast.Protocol
	sb    strings.Builder
}

func (g *generator) run() string {
	// TCP needs exactly one accept(): the receiver of the first message
	// listens, everyone else dials.
	listener := g.proto.Messages[0].Receiver.Name

	g.emitHeader()
	g.emitRuntime()

	g.pf("func main() {\n")
	g.pf("	if len(os.Args) < 3 {\n")
	g.pf("		fmt.Println(\"usage: <role> <port> (listener) or <role> <host:port> (connector)\")\n")
	g.pf("		os.Exit(1)\n")
	g.pf("	}\n")
	g.pf("	me := os.Args[1]\n")
	g.pf("	addr := os.Args[2]\n\n")
	g.pf("	// Listener role chosen from the first message receiver.\n")
	g.pf("	conn := connect(me == %q, addr)\n", listener)
	g.pf("	defer conn.Close()\n")
	g.pf("	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))\n\n")

	g.emitKeyLoading()
	g.pf("	vars := map[string][]byte{}\n")
	g.pf("	boolVars := map[string]bool{}\n")
	g.pf("	_, _ = vars, boolVars\n\n")

	for i, msg := range g.proto.Messages {
		g.emitStep(i, msg)
	}

	g.pf("	fmt.Printf(\"[%%s] protocol run complete\\n\", me)\n")
	g.pf("}\n")
	return g.sb.String()
}

func (g *generator) emitHeader() {
	g.pf("// Code generated by protoscope gen; DO NOT EDIT.\n")
	g.pf("//\n")
	g.pf("// Roles: %s\n", strings.Join(g.proto.Roles.Names(), ", "))
	g.pf("package main\n\n")
	g.pf("import (\n")
	for _, imp := range []string{
		"bufio", "crypto/aes", "crypto/cipher", "crypto/ed25519", "crypto/hmac",
		"crypto/rand", "crypto/sha256", "encoding/base64", "fmt", "net", "os",
	} {
		g.pf("	%q\n", imp)
	}
	g.pf(")\n\n")
}

// emitRuntime writes the small fixed support library the step code calls
// into: connection setup, framing, key loading, and one function per
// primitive.
func (g *generator) emitRuntime() {
	g.pf(`func connect(listen bool, addr string) net.Conn {
	if listen {
		ln, err := net.Listen("tcp", ":"+addr)
		if err != nil {
			panic(err)
		}
		conn, err := ln.Accept()
		if err != nil {
			panic(err)
		}
		return conn
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		panic(err)
	}
	return conn
}

func send(rw *bufio.ReadWriter, payload []byte) {
	if _, err := rw.WriteString(base64.StdEncoding.EncodeToString(payload) + "\n"); err != nil {
		panic(err)
	}
	if err := rw.Flush(); err != nil {
		panic(err)
	}
}

func recv(rw *bufio.ReadWriter) []byte {
	line, err := rw.ReadString('\n')
	if err != nil {
		panic(err)
	}
	payload, err := base64.StdEncoding.DecodeString(line[:len(line)-1])
	if err != nil {
		panic(err)
	}
	return payload
}

// loadKey reads key material from a file named after the declared key,
// e.g. "K_AB.key". Provision these files out of band.
func loadKey(name string) []byte {
	data, err := os.ReadFile(name + ".key")
	if err != nil {
		panic(err)
	}
	return data
}

// value returns the named protocol variable, materializing a fresh random
// value the first time its author uses it.
func value(vars map[string][]byte, name string) []byte {
	if v, ok := vars[name]; ok {
		return v
	}
	v := make([]byte, 16)
	if _, err := rand.Read(v); err != nil {
		panic(err)
	}
	vars[name] = v
	return v
}

func encryptAESGCM(key, plaintext []byte) []byte {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		panic(err)
	}
	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...)
}

func hmacSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

func sha256Sum(msg []byte) []byte {
	sum := sha256.Sum256(msg)
	return sum[:]
}

func ed25519Sign(key, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(key), msg)
}

func ed25519Verify(key, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(key), msg, sig)
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func bytesBool(b []byte) bool {
	return len(b) == 1 && b[0] == 1
}

`)
}

func (g *generator) emitKeyLoading() {
	if len(g.proto.KeyDecls) == 0 {
		return
	}
	g.pf("	// Declared key material, loaded by kind.\n")
	for _, kd := range g.proto.KeyDecls {
		g.pf("	%s := loadKey(%q) // %s key of %s\n",
			keyVar(kd.Name), kd.Name, kd.Kind, strings.Join(kd.Owners, ", "))
	}
	g.pf("\n")
}

func (g *generator) emitStep(i int, msg *ast.MessageSend) {
	g.pf("	// Step %d: %s\n", i+1, msg.Label())

	sender := msg.Sender.Name
	receiver := msg.Receiver.Name

	g.pf("	if me == %q {\n", sender)
	switch body := msg.Body.(type) {
	case *ast.Assign:
		if isVerify(body.Value) {
			g.pf("		%s := %s\n", boolVar(body.Target.Name), g.exprCode(body.Value))
			g.pf("		boolVars[%q] = %s\n", body.Target.Name, boolVar(body.Target.Name))
			g.pf("		send(rw, boolBytes(%s))\n", boolVar(body.Target.Name))
		} else {
			g.pf("		vars[%q] = %s\n", body.Target.Name, g.exprCode(body.Value))
			g.pf("		send(rw, vars[%q])\n", body.Target.Name)
		}
	case ast.Expr:
		if isVerify(body) {
			g.pf("		send(rw, boolBytes(%s))\n", g.exprCode(body))
		} else {
			g.pf("		send(rw, %s)\n", g.exprCode(body))
		}
	}
	g.pf("	}\n")

	g.pf("	if me == %q {\n", receiver)
	switch body := msg.Body.(type) {
	case *ast.Assign:
		if isVerify(body.Value) {
			g.pf("		boolVars[%q] = bytesBool(recv(rw))\n", body.Target.Name)
		} else {
			g.pf("		vars[%q] = recv(rw)\n", body.Target.Name)
		}
	case ast.Expr:
		g.pf("		_ = recv(rw)\n")
	}
	g.pf("	}\n\n")
}

// exprCode translates an expression to the Go call that computes it at run
// time. Every result is []byte except Verify, which is bool.
func (g *generator) exprCode(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		if g.isKey(n.Name) {
			return keyVar(n.Name)
		}
		return fmt.Sprintf("value(vars, %q)", n.Name)
	case *ast.Concat:
		return fmt.Sprintf("concat(%s, %s)", g.exprCode(n.Left), g.exprCode(n.Right))
	case *ast.Encrypt:
		return fmt.Sprintf("encryptAESGCM(%s, %s)", g.exprCode(n.Key), g.exprCode(n.Message))
	case *ast.Mac:
		return fmt.Sprintf("hmacSHA256(%s, %s)", g.exprCode(n.Key), g.exprCode(n.Message))
	case *ast.Hash:
		return fmt.Sprintf("sha256Sum(%s)", g.exprCode(n.Inner))
	case *ast.Sign:
		return fmt.Sprintf("ed25519Sign(%s, %s)", g.exprCode(n.Key), g.exprCode(n.Message))
	case *ast.Verify:
		return fmt.Sprintf("ed25519Verify(%s, %s, %s)",
			g.exprCode(n.Key), g.exprCode(n.Message), g.exprCode(n.Signature))
	}
	return `[]byte{}`
}

func (g *generator) isKey(name string) bool {
	for _, kd := range g.proto.KeyDecls {
		if kd.Name == name {
			return true
		}
	}
	return false
}

func isVerify(e ast.Expr) bool {
	_, ok := e.(*ast.Verify)
	return ok
}

func keyVar(name string) string  { return "key_" + name }
func boolVar(name string) string { return "ok_" + name }

func (g *generator) pf(format string, args ...any) {
	fmt.Fprintf(&g.sb, format, args...)
}
