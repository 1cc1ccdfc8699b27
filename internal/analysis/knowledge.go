package analysis

// Knowledge is one principal's knowledge state: atomic terms known in the
// clear and opaque structured terms seen on the wire. Both sets grow
// monotonically and preserve insertion order, so two runs over the same
// protocol produce byte-identical reports.
type Knowledge struct {
	atomicOrder []string
	atomic      map[string]bool

	opaqueOrder []OpaqueTerm
	opaque      map[OpaqueTerm]bool
}

func newKnowledge() *Knowledge {
	return &Knowledge{
		atomic: make(map[string]bool),
		opaque: make(map[OpaqueTerm]bool),
	}
}

// addAtomic records an atomic term; it reports whether the term was new.
func (k *Knowledge) addAtomic(term string) bool {
	if k.atomic[term] {
		return false
	}
	k.atomic[term] = true
	k.atomicOrder = append(k.atomicOrder, term)
	return true
}

func (k *Knowledge) addOpaque(t OpaqueTerm) {
	if k.opaque[t] {
		return
	}
	k.opaque[t] = true
	k.opaqueOrder = append(k.opaqueOrder, t)
}

// KnowsAtomic reports whether the principal knows term in the clear.
func (k *Knowledge) KnowsAtomic(term string) bool {
	return k.atomic[term]
}

// Atomic returns the atomic terms in the order they were learned.
func (k *Knowledge) Atomic() []string {
	out := make([]string, len(k.atomicOrder))
	copy(out, k.atomicOrder)
	return out
}

// Opaque returns the opaque terms in the order they were seen.
func (k *Knowledge) Opaque() []OpaqueTerm {
	out := make([]OpaqueTerm, len(k.opaqueOrder))
	copy(out, k.opaqueOrder)
	return out
}
