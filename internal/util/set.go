package util

// KeySet is a map[E]bool with methods added for set-like use. automaton uses
// it to track NFA/DFA state sets without repeating membership-map boilerplate
// at every call site.
type KeySet[E comparable] map[E]bool

// NewKeySet builds an empty KeySet, optionally seeded from existing
// membership maps.
func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

// KeySetOf builds a KeySet from a slice of elements.
func KeySetOf[E comparable](sl []E) KeySet[E] {
	if sl == nil {
		return nil
	}
	s := NewKeySet[E]()
	for i := range sl {
		s.Add(sl[i])
	}
	return s
}

// Add adds value to the set. Has no effect if it's already present.
func (s KeySet[E]) Add(value E) { s[value] = true }

// Has reports whether value is in the set.
func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

// Len returns the number of elements in the set.
func (s KeySet[E]) Len() int { return len(s) }

// Copy returns a shallow copy of the set.
func (s KeySet[E]) Copy() KeySet[E] {
	newS := NewKeySet[E]()
	for k := range s {
		newS[k] = true
	}
	return newS
}
