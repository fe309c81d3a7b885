package techconf

// Scope is the list of currently open block names, outermost first. It is a
// value: Push and Pop return a new scope and leave the receiver untouched.
type Scope []string

// Push opens a block
func (s Scope) Push(name string) Scope {
	out := make(Scope, len(s), len(s)+1)
	copy(out, s)
	return append(out, name)
}

// Pop closes the innermost block. Popping an empty scope is a no-op.
func (s Scope) Pop() Scope {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

// Top returns the innermost block name, or "" at top level
func (s Scope) Top() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// Depth returns the number of open blocks
func (s Scope) Depth() int {
	return len(s)
}

// Index returns the position of the innermost open block with the given
// name, or -1
func (s Scope) Index(name string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == name {
			return i
		}
	}
	return -1
}

// In reports whether a block with the given name is open
func (s Scope) In(name string) bool {
	return s.Index(name) >= 0
}

// InNamedChild reports whether the innermost block is a named sub-block
// directly or indirectly inside the given block, e.g. "ndiff" inside
// "materials". The name of that sub-block is returned.
func (s Scope) InNamedChild(parent string) (string, bool) {
	i := s.Index(parent)
	if i < 0 || i == len(s)-1 {
		return "", false
	}
	return s.Top(), true
}
