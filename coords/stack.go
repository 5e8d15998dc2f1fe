package coords

import "errors"

// ErrStackEmpty is returned when Restore is called with no saved state.
var ErrStackEmpty = errors.New("transform stack empty")

// Stack tracks the current transformation matrix across content-stream
// save/restore/concat operators.
type Stack struct {
	current Matrix
	saved   []Matrix
}

// NewStack returns a stack whose current matrix is the identity.
func NewStack() *Stack {
	return &Stack{current: Identity()}
}

// Current returns the active transformation matrix.
func (s *Stack) Current() Matrix { return s.current }

// Save pushes the current matrix (the q operator).
func (s *Stack) Save() {
	s.saved = append(s.saved, s.current)
}

// Restore pops the most recently saved matrix (the Q operator).
func (s *Stack) Restore() error {
	n := len(s.saved)
	if n == 0 {
		return ErrStackEmpty
	}
	s.current = s.saved[n-1]
	s.saved = s.saved[:n-1]
	return nil
}

// Concat right-multiplies the current matrix by m (the cm operator).
func (s *Stack) Concat(m Matrix) {
	s.current = m.Multiply(s.current)
}

// Depth returns the number of saved states.
func (s *Stack) Depth() int { return len(s.saved) }
