package session

// undoStack holds bounded snapshots of an active block's editable lines.
// Pushing past capacity drops the oldest entry; a fresh edit clears the
// redo side.
type undoStack struct {
	capacity int
	past     [][]LineState
	future   [][]LineState
}

func newUndoStack(capacity int) *undoStack {
	if capacity <= 0 {
		capacity = defaultUndoDepth
	}
	return &undoStack{capacity: capacity}
}

func cloneLines(lines []LineState) []LineState {
	out := make([]LineState, len(lines))
	for i := range lines {
		out[i] = lines[i].clone()
	}
	return out
}

// push records the pre-edit state and invalidates redo history.
func (u *undoStack) push(lines []LineState) {
	u.past = append(u.past, cloneLines(lines))
	if len(u.past) > u.capacity {
		u.past = u.past[1:]
	}
	u.future = nil
}

// undo swaps the current state for the most recent snapshot.
func (u *undoStack) undo(current []LineState) ([]LineState, bool) {
	if len(u.past) == 0 {
		return nil, false
	}
	last := u.past[len(u.past)-1]
	u.past = u.past[:len(u.past)-1]
	u.future = append(u.future, cloneLines(current))
	return last, true
}

// redo reverses the most recent undo.
func (u *undoStack) redo(current []LineState) ([]LineState, bool) {
	if len(u.future) == 0 {
		return nil, false
	}
	next := u.future[len(u.future)-1]
	u.future = u.future[:len(u.future)-1]
	u.past = append(u.past, cloneLines(current))
	return next, true
}
