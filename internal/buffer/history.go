package buffer

// History records the mutations applied to one buffer and owns the undo
// and redo stacks built from them. It observes raw inserts and deletes
// through the Listener contract, merges adjacent compatible records into
// one logical edit, and tracks the buffer's modified state.
//
// History is not safe for concurrent use; like the rest of the editing
// core it runs on the single UI event goroutine.
type History struct {
	undo []record
	redo []record

	// modified is set on every recorded mutation and on every completed
	// undo/redo, and cleared by the shell after a successful save.
	modified bool

	// suppress drops mutations entirely: set while the engine replays a
	// record, and by BeginNotUndoable for bulk loads that must not end
	// up on the undo stack.
	suppress bool

	// replaying keeps the redo stack intact while the engine itself is
	// mutating the buffer.
	replaying bool
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// OnInsert records an insertion of text at offset, merging it into the
// previous record when the two form one logical edit (typing a word).
func (h *History) OnInsert(offset int, text []rune) {
	if !h.replaying {
		h.redo = nil
	}
	if h.suppress {
		return
	}

	cur := newInsertRecord(offset, text)
	h.modified = true
	if len(h.undo) == 0 {
		h.undo = append(h.undo, cur)
		return
	}

	prev := h.undo[len(h.undo)-1]
	if prev.kind != recordInsert || !canMergeInsert(prev, cur) {
		h.undo = append(h.undo, cur)
		return
	}
	prev.text = append(prev.text, cur.text...)
	h.undo[len(h.undo)-1] = prev
}

// OnDelete records the removal of text spanning [start, end). cursor is
// the cursor offset at the moment of deletion and classifies the edit as
// forward delete or backspace.
func (h *History) OnDelete(start, end, cursor int, text []rune) {
	if !h.replaying {
		h.redo = nil
	}
	if h.suppress {
		return
	}

	cur := newDeleteRecord(start, end, cursor, text)
	h.modified = true
	if len(h.undo) == 0 {
		h.undo = append(h.undo, cur)
		return
	}

	prev := h.undo[len(h.undo)-1]
	if prev.kind != recordDelete || !canMergeDelete(prev, cur) {
		h.undo = append(h.undo, cur)
		return
	}
	if prev.start == cur.start {
		// Repeated forward delete eats text rightward from a fixed point.
		prev.text = append(prev.text, cur.text...)
		prev.end += cur.end - cur.start
	} else {
		// Repeated backspace walks leftward; the newest text goes in front.
		prev.text = append(append([]rune{}, cur.text...), prev.text...)
		prev.start = cur.start
	}
	h.undo[len(h.undo)-1] = prev
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Modified reports whether the buffer changed since the last save mark.
func (h *History) Modified() bool { return h.modified }

// SetModified overrides the modified flag; the shell clears it after a
// successful save.
func (h *History) SetModified(v bool) { h.modified = v }

// BeginNotUndoable suppresses recording until EndNotUndoable. Used when
// loading file contents or injecting generated text, so the load cannot
// later be undone as one giant delete.
func (h *History) BeginNotUndoable() { h.suppress = true }

// EndNotUndoable re-enables recording.
func (h *History) EndNotUndoable() { h.suppress = false }

func (h *History) beginReplay() {
	h.suppress = true
	h.replaying = true
}

func (h *History) endReplay() {
	h.suppress = false
	h.replaying = false
	h.modified = true
}
