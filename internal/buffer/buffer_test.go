package buffer

import "testing"

func TestUndoRestoresOriginalState(t *testing.T) {
	b := New()
	b.BeginNotUndoable()
	b.SetText("one two three")
	b.EndNotUndoable()
	b.SetCursor(7)

	typeText(b, "x")
	typeText(b, "yz")
	b.SetCursor(3)
	forwardDelete(b)
	typeText(b, "\nmore")

	steps := undoDepth(b)
	for i := 0; i < steps; i++ {
		if !b.Undo() {
			t.Fatalf("Undo %d returned false", i)
		}
	}
	if b.Text() != "one two three" {
		t.Fatalf("text = %q, want %q", b.Text(), "one two three")
	}
	if b.CanUndo() {
		t.Fatalf("CanUndo = true after full unwind")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	b := New()
	typeText(b, "hello")
	textBefore := b.Text()
	cursorBefore := b.Cursor()

	if !b.Undo() {
		t.Fatalf("Undo returned false")
	}
	if !b.Redo() {
		t.Fatalf("Redo returned false")
	}
	if b.Text() != textBefore {
		t.Fatalf("text = %q, want %q", b.Text(), textBefore)
	}
	if b.Cursor() != cursorBefore {
		t.Fatalf("cursor = %d, want %d", b.Cursor(), cursorBefore)
	}
	if !b.CanUndo() || b.CanRedo() {
		t.Fatalf("stacks after round trip: canUndo=%v canRedo=%v, want true/false", b.CanUndo(), b.CanRedo())
	}
}

func TestDeleteUndoRedoRoundTrip(t *testing.T) {
	b := New()
	b.BeginNotUndoable()
	b.SetText("abc")
	b.EndNotUndoable()
	b.SetCursor(3)
	backspace(b)

	b.Undo()
	if b.Text() != "abc" {
		t.Fatalf("after undo text = %q, want %q", b.Text(), "abc")
	}
	b.Redo()
	if b.Text() != "ab" {
		t.Fatalf("after redo text = %q, want %q", b.Text(), "ab")
	}
	if b.Cursor() != 2 {
		t.Fatalf("after redo cursor = %d, want 2", b.Cursor())
	}
}

func TestUndoOnEmptyStackIsNoop(t *testing.T) {
	b := New()
	b.BeginNotUndoable()
	b.SetText("abc")
	b.EndNotUndoable()
	b.SetModified(false)

	if b.Undo() {
		t.Fatalf("Undo returned true on empty stack")
	}
	if b.Text() != "abc" {
		t.Fatalf("text = %q, want %q", b.Text(), "abc")
	}
	if b.Modified() {
		t.Fatalf("modified = true after no-op undo")
	}
	if undoDepth(b) != 0 || redoDepth(b) != 0 {
		t.Fatalf("stacks changed by no-op undo")
	}
	if b.Redo() {
		t.Fatalf("Redo returned true on empty stack")
	}
}

func TestModifiedTracking(t *testing.T) {
	b := New()
	if b.Modified() {
		t.Fatalf("new buffer is modified")
	}
	typeText(b, "a")
	if !b.Modified() {
		t.Fatalf("modified = false after typing")
	}
	b.SetModified(false) // save
	b.Undo()
	if !b.Modified() {
		t.Fatalf("modified = false after undo")
	}
	b.SetModified(false)
	b.Redo()
	if !b.Modified() {
		t.Fatalf("modified = false after redo")
	}
}

func TestInsertOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("no panic for out-of-range insert")
		}
	}()
	b := New()
	b.Insert(5, []rune{'x'})
}

func TestDeleteOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("no panic for out-of-range delete")
		}
	}()
	b := New()
	b.BeginNotUndoable()
	b.SetText("ab")
	b.EndNotUndoable()
	b.Delete(1, 5)
}

type captureListener struct {
	inserts []string
	deletes []string
	cursors []int
}

func (c *captureListener) OnInsert(offset int, text []rune) {
	c.inserts = append(c.inserts, string(text))
}

func (c *captureListener) OnDelete(start, end, cursor int, text []rune) {
	c.deletes = append(c.deletes, string(text))
	c.cursors = append(c.cursors, cursor)
}

func TestListenerNotifications(t *testing.T) {
	b := New()
	got := &captureListener{}
	b.AddListener(got)

	b.Insert(0, []rune("hi"))
	b.SetCursor(2)
	b.Delete(1, 2)

	if len(got.inserts) != 1 || got.inserts[0] != "hi" {
		t.Fatalf("inserts = %v, want [hi]", got.inserts)
	}
	if len(got.deletes) != 1 || got.deletes[0] != "i" {
		t.Fatalf("deletes = %v, want [i]", got.deletes)
	}
	// The listener sees the cursor from before the removal.
	if got.cursors[0] != 2 {
		t.Fatalf("cursor at delete = %d, want 2", got.cursors[0])
	}
}

func TestRecorderDrivenDirectly(t *testing.T) {
	// The recorder is just a Listener; a test double can feed it the
	// same events a buffer would.
	h := NewHistory()
	h.OnInsert(0, []rune{'g'})
	h.OnInsert(1, []rune{'o'})
	if len(h.undo) != 1 || string(h.undo[0].text) != "go" {
		t.Fatalf("undo stack = %d records, want 1 merged %q", len(h.undo), "go")
	}
	h.OnDelete(1, 2, 2, []rune{'o'})
	if len(h.undo) != 2 {
		t.Fatalf("undo depth = %d, want 2", len(h.undo))
	}
	if h.undo[1].deleteKey {
		t.Fatalf("deleteKey = true, want false for cursor after start")
	}
}

func TestPositionAndOffset(t *testing.T) {
	b := New()
	b.BeginNotUndoable()
	b.SetText("ab\ncde\n")
	b.EndNotUndoable()

	line, col := b.Position(0)
	if line != 0 || col != 0 {
		t.Fatalf("Position(0) = %d,%d, want 0,0", line, col)
	}
	line, col = b.Position(4)
	if line != 1 || col != 1 {
		t.Fatalf("Position(4) = %d,%d, want 1,1", line, col)
	}
	line, col = b.Position(7)
	if line != 2 || col != 0 {
		t.Fatalf("Position(7) = %d,%d, want 2,0", line, col)
	}
	if got := b.Offset(1, 1); got != 4 {
		t.Fatalf("Offset(1,1) = %d, want 4", got)
	}
	if got := b.Offset(1, 99); got != 6 {
		t.Fatalf("Offset(1,99) = %d, want 6 (clamped to line end)", got)
	}
	if got := b.Offset(99, 0); got != b.Len() {
		t.Fatalf("Offset(99,0) = %d, want %d", got, b.Len())
	}
	if got := b.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
}

func TestWordCount(t *testing.T) {
	b := New()
	b.BeginNotUndoable()
	b.SetText("one two  three\nfour, five.")
	b.EndNotUndoable()
	if got := b.WordCount(); got != 5 {
		t.Fatalf("WordCount = %d, want 5", got)
	}
	punct := New()
	punct.BeginNotUndoable()
	punct.SetText("... -- !?")
	punct.EndNotUndoable()
	if got := punct.WordCount(); got != 0 {
		t.Fatalf("WordCount(punctuation) = %d, want 0", got)
	}
	empty := New()
	if got := empty.WordCount(); got != 0 {
		t.Fatalf("WordCount(empty) = %d, want 0", got)
	}
}
