package buffer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Listener receives raw mutation notifications from a Buffer. Anything
// that edits text can drive a Listener the same way, which is how the
// undo recorder stays independent of the terminal shell.
type Listener interface {
	// OnInsert is called after text has been inserted at offset.
	OnInsert(offset int, text []rune)
	// OnDelete is called after [start, end) has been removed. cursor is
	// the cursor offset from just before the removal and text the
	// removed content.
	OnDelete(start, end, cursor int, text []rune)
}

// Buffer is one open document: flat rune content, a cursor offset, and
// the undo/redo history fed by its own mutations. Buffers are created per
// document and never share history; discarding the Buffer discards its
// stacks.
type Buffer struct {
	content  []rune
	cursor   int
	filename string

	history   *History
	listeners []Listener
}

// New returns an empty unnamed buffer with empty undo/redo stacks.
func New() *Buffer {
	b := &Buffer{history: NewHistory()}
	b.listeners = []Listener{b.history}
	return b
}

// AddListener attaches an extra mutation listener. The buffer's own
// history is always notified first.
func (b *Buffer) AddListener(l Listener) {
	b.listeners = append(b.listeners, l)
}

// Filename returns the file path backing this buffer, or "" for an
// unnamed buffer.
func (b *Buffer) Filename() string { return b.filename }

// SetFilename associates the buffer with a file path.
func (b *Buffer) SetFilename(name string) { b.filename = name }

// Text returns the buffer content as a string.
func (b *Buffer) Text() string { return string(b.content) }

// Len returns the content length in runes.
func (b *Buffer) Len() int { return len(b.content) }

// Cursor returns the cursor offset in runes.
func (b *Buffer) Cursor() int { return b.cursor }

// SetCursor places the cursor, clamped into [0, Len()].
func (b *Buffer) SetCursor(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.content) {
		offset = len(b.content)
	}
	b.cursor = offset
}

// Insert places text at offset and notifies listeners. The cursor does
// not move; callers position it explicitly. Offsets outside the content
// are a caller bug and panic rather than corrupting the undo history.
func (b *Buffer) Insert(offset int, text []rune) {
	if offset < 0 || offset > len(b.content) {
		panic(fmt.Sprintf("buffer: insert offset %d out of range 0..%d", offset, len(b.content)))
	}
	if len(text) == 0 {
		return
	}
	ins := append([]rune{}, text...)
	b.content = append(b.content[:offset], append(ins, b.content[offset:]...)...)
	for _, l := range b.listeners {
		l.OnInsert(offset, ins)
	}
}

// Delete removes [start, end), notifies listeners with the cursor offset
// from before the removal, and returns the removed text. Bad ranges
// panic, as with Insert.
func (b *Buffer) Delete(start, end int) []rune {
	if start < 0 || end < start || end > len(b.content) {
		panic(fmt.Sprintf("buffer: delete range [%d,%d) out of range 0..%d", start, end, len(b.content)))
	}
	if start == end {
		return nil
	}
	cursor := b.cursor
	removed := append([]rune{}, b.content[start:end]...)
	b.content = append(b.content[:start], b.content[end:]...)
	if b.cursor > len(b.content) {
		b.cursor = len(b.content)
	}
	for _, l := range b.listeners {
		l.OnDelete(start, end, cursor, removed)
	}
	return removed
}

// SetText replaces the whole content. It goes through Delete and Insert,
// so it is recorded unless wrapped in BeginNotUndoable/EndNotUndoable,
// which is what file loads do.
func (b *Buffer) SetText(text string) {
	if len(b.content) > 0 {
		b.Delete(0, len(b.content))
	}
	if text != "" {
		b.Insert(0, []rune(text))
	}
	b.SetCursor(0)
}

// CanUndo reports whether an undo step is available.
func (b *Buffer) CanUndo() bool { return b.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (b *Buffer) CanRedo() bool { return b.history.CanRedo() }

// Modified reports whether the buffer changed since the last save mark.
func (b *Buffer) Modified() bool { return b.history.Modified() }

// SetModified overrides the modified flag (cleared by the shell on save).
func (b *Buffer) SetModified(v bool) { b.history.SetModified(v) }

// BeginNotUndoable suppresses recording until EndNotUndoable.
func (b *Buffer) BeginNotUndoable() { b.history.BeginNotUndoable() }

// EndNotUndoable re-enables recording.
func (b *Buffer) EndNotUndoable() { b.history.EndNotUndoable() }

// Undo replays the inverse of the most recent record and moves it to the
// redo stack. It reports false, with no mutation, when there is nothing
// to undo. Replay mutations are never themselves recorded, and the whole
// step is atomic from the caller's side: the suppression flags are reset
// before Undo returns.
func (b *Buffer) Undo() bool {
	h := b.history
	if len(h.undo) == 0 {
		return false
	}
	h.beginReplay()
	rec := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, rec)
	switch rec.kind {
	case recordInsert:
		b.Delete(rec.offset, rec.offset+len(rec.text))
		b.SetCursor(rec.offset)
	case recordDelete:
		b.Insert(rec.start, rec.text)
		// The cursor returns to the side the deletion was made from.
		if rec.deleteKey {
			b.SetCursor(rec.start)
		} else {
			b.SetCursor(rec.end)
		}
	}
	h.endReplay()
	return true
}

// Redo replays the most recently undone record and moves it back to the
// undo stack. It reports false, with no mutation, when there is nothing
// to redo.
func (b *Buffer) Redo() bool {
	h := b.history
	if len(h.redo) == 0 {
		return false
	}
	h.beginReplay()
	rec := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, rec)
	switch rec.kind {
	case recordInsert:
		b.Insert(rec.offset, rec.text)
		b.SetCursor(rec.offset + len(rec.text))
	case recordDelete:
		b.Delete(rec.start, rec.end)
		b.SetCursor(rec.start)
	}
	h.endReplay()
	return true
}

// Lines splits the content on newlines. The result always has at least
// one (possibly empty) line.
func (b *Buffer) Lines() []string {
	return strings.Split(string(b.content), "\n")
}

// LineCount returns the number of logical lines.
func (b *Buffer) LineCount() int {
	return strings.Count(string(b.content), "\n") + 1
}

// Position converts a rune offset to a zero-based line/column pair.
func (b *Buffer) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.content) {
		offset = len(b.content)
	}
	for i := 0; i < offset; i++ {
		if b.content[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

// Offset converts a zero-based line/column pair back to a rune offset,
// clamping col to the line length and line to the buffer.
func (b *Buffer) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	off := 0
	for line > 0 && off < len(b.content) {
		if b.content[off] == '\n' {
			line--
		}
		off++
	}
	if line > 0 {
		return len(b.content)
	}
	for col > 0 && off < len(b.content) && b.content[off] != '\n' {
		off++
		col--
	}
	return off
}

// WordCount counts the words in the buffer using Unicode word
// segmentation. Segments without a letter or digit, such as punctuation,
// are not words.
func (b *Buffer) WordCount() int {
	count := 0
	state := -1
	var word string
	rest := string(b.content)
	for len(rest) > 0 {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		if isWord(word) {
			count++
		}
	}
	return count
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
