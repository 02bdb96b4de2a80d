package buffer

type recordKind int

const (
	recordInsert recordKind = iota
	recordDelete
)

// record describes one insertion or deletion applied to the buffer. A
// record is built once from a mutation event and is never changed after
// being pushed, except while the recorder extends it during a merge.
type record struct {
	kind recordKind

	// Insert fields. length is always len(text).
	offset int
	text   []rune

	// Delete fields. text holds the removed content, [start, end) the
	// removed range. deleteKey is true when the cursor sat at or before
	// start at deletion time (forward delete), false for backspace.
	start     int
	end       int
	deleteKey bool

	// Decided at creation, never recomputed.
	mergeable bool
}

func newInsertRecord(offset int, text []rune) record {
	return record{
		kind:      recordInsert,
		offset:    offset,
		text:      text,
		mergeable: singleMergeableUnit(text),
	}
}

func newDeleteRecord(start, end, cursor int, text []rune) record {
	return record{
		kind:      recordDelete,
		start:     start,
		end:       end,
		text:      text,
		deleteKey: cursor <= start,
		mergeable: singleMergeableUnit(text),
	}
}

// singleMergeableUnit reports whether text is a single unit that may take
// part in a merge. Multi-unit edits, newlines and standalone spaces always
// stand alone so that undo stops at natural edit boundaries.
func singleMergeableUnit(text []rune) bool {
	if len(text) != 1 {
		return false
	}
	switch text[0] {
	case '\r', '\n', ' ':
		return false
	}
	return true
}

// whitespaceRun reports whether a record's text is a lone space or tab.
// Merging never crosses the boundary between whitespace and word
// characters in either direction.
func whitespaceRun(text []rune) bool {
	return len(text) == 1 && (text[0] == ' ' || text[0] == '\t')
}

// canMergeInsert reports whether cur can extend prev. Both must be
// individually mergeable, cur must append immediately after prev, and the
// whitespace classes must agree.
func canMergeInsert(prev, cur record) bool {
	if !prev.mergeable || !cur.mergeable {
		return false
	}
	if cur.offset != prev.offset+len(prev.text) {
		return false
	}
	if whitespaceRun(cur.text) != whitespaceRun(prev.text) {
		return false
	}
	return true
}

// canMergeDelete reports whether cur can extend prev. Forward-delete runs
// and backspace runs never blend, the ranges must touch (same start for
// repeated forward delete, or cur ending at prev's start for repeated
// backspace), and the whitespace classes must agree.
func canMergeDelete(prev, cur record) bool {
	if !prev.mergeable || !cur.mergeable {
		return false
	}
	if prev.deleteKey != cur.deleteKey {
		return false
	}
	if prev.start != cur.start && prev.start != cur.end {
		return false
	}
	if whitespaceRun(cur.text) != whitespaceRun(prev.text) {
		return false
	}
	return true
}
