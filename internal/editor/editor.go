package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/mzaikin/goroom/internal/autosave"
	"github.com/mzaikin/goroom/internal/buffer"
	"github.com/mzaikin/goroom/internal/config"
	"github.com/mzaikin/goroom/internal/logger"
	"github.com/mzaikin/goroom/internal/markdown"
)

const (
	actionNewBuffer         = "new_buffer"
	actionOpenFile          = "open_file"
	actionSave              = "save"
	actionSaveAs            = "save_as"
	actionCloseBuffer       = "close_buffer"
	actionQuit              = "quit"
	actionUndo              = "undo"
	actionRedo              = "redo"
	actionPaste             = "paste"
	actionCutLine           = "cut_line"
	actionToggleLineNumbers = "toggle_line_numbers"
	actionHelp              = "help"
	actionBufferInfo        = "buffer_info"
	actionPrevBuffer        = "prev_buffer"
	actionNextBuffer        = "next_buffer"
	actionMoveLeft          = "move_left"
	actionMoveRight         = "move_right"
	actionMoveUp            = "move_up"
	actionMoveDown          = "move_down"
	actionLineStart         = "line_start"
	actionLineEnd           = "line_end"
	actionFileStart         = "file_start"
	actionFileEnd           = "file_end"
	actionPageUp            = "page_up"
	actionPageDown          = "page_down"
	actionBackspace         = "backspace"
	actionDeleteChar        = "delete_char"
	actionNewline           = "newline"
	actionIndent            = "indent"
)

const statusTimeout = 4 * time.Second

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptSaveAs
	promptCloseConfirm
	promptQuitConfirm
	promptBackupRestore
)

// bufferView couples a text buffer with its presentation state.
type bufferView struct {
	buf    *buffer.Buffer
	name   string // shown when the buffer has no file
	scroll int    // first visible visual row
	help   bool   // read-only help text
	tick   uint64
}

func (v *bufferView) title() string {
	if fn := v.buf.Filename(); fn != "" {
		return filepath.Base(fn)
	}
	return v.name
}

// tickListener bumps a change counter on every buffer mutation,
// including undo and redo replays.
type tickListener struct {
	tick *uint64
}

func (t tickListener) OnInsert(offset int, text []rune)             { *t.tick++ }
func (t tickListener) OnDelete(start, end, cursor int, text []rune) { *t.tick++ }

type Editor struct {
	keymap      map[string]string
	views       []*bufferView
	current     int
	untitledSeq int

	textWidth   int
	padding     int
	tabWidth    int
	lineNumbers bool

	styleMain       tcell.Style
	styleBorder     tcell.Style
	styleStatus     tcell.Style
	styleLineNumber tcell.Style
	mdStyles        map[string]tcell.Style

	highlighter *markdown.Highlighter
	hlView      *bufferView
	hlTick      uint64

	statusMessage string
	statusUntil   time.Time

	prompt      promptKind
	promptLabel string
	promptInput []rune

	backups *autosave.Manager

	// Set during Render; movement uses it between frames.
	innerWidth int
	viewRows   int
}

func New(cfg config.Config) *Editor {
	keymap := make(map[string]string, len(cfg.Keymap))
	for k, v := range cfg.Keymap {
		keymap[k] = v
	}
	tabWidth := cfg.Editor.TabWidth
	if tabWidth < 1 {
		tabWidth = 1
	}
	textWidth := cfg.Editor.TextWidth
	if textWidth < 20 {
		textWidth = 20
	}
	padding := cfg.Editor.Padding
	if padding < 0 {
		padding = 0
	}

	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	borderFg := parseColor(cfg.Theme.BorderForeground, tcell.ColorGray)
	statusFg := parseColor(cfg.Theme.StatusForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatusBackground, tcell.ColorGray)
	lineNumberFg := parseColor(cfg.Theme.LineNumberForeground, tcell.ColorGray)

	main := tcell.StyleDefault.Foreground(mainFg).Background(mainBg)
	mdStyles := map[string]tcell.Style{
		"heading":  main.Foreground(parseColor(cfg.Theme.MarkdownHeading, mainFg)).Bold(true),
		"emphasis": main.Foreground(parseColor(cfg.Theme.MarkdownEmphasis, mainFg)).Italic(true),
		"strong":   main.Foreground(parseColor(cfg.Theme.MarkdownStrong, mainFg)).Bold(true),
		"code":     main.Foreground(parseColor(cfg.Theme.MarkdownCode, mainFg)),
		"quote":    main.Foreground(parseColor(cfg.Theme.MarkdownQuote, mainFg)),
		"link":     main.Foreground(parseColor(cfg.Theme.MarkdownLink, mainFg)).Underline(true),
	}

	var hl *markdown.Highlighter
	if cfg.Editor.HighlightMarkdown {
		var err error
		hl, err = markdown.New()
		if err != nil {
			logger.Warn("markdown highlighter unavailable", "err", err)
			hl = nil
		}
	}

	e := &Editor{
		keymap:          keymap,
		textWidth:       textWidth,
		padding:         padding,
		tabWidth:        tabWidth,
		lineNumbers:     cfg.Editor.LineNumbers,
		styleMain:       main,
		styleBorder:     tcell.StyleDefault.Foreground(borderFg).Background(mainBg),
		styleStatus:     tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		styleLineNumber: tcell.StyleDefault.Foreground(lineNumberFg).Background(mainBg),
		mdStyles:        mdStyles,
		highlighter:     hl,
		backups:         autosave.NewManager(cfg.Editor.Autosave, cfg.Editor.AutosaveIntervalMin),
		innerWidth:      textWidth,
		viewRows:        24,
	}
	e.newBuffer()
	return e
}

func (e *Editor) newBuffer() *bufferView {
	e.untitledSeq++
	v := &bufferView{
		buf:  buffer.New(),
		name: fmt.Sprintf("Untitled %d", e.untitledSeq),
	}
	v.buf.AddListener(tickListener{tick: &v.tick})
	e.views = append(e.views, v)
	e.current = len(e.views) - 1
	return v
}

func (e *Editor) view() *bufferView    { return e.views[e.current] }
func (e *Editor) buf() *buffer.Buffer  { return e.views[e.current].buf }
func (e *Editor) BufferCount() int     { return len(e.views) }
func (e *Editor) CurrentIndex() int    { return e.current }
func (e *Editor) Current() *buffer.Buffer { return e.buf() }

// OpenPath loads a file into a new buffer, or switches to it if it is
// already open. A missing file opens an empty buffer carrying the name,
// so new documents can be started by path.
func (e *Editor) OpenPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	for i, v := range e.views {
		if v.buf.Filename() == abs {
			e.current = i
			return nil
		}
	}

	v := e.view()
	// Reuse an empty untitled buffer instead of stacking them up.
	if v.buf.Filename() != "" || v.buf.Len() > 0 || v.buf.CanUndo() || v.help {
		v = e.newBuffer()
	}
	v.buf.SetFilename(abs)

	data, err := os.ReadFile(abs)
	switch {
	case err == nil:
		v.buf.BeginNotUndoable()
		v.buf.SetText(normalizeNewlines(string(data)))
		v.buf.EndNotUndoable()
		v.buf.SetModified(false)
		v.buf.SetCursor(0)
		v.scroll = 0
		logger.Info("opened file", "path", abs, "bytes", len(data))
	case os.IsNotExist(err):
		// A new document; the file appears on first save.
	default:
		return err
	}
	e.checkBackup(abs)
	return nil
}

// checkBackup offers to restore a leftover autosave backup, left behind
// when a previous run did not shut down cleanly.
func (e *Editor) checkBackup(path string) {
	if e.prompt != promptNone {
		return
	}
	if _, err := os.Stat(autosave.BackupPath(path)); err != nil {
		return
	}
	e.startPrompt(promptBackupRestore, "Autosave backup found; restore it? (y/n) ")
}

// restoreBackup loads the backup contents into the active buffer. The
// buffer stays modified so the restored text is not silently lost.
func (e *Editor) restoreBackup() {
	v := e.view()
	path := v.buf.Filename()
	if path == "" {
		return
	}
	data, err := os.ReadFile(autosave.BackupPath(path))
	if err != nil {
		e.setStatus("backup unreadable")
		logger.Warn("backup restore failed", "path", path, "err", err)
		return
	}
	v.buf.BeginNotUndoable()
	v.buf.SetText(normalizeNewlines(string(data)))
	v.buf.EndNotUndoable()
	v.buf.SetModified(true)
	v.buf.SetCursor(0)
	v.scroll = 0
	e.setStatus("restored from backup")
}

func (e *Editor) discardBackup() {
	if path := e.buf().Filename(); path != "" {
		autosave.Remove(path)
	}
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Save writes the current buffer to its file, prompting for a name if
// it has none.
func (e *Editor) Save() {
	v := e.view()
	if v.help {
		e.setStatus("help buffer cannot be saved")
		return
	}
	if v.buf.Filename() == "" {
		e.startPrompt(promptSaveAs, "Save as: ")
		return
	}
	if err := e.writeBuffer(v); err != nil {
		e.setStatus(err.Error())
		return
	}
	e.setStatus("saved " + v.title())
}

func (e *Editor) writeBuffer(v *bufferView) error {
	path := v.buf.Filename()
	if path == "" {
		return errors.New("no file name")
	}
	if err := os.WriteFile(path, []byte(v.buf.Text()), 0o644); err != nil {
		return err
	}
	v.buf.SetModified(false)
	autosave.Remove(path)
	logger.Info("saved file", "path", path, "chars", v.buf.Len())
	return nil
}

// CloseCurrent closes the active buffer, prompting when it has unsaved
// changes. It reports true when the last buffer was closed, which quits
// the editor.
func (e *Editor) CloseCurrent() bool {
	v := e.view()
	if v.buf.Modified() && !v.help {
		e.startPrompt(promptCloseConfirm, "Close without saving? (y/n) ")
		return false
	}
	return e.closeCurrent()
}

// closeCurrent drops the active buffer and reports true when no buffers
// remain.
func (e *Editor) closeCurrent() bool {
	v := e.view()
	if path := v.buf.Filename(); path != "" {
		autosave.Remove(path)
	}
	e.views = append(e.views[:e.current], e.views[e.current+1:]...)
	if len(e.views) == 0 {
		return true
	}
	if e.current >= len(e.views) {
		e.current = len(e.views) - 1
	}
	return false
}

func (e *Editor) nextBuffer() {
	if len(e.views) > 1 {
		e.current = (e.current + 1) % len(e.views)
	}
}

func (e *Editor) prevBuffer() {
	if len(e.views) > 1 {
		e.current = (e.current - 1 + len(e.views)) % len(e.views)
	}
}

// HandleKey processes one key event. It returns true when the editor
// should quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.prompt != promptNone {
		return e.handlePrompt(ev)
	}
	if e.statusMessage != "" {
		e.statusMessage = ""
	}
	key := keyString(ev)
	if name, ok := e.keymap[key]; ok {
		return e.execAction(name)
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		e.insertRune(ev.Rune())
	}
	return false
}

func (e *Editor) execAction(name string) bool {
	switch name {
	case actionNewBuffer:
		e.newBuffer()
	case actionOpenFile:
		e.startPrompt(promptOpen, "Open file: ")
	case actionSave:
		e.Save()
	case actionSaveAs:
		if e.view().help {
			e.setStatus("help buffer cannot be saved")
			break
		}
		e.startPrompt(promptSaveAs, "Save as: ")
	case actionCloseBuffer:
		return e.CloseCurrent()
	case actionQuit:
		if e.anyModified() {
			e.startPrompt(promptQuitConfirm, "Unsaved changes; quit anyway? (y/n) ")
			return false
		}
		return true
	case actionUndo:
		e.Undo()
	case actionRedo:
		e.Redo()
	case actionPaste:
		e.paste()
	case actionCutLine:
		e.cutLine()
	case actionToggleLineNumbers:
		e.lineNumbers = !e.lineNumbers
		if e.lineNumbers {
			e.setStatus("line numbers on")
		} else {
			e.setStatus("line numbers off")
		}
	case actionHelp:
		e.toggleHelp()
	case actionBufferInfo:
		e.showBufferInfo()
	case actionPrevBuffer:
		e.prevBuffer()
	case actionNextBuffer:
		e.nextBuffer()
	case actionMoveLeft:
		e.moveLeft()
	case actionMoveRight:
		e.moveRight()
	case actionMoveUp:
		e.moveVertical(-1)
	case actionMoveDown:
		e.moveVertical(1)
	case actionLineStart:
		e.moveLineStart()
	case actionLineEnd:
		e.moveLineEnd()
	case actionFileStart:
		e.buf().SetCursor(0)
	case actionFileEnd:
		e.buf().SetCursor(e.buf().Len())
	case actionPageUp:
		for i := 0; i < e.viewRows-1; i++ {
			e.moveVertical(-1)
		}
	case actionPageDown:
		for i := 0; i < e.viewRows-1; i++ {
			e.moveVertical(1)
		}
	case actionBackspace:
		e.backspace()
	case actionDeleteChar:
		e.deleteChar()
	case actionNewline:
		e.insertRune('\n')
	case actionIndent:
		e.indent()
	default:
		logger.Warn("unknown action", "action", name)
	}
	return false
}

// Undo reverts the most recent edit of the active buffer.
func (e *Editor) Undo() {
	if !e.buf().Undo() {
		e.setStatus("nothing to undo")
	}
}

// Redo reapplies the most recently undone edit.
func (e *Editor) Redo() {
	if !e.buf().Redo() {
		e.setStatus("nothing to redo")
	}
}

func (e *Editor) insertRune(r rune) {
	if e.view().help {
		return
	}
	b := e.buf()
	at := b.Cursor()
	b.Insert(at, []rune{r})
	b.SetCursor(at + 1)
}

func (e *Editor) insertText(text string) {
	if e.view().help || text == "" {
		return
	}
	b := e.buf()
	at := b.Cursor()
	runes := []rune(normalizeNewlines(text))
	b.Insert(at, runes)
	b.SetCursor(at + len(runes))
}

// indent inserts spaces up to the next tab stop, per the tab-width
// option.
func (e *Editor) indent() {
	if e.view().help {
		return
	}
	b := e.buf()
	_, col := b.Position(b.Cursor())
	n := e.tabWidth - col%e.tabWidth
	at := b.Cursor()
	b.Insert(at, []rune(strings.Repeat(" ", n)))
	b.SetCursor(at + n)
}

func (e *Editor) backspace() {
	if e.view().help {
		return
	}
	b := e.buf()
	at := b.Cursor()
	if at == 0 {
		return
	}
	b.Delete(at-1, at)
	b.SetCursor(at - 1)
}

func (e *Editor) deleteChar() {
	if e.view().help {
		return
	}
	b := e.buf()
	at := b.Cursor()
	if at >= b.Len() {
		return
	}
	b.Delete(at, at+1)
	b.SetCursor(at)
}

func (e *Editor) cutLine() {
	if e.view().help {
		return
	}
	b := e.buf()
	line, _ := b.Position(b.Cursor())
	start := b.Offset(line, 0)
	end := b.Offset(line+1, 0)
	if end == start {
		return
	}
	removed := b.Delete(start, end)
	b.SetCursor(start)
	if err := clipboard.WriteAll(string(removed)); err != nil {
		logger.Warn("clipboard write failed", "err", err)
	}
	e.setStatus("line cut")
}

func (e *Editor) paste() {
	if e.view().help {
		return
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		e.setStatus("clipboard unavailable")
		logger.Warn("clipboard read failed", "err", err)
		return
	}
	e.insertText(text)
}

func (e *Editor) moveLeft() {
	b := e.buf()
	if at := b.Cursor(); at > 0 {
		b.SetCursor(at - 1)
	}
}

func (e *Editor) moveRight() {
	b := e.buf()
	if at := b.Cursor(); at < b.Len() {
		b.SetCursor(at + 1)
	}
}

func (e *Editor) moveLineStart() {
	b := e.buf()
	line, _ := b.Position(b.Cursor())
	b.SetCursor(b.Offset(line, 0))
}

func (e *Editor) moveLineEnd() {
	b := e.buf()
	line, _ := b.Position(b.Cursor())
	lines := b.Lines()
	b.SetCursor(b.Offset(line, len([]rune(lines[line]))))
}

// moveVertical moves the cursor one visual row up or down, following
// the word wrap the renderer applies.
func (e *Editor) moveVertical(dir int) {
	b := e.buf()
	rows := e.layoutRows()
	idx := e.cursorRow(rows)
	target := idx + dir
	if target < 0 || target >= len(rows) {
		return
	}
	cur := rows[idx]
	tgt := rows[target]
	col := b.Cursor() - b.Offset(cur.line, cur.start)
	if col > tgt.end-tgt.start {
		col = tgt.end - tgt.start
	}
	b.SetCursor(b.Offset(tgt.line, tgt.start+col))
}

func (e *Editor) anyModified() bool {
	for _, v := range e.views {
		if v.buf.Modified() && !v.help {
			return true
		}
	}
	return false
}

func (e *Editor) showBufferInfo() {
	b := e.buf()
	line, col := b.Position(b.Cursor())
	e.setStatus(fmt.Sprintf("%s: %d words, %d lines, %d chars, line %d col %d",
		e.view().title(), b.WordCount(), b.LineCount(), b.Len(), line+1, col+1))
}

func (e *Editor) setStatus(msg string) {
	e.statusMessage = msg
	e.statusUntil = time.Now().Add(statusTimeout)
}

// StatusMessage returns the transient status text, if still current.
func (e *Editor) StatusMessage() string {
	return e.statusMessage
}

// Tick expires stale status messages and runs autosave backups. The
// application calls it from its interrupt timer.
func (e *Editor) Tick(now time.Time) {
	if e.statusMessage != "" && now.After(e.statusUntil) {
		e.statusMessage = ""
	}
	if e.backups.Due(now) {
		for _, v := range e.views {
			path := v.buf.Filename()
			if path == "" || !v.buf.Modified() || v.help {
				continue
			}
			if err := autosave.Write(path, v.buf.Text()); err != nil {
				logger.Warn("autosave failed", "path", path, "err", err)
			}
		}
	}
}

// Shutdown removes backup files for every open buffer.
func (e *Editor) Shutdown() {
	for _, v := range e.views {
		if path := v.buf.Filename(); path != "" {
			autosave.Remove(path)
		}
	}
}

// OpenPaths lists the file-backed buffers in order, for session saving.
func (e *Editor) OpenPaths() []string {
	var paths []string
	for _, v := range e.views {
		if path := v.buf.Filename(); path != "" && !v.help {
			paths = append(paths, path)
		}
	}
	return paths
}

// ActivePath returns the file of the active buffer, or "".
func (e *Editor) ActivePath() string {
	if e.view().help {
		return ""
	}
	return e.buf().Filename()
}

// ViewState reports cursor and scroll for a file-backed buffer.
func (e *Editor) ViewState(path string) (cursor, scroll int, ok bool) {
	for _, v := range e.views {
		if v.buf.Filename() == path {
			return v.buf.Cursor(), v.scroll, true
		}
	}
	return 0, 0, false
}

// RestoreViewState positions the cursor and scroll of an open buffer.
func (e *Editor) RestoreViewState(path string, cursor, scroll int) {
	for _, v := range e.views {
		if v.buf.Filename() == path {
			v.buf.SetCursor(cursor)
			if scroll < 0 {
				scroll = 0
			}
			v.scroll = scroll
			return
		}
	}
}

// SwitchTo activates the buffer holding path, if open.
func (e *Editor) SwitchTo(path string) {
	for i, v := range e.views {
		if v.buf.Filename() == path {
			e.current = i
			return
		}
	}
}
