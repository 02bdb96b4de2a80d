package editor

import "github.com/mzaikin/goroom/internal/buffer"

const helpText = `# Help

A distraction-free place to write.

## Files

- Ctrl+N  new buffer
- Ctrl+O  open file
- Ctrl+S  save
- Alt+S   save as
- Ctrl+W  close buffer
- Ctrl+Q  quit

## Editing

- Ctrl+Z  undo
- Ctrl+Y  redo
- Ctrl+V  paste
- Ctrl+K  cut line

## View

- F1         toggle this help
- Alt+I      buffer info
- Ctrl+L     toggle line numbers
- Alt+Left   previous buffer
- Alt+Right  next buffer

Press F1 again to return to your text.
`

// toggleHelp switches to the help buffer, creating it on first use.
// Invoking it while the help buffer is active closes it.
func (e *Editor) toggleHelp() {
	if e.view().help {
		if e.closeCurrent() {
			e.newBuffer()
		}
		return
	}
	for i, v := range e.views {
		if v.help {
			e.current = i
			return
		}
	}
	v := &bufferView{
		buf:  buffer.New(),
		name: "Help",
		help: true,
	}
	v.buf.AddListener(tickListener{tick: &v.tick})
	v.buf.BeginNotUndoable()
	v.buf.SetText(helpText)
	v.buf.EndNotUndoable()
	v.buf.SetModified(false)
	v.buf.SetCursor(0)
	e.views = append(e.views, v)
	e.current = len(e.views) - 1
}
