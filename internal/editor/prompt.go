package editor

import (
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
)

func (e *Editor) startPrompt(kind promptKind, label string) {
	e.prompt = kind
	e.promptLabel = label
	e.promptInput = e.promptInput[:0]
	e.statusMessage = ""
}

func (e *Editor) cancelPrompt() {
	e.prompt = promptNone
	e.promptLabel = ""
	e.promptInput = e.promptInput[:0]
}

// handlePrompt routes keys while the minibuffer is active. Returns true
// when the editor should quit.
func (e *Editor) handlePrompt(ev *tcell.EventKey) bool {
	kind := e.prompt
	if kind == promptCloseConfirm || kind == promptQuitConfirm || kind == promptBackupRestore {
		if ev.Key() == tcell.KeyEscape {
			e.cancelPrompt()
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return false
		}
		switch ev.Rune() {
		case 'y', 'Y':
			e.cancelPrompt()
			switch kind {
			case promptQuitConfirm:
				return true
			case promptCloseConfirm:
				return e.closeCurrent()
			case promptBackupRestore:
				e.restoreBackup()
			}
		case 'n', 'N':
			e.cancelPrompt()
			if kind == promptBackupRestore {
				e.discardBackup()
			}
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		e.cancelPrompt()
	case tcell.KeyEnter:
		input := string(e.promptInput)
		e.cancelPrompt()
		e.finishPathPrompt(kind, input)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(e.promptInput) > 0 {
			e.promptInput = e.promptInput[:len(e.promptInput)-1]
		}
	case tcell.KeyRune:
		e.promptInput = append(e.promptInput, ev.Rune())
	}
	return false
}

func (e *Editor) finishPathPrompt(kind promptKind, input string) {
	if input == "" {
		return
	}
	path := expandPath(input)
	switch kind {
	case promptOpen:
		if err := e.OpenPath(path); err != nil {
			e.setStatus(err.Error())
		}
	case promptSaveAs:
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		v := e.view()
		v.buf.SetFilename(abs)
		if err := e.writeBuffer(v); err != nil {
			e.setStatus(err.Error())
			return
		}
		e.setStatus("saved " + v.title())
	}
}

func expandPath(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
