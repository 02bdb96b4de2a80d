package app

import (
	"os"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mzaikin/goroom/internal/config"
	"github.com/mzaikin/goroom/internal/editor"
	"github.com/mzaikin/goroom/internal/logger"
	"github.com/mzaikin/goroom/internal/session"
)

// App is the top-level runtime for goroom.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	debug := os.Getenv("GOROOM_DEBUG") != ""
	if err := logger.Init(debug); err != nil {
		return err
	}
	defer logger.Close()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	sm, err := session.NewManager()
	if err != nil {
		logger.Warn("session unavailable", "err", err)
		sm = nil
	}

	ed := editor.New(cfg)
	defer ed.Shutdown()

	for _, path := range a.args {
		if err := ed.OpenPath(path); err != nil {
			return err
		}
	}
	if len(a.args) == 0 && sm != nil && cfg.Editor.SessionRestore {
		restoreSession(ed, sm)
	}

	stopTicker := make(chan struct{})
	defer close(stopTicker)
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTicker:
				return
			case <-ticker.C:
				_ = s.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				saveSession(ed, sm)
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			ed.Tick(time.Now())
		}
		ed.Render(s)
	}
}

func restoreSession(ed *editor.Editor, sm *session.Manager) {
	for _, path := range sm.OpenFiles() {
		if err := ed.OpenPath(path); err != nil {
			logger.Warn("session restore skipped file", "path", path, "err", err)
			continue
		}
		if state, ok := sm.GetFileState(path); ok {
			ed.RestoreViewState(path, state.Cursor, state.ScrollY)
		}
	}
	if active := sm.ActiveFile(); active != "" {
		ed.SwitchTo(active)
	}
}

func saveSession(ed *editor.Editor, sm *session.Manager) {
	if sm == nil {
		return
	}
	paths := ed.OpenPaths()
	for _, path := range paths {
		if cursor, scroll, ok := ed.ViewState(path); ok {
			sm.SetFileState(path, session.FileState{Cursor: cursor, ScrollY: scroll})
		}
	}
	sm.SetOpenFiles(paths, ed.ActivePath())
	sm.Stop()
}
