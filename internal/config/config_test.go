package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("GOROOM_CONFIG_HOME", "/tmp/goroom-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/goroom-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/goroom-config")
	}

	t.Setenv("GOROOM_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/goroom" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/goroom")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GOROOM_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.TextWidth != 80 {
		t.Fatalf("TextWidth = %d, want 80", cfg.Editor.TextWidth)
	}
	if !cfg.Editor.HighlightMarkdown {
		t.Fatalf("HighlightMarkdown = false, want true by default")
	}
	if cfg.Keymap["ctrl+z"] != "undo" {
		t.Fatalf("keymap ctrl+z = %q, want %q", cfg.Keymap["ctrl+z"], "undo")
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GOROOM_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "paper.toml"), `
foreground = "#111111"
background = "#222222"
markdown-heading = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
text-width = 66
tab-width = 8
line-numbers = true
highlight-markdown = false

[theme]
theme = "paper"
status-background = "#123456"

[keymap]
"ctrl+u" = "undo"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.TextWidth != 66 {
		t.Fatalf("TextWidth = %d, want 66", cfg.Editor.TextWidth)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Fatalf("TabWidth = %d, want 8", cfg.Editor.TabWidth)
	}
	if !cfg.Editor.LineNumbers {
		t.Fatalf("LineNumbers = false, want true")
	}
	if cfg.Editor.HighlightMarkdown {
		t.Fatalf("HighlightMarkdown = true, want false from config")
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.MarkdownHeading != "#333333" {
		t.Fatalf("MarkdownHeading = %q, want %q", cfg.Theme.MarkdownHeading, "#333333")
	}
	if cfg.Theme.StatusBackground != "#123456" {
		t.Fatalf("StatusBackground = %q, want %q", cfg.Theme.StatusBackground, "#123456")
	}
	if cfg.Keymap["ctrl+u"] != "undo" {
		t.Fatalf("keymap ctrl+u = %q, want %q", cfg.Keymap["ctrl+u"], "undo")
	}
	if cfg.Keymap["ctrl+s"] != "save" {
		t.Fatalf("keymap ctrl+s = %q, want %q", cfg.Keymap["ctrl+s"], "save")
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GOROOM_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}
