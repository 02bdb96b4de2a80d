package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Keymap map[string]string

type EditorOptions struct {
	TextWidth           int  `toml:"text-width"`
	Padding             int  `toml:"padding"`
	TabWidth            int  `toml:"tab-width"`
	LineNumbers         bool `toml:"line-numbers"`
	Autosave            bool `toml:"autosave"`
	AutosaveIntervalMin int  `toml:"autosave-interval-min"`
	HighlightMarkdown   bool `toml:"highlight-markdown"`
	SessionRestore      bool `toml:"session-restore"`
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	BorderForeground     string `toml:"border-foreground"`
	StatusForeground     string `toml:"status-foreground"`
	StatusBackground     string `toml:"status-background"`
	LineNumberForeground string `toml:"line-number-foreground"`
	MarkdownHeading      string `toml:"markdown-heading"`
	MarkdownEmphasis     string `toml:"markdown-emphasis"`
	MarkdownStrong       string `toml:"markdown-strong"`
	MarkdownCode         string `toml:"markdown-code"`
	MarkdownQuote        string `toml:"markdown-quote"`
	MarkdownLink         string `toml:"markdown-link"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TextWidth:           80,
			Padding:             2,
			TabWidth:            4,
			LineNumbers:         false,
			Autosave:            false,
			AutosaveIntervalMin: 2,
			HighlightMarkdown:   true,
			SessionRestore:      true,
		},
		Theme: Theme{
			Theme:                "",
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			BorderForeground:     "#3E4B59",
			StatusForeground:     "#B3B1AD",
			StatusBackground:     "#0F1419",
			LineNumberForeground: "#3E4B59",
			MarkdownHeading:      "#FFA759",
			MarkdownEmphasis:     "#BAE67E",
			MarkdownStrong:       "#FFD173",
			MarkdownCode:         "#5CCFE6",
			MarkdownQuote:        "#5C6773",
			MarkdownLink:         "#73D0FF",
		},
		Keymap: Keymap{
			"ctrl+n":    "new_buffer",
			"ctrl+o":    "open_file",
			"ctrl+s":    "save",
			"alt+s":     "save_as",
			"ctrl+w":    "close_buffer",
			"ctrl+q":    "quit",
			"ctrl+z":    "undo",
			"ctrl+y":    "redo",
			"ctrl+v":    "paste",
			"ctrl+k":    "cut_line",
			"ctrl+l":    "toggle_line_numbers",
			"f1":        "help",
			"alt+i":     "buffer_info",
			"alt+left":  "prev_buffer",
			"alt+right": "next_buffer",
			"ctrl+pgup": "prev_buffer",
			"ctrl+pgdn": "next_buffer",
			"left":      "move_left",
			"right":     "move_right",
			"up":        "move_up",
			"down":      "move_down",
			"home":      "line_start",
			"end":       "line_end",
			"ctrl+home": "file_start",
			"ctrl+end":  "file_end",
			"pgup":      "page_up",
			"pgdn":      "page_down",
			"backspace": "backspace",
			"del":       "delete_char",
			"enter":     "newline",
			"tab":       "indent",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.TextWidth > 0 {
		cfg.Editor.TextWidth = userCfg.Editor.TextWidth
	}
	if userCfg.Editor.Padding > 0 {
		cfg.Editor.Padding = userCfg.Editor.Padding
	}
	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.LineNumbers {
		cfg.Editor.LineNumbers = true
	}
	if userCfg.Editor.Autosave {
		cfg.Editor.Autosave = true
	}
	if userCfg.Editor.AutosaveIntervalMin > 0 {
		cfg.Editor.AutosaveIntervalMin = userCfg.Editor.AutosaveIntervalMin
	}
	cfg.Editor.HighlightMarkdown = decodedBool(data, "highlight-markdown", cfg.Editor.HighlightMarkdown)
	cfg.Editor.SessionRestore = decodedBool(data, "session-restore", cfg.Editor.SessionRestore)
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	if userCfg.Keymap != nil {
		for k, v := range userCfg.Keymap {
			cfg.Keymap[k] = v
		}
	}

	return cfg, nil
}

// decodedBool distinguishes "key absent" from "key set to false", which
// a plain struct decode cannot.
func decodedBool(data []byte, key string, def bool) bool {
	var raw struct {
		Editor map[string]any `toml:"editor"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return def
	}
	if v, ok := raw.Editor[key].(bool); ok {
		return v
	}
	return def
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.BorderForeground != "" {
		dst.BorderForeground = src.BorderForeground
	}
	if src.StatusForeground != "" {
		dst.StatusForeground = src.StatusForeground
	}
	if src.StatusBackground != "" {
		dst.StatusBackground = src.StatusBackground
	}
	if src.LineNumberForeground != "" {
		dst.LineNumberForeground = src.LineNumberForeground
	}
	if src.MarkdownHeading != "" {
		dst.MarkdownHeading = src.MarkdownHeading
	}
	if src.MarkdownEmphasis != "" {
		dst.MarkdownEmphasis = src.MarkdownEmphasis
	}
	if src.MarkdownStrong != "" {
		dst.MarkdownStrong = src.MarkdownStrong
	}
	if src.MarkdownCode != "" {
		dst.MarkdownCode = src.MarkdownCode
	}
	if src.MarkdownQuote != "" {
		dst.MarkdownQuote = src.MarkdownQuote
	}
	if src.MarkdownLink != "" {
		dst.MarkdownLink = src.MarkdownLink
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("GOROOM_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "goroom"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "goroom"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
