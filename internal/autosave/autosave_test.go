package autosave

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupPath(t *testing.T) {
	got := BackupPath("/home/w/draft.md")
	if got != "/home/w/.#draft.md" {
		t.Fatalf("BackupPath = %q, want %q", got, "/home/w/.#draft.md")
	}
}

func TestWriteAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.md")

	if err := Write(path, "hello"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".#draft.md"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("backup contents = %q, want %q", data, "hello")
	}

	Remove(path)
	if _, err := os.Stat(filepath.Join(dir, ".#draft.md")); !os.IsNotExist(err) {
		t.Fatalf("backup still exists after Remove")
	}
}

func TestDue(t *testing.T) {
	m := NewManager(true, 1)
	start := time.Now()
	if m.Due(start.Add(30 * time.Second)) {
		t.Fatalf("Due fired before interval elapsed")
	}
	if !m.Due(start.Add(61 * time.Second)) {
		t.Fatalf("Due did not fire after interval")
	}
	if m.Due(start.Add(90 * time.Second)) {
		t.Fatalf("Due fired again before next interval")
	}

	off := NewManager(false, 1)
	if off.Due(start.Add(time.Hour)) {
		t.Fatalf("disabled manager reported Due")
	}
}
