package vfs

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestMemFS_WriteRead(t *testing.T) {
	m := NewMemFS()
	if err := m.MkdirAll("/data/ckpt", 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := m.WriteFile("/data/ckpt/a.check", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	data, err := m.ReadFile("data/ckpt/a.check")
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile = %q, want %q", data, "hello")
	}

	info, err := m.Stat("/data/ckpt/a.check")
	if err != nil {
		t.Fatalf("Stat error = %v", err)
	}
	if info.Size() != 5 || info.IsDir() || info.Name() != "a.check" {
		t.Errorf("Stat = {size %d, dir %v, name %q}, want {5, false, a.check}", info.Size(), info.IsDir(), info.Name())
	}

	data[0] = 'j'
	again, _ := m.ReadFile("/data/ckpt/a.check")
	if string(again) != "hello" {
		t.Errorf("ReadFile after caller mutation = %q, want %q", again, "hello")
	}

	if !IsDir(m, "/data/ckpt") || IsDir(m, "/data/ckpt/a.check") {
		t.Error("IsDir() misreports directory and file")
	}
}

func TestMemFS_WriteWithoutParent(t *testing.T) {
	m := NewMemFS()
	err := m.WriteFile("/missing/a.check", []byte("x"), 0644)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("WriteFile error = %v, want ErrNotExist", err)
	}
}

func TestMemFS_ReadMissing(t *testing.T) {
	m := NewMemFS()
	if _, err := m.ReadFile("/nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want ErrNotExist", err)
	}
	if Exists(m, "/nope") {
		t.Error("Exists(/nope) = true")
	}
}

func TestMemFS_RenameReplaces(t *testing.T) {
	m := NewMemFS()
	_ = m.WriteFile("/a", []byte("new"), 0644)
	_ = m.WriteFile("/b", []byte("old"), 0644)

	if err := m.Rename("/a", "/b"); err != nil {
		t.Fatalf("Rename error = %v", err)
	}
	if Exists(m, "/a") {
		t.Error("source should be gone after Rename")
	}
	data, _ := m.ReadFile("/b")
	if string(data) != "new" {
		t.Errorf("ReadFile(/b) = %q, want %q", data, "new")
	}

	paths := m.Paths()
	if len(paths) != 1 || paths[0] != "/b" {
		t.Errorf("Paths() = %v, want [/b]", paths)
	}
}

func TestMemFS_Remove(t *testing.T) {
	m := NewMemFS()
	_ = m.MkdirAll("/d", 0755)
	_ = m.WriteFile("/d/f", []byte("x"), 0644)

	if err := m.Remove("/d"); err == nil {
		t.Error("Remove of non-empty dir should fail")
	}
	if err := m.Remove("/d/f"); err != nil {
		t.Errorf("Remove file error = %v", err)
	}
	if err := m.Remove("/d"); err != nil {
		t.Errorf("Remove empty dir error = %v", err)
	}
	if err := m.Remove("/d"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove again error = %v, want ErrNotExist", err)
	}
}

func TestOSFS_WriteRenameRead(t *testing.T) {
	o := NewOSFS()
	dir := t.TempDir()
	tmp := filepath.Join(dir, ".tmp")
	dest := filepath.Join(dir, "out.check")

	if err := o.WriteFile(tmp, []byte(`{"head":0}`), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	if err := o.Rename(tmp, dest); err != nil {
		t.Fatalf("Rename error = %v", err)
	}
	if Exists(o, tmp) {
		t.Error("temp file should be gone")
	}
	data, err := o.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}
	if string(data) != `{"head":0}` {
		t.Errorf("ReadFile = %q", data)
	}
	info, err := o.Stat(dest)
	if err != nil || info.Size() != int64(len(data)) {
		t.Errorf("Stat = %v, %v", info.Size(), err)
	}
}
