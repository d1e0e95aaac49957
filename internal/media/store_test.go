package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewStore_CreatesPrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	s, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	info, err := os.Stat(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("expected 0700, got %04o", perm)
	}
}

func TestNewStore_RefusesSymlink(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	if err := os.Mkdir(target, 0o700); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := NewStore(link, 0); err == nil {
		t.Fatal("expected error for symlinked dir")
	}
}

func TestSave_NamesAndWrites(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	path, err := s.Save([]byte("jpegdata"), "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "image_20260102_030405_") || !strings.HasSuffix(base, ".jpg") {
		t.Errorf("unexpected file name %q", base)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpegdata" {
		t.Errorf("unexpected content %q %v", data, err)
	}

	path2, err := s.Save([]byte("png"), "png")
	if err != nil {
		t.Fatal(err)
	}
	if path2 == path || filepath.Ext(path2) != ".png" {
		t.Errorf("expected distinct .png path, got %q", path2)
	}
}

func TestSave_RejectsEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(nil, ".jpg"); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestSave_PrunesOldest(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 2)
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for i := 0; i < 4; i++ {
		p, err := s.Save([]byte{byte(i + 1)}, ".jpg")
		if err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(time.Duration(i-10) * time.Minute)
		_ = os.Chtimes(p, old, old)
		paths = append(paths, p)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 images kept, got %d", len(entries))
	}
	if _, err := os.Stat(paths[3]); err != nil {
		t.Errorf("newest image should survive: %v", err)
	}
}
