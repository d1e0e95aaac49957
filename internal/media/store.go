// Package media persists images fetched from chat transports so they can be
// handed to the AI collaborator by path.
package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes images into a single private directory.
type Store struct {
	dir      string
	maxFiles int // 0 keeps everything
	now      func() time.Time
}

// NewStore creates a Store rooted at dir, creating the directory with 0700.
// maxFiles > 0 keeps only the newest maxFiles images after each save.
func NewStore(dir string, maxFiles int) (*Store, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	abs, _ := filepath.Abs(dir)
	return &Store{dir: abs, maxFiles: maxFiles, now: time.Now}, nil
}

// Dir returns the absolute storage directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data as image_<timestamp>_<id><ext> and returns its path.
// An empty ext means ".jpg".
func (s *Store) Save(data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("media: empty image")
	}
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := fmt.Sprintf("image_%s_%s%s", s.now().Format("20060102_150405"), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("media: write %s: %w", name, err)
	}
	slog.Debug("media: saved image", "path", path, "bytes", len(data))

	if s.maxFiles > 0 {
		if err := s.prune(); err != nil {
			slog.Warn("media: prune failed", "err", err)
		}
	}
	return path, nil
}

// prune removes the oldest images beyond maxFiles.
func (s *Store) prune() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	type file struct {
		path string
		mod  time.Time
	}
	var files []file
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), "image_") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(s.dir, e.Name()), info.ModTime()})
	}
	if len(files) <= s.maxFiles {
		return nil
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod.Equal(files[j].mod) {
			return files[i].path < files[j].path
		}
		return files[i].mod.Before(files[j].mod)
	})
	for _, f := range files[:len(files)-s.maxFiles] {
		_ = os.Remove(f.path)
	}
	return nil
}

// EnsureDir creates dir with 0700 and refuses symlinks and non-directories.
func EnsureDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("empty dir")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return err
	}
	fi, err := os.Lstat(abs)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing symlink path: %s", abs)
	}
	if !fi.IsDir() {
		return fmt.Errorf("not a directory: %s", abs)
	}
	if fi.Mode().Perm() != 0o700 {
		if err := os.Chmod(abs, 0o700); err != nil {
			return fmt.Errorf("images dir has insecure perms (%#o) and chmod failed: %w", fi.Mode().Perm(), err)
		}
	}
	return nil
}
