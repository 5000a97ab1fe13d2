// Package download hands finished output documents to the user.
package download

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrExists is returned by DirSink when a file would be overwritten.
var ErrExists = errors.New("download: file already exists")

// File is one produced document.
type File struct {
	Name string
	Data []byte
}

// Sink receives produced documents, one call per file, in order.
type Sink interface {
	Deliver(ctx context.Context, name string, data []byte) error
}

// Discarder is a Sink that can take back what it has delivered so far.
// Delivery of a multi-file result calls Discard when a later file fails.
type Discarder interface {
	Sink
	Discard() error
}

// DirSink writes files into a directory.
type DirSink struct {
	Dir       string
	Overwrite bool

	mu      sync.Mutex
	written []string
}

// Deliver writes data to Dir/name through a temp file and rename, so a
// partially written file never appears under the final name.
func (s *DirSink) Deliver(_ context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	dst := filepath.Join(dir, name)
	if !s.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, dst)
		}
	}
	tmp, err := os.CreateTemp(dir, ".pdfmerger-*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", name, err)
	}
	s.mu.Lock()
	s.written = append(s.written, dst)
	s.mu.Unlock()
	return nil
}

// Written lists the paths delivered so far.
func (s *DirSink) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

// Discard removes every file this sink has written.
func (s *DirSink) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, p := range s.written {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.written = nil
	return errors.Join(errs...)
}

// MemorySink keeps files in memory.
type MemorySink struct {
	mu    sync.Mutex
	files []File
}

func (s *MemorySink) Deliver(_ context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, File{Name: name, Data: data})
	return nil
}

// Files returns what was delivered, in order.
func (s *MemorySink) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]File(nil), s.files...)
}

// Discard drops everything delivered so far.
func (s *MemorySink) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
	return nil
}

// WriteZip stores files, in order, in a zip archive written to w.
func WriteZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	now := time.Now()
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("download: invalid file name %q", name)
	}
	return nil
}
