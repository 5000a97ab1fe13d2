package download

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSinkWritesAndRefusesOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := &DirSink{Dir: dir}
	if err := s.Deliver(context.Background(), "merged.pdf", []byte("one")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "merged.pdf"))
	if err != nil || string(b) != "one" {
		t.Fatalf("read back %q, %v", b, err)
	}
	err = s.Deliver(context.Background(), "merged.pdf", []byte("two"))
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	s.Overwrite = true
	if err := s.Deliver(context.Background(), "merged.pdf", []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "merged.pdf"))
	if string(b) != "two" {
		t.Errorf("content = %q", b)
	}
	if len(s.Written()) != 2 {
		t.Errorf("written = %v", s.Written())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("leftover temp files: %v", entries)
	}
}

func TestDirSinkDiscard(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.pdf")
	if err := os.WriteFile(keep, []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &DirSink{Dir: dir}
	for _, name := range []string{"a.pdf", "b.pdf"} {
		if err := s.Deliver(context.Background(), name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Discard(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "keep.pdf" {
		t.Errorf("after discard: %v", entries)
	}
	if len(s.Written()) != 0 {
		t.Errorf("written = %v", s.Written())
	}

	m := &MemorySink{}
	_ = m.Deliver(context.Background(), "a.pdf", []byte("a"))
	_ = m.Discard()
	if len(m.Files()) != 0 {
		t.Errorf("memory sink kept %v", m.Files())
	}
}

func TestSinksRejectPathNames(t *testing.T) {
	for _, name := range []string{"", "../x.pdf", "a/b.pdf", `a\b.pdf`} {
		if err := (&MemorySink{}).Deliver(context.Background(), name, nil); err == nil {
			t.Errorf("name %q accepted", name)
		}
	}
}

func TestWriteZipKeepsOrder(t *testing.T) {
	files := []File{
		{Name: "r_page_1.pdf", Data: []byte("1")},
		{Name: "r_page_2.pdf", Data: []byte("22")},
	}
	var buf bytes.Buffer
	if err := WriteZip(&buf, files); err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d", len(zr.File))
	}
	for i, zf := range zr.File {
		if zf.Name != files[i].Name {
			t.Errorf("entry %d = %s", i, zf.Name)
		}
		rc, _ := zf.Open()
		b, _ := io.ReadAll(rc)
		rc.Close()
		if !bytes.Equal(b, files[i].Data) {
			t.Errorf("entry %s content = %q", zf.Name, b)
		}
	}
}
