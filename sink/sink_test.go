package sink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirectorySinkCreateWriteClose(t *testing.T) {
	s, err := NewDirectorySink(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirectorySink: %v", err)
	}
	h, err := s.Create("a.txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Write(h, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(h, Meta{Name: "a.txt", Size: 5}); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, "a.txt"))
	if err != nil {
		t.Fatalf("readFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}
}

func TestMemorySinkRoundTrip(t *testing.T) {
	s := NewMemorySink()
	h, err := s.Create("x.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Write(h, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(h, Meta{Name: "x.bin"}); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := s.Files["x.bin"]; len(got) != 3 {
		t.Errorf("Files[x.bin] = %v", got)
	}
}

func TestListOnlySinkNeverRetainsBytes(t *testing.T) {
	s := NewListOnlySink()
	h, err := s.Create("y.bin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Write(h, make([]byte, 100)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Close(h, Meta{ContentType: "application/octet-stream"}); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(s.Entries) != 1 {
		t.Fatalf("Entries = %v", s.Entries)
	}
	if s.Entries[0].Size != 100 {
		t.Errorf("Size = %d", s.Entries[0].Size)
	}
	if s.Entries[0].Name != "y.bin" {
		t.Errorf("Name = %q", s.Entries[0].Name)
	}
}
