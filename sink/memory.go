package sink

import (
	"bytes"
	"fmt"
	"sync"
)

// memEntry is one in-progress or finished in-memory attachment.
type memEntry struct {
	buf  bytes.Buffer
	meta Meta
}

// MemorySink buffers every attachment in memory, flushing nothing to
// disk (unpack_mode = in_memory). Files is exported so a caller (tests,
// or a CLI running with --unpack-mode=in_memory and wanting to inspect
// results afterward) can read back the finished bytes by name.
type MemorySink struct {
	mu     sync.Mutex
	Files  map[string][]byte
	Metas  map[string]Meta
	Defect []DefectEntry

	entries map[*memEntry]string
}

// NewMemorySink returns a ready-to-use MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		Files:   make(map[string][]byte),
		Metas:   make(map[string]Meta),
		entries: make(map[*memEntry]string),
	}
}

func (s *MemorySink) Create(name string) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &memEntry{}
	s.entries[e] = name
	return e, nil
}

func (s *MemorySink) Write(h Handle, p []byte) (int, error) {
	e, ok := h.(*memEntry)
	if !ok {
		return 0, fmt.Errorf("sink: invalid handle type %T", h)
	}
	return e.buf.Write(p)
}

func (s *MemorySink) Close(h Handle, meta Meta) error {
	e, ok := h.(*memEntry)
	if !ok {
		return fmt.Errorf("sink: invalid handle type %T", h)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.entries[e]
	delete(s.entries, e)
	s.Files[name] = e.buf.Bytes()
	s.Metas[name] = meta
	return nil
}

func (s *MemorySink) RenameCollision(name string, attempt int) string {
	return fmt.Sprintf("%s.%d", name, attempt)
}

func (s *MemorySink) Link(existing, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Files[existing]
	if !ok {
		return fmt.Errorf("sink: no such file %q", existing)
	}
	s.Files[alias] = data
	return nil
}

func (s *MemorySink) DefectReport(entries []DefectEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Defect = entries
}
