package sink

import "fmt"

// ListOnlySink records metadata for every attachment without ever
// retaining its bytes (unpack_mode = list_only): Write is a no-op that
// only tallies size, matching spec §6's "emit metadata without bytes".
type ListOnlySink struct {
	Entries []Meta
	Defect  []DefectEntry
}

// listHandle tracks the running byte count for one Create/Write*/Close
// sequence.
type listHandle struct {
	name string
	size int64
}

// NewListOnlySink returns a ready-to-use ListOnlySink.
func NewListOnlySink() *ListOnlySink { return &ListOnlySink{} }

func (s *ListOnlySink) Create(name string) (Handle, error) {
	return &listHandle{name: name}, nil
}

func (s *ListOnlySink) Write(h Handle, p []byte) (int, error) {
	lh, ok := h.(*listHandle)
	if !ok {
		return 0, fmt.Errorf("sink: invalid handle type %T", h)
	}
	lh.size += int64(len(p))
	return len(p), nil
}

func (s *ListOnlySink) Close(h Handle, meta Meta) error {
	lh, ok := h.(*listHandle)
	if !ok {
		return fmt.Errorf("sink: invalid handle type %T", h)
	}
	if meta.Size == 0 {
		meta.Size = lh.size
	}
	if meta.Name == "" {
		meta.Name = lh.name
	}
	s.Entries = append(s.Entries, meta)
	return nil
}

func (s *ListOnlySink) RenameCollision(name string, attempt int) string {
	return fmt.Sprintf("%s.%d", name, attempt)
}

func (s *ListOnlySink) Link(existing, alias string) error {
	for _, m := range s.Entries {
		if m.Name == existing {
			m.Name = alias
			s.Entries = append(s.Entries, m)
			return nil
		}
	}
	return fmt.Errorf("sink: no such entry %q", existing)
}

func (s *ListOnlySink) DefectReport(entries []DefectEntry) { s.Defect = entries }
