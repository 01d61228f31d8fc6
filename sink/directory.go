package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirectorySink streams each attachment straight to a file inside Dir
// (unpack_mode = to_directory), the common case and the one closest to
// the teacher's own in-place rewrite (which also wrote straight to disk
// via os.Create, just to a single path rather than a directory of them).
type DirectorySink struct {
	Dir string

	open map[*os.File]string
}

// NewDirectorySink returns a DirectorySink rooted at dir, creating dir if
// it doesn't already exist.
func NewDirectorySink(dir string) (*DirectorySink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirectorySink{Dir: dir, open: make(map[*os.File]string)}, nil
}

func (s *DirectorySink) Create(name string) (Handle, error) {
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	s.open[f] = name
	return f, nil
}

func (s *DirectorySink) Write(h Handle, p []byte) (int, error) {
	f, ok := h.(*os.File)
	if !ok {
		return 0, fmt.Errorf("sink: invalid handle type %T", h)
	}
	return f.Write(p)
}

func (s *DirectorySink) Close(h Handle, meta Meta) error {
	f, ok := h.(*os.File)
	if !ok {
		return fmt.Errorf("sink: invalid handle type %T", h)
	}
	delete(s.open, f)
	return f.Close()
}

func (s *DirectorySink) RenameCollision(name string, attempt int) string {
	return fmt.Sprintf("%s.%d", name, attempt)
}

func (s *DirectorySink) Link(existing, alias string) error {
	src := filepath.Join(s.Dir, existing)
	dst := filepath.Join(s.Dir, alias)
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	// Cross-device or unsupported: fall back to a content copy.
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (s *DirectorySink) DefectReport(entries []DefectEntry) {}
