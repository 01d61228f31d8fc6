package mimewalk

import (
	"strings"
	"testing"

	"github.com/mkgrgis-go/ripmime/config"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/defect"
	"github.com/mkgrgis-go/ripmime/sink"
)

func newTestContext() (*Context, *sink.MemorySink) {
	cfg := config.Default()
	s := sink.NewMemorySink()
	return NewContext(cfg, s), s
}

func TestWalkMessageSinglePlainTextPart(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"hello.txt\"\r\n" +
		"\r\n" +
		"hello world\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	data, ok := s.Files["hello.txt"]
	if !ok {
		t.Fatalf("no hello.txt in sink, got %v", keys(s.Files))
	}
	if string(data) != "hello world\r\n" {
		t.Errorf("data = %q", data)
	}
	if ctx.AttachmentCount != 1 {
		t.Errorf("AttachmentCount = %d, want 1", ctx.AttachmentCount)
	}
}

func TestWalkMessageMultipartTwoAttachments(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: multipart/mixed; boundary=\"B\"\r\n" +
		"\r\n" +
		"preamble junk\r\n" +
		"--B\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"a.txt\"\r\n" +
		"\r\n" +
		"first part\r\n" +
		"--B\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"Content-Disposition: attachment; filename=\"b.bin\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"aGVsbG8=\r\n" +
		"--B--\r\n" +
		"epilogue junk\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if len(s.Files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(s.Files), keys(s.Files))
	}
	if string(s.Files["a.txt"]) != "first part\r\n" {
		t.Errorf("a.txt = %q", s.Files["a.txt"])
	}
	if string(s.Files["b.bin"]) != "hello" {
		t.Errorf("b.bin = %q, want decoded base64 \"hello\"", s.Files["b.bin"])
	}
}

func TestWalkMessageNestedMultipart(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: multipart/mixed; boundary=\"OUTER\"\r\n" +
		"\r\n" +
		"--OUTER\r\n" +
		"Content-Type: multipart/alternative; boundary=\"INNER\"\r\n" +
		"\r\n" +
		"--INNER\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"plain.txt\"\r\n" +
		"\r\n" +
		"plain body\r\n" +
		"--INNER--\r\n" +
		"--OUTER\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"sibling.txt\"\r\n" +
		"\r\n" +
		"sibling body\r\n" +
		"--OUTER--\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if string(s.Files["plain.txt"]) != "plain body\r\n" {
		t.Errorf("plain.txt = %q", s.Files["plain.txt"])
	}
	if string(s.Files["sibling.txt"]) != "sibling body\r\n" {
		t.Errorf("sibling.txt = %q", s.Files["sibling.txt"])
	}
}

func TestWalkMessageUUEncodedInsidePlainText(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: text/plain\r\n" +
		"\r\n" +
		"some preceding text\r\n" +
		"begin 644 hello.bin\r\n" +
		"%:&5L;&\\`\r\n" +
		"`\r\n" +
		"end\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if _, ok := s.Files["hello.bin"]; !ok {
		t.Fatalf("expected hello.bin extracted from embedded uuencode, got %v", keys(s.Files))
	}
}

func TestWalkMessageHeaderLongSearchRecoversFromGarbagePreamble(t *testing.T) {
	ctx, s := newTestContext()
	ctx.Cfg.HeaderLongSearch = true
	msg := "This is not a header block at all, just banner text\r\n" +
		"\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Disposition: attachment; filename=\"recovered.txt\"\r\n" +
		"\r\n" +
		"body\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if _, ok := s.Files["recovered.txt"]; !ok {
		t.Fatalf("expected recovered.txt after long search retry, got %v", keys(s.Files))
	}
}

func TestWalkMessageBoundaryForgeryEmitsZeroLengthAttachment(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: multipart/mixed; boundary=\"B\"\r\n" +
		"\r\n" +
		"--B--\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if len(s.Files) != 1 {
		t.Fatalf("got %d files, want 1 zero-length attachment: %v", len(s.Files), keys(s.Files))
	}
	for name, data := range s.Files {
		if len(data) != 0 {
			t.Errorf("file %q = %q, want zero-length", name, data)
		}
	}
	if ctx.AttachmentCount != 1 {
		t.Errorf("AttachmentCount = %d, want 1", ctx.AttachmentCount)
	}
}

func TestWalkMessageBoundaryForgeryEOFWithoutAnyBoundary(t *testing.T) {
	ctx, s := newTestContext()
	msg := "Content-Type: multipart/mixed; boundary=\"B\"\r\n" +
		"\r\n" +
		"no boundary ever appears here\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if ctx.AttachmentCount != 1 {
		t.Fatalf("AttachmentCount = %d, want 1 zero-length attachment, got files %v", ctx.AttachmentCount, keys(s.Files))
	}
}

func TestWalkMessageMultipleNameExploitRegistersDefectAndAliases(t *testing.T) {
	ctx, s := newTestContext()
	ctx.Cfg.MultipleFilenames = true
	msg := "Content-Type: application/octet-stream; name=\"a.txt\"\r\n" +
		"Content-Disposition: attachment; filename=\"b.txt\"\r\n" +
		"Content-Location: http://example.com/path/c.txt\r\n" +
		"\r\n" +
		"payload\r\n"

	if err := ctx.WalkMessage(bytesource.New(strings.NewReader(msg))); err != nil {
		t.Fatalf("WalkMessage: %v", err)
	}
	if string(s.Files["b.txt"]) != "payload\r\n" {
		t.Errorf("primary b.txt = %q", s.Files["b.txt"])
	}
	if string(s.Files["a.txt"]) != "payload\r\n" {
		t.Errorf("alias a.txt = %q, want aliased content", s.Files["a.txt"])
	}
	if string(s.Files["c.txt"]) != "payload\r\n" {
		t.Errorf("alias c.txt = %q, want aliased content", s.Files["c.txt"])
	}
	if got := ctx.Defects.Count(defect.MultipleFilenames); got != 1 {
		t.Errorf("MultipleFilenames defect count = %d, want 1", got)
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
