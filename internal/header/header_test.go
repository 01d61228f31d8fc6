package header

import (
	"strings"
	"testing"

	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/defect"
)

func TestParseBasicMultipart(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=\"frontier\"\r\n" +
		"Content-Transfer-Encoding: 7bit\r\n" +
		"Subject: hello\r\n" +
		"\r\n"
	src := bytesource.New(strings.NewReader(raw))
	outer := &OuterHeader{}
	rec, err := Parse(src, outer)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ContentType != "multipart/mixed" {
		t.Errorf("ContentType = %q", rec.ContentType)
	}
	if rec.MediaKind != KindMultipart {
		t.Errorf("MediaKind = %v", rec.MediaKind)
	}
	if rec.Boundary != "frontier" {
		t.Errorf("Boundary = %q", rec.Boundary)
	}
	if rec.CTE != CTE7Bit {
		t.Errorf("CTE = %v", rec.CTE)
	}
	if rec.Sanity != 3 {
		t.Errorf("Sanity = %d, want 3", rec.Sanity)
	}
	if outer.Subject != "hello" {
		t.Errorf("outer.Subject = %q", outer.Subject)
	}
}

func TestParseEncodedWordSubject(t *testing.T) {
	raw := "Subject: =?utf-8?B?aGVsbG8gd29ybGQ=?=\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	outer := &OuterHeader{}
	if _, err := Parse(src, outer); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if outer.Subject != "hello world" {
		t.Errorf("outer.Subject = %q", outer.Subject)
	}
}

func TestParseFoldedContentType(t *testing.T) {
	raw := "Content-Type: multipart/mixed;\r\n\tboundary=\"frontier\"\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Boundary != "frontier" {
		t.Errorf("Boundary = %q", rec.Boundary)
	}
}

func TestParseMultipleContentType(t *testing.T) {
	raw := "Content-Type: text/plain\r\nContent-Type: text/html\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !rec.MultipleCT {
		t.Error("expected MultipleCT")
	}
	if rec.ContentType != "text/plain" {
		t.Errorf("first Content-Type should win, got %q", rec.ContentType)
	}
	if rec.Defects.Count(defect.MultipleFieldOccurrence) != 1 {
		t.Errorf("expected one MultipleFieldOccurrence defect, got %d", rec.Defects.Count(defect.MultipleFieldOccurrence))
	}
}

func TestParseUnbalancedBoundaryQuote(t *testing.T) {
	raw := "Content-Type: multipart/mixed; boundary=\"frontier; more\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !rec.UnbalancedBQ {
		t.Error("expected UnbalancedBQ")
	}
	if rec.Defects.Count(defect.UnbalancedBoundaryQuote) != 1 {
		t.Error("expected UnbalancedBoundaryQuote defect")
	}
}

func TestParseContentDispositionFilename(t *testing.T) {
	raw := "Content-Disposition: attachment; filename=\"report.txt\"\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Disposition != DispositionAttachment {
		t.Errorf("Disposition = %v", rec.Disposition)
	}
	if rec.Filename != "report.txt" {
		t.Errorf("Filename = %q", rec.Filename)
	}
}

func TestParseRFC2231ContinuationFilename(t *testing.T) {
	raw := "Content-Disposition: attachment;\r\n" +
		" filename*0*=utf-8''report%20; filename*1=\"part2.txt\"\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Filename != "report part2.txt" {
		t.Errorf("Filename = %q", rec.Filename)
	}
}

func TestParseNoBlankLineEOF(t *testing.T) {
	raw := "Content-Type: text/plain\r\n"
	src := bytesource.New(strings.NewReader(raw))
	rec, err := Parse(src, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ContentType != "text/plain" {
		t.Errorf("ContentType = %q", rec.ContentType)
	}
}

func TestFallbackFilenameUsesNameWhenNoFilename(t *testing.T) {
	rec := &Record{Name: "fallback.bin"}
	if got := FallbackFilename(rec); got != "fallback.bin" {
		t.Errorf("FallbackFilename = %q", got)
	}
}

func TestDecodeEncodedWordsKeepsNonASCII(t *testing.T) {
	// "=?UTF-8?B?UmVzdW3DqQ==?=" is "Resumé" (Resume with an
	// acute e) base64-encoded as an RFC 2047 word. DecodeEncodedWords on
	// its own must keep the accent intact (spec §4.1 needs the real
	// decoded characters for a filename); only Transliterate strips it.
	got := DecodeEncodedWords("=?UTF-8?B?UmVzdW3DqQ==?=")
	if got != "Resumé" {
		t.Errorf("DecodeEncodedWords = %q, want %q", got, "Resumé")
	}
	if got := Transliterate(got); got != "Resume" {
		t.Errorf("Transliterate = %q, want %q", got, "Resume")
	}
}

func TestDecodeEncodedWordsLeavesPlainASCIIAlone(t *testing.T) {
	if got := DecodeEncodedWords("plain subject line"); got != "plain subject line" {
		t.Errorf("DecodeEncodedWords = %q", got)
	}
}

func TestDecodeEncodedWordsUnknownCharsetPassesThrough(t *testing.T) {
	raw := "=?x-made-up-charset?Q?hello?="
	if got := DecodeEncodedWords(raw); got != raw {
		t.Errorf("DecodeEncodedWords = %q, want input copied through unchanged", got)
	}
}

func TestApplyHeaderFieldSubjectIsTransliterated(t *testing.T) {
	raw := "Subject: =?UTF-8?B?TsOpZQ==?=\r\n\r\n"
	src := bytesource.New(strings.NewReader(raw))
	outer := &OuterHeader{}
	if _, err := Parse(src, outer); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if outer.Subject != "Nee" {
		t.Errorf("Subject = %q, want %q", outer.Subject, "Nee")
	}
}

func TestApplyContentDispositionPreservesNonASCIIFilename(t *testing.T) {
	// "=?UTF-8?B?44GC44KK44GM44Go44GG?=" decodes to "ありがとう"
	// (Japanese "thank you"). spec §4.1 requires this to survive
	// RFC 2047 decoding intact, to be substituted "_" byte-for-byte by
	// namepolicy.Sanitize later - not stripped away here.
	raw := `attachment; filename="=?UTF-8?B?44GC44KK44GM44Go44GG?=.txt"`
	rec := &Record{}
	ApplyContentDisposition(rec, raw)
	if rec.Filename != "ありがとう.txt" {
		t.Errorf("Filename = %q, want %q", rec.Filename, "ありがとう.txt")
	}
}
