package bytesource

import (
	"io"
	"strings"
	"testing"
)

func TestReadLine(t *testing.T) {
	const eof = "EOF"
	for _, tc := range []struct {
		in   string
		want []string
	}{
		{"", []string{eof}},
		{"\n", []string{"\n", eof}},
		{"abc\r\ndef\r\n", []string{"abc\r\n", "def\r\n", eof}},
		{"abc\ndef", []string{"abc\n", "def", eof}},
	} {
		s := New(strings.NewReader(tc.in))
		var got []string
		for {
			ln, err := s.ReadLine()
			if err == io.EOF {
				got = append(got, eof)
				break
			} else if err != nil {
				t.Fatalf("ReadLine() error: %v", err)
			}
			got = append(got, ln)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("ReadLine() sequence = %q, want %q", got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ReadLine()[%d] = %q, want %q", i, got[i], tc.want[i])
			}
		}
	}
}

func TestUnreadThenReadLine(t *testing.T) {
	s := New(strings.NewReader("a\nb\n"))
	first, _ := s.ReadLine()
	if first != "a\n" {
		t.Fatalf("ReadLine() = %q, want a\\n", first)
	}
	s.Unread(first)
	again, _ := s.ReadLine()
	if again != "a\n" {
		t.Fatalf("ReadLine() after Unread = %q, want a\\n", again)
	}
	second, _ := s.ReadLine()
	if second != "b\n" {
		t.Fatalf("ReadLine() = %q, want b\\n", second)
	}
}

func TestTermDetection(t *testing.T) {
	s := New(strings.NewReader("a\r\nb\n"))
	s.ReadLine()
	if s.Term() != TermCRLF {
		t.Errorf("Term() = %v, want TermCRLF", s.Term())
	}

	s2 := New(strings.NewReader("a\nb\r\n"))
	s2.ReadLine()
	if s2.Term() != TermLF {
		t.Errorf("Term() = %v, want TermLF", s2.Term())
	}
}

func TestReadFoldedLine(t *testing.T) {
	s := New(strings.NewReader("Subject: hi\n there\nFrom: a\n"))
	folded, unfolded, err := s.ReadFoldedLine()
	if err != nil {
		t.Fatalf("ReadFoldedLine() error: %v", err)
	}
	if unfolded != "Subject: hi there" {
		t.Errorf("unfolded = %q, want %q", unfolded, "Subject: hi there")
	}
	if len(folded) != 2 {
		t.Fatalf("folded = %q, want 2 lines", folded)
	}

	folded2, unfolded2, err := s.ReadFoldedLine()
	if err != nil {
		t.Fatalf("ReadFoldedLine() error: %v", err)
	}
	if unfolded2 != "From: a" || len(folded2) != 1 {
		t.Errorf("second call = %q/%q, want From: a / 1 line", unfolded2, folded2)
	}
}

func TestReadDoubleCR(t *testing.T) {
	s := New(strings.NewReader("abc\r\rdef\n"))
	data, ok, err := s.ReadDoubleCR()
	if err != nil {
		t.Fatalf("ReadDoubleCR() error: %v", err)
	}
	if !ok {
		t.Fatal("ReadDoubleCR() ok = false, want true")
	}
	if string(data) != "abc\r\r" {
		t.Errorf("data = %q, want %q", data, "abc\r\r")
	}
}

func TestReadDoubleCRNoMatch(t *testing.T) {
	s := New(strings.NewReader("abc\n"))
	data, ok, err := s.ReadDoubleCR()
	if err != nil {
		t.Fatalf("ReadDoubleCR() error: %v", err)
	}
	if ok {
		t.Fatal("ReadDoubleCR() ok = true, want false")
	}
	if string(data) != "abc\n" {
		t.Errorf("data = %q, want %q", data, "abc\n")
	}
}

func TestSkipWhile(t *testing.T) {
	s := New(strings.NewReader("   abc"))
	if err := s.SkipWhile(func(b byte) bool { return b == ' ' }); err != nil {
		t.Fatalf("SkipWhile() error: %v", err)
	}
	rest, _ := s.ReadLine()
	if rest != "abc" {
		t.Errorf("rest = %q, want abc", rest)
	}
}
