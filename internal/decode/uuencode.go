package decode

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
)

// beginLineRE matches a uuencode frame header: "begin <octal-perms> <name>".
var beginLineRE = regexp.MustCompile(`^begin [0-7]{3,4} (.+)$`)

// uuChar maps one uuencode-alphabet byte to its 6-bit value. The
// alphabet is the 64 bytes from 0x20 to 0x5F, with the common backtick
// substitution for a literal space (some encoders emit '`' instead of a
// trailing ' ' to avoid trailing-whitespace stripping by mail transports).
func uuChar(c byte) byte {
	if c == '`' {
		c = ' '
	}
	if c < 0x20 {
		return 0
	}
	return (c - 0x20) & 0x3F
}

// uuDecodeLine decodes up to n bytes from a uuencode data line's payload
// (the part after the length byte), grounded on spec §4.4: "a length byte
// ... followed by base-64-adjacent quadruples that decode 3-at-a-time."
func uuDecodeLine(data string, n int) []byte {
	out := make([]byte, 0, n)
	for i := 0; i+4 <= len(data) && len(out) < n; i += 4 {
		b0, b1, b2, b3 := uuChar(data[i]), uuChar(data[i+1]), uuChar(data[i+2]), uuChar(data[i+3])
		out = append(out, b0<<2|b1>>4)
		if len(out) < n {
			out = append(out, (b1&0x0F)<<4|b2>>2)
		}
		if len(out) < n {
			out = append(out, (b2&0x03)<<6|b3)
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// uuLineLength decodes a uuencode data line's leading length byte,
// clipped to [0, 45] per spec §4.4.
func uuLineLength(c byte) int {
	n := int(uuChar(c))
	if n > 45 {
		n = 45
	}
	return n
}

// DecodeUUEncode streams a uuencode-framed part body to w, per spec §4.4:
// "begin <octal-perms> <name>\n ... data lines ... end\n". name returns
// the frame's declared filename (used by the walker to clobber the
// part's Record.Filename, per spec §9's resolved uuencoded-name-clobbering
// open question).
func DecodeUUEncode(src *bytesource.Source, w io.Writer, bstack *boundary.Stack) (result Result, name string, err error) {
	var total int64
	broken := false

	finish := func(term Termination, match string, isTerm bool) (Result, string, error) {
		if total == 0 {
			return zeroLengthResult(term, match, isTerm), name, nil
		}
		return Result{Termination: term, BoundaryMatch: match, IsTerminator: isTerm, BytesWritten: total, Broken: broken}, name, nil
	}

	foundBegin := false
	for !foundBegin {
		line, lerr := src.ReadLine()
		if lerr != nil {
			if lerr == io.EOF {
				return finish(TerminationEOF, "", false)
			}
			return Result{}, "", lerr
		}
		trimmed := bytesource.TrimCRLF(line)
		if strings.HasPrefix(trimmed, "--") {
			if kind, matched := bstack.Match(trimmed); kind != boundary.NoMatch {
				return finish(TerminationBoundary, matched, kind == boundary.Terminator)
			}
		}
		if m := beginLineRE.FindStringSubmatch(trimmed); m != nil {
			name = m[1]
			foundBegin = true
		}
	}

	for {
		line, lerr := src.ReadLine()
		if lerr != nil {
			if lerr == io.EOF {
				broken = true
				return finish(TerminationEOF, "", false)
			}
			return Result{}, name, lerr
		}
		trimmed := bytesource.TrimCRLF(line)

		if strings.HasPrefix(trimmed, "--") {
			if kind, matched := bstack.Match(trimmed); kind != boundary.NoMatch {
				return finish(TerminationBoundary, matched, kind == boundary.Terminator)
			}
		}
		if trimmed == "end" {
			break
		}
		if trimmed == "" {
			continue
		}

		n := uuLineLength(trimmed[0])
		if n == 0 {
			continue
		}
		decoded := uuDecodeLine(trimmed[1:], n)
		if _, werr := w.Write(decoded); werr != nil {
			return Result{}, name, werr
		}
		total += int64(len(decoded))
	}

	return finish(TerminationEOF, "", false)
}

// ScanEmbeddedUUEncode scans body (the already-decoded bytes of a 7bit/
// 8bit/raw text part) for one or more "begin ... / data / end" uuencode
// frames and calls emit once per frame found, per spec §4.3 step 5: "scan
// the produced file for uuencoded payloads and extract each as an
// additional attachment."
func ScanEmbeddedUUEncode(body []byte, emit func(name string, decoded []byte) error) error {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Text()
		m := beginLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		var out bytes.Buffer
		for sc.Scan() {
			dl := sc.Text()
			if dl == "end" {
				break
			}
			if dl == "" {
				continue
			}
			n := uuLineLength(dl[0])
			if n == 0 {
				continue
			}
			out.Write(uuDecodeLine(dl[1:], n))
		}
		if err := emit(name, out.Bytes()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
