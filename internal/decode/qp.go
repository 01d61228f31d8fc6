package decode

import (
	"bytes"
	"io"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
)

// DecodeQuotedPrintable streams a quoted-printable part body to w, per
// spec §4.4: "=XX" decodes the hex byte XX (case-insensitive); a trailing
// "=" soft line break produces no output; "=" followed by anything else
// passes through literally; every other byte passes through as-is. The
// line terminator is rewritten to canonical CRLF unless the source's
// detected convention is bare LF.
func DecodeQuotedPrintable(src *bytesource.Source, w io.Writer, bstack *boundary.Stack) (Result, error) {
	var acc bytes.Buffer
	var total int64
	broken := false

	flush := func() error {
		if acc.Len() == 0 {
			return nil
		}
		n, err := w.Write(acc.Bytes())
		total += int64(n)
		acc.Reset()
		return err
	}

	nl := []byte("\r\n")
	if src.Term() == bytesource.TermLF {
		nl = []byte("\n")
	}

	finish := func(term Termination, match string, isTerm bool) (Result, error) {
		if err := flush(); err != nil {
			return Result{}, err
		}
		if total == 0 {
			return zeroLengthResult(term, match, isTerm), nil
		}
		return Result{Termination: term, BoundaryMatch: match, IsTerminator: isTerm, BytesWritten: total, Broken: broken}, nil
	}

	for {
		line, err := src.ReadLine()
		if err != nil {
			if err == io.EOF {
				return finish(TerminationEOF, "", false)
			}
			return Result{}, err
		}

		trimmed := bytesource.TrimCRLF(line)

		if strings.HasPrefix(trimmed, "--") {
			kind, matched := bstack.Match(trimmed)
			if kind != boundary.NoMatch {
				return finish(TerminationBoundary, matched, kind == boundary.Terminator)
			}
		}

		softBreak := false
		i := 0
		for i < len(trimmed) {
			c := trimmed[i]
			if c != '=' {
				acc.WriteByte(c)
				i++
				continue
			}
			switch {
			case i == len(trimmed)-1:
				// "=" is the very last byte on the line: a soft break.
				softBreak = true
				i++
			case i+2 <= len(trimmed)-1:
				hi, okHi := hexVal(trimmed[i+1])
				lo, okLo := hexVal(trimmed[i+2])
				if okHi && okLo {
					acc.WriteByte(hi<<4 | lo)
					i += 3
				} else {
					acc.WriteByte('=')
					i++
				}
			default:
				broken = true
				acc.WriteByte('=')
				i++
			}
		}
		if !softBreak {
			acc.Write(nl)
		}

		if acc.Len() >= base64FlushThreshold {
			if err := flush(); err != nil {
				return Result{}, err
			}
		}
	}
}
