package decode

import (
	"bytes"
	"io"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// DecodePassthrough copies a 7bit/8bit/binary part body to w verbatim,
// watching bstack for the terminating line, per spec §4.4: "Passthrough,
// except that boundary matching continues to apply in text modes." The
// binary flag does not change the result: a matched boundary line closes
// the part and pops the boundary (Match already did that) and is reported
// as an ordinary TerminationBoundary result with a nil error, in binary
// and text mode alike. BoundaryCrashError builds the *CoreError for spec
// §7's boundary_crash condition; DecodePassthrough does not return it.
func DecodePassthrough(src *bytesource.Source, w io.Writer, bstack *boundary.Stack, binary bool) (Result, error) {
	var acc bytes.Buffer
	var total int64

	flush := func() error {
		if acc.Len() == 0 {
			return nil
		}
		n, err := w.Write(acc.Bytes())
		total += int64(n)
		acc.Reset()
		return err
	}

	for {
		line, err := src.ReadLine()
		if err != nil {
			if err == io.EOF {
				if ferr := flush(); ferr != nil {
					return Result{}, ferr
				}
				if total == 0 {
					return zeroLengthResult(TerminationEOF, "", false), nil
				}
				return Result{Termination: TerminationEOF, BytesWritten: total}, nil
			}
			return Result{}, err
		}

		trimmed := bytesource.TrimCRLF(line)
		if strings.HasPrefix(trimmed, "--") {
			kind, matched := bstack.Match(trimmed)
			if kind != boundary.NoMatch {
				if ferr := flush(); ferr != nil {
					return Result{}, ferr
				}
				if total == 0 {
					return zeroLengthResult(TerminationBoundary, matched, kind == boundary.Terminator), nil
				}
				return Result{
					Termination:   TerminationBoundary,
					BoundaryMatch: matched,
					IsTerminator:  kind == boundary.Terminator,
					BytesWritten:  total,
				}, nil
			}
		}

		acc.WriteString(line)
		if acc.Len() >= base64FlushThreshold {
			if err := flush(); err != nil {
				return Result{}, err
			}
		}
	}
}

// BoundaryCrashError builds the informational *defect.CoreError a caller
// may attach to its own error-kind bookkeeping after DecodePassthrough
// returns TerminationBoundary for a binary-mode part, per spec §7.
func BoundaryCrashError(boundaryName string) *defect.CoreError {
	return defect.New(defect.BoundaryCrash, "boundary \"--"+boundaryName+"\" found inside raw-binary body")
}
