// Package decode implements the content-transfer decoders of spec §4.4:
// streaming base64, quoted-printable, 7bit/8bit/binary passthrough, and
// uuencoded, each reading lines off a bytesource.Source, writing decoded
// bytes to an io.Writer, and watching the active boundary.Stack for the
// line that ends the part.
//
// Grounded on the teacher's rewrite loop (message.go's copyBody), which
// reads a part body line-by-line watching for the next boundary; this
// package generalizes that single passthrough loop into the five
// encodings spec §4.4 names, each with its own termination quirks.
package decode

import "github.com/mkgrgis-go/ripmime/internal/defect"

// Termination classifies why a decoder stopped reading.
type Termination int

const (
	// TerminationBoundary means a line matched an entry on the boundary
	// stack (Separator or Terminator — see Result.IsTerminator).
	TerminationBoundary Termination = iota
	// TerminationEOF means the underlying source was exhausted (or, for
	// base64, that two consecutive blank lines were seen) with no
	// boundary match.
	TerminationEOF
	// TerminationZeroLength means no payload bytes were ever written.
	TerminationZeroLength
)

// Result is returned by every decoder in this package.
type Result struct {
	Termination   Termination
	BoundaryMatch string // set when Termination == TerminationBoundary
	IsTerminator  bool   // true if BoundaryMatch's delimiter was "--<b>--"

	BytesWritten int64

	// Broken records spec §7's decoder_input_stream_broken: the source
	// ran out mid-group (an incomplete base64 quad, an unterminated
	// quoted-printable escape, an incomplete uuencode data line). This is
	// not a Go error: the partial output already written is retained and
	// the part is still considered complete, per spec.
	Broken bool
}

// zeroLengthResult builds the Result for a decoder that wrote nothing.
func zeroLengthResult(term Termination, match string, isTerm bool) Result {
	if term == TerminationBoundary {
		return Result{Termination: TerminationZeroLength, BoundaryMatch: match, IsTerminator: isTerm}
	}
	return Result{Termination: TerminationZeroLength}
}

// brokenStreamError is a convenience constructor mirroring spec §7's
// decoder_input_stream_broken as a *defect.CoreError. It currently has no
// callers: the decoders report a broken stream only via Result.Broken.
func brokenStreamError(msg string) *defect.CoreError {
	return defect.New(defect.DecoderInputStreamBroken, msg)
}
