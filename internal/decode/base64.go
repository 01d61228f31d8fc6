package decode

import (
	"bytes"
	"io"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/boundary"
	"github.com/mkgrgis-go/ripmime/internal/bytesource"
)

// base64Table maps a byte to its 6-bit value, or invalidBase64 if the byte
// isn't part of the base64 alphabet. Grounded on spec §4.4: "Invalid
// characters (decoded to the sentinel value 128 in the 256-entry table)
// are silently skipped."
var base64Table = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = invalidBase64
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = byte(i)
	}
	return t
}()

const invalidBase64 = 128

// base64FlushThreshold is the ≥4 KiB output accumulator spec §4.4 and §5's
// "Memory bounds" call for, so the sink is called in large chunks rather
// than byte-at-a-time.
const base64FlushThreshold = 4096

// base64Decoder holds the streaming state for one DecodeBase64 call.
type base64Decoder struct {
	w   io.Writer
	acc bytes.Buffer

	quad     [4]byte
	qn       int
	padCount int
	total    int64
}

func (d *base64Decoder) flush() error {
	if d.acc.Len() == 0 {
		return nil
	}
	n, err := d.w.Write(d.acc.Bytes())
	d.total += int64(n)
	d.acc.Reset()
	return err
}

func (d *base64Decoder) emitGroup() {
	q := d.quad
	b0 := q[0]<<2 | q[1]>>4
	b1 := (q[1]&0x0F)<<4 | q[2]>>2
	b2 := (q[2]&0x03)<<6 | q[3]
	switch d.padCount {
	case 0:
		d.acc.WriteByte(b0)
		d.acc.WriteByte(b1)
		d.acc.WriteByte(b2)
	case 1:
		d.acc.WriteByte(b0)
		d.acc.WriteByte(b1)
	case 2:
		d.acc.WriteByte(b0)
	}
	d.quad = [4]byte{}
	d.qn, d.padCount = 0, 0
}

// processChar feeds one input byte into the decoder, flushing the
// accumulator if it has grown past base64FlushThreshold.
func (d *base64Decoder) processChar(c byte) error {
	if c == '=' {
		if d.qn < 4 {
			d.quad[d.qn] = 0
			d.qn++
			d.padCount++
		}
	} else {
		v := base64Table[c]
		if v == invalidBase64 {
			return nil
		}
		if d.qn < 4 {
			d.quad[d.qn] = v
			d.qn++
		}
	}
	if d.qn == 4 {
		d.emitGroup()
		if d.acc.Len() >= base64FlushThreshold {
			return d.flush()
		}
	}
	return nil
}

func (d *base64Decoder) processLine(trimmed string) error {
	for i := 0; i < len(trimmed); i++ {
		if err := d.processChar(trimmed[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBase64 streams a base64-encoded part body to w, watching bstack for
// the line that ends the part, per spec §4.4: bytes accumulate four at a
// time into a 24-bit group; '=' pads close the group early; a "--"-led
// line that isn't a boundary match is treated as base64 data in its own
// right; two consecutive blank lines also terminate, to tolerate
// producers that insert spurious separators.
func DecodeBase64(src *bytesource.Source, w io.Writer, bstack *boundary.Stack) (Result, error) {
	d := &base64Decoder{w: w}
	blankRun := 0
	broken := false

	finish := func(term Termination, match string, isTerm bool) (Result, error) {
		if d.qn != 0 {
			broken = true
		}
		if err := d.flush(); err != nil {
			return Result{}, err
		}
		if d.total == 0 {
			return zeroLengthResult(term, match, isTerm), nil
		}
		return Result{Termination: term, BoundaryMatch: match, IsTerminator: isTerm, BytesWritten: d.total, Broken: broken}, nil
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

		if strings.TrimSpace(trimmed) == "" {
			blankRun++
			if blankRun >= 2 {
				return finish(TerminationEOF, "", false)
			}
			continue
		}
		blankRun = 0

		if err := d.processLine(trimmed); err != nil {
			return Result{}, err
		}
	}
}
