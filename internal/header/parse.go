package header

import (
	"io"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/bytesource"
	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// Parse reads one header block (spec §4.2) from src: folded lines up to
// the first blank line, or EOF if the message ends without one. outer, if
// non-nil, receives the top-level message fields (Subject/From/To/Date/
// Message-ID/first Received) this header block carries; pass nil when
// parsing a nested part's headers.
//
// Parse never retries on its own: spec §4.3 step 2's "long search" is a
// whole-header-block retry (re-parse from wherever the stream now sits
// after a bad block, not a rewind), so it is owned by the walker, which
// calls Parse again when Record.Sanity comes back 0 and long search is
// enabled, bounded by namesearchLimit — see internal/mimewalk.
//
// Grounded on mime_headers.c's MIMEH_read_headers: a line starting with
// space/tab continues the previous header (folding, already handled by
// bytesource.Source.ReadFoldedLine); anything else is a new "Name: Value"
// field, with unrecognized names simply ignored for Record.Sanity.
func Parse(src *bytesource.Source, outer *OuterHeader) (*Record, error) {
	rec := &Record{}
	seenContentType := false

	for {
		_, unfolded, err := src.ReadFoldedLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return rec, err
		}
		if unfolded == "" {
			break
		}

		name, value, ok := splitHeaderLine(unfolded)
		if !ok {
			rec.Defects.Add(defect.MissingSeparators)
			continue
		}
		applyHeaderField(rec, outer, name, value, &seenContentType)
	}

	return rec, nil
}

// splitHeaderLine splits "Name: Value" at the first colon. ok is false if
// line has no colon at all (not a valid header field).
func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}

// applyHeaderField dispatches one recognized/unrecognized header field
// into rec (and, for the top-level message fields, into outer). Sanity is
// incremented for every header name spec §4.2 lists as a recognized
// top-level field, matching mime_headers.c's is_RFC822_headers heuristic
// of counting how many well-known fields were seen.
func applyHeaderField(rec *Record, outer *OuterHeader, name, value string, seenContentType *bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "content-type":
		rec.Sanity++
		if *seenContentType {
			rec.MultipleCT = true
			rec.Defects.Add(defect.MultipleFieldOccurrence)
			return
		}
		*seenContentType = true
		ApplyContentType(rec, value)

	case "content-transfer-encoding":
		rec.Sanity++
		rec.CTE = ParseCTE(value)

	case "content-disposition":
		rec.Sanity++
		ApplyContentDisposition(rec, value)

	case "content-location":
		rec.Sanity++
		ApplyContentLocation(rec, value)

	case "subject":
		rec.Sanity++
		if outer != nil {
			outer.SetSubject(Transliterate(DecodeEncodedWords(value)))
		}

	case "from":
		rec.Sanity++
		if outer != nil && outer.From == "" {
			outer.From = Transliterate(DecodeEncodedWords(value))
		}

	case "to":
		rec.Sanity++
		if outer != nil && outer.To == "" {
			outer.To = Transliterate(DecodeEncodedWords(value))
		}

	case "date":
		rec.Sanity++
		if outer != nil && outer.Date == "" {
			outer.Date = value
		}

	case "message-id":
		rec.Sanity++
		if outer != nil && outer.MessageID == "" {
			outer.MessageID = value
		}

	case "received":
		rec.Sanity++
		if outer != nil && outer.FirstReceived == "" {
			outer.FirstReceived = value
		}
	}
}
