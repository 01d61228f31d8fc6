package tnef

import "github.com/mkgrgis-go/ripmime/internal/defect"

// Result is everything this repo recovers from a TNEF stream: the
// attachment files, the sender-identity attributes SPEC_FULL.md's
// SUPPLEMENTED FEATURES section calls for, and the compressed-RTF body
// if present.
type Result struct {
	Attachments []Attachment
	Metadata    map[string]string
	RTFBody     []byte
}

// Extract decodes a TNEF stream, starting at its 4-byte signature and
// the 2-byte "key" that follows it in the on-wire format, into a Result.
// A signature mismatch or a stream too short to hold signature and key
// is fatal; anything else — a truncated attribute, an attachment missing
// its title — degrades
// gracefully, per spec §7's recovery policy.
func Extract(data []byte) (Result, error) {
	if !HasSignature(data) {
		return Result{}, defect.New(defect.InsaneCFBFHeader, "tnef: bad signature")
	}
	if len(data) < 6 {
		return Result{}, defect.New(defect.InsaneCFBFHeader, "tnef: truncated header")
	}
	// data[4:6] is the 16-bit "key", a legacy field this repo doesn't
	// need to validate to recover attachments.
	attrs := readAttributes(data[6:])

	res := Result{
		Attachments: collectAttachments(attrs),
		Metadata:    map[string]string{},
	}

	for _, a := range attrs {
		switch a.tag {
		case attOwner:
			res.Metadata["owner"] = decodeTNEFString(a.payload)
		case attSentFor:
			res.Metadata["sent_for"] = decodeTNEFString(a.payload)
		case attDelegate:
			res.Metadata["delegate"] = decodeTNEFString(a.payload)
		case attSubject:
			res.Metadata["subject"] = decodeTNEFString(a.payload)
		case attMessageClass:
			res.Metadata["message_class"] = decodeTNEFString(a.payload)
		case attMAPIProps:
			props := mapiProperties(a.payload)
			if rtf, ok := props[prRTFCompressed]; ok {
				res.RTFBody = rtf
			}
		}
	}

	return res, nil
}
