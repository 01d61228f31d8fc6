// Package header implements the per-part header parser of spec §4.2:
// folded-line reading, RFC 2047 encoded-word decoding, RFC 2231 parameter
// continuation reassembly, and a parameter grammar that tolerates (and
// registers defects for) the malformations commonly seen in the wild.
package header

import "github.com/mkgrgis-go/ripmime/internal/defect"

// MediaKind is a coarse classification of a Content-Type's leading
// "type/subtype", tagged over the media types spec §3 calls out by name
// plus an "unknown" fallback. The exact type/subtype string is always
// retained in Record.ContentType regardless of MediaKind.
type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindTextPlain
	KindTextHTML
	KindMultipart
	KindMessageRFC822
	KindApplicationOctetStream
	KindApplicationMSTNEF
)

// ClassifyMediaType maps a lowercased "type/subtype" string to a MediaKind.
func ClassifyMediaType(mediaType string) MediaKind {
	switch mediaType {
	case "text/plain":
		return KindTextPlain
	case "text/html":
		return KindTextHTML
	case "message/rfc822":
		return KindMessageRFC822
	case "application/octet-stream":
		return KindApplicationOctetStream
	case "application/ms-tnef":
		return KindApplicationMSTNEF
	}
	if len(mediaType) >= 10 && mediaType[:10] == "multipart/" {
		return KindMultipart
	}
	return KindUnknown
}

// CTE is the Content-Transfer-Encoding variant, spec §3.
type CTE int

const (
	CTEUnspecified CTE = iota
	CTEBase64
	CTEQuotedPrintable
	CTE7Bit
	CTE8Bit
	CTEBinary
	CTEUUEncode
	CTEUnknown
)

func (c CTE) String() string {
	switch c {
	case CTEBase64:
		return "base64"
	case CTEQuotedPrintable:
		return "quoted-printable"
	case CTE7Bit:
		return "7bit"
	case CTE8Bit:
		return "8bit"
	case CTEBinary:
		return "binary"
	case CTEUUEncode:
		return "x-uuencode"
	case CTEUnknown:
		return "unknown"
	default:
		return "unspecified"
	}
}

// ParseCTE does a case-insensitive prefix match of val against the small
// closed set of recognized encodings, per spec §4.2.
func ParseCTE(val string) CTE {
	v := lowerTrim(val)
	switch {
	case hasPrefixFold(v, "base64"):
		return CTEBase64
	case hasPrefixFold(v, "quoted-printable"):
		return CTEQuotedPrintable
	case hasPrefixFold(v, "7bit"):
		return CTE7Bit
	case hasPrefixFold(v, "8bit"):
		return CTE8Bit
	case hasPrefixFold(v, "binary"):
		return CTEBinary
	case hasPrefixFold(v, "x-uuencode"), hasPrefixFold(v, "uuencode"), hasPrefixFold(v, "x-uue"):
		return CTEUUEncode
	case v == "":
		return CTEUnspecified
	default:
		return CTEUnknown
	}
}

// Disposition is the Content-Disposition variant, spec §3.
type Disposition int

const (
	DispositionUnspecified Disposition = iota
	DispositionInline
	DispositionAttachment
	DispositionFormData
	DispositionUnknown
)

// ParseDisposition classifies the leading disposition-type token.
func ParseDisposition(val string) Disposition {
	v := lowerTrim(firstToken(val))
	switch v {
	case "":
		return DispositionUnspecified
	case "inline":
		return DispositionInline
	case "attachment":
		return DispositionAttachment
	case "form-data":
		return DispositionFormData
	default:
		return DispositionUnknown
	}
}

// Record is the per-part header record described in spec §3: the mutable
// state the header parser fills in, later consumed (read-only) by the
// decoder the walker chooses.
type Record struct {
	ContentType   string // lowercased "type/subtype", e.g. "text/plain"
	MediaKind     MediaKind
	ContentParams map[string]string // Content-Type parameters, post RFC 2231/2047 decode

	CTE CTE

	Disposition       Disposition
	DispositionParams map[string]string

	Name         string // "name" parameter (Content-Type or Content-Disposition)
	Filename     string // "filename" parameter (Content-Disposition only; a uuencode frame's name may overwrite it)
	ContentLoc   string // Content-Location header value, if present
	Charset      string
	Boundary     string // boundary= parameter, only set for multipart/*
	MultipleCT   bool   // a second Content-Type header was seen and ignored
	MultipleBnd  bool   // a duplicate boundary= parameter was seen within one Content-Type
	UnbalancedBQ bool   // boundary's opening quote was unmatched (only the unquoted value is kept and pushed)
	BoundaryAlt  string // the unquoted value up to ';', if UnbalancedBQ; always equal to Boundary

	Depth int // recursion depth at which this part was entered

	Sanity int // count of recognized top-level headers seen (spec §4.2)

	Defects defect.Set
}

// OuterHeader holds the subset of header fields tracked for the top-level
// message (spec §3's "Header record (outer message)"). The first
// non-empty Subject wins and is preserved against clobbering by nested
// parts, which is why this is a separate, message-scoped type rather
// than living on every part's Record.
type OuterHeader struct {
	Subject       string
	From          string
	To            string
	Date          string
	MessageID     string
	FirstReceived string

	// TNEFOwner, TNEFSentFor, TNEFDelegate carry SPEC_FULL.md's
	// SUPPLEMENTED FEATURES item 5: the attOwner/attSentFor/attDelegate
	// TNEF attributes, surfaced the same "first one wins" way as
	// Subject/From/To rather than per-part state, since a message
	// carries at most one TNEF wrapper.
	TNEFOwner   string
	TNEFSentFor string
	TNEFDelegate string

	subjectSet bool
}

// SetTNEFIdentity records the TNEF sender-identity attributes, each only
// if not already set (first TNEF attachment in the message wins).
func (h *OuterHeader) SetTNEFIdentity(owner, sentFor, delegate string) {
	if h.TNEFOwner == "" {
		h.TNEFOwner = owner
	}
	if h.TNEFSentFor == "" {
		h.TNEFSentFor = sentFor
	}
	if h.TNEFDelegate == "" {
		h.TNEFDelegate = delegate
	}
}

// SetSubject stores subject only if one hasn't already been recorded.
func (h *OuterHeader) SetSubject(subject string) {
	if !h.subjectSet && subject != "" {
		h.Subject = subject
		h.subjectSet = true
	}
}
