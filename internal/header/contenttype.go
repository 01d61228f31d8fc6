package header

import (
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/defect"
	"github.com/mkgrgis-go/ripmime/internal/namepolicy"
)

// ApplyContentType parses a Content-Type header value into rec, per spec
// §4.2/§4.3: lowercased type/subtype, MediaKind classification, decoded
// parameters (RFC 2231 continuations already folded by ParseParamString),
// and the boundary= special case (an unbalanced opening quote is
// resolved by extractBoundary, grounded on MIMEH_parse_contenttype's
// separate boundary scan).
func ApplyContentType(rec *Record, raw string) {
	raw = DecodeEncodedWords(StripComments(raw, &rec.Defects))
	lead, params := ParseParamString(raw, &rec.Defects)

	rec.ContentType = strings.ToLower(strings.TrimSpace(lead))
	rec.MediaKind = ClassifyMediaType(rec.ContentType)
	rec.ContentParams = params

	if cs, ok := params["charset"]; ok {
		rec.Charset = cs
	}
	if n, ok := params["name"]; ok {
		if rec.Name == "" {
			rec.Name = n
		} else if n != rec.Name {
			rec.Defects.Add(defect.MultipleNames)
		}
	}

	if rec.MediaKind == KindMultipart {
		boundary, alt, multiple, unbalanced := extractBoundary(raw, params)
		rec.Boundary = boundary
		rec.BoundaryAlt = alt
		rec.MultipleBnd = multiple
		rec.UnbalancedBQ = unbalanced
		if multiple {
			rec.Defects.Add(defect.MultipleBoundaries)
		}
		if unbalanced {
			rec.Defects.Add(defect.UnbalancedBoundaryQuote)
		}
	}

	if namepolicy.HasMacResourceParams(params) {
		// preserved for the filename sanitizer's slash exception; the walker
		// reads this back off rec.ContentParams via namepolicy.HasMacResourceParams
		// at the point it sanitizes rec.Filename.
	}
}

// extractBoundary re-scans the raw Content-Type value for every
// "boundary=" occurrence (case-insensitive), independent of the generic
// parameter map, to detect duplicates and an unbalanced opening quote.
// On an unbalanced quote the single value kept is the unquoted text up to
// the next ';' (or the end), stored in both boundary and alt; no quoted
// second candidate is produced, and only one boundary is pushed.
func extractBoundary(raw string, params map[string]string) (boundary, alt string, multiple, unbalanced bool) {
	lower := strings.ToLower(raw)
	count := strings.Count(lower, "boundary=")
	multiple = count > 1

	boundary = params["boundary"]

	idx := strings.Index(lower, "boundary=")
	if idx < 0 {
		return boundary, "", multiple, false
	}
	valStart := idx + len("boundary=")
	if valStart < len(raw) && raw[valStart] == '"' {
		rest := raw[valStart+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			unbalanced = true
			// Candidate 1: everything to the next ';' (or end), unquoted.
			semi := strings.IndexByte(rest, ';')
			if semi < 0 {
				alt = strings.TrimSpace(rest)
			} else {
				alt = strings.TrimSpace(rest[:semi])
			}
			boundary = alt
		}
	}
	return boundary, alt, multiple, unbalanced
}

// ApplyContentDisposition parses a Content-Disposition header value into
// rec, per spec §4.2: disposition-type classification plus filename/name
// parameter extraction. A filename seen here takes priority over one
// recovered from Content-Type's name= parameter.
func ApplyContentDisposition(rec *Record, raw string) {
	raw = DecodeEncodedWords(StripComments(raw, &rec.Defects))
	lead, params := ParseParamString(raw, &rec.Defects)

	rec.Disposition = ParseDisposition(lead)
	rec.DispositionParams = params

	if fn, ok := params["filename"]; ok {
		rec.Filename = fn
	}
	if n, ok := params["name"]; ok {
		if rec.Name == "" {
			rec.Name = n
		} else if n != rec.Name {
			rec.Defects.Add(defect.MultipleNames)
		}
	}
}

// ApplyContentLocation records a Content-Location header's decoded value.
func ApplyContentLocation(rec *Record, raw string) {
	rec.ContentLoc = strings.TrimSpace(DecodeEncodedWords(raw))
}

// FallbackFilename resolves the effective filename for a part once all of
// its headers have been read: Content-Disposition's filename= wins, then
// the name= parameter (from Content-Type or Content-Disposition), applied
// to the already-populated Record fields.
func FallbackFilename(rec *Record) string {
	if rec.Filename != "" {
		return rec.Filename
	}
	return rec.Name
}
