package header

import "github.com/mkgrgis-go/ripmime/internal/defect"

// StripComments removes balanced "(...)" comments from a header value,
// respecting double-quoted regions (a '(' inside quotes is not a comment
// start). An unterminated comment leaves the line unchanged and registers
// a defect (spec §4.2: "unterminated comments leave the line unchanged
// and register a defect"); the closed defect set has no dedicated kind
// for it, so an unterminated comment is reported as
// MissingSeparators, matching ripMIME's practice of folding unusual
// syntax errors into its nearest existing defect bucket rather than
// growing the enum (mime_headers.c's MIMEH_strip_comments has no
// dedicated defect of its own either — it just leaves the string as-is).
func StripComments(val string, d *defect.Set) string {
	var out []byte
	inQuotes := false
	depth := 0
	start := -1 // index in val where the outermost '(' was seen, for rollback

	for i := 0; i < len(val); i++ {
		c := val[i]
		switch {
		case c == '"' && depth == 0:
			inQuotes = !inQuotes
			out = append(out, c)
		case c == '(' && !inQuotes:
			if depth == 0 {
				start = i
			}
			depth++
		case c == ')' && !inQuotes && depth > 0:
			depth--
			if depth == 0 {
				start = -1
			}
		case depth == 0:
			out = append(out, c)
		default:
			// inside a comment: drop the byte
		}
	}

	if depth > 0 {
		// Unterminated comment: per spec, leave the line unchanged.
		d.Add(defect.MissingSeparators)
		_ = start
		return val
	}
	return string(out)
}
