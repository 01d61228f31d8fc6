package header

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	stdmime "mime"
)

// wordDecoder decodes RFC 2047 "=?charset?B|Q?...?=" encoded words.
// Grounded on the teacher's headerDecoder (message.go): mime.WordDecoder
// only natively understands utf-8/iso-8859-1/us-ascii, so a CharsetReader
// is supplied for the handful of other charsets seen in the wild.
var wordDecoder = &stdmime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(charset) {
		case "windows-1252", "cp1252":
			return charmap.Windows1252.NewDecoder().Reader(input), nil
		case "iso-8859-15":
			return charmap.ISO8859_15.NewDecoder().Reader(input), nil
		case "koi8-r":
			return charmap.KOI8R.NewDecoder().Reader(input), nil
		default:
			return nil, fmt.Errorf("unhandled charset %q", charset)
		}
	},
}

// asciiTransformChain mirrors the teacher's headerTransformChain
// (message.go's decodeHeaderValue): decompose by canonical equivalence,
// drop combining marks (accents), recompose, then drop anything left
// that isn't printable US-ASCII or a WSP character. Grounded on RFC 5322
// §2.2's field-value character range.
//
// This is applied only to the free-text display headers the teacher
// itself transliterates (Subject/From/To, via Transliterate below), not
// to Content-Type/Content-Disposition/Content-Location — spec §4.1
// requires a non-ASCII filename to survive RFC 2047 decoding intact and
// go through namepolicy.Sanitize's 1:1 "outside [0x20,0x7E] becomes _"
// substitution instead, which needs the original decoded characters (a
// CJK name run through this chain first would lose most of its bytes
// before Sanitize ever saw them).
var asciiTransformChain = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
	runes.Remove(runes.Predicate(func(r rune) bool {
		return (r < 32 || r > 126) && r != 9
	})),
)

// DecodeEncodedWords decodes every "=?charset?B|Q?...?=" token in s.
// Anything that fails to decode (unknown charset, malformed token) is
// returned untouched, per spec §4.2: "Unknown charsets are copied
// through." The result may contain non-ASCII UTF-8; callers that want
// the teacher's accent-stripped, ASCII-safe rendering call Transliterate
// on the result explicitly (see Transliterate's doc comment).
func DecodeEncodedWords(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}
	dec, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return dec
}

// Transliterate applies the teacher's decodeHeaderValue accent-stripping
// chain to an already RFC-2047-decoded string. Used for the free-text
// outer headers (Subject/From/To) that this repo surfaces as metadata
// rather than as a filename; not used for name=/filename=/
// Content-Location, which must keep their decoded characters intact for
// namepolicy.Sanitize's length-preserving substitution (spec §4.1).
func Transliterate(s string) string {
	res, _, err := transform.String(asciiTransformChain, s)
	if err != nil {
		return s
	}
	return res
}
