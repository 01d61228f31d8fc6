// Package tnef implements the TNEF (Transport-Neutral Encapsulation
// Format) walker of spec §4.6: an attribute-stream parser that locates
// attAttachTitle/attAttachData pairs and emits files, plus an
// attMAPIProps descent for PR_RTF_COMPRESSED and the sender-identity
// attributes (owner/sent-for/delegate).
//
// Grounded on _examples/original_source/tnef/tnef.c's read_attribute /
// TNEF_decode_tnef / handle_props, with the attribute tag constants
// matching libtnef's well-known values for the same fields.
package tnef

import "encoding/binary"

// Signature is the 4-byte little-endian magic spec §6 calls out:
// "File begins with 78 9f 3e 22".
var Signature = [4]byte{0x78, 0x9F, 0x3E, 0x22}

// HasSignature reports whether data begins with the TNEF magic.
func HasSignature(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	var got [4]byte
	copy(got[:], data[:4])
	return got == Signature
}

// Attribute levels, tnef.c's LVL_* constants.
const (
	levelMessage    = 1
	levelAttachment = 2
)

// Attribute name/type tags, grounded on libtnef's tnef.h (the attribute
// identifiers tnef.c's read_attribute switches on).
const (
	attNull                    = 0x00000000
	attFrom                    = 0x00008000
	attSubject                 = 0x00018004
	attDateSent                = 0x00038005
	attDateRecd                = 0x00038006
	attMessageStatus           = 0x00068007
	attMessageClass            = 0x00078008
	attMessageID               = 0x00018009
	attBody                    = 0x0002800c
	attAttachData              = 0x0006800f
	attAttachTitle             = 0x00018010
	attAttachMetaFile          = 0x00068011
	attAttachCreateDate        = 0x00038012
	attAttachModifyDate        = 0x00038013
	attAttachTransportFilename = 0x00069001
	attAttachRenddata          = 0x00069002
	attMAPIProps               = 0x00069003
	attRecipTable              = 0x00069004
	attTnefVersion             = 0x00089006
	attOemCodepage             = 0x00069007
	attOwner                   = 0x00060000
	attSentFor                 = 0x00060001
	attDelegate                = 0x00060002
)

// attributeRecord is one decoded TNEF attribute, before the caller
// dispatches on its tag: 1-byte level, 4-byte tag, 4-byte length,
// payload, and a 2-byte checksum (verified nowhere in this repo — spec's
// non-goals exclude cryptographic validation, and a bad checksum doesn't
// change what bytes were actually sent).
type attributeRecord struct {
	level   byte
	tag     uint32
	payload []byte
}

// readAttributes decodes every attribute record in data (the bytes
// following the signature+key header), stopping at the first truncated
// record rather than erroring, per spec §7's progress-preserving
// recovery policy.
func readAttributes(data []byte) []attributeRecord {
	var out []attributeRecord
	i := 0
	for i+9 <= len(data) {
		level := data[i]
		tag := binary.LittleEndian.Uint32(data[i+1:])
		length := binary.LittleEndian.Uint32(data[i+5:])
		start := i + 9
		end := start + int(length)
		if length > uint32(len(data)) || end < start || end > len(data) {
			break
		}
		out = append(out, attributeRecord{level: level, tag: tag, payload: data[start:end]})
		i = end + 2 // skip the 2-byte checksum
	}
	return out
}
