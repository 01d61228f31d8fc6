package tnef

import (
	"bytes"
	"encoding/binary"
)

// Attachment is one file recovered from a TNEF attachment group (an
// attAttachRenddata/attAttachTitle/attAttachData triple).
type Attachment struct {
	Name string
	Data []byte
}

// pendingAttachment accumulates the fields of one attachment group
// between an attAttachRenddata "start marker" and the attAttachData
// that completes it, mirroring tnef.c's reset-on-attAttachRenddata
// behavior (a renddata attribute always begins a fresh attachment,
// discarding any incomplete one in flight).
type pendingAttachment struct {
	name string
	data []byte
	have bool
}

// collectAttachments walks attrs in order, pairing attAttachTitle with
// attAttachData within one attAttachRenddata group, and returns the
// completed attachments in encounter order.
func collectAttachments(attrs []attributeRecord) []Attachment {
	var out []Attachment
	var cur pendingAttachment
	for _, a := range attrs {
		if a.level != levelAttachment {
			continue
		}
		switch a.tag {
		case attAttachRenddata:
			cur = pendingAttachment{}
		case attAttachTitle:
			cur.name = decodeTNEFString(a.payload)
		case attAttachTransportFilename:
			if cur.name == "" {
				cur.name = decodeTNEFString(a.payload)
			}
		case attAttachData:
			cur.data = append([]byte(nil), a.payload...)
			cur.have = true
			if cur.name == "" {
				cur.name = "attachment"
			}
			out = append(out, Attachment{Name: cur.name, Data: cur.data})
			cur = pendingAttachment{}
		}
	}
	return out
}

// decodeTNEFString decodes an atpString-shaped payload: a 4-byte
// little-endian length prefix (including any trailing NUL) followed by
// the string bytes. Payloads too short to carry the prefix fall back to
// treating the whole thing as a NUL-trimmed string, tolerating the
// occasional producer that omits the length field.
func decodeTNEFString(payload []byte) string {
	if len(payload) >= 4 {
		n := binary.LittleEndian.Uint32(payload[:4])
		if int(n) <= len(payload)-4 {
			s := payload[4 : 4+int(n)]
			return string(bytes.TrimRight(s, "\x00"))
		}
	}
	return string(bytes.TrimRight(payload, "\x00"))
}

// PT_STRING8, PT_UNICODE and PT_BINARY are the MAPI property-type codes
// handle_props cares about: the variable-length types that carry a
// value-count and length-prefixed payload, as opposed to the fixed
// 8-byte inline value every other property type carries.
const (
	ptString8 = 0x001E
	ptUnicode = 0x001F
	ptBinary  = 0x0102
)

// prRTFCompressed is the MAPI property tag (prop ID 0x1009, type
// PT_BINARY) carrying the message body as compressed RTF, per
// SPEC_FULL.md's SUPPLEMENTED FEATURES item: attMAPIProps descent for
// PR_RTF_COMPRESSED. This repo does not implement the LZFu
// decompression algorithm (spec's Non-goals exclude rendering RTF) —
// the raw compressed bytes are emitted as-is, same as an attachment.
const prRTFCompressed = 0x10090102

// mapiProperties decodes an attMAPIProps payload into a map from
// property tag (propID<<16 | propType) to its value, per MS-OXTNEF's
// "PropertyCount DWORD, then PropertyTag/PropertyValue records" layout.
// Fixed-type properties are skipped (their 8-byte inline value is of no
// interest to this repo); only the first value of a multi-value
// property is kept.
func mapiProperties(payload []byte) map[uint32][]byte {
	props := map[uint32][]byte{}
	if len(payload) < 4 {
		return props
	}
	count := binary.LittleEndian.Uint32(payload[:4])
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+4 > len(payload) {
			break
		}
		propType := binary.LittleEndian.Uint16(payload[off:])
		propID := binary.LittleEndian.Uint16(payload[off+2:])
		tag := uint32(propID)<<16 | uint32(propType)
		off += 4

		switch propType {
		case ptString8, ptUnicode, ptBinary:
			if off+4 > len(payload) {
				return props
			}
			valueCount := binary.LittleEndian.Uint32(payload[off:])
			off += 4
			for v := uint32(0); v < valueCount; v++ {
				if off+4 > len(payload) {
					return props
				}
				length := binary.LittleEndian.Uint32(payload[off:])
				off += 4
				if int(length) > len(payload)-off {
					length = uint32(len(payload) - off)
				}
				value := payload[off : off+int(length)]
				off += int(length)
				if pad := (4 - int(length)%4) % 4; off+pad <= len(payload) {
					off += pad
				}
				if v == 0 {
					if _, exists := props[tag]; !exists {
						props[tag] = value
					}
				}
			}
		default:
			off += 8
		}
	}
	return props
}
