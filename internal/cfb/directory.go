package cfb

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// DirEntry is one parsed 128-byte directory entry, spec §4.5 / ole.c's
// pps_* layout.
type DirEntry struct {
	Name        string
	Type        byte
	StartSector int32
	Size        uint64
}

// IsStream reports whether e is a regular stream (as opposed to a
// storage/root/invalid entry).
func (e DirEntry) IsStream() bool { return e.Type == stgtyStream }

// parseDirectory reads the directory stream (chained from
// h.dirStartSector) and decodes each 128-byte entry, per spec §8's
// "traversing the directory stream visits each entry at most once"
// invariant — enforced here simply by the fact a flat slice is built
// once, with sectorChain's own cycle detection guarding the chain walk.
func parseDirectory(data []byte, h *header, fat []int32) ([]DirEntry, error) {
	chain, err := sectorChain(data, h, fat, h.dirStartSector)
	if err != nil && len(chain) == 0 {
		return nil, err
	}
	raw := flatten(chain)

	var entries []DirEntry
	for off := 0; off+dirEntrySize <= len(raw); off += dirEntrySize {
		rec := raw[off : off+dirEntrySize]
		nameLenRaw := binary.LittleEndian.Uint16(rec[0x40:])
		nameLen := int(nameLenRaw)
		if nameLen > 64 {
			nameLen = 64
		}
		var nameUTF16 []uint16
		for i := 0; i+1 < nameLen; i += 2 {
			nameUTF16 = append(nameUTF16, binary.LittleEndian.Uint16(rec[i:]))
		}
		name := string(utf16.Decode(nameUTF16))

		typ := rec[0x42]
		start := int32(binary.LittleEndian.Uint32(rec[0x74:]))
		sizeLow := binary.LittleEndian.Uint32(rec[0x78:])
		sizeHigh := binary.LittleEndian.Uint32(rec[0x7c:])
		size := uint64(sizeHigh)<<32 | uint64(sizeLow)

		if typ == stgtyInvalid && name == "" {
			continue
		}
		entries = append(entries, DirEntry{Name: name, Type: typ, StartSector: start, Size: size})
	}
	return entries, err
}

// rootEntry returns the first stgtyRoot entry, which carries the
// ministream's location/size, or an insane_cfbf_header error if none is
// present (every valid CFBF file has exactly one).
func rootEntry(entries []DirEntry) (DirEntry, error) {
	for _, e := range entries {
		if e.Type == stgtyRoot {
			return e, nil
		}
	}
	return DirEntry{}, defect.New(defect.InsaneCFBFHeader, "no root storage entry")
}
