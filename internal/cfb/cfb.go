// Package cfb implements the Compound File Binary (CFBF/OLE2) parser of
// spec §4.5: header validation, FAT/DIF/miniFAT reconstruction, directory
// stream traversal, stream materialization with cycle detection, and the
// higher-level OLE10Native attachment-extraction logic.
//
// Grounded on _examples/original_source/ripOLE/ole.c for the exact header
// field offsets and reserved sector IDs, and on other_examples/
// richardlehane-mscfb's header.go for idiomatic Go binary.LittleEndian
// struct-field extraction (reference only — mscfb itself is not a
// dependency; this subsystem is explicitly "hard core" to build from
// scratch per the module's own design notes).
package cfb

import (
	"encoding/binary"
	"errors"

	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// Signature is the canonical CFBF/OLE2 magic, spec §6 "OLE signature".
var Signature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// altSignature is the rarely-seen beta-2 magic ripOLE also recognizes.
var altSignature = [8]byte{0x0E, 0x11, 0xFC, 0x0D, 0xD0, 0xCF, 0x11, 0xE0}

// HasSignature reports whether data begins with either recognized CFBF
// magic.
func HasSignature(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	var got [8]byte
	copy(got[:], data[:8])
	return got == Signature || got == altSignature
}

// Reserved sector IDs, spec §4.5 / ole.c.
const (
	sectorFree        = int32(-1)
	sectorEndOfChain  = int32(-2)
	sectorFAT         = int32(-3)
	sectorMasterFAT   = int32(-4)
)

// Directory entry types, ole.c's STGTY_* constants.
const (
	stgtyInvalid = 0
	stgtyStorage = 1
	stgtyStream  = 2
	stgtyLockBytes = 3
	stgtyProperty  = 4
	stgtyRoot      = 5
)

const (
	sectorSize     = 512
	headerSize     = 512
	dirEntrySize   = 128
	numDIFATInHdr  = 109
	defaultMiniCut = 4096
	miniSectorSize = 64
)

// header is the parsed fixed-layout portion of a CFBF file's first 512
// bytes, field offsets grounded on ole.c.
type header struct {
	sectorShift     uint16
	miniSectorShift uint16
	fatSectorCount  uint32
	dirStartSector  int32
	miniCutoff      uint32
	miniFATStart    int32
	miniFATCount    uint32
	difStartSector  int32
	difSectorCount  uint32
	difat           [numDIFATInHdr]int32
}

// parseHeader reads and validates the 512-byte CFBF header, per spec
// §4.5's header invariants; a violation returns insane_cfbf_header.
func parseHeader(data []byte) (*header, error) {
	if len(data) < headerSize {
		return nil, defect.New(defect.InsaneCFBFHeader, "file shorter than 512-byte header")
	}
	if !HasSignature(data) {
		return nil, defect.New(defect.InsaneCFBFHeader, "bad magic")
	}
	h := &header{}
	h.sectorShift = binary.LittleEndian.Uint16(data[0x1e:])
	h.miniSectorShift = binary.LittleEndian.Uint16(data[0x20:])
	h.fatSectorCount = binary.LittleEndian.Uint32(data[0x2c:])
	h.dirStartSector = int32(binary.LittleEndian.Uint32(data[0x30:]))
	h.miniCutoff = binary.LittleEndian.Uint32(data[0x38:])
	h.miniFATStart = int32(binary.LittleEndian.Uint32(data[0x3c:]))
	h.miniFATCount = binary.LittleEndian.Uint32(data[0x40:])
	h.difStartSector = int32(binary.LittleEndian.Uint32(data[0x44:]))
	h.difSectorCount = binary.LittleEndian.Uint32(data[0x48:])
	for i := 0; i < numDIFATInHdr; i++ {
		off := 0x4c + i*4
		h.difat[i] = int32(binary.LittleEndian.Uint32(data[off:]))
	}

	if h.sectorShift < 6 || h.sectorShift > 16 {
		return nil, defect.New(defect.InsaneCFBFHeader, "implausible sector shift")
	}
	if h.miniSectorShift > 10 {
		return nil, defect.New(defect.InsaneCFBFHeader, "implausible mini-sector shift")
	}
	if h.miniCutoff == 0 {
		h.miniCutoff = defaultMiniCut
	}
	return h, nil
}

func (h *header) sectorBytes() int { return 1 << h.sectorShift }

// sectorOffset returns the byte offset of sector id within the file
// (sector 0 begins immediately after the 512-byte header).
func sectorOffset(id int32, sectorBytes int) int64 {
	return int64(headerSize) + int64(id)*int64(sectorBytes)
}

var errCycle = errors.New("cfb: cycle detected in sector chain")
