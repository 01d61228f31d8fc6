package cfb

import (
	"encoding/binary"

	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// buildFAT reconstructs the full File Allocation Table from the header's
// 109 DIFAT slots plus any DIF/XBAT extension sectors, per spec §4.5.
// Grounded on ole.c's DIFAT-walk in the original's OLE2_read_header/FAT
// loading path.
func buildFAT(data []byte, h *header) ([]int32, error) {
	sb := h.sectorBytes()
	maxSectors := len(data) / sb
	if int(h.fatSectorCount) > maxSectors+1 {
		return nil, defect.New(defect.MemoryBoundExceeded, "fat_sector_count exceeds file size")
	}

	entriesPerSector := sb / 4
	fat := make([]int32, 0, int(h.fatSectorCount)*entriesPerSector)

	fatSectorIDs := make([]int32, 0, h.fatSectorCount)
	for _, id := range h.difat {
		if id == sectorFree || uint32(len(fatSectorIDs)) >= h.fatSectorCount {
			continue
		}
		fatSectorIDs = append(fatSectorIDs, id)
	}

	// Extend via DIF (XBAT) sectors if the header declares more FAT
	// sectors than the 109 inline DIFAT slots can hold.
	next := h.difStartSector
	seen := make(map[int32]bool)
	for i := uint32(0); i < h.difSectorCount && next >= 0 && !seen[next]; i++ {
		seen[next] = true
		off := sectorOffset(next, sb)
		if off < 0 || int(off)+sb > len(data) {
			break
		}
		sector := data[off : off+int64(sb)]
		lastSlot := entriesPerSector - 1
		for j := 0; j < lastSlot && uint32(len(fatSectorIDs)) < h.fatSectorCount; j++ {
			id := int32(binary.LittleEndian.Uint32(sector[j*4:]))
			if id == sectorFree {
				continue
			}
			fatSectorIDs = append(fatSectorIDs, id)
		}
		next = int32(binary.LittleEndian.Uint32(sector[lastSlot*4:]))
	}

	for _, id := range fatSectorIDs {
		off := sectorOffset(id, sb)
		if off < 0 || int(off)+sb > len(data) {
			return nil, defect.New(defect.InsaneCFBFHeader, "fat sector out of range")
		}
		sector := data[off : off+int64(sb)]
		for j := 0; j < entriesPerSector; j++ {
			fat = append(fat, int32(binary.LittleEndian.Uint32(sector[j*4:])))
		}
	}
	return fat, nil
}

// buildMiniFAT reconstructs the miniFAT the same way as buildFAT, walking
// the regular FAT's chain starting at h.miniFATStart to find its sectors.
func buildMiniFAT(data []byte, h *header, fat []int32) ([]int32, error) {
	if h.miniFATStart < 0 || h.miniFATCount == 0 {
		return nil, nil
	}
	sb := h.sectorBytes()
	entriesPerSector := sb / 4
	chain, err := sectorChain(data, h, fat, h.miniFATStart)
	if err != nil {
		return nil, err
	}
	miniFAT := make([]int32, 0, len(chain)*entriesPerSector)
	for _, sec := range chain {
		for j := 0; j+4 <= len(sec); j += 4 {
			miniFAT = append(miniFAT, int32(binary.LittleEndian.Uint32(sec[j:])))
		}
	}
	return miniFAT, nil
}

// sectorChain walks the FAT starting at start, returning each sector's
// raw bytes in order. A revisited sector id halts the chain early
// (cycle_detected, spec §7) rather than looping forever.
func sectorChain(data []byte, h *header, fat []int32, start int32) ([][]byte, error) {
	sb := h.sectorBytes()
	var out [][]byte
	visited := make(map[int32]bool)
	id := start
	for id >= 0 {
		if visited[id] {
			return out, defect.New(defect.CycleDetected, "sector chain revisited a sector")
		}
		visited[id] = true
		off := sectorOffset(id, sb)
		if off < 0 || int(off)+sb > len(data) {
			return out, defect.New(defect.InsaneCFBFHeader, "sector chain pointed out of range")
		}
		out = append(out, data[off:off+int64(sb)])
		if int(id) >= len(fat) {
			break
		}
		id = fat[id]
	}
	return out, nil
}

// readStream reassembles a stream's full contents given its starting
// sector and declared size, choosing between the regular FAT/sector
// chain and the miniFAT/ministream depending on size vs h.miniCutoff.
func readStream(data []byte, h *header, fat, miniFAT []int32, ministream []byte, start int32, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if size < uint64(h.miniCutoff) && miniFAT != nil {
		chain, err := miniSectorChain(ministream, miniFAT, start)
		if err != nil {
			return chainBytesTruncated(chain, size), err
		}
		return truncate(flatten(chain), size), nil
	}
	chain, err := sectorChain(data, h, fat, start)
	if err != nil {
		return truncate(flatten(chain), size), err
	}
	return truncate(flatten(chain), size), nil
}

func miniSectorChain(ministream []byte, miniFAT []int32, start int32) ([][]byte, error) {
	var out [][]byte
	visited := make(map[int32]bool)
	id := start
	for id >= 0 {
		if visited[id] {
			return out, defect.New(defect.CycleDetected, "minisector chain revisited a sector")
		}
		visited[id] = true
		off := int64(id) * miniSectorSize
		if off < 0 || int(off)+miniSectorSize > len(ministream) {
			return out, defect.New(defect.InsaneCFBFHeader, "minisector chain pointed out of range")
		}
		out = append(out, ministream[off:off+miniSectorSize])
		if int(id) >= len(miniFAT) {
			break
		}
		id = miniFAT[id]
	}
	return out, nil
}

func flatten(chunks [][]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func truncate(b []byte, size uint64) []byte {
	if uint64(len(b)) > size {
		return b[:size]
	}
	return b
}

func chainBytesTruncated(chunks [][]byte, size uint64) []byte {
	return truncate(flatten(chunks), size)
}
