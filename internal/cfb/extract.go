package cfb

import "strings"

// File is one embedded attachment recovered from a CFBF container.
type File struct {
	Name string
	Data []byte
}

// Extract parses the CFBF container in data and returns every embedded
// attachment found in an "Ole10Native"-style stream (spec §4.5's
// "higher-level OLE10Native attachment-extraction logic"). A fatal
// header/FAT problem (spec §7's insane_cfbf_header or
// memory_bound_exceeded) is returned as the error; a cycle encountered
// while walking an individual stream's sector chain is tolerated per
// spec §7 ("chain truncated ... caller proceeds") — the bytes read before
// the cycle are still parsed, and the stream is skipped only when none
// were read, rather than aborting the whole extraction.
func Extract(data []byte) ([]File, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	fat, err := buildFAT(data, h)
	if err != nil {
		return nil, err
	}
	miniFAT, _ := buildMiniFAT(data, h, fat)

	entries, err := parseDirectory(data, h, fat)
	if err != nil && len(entries) == 0 {
		return nil, err
	}

	root, rerr := rootEntry(entries)
	var ministream []byte
	if rerr == nil && root.StartSector >= 0 {
		ministream, _ = readStream(data, h, fat, miniFAT, nil, root.StartSector, root.Size)
	}

	var files []File
	for _, e := range entries {
		if !e.IsStream() || !isOLE10NativeName(e.Name) {
			continue
		}
		streamBytes, serr := readStream(data, h, fat, miniFAT, ministream, e.StartSector, e.Size)
		if serr != nil && len(streamBytes) == 0 {
			continue
		}
		name, payload, perr := parseOLE10Native(streamBytes)
		if perr != nil {
			continue
		}
		files = append(files, File{Name: name, Data: payload})
	}
	return files, nil
}

// isOLE10NativeName reports whether a directory entry name matches one
// of the known OLE10Native-carrying stream names, tolerating the
// control-character prefix Windows gives "special" storage/stream
// names (e.g. "\x01Ole10Native").
func isOLE10NativeName(name string) bool {
	trimmed := strings.TrimLeft(name, "\x01\x02\x03\x04\x05\x06")
	switch trimmed {
	case "Ole10Native", "CONTENTS", "Package":
		return true
	default:
		return false
	}
}
