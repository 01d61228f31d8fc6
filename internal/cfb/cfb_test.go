package cfb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasSignature(t *testing.T) {
	good := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)
	require.True(t, HasSignature(good))
	require.False(t, HasSignature([]byte("not a cfbf file at all")))
}

func TestParseHeaderRejectsShortFile(t *testing.T) {
	_, err := parseHeader(make([]byte, 10))
	require.Error(t, err)
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 512)
	_, err := parseHeader(buf)
	require.Error(t, err)
}

func TestReadCString(t *testing.T) {
	s, rest, ok := readCString([]byte("hello\x00world"))
	require.True(t, ok)
	require.Equal(t, "hello", s)
	require.Equal(t, "world", string(rest))

	_, _, ok = readCString([]byte("no terminator"))
	require.False(t, ok, "expected ok=false when no NUL present")
}

func TestParseOLE10NativeNormalLayout(t *testing.T) {
	var rec []byte
	rec = append(rec, []byte("report.bin\x00")...)
	rec = append(rec, []byte("C:\\temp\\report.bin\x00")...)
	rec = append(rec, make([]byte, 8)...) // data2[8]
	rec = append(rec, []byte("C:\\temp\\report.bin\x00")...)
	payload := []byte{1, 2, 3, 4, 5}
	sizeField := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeField, uint32(len(payload)))
	rec = append(rec, sizeField...)
	rec = append(rec, payload...)

	stream := make([]byte, 4)
	binary.LittleEndian.PutUint32(stream, uint32(len(rec)))
	stream = append(stream, rec...)

	name, data, err := parseOLE10Native(stream)
	require.NoError(t, err)
	require.Equal(t, "report.bin", name)
	require.Equal(t, payload, data)
}

func TestParseOLEPictureFindsPNGSignature(t *testing.T) {
	stream := make([]byte, 20)
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}
	stream = append(stream, png...)
	stream = append(stream, []byte("rest of png data")...)

	// Force the OLEPICTURE path: declared size field implausibly large.
	binary.LittleEndian.PutUint32(stream[:4], uint32(len(stream)+100))

	name, data, err := parseOLE10Native(stream)
	require.NoError(t, err)
	require.Equal(t, "picture.png", name)
	require.NotEmpty(t, data)
}
