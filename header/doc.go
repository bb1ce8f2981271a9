// Package header packs and unpacks the three fixed-layout header kinds of
// the evio container format: the file header, the record header (v6), and
// the legacy block header (v4).
//
// A Reader probes the magic word (word 7) of the first header against the
// expected magic in both byte orders (endian.DetectOrder), which is how it
// discovers whether it is looking at a little- or big-endian file before
// anything else about the header can be trusted.
package header

// Word-based sizes, matching spec.md section 3: a record/file header is
// 14 32-bit words; a legacy v4 block header is 8.
const (
	RecordHeaderWords = 14
	RecordHeaderBytes = RecordHeaderWords * 4

	FileHeaderWords = 14
	FileHeaderBytes = FileHeaderWords * 4

	BlockHeaderWordsV4 = 8
	BlockHeaderBytesV4 = BlockHeaderWordsV4 * 4
)

// Magic numbers. RecordMagic is the magic word of record headers and of
// legacy v4 block headers; the file header instead carries one of
// FileMagicEvio / FileMagicHipo in its own magic word (word 7, shared
// layout with the record header), and a v6 file is probed against those.
const (
	RecordMagic  uint32 = 0xc0da0100
	FileMagicEvio uint32 = 0x4556494f // "EVIO"
	FileMagicHipo uint32 = 0x4849504f // "HIPO"
)

// HeaderType occupies bit-info bits 28-31.
type HeaderType uint8

const (
	HeaderTypeFile         HeaderType = 1
	HeaderTypeExtendedFile HeaderType = 2
	HeaderTypeRecord       HeaderType = 3
	HeaderTypeHipoFile     HeaderType = 5
	HeaderTypeEvioTrailer  HeaderType = 9
)

// CurrentVersion is the version written into file and record headers,
// which parse only at this version or above; the legacy block header is
// written as version 4 and parses at versions 4 and 5.
const CurrentVersion uint8 = 6
