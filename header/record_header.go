package header

import (
	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// RecordHeader is the 14-word fixed header at the start of every v6
// record, laid out exactly as spec.md §3 describes. Lengths are expressed
// in 32-bit words except where a field is explicitly documented in bytes.
type RecordHeader struct {
	TotalLengthWords     uint32 // word 0: total record length in words (compressed)
	RecordNumber         uint32 // word 1: monotonic, 1-based
	HeaderLengthWords    uint32 // word 2: always RecordHeaderWords (14)
	EventCount           uint32 // word 3
	IndexArrayLenBytes   uint32 // word 4
	BitInfo              BitInfo // word 5
	UserHeaderLenBytes   uint32 // word 6: uncompressed
	Magic                uint32 // word 7
	UncompressedLenBytes uint32 // word 8
	CompressionKind      compress.Kind // word 9, top nibble
	CompressedLenWords   uint32        // word 9, low 28 bits
	UserRegister1        uint64        // words 10-11
	UserRegister2        uint64        // words 12-13
}

// NewRecordHeader returns a zeroed header stamped with the magic word and
// the current version/header-type bits. Callers fill in lengths as the
// record is built.
func NewRecordHeader() RecordHeader {
	return RecordHeader{
		HeaderLengthWords: RecordHeaderWords,
		Magic:             RecordMagic,
		BitInfo:           NewBitInfo(HeaderTypeRecord),
	}
}

// Parse decodes a RecordHeader from exactly RecordHeaderBytes of data,
// using engine as the byte order (the caller has already determined this
// via endian.DetectOrder against the magic word).
func (h *RecordHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < RecordHeaderBytes {
		return evioerr.New(evioerr.KindTruncated, "record header shorter than 14 words")
	}

	h.TotalLengthWords = engine.Uint32(data[0:4])
	h.RecordNumber = engine.Uint32(data[4:8])
	h.HeaderLengthWords = engine.Uint32(data[8:12])
	h.EventCount = engine.Uint32(data[12:16])
	h.IndexArrayLenBytes = engine.Uint32(data[16:20])
	h.BitInfo = BitInfo(engine.Uint32(data[20:24]))
	h.UserHeaderLenBytes = engine.Uint32(data[24:28])
	h.Magic = engine.Uint32(data[28:32])
	h.UncompressedLenBytes = engine.Uint32(data[32:36])

	w9 := engine.Uint32(data[36:40])
	h.CompressionKind = compress.Kind(w9 >> 28)
	h.CompressedLenWords = w9 & 0x0FFFFFFF

	h.UserRegister1 = engine.Uint64(data[40:48])
	h.UserRegister2 = engine.Uint64(data[48:56])

	if h.Magic != RecordMagic {
		return evioerr.New(evioerr.KindBadMagic, "record header magic mismatch")
	}
	if h.BitInfo.Version() < CurrentVersion {
		return evioerr.New(evioerr.KindUnsupportedVersion, "record version below 6")
	}
	if h.HeaderLengthWords < RecordHeaderWords {
		return evioerr.New(evioerr.KindBadFormat, "record header length below 14 words")
	}
	if !h.CompressionKind.Valid() {
		return evioerr.New(evioerr.KindBadFormat, "invalid compression kind in record header")
	}

	return nil
}

// Bytes serializes the header to exactly RecordHeaderBytes bytes. Header
// length is clamped up to at least RecordHeaderWords per spec.md §4.B.
func (h RecordHeader) Bytes(engine endian.EndianEngine) []byte {
	if h.HeaderLengthWords < RecordHeaderWords {
		h.HeaderLengthWords = RecordHeaderWords
	}

	b := make([]byte, RecordHeaderBytes)

	engine.PutUint32(b[0:4], h.TotalLengthWords)
	engine.PutUint32(b[4:8], h.RecordNumber)
	engine.PutUint32(b[8:12], h.HeaderLengthWords)
	engine.PutUint32(b[12:16], h.EventCount)
	engine.PutUint32(b[16:20], h.IndexArrayLenBytes)
	engine.PutUint32(b[20:24], uint32(h.BitInfo))
	engine.PutUint32(b[24:28], h.UserHeaderLenBytes)
	engine.PutUint32(b[28:32], h.Magic)
	engine.PutUint32(b[32:36], h.UncompressedLenBytes)

	w9 := (uint32(h.CompressionKind) << 28) | (h.CompressedLenWords & 0x0FFFFFFF)
	engine.PutUint32(b[36:40], w9)

	engine.PutUint64(b[40:48], h.UserRegister1)
	engine.PutUint64(b[48:56], h.UserRegister2)

	return b
}

// ParseRecordHeader is a convenience constructor wrapping Parse.
func ParseRecordHeader(data []byte, engine endian.EndianEngine) (RecordHeader, error) {
	h := RecordHeader{}
	if err := h.Parse(data, engine); err != nil {
		return RecordHeader{}, err
	}
	return h, nil
}
