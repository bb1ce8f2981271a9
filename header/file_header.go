package header

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// FileHeader is the 14-word header at the start of a v6 evio/HIPO file,
// per spec.md §3. It is immediately followed by an optional built-in
// index, an optional padded user header, then the record stream and
// finally the trailer record.
type FileHeader struct {
	FileLengthBytes   uint32 // word 0: total bytes of header+index+user-header, 0 if unknown/streaming
	reserved1         uint32 // word 1: reserved, round-tripped as 0
	HeaderLengthWords uint32 // word 2: always FileHeaderWords (14)
	reserved3         uint32 // word 3: reserved, round-tripped as 0
	IndexArrayLenBytes uint32 // word 4: length of the optional built-in index, 0 if absent
	BitInfo           BitInfo // word 5
	UserHeaderLenBytes uint32 // word 6: length of the optional user header, 0-pad included
	Magic             uint32  // word 7: FileMagicEvio or FileMagicHipo
	reserved8         uint32  // word 8
	reserved9         uint32  // word 9
	TrailerPosition   uint64  // words 10-11: byte offset of the trailer record, 0 if none
	UserRegister      uint64  // words 12-13
}

const (
	bitHasBuiltinIndex  = 1 << 8
	bitHasFirstEventFH  = 1 << 9
	bitHasTrailerIndex  = 1 << 10
	bitFileHasDictionary = 1 << 11
)

// NewFileHeader returns a zeroed v6 evio file header.
func NewFileHeader() FileHeader {
	return FileHeader{
		HeaderLengthWords: FileHeaderWords,
		Magic:             FileMagicEvio,
		BitInfo:           NewBitInfo(HeaderTypeFile),
	}
}

func (h FileHeader) HasDictionary() bool { return h.BitInfo&bitFileHasDictionary != 0 }
func (h *FileHeader) SetHasDictionary(v bool) {
	if v {
		h.BitInfo |= bitFileHasDictionary
	} else {
		h.BitInfo &^= bitFileHasDictionary
	}
}

func (h FileHeader) HasFirstEvent() bool { return h.BitInfo&bitHasFirstEventFH != 0 }
func (h *FileHeader) SetHasFirstEvent(v bool) {
	if v {
		h.BitInfo |= bitHasFirstEventFH
	} else {
		h.BitInfo &^= bitHasFirstEventFH
	}
}

func (h FileHeader) HasTrailerWithIndex() bool { return h.BitInfo&bitHasTrailerIndex != 0 }
func (h *FileHeader) SetHasTrailerWithIndex(v bool) {
	if v {
		h.BitInfo |= bitHasTrailerIndex
	} else {
		h.BitInfo &^= bitHasTrailerIndex
	}
}

func (h FileHeader) HasBuiltinIndex() bool { return h.BitInfo&bitHasBuiltinIndex != 0 }
func (h *FileHeader) SetHasBuiltinIndex(v bool) {
	if v {
		h.BitInfo |= bitHasBuiltinIndex
	} else {
		h.BitInfo &^= bitHasBuiltinIndex
	}
}

// IsHipo reports whether the magic word identifies this as a HIPO-branded
// file rather than an EVIO-branded one. Both are bit-identical otherwise.
func (h FileHeader) IsHipo() bool { return h.Magic == FileMagicHipo }

// Parse decodes a FileHeader from exactly FileHeaderBytes bytes.
func (h *FileHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < FileHeaderBytes {
		return evioerr.New(evioerr.KindTruncated, "file header shorter than 14 words")
	}

	h.FileLengthBytes = engine.Uint32(data[0:4])
	h.reserved1 = engine.Uint32(data[4:8])
	h.HeaderLengthWords = engine.Uint32(data[8:12])
	h.reserved3 = engine.Uint32(data[12:16])
	h.IndexArrayLenBytes = engine.Uint32(data[16:20])
	h.BitInfo = BitInfo(engine.Uint32(data[20:24]))
	h.UserHeaderLenBytes = engine.Uint32(data[24:28])
	h.Magic = engine.Uint32(data[28:32])
	h.reserved8 = engine.Uint32(data[32:36])
	h.reserved9 = engine.Uint32(data[36:40])
	h.TrailerPosition = engine.Uint64(data[40:48])
	h.UserRegister = engine.Uint64(data[48:56])

	if h.Magic != FileMagicEvio && h.Magic != FileMagicHipo {
		return evioerr.New(evioerr.KindBadMagic, "file header magic mismatch")
	}
	if h.BitInfo.Version() < CurrentVersion {
		return evioerr.New(evioerr.KindUnsupportedVersion, "file version below 6")
	}
	if h.HeaderLengthWords < FileHeaderWords {
		return evioerr.New(evioerr.KindBadFormat, "file header length below 14 words")
	}

	return nil
}

// Bytes serializes the header. Header length is clamped up to at least
// FileHeaderWords.
func (h FileHeader) Bytes(engine endian.EndianEngine) []byte {
	if h.HeaderLengthWords < FileHeaderWords {
		h.HeaderLengthWords = FileHeaderWords
	}

	b := make([]byte, FileHeaderBytes)

	engine.PutUint32(b[0:4], h.FileLengthBytes)
	engine.PutUint32(b[4:8], 0)
	engine.PutUint32(b[8:12], h.HeaderLengthWords)
	engine.PutUint32(b[12:16], 0)
	engine.PutUint32(b[16:20], h.IndexArrayLenBytes)
	engine.PutUint32(b[20:24], uint32(h.BitInfo))
	engine.PutUint32(b[24:28], h.UserHeaderLenBytes)
	engine.PutUint32(b[28:32], h.Magic)
	engine.PutUint32(b[32:36], 0)
	engine.PutUint32(b[36:40], 0)
	engine.PutUint64(b[40:48], h.TrailerPosition)
	engine.PutUint64(b[48:56], h.UserRegister)

	return b
}

// ParseFileHeader is a convenience constructor wrapping Parse.
func ParseFileHeader(data []byte, engine endian.EndianEngine) (FileHeader, error) {
	h := FileHeader{}
	if err := h.Parse(data, engine); err != nil {
		return FileHeader{}, err
	}
	return h, nil
}
