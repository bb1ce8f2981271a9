package structure

import (
	"github.com/jlab-evio/evio/endian"
)

// BankHeader is the 2-word bank header: {len, (tag<<16)|(type<<8)|num}.
// len is the payload length in words, excluding the length word itself.
type BankHeader struct {
	LenWords uint32
	Tag      uint16
	Type     DataType
	PadCount uint8 // 0-3, packed into the type byte's top 2 bits
	Num      uint8
}

func (h BankHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 8)
	engine.PutUint32(b[0:4], h.LenWords)

	w1 := (uint32(h.Tag) << 16) | (uint32(h.PadCount&0x3) << 14) | (uint32(h.Type&0x3f) << 8) | uint32(h.Num)
	engine.PutUint32(b[4:8], w1)

	return b
}

func ParseBankHeader(data []byte, engine endian.EndianEngine) BankHeader {
	lenWords := engine.Uint32(data[0:4])
	w1 := engine.Uint32(data[4:8])

	return BankHeader{
		LenWords: lenWords,
		Tag:      uint16(w1 >> 16),
		PadCount: uint8((w1 >> 14) & 0x3),
		Type:     DataType((w1 >> 8) & 0x3f),
		Num:      uint8(w1),
	}
}

// SegmentHeader is the 1-word segment header:
// {(tag<<24)|(pad<<22)|(type<<16)|len16}.
type SegmentHeader struct {
	Tag      uint8
	Type     DataType
	PadCount uint8 // 0-3
	LenWords uint16
}

func (h SegmentHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 4)
	w := (uint32(h.Tag) << 24) | (uint32(h.PadCount&0x3) << 22) | (uint32(h.Type&0x3f) << 16) | uint32(h.LenWords)
	engine.PutUint32(b, w)
	return b
}

func ParseSegmentHeader(data []byte, engine endian.EndianEngine) SegmentHeader {
	w := engine.Uint32(data[0:4])
	return SegmentHeader{
		Tag:      uint8(w >> 24),
		PadCount: uint8((w >> 22) & 0x3),
		Type:     DataType((w >> 16) & 0x3f),
		LenWords: uint16(w),
	}
}

// TagSegmentHeader is the 1-word tag-segment header:
// {(tag<<20)|(type<<16)|len16}. No pad field — tag-segment types are
// always word-aligned, so padding is never needed.
type TagSegmentHeader struct {
	Tag      uint16 // 12-bit
	Type     DataType
	LenWords uint16
}

func (h TagSegmentHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, 4)
	w := (uint32(h.Tag&0xfff) << 20) | (uint32(h.Type&0xf) << 16) | uint32(h.LenWords)
	engine.PutUint32(b, w)
	return b
}

func ParseTagSegmentHeader(data []byte, engine endian.EndianEngine) TagSegmentHeader {
	w := engine.Uint32(data[0:4])
	return TagSegmentHeader{
		Tag:      uint16((w >> 20) & 0xfff),
		Type:     DataType((w >> 16) & 0xf),
		LenWords: uint16(w),
	}
}

// HeaderBytes returns the byte length of a structure's own header: 8 for a
// bank, 4 for a segment or tag-segment.
func (k Kind) HeaderBytes() int {
	if k == KindBank {
		return 8
	}
	return 4
}
