package header

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// BlockHeaderV4 is the legacy 8-word block header (spec.md glossary:
// "Block (v4)"). It has no compression and no index array; a v4 file is a
// sequence of blocks, each a self-contained header followed immediately
// by its events.
type BlockHeaderV4 struct {
	BlockLengthWords  uint32 // word 0: total block length in words, including this header
	BlockNumber       uint32 // word 1
	HeaderLengthWords uint32 // word 2: always BlockHeaderWordsV4 (8)
	EventCount        uint32 // word 3
	reserved1         uint32 // word 4
	BitInfo           BitInfo // word 5: version in low byte + flag bits (no compression bits used)
	reserved2         uint32  // word 6
	Magic             uint32  // word 7
}

func NewBlockHeaderV4() BlockHeaderV4 {
	return BlockHeaderV4{
		HeaderLengthWords: BlockHeaderWordsV4,
		Magic:             RecordMagic,
		BitInfo:           BitInfo(4), // version 4, no header-type nibble in the legacy layout
	}
}

func (h *BlockHeaderV4) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < BlockHeaderBytesV4 {
		return evioerr.New(evioerr.KindTruncated, "v4 block header shorter than 8 words")
	}

	h.BlockLengthWords = engine.Uint32(data[0:4])
	h.BlockNumber = engine.Uint32(data[4:8])
	h.HeaderLengthWords = engine.Uint32(data[8:12])
	h.EventCount = engine.Uint32(data[12:16])
	h.reserved1 = engine.Uint32(data[16:20])
	h.BitInfo = BitInfo(engine.Uint32(data[20:24]))
	h.reserved2 = engine.Uint32(data[24:28])
	h.Magic = engine.Uint32(data[28:32])

	if h.Magic != RecordMagic {
		return evioerr.New(evioerr.KindBadMagic, "v4 block header magic mismatch")
	}
	if h.BitInfo.Version() < 4 || h.BitInfo.Version() >= CurrentVersion {
		return evioerr.New(evioerr.KindUnsupportedVersion, "v4 block header version out of range")
	}
	if h.HeaderLengthWords < BlockHeaderWordsV4 {
		return evioerr.New(evioerr.KindBadFormat, "v4 block header length below 8 words")
	}

	return nil
}

func (h BlockHeaderV4) Bytes(engine endian.EndianEngine) []byte {
	if h.HeaderLengthWords < BlockHeaderWordsV4 {
		h.HeaderLengthWords = BlockHeaderWordsV4
	}

	b := make([]byte, BlockHeaderBytesV4)

	engine.PutUint32(b[0:4], h.BlockLengthWords)
	engine.PutUint32(b[4:8], h.BlockNumber)
	engine.PutUint32(b[8:12], h.HeaderLengthWords)
	engine.PutUint32(b[12:16], h.EventCount)
	engine.PutUint32(b[16:20], 0)
	engine.PutUint32(b[20:24], uint32(h.BitInfo))
	engine.PutUint32(b[24:28], 0)
	engine.PutUint32(b[28:32], h.Magic)

	return b
}

func ParseBlockHeaderV4(data []byte, engine endian.EndianEngine) (BlockHeaderV4, error) {
	h := BlockHeaderV4{}
	if err := h.Parse(data, engine); err != nil {
		return BlockHeaderV4{}, err
	}
	return h, nil
}
