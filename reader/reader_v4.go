package reader

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/header"
)

// Block is the v4 analog of record.RecordInput: a parsed legacy block and
// the events it holds. v4 blocks carry no compression and no index array
// (spec.md §4.F: "for v4 files the block structure is analogous but uses
// 8-word block headers with no compression").
type Block struct {
	header header.BlockHeaderV4
	events [][]byte
}

func (b *Block) EventCount() int { return len(b.events) }

func (b *Block) EventSlice(i int) ([]byte, error) {
	if i < 0 || i >= len(b.events) {
		return nil, evioerr.New(evioerr.KindIndexOutOfRange, "event index out of range")
	}
	return b.events[i], nil
}

func (b *Block) EventBytes(i int) ([]byte, error) {
	v, err := b.EventSlice(i)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v...), nil
}

func openV4(data []byte, engine endian.EndianEngine) (*Reader, error) {
	r := &Reader{data: data, engine: engine, version: 4}

	entries, err := scanBlocks(data, 0, engine)
	if err != nil {
		return nil, err
	}

	r.records = entries
	for _, e := range entries {
		r.totalEvents += e.EventCount
	}

	return r, nil
}

// scanBlocks walks the v4 block stream from start, since v4 has no
// trailer index or built-in index to shortcut through — every v4 read is
// effectively the scan fallback path.
func scanBlocks(data []byte, start int, engine endian.EndianEngine) ([]recordEntry, error) {
	var entries []recordEntry
	offset := start

	for offset+header.BlockHeaderBytesV4 <= len(data) {
		h, err := header.ParseBlockHeaderV4(data[offset:], engine)
		if err != nil {
			return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "bad v4 block header during scan: "+err.Error())
		}

		entries = append(entries, recordEntry{Offset: offset, EventCount: int(h.EventCount)})

		total := int(h.BlockLengthWords) * 4
		if total <= 0 {
			return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "v4 block declares zero or negative length")
		}
		offset += total
	}

	return entries, nil
}

// LoadBlock parses and returns block i (v4 only).
func (r *Reader) LoadBlock(i int) (*Block, error) {
	if r.version != 4 {
		return nil, evioerr.New(evioerr.KindInvalidState, "LoadBlock is only valid for v4 files; use LoadRecord for v6")
	}
	if err := r.checkRecordIndex(i); err != nil {
		return nil, err
	}

	entry := r.records[i]
	h, err := header.ParseBlockHeaderV4(r.data[entry.Offset:], r.engine)
	if err != nil {
		return nil, err
	}

	total := entry.Offset + int(h.BlockLengthWords)*4
	if total > len(r.data) {
		return nil, evioerr.At(evioerr.KindTruncated, int64(entry.Offset), "v4 block shorter than declared length")
	}

	pos := entry.Offset + header.BlockHeaderBytesV4
	events := make([][]byte, 0, h.EventCount)

	for j := 0; j < int(h.EventCount); j++ {
		if pos+4 > total {
			return nil, evioerr.At(evioerr.KindTruncated, int64(pos), "v4 event header truncated")
		}
		// Events are top-level banks: their own first word is the bank's
		// payload length in words, excluding that length word itself.
		lengthWords := r.engine.Uint32(r.data[pos : pos+4])
		eventBytes := (int(lengthWords) + 1) * 4
		if pos+eventBytes > total {
			return nil, evioerr.At(evioerr.KindTruncated, int64(pos), "v4 event runs past its block")
		}

		events = append(events, r.data[pos:pos+eventBytes])
		pos += eventBytes
	}

	return &Block{header: h, events: events}, nil
}
