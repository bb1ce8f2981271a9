package record

import (
	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/header"
)

// RecordInput parses a record from a byte buffer, decompressing its tail
// (if any) into an owned region and exposing typed accessors over the
// resulting events (spec.md §4.D).
type RecordInput struct {
	engine endian.EndianEngine
	header header.RecordHeader

	eventOffsets []int // into tail, start of each event's bytes
	eventLengths []int // padded length, as stored in the index

	userHeader []byte
	tail       []byte // decompressed index+user-header+events region
}

// Parse decodes a record starting at data[0]. engine must already be
// known (the caller typically derives it once, at the file level, from
// endian.DetectOrder against the file header's magic word — every record
// in a file shares that order).
func Parse(data []byte, engine endian.EndianEngine) (*RecordInput, error) {
	h, err := header.ParseRecordHeader(data, engine)
	if err != nil {
		return nil, err
	}

	totalBytes := int(h.TotalLengthWords) * 4
	if len(data) < totalBytes {
		return nil, evioerr.New(evioerr.KindTruncated, "record shorter than its declared total length")
	}

	compressedTail := data[header.RecordHeaderBytes:totalBytes]

	var tail []byte
	if h.CompressionKind == compress.None {
		tail = compressedTail
	} else {
		codec, err := compress.Get(h.CompressionKind)
		if err != nil {
			return nil, err
		}

		tail = make([]byte, h.UncompressedLenBytes)
		n, err := codec.Decompress(compressedTail, int(h.UncompressedLenBytes), tail)
		if err != nil {
			return nil, evioerr.Wrap(evioerr.KindCompressionError, -1, "record tail decompression failed", err)
		}
		tail = tail[:n]
	}

	ri := &RecordInput{engine: engine, header: h, tail: tail}
	if err := ri.indexEvents(); err != nil {
		return nil, err
	}

	return ri, nil
}

func (ri *RecordInput) indexEvents() error {
	indexLen := int(ri.header.IndexArrayLenBytes)
	if indexLen%4 != 0 || indexLen > len(ri.tail) {
		return evioerr.New(evioerr.KindBadFormat, "record index array length is not a sane word count")
	}

	eventCount := int(ri.header.EventCount)
	if indexLen != eventCount*4 {
		return evioerr.New(evioerr.KindBadFormat, "record index array length does not match event count")
	}

	userHeaderEnd := indexLen + int(ri.header.UserHeaderLenBytes)
	userHeaderPadEnd := indexLen + int(ri.header.UserHeaderLenBytes) + ri.header.BitInfo.UserHeaderPad()
	if userHeaderPadEnd > len(ri.tail) {
		return evioerr.New(evioerr.KindTruncated, "record user header runs past the tail")
	}
	ri.userHeader = ri.tail[indexLen:userHeaderEnd]

	off := userHeaderPadEnd
	ri.eventOffsets = make([]int, 0, eventCount)
	ri.eventLengths = make([]int, 0, eventCount)

	for i := 0; i < eventCount; i++ {
		l := int(ri.engine.Uint32(ri.tail[i*4 : i*4+4]))
		if off+l > len(ri.tail) {
			return evioerr.New(evioerr.KindTruncated, "record event data runs past the tail")
		}
		ri.eventOffsets = append(ri.eventOffsets, off)
		ri.eventLengths = append(ri.eventLengths, l)
		off += l
	}

	return nil
}

// EventCount reports the number of events in this record.
func (ri *RecordInput) EventCount() int { return len(ri.eventOffsets) }

// Header returns the record's parsed header.
func (ri *RecordInput) Header() header.RecordHeader { return ri.header }

// UserHeaderSlice returns a view of the record's user header bytes.
func (ri *RecordInput) UserHeaderSlice() []byte { return ri.userHeader }

func (ri *RecordInput) checkIndex(i int) error {
	if i < 0 || i >= len(ri.eventOffsets) {
		return evioerr.New(evioerr.KindIndexOutOfRange, "event index out of range")
	}
	return nil
}

// EventSlice returns a view of event i's bytes (including its own
// trailing padding, per the index's recorded length).
func (ri *RecordInput) EventSlice(i int) ([]byte, error) {
	if err := ri.checkIndex(i); err != nil {
		return nil, err
	}
	off := ri.eventOffsets[i]
	return ri.tail[off : off+ri.eventLengths[i]], nil
}

// EventBytes returns a copy of event i's bytes.
func (ri *RecordInput) EventBytes(i int) ([]byte, error) {
	v, err := ri.EventSlice(i)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v...), nil
}

// CopyEvent copies event i's bytes into dst, returning the number of
// bytes copied (len(dst) if dst is smaller than the event).
func (ri *RecordInput) CopyEvent(i int, dst []byte) (int, error) {
	v, err := ri.EventSlice(i)
	if err != nil {
		return 0, err
	}
	return copy(dst, v), nil
}

// ToRecordOutput reconstitutes this record's events into a fresh,
// editable RecordOutput (spec.md §4.D), preserving compression kind,
// byte order, and record number.
func (ri *RecordInput) ToRecordOutput(opts ...Option) (*RecordOutput, error) {
	base := []Option{
		WithByteOrder(ri.engine),
		WithCompression(ri.header.CompressionKind),
		WithRecordNumber(ri.header.RecordNumber),
	}

	out, err := NewRecordOutput(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	for i := range ri.eventOffsets {
		ev, err := ri.EventSlice(i)
		if err != nil {
			return nil, err
		}
		// Events are serialized structure trees (structure.Serialize),
		// always word-aligned on their own, so TryAddEvent's Pad4 is a
		// no-op here and re-adding the exact slice round-trips the
		// original index length.
		if _, err := out.TryAddEvent(ev); err != nil {
			return nil, err
		}
	}

	return out, nil
}
