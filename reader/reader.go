// Package reader implements the evio Reader (spec.md §4.F): file and
// in-memory buffer access to events, transparently supporting both the
// legacy v4 block format and the v6 record format behind one interface.
package reader

import (
	"os"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/header"
	"github.com/jlab-evio/evio/record"
)

// recordEntry locates one v6 record (or the v4 equivalent, a block) in
// the backing byte slice, and how many events it holds — the unit the
// index (however it was obtained: trailer, file-header, or scan) always
// resolves to.
type recordEntry struct {
	Offset     int
	EventCount int
}

// Reader provides random and sequential access over a parsed evio file or
// in-memory buffer, v4 or v6 (spec.md §4.F). Only the sequential cursor
// advanced by NextEvent changes after construction.
type Reader struct {
	data    []byte
	engine  endian.EndianEngine
	version int // 4 or 6

	fileHeader header.FileHeader // zero value if version == 4

	records      []recordEntry
	totalEvents  int
	nextCursor   int // global event index consumed by NextEvent
}

// Open reads path fully into memory and parses it as an evio file.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, evioerr.Wrap(evioerr.KindIoError, -1, "reading evio file", err)
	}
	return OpenBuffer(data)
}

// OpenBuffer parses data (which it does not copy — callers must not
// mutate it afterward) as an evio file or buffer, v4 or v6.
func OpenBuffer(data []byte) (*Reader, error) {
	if len(data) < header.BlockHeaderBytesV4 {
		return nil, evioerr.New(evioerr.KindTruncated, "buffer too short to contain any evio header")
	}

	magicWord := data[28:32]

	if engine, ok := endian.DetectOrder(magicWord, header.FileMagicEvio); ok {
		return openV6(data, engine)
	}
	if engine, ok := endian.DetectOrder(magicWord, header.FileMagicHipo); ok {
		return openV6(data, engine)
	}
	if engine, ok := endian.DetectOrder(magicWord, header.RecordMagic); ok {
		return openV4(data, engine)
	}

	return nil, evioerr.New(evioerr.KindBadMagic, "buffer does not start with a recognized evio file or block magic")
}

func openV6(data []byte, engine endian.EndianEngine) (*Reader, error) {
	fh, err := header.ParseFileHeader(data, engine)
	if err != nil {
		return nil, err
	}

	r := &Reader{data: data, engine: engine, version: 6, fileHeader: fh}

	var entries []recordEntry
	switch {
	case fh.HasTrailerWithIndex() && fh.TrailerPosition > 0:
		entries, err = readTrailerIndex(data, int(fh.TrailerPosition), engine)
	case fh.HasBuiltinIndex() && fh.IndexArrayLenBytes > 0:
		entries, err = decodePairIndex(data[header.FileHeaderBytes:header.FileHeaderBytes+int(fh.IndexArrayLenBytes)], engine, header.FileHeaderBytes+int(fh.IndexArrayLenBytes)+int(fh.UserHeaderLenBytes)+pad4(int(fh.UserHeaderLenBytes)))
	default:
		start := header.FileHeaderBytes + int(fh.IndexArrayLenBytes) + int(fh.UserHeaderLenBytes) + pad4(int(fh.UserHeaderLenBytes))
		entries, err = scanRecords(data, start, engine)
	}
	if err != nil {
		return nil, err
	}

	r.records = entries
	for _, e := range entries {
		r.totalEvents += e.EventCount
	}

	return r, nil
}

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int { return (4 - n%4) % 4 }

// readTrailerIndex reads the trailer record at offset and decodes its
// tail as a flat array of (record_length_words, event_count) pairs
// (spec.md §4.F step 2, glossary "Trailer").
func readTrailerIndex(data []byte, offset int, engine endian.EndianEngine) ([]recordEntry, error) {
	if offset < 0 || offset+header.RecordHeaderBytes > len(data) {
		return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "trailer position out of range")
	}

	h, err := header.ParseRecordHeader(data[offset:], engine)
	if err != nil {
		return nil, err
	}

	total := offset + int(h.TotalLengthWords)*4
	if total > len(data) {
		return nil, evioerr.At(evioerr.KindTruncated, int64(offset), "trailer record shorter than declared length")
	}

	compressedTail := data[offset+header.RecordHeaderBytes : total]

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
			return nil, evioerr.Wrap(evioerr.KindCompressionError, int64(offset), "trailer decompression failed", err)
		}
		tail = tail[:n]
	}

	indexLen := int(h.IndexArrayLenBytes)
	if indexLen > len(tail) {
		return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "trailer index array longer than its tail")
	}

	return decodePairIndex(tail[:indexLen], engine, header.FileHeaderBytes)
}

// decodePairIndex decodes raw as (record_length_words, event_count)
// pairs, turning each into an absolute record offset starting from
// firstOffset.
func decodePairIndex(raw []byte, engine endian.EndianEngine, firstOffset int) ([]recordEntry, error) {
	if len(raw)%8 != 0 {
		return nil, evioerr.New(evioerr.KindBadFormat, "record index array length is not a multiple of 8 bytes")
	}

	var entries []recordEntry
	offset := firstOffset
	for i := 0; i+8 <= len(raw); i += 8 {
		lengthWords := engine.Uint32(raw[i : i+4])
		eventCount := engine.Uint32(raw[i+4 : i+8])
		entries = append(entries, recordEntry{Offset: offset, EventCount: int(eventCount)})
		offset += int(lengthWords) * 4
	}

	return entries, nil
}

// scanRecords walks the record stream sequentially from start, reading
// each record header to discover its length and event count, stopping at
// the trailer (a record whose header type marks it as such) or end of
// data (spec.md §4.F step 2, fallback path).
func scanRecords(data []byte, start int, engine endian.EndianEngine) ([]recordEntry, error) {
	var entries []recordEntry
	offset := start

	for offset+header.RecordHeaderBytes <= len(data) {
		h, err := header.ParseRecordHeader(data[offset:], engine)
		if err != nil {
			return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "bad record header during scan: "+err.Error())
		}

		if h.BitInfo.HeaderType() == header.HeaderTypeEvioTrailer {
			break
		}

		entries = append(entries, recordEntry{Offset: offset, EventCount: int(h.EventCount)})

		total := int(h.TotalLengthWords) * 4
		if total <= 0 {
			return nil, evioerr.At(evioerr.KindBadFormat, int64(offset), "record declares zero or negative total length")
		}
		offset += total
	}

	return entries, nil
}

// RecordCount reports the number of (non-trailer) records in the file.
func (r *Reader) RecordCount() int { return len(r.records) }

// EventCount reports the total number of events across all records.
func (r *Reader) EventCount() int { return r.totalEvents }

// Version reports 4 or 6, matching the file's on-disk format.
func (r *Reader) Version() int { return r.version }

// ByteOrder reports the byte order detected from the file's magic word.
func (r *Reader) ByteOrder() endian.EndianEngine { return r.engine }

func (r *Reader) checkRecordIndex(i int) error {
	if i < 0 || i >= len(r.records) {
		return evioerr.New(evioerr.KindIndexOutOfRange, "record index out of range")
	}
	return nil
}

// LoadRecord parses and returns record i (v6 only — see LoadBlock for
// v4), giving O(1) random access once the index is built.
func (r *Reader) LoadRecord(i int) (*record.RecordInput, error) {
	if r.version != 6 {
		return nil, evioerr.New(evioerr.KindInvalidState, "LoadRecord is only valid for v6 files; use LoadBlock for v4")
	}
	if err := r.checkRecordIndex(i); err != nil {
		return nil, err
	}

	entry := r.records[i]
	in, err := record.Parse(r.data[entry.Offset:], r.engine)
	if err != nil {
		return nil, evioerr.At(evioerr.KindBadFormat, int64(entry.Offset), "parsing record during LoadRecord: "+err.Error())
	}

	return in, nil
}

// Event returns event globalIndex's raw bytes, resolving which record it
// falls in by walking the per-record event counts.
func (r *Reader) Event(globalIndex int) ([]byte, error) {
	if globalIndex < 0 || globalIndex >= r.totalEvents {
		return nil, evioerr.New(evioerr.KindIndexOutOfRange, "event index out of range")
	}

	remaining := globalIndex
	for i, entry := range r.records {
		if remaining < entry.EventCount {
			if r.version == 6 {
				in, err := r.LoadRecord(i)
				if err != nil {
					return nil, err
				}
				return in.EventBytes(remaining)
			}

			blk, err := r.LoadBlock(i)
			if err != nil {
				return nil, err
			}
			return blk.EventBytes(remaining)
		}
		remaining -= entry.EventCount
	}

	return nil, evioerr.New(evioerr.KindIndexOutOfRange, "event index out of range")
}

// NextEvent returns the next event in sequential order and advances the
// cursor, or (nil, false, nil) once every event has been consumed.
func (r *Reader) NextEvent() ([]byte, bool, error) {
	if r.nextCursor >= r.totalEvents {
		return nil, false, nil
	}

	ev, err := r.Event(r.nextCursor)
	if err != nil {
		return nil, false, err
	}
	r.nextCursor++

	return ev, true, nil
}

// EventsInRecord iterates record i's events in order, calling visit for
// each until visit returns an error or all events are consumed. This is a
// convenience layered on RecordInput, not part of the core read path
// (spec.md's supplemented §3 features).
func (r *Reader) EventsInRecord(i int, visit func(eventIndex int, data []byte) error) error {
	in, err := r.LoadRecord(i)
	if err != nil {
		return err
	}

	for j := 0; j < in.EventCount(); j++ {
		ev, err := in.EventSlice(j)
		if err != nil {
			return err
		}
		if err := visit(j, ev); err != nil {
			return err
		}
	}

	return nil
}
