// Package record implements the evio record codec (spec.md §4.D):
// RecordOutput aggregates events into a compressed, self-describing
// record; RecordInput parses one back out.
package record

import (
	"github.com/jlab-evio/evio/bytebuf"
	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/header"
	"github.com/jlab-evio/evio/internal/options"
	"github.com/jlab-evio/evio/internal/pool"
)

const (
	// DefaultMaxEvents is the soft per-record event-count ceiling.
	DefaultMaxEvents = 1_000_000
	// DefaultMaxBytes is the soft per-record uncompressed payload ceiling.
	DefaultMaxBytes = 8 * 1024 * 1024
)

// AddResult is the outcome of RecordOutput.TryAddEvent.
type AddResult uint8

const (
	Accepted AddResult = iota
	RejectedMaxEvents
	RejectedMaxBytes
)

func (r AddResult) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case RejectedMaxEvents:
		return "RejectedMaxEvents"
	case RejectedMaxBytes:
		return "RejectedMaxBytes"
	default:
		return "Unknown"
	}
}

// Option configures a RecordOutput at construction.
type Option = options.Option[*RecordOutput]

func WithMaxEvents(n int) Option {
	return options.NoError[*RecordOutput](func(r *RecordOutput) { r.maxEvents = n })
}

func WithMaxBytes(n int) Option {
	return options.NoError[*RecordOutput](func(r *RecordOutput) { r.maxBytes = n })
}

func WithCompression(kind compress.Kind) Option {
	return options.NoError[*RecordOutput](func(r *RecordOutput) { r.compression = kind })
}

func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError[*RecordOutput](func(r *RecordOutput) { r.engine = engine })
}

func WithRecordNumber(n uint32) Option {
	return options.NoError[*RecordOutput](func(r *RecordOutput) { r.recordNumber = n })
}

// RecordOutput aggregates events into a record's two owned regions — an
// index buffer of per-event lengths, and a concatenated event buffer —
// then assembles and optionally compresses a self-contained record
// (spec.md §4.D).
type RecordOutput struct {
	engine       endian.EndianEngine
	compression  compress.Kind
	maxEvents    int
	maxBytes     int
	recordNumber uint32

	eventLengths []uint32
	events       *pool.ByteBuffer

	built []byte
}

// NewRecordOutput creates a RecordOutput with evio's documented defaults
// (1,000,000 max events, 8MB max uncompressed bytes, no compression,
// little-endian), overridden by opts.
func NewRecordOutput(opts ...Option) (*RecordOutput, error) {
	r := &RecordOutput{
		engine:      endian.GetLittleEndianEngine(),
		compression: compress.None,
		maxEvents:   DefaultMaxEvents,
		maxBytes:    DefaultMaxBytes,
		events:      pool.GetRecordBuffer(),
	}

	for _, opt := range opts {
		if err := options.Apply[*RecordOutput](r, opt); err != nil {
			return nil, err
		}
	}

	if !r.compression.Valid() {
		return nil, evioerr.New(evioerr.KindBadFormat, "invalid compression kind in record output configuration")
	}

	return r, nil
}

// EventCount reports how many events have been accepted so far.
func (r *RecordOutput) EventCount() int { return len(r.eventLengths) }

// currentBytes is the uncompressed size the final tail (index + events,
// excluding any future user header) would occupy right now.
func (r *RecordOutput) currentBytes() int {
	return len(r.eventLengths)*4 + r.events.Len()
}

// TryAddEvent appends event's bytes to the record if it still fits under
// the configured event-count and byte limits. The first event of an
// empty record is always accepted, even if it alone exceeds maxBytes —
// spec.md §4.D's hard invariant that no event is ever split across
// records.
func (r *RecordOutput) TryAddEvent(event []byte) (AddResult, error) {
	if r.built != nil {
		return 0, evioerr.New(evioerr.KindInvalidState, "record already built; call Reset before adding more events")
	}

	if len(r.eventLengths) >= r.maxEvents {
		return RejectedMaxEvents, nil
	}

	padded := bytebuf.Pad4(len(event))
	added := len(event) + padded

	if len(r.eventLengths) > 0 && r.currentBytes()+4+added > r.maxBytes {
		return RejectedMaxBytes, nil
	}

	r.events.ExtendOrGrow(added)
	dst := r.events.Slice(r.events.Len()-added, r.events.Len())
	copy(dst, event)
	for i := len(event); i < added; i++ {
		dst[i] = 0
	}

	r.eventLengths = append(r.eventLengths, uint32(added))

	return Accepted, nil
}

// Reset clears indices and counters, reusing the allocated buffers, so
// the RecordOutput can be filled again (spec.md §4.D).
func (r *RecordOutput) Reset() {
	r.eventLengths = r.eventLengths[:0]
	r.events.Reset()
	r.built = nil
}

// Release returns the internal event buffer to the shared pool. Callers
// that own a RecordOutput for the lifetime of a writer should call this
// only when discarding the RecordOutput entirely.
func (r *RecordOutput) Release() {
	pool.PutRecordBuffer(r.events)
	r.events = nil
}

// Build assembles [header|index|user_header(+pad)|events(+pad)],
// compressing the index+user-header+events tail as one blob when
// compression != None, and returns the final record bytes. After Build,
// the RecordOutput is immutable until Reset.
func (r *RecordOutput) Build(userHeader []byte) ([]byte, error) {
	if r.built != nil {
		return r.built, nil
	}

	indexBytes := make([]byte, len(r.eventLengths)*4)
	for i, l := range r.eventLengths {
		r.engine.PutUint32(indexBytes[i*4:], l)
	}

	userHeaderPad := bytebuf.Pad4(len(userHeader))
	uncompressedTail := make([]byte, 0, len(indexBytes)+len(userHeader)+userHeaderPad+r.events.Len())
	uncompressedTail = append(uncompressedTail, indexBytes...)
	uncompressedTail = append(uncompressedTail, userHeader...)
	for i := 0; i < userHeaderPad; i++ {
		uncompressedTail = append(uncompressedTail, 0)
	}
	uncompressedTail = append(uncompressedTail, r.events.Bytes()...)

	tail, compressedLenBytes, err := r.compressTail(uncompressedTail)
	if err != nil {
		return nil, err
	}

	bi := header.NewBitInfo(header.HeaderTypeRecord).
		WithUserHeaderPad(userHeaderPad).
		WithDataPad(0)

	h := header.RecordHeader{
		RecordNumber:         r.recordNumber,
		HeaderLengthWords:    header.RecordHeaderWords,
		EventCount:           uint32(len(r.eventLengths)),
		IndexArrayLenBytes:   uint32(len(indexBytes)),
		BitInfo:              bi,
		UserHeaderLenBytes:   uint32(len(userHeader)),
		Magic:                header.RecordMagic,
		UncompressedLenBytes: uint32(len(uncompressedTail)),
		CompressionKind:      r.compression,
		CompressedLenWords:   uint32(compressedLenBytes / 4),
	}
	h.TotalLengthWords = uint32(header.RecordHeaderWords) + uint32(compressedLenBytes/4)

	out := make([]byte, 0, header.RecordHeaderBytes+len(tail))
	out = append(out, h.Bytes(r.engine)...)
	out = append(out, tail...)

	r.built = out
	return out, nil
}

// compressTail compresses uncompressed with r.compression (a no-op copy
// for compress.None), zero-pads the result to a 4-byte boundary, and
// returns the padded bytes plus the padded length. Build stores that padded
// length, in words, both as CompressedLenWords and as part of
// TotalLengthWords; the number of pad bytes is not recorded in the header.
func (r *RecordOutput) compressTail(uncompressed []byte) ([]byte, int, error) {
	codec, err := compress.Get(r.compression)
	if err != nil {
		return nil, 0, err
	}

	maxLen := codec.MaxCompressedLen(len(uncompressed))
	dst := make([]byte, maxLen)

	n, err := codec.Compress(uncompressed, dst)
	if err != nil {
		return nil, 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "record tail compression failed", err)
	}

	pad := bytebuf.Pad4(n)
	padded := dst[:n:n]
	if pad > 0 {
		padded = append(padded, make([]byte, pad)...)
	}

	return padded, len(padded), nil
}
