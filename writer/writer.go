// Package writer implements the evio single-thread Writer (spec.md
// §4.G): composes records from added events, splits output across
// multiple files once a byte budget is reached, and emits a trailer with
// index on close.
package writer

import (
	"os"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/filename"
	"github.com/jlab-evio/evio/header"
	"github.com/jlab-evio/evio/internal/options"
	"github.com/jlab-evio/evio/record"
	"github.com/jlab-evio/evio/structure"
)

// MaxEventBytes is the hard per-event size limit (spec.md §4.G): any
// retry of add_event after a record-full rejection is guaranteed to
// succeed only under this bound.
const MaxEventBytes = int(^uint32(0) >> 1) // u32::MAX/2

// Kind distinguishes a file-backed writer from an in-memory one.
type Kind uint8

const (
	KindFile Kind = iota
	KindBuffer
)

// Config configures a Writer at construction (spec.md §4.G's enumerated
// option set).
type Config struct {
	Kind        Kind
	ByteOrder   endian.EndianEngine
	Compression compress.Kind

	MaxEventsPerRecord int
	MaxBytesPerRecord  int
	SplitBytes         int64 // 0 = no split

	StreamID    int
	StreamCount int
	RunNumber   int
	BaseName    string // file-name template, spec.md §4.I

	FirstEvent    []byte
	DictionaryXML string
	AppendMode    bool
}

// Option mutates a Config before the Writer is constructed.
type Option = options.Option[*Config]

func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError[*Config](func(c *Config) { c.ByteOrder = engine })
}

func WithCompression(kind compress.Kind) Option {
	return options.NoError[*Config](func(c *Config) { c.Compression = kind })
}

func WithMaxEventsPerRecord(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.MaxEventsPerRecord = n })
}

func WithMaxBytesPerRecord(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.MaxBytesPerRecord = n })
}

func WithSplitBytes(n int64) Option {
	return options.NoError[*Config](func(c *Config) { c.SplitBytes = n })
}

func WithStream(id, count int) Option {
	return options.NoError[*Config](func(c *Config) { c.StreamID = id; c.StreamCount = count })
}

func WithRunNumber(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.RunNumber = n })
}

func WithBaseName(name string) Option {
	return options.NoError[*Config](func(c *Config) { c.BaseName = name })
}

func WithFirstEvent(event []byte) Option {
	return options.NoError[*Config](func(c *Config) { c.FirstEvent = event })
}

func WithDictionaryXML(xml string) Option {
	return options.NoError[*Config](func(c *Config) { c.DictionaryXML = xml })
}

func WithAppendMode(v bool) Option {
	return options.NoError[*Config](func(c *Config) { c.AppendMode = v })
}

// Writer assembles events into records and records into a file (or an
// in-memory buffer), splitting across files once a configured byte
// budget is exceeded (spec.md §4.G). Not safe for concurrent use. The
// supply package provides a separate multi-worker record pipeline; it does
// not use Writer.
type Writer struct {
	cfg Config

	cur *record.RecordOutput

	file          *os.File
	buf           []byte // accumulates output when cfg.Kind == KindBuffer
	bytesWritten  int64  // bytes written to the current split file
	splitCounter  int
	recordCounter uint32

	fileHeader     header.FileHeader
	trailerEntries []trailerEntry
	closed         bool
}

type trailerEntry struct {
	lengthWords uint32
	eventCount  uint32
}

// New constructs a Writer and opens its first output file (or buffer).
func New(opts ...Option) (*Writer, error) {
	cfg := Config{
		ByteOrder:          endian.GetLittleEndianEngine(),
		Compression:        compress.None,
		MaxEventsPerRecord: record.DefaultMaxEvents,
		MaxBytesPerRecord:  record.DefaultMaxBytes,
	}

	for _, opt := range opts {
		if err := options.Apply[*Config](&cfg, opt); err != nil {
			return nil, err
		}
	}

	if !cfg.Compression.Valid() {
		return nil, evioerr.New(evioerr.KindBadFormat, "invalid compression kind in writer configuration")
	}

	// Without a base name there is no file to open; output accumulates in
	// memory instead (see Bytes).
	if cfg.BaseName == "" {
		cfg.Kind = KindBuffer
	}

	w := &Writer{cfg: cfg}

	if err := w.openCurrentFile(); err != nil {
		return nil, err
	}
	if err := w.newCurrentRecord(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Writer) newCurrentRecord() error {
	w.recordCounter++
	out, err := record.NewRecordOutput(
		record.WithByteOrder(w.cfg.ByteOrder),
		record.WithCompression(w.cfg.Compression),
		record.WithMaxEvents(w.cfg.MaxEventsPerRecord),
		record.WithMaxBytes(w.cfg.MaxBytesPerRecord),
		record.WithRecordNumber(w.recordCounter),
	)
	if err != nil {
		return err
	}
	w.cur = out
	return nil
}

// openCurrentFile opens (or, for KindBuffer, resets) the current split
// file and writes its file header. The first split file's user header
// carries the dictionary and first-event payloads, in that order
// (spec.md §4.G: "dictionary/first-event serialized into the first
// record's user header"); every later split repeats the same bytes so a
// reader opening any split independently still sees both.
func (w *Writer) openCurrentFile() error {
	name, err := w.currentFileName()
	if err != nil {
		return err
	}

	if w.cfg.Kind == KindFile {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if w.cfg.AppendMode {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(name, flags, 0644)
		if err != nil {
			return evioerr.Wrap(evioerr.KindIoError, -1, "opening evio output file", err)
		}
		w.file = f
	} else {
		w.buf = w.buf[:0]
	}

	w.fileHeader = header.NewFileHeader()
	w.fileHeader.SetHasDictionary(w.cfg.DictionaryXML != "")
	w.fileHeader.SetHasFirstEvent(len(w.cfg.FirstEvent) > 0)

	n, err := w.rawWrite(w.fileHeader.Bytes(w.cfg.ByteOrder))
	if err != nil {
		return err
	}
	w.bytesWritten = int64(n)
	w.trailerEntries = w.trailerEntries[:0]

	return nil
}

func (w *Writer) currentFileName() (string, error) {
	if w.cfg.BaseName == "" {
		return "", nil
	}
	return filename.Generate(w.cfg.BaseName, filename.Context{
		RunNumber:   w.cfg.RunNumber,
		SplitNumber: w.splitCounter,
		StreamID:    w.cfg.StreamID,
		StreamCount: w.cfg.StreamCount,
		Splitting:   w.cfg.SplitBytes > 0,
	})
}

func (w *Writer) rawWrite(p []byte) (int, error) {
	if w.cfg.Kind == KindFile {
		n, err := w.file.Write(p)
		if err != nil {
			return n, evioerr.Wrap(evioerr.KindIoError, w.bytesWritten, "writing evio output", err)
		}
		return n, nil
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// firstRecordUserHeader serializes the dictionary XML and first event
// into the user-header layout the teacher's options config pattern
// mirrors: dictionary first, then first event, each as a STRING-typed or
// raw leaf bank so a reader can parse them as ordinary structure.
func (w *Writer) firstRecordUserHeader() []byte {
	var out []byte
	if w.cfg.DictionaryXML != "" {
		n := structure.NewStringLeafBank(0, 0, []string{w.cfg.DictionaryXML})
		b, err := structure.Serialize(n, w.cfg.ByteOrder)
		if err == nil {
			out = append(out, b...)
		}
	}
	if len(w.cfg.FirstEvent) > 0 {
		out = append(out, w.cfg.FirstEvent...)
	}
	return out
}

// AddEvent appends event to the current record, building and flushing
// the current record (and rotating to a new split file if needed) and
// retrying as many times as necessary when the record is full (spec.md
// §4.G). Guaranteed to succeed for any event under MaxEventBytes.
func (w *Writer) AddEvent(event []byte) error {
	if w.closed {
		return evioerr.New(evioerr.KindInvalidState, "write after close")
	}
	if len(event) > MaxEventBytes {
		return evioerr.New(evioerr.KindOutOfBounds, "event exceeds the maximum supported event size")
	}

	for {
		res, err := w.cur.TryAddEvent(event)
		if err != nil {
			return err
		}
		if res == record.Accepted {
			return nil
		}

		if err := w.flushCurrentRecord(); err != nil {
			return err
		}
		if err := w.newCurrentRecord(); err != nil {
			return err
		}
	}
}

// flushCurrentRecord builds the current record, splits to a new file
// first if the split budget would be exceeded, then writes the built
// bytes and records a trailer-index entry for it.
func (w *Writer) flushCurrentRecord() error {
	var userHeader []byte
	if len(w.trailerEntries) == 0 {
		userHeader = w.firstRecordUserHeader()
	}

	built, err := w.cur.Build(userHeader)
	if err != nil {
		return err
	}

	if w.cfg.SplitBytes > 0 && w.bytesWritten+int64(len(built)) >= w.cfg.SplitBytes && len(w.trailerEntries) > 0 {
		if err := w.closeCurrentFile(); err != nil {
			return err
		}
		w.splitCounter++
		if err := w.openCurrentFile(); err != nil {
			return err
		}
		// The record now opens a new split file, so it is rebuilt with the
		// dictionary/first-event user header.
		if uh := w.firstRecordUserHeader(); len(uh) > 0 {
			in, err := record.Parse(built, w.cfg.ByteOrder)
			if err != nil {
				return err
			}
			out, err := in.ToRecordOutput(record.WithMaxEvents(w.cfg.MaxEventsPerRecord), record.WithMaxBytes(w.cfg.MaxBytesPerRecord))
			if err != nil {
				return err
			}
			if built, err = out.Build(uh); err != nil {
				return err
			}
		}
	}

	n, err := w.rawWrite(built)
	if err != nil {
		return err
	}
	w.bytesWritten += int64(n)

	w.trailerEntries = append(w.trailerEntries, trailerEntry{
		lengthWords: uint32(len(built) / 4),
		eventCount:  uint32(w.cur.EventCount()),
	})

	return nil
}

// closeCurrentFile writes the trailer record, patches the file header's
// trailer position, and closes the current split file.
func (w *Writer) closeCurrentFile() error {
	trailerOffset := w.bytesWritten

	pairs := make([]byte, len(w.trailerEntries)*8)
	for i, e := range w.trailerEntries {
		w.cfg.ByteOrder.PutUint32(pairs[i*8:i*8+4], e.lengthWords)
		w.cfg.ByteOrder.PutUint32(pairs[i*8+4:i*8+8], e.eventCount)
	}

	w.fileHeader.SetHasTrailerWithIndex(true)
	w.fileHeader.TrailerPosition = uint64(trailerOffset)

	trailerHeader := header.RecordHeader{
		RecordNumber:         w.recordCounter + 1,
		HeaderLengthWords:    header.RecordHeaderWords,
		EventCount:           0,
		IndexArrayLenBytes:   uint32(len(pairs)),
		BitInfo:              header.NewBitInfo(header.HeaderTypeEvioTrailer),
		Magic:                header.RecordMagic,
		UncompressedLenBytes: uint32(len(pairs)),
		CompressionKind:      compress.None,
		CompressedLenWords:   uint32(len(pairs) / 4),
	}
	trailerHeader.TotalLengthWords = header.RecordHeaderWords + uint32(len(pairs)/4)

	trailerBytes := append(trailerHeader.Bytes(w.cfg.ByteOrder), pairs...)
	if _, err := w.rawWrite(trailerBytes); err != nil {
		return err
	}

	if w.cfg.Kind == KindFile {
		if err := w.patchFileHeader(); err != nil {
			return err
		}
		if err := w.file.Close(); err != nil {
			return evioerr.Wrap(evioerr.KindIoError, -1, "closing evio output file", err)
		}
	} else {
		w.patchBufferedFileHeader()
	}

	return nil
}

// patchFileHeader rewrites the file header in place at offset 0 now
// that the trailer position and feature bits are known.
func (w *Writer) patchFileHeader() error {
	b := w.fileHeader.Bytes(w.cfg.ByteOrder)
	if _, err := w.file.WriteAt(b, 0); err != nil {
		return evioerr.Wrap(evioerr.KindIoError, 0, "patching evio file header", err)
	}
	return nil
}

func (w *Writer) patchBufferedFileHeader() {
	b := w.fileHeader.Bytes(w.cfg.ByteOrder)
	copy(w.buf[:len(b)], b)
}

// Bytes returns the accumulated output for a KindBuffer writer. Only
// valid after Close.
func (w *Writer) Bytes() []byte { return w.buf }

// Sync flushes the current split file's contents to stable storage. A
// no-op for a KindBuffer writer.
func (w *Writer) Sync() error {
	if w.cfg.Kind != KindFile || w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return evioerr.Wrap(evioerr.KindIoError, -1, "syncing evio output file", err)
	}
	return nil
}

// Close flushes any partial record, writes the trailer, and patches the
// file header (spec.md §4.G).
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.cur.EventCount() > 0 || len(w.trailerEntries) == 0 {
		if err := w.flushCurrentRecord(); err != nil {
			return err
		}
	}

	return w.closeCurrentFile()
}
