package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/jlab-evio/evio/evioerr"
)

// gzipWriterPool amortizes the allocation cost of the flate tables
// gzip.Writer builds internally; readers are created per call.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// gzipCodec implements Codec using klauspost/compress's drop-in, faster
// gzip implementation rather than the standard library's compress/gzip.
type gzipCodec struct{}

var _ Codec = gzipCodec{}

// MaxCompressedLen has no tight closed form for DEFLATE; gzip adds a
// 10-byte header, an 8-byte trailer, and a worst case of roughly
// len+len/1000+12 for the flate stream. We use a generous bound since the
// destination buffer is scratch, not the final record (build() truncates
// to the actual compressed length it gets back).
func (c gzipCodec) MaxCompressedLen(srcLen int) int {
	return srcLen + srcLen/1000 + 64
}

func (c gzipCodec) Compress(src, dst []byte) (int, error) {
	var buf bytes.Buffer

	zw, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(src); err != nil {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "gzip write failed", err)
	}
	if err := zw.Close(); err != nil {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "gzip close failed", err)
	}

	if buf.Len() > len(dst) {
		return 0, evioerr.New(evioerr.KindCompressionError, "gzip: destination buffer too small")
	}

	return copy(dst, buf.Bytes()), nil
}

func (c gzipCodec) Decompress(src []byte, uncompressedLen int, dst []byte) (int, error) {
	zr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "gzip header invalid", err)
	}
	defer zr.Close()

	if len(dst) < uncompressedLen {
		return 0, evioerr.New(evioerr.KindCompressionError, "gzip: destination buffer too small")
	}

	n, err := io.ReadFull(zr, dst[:uncompressedLen])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "gzip decompress failed", err)
	}
	if n != uncompressedLen {
		return 0, evioerr.New(evioerr.KindCompressionError, "gzip: short decompressed output")
	}

	return n, nil
}
