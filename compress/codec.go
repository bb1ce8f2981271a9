package compress

import (
	"fmt"

	"github.com/jlab-evio/evio/evioerr"
)

// Kind identifies a record-tail compression algorithm. Values are fixed by
// the wire format (record header word 9, bits 28-31) and must not be
// renumbered.
type Kind uint8

const (
	None  Kind = 0
	LZ4   Kind = 1
	LZ4HC Kind = 2
	Gzip  Kind = 3
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case LZ4:
		return "LZ4"
	case LZ4HC:
		return "LZ4HC"
	case Gzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the four wire-defined kinds.
func (k Kind) Valid() bool {
	return k <= Gzip
}

// Codec compresses and decompresses a single record's index+user-header+
// event tail as one blob.
//
// Compress returns the number of bytes written into dst (the caller
// supplies dst sized via MaxCompressedLen, to avoid per-call allocation on
// the writer's hot path). Decompress requires the caller to know the exact
// uncompressed length in advance — which the record header always
// supplies (word 8) — so it never has to guess-and-grow a buffer.
type Codec interface {
	Compress(src []byte, dst []byte) (n int, err error)
	Decompress(src []byte, uncompressedLen int, dst []byte) (n int, err error)
	MaxCompressedLen(srcLen int) int
}

// Get returns the Codec implementing kind.
func Get(kind Kind) (Codec, error) {
	switch kind {
	case None:
		return noopCodec{}, nil
	case LZ4:
		return lz4Codec{hc: false}, nil
	case LZ4HC:
		return lz4Codec{hc: true}, nil
	case Gzip:
		return gzipCodec{}, nil
	default:
		return nil, evioerr.New(evioerr.KindCompressionError, fmt.Sprintf("unsupported compression kind %d", kind))
	}
}
