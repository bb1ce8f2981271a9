package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/jlab-evio/evio/evioerr"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse across record
// builds; the compressor carries a hash table that is expensive to
// re-zero per call.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{Level: lz4.Level9}
	},
}

// lz4Codec implements Codec for both LZ4 (fast) and LZ4-HC (high
// compression). The wire format has one compression-type slot each; the
// pierrec/lz4 package models the distinction as two compressor types
// rather than one compressor with a level knob, so lz4Codec picks between
// them based on hc.
type lz4Codec struct {
	hc bool
}

var _ Codec = lz4Codec{}

func (c lz4Codec) MaxCompressedLen(srcLen int) int {
	return lz4.CompressBlockBound(srcLen)
}

func (c lz4Codec) Compress(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	if c.hc {
		lc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
		defer lz4HCCompressorPool.Put(lc)

		n, err := lc.CompressBlock(src, dst)
		if err != nil {
			return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "lz4hc compress failed", err)
		}
		if n == 0 {
			return 0, evioerr.New(evioerr.KindCompressionError, "lz4hc: destination buffer too small")
		}

		return n, nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, dst)
	if err != nil {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "lz4 compress failed", err)
	}
	if n == 0 {
		return 0, evioerr.New(evioerr.KindCompressionError, "lz4: destination buffer too small")
	}

	return n, nil
}

func (c lz4Codec) Decompress(src []byte, uncompressedLen int, dst []byte) (int, error) {
	if uncompressedLen == 0 {
		return 0, nil
	}
	if len(dst) < uncompressedLen {
		return 0, evioerr.New(evioerr.KindCompressionError, fmt.Sprintf("lz4: dst too small, need %d have %d", uncompressedLen, len(dst)))
	}

	// Records zero-pad the compressed block to a 4-byte boundary and the
	// block decoder rejects trailing bytes, so up to three trailing zero
	// bytes are dropped, one at a time, until the block decodes.
	n, err := lz4.UncompressBlock(src, dst[:uncompressedLen])
	for trim := 1; err != nil && trim <= 3 && trim <= len(src) && src[len(src)-trim] == 0; trim++ {
		n, err = lz4.UncompressBlock(src[:len(src)-trim], dst[:uncompressedLen])
	}
	if err != nil {
		return 0, evioerr.Wrap(evioerr.KindCompressionError, -1, "lz4 decompress failed", err)
	}
	if n != uncompressedLen {
		return 0, evioerr.New(evioerr.KindCompressionError, fmt.Sprintf("lz4: expected %d decompressed bytes, got %d", uncompressedLen, n))
	}

	return n, nil
}
