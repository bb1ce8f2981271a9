package compress

// noopCodec implements Codec for compress.None: it copies bytes through
// unchanged. evio still routes None through the Codec interface (rather
// than special-casing it at call sites) so the record codec's build/parse
// path never branches on compression kind.
type noopCodec struct{}

var _ Codec = noopCodec{}

func (noopCodec) Compress(src, dst []byte) (int, error) {
	return copy(dst, src), nil
}

func (noopCodec) Decompress(src []byte, uncompressedLen int, dst []byte) (int, error) {
	return copy(dst, src[:uncompressedLen]), nil
}

func (noopCodec) MaxCompressedLen(srcLen int) int {
	return srcLen
}
