package structure

import (
	"github.com/jlab-evio/evio/bytebuf"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// padInfo computes, for a leaf's encoded element bytes, the number of
// trailing pad bytes to write and the 2-bit pad-count value recorded in
// the owning bank/segment header (spec.md §4.E padding rules). TagSegment
// headers have no pad field at all — PadBits returned for a tag-segment
// leaf is always 0, and callers must ensure only naturally word-aligned
// types are stored there (see Node.ValidateForTagSegment).
func padInfo(t DataType, nElemBytes int) (padBytes int, padBits uint8) {
	switch t {
	case Int8, Uint8, CharStar8:
		pad := bytebuf.Pad4(nElemBytes)
		return pad, uint8(pad)
	case Int16, Uint16:
		if nElemBytes%4 != 0 {
			return 2, 2
		}
		return 0, 0
	default:
		return 0, 0
	}
}

// ValidateForTagSegment reports an error if n is a leaf whose type would
// require a pad-count field to round-trip (byte/short arrays of a count
// not already a multiple of the natural word alignment), since
// TagSegmentHeader has no pad field to record it in.
func (n *Node) ValidateForTagSegment() error {
	if n.Kind != KindTagSegment || n.IsContainer() {
		return nil
	}

	_, padBits := padInfo(n.Type, len(n.Data))
	if padBits != 0 {
		return evioerr.New(evioerr.KindBadFormat, "tag-segment leaf requires padding but has no pad field to record it")
	}

	return nil
}

// EncodeUint8Slice and the Encode*Slice functions below encode a slice of
// fixed-size elements into the raw
// element bytes a leaf Node stores in Data (unpadded — Serialize appends
// padding separately).
func EncodeUint8Slice(v []uint8) []byte { return append([]byte(nil), v...) }

func EncodeInt8Slice(v []int8) []byte {
	out := make([]byte, len(v))
	for i, e := range v {
		out[i] = byte(e)
	}
	return out
}

func EncodeUint16Slice(v []uint16, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*2)
	for i, e := range v {
		engine.PutUint16(out[i*2:], e)
	}
	return out
}

func EncodeInt16Slice(v []int16, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*2)
	for i, e := range v {
		engine.PutUint16(out[i*2:], uint16(e))
	}
	return out
}

func EncodeUint32Slice(v []uint32, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*4)
	for i, e := range v {
		engine.PutUint32(out[i*4:], e)
	}
	return out
}

func EncodeInt32Slice(v []int32, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*4)
	for i, e := range v {
		engine.PutUint32(out[i*4:], uint32(e))
	}
	return out
}

func EncodeFloat32Slice(v []float32, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*4)
	buf := bytebuf.New(out, engine)
	for i, e := range v {
		_ = buf.PutFloat32At(i*4, e)
	}
	return out
}

func EncodeUint64Slice(v []uint64, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*8)
	for i, e := range v {
		engine.PutUint64(out[i*8:], e)
	}
	return out
}

func EncodeInt64Slice(v []int64, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*8)
	for i, e := range v {
		engine.PutUint64(out[i*8:], uint64(e))
	}
	return out
}

func EncodeFloat64Slice(v []float64, engine endian.EndianEngine) []byte {
	out := make([]byte, len(v)*8)
	buf := bytebuf.New(out, engine)
	for i, e := range v {
		_ = buf.PutFloat64At(i*8, e)
	}
	return out
}

// --- typed decode accessors ---

func (n *Node) Uint8Slice() []uint8 { return append([]uint8(nil), n.Data...) }

func (n *Node) Int8Slice() []int8 {
	out := make([]int8, len(n.Data))
	for i, b := range n.Data {
		out[i] = int8(b)
	}
	return out
}

func (n *Node) Uint16Slice(engine endian.EndianEngine) []uint16 {
	count := len(n.Data) / 2
	out := make([]uint16, count)
	for i := range out {
		out[i] = engine.Uint16(n.Data[i*2:])
	}
	return out
}

func (n *Node) Int16Slice(engine endian.EndianEngine) []int16 {
	count := len(n.Data) / 2
	out := make([]int16, count)
	for i := range out {
		out[i] = int16(engine.Uint16(n.Data[i*2:]))
	}
	return out
}

func (n *Node) Uint32Slice(engine endian.EndianEngine) []uint32 {
	count := len(n.Data) / 4
	out := make([]uint32, count)
	for i := range out {
		out[i] = engine.Uint32(n.Data[i*4:])
	}
	return out
}

func (n *Node) Int32Slice(engine endian.EndianEngine) []int32 {
	count := len(n.Data) / 4
	out := make([]int32, count)
	for i := range out {
		out[i] = int32(engine.Uint32(n.Data[i*4:]))
	}
	return out
}

func (n *Node) Float32Slice(engine endian.EndianEngine) []float32 {
	buf := bytebuf.New(n.Data, engine)
	count := len(n.Data) / 4
	out := make([]float32, count)
	for i := range out {
		v, _ := buf.GetFloat32At(i * 4)
		out[i] = v
	}
	return out
}

func (n *Node) Uint64Slice(engine endian.EndianEngine) []uint64 {
	count := len(n.Data) / 8
	out := make([]uint64, count)
	for i := range out {
		out[i] = engine.Uint64(n.Data[i*8:])
	}
	return out
}

func (n *Node) Int64Slice(engine endian.EndianEngine) []int64 {
	count := len(n.Data) / 8
	out := make([]int64, count)
	for i := range out {
		out[i] = int64(engine.Uint64(n.Data[i*8:]))
	}
	return out
}

func (n *Node) Float64Slice(engine endian.EndianEngine) []float64 {
	buf := bytebuf.New(n.Data, engine)
	count := len(n.Data) / 8
	out := make([]float64, count)
	for i := range out {
		v, _ := buf.GetFloat64At(i * 8)
		out[i] = v
	}
	return out
}
