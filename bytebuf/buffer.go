// Package bytebuf provides a fixed-endian typed view over a contiguous byte
// region with a (position, limit, capacity) cursor, in the spirit of Java's
// java.nio.ByteBuffer. It is the primitive every evio codec reads and
// writes through: headers, record payloads, and event trees all go through
// a Buffer rather than raw byte-slice indexing.
package bytebuf

import (
	"math"

	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// Buffer wraps a byte slice with a cursor and a byte order. Unlike
// bytes.Buffer it never grows implicitly on Put* past limit/capacity: a
// write that would cross the limit returns ErrOutOfBounds, matching the
// hard-failure contract evio's codecs rely on.
type Buffer struct {
	buf      []byte
	position int
	limit    int
	order    endian.EndianEngine
}

// New wraps buf with position 0 and limit/capacity equal to len(buf).
func New(buf []byte, order endian.EndianEngine) *Buffer {
	return &Buffer{buf: buf, position: 0, limit: len(buf), order: order}
}

// Allocate creates a Buffer backed by a freshly made slice of size n.
func Allocate(n int, order endian.EndianEngine) *Buffer {
	return New(make([]byte, n), order)
}

func (b *Buffer) Bytes() []byte       { return b.buf }
func (b *Buffer) Position() int       { return b.position }
func (b *Buffer) Limit() int          { return b.limit }
func (b *Buffer) Capacity() int       { return len(b.buf) }
func (b *Buffer) Remaining() int      { return b.limit - b.position }
func (b *Buffer) Order() endian.EndianEngine { return b.order }

// SetOrder changes the byte order used by subsequent Get/Put calls. It does
// not touch already-written bytes.
func (b *Buffer) SetOrder(order endian.EndianEngine) { b.order = order }

// SetPosition moves the cursor. Returns an OutOfBounds error if pos is
// negative or beyond the limit.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.limit {
		return evioerr.At(evioerr.KindOutOfBounds, int64(pos), "position exceeds limit")
	}
	b.position = pos
	return nil
}

// SetLimit moves the limit. position is clamped down to the new limit if
// it now exceeds it, matching java.nio.ByteBuffer.limit semantics.
func (b *Buffer) SetLimit(limit int) error {
	if limit < 0 || limit > len(b.buf) {
		return evioerr.At(evioerr.KindOutOfBounds, int64(limit), "limit exceeds capacity")
	}
	b.limit = limit
	if b.position > limit {
		b.position = limit
	}
	return nil
}

// Clear resets position to 0 and limit to capacity.
func (b *Buffer) Clear() {
	b.position = 0
	b.limit = len(b.buf)
}

// Flip sets limit to the current position and position to 0, readying the
// buffer for reading back what was just written.
func (b *Buffer) Flip() {
	b.limit = b.position
	b.position = 0
}

// Rewind resets position to 0 without touching the limit.
func (b *Buffer) Rewind() {
	b.position = 0
}

// Compact discards bytes before position, shifting [position:limit) down to
// offset 0, and sets position to the shifted length and limit to capacity.
func (b *Buffer) Compact() {
	n := copy(b.buf, b.buf[b.position:b.limit])
	b.position = n
	b.limit = len(b.buf)
}

// Duplicate returns a new Buffer sharing the same backing storage but with
// an independent cursor.
func (b *Buffer) Duplicate() *Buffer {
	return &Buffer{buf: b.buf, position: b.position, limit: b.limit, order: b.order}
}

// Slice returns a Buffer viewing [off:off+n) of the backing storage,
// sharing storage (mutations are visible through both views), with a fresh
// cursor at position 0, limit n.
func (b *Buffer) Slice(off, n int) (*Buffer, error) {
	if off < 0 || n < 0 || off+n > len(b.buf) {
		return nil, evioerr.At(evioerr.KindOutOfBounds, int64(off), "slice range exceeds capacity")
	}
	return New(b.buf[off:off+n:off+n], b.order), nil
}

func (b *Buffer) checkAbs(off, n int) error {
	if off < 0 || n < 0 || off+n > b.limit {
		return evioerr.At(evioerr.KindOutOfBounds, int64(off), "access crosses limit")
	}
	return nil
}

// Pad4 returns the number of zero bytes needed to round n up to a multiple
// of 4: (4 - n mod 4) mod 4.
func Pad4(n int) int {
	return (4 - n%4) % 4
}

// --- absolute get/put ---

func (b *Buffer) GetUint8At(off int) (uint8, error) {
	if err := b.checkAbs(off, 1); err != nil {
		return 0, err
	}
	return b.buf[off], nil
}

func (b *Buffer) PutUint8At(off int, v uint8) error {
	if err := b.checkAbs(off, 1); err != nil {
		return err
	}
	b.buf[off] = v
	return nil
}

func (b *Buffer) GetUint16At(off int) (uint16, error) {
	if err := b.checkAbs(off, 2); err != nil {
		return 0, err
	}
	return b.order.Uint16(b.buf[off : off+2]), nil
}

func (b *Buffer) PutUint16At(off int, v uint16) error {
	if err := b.checkAbs(off, 2); err != nil {
		return err
	}
	b.order.PutUint16(b.buf[off:off+2], v)
	return nil
}

func (b *Buffer) GetUint32At(off int) (uint32, error) {
	if err := b.checkAbs(off, 4); err != nil {
		return 0, err
	}
	return b.order.Uint32(b.buf[off : off+4]), nil
}

func (b *Buffer) PutUint32At(off int, v uint32) error {
	if err := b.checkAbs(off, 4); err != nil {
		return err
	}
	b.order.PutUint32(b.buf[off:off+4], v)
	return nil
}

func (b *Buffer) GetUint64At(off int) (uint64, error) {
	if err := b.checkAbs(off, 8); err != nil {
		return 0, err
	}
	return b.order.Uint64(b.buf[off : off+8]), nil
}

func (b *Buffer) PutUint64At(off int, v uint64) error {
	if err := b.checkAbs(off, 8); err != nil {
		return err
	}
	b.order.PutUint64(b.buf[off:off+8], v)
	return nil
}

func (b *Buffer) GetFloat32At(off int) (float32, error) {
	u, err := b.GetUint32At(off)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (b *Buffer) PutFloat32At(off int, v float32) error {
	return b.PutUint32At(off, math.Float32bits(v))
}

func (b *Buffer) GetFloat64At(off int) (float64, error) {
	u, err := b.GetUint64At(off)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func (b *Buffer) PutFloat64At(off int, v float64) error {
	return b.PutUint64At(off, math.Float64bits(v))
}

// --- relative get/put, advancing position ---

func (b *Buffer) GetUint8() (uint8, error) {
	v, err := b.GetUint8At(b.position)
	if err != nil {
		return 0, err
	}
	b.position++
	return v, nil
}

func (b *Buffer) PutUint8(v uint8) error {
	if err := b.PutUint8At(b.position, v); err != nil {
		return err
	}
	b.position++
	return nil
}

func (b *Buffer) GetUint16() (uint16, error) {
	v, err := b.GetUint16At(b.position)
	if err != nil {
		return 0, err
	}
	b.position += 2
	return v, nil
}

func (b *Buffer) PutUint16(v uint16) error {
	if err := b.PutUint16At(b.position, v); err != nil {
		return err
	}
	b.position += 2
	return nil
}

func (b *Buffer) GetUint32() (uint32, error) {
	v, err := b.GetUint32At(b.position)
	if err != nil {
		return 0, err
	}
	b.position += 4
	return v, nil
}

func (b *Buffer) PutUint32(v uint32) error {
	if err := b.PutUint32At(b.position, v); err != nil {
		return err
	}
	b.position += 4
	return nil
}

func (b *Buffer) GetUint64() (uint64, error) {
	v, err := b.GetUint64At(b.position)
	if err != nil {
		return 0, err
	}
	b.position += 8
	return v, nil
}

func (b *Buffer) PutUint64(v uint64) error {
	if err := b.PutUint64At(b.position, v); err != nil {
		return err
	}
	b.position += 8
	return nil
}

func (b *Buffer) GetFloat32() (float32, error) {
	v, err := b.GetFloat32At(b.position)
	if err != nil {
		return 0, err
	}
	b.position += 4
	return v, nil
}

func (b *Buffer) PutFloat32(v float32) error {
	if err := b.PutFloat32At(b.position, v); err != nil {
		return err
	}
	b.position += 4
	return nil
}

func (b *Buffer) GetFloat64() (float64, error) {
	v, err := b.GetFloat64At(b.position)
	if err != nil {
		return 0, err
	}
	b.position += 8
	return v, nil
}

func (b *Buffer) PutFloat64(v float64) error {
	if err := b.PutFloat64At(b.position, v); err != nil {
		return err
	}
	b.position += 8
	return nil
}

// GetBytes reads n raw bytes at the current position, advancing it. The
// returned slice aliases the backing storage.
func (b *Buffer) GetBytes(n int) ([]byte, error) {
	if err := b.checkAbs(b.position, n); err != nil {
		return nil, err
	}
	v := b.buf[b.position : b.position+n]
	b.position += n
	return v, nil
}

// PutBytes writes raw bytes at the current position, advancing it.
func (b *Buffer) PutBytes(v []byte) error {
	if err := b.checkAbs(b.position, len(v)); err != nil {
		return err
	}
	copy(b.buf[b.position:], v)
	b.position += len(v)
	return nil
}
