package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

const recordMagic = 0xc0da0100

func TestDetectOrder(t *testing.T) {
	t.Run("little endian file", func(t *testing.T) {
		raw := make([]byte, 4)
		binary.LittleEndian.PutUint32(raw, recordMagic)

		engine, ok := DetectOrder(raw, recordMagic)
		require.True(t, ok)
		require.Equal(t, GetLittleEndianEngine(), engine)
	})

	t.Run("big endian file", func(t *testing.T) {
		raw := make([]byte, 4)
		binary.BigEndian.PutUint32(raw, recordMagic)

		engine, ok := DetectOrder(raw, recordMagic)
		require.True(t, ok)
		require.Equal(t, GetBigEndianEngine(), engine)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		raw := []byte{0xde, 0xad, 0xbe, 0xef}
		_, ok := DetectOrder(raw, recordMagic)
		require.False(t, ok)
	})

	t.Run("too short", func(t *testing.T) {
		_, ok := DetectOrder([]byte{0x01, 0x02}, recordMagic)
		require.False(t, ok)
	})
}

func TestSwapInvolution(t *testing.T) {
	require.Equal(t, uint16(0x1234), Swap16(Swap16(0x1234)))
	require.Equal(t, uint32(0x12345678), Swap32(Swap32(0x12345678)))
	require.Equal(t, uint64(0x0102030405060708), Swap64(Swap64(0x0102030405060708)))
}

func TestSwap32Value(t *testing.T) {
	require.Equal(t, uint32(0x78563412), Swap32(0x12345678))
}
