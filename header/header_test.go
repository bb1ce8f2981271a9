package header

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

func TestRecordHeaderRoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		h := NewRecordHeader()
		h.TotalLengthWords = 42
		h.RecordNumber = 7
		h.EventCount = 3
		h.IndexArrayLenBytes = 12
		h.UserHeaderLenBytes = 0
		h.UncompressedLenBytes = 128
		h.CompressionKind = compress.LZ4
		h.CompressedLenWords = 20
		h.UserRegister1 = 0x1122334455667788
		h.UserRegister2 = 0x99aabbccddeeff00
		h.BitInfo = h.BitInfo.WithDictionary(true).WithLastRecord(true).WithUserHeaderPad(1).WithDataPad(2)

		data := h.Bytes(engine)
		require.Len(t, data, RecordHeaderBytes)

		got, err := ParseRecordHeader(data, engine)
		require.NoError(t, err)
		require.Equal(t, h, got)
	}
}

func TestRecordHeaderBadMagic(t *testing.T) {
	h := NewRecordHeader()
	data := h.Bytes(endian.GetLittleEndianEngine())
	data[28] = 0xff

	_, err := ParseRecordHeader(data, endian.GetLittleEndianEngine())
	require.ErrorContains(t, err, "magic")
}

func TestRecordHeaderTruncated(t *testing.T) {
	_, err := ParseRecordHeader(make([]byte, 10), endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestFileHeaderRoundTrip(t *testing.T) {
	h := NewFileHeader()
	h.SetHasDictionary(true)
	h.SetHasTrailerWithIndex(true)
	h.TrailerPosition = 0xdeadbeef
	h.UserRegister = 99

	engine := endian.GetLittleEndianEngine()
	data := h.Bytes(engine)

	got, err := ParseFileHeader(data, engine)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.True(t, got.HasDictionary())
	require.True(t, got.HasTrailerWithIndex())
	require.False(t, got.IsHipo())
}

func TestBlockHeaderV4RoundTrip(t *testing.T) {
	h := NewBlockHeaderV4()
	h.BlockLengthWords = 100
	h.BlockNumber = 1
	h.EventCount = 5

	engine := endian.GetBigEndianEngine()
	data := h.Bytes(engine)

	got, err := ParseBlockHeaderV4(data, engine)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestBlockHeaderV4RejectsVersionBelowFour(t *testing.T) {
	h := NewBlockHeaderV4()
	h.BitInfo = BitInfo(3)

	engine := endian.GetBigEndianEngine()
	data := h.Bytes(engine)

	_, err := ParseBlockHeaderV4(data, engine)
	require.ErrorIs(t, err, evioerr.ErrUnsupportedVersion)
}

func TestBitInfoPacking(t *testing.T) {
	b := NewBitInfo(HeaderTypeRecord)
	require.Equal(t, uint8(CurrentVersion), b.Version())
	require.Equal(t, HeaderTypeRecord, b.HeaderType())

	b = b.WithDictionary(true).WithFirstEvent(true).WithUserHeaderPad(3).WithDataPad(1)
	require.True(t, b.HasDictionary())
	require.True(t, b.HasFirstEvent())
	require.False(t, b.IsLastRecord())
	require.Equal(t, 3, b.UserHeaderPad())
	require.Equal(t, 1, b.DataPad())
}
