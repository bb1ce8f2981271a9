package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
)

func TestRecordOutputInputRoundTrip(t *testing.T) {
	for _, kind := range []compress.Kind{compress.None, compress.LZ4, compress.LZ4HC, compress.Gzip} {
		for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
			out, err := NewRecordOutput(
				WithCompression(kind),
				WithByteOrder(engine),
				WithRecordNumber(1),
			)
			require.NoError(t, err)

			events := [][]byte{
				{1, 2, 3, 4},
				{5, 6, 7, 8, 9, 10, 11, 12},
				{0xAA, 0xBB, 0xCC, 0xDD},
			}
			for _, e := range events {
				res, err := out.TryAddEvent(e)
				require.NoError(t, err)
				require.Equal(t, Accepted, res)
			}

			built, err := out.Build([]byte("user-header"))
			require.NoError(t, err)
			require.NotEmpty(t, built)

			in, err := Parse(built, engine)
			require.NoError(t, err)
			require.Equal(t, 3, in.EventCount())
			require.Equal(t, []byte("user-header"), in.UserHeaderSlice())

			for i, want := range events {
				got, err := in.EventBytes(i)
				require.NoError(t, err)
				require.Equal(t, want, got)
			}
		}
	}
}

func TestTryAddEventFirstEventAlwaysAccepted(t *testing.T) {
	out, err := NewRecordOutput(WithMaxBytes(4))
	require.NoError(t, err)

	huge := make([]byte, 64)
	res, err := out.TryAddEvent(huge)
	require.NoError(t, err)
	require.Equal(t, Accepted, res)

	res, err = out.TryAddEvent(huge)
	require.NoError(t, err)
	require.Equal(t, RejectedMaxBytes, res)
}

func TestTryAddEventRejectsOverMaxEvents(t *testing.T) {
	out, err := NewRecordOutput(WithMaxEvents(1))
	require.NoError(t, err)

	res, err := out.TryAddEvent([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, Accepted, res)

	res, err = out.TryAddEvent([]byte{5, 6, 7, 8})
	require.NoError(t, err)
	require.Equal(t, RejectedMaxEvents, res)
}

func TestRecordOutputResetReusesBuffers(t *testing.T) {
	out, err := NewRecordOutput()
	require.NoError(t, err)

	_, err = out.TryAddEvent([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = out.Build(nil)
	require.NoError(t, err)

	out.Reset()
	require.Equal(t, 0, out.EventCount())

	res, err := out.TryAddEvent([]byte{9, 9, 9, 9})
	require.NoError(t, err)
	require.Equal(t, Accepted, res)
}

func TestRecordInputToRecordOutputRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	out, err := NewRecordOutput(WithByteOrder(engine), WithCompression(compress.LZ4))
	require.NoError(t, err)

	_, err = out.TryAddEvent([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = out.TryAddEvent([]byte{5, 6, 7, 8})
	require.NoError(t, err)

	built, err := out.Build(nil)
	require.NoError(t, err)

	in, err := Parse(built, engine)
	require.NoError(t, err)

	rebuilt, err := in.ToRecordOutput()
	require.NoError(t, err)
	require.Equal(t, 2, rebuilt.EventCount())

	rebuiltBytes, err := rebuilt.Build(nil)
	require.NoError(t, err)

	in2, err := Parse(rebuiltBytes, engine)
	require.NoError(t, err)
	ev0, err := in2.EventBytes(0)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, ev0)
}

func TestParseTruncatedRecord(t *testing.T) {
	_, err := Parse(make([]byte, 4), endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestEventSliceIndexOutOfRange(t *testing.T) {
	out, err := NewRecordOutput()
	require.NoError(t, err)
	_, err = out.TryAddEvent([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	built, err := out.Build(nil)
	require.NoError(t, err)

	in, err := Parse(built, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	_, err = in.EventBytes(5)
	require.Error(t, err)
}
