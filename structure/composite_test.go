package structure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/bytebuf"
	"github.com/jlab-evio/evio/endian"
)

func TestParseFormatSimple(t *testing.T) {
	toks, err := ParseFormat("2I1D")
	require.NoError(t, err)
	require.Equal(t, []FormatToken{
		{Kind: TokenType, Repeat: 2, Letter: 'I'},
		{Kind: TokenType, Repeat: 1, Letter: 'D'},
	}, toks)
}

func TestParseFormatGroup(t *testing.T) {
	toks, err := ParseFormat("I(2F,1C)")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, TokenType, toks[0].Kind)
	require.Equal(t, TokenGroup, toks[1].Kind)
	require.Len(t, toks[1].Group, 2)
}

func TestParseFormatUnbalancedParens(t *testing.T) {
	_, err := ParseFormat("I(2F")
	require.Error(t, err)
}

func TestParseFormatUnknownLetter(t *testing.T) {
	_, err := ParseFormat("2Z")
	require.Error(t, err)
}

func TestCompositeIterateFixed(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := bytebuf.Allocate(12, engine)
	require.NoError(t, buf.PutUint32(10))
	require.NoError(t, buf.PutUint32(20))
	require.NoError(t, buf.PutFloat32(1.5))

	cd, err := NewCompositeData("2I1F", buf.Bytes())
	require.NoError(t, err)

	var ints []int32
	var floats []float32
	err = cd.Iterate(engine, func(d CompositeDatum) error {
		switch d.Letter {
		case 'I':
			ints = append(ints, d.I32)
		case 'F':
			floats = append(floats, d.F32)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int32{10, 20}, ints)
	require.Equal(t, []float32{1.5}, floats)
}

func TestCompositeIterateRuntimeN(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := bytebuf.Allocate(16, engine)
	require.NoError(t, buf.PutUint32(3)) // N count
	require.NoError(t, buf.PutUint32(1))
	require.NoError(t, buf.PutUint32(2))
	require.NoError(t, buf.PutUint32(3))

	cd, err := NewCompositeData("NI", buf.Bytes())
	require.NoError(t, err)

	var got []int32
	err = cd.Iterate(engine, func(d CompositeDatum) error {
		got = append(got, d.I32)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, got)
}

func TestCompositeSwapInvolution(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := bytebuf.Allocate(8, engine)
	require.NoError(t, buf.PutUint32(0x01020304))
	require.NoError(t, buf.PutFloat32(2.25))

	original := append([]byte(nil), buf.Bytes()...)

	cd, err := NewCompositeData("1I1F", buf.Bytes())
	require.NoError(t, err)

	require.NoError(t, cd.Swap(engine))
	require.NotEqual(t, original, cd.Data)

	require.NoError(t, cd.Swap(engine))
	require.Equal(t, original, cd.Data)
}

func TestCompositeLeafBankRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	buf := bytebuf.Allocate(8, engine)
	require.NoError(t, buf.PutUint32(99))
	require.NoError(t, buf.PutFloat32(3.5))

	cd, err := NewCompositeData("1I1F", buf.Bytes())
	require.NoError(t, err)

	leaf, err := NewCompositeLeafBank(1, 0, 11, 22, 0, cd, engine)
	require.NoError(t, err)
	require.Equal(t, Composite, leaf.Type)

	data, err := Serialize(leaf, engine)
	require.NoError(t, err)

	got, consumed, err := Parse(data, KindBank, engine)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Equal(t, Composite, got.Type)

	require.NoError(t, Swap(got, engine))
	require.NoError(t, Swap(got, engine))
}
