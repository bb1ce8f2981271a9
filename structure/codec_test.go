package structure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/endian"
)

func TestSerializeParseLeafBankRoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		n := NewLeafBank(0x1234, 7, Uint32, EncodeUint32Slice([]uint32{1, 2, 3}, engine))

		data, err := Serialize(n, engine)
		require.NoError(t, err)
		require.Len(t, data, 8+3*4)

		got, consumed, err := Parse(data, KindBank, engine)
		require.NoError(t, err)
		require.Equal(t, len(data), consumed)
		require.Equal(t, n.Tag, got.Tag)
		require.Equal(t, n.Num, got.Num)
		require.Equal(t, n.Type, got.Type)
		require.Equal(t, []uint32{1, 2, 3}, got.Uint32Slice(engine))
	}
}

func TestSerializeParseNestedBanks(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	root := NewBank(1, 0, BankType)
	root.AddChild(NewLeafBank(2, 0, Uint32, EncodeUint32Slice([]uint32{10}, engine)))
	root.AddChild(NewLeafBank(3, 0, Uint32, EncodeUint32Slice([]uint32{20, 30}, engine)))

	data, err := Serialize(root, engine)
	require.NoError(t, err)

	got, consumed, err := Parse(data, KindBank, engine)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Len(t, got.Children, 2)
	require.Equal(t, []uint32{10}, got.Children[0].Uint32Slice(engine))
	require.Equal(t, []uint32{20, 30}, got.Children[1].Uint32Slice(engine))
}

func TestSerializeParseSegmentAndTagSegment(t *testing.T) {
	engine := endian.GetBigEndianEngine()

	seg := NewLeafSegment(5, Uint16, EncodeUint16Slice([]uint16{1, 2, 3}, engine))
	data, err := Serialize(seg, engine)
	require.NoError(t, err)

	got, consumed, err := Parse(data, KindSegment, engine)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Equal(t, []uint16{1, 2, 3}, got.Uint16Slice(engine))

	ts := NewLeafTagSegment(9, Uint32, EncodeUint32Slice([]uint32{42}, engine))
	tsData, err := Serialize(ts, engine)
	require.NoError(t, err)

	gotTs, consumed, err := Parse(tsData, KindTagSegment, engine)
	require.NoError(t, err)
	require.Equal(t, len(tsData), consumed)
	require.Equal(t, []uint32{42}, gotTs.Uint32Slice(engine))
}

func TestTagSegmentRejectsUnpaddableLeaf(t *testing.T) {
	ts := NewLeafTagSegment(1, Uint8, []byte{1, 2, 3})
	_, err := Serialize(ts, endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestStringLeafRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	n := NewStringLeafBank(1, 0, []string{"hello", "evio"})

	data, err := Serialize(n, engine)
	require.NoError(t, err)
	require.Equal(t, 0, len(data)%4)

	got, consumed, err := Parse(data, KindBank, engine)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Equal(t, []string{"hello", "evio"}, got.Strings())
}

func TestParseTruncatedBank(t *testing.T) {
	_, _, err := Parse(make([]byte, 4), KindBank, endian.GetLittleEndianEngine())
	require.Error(t, err)
}

func TestCloneDisownsRoot(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	root := NewBank(1, 0, BankType)
	child := NewLeafBank(2, 0, Uint32, EncodeUint32Slice([]uint32{5}, engine))
	root.AddChild(child)

	clone := root.Clone()
	require.Nil(t, clone.Parent)
	require.Len(t, clone.Children, 1)
	require.NotSame(t, root.Children[0], clone.Children[0])
	require.Equal(t, root.Children[0].Data, clone.Children[0].Data)
}
