package structure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/endian"
)

func TestSwapInvolutionOnFixedWidthLeaf(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	n := NewLeafBank(1, 0, Uint32, EncodeUint32Slice([]uint32{1, 2, 3, 4}, engine))
	original := append([]byte(nil), n.Data...)

	require.NoError(t, Swap(n, engine))
	require.NotEqual(t, original, n.Data)

	require.NoError(t, Swap(n, engine))
	require.Equal(t, original, n.Data)
}

func TestSwapLeavesStringsAndBytesUntouched(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	strNode := NewStringLeafBank(1, 0, []string{"abc"})
	original := append([]byte(nil), strNode.Data...)
	require.NoError(t, Swap(strNode, engine))
	require.Equal(t, original, strNode.Data)

	byteNode := NewLeafBank(2, 0, Uint8, []byte{1, 2, 3})
	origBytes := append([]byte(nil), byteNode.Data...)
	require.NoError(t, Swap(byteNode, engine))
	require.Equal(t, origBytes, byteNode.Data)
}

func TestSwapRecursesIntoContainers(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	root := NewBank(1, 0, BankType)
	leaf := NewLeafBank(2, 0, Uint32, EncodeUint32Slice([]uint32{0x11223344}, engine))
	root.AddChild(leaf)

	require.NoError(t, Swap(root, engine))
	require.Equal(t, []uint32{0x44332211}, leaf.Uint32Slice(engine))
}

func TestSwapRejectsMisalignedLeaf(t *testing.T) {
	n := NewLeafBank(1, 0, Uint32, []byte{1, 2, 3})
	err := Swap(n, endian.GetLittleEndianEngine())
	require.Error(t, err)
}
