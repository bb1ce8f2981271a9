package structure

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// Swap performs an in-place endian swap of n's subtree: container headers
// are swapped implicitly (Node carries them as decoded Go fields, not raw
// bytes, so there is nothing to flip there), and leaf Data is swapped word
// by word according to its declared type. Byte/uint8 and string leaves are
// untouched — individual bytes have no order, and strings are raw UTF-8
// (spec.md §4.E: "swaps only non-byte leaf data ... string-as-bytes
// untouched, composite data swapped per its own format").
//
// Swap is its own inverse: swap(swap(n)) reproduces n's original Data,
// since every element-wise byte swap is an involution.
func Swap(n *Node, engine endian.EndianEngine) error {
	if n.IsContainer() {
		for _, child := range n.Children {
			if err := Swap(child, engine); err != nil {
				return err
			}
		}
		return nil
	}

	switch n.Type {
	case Int8, Uint8, CharStar8, Str:
		return nil

	case Int16, Uint16:
		return swapFixed(n.Data, 2)

	case Uint32, Int32, Float32:
		return swapFixed(n.Data, 4)

	case Double64, Int64, Uint64:
		return swapFixed(n.Data, 8)

	case Composite:
		return swapComposite(n, engine)

	default:
		return nil
	}
}

func swapFixed(data []byte, width int) error {
	if len(data)%width != 0 {
		return evioerr.New(evioerr.KindBadFormat, "leaf data length not a multiple of its element width")
	}

	for off := 0; off+width <= len(data); off += width {
		switch width {
		case 2:
			endian.Swap16InPlace(data[off : off+2])
		case 4:
			endian.Swap32InPlace(data[off : off+4])
		case 8:
			endian.Swap64InPlace(data[off : off+8])
		}
	}

	return nil
}

// swapComposite parses a COMPOSITE leaf's raw Data as the two structures
// it embeds — a format-string tag-segment followed by a data bank (spec.md
// §4.E: "a sub-format combining a format-string segment ... and a data
// bank") — and swaps only the data bank's contents, per the format
// string's own iteration order.
func swapComposite(n *Node, engine endian.EndianEngine) error {
	formatNode, consumed, err := Parse(n.Data, KindTagSegment, engine)
	if err != nil {
		return err
	}
	if consumed >= len(n.Data) {
		return evioerr.New(evioerr.KindBadFormat, "composite leaf missing data bank after format tag-segment")
	}

	dataNode, _, err := Parse(n.Data[consumed:], KindBank, engine)
	if err != nil {
		return err
	}

	format := string(formatNode.Data)

	cd, err := NewCompositeData(format, dataNode.Data)
	if err != nil {
		return err
	}

	return cd.Swap(engine)
}
