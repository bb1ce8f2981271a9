package structure

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// childKind maps a container DataType to the Kind of structure it holds.
func childKind(t DataType) (Kind, bool) {
	switch t {
	case BankType, AlsoBank:
		return KindBank, true
	case SegType, AlsoSegment:
		return KindSegment, true
	case TagSegType, TagSegAlt:
		return KindTagSegment, true
	default:
		return 0, false
	}
}

// leafPad returns the padding to append after n's raw Data, and the
// pad-count value to record in the header (0 for tag-segments, which
// have no pad field — see Node.ValidateForTagSegment).
func (n *Node) leafPad() (padBytes int, padBits uint8, fill byte) {
	if n.Type == Str {
		pb := stringPad(len(n.Data))
		return pb, 0, 0x04
	}

	pb, bits := padInfo(n.Type, len(n.Data))
	if n.Kind == KindTagSegment {
		bits = 0
	}

	return pb, bits, 0x00
}

// Serialize encodes the subtree rooted at n into a flat word buffer,
// bottom-up: child sizes are computed first, then headers are written
// top-down (spec.md §4.E).
func Serialize(n *Node, engine endian.EndianEngine) ([]byte, error) {
	var payload []byte

	if n.IsContainer() {
		kind, ok := childKind(n.Type)
		if !ok {
			return nil, evioerr.New(evioerr.KindBadFormat, "container node has non-container type")
		}

		for _, child := range n.Children {
			if child.Kind != kind {
				return nil, evioerr.New(evioerr.KindBadFormat, "child kind does not match parent's declared child type")
			}

			cb, err := Serialize(child, engine)
			if err != nil {
				return nil, err
			}

			payload = append(payload, cb...)
		}
	} else {
		if err := n.ValidateForTagSegment(); err != nil {
			return nil, err
		}

		padBytes, _, fill := n.leafPad()
		payload = make([]byte, len(n.Data)+padBytes)
		copy(payload, n.Data)
		for i := len(n.Data); i < len(payload); i++ {
			payload[i] = fill
		}
	}

	if len(payload)%4 != 0 {
		return nil, evioerr.New(evioerr.KindBadFormat, "structure payload not word-aligned")
	}
	payloadWords := len(payload) / 4

	switch n.Kind {
	case KindBank:
		_, padBits, _ := n.leafPad()
		h := BankHeader{
			LenWords: uint32(1 + payloadWords),
			Tag:      n.Tag,
			Type:     n.Type,
			PadCount: padBits,
			Num:      n.Num,
		}
		out := h.Bytes(engine)
		return append(out, payload...), nil

	case KindSegment:
		_, padBits, _ := n.leafPad()
		h := SegmentHeader{
			Tag:      uint8(n.Tag),
			Type:     n.Type,
			PadCount: padBits,
			LenWords: uint16(payloadWords),
		}
		out := h.Bytes(engine)
		return append(out, payload...), nil

	case KindTagSegment:
		h := TagSegmentHeader{
			Tag:      n.Tag,
			Type:     n.Type,
			LenWords: uint16(payloadWords),
		}
		out := h.Bytes(engine)
		return append(out, payload...), nil

	default:
		return nil, evioerr.New(evioerr.KindBadFormat, "unknown structure kind")
	}
}

// stripLeafPad trims the trailing pad bytes appended at Serialize time,
// recovering the logical element content.
func stripLeafPad(t DataType, data []byte, padBits uint8) []byte {
	if t == Str {
		end := len(data)
		for end > 0 && data[end-1] == 4 {
			end--
		}
		return data[:end]
	}

	if padBits > 0 && int(padBits) <= len(data) {
		return data[:len(data)-int(padBits)]
	}

	return data
}

// Parse decodes one structure of the given kind starting at data[0],
// returning the Node and the number of bytes consumed (its total
// serialized length, header included).
func Parse(data []byte, kind Kind, engine endian.EndianEngine) (*Node, int, error) {
	switch kind {
	case KindBank:
		if len(data) < 8 {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "bank header truncated")
		}
		h := ParseBankHeader(data, engine)
		if h.LenWords < 1 {
			return nil, 0, evioerr.New(evioerr.KindBadFormat, "bank length field must be >= 1")
		}
		payloadWords := h.LenWords - 1
		total := 8 + int(payloadWords)*4
		if len(data) < total {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "bank payload truncated")
		}

		n := &Node{Kind: KindBank, Tag: h.Tag, Type: h.Type, Num: h.Num}
		if err := parseBody(n, data[8:total], h.Type, h.PadCount, engine); err != nil {
			return nil, 0, err
		}

		return n, total, nil

	case KindSegment:
		if len(data) < 4 {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "segment header truncated")
		}
		h := ParseSegmentHeader(data, engine)
		total := 4 + int(h.LenWords)*4
		if len(data) < total {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "segment payload truncated")
		}

		n := &Node{Kind: KindSegment, Tag: uint16(h.Tag), Type: h.Type}
		if err := parseBody(n, data[4:total], h.Type, h.PadCount, engine); err != nil {
			return nil, 0, err
		}

		return n, total, nil

	case KindTagSegment:
		if len(data) < 4 {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "tag-segment header truncated")
		}
		h := ParseTagSegmentHeader(data, engine)
		total := 4 + int(h.LenWords)*4
		if len(data) < total {
			return nil, 0, evioerr.New(evioerr.KindTruncated, "tag-segment payload truncated")
		}

		n := &Node{Kind: KindTagSegment, Tag: h.Tag, Type: h.Type}
		if err := parseBody(n, data[4:total], h.Type, 0, engine); err != nil {
			return nil, 0, err
		}

		return n, total, nil

	default:
		return nil, 0, evioerr.New(evioerr.KindBadFormat, "unknown structure kind")
	}
}

func parseBody(n *Node, payload []byte, t DataType, padBits uint8, engine endian.EndianEngine) error {
	if !t.IsContainer() {
		n.Data = stripLeafPad(t, payload, padBits)
		return nil
	}

	childKindVal, ok := childKind(t)
	if !ok {
		return evioerr.New(evioerr.KindBadFormat, "container payload type is not a recognized container kind")
	}

	off := 0
	for off < len(payload) {
		child, consumed, err := Parse(payload[off:], childKindVal, engine)
		if err != nil {
			return err
		}
		if consumed == 0 {
			return evioerr.New(evioerr.KindBadFormat, "zero-length child structure")
		}

		child.Parent = n
		n.Children = append(n.Children, child)
		off += consumed
	}

	if off != len(payload) {
		return evioerr.New(evioerr.KindBadFormat, "container payload length mismatch")
	}

	return nil
}
