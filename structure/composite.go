package structure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jlab-evio/evio/bytebuf"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/evioerr"
)

// FormatTokenKind distinguishes a type letter token from a parenthesized
// group in a parsed format string.
type FormatTokenKind uint8

const (
	TokenType FormatTokenKind = iota
	TokenGroup
)

// FormatToken is one element of a parsed CompositeData format string: a
// repeated type letter, or a repeated parenthesized group of further
// tokens. A Letter == 'N' token consumes its repeat count from the data
// stream at iteration time and applies it to the token immediately
// following it, rather than carrying a literal Repeat (spec.md §4.E
// format-string mini-language).
type FormatToken struct {
	Kind   FormatTokenKind
	Repeat int
	Letter byte // valid when Kind == TokenType: I i S C L F D A N
	Group  []FormatToken
}

// ParseFormat compiles a CompositeData format string (e.g. "2I(3F,1D)")
// into a token sequence, validating parenthesis balance and type letters
// before any data is iterated (spec.md §3 format-string validation).
func ParseFormat(s string) ([]FormatToken, error) {
	p := &formatParser{s: s}
	toks, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, evioerr.New(evioerr.KindBadFormat, "unbalanced parentheses in composite format string")
	}
	return toks, nil
}

type formatParser struct {
	s   string
	pos int
}

const validTypeLetters = "IiSCLFDAN"

func (p *formatParser) parseSequence() ([]FormatToken, error) {
	var out []FormatToken

	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == ')' {
			break
		}
		if c == ',' {
			p.pos++
			continue
		}

		repeat := p.readRepeat()

		if p.pos >= len(p.s) {
			return nil, evioerr.New(evioerr.KindBadFormat, "format string ends mid-token")
		}

		if p.s[p.pos] == '(' {
			p.pos++
			group, err := p.parseSequence()
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.s) || p.s[p.pos] != ')' {
				return nil, evioerr.New(evioerr.KindBadFormat, "unclosed group in composite format string")
			}
			p.pos++

			out = append(out, FormatToken{Kind: TokenGroup, Repeat: repeat, Group: group})
			continue
		}

		letter := p.s[p.pos]
		if strings.IndexByte(validTypeLetters, letter) < 0 {
			return nil, evioerr.New(evioerr.KindBadFormat, fmt.Sprintf("unknown composite type letter %q", letter))
		}
		p.pos++

		out = append(out, FormatToken{Kind: TokenType, Repeat: repeat, Letter: letter})
	}

	return out, nil
}

// readRepeat consumes a leading decimal repeat count; default repeat is 1.
func (p *formatParser) readRepeat() int {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos > start {
		n, _ := strconv.Atoi(p.s[start:p.pos])
		return n
	}
	return 1
}

// letterElementSize returns the fixed byte width of a non-string,
// non-N-count type letter; 0 for A (string, variable length) and N
// (consumes a 4-byte count but emits no payload element of its own).
func letterElementSize(letter byte) int {
	switch letter {
	case 'I', 'i', 'F':
		return 4
	case 'S':
		return 2
	case 'C':
		return 1
	case 'L', 'D':
		return 8
	default:
		return 0
	}
}

// CompositeDatum is one decoded value from a CompositeData iteration.
type CompositeDatum struct {
	Letter byte
	I32    int32
	I16    int16
	I8     int8
	I64    int64
	F32    float32
	F64    float64
	Str    string
}

// CompositeData pairs a parsed format with its data bank bytes, per
// spec.md §4.E: "a sub-format combining a format-string segment ... and a
// data bank."
type CompositeData struct {
	Format     string
	FormatToks []FormatToken
	Data       []byte
}

// NewCompositeData parses format and wraps data, validating the format
// string eagerly.
func NewCompositeData(format string, data []byte) (*CompositeData, error) {
	toks, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &CompositeData{Format: format, FormatToks: toks, Data: data}, nil
}

// NewCompositeLeafBank builds a COMPOSITE-typed leaf bank by serializing
// cd's format string as a tag-segment followed by cd.Data wrapped in a
// data bank, concatenated as a single leaf payload (spec.md §4.E: "a
// sub-format combining a format-string segment ... and a data bank").
func NewCompositeLeafBank(bankTag uint16, bankNum uint8, formatTag uint16, dataBankTag uint16, dataBankNum uint8, cd *CompositeData, engine endian.EndianEngine) (*Node, error) {
	formatNode := NewLeafTagSegment(formatTag, Str, []byte(cd.Format))
	formatBytes, err := Serialize(formatNode, engine)
	if err != nil {
		return nil, err
	}

	dataBankNode := NewLeafBank(dataBankTag, dataBankNum, Uint8, cd.Data)
	dataBytes, err := Serialize(dataBankNode, engine)
	if err != nil {
		return nil, err
	}

	payload := append(formatBytes, dataBytes...)
	return NewLeafBank(bankTag, bankNum, Composite, payload), nil
}

// Iterate walks the format-string token sequence against Data in order,
// invoking visit once per emitted datum. An 'N' token reads a 4-byte
// count from the data stream and uses it as the repeat count of the
// single token (type letter or group) that follows it, per spec.md §4.E.
func (c *CompositeData) Iterate(engine endian.EndianEngine, visit func(CompositeDatum) error) error {
	buf := bytebuf.New(c.Data, engine)
	return iterateTokens(c.FormatToks, buf, visit)
}

func iterateTokens(toks []FormatToken, buf *bytebuf.Buffer, visit func(CompositeDatum) error) error {
	for i := 0; i < len(toks); i++ {
		t := toks[i]

		repeat := t.Repeat
		if t.Kind == TokenType && t.Letter == 'N' {
			n, err := buf.GetUint32()
			if err != nil {
				return err
			}
			if i+1 >= len(toks) {
				return evioerr.New(evioerr.KindBadFormat, "N token has no following element to repeat")
			}
			next := toks[i+1]
			if err := repeatToken(next, int(n), buf, visit); err != nil {
				return err
			}
			i++
			continue
		}

		if err := repeatToken(t, repeat, buf, visit); err != nil {
			return err
		}
	}

	return nil
}

func repeatToken(t FormatToken, repeat int, buf *bytebuf.Buffer, visit func(CompositeDatum) error) error {
	for r := 0; r < repeat; r++ {
		if t.Kind == TokenGroup {
			if err := iterateTokens(t.Group, buf, visit); err != nil {
				return err
			}
			continue
		}

		d, err := readDatum(t.Letter, buf)
		if err != nil {
			return err
		}
		if err := visit(d); err != nil {
			return err
		}
	}

	return nil
}

func readDatum(letter byte, buf *bytebuf.Buffer) (CompositeDatum, error) {
	switch letter {
	case 'I':
		v, err := buf.GetUint32()
		return CompositeDatum{Letter: letter, I32: int32(v)}, err
	case 'i':
		v, err := buf.GetUint32()
		return CompositeDatum{Letter: letter, I32: int32(v)}, err
	case 'S':
		v, err := buf.GetUint16()
		return CompositeDatum{Letter: letter, I16: int16(v)}, err
	case 'C':
		v, err := buf.GetUint8()
		return CompositeDatum{Letter: letter, I8: int8(v)}, err
	case 'L':
		v, err := buf.GetUint64()
		return CompositeDatum{Letter: letter, I64: int64(v)}, err
	case 'F':
		v, err := buf.GetFloat32()
		return CompositeDatum{Letter: letter, F32: v}, err
	case 'D':
		v, err := buf.GetFloat64()
		return CompositeDatum{Letter: letter, F64: v}, err
	case 'A':
		return readStringDatum(buf)
	default:
		return CompositeDatum{}, evioerr.New(evioerr.KindBadFormat, fmt.Sprintf("unhandled composite type letter %q", letter))
	}
}

func readStringDatum(buf *bytebuf.Buffer) (CompositeDatum, error) {
	start := buf.Position()
	rest := buf.Bytes()[start:]

	end := 0
	for end < len(rest) && rest[end] != 0 {
		end++
	}
	if end >= len(rest) {
		return CompositeDatum{}, evioerr.New(evioerr.KindTruncated, "composite string datum missing NUL terminator")
	}

	consumed := end + 1
	if err := buf.SetPosition(start + consumed); err != nil {
		return CompositeDatum{}, err
	}

	return CompositeDatum{Letter: 'A', Str: string(rest[:end])}, nil
}

// Swap walks the format-string iteration and swaps each non-byte,
// non-string datum in place within Data, reading lengths in pre-swap
// engine order before flipping them — CompositeData's own endian swap
// rule (spec.md §4.E: "Swap must walk this iteration to swap each datum
// according to its declared type").
func (c *CompositeData) Swap(engine endian.EndianEngine) error {
	return swapTokens(c.FormatToks, newSwapCursor(c.Data, engine))
}

type swapCursor struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

func newSwapCursor(data []byte, engine endian.EndianEngine) *swapCursor {
	return &swapCursor{data: data, engine: engine}
}

func swapTokens(toks []FormatToken, cur *swapCursor) error {
	for i := 0; i < len(toks); i++ {
		t := toks[i]

		if t.Kind == TokenType && t.Letter == 'N' {
			if cur.pos+4 > len(cur.data) {
				return evioerr.New(evioerr.KindTruncated, "composite N count truncated during swap")
			}
			n := cur.engine.Uint32(cur.data[cur.pos : cur.pos+4])
			endian.Swap32InPlace(cur.data[cur.pos : cur.pos+4])
			cur.pos += 4

			if i+1 >= len(toks) {
				return evioerr.New(evioerr.KindBadFormat, "N token has no following element to repeat")
			}
			if err := swapRepeat(toks[i+1], int(n), cur); err != nil {
				return err
			}
			i++
			continue
		}

		if err := swapRepeat(t, t.Repeat, cur); err != nil {
			return err
		}
	}

	return nil
}

func swapRepeat(t FormatToken, repeat int, cur *swapCursor) error {
	for r := 0; r < repeat; r++ {
		if t.Kind == TokenGroup {
			if err := swapTokens(t.Group, cur); err != nil {
				return err
			}
			continue
		}

		size := letterElementSize(t.Letter)
		switch t.Letter {
		case 'C':
			cur.pos++
		case 'A':
			end := cur.pos
			for end < len(cur.data) && cur.data[end] != 0 {
				end++
			}
			if end >= len(cur.data) {
				return evioerr.New(evioerr.KindTruncated, "composite string datum missing NUL terminator during swap")
			}
			cur.pos = end + 1
		default:
			if cur.pos+size > len(cur.data) {
				return evioerr.New(evioerr.KindTruncated, "composite datum truncated during swap")
			}
			switch size {
			case 2:
				endian.Swap16InPlace(cur.data[cur.pos : cur.pos+2])
			case 4:
				endian.Swap32InPlace(cur.data[cur.pos : cur.pos+4])
			case 8:
				endian.Swap64InPlace(cur.data[cur.pos : cur.pos+8])
			}
			cur.pos += size
		}
	}

	return nil
}
