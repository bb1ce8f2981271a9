package structure

import "bytes"

// EncodeStrings concatenates strs as NUL-terminated UTF-8 byte sequences.
// The returned slice does NOT include the trailing \4 padding — Serialize
// adds that, since the pad amount depends on where the leaf lands in the
// overall buffer layout (well, in evio's case it only depends on length,
// but keeping pad-insertion uniform with the other leaf types keeps
// Serialize a single code path).
func EncodeStrings(strs []string) []byte {
	var buf bytes.Buffer
	for _, s := range strs {
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// stringPad returns the padding to append to a NUL-terminated string blob
// of length n: enough \4 bytes to reach a 4-byte multiple, with a minimum
// total size of 4 bytes (spec.md §3, §4.E).
func stringPad(n int) int {
	if n == 0 {
		return 4
	}
	pad := (4 - n%4) % 4
	if n+pad < 4 {
		pad = 4 - n
	}
	return pad
}

// DecodeStrings splits a NUL/``\4``-terminated string blob (as produced by
// EncodeStrings plus its trailing pad) back into its component strings.
func DecodeStrings(data []byte) []string {
	// Trim trailing \4 pad bytes (and, per the historical format, any
	// trailing NUL immediately preceding them is still a valid terminator
	// for the last string).
	end := len(data)
	for end > 0 && data[end-1] == 4 {
		end--
	}

	trimmed := data[:end]
	if len(trimmed) == 0 {
		return nil
	}

	parts := bytes.Split(trimmed, []byte{0})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		out = append(out, string(p))
	}

	return out
}

// NewStringLeafBank builds a bank Node carrying a STRING payload.
func NewStringLeafBank(tag uint16, num uint8, strs []string) *Node {
	return NewLeafBank(tag, num, Str, EncodeStrings(strs))
}

func (n *Node) Strings() []string {
	return DecodeStrings(n.Data)
}
