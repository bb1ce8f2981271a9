// Package endian provides byte order utilities for binary encoding and
// decoding of evio files and buffers.
//
// evio files are self-describing about byte order: every file and record
// header carries a magic word that, read in the wrong order, decodes to a
// recognizably wrong value. This package extends the standard
// encoding/binary package by combining ByteOrder and AppendByteOrder into a
// single EndianEngine interface, and adds the magic-word probe readers use
// to detect which order a given file was written in.
//
// # Basic usage
//
//	engine := endian.GetLittleEndianEngine()
//	buf := bytebuf.New(raw, engine)
//
// For interoperability with big-endian writers:
//
//	engine := endian.GetBigEndianEngine()
//
// # Thread safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations. binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// reverseUint32 reverses the byte order of a 32-bit word. Used to probe an
// ambiguous magic word: if it doesn't match in the assumed order, reversing
// it and comparing again tells us whether the file is merely byte-swapped
// or genuinely corrupt.
func reverseUint32(v uint32) uint32 {
	return (v>>24)&0xff | (v>>8)&0xff00 | (v<<8)&0xff0000 | (v << 24)
}

// DetectOrder compares word (read as little-endian from the first 4 bytes
// at the magic word's offset) against expected. It returns the engine that
// makes word equal expected, and ok=false if neither order matches.
func DetectOrder(raw []byte, expected uint32) (EndianEngine, bool) {
	if len(raw) < 4 {
		return nil, false
	}

	asLE := binary.LittleEndian.Uint32(raw)
	if asLE == expected {
		return GetLittleEndianEngine(), true
	}

	asBE := binary.BigEndian.Uint32(raw)
	if asBE == expected {
		return GetBigEndianEngine(), true
	}

	// Fall back to the reversed-word probe named in the header spec: a
	// magic that decodes to the byte-reversed expected value under the
	// assumed order is still a valid, merely swapped, file.
	if reverseUint32(asLE) == expected {
		return GetBigEndianEngine(), true
	}

	return nil, false
}

// Swap16/Swap32/Swap64 return an integer with its bytes reversed. The
// event tree swapper (structure.Swap) flips leaf data with the InPlace
// variants below.
func Swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

func Swap32(v uint32) uint32 {
	return v<<24 | (v&0xff00)<<8 | (v>>8)&0xff00 | v>>24
}

func Swap64(v uint64) uint64 {
	return v<<56 | (v&0xff00)<<40 | (v&0xff0000)<<24 | (v&0xff000000)<<8 |
		(v>>8)&0xff000000 | (v>>24)&0xff0000 | (v>>40)&0xff00 | v>>56
}

// Swap16InPlace/Swap32InPlace/Swap64InPlace reverse the byte order of a
// fixed-width element directly within a slice, used by the event tree and
// CompositeData swappers to flip leaf data without a decode/re-encode
// round trip.
func Swap16InPlace(b []byte) {
	b[0], b[1] = b[1], b[0]
}

func Swap32InPlace(b []byte) {
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
}

func Swap64InPlace(b []byte) {
	b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7] =
		b[7], b[6], b[5], b[4], b[3], b[2], b[1], b[0]
}
