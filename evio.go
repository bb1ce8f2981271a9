// Package evio implements the EVIO binary container format used for
// nuclear and particle-physics event data: self-describing banks,
// segments, and tag-segments organized into compressed records, written
// and read through a small set of top-level entry points.
//
// This package provides convenient wrappers around the lower-level
// reader, writer, record, and structure packages, for the common cases
// of opening a file for sequential reading and writing one for output.
// For fine-grained control (custom compression, split files, the
// record-supply pipeline), use those packages directly.
package evio

import (
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/reader"
	"github.com/jlab-evio/evio/structure"
	"github.com/jlab-evio/evio/writer"
)

// Open opens path for sequential and random-access reading, transparent
// to whether the file is the legacy v4 block format or the v6 record
// format.
func Open(path string) (*reader.Reader, error) {
	return reader.Open(path)
}

// OpenBuffer parses an in-memory evio file or buffer, v4 or v6.
func OpenBuffer(data []byte) (*reader.Reader, error) {
	return reader.OpenBuffer(data)
}

// NewWriter creates a Writer with opts applied over evio's defaults
// (little-endian, no compression, no splitting). See the writer package
// for the full option set.
func NewWriter(opts ...writer.Option) (*writer.Writer, error) {
	return writer.New(opts...)
}

// ParseEvent parses a single top-level event (a bank, per spec) from
// data, using engine as its byte order.
func ParseEvent(data []byte, engine endian.EndianEngine) (*structure.Node, int, error) {
	return structure.Parse(data, structure.KindBank, engine)
}

// SerializeEvent serializes an event tree back to bytes using engine.
func SerializeEvent(n *structure.Node, engine endian.EndianEngine) ([]byte, error) {
	return structure.Serialize(n, engine)
}
