// Package compress provides a uniform interface over the record-tail
// compression algorithms the evio v6 format allows: LZ4, LZ4-HC (the same
// codec at a higher, slower compression level) and gzip. The wire format
// defines exactly four compression-type values (record header word 9,
// bits 28-31), so this package's Kind enum is fixed at four values by the
// file format itself — it is not an extension point.
package compress
