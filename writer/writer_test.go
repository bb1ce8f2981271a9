package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/reader"
)

func TestWriterBufferRoundTrip(t *testing.T) {
	w, err := New(
		WithByteOrder(endian.GetLittleEndianEngine()),
		WithCompression(compress.LZ4),
	)
	require.NoError(t, err)

	events := [][]byte{
		{1, 2, 3, 4},
		{5, 6, 7, 8, 9, 10, 11, 12},
	}
	for _, e := range events {
		require.NoError(t, w.AddEvent(e))
	}
	require.NoError(t, w.Close())

	r, err := reader.OpenBuffer(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, 2, r.EventCount())

	for i, want := range events {
		got, err := r.Event(i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestWriterRejectsWriteAfterClose(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.AddEvent([]byte{1, 2, 3, 4}))
	require.NoError(t, w.Close())

	err = w.AddEvent([]byte{5, 6, 7, 8})
	require.Error(t, err)
}

func TestWriterRecordSplitByMaxEvents(t *testing.T) {
	w, err := New(WithMaxEventsPerRecord(1))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.AddEvent([]byte{byte(i), 0, 0, 0}))
	}
	require.NoError(t, w.Close())

	r, err := reader.OpenBuffer(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, 5, r.EventCount())
	require.Equal(t, 5, r.RecordCount())
}

func TestWriterFileSplitting(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "evio_test_%d")

	w, err := New(
		WithBaseName(base),
		WithSplitBytes(1),
		WithRunNumber(1),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.AddEvent([]byte{byte(i), 0, 0, 0}))
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 1)

	totalEvents := 0
	for _, e := range entries {
		r, err := reader.Open(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		totalEvents += r.EventCount()
	}
	require.Equal(t, 3, totalEvents)
}

func TestWriterDictionaryAndFirstEvent(t *testing.T) {
	firstEvent := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	w, err := New(
		WithDictionaryXML("<xml/>"),
		WithFirstEvent(firstEvent),
	)
	require.NoError(t, err)

	require.NoError(t, w.AddEvent([]byte{1, 2, 3, 4}))
	require.NoError(t, w.Close())

	r, err := reader.OpenBuffer(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, r.EventCount())
}

func TestWriterRepeatsDictionaryAndFirstEventAcrossSplits(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "evio_split_%d")

	w, err := New(
		WithBaseName(base),
		WithMaxEventsPerRecord(1),
		WithSplitBytes(1),
		WithRunNumber(1),
		WithDictionaryXML("<xml/>"),
		WithFirstEvent([]byte{0xAA, 0xBB, 0xCC, 0xDD}),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.AddEvent([]byte{byte(i), 0, 0, 0}))
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 2, "expected at least two split files")

	for _, e := range entries {
		r, err := reader.Open(filepath.Join(dir, e.Name()))
		require.NoError(t, err)

		ri, err := r.LoadRecord(0)
		require.NoError(t, err)
		require.NotEmpty(t, ri.UserHeaderSlice(), "split file %s is missing its repeated dictionary/first-event user header", e.Name())
	}
}
