package supply

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jlab-evio/evio/compress"
	"github.com/jlab-evio/evio/endian"
	"github.com/jlab-evio/evio/record"
)

func TestRecordSupplyPreservesPublishOrder(t *testing.T) {
	const (
		recordCount = 64
		workerCount = 4
		ringSize    = 8
	)

	s, err := New(ringSize, workerCount, record.WithCompression(compress.LZ4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for r := 0; r < workerCount; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			err := s.RunWorker(r, func(out *record.RecordOutput) ([]byte, error) {
				return out.Build(nil)
			})
			require.NoError(t, err)
		}(r)
	}

	var mu sync.Mutex
	var written [][]byte
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.RunWriter(func(built []byte) error {
			mu.Lock()
			written = append(written, append([]byte(nil), built...))
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}()

	for i := 0; i < recordCount; i++ {
		seq, out, err := s.Next()
		require.NoError(t, err)
		_, err = out.TryAddEvent([]byte{byte(i), byte(i >> 8), 0, 0})
		require.NoError(t, err)
		s.Publish(seq)
	}

	s.Stop()
	wg.Wait()

	require.Len(t, written, recordCount)

	engine := endian.GetLittleEndianEngine()
	for i, built := range written {
		in, err := record.Parse(built, engine)
		require.NoError(t, err)
		require.Equal(t, 1, in.EventCount())

		ev, err := in.EventBytes(0)
		require.NoError(t, err)
		require.Equal(t, byte(i), ev[0])
		require.Equal(t, byte(i>>8), ev[1])
	}
}

func TestRecordSupplyRejectsNonPowerOfTwo(t *testing.T) {
	_, err := New(3, 1)
	require.Error(t, err)
}

func TestRecordSupplyStopUnblocksNext(t *testing.T) {
	s, err := New(1, 1)
	require.NoError(t, err)

	seq, _, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, int64(0), seq)

	done := make(chan struct{})
	go func() {
		_, _, err := s.Next()
		require.Error(t, err)
		close(done)
	}()

	s.Stop()
	<-done
}
