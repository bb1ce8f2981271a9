// Package supply implements the evio record-supply writer pipeline
// (spec.md §4.H): a bounded ring of record items shared by one producer,
// N compressor workers, and one writer, guaranteeing on-disk record
// order equals producer publish order regardless of per-record
// compression latency.
//
// Workers are plain goroutines scheduled onto OS threads by the Go
// runtime, not coroutines or callbacks; all cross-goroutine handoffs go
// through sequence counters guarded by a condition variable, mirroring
// the sequence-map/flush-queue coordination the teacher's recordio
// writer uses for its own out-of-order-complete, in-order-flush problem.
package supply

import (
	"sync"

	"github.com/jlab-evio/evio/evioerr"
	"github.com/jlab-evio/evio/record"
)

type itemState uint8

const (
	stateFree itemState = iota
	stateFilling
	statePublished
	stateCompressed
)

type item struct {
	out   *record.RecordOutput
	state itemState
	built []byte
}

// RecordSupply is the ring described by spec.md §4.H. size must be a
// power of two; workerCount is the number of compressor-worker residue
// classes (1-64).
type RecordSupply struct {
	items []*item
	mask  int64

	workerCount int
	recordOpts  []record.Option

	mu   sync.Mutex
	cond *sync.Cond

	reserved  int64 // next seq Next() will hand out
	published int64 // count of seqs published so far (producer publishes strictly in reservation order)
	consumed  int64 // count of seqs the writer has fully written and released

	stopped bool
}

// New builds a RecordSupply with the given power-of-two ring size and
// worker count, pre-allocating one RecordOutput per slot (spec.md §4.H's
// "each item owning its own RecordOutput buffer... no allocation on the
// steady-state path").
func New(size int, workerCount int, recordOpts ...record.Option) (*RecordSupply, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, evioerr.New(evioerr.KindBadFormat, "record supply ring size must be a power of two")
	}
	if workerCount < 1 || workerCount > 64 {
		return nil, evioerr.New(evioerr.KindBadFormat, "record supply worker count must be between 1 and 64")
	}

	s := &RecordSupply{
		items:       make([]*item, size),
		mask:        int64(size - 1),
		workerCount: workerCount,
		recordOpts:  recordOpts,
	}
	s.cond = sync.NewCond(&s.mu)

	for i := range s.items {
		out, err := record.NewRecordOutput(recordOpts...)
		if err != nil {
			return nil, err
		}
		s.items[i] = &item{out: out, state: stateFree}
	}

	return s, nil
}

// Next reserves the next ring slot for the producer, blocking while the
// ring is full (the producer would lap the writer). Returns
// *evioerr.Error{Kind: Cancelled} once Stop has been called and no slot
// is currently free.
func (s *RecordSupply) Next() (seq int64, out *record.RecordOutput, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.reserved-s.consumed >= int64(len(s.items)) && !s.stopped {
		s.cond.Wait()
	}
	if s.reserved-s.consumed >= int64(len(s.items)) {
		return 0, nil, evioerr.New(evioerr.KindCancelled, "record supply stopped with ring full")
	}

	seq = s.reserved
	s.reserved++
	it := s.items[seq&s.mask]
	it.state = stateFilling

	return seq, it.out, nil
}

// Publish marks seq's item as ready for compression. Callers must
// publish in the same order Next() returned the sequences (spec.md
// §4.H: the producer is single-threaded and fills/publishes one item at
// a time).
func (s *RecordSupply) Publish(seq int64) {
	s.mu.Lock()
	s.items[seq&s.mask].state = statePublished
	if seq+1 > s.published {
		s.published = seq + 1
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// RunWorker runs the compressor-worker loop for residue class r (spec.md
// §4.H: "each worker owns a residue class r mod N"), calling build on
// every published item whose sequence number is congruent to r, until
// Stop has been called and no more such items remain. build is expected
// to be the item's RecordOutput.Build step; its result is cached on the
// item for the writer.
func (s *RecordSupply) RunWorker(r int, build func(out *record.RecordOutput) ([]byte, error)) error {
	n := int64(s.workerCount)
	seq := int64(r)

	for {
		s.mu.Lock()
		for (seq >= s.published || s.items[seq&s.mask].state != statePublished) && !(s.stopped && seq >= s.published) {
			s.cond.Wait()
		}
		if seq >= s.published {
			s.mu.Unlock()
			return nil
		}
		it := s.items[seq&s.mask]
		s.mu.Unlock()

		built, err := build(it.out)
		if err != nil {
			return err
		}

		s.mu.Lock()
		it.built = built
		it.state = stateCompressed
		s.cond.Broadcast()
		s.mu.Unlock()

		seq += n
	}
}

// RunWriter runs the single writer loop: consumes items in strict
// sequence order, waiting for each one's compression to complete, calls
// write with its built bytes, then releases the slot back to the
// producer. Returns once Stop has been called and every published item
// has been written.
func (s *RecordSupply) RunWriter(write func(built []byte) error) error {
	seq := int64(0)

	for {
		s.mu.Lock()
		for (seq >= s.published || s.items[seq&s.mask].state != stateCompressed) && !(s.stopped && seq >= s.published) {
			s.cond.Wait()
		}
		if seq >= s.published {
			s.mu.Unlock()
			return nil
		}
		it := s.items[seq&s.mask]
		built := it.built
		s.mu.Unlock()

		if err := write(built); err != nil {
			return err
		}

		s.mu.Lock()
		it.out.Reset()
		it.built = nil
		it.state = stateFree
		s.consumed++
		s.cond.Broadcast()
		s.mu.Unlock()

		seq++
	}
}

// Stop marks the supply drained: workers and the writer finish any
// items already published, then their Run loops return; any blocked
// Next() call returns Cancelled (spec.md §4.H).
func (s *RecordSupply) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
}
