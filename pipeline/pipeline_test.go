package pipeline_test

import (
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/pipeline"
	"github.com/opendaq/evmon/value"
)

// countingPort yields exactly n events then reports end-of-stream
// forever after.
type countingPort struct {
	mu       sync.Mutex
	n        int
	fetched  int
	buffered int32
}

func (p *countingPort) Fetch() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetched >= p.n {
		return false, nil
	}
	p.fetched++
	return true, nil
}
func (p *countingPort) Buffer()                             { atomic.AddInt32(&p.buffered, 1) }
func (p *countingPort) GetData(int) ([]value.Scalar, int)   { return nil, 0 }
func (p *countingPort) BindSignal(string, input.MemberKind, int, value.Type) {}
func (p *countingPort) UnbindSignals()                      {}

// foreverPort never reports end-of-stream, so a Pipeline driven by it
// only ever stops via Stop (here, via SIGINT).
type foreverPort struct{}

func (foreverPort) Fetch() (bool, error) { return true, nil }
func (foreverPort) Buffer()              {}
func (foreverPort) GetData(int) ([]value.Scalar, int) { return nil, 0 }
func (foreverPort) BindSignal(string, input.MemberKind, int, value.Type) {}
func (foreverPort) UnbindSignals() {}

var _ = Describe("Pipeline", func() {
	It("processes exactly n events then stops cleanly on request", func() {
		port := &countingPort{n: 5}
		var processed int32
		var done sync.WaitGroup
		done.Add(1)

		var pl *pipeline.Pipeline
		pl = pipeline.New(port, func(input.Port) error {
			count := atomic.AddInt32(&processed, 1)
			if count == 5 {
				go pl.Stop()
			}
			return nil
		}, time.Millisecond)

		go func() {
			defer done.Done()
			_ = pl.Run()
		}()

		doneCh := make(chan struct{})
		go func() { done.Wait(); close(doneCh) }()
		Eventually(doneCh, 2*time.Second).Should(BeClosed())
		Expect(atomic.LoadInt32(&processed)).To(BeNumerically(">=", 5))
	})

	It("keeps input_seq - event_seq in {0, 1}", func() {
		port := &countingPort{n: 3}
		var pl *pipeline.Pipeline
		seen := make(chan uint64, 16)
		pl = pipeline.New(port, func(input.Port) error {
			seen <- pl.InFlight()
			return nil
		}, time.Millisecond)

		go func() {
			_ = pl.Run()
		}()

		count := 0
		for count < 3 {
			select {
			case v := <-seen:
				Expect(v).To(Equal(uint64(1)))
				count++
			case <-time.After(2 * time.Second):
				Fail("timed out waiting for events")
			}
		}
		pl.Stop()
	})

	It("requests a graceful stop on each of the first three SIGINTs, not an abort", func() {
		pl := pipeline.New(foreverPort{}, func(input.Port) error {
			return nil
		}, time.Millisecond)

		runDone := make(chan error, 1)
		go func() { runDone <- pl.Run() }()

		// Give the ingest/consume goroutines a moment to start before
		// raising signals against this process.
		time.Sleep(20 * time.Millisecond)

		for i := 0; i < 3; i++ {
			Expect(syscall.Kill(os.Getpid(), syscall.SIGINT)).To(Succeed())
			time.Sleep(10 * time.Millisecond)
		}

		// Three strikes only request a stop; the pipeline must exit
		// cleanly on its own rather than the process being aborted by a
		// fourth, unset strike.
		Eventually(runDone, 2*time.Second).Should(Receive(BeNil()))
	})
})
