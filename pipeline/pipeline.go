// Package pipeline implements the two-thread producer/consumer handshake:
// a single-slot double buffer owned by Input, guarded by one mutex and
// two condition variables, admitting exactly one in-flight event at a
// time, with a SIGINT three-strikes-then-abort shutdown.
package pipeline

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/logx"
)

var log = logx.ForComponent("pipeline")

// EventFunc is the consumer-thread callback invoked once per buffered
// event.
type EventFunc func(port input.Port) error

// Pipeline owns the handshake state shared by the ingest and consume
// goroutines.
type Pipeline struct {
	port     input.Port
	doEvent  EventFunc
	idleWait time.Duration

	mu       sync.Mutex
	inputCV  *sync.Cond
	eventCV  *sync.Cond
	inputSeq uint64
	eventSeq uint64
	running  bool

	fatalErr error
}

// New creates a Pipeline over port, calling doEvent once per buffered
// event. idleWait is how long the ingest goroutine sleeps after a
// end-of-stream Fetch before retrying.
func New(port input.Port, doEvent EventFunc, idleWait time.Duration) *Pipeline {
	p := &Pipeline{port: port, doEvent: doEvent, idleWait: idleWait, running: true}
	p.inputCV = sync.NewCond(&p.mu)
	p.eventCV = sync.NewCond(&p.mu)
	return p
}

// Run starts the ingest and consume goroutines and blocks until both
// exit, either because Stop was called, a signal arrived, or doEvent
// returned a fatal error. It installs a SIGINT handler that requests a
// graceful stop on each of the first three receipts and aborts the
// process outright on a fourth receipt within the same run.
func (p *Pipeline) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)

	sigDone := make(chan struct{})
	go func() {
		strikes := 0
		for {
			select {
			case <-sigCh:
				if strikes >= 3 {
					log.Warn("fourth SIGINT received, aborting immediately")
					os.Exit(1)
				}
				strikes++
				p.Stop()
			case <-sigDone:
				return
			}
		}
	}()
	defer close(sigDone)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); p.ingestLoop() }()
	go func() { defer wg.Done(); p.consumeLoop() }()
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatalErr
}

// Stop clears the running flag and wakes both goroutines so they exit
// after draining their current event.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	p.inputCV.Broadcast()
	p.eventCV.Broadcast()
}

func (p *Pipeline) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// ingestLoop mirrors main_input: fetch outside the lock (I/O), then wait
// for the consumer to have caught up before flipping the buffer.
func (p *Pipeline) ingestLoop() {
	log.Info("starting input loop")
	for p.isRunning() {
		ok, err := p.port.Fetch()
		if err != nil {
			p.failFatal(err)
			break
		}
		if !ok {
			time.Sleep(p.idleWait)
			continue
		}

		p.mu.Lock()
		for p.inputSeq != p.eventSeq && p.running {
			p.inputCV.Wait()
		}
		if !p.running {
			p.mu.Unlock()
			break
		}
		p.port.Buffer()
		p.inputSeq++
		p.mu.Unlock()
		p.eventCV.Signal()
	}
	p.eventCV.Signal()
	log.Info("exited input loop")
}

// consumeLoop mirrors main_event: wait for a freshly buffered event,
// process it, then wake the ingest side back up.
func (p *Pipeline) consumeLoop() {
	log.Info("starting event loop")
	for {
		p.mu.Lock()
		for p.inputSeq <= p.eventSeq && p.running {
			p.eventCV.Wait()
		}
		if !p.running {
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		if err := p.doEvent(p.port); err != nil {
			p.failFatal(err)
			p.Stop()
			break
		}

		p.mu.Lock()
		p.eventSeq++
		p.mu.Unlock()
		p.inputCV.Signal()
	}
	log.Info("exited event loop")
}

func (p *Pipeline) failFatal(err error) {
	p.mu.Lock()
	if p.fatalErr == nil {
		p.fatalErr = err
	}
	p.mu.Unlock()
	log.WithError(err).Error("pipeline stopping on fatal error")
	p.Stop()
}

// InFlight reports inputSeq - eventSeq, which must always be 0 or 1.
func (p *Pipeline) InFlight() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputSeq - p.eventSeq
}
