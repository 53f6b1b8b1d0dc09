// Command evmon-demo wires a small synthetic event source through the
// graph, driver and pipeline packages, demonstrating the end-to-end
// control flow without depending on any real input source (concrete
// input sources are out of this module's scope).
package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/opendaq/evmon/axis"
	"github.com/opendaq/evmon/driver"
	"github.com/opendaq/evmon/graph"
	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/logx"
	"github.com/opendaq/evmon/pipeline"
	"github.com/opendaq/evmon/value"
)

// syntheticPort is an in-process Input implementation that manufactures
// a Gaussian-distributed single-hit signal on one to three channels per event,
// standing in for a real file/socket/unpacker source.
type syntheticPort struct {
	mu     sync.Mutex
	rng    *rand.Rand
	id     []value.Scalar
	v      []value.Scalar
	budget int
}

func newSyntheticPort(events int) *syntheticPort {
	return &syntheticPort{rng: rand.New(rand.NewSource(1)), budget: events}
}

func (p *syntheticPort) Fetch() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.budget <= 0 {
		return false, nil
	}
	p.budget--
	n := 1 + p.rng.Intn(3)
	p.id = p.id[:0]
	p.v = p.v[:0]
	for i := 0; i < n; i++ {
		p.id = append(p.id, value.U64Scalar(uint64(i)))
		p.v = append(p.v, value.F64Scalar(p.rng.NormFloat64()*10+100))
	}
	return true, nil
}

func (p *syntheticPort) Buffer() {}

func (p *syntheticPort) GetData(signalID int) ([]value.Scalar, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch signalID {
	case 0:
		return p.id, len(p.id)
	case 1:
		return p.v, len(p.v)
	default:
		return nil, 0
	}
}

func (p *syntheticPort) BindSignal(string, input.MemberKind, int, value.Type) {}
func (p *syntheticPort) UnbindSignals()                                      {}

func main() {
	logx.Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logx.Log.SetLevel(logrus.InfoLevel)
	log := logx.ForComponent("cmd")

	port := newSyntheticPort(200)

	sig := graph.NewSignal("demo.signal", port, graph.ShapeSingleHit, value.F64, 0, 0, 1)
	h := graph.NewHist1("demo.hist1", "amplitude", sig, axis.New(100, 0, 200), 100, axis.ModeAll, 10*time.Second)

	b := graph.NewBuilder()
	b.AddSink("amplitude", h, nil)
	g, _ := b.Build()

	d := driver.New(g, nil, nil)
	pl := pipeline.New(port, func(p input.Port) error { return d.DoEvent(p) }, 10*time.Millisecond)

	atexit.Register(func() {
		snap, _ := h.Latch()
		var total uint32
		for _, c := range snap.Counts {
			total += c
		}
		fmt.Printf("final histogram total count: %d\n", total)
	})

	go func() {
		time.Sleep(2 * time.Second)
		pl.Stop()
	}()

	if err := pl.Run(); err != nil {
		log.WithError(err).Error("pipeline exited with error")
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
