package driver_test

import (
	"time"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/clock"
	"github.com/opendaq/evmon/driver"
	"github.com/opendaq/evmon/errs"
	"github.com/opendaq/evmon/graph"
	"github.com/opendaq/evmon/input"
	"github.com/opendaq/evmon/input/inputmock"
	"github.com/opendaq/evmon/value"
)

type fakePort struct{ ts uint64 }

func (p *fakePort) Fetch() (bool, error)                                { return true, nil }
func (p *fakePort) Buffer()                                             {}
func (p *fakePort) GetData(int) ([]value.Scalar, int)                   { return nil, 0 }
func (p *fakePort) BindSignal(string, input.MemberKind, int, value.Type) {}
func (p *fakePort) UnbindSignals()                                      {}

var _ = Describe("Driver", func() {
	It("increments the event id after each DoEvent", func() {
		g := &graph.Graph{}
		d := driver.New(g, nil, nil)
		Expect(d.EventID()).To(Equal(uint64(0)))
		Expect(d.DoEvent(&fakePort{})).To(Succeed())
		Expect(d.EventID()).To(Equal(uint64(1)))
	})

	It("stops with a fatal error on a clock regression", func() {
		g := &graph.Graph{}
		wall := time.Unix(0, 0)
		m := clock.New(1.0).WithClock(func() time.Time { return wall }, func(time.Duration) {})

		source := func(port input.Port) (uint64, bool) {
			return port.(*fakePort).ts, true
		}
		d := driver.New(g, m, source)

		Expect(d.DoEvent(&fakePort{ts: 100})).To(Succeed())

		var nonMono *errs.NonMonotonicClock
		err := d.DoEvent(&fakePort{ts: 100})
		Expect(err).To(BeAssignableToTypeOf(nonMono))
	})

	It("unbinds signals exactly once per DoEvent, regardless of graph content", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		port := inputmock.NewMockPort(mockCtrl)
		port.EXPECT().UnbindSignals().Times(3)

		g := &graph.Graph{}
		d := driver.New(g, nil, nil)
		for i := 0; i < 3; i++ {
			Expect(d.DoEvent(port)).To(Succeed())
		}
	})
})
