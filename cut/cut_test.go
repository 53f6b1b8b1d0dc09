package cut_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/cut"
)

var _ = Describe("Polygon", func() {
	square := cut.Polygon{
		Title: "gate",
		Points: []cut.Point{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
	}

	It("reports points inside the polygon as contained", func() {
		Expect(square.Contains(5, 5)).To(BeTrue())
	})

	It("reports points outside the polygon as not contained", func() {
		Expect(square.Contains(50, 50)).To(BeFalse())
	})
})

var _ = Describe("Producer/Consumer gating", func() {
	It("gates a downstream consumer on the producer's per-event visibility", func() {
		rect := cut.Polygon{
			Title: "A-gate",
			Points: []cut.Point{
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
			},
		}
		producer := cut.NewProducer(rect)
		consumer := cut.NewConsumer()
		consumer.Bind(producer)

		producer.Reset()
		producer.Evaluate(5, 5) // inside
		Expect(consumer.Pass()).To(BeTrue())

		producer.Reset()
		producer.Evaluate(50, 50) // outside
		Expect(consumer.Pass()).To(BeFalse())
	})

	It("always passes when unbound", func() {
		consumer := cut.NewConsumer()
		Expect(consumer.Bound()).To(BeFalse())
		Expect(consumer.Pass()).To(BeTrue())
	})
})
