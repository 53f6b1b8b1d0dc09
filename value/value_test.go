package value_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opendaq/evmon/value"
)

var _ = Describe("Value", func() {
	var v value.Value

	BeforeEach(func() {
		v = value.Value{}
	})

	It("opens a new group on a new channel and extends the last group on repeats", func() {
		v.Push(1, value.U64Scalar(10))
		v.Push(1, value.U64Scalar(11))
		v.Push(3, value.U64Scalar(20))

		Expect(v.GetID()).To(Equal([]uint32{1, 3}))
		Expect(v.GetEnd()).To(Equal([]uint32{2, 3}))
		Expect(v.GetType()).To(Equal(value.U64))
		Expect(v.Valid()).To(BeTrue())
	})

	It("groups repeated pushes to the same channel into one multi-hit group", func() {
		v.Push(1, value.U64Scalar(10))
		v.Push(1, value.U64Scalar(20))
		v.Push(3, value.U64Scalar(30))

		Expect(v.GetID()).To(Equal([]uint32{1, 3}))
		Expect(v.GetEnd()).To(Equal([]uint32{2, 3}))
		vals := make([]uint64, len(v.GetV()))
		for i, s := range v.GetV() {
			vals[i] = s.U64
		}
		Expect(vals).To(Equal([]uint64{10, 20, 30}))
	})

	It("rejects changing the declared type", func() {
		Expect(v.SetType(value.U64)).To(Succeed())
		err := v.SetType(value.F64)
		Expect(err).To(HaveOccurred())
		var mismatch *value.TypeMismatchError
		Expect(err).To(BeAssignableToTypeOf(mismatch))
	})

	It("preserves type across Clear", func() {
		v.Push(1, value.F64Scalar(1.5))
		v.Clear()
		Expect(v.GetType()).To(Equal(value.F64))
		Expect(v.GetID()).To(BeEmpty())
	})

	It("widens U64 to signed on request", func() {
		v.Push(0, value.U64Scalar(^uint64(0))) // all-ones bit pattern == -1 signed
		Expect(v.GetF64(0, true)).To(Equal(-1.0))
		Expect(v.GetF64(0, false)).To(BeNumerically(">", 0))
	})

	It("flags NaN and Inf as non-finite for float scalars", func() {
		s := value.F64Scalar(1.0)
		Expect(s.IsFiniteFloat()).To(BeTrue())
		Expect(value.F64Scalar(math.NaN()).IsFiniteFloat()).To(BeFalse())
		Expect(value.F64Scalar(math.Inf(1)).IsFiniteFloat()).To(BeFalse())
	})
})
