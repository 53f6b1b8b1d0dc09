package outputsink_test

import (
	"bufio"
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/opendaq/evmon/outputsink"
)

var _ = Describe("Sink", func() {
	It("writes a header then one row per FinishEvent", func() {
		fs := afero.NewMemMapFs()
		s := outputsink.New(fs, "/out.csv")
		x := s.Add("x")
		y := s.Add("y")

		s.Fill(x, 1.5)
		s.Fill(y, 2.5)
		Expect(s.FinishEvent()).To(Succeed())

		s.Fill(x, 3)
		Expect(s.FinishEvent()).To(Succeed())
		Expect(s.Close()).To(Succeed())

		data, err := afero.ReadFile(fs, "/out.csv")
		Expect(err).NotTo(HaveOccurred())

		var lines []string
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(Equal("x,y"))
		Expect(lines[1]).To(Equal("1.5,2.5"))
		Expect(lines[2]).To(Equal("3,"))
	})
})
