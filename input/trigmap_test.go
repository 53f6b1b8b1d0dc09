package input_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/opendaq/evmon/input"
)

var _ = Describe("TrigMap", func() {
	It("parses a flat '<prefix><channel> <offset>' table", func() {
		fs := afero.NewMemMapFs()
		afero.WriteFile(fs, "/trig.map", []byte(
			"# comment\nch0 1.5\nch2 -3.25\n\n"), 0o644)

		tm, err := input.LoadTrigMap(fs, "/trig.map", "ch")
		Expect(err).NotTo(HaveOccurred())
		Expect(tm.Offset(0)).To(Equal(1.5))
		Expect(tm.Offset(2)).To(Equal(-3.25))
		Expect(tm.Offset(99)).To(Equal(0.0))
	})

	It("errors on malformed lines", func() {
		fs := afero.NewMemMapFs()
		afero.WriteFile(fs, "/bad.map", []byte("not-a-valid-line\n"), 0o644)

		_, err := input.LoadTrigMap(fs, "/bad.map", "ch")
		Expect(err).To(HaveOccurred())
	})
})
