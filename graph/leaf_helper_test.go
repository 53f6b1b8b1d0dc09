package graph_test

import "github.com/opendaq/evmon/value"

// fakeLeaf is a fixed-content Node stand-in for feeding hand-built Values
// into transform nodes under test, without routing through an input.Port.
type fakeLeaf struct {
	out value.Value
}

func newFakeLeaf(typ value.Type, channels []uint32, vals []value.Scalar) *fakeLeaf {
	f := &fakeLeaf{}
	f.out.MustSetType(typ)
	for i, c := range channels {
		f.out.Push(c, vals[i])
	}
	return f
}

func (f *fakeLeaf) Location() string              { return "fakeLeaf" }
func (f *fakeLeaf) Process(eventID uint64)         {}
func (f *fakeLeaf) Output(string) *value.Value     { return &f.out }
