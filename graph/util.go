package graph

import (
	"math"

	"github.com/opendaq/evmon/errs"
	"github.com/opendaq/evmon/logx"
	"github.com/opendaq/evmon/value"
)

var log = logx.ForComponent("graph")

// asIndex widens an integer-typed scalar (U64 or I64) to an int, for use
// as a channel id or an End offset.
func asIndex(s value.Scalar) int {
	if s.Type == value.U64 {
		return int(s.U64)
	}
	return int(s.I64)
}

// sameType panics with *errs.TypeMismatch if a and b are both concrete
// and disagree — a type conflict is fatal at event-processing time.
func sameType(loc string, a, b value.Type) value.Type {
	if a == value.None {
		return b
	}
	if b == value.None || a == b {
		return a
	}
	panic(&errs.TypeMismatch{Location: loc, Detail: "mismatched operand types " + a.String() + " vs " + b.String()})
}

// warnLengthMismatch logs a non-fatal LengthMismatch.
func warnLengthMismatch(loc, detail string) {
	err := &errs.LengthMismatch{Location: loc, Detail: detail}
	log.WithField("source", loc).Warn(err.Error())
}

// pushFiniteF64 pushes an f64 hit unless it is NaN or infinite, per the
// NaN/Inf-dropping policy shared by MExpr and its relatives.
func pushFiniteF64(out *value.Value, channel uint32, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	out.Push(channel, value.F64Scalar(f))
}

// chanPair is one matched channel between two Values, with the matching
// group's [lo, hi) slice range into each side's V.
type chanPair struct {
	channel    uint32
	aLo, aHi   int
	bLo, bHi   int
}

// pairChannels two-pointer merges a and b's channel id lists, returning
// one chanPair per channel present in both — the "channel-aligned
// pairing" most binary transform nodes use.
func pairChannels(a, b *value.Value) []chanPair {
	var pairs []chanPair
	ai, bi := 0, 0
	aID, bID := a.GetID(), b.GetID()
	for ai < len(aID) && bi < len(bID) {
		switch {
		case aID[ai] < bID[bi]:
			ai++
		case aID[ai] > bID[bi]:
			bi++
		default:
			aLo, aHi := a.GroupRange(ai)
			bLo, bHi := b.GroupRange(bi)
			pairs = append(pairs, chanPair{channel: aID[ai], aLo: aLo, aHi: aHi, bLo: bLo, bHi: bHi})
			ai++
			bi++
		}
	}
	return pairs
}
