package graph

import (
	"fmt"
	"strings"

	"github.com/opendaq/evmon/cut"
	"github.com/opendaq/evmon/errs"
)

// cutGate records a still-unresolved "sink X is gated by a polygon drawn
// on sink Y" declaration, to be wired up by Builder.ResolveCuts once
// every histogram has been constructed.
type cutGate struct {
	consumer    *cut.Consumer
	sourceTitle string
}

// Graph owns every node and cuttable sink built by a Builder, and is the
// handle the event driver evaluates.
type Graph struct {
	sinks []CuttableSink
}

// Sinks returns every cuttable sink in insertion order.
func (g *Graph) Sinks() []CuttableSink { return g.sinks }

// Evaluate resets per-event cut state on every sink, then runs Process on
// each in insertion order.
func (g *Graph) Evaluate(eventID uint64) {
	for _, s := range g.sinks {
		s.ResetCutState()
	}
	for _, s := range g.sinks {
		s.Process(eventID)
	}
}

// Builder implements append-only construction with structural
// deduplication: every add-node call computes a canonical
// key from (node-kind-tag, arg-identities, scalar-params) and returns the
// existing node if one with that key already exists.
type Builder struct {
	graph *Graph

	cache        map[string]Node
	names        map[string]Node // alias name table, identifier bindings
	referenced   map[string]bool // names looked up via Reference, for unbound reporting
	titles       map[string]*cut.Producer
	sinksByTitle map[string]CuttableSink

	gates []cutGate
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		graph:        &Graph{},
		cache:        make(map[string]Node),
		names:        make(map[string]Node),
		referenced:   make(map[string]bool),
		titles:       make(map[string]*cut.Producer),
		sinksByTitle: make(map[string]CuttableSink),
	}
}

// intern returns the cached node for key if one exists, otherwise builds
// it via factory, caches it, and returns it — the structural
// deduplication primitive every add-node helper routes through.
func (b *Builder) intern(key string, factory func() Node) Node {
	if n, ok := b.cache[key]; ok {
		return n
	}
	n := factory()
	b.cache[key] = n
	return n
}

// Bind records name as an alias for node.
func (b *Builder) Bind(name string, node Node) {
	b.names[name] = node
}

// Reference looks up a previously bound name, marking it as referenced
// so an unresolved name at Build time is reported via UnboundNames
// rather than silently ignored.
func (b *Builder) Reference(name string) (Node, bool) {
	b.referenced[name] = true
	n, ok := b.names[name]
	return n, ok
}

// AddSink registers a newly-built cuttable sink under title, failing with
// *errs.DuplicateTitle if the title is already taken.
func (b *Builder) AddSink(title string, sink CuttableSink, producer *cut.Producer) {
	if _, exists := b.sinksByTitle[title]; exists {
		panic(&errs.DuplicateTitle{Title: title})
	}
	b.sinksByTitle[title] = sink
	if producer != nil {
		b.titles[title] = producer
	}
	b.graph.sinks = append(b.graph.sinks, sink)
}

// GateBy records that consumer should be bound to the cut producer drawn
// on the histogram titled sourceTitle, resolved by ResolveCuts.
func (b *Builder) GateBy(consumer *cut.Consumer, sourceTitle string) {
	b.gates = append(b.gates, cutGate{consumer: consumer, sourceTitle: sourceTitle})
}

// ResolveCuts runs the post-parse cut resolution pass: every
// registered gate is bound to its named source histogram's producer, or
// construction fails with *errs.UnknownCuttable.
func (b *Builder) ResolveCuts() {
	for _, g := range b.gates {
		p, ok := b.titles[g.sourceTitle]
		if !ok {
			panic(&errs.UnknownCuttable{Title: g.sourceTitle})
		}
		g.consumer.Bind(p)
	}
}

// Build finalizes construction and returns the assembled Graph alongside
// any name referenced but never bound — the out-of-scope configuration
// parser is expected to synthesize an implicit Signal for each.
func (b *Builder) Build() (*Graph, []string) {
	return b.graph, b.UnboundNames()
}

// UnboundNames returns every name looked up via Reference that never
// received a matching Bind call.
func (b *Builder) UnboundNames() []string {
	var out []string
	for name := range b.referenced {
		if _, ok := b.names[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func structKey(kind string, parts ...string) string {
	return kind + "(" + strings.Join(parts, ",") + ")"
}

// nodeID is a node's identity for dedup-key purposes: its pointer value
// formatted stably, or the literal "nil" for an absent operand.
func nodeID(n Node) string {
	if n == nil {
		return "nil"
	}
	return fmt.Sprintf("%p", n)
}

// AddMExpr interns an MExpr node keyed on (op, left, right, d) so two
// identical declarations in the configuration collapse to one node.
func (b *Builder) AddMExpr(loc string, left, right Node, d float64, op MExprOp) *MExpr {
	key := structKey("MExpr", fmt.Sprint(op), nodeID(left), nodeID(right), fmt.Sprint(d))
	return b.intern(key, func() Node { return NewMExpr(loc, left, right, d, op) }).(*MExpr)
}

// AddZeroSuppress interns a ZeroSuppress node keyed on (src, cutoff).
func (b *Builder) AddZeroSuppress(loc string, src Node, cutoff float64) *ZeroSuppress {
	key := structKey("ZeroSuppress", nodeID(src), fmt.Sprint(cutoff))
	return b.intern(key, func() Node { return NewZeroSuppress(loc, src, cutoff) }).(*ZeroSuppress)
}

// AddMerge interns a Merge node keyed on its ordered source list (order
// matters: Merge preserves per-channel hit order from the source list,
// so two different orderings are two different nodes).
func (b *Builder) AddMerge(loc string, srcs []Node) *Merge {
	ids := make([]string, len(srcs))
	for i, s := range srcs {
		ids[i] = nodeID(s)
	}
	key := structKey("Merge", ids...)
	return b.intern(key, func() Node { return NewMerge(loc, srcs) }).(*Merge)
}

// AddCluster interns a Cluster node keyed on its source.
func (b *Builder) AddCluster(loc string, src Node) *Cluster {
	key := structKey("Cluster", nodeID(src))
	return b.intern(key, func() Node { return NewCluster(loc, src) }).(*Cluster)
}

// AddAlias interns an Alias node keyed on its child, then binds name to
// it in the name table.
func (b *Builder) AddAlias(loc, name string, child Node) *Alias {
	key := structKey("Alias", nodeID(child))
	a := b.intern(key, func() Node { return NewAlias(loc, child) }).(*Alias)
	b.Bind(name, a)
	return a
}
