package cutpos

import (
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type cutposSuite struct{}

var _ = check.Suite(&cutposSuite{})

// buildLineGraph constructs a simple chain: node0 --ref--> node1 --ref--> node2
// with one ALT edge leaving node0 to node1, traversed by half of the
// chromosome copies, giving exactly two equivalence classes across the ALT
// edge's span and one class after it.
func buildLineGraph(copies int) *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(10, 10)
	n2 := g.AddOrUpdateNode(20, 20)
	e := g.AddEdge(0, "A")
	g.SetEdgeTarget(e, n1)
	_ = n2

	g.PloidyCsum = make([]uint32, copies+1)
	for i := range g.PloidyCsum {
		g.PloidyCsum[i] = uint32(i)
	}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(copies, 64)
	for c := 0; c < copies/2; c++ {
		g.PathsByEdgeAndChromCopy.Set(c, int(e), true)
	}
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *cutposSuite) TestFindReturnsSinkTerminatedCuts(c *check.C) {
	g := buildLineGraph(8)
	cuts, score := Find(g, 0, nil)
	c.Assert(cuts, check.NotNil)
	c.Assert(len(cuts) >= 1, check.Equals, true)
	c.Check(cuts[len(cuts)-1], check.Equals, g.NodeCount()-1)
	c.Check(score <= uint32(8), check.Equals, true)
	for i := 1; i < len(cuts); i++ {
		c.Check(cuts[i] > cuts[i-1], check.Equals, true)
	}
}

func (s *cutposSuite) TestBlockEquivalenceClassCountsSplitsAtAltEdge(c *check.C) {
	g := buildLineGraph(8)
	counts := BlockEquivalenceClassCounts(g, []uint64{0, 1, 2})
	// Block 0 (node0->node1) carries the ALT edge, splitting the 8 copies
	// into the 4 that took it and the 4 that didn't: 2 classes. Block 1
	// (node1->node2) has no edges, so no further split occurs: 1 class.
	c.Check(counts, check.DeepEquals, []int{2, 1})
}

func (s *cutposSuite) TestBlockEquivalenceClassCountsRequiresTwoCutPositions(c *check.C) {
	g := buildLineGraph(8)
	c.Check(BlockEquivalenceClassCounts(g, []uint64{0}), check.IsNil)
	c.Check(BlockEquivalenceClassCounts(g, nil), check.IsNil)
}

func (s *cutposSuite) TestFindSingleNodeGraphCutsAtSink(c *check.C) {
	// Even a one-node graph seeds a trivial cut at node 0, which is also
	// the sink, so the walk always terminates with at least that cut.
	g := graph.New()
	g.PloidyCsum = []uint32{0, 1}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(1, 64)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	cuts, score := Find(g, 0, nil)
	c.Assert(cuts, check.DeepEquals, []uint64{0})
	c.Check(score, check.Equals, uint32(1))
}
