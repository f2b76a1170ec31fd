package founder

import (
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type founderSuite struct{}

var _ = check.Suite(&founderSuite{})

// buildThreeNodeGraph builds node0 --ALT(copies 0,1)--> node1 --ref--> node2,
// with 4 chromosome copies total (copies 2,3 stay on the reference edge).
func buildThreeNodeGraph() *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(10, 10)
	n2 := g.AddOrUpdateNode(20, 20)
	e := g.AddEdge(0, "A")
	g.SetEdgeTarget(e, n1)
	_ = n2

	g.PloidyCsum = []uint32{0, 2, 4}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(4, 64)
	g.PathsByEdgeAndChromCopy.Set(0, int(e), true)
	g.PathsByEdgeAndChromCopy.Set(1, int(e), true)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *founderSuite) TestFindMatchingsTwoCutPositionsLeavesRowUnassigned(c *check.C) {
	g := buildThreeNodeGraph()
	assigned, ok := FindMatchings(g, []uint64{0, 2}, 2, true)
	c.Assert(ok, check.Equals, true)
	c.Assert(len(assigned), check.Equals, 1)
	for _, v := range assigned[0] {
		c.Check(v, check.Equals, uint32(PloidyMax))
	}
}

func (s *founderSuite) TestFindMatchingsSplitsThenCollapses(c *check.C) {
	g := buildThreeNodeGraph()
	assigned, ok := FindMatchings(g, []uint64{0, 1, 2}, 2, true)
	c.Assert(ok, check.Equals, true)
	c.Assert(len(assigned), check.Equals, 2)

	// Block 0 (node0 -> node1) spans the ALT edge, so the two founders must
	// land on distinct representatives.
	c.Check(assigned[0][0] != assigned[0][1], check.Equals, true)
	for _, v := range assigned[0] {
		c.Check(v != PloidyMax, check.Equals, true)
	}

	// Block 1 (node1 -> node2) has no edges at all, so nothing distinguishes
	// any chromosome copy: both founders collapse onto the same
	// representative.
	c.Check(assigned[1][0], check.Equals, assigned[1][1])
	c.Check(assigned[1][0] != PloidyMax, check.Equals, true)
}

func (s *founderSuite) TestFindMatchingsRejectsTooFewCuts(c *check.C) {
	g := buildThreeNodeGraph()
	_, ok := FindMatchings(g, []uint64{0}, 2, true)
	c.Check(ok, check.Equals, false)
}
