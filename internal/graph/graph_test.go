package graph

import (
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type graphSuite struct{}

var _ = check.Suite(&graphSuite{})

func (s *graphSuite) TestNewHasAnchorNode(c *check.C) {
	g := New()
	c.Assert(g.NodeCount(), check.Equals, uint64(1))
	c.Check(g.ReferencePositions[0], check.Equals, uint64(0))
	c.Check(g.AlignedPositions[0], check.Equals, uint64(0))
	lo, hi := g.EdgeRangeForNode(0)
	c.Check(lo, check.Equals, uint64(0))
	c.Check(hi, check.Equals, uint64(0))
}

func (s *graphSuite) TestAddOrUpdateNodeCoalesces(c *check.C) {
	g := New()
	n1 := g.AddOrUpdateNode(5, 5)
	c.Check(n1, check.Equals, uint64(1))
	n2 := g.AddOrUpdateNode(5, 7)
	c.Assert(n2, check.Equals, n1)
	c.Check(g.AlignedPositions[n2], check.Equals, uint64(7))
	n3 := g.AddOrUpdateNode(5, 3)
	c.Assert(n3, check.Equals, n1)
	c.Check(g.AlignedPositions[n3], check.Equals, uint64(7))
	n4 := g.AddOrUpdateNode(9, 11)
	c.Check(n4, check.Equals, uint64(2))
}

func (s *graphSuite) TestAddEdgeUpdatesCsum(c *check.C) {
	g := New()
	n1 := g.AddNode(5, 5)
	n2 := g.AddNode(10, 10)
	e1 := g.AddEdge(n1, "A")
	e2 := g.AddEdge(n1, "G")
	g.SetEdgeTarget(e1, n2)
	g.SetEdgeTarget(e2, n2)

	lo, hi := g.EdgeRangeForNode(n1)
	c.Assert(hi-lo, check.Equals, uint64(2))
	c.Check(g.AltEdgeTargets[e1], check.Equals, n2)
	c.Check(g.AltEdgeLabels[e1], check.Equals, "A")

	lo0, hi0 := g.EdgeRangeForNode(0)
	c.Check(lo0, check.Equals, uint64(0))
	c.Check(hi0, check.Equals, uint64(0))
}

func (s *graphSuite) TestAlignedLengthAndPloidy(c *check.C) {
	g := New()
	g.PloidyCsum = []uint32{0, 2, 3}
	g.SampleNames = []string{"s1", "s2"}
	c.Check(g.SamplePloidy(0), check.Equals, uint32(2))
	c.Check(g.SamplePloidy(1), check.Equals, uint32(1))
	c.Check(g.TotalChromosomeCopies(), check.Equals, uint32(3))

	n1 := g.AddNode(100, 100)
	n2 := g.AddNode(200, 210)
	c.Check(g.AlignedLength(n1, n2), check.Equals, uint64(110))
}
