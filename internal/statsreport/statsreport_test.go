package statsreport

import (
	"bytes"
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type statsreportSuite struct{}

var _ = check.Suite(&statsreportSuite{})

func sampleGraph() *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(5, 5)
	e := g.AddEdge(0, "X")
	g.SetEdgeTarget(e, n1)
	g.SampleNames = []string{"s1", "s2"}
	g.PloidyCsum = []uint32{0, 2, 4}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(4, 64)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *statsreportSuite) TestBuildReportBasicCounts(c *check.C) {
	g := sampleGraph()
	r := BuildReport(g, nil, nil)
	c.Check(r.Nodes, check.Equals, uint64(2))
	c.Check(r.Edges, check.Equals, uint64(1))
	c.Check(r.Samples, check.Equals, 2)
	c.Check(r.ChromosomeCopies, check.Equals, uint32(4))
	c.Check(r.Blocks, check.Equals, 0)
	c.Check(r.SampleOverlapHomogeneityP, check.IsNil)
}

func (s *statsreportSuite) TestBuildReportBlockStatistics(c *check.C) {
	g := sampleGraph()
	r := BuildReport(g, []int{2, 4, 6}, nil)
	c.Check(r.Blocks, check.Equals, 3)
	c.Check(r.MeanBlockClasses, check.Equals, 4.0)
}

func (s *statsreportSuite) TestBuildReportHomogeneityRequiresTwoSamples(c *check.C) {
	g := sampleGraph()
	r := BuildReport(g, nil, []int{3})
	c.Check(r.SampleOverlapHomogeneityP, check.IsNil)

	r2 := BuildReport(g, nil, []int{3, 3})
	c.Assert(r2.SampleOverlapHomogeneityP, check.NotNil)
	c.Check(*r2.SampleOverlapHomogeneityP, check.Equals, 1.0)
}

func (s *statsreportSuite) TestWriteEncodesJSON(c *check.C) {
	var buf bytes.Buffer
	c.Assert(Write(&buf, Report{Nodes: 3, Edges: 1}), check.IsNil)
	c.Check(buf.String() != "", check.Equals, true)
}
