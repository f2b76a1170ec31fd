package npyexport

import (
	"bytes"
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type npyexportSuite struct{}

var _ = check.Suite(&npyexportSuite{})

func (s *npyexportSuite) TestWritePathMatrixProducesNonEmptyOutput(c *check.C) {
	g := graph.New()
	n1 := g.AddOrUpdateNode(5, 5)
	e := g.AddEdge(0, "X")
	g.SetEdgeTarget(e, n1)
	g.PloidyCsum = []uint32{0, 2}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(2, 64)
	g.PathsByEdgeAndChromCopy.Set(1, int(e), true)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()

	var buf bytes.Buffer
	c.Assert(WritePathMatrix(&buf, g), check.IsNil)
	c.Check(buf.Len() > 0, check.Equals, true)
	// .npy files begin with the magic byte 0x93 followed by "NUMPY".
	c.Check(buf.Bytes()[0], check.Equals, byte(0x93))
	c.Check(string(buf.Bytes()[1:6]), check.Equals, "NUMPY")
}

func (s *npyexportSuite) TestWritePathMatrixHandlesNilMatrix(c *check.C) {
	g := graph.New()
	var buf bytes.Buffer
	c.Assert(WritePathMatrix(&buf, g), check.IsNil)
}
