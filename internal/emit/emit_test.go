package emit

import (
	"bytes"
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/founder"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type emitSuite struct{}

var _ = check.Suite(&emitSuite{})

// buildSubstitutionGraph builds a single-SNP scenario: reference ACGTACGT
// with one ALT edge "G" from ref_pos 3 to ref_pos 4, taken by chromosome
// copy 1 only.
func buildSubstitutionGraph() *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(3, 3)
	n2 := g.AddOrUpdateNode(4, 4)
	e := g.AddEdge(n1, "G")
	g.SetEdgeTarget(e, n2)
	g.AddOrUpdateNode(8, 8)

	g.PloidyCsum = []uint32{0, 2}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(2, 64)
	g.PathsByEdgeAndChromCopy.Set(1, int(e), true)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *emitSuite) TestEmitHaplotypeRefAndAlt(c *check.C) {
	g := buildSubstitutionGraph()
	refSeq := "ACGTACGT"

	var refBuf, altBuf bytes.Buffer
	c.Assert(EmitHaplotype(&refBuf, g, refSeq, 0, true), check.IsNil)
	c.Assert(EmitHaplotype(&altBuf, g, refSeq, 1, true), check.IsNil)

	c.Check(refBuf.String(), check.Equals, "ACGTACGT")
	c.Check(altBuf.String(), check.Equals, "ACGGACGT")
}

// buildInsertionGraph builds an insertion scenario: reference ACGT, REF=C
// ALT=CAA at 0-based position 1, raising the aligned length to 6.
func buildInsertionGraph() *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(1, 1)
	n2 := g.AddOrUpdateNode(2, 4)
	e := g.AddEdge(n1, "CAA")
	g.SetEdgeTarget(e, n2)
	g.AddOrUpdateNode(4, 6)

	g.PloidyCsum = []uint32{0, 2}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(2, 64)
	g.PathsByEdgeAndChromCopy.Set(1, int(e), true)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *emitSuite) TestEmitHaplotypeInsertionPadsGaps(c *check.C) {
	g := buildInsertionGraph()
	refSeq := "ACGT"

	var refBuf, altBuf bytes.Buffer
	c.Assert(EmitHaplotype(&refBuf, g, refSeq, 0, true), check.IsNil)
	c.Assert(EmitHaplotype(&altBuf, g, refSeq, 1, true), check.IsNil)

	c.Check(refBuf.String(), check.Equals, "AC--GT")
	c.Check(altBuf.String(), check.Equals, "ACAAGT")
}

func (s *emitSuite) TestEmitHaplotypeUnalignedSuppressesGaps(c *check.C) {
	g := buildInsertionGraph()
	refSeq := "ACGT"

	var refBuf bytes.Buffer
	c.Assert(EmitHaplotype(&refBuf, g, refSeq, 0, false), check.IsNil)
	c.Check(refBuf.String(), check.Equals, "ACGT")
}

// buildSubstitutionGraphAltOnCopyZero is buildSubstitutionGraph with the
// ALT edge assigned to chromosome copy 0 instead of 1, so a reference-track
// emitter that mistakenly reuses copy 0's path would pick it up.
func buildSubstitutionGraphAltOnCopyZero() *graph.Graph {
	g := graph.New()
	n1 := g.AddOrUpdateNode(3, 3)
	n2 := g.AddOrUpdateNode(4, 4)
	e := g.AddEdge(n1, "G")
	g.SetEdgeTarget(e, n2)
	g.AddOrUpdateNode(8, 8)

	g.PloidyCsum = []uint32{0, 2}
	g.PathsByEdgeAndChromCopy = bitmatrix.New(2, 64)
	g.PathsByEdgeAndChromCopy.Set(0, int(e), true)
	g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	return g
}

func (s *emitSuite) TestEmitReferenceIgnoresChromosomeCopyZerosAlt(c *check.C) {
	g := buildSubstitutionGraphAltOnCopyZero()
	refSeq := "ACGTACGT"

	var buf bytes.Buffer
	c.Assert(EmitReference(&buf, g, refSeq, true), check.IsNil)
	c.Check(buf.String(), check.Equals, "ACGTACGT")
}

func (s *emitSuite) TestEmitFounderSwitchesAtCutPosition(c *check.C) {
	g := buildSubstitutionGraph()
	refSeq := "ACGTACGT"

	cutPositions := []uint64{0, 1, 3}
	assignment := founder.Assignment{{0}, {1}}

	var buf bytes.Buffer
	c.Assert(EmitFounder(&buf, g, refSeq, 0, cutPositions, assignment, true), check.IsNil)
	c.Check(buf.String(), check.Equals, "ACGGACGT")
}
