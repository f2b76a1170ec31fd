package graphbuild

import (
	"strings"
	"testing"

	"github.com/tsnorri/vcf2multialign-go/internal/seqio"
	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type graphbuildSuite struct{}

var _ = check.Suite(&graphbuildSuite{})

type fakeDelegate struct {
	overlaps  int
	mismatches int
}

func (d *fakeDelegate) ShouldInclude(string, uint32) bool { return true }
func (d *fakeDelegate) ReportOverlappingAlternative(uint64, uint64, string, string, uint32, int32) {
	d.overlaps++
}
func (d *fakeDelegate) RefColumnMismatch(uint64, uint64, string, string) bool {
	d.mismatches++
	return true
}

const testRef = "ACGTACGTAC" // len 10

const testVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\ts2\n" +
	"chr1\t3\trs1\tG\tA\t.\tPASS\t.\tGT\t0|1\t1|1\n" +
	"chr1\t7\trs2\tG\tC\t.\tPASS\t.\tGT\t1|0\t0|0\n"

func (s *graphbuildSuite) TestBuildSimple(c *check.C) {
	vr, err := seqio.NewVCFReader(strings.NewReader(testVCF))
	c.Assert(err, check.IsNil)
	delegate := &fakeDelegate{}
	g, stats, err := Build(testRef, "chr1", vr, delegate, nil)
	c.Assert(err, check.IsNil)
	c.Check(stats.HandledVariants, check.Equals, uint64(2))
	c.Check(delegate.mismatches, check.Equals, 0)

	// Anchor node + 2 variant nodes + 2 target nodes + sink, possibly
	// coalesced; at minimum the anchor and sink must exist.
	c.Assert(g.NodeCount() >= 2, check.Equals, true)
	c.Check(g.ReferencePositions[0], check.Equals, uint64(0))
	c.Check(g.ReferencePositions[g.NodeCount()-1], check.Equals, uint64(len(testRef)))

	c.Assert(g.EdgeCount(), check.Equals, uint64(2))
	c.Check(g.AltEdgeLabels[0], check.Equals, "A")
	c.Check(g.AltEdgeLabels[1], check.Equals, "C")

	c.Assert(g.PloidyCsum, check.DeepEquals, []uint32{0, 2, 4})
	c.Assert(g.PathsByChromCopyAndEdge, check.NotNil)
	// chrom copy 1 (s1 copy 2) traverses edge 0; chrom copy 2 (s2 copy1) too.
	c.Check(g.PathsByEdgeAndChromCopy.Get(1, 0), check.Equals, true)
	c.Check(g.PathsByEdgeAndChromCopy.Get(2, 0), check.Equals, true)
	c.Check(g.PathsByEdgeAndChromCopy.Get(3, 0), check.Equals, true)
	c.Check(g.PathsByEdgeAndChromCopy.Get(0, 0), check.Equals, false)
}

func (s *graphbuildSuite) TestBuildDetectsRefMismatch(c *check.C) {
	vcf := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ts1\n" +
		"chr1\t3\trs1\tT\tA\t.\tPASS\t.\tGT\t0|1\n"
	vr, err := seqio.NewVCFReader(strings.NewReader(vcf))
	c.Assert(err, check.IsNil)
	delegate := &fakeDelegate{}
	_, _, err = Build(testRef, "chr1", vr, delegate, nil)
	c.Assert(err, check.IsNil)
	c.Check(delegate.mismatches, check.Equals, 1)
}
