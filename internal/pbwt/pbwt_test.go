package pbwt

import (
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type pbwtSuite struct{}

var _ = check.Suite(&pbwtSuite{})

func (s *pbwtSuite) TestInitialState(c *check.C) {
	ctx := New(4)
	c.Assert(ctx.Permutation(), check.DeepEquals, []uint32{0, 1, 2, 3})
	c.Check(ctx.SentinelCount(), check.Equals, 4)
	c.Check(ctx.DivergenceValueCountsReversed(), check.HasLen, 0)
}

func (s *pbwtSuite) TestStepSplitsByBit(c *check.C) {
	ctx := New(4)
	// Column 0: copies 1 and 3 carry the ALT.
	bits := map[int]bool{0: false, 1: true, 2: false, 3: true}
	ctx.Step(func(row int) bool { return bits[row] }, 0)

	// Stable partition: zeros (0, 2) first, then ones (1, 3).
	c.Assert(ctx.Permutation(), check.DeepEquals, []uint32{0, 2, 1, 3})
	c.Check(ctx.PermIndex(0), check.Equals, 0)
	c.Check(ctx.PermIndex(2), check.Equals, 1)
	c.Check(ctx.PermIndex(1), check.Equals, 2)
	c.Check(ctx.PermIndex(3), check.Equals, 3)

	counts := ctx.DivergenceValueCountsReversed()
	total := 0
	for _, dc := range counts {
		total += dc.Count
	}
	c.Check(total+ctx.SentinelCount(), check.Equals, 4)
}

func (s *pbwtSuite) TestStepAllSameBitKeepsOneClass(c *check.C) {
	ctx := New(3)
	ctx.Step(func(int) bool { return false }, 0)
	c.Check(ctx.SentinelCount(), check.Equals, 2)
	counts := ctx.DivergenceValueCountsReversed()
	c.Assert(counts, check.HasLen, 1)
	c.Check(counts[0].Value, check.Equals, uint64(1))
	c.Check(counts[0].Count, check.Equals, 1)
}
