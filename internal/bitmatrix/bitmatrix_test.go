package bitmatrix

import (
	"math/rand"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type bitmatrixSuite struct{}

var _ = check.Suite(&bitmatrixSuite{})

func (s *bitmatrixSuite) TestGetSet(c *check.C) {
	m := New(10, 130)
	m.Set(3, 129, true)
	c.Check(m.Get(3, 129), check.Equals, true)
	c.Check(m.Get(3, 128), check.Equals, false)
	m.Set(3, 129, false)
	c.Check(m.Get(3, 129), check.Equals, false)
}

func (s *bitmatrixSuite) TestPopcountRow(c *check.C) {
	m := New(8, 128)
	for col := 0; col < 10; col++ {
		m.Set(0, col*3, true)
	}
	c.Check(m.PopcountRow(0, 0, m.wordsPerRow), check.Equals, 10)
}

func (s *bitmatrixSuite) TestTransposeRoundTrip(c *check.C) {
	rows, cols := 24, 192
	m := New(rows, cols)
	rng := rand.New(rand.NewSource(1))
	type bit struct{ r, c int }
	var set []bit
	for i := 0; i < 400; i++ {
		r, cc := rng.Intn(rows), rng.Intn(cols)
		m.Set(r, cc, true)
		set = append(set, bit{r, cc})
	}
	t := m.Transpose()
	c.Assert(t.Rows(), check.Equals, m.Cols())
	c.Assert(t.Cols() >= m.Rows(), check.Equals, true)
	for _, b := range set {
		c.Check(t.Get(b.c, b.r), check.Equals, true)
	}
	back := t.Transpose()
	for r := 0; r < rows; r++ {
		for cc := 0; cc < cols; cc++ {
			c.Assert(back.Get(r, cc), check.Equals, m.Get(r, cc))
		}
	}
}

func (s *bitmatrixSuite) TestSampleRegistry(c *check.C) {
	r := &SampleRegistry{Names: []string{"a", "b"}, PloidyCsum: []uint32{0, 2, 3}}
	c.Check(r.SamplePloidy(0), check.Equals, uint32(2))
	c.Check(r.SamplePloidy(1), check.Equals, uint32(1))
	c.Check(r.TotalCopies(), check.Equals, uint32(3))
	c.Check(r.ChromCopyIndex(1, 0), check.Equals, uint32(2))
}
