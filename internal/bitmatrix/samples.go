package bitmatrix

// SampleRegistry maps (sample, chromosome copy) pairs onto a single linear
// chromosome-copy index, via a cumulative ploidy sum.
// PloidyCsum[s+1]-PloidyCsum[s] is sample s's ploidy (number of included
// chromosome copies); PloidyCsum[0] is always 0.
type SampleRegistry struct {
	Names      []string
	PloidyCsum []uint32
}

// SamplePloidy returns the number of included chromosome copies for sample
// s.
func (r *SampleRegistry) SamplePloidy(s int) uint32 {
	return r.PloidyCsum[s+1] - r.PloidyCsum[s]
}

// TotalCopies returns the total number of chromosome copies across all
// included samples.
func (r *SampleRegistry) TotalCopies() uint32 {
	if len(r.PloidyCsum) == 0 {
		return 0
	}
	return r.PloidyCsum[len(r.PloidyCsum)-1]
}

// ChromCopyIndex returns the linear chromosome-copy index for the given
// sample and within-sample copy offset.
func (r *SampleRegistry) ChromCopyIndex(sample int, copyOffset uint32) uint32 {
	return r.PloidyCsum[sample] + copyOffset
}
