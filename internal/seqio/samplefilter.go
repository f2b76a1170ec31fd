package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SampleFilter decides which (sample, chromosome copy) pairs participate in
// graph construction; it backs the graph builder delegate's ShouldInclude
// hook. A nil *SampleFilter includes every sample and copy.
type SampleFilter struct {
	// copies, keyed by sample name, restricts which copy indices are
	// included; a nil entry includes every copy of that sample, and a
	// sample with no entry is excluded.
	copies map[string]map[uint32]bool
}

// Include reports whether chromCopyIdx of sampleName should participate.
func (f *SampleFilter) Include(sampleName string, chromCopyIdx uint32) bool {
	if f == nil {
		return true
	}
	copies, ok := f.copies[sampleName]
	if !ok {
		return false
	}
	if copies == nil {
		return true
	}
	return copies[chromCopyIdx]
}

// LoadSampleFilterTSV reads a two-column (or more) TSV with a header row
// naming a sample-name column and an optional copy-index column, following
// the header-lookup-by-name convention used throughout the corpus's TSV
// tooling (e.g. the case/control loader): the first row gives column
// names, every subsequent row names one included sample (and, if the copy
// column is present and non-empty, restricts it to one chromosome copy).
// Samples absent from the file are excluded entirely.
func LoadSampleFilterTSV(r io.Reader, sampleCol, copyCol string) (*SampleFilter, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<16), 1<<24)
	f := &SampleFilter{copies: map[string]map[uint32]bool{}}

	sampleIdx, copyIdx := -1, -1
	headerSeen := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if !headerSeen {
			headerSeen = true
			for i, name := range cols {
				switch name {
				case sampleCol:
					sampleIdx = i
				case copyCol:
					copyIdx = i
				}
			}
			if sampleIdx < 0 {
				return nil, fmt.Errorf("sample filter: no column named %q in header row %q", sampleCol, line)
			}
			continue
		}
		if sampleIdx >= len(cols) {
			continue
		}
		name := cols[sampleIdx]
		if copyCol == "" || copyIdx < 0 || copyIdx >= len(cols) || cols[copyIdx] == "" {
			f.copies[name] = nil
			continue
		}
		n, err := strconv.ParseUint(cols[copyIdx], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("sample filter: line %d: bad copy index %q: %w", lineNo, cols[copyIdx], err)
		}
		if f.copies[name] == nil {
			f.copies[name] = map[uint32]bool{}
		}
		f.copies[name][uint32(n)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sample filter: %w", err)
	}
	return f, nil
}
