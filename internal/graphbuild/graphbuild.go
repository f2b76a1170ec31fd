// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package graphbuild constructs a graph.Graph from a reference sequence and
// a stream of phased VCF records, following the node-coalescing and
// pending-target-bookkeeping algorithm of
// libvcf2multialign/variant_graph.cc's build_variant_graph.
package graphbuild

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"github.com/tsnorri/vcf2multialign-go/internal/seqio"
)

// pathMatrixRowColDivisor keeps both path-matrix dimensions a multiple of
// 64 so the graph's bitmatrix.Matrix.Transpose (8x8 blocked) never needs a
// partial-block special case.
const pathMatrixRowColDivisor = 64
const pathColumnAllocation = 512

// Statistics accumulates counters over a build, mirroring
// build_graph_statistics.
type Statistics struct {
	ChrIDMismatches uint64
	HandledVariants uint64
}

// Delegate receives build-time decisions and diagnostics, mirroring
// build_graph_delegate.
type Delegate interface {
	// ShouldInclude reports whether the given sample/chromosome-copy
	// pair participates in the graph.
	ShouldInclude(sampleName string, chromCopyIdx uint32) bool
	// ReportOverlappingAlternative is called when a sample's ALT path
	// overlaps a previously placed ALT on the same chromosome copy.
	ReportOverlappingAlternative(lineNo uint64, refPos uint64, variantID, sampleName string, chromCopyIdxInput uint32, altAllele int32)
	// RefColumnMismatch is called when a record's REF column disagrees
	// with the reference sequence; returning false stops reading further
	// records, and Build then finishes and returns the graph built from the
	// records read so far, without an error.
	RefColumnMismatch(varIdx uint64, refPos uint64, recordRef, expectedRef string) bool
}

// edgeDestination records a pending ALT-edge target: the aligned-position
// floor its destination node must have, keyed by the reference position at
// which that node will appear.
type edgeDestination struct {
	edgeIndex uint64
	position  uint64
}

type sampleChromIndex struct {
	sampleIdxInput   int
	sampleIdxOutput  int
	chromIdxInput    uint32
	chromIdxOutput   uint32
}

// ProgressFunc is invoked periodically (every 1,000,000 VCF records read,
// records on other chromosomes included, matching import.go's
// progress-logging cadence) with the running record count.
type ProgressFunc func(handled uint64)

// Build reads refSeq and VCF records (restricted to chrID) from reader,
// appending nodes, edges, and path bits to graph.New()'s result.
func Build(refSeq string, chrID string, reader *seqio.VCFReader, delegate Delegate, progress ProgressFunc) (*graph.Graph, *Statistics, error) {
	g := &graph.Graph{
		SampleNames:      append([]string(nil), reader.SampleNames...),
		AltEdgeCountCsum: []uint64{0},
	}
	g.AddNode(0, 0)

	stats := &Statistics{}

	var (
		varIdx                       uint64
		alnPos                       uint64
		prevRefPos                   uint64
		isFirst                      = true
		targetRefPositionsByChrCopy  []uint64
		includedSamples              []sampleChromIndex
		pending                      []pendingTarget
	)

	addTargetNodes := func(refPos uint64) {
		sort.Stable(byPosition(pending))
		i := 0
		for ; i < len(pending); i++ {
			if refPos < pending[i].refPos {
				break
			}
			dist := pending[i].refPos - prevRefPos
			if alnPos+dist > pending[i].dest.position {
				alnPos = alnPos + dist
			} else {
				alnPos = pending[i].dest.position
			}
			nodeIdx := g.AddOrUpdateNode(pending[i].refPos, alnPos)
			g.SetEdgeTarget(pending[i].dest.edgeIndex, nodeIdx)
			prevRefPos = pending[i].refPos
		}
		pending = pending[i:]
	}

	for {
		v, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, err
		}
		varIdx++

		if v.ChromID != chrID {
			stats.ChrIDMismatches++
			maybeProgress(progress, varIdx)
			continue
		}

		if isFirst {
			isFirst = false
			if err := initSamples(g, v, delegate, &includedSamples); err != nil {
				return nil, nil, err
			}
			rows := pathMatrixRowColDivisor * ceilDiv(int(g.TotalChromosomeCopies()), pathMatrixRowColDivisor)
			g.PathsByEdgeAndChromCopy = bitmatrix.New(rows, pathColumnAllocation)
			targetRefPositionsByChrCopy = make([]uint64, g.TotalChromosomeCopies())
		}

		stats.HandledVariants++
		refPos := v.Pos
		if prevRefPos > refPos {
			return nil, nil, fmt.Errorf("variant %d has non-increasing position (%d v. %d)", varIdx, prevRefPos, refPos)
		}

		addTargetNodes(refPos)

		dist := refPos - prevRefPos
		alnPos += dist
		nodeIdx := g.AddOrUpdateNode(refPos, alnPos)

		if refPos+uint64(len(v.Ref)) <= uint64(len(refSeq)) {
			expected := refSeq[refPos : refPos+uint64(len(v.Ref))]
			if v.Ref != expected {
				if !delegate.RefColumnMismatch(varIdx, refPos, v.Ref, expected) {
					break
				}
			}
		}

		edgesByAlt := make([]uint64, len(v.Alts))
		for i := range edgesByAlt {
			edgesByAlt[i] = graph.EdgeMax
		}
		currentEdgeTargets := make([]uint64, 0, len(v.Alts))
		var minEdge, maxEdge uint64
		haveEdge := false
		for altIdx, alt := range v.Alts {
			switch alt.SVType {
			case seqio.AltNone, seqio.AltDel:
				refTargetPos := refPos + uint64(len(v.Ref))
				var edgeIdx uint64
				if alt.SVType == seqio.AltNone {
					edgeIdx = g.AddEdge(nodeIdx, alt.Alt)
					pending = append(pending, pendingTarget{refPos: refTargetPos, dest: edgeDestination{edgeIndex: edgeIdx, position: alnPos + uint64(len(alt.Alt))}})
				} else {
					edgeIdx = g.AddEdge(nodeIdx, "")
					pending = append(pending, pendingTarget{refPos: refTargetPos, dest: edgeDestination{edgeIndex: edgeIdx, position: alnPos}})
				}
				edgesByAlt[altIdx] = edgeIdx
				currentEdgeTargets = append(currentEdgeTargets, refTargetPos)
				if !haveEdge {
					minEdge = edgeIdx
					haveEdge = true
				}
				maxEdge = edgeIdx
			default:
			}
		}

		if ncol := g.PathsByEdgeAndChromCopy.Cols(); haveEdge && uint64(ncol) <= maxEdge {
			multiplier := 4 + ncol/pathColumnAllocation
			g.PathsByEdgeAndChromCopy.Grow(g.PathsByEdgeAndChromCopy.Rows(), ncol+multiplier*pathColumnAllocation)
		}

		for _, sci := range includedSamples {
			if sci.sampleIdxInput >= len(v.Genotypes) {
				continue
			}
			gt := v.Genotypes[sci.sampleIdxInput]
			if int(sci.chromIdxInput) >= len(gt) {
				continue
			}
			sampleGT := gt[sci.chromIdxInput]
			if sampleGT.Alt == 0 || sampleGT.Alt == seqio.NullAllele {
				continue
			}
			altPos := int(sampleGT.Alt) - 1
			if altPos < 0 || altPos >= len(edgesByAlt) {
				continue
			}
			edgeIdx := edgesByAlt[altPos]
			if edgeIdx == graph.EdgeMax {
				continue
			}

			baseIdx := g.PloidyCsum[sci.sampleIdxOutput]
			rowIdx := baseIdx + sci.chromIdxOutput
			if refPos < targetRefPositionsByChrCopy[rowIdx] {
				delegate.ReportOverlappingAlternative(v.LineNo, refPos, v.ID, g.SampleNames[sci.sampleIdxOutput], sci.chromIdxInput, sampleGT.Alt)
			}

			targetPos := currentEdgeTargets[edgeIdx-minEdge]
			targetRefPositionsByChrCopy[rowIdx] = targetPos
			g.PathsByEdgeAndChromCopy.Set(int(rowIdx), int(edgeIdx), true)
		}

		prevRefPos = refPos
		maybeProgress(progress, varIdx)
	}

	sinkRefPos := uint64(len(refSeq))
	addTargetNodes(sinkRefPos)
	dist := sinkRefPos - prevRefPos
	g.AddOrUpdateNode(sinkRefPos, alnPos+dist)

	ncol := pathMatrixRowColDivisor * ceilDiv(int(g.EdgeCount()), pathMatrixRowColDivisor)
	if g.PathsByEdgeAndChromCopy != nil {
		g.PathsByEdgeAndChromCopy.Grow(g.PathsByEdgeAndChromCopy.Rows(), ncol)
		g.PathsByChromCopyAndEdge = g.PathsByEdgeAndChromCopy.Transpose()
	}

	return g, stats, nil
}

type pendingTarget struct {
	refPos uint64
	dest   edgeDestination
}

type byPosition []pendingTarget

func (b byPosition) Len() int           { return len(b) }
func (b byPosition) Less(i, j int) bool { return b[i].refPos < b[j].refPos }
func (b byPosition) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func maybeProgress(progress ProgressFunc, varIdx uint64) {
	if progress != nil && varIdx%1000000 == 0 {
		progress(varIdx)
	}
}

// initSamples computes which (sample, chromosome copy) pairs are included,
// the resulting ploidy_csum, and the filtered sample-name list, from the
// first handled variant's genotypes -- mirroring the is_first block of
// build_variant_graph.
func initSamples(g *graph.Graph, v *seqio.Variant, delegate Delegate, included *[]sampleChromIndex) error {
	names := g.SampleNames
	g.PloidyCsum = make([]uint32, 1+len(names))
	var keptNames []string
	sampleIdxOutput := 0
	for sampleIdxInput, name := range names {
		var gt []seqio.Genotype
		if sampleIdxInput < len(v.Genotypes) {
			gt = v.Genotypes[sampleIdxInput]
		}
		includedCount := uint32(0)
		for chromCopyIdx := 0; chromCopyIdx < len(gt); chromCopyIdx++ {
			if delegate.ShouldInclude(name, uint32(chromCopyIdx)) {
				*included = append(*included, sampleChromIndex{
					sampleIdxInput:  sampleIdxInput,
					sampleIdxOutput: sampleIdxOutput,
					chromIdxInput:   uint32(chromCopyIdx),
					chromIdxOutput:  includedCount,
				})
				includedCount++
			}
		}
		if includedCount > 0 {
			g.PloidyCsum[1+sampleIdxOutput] = g.PloidyCsum[sampleIdxOutput] + includedCount
			keptNames = append(keptNames, name)
			sampleIdxOutput++
		}
	}
	g.PloidyCsum = g.PloidyCsum[:1+sampleIdxOutput]
	g.SampleNames = keptNames
	return nil
}
