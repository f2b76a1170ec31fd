// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package cutpos implements the cut-position optimizer, grounded on
// libvcf2multialign/find_cut_positions.cc: a dynamic program over candidate
// cut nodes (bridge endpoints) that uses the pBWT engine (package pbwt) to
// score the number of path-equivalence classes a cut would create, subject
// to a minimum aligned-length constraint, then picks the cut sequence
// minimizing the maximum block height.
package cutpos

import (
	"math"
	"sort"

	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"github.com/tsnorri/vcf2multialign-go/internal/pbwt"
)

// ScoreMax is returned by Find when no cut sequence could be found (fewer
// than two candidate cut positions exist in the graph).
const ScoreMax = math.MaxUint32

// Delegate is notified as nodes are processed, mirroring
// process_graph_delegate's handled_node hook (used for progress logging).
type Delegate interface {
	HandledNode(node uint64)
}

type cutPosition struct {
	edge     uint64 // first edge in the node by which to cut
	prevEdge uint64 // graph.EdgeMax if there is no predecessor
	node     uint64
	score    uint32
}

func (cp *cutPosition) updateIfNeeded(eqClassCount uint32, prev cutPosition) {
	candidate := eqClassCount
	if prev.score > candidate {
		candidate = prev.score
	}
	if candidate < cp.score {
		cp.score = candidate
		cp.prevEdge = prev.edge
	}
}

// Find runs the dynamic program over graph g, requiring every retained
// block to span at least minDistance aligned positions, and returns the
// chosen cut node list (ascending, always
// ending at the sink node) together with the resulting maximum block
// height. If fewer than two cut candidates exist, it returns (nil,
// ScoreMax).
func Find(g *graph.Graph, minDistance uint64, delegate Delegate) ([]uint64, uint32) {
	pathCount := int(g.TotalChromosomeCopies())

	var rightmostSeenAltEdgeTarget uint64
	var edgeIdx uint64
	prevCutPosID := graph.EdgeMax

	ctx := pbwt.New(pathCount)

	cutPositions := []cutPosition{{edge: 0, prevEdge: graph.EdgeMax, node: 0, score: 0}}

	nodeCount := g.NodeCount()
	for node := uint64(0); node < nodeCount; node++ {
		if rightmostSeenAltEdgeTarget <= node {
			if prevCutPosID != edgeIdx {
				current := cutPosition{edge: edgeIdx, prevEdge: graph.EdgeMax, node: node, score: uint32(pathCount)}
				prevCutPosID = edgeIdx

				cutPosEnd := len(cutPositions)
				eqClassCount := uint32(1) // the always-present sentinel class
				for _, dc := range ctx.DivergenceValueCountsReversed() {
					idx := sort.Search(cutPosEnd, func(i int) bool { return cutPositions[i].edge >= dc.Value })
					if idx != cutPosEnd {
						cutPosEnd = idx
						if minDistance <= g.AlignedLength(cutPositions[idx].node, node) {
							current.updateIfNeeded(eqClassCount, cutPositions[idx])
						}
					}
					eqClassCount += uint32(dc.Count)
				}

				if cutPosEnd > 0 {
					current.updateIfNeeded(eqClassCount, cutPositions[cutPosEnd-1])
				}

				cutPositions = append(cutPositions, current)
			}
		}

		lo, hi := g.EdgeRangeForNode(node)
		for e := lo; e < hi; e++ {
			column := g.PathsByChromCopyAndEdge.Row(int(e))
			ctx.Step(func(chromCopy int) bool {
				word := column[chromCopy/64]
				return word&(1<<uint(chromCopy%64)) != 0
			}, edgeIdx)
			edgeIdx++
			if dst := g.AltEdgeTargets[e]; dst > rightmostSeenAltEdgeTarget {
				rightmostSeenAltEdgeTarget = dst
			}
		}

		if delegate != nil {
			delegate.HandledNode(node)
		}
	}

	if len(cutPositions) <= 1 {
		return nil, ScoreMax
	}

	last := cutPositions[len(cutPositions)-1]
	score := last.score
	var outReversed []uint64
	it := last
	for {
		outReversed = append(outReversed, it.node)
		if it.prevEdge == graph.EdgeMax {
			break
		}
		idx := sort.Search(len(cutPositions), func(i int) bool { return cutPositions[i].edge >= it.prevEdge })
		it = cutPositions[idx]
	}

	out := make([]uint64, len(outReversed))
	for i, v := range outReversed {
		out[len(outReversed)-1-i] = v
	}
	if out[len(out)-1] != nodeCount-1 {
		out[len(out)-1] = nodeCount - 1
	}
	return out, score
}

// BlockEquivalenceClassCounts re-runs the pBWT pass fixed to cutPositions
// (as returned by Find, or supplied directly) and reports, for each block
// between consecutive cut positions, the number of distinct path
// equivalence classes observed in that block -- the same per-block height
// Find optimizes over, computed here for one fixed cut sequence rather than
// searched for. It mirrors founder.FindMatchings's rhsDistinctEqClasses
// bookkeeping: a permutation row starts a fresh equivalence class when its
// divergence value is the sentinel (never diverged) or falls after the
// previous cut boundary, and continues its predecessor's class otherwise.
func BlockEquivalenceClassCounts(g *graph.Graph, cutPositions []uint64) []int {
	if len(cutPositions) < 2 {
		return nil
	}
	pathCount := int(g.TotalChromosomeCopies())
	if pathCount == 0 {
		return nil
	}

	ctx := pbwt.New(pathCount)
	counts := make([]int, 0, len(cutPositions)-1)

	var edgeIdx uint64
	var prevCutEdgeIdx uint64
	cutIdx := 1

	nodeCount := g.NodeCount()
	for node := uint64(0); node < nodeCount; node++ {
		if cutIdx < len(cutPositions) && node == cutPositions[cutIdx] {
			distinct := 0
			div := ctx.Divergence()
			for i, dd := range div {
				if i == 0 || (dd != pbwt.Sentinel && prevCutEdgeIdx < dd) {
					distinct++
				}
			}
			counts = append(counts, distinct)
			prevCutEdgeIdx = edgeIdx
			cutIdx++
		}

		lo, hi := g.EdgeRangeForNode(node)
		for e := lo; e < hi; e++ {
			column := g.PathsByChromCopyAndEdge.Row(int(e))
			ctx.Step(func(chromCopy int) bool {
				word := column[chromCopy/64]
				return word&(1<<uint(chromCopy%64)) != 0
			}, edgeIdx)
			edgeIdx++
		}
	}

	return counts
}
