// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package graph implements the variant graph data model: a directed acyclic
// graph whose nodes are reference positions and whose edges carry either
// implicit reference substrings or explicit ALT labels, annotated with a
// per-chromosome-copy path matrix.
package graph

import "github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"

const (
	// NodeMax is the sentinel "no node" value.
	NodeMax = ^uint64(0)
	// EdgeMax is the sentinel "no edge" value.
	EdgeMax = ^uint64(0)
	// PloidyMax is the sentinel "no chromosome copy" value.
	PloidyMax = ^uint32(0)
)

// Graph is the struct-of-arrays variant graph. All fields are exported
// because the builder (package graphbuild), optimizer (cutpos), matcher
// (founder) and emitter (emit) packages all need direct, allocation-free
// access to them; once built, a Graph is treated as read-only by every
// consumer.
type Graph struct {
	ReferencePositions []uint64 // node -> 0-based reference position
	AlignedPositions    []uint64 // node -> 0-based aligned (MSA) position

	AltEdgeTargets  []uint64 // edge -> destination node
	AltEdgeCountCsum []uint64 // node (0..N) -> cumulative ALT-out-edge count
	AltEdgeLabels   []string // edge -> ALT label (empty for a deletion)

	// PathsByEdgeAndChromCopy has chromosome copies on rows, edges on
	// columns: row c, col e is set iff chromosome copy c traverses ALT
	// edge e (the field is named for what it records, not its row/column
	// order). PathsByChromCopyAndEdge is its transpose (edges on rows,
	// chromosome copies on columns), so that either a per-chromosome-copy
	// row or a per-edge row is available directly, without a dedicated
	// column-view type.
	PathsByEdgeAndChromCopy *bitmatrix.Matrix
	PathsByChromCopyAndEdge *bitmatrix.Matrix

	SampleNames []string
	PloidyCsum  []uint32
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() uint64 { return uint64(len(g.ReferencePositions)) }

// EdgeCount returns the number of ALT edges in the graph.
func (g *Graph) EdgeCount() uint64 { return uint64(len(g.AltEdgeTargets)) }

// EdgeRangeForNode returns the half-open ALT-edge range [lo, hi) leaving
// node n.
func (g *Graph) EdgeRangeForNode(n uint64) (lo, hi uint64) {
	return g.AltEdgeCountCsum[n], g.AltEdgeCountCsum[n+1]
}

// SamplePloidy returns the number of chromosome copies owned by sample s.
func (g *Graph) SamplePloidy(s int) uint32 { return g.PloidyCsum[s+1] - g.PloidyCsum[s] }

// TotalChromosomeCopies returns the total number of chromosome copies
// across all included samples.
func (g *Graph) TotalChromosomeCopies() uint32 {
	if len(g.PloidyCsum) == 0 {
		return 0
	}
	return g.PloidyCsum[len(g.PloidyCsum)-1]
}

// AlignedLength returns aligned_pos(rhs) - aligned_pos(lhs).
func (g *Graph) AlignedLength(lhs, rhs uint64) uint64 {
	return g.AlignedPositions[rhs] - g.AlignedPositions[lhs]
}

// New returns an empty graph with node 0 anchored at ref_pos=0,
// aligned_pos=0.
func New() *Graph {
	g := &Graph{
		AltEdgeCountCsum: []uint64{0},
	}
	g.AddNode(0, 0)
	return g
}

// AddNode appends a new node; it is the caller's responsibility to ensure
// ref_pos/aligned_pos stay non-decreasing.
func (g *Graph) AddNode(refPos, alignedPos uint64) uint64 {
	g.ReferencePositions = append(g.ReferencePositions, refPos)
	g.AlignedPositions = append(g.AlignedPositions, alignedPos)
	g.AltEdgeCountCsum = append(g.AltEdgeCountCsum, g.AltEdgeCountCsum[len(g.AltEdgeCountCsum)-1])
	return uint64(len(g.ReferencePositions) - 1)
}

// AddOrUpdateNode appends a node at refPos, unless the last node already
// has that ref_pos, in which case it raises the last node's aligned_pos to
// max(existing, alignedPos) and returns it unchanged otherwise. This is the
// node-coalescing rule that keeps adjacent variants sharing a reference
// position from splitting the graph.
func (g *Graph) AddOrUpdateNode(refPos, alignedPos uint64) uint64 {
	last := len(g.ReferencePositions) - 1
	if g.ReferencePositions[last] < refPos {
		return g.AddNode(refPos, alignedPos)
	}
	if g.AlignedPositions[last] < alignedPos {
		g.AlignedPositions[last] = alignedPos
	}
	return uint64(last)
}

// AddEdge appends a new ALT edge leaving srcNode with the given label. The
// destination is left as EdgeMax's worth of zero value (0) and must be
// filled in later via SetEdgeTarget once the target node is materialized.
func (g *Graph) AddEdge(srcNode uint64, label string) uint64 {
	for i := srcNode + 1; i < uint64(len(g.AltEdgeCountCsum)); i++ {
		g.AltEdgeCountCsum[i]++
	}
	g.AltEdgeTargets = append(g.AltEdgeTargets, 0)
	g.AltEdgeLabels = append(g.AltEdgeLabels, label)
	return uint64(len(g.AltEdgeTargets) - 1)
}

// SetEdgeTarget backfills the destination node of edge e.
func (g *Graph) SetEdgeTarget(e, dstNode uint64) {
	g.AltEdgeTargets[e] = dstNode
}
