// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package founder implements the greedy founder-sequence matcher, grounded
// on libvcf2multialign/founder_sequence_greedy_output.cc's find_matchings:
// it re-runs the pBWT engine (package pbwt) continuously across the whole
// graph, snapshotting equivalence-class representatives at every chosen
// cut position, and greedily assigns each block's equivalence classes to a
// fixed number of founder columns so that matching paths on either side of
// a cut land in the same founder slot when possible.
package founder

import (
	"sort"

	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"github.com/tsnorri/vcf2multialign-go/internal/pbwt"
)

// PloidyMax is the "unassigned" sentinel, matching variant_graph::PLOIDY_MAX.
const PloidyMax = graph.PloidyMax

// joinedPathEqClass pairs a left-block representative with a right-block
// representative and counts how many chromosome copies share that pairing.
type joinedPathEqClass struct {
	lhsRep, rhsRep uint32
	size           uint32
}

// Assignment is the founder matrix: Assignment[cutIdx][founderIdx] is the
// chromosome-copy representative occupying that founder column at the
// cutIdx-th cut position (cut positions 0..len(cutPositions)-2; the final,
// sink, cut position has no row since no block starts there).
type Assignment [][]uint32

// FindMatchings runs the matcher over g, given the chosen cutPositions
// (ascending, cutPositions[0] == 0, last entry the sink node) and a fixed
// founderCount of output founder sequences. keepRefEdges controls whether
// pairs whose both representatives are the block's all-reference path are
// kept (the REF-edge-pair dropping option). It reports false if
// fewer than two cut positions were supplied or the graph has no
// chromosome copies.
func FindMatchings(g *graph.Graph, cutPositions []uint64, founderCount uint32, keepRefEdges bool) (Assignment, bool) {
	if len(cutPositions) < 2 || g.TotalChromosomeCopies() == 0 {
		return nil, false
	}

	totalCopies := int(g.TotalChromosomeCopies())
	numRows := len(cutPositions) - 1
	assigned := make(Assignment, numRows)
	for i := range assigned {
		row := make([]uint32, founderCount)
		for j := range row {
			row[j] = PloidyMax
		}
		assigned[i] = row
	}

	assignmentsByEqClass := &ploidyMultimap{}
	reservedAssignments := make([]bool, totalCopies)
	var arbitrarilyConnectedRHS []uint32

	lhsEqClasses := make([]uint32, totalCopies)
	rhsEqClasses := make([]uint32, totalCopies)
	for i := range lhsEqClasses {
		lhsEqClasses[i] = PloidyMax
		rhsEqClasses[i] = PloidyMax
	}
	var lhsDistinctEqClasses, rhsDistinctEqClasses uint32
	var joinedClasses []joinedPathEqClass
	lhsFirstPathIsRef, rhsFirstPathIsRef := true, true
	var lhsFirstPathEqClass, rhsFirstPathEqClass uint32

	ctx := pbwt.New(totalCopies)

	cutPosIdx := 0   // index into cutPositions of the last cut passed; the next is cutPositions[cutPosIdx+1]
	var edgeIdx uint64
	var prevCutEdgeIdx, cutPairEdgeIdx uint64

	nextCutPos := cutPositions[1]
	blockCount := 0 // number of cut boundaries processed so far (0-based row cursor for the general case)

	nodeCount := g.NodeCount()
	for node := uint64(0); node < nodeCount; node++ {
		if node == nextCutPos {
			lhsEqClasses, rhsEqClasses = rhsEqClasses, lhsEqClasses
			for i := range rhsEqClasses {
				rhsEqClasses[i] = PloidyMax
			}
			lhsDistinctEqClasses = rhsDistinctEqClasses
			lhsFirstPathEqClass = rhsFirstPathEqClass
			rhsDistinctEqClasses = 0
			rhsFirstPathEqClass = ctx.Permutation()[0]

			rep := uint32(PloidyMax)
			joinedClasses = joinedClasses[:0]
			perm, div := ctx.Permutation(), ctx.Divergence()
			for i, aa := range perm {
				dd := div[i]

				// A sentinel divergence means aa has not diverged from its
				// predecessor in permutation order, so it always continues
				// the currently open representative; only a real divergence
				// value past prevCutEdgeIdx (or the very first row) starts a
				// fresh one.
				if i == 0 || (dd != pbwt.Sentinel && prevCutEdgeIdx < dd) {
					rep = aa
					rhsDistinctEqClasses++
				}
				rhsEqClasses[aa] = rep

				if blockCount > 0 {
					if i == 0 || (dd != pbwt.Sentinel && cutPairEdgeIdx < dd) {
						joinedClasses = append(joinedClasses, joinedPathEqClass{lhsRep: lhsEqClasses[aa], rhsRep: rep})
					}
					joinedClasses[len(joinedClasses)-1].size++
				}
			}

			if blockCount > 0 {
				sort.Slice(joinedClasses, func(i, j int) bool { return joinedClasses[i].size < joinedClasses[j].size })

				if !keepRefEdges && lhsFirstPathIsRef && rhsFirstPathIsRef {
					filtered := joinedClasses[:0]
					for _, eq := range joinedClasses {
						if eq.lhsRep == lhsFirstPathEqClass && eq.rhsRep == rhsFirstPathEqClass {
							continue
						}
						filtered = append(filtered, eq)
					}
					joinedClasses = filtered
				}

				if blockCount == 1 {
					initialAssignment(joinedClasses, founderCount, lhsDistinctEqClasses, reservedAssignments, assignmentsByEqClass, assigned[0])
				}

				subsequentAssignment(joinedClasses, founderCount, rhsDistinctEqClasses, reservedAssignments, &arbitrarilyConnectedRHS, assignmentsByEqClass, assigned[blockCount])
			}

			blockCount++
			cutPosIdx++
			if cutPosIdx < len(cutPositions)-1 {
				nextCutPos = cutPositions[cutPosIdx+1]
			} else {
				nextCutPos = ^uint64(0)
			}
			cutPairEdgeIdx = prevCutEdgeIdx
			prevCutEdgeIdx = edgeIdx

			lhsFirstPathIsRef = rhsFirstPathIsRef
			rhsFirstPathIsRef = true
		}

		lo, hi := g.EdgeRangeForNode(node)
		for e := lo; e < hi; e++ {
			column := g.PathsByChromCopyAndEdge.Row(int(e))
			ctx.Step(func(chromCopy int) bool {
				word := column[chromCopy/64]
				return word&(1<<uint(chromCopy%64)) != 0
			}, edgeIdx)

			front := int(ctx.Permutation()[0])
			if g.PathsByEdgeAndChromCopy.Get(front, int(e)) {
				rhsFirstPathIsRef = false
			}
			edgeIdx++
		}
	}

	return assigned, true
}

// initialAssignment handles the very first block (cut_pos_idx == 1 in the
// original): it reserves one founder slot per distinct left-hand
// equivalence class (largest classes first), then hands any remaining
// founders to the largest classes again, repeating until every founder
// column has an assignment.
func initialAssignment(joinedClasses []joinedPathEqClass, founderCount, lhsDistinctEqClasses uint32, reservedAssignments []bool, assignmentsByEqClass *ploidyMultimap, row []uint32) {
	remainingFounders := founderCount
	remainingReserved := lhsDistinctEqClasses
	if remainingReserved > remainingFounders {
		remainingReserved = remainingFounders
	}
	remainingFounders -= remainingReserved

	founderIdx := uint32(0)
	doAssign := func(eq joinedPathEqClass) {
		assignmentsByEqClass.emplace(eq.lhsRep, founderIdx)
		row[founderIdx] = eq.lhsRep
		founderIdx++
	}

	for i := len(joinedClasses) - 1; i >= 0; i-- {
		eq := joinedClasses[i]
		if reservedAssignments[eq.lhsRep] {
			if remainingFounders > 0 {
				remainingFounders--
				doAssign(eq)
			}
		} else if remainingReserved > 0 {
			remainingReserved--
			reservedAssignments[eq.lhsRep] = true
			doAssign(eq)
		}
	}

	for remainingFounders > 0 {
		for i := len(joinedClasses) - 1; i >= 0 && remainingFounders > 0; i-- {
			remainingFounders--
			doAssign(joinedClasses[i])
		}
	}

	for i := range reservedAssignments {
		reservedAssignments[i] = false
	}
}

// subsequentAssignment handles every block after the first: it tries to
// connect each right-hand equivalence class to whichever founder column
// currently holds a matching left-hand assignment (reserved-slot pass,
// then unreserved-but-available pass), then arbitrarily connects whatever
// is left over, and finally rebuilds assignmentsByEqClass to reflect the
// row just written.
func subsequentAssignment(joinedClasses []joinedPathEqClass, founderCount, rhsDistinctEqClasses uint32, reservedAssignments []bool, arbitrarilyConnectedRHS *[]uint32, assignmentsByEqClass *ploidyMultimap, row []uint32) {
	for i := range reservedAssignments {
		reservedAssignments[i] = false
	}
	*arbitrarilyConnectedRHS = (*arbitrarilyConnectedRHS)[:0]

	remainingFounders := founderCount
	remainingReserved := rhsDistinctEqClasses
	if remainingReserved > remainingFounders {
		remainingReserved = remainingFounders
	}
	remainingFounders -= remainingReserved

	tryAssign := func(eq joinedPathEqClass) bool {
		founderIdx, ok := assignmentsByEqClass.find(eq.lhsRep)
		if !ok {
			return false
		}
		assignmentsByEqClass.eraseKey(eq.lhsRep)
		row[founderIdx] = eq.rhsRep
		return true
	}
	assignArbitrary := func(rhsRep uint32) {
		p := assignmentsByEqClass.popBegin()
		row[p.value] = rhsRep
	}

	isFirst, didAssign := true, false
pass:
	for {
		for i := len(joinedClasses) - 1; i >= 0; i-- {
			eq := joinedClasses[i]
			if reservedAssignments[eq.rhsRep] {
				if remainingFounders > 0 {
					if tryAssign(eq) {
						didAssign = true
						remainingFounders--
					}
				} else if !isFirst {
					break pass
				}
			} else if remainingReserved > 0 {
				remainingReserved--
				if tryAssign(eq) {
					reservedAssignments[eq.rhsRep] = true
				} else {
					*arbitrarilyConnectedRHS = append(*arbitrarilyConnectedRHS, eq.rhsRep)
				}
			}
		}
		if remainingFounders == 0 {
			break
		}
		if isFirst {
			isFirst = false
			continue
		}
		if !didAssign {
			break
		}
	}

	for _, rhsRep := range *arbitrarilyConnectedRHS {
		if !reservedAssignments[rhsRep] {
			assignArbitrary(rhsRep)
			reservedAssignments[rhsRep] = true
		}
	}

	for !assignmentsByEqClass.empty() {
		for i := len(joinedClasses) - 1; i >= 0; i-- {
			if assignmentsByEqClass.empty() {
				break
			}
			assignArbitrary(joinedClasses[i].rhsRep)
		}
	}

	assignmentsByEqClass.clear()
	for idx, rep := range row {
		assignmentsByEqClass.emplace(rep, uint32(idx))
	}
}
