// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package emit walks the variant graph from node 0 to the sink, choosing
// the lowest-index ALT edge the active chromosome copy traverses at each
// node (or falling through to the implicit reference edge otherwise), and
// writes the resulting aligned (gap-padded) or unaligned byte stream.
package emit

import (
	"fmt"
	"io"

	"github.com/tsnorri/vcf2multialign-go/internal/founder"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

const gapByte = '-'

// chromCopyAt resolves which chromosome copy is "active" at node, so that
// founder mode can swap representatives at a cut boundary while haplotype
// mode just returns a constant.
type chromCopyAt func(node uint64) int

// EmitHaplotype writes the sequence for chromosome copy c to w.
func EmitHaplotype(w io.Writer, g *graph.Graph, refSeq string, c int, aligned bool) error {
	return walk(w, g, refSeq, aligned, func(uint64) int { return c })
}

// EmitReference writes the unmodified reference sequence to w: it walks
// only the implicit reference edge at every node and never consults the
// path matrix, so it cannot pick up any sample's ALT allele regardless of
// how chromosome copies are numbered.
func EmitReference(w io.Writer, g *graph.Graph, refSeq string, aligned bool) error {
	nodeCount := g.NodeCount()
	for node := uint64(0); node < nodeCount-1; node++ {
		dst := node + 1
		label := refSeq[g.ReferencePositions[node]:g.ReferencePositions[dst]]
		if err := writeSpan(w, label, g.AlignedLength(node, dst), aligned); err != nil {
			return err
		}
	}
	return nil
}

// EmitFounder writes the founderIdx-th founder sequence to w, switching the
// active chromosome-copy representative at each cut position per
// assignment: the chromosome-copy index for the current block is updated
// at the node equal to the next cut position before emitting that block.
func EmitFounder(w io.Writer, g *graph.Graph, refSeq string, founderIdx int, cutPositions []uint64, assignment founder.Assignment, aligned bool) error {
	if len(cutPositions) == 0 || len(assignment) == 0 {
		return fmt.Errorf("emit: founder mode requires cut positions and an assignment")
	}
	cutIdx := 0
	current := uint32(assignment[0][founderIdx])
	resolver := func(node uint64) int {
		for cutIdx+1 < len(cutPositions) && node == cutPositions[cutIdx+1] {
			cutIdx++
			if cutIdx < len(assignment) {
				current = assignment[cutIdx][founderIdx]
			}
		}
		return int(current)
	}
	return walk(w, g, refSeq, aligned, resolver)
}

// walk performs the shared traversal: at every node, it looks for the
// lowest-index outgoing ALT edge that resolver's current chromosome copy
// traverses; absent that, it falls through to the implicit reference edge
// to the next node.
func walk(w io.Writer, g *graph.Graph, refSeq string, aligned bool, resolve chromCopyAt) error {
	nodeCount := g.NodeCount()
	for node := uint64(0); node < nodeCount-1; {
		c := resolve(node)
		lo, hi := g.EdgeRangeForNode(node)

		var chosen uint64 = graph.EdgeMax
		for e := lo; e < hi; e++ {
			if g.PathsByEdgeAndChromCopy.Get(c, int(e)) {
				chosen = e
				break
			}
		}

		if chosen == graph.EdgeMax {
			dst := node + 1
			label := refSeq[g.ReferencePositions[node]:g.ReferencePositions[dst]]
			if err := writeSpan(w, label, g.AlignedLength(node, dst), aligned); err != nil {
				return err
			}
			node = dst
			continue
		}

		dst := g.AltEdgeTargets[chosen]
		label := g.AltEdgeLabels[chosen]
		if err := writeSpan(w, label, g.AlignedLength(node, dst), aligned); err != nil {
			return err
		}
		node = dst
	}
	return nil
}

func writeSpan(w io.Writer, label string, alignedLen uint64, aligned bool) error {
	if _, err := io.WriteString(w, label); err != nil {
		return err
	}
	if !aligned {
		return nil
	}
	pad := int(alignedLen) - len(label)
	if pad <= 0 {
		return nil
	}
	gap := make([]byte, pad)
	for i := range gap {
		gap[i] = gapByte
	}
	_, err := w.Write(gap)
	return err
}

// WriteA2MHeader writes an A2M-style ">name\n" header line.
func WriteA2MHeader(w io.Writer, name string) error {
	_, err := fmt.Fprintf(w, ">%s\n", name)
	return err
}
