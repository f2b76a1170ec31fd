// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"fmt"
	"io"

	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

// writeGraphviz renders g as a minimal Graphviz "dot" digraph: one node per
// graph node labeled with its reference position, an edge per implicit
// reference step, and one edge per ALT labeled with its sequence. This is
// the minimal real rendering needed to inspect a graph by eye, not a fully
// styled Graphviz exporter.
func writeGraphviz(w io.Writer, g *graph.Graph) error {
	if _, err := fmt.Fprintln(w, "digraph variant_graph {"); err != nil {
		return err
	}
	nodeCount := g.NodeCount()
	for n := uint64(0); n < nodeCount; n++ {
		if _, err := fmt.Fprintf(w, "  n%d [label=\"%d\"];\n", n, g.ReferencePositions[n]); err != nil {
			return err
		}
	}
	for n := uint64(0); n+1 < nodeCount; n++ {
		if _, err := fmt.Fprintf(w, "  n%d -> n%d;\n", n, n+1); err != nil {
			return err
		}
	}
	for e := uint64(0); e < g.EdgeCount(); e++ {
		label := g.AltEdgeLabels[e]
		src, dst := sourceNodeOfEdge(g, e), g.AltEdgeTargets[e]
		if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", src, dst, label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func sourceNodeOfEdge(g *graph.Graph, e uint64) uint64 {
	nodeCount := g.NodeCount()
	lo, hi := uint64(0), nodeCount-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		start, _ := g.EdgeRangeForNode(mid)
		if start <= e {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
