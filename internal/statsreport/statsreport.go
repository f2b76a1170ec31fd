// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package statsreport builds the `--output-graph-statistics` report:
// node/edge/ploidy/sample counts, block equivalence class statistics via
// gonum, and an optional chi-square homogeneity test across samples'
// overlap counts.
package statsreport

import (
	"encoding/json"
	"io"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

// Report is the JSON document written by Write.
type Report struct {
	Nodes            uint64  `json:"nodes"`
	Edges            uint64  `json:"edges"`
	Samples          int     `json:"samples"`
	ChromosomeCopies uint32  `json:"chromosome_copies"`
	Blocks           int     `json:"blocks,omitempty"`
	MeanBlockClasses float64 `json:"mean_block_classes,omitempty"`
	StdevBlockClasses float64 `json:"stdev_block_classes,omitempty"`
	// SampleOverlapHomogeneityP is the p-value of a chi-square test for
	// whether overlap counts are homogeneous across samples; omitted
	// unless at least two samples have an overlap count recorded.
	SampleOverlapHomogeneityP *float64 `json:"sample_overlap_homogeneity_p,omitempty"`
}

// BuildReport computes node/edge/sample/ploidy counts from g, optionally
// folding in per-block equivalence class counts (one count per cut-to-cut
// block, as computed by cutpos.BlockEquivalenceClassCounts) and per-sample
// overlap counts.
func BuildReport(g *graph.Graph, blockEqClassCounts []int, sampleOverlapCounts []int) Report {
	r := Report{
		Nodes:            g.NodeCount(),
		Edges:            g.EdgeCount(),
		Samples:          len(g.SampleNames),
		ChromosomeCopies: g.TotalChromosomeCopies(),
	}
	if len(blockEqClassCounts) > 0 {
		floats := make([]float64, len(blockEqClassCounts))
		for i, v := range blockEqClassCounts {
			floats[i] = float64(v)
		}
		r.Blocks = len(blockEqClassCounts)
		r.MeanBlockClasses, r.StdevBlockClasses = stat.MeanStdDev(floats, nil)
	}
	if p, ok := overlapHomogeneityP(sampleOverlapCounts); ok {
		r.SampleOverlapHomogeneityP = &p
	}
	return r
}

// overlapHomogeneityP runs a chi-square goodness-of-fit test comparing the
// observed per-sample overlap counts against the uniform distribution a
// homogeneous cohort would produce.
func overlapHomogeneityP(counts []int) (float64, bool) {
	if len(counts) < 2 {
		return 0, false
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0, false
	}
	expected := float64(total) / float64(len(counts))
	sum := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		sum += (d * d) / expected
	}
	chisquared := distuv.ChiSquared{K: float64(len(counts) - 1), Src: rand.NewSource(1)}
	return 1 - chisquared.CDF(sum), true
}

// Write encodes r to w as indented JSON.
func Write(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
