// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package npyexport writes the sample/edge traversal matrix out as a 2-D
// uint8 .npy array using github.com/kshedden/gonpy, for downstream analysis
// in numpy.
package npyexport

import (
	"fmt"
	"io"

	"github.com/kshedden/gonpy"

	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

// nopCloser wraps an io.Writer so that gonpy's internal Close (which it
// invokes and ignores the error of) does not close the underlying file;
// the caller closes it explicitly afterward, exactly as exportnumpy.go
// does.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// WritePathMatrix writes g.PathsByChromCopyAndEdge (edges on rows,
// chromosome copies on columns) to w as a 2-D uint8 .npy array. Its
// presence or absence has no effect on sequence output.
func WritePathMatrix(w io.Writer, g *graph.Graph) error {
	m := g.PathsByChromCopyAndEdge
	rows, cols := 0, 0
	if m != nil {
		rows, cols = m.Rows(), m.Cols()
	}
	data := make([]uint8, rows*cols)
	for r := 0; r < rows; r++ {
		for cidx := 0; cidx < cols; cidx++ {
			if m.Get(r, cidx) {
				data[r*cols+cidx] = 1
			}
		}
	}

	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return fmt.Errorf("npyexport: %w", err)
	}
	npw.Shape = []int{rows, cols}
	if err := npw.WriteUint8(data); err != nil {
		return fmt.Errorf("npyexport: write: %w", err)
	}
	return nil
}
