// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package archive implements the graph archive: a gob-encoded
// struct-of-arrays serialization of a built variant graph, optionally
// gzip-compressed, following a fixed field order so archives round-trip
// byte-for-byte.
package archive

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/pgzip"
	"golang.org/x/crypto/blake2b"

	"github.com/tsnorri/vcf2multialign-go/internal/bitmatrix"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

// GraphEntry is the gob-serializable form of a built graph: reference
// positions, aligned positions, ALT edge targets, ALT edge count prefix
// sum, ALT edge labels, the two path matrices, sample names, and the
// ploidy prefix sum, in that order. Every prefix sum here is zero-based.
type GraphEntry struct {
	ReferencePositions []uint64
	AlignedPositions    []uint64
	AltEdgeTargets      []uint64
	AltEdgeCountCsum    []uint64
	AltEdgeLabels       []string
	PathsByChromCopyAndEdge bitMatrixEntry
	PathsByEdgeAndChromCopy bitMatrixEntry
	SampleNames []string
	PloidyCsum  []uint32
}

// bitMatrixEntry is the gob-friendly (nrows, ncols, words) encoding of a
// bitmatrix.Matrix.
type bitMatrixEntry struct {
	Rows  int
	Cols  int
	Words []uint64
}

// CutPositionEntry is the gob-serializable cut-position file.
type CutPositionEntry struct {
	Positions   []uint64
	MinDistance uint64
	Score       uint32
}

func toEntry(g *graph.Graph) GraphEntry {
	return GraphEntry{
		ReferencePositions:      g.ReferencePositions,
		AlignedPositions:        g.AlignedPositions,
		AltEdgeTargets:          g.AltEdgeTargets,
		AltEdgeCountCsum:        g.AltEdgeCountCsum,
		AltEdgeLabels:           g.AltEdgeLabels,
		PathsByChromCopyAndEdge: matrixToEntry(g.PathsByChromCopyAndEdge),
		PathsByEdgeAndChromCopy: matrixToEntry(g.PathsByEdgeAndChromCopy),
		SampleNames:             g.SampleNames,
		PloidyCsum:              g.PloidyCsum,
	}
}

func matrixToEntry(m *bitmatrix.Matrix) bitMatrixEntry {
	if m == nil {
		return bitMatrixEntry{}
	}
	words := make([]uint64, m.Rows()*(m.Cols()/64))
	wpr := m.Cols() / 64
	for r := 0; r < m.Rows(); r++ {
		copy(words[r*wpr:(r+1)*wpr], m.Row(r))
	}
	return bitMatrixEntry{Rows: m.Rows(), Cols: m.Cols(), Words: words}
}

func entryToMatrix(e bitMatrixEntry) *bitmatrix.Matrix {
	if e.Rows == 0 || e.Cols == 0 {
		return nil
	}
	m := bitmatrix.New(e.Rows, e.Cols)
	wpr := e.Cols / 64
	for r := 0; r < e.Rows; r++ {
		copy(m.Row(r), e.Words[r*wpr:(r+1)*wpr])
	}
	return m
}

func fromEntry(e GraphEntry) *graph.Graph {
	g := &graph.Graph{
		ReferencePositions:      e.ReferencePositions,
		AlignedPositions:        e.AlignedPositions,
		AltEdgeTargets:          e.AltEdgeTargets,
		AltEdgeCountCsum:        e.AltEdgeCountCsum,
		AltEdgeLabels:           e.AltEdgeLabels,
		PathsByChromCopyAndEdge: entryToMatrix(e.PathsByChromCopyAndEdge),
		PathsByEdgeAndChromCopy: entryToMatrix(e.PathsByEdgeAndChromCopy),
		SampleNames:             e.SampleNames,
		PloidyCsum:              e.PloidyCsum,
	}
	return g
}

// WriteGraph gob-encodes g to w, gzip-compressing through pgzip first when
// gz is true, and returns the blake2b-256 digest of the uncompressed
// archive bytes, so callers can verify a round-trip reproduces it exactly.
func WriteGraph(w io.Writer, g *graph.Graph, gz bool) ([blake2b.Size256]byte, error) {
	var digest [blake2b.Size256]byte
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return digest, err
	}

	var out io.Writer = io.MultiWriter(w, hasher)
	var closer io.Closer
	if gz {
		zw := pgzip.NewWriter(w)
		out = io.MultiWriter(zw, hasher)
		closer = zw
	}

	enc := gob.NewEncoder(out)
	if err := enc.Encode(toEntry(g)); err != nil {
		return digest, fmt.Errorf("archive: encode: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return digest, fmt.Errorf("archive: close: %w", err)
		}
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// ReadGraph decodes a graph archive written by WriteGraph.
func ReadGraph(r io.Reader, gz bool) (*graph.Graph, error) {
	var zrdr io.Reader = r
	if gz {
		zr, err := pgzip.NewReader(bufio.NewReaderSize(r, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("archive: gzip: %w", err)
		}
		zrdr = zr
	}
	var entry GraphEntry
	if err := gob.NewDecoder(zrdr).Decode(&entry); err != nil {
		return nil, fmt.Errorf("archive: decode: %w", err)
	}
	return fromEntry(entry), nil
}

// WriteCutPositions gob-encodes the cut-position list the same way.
func WriteCutPositions(w io.Writer, positions []uint64, minDistance uint64, score uint32) error {
	return gob.NewEncoder(w).Encode(CutPositionEntry{Positions: positions, MinDistance: minDistance, Score: score})
}

// ReadCutPositions decodes a cut-position archive written by
// WriteCutPositions.
func ReadCutPositions(r io.Reader) (CutPositionEntry, error) {
	var entry CutPositionEntry
	err := gob.NewDecoder(r).Decode(&entry)
	return entry, err
}
