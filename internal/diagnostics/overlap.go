// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package diagnostics implements the overlap TSV report and the
// REF-mismatch description reported when a VCF record's REF column
// disagrees with the loaded reference FASTA.
package diagnostics

import (
	"bufio"
	"fmt"
	"io"
)

// OverlapReport is one row of the overlap TSV, reported whenever a sample's
// chosen ALT on a chromosome copy begins before the previous ALT claimed by
// that same copy has ended.
type OverlapReport struct {
	LineNo    uint64
	RefPos    uint64
	VariantID string
	Sample    string
	ChromCopy uint32
	GT        int32
}

// OverlapWriter accumulates OverlapReports and writes them as a TSV:
// header `LINENO\tPOS\tID\tSAMPLE\tCHROM_COPY\tGT` followed by one row per
// report, in the order reported.
type OverlapWriter struct {
	w       *bufio.Writer
	wrote   bool
	flushed bool
}

// NewOverlapWriter wraps w, writing the TSV header on the first report.
func NewOverlapWriter(w io.Writer) *OverlapWriter {
	return &OverlapWriter{w: bufio.NewWriter(w)}
}

func (o *OverlapWriter) writeHeader() error {
	_, err := io.WriteString(o.w, "LINENO\tPOS\tID\tSAMPLE\tCHROM_COPY\tGT\n")
	return err
}

// Report appends one overlap row, writing the header first if this is the
// first call.
func (o *OverlapWriter) Report(r OverlapReport) error {
	if !o.wrote {
		if err := o.writeHeader(); err != nil {
			return fmt.Errorf("diagnostics: overlap header: %w", err)
		}
		o.wrote = true
	}
	_, err := fmt.Fprintf(o.w, "%d\t%d\t%s\t%s\t%d\t%d\n", r.LineNo, r.RefPos, r.VariantID, r.Sample, r.ChromCopy, r.GT)
	if err != nil {
		return fmt.Errorf("diagnostics: overlap row: %w", err)
	}
	return nil
}

// Flush writes out any buffered rows. A writer that never received a
// report writes nothing at all: an empty run means an empty, header-less
// output.
func (o *OverlapWriter) Flush() error {
	if o.flushed {
		return nil
	}
	o.flushed = true
	return o.w.Flush()
}

// Delegate adapts an OverlapWriter and a REF-mismatch reporter into the
// shape graphbuild.Delegate expects for ReportOverlappingAlternative and
// RefColumnMismatch.
type Delegate struct {
	Overlaps *OverlapWriter
	// MismatchOut receives one formatted line per REF/FASTA mismatch.
	// RefColumnMismatch always returns true: a mismatch is reported, not
	// fatal.
	MismatchOut io.Writer
}

// ReportOverlappingAlternative implements graphbuild.Delegate.
func (d Delegate) ReportOverlappingAlternative(lineNo, refPos uint64, variantID, sampleName string, chromCopyIdxInput uint32, altAllele int32) {
	if d.Overlaps == nil {
		return
	}
	_ = d.Overlaps.Report(OverlapReport{
		LineNo:    lineNo,
		RefPos:    refPos,
		VariantID: variantID,
		Sample:    sampleName,
		ChromCopy: chromCopyIdxInput,
		GT:        altAllele,
	})
}

// RefColumnMismatch implements graphbuild.Delegate. It describes the
// mismatch via DescribeMismatch and always permits the build to continue,
// since a REF/FASTA disagreement is reported, not fatal.
func (d Delegate) RefColumnMismatch(varIdx, refPos uint64, recordRef, expectedRef string) bool {
	if d.MismatchOut != nil {
		fmt.Fprintf(d.MismatchOut, "variant %d at position %d: REF column %q disagrees with reference %q (%s)\n",
			varIdx, refPos, recordRef, expectedRef, DescribeMismatch(expectedRef, recordRef))
	}
	return true
}
