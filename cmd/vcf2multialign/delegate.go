// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/tsnorri/vcf2multialign-go/internal/diagnostics"
	"github.com/tsnorri/vcf2multialign-go/internal/seqio"
)

// refMismatchHandling selects what happens when a VCF record's REF column
// disagrees with the loaded FASTA, per --ref-mismatch-handling.
type refMismatchHandling int

const (
	refMismatchError refMismatchHandling = iota
	refMismatchWarn
)

// buildDelegate adapts the include/exclude sample filter, the overlap TSV
// writer and the REF-mismatch policy into graphbuild.Delegate, converging
// filtering and diagnostics on one build-time decision object.
type buildDelegate struct {
	include  *seqio.SampleFilter
	excluded bool
	overlaps diagnostics.Delegate
	handling refMismatchHandling
	mismatch bool
}

// ShouldInclude implements graphbuild.Delegate.
func (d *buildDelegate) ShouldInclude(sampleName string, chromCopyIdx uint32) bool {
	included := d.include.Include(sampleName, chromCopyIdx)
	if d.excluded {
		return !included
	}
	return included
}

// ReportOverlappingAlternative implements graphbuild.Delegate.
func (d *buildDelegate) ReportOverlappingAlternative(lineNo, refPos uint64, variantID, sampleName string, chromCopyIdxInput uint32, altAllele int32) {
	d.overlaps.ReportOverlappingAlternative(lineNo, refPos, variantID, sampleName, chromCopyIdxInput, altAllele)
}

// RefColumnMismatch implements graphbuild.Delegate. Under "error" handling
// it records the mismatch and aborts the build; under "warn" it logs and
// continues.
func (d *buildDelegate) RefColumnMismatch(varIdx, refPos uint64, recordRef, expectedRef string) bool {
	d.mismatch = true
	d.overlaps.RefColumnMismatch(varIdx, refPos, recordRef, expectedRef)
	if d.handling == refMismatchError {
		log.Errorf("variant %d: REF mismatch at position %d, aborting (use -ref-mismatch-handling=warn to continue)", varIdx, refPos)
		return false
	}
	return true
}
