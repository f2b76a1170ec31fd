// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package seqio provides the reference-FASTA and phased-VCF readers that
// feed the graph builder (package graphbuild), along with the sample
// inclusion filter used to select which chromosome copies participate in
// graph construction.
package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadFASTASequence reads a single-record FASTA file from r and returns its
// sequence with all whitespace stripped, upper-cased. Only the first record
// is read; this mirrors the CLI's single-reference-contig assumption.
func ReadFASTASequence(r io.Reader) (string, error) {
	return ReadFASTASequenceNamed(r, "")
}

// ReadFASTASequenceNamed reads a (possibly multi-record) FASTA file from r
// and returns the sequence of the record whose header token (the text
// between '>' and the first space) equals name, or the first record when
// name is empty.
func ReadFASTASequenceNamed(r io.Reader, name string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	var b strings.Builder
	seenHeader := false
	matching := false
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if name == "" {
				if seenHeader {
					break
				}
				seenHeader = true
				matching = true
				continue
			}
			if matching {
				break
			}
			seenHeader = true
			token := strings.Fields(line[1:])
			matching = len(token) > 0 && token[0] == name
			continue
		}
		if matching {
			b.WriteString(strings.ToUpper(strings.TrimSpace(line)))
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading FASTA: %w", err)
	}
	if !seenHeader {
		return "", fmt.Errorf("reading FASTA: no '>' header record found")
	}
	if name != "" && b.Len() == 0 {
		return "", fmt.Errorf("reading FASTA: no record named %q found", name)
	}
	return b.String(), nil
}
