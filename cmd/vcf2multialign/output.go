// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tsnorri/vcf2multialign-go/internal/emit"
	"github.com/tsnorri/vcf2multialign-go/internal/founder"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
)

// sequenceWriter abstracts over the three output transports: an A2M file
// carrying every sequence, one file per sequence, or one subprocess per
// sequence.
type sequenceWriter interface {
	// open returns a writer for one sequence and a function to finalize
	// it (closing a file, or waiting on and checking a subprocess).
	open(name string) (io.Writer, func() error, error)
	close() error
}

type a2mWriter struct {
	f *os.File
}

func (a *a2mWriter) open(name string) (io.Writer, func() error, error) {
	if err := emit.WriteA2MHeader(a.f, name); err != nil {
		return nil, nil, err
	}
	return a.f, func() error { _, err := io.WriteString(a.f, "\n"); return err }, nil
}
func (a *a2mWriter) close() error { return a.f.Close() }

type separateWriter struct {
	fw     *emit.FileWriter
	format string
}

func (s *separateWriter) open(name string) (io.Writer, func() error, error) {
	if s.format == "A2M" {
		f, err := s.fw.Create(name + ".a2m")
		if err != nil {
			return nil, nil, err
		}
		if err := emit.WriteA2MHeader(f, name); err != nil {
			f.Close()
			return nil, nil, err
		}
		return f, f.Close, nil
	}
	f, err := s.fw.Create(name + ".fasta")
	if err != nil {
		return nil, nil, err
	}
	if _, err := fmt.Fprintf(f, ">%s\n", name); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, f.Close, nil
}
func (s *separateWriter) close() error { return nil }

type pipeWriter struct {
	pw *emit.PipeWriter
}

func (p *pipeWriter) open(name string) (io.Writer, func() error, error) {
	var buf writeBuffer
	finalize := func() error {
		return p.pw.WriteSequence(name, func(w io.Writer) error {
			_, err := w.Write(buf.b)
			return err
		})
	}
	return &buf, finalize, nil
}
func (p *pipeWriter) close() error { return p.pw.Wait() }

type writeBuffer struct{ b []byte }

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func (cmd *command) sequenceNamer() func(sample string, copyIdx int) string {
	chrom := cmd.chromosome
	if cmd.dstChromosome != "" {
		chrom = cmd.dstChromosome
	}
	return func(sample string, copyIdx int) string {
		if sample == "" {
			return fmt.Sprintf("%s:REF", chrom)
		}
		return fmt.Sprintf("%s:%s:%d", chrom, sample, copyIdx)
	}
}

func (cmd *command) newSequenceWriter() (sequenceWriter, error) {
	switch {
	case cmd.pipeProgram != "":
		pw := emit.NewPipeWriter(cmd.pipeProgram, nil, 8)
		pw.Stderr = os.Stderr
		return &pipeWriter{pw: pw}, nil
	case cmd.a2mPath != "":
		f, err := os.OpenFile(cmd.a2mPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
		if err != nil {
			return nil, fmt.Errorf("vcf2multialign: opening a2m output: %w", err)
		}
		return &a2mWriter{f: f}, nil
	case cmd.separateDir != "":
		return &separateWriter{fw: &emit.FileWriter{Dir: cmd.separateDir}, format: cmd.separateFormat}, nil
	default:
		return nil, errors.New("vcf2multialign: one of -output-sequences-a2m, -output-sequences-separate, or -pipe is required to emit sequences")
	}
}

// emitSequences writes every requested sequence (the REF track plus one per
// chromosome copy in haplotype mode, or cmd.founderCount founder sequences
// in founder mode) through the selected transport.
func (cmd *command) emitSequences(g *graph.Graph, cutPositions []uint64) error {
	sw, err := cmd.newSequenceWriter()
	if err != nil {
		return err
	}

	refSeq, err := cmd.loadReference()
	if err != nil {
		return err
	}

	namer := cmd.sequenceNamer()
	aligned := !cmd.unaligned

	writeOne := func(name string, fn func(io.Writer) error) error {
		w, finalize, err := sw.open(name)
		if err != nil {
			return fmt.Errorf("vcf2multialign: opening sequence %s: %w", name, err)
		}
		if err := fn(w); err != nil {
			return fmt.Errorf("vcf2multialign: writing sequence %s: %w", name, err)
		}
		if finalize != nil {
			if err := finalize(); err != nil {
				return fmt.Errorf("vcf2multialign: finalizing sequence %s: %w", name, err)
			}
		}
		return nil
	}

	if !cmd.omitReference {
		if err := writeOne(namer("", 0), func(w io.Writer) error {
			return emit.EmitReference(w, g, refSeq, aligned)
		}); err != nil {
			return err
		}
	}

	if cmd.haplotypes {
		copyIdx := 0
		for si, sample := range g.SampleNames {
			ploidy := int(g.SamplePloidy(si))
			for c := 0; c < ploidy; c++ {
				cc := copyIdx
				if err := writeOne(namer(sample, c), func(w io.Writer) error {
					return emit.EmitHaplotype(w, g, refSeq, cc, aligned)
				}); err != nil {
					return err
				}
				copyIdx++
			}
		}
	} else {
		assignment, ok := founder.FindMatchings(g, cutPositions, uint32(cmd.founderCount), cmd.keepRefEdges)
		if !ok {
			return errors.New("vcf2multialign: founder matching requires at least two cut positions")
		}
		for i := 0; i < cmd.founderCount; i++ {
			fi := i
			if err := writeOne(fmt.Sprintf("%s:founder%d", cmd.founderName(), fi), func(w io.Writer) error {
				return emit.EmitFounder(w, g, refSeq, fi, cutPositions, assignment, aligned)
			}); err != nil {
				return err
			}
		}
	}

	if err := sw.close(); err != nil {
		return fmt.Errorf("vcf2multialign: %w", err)
	}
	log.Info("finished emitting sequences")
	return nil
}

func (cmd *command) founderName() string {
	if cmd.dstChromosome != "" {
		return cmd.dstChromosome
	}
	return cmd.chromosome
}
