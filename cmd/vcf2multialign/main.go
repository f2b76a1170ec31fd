// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Command vcf2multialign builds a variant graph from a reference FASTA and
// a phased VCF, optionally archives it, computes cut positions for founder
// sequences, and emits haplotype or founder sequences. It uses a
// RunCommand(prog, args, stdin, stdout, stderr) int shape so the command is
// unit-testable with buffers instead of the real os.Args/os.Exit.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/tsnorri/vcf2multialign-go/internal/archive"
	"github.com/tsnorri/vcf2multialign-go/internal/cutpos"
	"github.com/tsnorri/vcf2multialign-go/internal/diagnostics"
	"github.com/tsnorri/vcf2multialign-go/internal/emit"
	"github.com/tsnorri/vcf2multialign-go/internal/graph"
	"github.com/tsnorri/vcf2multialign-go/internal/graphbuild"
	"github.com/tsnorri/vcf2multialign-go/internal/npyexport"
	"github.com/tsnorri/vcf2multialign-go/internal/seqio"
	"github.com/tsnorri/vcf2multialign-go/internal/statsreport"
)

func main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		log.StandardLogger().Formatter = &log.TextFormatter{DisableTimestamp: true}
	}
	os.Exit((&command{}).RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type command struct {
	refPath       string
	refName       string
	variantsPath  string
	graphInPath   string
	chromosome    string
	dstChromosome string

	includeSamples string
	excludeSamples string

	overlapsPath        string
	graphOutPath        string
	graphStatistics     bool
	graphvizPath        string
	pathMatrixNumpyPath string

	haplotypes     bool
	founderCount   int
	minDistance    uint64
	cutPositionsIn string
	cutPositionsOut string
	keepRefEdges   bool

	a2mPath        string
	separateDir    string
	separateFormat string
	pipeProgram    string
	unaligned      bool
	omitReference  bool
	refMismatch    string
}

// RunCommand parses args and runs the command, returning a process exit
// code: 0 on success, 2 on flag/argument errors, 1 on any other failure.
func (cmd *command) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()

	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cmd.refPath, "input-reference", "", "reference FASTA `path` (required)")
	flags.StringVar(&cmd.refName, "reference-sequence", "", "optional sequence identifier inside the FASTA")
	flags.StringVar(&cmd.variantsPath, "input-variants", "", "input VCF `path` (mutually exclusive with -input-graph)")
	flags.StringVar(&cmd.graphInPath, "input-graph", "", "serialized graph `path`")
	flags.StringVar(&cmd.chromosome, "chromosome", "", "chromosome identifier (required with -input-variants)")
	flags.StringVar(&cmd.dstChromosome, "dst-chromosome", "", "chromosome identifier emitted in output sequence names")
	flags.StringVar(&cmd.includeSamples, "include-samples", "", "TSV `path` (chrom, sample, copy_idx) restricting which samples/copies participate")
	flags.StringVar(&cmd.excludeSamples, "exclude-samples", "", "TSV `path` of samples/copies to exclude")
	flags.StringVar(&cmd.overlapsPath, "output-overlaps", "", "output `path` for the overlap TSV")
	flags.StringVar(&cmd.graphOutPath, "output-graph", "", "output `path` to serialize the graph")
	flags.BoolVar(&cmd.graphStatistics, "output-graph-statistics", false, "print node/edge/ploidy/sample counts and derived statistics")
	flags.StringVar(&cmd.graphvizPath, "output-graphviz", "", "output `path` for a Graphviz rendering")
	flags.StringVar(&cmd.pathMatrixNumpyPath, "output-path-matrix-numpy", "", "output `path` for the path matrix as a numpy array")
	flags.BoolVar(&cmd.haplotypes, "haplotypes", false, "emit one sequence per chromosome copy")
	flags.IntVar(&cmd.founderCount, "founder-sequences", 0, "emit `N` founder sequences instead of haplotypes")
	flags.Uint64Var(&cmd.minDistance, "minimum-distance", 0, "minimum aligned distance between cut positions")
	flags.StringVar(&cmd.cutPositionsIn, "input-cut-positions", "", "serialized cut-position list `path`")
	flags.StringVar(&cmd.cutPositionsOut, "output-cut-positions", "", "output `path` to serialize the chosen cut-position list")
	flags.BoolVar(&cmd.keepRefEdges, "keep-ref-edges", false, "do not drop matchings joined only by reference edges")
	flags.StringVar(&cmd.a2mPath, "output-sequences-a2m", "", "output `path` for all sequences in one A2M file")
	flags.StringVar(&cmd.separateDir, "output-sequences-separate", "", "output `directory` for one file per sequence")
	flags.StringVar(&cmd.separateFormat, "separate-output-format", "FASTA", "file naming convention for -output-sequences-separate: A2M or FASTA")
	flags.StringVar(&cmd.pipeProgram, "pipe", "", "pipe each sequence through this executable instead of writing files")
	flags.BoolVar(&cmd.unaligned, "unaligned", false, "suppress gap padding")
	flags.BoolVar(&cmd.omitReference, "omit-reference", false, "do not emit the REF track")
	flags.StringVar(&cmd.refMismatch, "ref-mismatch-handling", "error", "behavior on REF vs FASTA disagreement: error or warn")

	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}

	if err = cmd.validateFlags(); err != nil {
		return 2
	}

	emit.IgnoreSIGPIPE()

	g, buildErr := cmd.loadOrBuildGraph(stderr)
	if buildErr != nil {
		err = buildErr
		return 1
	}

	if cmd.graphOutPath != "" {
		if err = cmd.writeGraph(g); err != nil {
			return 1
		}
	}

	var cutPositions []uint64
	var cutScore uint32 = cutpos.ScoreMax
	switch {
	case cmd.cutPositionsIn != "":
		cutPositions, err = cmd.readCutPositions()
		if err != nil {
			return 1
		}
	case cmd.founderCount > 0:
		cutPositions, cutScore = cutpos.Find(g, cmd.minDistance, nil)
		if cutPositions == nil {
			err = errors.New("vcf2multialign: graph has too few candidate cut positions for founder-sequence mode")
			return 1
		}
		if cmd.cutPositionsOut != "" {
			if err = cmd.writeCutPositions(cutPositions, cutScore); err != nil {
				return 1
			}
		}
	}

	if cmd.graphStatistics {
		cmd.printStatistics(stdout, g, cutPositions)
	}

	if cmd.pathMatrixNumpyPath != "" {
		if err = cmd.writePathMatrix(g); err != nil {
			return 1
		}
	}

	if cmd.graphvizPath != "" {
		if err = cmd.writeGraphvizFile(g); err != nil {
			return 1
		}
	}

	if cmd.founderCount > 0 || cmd.haplotypes {
		if err = cmd.emitSequences(g, cutPositions); err != nil {
			return 1
		}
	}

	return 0
}

func (cmd *command) validateFlags() error {
	if cmd.refPath == "" {
		return errors.New("vcf2multialign: -input-reference is required")
	}
	if cmd.variantsPath == "" && cmd.graphInPath == "" {
		return errors.New("vcf2multialign: one of -input-variants or -input-graph is required")
	}
	if cmd.variantsPath != "" && cmd.graphInPath != "" {
		return errors.New("vcf2multialign: -input-variants and -input-graph are mutually exclusive")
	}
	if cmd.variantsPath != "" && cmd.chromosome == "" {
		return errors.New("vcf2multialign: -chromosome is required with -input-variants")
	}
	if cmd.includeSamples != "" && cmd.excludeSamples != "" {
		return errors.New("vcf2multialign: -include-samples and -exclude-samples are mutually exclusive")
	}
	if cmd.haplotypes && cmd.founderCount > 0 {
		return errors.New("vcf2multialign: -haplotypes and -founder-sequences are mutually exclusive")
	}
	if cmd.founderCount < 0 {
		return errors.New("vcf2multialign: -founder-sequences must be positive")
	}
	switch cmd.refMismatch {
	case "error", "warn":
	default:
		return fmt.Errorf("vcf2multialign: -ref-mismatch-handling must be error or warn, got %q", cmd.refMismatch)
	}
	return nil
}

func (cmd *command) handling() refMismatchHandling {
	if cmd.refMismatch == "warn" {
		return refMismatchWarn
	}
	return refMismatchError
}

func (cmd *command) loadOrBuildGraph(stderr io.Writer) (*graph.Graph, error) {
	if cmd.graphInPath != "" {
		f, err := os.Open(cmd.graphInPath)
		if err != nil {
			return nil, fmt.Errorf("vcf2multialign: opening graph: %w", err)
		}
		defer f.Close()
		return archive.ReadGraph(f, isGzipPath(cmd.graphInPath))
	}

	refSeq, err := cmd.loadReference()
	if err != nil {
		return nil, err
	}

	vf, err := os.Open(cmd.variantsPath)
	if err != nil {
		return nil, fmt.Errorf("vcf2multialign: opening variants: %w", err)
	}
	defer vf.Close()

	reader, err := seqio.NewVCFReader(vf)
	if err != nil {
		return nil, fmt.Errorf("vcf2multialign: %w", err)
	}

	filter, excluded, err := cmd.loadSampleFilter()
	if err != nil {
		return nil, err
	}

	overlapsWriter, closeOverlaps, err := cmd.openOverlapsWriter()
	if err != nil {
		return nil, err
	}
	if closeOverlaps != nil {
		defer closeOverlaps()
	}

	delegate := &buildDelegate{
		include:  filter,
		excluded: excluded,
		overlaps: diagnostics.Delegate{Overlaps: overlapsWriter, MismatchOut: stderr},
		handling: cmd.handling(),
	}

	progress := func(handled uint64) {
		log.Infof("handled %d variants", handled)
	}

	g, stats, err := graphbuild.Build(refSeq, cmd.chromosome, reader, delegate, progress)
	if err != nil {
		return nil, fmt.Errorf("vcf2multialign: %w", err)
	}
	if overlapsWriter != nil {
		if err := overlapsWriter.Flush(); err != nil {
			return nil, fmt.Errorf("vcf2multialign: %w", err)
		}
	}
	if delegate.mismatch && cmd.handling() == refMismatchError {
		return nil, errors.New("vcf2multialign: aborting due to REF/FASTA mismatch")
	}
	log.Infof("built graph: %d nodes, %d edges, %d chromosome ID mismatches", g.NodeCount(), g.EdgeCount(), stats.ChrIDMismatches)
	return g, nil
}

func (cmd *command) loadReference() (string, error) {
	f, err := os.Open(cmd.refPath)
	if err != nil {
		return "", fmt.Errorf("vcf2multialign: opening reference: %w", err)
	}
	defer f.Close()
	seq, err := seqio.ReadFASTASequenceNamed(f, cmd.refName)
	if err != nil {
		return "", fmt.Errorf("vcf2multialign: %w", err)
	}
	return seq, nil
}

func (cmd *command) loadSampleFilter() (*seqio.SampleFilter, bool, error) {
	path := cmd.includeSamples
	excluded := false
	if path == "" {
		path = cmd.excludeSamples
		excluded = true
	}
	if path == "" {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("vcf2multialign: opening sample filter: %w", err)
	}
	defer f.Close()
	filter, err := seqio.LoadSampleFilterTSV(f, "sample", "copy_idx")
	if err != nil {
		return nil, false, fmt.Errorf("vcf2multialign: %w", err)
	}
	return filter, excluded, nil
}

func (cmd *command) openOverlapsWriter() (*diagnostics.OverlapWriter, func(), error) {
	if cmd.overlapsPath == "" {
		return nil, nil, nil
	}
	f, err := os.OpenFile(cmd.overlapsPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, nil, fmt.Errorf("vcf2multialign: opening overlap output: %w", err)
	}
	w := diagnostics.NewOverlapWriter(f)
	return w, func() { f.Close() }, nil
}

func (cmd *command) writeGraph(g *graph.Graph) error {
	f, err := os.OpenFile(cmd.graphOutPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("vcf2multialign: opening graph output: %w", err)
	}
	defer f.Close()
	digest, err := archive.WriteGraph(f, g, isGzipPath(cmd.graphOutPath))
	if err != nil {
		return fmt.Errorf("vcf2multialign: %w", err)
	}
	log.Infof("wrote graph archive %s (blake2b-256 %x)", cmd.graphOutPath, digest)
	return nil
}

func (cmd *command) readCutPositions() ([]uint64, error) {
	f, err := os.Open(cmd.cutPositionsIn)
	if err != nil {
		return nil, fmt.Errorf("vcf2multialign: opening cut positions: %w", err)
	}
	defer f.Close()
	entry, err := archive.ReadCutPositions(f)
	if err != nil {
		return nil, fmt.Errorf("vcf2multialign: %w", err)
	}
	return entry.Positions, nil
}

func (cmd *command) writeCutPositions(positions []uint64, score uint32) error {
	f, err := os.OpenFile(cmd.cutPositionsOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("vcf2multialign: opening cut positions output: %w", err)
	}
	defer f.Close()
	if err := archive.WriteCutPositions(f, positions, cmd.minDistance, score); err != nil {
		return fmt.Errorf("vcf2multialign: %w", err)
	}
	return nil
}

func (cmd *command) writePathMatrix(g *graph.Graph) error {
	f, err := os.OpenFile(cmd.pathMatrixNumpyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("vcf2multialign: opening numpy output: %w", err)
	}
	defer f.Close()
	if err := npyexport.WritePathMatrix(f, g); err != nil {
		return fmt.Errorf("vcf2multialign: %w", err)
	}
	return nil
}

func (cmd *command) printStatistics(w io.Writer, g *graph.Graph, cutPositions []uint64) {
	blockCounts := cutpos.BlockEquivalenceClassCounts(g, cutPositions)
	report := statsreport.BuildReport(g, blockCounts, nil)
	if err := statsreport.Write(w, report); err != nil {
		log.Errorf("writing statistics: %s", err)
	}
}

func (cmd *command) writeGraphvizFile(g *graph.Graph) error {
	f, err := os.OpenFile(cmd.graphvizPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("vcf2multialign: opening graphviz output: %w", err)
	}
	defer f.Close()
	if err := writeGraphviz(f, g); err != nil {
		return fmt.Errorf("vcf2multialign: %w", err)
	}
	return nil
}

func isGzipPath(path string) bool {
	return len(path) > 3 && path[len(path)-3:] == ".gz"
}
