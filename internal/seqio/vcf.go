package seqio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AltSVType classifies an ALT allele the way the graph builder needs to:
// an ordinary sequence replacement (None), a deletion that removes
// reference sequence without contributing aligned sequence of its own
// (Del), or anything else (Other, e.g. breakends, insertions expressed via
// symbolic alleles), which is skipped when building edges, matching
// libvcf2multialign/variant_graph.cc's "default: break" case.
type AltSVType int

const (
	AltNone AltSVType = iota
	AltDel
	AltOther
)

// Allele is a single ALT allele together with its classification.
type Allele struct {
	Alt    string
	SVType AltSVType
}

func classifyAlt(alt string) AltSVType {
	if !strings.HasPrefix(alt, "<") {
		return AltNone
	}
	inner := strings.Trim(alt, "<>")
	if colon := strings.IndexByte(inner, ':'); colon >= 0 {
		inner = inner[:colon]
	}
	if inner == "DEL" {
		return AltDel
	}
	return AltOther
}

// Genotype holds one chromosome copy's allele index (0 = reference, -1 =
// unknown/"."), matching the VCF sample_genotype::NULL_ALLELE concept.
type Genotype struct {
	Alt int32
}

const NullAllele = int32(-1)

// Variant is one parsed, not-yet-filtered VCF data line.
type Variant struct {
	LineNo    uint64
	ChromID   string
	Pos       uint64 // 0-based
	ID        string
	Ref       string
	Alts      []Allele
	Genotypes [][]Genotype // per sample (VCF order), per chromosome copy
}

// VCFReader is a minimal streaming parser for phased, single-contig VCF
// files sufficient to drive graph construction: it understands the meta
// header, the #CHROM sample-name line, and GT-bearing FORMAT columns.
type VCFReader struct {
	scanner        *bufio.Scanner
	SampleNames    []string
	lineNo         uint64
	headerLastLine uint64
}

// NewVCFReader reads and consumes the header (meta lines plus the #CHROM
// line) before returning.
func NewVCFReader(r io.Reader) (*VCFReader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1<<20), 1<<30)
	vr := &VCFReader{scanner: scanner}
	for scanner.Scan() {
		vr.lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				vr.SampleNames = append(vr.SampleNames, fields[9:]...)
			}
			vr.headerLastLine = vr.lineNo
			return vr, nil
		}
		return nil, fmt.Errorf("vcf: unexpected line before #CHROM header: %q", line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vcf: reading header: %w", err)
	}
	return nil, fmt.Errorf("vcf: no #CHROM header line found")
}

// HeaderLastLineNo returns the 1-based line number of the #CHROM line, used
// to translate data-line indices into file line numbers for diagnostics.
func (vr *VCFReader) HeaderLastLineNo() uint64 { return vr.headerLastLine }

// Next parses and returns the next data record, or io.EOF once the input is
// exhausted.
func (vr *VCFReader) Next() (*Variant, error) {
	if !vr.scanner.Scan() {
		if err := vr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("vcf: %w", err)
		}
		return nil, io.EOF
	}
	vr.lineNo++
	line := vr.scanner.Text()
	if line == "" {
		return vr.Next()
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("vcf: line %d: expected at least 8 columns, got %d", vr.lineNo, len(fields))
	}

	pos1, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vcf: line %d: bad POS %q: %w", vr.lineNo, fields[1], err)
	}

	v := &Variant{
		LineNo:  vr.lineNo,
		ChromID: fields[0],
		Pos:     pos1 - 1,
		ID:      fields[2],
		Ref:     strings.ToUpper(fields[3]),
	}
	if fields[4] != "." {
		for _, a := range strings.Split(fields[4], ",") {
			a = strings.ToUpper(a)
			v.Alts = append(v.Alts, Allele{Alt: a, SVType: classifyAlt(a)})
		}
	}

	if len(fields) < 10 {
		return v, nil
	}

	gtIdx := -1
	for i, k := range strings.Split(fields[8], ":") {
		if k == "GT" {
			gtIdx = i
			break
		}
	}
	if gtIdx < 0 {
		return v, nil
	}

	v.Genotypes = make([][]Genotype, len(fields)-9)
	for si, cell := range fields[9:] {
		sub := strings.Split(cell, ":")
		if gtIdx >= len(sub) {
			continue
		}
		gt := sub[gtIdx]
		sep := "/"
		if strings.Contains(gt, "|") {
			sep = "|"
		}
		alleles := strings.Split(gt, sep)
		copies := make([]Genotype, len(alleles))
		for ci, a := range alleles {
			if a == "." {
				copies[ci] = Genotype{Alt: NullAllele}
				continue
			}
			n, err := strconv.ParseInt(a, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("vcf: line %d: bad GT allele %q: %w", vr.lineNo, a, err)
			}
			copies[ci] = Genotype{Alt: int32(n)}
		}
		v.Genotypes[si] = copies
	}
	return v, nil
}
