// bioformats: a toolkit for counting and statistics over FASTA/FASTQ/SAM/VCF files.
// Copyright (c) 2024-2026 RNRMU bioinformatics group.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License along with this program. If not, see
// <https://www.gnu.org/licenses/>.

package vcf

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

const testVcfHeader = "##fileformat=VCFv4.3\n" +
	"##FILTER=<ID=PASS,Description=\"All filters passed\">\n" +
	"##FILTER=<ID=q10,Description=\"Quality below 10\">\n" +
	"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total Depth\">\n" +
	"##ALT=<ID=DEL,Description=\"Deletion\">\n" +
	"##contig=<ID=chr1,length=1000>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tsample1\tsample2\n"

func parseTestHeader(t *testing.T) *Header {
	t.Helper()
	hdr, _, err := ParseHeader(bufio.NewReader(strings.NewReader(testVcfHeader)))
	if err != nil {
		t.Fatal(err)
	}
	return hdr
}

func TestParseVcfHeader(t *testing.T) {
	hdr := parseTestHeader(t)
	if hdr.FileFormat != FileFormatVersionLine {
		t.Error("incorrect file format line", hdr.FileFormat)
	}
	counts := hdr.GroupCounts()
	if counts["INFO"] != 1 || counts["FILTER"] != 2 || counts["ALT"] != 1 || counts["contig"] != 1 {
		t.Error("incorrect header group counts", counts)
	}
	alternates := hdr.Alternates()
	if len(alternates) != 1 || alternates[0].ID != utils.Intern("DEL") {
		t.Error("incorrect alternate allele entries", alternates)
	}
	filters := hdr.Filters()
	if len(filters) != 2 || filters[0].ID != utils.Intern("PASS") || filters[1].ID != utils.Intern("q10") {
		t.Error("incorrect filters", filters)
	}
	contigs := hdr.Contigs()
	if len(contigs) != 1 || contigs[0].ID != utils.Intern("chr1") {
		t.Error("incorrect contigs", contigs)
	}
	samples := hdr.Samples()
	if len(samples) != 2 || samples[0] != "sample1" || samples[1] != "sample2" {
		t.Error("incorrect samples", samples)
	}
}

func TestParseVariant(t *testing.T) {
	hdr := parseTestHeader(t)
	vp, err := hdr.NewVariantParser()
	if err != nil {
		t.Fatal(err)
	}
	if vp.NSamples != 2 {
		t.Error("incorrect number of samples", vp.NSamples)
	}
	var sc StringScanner
	sc.Reset("chr1\t150\trs1\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1")
	variant := sc.ParseVariant(vp)
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if variant.Chrom != "chr1" || variant.Pos != 150 || variant.Ref != "A" {
		t.Error("incorrect fixed columns", variant)
	}
	if len(variant.Alt) != 1 || variant.Alt[0] != "G" {
		t.Error("incorrect alternates", variant.Alt)
	}
	if !variant.Pass() {
		t.Error("incorrect filter", variant.Filter)
	}
	if variant.Depth() != 10 {
		t.Error("incorrect depth", variant.Depth())
	}
	if len(variant.GenotypeData) != 2 {
		t.Fatal("incorrect number of genotypes", len(variant.GenotypeData))
	}
}

func TestDepthDefault(t *testing.T) {
	variant := &Variant{Chrom: "chr1", Pos: 100}
	if variant.Depth() != 0 {
		t.Error("incorrect default depth", variant.Depth())
	}
}

func TestRegionStats(t *testing.T) {
	stats := NewStats(1000)
	add := func(chrom string, pos int32, depth int) {
		variant := &Variant{Chrom: chrom, Pos: pos}
		variant.Info.Set(DP, depth)
		stats.Add(variant)
	}
	add("chr1", 150, 10)
	add("chr1", 999, 20)
	add("chr1", 1000, 5)
	add("chr2", 42, 7)
	stats.Add(&Variant{Chrom: "chr1", Pos: -1})
	if stats.Count != 5 {
		t.Error("incorrect variant count", stats.Count)
	}
	regions := stats.Regions()
	if len(regions) != 3 {
		t.Fatal("incorrect number of regions", len(regions))
	}
	if regions[0].Chrom != "chr1" || regions[0].Start != 0 || regions[0].TotalDepth != 30 || regions[0].VariantCount != 2 {
		t.Error("incorrect first region", regions[0])
	}
	if regions[1].Start != 1000 || regions[1].TotalDepth != 5 || regions[1].VariantCount != 1 {
		t.Error("incorrect second region", regions[1])
	}
	if regions[2].Chrom != "chr2" || regions[2].Start != 0 || regions[2].TotalDepth != 7 {
		t.Error("incorrect third region", regions[2])
	}
}

func TestVariantsInRegionBoundaries(t *testing.T) {
	contents := testVcfHeader
	for _, line := range []string{
		"chr1\t99\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
		"chr1\t100\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
		"chr1\t150\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
		"chr1\t200\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
		"chr1\t201\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
		"chr2\t150\t.\tA\tG\t50\tPASS\tDP=10\tGT\t0/1\t1/1",
	} {
		contents += line + "\n"
	}
	filename := filepath.Join(t.TempDir(), "test.vcf")
	if err := os.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	_, variants, err := VariantsInRegion(filename, "chr1", 100, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 3 {
		t.Fatal("incorrect number of variants in the region", len(variants))
	}
	if variants[0].Pos != 100 || variants[1].Pos != 150 || variants[2].Pos != 200 {
		t.Error("incorrect region boundary handling", variants)
	}
	for _, variant := range variants {
		if variant.Chrom != "chr1" {
			t.Error("variant from the wrong chromosome included", variant)
		}
	}
}

func TestRegionStatsMerge(t *testing.T) {
	stats1 := NewStats(1000)
	stats2 := NewStats(1000)
	variant := func(chrom string, pos int32) *Variant {
		return &Variant{Chrom: chrom, Pos: pos}
	}
	stats1.Add(variant("chr1", 100))
	stats2.Add(variant("chr1", 200))
	stats2.Add(variant("chr2", 300))
	stats1.Merge(stats2)
	if stats1.Count != 3 {
		t.Error("incorrect merged variant count", stats1.Count)
	}
	regions := stats1.Regions()
	if len(regions) != 2 || regions[0].VariantCount != 2 || regions[1].VariantCount != 1 {
		t.Error("incorrect merged regions", regions)
	}
}

func TestDefaultRegionSize(t *testing.T) {
	if stats := NewStats(0); stats.RegionSize != DefaultRegionSize {
		t.Error("incorrect default region size", stats.RegionSize)
	}
}
