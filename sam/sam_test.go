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

package sam

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

const testHeader = "@HD\tVN:1.6\tSO:coordinate\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"@SQ\tSN:chr2\tLN:2000\n" +
	"@SQ\tSN:chr3\tLN:3000\n" +
	"@RG\tID:group1\tSM:sample1\n" +
	"@CO\ta comment\n"

func TestParseHeader(t *testing.T) {
	hdr, _, err := ParseHeader(bufio.NewReader(strings.NewReader(testHeader)))
	if err != nil {
		t.Fatal(err)
	}
	if hdr.HD["VN"] != "1.6" || hdr.HD["SO"] != "coordinate" {
		t.Error("incorrect @HD line", hdr.HD)
	}
	if len(hdr.SQ) != 3 || hdr.SQ[0]["SN"] != "chr1" || hdr.SQ[2]["LN"] != "3000" {
		t.Error("incorrect @SQ lines", hdr.SQ)
	}
	if ln, err := SQ_LN(hdr.SQ[0]); err != nil || ln != 1000 {
		t.Error("incorrect @SQ LN value", ln, err)
	}
	if hdr.HD_SO() != "coordinate" || hdr.HD_GO() != "none" {
		t.Error("incorrect sorting or grouping order", hdr.HD)
	}
	if len(hdr.RG) != 1 || hdr.RG[0]["ID"] != "group1" {
		t.Error("incorrect @RG lines", hdr.RG)
	}
	if len(hdr.CO) != 1 || hdr.CO[0] != "a comment" {
		t.Error("incorrect @CO lines", hdr.CO)
	}
}

func TestGroupCounts(t *testing.T) {
	hdr, _, err := ParseHeader(bufio.NewReader(strings.NewReader(testHeader)))
	if err != nil {
		t.Fatal(err)
	}
	counts := hdr.GroupCounts()
	if counts["@HD"] != 1 || counts["@SQ"] != 3 || counts["@RG"] != 1 || counts["@CO"] != 1 {
		t.Error("incorrect header group counts", counts)
	}
	if _, found := counts["@PG"]; found {
		t.Error("unexpected @PG count", counts)
	}
}

func TestParseAlignment(t *testing.T) {
	var sc StringScanner
	sc.Reset("read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\tNM:i:2\tMD:Z:4")
	aln := sc.ParseAlignment()
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if aln.QNAME != "read1" || aln.FLAG != 0 || aln.RNAME != "chr1" || aln.POS != 100 {
		t.Error("incorrect mandatory fields", aln)
	}
	if aln.MAPQ != 60 || aln.CIGAR != "4M" || aln.SEQ != "ACGT" || aln.QUAL != "IIII" {
		t.Error("incorrect mandatory fields", aln)
	}
	if nm, found := aln.TAGS.Get(utils.Intern("NM")); !found || nm != int32(2) {
		t.Error("incorrect NM tag", aln.TAGS)
	}
}

func TestAlignmentEnd(t *testing.T) {
	for _, test := range []struct {
		cigar string
		end   int32
	}{
		{"10M", 109},
		{"5M2D3M", 109},
		{"5M2I5M", 109},
		{"3S5M2S", 104},
		{"5M100N5M", 209},
		{"*", 100},
	} {
		aln := NewAlignment()
		aln.POS = 100
		aln.CIGAR = test.cigar
		if end := aln.End(); end != test.end {
			t.Error("incorrect end for CIGAR", test.cigar, end)
		}
	}
}

func TestOverlaps(t *testing.T) {
	aln := NewAlignment()
	aln.POS = 100
	aln.CIGAR = "10M"
	if !aln.Overlaps(109, 200) {
		t.Error("Overlaps failed at the right edge")
	}
	if !aln.Overlaps(50, 100) {
		t.Error("Overlaps failed at the left edge")
	}
	if !aln.Overlaps(104, 106) {
		t.Error("Overlaps failed for a contained range")
	}
	if aln.Overlaps(110, 200) || aln.Overlaps(50, 99) {
		t.Error("Overlaps matched a disjoint range")
	}
}

func TestCoordinateLess(t *testing.T) {
	aln := func(rname string, pos int32) *Alignment {
		a := NewAlignment()
		a.RNAME = rname
		a.POS = pos
		return a
	}
	if !CoordinateLess(aln("chr1", 200), aln("chr2", 100)) {
		t.Error("CoordinateLess failed across chromosomes")
	}
	if !CoordinateLess(aln("chr1", 100), aln("chr1", 200)) {
		t.Error("CoordinateLess failed within a chromosome")
	}
	if !CoordinateLess(aln("chr1", 100), aln("*", 0)) {
		t.Error("CoordinateLess failed to sort unmapped alignments last")
	}
	if CoordinateLess(aln("*", 0), aln("chr1", 100)) {
		t.Error("CoordinateLess sorted an unmapped alignment first")
	}
}

func TestFlagPredicates(t *testing.T) {
	aln := NewAlignment()
	aln.FLAG = Multiple | Proper | Reversed | First
	if !aln.IsMultiple() || !aln.IsProper() || !aln.IsReversed() || !aln.IsFirst() {
		t.Error("flag predicates failed for set bits")
	}
	if aln.IsUnmapped() || aln.IsNextUnmapped() || aln.IsNextReversed() || aln.IsLast() ||
		aln.IsSecondary() || aln.IsQCFailed() || aln.IsDuplicate() || aln.IsSupplementary() {
		t.Error("flag predicates failed for clear bits")
	}
	if !aln.FlagEvery(Multiple|Proper) || aln.FlagEvery(Multiple|Unmapped) {
		t.Error("FlagEvery failed")
	}
	if !aln.FlagSome(Multiple|Unmapped) || aln.FlagSome(Unmapped|Secondary) {
		t.Error("FlagSome failed")
	}
	if !aln.FlagNotEvery(Multiple|Unmapped) || aln.FlagNotEvery(Multiple|Proper) {
		t.Error("FlagNotEvery failed")
	}
	if !aln.FlagNotAny(Unmapped|Secondary) || aln.FlagNotAny(Multiple|Unmapped) {
		t.Error("FlagNotAny failed")
	}
}

func testStatsHeader() *Header {
	hdr := NewHeader()
	hdr.SQ = []utils.StringMap{
		{"SN": "chr1", "LN": "1000"},
		{"SN": "chr2", "LN": "2000"},
		{"SN": "chr3", "LN": "3000"},
	}
	return hdr
}

func TestStats(t *testing.T) {
	stats := NewStats(testStatsHeader())
	add := func(rname string, pos int32) {
		aln := NewAlignment()
		aln.RNAME = rname
		aln.POS = pos
		stats.Add(aln)
	}
	add("chr1", 500)
	add("chr1", 100)
	add("chr1", 900)
	add("chr2", 250)
	add("*", 0)
	if stats.Count != 5 {
		t.Error("incorrect alignment count", stats.Count)
	}
	if stats.Unplaced != 1 {
		t.Error("incorrect unplaced count", stats.Unplaced)
	}
	chroms := stats.Chromosomes()
	if len(chroms) != 2 {
		t.Fatal("incorrect number of chromosomes", len(chroms))
	}
	if chroms[0].Chrom != "chr1" || chroms[0].Count != 3 || chroms[0].MinPos != 100 || chroms[0].MaxPos != 900 {
		t.Error("incorrect chr1 statistics", chroms[0])
	}
	if chroms[1].Chrom != "chr2" || chroms[1].Count != 1 || chroms[1].MinPos != 250 || chroms[1].MaxPos != 250 {
		t.Error("incorrect chr2 statistics", chroms[1])
	}
	if stats.ObservedReferences() != 2 {
		t.Error("incorrect observed reference count", stats.ObservedReferences())
	}
	unused := stats.UnusedReferences()
	if len(unused) != 1 || unused[0] != "chr3" {
		t.Error("incorrect unused references", unused)
	}
}

func TestStatsFlagCounts(t *testing.T) {
	stats := NewStats(testStatsHeader())
	add := func(flag uint16) {
		aln := NewAlignment()
		aln.RNAME = "chr1"
		aln.POS = 100
		aln.FLAG = flag
		stats.Add(aln)
	}
	add(Multiple | Proper | First)
	add(Multiple | Proper | Last)
	add(Multiple | Unmapped | First)
	add(Secondary)
	add(Supplementary | Duplicate)
	add(QCFailed)
	if stats.Mapped != 5 {
		t.Error("incorrect mapped count", stats.Mapped)
	}
	if stats.Paired != 3 {
		t.Error("incorrect paired count", stats.Paired)
	}
	if stats.ProperlyPaired != 2 {
		t.Error("incorrect properly paired count", stats.ProperlyPaired)
	}
	if stats.Secondary != 1 || stats.Supplementary != 1 || stats.Duplicates != 1 || stats.QCFailed != 1 {
		t.Error("incorrect flag counts", stats)
	}
}

func TestParseAlignments(t *testing.T) {
	input := "read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
		"read2\t16\tchr2\t200\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	var alns []*Alignment
	err := ParseAlignments(bufio.NewReader(strings.NewReader(input)), func(aln *Alignment) {
		alns = append(alns, aln)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(alns) != 2 || alns[0].QNAME != "read1" || alns[1].RNAME != "chr2" {
		t.Error("incorrect alignments", alns)
	}
}

func TestCollectStatsGzip(t *testing.T) {
	contents := testHeader +
		"read1\t0\tchr1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
		"read2\t16\tchr2\t200\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	filename := filepath.Join(t.TempDir(), "test.sam.gz")
	file, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(file)
	if _, err := gz.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}
	hdr, stats, err := CollectStats(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(hdr.SQ) != 3 {
		t.Error("incorrect @SQ lines", hdr.SQ)
	}
	if stats.Count != 2 || stats.Mapped != 2 {
		t.Error("incorrect alignment counts", stats.Count, stats.Mapped)
	}
	chroms := stats.Chromosomes()
	if len(chroms) != 2 || chroms[0].Chrom != "chr1" || chroms[1].Chrom != "chr2" {
		t.Error("incorrect chromosome statistics", chroms)
	}
}
