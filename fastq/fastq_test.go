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

package fastq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testFastq = "@read1 first read\n" +
	"ACGT\n" +
	"+\n" +
	"IIII\n" +
	"@read2\n" +
	"ACGTAC\n" +
	"+read2\n" +
	"IIIII!\n" +
	"@read3\n" +
	"NNGT\n" +
	"+\n" +
	"!!II\n"

func writeTestFastq(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "test.fastq")
	if err := os.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestParseFastq(t *testing.T) {
	filename := writeTestFastq(t, testFastq)
	var recs []Record
	ParseFastq(filename, func(rec Record) {
		recs = append(recs, rec)
	})
	if len(recs) != 3 {
		t.Fatal("incorrect number of reads", len(recs))
	}
	if recs[0].Name != "read1 first read" || recs[0].Sequence != "ACGT" || recs[0].Quality != "IIII" {
		t.Error("incorrect first read", recs[0])
	}
	if recs[1].Name != "read2" || recs[1].Sequence != "ACGTAC" {
		t.Error("incorrect second read", recs[1])
	}
}

func TestScores(t *testing.T) {
	rec := Record{Name: "read", Sequence: "AC", Quality: "I!"}
	scores := rec.Scores()
	if len(scores) != 2 || scores[0] != 40 || scores[1] != 0 {
		t.Error("incorrect Phred scores", scores)
	}
}

func TestFastqStats(t *testing.T) {
	filename := writeTestFastq(t, testFastq)
	stats := CollectStats(filename)
	if stats.Count != 3 {
		t.Error("incorrect read count", stats.Count)
	}
	if stats.TotalLength != 14 {
		t.Error("incorrect total length", stats.TotalLength)
	}
	if stats.MaxLength() != 6 {
		t.Error("incorrect maximum length", stats.MaxLength())
	}
	if stats.Lengths[4] != 2 || stats.Lengths[6] != 1 {
		t.Error("incorrect length distribution", stats.Lengths)
	}
	if avg := stats.AverageLength(); avg < 4.66 || avg > 4.67 {
		t.Error("incorrect average length", avg)
	}
	if stats.MedianLength() != 4 {
		t.Error("incorrect median length", stats.MedianLength())
	}
}

func TestPerBaseQuality(t *testing.T) {
	filename := writeTestFastq(t, testFastq)
	stats := CollectStats(filename)
	quality := stats.PerBaseQuality()
	if len(quality) != 6 {
		t.Fatal("incorrect number of positions", len(quality))
	}
	// position 0 covers I, I, and ! => (40+40+0)/3
	if quality[0] < 26.6 || quality[0] > 26.7 {
		t.Error("incorrect quality at position 0", quality[0])
	}
	// positions 4 and 5 are covered by read2 only
	if quality[4] != 40 || quality[5] != 0 {
		t.Error("incorrect quality at tail positions", quality[4], quality[5])
	}
}

func TestPerBaseContent(t *testing.T) {
	filename := writeTestFastq(t, testFastq)
	stats := CollectStats(filename)
	content := stats.PerBaseContent()
	for _, base := range Bases {
		if len(content[base]) != 6 {
			t.Fatal("incorrect number of positions for base", string(base))
		}
	}
	// position 0: A, A, N
	if a := content['A'][0]; a < 66.6 || a > 66.7 {
		t.Error("incorrect A content at position 0", a)
	}
	if n := content['N'][0]; n < 33.3 || n > 33.4 {
		t.Error("incorrect N content at position 0", n)
	}
	// position 4 is covered by read2 only
	if content['A'][4] != 100 {
		t.Error("incorrect A content at position 4", content['A'][4])
	}
}

func TestWriteReport(t *testing.T) {
	filename := writeTestFastq(t, testFastq)
	stats := CollectStats(filename)
	dir := filepath.Join(t.TempDir(), "reports", "fastq")
	if err := WriteReport(stats, dir, "run-1"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"per-base-quality.tsv", "per-base-content.tsv", "length-distribution.tsv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "# bioformats fastq report, run run-1\n") {
			t.Error("missing run line in report file", name)
		}
	}
}

func expectParsePanic(t *testing.T, contents string) {
	t.Helper()
	filename := writeTestFastq(t, contents)
	defer func() {
		if recover() == nil {
			t.Error("parsing did not fail for", contents)
		}
	}()
	ParseFastq(filename, func(Record) {})
}

func TestBadSeparator(t *testing.T) {
	expectParsePanic(t, "@read1\nACGT\nread1\nIIII\n")
}

func TestLengthMismatch(t *testing.T) {
	expectParsePanic(t, "@read1\nACGT\n+\nIII\n")
}

func TestTruncatedRecord(t *testing.T) {
	expectParsePanic(t, "@read1\nACGT\n+\n")
	expectParsePanic(t, "@read1\nACGT\n")
	expectParsePanic(t, "@read1\n")
}

func TestFastqStatsEmpty(t *testing.T) {
	filename := writeTestFastq(t, "")
	stats := CollectStats(filename)
	if stats.Count != 0 || stats.AverageLength() != 0 || stats.MedianLength() != 0 || stats.MaxLength() != 0 {
		t.Error("incorrect statistics for an empty file", stats)
	}
}
