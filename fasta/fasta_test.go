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

package fasta

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

const testFasta = ">chr1 test chromosome 1\n" +
	"ACGTACGTAC\n" +
	"ACGT\n" +
	"\n" +
	">chr2\n" +
	"ACGTACGTACGTACGTACGT\n" +
	"ACGTACGTAC\n" +
	">chr3\n" +
	"ACGT\n"

func writeTestFasta(t *testing.T, name, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestParseFasta(t *testing.T) {
	filename := writeTestFasta(t, "test.fasta", testFasta)
	var seqs []Sequence
	ParseFasta(filename, func(seq Sequence) {
		seqs = append(seqs, seq)
	})
	if len(seqs) != 3 {
		t.Fatal("incorrect number of sequences", len(seqs))
	}
	if seqs[0].Name != "chr1" || seqs[0].Header != "chr1 test chromosome 1" || seqs[0].Length != 14 {
		t.Error("incorrect first sequence", seqs[0])
	}
	if seqs[1].Name != "chr2" || seqs[1].Length != 30 {
		t.Error("incorrect second sequence", seqs[1])
	}
	if seqs[2].Name != "chr3" || seqs[2].Length != 4 {
		t.Error("incorrect third sequence", seqs[2])
	}
}

func TestParseFastaGzip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.fasta.gz")
	file, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(file)
	if _, err := gz.Write([]byte(testFasta)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}
	count := 0
	ParseFasta(filename, func(seq Sequence) {
		count++
	})
	if count != 3 {
		t.Error("incorrect number of sequences in gzip input", count)
	}
}

func TestCollectStats(t *testing.T) {
	filename := writeTestFasta(t, "test.fasta", testFasta)
	stats := CollectStats(filename)
	if stats.Count != 3 {
		t.Error("incorrect sequence count", stats.Count)
	}
	if stats.TotalLength != 48 {
		t.Error("incorrect total length", stats.TotalLength)
	}
	if stats.AverageLength != 16 {
		t.Error("incorrect average length", stats.AverageLength)
	}
	if stats.MedianLength != 14 {
		t.Error("incorrect median length", stats.MedianLength)
	}
	if stats.MinLength != 4 || stats.MaxLength != 30 {
		t.Error("incorrect length extrema", stats.MinLength, stats.MaxLength)
	}
}

func TestCollectStatsEmpty(t *testing.T) {
	filename := writeTestFasta(t, "empty.fasta", "")
	stats := CollectStats(filename)
	if stats.Count != 0 || stats.TotalLength != 0 || stats.AverageLength != 0 {
		t.Error("incorrect statistics for an empty file", stats)
	}
}

func TestMissingFirstHeader(t *testing.T) {
	filename := writeTestFasta(t, "bad.fasta", "ACGT\n")
	defer func() {
		if recover() == nil {
			t.Error("parsing did not fail for a file without a first header")
		}
	}()
	ParseFasta(filename, func(Sequence) {})
}

func TestTrailingHeader(t *testing.T) {
	filename := writeTestFasta(t, "trailing.fasta", ">chr1\nACGT\n>chr2\n")
	var seqs []Sequence
	ParseFasta(filename, func(seq Sequence) {
		seqs = append(seqs, seq)
	})
	if len(seqs) != 1 || seqs[0].Name != "chr1" {
		t.Error("trailing header without sequence lines not dropped", seqs)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.fasta")
	if err := os.WriteFile(filename, []byte(testFasta), 0666); err != nil {
		t.Fatal(err)
	}
	idxname := filepath.Join(dir, "test.seqidx")
	WriteIndex(filename, idxname)
	idx := OpenIndex(idxname)
	defer idx.Close()
	seqs := idx.Sequences()
	if len(seqs) != 3 {
		t.Fatal("incorrect number of index entries", len(seqs))
	}
	if seqs[0].Name != "chr1" || seqs[0].Length != 14 {
		t.Error("incorrect first index entry", seqs[0])
	}
	stats := idx.Stats()
	if stats.Count != 3 || stats.TotalLength != 48 {
		t.Error("incorrect index statistics", stats)
	}
}
