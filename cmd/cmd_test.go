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

package cmd

import "testing"

func TestDetectFormat(t *testing.T) {
	for _, test := range []struct {
		filename string
		format   string
	}{
		{"reads.fasta", "fasta"},
		{"reads.fa", "fasta"},
		{"genome.fna.gz", "fasta"},
		{"reads.fastq", "fastq"},
		{"reads.FQ.GZ", "fastq"},
		{"sample.sam", "sam"},
		{"sample.bam", "sam"},
		{"sample.cram", "sam"},
		{"calls.vcf", "vcf"},
		{"calls.vcf.gz", "vcf"},
		{"calls.bcf", "vcf"},
	} {
		format, err := DetectFormat(test.filename)
		if err != nil {
			t.Error("unexpected error for", test.filename, err)
		} else if format != test.format {
			t.Error("incorrect format for", test.filename, format)
		}
	}
	if _, err := DetectFormat("notes.txt"); err == nil {
		t.Error("missing error for an unknown extension")
	}
	if _, err := DetectFormat("archive.gz"); err == nil {
		t.Error("missing error for a bare .gz file")
	}
}

func TestParseRegion(t *testing.T) {
	chrom, start, end, ok := parseRegion("chr1:100-200")
	if !ok || chrom != "chr1" || start != 100 || end != 200 {
		t.Error("incorrect region", chrom, start, end, ok)
	}
	chrom, start, end, ok = parseRegion("HLA-A*01:01:100-200")
	if !ok || chrom != "HLA-A*01:01" || start != 100 || end != 200 {
		t.Error("incorrect region with colons in the chromosome name", chrom, start, end, ok)
	}
	for _, region := range []string{"chr1", "chr1:100", "chr1:a-b", "chr1:200-100", ":100-200"} {
		if _, _, _, ok := parseRegion(region); ok {
			t.Error("missing error for invalid region", region)
		}
	}
}
