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

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AnalyzeHelp is the help string for this command.
const AnalyzeHelp = "\nanalyze parameters:\n" +
	"bioformats analyze file\n" +
	"(detects the format from the filename extension and accepts the\n" +
	"flags of the corresponding command)\n"

// DetectFormat determines the file format from the filename extension.
// A trailing .gz is stripped first. It returns one of "fasta", "fastq",
// "sam", or "vcf", or an error for unknown extensions.
func DetectFormat(filename string) (string, error) {
	name := filename
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".gz") {
		name = name[:len(name)-len(ext)]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fasta", ".fa", ".fna", ".faa":
		return "fasta", nil
	case ".fastq", ".fq":
		return "fastq", nil
	case ".sam", ".bam", ".cram":
		return "sam", nil
	case ".vcf", ".bcf":
		return "vcf", nil
	default:
		return "", fmt.Errorf("cannot detect the format of %v from its filename extension", filename)
	}
}

// Analyze implements the bioformats analyze command. It dispatches to
// the fasta, fastq, sam, or vcf command based on the filename
// extension.
func Analyze(filename string) error {
	format, err := DetectFormat(filename)
	if err != nil {
		return err
	}
	switch format {
	case "fasta":
		return Fasta()
	case "fastq":
		return Fastq()
	case "sam":
		return Sam()
	default:
		return Vcf()
	}
}
