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
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

func writeReportFile(dir, name, runID string, write func(out *bufio.Writer)) (err error) {
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(file)
	_, _ = out.WriteString("# bioformats fastq report, run ")
	_, _ = out.WriteString(runID)
	_ = out.WriteByte('\n')
	write(out)
	return out.Flush()
}

// WriteReport stores the per-base quality, per-base content, and read
// length distribution tables as tab-separated files in the given
// report directory. The tables carry the same data the interactive
// quality plots of FASTQ viewers are drawn from.
func WriteReport(stats *Stats, dir, runID string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := writeReportFile(dir, "per-base-quality.tsv", runID, func(out *bufio.Writer) {
		_, _ = out.WriteString("position\tmean_quality\n")
		for i, q := range stats.PerBaseQuality() {
			_, _ = out.WriteString(strconv.Itoa(i + 1))
			_ = out.WriteByte('\t')
			_, _ = out.WriteString(strconv.FormatFloat(q, 'f', 2, 64))
			_ = out.WriteByte('\n')
		}
	}); err != nil {
		return err
	}

	if err := writeReportFile(dir, "per-base-content.tsv", runID, func(out *bufio.Writer) {
		content := stats.PerBaseContent()
		_, _ = out.WriteString("position")
		for _, base := range Bases {
			_ = out.WriteByte('\t')
			_ = out.WriteByte(base)
		}
		_ = out.WriteByte('\n')
		for i := 0; i < stats.MaxLength(); i++ {
			_, _ = out.WriteString(strconv.Itoa(i + 1))
			for _, base := range Bases {
				_ = out.WriteByte('\t')
				_, _ = out.WriteString(strconv.FormatFloat(content[base][i], 'f', 2, 64))
			}
			_ = out.WriteByte('\n')
		}
	}); err != nil {
		return err
	}

	return writeReportFile(dir, "length-distribution.tsv", runID, func(out *bufio.Writer) {
		lengths := make([]int, 0, len(stats.Lengths))
		for length := range stats.Lengths {
			lengths = append(lengths, length)
		}
		sort.Ints(lengths)
		_, _ = out.WriteString("length\treads\n")
		for _, length := range lengths {
			_, _ = out.WriteString(strconv.Itoa(length))
			_ = out.WriteByte('\t')
			_, _ = out.WriteString(strconv.Itoa(stats.Lengths[length]))
			_ = out.WriteByte('\n')
		}
	})
}
