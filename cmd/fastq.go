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
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/fastq"
)

// FastqHelp is the help string for this command.
const FastqHelp = "\nfastq parameters:\n" +
	"bioformats fastq fastq-file\n" +
	"[--report dir]\n" +
	"[--log-path path]\n" +
	"[--timed]\n"

// Fastq implements the bioformats fastq command.
func Fastq() error {
	var report, logPath string
	var timed bool

	var flags flag.FlagSet
	flags.StringVar(&report, "report", "", "write per-base quality, per-base content, and length distribution reports to the specified directory")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	parseFlags(flags, 3, FastqHelp)

	input := getFilename(os.Args[2], FastqHelp)

	runID := newRunID()
	setLogOutput(logPath, runID)

	ok := checkExist("", input)
	if report != "" {
		ok = checkCreate("--report", filepath.Join(report, "per-base-quality.tsv")) && ok
	}
	if !ok {
		os.Exit(1)
	}

	var stats *fastq.Stats
	timedRun(timed, "Collecting FASTQ statistics.", func() {
		stats = fastq.CollectStats(input)
	})

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(out, "file\t%v\n", input)
	fmt.Fprintf(out, "reads\t%v\n", stats.Count)
	fmt.Fprintf(out, "total_length\t%v\n", stats.TotalLength)
	fmt.Fprintf(out, "average_length\t%.2f\n", stats.AverageLength())
	fmt.Fprintf(out, "median_length\t%.2f\n", stats.MedianLength())
	fmt.Fprintf(out, "max_length\t%v\n", stats.MaxLength())
	if err := out.Flush(); err != nil {
		return err
	}

	if report != "" {
		return fastq.WriteReport(stats, report, runID)
	}
	return nil
}
