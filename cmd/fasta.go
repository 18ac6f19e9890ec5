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

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/fasta"
)

// FastaHelp is the help string for this command.
const FastaHelp = "\nfasta parameters:\n" +
	"bioformats fasta fasta-file\n" +
	"[--index seqidx-file]\n" +
	"[--log-path path]\n" +
	"[--timed]\n"

// Fasta implements the bioformats fasta command.
func Fasta() error {
	var index, logPath string
	var timed bool

	var flags flag.FlagSet
	flags.StringVar(&index, "index", "", "read sequence lengths from a .seqidx file instead of the FASTA file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	parseFlags(flags, 3, FastaHelp)

	input := getFilename(os.Args[2], FastaHelp)

	runID := newRunID()
	setLogOutput(logPath, runID)

	if index == "" {
		if !checkExist("", input) {
			os.Exit(1)
		}
	} else if !checkExist("--index", index) {
		os.Exit(1)
	}

	var stats *fasta.Stats
	timedRun(timed, "Collecting FASTA statistics.", func() {
		if index != "" {
			idx := fasta.OpenIndex(index)
			defer idx.Close()
			stats = idx.Stats()
		} else {
			stats = fasta.CollectStats(input)
		}
	})

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(out, "file\t%v\n", input)
	fmt.Fprintf(out, "sequences\t%v\n", stats.Count)
	fmt.Fprintf(out, "total_length\t%v\n", stats.TotalLength)
	fmt.Fprintf(out, "average_length\t%.2f\n", stats.AverageLength)
	fmt.Fprintf(out, "median_length\t%.2f\n", stats.MedianLength)
	fmt.Fprintf(out, "min_length\t%v\n", stats.MinLength)
	fmt.Fprintf(out, "max_length\t%v\n", stats.MaxLength)
	return out.Flush()
}

// SeqIndexHelp is the help string for this command.
const SeqIndexHelp = "\nseq-index parameters:\n" +
	"bioformats seq-index fasta-file seqidx-file\n" +
	"[--log-path path]\n"

// SeqIndex implements the bioformats seq-index command.
func SeqIndex() error {
	var logPath string

	var flags flag.FlagSet
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(flags, 4, SeqIndexHelp)

	input := getFilename(os.Args[2], SeqIndexHelp)
	output := getFilename(os.Args[3], SeqIndexHelp)

	setLogOutput(logPath, newRunID())

	if !checkExist("", input) || !checkCreate("", output) {
		os.Exit(1)
	}

	fasta.WriteIndex(input, output)
	return nil
}
