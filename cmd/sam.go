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
	"log"
	"os"
	"sort"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/intervals"
	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/sam"
)

// SamHelp is the help string for this command.
const SamHelp = "\nsam parameters:\n" +
	"bioformats sam sam-file\n" +
	"[--region chrom:start-end]\n" +
	"[--regions bed-or-vcf-file]\n" +
	"[--output sam-file]\n" +
	"[--log-path path]\n" +
	"[--timed]\n"

func writeAlignments(filename string, hdr *sam.Header, alns []*sam.Alignment) (err error) {
	output, err := sam.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := output.Close(); err == nil {
			err = nerr
		}
	}()
	hdr.SetHD_SO("coordinate")
	out := &sam.Sam{Header: hdr, Alignments: alns}
	return out.Format(output.Writer)
}

// Sam implements the bioformats sam command.
func Sam() error {
	var region, regions, output, logPath string
	var timed bool

	var flags flag.FlagSet
	flags.StringVar(&region, "region", "", "restrict the alignments to a chrom:start-end region")
	flags.StringVar(&regions, "regions", "", "restrict the alignments to the regions of a BED or VCF file")
	flags.StringVar(&output, "output", "", "write the matching alignments to a SAM or BAM file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	parseFlags(flags, 3, SamHelp)

	input := getFilename(os.Args[2], SamHelp)

	setLogOutput(logPath, newRunID())

	ok := checkExist("", input)
	if regions != "" {
		ok = checkExist("--regions", regions) && ok
	}
	if output != "" {
		ok = checkCreate("--output", output) && ok
	}
	if region != "" && regions != "" {
		log.Println("Error: Both --region and --regions used; pick one.")
		ok = false
	}
	if !ok {
		os.Exit(1)
	}

	if region != "" || regions != "" {
		var hdr *sam.Header
		var alns []*sam.Alignment
		var err error
		timedRun(timed, "Extracting alignments in the requested regions.", func() {
			if region != "" {
				chrom, start, end, ok := parseRegion(region)
				if !ok {
					log.Fatalf("invalid region %v, expected chrom:start-end", region)
				}
				hdr, alns, err = sam.FindInRegion(input, chrom, start, end)
			} else {
				var ivals map[string][]intervals.Interval
				if ivals, err = regionsFromFile(regions); err == nil {
					hdr, alns, err = sam.FindInRegions(input, ivals)
				}
			}
		})
		if err != nil {
			return err
		}
		fmt.Printf("alignments_in_regions\t%v\n", len(alns))
		if output != "" {
			return writeAlignments(output, hdr, alns)
		}
		return nil
	}

	var hdr *sam.Header
	var stats *sam.Stats
	var err error
	timedRun(timed, "Collecting SAM statistics.", func() {
		hdr, stats, err = sam.CollectStats(input)
	})
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(out, "file\t%v\n", input)
	groups := hdr.GroupCounts()
	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(out, "header_lines\t%v\t%v\n", code, groups[code])
	}
	fmt.Fprintf(out, "sorting_order\t%v\n", hdr.HD_SO())
	fmt.Fprintf(out, "grouping_order\t%v\n", hdr.HD_GO())
	fmt.Fprintf(out, "alignments\t%v\n", stats.Count)
	fmt.Fprintf(out, "mapped\t%v\n", stats.Mapped)
	fmt.Fprintf(out, "paired\t%v\n", stats.Paired)
	fmt.Fprintf(out, "properly_paired\t%v\n", stats.ProperlyPaired)
	fmt.Fprintf(out, "secondary\t%v\n", stats.Secondary)
	fmt.Fprintf(out, "supplementary\t%v\n", stats.Supplementary)
	fmt.Fprintf(out, "duplicates\t%v\n", stats.Duplicates)
	fmt.Fprintf(out, "qc_failed\t%v\n", stats.QCFailed)
	fmt.Fprintf(out, "unplaced\t%v\n", stats.Unplaced)
	fmt.Fprintf(out, "references_observed\t%v\t%v\n", stats.ObservedReferences(), len(hdr.SQ))
	for _, chrom := range stats.Chromosomes() {
		fmt.Fprintf(out, "chromosome\t%v\t%v\t%v\t%v\n", chrom.Chrom, chrom.Count, chrom.MinPos, chrom.MaxPos)
	}
	for _, sn := range stats.UnusedReferences() {
		fmt.Fprintf(out, "reference_unused\t%v\n", sn)
	}
	return out.Flush()
}
