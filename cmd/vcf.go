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
	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/vcf"
)

// VcfHelp is the help string for this command.
const VcfHelp = "\nvcf parameters:\n" +
	"bioformats vcf vcf-file\n" +
	"[--region-size size]\n" +
	"[--region chrom:start-end]\n" +
	"[--regions bed-or-vcf-file]\n" +
	"[--output vcf-file]\n" +
	"[--log-path path]\n" +
	"[--timed]\n"

func writeVariants(filename string, hdr *vcf.Header, variants []*vcf.Variant) (err error) {
	output, err := vcf.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := output.Close(); err == nil {
			err = nerr
		}
	}()
	out := &vcf.Vcf{Header: hdr, Variants: variants}
	return out.Format(output.Writer)
}

// variantsInRegions returns the variants that overlap with any of the
// given intervals, in file order. The intervals are sorted and
// flattened per chromosome before matching.
func variantsInRegions(filename string, regions map[string][]intervals.Interval) (hdr *vcf.Header, variants []*vcf.Variant, err error) {
	flattened := make(map[string][]intervals.Interval, len(regions))
	for chrom, ivals := range regions {
		intervals.ParallelSortByStart(ivals)
		flattened[chrom] = intervals.ParallelFlatten(ivals)
	}
	input, err := vcf.Open(filename, false)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if nerr := input.Close(); err == nil {
			err = nerr
		}
	}()
	hdr, _, err = vcf.ParseHeader(input.Reader)
	if err != nil {
		return nil, nil, err
	}
	vp, err := hdr.NewVariantParser()
	if err != nil {
		return nil, nil, err
	}
	err = vcf.ParseVariants(input, vp, func(variant *vcf.Variant) {
		if ivals, found := flattened[variant.Chrom]; found {
			if intervals.Overlap(ivals, variant.Start(), variant.End()) {
				variants = append(variants, variant)
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return hdr, variants, nil
}

// Vcf implements the bioformats vcf command.
func Vcf() error {
	var region, regions, output, logPath string
	var regionSize int
	var timed bool

	var flags flag.FlagSet
	flags.IntVar(&regionSize, "region-size", vcf.DefaultRegionSize, "bin width for the region statistics")
	flags.StringVar(&region, "region", "", "restrict the variants to a chrom:start-end region")
	flags.StringVar(&regions, "regions", "", "restrict the variants to the regions of a BED or VCF file")
	flags.StringVar(&output, "output", "", "write the matching variants to a VCF file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	parseFlags(flags, 3, VcfHelp)

	input := getFilename(os.Args[2], VcfHelp)

	setLogOutput(logPath, newRunID())

	if region != "" && regions != "" {
		log.Println("Error: Cannot combine --region and --regions.")
		fmt.Fprint(os.Stderr, VcfHelp)
		os.Exit(1)
	}

	ok := checkExist("", input)
	if regions != "" {
		ok = checkExist("--regions", regions) && ok
	}
	if output != "" {
		ok = checkCreate("--output", output) && ok
	}
	if !ok {
		os.Exit(1)
	}

	if region != "" || regions != "" {
		var hdr *vcf.Header
		var variants []*vcf.Variant
		var err error
		if region != "" {
			chrom, start, end, ok := parseRegion(region)
			if !ok {
				log.Fatalf("invalid region %v, expected chrom:start-end", region)
			}
			timedRun(timed, "Extracting variants in the requested region.", func() {
				hdr, variants, err = vcf.VariantsInRegion(input, chrom, start, end)
			})
		} else {
			timedRun(timed, "Extracting variants in the requested regions.", func() {
				var ivals map[string][]intervals.Interval
				if ivals, err = regionsFromFile(regions); err == nil {
					hdr, variants, err = variantsInRegions(input, ivals)
				}
			})
		}
		if err != nil {
			return err
		}
		fmt.Printf("variants_in_regions\t%v\n", len(variants))
		if output != "" {
			return writeVariants(output, hdr, variants)
		}
		return nil
	}

	var hdr *vcf.Header
	var stats *vcf.Stats
	var err error
	timedRun(timed, "Collecting VCF statistics.", func() {
		hdr, stats, err = vcf.CollectStats(input, int32(regionSize))
	})
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(out, "file\t%v\n", input)
	fmt.Fprintf(out, "fileformat\t%v\n", hdr.FileFormat)
	groups := hdr.GroupCounts()
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "header_lines\t%v\t%v\n", key, groups[key])
	}
	for _, sample := range hdr.Samples() {
		fmt.Fprintf(out, "sample\t%v\n", sample)
	}
	fmt.Fprintf(out, "variants\t%v\n", stats.Count)
	fmt.Fprintf(out, "region_size\t%v\n", stats.RegionSize)
	for _, region := range stats.Regions() {
		fmt.Fprintf(out, "region\t%v\t%v\t%v\t%v\n", region.Chrom, region.Start, region.TotalDepth, region.VariantCount)
	}
	return out.Flush()
}
