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

package vcf

import (
	"fmt"
	"io"
	"sort"

	"github.com/exascience/pargo/pipeline"
)

// DefaultRegionSize is the bin width used for region statistics when
// no explicit size is requested.
const DefaultRegionSize = 1000

// GroupCounts counts the meta-information lines of the header per key.
// INFO and FORMAT lines are counted under their own keys.
func (hdr *Header) GroupCounts() map[string]int {
	counts := make(map[string]int)
	if len(hdr.Infos) > 0 {
		counts["INFO"] = len(hdr.Infos)
	}
	if len(hdr.Formats) > 0 {
		counts["FORMAT"] = len(hdr.Formats)
	}
	for key, metas := range hdr.Meta {
		counts[key] = len(metas)
	}
	return counts
}

func (hdr *Header) metaInformation(key string) []*MetaInformation {
	var result []*MetaInformation
	for _, meta := range hdr.Meta[key] {
		if m, ok := meta.(*MetaInformation); ok {
			result = append(result, m)
		}
	}
	return result
}

// Filters returns the structured ##FILTER lines of the header.
func (hdr *Header) Filters() []*MetaInformation {
	return hdr.metaInformation("FILTER")
}

// Alternates returns the structured ##ALT lines of the header.
func (hdr *Header) Alternates() []*MetaInformation {
	return hdr.metaInformation("ALT")
}

// Contigs returns the structured ##contig lines of the header.
func (hdr *Header) Contigs() []*MetaInformation {
	return hdr.metaInformation("contig")
}

// Samples returns the sample names from the column header line, if any.
func (hdr *Header) Samples() []string {
	if len(hdr.Columns) <= len(DefaultHeaderColumns)+1 {
		return nil
	}
	return hdr.Columns[len(DefaultHeaderColumns)+1:]
}

// RegionStat accumulates the total read depth and the variant count
// for one bin of the reference.
type RegionStat struct {
	Chrom        string
	Start        int32
	TotalDepth   int
	VariantCount int
}

// Stats accumulates counts over the variant section of a VCF file,
// binned into fixed-size regions per chromosome.
type Stats struct {
	RegionSize int32
	Count      int
	regions    map[string]map[int32]*RegionStat
}

// NewStats initializes statistics with the given bin width.
// A non-positive width selects DefaultRegionSize.
func NewStats(regionSize int32) *Stats {
	if regionSize <= 0 {
		regionSize = DefaultRegionSize
	}
	return &Stats{
		RegionSize: regionSize,
		regions:    make(map[string]map[int32]*RegionStat),
	}
}

// Add records one variant. Variants with an unknown position
// contribute to Count but not to the region bins.
func (stats *Stats) Add(variant *Variant) {
	stats.Count++
	if variant.Pos < 0 {
		return
	}
	start := (variant.Pos / stats.RegionSize) * stats.RegionSize
	bins, found := stats.regions[variant.Chrom]
	if !found {
		bins = make(map[int32]*RegionStat)
		stats.regions[variant.Chrom] = bins
	}
	region, found := bins[start]
	if !found {
		region = &RegionStat{Chrom: variant.Chrom, Start: start}
		bins[start] = region
	}
	region.TotalDepth += variant.Depth()
	region.VariantCount++
}

// Merge adds the counts of other into stats. Both must use the same
// bin width.
func (stats *Stats) Merge(other *Stats) {
	stats.Count += other.Count
	for chrom, bins := range other.regions {
		dst, found := stats.regions[chrom]
		if !found {
			stats.regions[chrom] = bins
			continue
		}
		for start, region := range bins {
			if existing, found := dst[start]; found {
				existing.TotalDepth += region.TotalDepth
				existing.VariantCount += region.VariantCount
			} else {
				dst[start] = region
			}
		}
	}
}

// Regions returns the non-empty region bins sorted by chromosome name
// and bin start.
func (stats *Stats) Regions() []RegionStat {
	var result []RegionStat
	for _, bins := range stats.regions {
		for _, region := range bins {
			result = append(result, *region)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Chrom != result[j].Chrom {
			return result[i].Chrom < result[j].Chrom
		}
		return result[i].Start < result[j].Start
	})
	return result
}

// CollectStats opens a VCF or BCF file, parses its header, and
// accumulates region statistics over the full variant section, using a
// parallel pipeline. Sample columns are not parsed.
func CollectStats(filename string, regionSize int32) (hdr *Header, stats *Stats, err error) {
	input, err := Open(filename, false)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if nerr := input.Close(); err == nil {
			err = nerr
		}
	}()
	hdr, _, err = ParseHeader(input.Reader)
	if err != nil {
		return nil, nil, err
	}
	vp, err := hdr.NewVariantParser()
	if err != nil {
		return nil, nil, err
	}
	vp.NSamples = 0 // the region statistics only need the fixed columns
	stats = NewStats(regionSize)
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(input.Reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		partial := NewStats(stats.RegionSize)
		var sc StringScanner
		for _, line := range lines {
			sc.Reset(line)
			variant := sc.ParseVariant(vp)
			if serr := sc.Err(); serr != nil {
				p.SetErr(fmt.Errorf("%v, while parsing VCF variant %v", serr, line))
				return partial
			}
			partial.Add(variant)
		}
		return partial
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		stats.Merge(data.(*Stats))
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, nil, err
	}
	return hdr, stats, nil
}

// ParseVariants parses the variant section of a VCF file, invoking
// yield for every variant. The reader must be positioned past the
// header section.
func ParseVariants(input *InputFile, vp *VariantParser, yield func(*Variant)) error {
	var sc StringScanner
	for {
		line, err := input.ReadString('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			sc.Reset(line)
			variant := sc.ParseVariant(vp)
			if serr := sc.Err(); serr != nil {
				return fmt.Errorf("%v, while parsing VCF variant %v", serr, line)
			}
			yield(variant)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// VariantsInRegion opens a VCF or BCF file and returns all variants on
// the given chromosome whose position falls in the 1-based inclusive
// start/end range, in file order.
func VariantsInRegion(filename, chrom string, start, end int32) (hdr *Header, variants []*Variant, err error) {
	input, err := Open(filename, false)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if nerr := input.Close(); err == nil {
			err = nerr
		}
	}()
	hdr, _, err = ParseHeader(input.Reader)
	if err != nil {
		return nil, nil, err
	}
	vp, err := hdr.NewVariantParser()
	if err != nil {
		return nil, nil, err
	}
	err = ParseVariants(input, vp, func(variant *Variant) {
		if variant.Chrom == chrom && variant.Pos >= start && variant.Pos <= end {
			variants = append(variants, variant)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return hdr, variants, nil
}
