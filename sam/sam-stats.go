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

package sam

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/willf/bitset"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/intervals"
)

// GroupCounts counts the header lines per record type code. User-defined
// record types are counted under their own code.
func (hdr *Header) GroupCounts() map[string]int {
	counts := make(map[string]int)
	if hdr.HD != nil {
		counts["@HD"] = 1
	}
	if len(hdr.SQ) > 0 {
		counts["@SQ"] = len(hdr.SQ)
	}
	if len(hdr.RG) > 0 {
		counts["@RG"] = len(hdr.RG)
	}
	if len(hdr.PG) > 0 {
		counts["@PG"] = len(hdr.PG)
	}
	if len(hdr.CO) > 0 {
		counts["@CO"] = len(hdr.CO)
	}
	for code, records := range hdr.UserRecords {
		counts[code] = len(records)
	}
	return counts
}

// ChromosomeStat accumulates the alignment count and the position
// extrema for the alignments mapped to one reference sequence.
type ChromosomeStat struct {
	Chrom  string
	Count  int
	MinPos int32
	MaxPos int32
}

// Stats accumulates counts over the alignment section of a SAM file.
// Alignments with an unmapped reference name ("*") contribute to Count
// and Unplaced, but not to the per-chromosome statistics. The flag
// counts follow the FLAG field bit values.
type Stats struct {
	Count          int
	Unplaced       int
	Mapped         int
	Paired         int
	ProperlyPaired int
	Secondary      int
	Supplementary  int
	Duplicates     int
	QCFailed       int
	chroms         map[string]*ChromosomeStat
	refIndex       map[string]uint
	observed       *bitset.BitSet
}

// NewStats initializes statistics for the reference sequences declared
// in the @SQ lines of the given header.
func NewStats(hdr *Header) *Stats {
	refIndex := make(map[string]uint, len(hdr.SQ))
	for i, sq := range hdr.SQ {
		if sn, found := sq["SN"]; found {
			refIndex[sn] = uint(i)
		}
	}
	return &Stats{
		chroms:   make(map[string]*ChromosomeStat),
		refIndex: refIndex,
		observed: bitset.New(uint(len(hdr.SQ))),
	}
}

// Add records one alignment.
func (stats *Stats) Add(aln *Alignment) {
	stats.Count++
	if aln.FlagNotAny(Unmapped) {
		stats.Mapped++
	}
	if aln.IsMultiple() {
		stats.Paired++
	}
	if aln.FlagEvery(Multiple | Proper) {
		stats.ProperlyPaired++
	}
	if aln.IsSecondary() {
		stats.Secondary++
	}
	if aln.IsSupplementary() {
		stats.Supplementary++
	}
	if aln.IsDuplicate() {
		stats.Duplicates++
	}
	if aln.IsQCFailed() {
		stats.QCFailed++
	}
	if aln.RNAME == "*" {
		stats.Unplaced++
		return
	}
	if index, found := stats.refIndex[aln.RNAME]; found {
		stats.observed.Set(index)
	}
	chrom, found := stats.chroms[aln.RNAME]
	if !found {
		chrom = &ChromosomeStat{Chrom: aln.RNAME, MinPos: aln.POS, MaxPos: aln.POS}
		stats.chroms[aln.RNAME] = chrom
	}
	chrom.Count++
	if aln.POS < chrom.MinPos {
		chrom.MinPos = aln.POS
	}
	if aln.POS > chrom.MaxPos {
		chrom.MaxPos = aln.POS
	}
}

// Chromosomes returns the per-chromosome statistics sorted by
// chromosome name.
func (stats *Stats) Chromosomes() []ChromosomeStat {
	result := make([]ChromosomeStat, 0, len(stats.chroms))
	for _, chrom := range stats.chroms {
		result = append(result, *chrom)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Chrom < result[j].Chrom
	})
	return result
}

// ObservedReferences returns how many of the reference sequences
// declared in the @SQ lines received at least one alignment.
func (stats *Stats) ObservedReferences() uint {
	return stats.observed.Count()
}

// UnusedReferences returns the names of the reference sequences
// declared in the @SQ lines that received no alignments, sorted by
// name.
func (stats *Stats) UnusedReferences() []string {
	var result []string
	for sn, index := range stats.refIndex {
		if !stats.observed.Test(index) {
			result = append(result, sn)
		}
	}
	sort.Strings(result)
	return result
}

// ParseAlignments parses the alignment section of a SAM file, invoking
// yield for every alignment. The reader must be positioned past the
// header section.
func ParseAlignments(reader *bufio.Reader, yield func(*Alignment)) error {
	var sc StringScanner
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			sc.Reset(line)
			aln := sc.ParseAlignment()
			if serr := sc.Err(); serr != nil {
				return fmt.Errorf("%v, while parsing SAM alignment %v", serr, line)
			}
			yield(aln)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// CollectStats opens a SAM, BAM, or CRAM file, parses its header, and
// accumulates alignment statistics over the full alignment section.
func CollectStats(filename string) (hdr *Header, stats *Stats, err error) {
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
	stats = NewStats(hdr)
	err = ParseAlignments(input.Reader, stats.Add)
	return hdr, stats, err
}

// Overlaps tells whether the alignment covers any position in the
// 1-based inclusive start/end range.
func (aln *Alignment) Overlaps(start, end int32) bool {
	return aln.End() >= start && aln.POS <= end
}

// FindInRegion opens a SAM, BAM, or CRAM file and returns all
// alignments on the given chromosome that overlap with the 1-based
// inclusive start/end range, sorted by coordinate.
func FindInRegion(filename, chrom string, start, end int32) (hdr *Header, alns []*Alignment, err error) {
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
	err = ParseAlignments(input.Reader, func(aln *Alignment) {
		if aln.RNAME == chrom && aln.Overlaps(start, end) {
			alns = append(alns, aln)
		}
	})
	if err != nil {
		return nil, nil, err
	}
	By(CoordinateLess).ParallelStableSort(alns)
	return hdr, alns, nil
}

// FindInRegions opens a SAM, BAM, or CRAM file and returns all
// alignments that overlap with any of the given intervals, sorted by
// coordinate. The intervals are sorted and flattened per chromosome
// before matching.
func FindInRegions(filename string, regions map[string][]intervals.Interval) (hdr *Header, alns []*Alignment, err error) {
	flattened := make(map[string][]intervals.Interval, len(regions))
	for chrom, ivals := range regions {
		intervals.ParallelSortByStart(ivals)
		flattened[chrom] = intervals.ParallelFlatten(ivals)
	}
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
	err = ParseAlignments(input.Reader, func(aln *Alignment) {
		if ivals, found := flattened[aln.RNAME]; found {
			if intervals.Overlap(ivals, aln.POS, aln.End()) {
				alns = append(alns, aln)
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}
	By(CoordinateLess).ParallelStableSort(alns)
	return hdr, alns, nil
}
