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

package bed

import (
	"log"
	"sort"
	"strconv"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

// Bed is a struct for representing the contents of a BED file. See
// https://genome.ucsc.edu/FAQ/FAQformat.html#format1
type Bed struct {
	// Maps chromosome name onto bed regions.
	RegionMap map[utils.Symbol][]*Region
}

// A Region is a struct for representing intervals as defined in a BED
// file. Start is 0-based inclusive, End is 0-based exclusive.
type Region struct {
	Chrom          utils.Symbol
	Start          int32
	End            int32
	OptionalFields []interface{}
}

// Symbols for the optional strand field of a Region.
var (
	// Strand forward.
	SF = utils.Intern("+")
	// Strand reverse.
	SR = utils.Intern("-")
)

// NewRegion allocates and initializes a new Region. Optional fields
// are given in order. If a "later" field is entered, then the
// "earlier" field was entered as well.
func NewRegion(chrom utils.Symbol, start int32, end int32, fields []string) *Region {
	return &Region{
		Chrom:          chrom,
		Start:          start,
		End:            end,
		OptionalFields: initializeRegionFields(fields),
	}
}

// The valid bed region optional fields, in file order.
const (
	brName = iota
	brScore
	brStrand
	brThickStart
	brThickEnd
	brItemRgb
	brBlockCount
	brBlockSizes
	brBlockStarts
)

func initializeRegionFields(fields []string) []interface{} {
	brFields := make([]interface{}, len(fields))
	for i, val := range fields {
		switch i {
		case brName:
			brFields[brName] = val
		case brScore:
			score, err := strconv.Atoi(val)
			if err != nil || score < 0 || score > 1000 {
				log.Panicf("invalid Score field: %v", val)
			}
			brFields[brScore] = score
		case brStrand:
			if val != "+" && val != "-" {
				log.Panicf("invalid Strand field: %v", val)
			}
			brFields[brStrand] = utils.Intern(val)
		case brThickStart:
			start, err := strconv.Atoi(val)
			if err != nil {
				log.Panicf("invalid ThickStart field: %v", val)
			}
			brFields[brThickStart] = start
		case brThickEnd:
			end, err := strconv.Atoi(val)
			if err != nil {
				log.Panicf("invalid ThickEnd field: %v", val)
			}
			brFields[brThickEnd] = end
		case brItemRgb:
			brFields[brItemRgb] = val == "on"
		case brBlockCount:
			count, err := strconv.Atoi(val)
			if err != nil {
				log.Panicf("invalid BlockCount field: %v", val)
			}
			brFields[brBlockCount] = count
		case brBlockSizes:
			sizes, err := strconv.Atoi(val)
			if err != nil {
				log.Panicf("invalid BlockSizes field: %v", val)
			}
			brFields[brBlockSizes] = sizes
		case brBlockStarts:
			start, err := strconv.Atoi(val)
			if err != nil {
				log.Panicf("invalid BlockStarts field: %v", val)
			}
			brFields[brBlockStarts] = start
		default:
			log.Panicf("invalid optional field: %v out of 0-8", val)
		}
	}
	return brFields
}

// NewBed allocates and initializes an empty bed.
func NewBed() *Bed {
	return &Bed{
		RegionMap: make(map[utils.Symbol][]*Region),
	}
}

// AddRegion adds a region to the bed region map.
func (bed *Bed) AddRegion(region *Region) {
	bed.RegionMap[region.Chrom] = append(bed.RegionMap[region.Chrom], region)
}

func sortRegions(bed *Bed) {
	for _, regions := range bed.RegionMap {
		sort.SliceStable(regions, func(i, j int) bool {
			return regions[i].Start < regions[j].Start
		})
	}
}
