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
	"bufio"
	"log"
	"strings"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/internal"
	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

// ParseBed parses a BED file. Track and browser lines and comments are
// skipped. See https://genome.ucsc.edu/FAQ/FAQformat.html#format1
func ParseBed(filename string) *Bed {
	bed := NewBed()

	file := internal.FileOpen(filename)
	defer internal.Close(file)

	scanner := bufio.NewScanner(utils.HandleGzip(bufio.NewReader(file)))

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") ||
			strings.HasPrefix(line, "browser") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		data := strings.Split(line, "\t")
		if len(data) < 3 {
			log.Panicf("invalid line in BED file %v: %v", filename, line)
		}
		chrom := utils.Intern(data[0])
		start := internal.ParseInt(data[1], 10, 32)
		end := internal.ParseInt(data[2], 10, 32)
		bed.AddRegion(NewRegion(chrom, int32(start), int32(end), data[3:]))
	}
	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}
	// Make sure bed regions are sorted.
	sortRegions(bed)
	return bed
}
