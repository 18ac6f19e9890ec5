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
	"os"
	"path/filepath"
	"testing"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

const testBed = "track name=\"test regions\"\n" +
	"# a comment\n" +
	"chr1\t500\t1000\tfeature1\t960\t+\n" +
	"chr1\t100\t200\n" +
	"\n" +
	"chr2\t50\t150\n"

func TestParseBed(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.bed")
	if err := os.WriteFile(filename, []byte(testBed), 0666); err != nil {
		t.Fatal(err)
	}
	bed := ParseBed(filename)
	chr1 := bed.RegionMap[utils.Intern("chr1")]
	if len(chr1) != 2 {
		t.Fatal("incorrect number of chr1 regions", len(chr1))
	}
	// regions are sorted by start position
	if chr1[0].Start != 100 || chr1[0].End != 200 {
		t.Error("incorrect first chr1 region", chr1[0])
	}
	if chr1[1].Start != 500 || chr1[1].End != 1000 {
		t.Error("incorrect second chr1 region", chr1[1])
	}
	chr2 := bed.RegionMap[utils.Intern("chr2")]
	if len(chr2) != 1 || chr2[0].Start != 50 || chr2[0].End != 150 {
		t.Error("incorrect chr2 regions", chr2)
	}
}

func TestParseBedShortLine(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.bed")
	if err := os.WriteFile(filename, []byte("chr1\t100\n"), 0666); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("parsing did not fail for a line with missing fields")
		}
	}()
	ParseBed(filename)
}

func TestNewRegionOptionalFields(t *testing.T) {
	region := NewRegion(utils.Intern("chr1"), 500, 1000, []string{"feature1", "960", "+"})
	if len(region.OptionalFields) != 3 {
		t.Fatal("incorrect number of optional fields", len(region.OptionalFields))
	}
	if region.OptionalFields[brScore] != 960 {
		t.Error("incorrect score", region.OptionalFields[brScore])
	}
	if region.OptionalFields[brStrand] != SF {
		t.Error("incorrect strand", region.OptionalFields[brStrand])
	}
}
