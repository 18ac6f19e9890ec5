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

package utils

const (
	// ProgramName is "bioformats"
	ProgramName = "bioformats"

	// ProgramVersion is the version of the bioformats binary
	ProgramVersion = "1.2.0"

	// ProgramURL is the repository for the bioformats source code
	ProgramURL = "http://github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli"
)
