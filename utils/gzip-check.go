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

import (
	"bufio"
	"compress/gzip"
	"io"
	"log"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils/bgzf"
)

// HandleGzip checks if the given reader produces a gzip file
// by looking at the initial bytes. Block-compressed (BGZF) input
// gets the parallel bgzf.Reader, other gzip input a regular
// gzip.Reader, and plain text is returned unchanged.
func HandleGzip(buf *bufio.Reader) io.Reader {
	if ok, err := bgzf.IsGzip(buf); err != nil {
		log.Panic(err)
		return nil
	} else if !ok {
		return buf
	}
	if bgzf.IsBgzf(buf) {
		r, err := bgzf.NewReader(buf)
		if err != nil {
			log.Panic(err)
		}
		return r
	}
	r, err := gzip.NewReader(buf)
	if err != nil {
		log.Panic(err)
	}
	return r
}
