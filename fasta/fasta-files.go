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

package fasta

import (
	"bufio"
	"bytes"
	"log"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/internal"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

// A Sequence summarizes one FASTA record: the name (first word of the
// header line), the full header, and the sequence length in bases.
type Sequence struct {
	Name   string
	Header string
	Length int
}

func nameFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	return string(b[i:j])
}

const (
	scannerInitSize = 64 * 1024
	scannerMaxSize  = 64 * 1024 * 1024 // single-line sequences can be very long
)

// ParseFasta sequentially parses a FASTA file, calling record for
// every sequence. Plain and gzip-compressed input are handled alike.
// Blank lines are skipped wherever they occur; the record after the
// last header is flushed at end of input, unless that header has no
// sequence lines at all.
func ParseFasta(filename string, record func(Sequence)) {
	f := internal.FileOpen(filename)
	defer internal.Close(f)

	scanner := bufio.NewScanner(utils.HandleGzip(bufio.NewReader(f)))
	scanner.Buffer(make([]byte, scannerInitSize), scannerMaxSize)

	var seq Sequence
	open := false

	for scanner.Scan() {
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			if open {
				record(seq)
			}
			seq = Sequence{Name: nameFromHeader(b), Header: string(b[1:])}
			open = true
		} else {
			if !open {
				log.Panicf("invalid fasta file %v - missing first header", filename)
			}
			seq.Length += len(b)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}

	if open && seq.Length > 0 {
		record(seq)
	}
}
