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

package fastq

import (
	"bufio"
	"bytes"
	"log"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/internal"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

// A Record is one FASTQ read: the name (without the leading '@'), the
// sequence, and the quality string.
type Record struct {
	Name     string
	Sequence string
	Quality  string
}

// PhredOffset is the ASCII offset of Sanger-encoded quality scores.
const PhredOffset = 33

// Scores converts the quality string of the record to numeric Phred
// scores.
func (rec *Record) Scores() []int {
	scores := make([]int, len(rec.Quality))
	for i := 0; i < len(rec.Quality); i++ {
		scores[i] = int(rec.Quality[i]) - PhredOffset
	}
	return scores
}

const (
	scannerInitSize = 64 * 1024
	scannerMaxSize  = 16 * 1024 * 1024
)

// ParseFastq sequentially parses a FASTQ file, calling record for
// every read. Plain and gzip-compressed input are handled alike.
//
// Every read covers four lines: '@' header, sequence, '+' separator,
// and quality. A record that ends before its quality line is an
// error, as is a quality string whose length differs from the
// sequence length.
func ParseFastq(filename string, record func(Record)) {
	f := internal.FileOpen(filename)
	defer internal.Close(f)

	scanner := bufio.NewScanner(utils.HandleGzip(bufio.NewReader(f)))
	scanner.Buffer(make([]byte, scannerInitSize), scannerMaxSize)

	nextLine := func(what string) []byte {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				log.Panic(err)
			}
			log.Panicf("truncated record in fastq file %v - missing %v line", filename, what)
		}
		return bytes.TrimSpace(scanner.Bytes())
	}

	for scanner.Scan() {
		header := bytes.TrimSpace(scanner.Bytes())
		if len(header) == 0 {
			continue
		}
		if header[0] != '@' {
			log.Panicf("invalid fastq file %v - header %v does not start with @", filename, string(header))
		}
		seq := string(nextLine("sequence"))
		if sep := nextLine("separator"); len(sep) == 0 || sep[0] != '+' {
			log.Panicf("invalid fastq file %v - missing + separator for read %v", filename, string(header[1:]))
		}
		qual := string(nextLine("quality"))
		if len(qual) != len(seq) {
			log.Panicf("invalid fastq file %v - sequence and quality lengths differ for read %v", filename, string(header[1:]))
		}
		record(Record{
			Name:     string(header[1:]),
			Sequence: seq,
			Quality:  qual,
		})
	}
	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}
}
