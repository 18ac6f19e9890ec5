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
	"bytes"
	"encoding/binary"
	"log"
	"os"
	"sync"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/internal"

	"golang.org/x/sys/unix"
)

// SeqidxMagic is the magic byte sequence that every .seqidx file starts with.
var SeqidxMagic = []byte{0x5E, 0x71, 0xD0, 0x01} // 5E71D001 => SEQIDX1

// WriteIndex parses a FASTA file and stores the name and length of
// every sequence in a .seqidx file, so later statistics runs can skip
// parsing the sequences.
func WriteIndex(filename, idxname string) {
	file := internal.FileCreate(idxname)
	defer internal.Close(file)
	internal.Write(file, SeqidxMagic)
	var buf [binary.MaxVarintLen64]byte
	ParseFasta(filename, func(seq Sequence) {
		internal.WriteString(file, seq.Name)
		internal.WriteString(file, "\t")
		n := binary.PutUvarint(buf[:], uint64(seq.Length))
		internal.Write(file, buf[:n])
		internal.WriteString(file, "\n")
	})
}

// Index holds the contents of a .seqidx file, backed by a memory
// mapping of the file.
type Index struct {
	wait sync.WaitGroup
	seqs []Sequence
	data []byte
	file *os.File
}

// OpenIndex opens a .seqidx file.
func OpenIndex(idxname string) (result *Index) {
	result = new(Index)
	result.wait.Add(1)
	go func() {
		defer result.wait.Done()
		file := internal.FileOpen(idxname)
		stat, err := file.Stat()
		if err != nil {
			_ = file.Close()
			log.Panic(err)
		}
		data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			_ = file.Close()
			log.Panic(err)
		}
		if !bytes.HasPrefix(data, SeqidxMagic) {
			_ = unix.Munmap(data)
			_ = file.Close()
			log.Panicf("%v is not a .seqidx file - invalid magic byte sequence", idxname)
		}
		var seqs []Sequence
		index := len(SeqidxMagic)
		for index < len(data) {
			start := index
			for ; index < len(data) && data[index] != '\t'; index++ {
			}
			if index >= len(data) {
				_ = unix.Munmap(data)
				_ = file.Close()
				log.Panicf("truncated entry in seqidx file %v", idxname)
			}
			name := string(data[start:index])
			index++
			length, n := binary.Uvarint(data[index:])
			if n <= 0 {
				_ = unix.Munmap(data)
				_ = file.Close()
				log.Panicf("bad number of bytes while parsing length in seqidx file %v", idxname)
			}
			index += n
			if index >= len(data) || data[index] != '\n' {
				_ = unix.Munmap(data)
				_ = file.Close()
				log.Panicf("missing newline in seqidx file %v", idxname)
			}
			index++
			seqs = append(seqs, Sequence{Name: name, Header: name, Length: int(length)})
		}
		result.seqs = seqs
		result.data = data
		result.file = file
	}()
	return result
}

// Close closes the .seqidx file.
func (idx *Index) Close() {
	idx.wait.Wait()
	err := unix.Munmap(idx.data)
	idx.data = nil
	if nerr := idx.file.Close(); err == nil {
		err = nerr
	}
	idx.file = nil
	idx.seqs = nil
	if err != nil {
		log.Panic(err)
	}
}

// Sequences returns the sequence summaries stored in the .seqidx file.
func (idx *Index) Sequences() []Sequence {
	idx.wait.Wait()
	return idx.seqs
}
