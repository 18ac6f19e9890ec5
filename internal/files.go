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

package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// FileOpen is os.Open with panics in place of errors
func FileOpen(name string) *os.File {
	file, err := os.Open(name)
	if err != nil {
		log.Panic(err)
	}
	return file
}

// FileCreate is os.Create with panics in place of errors
func FileCreate(name string) *os.File {
	file, err := os.Create(name)
	if err != nil {
		log.Panic(err)
	}
	return file
}

// Close is closer.Close() with panics in place of errors
func Close(closer io.Closer) {
	if err := closer.Close(); err != nil {
		log.Panic(err)
	}
}

// Write is writer.Write(b) with panics in place of errors
func Write(writer io.Writer, b []byte) int {
	n, err := writer.Write(b)
	if err != nil {
		log.Panic(err)
	}
	return n
}

// WriteString is io.WriteString(writer, s) with panics in place of errors
func WriteString(writer io.Writer, s string) int {
	n, err := io.WriteString(writer, s)
	if err != nil {
		log.Panic(err)
	}
	return n
}

// MkdirAll is os.MkdirAll with panics in place of errors
func MkdirAll(path string) {
	if err := os.MkdirAll(path, 0777); err != nil {
		log.Panic(err)
	}
}

// FullPathname returns the absolute version of the given path,
// based on the current working directory for relative paths.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}
