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

// bioformats is a toolkit for counting records and computing
// statistics over FASTA, FASTQ, SAM/BAM, and VCF/BCF files.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: fasta, fastq, sam, vcf, seq-index, analyze")
	fmt.Fprint(os.Stderr, "\n", cmd.FastaHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FastqHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.SamHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.VcfHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.SeqIndexHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.AnalyzeHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "fasta":
		err = cmd.Fasta()
	case "fastq":
		err = cmd.Fastq()
	case "sam":
		err = cmd.Sam()
	case "vcf":
		err = cmd.Vcf()
	case "seq-index":
		err = cmd.SeqIndex()
	case "analyze":
		if len(os.Args) < 3 {
			log.Println("Incorrect number of parameters.")
			fmt.Fprint(os.Stderr, cmd.AnalyzeHelp)
			os.Exit(1)
		}
		err = cmd.Analyze(os.Args[2])
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
