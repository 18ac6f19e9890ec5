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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the sequences of a FASTA file.
type Stats struct {
	Count         int
	TotalLength   int
	AverageLength float64
	MedianLength  float64
	MinLength     int
	MaxLength     int
}

func statsFromLengths(lengths []float64) *Stats {
	stats := new(Stats)
	stats.Count = len(lengths)
	if stats.Count == 0 {
		return stats
	}
	sort.Float64s(lengths)
	stats.MinLength = int(lengths[0])
	stats.MaxLength = int(lengths[len(lengths)-1])
	for _, length := range lengths {
		stats.TotalLength += int(length)
	}
	stats.AverageLength = stat.Mean(lengths, nil)
	stats.MedianLength = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	return stats
}

// CollectStats parses a FASTA file and computes the sequence count and
// length statistics.
func CollectStats(filename string) *Stats {
	var lengths []float64
	ParseFasta(filename, func(seq Sequence) {
		lengths = append(lengths, float64(seq.Length))
	})
	return statsFromLengths(lengths)
}

// Stats computes the same statistics as CollectStats from a sequence
// length index, without parsing the FASTA file again.
func (idx *Index) Stats() *Stats {
	seqs := idx.Sequences()
	lengths := make([]float64, 0, len(seqs))
	for _, seq := range seqs {
		lengths = append(lengths, float64(seq.Length))
	}
	return statsFromLengths(lengths)
}
