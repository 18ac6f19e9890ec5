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
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Bases are the nucleotide codes tracked by the per-base content
// statistics. Every code that is not A, C, G, or T counts as N.
var Bases = []byte("ACGTN")

// Stats accumulates per-read and per-base statistics of a FASTQ file.
type Stats struct {
	Count       int
	TotalLength int
	// Lengths maps a read length onto the number of reads with that length.
	Lengths map[int]int

	lengths     []float64
	qualitySums []float64
	coverage    []int
	baseCounts  map[byte][]int
}

// NewStats creates an empty instance.
func NewStats() *Stats {
	stats := &Stats{
		Lengths:    make(map[int]int),
		baseCounts: make(map[byte][]int, len(Bases)),
	}
	for _, base := range Bases {
		stats.baseCounts[base] = nil
	}
	return stats
}

func (stats *Stats) grow(n int) {
	for len(stats.coverage) < n {
		stats.coverage = append(stats.coverage, 0)
		stats.qualitySums = append(stats.qualitySums, 0)
	}
	for _, base := range Bases {
		row := stats.baseCounts[base]
		for len(row) < n {
			row = append(row, 0)
		}
		stats.baseCounts[base] = row
	}
}

func normalizeBase(c byte) byte {
	switch c {
	case 'A', 'a':
		return 'A'
	case 'C', 'c':
		return 'C'
	case 'G', 'g':
		return 'G'
	case 'T', 't':
		return 'T'
	default:
		return 'N'
	}
}

// Add accumulates one read into the statistics.
func (stats *Stats) Add(rec Record) {
	n := len(rec.Sequence)
	stats.Count++
	stats.TotalLength += n
	stats.Lengths[n]++
	stats.lengths = append(stats.lengths, float64(n))
	stats.grow(n)
	for i := 0; i < n; i++ {
		stats.coverage[i]++
		stats.qualitySums[i] += float64(int(rec.Quality[i]) - PhredOffset)
		stats.baseCounts[normalizeBase(rec.Sequence[i])][i]++
	}
}

// CollectStats parses a FASTQ file and accumulates its statistics.
func CollectStats(filename string) *Stats {
	stats := NewStats()
	ParseFastq(filename, stats.Add)
	return stats
}

// AverageLength returns the mean read length, or 0 for an empty file.
func (stats *Stats) AverageLength() float64 {
	if stats.Count == 0 {
		return 0
	}
	return stat.Mean(stats.lengths, nil)
}

// MedianLength returns the median read length, or 0 for an empty file.
func (stats *Stats) MedianLength() float64 {
	if stats.Count == 0 {
		return 0
	}
	lengths := make([]float64, len(stats.lengths))
	copy(lengths, stats.lengths)
	sort.Float64s(lengths)
	return stat.Quantile(0.5, stat.Empirical, lengths, nil)
}

// MaxLength returns the longest read length.
func (stats *Stats) MaxLength() int {
	return len(stats.coverage)
}

// PerBaseQuality returns the mean Phred score for every read position.
func (stats *Stats) PerBaseQuality() []float64 {
	result := make([]float64, len(stats.coverage))
	for i, n := range stats.coverage {
		if n > 0 {
			result[i] = stats.qualitySums[i] / float64(n)
		}
	}
	return result
}

// PerBaseContent returns, for every base in Bases, the percentage of
// reads carrying that base at every read position.
func (stats *Stats) PerBaseContent() map[byte][]float64 {
	result := make(map[byte][]float64, len(Bases))
	for _, base := range Bases {
		row := make([]float64, len(stats.coverage))
		counts := stats.baseCounts[base]
		for i, n := range stats.coverage {
			if n > 0 {
				row[i] = float64(counts[i]) / float64(n) * 100
			}
		}
		result[base] = row
	}
	return result
}
