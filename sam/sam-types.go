package sam

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"unicode"

	psort "github.com/exascience/pargo/sort"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

const (
	FileFormatVersion = "1.6"
	FileFormatDate    = "22 Aug 2022"
)

// IsHeaderUserTag determines whether this tag string represent a user-defined tag.
func IsHeaderUserTag(code string) bool {
	for _, c := range code {
		if ('a' <= c) && (c <= 'z') {
			return true
		}
	}
	return false
}

// Header represents the header section of a SAM file, with the
// standard record types grouped by tag and user-defined records
// collected separately.
type Header struct {
	HD          utils.StringMap
	SQ, RG, PG  []utils.StringMap
	CO          []string
	UserRecords map[string][]utils.StringMap
}

// SQ_LN returns the LN field value of an @SQ header line.
func SQ_LN(record utils.StringMap) (int32, error) {
	ln, found := record["LN"]
	if !found {
		return 0x7FFFFFFF, errors.New("LN entry in a SQ header line missing")
	}
	val, err := strconv.ParseInt(ln, 10, 32)
	return int32(val), err
}

// NewHeader allocates and initializes an empty header.
func NewHeader() *Header { return &Header{} }

// EnsureHD ensures that an @HD line is present in the given header.
func (hdr *Header) EnsureHD() utils.StringMap {
	if hdr.HD == nil {
		hdr.HD = utils.StringMap{"VN": FileFormatVersion}
	}
	return hdr.HD
}

// HD_SO returns the sorting order (SO) of the @HD line, or "unknown".
func (hdr *Header) HD_SO() string {
	hd := hdr.EnsureHD()
	if sortingOrder, found := hd["SO"]; found {
		return sortingOrder
	}
	return "unknown"
}

// SetHD_SO sets the sorting order (SO) of the @HD line, deleting a GO
// entry if present.
func (hdr *Header) SetHD_SO(value string) {
	hd := hdr.EnsureHD()
	delete(hd, "GO")
	hd["SO"] = value
}

// HD_GO returns the grouping order (GO) of the @HD line, or "none".
func (hdr *Header) HD_GO() string {
	hd := hdr.EnsureHD()
	if groupingOrder, found := hd["GO"]; found {
		return groupingOrder
	}
	return "none"
}

// EnsureUserRecords ensures that the map for user-defined records is
// present in the given header.
func (hdr *Header) EnsureUserRecords() map[string][]utils.StringMap {
	if hdr.UserRecords == nil {
		hdr.UserRecords = make(map[string][]utils.StringMap)
	}
	return hdr.UserRecords
}

// AddUserRecord adds a record with a user-defined tag to the given header.
func (hdr *Header) AddUserRecord(code string, record utils.StringMap) {
	if records, found := hdr.UserRecords[code]; found {
		hdr.UserRecords[code] = append(records, record)
	} else {
		hdr.EnsureUserRecords()[code] = []utils.StringMap{record}
	}
}

// Alignment is a single read alignment with mandatory and optional
// fields that can be contained in a SAM file alignment line.
type Alignment struct {
	QNAME string
	FLAG  uint16
	RNAME string
	POS   int32
	MAPQ  byte
	CIGAR string
	RNEXT string
	PNEXT int32
	TLEN  int32
	SEQ   string
	QUAL  string
	TAGS  utils.SmallMap
}

// NewAlignment allocates and initializes an empty alignment.
func NewAlignment() *Alignment {
	return &Alignment{
		TAGS: make(utils.SmallMap, 0, 16),
	}
}

// CoordinateLess compares two alignments by reference name and
// position. Unmapped alignments ("*") sort after all mapped ones.
func CoordinateLess(aln1, aln2 *Alignment) bool {
	switch {
	case aln1.RNAME == aln2.RNAME:
		return aln1.POS < aln2.POS
	case aln1.RNAME == "*":
		return false
	case aln2.RNAME == "*":
		return true
	default:
		return aln1.RNAME < aln2.RNAME
	}
}

// Bit values for the FLAG field in alignments.
const (
	Multiple      = 0x1
	Proper        = 0x2
	Unmapped      = 0x4
	NextUnmapped  = 0x8
	Reversed      = 0x10
	NextReversed  = 0x20
	First         = 0x40
	Last          = 0x80
	Secondary     = 0x100
	QCFailed      = 0x200
	Duplicate     = 0x400
	Supplementary = 0x800
)

func (aln *Alignment) IsMultiple() bool      { return (aln.FLAG & Multiple) != 0 }
func (aln *Alignment) IsProper() bool        { return (aln.FLAG & Proper) != 0 }
func (aln *Alignment) IsUnmapped() bool      { return (aln.FLAG & Unmapped) != 0 }
func (aln *Alignment) IsNextUnmapped() bool  { return (aln.FLAG & NextUnmapped) != 0 }
func (aln *Alignment) IsReversed() bool      { return (aln.FLAG & Reversed) != 0 }
func (aln *Alignment) IsNextReversed() bool  { return (aln.FLAG & NextReversed) != 0 }
func (aln *Alignment) IsFirst() bool         { return (aln.FLAG & First) != 0 }
func (aln *Alignment) IsLast() bool          { return (aln.FLAG & Last) != 0 }
func (aln *Alignment) IsSecondary() bool     { return (aln.FLAG & Secondary) != 0 }
func (aln *Alignment) IsQCFailed() bool      { return (aln.FLAG & QCFailed) != 0 }
func (aln *Alignment) IsDuplicate() bool     { return (aln.FLAG & Duplicate) != 0 }
func (aln *Alignment) IsSupplementary() bool { return (aln.FLAG & Supplementary) != 0 }

func (aln *Alignment) FlagEvery(flag uint16) bool    { return (aln.FLAG & flag) == flag }
func (aln *Alignment) FlagSome(flag uint16) bool     { return (aln.FLAG & flag) != 0 }
func (aln *Alignment) FlagNotEvery(flag uint16) bool { return (aln.FLAG & flag) != flag }
func (aln *Alignment) FlagNotAny(flag uint16) bool   { return (aln.FLAG & flag) == 0 }

type (
	// By is a comparison predicate on alignment pointers.
	By func(aln1, aln2 *Alignment) bool

	// AlignmentSorter is a sorter for slices of alignment pointers.
	AlignmentSorter struct {
		alns []*Alignment
		by   By
	}
)

func (s AlignmentSorter) SequentialSort(i, j int) {
	alns, by := s.alns[i:j], s.by
	sort.Slice(alns, func(i, j int) bool {
		return by(alns[i], alns[j])
	})
}

func (s AlignmentSorter) NewTemp() psort.StableSorter {
	return AlignmentSorter{make([]*Alignment, len(s.alns)), s.by}
}

func (s AlignmentSorter) Len() int {
	return len(s.alns)
}

func (s AlignmentSorter) Less(i, j int) bool {
	return s.by(s.alns[i], s.alns[j])
}

func (s AlignmentSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.alns, p.(AlignmentSorter).alns
	return func(i, j, len int) {
		for k := 0; k < len; k++ {
			dst[i+k] = src[j+k]
		}
	}
}

// ParallelStableSort sorts a slice of alignments in parallel according
// to the given comparison predicate.
func (by By) ParallelStableSort(alns []*Alignment) {
	psort.StableSort(AlignmentSorter{alns, by})
}

// Sam represents a complete SAM data set: a header and a slice of
// alignments.
type Sam struct {
	Header     *Header
	Alignments []*Alignment
}

// The valid CIGAR operations.
const CigarOperations = "MmIiDdNnSsHhPpXx="

var cigarOperationsTable = make(map[byte]byte, len(CigarOperations))

func init() {
	for _, c := range CigarOperations {
		cigarOperationsTable[byte(c)] = byte(unicode.ToUpper(rune(c)))
	}
}

func isDigit(char byte) bool { return ('0' <= char) && (char <= '9') }

// CigarOperation is a single CIGAR element, an operation with its
// length.
type CigarOperation struct {
	Length    int32
	Operation byte // 'M', 'I', 'D', 'N', 'S', 'H', 'P', 'X', or '='
}

func newCigarOperation(cigar string, i int) (op CigarOperation, j int, err error) {
	for j = i; ; j++ {
		if char := cigar[j]; !isDigit(char) {
			length, nerr := strconv.ParseInt(cigar[i:j], 10, 32)
			if nerr != nil {
				err = nerr
				return
			}
			if operation := cigarOperationsTable[char]; operation != 0 {
				op = CigarOperation{int32(length), operation}
				j++
			} else {
				err = fmt.Errorf("invalid CIGAR operation %v", char)
			}
			return
		}
	}
}

var (
	cigarSliceCache      = map[string][]CigarOperation{"*": []CigarOperation{}}
	cigarSliceCacheMutex = sync.RWMutex{}
)

func slowScanCigarString(cigar string) (slice []CigarOperation, err error) {
	for i := 0; i < len(cigar); {
		cigarOperation, j, err := newCigarOperation(cigar, i)
		if err != nil {
			return nil, fmt.Errorf("%v, while scanning CIGAR string %v", err.Error(), cigar)
		}
		slice = append(slice, cigarOperation)
		i = j
	}
	cigarSliceCacheMutex.Lock()
	if value, found := cigarSliceCache[cigar]; found {
		slice = value
	} else {
		cigarSliceCache[cigar] = slice
	}
	cigarSliceCacheMutex.Unlock()
	return slice, nil
}

// ScanCigarString converts a CIGAR string to a slice of
// CigarOperation. Parsed CIGAR strings are cached, so that repeated
// requests for the same string return the same slice.
func ScanCigarString(cigar string) ([]CigarOperation, error) {
	cigarSliceCacheMutex.RLock()
	value, found := cigarSliceCache[cigar]
	cigarSliceCacheMutex.RUnlock()
	if found {
		return value, nil
	}
	return slowScanCigarString(cigar)
}

// referenceConsuming tells whether a CIGAR operation advances the
// position on the reference sequence.
func referenceConsuming(operation byte) bool {
	switch operation {
	case 'M', 'D', 'N', '=', 'X':
		return true
	default:
		return false
	}
}

// End computes the 1-based inclusive end position of the alignment on
// the reference, by walking the reference-consuming CIGAR operations.
// Alignments without a CIGAR string ("*") end where they start.
func (aln *Alignment) End() int32 {
	operations, err := ScanCigarString(aln.CIGAR)
	if err != nil {
		log.Panic(err, ", while computing the end position of ", aln.QNAME)
	}
	length := int32(0)
	for _, op := range operations {
		if referenceConsuming(op.Operation) {
			length += op.Length
		}
	}
	if length == 0 {
		return aln.POS
	}
	return aln.POS + length - 1
}
