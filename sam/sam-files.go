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

package sam

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/internal"
	"github.com/bioinf-rnrmu-stotoshka/bioformats-hmelisumeli/utils"
)

// ParseHeaderField parses a tag:value pair in a header line.
func (sc *StringScanner) ParseHeaderField() (tag, value string) {
	if sc.err != nil {
		return
	}
	tag, ok := sc.readUntil(':')
	if !ok || (len(tag) != 2) {
		if sc.err == nil {
			sc.err = fmt.Errorf("invalid field tag %v", tag)
		}
		return "", ""
	}
	value, _ = sc.readUntil('\t')
	return tag, value
}

// ParseHeaderLine parses all tag:value pairs in a header line.
func (sc *StringScanner) ParseHeaderLine() utils.StringMap {
	if sc.err != nil {
		return nil
	}
	record := make(utils.StringMap)
	for sc.Len() > 0 {
		tag, value := sc.ParseHeaderField()
		if !record.SetUniqueEntry(tag, value) {
			if sc.err == nil {
				sc.err = fmt.Errorf("duplicate field tag %v in a SAM header line", tag)
			}
			break
		}
	}
	return record
}

// ParseHeader parses a complete header section from the given reader.
// It returns the number of header lines consumed, and leaves the
// reader positioned at the first alignment line.
func ParseHeader(reader *bufio.Reader) (hdr *Header, lines int, err error) {
	hdr = NewHeader()
	var sc StringScanner
	for first := true; ; first = false {
		switch data, err := reader.Peek(1); {
		case err == io.EOF:
			return hdr, lines, sc.err
		case err != nil:
			return hdr, lines, err
		case data[0] != '@':
			return hdr, lines, sc.err
		}
		bytes, err := reader.ReadSlice('\n')
		length := len(bytes)
		switch {
		case err == nil:
			length--
		case err != io.EOF:
			return hdr, lines, err
		}
		lines++
		line := string(bytes[4:length])
		sc.Reset(line)
		switch string(bytes[0:4]) {
		case "@HD\t":
			if !first {
				return hdr, lines, errors.New("@HD line not in first line when parsing a SAM header")
			}
			hdr.HD = sc.ParseHeaderLine()
		case "@SQ\t":
			hdr.SQ = append(hdr.SQ, sc.ParseHeaderLine())
		case "@RG\t":
			hdr.RG = append(hdr.RG, sc.ParseHeaderLine())
		case "@PG\t":
			hdr.PG = append(hdr.PG, sc.ParseHeaderLine())
		case "@CO\t":
			hdr.CO = append(hdr.CO, line)
		default:
			switch code := string(bytes[0:3]); {
			case code == "@CO":
				hdr.CO = append(hdr.CO, string(bytes[3:]))
			case IsHeaderUserTag(code):
				if bytes[3] != '\t' {
					return hdr, lines, fmt.Errorf("header code %v not followed by a tab when parsing a SAM header", code)
				}
				hdr.AddUserRecord(code, sc.ParseHeaderLine())
			default:
				return hdr, lines, fmt.Errorf("unknown SAM record type code %v", code)
			}
		}
	}
}

// FieldParser parses an optional field value of a particular type.
type FieldParser func(*StringScanner) interface{}

func (sc *StringScanner) ParseChar() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readByteUntil('\t')
	return value
}

func (sc *StringScanner) ParseInteger() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	val, err := strconv.ParseInt(value, 10, 32)
	if (err != nil) && (sc.err == nil) {
		sc.err = err
	}
	return int32(val)
}

func (sc *StringScanner) ParseFloat() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	val, err := strconv.ParseFloat(value, 32)
	if (err != nil) && (sc.err == nil) {
		sc.err = err
	}
	return float32(val)
}

func (sc *StringScanner) ParseString() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	return value
}

// ByteArray is the value type for H-typed optional fields.
type ByteArray []byte

func (sc *StringScanner) ParseByteArray() interface{} {
	if sc.err != nil {
		return nil
	}
	value, _ := sc.readUntil('\t')
	result := ByteArray(make([]byte, 0, len(value)>>1))
	for i := 0; i < len(value); i += 2 {
		val, err := strconv.ParseUint(value[i:i+2], 16, 8)
		if err != nil {
			if sc.err == nil {
				sc.err = err
			}
			return nil
		}
		result = append(result, byte(val))
	}
	return result
}

func (sc *StringScanner) ParseNumericArray() interface{} {
	if sc.err != nil {
		return nil
	}
	ntype, ok := sc.readByteUntil(',')
	if !ok {
		if sc.err == nil {
			sc.err = errors.New("missing entry in numeric array")
		}
		return nil
	}
	switch ntype {
	case 'c':
		var result []int8
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseInt(entry, 10, 8)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, int8(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 'C':
		var result []uint8
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseUint(entry, 10, 8)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, uint8(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 's':
		var result []int16
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseInt(entry, 10, 16)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, int16(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 'S':
		var result []uint16
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseUint(entry, 10, 16)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, uint16(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 'i':
		var result []int32
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseInt(entry, 10, 32)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, int32(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 'I':
		var result []uint32
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseUint(entry, 10, 32)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, uint32(val))
			if sep != ',' {
				break
			}
		}
		return result
	case 'f':
		var result []float32
		for {
			entry, sep := sc.readUntil2(',', '\t')
			val, err := strconv.ParseFloat(entry, 32)
			if err != nil {
				if sc.err == nil {
					sc.err = err
				}
				return nil
			}
			result = append(result, float32(val))
			if sep != ',' {
				break
			}
		}
		return result
	default:
		if sc.err == nil {
			sc.err = fmt.Errorf("invalid numeric array type %v", ntype)
		}
		return nil
	}
}

var optionalFieldParseTable = map[byte]FieldParser{
	'A': (*StringScanner).ParseChar,
	'i': (*StringScanner).ParseInteger,
	'f': (*StringScanner).ParseFloat,
	'Z': (*StringScanner).ParseString,
	'H': (*StringScanner).ParseByteArray,
	'B': (*StringScanner).ParseNumericArray,
}

// ParseOptionalField parses a single tag:type:value optional field of
// an alignment line.
func (sc *StringScanner) ParseOptionalField() (tag utils.Symbol, value interface{}) {
	if sc.err != nil {
		return nil, nil
	}
	tagname, ok := sc.readUntil(':')
	if !ok || (len(tagname) != 2) {
		if sc.err == nil {
			sc.err = fmt.Errorf("invalid field tag %v in SAM alignment line", tagname)
		}
		return nil, nil
	}
	tag = utils.Intern(tagname)
	typebyte, ok := sc.readByteUntil(':')
	if !ok {
		if sc.err == nil {
			sc.err = fmt.Errorf("invalid field type %v in SAM alignment line", typebyte)
		}
		return nil, nil
	}
	return tag, optionalFieldParseTable[typebyte](sc)
}

func (sc *StringScanner) doString() string {
	if sc.err != nil {
		return ""
	}
	value, ok := sc.readUntil('\t')
	if !ok {
		if sc.err == nil {
			sc.err = errors.New("missing tabulator in SAM alignment line")
		}
		return ""
	}
	return value
}

func (sc *StringScanner) doInt32() int32 {
	if sc.err != nil {
		return 0
	}
	value, err := strconv.ParseInt(sc.doString(), 10, 32)
	if (err != nil) && (sc.err == nil) {
		sc.err = err
	}
	return int32(value)
}

func (sc *StringScanner) doUint(bitSize int) uint64 {
	if sc.err != nil {
		return 0
	}
	value, err := strconv.ParseUint(sc.doString(), 10, bitSize)
	if (err != nil) && (sc.err == nil) {
		sc.err = err
	}
	return value
}

// ParseAlignment parses a complete alignment line. Check sc.Err()
// afterwards.
func (sc *StringScanner) ParseAlignment() *Alignment {
	aln := NewAlignment()

	aln.QNAME = sc.doString()
	aln.FLAG = uint16(sc.doUint(16))
	aln.RNAME = sc.doString()
	aln.POS = sc.doInt32()
	aln.MAPQ = byte(sc.doUint(8))
	aln.CIGAR = sc.doString()
	aln.RNEXT = sc.doString()
	aln.PNEXT = sc.doInt32()
	aln.TLEN = sc.doInt32()
	aln.SEQ = sc.doString()
	aln.QUAL, _ = sc.readUntil('\t')

	for sc.Len() > 0 {
		aln.TAGS.Set(sc.ParseOptionalField())
	}

	return aln
}

func FormatString(out *bufio.Writer, tag, value string) {
	out.WriteByte('\t')
	out.WriteString(tag)
	out.WriteByte(':')
	out.WriteString(value)
}

func FormatHeaderLine(out *bufio.Writer, code string, record utils.StringMap) {
	out.WriteString(code)
	for key, value := range record {
		FormatString(out, key, value)
	}
	out.WriteByte('\n')
}

func FormatComment(out *bufio.Writer, code, comment string) {
	out.WriteString(code)
	out.WriteByte('\t')
	out.WriteString(comment)
	out.WriteByte('\n')
}

// Format writes the header section in SAM format.
func (hdr *Header) Format(out *bufio.Writer) {
	if hdr.HD != nil {
		FormatHeaderLine(out, "@HD", hdr.HD)
	}
	for _, record := range hdr.SQ {
		FormatHeaderLine(out, "@SQ", record)
	}
	for _, record := range hdr.RG {
		FormatHeaderLine(out, "@RG", record)
	}
	for _, record := range hdr.PG {
		FormatHeaderLine(out, "@PG", record)
	}
	for _, comment := range hdr.CO {
		FormatComment(out, "@CO", comment)
	}
	for code, records := range hdr.UserRecords {
		for _, record := range records {
			FormatHeaderLine(out, code, record)
		}
	}
}

// FormatTag appends a tag:type:value optional field in SAM format.
func FormatTag(out []byte, tag utils.Symbol, value interface{}) ([]byte, error) {
	out = append(out, '\t')
	out = append(out, *tag...)

	switch val := value.(type) {
	case byte:
		out = append(append(out, ":A:"...), val)
	case int32:
		out = strconv.AppendInt(append(out, ":i:"...), int64(val), 10)
	case float32:
		out = strconv.AppendFloat(append(out, ":f:"...), float64(val), 'g', -1, 32)
	case string:
		out = append(append(out, ":Z:"...), val...)
	case utils.Symbol:
		out = append(append(out, ":Z:"...), *val...)
	case ByteArray:
		out = append(out, ":H:"...)
		for _, b := range val {
			if b < 16 {
				out = append(out, '0')
			}
			out = strconv.AppendUint(out, uint64(b), 16)
		}
	case []int8:
		out = append(out, ":B:c"...)
		for _, v := range val {
			out = strconv.AppendInt(append(out, ','), int64(v), 10)
		}
	case []uint8:
		out = append(out, ":B:C"...)
		for _, v := range val {
			out = strconv.AppendUint(append(out, ','), uint64(v), 10)
		}
	case []int16:
		out = append(out, ":B:s"...)
		for _, v := range val {
			out = strconv.AppendInt(append(out, ','), int64(v), 10)
		}
	case []uint16:
		out = append(out, ":B:S"...)
		for _, v := range val {
			out = strconv.AppendUint(append(out, ','), uint64(v), 10)
		}
	case []int32:
		out = append(out, ":B:i"...)
		for _, v := range val {
			out = strconv.AppendInt(append(out, ','), int64(v), 10)
		}
	case []uint32:
		out = append(out, ":B:I"...)
		for _, v := range val {
			out = strconv.AppendUint(append(out, ','), uint64(v), 10)
		}
	case []float32:
		out = append(out, ":B:f"...)
		for _, v := range val {
			out = strconv.AppendFloat(append(out, ','), float64(v), 'g', -1, 32)
		}
	default:
		return nil, fmt.Errorf("unknown SAM alignment TAG type %v", value)
	}

	return out, nil
}

// Format appends the alignment line in SAM format, including the
// trailing newline.
func (aln *Alignment) Format(out []byte) ([]byte, error) {
	out = append(append(out, aln.QNAME...), '\t')
	out = append(strconv.AppendUint(out, uint64(aln.FLAG), 10), '\t')
	out = append(append(out, aln.RNAME...), '\t')
	out = append(strconv.AppendInt(out, int64(aln.POS), 10), '\t')
	out = append(strconv.AppendUint(out, uint64(aln.MAPQ), 10), '\t')
	out = append(append(out, aln.CIGAR...), '\t')
	out = append(append(out, aln.RNEXT...), '\t')
	out = append(strconv.AppendInt(out, int64(aln.PNEXT), 10), '\t')
	out = append(strconv.AppendInt(out, int64(aln.TLEN), 10), '\t')
	out = append(append(out, aln.SEQ...), '\t')
	out = append(out, aln.QUAL...)

	var err error
	for _, entry := range aln.TAGS {
		if out, err = FormatTag(out, entry.Key, entry.Value); err != nil {
			return nil, err
		}
	}

	return append(out, '\n'), nil
}

// Format writes the full SAM data set, header and alignments, in SAM
// format.
func (sam *Sam) Format(out *bufio.Writer) error {
	sam.Header.Format(out)
	buf := internal.ReserveByteBuffer()
	defer internal.ReleaseByteBuffer(buf)
	for _, aln := range sam.Alignments {
		var err error
		buf, err = aln.Format(buf)
		if err != nil {
			return err
		}
		out.Write(buf)
		buf = buf[:0]
	}
	return nil
}

type (
	// InputFile wraps a buffered reader over a SAM source. For BAM and
	// CRAM input a samtools child process performs the conversion.
	InputFile struct {
		rc io.ReadCloser
		*bufio.Reader
		*exec.Cmd
	}

	// OutputFile wraps a buffered writer over a SAM destination. For
	// BAM output a samtools child process performs the conversion.
	OutputFile struct {
		wc io.WriteCloser
		*bufio.Writer
		*exec.Cmd
	}
)

// Open opens a SAM, BAM, or CRAM file for reading, based on the
// filename extension. Gzip-compressed SAM input is decompressed in
// process. With headerOnly, only the header section is requested from
// samtools.
func Open(name string, headerOnly bool) (*InputFile, error) {
	switch filepath.Ext(name) {
	case ".bam", ".cram":
		if _, err := os.Stat(name); os.IsNotExist(err) {
			return nil, err
		}
		args := []string{"view"}
		if headerOnly {
			args = append(args, "-H")
		} else {
			args = append(args, "-h")
		}
		args = append(args, []string{"-@", strconv.FormatInt(int64(runtime.GOMAXPROCS(0)), 10)}...)
		args = append(args, name)
		cmd := exec.Command("samtools", args...)
		outPipe, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		err = cmd.Start()
		if err != nil {
			return nil, err
		}
		return &InputFile{outPipe, bufio.NewReader(outPipe), cmd}, nil
	case ".gz":
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		return &InputFile{file, bufio.NewReader(utils.HandleGzip(bufio.NewReader(file))), nil}, nil
	default:
		if name == "/dev/stdin" {
			return &InputFile{os.Stdin, bufio.NewReader(os.Stdin), nil}, nil
		}
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		return &InputFile{file, bufio.NewReader(file), nil}, nil
	}
}

// Create opens a SAM or BAM file for writing, based on the filename
// extension.
func Create(name string) (*OutputFile, error) {
	switch filepath.Ext(name) {
	case ".bam":
		args := append([]string{"view", "-Sb", "-@"}, strconv.FormatInt(int64(runtime.GOMAXPROCS(0)), 10))
		args = append(args, []string{"-o", name, "-"}...)
		cmd := exec.Command("samtools", args...)
		inPipe, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		err = cmd.Start()
		if err != nil {
			return nil, err
		}
		return &OutputFile{inPipe, bufio.NewWriter(inPipe), cmd}, nil
	default:
		if name == "/dev/stdout" {
			return &OutputFile{os.Stdout, bufio.NewWriter(os.Stdout), nil}, nil
		}
		file, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		return &OutputFile{file, bufio.NewWriter(file), nil}, nil
	}
}

// Close closes the input file and waits for an eventual samtools child
// process.
func (input *InputFile) Close() error {
	if input.rc != os.Stdin {
		err := input.rc.Close()
		if err != nil {
			return err
		}
	}
	if input.Cmd != nil {
		err := input.Wait()
		if err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the output file and waits for an eventual
// samtools child process.
func (output *OutputFile) Close() error {
	err := output.Flush()
	if err != nil {
		return err
	}
	if output.wc != os.Stdout {
		err := output.wc.Close()
		if err != nil {
			return err
		}
	}
	if output.Cmd != nil {
		err := output.Wait()
		if err != nil {
			return err
		}
	}
	return nil
}
