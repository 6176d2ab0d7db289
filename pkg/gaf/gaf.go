/*
Package gaf reads Graph Alignment Format files: the PAF-shaped, tab
separated tables graph aligners emit, with an oriented segment path in
place of a target sequence name and the alignment cigar in a cg:Z: tag.
*/
package gaf

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	biogosam "github.com/biogo/hts/sam"

	"github.com/segtools/gosegment/pkg/cigar"
	"github.com/segtools/gosegment/pkg/graph"
)

// A Record is one alignment of a read against a path through the graph.
// Query and path coordinates are 0-based half-open, as in the file.
type Record struct {
	Query           string
	QueryLength     int
	QueryStart      int
	QueryEnd        int
	Strand          string
	Path            []graph.Node
	PathLength      int
	PathStart       int
	PathEnd         int
	Matches         int
	AlignmentLength int
	MappingQuality  int
	Cigar           biogosam.Cigar
}

var (
	errGAFParsingFields = errors.New("Error parsing gaf record: fewer than 12 fields")
	errGAFParsingInt    = errors.New("Error parsing gaf integer field")
	errGAFParsingStrand = errors.New("Error parsing gaf strand")
	errGAFParsingPath   = errors.New("Error parsing gaf path")
)

func errorBuilder(err error, s string) error {
	return errors.New(err.Error() + ": " + s)
}

// Divergence is the fraction of aligned columns that are not matches,
// 1 - matches/alignment-length. A record with no aligned columns has
// divergence 0.
func (r Record) Divergence() float64 {
	if r.AlignmentLength == 0 {
		return 0
	}
	return 1 - float64(r.Matches)/float64(r.AlignmentLength)
}

// A Reader reads GAF records one line at a time. Blank lines and lines
// starting with '#' are skipped.
type Reader struct {
	s *bufio.Scanner
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	return &Reader{s: s}
}

// Read returns the next record, or io.EOF after the last one.
func (r *Reader) Read() (Record, error) {
	for r.s.Scan() {
		line := strings.TrimRight(r.s.Text(), "\r")
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		return parseRecord(line)
	}
	if err := r.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

func parseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 12 {
		return Record{}, errorBuilder(errGAFParsingFields, line)
	}

	var rec Record
	rec.Query = fields[0]

	ints := []struct {
		i    int
		dest *int
	}{
		{1, &rec.QueryLength},
		{2, &rec.QueryStart},
		{3, &rec.QueryEnd},
		{6, &rec.PathLength},
		{7, &rec.PathStart},
		{8, &rec.PathEnd},
		{9, &rec.Matches},
		{10, &rec.AlignmentLength},
		{11, &rec.MappingQuality},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(fields[f.i])
		if err != nil {
			return Record{}, errorBuilder(errGAFParsingInt, fields[f.i])
		}
		*f.dest = v
	}

	rec.Strand = fields[4]
	if rec.Strand != "+" && rec.Strand != "-" {
		return Record{}, errorBuilder(errGAFParsingStrand, rec.Strand)
	}

	path, err := parsePath(fields[5])
	if err != nil {
		return Record{}, err
	}
	rec.Path = path

	for _, tag := range fields[12:] {
		if strings.HasPrefix(tag, "cg:Z:") {
			c, err := cigar.Decode(tag[len("cg:Z:"):])
			if err != nil {
				return Record{}, err
			}
			rec.Cigar = c
			break
		}
	}

	return rec, nil
}

// parsePath splits an oriented path like ">s1<s2>s3" into nodes. Stable
// coordinates (a bare sequence name) are not supported.
func parsePath(s string) ([]graph.Node, error) {
	if len(s) == 0 || (s[0] != '>' && s[0] != '<') {
		return nil, errorBuilder(errGAFParsingPath, s)
	}
	var path []graph.Node
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i] == '>' || s[i] == '<' {
			if i == start+1 {
				// a direction marker with no name
				return nil, errorBuilder(errGAFParsingPath, s)
			}
			path = append(path, graph.Node(s[start:i]))
			start = i
		}
	}
	return path, nil
}
