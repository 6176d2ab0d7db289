/*
Package gfa reads the subset of the Graphical Fragment Assembly format
needed to describe a library of reference constructs: segment (S) lines and
link (L) lines. Everything else in the file is carried past.
*/
package gfa

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/segtools/gosegment/pkg/graph"
)

// A Segment is one named unit of sequence in the graph.
type Segment struct {
	Name     string
	Sequence string
}

// A Gfa is the segment set and link set of one GFA file. Segments keep their
// file order.
type Gfa struct {
	Segments []Segment
	Links    []graph.Link
}

var (
	errGFAParsingSegment   = errors.New("Error parsing gfa segment line")
	errGFAParsingLink      = errors.New("Error parsing gfa link line")
	errGFADuplicateSegment = errors.New("Duplicate gfa segment name")
)

func errorBuilder(err error, s string) error {
	return errors.New(err.Error() + ": " + s)
}

// Read parses a GFA file. Segment sequences given as "*" (unknown) are
// stored as empty strings. Header, path and containment lines are skipped.
func Read(r io.Reader) (*Gfa, error) {
	g := &Gfa{}
	names := make(map[string]bool)

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return nil, errorBuilder(errGFAParsingSegment, line)
			}
			if names[fields[1]] {
				return nil, errorBuilder(errGFADuplicateSegment, fields[1])
			}
			names[fields[1]] = true
			seq := fields[2]
			if seq == "*" {
				seq = ""
			}
			g.Segments = append(g.Segments, Segment{Name: fields[1], Sequence: seq})
		case "L":
			if len(fields) < 5 {
				return nil, errorBuilder(errGFAParsingLink, line)
			}
			g.Links = append(g.Links, graph.Link{
				FromName: fields[1],
				FromSign: fields[2],
				ToName:   fields[3],
				ToSign:   fields[4],
			})
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return g, nil
}

// Names returns the segment names in file order.
func (g *Gfa) Names() []string {
	names := make([]string, len(g.Segments))
	for i, s := range g.Segments {
		names[i] = s.Name
	}
	return names
}

// Graph builds the oriented segment graph from the link set.
func (g *Gfa) Graph() (*graph.DiGraph, error) {
	return graph.Build(g.Links)
}

// NameMapping returns the sequence to use for every segment in both
// orientations: the stored sequence for a forward traversal and its reverse
// complement for a reverse traversal. Derive this before filtering, so that
// paths through pruned segments can still be resolved.
func (g *Gfa) NameMapping() map[graph.Node]string {
	m := make(map[graph.Node]string, 2*len(g.Segments))
	for _, s := range g.Segments {
		m[graph.Forward(s.Name)] = s.Sequence
		m[graph.Reverse(s.Name)] = ReverseComplement(s.Sequence)
	}
	return m
}

// AssembleSeq concatenates the oriented sequences of a path. A nil path
// yields the empty string.
func AssembleSeq(nameToSeq map[graph.Node]string, path []graph.Node) string {
	var sb strings.Builder
	for _, n := range path {
		sb.WriteString(nameToSeq[n])
	}
	return sb.String()
}

// MakeCompArray returns an array for complementing IUPAC nucleotide codes.
// Characters without a complement map to themselves.
func MakeCompArray() [256]byte {
	var ca [256]byte
	for i := range ca {
		ca[i] = byte(i)
	}
	nuc := "ACGTUWSMKRYBDHVN"
	comp := "TGCAAWSKMYRVHDBN"
	for i := 0; i < len(nuc); i++ {
		ca[nuc[i]] = comp[i]
		ca[nuc[i]+32] = comp[i] + 32
	}
	return ca
}

// Complement returns the nucleotide complement of a sequence.
func Complement(seq string) string {
	CA := MakeCompArray()
	ba := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		ba[i] = CA[seq[i]]
	}
	return string(ba)
}

// ReverseComplement returns the reverse complement of a sequence.
func ReverseComplement(seq string) string {
	ba := []byte(Complement(seq))
	for i, j := 0, len(ba)-1; i < j; i, j = i+1, j-1 {
		ba[i], ba[j] = ba[j], ba[i]
	}
	return string(ba)
}
