/*
Package cigar is a strict text codec for CIGAR operation strings, built on
the CIGAR types from biogo/hts.

It also defines the base-consumption rules used when a CIGAR is walked
against a path through a segment graph: insertions, sequence matches and
sequence mismatches consume query bases; deletions, sequence matches and
sequence mismatches consume segment bases. An alignment match ("M") is
accepted by Decode, but downstream code assumes alignments have been
normalised to "="/"X" beforehand.
*/
package cigar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

var ErrMalformedCigar = errors.New("malformed cigar")

// opForChar maps a CIGAR operation character to its biogo operation type
var opForChar = map[byte]sam.CigarOpType{
	'M': sam.CigarMatch,
	'I': sam.CigarInsertion,
	'D': sam.CigarDeletion,
	'N': sam.CigarSkipped,
	'S': sam.CigarSoftClipped,
	'H': sam.CigarHardClipped,
	'P': sam.CigarPadded,
	'=': sam.CigarEqual,
	'X': sam.CigarMismatch,
	'B': sam.CigarBack,
}

// Decode parses a textual CIGAR into a sam.Cigar. Unlike sam.ParseCigar it
// accepts nothing but a sequence of {length}{operation} tokens: an unknown
// operation letter, a missing length or trailing characters are all errors.
// The empty string decodes to an empty cigar.
func Decode(s string) (sam.Cigar, error) {
	if len(s) == 0 {
		return nil, nil
	}
	var c sam.Cigar
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			return nil, fmt.Errorf("%w: %q: expected operation length at offset %d", ErrMalformedCigar, s, i)
		}
		if j == len(s) {
			return nil, fmt.Errorf("%w: %q: operation length %q has no operation", ErrMalformedCigar, s, s[i:j])
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedCigar, s, err)
		}
		t, ok := opForChar[s[j]]
		if !ok {
			return nil, fmt.Errorf("%w: %q: unknown operation %q at offset %d", ErrMalformedCigar, s, s[j], j)
		}
		c = append(c, sam.NewCigarOp(t, n))
		i = j + 1
	}
	return c, nil
}

// Encode returns the textual form of a cigar: "{length}{operation}" for every
// operation, in order. An empty cigar encodes to the empty string (these are
// sub-alignment cigars, not SAM fields, so there is no "*").
func Encode(c sam.Cigar) string {
	var sb strings.Builder
	for _, co := range c {
		sb.WriteString(strconv.Itoa(co.Len()))
		sb.WriteString(co.Type().String())
	}
	return sb.String()
}

// Append adds an operation to a cigar, coalescing it with the last operation
// when both are of the same type. Zero-length operations are dropped.
func Append(c sam.Cigar, t sam.CigarOpType, n int) sam.Cigar {
	if len(c) > 0 && c[len(c)-1].Type() == t {
		c[len(c)-1] = sam.NewCigarOp(t, c[len(c)-1].Len()+n)
		return c
	}
	if n == 0 {
		return c
	}
	return append(c, sam.NewCigarOp(t, n))
}

// ConsumesQuery reports whether an operation of type t advances the query.
func ConsumesQuery(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarInsertion, sam.CigarEqual, sam.CigarMismatch:
		return true
	}
	return false
}

// ConsumesPath reports whether an operation of type t advances the path
// (the segment sequence the query is aligned against).
func ConsumesPath(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarDeletion, sam.CigarEqual, sam.CigarMismatch:
		return true
	}
	return false
}

// QueryLength returns the total number of query bases consumed by c.
func QueryLength(c sam.Cigar) int {
	var n int
	for _, co := range c {
		if ConsumesQuery(co.Type()) {
			n += co.Len()
		}
	}
	return n
}

// PathLength returns the total number of path bases consumed by c.
func PathLength(c sam.Cigar) int {
	var n int
	for _, co := range c {
		if ConsumesPath(co.Type()) {
			n += co.Len()
		}
	}
	return n
}
