/*
Package segment decomposes a read's alignment against a path through a
segment graph into per-segment sub-alignments.

Cut is the entry point: given a cigar describing how the read aligns to the
concatenated path sequence, it walks the cigar and the path together and
reports, for every segment the path visits, the segment's span in the read,
its own cigar, its match/mismatch/insertion/deletion counts and, when the
segment name carries one, its variant identifier.
*/
package segment

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/biogo/hts/sam"
)

var (
	ErrMissingQueryLength = errors.New("query length is required if query end is given")
	ErrPathCigarMismatch  = errors.New("path and cigar lengths disagree")
	ErrDuplicateSegment   = errors.New("duplicate segment")
	ErrDuplicateKey       = errors.New("duplicate key")
)

// Options controls clipping, record selection and output shaping for Cut.
// The zero value is not useful; start from DefaultOptions.
//
// The clip coordinates QueryStart, QueryEnd, QueryLength, PathStart and
// PathEnd are optional; -1 means unset. When set, the unaligned query region
// outside [QueryStart, QueryEnd) is synthesised as insertions and the
// unaligned path region outside [PathStart, PathEnd) as deletions, so that
// clipped alignments can still be cut against the full path. QueryEnd
// requires a query length, taken from QueryLength or inferred from Sequence.
type Options struct {
	QueryStart  int
	QueryEnd    int
	QueryLength int
	PathStart   int
	PathEnd     int

	// Sequence and Phred are the read's bases and quality string; empty
	// means not supplied. When supplied, each record carries its slice of
	// them, reverse-complemented (sequence) or reversed (quality) for
	// segments the path traverses backwards.
	Sequence string
	Phred    string

	// Segments restricts which segments are recorded; nil records all.
	// Segments not listed are still walked, just not reported.
	Segments []string

	// VariantSep splits a variant identifier off the end of a segment
	// name; empty disables variant extraction.
	VariantSep string

	// SeparateEnds adds zero-length "upstream" and "downstream" sentinel
	// segments around the path, which capture any leading or trailing
	// insertion (adapter sequence, for example).
	SeparateEnds bool

	ReturnIndices  bool
	ReturnCounts   bool
	ReturnCigars   bool
	CigarAsString  bool
	ReturnVariants bool
}

// DefaultOptions returns the standard configuration: no clipping, all
// output fields enabled, sentinel end segments on and "=" as the variant
// separator.
func DefaultOptions() Options {
	return Options{
		QueryStart:     -1,
		QueryEnd:       -1,
		QueryLength:    -1,
		PathStart:      -1,
		PathEnd:        -1,
		VariantSep:     "=",
		SeparateEnds:   true,
		ReturnIndices:  true,
		ReturnCounts:   true,
		ReturnCigars:   true,
		CigarAsString:  true,
		ReturnVariants: true,
	}
}

// A Record is the sub-alignment of one segment. Start and End are the
// half-open span of the segment in the read. For a segment traversed in
// reverse, Seq is the reverse complement of the read slice and Cigar is
// reversed, so both read in segment-native orientation.
type Record struct {
	Name              string
	Start             int
	End               int
	ReverseComplement bool
	Seq               string
	Phred             string
	Matches           int
	Mismatches        int
	Insertions        int
	Deletions         int
	Cigar             sam.Cigar
	CigarString       string
	Variant           any // int64 when the identifier is numeric, else string
	HasVariant        bool
}

// Records is a read's per-segment records, in path order.
type Records []Record

// Map returns the records keyed by segment name.
func (rs Records) Map() map[string]Record {
	m := make(map[string]Record, len(rs))
	for _, r := range rs {
		m[r.Name] = r
	}
	return m
}

// Flatten serialises the records into one flat row keyed by
// "{segment}{keySep}{field}". Which fields appear follows opts, matching
// what Cut was asked to compute. A key collision fails with ErrDuplicateKey;
// it cannot happen for records produced by a single Cut call, which rejects
// duplicate segment names.
func (rs Records) Flatten(keySep string, opts Options) (map[string]any, error) {
	row := make(map[string]any)
	set := func(name, field string, v any) error {
		key := name + keySep + field
		if _, ok := row[key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		row[key] = v
		return nil
	}
	for _, r := range rs {
		if opts.ReturnVariants && r.HasVariant {
			if err := set(r.Name, "variant", r.Variant); err != nil {
				return nil, err
			}
		}
		if opts.ReturnIndices {
			if err := set(r.Name, "start", r.Start); err != nil {
				return nil, err
			}
			if err := set(r.Name, "end", r.End); err != nil {
				return nil, err
			}
			if err := set(r.Name, "reverse_complement", r.ReverseComplement); err != nil {
				return nil, err
			}
		}
		if opts.Sequence != "" {
			if err := set(r.Name, "seq", r.Seq); err != nil {
				return nil, err
			}
		}
		if opts.Phred != "" {
			if err := set(r.Name, "phred", r.Phred); err != nil {
				return nil, err
			}
		}
		if opts.ReturnCounts {
			for _, c := range []struct {
				field string
				n     int
			}{
				{"matches", r.Matches},
				{"mismatches", r.Mismatches},
				{"insertions", r.Insertions},
				{"deletions", r.Deletions},
			} {
				if err := set(r.Name, c.field, c.n); err != nil {
					return nil, err
				}
			}
		}
		if opts.ReturnCigars {
			var v any = r.Cigar
			if opts.CigarAsString {
				v = r.CigarString
			}
			if err := set(r.Name, "cigar", v); err != nil {
				return nil, err
			}
		}
	}
	return row, nil
}

func parseVariant(s string) any {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	return s
}
