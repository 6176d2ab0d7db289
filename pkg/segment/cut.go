package segment

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/segtools/gosegment/pkg/cigar"
	"github.com/segtools/gosegment/pkg/gfa"
	"github.com/segtools/gosegment/pkg/graph"
)

// segMeta is the per-segment walk metadata, derived from the path before
// the walk starts.
type segMeta struct {
	name    string
	length  int
	reverse bool
	variant any // nil when the name carries no variant identifier
}

// cursor is the walk state: a path cursor and a cigar cursor, each an index
// plus a remaining-length counter, advanced in lock-step. Indices start at
// -1 so that entering the first segment and the first operation is ordinary
// cursor advancement rather than a special case.
type cursor struct {
	segIdx   int
	segRem   int
	opIdx    int
	opRem    int
	opValid  bool // false before the first operation and after the cigar is exhausted
	opType   sam.CigarOpType
	queryIdx int
}

// Cut decomposes an alignment into per-segment records. The cigar describes
// how the read aligns to the concatenation of the path's oriented segment
// sequences, which are resolved through nameToSeq. An empty cigar or path
// yields no records and no error.
//
// The walk fails with ErrPathCigarMismatch when the cigar and the path do
// not account for the same number of path bases, and with
// ErrDuplicateSegment when two path entries share a segment name after
// variant stripping.
func Cut(c sam.Cigar, path []graph.Node, nameToSeq map[graph.Node]string, opts Options) (Records, error) {
	if len(c) == 0 || len(path) == 0 {
		return nil, nil
	}

	segLengths := make([]int, len(path))
	pathLength := 0
	for i, n := range path {
		segLengths[i] = len(nameToSeq[n])
		pathLength += segLengths[i]
	}

	ops, err := clip(c, pathLength, opts)
	if err != nil {
		return nil, err
	}

	segs := make([]segMeta, 0, len(path)+2)
	if opts.SeparateEnds {
		segs = append(segs, segMeta{name: "upstream"})
	}
	for i, node := range path {
		name := node.Base()
		var variant any
		if opts.VariantSep != "" {
			if k := strings.Index(name, opts.VariantSep); k >= 0 {
				variant = parseVariant(name[k+len(opts.VariantSep):])
				name = name[:k]
			}
		}
		segs = append(segs, segMeta{
			name:    name,
			length:  segLengths[i],
			reverse: node.IsReverse(),
			variant: variant,
		})
	}
	if opts.SeparateEnds {
		segs = append(segs, segMeta{name: "downstream"})
	}

	var allow map[string]bool
	if opts.Segments != nil {
		allow = make(map[string]bool, len(opts.Segments))
		for _, s := range opts.Segments {
			allow[s] = true
		}
	}

	var (
		res  Records
		seen = make(map[string]bool, len(segs))
		st   = cursor{segIdx: -1, opIdx: -1}
		cur  = -1 // index into res of the active segment's record, -1 when unrecorded
	)

	for {
		// Advance the path cursor once the active segment is exhausted.
		// A pending insertion keeps the active segment open: insertions
		// consume no path bases, so they belong to the segment the walk
		// is still in.
		if st.segIdx < 0 || (st.segRem == 0 && !(st.opValid && st.opType == sam.CigarInsertion)) {
			if st.segIdx >= 0 && cur >= 0 {
				finalize(&res[cur], st.queryIdx, opts)
			}
			st.segIdx++
			if st.segIdx == len(segs) {
				leftover := st.opRem
				for k := st.opIdx + 1; k < len(ops); k++ {
					leftover += ops[k].Len()
				}
				if leftover > 0 {
					return nil, fmt.Errorf("%w: cigar contained more bases than path", ErrPathCigarMismatch)
				}
				break
			}
			seg := segs[st.segIdx]
			st.segRem = seg.length
			cur = -1
			if allow == nil || allow[seg.name] {
				if seen[seg.name] {
					return nil, fmt.Errorf("%w: %q", ErrDuplicateSegment, seg.name)
				}
				seen[seg.name] = true
				rec := Record{
					Name:              seg.name,
					Start:             st.queryIdx,
					ReverseComplement: seg.reverse,
				}
				if seg.variant != nil {
					rec.Variant = seg.variant
					rec.HasVariant = true
				}
				res = append(res, rec)
				cur = len(res) - 1
			}
		}

		// Advance the cigar cursor once the current operation is spent.
		// Past the last operation the cursor holds a null operation, so
		// trailing zero-length segments can still be finalized; needing
		// more path bases there means the path outruns the alignment.
		if st.opIdx < 0 || st.opRem == 0 {
			if st.opIdx < len(ops)-1 {
				st.opIdx++
				st.opType = ops[st.opIdx].Type()
				st.opRem = ops[st.opIdx].Len()
				st.opValid = true
			} else {
				st.opIdx = len(ops)
				st.opValid = false
				if st.segRem > 0 {
					return nil, fmt.Errorf("%w: path contained more bases than cigar", ErrPathCigarMismatch)
				}
			}
		}

		// An insertion is consumed whole; anything else is bounded by
		// whichever of the operation and the segment runs out first.
		var advance int
		switch {
		case !st.opValid:
			advance = 0
		case st.opType == sam.CigarInsertion:
			advance = st.opRem
		default:
			advance = st.opRem
			if st.segRem < advance {
				advance = st.segRem
			}
		}

		if st.opValid && cigar.ConsumesQuery(st.opType) {
			st.queryIdx += advance
		}
		st.opRem -= advance
		if st.opValid && cigar.ConsumesPath(st.opType) {
			st.segRem -= advance
		}

		if st.opValid && cur >= 0 {
			rec := &res[cur]
			switch st.opType {
			case sam.CigarEqual:
				rec.Matches += advance
			case sam.CigarMismatch:
				rec.Mismatches += advance
			case sam.CigarInsertion:
				rec.Insertions += advance
			case sam.CigarDeletion:
				rec.Deletions += advance
			}
			rec.Cigar = cigar.Append(rec.Cigar, st.opType, advance)
		}
	}

	return res, nil
}

// clip synthesises deletion operations for the unaligned path region and
// insertion operations for the unaligned query region, then drops
// zero-length operations.
func clip(c sam.Cigar, pathLength int, opts Options) (sam.Cigar, error) {
	ops := make(sam.Cigar, 0, len(c)+4)
	if opts.PathStart >= 0 {
		ops = append(ops, sam.NewCigarOp(sam.CigarDeletion, opts.PathStart))
	}
	ops = append(ops, c...)
	if opts.PathEnd >= 0 {
		ops = append(ops, sam.NewCigarOp(sam.CigarDeletion, pathLength-opts.PathEnd))
	}

	queryLength := opts.QueryLength
	if queryLength < 0 && opts.Sequence != "" {
		queryLength = len(opts.Sequence)
	}
	if opts.QueryStart >= 0 {
		ops = append(sam.Cigar{sam.NewCigarOp(sam.CigarInsertion, opts.QueryStart)}, ops...)
	}
	if opts.QueryEnd >= 0 {
		if queryLength < 0 {
			return nil, ErrMissingQueryLength
		}
		ops = append(ops, sam.NewCigarOp(sam.CigarInsertion, queryLength-opts.QueryEnd))
	}

	trimmed := make(sam.Cigar, 0, len(ops))
	for _, co := range ops {
		if co.Len() != 0 {
			trimmed = append(trimmed, co)
		}
	}
	return trimmed, nil
}

// finalize freezes a record when the walk leaves its segment: the query
// span is closed and, for reverse-traversed segments, the collected cigar
// is reversed and the sequence and quality slices flipped to segment-native
// orientation.
func finalize(rec *Record, queryIdx int, opts Options) {
	rec.End = queryIdx
	if opts.Sequence != "" {
		s := opts.Sequence[rec.Start:rec.End]
		if rec.ReverseComplement {
			s = gfa.ReverseComplement(s)
		}
		rec.Seq = s
	}
	if opts.Phred != "" {
		p := opts.Phred[rec.Start:rec.End]
		if rec.ReverseComplement {
			p = reverseString(p)
		}
		rec.Phred = p
	}
	if rec.ReverseComplement {
		for i, j := 0, len(rec.Cigar)-1; i < j; i, j = i+1, j-1 {
			rec.Cigar[i], rec.Cigar[j] = rec.Cigar[j], rec.Cigar[i]
		}
	}
	rec.CigarString = cigar.Encode(rec.Cigar)
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
