/*
Package prepare applies the segmentation engine across a whole table of
aligned reads: it loads and filters the segment graph once, derives the
forward component and its endpoints, then cuts every read's alignment
against its path and writes one flat CSV row per read.
*/
package prepare

import (
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/segtools/gosegment/pkg/gaf"
	"github.com/segtools/gosegment/pkg/gfa"
	"github.com/segtools/gosegment/pkg/graph"
	"github.com/segtools/gosegment/pkg/segment"
)

// Config controls graph filtering, read selection and output shaping.
type Config struct {
	Filter gfa.FilterConfig

	// MaxDivergence skips reads whose alignment divergence exceeds it;
	// negative disables the filter.
	MaxDivergence float64

	// Threads is the number of worker goroutines; <= 0 means NumCPU.
	Threads int

	VariantSep   string // "" disables variant extraction
	KeySep       string
	SeparateEnds bool
}

func DefaultConfig() Config {
	return Config{
		MaxDivergence: -1,
		KeySep:        "|",
		VariantSep:    "=",
		SeparateEnds:  true,
	}
}

// indexedRecord carries one GAF record and its position in the input, which
// is used to keep the output in input order when we parallelise
type indexedRecord struct {
	rec gaf.Record
	idx int
}

// rowResult is one read's flattened output row. A nil row means the read
// was skipped; it still occupies its slot in the output order.
type rowResult struct {
	query    string
	endToEnd bool
	row      map[string]any
	idx      int
}

// Prepare reads a GFA graph and a GAF alignment table, segments every read
// and writes a CSV table with one row per surviving read. Reads are skipped
// when their divergence exceeds cfg.MaxDivergence, when their path never
// touches the forward component, or when the engine rejects their
// path/cigar pair (noted on stderr); the run only fails on unreadable
// input or unwritable output.
func Prepare(gfaIn, gafIn io.Reader, out io.Writer, cfg Config) error {
	g, err := gfa.Read(gfaIn)
	if err != nil {
		return err
	}

	// the name mapping must come from the unfiltered graph, so that paths
	// through pruned segments still resolve
	nameToSeq := g.NameMapping()

	filtered := g.Filter(cfg.Filter)
	dg, err := filtered.Graph()
	if err != nil {
		return err
	}
	wccs := dg.WeaklyConnectedComponents()
	forward := graph.ForwardSegments(wccs)
	ep := dg.Endpoints(wccs)

	forwardSet := make(map[graph.Node]bool, len(forward))
	for _, n := range forward {
		forwardSet[n] = true
	}
	sources := make(map[graph.Node]bool, len(ep.Sources))
	for _, n := range ep.Sources {
		sources[n] = true
	}
	sinks := make(map[graph.Node]bool, len(ep.Sinks))
	for _, n := range ep.Sinks {
		sinks[n] = true
	}

	columns := outputColumns(forward, cfg)

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	cErr := make(chan error)
	cRecs := make(chan indexedRecord, threads)
	cReadDone := make(chan bool)
	cRows := make(chan rowResult, threads)
	cRowsDone := make(chan bool)
	cWriteDone := make(chan bool)

	go readRecords(gafIn, cRecs, cErr, cReadDone)
	go writeRows(out, columns, cRows, cErr, cWriteDone)

	var wgRows sync.WaitGroup
	wgRows.Add(threads)
	for n := 0; n < threads; n++ {
		go func() {
			cutReads(cRecs, cRows, nameToSeq, forwardSet, sources, sinks, cfg)
			wgRows.Done()
		}()
	}

	go func() {
		wgRows.Wait()
		cRowsDone <- true
	}()

	for n := 1; n > 0; {
		select {
		case err := <-cErr:
			return err
		case <-cReadDone:
			close(cRecs)
			n--
		}
	}

	for n := 1; n > 0; {
		select {
		case err := <-cErr:
			return err
		case <-cRowsDone:
			close(cRows)
			n--
		}
	}

	for n := 1; n > 0; {
		select {
		case err := <-cErr:
			return err
		case <-cWriteDone:
			n--
		}
	}

	return nil
}

// outputColumns fixes the CSV layout up front: the read's name, whether it
// spans the forward component end to end, then every forward segment's
// fields. Sentinel end segments lead and trail; real segments are sorted by
// name.
func outputColumns(forward []graph.Node, cfg Config) []string {
	baseSet := make(map[string]bool)
	for _, n := range forward {
		name := n.Base()
		if cfg.VariantSep != "" {
			if k := strings.Index(name, cfg.VariantSep); k >= 0 {
				name = name[:k]
			}
		}
		baseSet[name] = true
	}
	bases := make([]string, 0, len(baseSet)+2)
	for name := range baseSet {
		bases = append(bases, name)
	}
	sort.Strings(bases)
	if cfg.SeparateEnds {
		bases = append([]string{"upstream"}, append(bases, "downstream")...)
	}

	fields := []string{"start", "end", "reverse_complement", "matches", "mismatches", "insertions", "deletions", "cigar"}
	if cfg.VariantSep != "" {
		fields = append([]string{"variant"}, fields...)
	}

	columns := []string{"query", "end_to_end"}
	for _, base := range bases {
		for _, field := range fields {
			columns = append(columns, base+cfg.KeySep+field)
		}
	}
	return columns
}

// readRecords streams the GAF table to the workers.
func readRecords(in io.Reader, cRecs chan indexedRecord, cErr chan error, cDone chan bool) {
	r := gaf.NewReader(in)
	counter := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			cErr <- err
			return
		}
		cRecs <- indexedRecord{rec: rec, idx: counter}
		counter++
	}
	cDone <- true
}

// cutReads segments reads from cRecs and sends their flattened rows to
// cRows. Skipped and failed reads send an empty result so the writer keeps
// its ordering.
func cutReads(cRecs chan indexedRecord, cRows chan rowResult, nameToSeq map[graph.Node]string, forwardSet, sources, sinks map[graph.Node]bool, cfg Config) {
	for ir := range cRecs {
		rec := ir.rec
		out := rowResult{query: rec.Query, idx: ir.idx}

		if cfg.MaxDivergence >= 0 && rec.Divergence() > cfg.MaxDivergence {
			cRows <- out
			continue
		}
		if !touchesForward(rec.Path, forwardSet) {
			cRows <- out
			continue
		}

		opts := segment.DefaultOptions()
		opts.VariantSep = cfg.VariantSep
		opts.SeparateEnds = cfg.SeparateEnds
		opts.QueryStart = rec.QueryStart
		opts.QueryEnd = rec.QueryEnd
		opts.QueryLength = rec.QueryLength
		opts.PathStart = rec.PathStart
		opts.PathEnd = rec.PathEnd

		recs, err := segment.Cut(rec.Cigar, rec.Path, nameToSeq, opts)
		if err != nil {
			os.Stderr.WriteString("skipping read " + rec.Query + ": " + err.Error() + "\n")
			cRows <- out
			continue
		}
		row, err := recs.Flatten(cfg.KeySep, opts)
		if err != nil {
			os.Stderr.WriteString("skipping read " + rec.Query + ": " + err.Error() + "\n")
			cRows <- out
			continue
		}

		out.row = row
		if len(rec.Path) > 0 {
			out.endToEnd = sources[rec.Path[0]] && sinks[rec.Path[len(rec.Path)-1]]
		}
		cRows <- out
	}
}

func touchesForward(path []graph.Node, forwardSet map[graph.Node]bool) bool {
	for _, n := range path {
		if forwardSet[n] || forwardSet[n.Flip()] {
			return true
		}
	}
	return false
}

// writeRows writes the output as it arrives. It uses a map to write rows in
// the same order as they are in the input file.
func writeRows(out io.Writer, columns []string, cRows chan rowResult, cErr chan error, cDone chan bool) {
	if _, err := io.WriteString(out, strings.Join(columns, ",")+"\n"); err != nil {
		cErr <- err
		return
	}

	outputMap := make(map[int]rowResult)
	counter := 0

	write := func(rr rowResult) error {
		if rr.row == nil {
			return nil
		}
		cells := make([]string, len(columns))
		cells[0] = rr.query
		cells[1] = strconv.FormatBool(rr.endToEnd)
		for i, col := range columns[2:] {
			cells[i+2] = formatCell(rr.row[col])
		}
		_, err := io.WriteString(out, strings.Join(cells, ",")+"\n")
		return err
	}

	for rr := range cRows {
		outputMap[rr.idx] = rr

		for {
			next, ok := outputMap[counter]
			if !ok {
				break
			}
			if err := write(next); err != nil {
				cErr <- err
				return
			}
			delete(outputMap, counter)
			counter++
		}
	}

	cDone <- true
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	}
	return ""
}
