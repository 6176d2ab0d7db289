package prepare

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segtools/gosegment/pkg/graph"
)

const testGfa = "S\ts1\tAAA\n" +
	"S\ts2\tCCCC\n" +
	"L\ts1\t+\ts2\t+\t0M\n"

const testGaf = "q1\t7\t0\t7\t+\t>s1>s2\t7\t0\t7\t7\t7\t60\tcg:Z:7=\n"

// runPrepare parses the CSV output into one map per row, keyed by column.
func runPrepare(t *testing.T, gfaIn, gafIn string, cfg Config) []map[string]string {
	t.Helper()
	var out bytes.Buffer
	err := Prepare(strings.NewReader(gfaIn), strings.NewReader(gafIn), &out, cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	header := strings.Split(lines[0], ",")

	var rows []map[string]string
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		require.Len(t, cells, len(header))
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func TestPrepare(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threads = 2

	rows := runPrepare(t, testGfa, testGaf, cfg)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "q1", row["query"])
	assert.Equal(t, "true", row["end_to_end"])

	assert.Equal(t, "0", row["s1|start"])
	assert.Equal(t, "3", row["s1|end"])
	assert.Equal(t, "false", row["s1|reverse_complement"])
	assert.Equal(t, "3", row["s1|matches"])
	assert.Equal(t, "3=", row["s1|cigar"])

	assert.Equal(t, "3", row["s2|start"])
	assert.Equal(t, "7", row["s2|end"])
	assert.Equal(t, "4", row["s2|matches"])
	assert.Equal(t, "4=", row["s2|cigar"])

	// sentinel end segments are empty here
	assert.Equal(t, "0", row["upstream|start"])
	assert.Equal(t, "0", row["upstream|end"])
	assert.Equal(t, "", row["upstream|cigar"])
	assert.Equal(t, "7", row["downstream|start"])
	assert.Equal(t, "7", row["downstream|end"])

	// no variant identifiers in this graph
	assert.Equal(t, "", row["s1|variant"])
}

func TestPrepareOutputOrder(t *testing.T) {
	gaf := testGaf +
		"q2\t4\t0\t4\t+\t>s2\t4\t0\t4\t4\t4\t60\tcg:Z:4=\n" +
		"q3\t3\t0\t3\t+\t>s1\t3\t0\t3\t3\t3\t60\tcg:Z:3=\n"

	cfg := DefaultConfig()
	cfg.Threads = 4

	rows := runPrepare(t, testGfa, gaf, cfg)
	require.Len(t, rows, 3)
	assert.Equal(t, "q1", rows[0]["query"])
	assert.Equal(t, "q2", rows[1]["query"])
	assert.Equal(t, "q3", rows[2]["query"])

	// q2 starts at a non-source node
	assert.Equal(t, "false", rows[1]["end_to_end"])
}

func TestPrepareMaxDivergence(t *testing.T) {
	gaf := testGaf +
		"q2\t7\t0\t7\t+\t>s1>s2\t7\t0\t7\t4\t7\t60\tcg:Z:4=3X\n"

	cfg := DefaultConfig()
	cfg.Threads = 1
	cfg.MaxDivergence = 0.1

	rows := runPrepare(t, testGfa, gaf, cfg)
	require.Len(t, rows, 1)
	assert.Equal(t, "q1", rows[0]["query"])
}

func TestPrepareFilterRestrictsForwardComponent(t *testing.T) {
	// a second component that the filter removes; a read aligned only to it
	// is skipped
	gfa := testGfa +
		"S\tctrl1\tGG\n" +
		"S\tctrl2\tTT\n" +
		"L\tctrl1\t+\tctrl2\t+\t0M\n"
	gaf := testGaf +
		"q2\t4\t0\t4\t+\t>ctrl1>ctrl2\t4\t0\t4\t4\t4\t60\tcg:Z:4=\n"

	cfg := DefaultConfig()
	cfg.Threads = 1
	cfg.Filter.ExcludePrefix = []string{"ctrl"}

	rows := runPrepare(t, gfa, gaf, cfg)
	require.Len(t, rows, 1)
	assert.Equal(t, "q1", rows[0]["query"])
}

func TestPrepareVariantColumn(t *testing.T) {
	gfa := "S\tbc=12\tAAA\n" +
		"S\tgene\tCCCC\n" +
		"L\tbc=12\t+\tgene\t+\t0M\n"
	gaf := "q1\t7\t0\t7\t+\t>bc=12>gene\t7\t0\t7\t7\t7\t60\tcg:Z:7=\n"

	cfg := DefaultConfig()
	cfg.Threads = 1

	rows := runPrepare(t, gfa, gaf, cfg)
	require.Len(t, rows, 1)
	assert.Equal(t, "12", rows[0]["bc|variant"])
	assert.Equal(t, "3", rows[0]["bc|matches"])
	assert.Equal(t, "4", rows[0]["gene|matches"])
}

func TestOutputColumns(t *testing.T) {
	forward := []graph.Node{graph.Forward("geneB"), graph.Forward("bc=12"), graph.Forward("geneA")}
	cols := outputColumns(forward, DefaultConfig())

	require.Greater(t, len(cols), 2)
	assert.Equal(t, "query", cols[0])
	assert.Equal(t, "end_to_end", cols[1])

	// sentinels bracket the sorted, variant-stripped segment names
	assert.Equal(t, "upstream|variant", cols[2])
	var bases []string
	for _, c := range cols[2:] {
		base := strings.SplitN(c, "|", 2)[0]
		if len(bases) == 0 || bases[len(bases)-1] != base {
			bases = append(bases, base)
		}
	}
	assert.Equal(t, []string{"upstream", "bc", "geneA", "geneB", "downstream"}, bases)
}
