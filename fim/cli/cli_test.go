package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/counting"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/encoding"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abcDataset is {A,B,C} {A,B} {A,C} {B,C} {A} as a three column file with a
// missing value wherever an item is absent.
const abcDataset = "A\tB\tC\n" +
	"A\tB\t\n" +
	"A\t\tC\n" +
	"\tB\tC\n" +
	"A\t\t\n"

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMineCommandListing(t *testing.T) {
	path := writeDataset(t, abcDataset)

	out, logs, err := run(t, "mine", "--support", "40", "--label", "none", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# support 40% (min count 2 of 5 transactions)", lines[0])
	assert.Equal(t, "1\t4\tG1_A", lines[1])
	assert.Equal(t, "2\t2\tG2_B G3_C", lines[6])

	assert.Contains(t, logs, "dataset loaded")
	assert.Contains(t, logs, "Number of length-2 frequent itemsets: 3")
}

func TestMineCommandSummaryAndOutputFile(t *testing.T) {
	path := writeDataset(t, abcDataset)
	outFile := filepath.Join(t.TempDir(), "result.txt")
	metricsFile := filepath.Join(t.TempDir(), "fim.prom")

	stdout, _, err := run(t, "mine", "-s", "40", "--label", "none", "--summary", "-o", outFile,
		"--metrics-file", metricsFile, "--counter", "indexed", "--workers", "2", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "Support is set to be 40%\n"+
		"Number of length-1 frequent itemsets: 3\n"+
		"Number of length-2 frequent itemsets: 3\n", string(data))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `fim_runs_total{outcome="complete"} 1`)
	assert.Contains(t, string(prom), "fim_min_support_count 2")
}

func TestSweepCommand(t *testing.T) {
	path := writeDataset(t, abcDataset)

	out, _, err := run(t, "sweep", "--levels", "40,100", "--label", "none", "--log-level", "warn", path)
	require.NoError(t, err)
	assert.Equal(t, "Support is set to be 40%\n"+
		"Number of length-1 frequent itemsets: 3\n"+
		"Number of length-2 frequent itemsets: 3\n"+
		"Support is set to be 100%\n", out)
}

func TestSweepRejectsInvalidLevelBeforeRunning(t *testing.T) {
	path := writeDataset(t, abcDataset)

	out, _, err := run(t, "sweep", "--levels", "40,0", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep level 0")
	assert.Empty(t, out)
}

func TestMineCommandErrors(t *testing.T) {
	path := writeDataset(t, abcDataset)

	_, _, err := run(t, "mine", "--support", "150", path)
	assert.ErrorContains(t, err, "support percentage")

	_, _, err = run(t, "mine", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "open dataset")

	_, _, err = run(t, "mine", "--counter", "bogus", path)
	assert.ErrorContains(t, err, "unknown counting strategy")

	_, _, err = run(t, "mine", "--config", filepath.Join(t.TempDir(), "none.yaml"), path)
	assert.Error(t, err)
}

func TestMineCommandMalformedRow(t *testing.T) {
	path := writeDataset(t, "a\tb\tc\na\tb\n")

	_, _, err := run(t, "mine", path)
	var mre *encoding.MalformedRowError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, 1, mre.Row)
	assert.Equal(t, 2, mre.Line)
}

func TestMineCommandEmptyDataset(t *testing.T) {
	path := writeDataset(t, "# nothing here\n")
	_, _, err := run(t, "mine", path)
	assert.ErrorContains(t, err, "no transactions")
}

func TestDefaultSessionCountsOnEveryCPU(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDataset(t, abcDataset)

	g := &globalFlags{}
	cmd := newMineCmd(g)
	cmd.SetErr(io.Discard)
	s, err := g.resolve(cmd, []string{path})
	require.NoError(t, err)
	require.Zero(t, s.cfg.Mining.Workers)

	auto, ok := s.counter.(*counting.Auto)
	require.True(t, ok, "default strategy is auto")
	naive, ok := auto.Select(s.store, nil).(*counting.Naive)
	require.True(t, ok)
	assert.Equal(t, parallel.DefaultWorkers(), naive.Workers)
}
