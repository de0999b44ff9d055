package bench

import (
	"bytes"
	"encoding/csv"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"verimix/group"
	"verimix/pedersen"
	"verimix/prng"
	"verimix/protocol/recordstore"
)

func newRunner(runs int) *Runner {
	return &Runner{
		Scheme: pedersen.NewScheme(group.DefaultParams()),
		Src:    prng.Seeded([]byte("bench-test")),
		Messages: []*big.Int{
			big.NewInt(5), big.NewInt(15), big.NewInt(25), big.NewInt(35), big.NewInt(45),
		},
		Runs: runs,
	}
}

func Test_Bench_Run(t *testing.T) {
	runner := newRunner(3)
	rows, summary, err := runner.Run()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	require.Equal(t, 3, summary.Runs)
	require.True(t, summary.AllAccepted)
	for i, row := range rows {
		require.Equal(t, i, row.Run)
		require.True(t, row.Accepted)
		require.True(t, row.CommitMS >= 0)
		require.True(t, row.ShuffleMS >= 0)
		require.True(t, row.CheckMS >= 0)
	}
}

func Test_Bench_Run_Stores_Records(t *testing.T) {
	runner := newRunner(2)
	runner.Store = recordstore.New()

	_, _, err := runner.Run()
	require.NoError(t, err)
	require.Equal(t, 2, runner.Store.Len())
}

func Test_Bench_Run_Validates_Arguments(t *testing.T) {
	runner := newRunner(0)
	_, _, err := runner.Run()
	require.Error(t, err)

	runner = newRunner(1)
	runner.Messages = nil
	_, _, err = runner.Run()
	require.Error(t, err)
}

func Test_Bench_WriteCSV(t *testing.T) {
	rows := []Row{
		{Run: 0, CommitMS: 1.25, ShuffleMS: 2.5, CheckMS: 0.75, Accepted: true},
		{Run: 1, CommitMS: 1.5, ShuffleMS: 2.25, CheckMS: 0.5, Accepted: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"PedersenCommit(ms)", "ShuffleAndProve(ms)", "SubsetCheck(ms)"}, records[0])
	require.True(t, strings.HasPrefix(records[1][0], "1.25"))
	require.True(t, strings.HasPrefix(records[2][1], "2.25"))
}

func Test_Bench_RenderChart(t *testing.T) {
	rows := []Row{
		{Run: 0, CommitMS: 1, ShuffleMS: 2, CheckMS: 3, Accepted: true},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, rows))
	require.Contains(t, buf.String(), "verimix protocol timings")
}
