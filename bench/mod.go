// Package bench drives repeated Commit -> ShuffleAndProve -> SubsetCheck
// rounds against the protocol API and records per-phase wall times. It is
// a plain external caller of the core: nothing in here touches protocol
// internals.
package bench

import (
	"encoding/csv"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"verimix/pedersen"
	"verimix/prng"
	"verimix/protocol"
	"verimix/protocol/recordstore"
)

// Row is the timing of one protocol run, in milliseconds per phase.
type Row struct {
	Run       int
	CommitMS  float64
	ShuffleMS float64
	CheckMS   float64
	Accepted  bool
}

// Summary aggregates a batch of rows.
type Summary struct {
	Runs         int
	AvgCommitMS  float64
	AvgShuffleMS float64
	AvgCheckMS   float64
	AllAccepted  bool
}

// Runner executes timed protocol rounds over a fixed message batch.
type Runner struct {
	Scheme   *pedersen.Scheme
	Src      prng.Source
	Messages []*big.Int
	Runs     int

	// Store, if non-nil, keeps every produced record for later inspection.
	Store recordstore.RecordStore
}

// Run executes the configured number of rounds. Every round commits the
// batch afresh, shuffles, and subset-checks the full index set.
func (r *Runner) Run() ([]Row, Summary, error) {
	if r.Runs <= 0 {
		return nil, Summary{}, xerrors.Errorf("bench: non-positive run count %d", r.Runs)
	}
	if len(r.Messages) == 0 {
		return nil, Summary{}, xerrors.New("bench: empty message batch")
	}

	fullSubset := make([]int, len(r.Messages))
	for i := range fullSubset {
		fullSubset[i] = i
	}

	verifier := protocol.NewVerifier(r.Scheme)
	rows := make([]Row, 0, r.Runs)
	summary := Summary{Runs: r.Runs, AllAccepted: true}

	for run := 0; run < r.Runs; run++ {
		start := time.Now()
		prover, err := protocol.Commit(r.Scheme, r.Src, r.Messages)
		if err != nil {
			return nil, Summary{}, xerrors.Errorf("bench: run %d: %v", run, err)
		}
		commitMS := msSince(start)

		start = time.Now()
		rec, err := prover.ShuffleAndProve()
		if err != nil {
			return nil, Summary{}, xerrors.Errorf("bench: run %d: %v", run, err)
		}
		shuffleMS := msSince(start)

		start = time.Now()
		accepted, err := verifier.CheckRecord(fullSubset, rec)
		if err != nil {
			return nil, Summary{}, xerrors.Errorf("bench: run %d: %v", run, err)
		}
		checkMS := msSince(start)

		if r.Store != nil {
			r.Store.Set(rec)
		}

		rows = append(rows, Row{
			Run:       run,
			CommitMS:  commitMS,
			ShuffleMS: shuffleMS,
			CheckMS:   checkMS,
			Accepted:  accepted,
		})
		summary.AvgCommitMS += commitMS
		summary.AvgShuffleMS += shuffleMS
		summary.AvgCheckMS += checkMS
		summary.AllAccepted = summary.AllAccepted && accepted
	}

	summary.AvgCommitMS /= float64(r.Runs)
	summary.AvgShuffleMS /= float64(r.Runs)
	summary.AvgCheckMS /= float64(r.Runs)

	log.Info().
		Int("runs", summary.Runs).
		Float64("avgCommitMS", summary.AvgCommitMS).
		Float64("avgShuffleMS", summary.AvgShuffleMS).
		Float64("avgCheckMS", summary.AvgCheckMS).
		Bool("allAccepted", summary.AllAccepted).
		Msg("bench finished")

	return rows, summary, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1e3
}

// WriteCSV emits one row per run with the per-phase columns of the
// original prototype's timing harness.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"PedersenCommit(ms)", "ShuffleAndProve(ms)", "SubsetCheck(ms)"}); err != nil {
		return xerrors.Errorf("bench: writing csv header: %v", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatFloat(row.CommitMS, 'f', 6, 64),
			strconv.FormatFloat(row.ShuffleMS, 'f', 6, 64),
			strconv.FormatFloat(row.CheckMS, 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return xerrors.Errorf("bench: writing csv row %d: %v", row.Run, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderChart renders an HTML line chart of per-run phase timings.
func RenderChart(w io.Writer, rows []Row) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "verimix protocol timings",
			Subtitle: "per-run wall time by phase (ms)",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "run"}),
	)

	xs := make([]string, len(rows))
	commit := make([]opts.LineData, len(rows))
	shuffle := make([]opts.LineData, len(rows))
	check := make([]opts.LineData, len(rows))
	for i, row := range rows {
		xs[i] = strconv.Itoa(row.Run)
		commit[i] = opts.LineData{Value: row.CommitMS}
		shuffle[i] = opts.LineData{Value: row.ShuffleMS}
		check[i] = opts.LineData{Value: row.CheckMS}
	}

	line.SetXAxis(xs).
		AddSeries("PedersenCommit", commit).
		AddSeries("ShuffleAndProve", shuffle).
		AddSeries("SubsetCheck", check)

	return line.Render(w)
}
