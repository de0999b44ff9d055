// Command verimix drives the shuffle protocol from the command line: a
// demo mode that runs one protocol instance and reports the verdict, and a
// bench mode that times repeated runs and exports the results.
package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"verimix/bench"
	"verimix/config"
	"verimix/group"
	"verimix/pedersen"
	"verimix/prng"
	"verimix/protocol"
	"verimix/protocol/recordstore"
)

func main() {
	app := &cli.App{
		Name:  "verimix",
		Usage: "Pedersen commitment shuffles with subset consistency checks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "group parameter file (JSON/YAML/TOML); defaults to the built-in toy parameters",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "seed for deterministic randomness; empty means crypto/rand",
			},
		},
		Before: func(c *cli.Context) error {
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger()
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			demoCommand(),
			benchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("verimix failed")
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "run one commit-shuffle-check round and report the verdict",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "messages",
				Value: "5,15,25,35,45",
				Usage: "comma-separated message batch",
			},
			&cli.StringFlag{
				Name:  "subset",
				Usage: "comma-separated original indices to spot-check; empty means the full set",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "pick the subset interactively",
			},
		},
		Action: runDemo,
	}
}

func runDemo(c *cli.Context) error {
	params, err := loadParams(c)
	if err != nil {
		return err
	}
	scheme := pedersen.NewScheme(params)
	src := newSource(c)

	messages, err := parseInts(c.String("messages"))
	if err != nil {
		return xerrors.Errorf("parsing messages: %v", err)
	}

	prover, err := protocol.Commit(scheme, src, messages)
	if err != nil {
		return err
	}
	rec, err := prover.ShuffleAndProve()
	if err != nil {
		return err
	}

	store := recordstore.New()
	store.Set(rec)

	subset, err := chooseSubset(c, messages)
	if err != nil {
		return err
	}

	verifier := protocol.NewVerifier(scheme)
	accepted, err := verifier.CheckRecord(subset, rec)
	if err != nil {
		return err
	}

	verdict := "REJECT"
	if accepted {
		verdict = "ACCEPT"
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run ID", "Batch size", "Subset", "Verdict"})
	table.Append([]string{
		rec.ID,
		strconv.Itoa(len(messages)),
		formatInts(subset),
		verdict,
	})
	table.Render()

	log.Info().Str("runID", rec.ID).Bool("accepted", accepted).Msg("demo finished")
	return nil
}

func chooseSubset(c *cli.Context, messages []*big.Int) ([]int, error) {
	if c.Bool("interactive") {
		options := make([]string, len(messages))
		for i, m := range messages {
			options[i] = fmt.Sprintf("%d (message %v)", i, m)
		}
		var picked []string
		prompt := &survey.MultiSelect{
			Message: "Original indices to spot-check:",
			Options: options,
		}
		if err := survey.AskOne(prompt, &picked, survey.WithValidator(survey.Required)); err != nil {
			return nil, xerrors.Errorf("subset prompt: %v", err)
		}
		subset := make([]int, len(picked))
		for i, s := range picked {
			idx, err := strconv.Atoi(strings.SplitN(s, " ", 2)[0])
			if err != nil {
				return nil, xerrors.Errorf("subset prompt: %v", err)
			}
			subset[i] = idx
		}
		return subset, nil
	}

	if raw := c.String("subset"); raw != "" {
		return parseIndexList(raw)
	}

	subset := make([]int, len(messages))
	for i := range subset {
		subset[i] = i
	}
	return subset, nil
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "time repeated protocol runs and export the results",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "runs",
				Value: 100,
				Usage: "number of protocol rounds",
			},
			&cli.IntFlag{
				Name:  "n",
				Value: 5,
				Usage: "batch size; messages default to 5,15,25,...",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "CSV output path; empty skips the export",
			},
			&cli.StringFlag{
				Name:  "chart",
				Usage: "HTML chart output path; empty skips the chart",
			},
		},
		Action: runBench,
	}
}

func runBench(c *cli.Context) error {
	params, err := loadParams(c)
	if err != nil {
		return err
	}
	scheme := pedersen.NewScheme(params)

	n := c.Int("n")
	if n <= 0 {
		return xerrors.Errorf("invalid batch size %d", n)
	}
	messages := make([]*big.Int, n)
	for i := range messages {
		messages[i] = big.NewInt(int64(10*i + 5))
	}

	runner := &bench.Runner{
		Scheme:   scheme,
		Src:      newSource(c),
		Messages: messages,
		Runs:     c.Int("runs"),
	}
	rows, summary, err := runner.Run()
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return xerrors.Errorf("creating %s: %v", out, err)
		}
		defer f.Close()
		if err := bench.WriteCSV(f, rows); err != nil {
			return err
		}
		log.Info().Str("path", out).Msg("timings exported")
	}

	if chart := c.String("chart"); chart != "" {
		f, err := os.Create(chart)
		if err != nil {
			return xerrors.Errorf("creating %s: %v", chart, err)
		}
		defer f.Close()
		if err := bench.RenderChart(f, rows); err != nil {
			return err
		}
		log.Info().Str("path", chart).Msg("chart rendered")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Runs", "Avg commit (ms)", "Avg shuffle (ms)", "Avg check (ms)", "All accepted"})
	table.Append([]string{
		strconv.Itoa(summary.Runs),
		fmt.Sprintf("%.3f", summary.AvgCommitMS),
		fmt.Sprintf("%.3f", summary.AvgShuffleMS),
		fmt.Sprintf("%.3f", summary.AvgCheckMS),
		strconv.FormatBool(summary.AllAccepted),
	})
	table.Render()
	return nil
}

func loadParams(c *cli.Context) (group.Params, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return group.DefaultParams(), nil
}

func newSource(c *cli.Context) prng.Source {
	if seed := c.String("seed"); seed != "" {
		return prng.Seeded([]byte(seed))
	}
	return prng.Crypto()
}

func parseInts(raw string) ([]*big.Int, error) {
	parts := strings.Split(raw, ",")
	values := make([]*big.Int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, xerrors.Errorf("not a base-10 integer: %q", part)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, xerrors.New("empty list")
	}
	return values, nil
}

func parseIndexList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, xerrors.Errorf("not an index: %q", part)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func formatInts(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}
