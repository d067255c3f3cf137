package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/cheggaaa/pb.v1"

	"der-reliability/internal/config"
	"der-reliability/internal/engine"
	"der-reliability/internal/logger"
	"der-reliability/internal/model"
	"der-reliability/internal/report"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "evaluate":
		err = cmdEvaluate(ctx, os.Args[2:])
	case "compare":
		err = cmdCompare(ctx, os.Args[2:])
	case "trace":
		err = cmdTrace(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli evaluate --config examples/config.yaml [--out results/indices.csv] [--json]")
	fmt.Println("  cli compare  --config examples/config.yaml [--configurations no_der,pv_only,...] [--out results/compare.csv]")
	fmt.Println("  cli trace    --config examples/config.yaml [--years 1] --out results/trace.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - evaluate runs until AIF and AID (and AENS when standalone) converge")
	fmt.Println("  - compare reuses the same seed so every configuration sees the same grid outages")
	fmt.Println("  - trace writes an hourly ledger with action=CHARGING/IDLE/DISCHARGING/OFFLINE")
}

type common struct {
	cfgPath  *string
	out      *string
	asJSON   *bool
	progress *bool
}

func commonFlags(fs *flag.FlagSet, defaultOut string) common {
	return common{
		cfgPath:  fs.String("config", "", "Path to YAML config"),
		out:      fs.String("out", defaultOut, "Output path (- for stdout)"),
		asJSON:   fs.Bool("json", false, "Write JSON instead of CSV"),
		progress: fs.Bool("progress", true, "Show a per-round progress bar"),
	}
}

func setup(c common) (*config.Config, *model.Inputs, zerolog.Logger, error) {
	if *c.cfgPath == "" {
		return nil, nil, zerolog.Nop(), fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(*c.cfgPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	in, err := cfg.LoadInputs()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	return cfg, in, log, nil
}

func cmdEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	c := commonFlags(fs, "-")
	_ = fs.Parse(args)

	cfg, in, log, err := setup(c)
	if err != nil {
		return err
	}

	opts := cfg.Simulation.ToOptions(&log)
	bar := progressBar(*c.progress, opts.MaxRounds)
	opts.OnRound = bar.onRound

	res, err := engine.New(opts).Evaluate(ctx, in)
	bar.finish()
	if err != nil {
		return err
	}
	return write(*c.out, *c.asJSON, []*engine.Result{res})
}

func cmdCompare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	c := commonFlags(fs, "-")
	names := fs.String("configurations", "", "Comma-separated configurations (default: all)")
	_ = fs.Parse(args)

	cfg, in, log, err := setup(c)
	if err != nil {
		return err
	}

	cfgs := model.Configurations
	if *names != "" {
		cfgs = nil
		for _, n := range strings.Split(*names, ",") {
			v, err := model.ParseConfiguration(n)
			if err != nil {
				return err
			}
			cfgs = append(cfgs, v)
		}
	}
	// Every configuration must be valid for the shared inputs.
	for _, v := range cfgs {
		variant := *in
		variant.Configuration = v
		if err := variant.Validate(); err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}
	}

	opts := cfg.Simulation.ToOptions(&log)
	bar := progressBar(*c.progress, opts.MaxRounds*len(cfgs))
	opts.OnRound = bar.onRound

	results, err := engine.New(opts).Compare(ctx, in, cfgs)
	bar.finish()
	if err != nil {
		return err
	}
	return write(*c.out, *c.asJSON, results)
}

func cmdTrace(args []string) error {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	c := commonFlags(fs, "results/trace.csv")
	years := fs.Int("years", 1, "Number of years to trace")
	_ = fs.Parse(args)

	cfg, in, log, err := setup(c)
	if err != nil {
		return err
	}

	rows, err := engine.New(cfg.Simulation.ToOptions(&log)).Trace(in, *years)
	if err != nil {
		return err
	}
	ledger := report.LedgerFromTrace(rows)

	if *c.out == "-" {
		return report.WriteLedger(os.Stdout, ledger)
	}
	if err := os.MkdirAll(filepath.Dir(*c.out), 0o755); err != nil {
		return err
	}
	if err := report.WriteLedgerCSV(*c.out, ledger); err != nil {
		return err
	}
	log.Info().Int("rows", len(ledger)).Str("path", *c.out).Msg("wrote trace")
	return nil
}

func write(path string, asJSON bool, results []*engine.Result) (err error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if asJSON {
		return report.WriteJSON(w, results)
	}
	return report.WriteIndicesCSV(w, results)
}

// roundBar advances once per round. The total is the round cap, so a run
// that converges early finishes short of it.
type roundBar struct {
	bar *pb.ProgressBar
}

func progressBar(enabled bool, total int) *roundBar {
	if !enabled {
		return &roundBar{}
	}
	bar := pb.New(total)
	bar.Output = os.Stderr
	bar.ShowSpeed = false
	bar.Start()
	return &roundBar{bar: bar}
}

func (r *roundBar) onRound(round engine.Round) {
	if r.bar == nil {
		return
	}
	r.bar.Prefix(fmt.Sprintf("%s %d years cov %.3f ", round.Configuration, round.Years, round.Convergence.Max))
	r.bar.Increment()
}

func (r *roundBar) finish() {
	if r.bar != nil {
		r.bar.Finish()
	}
}
