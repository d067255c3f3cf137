// Package engine runs the Monte-Carlo evaluation: batches of simulated years
// are generated until the reliability indices stop moving.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"der-reliability/internal/history"
	"der-reliability/internal/indices"
	"der-reliability/internal/model"
	"der-reliability/internal/netload"
)

// Defaults used when an Options field is left at zero.
const (
	DefaultConvergenceThreshold = 0.05
	DefaultYearsPerBatch        = 100
	DefaultMaxRounds            = 500
	DefaultMinYearsZeroMean     = 1000
)

// Recorder observes evaluation progress, typically for metrics. years is the
// number of years simulated in that round.
type Recorder interface {
	RoundCompleted(cfg model.Configuration, years int, maxCoV float64)
	EvaluationFinished(cfg model.Configuration, elapsed time.Duration, converged bool)
}

// Options tune the convergence loop.
type Options struct {
	// ConvergenceThreshold stops the run once every tracked CoV is at or below it.
	ConvergenceThreshold float64
	// YearsPerBatch is the number of years one batch simulates in a single history.
	YearsPerBatch int
	// Workers is the number of batches per round, run in parallel.
	// Zero means MaxParallelism.
	Workers int
	// MaxRounds caps the run when convergence is out of reach.
	MaxRounds int
	// MinYearsZeroMean is how many years an index must stay at zero before
	// it counts as converged.
	MinYearsZeroMean int
	// Seed roots every batch's random stream. Zero picks one from the clock.
	Seed int64

	Logger   *zerolog.Logger
	Recorder Recorder
	// OnRound is called after every round with the running state.
	OnRound func(Round)
}

func (o Options) withDefaults() Options {
	if o.ConvergenceThreshold == 0 {
		o.ConvergenceThreshold = DefaultConvergenceThreshold
	}
	if o.YearsPerBatch == 0 {
		o.YearsPerBatch = DefaultYearsPerBatch
	}
	if o.Workers == 0 {
		o.Workers = MaxParallelism()
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.MinYearsZeroMean == 0 {
		o.MinYearsZeroMean = DefaultMinYearsZeroMean
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

func (o Options) validate() error {
	if !(o.ConvergenceThreshold > 0) {
		return &model.ConfigError{Field: "simulation.convergence_threshold", Reason: "must be > 0"}
	}
	if o.YearsPerBatch < 1 {
		return &model.ConfigError{Field: "simulation.years_per_batch", Reason: "must be >= 1"}
	}
	if o.Workers < 1 {
		return &model.ConfigError{Field: "simulation.workers", Reason: "must be >= 1"}
	}
	if o.MaxRounds < 1 {
		return &model.ConfigError{Field: "simulation.max_rounds", Reason: "must be >= 1"}
	}
	if o.MinYearsZeroMean < 0 {
		return &model.ConfigError{Field: "simulation.min_years_zero_mean", Reason: "must be >= 0"}
	}
	return nil
}

// Round reports the state after one round of batches.
type Round struct {
	Configuration model.Configuration
	Index         int
	Years         int
	Convergence   Convergence
	Means         model.Indices
}

// Result is the outcome of one customer evaluation.
type Result struct {
	Configuration model.Configuration
	Indices       model.Indices
	Years         int
	Rounds        int
	Converged     bool
	Convergence   Convergence
	Seed          int64
	Elapsed       time.Duration
}

type Engine struct {
	opts Options
	log  zerolog.Logger
}

func New(opts Options) *Engine {
	e := &Engine{opts: opts.withDefaults(), log: zerolog.Nop()}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}
	return e
}

// Options returns the effective options after defaults.
func (e *Engine) Options() Options { return e.opts }

// Evaluate simulates the customer in `in` until the interruption frequency
// and duration (and energy not served for standalone customers) converge,
// then returns the mean of every index over all simulated years.
//
// Inputs and options are validated before any batch runs. Reaching MaxRounds
// is not an error; the result is returned with Converged unset.
func (e *Engine) Evaluate(ctx context.Context, in *model.Inputs) (*Result, error) {
	if err := e.opts.validate(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	cfg := in.Configuration
	log := e.log.With().Str("configuration", cfg.String()).Int64("seed", e.opts.Seed).Logger()
	log.Info().
		Float64("threshold", e.opts.ConvergenceThreshold).
		Int("workers", e.opts.Workers).
		Int("years_per_batch", e.opts.YearsPerBatch).
		Msg("evaluation started")

	res := &Result{Configuration: cfg, Seed: e.opts.Seed}
	var acc Accumulator
	for round := 0; round < e.opts.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batches, err := e.runRound(ctx, in, round)
		if err != nil {
			return nil, err
		}
		for _, b := range batches {
			acc.Merge(b)
		}

		conv := acc.Convergence(cfg, e.opts.MinYearsZeroMean)
		r := Round{
			Configuration: cfg,
			Index:         round,
			Years:         acc.Years(),
			Convergence:   conv,
			Means:         acc.Means(),
		}
		log.Debug().
			Int("round", round).
			Int("years", r.Years).
			Float64("cov_aif", conv.AIF).
			Float64("cov_aid", conv.AID).
			Float64("cov_aens", conv.AENS).
			Msg("round completed")
		if e.opts.Recorder != nil {
			e.opts.Recorder.RoundCompleted(cfg, len(batches)*e.opts.YearsPerBatch, conv.Max)
		}
		if e.opts.OnRound != nil {
			e.opts.OnRound(r)
		}

		res.Rounds = round + 1
		res.Convergence = conv
		if conv.Max <= e.opts.ConvergenceThreshold {
			res.Converged = true
			break
		}
	}

	res.Indices = acc.Means()
	res.Years = acc.Years()
	res.Elapsed = time.Since(start)
	if e.opts.Recorder != nil {
		e.opts.Recorder.EvaluationFinished(cfg, res.Elapsed, res.Converged)
	}

	var ev *zerolog.Event
	if res.Converged {
		ev = log.Info()
	} else {
		ev = log.Warn().Float64("cov_max", res.Convergence.Max)
	}
	ev.Int("rounds", res.Rounds).
		Int("years", res.Years).
		Bool("converged", res.Converged).
		Dur("elapsed", res.Elapsed).
		Msg("evaluation finished")
	return res, nil
}

// Compare evaluates the same inputs under several configurations. Every run
// uses the same seed, so the load point histories are shared between them.
func (e *Engine) Compare(ctx context.Context, in *model.Inputs, cfgs []model.Configuration) ([]*Result, error) {
	out := make([]*Result, 0, len(cfgs))
	for _, c := range cfgs {
		variant := *in
		variant.Configuration = c
		res, err := e.Evaluate(ctx, &variant)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// runRound runs Workers independent batches, each on its own stream.
func (e *Engine) runRound(ctx context.Context, in *model.Inputs, round int) ([]*Accumulator, error) {
	out := make([]*Accumulator, e.opts.Workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for w := range out {
		w := w
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := history.NewSource(e.opts.Seed, round*e.opts.Workers+w)
			acc, err := RunBatch(in, e.opts.YearsPerBatch, rng)
			if err != nil {
				return fmt.Errorf("round %d batch %d: %w", round, w, err)
			}
			out[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RunBatch simulates years consecutive years from fresh histories and
// summarises them. Nothing is shared with other batches.
func RunBatch(in *model.Inputs, years int, rng history.Source) (*Accumulator, error) {
	horizon := years * model.HoursPerYear
	failure, repair := in.LoadPoint.HourlyRates()
	grid, err := history.GenerateAvailability(failure, repair, horizon, rng)
	if err != nil {
		return nil, fmt.Errorf("load point: %w", err)
	}
	series, err := netload.Compose(in.Configuration, in, grid, horizon, rng)
	if err != nil {
		return nil, err
	}
	sums, err := indices.Summarize(series, grid, in.LoadKW, years)
	if err != nil {
		return nil, err
	}
	acc := &Accumulator{}
	acc.Add(sums)
	return acc, nil
}

// Trace composes a single batch of years with the run's first stream and
// keeps every hour. Used for inspecting dispatch decisions.
func (e *Engine) Trace(in *model.Inputs, years int) ([]netload.TraceRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if years < 1 {
		return nil, &model.ConfigError{Field: "years", Reason: "must be >= 1"}
	}
	rng := history.NewSource(e.opts.Seed, 0)
	horizon := years * model.HoursPerYear
	failure, repair := in.LoadPoint.HourlyRates()
	grid, err := history.GenerateAvailability(failure, repair, horizon, rng)
	if err != nil {
		return nil, fmt.Errorf("load point: %w", err)
	}
	return netload.ComposeTrace(in.Configuration, in, grid, horizon, rng)
}

// Map returns the indices keyed by their report names.
func (r *Result) Map() map[string]float64 { return r.Indices.Map() }
