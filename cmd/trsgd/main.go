// Command trsgd trains a truncated-gradient logistic regression model on
// weighted data sources.
//
//	trsgd [flags] DATALIST N_ITER [START_ITER]
//
// DATALIST lists one "path weight" pair per line. The learner parameters and
// the model are read before training; the model is written back afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/trsgd"
	"github.com/hupe1980/trsgd/codec"
	"github.com/hupe1980/trsgd/feature"
	"github.com/hupe1980/trsgd/learner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "trsgd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, stderr io.Writer) error {
	cfg, args, err := parseArgs(argv, stderr)
	if err != nil {
		return err
	}
	logger, err := cfg.logger()
	if err != nil {
		return err
	}

	params, err := readParams(cfg.Params)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "learner parameters",
		"K", params.K,
		"stepsize", params.StepSize,
		"threshold", params.Threshold,
		"g", params.Gravity,
		"power_eta", params.PowerEta,
	)

	specs, err := readSourceList(args.DataList)
	if err != nil {
		return err
	}
	maps, err := mapSources(ctx, specs)
	if err != nil {
		return err
	}
	defer maps.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	smp, err := buildSampler(specs, maps, seed)
	if err != nil {
		return err
	}

	l, err := learner.New(cfg.Spaces, params,
		learner.WithLogger(logger.Logger),
		learner.WithMaxSpaces(max(cfg.Spaces, learner.DefaultMaxSpaces)),
	)
	if err != nil {
		return err
	}

	opts := []trsgd.Option{
		trsgd.WithLogger(logger),
		trsgd.WithReseekEvery(cfg.ReseekEvery),
		trsgd.WithReportEvery(cfg.ReportEvery),
		trsgd.WithSkipMalformed(cfg.SkipMalformed),
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, trsgd.WithMetricsCollector(NewPrometheusCollector(reg)))
		shutdown := serveMetrics(ctx, cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	if cfg.Report != "" {
		c, err := codec.ByName(cfg.ReportCodec)
		if err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.Report, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		opts = append(opts, trsgd.WithReporter(trsgd.NewReporter(f, c)))
	}

	t, err := trsgd.NewTrainer(smp, feature.TSVExtractor{}, l, opts...)
	if err != nil {
		return err
	}

	loc, err := parseLocation(cfg.Model)
	if err != nil {
		return err
	}
	store, name, err := openStore(ctx, cfg, loc)
	if err != nil {
		return err
	}
	if _, err := t.LoadModel(ctx, store, name); err != nil {
		return fmt.Errorf("load %s: %w", loc, err)
	}
	l.SetIteration(args.StartIter)

	logger.InfoContext(ctx, "start training",
		"run_id", t.RunID(),
		"sources", len(specs),
		"n_iter", args.NIter,
		"start_iter", args.StartIter,
		"seed", seed,
	)
	sum, runErr := t.Run(ctx, args.NIter)
	logger.InfoContext(ctx, "end training",
		"run_id", sum.RunID,
		"records", sum.Records,
		"skipped", sum.Skipped,
		"reseeks", sum.Reseeks,
		"duration", sum.Duration,
		"weights", l.Size(),
	)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	// An interrupted run still keeps what it learned.
	if err := t.SaveModel(context.WithoutCancel(ctx), store, name); err != nil {
		return fmt.Errorf("save %s: %w", loc, err)
	}
	return runErr
}

func readParams(path string) (learner.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return learner.Params{}, err
	}
	defer f.Close()

	p, err := learner.ReadParams(f)
	if err != nil {
		return learner.Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
