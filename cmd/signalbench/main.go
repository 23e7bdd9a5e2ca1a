package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/delaneyj/signalflow/pipes"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/urfave/cli/v3"
)

const (
	configKey     = "config"
	verbosityKey  = "verbosity"
	cpuProfileKey = "cpuprofile"
)

func main() {
	cmd := &cli.Command{
		Name:  "signalbench",
		Usage: "Benchmark signal graphs",
		Commands: []*cli.Command{
			{
				Name:   "propagate",
				Usage:  "Latency of one update through width x depth lift chains",
				Flags:  commonFlags(),
				Action: propagate,
			},
			{
				Name:   "fanout",
				Usage:  "Throughput of merged sources delivered to many subscribers",
				Flags:  commonFlags(),
				Action: fanout,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  configKey,
			Usage: "YAML scenario file, defaults are used when empty",
		},
		&cli.IntFlag{
			Name:  verbosityKey,
			Usage: "Log verbosity, 1 logs every worker start and stop",
		},
		&cli.StringFlag{
			Name:  cpuProfileKey,
			Usage: "Write a CPU profile to this file",
		},
	}
}

// setup loads the scenarios and starts profiling. The returned stop func must
// be called once the benchmark is done.
func setup(cmd *cli.Command) (Scenarios, logr.Logger, func(), error) {
	stdr.SetVerbosity(int(cmd.Int(verbosityKey)))
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("signalbench")

	scenarios, err := loadScenarios(cmd.String(configKey))
	if err != nil {
		return Scenarios{}, logger, nil, err
	}

	stop := func() {}
	if path := cmd.String(cpuProfileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return Scenarios{}, logger, nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return Scenarios{}, logger, nil, err
		}
		stop = func() {
			pprof.StopCPUProfile()
			f.Close()
		}
	}
	return scenarios, logger, stop, nil
}

func propagate(ctx context.Context, cmd *cli.Command) error {
	scenarios, logger, stop, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()

	results := make([]propagateResult, 0, len(scenarios.Propagate))
	for _, sc := range scenarios.Propagate {
		logger.Info("running propagate", "width", sc.Width, "depth", sc.Depth, "iterations", sc.Iterations)
		sys := pipes.NewSystem(pipes.WithLogr(logger))
		r, err := runPropagate(sys, sc)
		if err != nil {
			return fmt.Errorf("propagate %dx%d: %w", sc.Width, sc.Depth, err)
		}
		if err := sys.Wait(); err != nil {
			return err
		}
		results = append(results, r)
	}
	renderPropagate(os.Stdout, results)
	return nil
}

func fanout(ctx context.Context, cmd *cli.Command) error {
	scenarios, logger, stop, err := setup(cmd)
	if err != nil {
		return err
	}
	defer stop()

	results := make([]fanoutResult, 0, len(scenarios.Fanout))
	for _, sc := range scenarios.Fanout {
		logger.Info("running fanout", "name", sc.Name, "sources", sc.Sources, "subscribers", sc.Subscribers)
		sys := pipes.NewSystem(pipes.WithLogr(logger))
		r, err := runFanout(sys, sc)
		if err != nil {
			return fmt.Errorf("fanout %s: %w", sc.Name, err)
		}
		if err := sys.Wait(); err != nil {
			return err
		}
		if !r.consistent {
			logger.Info("subscribers disagree on the delivered sequence", "name", sc.Name)
		}
		results = append(results, r)
	}
	renderFanout(os.Stdout, results)
	return nil
}
