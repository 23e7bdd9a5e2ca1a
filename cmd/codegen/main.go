package main

import (
	"context"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/signalflow/cmd/codegen/templates"
	"github.com/go-logr/stdr"
	"github.com/urfave/cli/v3"
)

const (
	maxArityKey = "max"
	outKey      = "out"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the LiftN combinators",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  maxArityKey,
				Usage: "Highest LiftN arity to generate",
				Value: templates.MaxArity,
			},
			&cli.StringFlag{
				Name:  outKey,
				Usage: "Destination file",
				Value: "pipes/lift_gen.go",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("codegen")

	start := time.Now()
	logger.Info("codegen started")
	defer func() {
		logger.Info("codegen finished", "took", time.Since(start).String())
	}()

	shapes, err := templates.LiftShapes(int(cmd.Uint(maxArityKey)))
	if err != nil {
		return err
	}
	contents, err := format.Source([]byte(templates.LiftGen(shapes)))
	if err != nil {
		return err
	}

	out := cmd.String(outKey)
	if err := os.WriteFile(out, contents, 0644); err != nil {
		return err
	}
	logger.Info("wrote lift combinators", "file", out, "arities", len(shapes))
	return nil
}
