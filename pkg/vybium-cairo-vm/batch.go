package vybiumcairovm

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ExecuteBatch runs independent programs in parallel, at most limit at a
// time (limit <= 0 means no limit). Each program gets its own VM and memory.
// The first failure cancels runs not yet started and is returned.
func ExecuteBatch(ctx context.Context, config *Config, programs []*Program, limit int) ([]*ExecutionTrace, error) {
	return ExecuteBatchWithLogger(ctx, config, programs, limit, zerolog.Nop())
}

// ExecuteBatchWithLogger is ExecuteBatch with run logging
func ExecuteBatchWithLogger(ctx context.Context, config *Config, programs []*Program, limit int, log zerolog.Logger) ([]*ExecutionTrace, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: "invalid configuration", Cause: err}
	}

	traces := make([]*ExecutionTrace, len(programs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, p := range programs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			machine, err := NewVMWithLogger(config, log.With().Int("program", i).Logger())
			if err != nil {
				return err
			}
			trace, err := machine.Execute(p)
			if err != nil {
				return err
			}
			traces[i] = trace
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}
