package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ssequote/internal/batch"
	"ssequote/internal/config"
	"ssequote/internal/episode"
	"ssequote/internal/logging"
	"ssequote/internal/notifications"
	"ssequote/internal/staging"
)

func newAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "all [from] [to]",
		Short: "Run every episode in an inclusive range",
		Long: "Run every episode in an inclusive range concurrently. Episodes whose " +
			"artifacts are already stored are skipped, so a failed batch can simply be re-run.\n\n" +
			"Without arguments the range comes from batch.default_from and batch.default_to.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected either no arguments or both [from] and [to], got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rng, err := resolveRange(cfg, args)
			if err != nil {
				return err
			}
			logger := ctx.loggerValue()

			staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir,
				time.Duration(cfg.Paths.StagingMaxAgeHours)*time.Hour, logger)

			p, err := ctx.buildPipeline(cmd.Context(), true)
			if err != nil {
				return err
			}
			orchestrator := batch.New(func(runCtx context.Context, n int) error {
				_, err := p.Run(runCtx, n)
				return err
			}, batch.Options{Concurrency: cfg.Batch.Concurrency}, logger)

			summary := orchestrator.Run(cmd.Context(), rng.From, rng.To)

			defer ctx.close()
			if ledger, err := ctx.ensureHistory(cmd.Context()); err != nil {
				logger.Warn("batch history unavailable", logging.Error(err))
			} else if ledger != nil && summary.Processed > 0 {
				if err := ledger.Record(context.WithoutCancel(cmd.Context()), summary); err != nil {
					logger.Warn("failed to record batch run", logging.Error(err))
				}
			}

			if summary.Processed > 0 {
				ctx.sendNotification(cmd.Context(), func(nctx context.Context, svc notifications.Service) error {
					return svc.NotifyBatchCompleted(nctx, summary)
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderSummary(summary, shouldColorize(out)))
			if summary.Failed() > 0 {
				return errReported
			}
			return nil
		},
	}
}

func resolveRange(cfg *config.Config, args []string) (episode.Range, error) {
	rng, err := rangeFromArgs(cfg, args)
	if err != nil {
		return episode.Range{}, err
	}
	if err := rng.Validate(); err != nil {
		return episode.Range{}, err
	}
	return rng, nil
}

func rangeFromArgs(cfg *config.Config, args []string) (episode.Range, error) {
	if len(args) == 2 {
		from, err := episode.Parse(args[0])
		if err != nil {
			return episode.Range{}, err
		}
		to, err := episode.Parse(args[1])
		if err != nil {
			return episode.Range{}, err
		}
		return episode.Range{From: from, To: to}, nil
	}
	if cfg.Batch.DefaultFrom == nil || cfg.Batch.DefaultTo == nil {
		return episode.Range{}, errors.New("no episode range given; pass [from] [to] or set batch.default_from and batch.default_to")
	}
	return episode.Range{From: *cfg.Batch.DefaultFrom, To: *cfg.Batch.DefaultTo}, nil
}
