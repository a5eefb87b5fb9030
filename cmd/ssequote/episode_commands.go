package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ssequote/internal/episode"
	"ssequote/internal/notifications"
	"ssequote/internal/pipeline"
)

type episodeAction struct {
	use        string
	short      string
	withSpeech bool
	run        func(p *pipeline.Pipeline, ctx context.Context, n int) (pipeline.Outcome, error)
}

func newEpisodeCommands(ctx *commandContext) []*cobra.Command {
	actions := []episodeAction{
		{
			use:   "cut [episode]",
			short: "Download an episode, trim it, and upload the public clip",
			run:   (*pipeline.Pipeline).Cut,
		},
		{
			use:        "transcribe [episode]",
			short:      "Transcribe an uploaded clip and upload the extracted quote",
			withSpeech: true,
			run:        (*pipeline.Pipeline).Transcribe,
		},
		{
			use:        "run [episode]",
			short:      "Cut and transcribe a single episode",
			withSpeech: true,
			run:        (*pipeline.Pipeline).Run,
		},
	}
	cmds := make([]*cobra.Command, 0, len(actions))
	for _, action := range actions {
		cmds = append(cmds, newEpisodeCommand(ctx, action))
	}
	return cmds
}

func newEpisodeCommand(ctx *commandContext, action episodeAction) *cobra.Command {
	return &cobra.Command{
		Use:   action.use,
		Short: action.short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 0
			if len(args) == 1 {
				parsed, err := episode.Parse(args[0])
				if err != nil {
					return err
				}
				n = parsed
			}

			p, err := ctx.buildPipeline(cmd.Context(), action.withSpeech)
			if err != nil {
				return err
			}
			outcome, err := action.run(p, cmd.Context(), n)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed %s: episode %d: %v\n", cmd.Name(), n, err)
				ctx.sendNotification(cmd.Context(), func(nctx context.Context, svc notifications.Service) error {
					return svc.NotifyEpisodeFailed(nctx, cmd.Name(), n, err)
				})
				return errReported
			}
			printOutcome(cmd.OutOrStdout(), cmd.Name(), outcome)
			return nil
		},
	}
}

func printOutcome(out io.Writer, command string, outcome pipeline.Outcome) {
	fmt.Fprintf(out, "Episode %d\n", outcome.Episode)
	if command != "transcribe" {
		state := "uploaded"
		if outcome.AudioSkipped {
			state = "already stored"
		}
		fmt.Fprintf(out, "  Audio:      %s (%s)\n", state, outcome.AudioURL)
	}
	if command != "cut" {
		if outcome.TranscriptSkipped {
			fmt.Fprintln(out, "  Transcript: already stored")
		} else {
			fmt.Fprintf(out, "  Transcript: uploaded\n  Quote:      %s\n", outcome.Quote)
		}
	}
}
