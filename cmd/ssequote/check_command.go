package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ssequote/internal/preflight"
	"ssequote/internal/staging"
	"ssequote/internal/storage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, directories, buckets and the speech API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			r := newReport(shouldColorize(out))
			r.section("Preflight")

			var store storage.Store
			if s, err := ctx.ensureStore(cmd.Context()); err == nil {
				store = s
			} else {
				r.status("Storage backend", toneError, err.Error())
			}

			results := preflight.RunAll(cmd.Context(), cfg, store)
			for _, res := range results {
				t := toneOK
				if !res.Passed {
					t = toneError
				}
				r.status(res.Name, t, res.Detail)
			}

			if dirs, err := staging.ListDirectories(cfg.Paths.StagingDir); err == nil && len(dirs) > 0 {
				var size int64
				for _, d := range dirs {
					size += d.Size
				}
				r.status("Leftover staging", toneWarn, fmt.Sprintf("%d directories, %d bytes", len(dirs), size))
			}
			fmt.Fprint(out, r.String())

			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			return nil
		},
	}
}
