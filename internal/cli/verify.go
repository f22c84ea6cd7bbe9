package cli

import (
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/io"
	"github.com/matzehuels/starbridge/pkg/rasterize"
)

// verifyCommand creates the verify command, which replays a recording and
// compares it with the static chart it was captured from.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		flags    renderFlags
		expected string
	)

	cmd := &cobra.Command{
		Use:   "verify [recording.json] [static.png]",
		Short: "Verify that a replayed figure matches its static chart",
		Long: `Verify that a replayed figure matches its static chart.

The recording is replayed, rasterized with the selected backend and compared
with the static raster by perceptual fingerprint. The replay must also keep
every recorded group, and with --expected the recording must match the counts
the plotting code reported.

Backends: vector (built in), rsvg (rsvg-convert), browser (headless Chromium).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			rec, err := io.ImportRecording(args[0])
			if err != nil {
				return err
			}
			static, err := imaging.Open(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", args[1])
			}
			if expected != "" {
				if opts.Expected, err = io.ImportCounts(expected); err != nil {
					return err
				}
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var spin *Spinner
			if opts.Backend == rasterize.BackendBrowser {
				spin = newSpinnerWithContext(ctx, "Rasterizing in headless browser...")
				spin.Start()
			}
			v, err := runner.Verify(ctx, rec, static, opts)
			if spin != nil {
				if err != nil {
					spin.StopWithError("Rasterization failed")
				} else {
					spin.StopWithSuccess("Rasterized in headless browser")
				}
			}
			if err != nil {
				return err
			}

			printKeyValue("Backend", opts.Backend)
			printKeyValue("Mode", string(v.Figure.Mode))
			printCompare(v.Compare)
			printMismatches("Replay", v.Replay)
			if opts.Expected != nil {
				printMismatches("Expected", v.Expected)
			}
			return v.Err()
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&expected, "expected", "e", "", "per-group counts file to check the recording against")

	return cmd
}
