package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/consistency"
	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/io"
)

// checkCommand creates the check command, which verifies the structure of a
// recording without rendering rasters.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags    renderFlags
		expected string
	)

	cmd := &cobra.Command{
		Use:   "check [recording.json]",
		Short: "Check element counts of a recording and its replay",
		Long: `Check element counts of a recording and its replay.

The recording is replayed and every recorded group must appear in the figure
with the same number of elements (a decimated figure only has to keep the
groups). With --expected the recording must also match the counts the
plotting code reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			rec, err := io.ImportRecording(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			fig, err := runner.Figure(cmd.Context(), rec, opts)
			if err != nil {
				return err
			}
			printKeyValue("Commands", fmt.Sprintf("%d", rec.Len()))
			printKeyValue("Mode", string(fig.Mode))
			printCounts(rec.ElementCounts())

			replay := consistency.ReplayMismatches(rec, fig)
			printMismatches("Replay", replay)

			var declared []consistency.Mismatch
			if expected != "" {
				counts, err := io.ImportCounts(expected)
				if err != nil {
					return err
				}
				declared = consistency.CompareCounts(rec.ElementCounts(), counts)
				printMismatches("Expected", declared)
			}

			if n := len(replay) + len(declared); n > 0 {
				return errors.New(errors.ErrCodeStructureMismatch, "%d group(s) differ", n)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&expected, "expected", "e", "", "per-group counts file to check the recording against")

	return cmd
}
