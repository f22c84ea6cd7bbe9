package cli

import (
	"github.com/spf13/cobra"
)

// compareCommand creates the compare command, which checks two rasters
// against each other.
func (c *CLI) compareCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "compare [a.png] [b.png]",
		Short: "Compare two rasters by perceptual fingerprint",
		Long: `Compare two rasters by perceptual fingerprint.

Both images are reduced to a small grey fingerprint, so a static chart and a
replayed figure compare equal despite antialiasing and font differences.
Use --exact to require pixel-identical images of the same size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			res, err := opts.Checker().CompareFiles(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printCompare(res)
			return res.Err()
		},
	}

	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "accepted fingerprint distance (default 0.25)")
	cmd.Flags().BoolVar(&flags.exact, "exact", false, "require pixel-identical rasters")

	return cmd
}
