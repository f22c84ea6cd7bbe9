package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/io"
	"github.com/matzehuels/starbridge/pkg/pipeline"
)

// renderCommand creates the render command, which replays a recording file.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags      renderFlags
		output     string
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [recording.json]",
		Short: "Replay a recording as an interactive figure",
		Long: `Replay a recording as an interactive figure.

Formats: html (self-contained viewer page, default), svg (static vector with
tooltips), png (raster of the figure), json (figure data).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, parseFormats(formatsStr))
			if err != nil {
				return err
			}
			return c.runRender(cmd, args[0], output, flags.noCache, opts)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): html (default), svg, png, json (comma-separated)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options) error {
	ctx := cmd.Context()
	rec, err := io.ImportRecording(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, rec, opts)
	if err != nil {
		return err
	}
	prog.done("replayed recording", "commands", res.Stats.Commands, "mode", res.Stats.Mode)

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, basePath(input, output), output != "" && len(opts.Formats) == 1)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", filepath.Base(input))
	printFigureStats(res.Stats, res.CacheInfo.FigureHit && res.CacheInfo.ExportHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// basePath returns the output path without extension.
func basePath(input, output string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// writeArtifacts writes each artifact to base.<format> and returns the
// paths in format order. With exact set the single artifact goes to base
// plus its own extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string, exact bool) ([]string, error) {
	var paths []string
	for _, f := range formats {
		path := base + "." + f
		if f == pipeline.FormatJSON && !exact {
			path = base + ".figure.json"
		}
		if err := errors.ValidateOutputPath(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
