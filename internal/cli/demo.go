package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/consistency"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/io"
	"github.com/matzehuels/starbridge/pkg/pipeline"
	"github.com/matzehuels/starbridge/pkg/refscene"
	"github.com/matzehuels/starbridge/pkg/session"
)

// demoCommand creates the demo command, which draws the reference chart
// through a recording session.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		flags renderFlags
		dir   string
		stars int
		scale float64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Draw the reference sky chart and export both renderings",
		Long: `Draw the reference sky chart through a recording session and write:

  scene.png       static chart from the primary renderer
  scene.html      interactive figure replayed from the recording
  recording.json  the recording, for render, verify and serve
  expected.json   per-group element counts produced by the scene`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, nil)
			if err != nil {
				return err
			}
			return c.runDemo(cmd, demoOptions{dir: dir, stars: stars, scale: scale}, opts)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")
	cmd.Flags().IntVar(&stars, "stars", refscene.DefaultStars, "number of synthetic stars")
	cmd.Flags().Float64Var(&scale, "scale", 1, "raster scale of the static chart")

	return cmd
}

type demoOptions struct {
	dir   string
	stars int
	scale float64
}

// demoPaths are the files the demo command writes, in print order.
type demoPaths struct {
	static, page, recording, expected string
}

func newDemoPaths(dir string) demoPaths {
	return demoPaths{
		static:    filepath.Join(dir, "scene.png"),
		page:      filepath.Join(dir, "scene.html"),
		recording: filepath.Join(dir, "recording.json"),
		expected:  filepath.Join(dir, "expected.json"),
	}
}

func (c *CLI) runDemo(cmd *cobra.Command, d demoOptions, opts pipeline.Options) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", d.dir, err)
	}

	desc := refscene.Canvas(d.scale)
	sess, err := session.New(session.KindMap, refscene.Projection(),
		session.WithSize(desc.Width, desc.Height),
		session.WithScale(d.scale),
		session.WithBackground(desc.Background, desc.FigureBackground),
		session.WithLogger(c.Logger),
		session.WithRenderOptions(opts.RendererOptions()...),
	)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	produced, err := refscene.Draw(sess.Renderer(), d.stars)
	if err != nil {
		return err
	}
	prog.done("drew reference chart", "commands", sess.Recording().Len(), "stars", d.stars)

	paths := newDemoPaths(d.dir)
	if err := sess.ExportStatic(paths.static); err != nil {
		return err
	}
	if err := sess.ExportInteractive(cmd.Context(), paths.page, opts.Width, opts.Height, interactive.WithEmbeddedFigure()); err != nil {
		return err
	}
	if err := io.ExportRecording(sess.Recording(), paths.recording); err != nil {
		return err
	}
	if err := io.ExportCounts(produced, paths.expected); err != nil {
		return err
	}

	printSuccess("Reference chart drawn")
	printCounts(produced)
	if err := consistency.CheckStructure(sess.Recording(), produced); err != nil {
		printWarning("%v", err)
	}
	for _, p := range []string{paths.static, paths.page, paths.recording, paths.expected} {
		printFile(p)
	}
	printNextStep("Verify the replay", fmt.Sprintf("%s verify %s %s --expected %s", appName, paths.recording, paths.static, paths.expected))
	return nil
}
