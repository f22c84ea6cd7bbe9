package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/io"
	"github.com/matzehuels/starbridge/pkg/ir"
	"github.com/matzehuels/starbridge/pkg/observability"
	"github.com/matzehuels/starbridge/pkg/pipeline"
	"github.com/matzehuels/starbridge/pkg/refscene"
	"github.com/matzehuels/starbridge/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// serveFormats are the formats the preview server exports.
var serveFormats = []string{pipeline.FormatHTML, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON}

// serveCommand creates the serve command, which runs a local preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags renderFlags
		addr  string
		stars int
	)

	cmd := &cobra.Command{
		Use:   "serve [recording.json]",
		Short: "Serve a replayed figure over HTTP",
		Long: `Serve a replayed figure over HTTP for previewing in a browser.

Without a recording file the reference sky chart is drawn and served.

Routes:
  GET /                   interactive page
  GET /scene.svg          static vector figure
  GET /scene.png          raster of the figure
  GET /figure.json        figure data
  GET /recording.json     the served recording
  GET /recordings/{hash}  a recording from the cache
  GET /healthz            liveness probe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags, serveFormats)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			rec, err := c.serveRecording(ctx, args, stars)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hash, err := runner.StoreRecording(ctx, rec)
			if err != nil {
				return err
			}
			return c.listen(ctx, addr, newServer(runner, rec, opts, c.Logger), hash)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().IntVar(&stars, "stars", refscene.DefaultStars, "number of synthetic stars when serving the reference chart")

	return cmd
}

// serveRecording loads the recording named in args or draws the reference
// chart.
func (c *CLI) serveRecording(ctx context.Context, args []string, stars int) (*ir.Recording, error) {
	if len(args) == 1 {
		return io.ImportRecording(args[0])
	}
	desc := refscene.Canvas(1)
	sess, err := session.New(session.KindMap, refscene.Projection(),
		session.WithSize(desc.Width, desc.Height),
		session.WithBackground(desc.Background, desc.FigureBackground),
		session.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, err
	}
	if _, err := refscene.Draw(sess.Renderer(), stars); err != nil {
		return nil, err
	}
	return sess.Recording().Finalize(), nil
}

func (c *CLI) listen(ctx context.Context, addr string, h http.Handler, hash string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printSuccess("Serving recording %s", hash[:12])
	printKeyValue("URL", StyleLink.Render("http://"+addr+"/"))
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.Logger.Debug("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	runner *pipeline.Runner
	rec    *ir.Recording
	opts   pipeline.Options
	logger *log.Logger
}

// newServer builds the preview router for rec. opts must be validated.
func newServer(runner *pipeline.Runner, rec *ir.Recording, opts pipeline.Options, logger *log.Logger) http.Handler {
	s := &server{runner: runner, rec: rec, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.artifact(pipeline.FormatHTML))
	r.Get("/scene.svg", s.artifact(pipeline.FormatSVG))
	r.Get("/scene.png", s.artifact(pipeline.FormatPNG))
	r.Get("/figure.json", s.artifact(pipeline.FormatJSON))
	r.Get("/recording.json", s.recording)
	r.Get("/recordings/{hash}", s.cachedRecording)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// observe attaches the request logger to the context and reports the request
// to the HTTP hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := withLogger(r.Context(), l)
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, elapsed)
		l.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", elapsed)
	})
}

func (s *server) artifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := s.opts
		opts.Formats = []string{format}
		opts.Logger = loggerFromContext(r.Context())
		res, err := s.runner.Execute(r.Context(), s.rec, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[format])
		_, _ = w.Write(res.Artifacts[format])
	}
}

func (s *server) recording(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, s.rec)
}

func (s *server) cachedRecording(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runner.LoadRecording(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, r, rec)
}

func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	_, _ = w.Write(data)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeUnsupportedProjection:
		return http.StatusBadRequest
	case errors.ErrCodeBudgetExceeded:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
