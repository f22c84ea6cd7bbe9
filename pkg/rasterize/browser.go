package rasterize

import (
	"bytes"
	"context"
	"image"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
)

// DefaultBrowserTimeout bounds one screenshot.
const DefaultBrowserTimeout = 30 * time.Second

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithChromePath uses the Chrome or Chromium binary at path instead of the
// one rod finds or downloads.
func WithChromePath(path string) BrowserOption {
	return func(b *Browser) { b.bin = path }
}

// WithBrowserTimeout sets the per-screenshot timeout.
func WithBrowserTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithBrowserLogger sets the logger.
func WithBrowserLogger(l *log.Logger) BrowserOption {
	return func(b *Browser) {
		if l != nil {
			b.logger = l
		}
	}
}

// Browser screenshots the interactive page in headless Chromium. The browser
// starts on first use and is shared by later calls until Close.
type Browser struct {
	bin     string
	timeout time.Duration
	logger  *log.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowser creates a Browser backend.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		timeout: DefaultBrowserTimeout,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements Rasterizer.
func (*Browser) Name() string { return BackendBrowser }

// Rasterize implements Rasterizer.
func (b *Browser) Rasterize(ctx context.Context, fig *interactive.Figure) (image.Image, error) {
	html, err := interactive.RenderHTML(fig, interactive.WithStatic())
	if err != nil {
		return nil, err
	}
	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "create page")
	}
	defer page.Close()

	w, h := Size(fig)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             fig.Layout.Width,
		Height:            fig.Layout.Height,
		DeviceScaleFactor: float64(w) / float64(fig.Layout.Width),
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "set viewport")
	}

	page = page.Context(ctx).Timeout(b.timeout)
	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "load page")
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "wait for page load")
	}
	el, err := page.Element(".sb-figure svg")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "find figure")
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "screenshot")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode screenshot")
	}
	b.logger.Debug("browser screenshot", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return fit(img, w, h), nil
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	url, err := l.Launch()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "launch browser")
	}
	b.logger.Debug("browser launched", "url", url)

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "connect to browser")
	}
	b.launcher, b.browser = l, browser
	return browser, nil
}

// Close stops the browser if it was started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	b.browser, b.launcher = nil, nil
	return err
}
