// Package preview renders screenshots of web pages with headless Chrome.
package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/linkscribe/api-service/internal/adapter/scraper"
	"github.com/linkscribe/api-service/internal/domain/service"
)

// Default capture settings
const (
	DefaultTimeout = 45 * time.Second
	DefaultWidth   = 1920
	DefaultHeight  = 1080
)

// captureFunc renders url into a PNG of the given viewport size.
type captureFunc func(ctx context.Context, url string, width, height int64) ([]byte, error)

// Previewer captures PNG screenshots of web pages
type Previewer struct {
	timeout  time.Duration
	width    int64
	height   int64
	execPath string
	capture  captureFunc
}

// Option configures a Previewer
type Option func(*Previewer)

// WithViewport sets the screenshot size. Non-positive values are ignored.
func WithViewport(width, height int64) Option {
	return func(p *Previewer) {
		if width > 0 && height > 0 {
			p.width = width
			p.height = height
		}
	}
}

// WithExecPath sets the Chrome binary used for captures
func WithExecPath(path string) Option {
	return func(p *Previewer) {
		p.execPath = path
	}
}

// NewPreviewer creates a Previewer backed by a headless Chrome process per capture
func NewPreviewer(timeout time.Duration, opts ...Option) *Previewer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p := &Previewer{
		timeout: timeout,
		width:   DefaultWidth,
		height:  DefaultHeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.capture = p.chromeCapture
	return p
}

// Capture returns a PNG screenshot of url
func (p *Previewer) Capture(ctx context.Context, url string) ([]byte, error) {
	if err := scraper.ValidateURL(url); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	buf, err := p.capture(ctx, url, p.width, p.height)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", service.ErrPreviewFailed, url, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: %s: empty screenshot", service.ErrPreviewFailed, url)
	}
	return buf, nil
}

func (p *Previewer) chromeCapture(ctx context.Context, url string, width, height int64) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(int(width), int(height)),
		chromedp.Flag("hide-scrollbars", true),
	)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate(url),
		chromedp.CaptureScreenshot(&buf),
	); err != nil {
		return nil, err
	}
	return buf, nil
}

// Disabled is a PagePreviewer for deployments without a browser
type Disabled struct{}

// Capture always fails with service.ErrPreviewDisabled
func (Disabled) Capture(context.Context, string) ([]byte, error) {
	return nil, service.ErrPreviewDisabled
}
