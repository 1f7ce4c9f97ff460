// Package report turns rendered chart pages into PNG images for export and
// for the narrative provider's vision input.
package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"marketlens/internal/gateway/provider"
	"marketlens/internal/logger"
)

const (
	defaultCaptureTimeout = 45 * time.Second
	// renderSettle gives echarts time to draw after page load.
	renderSettle = 1500 * time.Millisecond
)

// Renderable is anything that can write itself as a standalone HTML page.
// Both of render's page builders satisfy it.
type Renderable interface {
	Render(w io.Writer) error
}

// Capturer screenshots HTML pages through a headless browser.
type Capturer struct {
	Timeout time.Duration
	// ExecPath overrides the browser binary location.
	ExecPath string
}

// CapturePNG renders the page to a temp file, loads it in the browser and
// returns a full-page screenshot.
func (c *Capturer) CapturePNG(ctx context.Context, page Renderable) ([]byte, error) {
	dir, err := os.MkdirTemp("", "marketlens-chart-")
	if err != nil {
		return nil, fmt.Errorf("chart temp dir: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			logger.Warnf("remove chart temp dir: %v", rerr)
		}
	}()

	path := filepath.Join(dir, "chart.html")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("chart temp file: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if c.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+path),
		chromedp.Sleep(renderSettle),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return nil, fmt.Errorf("capture chart: %w", err)
	}
	return buf, nil
}

// ChartImage captures the page and wraps it as a provider image.
func (c *Capturer) ChartImage(ctx context.Context, page Renderable, description string) (provider.Image, error) {
	png, err := c.CapturePNG(ctx, page)
	if err != nil {
		return provider.Image{}, err
	}
	return provider.Image{
		DataURI:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		Description: description,
	}, nil
}
