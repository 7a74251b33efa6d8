package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-formatter/internal/config"
	"resume-formatter/internal/logger"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4: 210mm x 297mm -> inches: 8.27 x 11.69
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// ChromedpRenderer prints HTML to PDF with a headless Chrome started per call.
type ChromedpRenderer struct {
	chromePath string
	timeout    time.Duration
	margin     float64
}

func NewChromedpRenderer(cfg config.RendererConfig, timeout time.Duration) *ChromedpRenderer {
	return &ChromedpRenderer{chromePath: cfg.ChromePath, timeout: timeout, margin: cfg.MarginInches}
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	return opts
}

func (r *ChromedpRenderer) printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(a4WidthInches).
		WithPaperHeight(a4HeightInches).
		WithMarginTop(r.margin).
		WithMarginBottom(r.margin).
		WithMarginLeft(r.margin).
		WithMarginRight(r.margin).
		WithPreferCSSPageSize(true)
}

// RenderHTMLToPDF loads html from a temporary file, prints it and checks
// that the result parses as a PDF.
func (r *ChromedpRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, r.timeout)
	defer cancelRun()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = r.printParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}

	pages, err := ValidatePDF(pdfBuf)
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Debug().
		Int("bytes", len(pdfBuf)).
		Int("pages", pages).
		Dur("took", time.Since(start)).
		Msg("pdf rendered")
	return pdfBuf, nil
}
