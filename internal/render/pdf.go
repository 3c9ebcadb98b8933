package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"rsc.io/pdf"
)

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints HTML to PDF with a headless Chrome instance started
// per call.
type ChromeRenderer struct {
	// ExecPath overrides the browser binary; empty uses chromedp's lookup.
	ExecPath string
	// Timeout bounds a single render; zero means 30s.
	Timeout time.Duration
	// NoSandbox is needed when running as root inside containers.
	NoSandbox bool
}

// A4 in inches.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
)

// Render loads html into a blank page and prints it.
func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	if r.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var out []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	if _, err := CheckPDF(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckPDF parses b and returns its page count. A document without pages is
// reported as an error.
func CheckPDF(b []byte) (pages int, err error) {
	// rsc.io/pdf panics on some malformed object trees.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("invalid PDF: %v", r)
		}
	}()
	doc, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	n := doc.NumPage()
	if n == 0 {
		return 0, errors.New("invalid PDF: document has no pages")
	}
	return n, nil
}
