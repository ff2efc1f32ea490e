package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/codexx/academy/backend/internal/config"
	"github.com/codexx/academy/backend/pkg/logger"
)

// chromeCandidates are probed on PATH when no explicit chrome path is
// configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// knownSharedLibMarkers identify runtime errors caused by a missing system
// library rather than a broken page; these stop the chain with a specific
// remediation instead of falling through.
var knownSharedLibMarkers = []string{
	"libnss3",
	"libgobject",
	"error while loading shared libraries",
	"cannot open shared object file",
}

// RemediationError is a terminal, user-actionable failure: the environment
// is missing something an operator must install.
type RemediationError struct {
	Message string
}

func (e *RemediationError) Error() string { return e.Message }

// UnavailableError reports that every renderer was exhausted.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

// PDFService renders CV documents, preferring headless Chrome and falling
// back to wkhtmltopdf.
type PDFService struct {
	cfg *config.PDFConfig

	// chromeRender and wkhtmlRender are swappable for tests.
	chromeRender func(ctx context.Context, chromePath, html string) ([]byte, error)
	wkhtmlRender func(ctx context.Context, wkPath, html string) ([]byte, error)
	lookPath     func(file string) (string, error)
}

func NewPDFService(cfg *config.PDFConfig) *PDFService {
	return &PDFService{
		cfg:          cfg,
		chromeRender: renderWithChrome,
		wkhtmlRender: renderWithWkhtmltopdf,
		lookPath:     exec.LookPath,
	}
}

// Capabilities reports renderer availability without rendering anything,
// for UI hinting on the preview page.
type Capabilities struct {
	ChromeAvailable bool   `json:"chrome_available"`
	ChromePath      string `json:"chrome_path,omitempty"`
	WkhtmlAvailable bool   `json:"wkhtml_available"`
	WkhtmlPath      string `json:"wkhtml_path,omitempty"`
}

// Probe runs the same availability checks the render chain uses.
func (s *PDFService) Probe() Capabilities {
	caps := Capabilities{}
	if path, ok := s.findChrome(); ok {
		caps.ChromeAvailable = true
		caps.ChromePath = path
	}
	if path, ok := s.findWkhtmltopdf(); ok {
		caps.WkhtmlAvailable = true
		caps.WkhtmlPath = path
	}
	return caps
}

func (s *PDFService) findChrome() (string, bool) {
	if s.cfg.ChromePath != "" {
		if _, err := os.Stat(s.cfg.ChromePath); err == nil {
			return s.cfg.ChromePath, true
		}
		return "", false
	}
	for _, name := range chromeCandidates {
		if path, err := s.lookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

func (s *PDFService) findWkhtmltopdf() (string, bool) {
	if s.cfg.WkhtmltopdfPath != "" {
		if _, err := os.Stat(s.cfg.WkhtmltopdfPath); err == nil {
			return s.cfg.WkhtmltopdfPath, true
		}
		return "", false
	}
	if path, err := s.lookPath("wkhtmltopdf"); err == nil {
		return path, true
	}
	return "", false
}

// RenderResult is the streamed download payload.
type RenderResult struct {
	PDF      []byte
	Filename string
}

// CVFilename derives the download name from the profile's display name.
func CVFilename(displayName string) string {
	if displayName == "" {
		return "CV.pdf"
	}
	return strings.ReplaceAll(displayName, " ", "_") + "_CV.pdf"
}

// Render drives the fallback chain:
//  1. headless Chrome, when its binary is present
//  2. on a known missing-shared-library error: stop with remediation
//  3. on any other Chrome error: log and fall through
//  4. wkhtmltopdf, when its binary is present
//  5. otherwise a renderer-specific actionable message
//
// Each renderer runs under the configured timeout.
func (s *PDFService) Render(ctx context.Context, html, displayName string) (*RenderResult, error) {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	filename := CVFilename(displayName)

	if chromePath, ok := s.findChrome(); ok {
		rctx, cancel := context.WithTimeout(ctx, timeout)
		pdf, err := s.chromeRender(rctx, chromePath, html)
		cancel()
		if err == nil {
			return &RenderResult{PDF: pdf, Filename: filename}, nil
		}
		if isKnownSharedLibError(err) {
			logger.Error().Err(err).Msg("chrome runtime is missing system libraries")
			return nil, &RemediationError{Message: fmt.Sprintf(
				"PDF generation failed: the browser runtime is missing system libraries (%v). "+
					"Install the browser's shared library dependencies (on Debian/Ubuntu: apt-get install libnss3 libgbm1), "+
					"or install wkhtmltopdf as an alternative (https://wkhtmltopdf.org/downloads.html).", err)}
		}
		logger.Error().Err(err).Msg("chrome PDF rendering failed, trying wkhtmltopdf")
	} else {
		logger.Warn().Msg("no chrome/chromium binary found, trying wkhtmltopdf")
	}

	wkPath, ok := s.findWkhtmltopdf()
	if !ok {
		return nil, &UnavailableError{Message: "PDF generation is not available. " +
			"Install Google Chrome or Chromium, or install wkhtmltopdf and ensure it is on the PATH " +
			"(https://wkhtmltopdf.org/downloads.html)."}
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pdf, err := s.wkhtmlRender(rctx, wkPath, html)
	if err != nil {
		logger.Error().Err(err).Msg("wkhtmltopdf rendering failed")
		return nil, &UnavailableError{Message: fmt.Sprintf(
			"wkhtmltopdf failed to generate the PDF (%v). "+
				"Verify the wkhtmltopdf installation, or install Google Chrome/Chromium as an alternative.", err)}
	}

	return &RenderResult{PDF: pdf, Filename: filename}, nil
}

func isKnownSharedLibError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range knownSharedLibMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// renderWithChrome prints the HTML through a headless Chrome instance.
func renderWithChrome(ctx context.Context, chromePath, html string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "cv-*.html")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdf []byte
	err = chromedp.Run(taskCtx,
		chromedp.Navigate("file://"+tmp.Name()),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// renderWithWkhtmltopdf shells out to the wkhtmltopdf binary.
func renderWithWkhtmltopdf(ctx context.Context, wkPath, html string) ([]byte, error) {
	wkhtmltopdf.SetPath(wkPath)

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	pg := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	pg.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(pg)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, err
	}
	return pdfg.Bytes(), nil
}
