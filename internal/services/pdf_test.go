package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codexx/academy/backend/internal/config"
)

func newTestPDFService() *PDFService {
	return NewPDFService(&config.PDFConfig{TimeoutSeconds: 5})
}

func TestCVFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become underscores", "Jane Doe", "Jane_Doe_CV.pdf"},
		{"single word", "Jane", "Jane_CV.pdf"},
		{"empty falls back", "", "CV.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CVFilename(tt.in); got != tt.want {
				t.Errorf("CVFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsKnownSharedLibError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"libnss3", errors.New("exec: libnss3.so: not found"), true},
		{"libgobject", errors.New("Libgobject-2.0 missing"), true},
		{"loader message", errors.New("chrome: error while loading shared libraries: libgbm.so.1"), true},
		{"shared object", errors.New("cannot open shared object file: No such file"), true},
		{"page crash", errors.New("page load failed"), false},
		{"timeout", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isKnownSharedLibError(tt.err); got != tt.want {
				t.Errorf("isKnownSharedLibError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestProbeNeitherInstalled(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	caps := svc.Probe()
	if caps.ChromeAvailable || caps.WkhtmlAvailable {
		t.Errorf("Probe() = %+v, want nothing available", caps)
	}
}

func TestProbeFindsBinaries(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(name string) (string, error) {
		switch name {
		case "google-chrome":
			return "/usr/bin/google-chrome", nil
		case "wkhtmltopdf":
			return "/usr/local/bin/wkhtmltopdf", nil
		}
		return "", errors.New("not found")
	}

	caps := svc.Probe()
	if !caps.ChromeAvailable || caps.ChromePath != "/usr/bin/google-chrome" {
		t.Errorf("chrome caps = %+v", caps)
	}
	if !caps.WkhtmlAvailable || caps.WkhtmlPath != "/usr/local/bin/wkhtmltopdf" {
		t.Errorf("wkhtmltopdf caps = %+v", caps)
	}
}

func TestRenderNoRendererAvailable(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := svc.Render(context.Background(), "<html></html>", "Jane Doe")

	var unavailErr *UnavailableError
	if !errors.As(err, &unavailErr) {
		t.Fatalf("error = %v, want UnavailableError", err)
	}
	if !strings.Contains(unavailErr.Message, "wkhtmltopdf.org") {
		t.Errorf("message should carry install guidance, got %q", unavailErr.Message)
	}
}

func TestRenderChromeSuccess(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(name string) (string, error) {
		if name == "google-chrome" {
			return "/usr/bin/google-chrome", nil
		}
		return "", errors.New("not found")
	}
	svc.chromeRender = func(ctx context.Context, chromePath, html string) ([]byte, error) {
		if chromePath != "/usr/bin/google-chrome" {
			t.Errorf("chromePath = %q", chromePath)
		}
		return []byte("%PDF-fake"), nil
	}

	result, err := svc.Render(context.Background(), "<html></html>", "Jane Doe")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(result.PDF) != "%PDF-fake" {
		t.Errorf("PDF = %q", result.PDF)
	}
	if result.Filename != "Jane_Doe_CV.pdf" {
		t.Errorf("Filename = %q", result.Filename)
	}
}

func TestRenderSharedLibErrorStopsChain(t *testing.T) {
	svc := newTestPDFService()
	wkCalled := false
	svc.lookPath = func(name string) (string, error) {
		// Both renderers installed.
		return "/usr/bin/" + name, nil
	}
	svc.chromeRender = func(context.Context, string, string) ([]byte, error) {
		return nil, errors.New("error while loading shared libraries: libnss3.so")
	}
	svc.wkhtmlRender = func(context.Context, string, string) ([]byte, error) {
		wkCalled = true
		return []byte("pdf"), nil
	}

	_, err := svc.Render(context.Background(), "<html></html>", "Jane")

	var remErr *RemediationError
	if !errors.As(err, &remErr) {
		t.Fatalf("error = %v, want RemediationError", err)
	}
	if !strings.Contains(remErr.Message, "libnss3") {
		t.Errorf("message should name the missing library, got %q", remErr.Message)
	}
	if wkCalled {
		t.Error("a missing-shared-library failure must stop the chain, not fall through")
	}
}

func TestRenderFallsThroughToWkhtmltopdf(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(name string) (string, error) {
		return "/usr/bin/" + name, nil
	}
	svc.chromeRender = func(context.Context, string, string) ([]byte, error) {
		return nil, errors.New("page crashed")
	}
	svc.wkhtmlRender = func(ctx context.Context, wkPath, html string) ([]byte, error) {
		return []byte("wk-pdf"), nil
	}

	result, err := svc.Render(context.Background(), "<html></html>", "Jane")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(result.PDF) != "wk-pdf" {
		t.Errorf("PDF = %q, want the fallback output", result.PDF)
	}
}

func TestRenderWkhtmltopdfFailure(t *testing.T) {
	svc := newTestPDFService()
	svc.lookPath = func(name string) (string, error) {
		if name == "wkhtmltopdf" {
			return "/usr/bin/wkhtmltopdf", nil
		}
		return "", errors.New("not found")
	}
	svc.wkhtmlRender = func(context.Context, string, string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	_, err := svc.Render(context.Background(), "<html></html>", "Jane")

	var unavailErr *UnavailableError
	if !errors.As(err, &unavailErr) {
		t.Fatalf("error = %v, want UnavailableError", err)
	}
	if !strings.Contains(unavailErr.Message, "exit status 1") {
		t.Errorf("message should carry the renderer error, got %q", unavailErr.Message)
	}
}

func TestRenderConfiguredChromePathMissing(t *testing.T) {
	svc := NewPDFService(&config.PDFConfig{
		ChromePath:     "/nonexistent/chrome",
		TimeoutSeconds: 5,
	})
	svc.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	// An explicit path that does not exist is not probed on PATH.
	caps := svc.Probe()
	if caps.ChromeAvailable {
		t.Error("configured but missing chrome path must not report available")
	}
}
