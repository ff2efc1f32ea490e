package services

import (
	"strings"
	"testing"

	"github.com/codexx/academy/backend/internal/views"
)

func cvFixture() *views.Portfolio {
	p := views.DefaultPortfolio()
	p.Name = "Jane Doe"
	p.Title = "Engineer"
	p.Skills = []views.Skill{{Name: "Go", Level: 90}}
	p.Services = []views.Service{
		{Title: "Consulting", IsActive: true},
		{Title: "Retired", IsActive: false},
	}
	return p
}

func TestRenderCVPreviewMode(t *testing.T) {
	html, err := RenderCV(cvFixture(), false)
	if err != nil {
		t.Fatalf("RenderCV() error = %v", err)
	}

	if !strings.Contains(html, "Jane Doe") {
		t.Error("missing display name")
	}
	if !strings.Contains(html, "CV preview") {
		t.Error("preview mode must include the toolbar")
	}
	if !strings.Contains(html, "width: 90%") {
		t.Error("skill bar width not rendered")
	}
}

func TestRenderCVPDFModeStripsToolbar(t *testing.T) {
	html, err := RenderCV(cvFixture(), true)
	if err != nil {
		t.Fatalf("RenderCV() error = %v", err)
	}
	if strings.Contains(html, "CV preview") {
		t.Error("pdf mode must strip the toolbar")
	}
}

func TestRenderCVActiveServicesOnly(t *testing.T) {
	html, err := RenderCV(cvFixture(), true)
	if err != nil {
		t.Fatalf("RenderCV() error = %v", err)
	}
	if !strings.Contains(html, "Consulting") {
		t.Error("active service missing")
	}
	if strings.Contains(html, "Retired") {
		t.Error("inactive service must not render")
	}
}
