package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/services"
)

type allowAll struct{}

func (allowAll) Allow(string, string) bool { return true }

func contactRouter(t *testing.T) (*gin.Engine, func() int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	_, db := testRouter(t)
	db.Create(&models.Workspace{Slug: "alice", Name: "Alice"})

	svc := services.NewContactService(db, allowAll{}, nil)
	h := NewContactHandler(svc)

	r := gin.New()
	r.POST("/contact", h.Submit)

	count := func() int64 {
		var n int64
		db.Model(&models.Message{}).Count(&n)
		return n
	}
	return r, count
}

func postForm(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/contact", httpBody(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "/portfolio/alice")
	r.ServeHTTP(w, req)
	return w
}

func TestContactSubmitSuccess(t *testing.T) {
	r, count := contactRouter(t)

	w := postForm(t, r, url.Values{
		"name":            {"Visitor"},
		"email":           {"v@example.com"},
		"message":         {"hello"},
		"portfolio_owner": {"alice"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if count() != 1 {
		t.Errorf("messages = %d, want 1", count())
	}

	var resp struct {
		Data struct {
			Message   string `json:"message"`
			Redirect  string `json:"redirect"`
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Message != "Message sent successfully! We will get back to you soon." {
		t.Errorf("message = %q", resp.Data.Message)
	}
	if resp.Data.Redirect != "/portfolio/alice" {
		t.Errorf("redirect = %q", resp.Data.Redirect)
	}
	if resp.Data.Reference == "" {
		t.Error("missing reference")
	}
}

func TestContactSubmitHoneypotLooksLikeSuccess(t *testing.T) {
	r, count := contactRouter(t)

	w := postForm(t, r, url.Values{
		"website":         {"http://spam.example"},
		"name":            {"Bot"},
		"email":           {"bot@example.com"},
		"message":         {"buy now"},
		"portfolio_owner": {"alice"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, deflection must look like success", w.Code)
	}
	if count() != 0 {
		t.Errorf("messages = %d, honeypot must persist nothing", count())
	}

	// The success payload must not leak a reference the bot could verify.
	var resp struct {
		Data struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Reference != "" {
		t.Error("deflected submission must not carry a reference")
	}
}

func TestContactSubmitMissingFields(t *testing.T) {
	r, count := contactRouter(t)

	w := postForm(t, r, url.Values{
		"name":            {"Visitor"},
		"portfolio_owner": {"alice"},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if count() != 0 {
		t.Errorf("messages = %d, want 0", count())
	}

	var resp struct {
		Message string `json:"message"`
		Data    struct {
			Redirect string `json:"redirect"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Required fields missing." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Data.Redirect != "/portfolio/alice" {
		t.Errorf("redirect = %q", resp.Data.Redirect)
	}
}
