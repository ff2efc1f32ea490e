package services

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/pkg/response"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Workspace{},
		&models.User{},
		&models.Project{},
		&models.Skill{},
		&models.Client{},
		&models.Message{},
		&models.Service{},
		&models.VisitorLog{},
		&models.NotificationSetting{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// stubLimiter lets tests force an allow or deny decision and records the
// category/ip it was asked about.
type stubLimiter struct {
	allow    bool
	category string
	ip       string
}

func (s *stubLimiter) Allow(category, ip string) bool {
	s.category = category
	s.ip = ip
	return s.allow
}

// recordingQueue captures enqueued tasks.
type recordingQueue struct {
	tasks []*ContactNotifyTask
	err   error
}

func (q *recordingQueue) Enqueue(task *ContactNotifyTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}
func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func seedWorkspace(t *testing.T, db *gorm.DB, slug string) *models.Workspace {
	t.Helper()
	ws := models.Workspace{Slug: slug, Name: slug}
	if err := db.Create(&ws).Error; err != nil {
		t.Fatal(err)
	}
	return &ws
}

func validRequest() *ContactRequest {
	return &ContactRequest{
		Name:           "Visitor",
		Email:          "v@example.com",
		Message:        "I need a website",
		PortfolioOwner: "alice",
	}
}

func TestSubmitHoneypotDeflects(t *testing.T) {
	db := testDB(t)
	seedWorkspace(t, db, "alice")
	limiter := &stubLimiter{allow: true}
	queue := &recordingQueue{}
	svc := NewContactService(db, limiter, queue)

	req := validRequest()
	req.Website = "http://spam.example"

	result, err := svc.Submit(req, "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Deflected {
		t.Error("honeypot submission must be deflected")
	}

	// Nothing persisted, nothing enqueued, limiter never consulted.
	var count int64
	db.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Errorf("messages persisted = %d", count)
	}
	if len(queue.tasks) != 0 {
		t.Error("deflected submission must not enqueue")
	}
	if limiter.category != "" {
		t.Error("honeypot must fire before the rate limiter")
	}
}

func TestSubmitRateLimited(t *testing.T) {
	db := testDB(t)
	seedWorkspace(t, db, "alice")
	svc := NewContactService(db, &stubLimiter{allow: false}, &recordingQueue{})

	_, err := svc.Submit(validRequest(), "1.2.3.4")

	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 429 {
		t.Fatalf("Submit() error = %v, want 429", err)
	}
}

func TestSubmitRequiredFields(t *testing.T) {
	db := testDB(t)
	seedWorkspace(t, db, "alice")
	svc := NewContactService(db, &stubLimiter{allow: true}, &recordingQueue{})

	tests := []struct {
		name   string
		mutate func(*ContactRequest)
	}{
		{"missing name", func(r *ContactRequest) { r.Name = "" }},
		{"missing email", func(r *ContactRequest) { r.Email = "  " }},
		{"missing message", func(r *ContactRequest) { r.Message = "" }},
		{"missing owner", func(r *ContactRequest) { r.PortfolioOwner = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.Submit(req, "1.2.3.4")
			var appErr *response.AppError
			if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
				t.Errorf("Submit() error = %v, want 400", err)
			}
		})
	}
}

func TestSubmitUnknownWorkspace(t *testing.T) {
	db := testDB(t)
	svc := NewContactService(db, &stubLimiter{allow: true}, &recordingQueue{})

	req := validRequest()
	req.PortfolioOwner = "ghost"

	_, err := svc.Submit(req, "1.2.3.4")
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Fatalf("Submit() error = %v, want 400", err)
	}
}

func TestSubmitPersistsAndEnqueues(t *testing.T) {
	db := testDB(t)
	ws := seedWorkspace(t, db, "alice")
	queue := &recordingQueue{}
	svc := NewContactService(db, &stubLimiter{allow: true}, queue)

	req := validRequest()
	req.RequestType = "project"
	req.Company = "ACME"

	result, err := svc.Submit(req, "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Deflected {
		t.Error("valid submission must not be deflected")
	}
	if result.Reference == "" {
		t.Error("missing reference")
	}

	var msg models.Message
	if err := db.First(&msg, result.MessageID).Error; err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if msg.WorkspaceID != ws.ID {
		t.Errorf("WorkspaceID = %d, want %d", msg.WorkspaceID, ws.ID)
	}
	if msg.Category != "portfolio" || msg.SenderRole != "visitor" {
		t.Errorf("category/sender = %q/%q", msg.Category, msg.SenderRole)
	}
	if msg.Company != "ACME" {
		t.Errorf("Company = %q", msg.Company)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(queue.tasks))
	}
	if queue.tasks[0].Username != "alice" || queue.tasks[0].Reference != msg.Reference {
		t.Errorf("task = %+v", queue.tasks[0])
	}
}

func TestSubmitTruncatesLongMessage(t *testing.T) {
	db := testDB(t)
	seedWorkspace(t, db, "alice")
	svc := NewContactService(db, &stubLimiter{allow: true}, &recordingQueue{})

	req := validRequest()
	req.Message = strings.Repeat("ü", maxMessageRunes+100)

	result, err := svc.Submit(req, "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var msg models.Message
	if err := db.First(&msg, result.MessageID).Error; err != nil {
		t.Fatal(err)
	}
	if got := len([]rune(msg.Message)); got != maxMessageRunes {
		t.Errorf("stored %d runes, want %d", got, maxMessageRunes)
	}
}

func TestSubmitEnqueueFailureDoesNotFailIntake(t *testing.T) {
	db := testDB(t)
	seedWorkspace(t, db, "alice")
	queue := &recordingQueue{err: errors.New("redis down")}
	svc := NewContactService(db, &stubLimiter{allow: true}, queue)

	result, err := svc.Submit(validRequest(), "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit() error = %v, enqueue failure must not fail intake", err)
	}
	if result.MessageID == 0 {
		t.Error("message not persisted")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays", "abc", 5, "abc"},
		{"exact stays", "abcde", 5, "abcde"},
		{"long cut", "abcdef", 5, "abcde"},
		{"multibyte cut", "üüüü", 2, "üü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateRunes() = %q, want %q", got, tt.want)
			}
		})
	}
}
