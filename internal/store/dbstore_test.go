package store

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/views"
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

func TestDBStoreLoadMiss(t *testing.T) {
	s := NewDBStore(testDB(t))

	_, err := s.Load("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestDBStoreSaveCreatesWorkspace(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)

	p := views.DefaultPortfolio()
	p.Name = "Alice"
	p.Title = "Engineer"
	p.Skills = []views.Skill{{Name: "Go", Level: 0}, {Name: "SQL", Level: 70}}

	if err := s.Save("alice", p, true); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "Alice" || got.Title != "Engineer" {
		t.Errorf("loaded %q/%q", got.Name, got.Title)
	}
	if len(got.Skills) != 2 {
		t.Fatalf("Skills = %v", got.Skills)
	}
	// Zero level falls back to the 50 default on insert.
	if got.Skills[0].Level != 50 {
		t.Errorf("Skill[0].Level = %d, want 50", got.Skills[0].Level)
	}
	if got.Theme() != views.DefaultTheme {
		t.Errorf("Theme() = %q", got.Theme())
	}
}

func TestDBStoreSaveReplacesSkillsOnly(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)

	p := views.DefaultPortfolio()
	p.Name = "Alice"
	p.Skills = []views.Skill{{Name: "Go", Level: 80}, {Name: "SQL", Level: 70}}
	if err := s.Save("alice", p, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A project written outside the save path must survive subsequent saves.
	ws, err := s.GetWorkspaceBySlug("alice")
	if err != nil {
		t.Fatalf("GetWorkspaceBySlug() error = %v", err)
	}
	project := models.Project{WorkspaceID: ws.ID, Title: "kept"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatal(err)
	}

	p.Skills = []views.Skill{{Name: "Rust", Level: 40}}
	if err := s.Save("alice", p, false); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Skills) != 1 || got.Skills[0].Name != "Rust" {
		t.Errorf("Skills after replace = %v", got.Skills)
	}
	if len(got.Projects) != 1 || got.Projects[0].Title != "kept" {
		t.Errorf("Projects = %v", got.Projects)
	}
}

func TestDBStoreGlobalSanitizesUsers(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)

	user := models.User{
		Username:   "alice",
		Email:      "a@example.com",
		Password:   "bcrypt-hash",
		Role:       "user",
		IsVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	ws := models.Workspace{Slug: "alice", Name: "Alice", Title: "Dev"}
	if err := db.Create(&ws).Error; err != nil {
		t.Fatal(err)
	}

	g, err := s.Global()
	if err != nil {
		t.Fatalf("Global() error = %v", err)
	}

	if len(g.Users) != 1 || g.Users[0].Username != "alice" {
		t.Fatalf("Users = %v", g.Users)
	}
	summary, ok := g.Portfolios["alice"]
	if !ok {
		t.Fatal("missing workspace summary")
	}
	if !summary.IsVerified {
		t.Error("verified flag not overlaid from account")
	}
}

func TestDBStoreLoadWithNotificationSetting(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)

	ws := models.Workspace{Slug: "alice", Name: "Alice"}
	if err := db.Create(&ws).Error; err != nil {
		t.Fatal(err)
	}
	setting := models.NotificationSetting{
		WorkspaceID:      ws.ID,
		TelegramBotToken: "token",
		TelegramChatID:   "42",
	}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatal(err)
	}

	got, err := s.Load("alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Notifications.Telegram == nil || got.Notifications.Telegram.ChatID != "42" {
		t.Errorf("Notifications = %+v", got.Notifications)
	}
}

// failingStore always errors, standing in for an unreachable database.
type failingStore struct{}

func (failingStore) Name() string { return "failing" }
func (failingStore) Load(string) (*views.Portfolio, error) {
	return nil, errors.New("backend down")
}
func (failingStore) Save(string, *views.Portfolio, bool) error {
	return errors.New("backend down")
}

func TestChainFallsBackOnFailure(t *testing.T) {
	files := NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	p := views.DefaultPortfolio()
	p.Name = "Alice"
	if err := files.Save("alice", p, false); err != nil {
		t.Fatal(err)
	}

	chain := NewChain(failingStore{}, files)

	got, err := chain.Load("alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("Name = %q", got.Name)
	}

	// Save also falls through to the file backend.
	p.Name = "Updated"
	if err := chain.Save("alice", p, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, _ = files.Load("alice")
	if got.Name != "Updated" {
		t.Errorf("Name after chain save = %q", got.Name)
	}
}

func TestChainAllMiss(t *testing.T) {
	files := NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	chain := NewChain(NewDBStore(testDB(t)), files)

	_, err := chain.Load("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}
