package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/views"
)

// DBStore is the relational backend. It is the head of the chain.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Name() string { return "database" }

// GetWorkspaceBySlug resolves a workspace by username slug.
func (s *DBStore) GetWorkspaceBySlug(slug string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Where("slug = ?", slug).First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// GetOrCreateWorkspace fetches the workspace for a username, creating it
// with the provided display name when absent.
func (s *DBStore) GetOrCreateWorkspace(tx *gorm.DB, username, name string) (*models.Workspace, error) {
	var ws models.Workspace
	err := tx.Where("slug = ?", username).First(&ws).Error
	if err == nil {
		return &ws, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = username
	}
	ws = models.Workspace{
		Slug:        username,
		Name:        name,
		Description: "",
		Plan:        "pro",
	}
	if err := tx.Create(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// Load resolves the workspace and materializes the full view.
func (s *DBStore) Load(username string) (*views.Portfolio, error) {
	var ws models.Workspace
	err := s.db.
		Preload("Skills").
		Preload("Projects").
		Preload("Clients").
		Preload("Messages").
		Preload("Services").
		Where("slug = ?", username).
		First(&ws).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var logs []models.VisitorLog
	if err := s.db.Where("workspace_id = ?", ws.ID).Find(&logs).Error; err != nil {
		return nil, err
	}

	var notif *models.NotificationSetting
	var setting models.NotificationSetting
	err = s.db.Where("workspace_id = ?", ws.ID).First(&setting).Error
	switch {
	case err == nil:
		notif = &setting
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return Materialize(&ws, logs, notif, time.Now()), nil
}

// Save overwrites the workspace's portfolio-level fields and replaces the
// skill set atomically. Projects, clients, messages and services belong to
// their own write paths and are never touched here.
func (s *DBStore) Save(username string, p *views.Portfolio, _ bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ws, err := s.GetOrCreateWorkspace(tx, username, p.Name)
		if err != nil {
			return err
		}

		settings := p.Settings
		if settings == nil {
			settings = map[string]interface{}{"theme": views.DefaultTheme}
		}
		if _, ok := settings["theme"]; !ok {
			settings["theme"] = views.DefaultTheme
		}

		name := p.Name
		if name == "" {
			name = ws.Name
		}

		updates := map[string]interface{}{
			"name":        name,
			"title":       p.Title,
			"description": p.Description,
			"about":       p.About,
			"photo":       p.Photo,
			"contact":     models.EncodeJSON(p.Contact),
			"social":      models.EncodeJSON(p.Social),
			"settings":    models.EncodeJSON(settings),
		}
		if err := tx.Model(ws).Updates(updates).Error; err != nil {
			return err
		}

		// Skills are replaced wholesale, never diffed.
		if err := tx.Where("workspace_id = ?", ws.ID).Delete(&models.Skill{}).Error; err != nil {
			return err
		}
		for _, skill := range p.Skills {
			level := skill.Level
			if level == 0 {
				level = 50
			}
			row := models.Skill{
				WorkspaceID: ws.ID,
				Name:        skill.Name,
				Level:       level,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Global builds the no-username view: sanitized users plus one summary per
// workspace, with the verified flag overlaid from the matching account.
func (s *DBStore) Global() (*views.Global, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}

	var workspaces []models.Workspace
	if err := s.db.Find(&workspaces).Error; err != nil {
		return nil, err
	}

	g := views.EmptyGlobal()
	verified := make(map[string]bool, len(users))
	for _, u := range users {
		created := u.CreatedAt
		g.Users = append(g.Users, views.UserSummary{
			ID:                 u.ID,
			Username:           u.Username,
			Email:              u.Email,
			Role:               u.Role,
			IsDemo:             u.IsDemo,
			IsVerified:         u.IsVerified,
			MustChangePassword: u.MustChangePassword,
			CreatedAt:          views.FormatDateTime(&created),
		})
		verified[u.Username] = u.IsVerified
	}

	for _, ws := range workspaces {
		g.Portfolios[ws.Slug] = views.WorkspaceSummary{
			Name:        ws.Name,
			Title:       ws.Title,
			Description: ws.Description,
			About:       ws.About,
			Photo:       ws.Photo,
			Username:    ws.Slug,
			IsVerified:  verified[ws.Slug],
		}
	}

	return g, nil
}
