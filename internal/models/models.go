package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Workspace is the tenant root. Every portfolio entity except User hangs
// off exactly one workspace; deleting a workspace cascades to its children.
type Workspace struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Title       string `gorm:"size:200" json:"title"`
	Description string `gorm:"size:1000" json:"description"`
	About       string `gorm:"type:text" json:"about"`
	Photo       string `gorm:"size:500" json:"photo"`
	Contact     string `gorm:"type:text" json:"-"` // JSON object
	Social      string `gorm:"type:text" json:"-"` // JSON object
	Settings    string `gorm:"type:text" json:"-"` // JSON object, always carries a theme key
	Plan        string `gorm:"size:50;default:pro" json:"plan"`

	Skills               []Skill               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Projects             []Project             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Clients              []Client              `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Messages             []Message             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Services             []Service             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	VisitorLogs          []VisitorLog          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	NotificationSettings []NotificationSetting `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// User represents an account. Users with role admin (or the reserved
// username "admin") never get a public portfolio page.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email              string    `gorm:"size:255" json:"email"`
	Password           string    `gorm:"size:255" json:"-"` // bcrypt hash
	Role               string    `gorm:"size:50;default:user" json:"role"` // admin, user
	IsVerified         bool      `gorm:"default:false" json:"is_verified"`
	IsDemo             bool      `gorm:"default:false" json:"is_demo"`
	MustChangePassword bool      `gorm:"default:false" json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const (
	ProjectTypePortfolio = "portfolio"
	ProjectTypeRequest   = "request"
)

// Project is either a showcase piece (portfolio) or an open client
// request; only request projects carry budget/deadline/status.
type Project struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID      uint       `gorm:"index;not null" json:"workspace_id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	ShortDescription string     `gorm:"size:500" json:"short_description"`
	Content          string     `gorm:"type:text" json:"content"`
	Image            string     `gorm:"size:500" json:"image"`
	DemoURL          string     `gorm:"size:500" json:"demo_url"`
	GithubURL        string     `gorm:"size:500" json:"github_url"`
	Technologies     string     `gorm:"type:text" json:"-"` // JSON array
	Gallery          string     `gorm:"type:text" json:"-"` // JSON array
	SkillRelated     string     `gorm:"type:text" json:"-"` // JSON array
	ProjectType      string     `gorm:"size:50;default:portfolio" json:"project_type"`
	Badge            string     `gorm:"size:100" json:"badge"`
	RequestBudgetMin *float64   `json:"request_budget_min"`
	RequestBudgetMax *float64   `json:"request_budget_max"`
	RequestDeadline  *time.Time `json:"request_deadline"`
	RequestStatus    string     `gorm:"size:50;default:open" json:"request_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Skill rows are replaced wholesale on each profile save, never diffed.
type Skill struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	WorkspaceID uint   `gorm:"index;not null" json:"workspace_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Level       int    `gorm:"default:50" json:"level"`
}

// Client is a CRM-style record for workspace owners.
type Client struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID        uint       `gorm:"index;not null" json:"workspace_id"`
	Name               string     `gorm:"size:200;not null" json:"name"`
	Email              string     `gorm:"size:255" json:"email"`
	Phone              string     `gorm:"size:50" json:"phone"`
	Company            string     `gorm:"size:200" json:"company"`
	ProjectTitle       string     `gorm:"size:200" json:"project_title"`
	ProjectDescription string     `gorm:"type:text" json:"project_description"`
	Status             string     `gorm:"size:50;default:lead" json:"status"`
	Price              string     `gorm:"size:100" json:"price"`
	Deadline           *time.Time `json:"deadline"`
	StartDate          *time.Time `json:"start_date"`
	Notes              string     `gorm:"type:text" json:"notes"`
	StatusUpdatedAt    *time.Time `json:"status_updated_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Message is an inbound contact submission scoped to a workspace. The
// sender/receiver ids exist so the table can double for internal messaging.
type Message struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID  uint      `gorm:"index;not null" json:"workspace_id"`
	Reference    string    `gorm:"size:36;index" json:"reference"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Message      string    `gorm:"type:text" json:"message"` // capped at 5000 chars
	IsRead       bool      `gorm:"default:false" json:"is_read"`
	Category     string    `gorm:"size:50;default:portfolio" json:"category"`
	SenderID     *uint     `json:"sender_id"`
	ReceiverID   *uint     `json:"receiver_id"`
	SenderRole   string    `gorm:"size:50" json:"sender_role"`
	RequestType  string    `gorm:"size:100" json:"request_type"`
	InterestArea string    `gorm:"size:100" json:"interest_area"`
	Seriousness  string    `gorm:"size:100" json:"seriousness"`
	ContactPref  string    `gorm:"size:100" json:"contact_pref"`
	Company      string    `gorm:"size:200" json:"company"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// Service is an offered service with pricing and deliverables.
type Service struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID      uint      `gorm:"index;not null" json:"workspace_id"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	ShortDescription string    `gorm:"size:500" json:"short_description"`
	Category         string    `gorm:"size:100" json:"category"`
	PricingType      string    `gorm:"size:50;default:custom" json:"pricing_type"`
	PriceMin         *float64  `json:"price_min"`
	PriceMax         *float64  `json:"price_max"`
	Currency         string    `gorm:"size:10;default:USD" json:"currency"`
	Deliverables     string    `gorm:"type:text" json:"-"` // JSON array
	Duration         string    `gorm:"size:100" json:"duration"`
	SkillsRequired   string    `gorm:"type:text" json:"-"` // JSON array
	Image            string    `gorm:"size:500" json:"image"`
	Gallery          string    `gorm:"type:text" json:"-"` // JSON array
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	IsFeatured       bool      `gorm:"default:false" json:"is_featured"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// VisitorLog is append-only.
type VisitorLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"index;not null" json:"workspace_id"`
	IPAddress   string    `gorm:"size:50" json:"ip_address"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// NotificationSetting holds the optional Telegram configuration;
// at most one row per workspace.
type NotificationSetting struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	WorkspaceID          uint       `gorm:"uniqueIndex;not null" json:"workspace_id"`
	TelegramBotToken     string     `gorm:"size:255" json:"-"`
	TelegramChatID       string     `gorm:"size:100" json:"telegram_chat_id"`
	TelegramConfiguredAt *time.Time `json:"telegram_configured_at"`
}

// SystemLog represents a system operation log
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	IP        string    `gorm:"size:50" json:"ip"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (Workspace) TableName() string           { return "workspaces" }
func (User) TableName() string                { return "users" }
func (Project) TableName() string             { return "projects" }
func (Skill) TableName() string               { return "skills" }
func (Client) TableName() string              { return "clients" }
func (Message) TableName() string             { return "messages" }
func (Service) TableName() string             { return "services" }
func (VisitorLog) TableName() string          { return "visitor_logs" }
func (NotificationSetting) TableName() string { return "notification_settings" }
func (SystemLog) TableName() string           { return "system_logs" }

// --- JSON text column helpers ---

// DecodeMap decodes a JSON object column; invalid or empty input yields an
// empty map, never nil, so view shapes stay stable.
func DecodeMap(s string) map[string]interface{} {
	m := map[string]interface{}{}
	if s == "" {
		return m
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// DecodeList decodes a JSON array column; invalid or empty input yields an
// empty slice.
func DecodeList(s string) []string {
	if s == "" {
		return []string{}
	}
	var l []string
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return []string{}
	}
	return l
}

// EncodeJSON serializes a value for storage in a JSON text column.
func EncodeJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// SettingsMap returns the workspace settings, guaranteeing a theme key.
func (w *Workspace) SettingsMap() map[string]interface{} {
	m := DecodeMap(w.Settings)
	if _, ok := m["theme"]; !ok {
		m["theme"] = DefaultTheme
	}
	return m
}

// DefaultTheme is applied whenever a workspace has no theme configured.
const DefaultTheme = "luxury-gold"
